package main

import (
	"fmt"
	"log"
	"log/slog"
	"os"

	"github.com/spf13/pflag"

	"github.com/conorfennell/learnbase/internal/config"
	"github.com/conorfennell/learnbase/internal/domain"
	"github.com/conorfennell/learnbase/internal/gitsync"
	"github.com/conorfennell/learnbase/internal/history"
	"github.com/conorfennell/learnbase/internal/review"
	"github.com/conorfennell/learnbase/internal/store"
	"github.com/conorfennell/learnbase/internal/tolearn"
)

func main() {
	// 1. Define and parse command-line flags
	cfgPath := pflag.String("config", "", "Path to a YAML configuration file")
	pflag.String("notes_dir", "", "Directory holding note markdown files")
	pflag.String("history_dir", "", "Directory holding session history records")
	pflag.String("index_path", "", "Path to the SQLite session index (empty disables)")
	pflag.String("to_learn_path", "", "Path to the to-learn topic queue file")
	pflag.String("default_pattern", "", "Default schedule pattern for scheduled notes")
	pflag.String("git_remote", "", "Git remote backing the notes directory")
	pflag.String("log_level", "", "Log level: debug, info, warn or error")

	due := pflag.Bool("due", false, "List notes due for review")
	stats := pflag.Bool("stats", false, "Print collection statistics")
	record := pflag.String("record", "", "Record a review for the given note filename")
	rating := pflag.Int("rating", 0, "Rating 1-4 for --record")
	syncRepo := pflag.Bool("sync", false, "Sync the notes directory from its git remote")
	sessions := pflag.String("sessions", "", "Print the session history of the given note filename")
	topics := pflag.Bool("topics", false, "List to-learn topics")
	allTopics := pflag.Bool("all", false, "Include archived topics with --topics")
	addTopic := pflag.String("add-topic", "", "Add a topic to the to-learn queue")
	topicContext := pflag.String("topic-context", "", "Context for --add-topic")
	topicNotes := pflag.String("topic-notes", "", "Notes for --add-topic (makes the topic detailed)")
	archiveTopic := pflag.String("archive-topic", "", "Move a to-learn topic to the archive")
	pflag.Parse()

	// 2. Assemble configuration: defaults, file, env, flags
	cfg, err := config.Load(*cfgPath, pflag.CommandLine)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	setupLogging(cfg.LogLevel)

	if *syncRepo {
		if cfg.GitRemote == "" {
			log.Fatalf("--sync requires git_remote to be configured")
		}
		if err := gitsync.Sync(cfg.GitRemote, cfg.NotesDir); err != nil {
			log.Fatalf("Failed to sync notes repository: %v", err)
		}
	}

	// 3. Open the stores and build the service
	notes, err := store.New(cfg.NotesDir)
	if err != nil {
		log.Fatalf("Failed to open notes directory: %v", err)
	}
	sessionLog, err := history.NewLog(cfg.HistoryDir)
	if err != nil {
		log.Fatalf("Failed to open history directory: %v", err)
	}

	var index *history.Index
	if cfg.IndexPath != "" {
		index, err = history.OpenIndex(cfg.IndexPath)
		if err != nil {
			log.Fatalf("Failed to open session index: %v", err)
		}
		defer index.Close()
	}

	svc := review.NewService(notes, sessionLog, index, cfg.DefaultPattern)

	// 4. Dispatch
	switch {
	case *due:
		printDue(svc)
	case *stats:
		printStats(svc)
	case *record != "":
		recordReview(svc, *record, *rating)
		commitNotes(cfg)
	case *sessions != "":
		printSessions(svc, *sessions)
	case *topics:
		printTopics(cfg, *allTopics)
	case *addTopic != "":
		addToLearnTopic(cfg, *addTopic, *topicContext, *topicNotes)
	case *archiveTopic != "":
		archiveToLearnTopic(cfg, *archiveTopic)
	case *syncRepo:
		// Already handled above.
	default:
		pflag.Usage()
		os.Exit(2)
	}
}

func printDue(svc *review.Service) {
	notes, err := svc.GetDueNotes(0, "")
	if err != nil {
		log.Fatalf("Failed to list due notes: %v", err)
	}
	if len(notes) == 0 {
		fmt.Println("No notes are currently due for review.")
		return
	}
	fmt.Printf("Found %d note(s) due for review:\n\n", len(notes))
	for _, n := range notes {
		last := "never reviewed"
		if n.DaysSinceLastReview >= 0 {
			last = fmt.Sprintf("last reviewed %d day(s) ago", n.DaysSinceLastReview)
		}
		fmt.Printf("- %s (%s)\n    %s, interval %d day(s), ease %.2f\n",
			n.Filename, n.Title, last, n.IntervalDays, n.EaseFactor)
	}
}

func printStats(svc *review.Service) {
	st, err := svc.Stats()
	if err != nil {
		log.Fatalf("Failed to compute statistics: %v", err)
	}
	fmt.Printf("Total notes:      %d\n", st.TotalNotes)
	fmt.Printf("Due today:        %d\n", st.DueToday)
	fmt.Printf("Due this week:    %d\n", st.DueThisWeek)
	fmt.Printf("Reviewed today:   %d\n", st.ReviewedToday)
	fmt.Printf("Sessions today:   %d\n", st.SessionsToday)
	fmt.Printf("Average ease:     %.2f\n", st.AverageEase)
	fmt.Printf("Spaced notes:     %d\n", st.SpacedNotes)
	fmt.Printf("Scheduled notes:  %d\n", st.ScheduledNotes)
}

func recordReview(svc *review.Service, filename string, rating int) {
	result, err := svc.RecordReview(filename, domain.Rating(rating))
	if err != nil {
		log.Fatalf("Failed to record review for %s: %v", filename, err)
	}
	fmt.Printf("Reviewed %s\n", filename)
	fmt.Printf("Next review: %s (in %d day(s))\n", result.NextReview.Format("2006-01-02"), result.IntervalDays)
	fmt.Printf("Ease factor: %.2f\n", result.EaseFactor)
}

func printSessions(svc *review.Service, filename string) {
	records, err := svc.Sessions(filename)
	if err != nil {
		log.Fatalf("Failed to load sessions for %s: %v", filename, err)
	}
	if len(records) == 0 {
		fmt.Printf("No sessions recorded for %s.\n", filename)
		return
	}
	for _, rec := range records {
		status := "interrupted"
		if rec.Complete() {
			status = fmt.Sprintf("rated %d", int(*rec.OverallRating))
		}
		fmt.Printf("- %s  %s  %d question(s), avg %.2f, %s\n",
			rec.StartTime.Format("2006-01-02 15:04"), rec.SessionID,
			len(rec.Questions), rec.AverageScore, status)
	}
}

func openToLearn(cfg *config.Config) *tolearn.Manager {
	m, err := tolearn.NewManager(cfg.ToLearnPath)
	if err != nil {
		log.Fatalf("Failed to open to-learn file: %v", err)
	}
	return m
}

func printTopics(cfg *config.Config, includeArchived bool) {
	topics, err := openToLearn(cfg).List(includeArchived)
	if err != nil {
		log.Fatalf("Failed to list to-learn topics: %v", err)
	}
	if len(topics) == 0 {
		fmt.Println("The to-learn queue is empty.")
		return
	}
	for _, t := range topics {
		status := "quick"
		if t.Archived {
			status = "archived " + t.Completed
		} else if t.Detailed {
			status = "detailed"
		}
		line := fmt.Sprintf("- %s (%s, added %s)", t.Topic, status, t.Added)
		if t.Context != "" {
			line += ": " + t.Context
		}
		fmt.Println(line)
	}
}

func addToLearnTopic(cfg *config.Config, topic, context, notes string) {
	detailed := notes != ""
	if err := openToLearn(cfg).Add(topic, context, detailed, notes); err != nil {
		log.Fatalf("Failed to add topic: %v", err)
	}
	fmt.Printf("Added %q to the to-learn queue.\n", topic)
}

func archiveToLearnTopic(cfg *config.Config, topic string) {
	if err := openToLearn(cfg).Archive(topic); err != nil {
		log.Fatalf("Failed to archive topic: %v", err)
	}
	fmt.Printf("Archived %q.\n", topic)
}

func commitNotes(cfg *config.Config) {
	if cfg.GitRemote == "" {
		return
	}
	if err := gitsync.Commit(cfg.NotesDir, "Update review schedule"); err != nil {
		slog.Warn("failed to commit note changes", "error", err)
	}
}

func setupLogging(level string) {
	var lvl slog.Level
	switch level {
	case "debug":
		lvl = slog.LevelDebug
	case "warn":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	default:
		lvl = slog.LevelInfo
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: lvl})))
}
