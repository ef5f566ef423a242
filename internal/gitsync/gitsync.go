// Package gitsync optionally backs the notes directory with a git
// repository: pull the remote before a run, commit local note changes
// after mutations. The engine never depends on it; callers enable it
// through configuration.
package gitsync

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing/object"
)

// Sync clones the remote into localPath if no repository exists there,
// or pulls the latest changes if one does.
func Sync(url, localPath string) error {
	_, err := os.Stat(localPath)
	if os.IsNotExist(err) {
		slog.Info("cloning notes repository", "url", url, "path", localPath)
		if _, err := git.PlainClone(localPath, false, &git.CloneOptions{URL: url}); err != nil {
			return fmt.Errorf("failed to clone notes repo %s: %w", url, err)
		}
		return nil
	}
	if err != nil {
		return fmt.Errorf("error checking notes path %s: %w", localPath, err)
	}

	repo, err := git.PlainOpen(localPath)
	if err != nil {
		return fmt.Errorf("failed to open notes repo at %s: %w", localPath, err)
	}
	worktree, err := repo.Worktree()
	if err != nil {
		return fmt.Errorf("failed to get worktree at %s: %w", localPath, err)
	}

	err = worktree.Pull(&git.PullOptions{RemoteName: "origin"})
	if err != nil && !errors.Is(err, git.NoErrAlreadyUpToDate) {
		return fmt.Errorf("failed to pull notes repo at %s: %w", localPath, err)
	}
	slog.Info("notes repository up to date", "path", localPath)
	return nil
}

// Commit stages every change under localPath and commits it. A clean
// worktree is not an error; nothing is committed.
func Commit(localPath, message string) error {
	repo, err := git.PlainOpen(localPath)
	if err != nil {
		return fmt.Errorf("failed to open notes repo at %s: %w", localPath, err)
	}
	worktree, err := repo.Worktree()
	if err != nil {
		return fmt.Errorf("failed to get worktree at %s: %w", localPath, err)
	}

	status, err := worktree.Status()
	if err != nil {
		return fmt.Errorf("failed to read worktree status at %s: %w", localPath, err)
	}
	if status.IsClean() {
		return nil
	}

	if err := worktree.AddWithOptions(&git.AddOptions{All: true}); err != nil {
		return fmt.Errorf("failed to stage note changes at %s: %w", localPath, err)
	}

	_, err = worktree.Commit(message, &git.CommitOptions{
		Author: &object.Signature{
			Name:  "learnbase",
			Email: "learnbase@localhost",
			When:  time.Now(),
		},
	})
	if err != nil {
		return fmt.Errorf("failed to commit note changes at %s: %w", localPath, err)
	}
	slog.Info("committed note changes", "path", localPath)
	return nil
}
