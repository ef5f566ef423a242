package scheduler

import (
	"regexp"
	"strconv"
	"strings"
)

// PresetPatterns are ready-made schedule patterns for scheduled mode.
var PresetPatterns = map[string]string{
	"aggressive": "1d,3d,1w,2w,1m,3m",
	"moderate":   "1d,1w,2w,1m,3m,6m",
	"relaxed":    "1w,2w,1m,2m,6m,1y",
}

// DefaultPattern is used when a scheduled note has no pattern of its own.
const DefaultPattern = "1d,1w,2w,1m,3m,6m"

// defaultIntervals is DefaultPattern expressed in days.
func defaultIntervals() []int {
	return []int{1, 7, 14, 30, 90, 180}
}

var patternEntry = regexp.MustCompile(`^(\d+)([dwmy])$`)

// ParsePattern converts a pattern like "1d,1w,2w,1m" into day counts.
// Units: d=1, w=7, m=30, y=365. Unparseable entries are skipped; if
// nothing parses the default pattern's intervals are returned.
func ParsePattern(pattern string) []int {
	if preset, ok := PresetPatterns[strings.ToLower(strings.TrimSpace(pattern))]; ok {
		pattern = preset
	}

	var intervals []int
	for _, part := range strings.Split(pattern, ",") {
		m := patternEntry.FindStringSubmatch(strings.ToLower(strings.TrimSpace(part)))
		if m == nil {
			continue
		}
		value, err := strconv.Atoi(m[1])
		if err != nil {
			continue
		}
		switch m[2] {
		case "d":
			intervals = append(intervals, value)
		case "w":
			intervals = append(intervals, value*7)
		case "m":
			intervals = append(intervals, value*30)
		case "y":
			intervals = append(intervals, value*365)
		}
	}

	if len(intervals) == 0 {
		return defaultIntervals()
	}
	return intervals
}

// ValidPattern reports whether the pattern yields at least one interval
// without falling back to defaults.
func ValidPattern(pattern string) bool {
	if _, ok := PresetPatterns[strings.ToLower(strings.TrimSpace(pattern))]; ok {
		return true
	}
	for _, part := range strings.Split(pattern, ",") {
		if patternEntry.MatchString(strings.ToLower(strings.TrimSpace(part))) {
			return true
		}
	}
	return false
}
