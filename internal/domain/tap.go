package domain

import (
	"fmt"
	"sort"
	"time"
)

// TapDateLayout is the calendar date format used by tap entries
const TapDateLayout = "2006-01-02"

// TapListKey is the namespaced storage key holding the whole tap log
const TapListKey = "tap-list-data"

// TapEntry records one submission caught on a given day
type TapEntry struct {
	Date string `json:"date"`
	Note string `json:"note"`
}

// NewTapEntry creates an entry, defaulting an empty date to today
func NewTapEntry(date, note string, today time.Time) (TapEntry, error) {
	if date == "" {
		date = today.Format(TapDateLayout)
	}
	if err := ValidateTapDate(date); err != nil {
		return TapEntry{}, err
	}
	return TapEntry{Date: date, Note: note}, nil
}

// ValidateTapDate checks the YYYY-MM-DD format
func ValidateTapDate(date string) error {
	if _, err := time.Parse(TapDateLayout, date); err != nil {
		return fmt.Errorf("%w: %q", ErrInvalidTapDate, date)
	}
	return nil
}

// TapLog maps a submission name to its entries in the order they were logged
type TapLog map[string][]TapEntry

// Entries returns a copy of the entries for a submission
func (l TapLog) Entries(name string) []TapEntry {
	return append([]TapEntry{}, l[name]...)
}

// Count returns the number of taps logged for a submission
func (l TapLog) Count(name string) int {
	return len(l[name])
}

// Append adds an entry at the end of a submission's list
func (l TapLog) Append(name string, e TapEntry) {
	l[name] = append(l[name], e)
}

// Delete removes one entry by index. Removing the last entry drops the name.
func (l TapLog) Delete(name string, index int) error {
	entries := l[name]
	if index < 0 || index >= len(entries) {
		return fmt.Errorf("%w: %s #%d", ErrTapNotFound, name, index)
	}
	entries = append(entries[:index:index], entries[index+1:]...)
	if len(entries) == 0 {
		delete(l, name)
		return nil
	}
	l[name] = entries
	return nil
}

// Clear removes every entry for a submission
func (l TapLog) Clear(name string) {
	delete(l, name)
}

// Total returns the number of entries across all submissions
func (l TapLog) Total() int {
	total := 0
	for _, entries := range l {
		total += len(entries)
	}
	return total
}

// RosterEntry is a submission offered on the Tap List
type RosterEntry struct {
	Name     string `json:"name"`
	Category string `json:"category"`
}

// Categories returns the roster's categories in first-seen order
func Categories(roster []RosterEntry) []string {
	seen := make(map[string]bool)
	var out []string
	for _, r := range roster {
		if !seen[r.Category] {
			seen[r.Category] = true
			out = append(out, r.Category)
		}
	}
	return out
}

// TapStats is the Tap List summary
type TapStats struct {
	Collected     int    `json:"collected"`
	RosterSize    int    `json:"roster_size"`
	TotalTaps     int    `json:"total_taps"`
	TopMove       string `json:"top_move"`
	TopCount      int    `json:"top_count"`
	CurrentStreak int    `json:"current_streak"`
	LongestStreak int    `json:"longest_streak"`
	Share         string `json:"share"`
}

// ComputeStats summarises the log against the roster. Collected counts
// roster submissions with at least one tap. The top move is the submission
// with the most taps; ties go to the roster order, then to name order for
// submissions outside the roster. The stored log is a JSON object whose key
// order is not kept, so logging order cannot break ties.
func ComputeStats(log TapLog, roster []RosterEntry, today time.Time) TapStats {
	stats := TapStats{
		RosterSize: len(roster),
		TotalTaps:  log.Total(),
		TopMove:    "none",
	}

	inRoster := make(map[string]bool, len(roster))
	order := make([]string, 0, len(log))
	for _, r := range roster {
		inRoster[r.Name] = true
		if log.Count(r.Name) > 0 {
			stats.Collected++
		}
		order = append(order, r.Name)
	}
	var extra []string
	for name := range log {
		if !inRoster[name] {
			extra = append(extra, name)
		}
	}
	sort.Strings(extra)
	order = append(order, extra...)

	for _, name := range order {
		if n := log.Count(name); n > stats.TopCount {
			stats.TopMove = name
			stats.TopCount = n
		}
	}

	stats.CurrentStreak, stats.LongestStreak = Streaks(log, today)
	stats.Share = ShareText(stats.Collected, stats.TopMove)
	return stats
}

// ShareText formats the line copied by the Share button
func ShareText(collected int, topMove string) string {
	if collected == 0 {
		return "I'm just getting started on The Tap List. 🥋"
	}
	return fmt.Sprintf("I've tapped %d unique submissions on The Tap List. My most caught: %s. 🥋", collected, topMove)
}

// Streaks returns the current and longest runs of consecutive days with at
// least one tap. The current run may end today or yesterday; a day without
// taps before that breaks it. Malformed dates are ignored.
func Streaks(log TapLog, today time.Time) (current, longest int) {
	days := make(map[string]bool)
	for _, entries := range log {
		for _, e := range entries {
			if ValidateTapDate(e.Date) == nil {
				days[e.Date] = true
			}
		}
	}
	if len(days) == 0 {
		return 0, 0
	}

	sorted := make([]string, 0, len(days))
	for d := range days {
		sorted = append(sorted, d)
	}
	sort.Strings(sorted)

	run := 0
	var prev time.Time
	for i, d := range sorted {
		t, _ := time.Parse(TapDateLayout, d)
		if i > 0 && t.Equal(prev.AddDate(0, 0, 1)) {
			run++
		} else {
			run = 1
		}
		if run > longest {
			longest = run
		}
		prev = t
	}

	day := time.Date(today.Year(), today.Month(), today.Day(), 0, 0, 0, 0, time.UTC)
	if !days[day.Format(TapDateLayout)] {
		day = day.AddDate(0, 0, -1)
	}
	for days[day.Format(TapDateLayout)] {
		current++
		day = day.AddDate(0, 0, -1)
	}
	return current, longest
}
