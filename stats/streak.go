// Package stats derives dashboard metrics from a user's data document:
// the study streak, subject averages, mock test summaries, and weak topics.
// All functions are pure; the caller supplies "today" where it matters.
package stats

import (
	"time"

	"preppilot/models"
	"preppilot/storage"
)

// Streak computes the current consecutive-day study streak ending at today
// or yesterday. Days are compared by calendar date; the backing collection
// holds at most one record per date. An empty set yields 0.
func Streak(days []models.StudyDay, today time.Time) int {
	if len(days) == 0 {
		return 0
	}

	marked := make(map[time.Time]bool, len(days))
	for _, day := range days {
		marked[storage.Midnight(day.Date)] = true
	}

	cursor := storage.Midnight(today)
	if !marked[cursor] {
		// Today not yet marked: a streak may still be alive through yesterday.
		cursor = cursor.AddDate(0, 0, -1)
		if !marked[cursor] {
			return 0
		}
	}

	streak := 0
	for marked[cursor] {
		streak++
		cursor = cursor.AddDate(0, 0, -1)
	}
	return streak
}

// Calendar returns the intensity for every marked day within the month
// containing the given date, keyed by day of month.
func Calendar(days []models.StudyDay, month time.Time) map[int]int {
	out := make(map[int]int)
	for _, day := range days {
		d := storage.Midnight(day.Date)
		if d.Year() == month.Year() && d.Month() == month.Month() {
			out[d.Day()] = day.Intensity
		}
	}
	return out
}
