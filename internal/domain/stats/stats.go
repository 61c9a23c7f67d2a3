// Package stats computes the planner's derived values. Every function is a
// pure scan over the task collection; nothing is cached.
package stats

import (
	"time"

	"github.com/dayplanner/core/internal/domain/entities"
)

// TasksForDate returns the tasks whose Date equals date, in insertion order.
func TasksForDate(tasks []entities.Task, date string) []entities.Task {
	out := make([]entities.Task, 0)
	for _, t := range tasks {
		if t.Date == date {
			out = append(out, t)
		}
	}
	return out
}

// DayScore sums the points of completed tasks on date.
func DayScore(tasks []entities.Task, date string) int {
	score := 0
	for _, t := range tasks {
		if t.Date == date && t.Completed {
			score += t.PointValue()
		}
	}
	return score
}

// TotalScore sums the points of every completed task regardless of date.
func TotalScore(tasks []entities.Task) int {
	score := 0
	for _, t := range tasks {
		if t.Completed {
			score += t.PointValue()
		}
	}
	return score
}

// Streak counts consecutive days, walking back from today, that have at
// least one completed task. A day without one ends the walk, so an
// incomplete today yields 0.
func Streak(tasks []entities.Task, today time.Time) int {
	done := make(map[string]struct{})
	for _, t := range tasks {
		if t.Completed {
			done[t.Date] = struct{}{}
		}
	}

	streak := 0
	day := entities.StartOfDay(today)
	for {
		if _, ok := done[entities.FormatDate(day)]; !ok {
			return streak
		}
		streak++
		day = day.AddDate(0, 0, -1)
	}
}

// CompletedCount returns how many of tasks are completed.
func CompletedCount(tasks []entities.Task) int {
	n := 0
	for _, t := range tasks {
		if t.Completed {
			n++
		}
	}
	return n
}

// Progress returns completed/total as a whole percentage, 0 when total is 0.
func Progress(completed, total int) int {
	if total <= 0 {
		return 0
	}
	return completed * 100 / total
}
