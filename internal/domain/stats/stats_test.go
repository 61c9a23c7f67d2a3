package stats

import (
	"testing"
	"time"

	"github.com/dayplanner/core/internal/domain/entities"
)

func task(id int64, date string, completed bool, points int) entities.Task {
	return entities.Task{ID: id, Text: "t", Date: date, Completed: completed, Points: points}
}

func TestTasksForDatePreservesOrder(t *testing.T) {
	tasks := []entities.Task{
		task(3, "2024-01-15", true, 10),
		task(1, "2024-01-14", true, 10),
		task(2, "2024-01-15", false, 10),
	}

	got := TasksForDate(tasks, "2024-01-15")
	if len(got) != 2 {
		t.Fatalf("len = %d, want 2", len(got))
	}
	if got[0].ID != 3 || got[1].ID != 2 {
		t.Errorf("order = [%d %d], want [3 2]", got[0].ID, got[1].ID)
	}

	if got := TasksForDate(tasks, "2024-02-01"); len(got) != 0 {
		t.Errorf("expected no tasks, got %d", len(got))
	}
}

func TestDayScore(t *testing.T) {
	tasks := []entities.Task{
		task(1, "2024-01-15", true, 10),
		task(2, "2024-01-15", false, 10),
		task(3, "2024-01-14", true, 10),
		task(4, "2024-01-15", true, 0), // legacy record without points
		task(5, "2024-01-15", true, 5),
	}

	if got := DayScore(tasks, "2024-01-15"); got != 25 {
		t.Errorf("DayScore() = %d, want 25", got)
	}
	if got := DayScore(tasks, "2024-01-16"); got != 0 {
		t.Errorf("DayScore() on empty day = %d, want 0", got)
	}
}

func TestTotalScore(t *testing.T) {
	tasks := []entities.Task{
		task(1, "2024-01-15", true, 10),
		task(2, "2024-01-15", false, 10),
		task(3, "2023-06-01", true, 0),
		task(4, "2024-01-10", true, 7),
	}
	if got := TotalScore(tasks); got != 27 {
		t.Errorf("TotalScore() = %d, want 27", got)
	}
	if got := TotalScore(nil); got != 0 {
		t.Errorf("TotalScore(nil) = %d, want 0", got)
	}
}

func TestStreak(t *testing.T) {
	today := time.Date(2024, 1, 15, 18, 30, 0, 0, time.Local)

	tests := []struct {
		name  string
		tasks []entities.Task
		want  int
	}{
		{
			name: "three consecutive days",
			tasks: []entities.Task{
				task(1, "2024-01-15", true, 10),
				task(2, "2024-01-14", true, 10),
				task(3, "2024-01-13", true, 10),
				task(4, "2024-01-11", true, 10),
			},
			want: 3,
		},
		{
			name: "today incomplete",
			tasks: []entities.Task{
				task(1, "2024-01-15", false, 10),
				task(2, "2024-01-14", true, 10),
				task(3, "2024-01-13", true, 10),
			},
			want: 0,
		},
		{
			name: "gap stops the walk",
			tasks: []entities.Task{
				task(1, "2024-01-15", true, 10),
				task(2, "2024-01-13", true, 10),
			},
			want: 1,
		},
		{
			name: "mixed completion on a day counts",
			tasks: []entities.Task{
				task(1, "2024-01-15", false, 10),
				task(2, "2024-01-15", true, 10),
				task(3, "2024-01-14", true, 10),
			},
			want: 2,
		},
		{
			name: "four days",
			tasks: []entities.Task{
				task(1, "2024-01-15", true, 10),
				task(2, "2024-01-14", true, 10),
				task(3, "2024-01-13", true, 10),
				task(4, "2024-01-12", true, 10),
			},
			want: 4,
		},
		{name: "empty", tasks: nil, want: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Streak(tt.tasks, today); got != tt.want {
				t.Errorf("Streak() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestStreakCrossesMonth(t *testing.T) {
	today := time.Date(2024, 3, 1, 9, 0, 0, 0, time.Local)
	tasks := []entities.Task{
		task(1, "2024-03-01", true, 10),
		task(2, "2024-02-29", true, 10),
		task(3, "2024-02-28", true, 10),
	}
	if got := Streak(tasks, today); got != 3 {
		t.Errorf("Streak() = %d, want 3", got)
	}
}

func TestProgress(t *testing.T) {
	tests := []struct{ completed, total, want int }{
		{0, 0, 0},
		{1, 2, 50},
		{2, 2, 100},
		{1, 3, 33},
	}
	for _, tt := range tests {
		if got := Progress(tt.completed, tt.total); got != tt.want {
			t.Errorf("Progress(%d, %d) = %d, want %d", tt.completed, tt.total, got, tt.want)
		}
	}
}

func TestCompletedCount(t *testing.T) {
	tasks := []entities.Task{task(1, "d", true, 10), task(2, "d", false, 10), task(3, "d", true, 10)}
	if got := CompletedCount(tasks); got != 2 {
		t.Errorf("CompletedCount() = %d, want 2", got)
	}
}
