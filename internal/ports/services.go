package ports

import (
	"context"
	"time"

	"github.com/dayplanner/core/internal/domain/entities"
)

// PlannerService interface for the task store and its derived views
type PlannerService interface {
	AddTask(ctx context.Context, text, date string) (entities.Task, bool)
	ToggleTask(ctx context.Context, id int64) (entities.Task, bool)
	DeleteTask(ctx context.Context, id int64) bool
	SetSelectedDate(date string) error
	SelectedDate() string
	Tasks() []entities.Task
	ProfileImage() string
	Header(now time.Time) HeaderView
	Day(date string) DayView
	Stats(now time.Time) StatsResponse
	Ping(ctx context.Context) error
}

// Request/Response Types

type AddTaskRequest struct {
	Text string `json:"text" form:"text"`
	Date string `json:"date" form:"date" validate:"omitempty,datetime=2006-01-02"`
}

type SelectDateRequest struct {
	Date string `json:"date" form:"date" validate:"required,datetime=2006-01-02"`
}

// HeaderView carries the profile block and the all-time statistics
type HeaderView struct {
	ProfileImage string `json:"profile_image,omitempty"`
	ProfileName  string `json:"profile_name"`
	Initials     string `json:"initials"`
	Streak       int    `json:"streak"`
	TotalScore   int    `json:"total_score"`
}

// DayView carries everything rendered for one calendar day
type DayView struct {
	Date      string          `json:"date"`
	Heading   string          `json:"heading"`
	Tasks     []entities.Task `json:"tasks"`
	Completed int             `json:"completed"`
	Total     int             `json:"total"`
	Progress  int             `json:"progress"`
	DayScore  int             `json:"day_score"`
}

type StatsResponse struct {
	SelectedDate string `json:"selected_date"`
	Streak       int    `json:"streak"`
	TotalScore   int    `json:"total_score"`
	DayScore     int    `json:"day_score"`
}

type MessageResponse struct {
	Message string `json:"message"`
}
