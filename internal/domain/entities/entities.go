package entities

import (
	"errors"
	"strings"
	"time"
	"unicode"
)

// Common errors
var (
	ErrTaskNotFound  = errors.New("task not found")
	ErrEmptyTaskText = errors.New("task text is empty")
	ErrInvalidDate   = errors.New("invalid date, expected YYYY-MM-DD")
)

const (
	// DefaultPoints is the reward for every task created through the planner,
	// and the fallback for persisted records that carry no points.
	DefaultPoints = 10

	// DateLayout is the calendar-day encoding used for Task.Date.
	DateLayout = "2006-01-02"

	// HeadingLayout renders a day as "Monday, January 15, 2024".
	HeadingLayout = "Monday, January 2, 2006"
)

// Task represents a single user-entered activity bound to one calendar date
type Task struct {
	ID        int64  `json:"id" yaml:"id"`
	Text      string `json:"text" yaml:"text"`
	Date      string `json:"date" yaml:"date"`
	Completed bool   `json:"completed" yaml:"completed"`
	Points    int    `json:"points" yaml:"points"`
}

// NewTask builds a task with the planner defaults. It does not assign an ID.
func NewTask(text, date string) (Task, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return Task{}, ErrEmptyTaskText
	}
	if !IsValidDate(date) {
		return Task{}, ErrInvalidDate
	}

	return Task{
		Text:      text,
		Date:      date,
		Completed: false,
		Points:    DefaultPoints,
	}, nil
}

// PointValue returns the task's points, falling back to DefaultPoints for
// records that were persisted without them.
func (t Task) PointValue() int {
	if t.Points == 0 {
		return DefaultPoints
	}
	return t.Points
}

// Toggle flips the completion flag, the only field that changes after creation.
func (t *Task) Toggle() {
	t.Completed = !t.Completed
}

// FormatDate encodes t as a local calendar date.
func FormatDate(t time.Time) string {
	return t.Format(DateLayout)
}

// ParseDate decodes a YYYY-MM-DD string as local midnight.
func ParseDate(s string) (time.Time, error) {
	d, err := time.ParseInLocation(DateLayout, strings.TrimSpace(s), time.Local)
	if err != nil {
		return time.Time{}, ErrInvalidDate
	}
	return d, nil
}

// IsValidDate reports whether s is a well-formed YYYY-MM-DD date.
func IsValidDate(s string) bool {
	_, err := ParseDate(s)
	return err == nil
}

// StartOfDay truncates t to local midnight of the same calendar day.
func StartOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// ShiftDate moves a YYYY-MM-DD date by days, keeping the same encoding.
func ShiftDate(date string, days int) (string, error) {
	d, err := ParseDate(date)
	if err != nil {
		return "", err
	}
	return FormatDate(d.AddDate(0, 0, days)), nil
}

// HeadingFor renders a YYYY-MM-DD date for display. Unparseable input is
// returned unchanged.
func HeadingFor(date string) string {
	d, err := ParseDate(date)
	if err != nil {
		return date
	}
	return d.Format(HeadingLayout)
}

// Initials builds the profile placeholder shown when no image is set.
func Initials(name string) string {
	var b strings.Builder
	for _, word := range strings.Fields(name) {
		for _, r := range word {
			if unicode.IsLetter(r) || unicode.IsDigit(r) {
				b.WriteRune(unicode.ToUpper(r))
				break
			}
		}
		if b.Len() >= 2 {
			break
		}
	}
	if b.Len() == 0 {
		return "?"
	}
	return b.String()
}
