// Package tui is the terminal front end of the planner, built on bubbletea.
package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/dayplanner/core/internal/domain/entities"
	"github.com/dayplanner/core/internal/ports"
)

type mode int

const (
	modeList mode = iota
	modeAdd
	modeGoto
	modeConfirmDelete
)

const helpText = "a add • space toggle • d delete • h/l prev/next day • t today • g go to date • q quit"

// Model is the bubbletea model of the day view
type Model struct {
	ctx      context.Context
	planner  ports.PlannerService
	now      func() time.Time
	mode     mode
	cursor   int
	input    textinput.Model
	progress progress.Model
	status   string
}

// New creates the model. now may be nil.
func New(ctx context.Context, planner ports.PlannerService, now func() time.Time) Model {
	if now == nil {
		now = time.Now
	}

	ti := textinput.New()
	ti.Width = 50

	return Model{
		ctx:      ctx,
		planner:  planner,
		now:      now,
		mode:     modeList,
		input:    ti,
		progress: progress.New(progress.WithDefaultGradient(), progress.WithoutPercentage(), progress.WithWidth(30)),
		status:   "Press 'a' to add a task.",
	}
}

// Run starts the program on the alternate screen and blocks until it exits
func Run(ctx context.Context, planner ports.PlannerService) error {
	program := tea.NewProgram(New(ctx, planner, nil), tea.WithAltScreen(), tea.WithContext(ctx))
	_, err := program.Run()
	return err
}

func (m Model) Init() tea.Cmd {
	return nil
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch m.mode {
		case modeAdd:
			return m.updateAddMode(msg)
		case modeGoto:
			return m.updateGotoMode(msg)
		case modeConfirmDelete:
			return m.updateDeleteConfirm(msg.String())
		default:
			return m.updateListMode(msg.String())
		}
	case tea.WindowSizeMsg:
		m.input.Width = clamp(msg.Width-10, 20, 80)
	}
	return m, nil
}

func (m Model) updateListMode(key string) (tea.Model, tea.Cmd) {
	tasks := m.dayTasks()

	switch key {
	case "ctrl+c", "q":
		return m, tea.Quit
	case "a":
		m.mode = modeAdd
		m.input.Placeholder = "Add a task you completed or plan to do..."
		m.input.SetValue("")
		cmd := m.input.Focus()
		return m, cmd
	case "g":
		m.mode = modeGoto
		m.input.Placeholder = entities.DateLayout
		m.input.SetValue(m.planner.SelectedDate())
		cmd := m.input.Focus()
		return m, cmd
	case "down", "j":
		if m.cursor < len(tasks)-1 {
			m.cursor++
		}
	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
		}
	case " ", "space", "x", "enter":
		if len(tasks) == 0 {
			return m, nil
		}
		task, ok := m.planner.ToggleTask(m.ctx, tasks[m.cursor].ID)
		if ok && task.Completed {
			m.status = fmt.Sprintf("Completed %q (+%d pts)", task.Text, task.PointValue())
		} else if ok {
			m.status = fmt.Sprintf("Reopened %q", task.Text)
		}
	case "d":
		if len(tasks) == 0 {
			return m, nil
		}
		m.mode = modeConfirmDelete
		m.status = fmt.Sprintf("Delete %q? (y/n)", tasks[m.cursor].Text)
	case "left", "h":
		m.shiftDay(-1)
	case "right", "l":
		m.shiftDay(1)
	case "t":
		m.selectDate(entities.FormatDate(m.now()))
	}
	return m, nil
}

func (m Model) updateAddMode(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.leaveInput("Cancelled")
		return m, nil
	case "enter":
		if task, ok := m.planner.AddTask(m.ctx, m.input.Value(), m.planner.SelectedDate()); ok {
			m.cursor = len(m.dayTasks()) - 1
			m.leaveInput(fmt.Sprintf("Added %q", task.Text))
		} else {
			m.leaveInput("Nothing added")
		}
		return m, nil
	default:
		var cmd tea.Cmd
		m.input, cmd = m.input.Update(msg)
		return m, cmd
	}
}

func (m Model) updateGotoMode(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.leaveInput("Cancelled")
		return m, nil
	case "enter":
		date := strings.TrimSpace(m.input.Value())
		if !entities.IsValidDate(date) {
			m.status = fmt.Sprintf("%q is not a YYYY-MM-DD date", date)
			return m, nil
		}
		m.leaveInput("")
		m.selectDate(date)
		return m, nil
	default:
		var cmd tea.Cmd
		m.input, cmd = m.input.Update(msg)
		return m, cmd
	}
}

func (m Model) updateDeleteConfirm(key string) (tea.Model, tea.Cmd) {
	m.mode = modeList
	tasks := m.dayTasks()

	switch key {
	case "y", "Y":
		if m.cursor >= len(tasks) {
			m.status = "Nothing to delete"
			return m, nil
		}
		m.planner.DeleteTask(m.ctx, tasks[m.cursor].ID)
		m.cursor = clamp(m.cursor, 0, len(tasks)-2)
		m.status = "Deleted task"
	default:
		m.status = "Delete cancelled"
	}
	return m, nil
}

func (m *Model) leaveInput(status string) {
	m.mode = modeList
	m.input.SetValue("")
	m.input.Blur()
	m.status = status
}

func (m *Model) shiftDay(days int) {
	date, err := entities.ShiftDate(m.planner.SelectedDate(), days)
	if err != nil {
		m.status = err.Error()
		return
	}
	m.selectDate(date)
}

func (m *Model) selectDate(date string) {
	if err := m.planner.SetSelectedDate(date); err != nil {
		m.status = err.Error()
		return
	}
	m.cursor = 0
	m.status = ""
}

func (m Model) dayTasks() []entities.Task {
	return m.planner.Day(m.planner.SelectedDate()).Tasks
}

func (m Model) View() string {
	header := m.planner.Header(m.now())
	day := m.planner.Day(m.planner.SelectedDate())

	var b strings.Builder

	b.WriteString(avatarStyle.Render(header.Initials))
	b.WriteString(" ")
	b.WriteString(titleStyle.Render(header.ProfileName))
	b.WriteString("  ")
	b.WriteString(statStyle.Render(fmt.Sprintf("🔥 %d day streak", header.Streak)))
	b.WriteString("  ")
	b.WriteString(statStyle.Render(fmt.Sprintf("⭐ %d pts", header.TotalScore)))
	b.WriteString("\n\n")

	b.WriteString(headingStyle.Render(day.Heading))
	b.WriteString("\n")
	b.WriteString(fmt.Sprintf("%d / %d tasks completed  ", day.Completed, day.Total))
	b.WriteString(m.progress.ViewAs(float64(day.Progress) / 100))
	b.WriteString("\n")
	b.WriteString(scoreStyle.Render(fmt.Sprintf("Today's Score: %d pts", day.DayScore)))
	b.WriteString("\n\n")

	if len(day.Tasks) == 0 {
		b.WriteString(emptyStyle.Render("No tasks yet. Add your first task above!"))
		b.WriteString("\n")
	}
	for i, task := range day.Tasks {
		cursor := "  "
		if i == m.cursor && m.mode != modeAdd {
			cursor = cursorStyle.Render("> ")
		}
		check, style := "○", pendingStyle
		if task.Completed {
			check, style = "✓", doneStyle
		}
		b.WriteString(fmt.Sprintf("%s%s %s %s\n", cursor, check, style.Render(task.Text), pointsStyle.Render(fmt.Sprintf("+%d pts", task.PointValue()))))
	}

	switch m.mode {
	case modeAdd:
		b.WriteString("\nWhat did you do today?\n")
		b.WriteString(m.input.View())
		b.WriteString("\n")
	case modeGoto:
		b.WriteString("\nGo to date:\n")
		b.WriteString(m.input.View())
		b.WriteString("\n")
	}

	b.WriteString("\n")
	if m.status != "" {
		b.WriteString(statusStyle.Render(m.status))
		b.WriteString("\n")
	}
	b.WriteString(helpStyle.Render(helpText))

	return b.String()
}

func clamp(v, lo, hi int) int {
	if hi < lo {
		return lo
	}
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
