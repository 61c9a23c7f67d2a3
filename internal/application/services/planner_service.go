package services

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/dayplanner/core/internal/domain/entities"
	"github.com/dayplanner/core/internal/domain/stats"
	"github.com/dayplanner/core/internal/infrastructure/logger"
	"github.com/dayplanner/core/internal/ports"
)

// PlannerOptions tunes a PlannerService. The zero value is usable.
type PlannerOptions struct {
	// ProfileName feeds the header's initials placeholder.
	ProfileName string

	// Now replaces the wall clock, for ids and the default selected date.
	Now func() time.Time

	// Observer is told about every write-through of the task collection.
	Observer ports.PersistObserver
}

// PlannerService owns the task collection and the selected date. All
// mutation goes through its methods, and every change to the collection is
// written through to the key-value store before the method returns.
type PlannerService struct {
	mu sync.Mutex

	kv       ports.KeyValueStore
	logger   *logger.Logger
	observer ports.PersistObserver
	now      func() time.Time
	ids      *idGenerator

	tasks        []entities.Task
	selectedDate string
	profileImage string
	profileName  string
}

var _ ports.PlannerService = (*PlannerService)(nil)

// NewPlannerService creates a planner backed by kv. Call Initialize before use.
func NewPlannerService(kv ports.KeyValueStore, appLogger *logger.Logger, opts PlannerOptions) *PlannerService {
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	if appLogger == nil {
		appLogger = logger.NewNop()
	}

	return &PlannerService{
		kv:           kv,
		logger:       appLogger.WithComponent("planner"),
		observer:     opts.Observer,
		now:          now,
		ids:          newIDGenerator(now),
		tasks:        []entities.Task{},
		selectedDate: entities.FormatDate(now()),
		profileName:  opts.ProfileName,
	}
}

// Initialize loads the task collection and the profile image. It never
// fails: unreadable or malformed data falls back to empty defaults.
func (s *PlannerService) Initialize(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.tasks = []entities.Task{}
	s.profileImage = ""

	raw, ok, err := s.kv.Get(ctx, ports.TasksKey)
	s.logger.LogStorageOperation("get", ports.TasksKey, len(raw), err)
	if err == nil && ok {
		tasks, dropped, decodeErr := decodeTasks(raw)
		if decodeErr != nil {
			s.logger.Warnw("Persisted tasks are malformed, starting empty", "error", decodeErr)
		} else {
			s.tasks = tasks
			if dropped > 0 {
				s.logger.Warnw("Dropped persisted tasks with duplicate ids", "count", dropped)
			}
		}
	}

	for _, t := range s.tasks {
		s.ids.observe(t.ID)
	}

	image, ok, err := s.kv.Get(ctx, ports.ProfileImageKey)
	s.logger.LogStorageOperation("get", ports.ProfileImageKey, len(image), err)
	if err == nil && ok {
		s.profileImage = image
	}

	s.logger.Infow("Planner loaded", "tasks", len(s.tasks), "selected_date", s.selectedDate)
}

// AddTask appends a task for date. It is a no-op, reporting false, when the
// trimmed text is empty or date is not YYYY-MM-DD.
func (s *PlannerService) AddTask(ctx context.Context, text, date string) (entities.Task, bool) {
	task, err := entities.NewTask(text, date)
	if err != nil {
		s.logger.Debugw("Add task rejected", "reason", err)
		return entities.Task{}, false
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	task.ID = s.ids.next()
	s.tasks = append(s.tasks, task)
	s.persist(ctx)

	s.logger.LogTaskAction("add", task.ID, map[string]interface{}{"date": task.Date})
	return task, true
}

// ToggleTask flips the completion flag of the task with id. It reports
// false and changes nothing when no task matches.
func (s *PlannerService) ToggleTask(ctx context.Context, id int64) (entities.Task, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexOf(id)
	if i < 0 {
		return entities.Task{}, false
	}

	s.tasks[i].Toggle()
	s.persist(ctx)

	s.logger.LogTaskAction("toggle", id, map[string]interface{}{"completed": s.tasks[i].Completed})
	return s.tasks[i], true
}

// DeleteTask removes the task with id, reporting whether one was removed
func (s *PlannerService) DeleteTask(ctx context.Context, id int64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexOf(id)
	if i < 0 {
		return false
	}

	s.tasks = append(s.tasks[:i:i], s.tasks[i+1:]...)
	s.persist(ctx)

	s.logger.LogTaskAction("delete", id, nil)
	return true
}

// SetSelectedDate replaces the displayed date
func (s *PlannerService) SetSelectedDate(date string) error {
	d, err := entities.ParseDate(date)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.selectedDate = entities.FormatDate(d)
	return nil
}

// SelectedDate returns the displayed date as YYYY-MM-DD
func (s *PlannerService) SelectedDate() string {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.selectedDate
}

// Tasks returns a copy of the collection in insertion order
func (s *PlannerService) Tasks() []entities.Task {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.snapshot()
}

// ProfileImage returns the image loaded at Initialize, or ""
func (s *PlannerService) ProfileImage() string {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.profileImage
}

// Header computes the profile block and all-time statistics as of now
func (s *PlannerService) Header(now time.Time) ports.HeaderView {
	s.mu.Lock()
	defer s.mu.Unlock()

	return ports.HeaderView{
		ProfileImage: s.profileImage,
		ProfileName:  s.profileName,
		Initials:     entities.Initials(s.profileName),
		Streak:       stats.Streak(s.tasks, now),
		TotalScore:   stats.TotalScore(s.tasks),
	}
}

// Day computes the view of a single calendar day
func (s *PlannerService) Day(date string) ports.DayView {
	s.mu.Lock()
	defer s.mu.Unlock()

	dayTasks := stats.TasksForDate(s.tasks, date)
	completed := stats.CompletedCount(dayTasks)

	return ports.DayView{
		Date:      date,
		Heading:   entities.HeadingFor(date),
		Tasks:     dayTasks,
		Completed: completed,
		Total:     len(dayTasks),
		Progress:  stats.Progress(completed, len(dayTasks)),
		DayScore:  stats.DayScore(s.tasks, date),
	}
}

// Stats summarizes the header and the selected day
func (s *PlannerService) Stats(now time.Time) ports.StatsResponse {
	s.mu.Lock()
	defer s.mu.Unlock()

	return ports.StatsResponse{
		SelectedDate: s.selectedDate,
		Streak:       stats.Streak(s.tasks, now),
		TotalScore:   stats.TotalScore(s.tasks),
		DayScore:     stats.DayScore(s.tasks, s.selectedDate),
	}
}

// Ping checks the backing store
func (s *PlannerService) Ping(ctx context.Context) error {
	if s.kv == nil {
		return errors.New("planner has no storage")
	}
	return s.kv.Ping(ctx)
}

func (s *PlannerService) indexOf(id int64) int {
	for i, t := range s.tasks {
		if t.ID == id {
			return i
		}
	}
	return -1
}

func (s *PlannerService) snapshot() []entities.Task {
	out := make([]entities.Task, len(s.tasks))
	copy(out, s.tasks)
	return out
}

// persist writes the whole collection. Failures are logged and reported to
// the observer; the in-memory collection stays authoritative.
func (s *PlannerService) persist(ctx context.Context) {
	raw, err := encodeTasks(s.tasks)
	if err == nil {
		err = s.kv.Set(ctx, ports.TasksKey, raw)
	}
	s.logger.LogStorageOperation("set", ports.TasksKey, len(raw), err)

	if s.observer != nil {
		s.observer.ObservePersist(len(s.tasks), err)
	}
}
