package services

import (
	"context"
	"encoding/json"
	"reflect"
	"testing"
	"time"

	"github.com/dayplanner/core/internal/domain/entities"
	"github.com/dayplanner/core/internal/ports"
	"github.com/dayplanner/core/internal/testutil"
)

var testNow = time.Date(2024, 1, 15, 9, 30, 0, 0, time.Local)

func newTestPlanner(t *testing.T, kv *testutil.FakeKV) (*PlannerService, *testutil.Clock) {
	t.Helper()
	clock := testutil.NewClock(testNow)
	p := NewPlannerService(kv, nil, PlannerOptions{ProfileName: "Jaya Raut", Now: clock.Now})
	p.Initialize(context.Background())
	return p, clock
}

func persistedTasks(t *testing.T, kv *testutil.FakeKV) []entities.Task {
	t.Helper()
	raw, ok := kv.Value(ports.TasksKey)
	if !ok {
		t.Fatal("tasks were never persisted")
	}
	var tasks []entities.Task
	if err := json.Unmarshal([]byte(raw), &tasks); err != nil {
		t.Fatalf("persisted tasks are not a JSON array: %v", err)
	}
	return tasks
}

func TestInitializeDefaults(t *testing.T) {
	p, _ := newTestPlanner(t, testutil.NewFakeKV())

	if got := p.Tasks(); len(got) != 0 {
		t.Errorf("Tasks() = %v, want empty", got)
	}
	if p.ProfileImage() != "" {
		t.Errorf("ProfileImage() = %q, want empty", p.ProfileImage())
	}
	if p.SelectedDate() != "2024-01-15" {
		t.Errorf("SelectedDate() = %q, want today", p.SelectedDate())
	}
}

func TestInitializeFailsSoft(t *testing.T) {
	tests := []struct {
		name string
		raw  string
	}{
		{name: "invalid json", raw: "{oops"},
		{name: "object instead of array", raw: `{"id":1}`},
		{name: "wrong field type", raw: `[{"id":"abc","text":"x"}]`},
		{name: "empty string", raw: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			kv := testutil.NewFakeKV()
			kv.Seed(ports.TasksKey, tt.raw)
			kv.Seed(ports.ProfileImageKey, "https://example.com/me.png")

			p, _ := newTestPlanner(t, kv)

			if got := p.Tasks(); len(got) != 0 {
				t.Errorf("Tasks() = %v, want empty", got)
			}
			if p.ProfileImage() != "https://example.com/me.png" {
				t.Errorf("ProfileImage() = %q", p.ProfileImage())
			}
		})
	}
}

func TestInitializeStorageError(t *testing.T) {
	kv := testutil.NewFakeKV()
	kv.Seed(ports.TasksKey, `[{"id":1,"text":"a","date":"2024-01-15","completed":false,"points":10}]`)
	kv.GetErr = testutil.ErrInjected

	p, _ := newTestPlanner(t, kv)
	if got := p.Tasks(); len(got) != 0 {
		t.Errorf("Tasks() = %v, want empty on read failure", got)
	}
}

func TestInitializeLegacyRecords(t *testing.T) {
	kv := testutil.NewFakeKV()
	kv.Seed(ports.TasksKey, `[
		{"id":1,"text":"old","date":"2024-01-15","completed":true},
		{"id":2,"text":"dup","date":"2024-01-15","completed":true,"points":10},
		{"id":2,"text":"dup again","date":"2024-01-15","completed":true,"points":10}
	]`)

	p, _ := newTestPlanner(t, kv)
	tasks := p.Tasks()

	if len(tasks) != 2 {
		t.Fatalf("len(Tasks()) = %d, want 2 after dropping duplicate id", len(tasks))
	}
	if tasks[0].Points != entities.DefaultPoints {
		t.Errorf("legacy Points = %d, want default %d", tasks[0].Points, entities.DefaultPoints)
	}
	if tasks[1].Text != "dup" {
		t.Errorf("kept %q, want first occurrence", tasks[1].Text)
	}
	if got := p.Day("2024-01-15").DayScore; got != 20 {
		t.Errorf("DayScore = %d, want 20", got)
	}
}

func TestAddTask(t *testing.T) {
	kv := testutil.NewFakeKV()
	p, _ := newTestPlanner(t, kv)

	task, ok := p.AddTask(context.Background(), "  Write report  ", "2024-01-15")
	if !ok {
		t.Fatal("AddTask() reported no-op")
	}

	tasks := p.Tasks()
	if len(tasks) != 1 {
		t.Fatalf("len(Tasks()) = %d, want 1", len(tasks))
	}
	want := entities.Task{ID: testNow.UnixMilli(), Text: "Write report", Date: "2024-01-15", Completed: false, Points: 10}
	if tasks[0] != want || task != want {
		t.Errorf("task = %+v, want %+v", tasks[0], want)
	}

	if got := persistedTasks(t, kv); !reflect.DeepEqual(got, tasks) {
		t.Errorf("persisted = %+v, want %+v", got, tasks)
	}
	if kv.WriteCount(ports.TasksKey) != 1 {
		t.Errorf("writes = %d, want 1", kv.WriteCount(ports.TasksKey))
	}
}

func TestAddTaskRejectsEmptyText(t *testing.T) {
	kv := testutil.NewFakeKV()
	p, _ := newTestPlanner(t, kv)

	for _, text := range []string{"", "   ", "\t\n"} {
		if _, ok := p.AddTask(context.Background(), text, "2024-01-15"); ok {
			t.Errorf("AddTask(%q) created a task", text)
		}
	}
	if _, ok := p.AddTask(context.Background(), "valid", "not-a-date"); ok {
		t.Error("AddTask() with bad date created a task")
	}

	if got := p.Tasks(); len(got) != 0 {
		t.Errorf("Tasks() = %v, want unchanged", got)
	}
	if kv.WriteCount(ports.TasksKey) != 0 {
		t.Errorf("rejected adds wrote to storage %d times", kv.WriteCount(ports.TasksKey))
	}
}

func TestAddTaskUniqueIDsWithinMillisecond(t *testing.T) {
	p, clock := newTestPlanner(t, testutil.NewFakeKV())
	ctx := context.Background()

	a, _ := p.AddTask(ctx, "a", "2024-01-15")
	b, _ := p.AddTask(ctx, "b", "2024-01-16")
	clock.Set(testNow.Add(-time.Hour)) // clock moves backwards
	c, _ := p.AddTask(ctx, "c", "2024-01-15")

	if a.ID == b.ID || b.ID == c.ID || a.ID == c.ID {
		t.Fatalf("ids not unique: %d %d %d", a.ID, b.ID, c.ID)
	}
	if !(a.ID < b.ID && b.ID < c.ID) {
		t.Errorf("ids not increasing: %d %d %d", a.ID, b.ID, c.ID)
	}
}

func TestIDsStayUniqueAfterReload(t *testing.T) {
	kv := testutil.NewFakeKV()
	kv.Seed(ports.TasksKey, `[{"id":9999999999999,"text":"future","date":"2024-01-15","completed":false,"points":10}]`)

	p, _ := newTestPlanner(t, kv)
	task, _ := p.AddTask(context.Background(), "new", "2024-01-15")
	if task.ID <= 9999999999999 {
		t.Errorf("new id %d collides with or precedes loaded id", task.ID)
	}
}

func TestToggleTaskInvolution(t *testing.T) {
	kv := testutil.NewFakeKV()
	p, _ := newTestPlanner(t, kv)
	ctx := context.Background()

	task, _ := p.AddTask(ctx, "Write report", "2024-01-15")

	toggled, ok := p.ToggleTask(ctx, task.ID)
	if !ok || !toggled.Completed {
		t.Fatalf("first toggle = (%+v, %v), want completed", toggled, ok)
	}
	if !persistedTasks(t, kv)[0].Completed {
		t.Error("toggle was not persisted")
	}

	toggled, ok = p.ToggleTask(ctx, task.ID)
	if !ok || toggled.Completed {
		t.Fatalf("second toggle = (%+v, %v), want not completed", toggled, ok)
	}
	if p.Tasks()[0].Completed != task.Completed {
		t.Error("double toggle did not restore original value")
	}
}

func TestToggleTaskUnknownID(t *testing.T) {
	kv := testutil.NewFakeKV()
	p, _ := newTestPlanner(t, kv)

	if _, ok := p.ToggleTask(context.Background(), 42); ok {
		t.Error("ToggleTask() on unknown id reported success")
	}
	if kv.WriteCount(ports.TasksKey) != 0 {
		t.Error("no-op toggle wrote to storage")
	}
}

func TestDeleteTask(t *testing.T) {
	kv := testutil.NewFakeKV()
	p, _ := newTestPlanner(t, kv)
	ctx := context.Background()

	a, _ := p.AddTask(ctx, "a", "2024-01-15")
	b, _ := p.AddTask(ctx, "b", "2024-01-14")
	c, _ := p.AddTask(ctx, "c", "2024-01-15")

	if p.DeleteTask(ctx, 12345) {
		t.Error("DeleteTask() on unknown id reported success")
	}
	if len(p.Tasks()) != 3 {
		t.Fatal("unknown id delete changed the collection")
	}

	if !p.DeleteTask(ctx, b.ID) {
		t.Fatal("DeleteTask() did not find existing task")
	}
	tasks := p.Tasks()
	if len(tasks) != 2 || tasks[0].ID != a.ID || tasks[1].ID != c.ID {
		t.Errorf("after delete = %+v", tasks)
	}
	if got := persistedTasks(t, kv); !reflect.DeepEqual(got, tasks) {
		t.Errorf("persisted = %+v, want %+v", got, tasks)
	}

	if p.DeleteTask(ctx, b.ID) {
		t.Error("second delete of the same id reported success")
	}
}

func TestTasksReturnsCopy(t *testing.T) {
	p, _ := newTestPlanner(t, testutil.NewFakeKV())
	p.AddTask(context.Background(), "a", "2024-01-15")

	tasks := p.Tasks()
	tasks[0].Completed = true
	if p.Tasks()[0].Completed {
		t.Error("mutating the returned slice changed the store")
	}
}

func TestWriteFailureKeepsMemoryAuthoritative(t *testing.T) {
	kv := testutil.NewFakeKV()
	rec := &testutil.PersistRecorder{}
	p := NewPlannerService(kv, nil, PlannerOptions{Now: func() time.Time { return testNow }, Observer: rec})
	p.Initialize(context.Background())

	kv.SetErr = testutil.ErrInjected
	task, ok := p.AddTask(context.Background(), "a", "2024-01-15")
	if !ok {
		t.Fatal("AddTask() should succeed in memory when storage fails")
	}
	if len(p.Tasks()) != 1 {
		t.Fatal("in-memory collection lost the task")
	}

	kv.SetErr = nil
	p.ToggleTask(context.Background(), task.ID)

	if len(rec.Errs) != 2 || rec.Errs[0] == nil || rec.Errs[1] != nil {
		t.Errorf("observer errs = %v, want [failure, nil]", rec.Errs)
	}
	if !reflect.DeepEqual(rec.Counts, []int{1, 1}) {
		t.Errorf("observer counts = %v", rec.Counts)
	}
	if !persistedTasks(t, kv)[0].Completed {
		t.Error("next successful write should carry the full collection")
	}
}

func TestWriteReportScenario(t *testing.T) {
	p, _ := newTestPlanner(t, testutil.NewFakeKV())
	ctx := context.Background()

	task, _ := p.AddTask(ctx, "Write report", "2024-01-15")
	day := p.Day("2024-01-15")
	if day.Total != 1 || day.DayScore != 0 {
		t.Fatalf("before toggle: total=%d score=%d, want 1 and 0", day.Total, day.DayScore)
	}

	p.ToggleTask(ctx, task.ID)
	if got := p.Day("2024-01-15").DayScore; got != 10 {
		t.Errorf("DayScore after toggle = %d, want 10", got)
	}
}

func TestDayView(t *testing.T) {
	p, _ := newTestPlanner(t, testutil.NewFakeKV())
	ctx := context.Background()

	done, _ := p.AddTask(ctx, "done", "2024-01-15")
	p.AddTask(ctx, "other day", "2024-01-14")
	open, _ := p.AddTask(ctx, "open", "2024-01-15")
	p.ToggleTask(ctx, done.ID)

	day := p.Day("2024-01-15")
	if day.Heading != "Monday, January 15, 2024" {
		t.Errorf("Heading = %q", day.Heading)
	}
	if len(day.Tasks) != 2 || day.Tasks[0].ID != done.ID || day.Tasks[1].ID != open.ID {
		t.Errorf("Tasks = %+v, want [done open] in insertion order", day.Tasks)
	}
	if day.Completed != 1 || day.Total != 2 || day.Progress != 50 || day.DayScore != 10 {
		t.Errorf("day = %+v", day)
	}

	empty := p.Day("2024-02-01")
	if empty.Total != 0 || empty.Progress != 0 || empty.Tasks == nil {
		t.Errorf("empty day = %+v", empty)
	}
}

func TestHeaderAndStats(t *testing.T) {
	p, _ := newTestPlanner(t, testutil.NewFakeKV())
	ctx := context.Background()

	for _, date := range []string{"2024-01-15", "2024-01-14", "2024-01-13", "2024-01-10"} {
		task, _ := p.AddTask(ctx, "t", date)
		p.ToggleTask(ctx, task.ID)
	}
	p.AddTask(ctx, "open", "2024-01-15")

	header := p.Header(testNow)
	if header.Streak != 3 || header.TotalScore != 40 || header.Initials != "JR" {
		t.Errorf("Header() = %+v", header)
	}

	if err := p.SetSelectedDate("2024-01-10"); err != nil {
		t.Fatal(err)
	}
	got := p.Stats(testNow)
	want := ports.StatsResponse{SelectedDate: "2024-01-10", Streak: 3, TotalScore: 40, DayScore: 10}
	if got != want {
		t.Errorf("Stats() = %+v, want %+v", got, want)
	}
}

func TestSetSelectedDate(t *testing.T) {
	p, _ := newTestPlanner(t, testutil.NewFakeKV())

	if err := p.SetSelectedDate("2023-12-31"); err != nil {
		t.Fatalf("SetSelectedDate() error: %v", err)
	}
	if p.SelectedDate() != "2023-12-31" {
		t.Errorf("SelectedDate() = %q", p.SelectedDate())
	}

	if err := p.SetSelectedDate("yesterday"); err == nil {
		t.Error("expected error for invalid date")
	}
	if p.SelectedDate() != "2023-12-31" {
		t.Error("invalid date changed selection")
	}
}

func TestPersistenceRoundTrip(t *testing.T) {
	kv := testutil.NewFakeKV()
	p, _ := newTestPlanner(t, kv)
	ctx := context.Background()

	a, _ := p.AddTask(ctx, "a", "2024-01-15")
	p.AddTask(ctx, "b", "2024-01-14")
	p.AddTask(ctx, "c", "2024-01-15")
	p.ToggleTask(ctx, a.ID)

	reloaded, _ := newTestPlanner(t, kv)
	if got, want := reloaded.Tasks(), p.Tasks(); !reflect.DeepEqual(got, want) {
		t.Errorf("reloaded = %+v, want %+v", got, want)
	}
}

func TestPing(t *testing.T) {
	kv := testutil.NewFakeKV()
	p, _ := newTestPlanner(t, kv)
	if err := p.Ping(context.Background()); err != nil {
		t.Errorf("Ping() error: %v", err)
	}
	kv.PingErr = testutil.ErrInjected
	if err := p.Ping(context.Background()); err == nil {
		t.Error("Ping() should surface storage failure")
	}
}

func TestEncodeEmptyCollection(t *testing.T) {
	raw, err := encodeTasks(nil)
	if err != nil {
		t.Fatal(err)
	}
	if raw != "[]" {
		t.Errorf("encodeTasks(nil) = %q, want []", raw)
	}
}
