package services

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/dayplanner/core/internal/domain/entities"
)

// encodeTasks renders the collection as the persisted JSON array
func encodeTasks(tasks []entities.Task) (string, error) {
	if tasks == nil {
		tasks = []entities.Task{}
	}
	data, err := json.Marshal(tasks)
	if err != nil {
		return "", fmt.Errorf("marshal tasks: %w", err)
	}
	return string(data), nil
}

// decodeTasks parses the persisted array. Records without points get the
// default; later records reusing an id are dropped and counted.
func decodeTasks(raw string) ([]entities.Task, int, error) {
	var tasks []entities.Task
	if err := json.Unmarshal([]byte(raw), &tasks); err != nil {
		return nil, 0, fmt.Errorf("unmarshal tasks: %w", err)
	}

	out := make([]entities.Task, 0, len(tasks))
	seen := make(map[int64]struct{}, len(tasks))
	dropped := 0
	for _, t := range tasks {
		if _, dup := seen[t.ID]; dup {
			dropped++
			continue
		}
		seen[t.ID] = struct{}{}
		t.Points = t.PointValue()
		out = append(out, t)
	}
	return out, dropped, nil
}

// idGenerator hands out millisecond timestamps, bumped past the last id
// issued or observed so ids stay unique within a millisecond and across a
// clock that moves backwards.
type idGenerator struct {
	now  func() time.Time
	last int64
}

func newIDGenerator(now func() time.Time) *idGenerator {
	return &idGenerator{now: now}
}

func (g *idGenerator) next() int64 {
	id := g.now().UnixMilli()
	if id <= g.last {
		id = g.last + 1
	}
	g.last = id
	return id
}

func (g *idGenerator) observe(id int64) {
	if id > g.last {
		g.last = id
	}
}
