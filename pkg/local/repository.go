package local

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/matt-steen/taskboard/pkg/api"
	"github.com/matt-steen/taskboard/pkg/db"
	"github.com/matt-steen/taskboard/pkg/task"
	"github.com/rs/zerolog/log"
)

var ErrNotFound = errors.New("local: task not found")

// Store is the slot store holding the serialized collection.
type Store interface {
	Get(key string) (string, bool)
	Set(ctx context.Context, key, value string) error
}

// Repository keeps the whole task collection in a single slot. The slot is read once
// by NewRepository and rewritten after every successful mutation.
type Repository struct {
	store Store
	now   func() time.Time

	mu     sync.Mutex
	tasks  []task.Task
	lastID int64
}

// NewRepository loads the collection from the tasks slot. A missing slot is an empty
// collection.
func NewRepository(store Store) (*Repository, error) {
	r := &Repository{
		store: store,
		now:   time.Now,
		tasks: []task.Task{},
	}

	raw, ok := store.Get(db.SlotTasks)
	if !ok || raw == "" {
		return r, nil
	}

	if err := json.Unmarshal([]byte(raw), &r.tasks); err != nil {
		return nil, fmt.Errorf("error decoding stored tasks: %w", err)
	}

	for _, t := range r.tasks {
		if t.ID > r.lastID {
			r.lastID = t.ID
		}
	}

	log.Debug().Int("count", len(r.tasks)).Msg("loaded local tasks")

	return r, nil
}

// ListTasks returns a copy of the collection.
func (r *Repository) ListTasks(ctx context.Context) ([]task.Task, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]task.Task, len(r.tasks))
	copy(out, r.tasks)

	return out, nil
}

// CreateTask assigns a timestamp id, unique within the collection, and appends t.
func (r *Repository) CreateTask(ctx context.Context, t task.Task) (task.Task, error) {
	if err := t.Validate(); err != nil {
		return task.Task{}, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	id := r.now().UnixMilli()
	if id <= r.lastID {
		id = r.lastID + 1
	}

	t.ID = id

	next := append(append([]task.Task{}, r.tasks...), t)
	if err := r.flush(ctx, next); err != nil {
		return task.Task{}, err
	}

	r.lastID = id

	return t, nil
}

// UpdateTask replaces the task stored under t.ID.
func (r *Repository) UpdateTask(ctx context.Context, t task.Task) (task.Task, error) {
	if err := t.Validate(); err != nil {
		return task.Task{}, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	idx := r.indexOf(t.ID)
	if idx < 0 {
		return task.Task{}, fmt.Errorf("%w: %d", ErrNotFound, t.ID)
	}

	next := append([]task.Task{}, r.tasks...)
	next[idx] = t

	if err := r.flush(ctx, next); err != nil {
		return task.Task{}, err
	}

	return t, nil
}

// DeleteTask removes the task with the given id.
func (r *Repository) DeleteTask(ctx context.Context, id int64) (api.Ack, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	idx := r.indexOf(id)
	if idx < 0 {
		return api.Ack{}, fmt.Errorf("%w: %d", ErrNotFound, id)
	}

	next := make([]task.Task, 0, len(r.tasks)-1)
	next = append(next, r.tasks[:idx]...)
	next = append(next, r.tasks[idx+1:]...)

	if err := r.flush(ctx, next); err != nil {
		return api.Ack{}, err
	}

	return api.Ack{Message: "Task deleted successfully"}, nil
}

func (r *Repository) indexOf(id int64) int {
	for i, t := range r.tasks {
		if t.ID == id {
			return i
		}
	}

	return -1
}

// flush writes next to the slot and only then makes it the current collection.
func (r *Repository) flush(ctx context.Context, next []task.Task) error {
	raw, err := json.Marshal(next)
	if err != nil {
		return fmt.Errorf("error encoding tasks: %w", err)
	}

	if err := r.store.Set(ctx, db.SlotTasks, string(raw)); err != nil {
		return fmt.Errorf("error saving tasks: %w", err)
	}

	r.tasks = next

	return nil
}
