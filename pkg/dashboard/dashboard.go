package dashboard

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/matt-steen/taskboard/pkg/api"
	"github.com/matt-steen/taskboard/pkg/task"
	"github.com/rs/zerolog/log"
)

var (
	ErrUnknownTask     = errors.New("dashboard: no task with that id")
	ErrNoPendingDelete = errors.New("dashboard: no delete to confirm")
)

// Repository persists tasks. api.Client and local.Repository both satisfy it.
type Repository interface {
	ListTasks(ctx context.Context) ([]task.Task, error)
	CreateTask(ctx context.Context, t task.Task) (task.Task, error)
	UpdateTask(ctx context.Context, t task.Task) (task.Task, error)
	DeleteTask(ctx context.Context, id int64) (api.Ack, error)
}

// Dashboard owns the in-memory task collection and the form state.
//
// The collection is replaced by Load and afterwards only patched with the results of
// successful repository calls; it is never re-fetched after a write and never changed
// before a call succeeds. The lock is not held while a call is outstanding, so the view
// can keep rendering. The busy flag is advisory: it tells the view to disable its
// controls but does not stop programmatic calls.
type Dashboard struct {
	repo   Repository
	notify Notifier
	now    func() time.Time

	mu             sync.Mutex
	tasks          []task.Task
	draft          task.Draft
	editID         int64
	editing        bool
	search         string
	filter         Filter
	busy           bool
	deleteID       int64
	deletePending  bool
	celebrateUntil time.Time
}

// New creates a Dashboard with an empty collection. Call Load to fill it.
func New(repo Repository, notify Notifier) *Dashboard {
	if notify == nil {
		notify = NotifierFunc(func(Notice) {})
	}

	return &Dashboard{
		repo:   repo,
		notify: notify,
		now:    time.Now,
		tasks:  []task.Task{},
		draft:  task.EmptyDraft(),
		filter: FilterAll,
	}
}

// Load replaces the collection with the repository's and warns about overdue tasks.
func (d *Dashboard) Load(ctx context.Context) error {
	d.setBusy(true)

	tasks, err := d.repo.ListTasks(ctx)
	if err != nil {
		d.fail(err, "Failed to load tasks.")

		return err
	}

	tasks = uniqueByID(tasks)
	now := d.now()

	d.mu.Lock()
	d.tasks = tasks
	d.busy = false
	d.mu.Unlock()

	log.Info().Int("count", len(tasks)).Msg("loaded tasks")

	for _, t := range tasks {
		if t.Overdue(now) {
			d.notify.Notify(Notice{Level: LevelWarning, Message: fmt.Sprintf("Task \"%s\" is overdue!", t.Title)})
		}
	}

	return nil
}

// Submit creates a task from the draft, or updates the task being edited. An empty
// title is rejected before anything is sent.
func (d *Dashboard) Submit(ctx context.Context) error {
	d.mu.Lock()
	draft := d.draft
	editID, editing := d.editID, d.editing

	if strings.TrimSpace(draft.Title) == "" {
		d.mu.Unlock()
		d.notify.Notify(Notice{Level: LevelWarning, Message: "Task title cannot be empty!"})

		return task.ErrEmptyTitle
	}

	d.busy = true
	d.mu.Unlock()

	var (
		saved task.Task
		err   error
	)

	if editing {
		saved, err = d.repo.UpdateTask(ctx, draft.Task(editID))
	} else {
		saved, err = d.repo.CreateTask(ctx, draft.Task(0))
	}

	if err != nil {
		d.fail(err, "Failed to save task.")

		return err
	}

	d.mu.Lock()

	if editing {
		d.replace(editID, saved)
	} else if !d.replace(saved.ID, saved) {
		d.tasks = append(d.tasks, saved)
	}

	d.draft = task.EmptyDraft()
	d.editID, d.editing = 0, false
	d.busy = false
	d.mu.Unlock()

	msg := "Task added successfully!"
	if editing {
		msg = "Task updated successfully!"
	}

	log.Debug().Int64("id", saved.ID).Bool("edit", editing).Msg("saved task")
	d.notify.Notify(Notice{Level: LevelSuccess, Message: msg})

	return nil
}

// BeginEdit loads the task into the draft and makes it the edit target.
func (d *Dashboard) BeginEdit(id int64) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	t, ok := d.find(id)
	if !ok {
		return fmt.Errorf("%w: %d", ErrUnknownTask, id)
	}

	d.draft = task.DraftOf(t)
	d.editID, d.editing = id, true

	return nil
}

// CancelEdit clears the draft and the edit target.
func (d *Dashboard) CancelEdit() {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.draft = task.EmptyDraft()
	d.editID, d.editing = 0, false
}

// CycleStatus moves the task to the next status in the pending, in_progress, completed rotation.
func (d *Dashboard) CycleStatus(ctx context.Context, id int64) error {
	d.mu.Lock()
	t, ok := d.find(id)
	d.mu.Unlock()

	if !ok {
		return fmt.Errorf("%w: %d", ErrUnknownTask, id)
	}

	next := t.Status.Next()

	return d.changeStatus(ctx, t, next, fmt.Sprintf("Task status changed to %s.", next.Label()))
}

// Relocate moves the task to status. Moving a task to the status it already has does nothing.
func (d *Dashboard) Relocate(ctx context.Context, id int64, status task.Status) error {
	if !status.IsValid() {
		return fmt.Errorf("%w: %q", task.ErrInvalidStatus, status)
	}

	d.mu.Lock()
	t, ok := d.find(id)
	d.mu.Unlock()

	if !ok {
		return fmt.Errorf("%w: %d", ErrUnknownTask, id)
	}

	if t.Status == status {
		return nil
	}

	return d.changeStatus(ctx, t, status, fmt.Sprintf("Task moved to %s.", status.Label()))
}

// changeStatus persists t with the new status and applies it once the update succeeds.
func (d *Dashboard) changeStatus(ctx context.Context, t task.Task, status task.Status, msg string) error {
	updated := t.WithStatus(status)

	d.setBusy(true)

	if _, err := d.repo.UpdateTask(ctx, updated); err != nil {
		d.fail(err, "Failed to update task status.")

		return err
	}

	d.mu.Lock()
	d.replace(t.ID, updated)
	d.busy = false

	if status == task.StatusCompleted {
		d.celebrateUntil = d.now().Add(CelebrationWindow)
	}
	d.mu.Unlock()

	log.Debug().Int64("id", t.ID).Str("from", string(t.Status)).Str("to", string(status)).Msg("changed status")

	if status == task.StatusCompleted {
		d.notify.Notify(Notice{Level: LevelSuccess, Message: "Task marked as completed!"})
	} else {
		d.notify.Notify(Notice{Level: LevelInfo, Message: msg})
	}

	return nil
}

// RequestDelete marks id for deletion; nothing is sent until ConfirmDelete.
func (d *Dashboard) RequestDelete(id int64) {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.deleteID, d.deletePending = id, true
}

// CancelDelete forgets the pending delete without contacting the repository.
func (d *Dashboard) CancelDelete() {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.deleteID, d.deletePending = 0, false
}

// ConfirmDelete deletes the pending task and removes it from the collection on success.
// On failure the delete stays pending so it can be retried or cancelled.
func (d *Dashboard) ConfirmDelete(ctx context.Context) error {
	d.mu.Lock()
	id, pending := d.deleteID, d.deletePending

	if !pending {
		d.mu.Unlock()

		return ErrNoPendingDelete
	}

	d.busy = true
	d.mu.Unlock()

	if _, err := d.repo.DeleteTask(ctx, id); err != nil {
		d.fail(err, "Failed to delete task.")

		return err
	}

	d.mu.Lock()
	d.remove(id)
	d.deleteID, d.deletePending = 0, false

	if d.editing && d.editID == id {
		d.draft = task.EmptyDraft()
		d.editID, d.editing = 0, false
	}

	d.busy = false
	d.mu.Unlock()

	log.Debug().Int64("id", id).Msg("deleted task")
	d.notify.Notify(Notice{Level: LevelSuccess, Message: "Task deleted successfully!"})

	return nil
}

// Reset returns the dashboard to its state before Load, e.g. after logging out.
func (d *Dashboard) Reset() {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.tasks = []task.Task{}
	d.draft = task.EmptyDraft()
	d.editID, d.editing = 0, false
	d.search = ""
	d.filter = FilterAll
	d.deleteID, d.deletePending = 0, false
	d.celebrateUntil = time.Time{}
}

// Tasks returns a copy of the collection.
func (d *Dashboard) Tasks() []task.Task {
	d.mu.Lock()
	defer d.mu.Unlock()

	out := make([]task.Task, len(d.tasks))
	copy(out, d.tasks)

	return out
}

// Task returns the task with the given id.
func (d *Dashboard) Task(id int64) (task.Task, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()

	return d.find(id)
}

func (d *Dashboard) Draft() task.Draft {
	d.mu.Lock()
	defer d.mu.Unlock()

	return d.draft
}

func (d *Dashboard) SetDraft(draft task.Draft) {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.draft = draft
}

// Editing returns the edit target, if any.
func (d *Dashboard) Editing() (int64, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()

	return d.editID, d.editing
}

func (d *Dashboard) Search() string {
	d.mu.Lock()
	defer d.mu.Unlock()

	return d.search
}

func (d *Dashboard) SetSearch(search string) {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.search = search
}

func (d *Dashboard) Filter() Filter {
	d.mu.Lock()
	defer d.mu.Unlock()

	return d.filter
}

func (d *Dashboard) SetFilter(filter Filter) {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.filter = filter
}

// Busy reports whether a repository call is outstanding.
func (d *Dashboard) Busy() bool {
	d.mu.Lock()
	defer d.mu.Unlock()

	return d.busy
}

// PendingDelete returns the id awaiting confirmation, if any.
func (d *Dashboard) PendingDelete() (int64, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()

	return d.deleteID, d.deletePending
}

// Celebrating reports whether now falls in the window after a task was completed.
func (d *Dashboard) Celebrating(now time.Time) bool {
	d.mu.Lock()
	defer d.mu.Unlock()

	return now.Before(d.celebrateUntil)
}

func (d *Dashboard) setBusy(busy bool) {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.busy = busy
}

// fail clears the busy flag and reports err; the collection is left as it was.
func (d *Dashboard) fail(err error, msg string) {
	d.setBusy(false)

	log.Warn().Err(err).Msg(msg)
	d.notify.Notify(Notice{Level: LevelError, Message: msg})
}

// find must be called with the lock held.
func (d *Dashboard) find(id int64) (task.Task, bool) {
	for _, t := range d.tasks {
		if t.ID == id {
			return t, true
		}
	}

	return task.Task{}, false
}

// replace must be called with the lock held.
func (d *Dashboard) replace(id int64, t task.Task) bool {
	for i := range d.tasks {
		if d.tasks[i].ID == id {
			d.tasks[i] = t

			return true
		}
	}

	return false
}

// remove must be called with the lock held.
func (d *Dashboard) remove(id int64) {
	kept := d.tasks[:0]

	for _, t := range d.tasks {
		if t.ID != id {
			kept = append(kept, t)
		}
	}

	d.tasks = kept
}

func uniqueByID(tasks []task.Task) []task.Task {
	seen := map[int64]bool{}
	out := make([]task.Task, 0, len(tasks))

	for _, t := range tasks {
		if seen[t.ID] {
			log.Warn().Int64("id", t.ID).Msg("ignoring duplicate task id")

			continue
		}

		seen[t.ID] = true
		out = append(out, t)
	}

	return out
}
