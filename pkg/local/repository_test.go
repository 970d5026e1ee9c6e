package local

import (
	"context"
	"errors"
	"os"
	"testing"
	"time"

	"github.com/matt-steen/taskboard/pkg/db"
	"github.com/matt-steen/taskboard/pkg/task"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func getDB(t *testing.T) (*db.Database, string) {
	t.Helper()

	tempFile, err := os.CreateTemp(t.TempDir(), "test_local_repository*.sqlite")
	require.NoError(t, err)
	tempFile.Close()

	database, err := db.NewDatabase(context.Background(), tempFile.Name())
	require.NoError(t, err)

	t.Cleanup(func() { database.Close() })

	return database, tempFile.Name()
}

func fixedClock(ms int64) func() time.Time {
	return func() time.Time { return time.UnixMilli(ms) }
}

func newTask(title string) task.Task {
	return task.Task{Title: title, Status: task.StatusPending, Priority: task.PriorityMedium}
}

func TestEmptyRepository(t *testing.T) {
	t.Parallel()

	database, _ := getDB(t)

	repo, err := NewRepository(database)
	require.NoError(t, err)

	tasks, err := repo.ListTasks(context.Background())
	assert.Nil(t, err)
	assert.Len(t, tasks, 0)
}

func TestCreateAssignsUniqueTimestampIDs(t *testing.T) {
	t.Parallel()

	assert := assert.New(t)

	database, _ := getDB(t)

	repo, err := NewRepository(database)
	require.NoError(t, err)

	repo.now = fixedClock(1000)

	first, err := repo.CreateTask(context.Background(), newTask("first"))
	require.NoError(t, err)

	second, err := repo.CreateTask(context.Background(), newTask("second"))
	require.NoError(t, err)

	assert.Equal(int64(1000), first.ID)
	assert.Equal(int64(1001), second.ID)

	tasks, _ := repo.ListTasks(context.Background())
	assert.Equal([]task.Task{first, second}, tasks)
}

func TestCollectionSurvivesReopen(t *testing.T) {
	t.Parallel()

	assert := assert.New(t)

	database, filename := getDB(t)

	repo, err := NewRepository(database)
	require.NoError(t, err)

	created, err := repo.CreateTask(context.Background(), newTask("persist me"))
	require.NoError(t, err)

	created.Status = task.StatusCompleted
	_, err = repo.UpdateTask(context.Background(), created)
	require.NoError(t, err)
	require.NoError(t, database.Close())

	database2, err := db.NewDatabase(context.Background(), filename)
	require.NoError(t, err)

	defer database2.Close()

	repo2, err := NewRepository(database2)
	require.NoError(t, err)

	tasks, _ := repo2.ListTasks(context.Background())
	require.Len(t, tasks, 1)
	assert.Equal(created, tasks[0])

	// new ids keep increasing past the stored ones
	repo2.now = fixedClock(1)
	next, err := repo2.CreateTask(context.Background(), newTask("later"))
	require.NoError(t, err)
	assert.Equal(created.ID+1, next.ID)
}

func TestUpdateAndDeleteUnknownID(t *testing.T) {
	t.Parallel()

	database, _ := getDB(t)

	repo, err := NewRepository(database)
	require.NoError(t, err)

	missing := newTask("ghost")
	missing.ID = 42

	_, err = repo.UpdateTask(context.Background(), missing)
	assert.True(t, errors.Is(err, ErrNotFound))

	_, err = repo.DeleteTask(context.Background(), 42)
	assert.True(t, errors.Is(err, ErrNotFound))
}

func TestDelete(t *testing.T) {
	t.Parallel()

	assert := assert.New(t)

	database, _ := getDB(t)

	repo, err := NewRepository(database)
	require.NoError(t, err)

	repo.now = fixedClock(5)

	a, _ := repo.CreateTask(context.Background(), newTask("a"))
	b, _ := repo.CreateTask(context.Background(), newTask("b"))
	c, _ := repo.CreateTask(context.Background(), newTask("c"))

	ack, err := repo.DeleteTask(context.Background(), b.ID)
	require.NoError(t, err)
	assert.Equal("Task deleted successfully", ack.Message)

	tasks, _ := repo.ListTasks(context.Background())
	assert.Equal([]task.Task{a, c}, tasks)

	raw, ok := database.Get(db.SlotTasks)
	assert.True(ok)
	assert.NotContains(raw, `"title":"b"`)
}

type failingStore struct {
	value string
}

func (f *failingStore) Get(string) (string, bool) { return f.value, f.value != "" }

func (f *failingStore) Set(context.Context, string, string) error { return errors.New("disk full") }

func TestFailedFlushLeavesCollectionUnchanged(t *testing.T) {
	t.Parallel()

	store := &failingStore{value: `[{"id":1,"title":"kept","status":"pending"}]`}

	repo, err := NewRepository(store)
	require.NoError(t, err)

	_, err = repo.CreateTask(context.Background(), newTask("lost"))
	assert.NotNil(t, err)

	_, err = repo.DeleteTask(context.Background(), 1)
	assert.NotNil(t, err)

	tasks, _ := repo.ListTasks(context.Background())
	require.Len(t, tasks, 1)
	assert.Equal(t, "kept", tasks[0].Title)
	assert.Equal(t, task.PriorityMedium, tasks[0].Priority)
}

func TestCorruptSlot(t *testing.T) {
	t.Parallel()

	_, err := NewRepository(&failingStore{value: `{not json`})
	assert.NotNil(t, err)
}
