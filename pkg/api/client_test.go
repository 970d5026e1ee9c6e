package api_test

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/matt-steen/taskboard/pkg/api"
	"github.com/matt-steen/taskboard/pkg/task"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type staticToken string

func (s staticToken) Token() (string, bool) {
	return string(s), s != ""
}

type recorded struct {
	method string
	path   string
	header http.Header
	body   map[string]interface{}
}

func newServer(t *testing.T, status int, response string) (*httptest.Server, *recorded) {
	t.Helper()

	rec := &recorded{}

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rec.method = r.Method
		rec.path = r.URL.Path
		rec.header = r.Header.Clone()

		raw, _ := io.ReadAll(r.Body)
		if len(raw) > 0 {
			_ = json.Unmarshal(raw, &rec.body)
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(response))
	}))

	t.Cleanup(server.Close)

	return server, rec
}

func TestListTasks(t *testing.T) {
	t.Parallel()

	assert := assert.New(t)

	server, rec := newServer(t, http.StatusOK,
		`[{"id":1,"title":"A","description":null,"status":"pending","due_date":"2026-10-01","user_id":4},
		  {"id":2,"title":"B","description":"b","status":"completed","due_date":null,"user_id":4}]`)

	client := api.NewClient(server.URL+"/", 0, staticToken("tok"))

	tasks, err := client.ListTasks(context.Background())
	require.NoError(t, err)

	assert.Equal(http.MethodGet, rec.method)
	assert.Equal("/tasks/", rec.path)
	assert.Equal("Bearer tok", rec.header.Get("Authorization"))
	assert.Equal("application/json", rec.header.Get("Content-Type"))
	assert.NotEmpty(rec.header.Get("X-Request-ID"))

	require.Len(t, tasks, 2)
	assert.Equal(int64(1), tasks[0].ID)
	assert.Equal(task.StatusPending, tasks[0].Status)
	assert.Equal(task.PriorityMedium, tasks[0].Priority)
	assert.Equal("2026-10-01", tasks[0].DueDate.String())
	assert.Equal(task.StatusCompleted, tasks[1].Status)
}

func TestListTasksEmptyCollection(t *testing.T) {
	t.Parallel()

	server, _ := newServer(t, http.StatusOK, `[]`)

	tasks, err := api.NewClient(server.URL, 0, nil).ListTasks(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, tasks)
	assert.Len(t, tasks, 0)
}

func TestListTasksRejectsUnknownStatus(t *testing.T) {
	t.Parallel()

	server, _ := newServer(t, http.StatusOK, `[{"id":1,"title":"A","status":"blocked"}]`)

	_, err := api.NewClient(server.URL, 0, nil).ListTasks(context.Background())
	assert.True(t, errors.Is(err, api.ErrRequestFailed))
	assert.True(t, errors.Is(err, task.ErrInvalidStatus))
}

func TestNoAuthorizationWithoutToken(t *testing.T) {
	t.Parallel()

	server, rec := newServer(t, http.StatusOK, `[]`)

	_, err := api.NewClient(server.URL, 0, staticToken("")).ListTasks(context.Background())
	require.NoError(t, err)
	assert.Empty(t, rec.header.Get("Authorization"))
}

func TestListTasksFailure(t *testing.T) {
	t.Parallel()

	assert := assert.New(t)

	server, _ := newServer(t, http.StatusUnauthorized, `{"detail":"Could not validate credentials"}`)

	_, err := api.NewClient(server.URL, 0, nil).ListTasks(context.Background())
	require.Error(t, err)

	assert.True(errors.Is(err, api.ErrRequestFailed))
	assert.Equal(http.StatusUnauthorized, api.StatusCode(err))
	assert.Equal("failed to fetch tasks: status 401: Could not validate credentials", err.Error())
}

func TestCreateTask(t *testing.T) {
	t.Parallel()

	assert := assert.New(t)

	server, rec := newServer(t, http.StatusOK,
		`{"id":12,"title":"new","description":"d","status":"pending","due_date":"2026-11-02","user_id":1}`)

	client := api.NewClient(server.URL, 0, staticToken("tok"))

	created, err := client.CreateTask(context.Background(), task.Task{
		Title:       "new",
		Description: "d",
		Status:      task.StatusPending,
		DueDate:     task.NewDate(2026, time.November, 2),
		Priority:    task.PriorityHigh,
	})
	require.NoError(t, err)

	assert.Equal(http.MethodPost, rec.method)
	assert.Equal("/tasks/", rec.path)
	assert.Equal("new", rec.body["title"])
	assert.Equal("2026-11-02", rec.body["due_date"])
	assert.Equal("high", rec.body["priority"])
	_, hasID := rec.body["id"]
	assert.False(hasID)

	assert.Equal(int64(12), created.ID)
}

func TestCreateTaskValidatesBeforeSending(t *testing.T) {
	t.Parallel()

	server, rec := newServer(t, http.StatusOK, `{}`)

	_, err := api.NewClient(server.URL, 0, nil).CreateTask(context.Background(), task.Task{
		Title: " ", Status: task.StatusPending, Priority: task.PriorityLow,
	})
	assert.Equal(t, task.ErrEmptyTitle, err)
	assert.Empty(t, rec.method)
}

func TestUpdateTask(t *testing.T) {
	t.Parallel()

	assert := assert.New(t)

	server, rec := newServer(t, http.StatusOK, `{"id":5,"title":"x","status":"in_progress"}`)

	updated, err := api.NewClient(server.URL, 0, nil).UpdateTask(context.Background(), task.Task{
		ID: 5, Title: "x", Status: task.StatusInProgress, Priority: task.PriorityMedium,
	})
	require.NoError(t, err)

	assert.Equal(http.MethodPut, rec.method)
	assert.Equal("/tasks/5", rec.path)
	assert.Equal("in_progress", rec.body["status"])
	assert.Nil(rec.body["due_date"])
	assert.Equal(task.StatusInProgress, updated.Status)
}

func TestUpdateTaskNotFound(t *testing.T) {
	t.Parallel()

	server, _ := newServer(t, http.StatusNotFound, `{"detail":"Task not found"}`)

	_, err := api.NewClient(server.URL, 0, nil).UpdateTask(context.Background(), task.Task{
		ID: 5, Title: "x", Status: task.StatusPending, Priority: task.PriorityMedium,
	})

	var apiErr *api.Error
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, "update task", apiErr.Op)
	assert.Equal(t, "Task not found", apiErr.Detail)
}

func TestDeleteTask(t *testing.T) {
	t.Parallel()

	assert := assert.New(t)

	server, rec := newServer(t, http.StatusOK, `{"message":"Task deleted successfully"}`)

	ack, err := api.NewClient(server.URL, 0, nil).DeleteTask(context.Background(), 8)
	require.NoError(t, err)

	assert.Equal(http.MethodDelete, rec.method)
	assert.Equal("/tasks/8", rec.path)
	assert.Equal("Task deleted successfully", ack.Message)
}

func TestDeleteTaskServerError(t *testing.T) {
	t.Parallel()

	server, _ := newServer(t, http.StatusInternalServerError, `oops`)

	_, err := api.NewClient(server.URL, 0, nil).DeleteTask(context.Background(), 8)
	assert.Equal(t, "failed to delete task: status 500: oops", err.Error())
}

func TestTransportFailure(t *testing.T) {
	t.Parallel()

	server, _ := newServer(t, http.StatusOK, `[]`)
	server.Close()

	_, err := api.NewClient(server.URL, 0, nil).ListTasks(context.Background())
	assert.True(t, errors.Is(err, api.ErrRequestFailed))
	assert.Equal(t, 0, api.StatusCode(err))
}

func TestLogin(t *testing.T) {
	t.Parallel()

	assert := assert.New(t)

	server, rec := newServer(t, http.StatusOK, `{"access_token":"jwt-here","token_type":"bearer"}`)

	token, err := api.NewClient(server.URL, 0, nil).Login(context.Background(), "ann", "secret")
	require.NoError(t, err)

	assert.Equal("/login", rec.path)
	assert.Equal("ann", rec.body["username"])
	assert.Equal("secret", rec.body["password"])
	assert.Equal("jwt-here", token)
}

func TestLoginRejected(t *testing.T) {
	t.Parallel()

	server, _ := newServer(t, http.StatusUnauthorized, `{"detail":"Invalid username or password"}`)

	_, err := api.NewClient(server.URL, 0, nil).Login(context.Background(), "ann", "bad")

	var apiErr *api.Error
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, "Invalid username or password", apiErr.Detail)
}

func TestRegister(t *testing.T) {
	t.Parallel()

	server, rec := newServer(t, http.StatusOK, `{"message":"User registered successfully"}`)

	msg, err := api.NewClient(server.URL, 0, nil).Register(context.Background(), "ann", "secret")
	require.NoError(t, err)
	assert.Equal(t, "/register", rec.path)
	assert.Equal(t, "User registered successfully", msg)
}
