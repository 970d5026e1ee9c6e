package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/matt-steen/taskboard/pkg/task"
	"github.com/rs/zerolog/log"
)

const (
	tasksPath    = "/tasks/"
	loginPath    = "/login"
	registerPath = "/register"

	requestIDHeader = "X-Request-ID"
)

// TokenSource supplies the stored bearer credential, if any.
type TokenSource interface {
	Token() (string, bool)
}

// Ack is the body returned by a successful delete.
type Ack struct {
	Message string `json:"message"`
}

// Client talks to the task collection resource. It keeps no state between calls:
// no retries, no caching.
type Client struct {
	baseURL string
	http    *http.Client
	tokens  TokenSource
}

// NewClient creates a Client for the API at baseURL. A zero timeout leaves the
// transport default in place. tokens may be nil for unauthenticated calls.
func NewClient(baseURL string, timeout time.Duration, tokens TokenSource) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: timeout},
		tokens:  tokens,
	}
}

// taskPayload is a Task without its identifier, as sent on create and update.
type taskPayload struct {
	Title       string        `json:"title"`
	Description string        `json:"description"`
	Status      task.Status   `json:"status"`
	DueDate     task.Date     `json:"due_date"`
	Priority    task.Priority `json:"priority"`
}

func payloadOf(t task.Task) taskPayload {
	return taskPayload{
		Title:       t.Title,
		Description: t.Description,
		Status:      t.Status,
		DueDate:     t.DueDate,
		Priority:    t.Priority,
	}
}

// ListTasks returns the caller's tasks in server order.
func (c *Client) ListTasks(ctx context.Context) ([]task.Task, error) {
	var tasks []task.Task

	if err := c.do(ctx, "fetch tasks", http.MethodGet, tasksPath, nil, &tasks); err != nil {
		return nil, err
	}

	if tasks == nil {
		tasks = []task.Task{}
	}

	return tasks, nil
}

// CreateTask sends t without its ID and returns the stored task.
func (c *Client) CreateTask(ctx context.Context, t task.Task) (task.Task, error) {
	if err := t.Validate(); err != nil {
		return task.Task{}, err
	}

	var created task.Task

	if err := c.do(ctx, "create task", http.MethodPost, tasksPath, payloadOf(t), &created); err != nil {
		return task.Task{}, err
	}

	return created, nil
}

// UpdateTask replaces the full record stored under t.ID.
func (c *Client) UpdateTask(ctx context.Context, t task.Task) (task.Task, error) {
	if err := t.Validate(); err != nil {
		return task.Task{}, err
	}

	var updated task.Task

	if err := c.do(ctx, "update task", http.MethodPut, taskPath(t.ID), payloadOf(t), &updated); err != nil {
		return task.Task{}, err
	}

	return updated, nil
}

// DeleteTask removes the task with the given id.
func (c *Client) DeleteTask(ctx context.Context, id int64) (Ack, error) {
	var ack Ack

	if err := c.do(ctx, "delete task", http.MethodDelete, taskPath(id), nil, &ack); err != nil {
		return Ack{}, err
	}

	return ack, nil
}

type credentials struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// Login exchanges a username and password for an access token.
func (c *Client) Login(ctx context.Context, username, password string) (string, error) {
	var token struct {
		AccessToken string `json:"access_token"`
		TokenType   string `json:"token_type"`
	}

	err := c.do(ctx, "log in", http.MethodPost, loginPath, credentials{username, password}, &token)
	if err != nil {
		return "", err
	}

	if token.AccessToken == "" {
		return "", &Error{Op: "log in", Detail: "no access token in response"}
	}

	return token.AccessToken, nil
}

// Register creates a user account and returns the server's message.
func (c *Client) Register(ctx context.Context, username, password string) (string, error) {
	var ack Ack

	if err := c.do(ctx, "register", http.MethodPost, registerPath, credentials{username, password}, &ack); err != nil {
		return "", err
	}

	return ack.Message, nil
}

func taskPath(id int64) string {
	return tasksPath + strconv.FormatInt(id, 10)
}

func (c *Client) do(ctx context.Context, op, method, path string, in, out interface{}) error {
	var body io.Reader

	if in != nil {
		raw, err := json.Marshal(in)
		if err != nil {
			return &Error{Op: op, Err: fmt.Errorf("error encoding request: %w", err)}
		}

		body = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return &Error{Op: op, Err: err}
	}

	requestID := uuid.NewString()

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(requestIDHeader, requestID)

	if c.tokens != nil {
		if token, ok := c.tokens.Token(); ok && token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}
	}

	logger := log.With().
		Str("request_id", requestID).
		Str("method", method).
		Str("path", path).
		Logger()

	start := time.Now()

	resp, err := c.http.Do(req)
	if err != nil {
		logger.Warn().Err(err).Msgf("%s failed", op)

		return &Error{Op: op, Err: err}
	}
	defer resp.Body.Close()

	logger.Debug().
		Int("status", resp.StatusCode).
		Dur("duration", time.Since(start)).
		Msg(op)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &Error{Op: op, StatusCode: resp.StatusCode, Detail: readDetail(resp.Body)}
	}

	if out == nil {
		return nil
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return &Error{Op: op, StatusCode: resp.StatusCode, Err: fmt.Errorf("error decoding response: %w", err)}
	}

	return nil
}
