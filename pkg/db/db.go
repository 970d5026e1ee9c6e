package db

import (
	"context"
	"database/sql"
	_ "embed"
	"fmt"
	"sync"
	"time"

	// use the sqlite db driver.
	_ "github.com/mattn/go-sqlite3"
)

// These constants name the slots used by the app.
const (
	// SlotToken holds the bearer credential.
	SlotToken = "token"
	// SlotTasks holds the serialized task collection used by the offline board.
	SlotTasks = "tasks"
)

//go:embed base.sql
var baseSQL string

// Database is a string-keyed slot store. Every slot is loaded into memory when the
// database is opened; writes go to sqlite first and then to the in-memory copy.
type Database struct {
	conn  *sql.DB
	mu    sync.RWMutex
	slots map[string]string
}

// NewDatabase connects to the sqlite database at the given filename, initializes the structure
// if not present, and loads existing slots into memory.
func NewDatabase(ctx context.Context, filename string) (*Database, error) {
	conn, err := sql.Open("sqlite3", filename)
	if err != nil {
		return nil, fmt.Errorf("error connecting to sqlite db at %s: %w", filename, err)
	}

	database := Database{
		conn:  conn,
		slots: map[string]string{},
	}

	err = database.initialize(ctx)
	if err != nil {
		conn.Close()

		return nil, err
	}

	err = database.loadSlots(ctx)
	if err != nil {
		conn.Close()

		return nil, err
	}

	return &database, nil
}

func (d *Database) initialize(ctx context.Context) error {
	// run idempotent setup sql to create empty tables if they don't exist
	if _, err := d.conn.ExecContext(ctx, baseSQL); err != nil {
		return fmt.Errorf("error running base sql: %w", err)
	}

	return nil
}

// Close closes the database connection.
func (d *Database) Close() error {
	return d.conn.Close()
}

func (d *Database) loadSlots(ctx context.Context) error {
	rows, err := d.conn.QueryContext(ctx, `SELECT key, value FROM slot`)
	if err != nil {
		return fmt.Errorf("error loading slots: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var key, value string

		if err = rows.Scan(&key, &value); err != nil {
			return fmt.Errorf("error scanning slot: %w", err)
		}

		d.slots[key] = value
	}

	if err = rows.Err(); err != nil {
		return fmt.Errorf("error scanning slots: %w", err)
	}

	return nil
}

// Get returns the value stored under key and whether the slot exists.
func (d *Database) Get(key string) (string, bool) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	value, ok := d.slots[key]

	return value, ok
}

// Set replaces the value stored under key.
func (d *Database) Set(ctx context.Context, key, value string) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	_, err := d.conn.ExecContext(
		ctx,
		`INSERT INTO slot (key, value, updated_datetime) VALUES ($1, $2, $3)
		     ON CONFLICT (key) DO UPDATE SET value = excluded.value, updated_datetime = excluded.updated_datetime`,
		key, value, time.Now(),
	)
	if err != nil {
		return fmt.Errorf("error writing slot '%s': %w", key, err)
	}

	d.slots[key] = value

	return nil
}

// Remove deletes the slot. Removing a missing slot is not an error.
func (d *Database) Remove(ctx context.Context, key string) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if _, err := d.conn.ExecContext(ctx, `DELETE FROM slot WHERE key = $1`, key); err != nil {
		return fmt.Errorf("error removing slot '%s': %w", key, err)
	}

	delete(d.slots, key)

	return nil
}
