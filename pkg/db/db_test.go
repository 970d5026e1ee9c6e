package db_test

import (
	"context"
	"os"
	"testing"

	"github.com/matt-steen/taskboard/pkg/db"
	"github.com/stretchr/testify/assert"
)

func getDB(t *testing.T, assert *assert.Assertions) (*db.Database, string) {
	t.Helper()

	tempFile, err := os.CreateTemp(t.TempDir(), "test_new_database*.sqlite")
	assert.Nil(err)
	tempFile.Close()

	database, err := db.NewDatabase(context.Background(), tempFile.Name())
	assert.NotNil(database)
	assert.Nil(err)

	t.Cleanup(func() { database.Close() })

	return database, tempFile.Name()
}

func TestNewDatabaseBadFile(t *testing.T) {
	t.Parallel()

	assert := assert.New(t)

	database, err := db.NewDatabase(context.Background(), "/alwfkjasfd/asdflkjdsal.sqlite")
	assert.Nil(database)
	assert.NotNil(err)
	assert.Equal("error running base sql: unable to open database file: no such file or directory", err.Error())
}

func TestNewDatabaseEmpty(t *testing.T) {
	t.Parallel()

	assert := assert.New(t)

	database, _ := getDB(t, assert)

	_, ok := database.Get(db.SlotToken)
	assert.False(ok)
}

func TestSetAndGet(t *testing.T) {
	t.Parallel()

	assert := assert.New(t)

	database, _ := getDB(t, assert)

	err := database.Set(context.Background(), db.SlotToken, "abc")
	assert.Nil(err)

	value, ok := database.Get(db.SlotToken)
	assert.True(ok)
	assert.Equal("abc", value)

	err = database.Set(context.Background(), db.SlotToken, "def")
	assert.Nil(err)

	value, _ = database.Get(db.SlotToken)
	assert.Equal("def", value)
}

func TestRemove(t *testing.T) {
	t.Parallel()

	assert := assert.New(t)

	database, _ := getDB(t, assert)

	assert.Nil(database.Set(context.Background(), db.SlotToken, "abc"))
	assert.Nil(database.Remove(context.Background(), db.SlotToken))

	_, ok := database.Get(db.SlotToken)
	assert.False(ok)

	// removing twice is fine
	assert.Nil(database.Remove(context.Background(), db.SlotToken))
}

func TestSlotsSurviveReopen(t *testing.T) {
	t.Parallel()

	assert := assert.New(t)

	database, filename := getDB(t, assert)

	assert.Nil(database.Set(context.Background(), db.SlotToken, "abc"))
	assert.Nil(database.Set(context.Background(), db.SlotTasks, `[{"id":1}]`))
	assert.Nil(database.Close())

	database2, err := db.NewDatabase(context.Background(), filename)
	assert.Nil(err)

	defer database2.Close()

	value, ok := database2.Get(db.SlotToken)
	assert.True(ok)
	assert.Equal("abc", value)

	value, ok = database2.Get(db.SlotTasks)
	assert.True(ok)
	assert.Equal(`[{"id":1}]`, value)
}
