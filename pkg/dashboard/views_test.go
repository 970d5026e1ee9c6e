package dashboard

import (
	"testing"
	"time"

	"github.com/matt-steen/taskboard/pkg/task"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func board(t *testing.T) *Dashboard {
	t.Helper()

	milk := pending(1, "Buy milk")
	milk.Description = "From the corner shop"

	report := pending(2, "Write report")
	report.Status = task.StatusInProgress
	report.DueDate = task.NewDate(2026, time.October, 19)

	taxes := pending(3, "Taxes")
	taxes.Description = "MILK the deductions"
	taxes.Status = task.StatusCompleted
	taxes.DueDate = task.NewDate(2026, time.January, 1)

	bread := pending(4, "Bread")
	bread.DueDate = task.NewDate(2026, time.October, 2)

	d, _, _ := loaded(t, milk, report, taxes, bread)

	return d
}

func ids(tasks []task.Task) []int64 {
	out := []int64{}
	for _, t := range tasks {
		out = append(out, t.ID)
	}

	return out
}

func TestColumnsPartitionByStatus(t *testing.T) {
	t.Parallel()

	assert := assert.New(t)

	d := board(t)

	assert.Equal([]int64{1, 4}, ids(d.Column(task.StatusPending)))
	assert.Equal([]int64{2}, ids(d.Column(task.StatusInProgress)))
	assert.Equal([]int64{3}, ids(d.Column(task.StatusCompleted)))
}

func TestColumnSearchIsCaseInsensitiveOverTitleAndDescription(t *testing.T) {
	t.Parallel()

	assert := assert.New(t)

	d := board(t)
	d.SetSearch("milk")

	assert.Equal([]int64{1}, ids(d.Column(task.StatusPending)))
	assert.Empty(d.Column(task.StatusInProgress))
	assert.Equal([]int64{3}, ids(d.Column(task.StatusCompleted)))

	d.SetSearch("REPORT")
	assert.Equal([]int64{2}, ids(d.Column(task.StatusInProgress)))
}

func TestColumnHonoursGlobalFilter(t *testing.T) {
	t.Parallel()

	assert := assert.New(t)

	d := board(t)
	d.SetFilter(Filter(task.StatusInProgress))

	assert.Empty(d.Column(task.StatusPending))
	assert.Equal([]int64{2}, ids(d.Column(task.StatusInProgress)))
	assert.Empty(d.Column(task.StatusCompleted))

	d.SetFilter(FilterAll)
	assert.Len(d.Column(task.StatusPending), 2)
}

func TestInsights(t *testing.T) {
	t.Parallel()

	assert := assert.New(t)

	d := board(t)
	d.SetSearch("nothing matches this")

	insights := d.Insights(now)

	assert.Equal(4, insights.Total)
	assert.Equal(1, insights.Completed)
	assert.Equal(1, insights.DueToday)
	assert.Equal(1, insights.Overdue)
	assert.Equal(map[task.Status]int{
		task.StatusPending:    2,
		task.StatusInProgress: 1,
		task.StatusCompleted:  1,
	}, insights.ByStatus)
}

func TestFilterCycle(t *testing.T) {
	t.Parallel()

	assert := assert.New(t)

	f := FilterAll
	seen := []Filter{}

	for i := 0; i < 4; i++ {
		seen = append(seen, f)
		f = f.Next()
	}

	assert.Equal(Filters(), seen)
	assert.Equal(FilterAll, f)
}

func TestParseFilter(t *testing.T) {
	t.Parallel()

	f, err := ParseFilter("all")
	require.NoError(t, err)
	assert.Equal(t, FilterAll, f)

	f, err = ParseFilter("completed")
	require.NoError(t, err)
	assert.Equal(t, Filter(task.StatusCompleted), f)

	_, err = ParseFilter("archived")
	assert.NotNil(t, err)
}
