package dashboard

import (
	"fmt"
	"time"

	"github.com/matt-steen/taskboard/pkg/task"
)

// Filter restricts every column to one status, or to none with FilterAll.
type Filter string

const FilterAll Filter = "all"

// Filters lists the filter values in the order the view cycles through them.
func Filters() []Filter {
	filters := []Filter{FilterAll}
	for _, status := range task.Statuses() {
		filters = append(filters, Filter(status))
	}

	return filters
}

// ParseFilter accepts "all" or a status name.
func ParseFilter(s string) (Filter, error) {
	if Filter(s) == FilterAll {
		return FilterAll, nil
	}

	status, err := task.ParseStatus(s)
	if err != nil {
		return "", fmt.Errorf("invalid filter: %w", err)
	}

	return Filter(status), nil
}

// Next returns the filter after f in Filters order.
func (f Filter) Next() Filter {
	filters := Filters()
	for i, candidate := range filters {
		if candidate == f {
			return filters[(i+1)%len(filters)]
		}
	}

	return FilterAll
}

// Allows reports whether a task with the given status passes the filter.
func (f Filter) Allows(status task.Status) bool {
	return f == FilterAll || task.Status(f) == status
}

// Insights are the counts shown in the insights panel.
type Insights struct {
	Total     int
	Completed int
	DueToday  int
	Overdue   int
	ByStatus  map[task.Status]int
}

// Column returns the tasks shown in the column for status, in collection order:
// the status matches, the search text matches and the global filter allows it.
func (d *Dashboard) Column(status task.Status) []task.Task {
	d.mu.Lock()
	defer d.mu.Unlock()

	out := []task.Task{}

	for _, t := range d.tasks {
		if t.Status == status && t.Matches(d.search) && d.filter.Allows(t.Status) {
			out = append(out, t)
		}
	}

	return out
}

// Insights counts the whole collection, ignoring search and filter.
func (d *Dashboard) Insights(now time.Time) Insights {
	d.mu.Lock()
	defer d.mu.Unlock()

	insights := Insights{
		Total:    len(d.tasks),
		ByStatus: map[task.Status]int{},
	}

	for _, status := range task.Statuses() {
		insights.ByStatus[status] = 0
	}

	for _, t := range d.tasks {
		insights.ByStatus[t.Status]++

		if t.Status == task.StatusCompleted {
			insights.Completed++
		}

		if t.DueOn(now) {
			insights.DueToday++
		}

		if t.Overdue(now) {
			insights.Overdue++
		}
	}

	return insights
}
