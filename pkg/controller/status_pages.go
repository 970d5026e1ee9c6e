package controller

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/matt-steen/taskboard/pkg/task"
	"github.com/rivo/tview"
	"github.com/rs/zerolog/log"
)

func (c *Controller) getBoardGrid() *tview.Grid {
	c.header = tview.NewTable().SetBorders(false).SetSelectable(false, false)

	c.search = tview.NewInputField().SetLabel("Search: ").SetFieldWidth(0)
	c.search.SetDoneFunc(func(key tcell.Key) {
		if key == tcell.KeyEscape {
			c.search.SetText(c.board.Search())
		}

		c.board.SetSearch(c.search.GetText())
		c.focusColumn(c.focused)
		c.app.SetInputCapture(c.keyboard)
		c.refresh()
	})

	grid := tview.NewGrid().SetBorders(true).SetRows(0, 1, -4)

	grid.AddItem(c.header, 0, 0, 1, len(c.columns), 0, 0, false)
	grid.AddItem(c.search, 1, 0, 1, len(c.columns), 0, 0, false)

	for i, status := range c.columns {
		c.statusTables[status] = c.getTable(status, i)
		grid.AddItem(c.statusTables[status], 2, i, 1, 1, 0, 0, i == 0)
	}

	return grid
}

// updateHeader shows the user, the active filter and the shortcuts. Shortcuts are split
// into "Move to <status>" keys and everything else, each column sorted alphabetically.
func (c *Controller) updateHeader() {
	c.header.Clear()

	state := fmt.Sprintf("[yellow]%s[white]  filter: %s", tview.Escape(c.username), c.board.Filter())
	if c.board.Busy() {
		state += "  [orange]working..."
	}

	if c.board.Celebrating(time.Now()) {
		state += "  [green::b]*** Task completed! ***"
	}

	c.header.SetCell(0, 0, tview.NewTableCell(state))

	shortcuts := map[int][]string{
		0: {},
		1: {},
	}

	for key, event := range c.events {
		text := fmt.Sprintf("[orange]<%s>[white] %s", keyName(key), event.Description)

		if strings.HasPrefix(event.Description, "Move") {
			shortcuts[1] = append(shortcuts[1], text)
		} else {
			shortcuts[0] = append(shortcuts[0], text)
		}
	}

	for col := 0; col < 2; col++ {
		sort.Strings(shortcuts[col])
	}

	// misc shortcuts are spread over the first columns, moves go in the last one
	perCol := (len(shortcuts[0]) + 2) / 3
	for i, text := range shortcuts[0] {
		c.header.SetCell(1+i%perCol, i/perCol, tview.NewTableCell(text).SetExpansion(1))
	}

	for i, text := range shortcuts[1] {
		c.header.SetCell(1+i, 3, tview.NewTableCell(text).SetExpansion(1))
	}
}

func (c *Controller) getTable(status task.Status, col int) *tview.Table {
	table := tview.NewTable().SetBorders(false)

	table.SetTitle(fmt.Sprintf(" %s ", columnTitle(status)))
	table.SetContent(&StatusContent{})
	table.SetSelectable(true, false)
	table.SetFixed(1, 0)

	table.SetSelectionChangedFunc(func(row, _ int) {
		if c.focused == col {
			c.setCurrentRow(row)
		}
	})

	return table
}

// columnTitle turns in_progress into "In Progress".
func columnTitle(status task.Status) string {
	words := strings.Fields(status.Label())
	for i, w := range words {
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}

	return strings.Join(words, " ")
}

func (c *Controller) getTaskForRow(status task.Status, row int) (task.Task, bool) {
	tasks := c.columnTasks[status]

	// adjust for the header row
	if idx := row - 1; idx < len(tasks) && idx >= 0 {
		return tasks[idx], true
	}

	return task.Task{}, false
}

// when the row selection changes, update the selected task.
func (c *Controller) setCurrentRow(row int) {
	t, ok := c.getTaskForRow(c.selectedStatus, row)
	c.setSelectedTask(row, t, ok)
}

func (c *Controller) setSelectedTask(row int, t task.Task, ok bool) {
	c.selectedID, c.hasSelection = t.ID, ok

	title := "nil"
	if ok {
		title = t.Title
	}

	log.Debug().
		Str("selectedStatus", string(c.selectedStatus)).
		Int("row", row).
		Msgf("setting selected task to '%s'", title)
}

// refresh redraws every column from the dashboard and keeps the selection in range.
func (c *Controller) refresh() {
	today := task.DateOf(time.Now())

	for _, status := range c.columns {
		table := c.statusTables[status]
		tasks := c.board.Column(status)
		c.columnTasks[status] = tasks

		table.SetContent(&StatusContent{tasks: tasks, today: today})
		table.SetTitle(fmt.Sprintf(" %s (%d) ", columnTitle(status), len(tasks)))

		row, _ := table.GetSelection()
		if row > len(tasks) {
			row = len(tasks)
		}

		if row < 1 && len(tasks) > 0 {
			row = 1
		}

		table.Select(row, 0)
	}

	row, _ := c.statusTables[c.selectedStatus].GetSelection()
	c.setCurrentRow(row)

	c.updateHeader()
	c.updateInsights()
}

// focusColumn moves keyboard focus to the column at index i.
func (c *Controller) focusColumn(i int) {
	c.focused = (i + len(c.columns)) % len(c.columns)
	c.selectedStatus = c.columns[c.focused]

	for idx, status := range c.columns {
		c.statusTables[status].SetSelectable(idx == c.focused, false)
		c.statusTables[status].SetBorder(idx == c.focused)
	}

	c.app.SetFocus(c.statusTables[c.selectedStatus])

	row, _ := c.statusTables[c.selectedStatus].GetSelection()
	c.setCurrentRow(row)
}

func (c *Controller) showBoard() {
	c.app.SetInputCapture(c.keyboard)
	c.pages.SwitchToPage(pageBoard)
	c.focusColumn(c.focused)
	c.refresh()
}

func (c *Controller) startSearch() {
	c.search.SetText(c.board.Search())
	c.app.SetInputCapture(nil)
	c.app.SetFocus(c.search)
}
