package controller

import (
	"fmt"

	"github.com/gdamore/tcell/v2"
	"github.com/matt-steen/taskboard/pkg/task"
	"github.com/rivo/tview"
)

// priorityColors maps each priority to the color of its cell.
func priorityColors() map[task.Priority]tcell.Color {
	return map[task.Priority]tcell.Color{
		task.PriorityLow:    tcell.ColorGreen,
		task.PriorityMedium: tcell.ColorOrange,
		task.PriorityHigh:   tcell.ColorRed,
	}
}

// StatusContent implements tview.TableContent, which tview.Table uses to update data.
type StatusContent struct {
	tview.TableContentReadOnly
	tasks []task.Task
	today task.Date
}

// GetCell returns the cell at the given position or nil if no cell.
func (s *StatusContent) GetCell(row, col int) *tview.TableCell {
	if row == 0 {
		switch col {
		case 0:
			return tview.NewTableCell("title").SetExpansion(titleExpansion).
				SetTextColor(tcell.ColorYellow).SetSelectable(false)
		case 1:
			return tview.NewTableCell("due").SetExpansion(1).
				SetTextColor(tcell.ColorYellow).SetSelectable(false)
		case 2:
			return tview.NewTableCell("priority").SetExpansion(1).
				SetTextColor(tcell.ColorYellow).SetSelectable(false)
		}
	}

	if row-1 >= len(s.tasks) || row < 1 {
		return nil
	}

	t := s.tasks[row-1]

	switch col {
	case 0:
		return tview.NewTableCell(t.Title).SetExpansion(titleExpansion).SetReference(t.ID)
	case 1:
		cell := tview.NewTableCell(t.DueDate.String()).SetExpansion(1)
		if t.Overdue(s.today.Time) {
			cell.SetTextColor(tcell.ColorRed).SetText(fmt.Sprintf("%s!", t.DueDate))
		}

		return cell
	case 2:
		return tview.NewTableCell(string(t.Priority)).SetExpansion(1).
			SetTextColor(priorityColors()[t.Priority])
	}

	return nil
}

// GetRowCount returns the number of rows in the table.
func (s *StatusContent) GetRowCount() int {
	return len(s.tasks) + 1
}

// GetColumnCount returns the number of columns in the table.
func (s *StatusContent) GetColumnCount() int {
	return 3
}
