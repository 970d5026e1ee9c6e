package controller

import (
	"fmt"
	"strings"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/rivo/tview"
)

const barWidth = 40

func (c *Controller) getConfirmModal() *tview.Modal {
	c.confirm = tview.NewModal().
		AddButtons([]string{"Delete", "Cancel"}).
		SetDoneFunc(func(_ int, label string) {
			if label != "Delete" {
				c.board.CancelDelete()
				c.showBoard()

				return
			}

			// a failed delete stays pending, so the dialog stays up for a retry
			c.run("delete", c.board.ConfirmDelete, func(err error) {
				if err == nil {
					c.showBoard()
				}
			})
		})

	return c.confirm
}

func (c *Controller) showConfirm() {
	id, pending := c.board.PendingDelete()
	if !pending {
		return
	}

	t, ok := c.board.Task(id)
	if !ok {
		c.board.CancelDelete()

		return
	}

	c.confirm.SetText(fmt.Sprintf("Delete task \"%s\"?", t.Title))
	c.app.SetInputCapture(nil)
	c.pages.SwitchToPage(pageConfirm)
}

func (c *Controller) getInsightsGrid() *tview.Grid {
	c.insights = tview.NewTextView().SetDynamicColors(true)
	c.insights.SetBorder(true).SetTitle(" Insights ")

	grid := tview.NewGrid().SetBorders(false)
	grid.AddItem(c.insights, 0, 0, 1, 1, 0, 0, true)

	return grid
}

// updateInsights renders the counts and one bar per status.
func (c *Controller) updateInsights() {
	in := c.board.Insights(time.Now())

	var b strings.Builder

	fmt.Fprintf(&b, "[yellow]Total:[white] %d   [green]Completed:[white] %d   ", in.Total, in.Completed)
	fmt.Fprintf(&b, "[orange]Due today:[white] %d   [red]Overdue:[white] %d\n\n", in.DueToday, in.Overdue)

	for _, status := range c.columns {
		n := in.ByStatus[status]

		width := 0
		if in.Total > 0 {
			width = n * barWidth / in.Total
		}

		fmt.Fprintf(&b, "%-12s [blue]%s[white] %d\n", columnTitle(status), strings.Repeat("#", width), n)
	}

	b.WriteString("\n[orange]<Esc>[white] Back")

	c.insights.SetText(b.String())
}

func (c *Controller) showInsights() {
	c.updateInsights()

	c.app.SetInputCapture(func(evt *tcell.EventKey) *tcell.EventKey {
		if key := AsKey(evt); key == tcell.KeyEscape || key == KeyShiftI || key == KeyQ {
			c.showBoard()

			return nil
		}

		return evt
	})

	c.pages.SwitchToPage(pageInsights)
}
