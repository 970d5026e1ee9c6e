package controller

import (
	"context"

	"github.com/gdamore/tcell/v2"
	"github.com/matt-steen/taskboard/pkg/dashboard"
	"github.com/matt-steen/taskboard/pkg/task"
	"github.com/rs/zerolog/log"
)

func (c *Controller) initEvents() {
	c.events = map[tcell.Key]KeyEvent{}
	c.formEvents = map[tcell.Key]KeyEvent{}

	c.initTaskEvents(c.events)
	c.initMoveEvents(c.events)
	c.initViewEvents(c.events)
	c.initExitEvent(c.events)

	c.formEvents[tcell.KeyEscape] = KeyEvent{
		Description: "Cancel",
		Action: func(key *tcell.EventKey) *tcell.EventKey {
			c.cancelForm()

			return nil
		},
	}
}

func (c *Controller) getExitAction() func(key *tcell.EventKey) *tcell.EventKey {
	return func(key *tcell.EventKey) *tcell.EventKey {
		log.Info().Msg("terminating application")

		c.app.Stop()

		return nil
	}
}

func (c *Controller) initExitEvent(events map[tcell.Key]KeyEvent) {
	events[KeyQ] = KeyEvent{
		Description: "Exit",
		Action:      c.getExitAction(),
	}
}

// whenIdle wraps actions that must not start while a repository call is outstanding.
func (c *Controller) whenIdle(action func()) func(key *tcell.EventKey) *tcell.EventKey {
	return func(key *tcell.EventKey) *tcell.EventKey {
		if c.board.Busy() {
			return nil
		}

		action()

		return nil
	}
}

func (c *Controller) withSelection(action func(id int64)) func() {
	return func() {
		if !c.hasSelection {
			return
		}

		action(c.selectedID)
	}
}

func (c *Controller) initTaskEvents(events map[tcell.Key]KeyEvent) {
	events[KeyN] = KeyEvent{
		Description: "New Task",
		Action: c.whenIdle(func() {
			c.board.CancelEdit()
			c.switchToForm()
		}),
	}

	events[KeyE] = KeyEvent{
		Description: "Edit Task",
		Action: c.whenIdle(c.withSelection(func(id int64) {
			if err := c.board.BeginEdit(id); err != nil {
				log.Warn().Err(err).Msg("cannot edit")

				return
			}

			c.switchToForm()
		})),
	}

	events[KeySpace] = KeyEvent{
		Description: "Cycle Status",
		Action: c.whenIdle(c.withSelection(func(id int64) {
			c.run("cycle status", func(ctx context.Context) error {
				return c.board.CycleStatus(ctx, id)
			}, nil)
		})),
	}

	events[KeyD] = KeyEvent{
		Description: "Delete Task",
		Action: c.whenIdle(c.withSelection(func(id int64) {
			c.board.RequestDelete(id)
			c.showConfirm()
		})),
	}

	events[KeyR] = KeyEvent{
		Description: "Reload",
		Action: c.whenIdle(func() {
			c.run("load", c.board.Load, nil)
		}),
	}
}

func (c *Controller) getMoveAction(status task.Status) func(key *tcell.EventKey) *tcell.EventKey {
	return c.whenIdle(c.withSelection(func(id int64) {
		c.run("move", func(ctx context.Context) error {
			return c.board.Relocate(ctx, id, status)
		}, nil)
	}))
}

func (c *Controller) initMoveEvents(events map[tcell.Key]KeyEvent) {
	events[KeyP] = KeyEvent{
		Description: "Move to Pending",
		Action:      c.getMoveAction(task.StatusPending),
	}

	events[KeyI] = KeyEvent{
		Description: "Move to In Progress",
		Action:      c.getMoveAction(task.StatusInProgress),
	}

	events[KeyC] = KeyEvent{
		Description: "Move to Completed",
		Action:      c.getMoveAction(task.StatusCompleted),
	}
}

func (c *Controller) initViewEvents(events map[tcell.Key]KeyEvent) {
	events[tcell.KeyTab] = KeyEvent{
		Description: "Next Column",
		Action: func(key *tcell.EventKey) *tcell.EventKey {
			c.focusColumn(c.focused + 1)

			return nil
		},
	}

	events[tcell.KeyBacktab] = KeyEvent{
		Description: "Previous Column",
		Action: func(key *tcell.EventKey) *tcell.EventKey {
			c.focusColumn(c.focused - 1)

			return nil
		},
	}

	events[KeySlash] = KeyEvent{
		Description: "Search",
		Action: func(key *tcell.EventKey) *tcell.EventKey {
			c.startSearch()

			return nil
		},
	}

	events[KeyF] = KeyEvent{
		Description: "Filter",
		Action: func(key *tcell.EventKey) *tcell.EventKey {
			c.board.SetFilter(c.board.Filter().Next())
			c.refresh()

			return nil
		},
	}

	events[KeyShiftI] = KeyEvent{
		Description: "Insights",
		Action: func(key *tcell.EventKey) *tcell.EventKey {
			c.showInsights()

			return nil
		},
	}

	if c.auth != nil {
		events[KeyShiftL] = KeyEvent{
			Description: "Logout",
			Action: c.whenIdle(func() {
				c.logout()
			}),
		}
	}
}

func (c *Controller) logout() {
	if err := c.auth.Logout(c.ctx); err != nil {
		log.Error().Err(err).Msg("logout failed")
	}

	c.username = ""
	c.board.Reset()
	c.showLogin()
	c.setNotice(dashboard.Notice{Level: dashboard.LevelInfo, Message: "Logged out."})
}
