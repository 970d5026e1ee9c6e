package controller

import (
	"context"
	"fmt"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/matt-steen/taskboard/pkg/dashboard"
	"github.com/matt-steen/taskboard/pkg/session"
	"github.com/matt-steen/taskboard/pkg/task"
	"github.com/rivo/tview"
	"github.com/rs/zerolog/log"
)

const (
	titleExpansion = 3

	pageLogin    = "login"
	pageBoard    = "board"
	pageForm     = "form"
	pageConfirm  = "confirm"
	pageInsights = "insights"
)

// Controller mediates between the dashboard and the view.
type Controller struct {
	ctx   context.Context
	board *dashboard.Dashboard
	guard *session.Guard
	auth  *session.Authenticator

	app      *tview.Application
	pages    *tview.Pages
	notice   *tview.TextView
	username string

	header       *tview.Table
	search       *tview.InputField
	statusTables map[task.Status]*tview.Table
	columnTasks  map[task.Status][]task.Task
	columns      []task.Status
	focused      int

	selectedStatus task.Status
	selectedID     int64
	hasSelection   bool

	events     map[tcell.Key]KeyEvent
	formEvents map[tcell.Key]KeyEvent

	formHeader       *tview.Table
	todoForm         *tview.Form
	titleField       *tview.InputField
	descField        *tview.InputField
	dueField         *tview.InputField
	statusDropDown   *tview.DropDown
	priorityDropDown *tview.DropDown

	loginForm     *tview.Form
	usernameField *tview.InputField
	passwordField *tview.InputField

	confirm  *tview.Modal
	insights *tview.TextView
}

// KeyEvent defines an event associated with a keypress.
type KeyEvent struct {
	Description string
	Action      func(*tcell.EventKey) *tcell.EventKey
}

// NewController creates a new Controller to run the app. guard and auth are nil for the
// offline board, which needs no credential.
func NewController(
	ctx context.Context,
	repo dashboard.Repository,
	guard *session.Guard,
	auth *session.Authenticator,
) (*Controller, error) {
	c := Controller{
		ctx:          ctx,
		guard:        guard,
		auth:         auth,
		app:          tview.NewApplication(),
		statusTables: map[task.Status]*tview.Table{},
		columnTasks:  map[task.Status][]task.Task{},
		columns:      task.Statuses(),
	}

	c.selectedStatus = c.columns[0]

	c.board = dashboard.New(repo, &c)

	c.initEvents()
	c.initPages()

	return &c, nil
}

// Go starts the app and blocks until it exits.
func (c *Controller) Go() error {
	c.enter()

	return c.app.Run()
}

func (c *Controller) initPages() {
	c.pages = tview.NewPages()

	c.notice = tview.NewTextView().SetDynamicColors(true)
	c.notice.SetScrollable(false)

	c.pages.AddPage(pageLogin, c.getLoginGrid(), true, false)
	c.pages.AddPage(pageBoard, c.getBoardGrid(), true, false)
	c.pages.AddPage(pageForm, c.getFormGrid(), true, false)
	c.pages.AddPage(pageInsights, c.getInsightsGrid(), true, false)
	c.pages.AddPage(pageConfirm, c.getConfirmModal(), true, false)

	root := tview.NewFlex().SetDirection(tview.FlexRow).
		AddItem(c.pages, 0, 1, true).
		AddItem(c.notice, 1, 0, false)

	c.app.SetRoot(root, true)
}

// enter runs the session check and shows the board or the login page.
func (c *Controller) enter() {
	if c.guard == nil {
		c.username = "offline"
		c.showBoard()
		c.run("load", c.board.Load, nil)

		return
	}

	s, err := c.guard.Check(c.ctx)
	if err != nil {
		log.Info().Err(err).Msg("no session, showing login")
		c.showLogin()

		return
	}

	c.username = s.Username
	c.showBoard()
	c.run("load", c.board.Load, nil)
}

// Notify shows n in the notice line. It is safe to call from any goroutine.
func (c *Controller) Notify(n dashboard.Notice) {
	c.app.QueueUpdateDraw(func() {
		c.setNotice(n)
	})
}

func (c *Controller) setNotice(n dashboard.Notice) {
	colors := map[dashboard.Level]string{
		dashboard.LevelInfo:    "white",
		dashboard.LevelSuccess: "green",
		dashboard.LevelWarning: "yellow",
		dashboard.LevelError:   "red",
	}

	c.notice.SetText(fmt.Sprintf("[%s]%s", colors[n.Level], tview.Escape(n.Message)))
}

// run performs op off the UI goroutine so the view keeps drawing while the repository
// call is outstanding. after, if set, runs on the UI goroutine with op's result.
func (c *Controller) run(name string, op func(context.Context) error, after func(error)) {
	if c.board.Busy() {
		log.Debug().Msgf("ignoring %s while busy", name)

		return
	}

	go func() {
		err := op(c.ctx)
		if err != nil {
			log.Debug().Err(err).Msgf("%s did not complete", name)
		}

		c.app.QueueUpdateDraw(func() {
			if after != nil {
				after(err)
			}

			c.refresh()

			if c.board.Celebrating(time.Now()) {
				time.AfterFunc(dashboard.CelebrationWindow, func() {
					c.app.QueueUpdateDraw(c.refresh)
				})
			}
		})
	}()

	c.refresh()
}

func (c *Controller) keyboard(evt *tcell.EventKey) *tcell.EventKey {
	key := AsKey(evt)
	if k, ok := c.events[key]; ok {
		return k.Action(evt)
	}

	return evt
}

func (c *Controller) handleFormKeys(evt *tcell.EventKey) *tcell.EventKey {
	if k, ok := c.formEvents[evt.Key()]; ok {
		return k.Action(evt)
	}

	return evt
}
