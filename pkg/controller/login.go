package controller

import (
	"fmt"

	"github.com/matt-steen/taskboard/pkg/dashboard"
	"github.com/matt-steen/taskboard/pkg/session"
	"github.com/rivo/tview"
	"github.com/rs/zerolog/log"
)

func (c *Controller) getLoginGrid() *tview.Grid {
	grid := tview.NewGrid().SetBorders(true).SetRows(1, 0)

	fieldWidth := 30

	c.loginForm = tview.NewForm().
		AddInputField("Username", "", fieldWidth, nil, nil).
		AddPasswordField("Password", "", fieldWidth, '*', nil)

	c.usernameField, _ = c.loginForm.GetFormItemByLabel("Username").(*tview.InputField)
	c.passwordField, _ = c.loginForm.GetFormItemByLabel("Password").(*tview.InputField)

	c.loginForm.AddButton("Login", c.login)
	c.loginForm.AddButton("Register", c.register)
	c.loginForm.AddButton("Quit", c.app.Stop)

	title := tview.NewTextView().SetDynamicColors(true).
		SetText("[yellow]Log in to your task board")

	grid.AddItem(title, 0, 0, 1, 1, 0, 0, false)
	grid.AddItem(c.loginForm, 1, 0, 1, 1, 0, 0, true)

	return grid
}

func (c *Controller) showLogin() {
	c.passwordField.SetText("")
	c.loginForm.SetFocus(0)
	c.app.SetInputCapture(nil)
	c.pages.SwitchToPage(pageLogin)
}

func (c *Controller) login() {
	username, password := c.usernameField.GetText(), c.passwordField.GetText()

	go func() {
		var s session.Session

		err := c.auth.Login(c.ctx, username, password)
		if err == nil {
			s, err = c.guard.Check(c.ctx)
		}

		c.app.QueueUpdateDraw(func() {
			if err != nil {
				log.Info().Err(err).Msg("login failed")
				c.setNotice(dashboard.Notice{Level: dashboard.LevelError, Message: session.Reason(err)})

				return
			}

			c.username = s.Username
			c.setNotice(dashboard.Notice{
				Level:   dashboard.LevelSuccess,
				Message: fmt.Sprintf("Welcome, %s!", s.Username),
			})
			c.showBoard()
			c.run("load", c.board.Load, nil)
		})
	}()
}

func (c *Controller) register() {
	username, password := c.usernameField.GetText(), c.passwordField.GetText()

	go func() {
		msg, err := c.auth.Register(c.ctx, username, password)

		c.app.QueueUpdateDraw(func() {
			if err != nil {
				log.Info().Err(err).Msg("registration failed")
				c.setNotice(dashboard.Notice{Level: dashboard.LevelError, Message: session.Reason(err)})

				return
			}

			if msg == "" {
				msg = "Registration successful. Please log in."
			}

			c.passwordField.SetText("")
			c.setNotice(dashboard.Notice{Level: dashboard.LevelSuccess, Message: msg})
		})
	}()
}
