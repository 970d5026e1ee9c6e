package controller

import (
	"fmt"
	"sort"

	"github.com/matt-steen/taskboard/pkg/dashboard"
	"github.com/matt-steen/taskboard/pkg/task"
	"github.com/rivo/tview"
	"github.com/rs/zerolog/log"
)

func (c *Controller) switchToForm() {
	title := "New Task"
	if _, editing := c.board.Editing(); editing {
		title = "Edit Task"
	}

	c.setFormTitle(title)
	c.fillForm(c.board.Draft())

	c.todoForm.SetFocus(0)

	c.pages.SwitchToPage(pageForm)

	c.app.SetInputCapture(c.handleFormKeys)
}

func (c *Controller) cancelForm() {
	c.board.CancelEdit()
	c.showBoard()
}

func (c *Controller) getFormGrid() *tview.Grid {
	grid := tview.NewGrid().SetBorders(true).SetRows(0, -4)

	c.initFormHeader()
	c.initForm()

	grid.AddItem(c.formHeader, 0, 0, 1, 1, 0, 0, false)
	grid.AddItem(c.todoForm, 1, 0, 1, 1, 0, 0, true)

	return grid
}

func (c *Controller) setFormTitle(title string) {
	c.formHeader.SetCell(0, 0, tview.NewTableCell(fmt.Sprintf("[yellow]%s", title)))
}

func (c *Controller) initFormHeader() {
	c.formHeader = tview.NewTable().SetBorders(false).SetSelectable(false, false)

	texts := []string{}
	for key, event := range c.formEvents {
		texts = append(texts, fmt.Sprintf("[orange]<%s>[white] %s", keyName(key), event.Description))
	}

	sort.Strings(texts)

	for i, text := range texts {
		c.formHeader.SetCell(i+1, 0, tview.NewTableCell(text))
	}
}

func statusOptions() []string {
	options := []string{}
	for _, s := range task.Statuses() {
		options = append(options, string(s))
	}

	return options
}

func priorityOptions() []string {
	options := []string{}
	for _, p := range task.Priorities() {
		options = append(options, string(p))
	}

	return options
}

func indexOf(options []string, value string) int {
	for i, option := range options {
		if option == value {
			return i
		}
	}

	return 0
}

func (c *Controller) initForm() {
	titleMax := 50
	descriptionMax := 500
	dateWidth := 12

	c.todoForm = tview.NewForm().
		AddInputField("Title", "", titleMax, nil, nil).
		AddInputField("Description", "", descriptionMax, nil, nil).
		AddInputField("Due date (YYYY-MM-DD)", "", dateWidth, nil, nil).
		AddDropDown("Status", statusOptions(), 0, nil).
		AddDropDown("Priority", priorityOptions(), indexOf(priorityOptions(), string(task.PriorityMedium)), nil)

	c.titleField, _ = c.todoForm.GetFormItemByLabel("Title").(*tview.InputField)
	c.descField, _ = c.todoForm.GetFormItemByLabel("Description").(*tview.InputField)
	c.dueField, _ = c.todoForm.GetFormItemByLabel("Due date (YYYY-MM-DD)").(*tview.InputField)
	c.statusDropDown, _ = c.todoForm.GetFormItemByLabel("Status").(*tview.DropDown)
	c.priorityDropDown, _ = c.todoForm.GetFormItemByLabel("Priority").(*tview.DropDown)

	c.todoForm.AddButton("Save", c.saveForm)
	c.todoForm.AddButton("Cancel", c.cancelForm)
}

func (c *Controller) fillForm(draft task.Draft) {
	c.titleField.SetText(draft.Title)
	c.descField.SetText(draft.Description)
	c.dueField.SetText(draft.DueDate.String())
	c.statusDropDown.SetCurrentOption(indexOf(statusOptions(), string(draft.Status)))
	c.priorityDropDown.SetCurrentOption(indexOf(priorityOptions(), string(draft.Priority)))
}

// readForm builds a draft from the form fields. Only the due date can fail to parse.
func (c *Controller) readForm() (task.Draft, error) {
	due, err := task.ParseDate(c.dueField.GetText())
	if err != nil {
		return task.Draft{}, err
	}

	_, status := c.statusDropDown.GetCurrentOption()
	_, priority := c.priorityDropDown.GetCurrentOption()

	return task.Draft{
		Title:       c.titleField.GetText(),
		Description: c.descField.GetText(),
		Status:      task.Status(status),
		DueDate:     due,
		Priority:    task.Priority(priority),
	}, nil
}

func (c *Controller) saveForm() {
	if c.board.Busy() {
		return
	}

	draft, err := c.readForm()
	if err != nil {
		log.Debug().Err(err).Msg("rejecting form")
		c.setNotice(dashboard.Notice{Level: dashboard.LevelWarning, Message: "Due date must be YYYY-MM-DD."})

		return
	}

	log.Debug().Msgf("saving task with title '%s'", draft.Title)

	c.board.SetDraft(draft)

	// the form stays open on failure so nothing typed is lost
	c.run("save", c.board.Submit, func(err error) {
		if err == nil {
			c.showBoard()
		}
	})
}
