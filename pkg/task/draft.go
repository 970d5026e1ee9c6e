package task

// Draft holds the fields of the create/edit form.
type Draft struct {
	Title       string
	Description string
	Status      Status
	DueDate     Date
	Priority    Priority
}

// EmptyDraft is the state of the form when nothing is being edited.
func EmptyDraft() Draft {
	return Draft{Status: StatusPending, Priority: PriorityMedium}
}

// DraftOf copies t into a form draft.
func DraftOf(t Task) Draft {
	priority := t.Priority
	if priority == "" {
		priority = PriorityMedium
	}

	return Draft{
		Title:       t.Title,
		Description: t.Description,
		Status:      t.Status,
		DueDate:     t.DueDate,
		Priority:    priority,
	}
}

// Task builds the full record for the given id. Unset enums fall back to their defaults.
func (d Draft) Task(id int64) Task {
	status := d.Status
	if status == "" {
		status = StatusPending
	}

	priority := d.Priority
	if priority == "" {
		priority = PriorityMedium
	}

	return Task{
		ID:          id,
		Title:       d.Title,
		Description: d.Description,
		Status:      status,
		DueDate:     d.DueDate,
		Priority:    priority,
	}
}
