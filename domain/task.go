package domain

import "time"

// Status is the workflow state of a task.
type Status string

const (
	StatusBacklog    Status = "Backlog"
	StatusTodo       Status = "To do"
	StatusInProgress Status = "In progress"
	StatusDone       Status = "Done"
)

// Priority is the urgency level of a task.
type Priority string

const (
	PriorityLow      Priority = "Low Priority"
	PriorityModerate Priority = "Moderate Priority"
	PriorityHigh     Priority = "High Priority"
)

// Statuses lists every valid task status.
var Statuses = []Status{StatusBacklog, StatusTodo, StatusInProgress, StatusDone}

// Priorities lists every valid task priority.
var Priorities = []Priority{PriorityLow, PriorityModerate, PriorityHigh}

// Valid reports whether s is one of the known statuses.
func (s Status) Valid() bool {
	for _, known := range Statuses {
		if s == known {
			return true
		}
	}
	return false
}

// Valid reports whether p is one of the known priorities.
func (p Priority) Valid() bool {
	for _, known := range Priorities {
		if p == known {
			return true
		}
	}
	return false
}

// Subtask is a single checklist item. The ID is assigned by storage on first
// persistence; an empty ID marks an item that has never been saved.
type Subtask struct {
	ID   string `json:"_id"`
	Text string `json:"subtask"`
	Done bool   `json:"done"`
}

// Task is a tracked work item. OwnerID is immutable after creation and is
// always a member of AssigneeIDs.
type Task struct {
	ID          string     `json:"id"`
	Title       string     `json:"title"`
	Checklist   []Subtask  `json:"checklist"`
	DueDate     *time.Time `json:"dueDate"`
	Status      Status     `json:"status"`
	Priority    Priority   `json:"priority"`
	OwnerID     string     `json:"ownerId"`
	AssigneeIDs []string   `json:"userIds"`
	CreatedAt   time.Time  `json:"createdAt"`
	UpdatedAt   time.Time  `json:"updatedAt"`
}

// NewTask builds an unsaved task owned by ownerID with the documented
// defaults applied. The owner is always the first assignee.
func NewTask(ownerID, title string, checklist []Subtask) Task {
	return Task{
		Title:       title,
		Checklist:   checklist,
		Status:      StatusTodo,
		Priority:    PriorityLow,
		OwnerID:     ownerID,
		AssigneeIDs: []string{ownerID},
	}
}

// CanView reports whether userID may see the task: the owner and every
// assignee may.
func (t Task) CanView(userID string) bool {
	if t.OwnerID == userID {
		return true
	}
	return t.IsAssignee(userID)
}

// CanMutateStatus reports whether userID may change the task status. Status
// changes require assignee membership; owners qualify through the invariant
// that the owner is always an assignee.
func (t Task) CanMutateStatus(userID string) bool {
	return t.CanView(userID)
}

// IsAssignee reports whether userID appears in the assignee set.
func (t Task) IsAssignee(userID string) bool {
	for _, id := range t.AssigneeIDs {
		if id == userID {
			return true
		}
	}
	return false
}

// AddAssignee appends userID to the assignee set. It returns false when the
// user was already a member and the task is unchanged.
func (t *Task) AddAssignee(userID string) bool {
	if t.IsAssignee(userID) {
		return false
	}
	t.AssigneeIDs = append(t.AssigneeIDs, userID)
	return true
}

// Subtask returns a pointer to the checklist item with the given ID, or nil.
func (t *Task) Subtask(subtaskID string) *Subtask {
	for i := range t.Checklist {
		if t.Checklist[i].ID == subtaskID {
			return &t.Checklist[i]
		}
	}
	return nil
}

// RemoveSubtask deletes the checklist item with the given ID, preserving the
// order of the remaining items. It returns false when no item matched.
func (t *Task) RemoveSubtask(subtaskID string) bool {
	for i := range t.Checklist {
		if t.Checklist[i].ID == subtaskID {
			t.Checklist = append(t.Checklist[:i], t.Checklist[i+1:]...)
			return true
		}
	}
	return false
}

// DueWithin reports whether the task passes a due-date window filter. Tasks
// without a due date always pass; this is a deliberate inclusion rule.
func (t Task) DueWithin(start, end time.Time) bool {
	if t.DueDate == nil {
		return true
	}
	d := *t.DueDate
	return !d.Before(start) && !d.After(end)
}
