package domain

import (
	"fmt"
	"time"
)

// TaskView is the task listing projection: user references are replaced with
// minimal summaries and the due date is rendered for display.
type TaskView struct {
	ID        string        `json:"id"`
	Title     string        `json:"title"`
	Checklist []Subtask     `json:"checklist"`
	DueDate   *string       `json:"dueDate"`
	Status    Status        `json:"status"`
	Priority  Priority      `json:"priority"`
	Owner     UserSummary   `json:"owner"`
	Assignees []UserSummary `json:"assignees"`
	CreatedAt time.Time     `json:"createdAt"`
	UpdatedAt time.Time     `json:"updatedAt"`
}

// NewTaskView shapes a task for the listing response. Referenced users are
// looked up in usersByID; references to users absent from the map keep their
// ID with an empty name rather than failing the whole listing.
func NewTaskView(task Task, usersByID map[string]User) TaskView {
	view := TaskView{
		ID:        task.ID,
		Title:     task.Title,
		Checklist: task.Checklist,
		DueDate:   FormatDueDate(task.DueDate),
		Status:    task.Status,
		Priority:  task.Priority,
		Owner:     summaryFor(task.OwnerID, usersByID),
		Assignees: make([]UserSummary, 0, len(task.AssigneeIDs)),
		CreatedAt: task.CreatedAt,
		UpdatedAt: task.UpdatedAt,
	}
	for _, id := range task.AssigneeIDs {
		view.Assignees = append(view.Assignees, summaryFor(id, usersByID))
	}
	return view
}

func summaryFor(userID string, usersByID map[string]User) UserSummary {
	if u, ok := usersByID[userID]; ok {
		return u.Summary()
	}
	return UserSummary{ID: userID}
}

// FormatDueDate renders a due date as "Jan 2nd". A nil due date renders as
// nil, never as an error.
func FormatDueDate(due *time.Time) *string {
	if due == nil {
		return nil
	}
	day := due.Day()
	formatted := fmt.Sprintf("%s %d%s", due.Format("Jan"), day, ordinalSuffix(day))
	return &formatted
}

func ordinalSuffix(day int) string {
	if day >= 11 && day <= 13 {
		return "th"
	}
	switch day % 10 {
	case 1:
		return "st"
	case 2:
		return "nd"
	case 3:
		return "rd"
	default:
		return "th"
	}
}
