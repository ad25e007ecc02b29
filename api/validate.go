package api

import (
	"net/mail"
	"strings"
	"time"

	"github.com/google/uuid"

	"taskboard-api/domain"
)

// fieldError is one entry in the structured validation-error list.
type fieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

type createTaskRequest struct {
	Title          string                `json:"title"`
	Checklist      []domain.SubtaskInput `json:"checklist"`
	DueDate        string                `json:"dueDate"`
	Priority       string                `json:"priority"`
	AssignedUserID string                `json:"assignedUserId"`
}

func validateCreateTask(req createTaskRequest) []fieldError {
	var errs []fieldError
	if strings.TrimSpace(req.Title) == "" {
		errs = append(errs, fieldError{Field: "title", Message: "Title is required"})
	}
	if len(req.Checklist) == 0 {
		errs = append(errs, fieldError{Field: "checklist", Message: "Checklist must be a non-empty array of subtasks"})
	}
	for _, item := range req.Checklist {
		if strings.TrimSpace(item.Text) == "" {
			errs = append(errs, fieldError{Field: "checklist", Message: "Each checklist item must have a subtask property of type string"})
			break
		}
	}
	if req.DueDate != "" {
		if _, err := parseDueDate(req.DueDate); err != nil {
			errs = append(errs, fieldError{Field: "dueDate", Message: "Due date must be a valid date"})
		}
	}
	if req.Priority != "" && !domain.Priority(req.Priority).Valid() {
		errs = append(errs, fieldError{Field: "priority", Message: "Invalid priority value"})
	}
	if req.AssignedUserID != "" {
		if _, err := uuid.Parse(req.AssignedUserID); err != nil {
			errs = append(errs, fieldError{Field: "assignedUserId", Message: "Assigned user ID must be a valid user ID"})
		}
	}
	return errs
}

type signupRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

func validateSignup(req signupRequest) []fieldError {
	var errs []fieldError
	if len(strings.TrimSpace(req.Name)) < 3 {
		errs = append(errs, fieldError{Field: "name", Message: "Name must be at least 3 characters long"})
	}
	if !validEmail(req.Email) {
		errs = append(errs, fieldError{Field: "email", Message: "Email must be a valid email address"})
	}
	if len(req.Password) < 8 {
		errs = append(errs, fieldError{Field: "password", Message: "Password must be at least 8 characters long"})
	}
	return errs
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func validateLogin(req loginRequest) []fieldError {
	var errs []fieldError
	if !validEmail(req.Email) {
		errs = append(errs, fieldError{Field: "email", Message: "Email must be a valid email address"})
	}
	if req.Password == "" {
		errs = append(errs, fieldError{Field: "password", Message: "Password is required"})
	}
	return errs
}

func validEmail(email string) bool {
	if email == "" {
		return false
	}
	addr, err := mail.ParseAddress(email)
	return err == nil && addr.Address == email
}

// parseDueDate accepts RFC 3339 timestamps and bare dates.
func parseDueDate(v string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, v); err == nil {
		return t, nil
	}
	return time.Parse("2006-01-02", v)
}
