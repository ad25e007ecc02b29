package storage

import (
	"testing"
	"time"

	"taskboard-api/domain"
)

func TestDecodeTaskEntity(t *testing.T) {
	data := []byte(`{
		"PartitionKey": "task",
		"RowKey": "t1",
		"Title": "Prepare release",
		"Checklist": "[{\"_id\":\"s1\",\"subtask\":\"tag\",\"done\":true}]",
		"DueDate": "2024-02-02T00:00:00Z",
		"Status": "In progress",
		"Priority": "High Priority",
		"OwnerId": "u1",
		"AssigneeIds": "[\"u1\",\"u2\"]",
		"CreatedAt": "2024-01-01T10:00:00Z",
		"UpdatedAt": "2024-01-02T10:00:00Z"
	}`)

	task, err := decodeTaskEntity(data)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if task.ID != "t1" || task.Title != "Prepare release" {
		t.Fatalf("unexpected task: %#v", task)
	}
	if task.Status != domain.StatusInProgress || task.Priority != domain.PriorityHigh {
		t.Fatalf("unexpected enums: %q %q", task.Status, task.Priority)
	}
	if len(task.Checklist) != 1 || task.Checklist[0].ID != "s1" || !task.Checklist[0].Done {
		t.Fatalf("unexpected checklist: %#v", task.Checklist)
	}
	if len(task.AssigneeIDs) != 2 || task.AssigneeIDs[1] != "u2" {
		t.Fatalf("unexpected assignees: %#v", task.AssigneeIDs)
	}
	if task.DueDate == nil || !task.DueDate.Equal(time.Date(2024, time.February, 2, 0, 0, 0, 0, time.UTC)) {
		t.Fatalf("unexpected due date: %v", task.DueDate)
	}
}

func TestDecodeTaskEntityWithoutDueDate(t *testing.T) {
	data := []byte(`{"PartitionKey":"task","RowKey":"t2","Title":"x","Checklist":"[]","Status":"To do","Priority":"Low Priority","OwnerId":"u1","AssigneeIds":"[\"u1\"]"}`)

	task, err := decodeTaskEntity(data)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if task.DueDate != nil {
		t.Fatalf("expected nil due date, got %v", task.DueDate)
	}
}

func TestTaskEntityRoundTripPreservesDueDate(t *testing.T) {
	due := time.Date(2024, time.May, 31, 12, 30, 0, 0, time.UTC)
	original := domain.Task{
		ID:          "t3",
		Title:       "Round trip",
		Checklist:   []domain.Subtask{{ID: "s1", Text: "a"}},
		DueDate:     &due,
		Status:      domain.StatusBacklog,
		Priority:    domain.PriorityModerate,
		OwnerID:     "owner",
		AssigneeIDs: []string{"owner"},
	}

	data, err := encodeTaskEntity(original)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	decoded, err := decodeTaskEntity(data)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if decoded.DueDate == nil || !decoded.DueDate.Equal(due) {
		t.Fatalf("due date not preserved: %v", decoded.DueDate)
	}
	if decoded.Status != original.Status || decoded.OwnerID != original.OwnerID {
		t.Fatalf("unexpected decoded task: %#v", decoded)
	}
}

func TestDecodeUserEntity(t *testing.T) {
	data := []byte(`{"PartitionKey":"user","RowKey":"u1","Name":"Ada","Email":"ada@example.com","PasswordHash":"$2a$10$hash"}`)

	user, err := decodeUserEntity(data)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if user.ID != "u1" || user.Name != "Ada" || user.Email != "ada@example.com" {
		t.Fatalf("unexpected user: %#v", user)
	}
	if user.PasswordHash != "$2a$10$hash" {
		t.Fatalf("password hash not preserved")
	}
}

func TestEscapeFilterValue(t *testing.T) {
	if got := escapeFilterValue("o'brien@example.com"); got != "o''brien@example.com" {
		t.Fatalf("unexpected escaping: %q", got)
	}
}
