package storage

import (
	"encoding/json"
	"time"

	"github.com/Azure/azure-sdk-for-go/sdk/data/aztables"

	"taskboard-api/domain"
)

// Table rows hold flat properties only, so the checklist and assignee set are
// stored as JSON-encoded columns and timestamps as RFC 3339 strings.
type taskEntity struct {
	aztables.Entity
	Title       string `json:"Title"`
	Checklist   string `json:"Checklist"`
	DueDate     string `json:"DueDate"`
	Status      string `json:"Status"`
	Priority    string `json:"Priority"`
	OwnerID     string `json:"OwnerId"`
	AssigneeIDs string `json:"AssigneeIds"`
	CreatedAt   string `json:"CreatedAt"`
	UpdatedAt   string `json:"UpdatedAt"`
}

type userEntity struct {
	aztables.Entity
	Name         string `json:"Name"`
	Email        string `json:"Email"`
	PasswordHash string `json:"PasswordHash"`
	CreatedAt    string `json:"CreatedAt"`
	UpdatedAt    string `json:"UpdatedAt"`
}

func encodeTaskEntity(task domain.Task) ([]byte, error) {
	checklist, err := json.Marshal(task.Checklist)
	if err != nil {
		return nil, err
	}
	assignees, err := json.Marshal(task.AssigneeIDs)
	if err != nil {
		return nil, err
	}
	ent := taskEntity{
		Entity:      aztables.Entity{PartitionKey: taskPartition, RowKey: task.ID},
		Title:       task.Title,
		Checklist:   string(checklist),
		Status:      string(task.Status),
		Priority:    string(task.Priority),
		OwnerID:     task.OwnerID,
		AssigneeIDs: string(assignees),
		CreatedAt:   task.CreatedAt.Format(time.RFC3339Nano),
		UpdatedAt:   task.UpdatedAt.Format(time.RFC3339Nano),
	}
	if task.DueDate != nil {
		ent.DueDate = task.DueDate.Format(time.RFC3339Nano)
	}
	return json.Marshal(ent)
}

func decodeTaskEntity(data []byte) (domain.Task, error) {
	var ent taskEntity
	if err := json.Unmarshal(data, &ent); err != nil {
		return domain.Task{}, err
	}
	task := domain.Task{
		ID:       ent.RowKey,
		Title:    ent.Title,
		Status:   domain.Status(ent.Status),
		Priority: domain.Priority(ent.Priority),
		OwnerID:  ent.OwnerID,
	}
	if ent.Checklist != "" {
		if err := json.Unmarshal([]byte(ent.Checklist), &task.Checklist); err != nil {
			return domain.Task{}, err
		}
	}
	if ent.AssigneeIDs != "" {
		if err := json.Unmarshal([]byte(ent.AssigneeIDs), &task.AssigneeIDs); err != nil {
			return domain.Task{}, err
		}
	}
	if ent.DueDate != "" {
		due, err := time.Parse(time.RFC3339Nano, ent.DueDate)
		if err != nil {
			return domain.Task{}, err
		}
		task.DueDate = &due
	}
	var err error
	if task.CreatedAt, err = parseEntityTime(ent.CreatedAt); err != nil {
		return domain.Task{}, err
	}
	if task.UpdatedAt, err = parseEntityTime(ent.UpdatedAt); err != nil {
		return domain.Task{}, err
	}
	return task, nil
}

func encodeUserEntity(user domain.User) ([]byte, error) {
	ent := userEntity{
		Entity:       aztables.Entity{PartitionKey: userPartition, RowKey: user.ID},
		Name:         user.Name,
		Email:        user.Email,
		PasswordHash: user.PasswordHash,
		CreatedAt:    user.CreatedAt.Format(time.RFC3339Nano),
		UpdatedAt:    user.UpdatedAt.Format(time.RFC3339Nano),
	}
	return json.Marshal(ent)
}

func decodeUserEntity(data []byte) (domain.User, error) {
	var ent userEntity
	if err := json.Unmarshal(data, &ent); err != nil {
		return domain.User{}, err
	}
	user := domain.User{
		ID:           ent.RowKey,
		Name:         ent.Name,
		Email:        ent.Email,
		PasswordHash: ent.PasswordHash,
	}
	var err error
	if user.CreatedAt, err = parseEntityTime(ent.CreatedAt); err != nil {
		return domain.User{}, err
	}
	if user.UpdatedAt, err = parseEntityTime(ent.UpdatedAt); err != nil {
		return domain.User{}, err
	}
	return user, nil
}

func parseEntityTime(v string) (time.Time, error) {
	if v == "" {
		return time.Time{}, nil
	}
	return time.Parse(time.RFC3339Nano, v)
}
