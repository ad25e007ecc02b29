package storage

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore"
	"github.com/Azure/azure-sdk-for-go/sdk/azcore/policy"
	"github.com/Azure/azure-sdk-for-go/sdk/data/aztables"
	"github.com/google/uuid"

	"taskboard-api/domain"
)

type notFoundError struct{}

func (notFoundError) Error() string { return "not found" }
func (notFoundError) NotFound()     {}

// ErrNotFound is returned when the requested entity does not exist. It
// carries a NotFound marker method so consumers can detect it without
// importing this package.
var ErrNotFound error = notFoundError{}

const (
	taskPartition = "task"
	userPartition = "user"
)

// Storage provides access to the task and user tables.
type Storage struct {
	taskTable *aztables.Client
	userTable *aztables.Client
}

// New creates a Storage instance from the given connection string.
func New(connStr, tasksTable, usersTable string) (*Storage, error) {
	clientOptions := aztables.ClientOptions{
		ClientOptions: azcore.ClientOptions{
			Retry: policy.RetryOptions{
				MaxRetries:    3,
				TryTimeout:    time.Minute * 3,
				RetryDelay:    time.Second * 1,
				MaxRetryDelay: time.Second * 15,
				StatusCodes:   []int{408, 429, 500, 502, 503, 504},
			},
		},
	}
	svc, err := aztables.NewServiceClientFromConnectionString(connStr, &clientOptions)
	if err != nil {
		return nil, err
	}
	return &Storage{
		taskTable: svc.NewClient(tasksTable),
		userTable: svc.NewClient(usersTable),
	}, nil
}

// FetchTask retrieves a single task by ID.
func (s *Storage) FetchTask(ctx context.Context, taskID string) (domain.Task, error) {
	resp, err := s.taskTable.GetEntity(ctx, taskPartition, taskID, nil)
	if err != nil {
		if isNotFound(err) {
			return domain.Task{}, ErrNotFound
		}
		return domain.Task{}, err
	}
	return decodeTaskEntity(resp.Value)
}

// FetchTasksFor retrieves every task the user owns or is assigned to.
// Assignee membership lives in a JSON-encoded column, so the visibility
// predicate is applied after decoding rather than in the table filter.
func (s *Storage) FetchTasksFor(ctx context.Context, userID string) ([]domain.Task, error) {
	all, err := s.FetchAllTasks(ctx)
	if err != nil {
		return nil, err
	}
	tasks := []domain.Task{}
	for _, t := range all {
		if t.CanView(userID) {
			tasks = append(tasks, t)
		}
	}
	return tasks, nil
}

// FetchAllTasks retrieves every task in the table.
func (s *Storage) FetchAllTasks(ctx context.Context) ([]domain.Task, error) {
	filter := "PartitionKey eq '" + taskPartition + "'"
	pager := s.taskTable.NewListEntitiesPager(&aztables.ListEntitiesOptions{Filter: &filter})
	tasks := []domain.Task{}
	for pager.More() {
		resp, err := pager.NextPage(ctx)
		if err != nil {
			return nil, err
		}
		for _, raw := range resp.Entities {
			task, err := decodeTaskEntity(raw)
			if err != nil {
				return nil, err
			}
			tasks = append(tasks, task)
		}
	}
	return tasks, nil
}

// SaveTask upserts the task and returns the stored version. Missing task and
// subtask identities are assigned here, on first persistence.
func (s *Storage) SaveTask(ctx context.Context, task domain.Task) (domain.Task, error) {
	now := time.Now().UTC()
	if task.ID == "" {
		task.ID = uuid.NewString()
		task.CreatedAt = now
	}
	for i := range task.Checklist {
		if task.Checklist[i].ID == "" {
			task.Checklist[i].ID = uuid.NewString()
		}
	}
	task.UpdatedAt = now

	data, err := encodeTaskEntity(task)
	if err != nil {
		return domain.Task{}, err
	}
	if _, err := s.taskTable.UpsertEntity(ctx, data, &aztables.UpsertEntityOptions{UpdateMode: aztables.UpdateModeReplace}); err != nil {
		return domain.Task{}, err
	}
	return task, nil
}

// DeleteTask removes a task by ID and returns the deleted task.
func (s *Storage) DeleteTask(ctx context.Context, taskID string) (domain.Task, error) {
	task, err := s.FetchTask(ctx, taskID)
	if err != nil {
		return domain.Task{}, err
	}
	if _, err := s.taskTable.DeleteEntity(ctx, taskPartition, taskID, nil); err != nil {
		if isNotFound(err) {
			return domain.Task{}, ErrNotFound
		}
		return domain.Task{}, err
	}
	return task, nil
}

// CreateUser persists a new user, assigning its identity.
func (s *Storage) CreateUser(ctx context.Context, user domain.User) (domain.User, error) {
	now := time.Now().UTC()
	user.ID = uuid.NewString()
	user.CreatedAt = now
	user.UpdatedAt = now
	return s.upsertUser(ctx, user)
}

// SaveUser upserts an existing user.
func (s *Storage) SaveUser(ctx context.Context, user domain.User) (domain.User, error) {
	user.UpdatedAt = time.Now().UTC()
	return s.upsertUser(ctx, user)
}

func (s *Storage) upsertUser(ctx context.Context, user domain.User) (domain.User, error) {
	data, err := encodeUserEntity(user)
	if err != nil {
		return domain.User{}, err
	}
	if _, err := s.userTable.UpsertEntity(ctx, data, &aztables.UpsertEntityOptions{UpdateMode: aztables.UpdateModeReplace}); err != nil {
		return domain.User{}, err
	}
	return user, nil
}

// FetchUser retrieves a single user by ID.
func (s *Storage) FetchUser(ctx context.Context, userID string) (domain.User, error) {
	resp, err := s.userTable.GetEntity(ctx, userPartition, userID, nil)
	if err != nil {
		if isNotFound(err) {
			return domain.User{}, ErrNotFound
		}
		return domain.User{}, err
	}
	return decodeUserEntity(resp.Value)
}

// FetchUserByEmail retrieves the user registered with the given email.
func (s *Storage) FetchUserByEmail(ctx context.Context, email string) (domain.User, error) {
	filter := "PartitionKey eq '" + userPartition + "' and Email eq '" + escapeFilterValue(email) + "'"
	pager := s.userTable.NewListEntitiesPager(&aztables.ListEntitiesOptions{Filter: &filter})
	for pager.More() {
		resp, err := pager.NextPage(ctx)
		if err != nil {
			return domain.User{}, err
		}
		for _, raw := range resp.Entities {
			return decodeUserEntity(raw)
		}
	}
	return domain.User{}, ErrNotFound
}

// FetchUsers retrieves every registered user.
func (s *Storage) FetchUsers(ctx context.Context) ([]domain.User, error) {
	filter := "PartitionKey eq '" + userPartition + "'"
	pager := s.userTable.NewListEntitiesPager(&aztables.ListEntitiesOptions{Filter: &filter})
	users := []domain.User{}
	for pager.More() {
		resp, err := pager.NextPage(ctx)
		if err != nil {
			return nil, err
		}
		for _, raw := range resp.Entities {
			user, err := decodeUserEntity(raw)
			if err != nil {
				return nil, err
			}
			users = append(users, user)
		}
	}
	return users, nil
}

// FetchUsersByID resolves the given user IDs into a lookup map. IDs that no
// longer resolve are omitted rather than failing the whole lookup.
func (s *Storage) FetchUsersByID(ctx context.Context, userIDs []string) (map[string]domain.User, error) {
	users := make(map[string]domain.User, len(userIDs))
	for _, id := range userIDs {
		if _, ok := users[id]; ok {
			continue
		}
		user, err := s.FetchUser(ctx, id)
		if err != nil {
			if errors.Is(err, ErrNotFound) {
				continue
			}
			return nil, err
		}
		users[id] = user
	}
	return users, nil
}

func isNotFound(err error) bool {
	var respErr *azcore.ResponseError
	return errors.As(err, &respErr) && respErr.StatusCode == 404
}

// escapeFilterValue doubles single quotes per the OData filter grammar.
func escapeFilterValue(v string) string {
	return strings.ReplaceAll(v, "'", "''")
}
