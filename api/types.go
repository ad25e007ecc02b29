package api

import (
	"context"
	"errors"
	"time"

	"taskboard-api/domain"
)

// Storage abstracts persistence for handlers.
type Storage interface {
	FetchTask(ctx context.Context, taskID string) (domain.Task, error)
	FetchTasksFor(ctx context.Context, userID string) ([]domain.Task, error)
	FetchAllTasks(ctx context.Context) ([]domain.Task, error)
	SaveTask(ctx context.Context, task domain.Task) (domain.Task, error)
	DeleteTask(ctx context.Context, taskID string) (domain.Task, error)

	CreateUser(ctx context.Context, user domain.User) (domain.User, error)
	SaveUser(ctx context.Context, user domain.User) (domain.User, error)
	FetchUser(ctx context.Context, userID string) (domain.User, error)
	FetchUserByEmail(ctx context.Context, email string) (domain.User, error)
	FetchUsers(ctx context.Context) ([]domain.User, error)
	FetchUsersByID(ctx context.Context, userIDs []string) (map[string]domain.User, error)
}

// Sessions tracks revoked tokens so logout takes effect before expiry.
type Sessions interface {
	Revoke(ctx context.Context, token string, ttl time.Duration) error
	IsRevoked(ctx context.Context, token string) (bool, error)
}

// Authenticator issues and verifies identity tokens.
type Authenticator interface {
	IssueToken(userID string) (token string, expiresAt time.Time, err error)
	VerifyToken(token string) (userID string, expiresAt time.Time, err error)
}

// NotFoundError marks storage errors for absent entities.
type NotFoundError interface {
	error
	NotFound()
}

func isNotFound(err error) bool {
	var nf NotFoundError
	return errors.As(err, &nf)
}
