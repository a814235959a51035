package repository

import (
	"context"
	"errors"

	"github.com/Tomlord1122/tudu-backend/internal/domain"
)

var (
	// ErrNotFound is returned when no row matches, including rows that exist
	// but belong to another user.
	ErrNotFound = errors.New("record not found")
	// ErrDuplicate is returned when a unique constraint is violated.
	ErrDuplicate = errors.New("duplicate record")
)

// TodoRepository defines the interface for todo data operations. Every
// method that takes a userID only matches rows owned by that user.
type TodoRepository interface {
	Create(ctx context.Context, todo *domain.Todo) error
	FindOwned(ctx context.Context, id, userID string) (*domain.Todo, error)
	ListByUser(ctx context.Context, userID string) ([]domain.Todo, error)
	UpdateOwned(ctx context.Context, id, userID string, patch domain.TodoPatch) (*domain.Todo, error)
	DeleteOwned(ctx context.Context, id, userID string) error
}

// UserRepository is the read side of the identity store. Create is used to
// seed users the registration flow would normally write.
type UserRepository interface {
	FindByEmail(ctx context.Context, email string) (*domain.User, error)
	Create(ctx context.Context, user *domain.User) error
}
