package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/Tomlord1122/tudu-backend/internal/domain"
)

// gormTodoRepository implements TodoRepository using GORM
type gormTodoRepository struct {
	db *gorm.DB
}

// NewGormTodoRepository creates a new GORM todo repository
func NewGormTodoRepository(db *gorm.DB) TodoRepository {
	return &gormTodoRepository{db: db}
}

// Create inserts the todo, assigning an id and creation time when unset.
func (r *gormTodoRepository) Create(ctx context.Context, todo *domain.Todo) error {
	if todo.ID == "" {
		todo.ID = uuid.NewString()
	}
	if err := r.db.WithContext(ctx).Create(todo).Error; err != nil {
		return fmt.Errorf("creating todo: %w", err)
	}
	return nil
}

func (r *gormTodoRepository) FindOwned(ctx context.Context, id, userID string) (*domain.Todo, error) {
	var todo domain.Todo
	err := r.db.WithContext(ctx).
		Where("id = ? AND user_id = ?", id, userID).
		First(&todo).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("getting todo %s: %w", id, err)
	}
	return &todo, nil
}

// ListByUser returns the user's todos, newest first.
func (r *gormTodoRepository) ListByUser(ctx context.Context, userID string) ([]domain.Todo, error) {
	todos := make([]domain.Todo, 0)
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&todos).Error
	if err != nil {
		return nil, fmt.Errorf("listing todos for user %s: %w", userID, err)
	}
	return todos, nil
}

// UpdateOwned applies the patch with a single conditional UPDATE ... RETURNING,
// so the ownership check and the write cannot interleave with a delete.
func (r *gormTodoRepository) UpdateOwned(ctx context.Context, id, userID string, patch domain.TodoPatch) (*domain.Todo, error) {
	updates := make(map[string]interface{})
	for _, col := range patch.Columns(time.Now().UTC()) {
		updates[col.Name] = col.Value
	}

	var todo domain.Todo
	result := r.db.WithContext(ctx).
		Model(&todo).
		Clauses(clause.Returning{}).
		Where("id = ? AND user_id = ?", id, userID).
		Updates(updates)
	if result.Error != nil {
		return nil, fmt.Errorf("updating todo %s: %w", id, result.Error)
	}
	if result.RowsAffected == 0 {
		return nil, ErrNotFound
	}
	return &todo, nil
}

// DeleteOwned permanently removes the todo. domain.Todo has no DeletedAt,
// so GORM issues a real DELETE.
func (r *gormTodoRepository) DeleteOwned(ctx context.Context, id, userID string) error {
	result := r.db.WithContext(ctx).
		Where("id = ? AND user_id = ?", id, userID).
		Delete(&domain.Todo{})
	if result.Error != nil {
		return fmt.Errorf("deleting todo %s: %w", id, result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
