package repository

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/Tomlord1122/tudu-backend/internal/domain"
)

// sqliteTimeLayout is fixed width and always UTC so that created_at sorts
// lexicographically in the same order as chronologically.
const sqliteTimeLayout = "2006-01-02T15:04:05.000000000Z"

// sqliteTime stores time.Time as sortable TEXT.
type sqliteTime time.Time

func (t sqliteTime) Value() (driver.Value, error) {
	return time.Time(t).UTC().Format(sqliteTimeLayout), nil
}

func (t *sqliteTime) Scan(src any) error {
	switch v := src.(type) {
	case time.Time:
		*t = sqliteTime(v.UTC())
		return nil
	case string:
		return t.parse(v)
	case []byte:
		return t.parse(string(v))
	default:
		return fmt.Errorf("cannot scan %T into timestamp", src)
	}
}

func (t *sqliteTime) parse(s string) error {
	parsed, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return fmt.Errorf("parsing timestamp %q: %w", s, err)
	}
	*t = sqliteTime(parsed.UTC())
	return nil
}

const todoColumns = "id, title, description, completed, created_at, updated_at, user_id"

type todoRow struct {
	ID          string         `db:"id"`
	Title       string         `db:"title"`
	Description sql.NullString `db:"description"`
	Completed   bool           `db:"completed"`
	CreatedAt   sqliteTime     `db:"created_at"`
	UpdatedAt   sqliteTime     `db:"updated_at"`
	UserID      string         `db:"user_id"`
}

func (r todoRow) toDomain() domain.Todo {
	todo := domain.Todo{
		ID:        r.ID,
		Title:     r.Title,
		Completed: r.Completed,
		CreatedAt: time.Time(r.CreatedAt),
		UpdatedAt: time.Time(r.UpdatedAt),
		UserID:    r.UserID,
	}
	if r.Description.Valid {
		desc := r.Description.String
		todo.Description = &desc
	}
	return todo
}

// sqliteArg converts column values into types the driver binds directly.
func sqliteArg(v any) any {
	switch val := v.(type) {
	case *string:
		if val == nil {
			return nil
		}
		return *val
	case time.Time:
		return sqliteTime(val)
	default:
		return v
	}
}

type sqliteTodoRepository struct {
	db *sqlx.DB
}

// NewSQLiteTodoRepository creates a todo repository backed by the sqlx
// handle of database.SQLite.
func NewSQLiteTodoRepository(db *sqlx.DB) TodoRepository {
	return &sqliteTodoRepository{db: db}
}

func (r *sqliteTodoRepository) Create(ctx context.Context, todo *domain.Todo) error {
	if todo.ID == "" {
		todo.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if todo.CreatedAt.IsZero() {
		todo.CreatedAt = now
	}
	if todo.UpdatedAt.IsZero() {
		todo.UpdatedAt = now
	}

	_, err := r.db.ExecContext(ctx, `
		INSERT INTO todos (`+todoColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		todo.ID, todo.Title, sqliteArg(todo.Description), todo.Completed,
		sqliteTime(todo.CreatedAt), sqliteTime(todo.UpdatedAt), todo.UserID,
	)
	if err != nil {
		return fmt.Errorf("creating todo: %w", err)
	}
	return nil
}

func (r *sqliteTodoRepository) FindOwned(ctx context.Context, id, userID string) (*domain.Todo, error) {
	var row todoRow
	err := r.db.GetContext(ctx, &row,
		"SELECT "+todoColumns+" FROM todos WHERE id = ? AND user_id = ?", id, userID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("getting todo %s: %w", id, err)
	}
	todo := row.toDomain()
	return &todo, nil
}

// ListByUser returns the user's todos, newest first. Equal timestamps fall
// back to insertion order.
func (r *sqliteTodoRepository) ListByUser(ctx context.Context, userID string) ([]domain.Todo, error) {
	var rows []todoRow
	err := r.db.SelectContext(ctx, &rows,
		"SELECT "+todoColumns+" FROM todos WHERE user_id = ? ORDER BY created_at DESC, rowid DESC",
		userID)
	if err != nil {
		return nil, fmt.Errorf("listing todos for user %s: %w", userID, err)
	}

	todos := make([]domain.Todo, 0, len(rows))
	for _, row := range rows {
		todos = append(todos, row.toDomain())
	}
	return todos, nil
}

func (r *sqliteTodoRepository) UpdateOwned(ctx context.Context, id, userID string, patch domain.TodoPatch) (*domain.Todo, error) {
	cols := patch.Columns(time.Now().UTC())
	sets := make([]string, 0, len(cols))
	args := make([]any, 0, len(cols)+2)
	for _, col := range cols {
		sets = append(sets, col.Name+" = ?")
		args = append(args, sqliteArg(col.Value))
	}
	args = append(args, id, userID)

	query := "UPDATE todos SET " + strings.Join(sets, ", ") +
		" WHERE id = ? AND user_id = ? RETURNING " + todoColumns

	var row todoRow
	if err := r.db.GetContext(ctx, &row, query, args...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("updating todo %s: %w", id, err)
	}
	todo := row.toDomain()
	return &todo, nil
}

func (r *sqliteTodoRepository) DeleteOwned(ctx context.Context, id, userID string) error {
	result, err := r.db.ExecContext(ctx, "DELETE FROM todos WHERE id = ? AND user_id = ?", id, userID)
	if err != nil {
		return fmt.Errorf("deleting todo %s: %w", id, err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("deleting todo %s: %w", id, err)
	}
	if rows == 0 {
		return ErrNotFound
	}
	return nil
}
