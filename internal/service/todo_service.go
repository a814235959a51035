package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/Tomlord1122/tudu-backend/internal/domain"
	"github.com/Tomlord1122/tudu-backend/internal/repository"
)

// CreateTodoRequest holds the data needed to create a new todo
type CreateTodoRequest struct {
	Title       string  `json:"title"`
	Description *string `json:"description"`
}

// UpdateTodoRequest holds the data for a sparse update. Only fields present
// in the JSON body are applied.
type UpdateTodoRequest struct {
	Title       Optional[string] `json:"title"`
	Description Optional[string] `json:"description"`
	Completed   Optional[bool]   `json:"completed"`
}

// TodoResponse is the standard representation of a Todo returned by the service.
type TodoResponse struct {
	ID          string  `json:"id"`
	Title       string  `json:"title"`
	Description *string `json:"description"`
	Completed   bool    `json:"completed"`
	UserID      string  `json:"userId"`
	CreatedAt   string  `json:"createdAt"`
	UpdatedAt   string  `json:"updatedAt"`
}

func newTodoResponse(todo *domain.Todo) TodoResponse {
	return TodoResponse{
		ID:          todo.ID,
		Title:       todo.Title,
		Description: todo.Description,
		Completed:   todo.Completed,
		UserID:      todo.UserID,
		CreatedAt:   todo.CreatedAt.UTC().Format(time.RFC3339Nano),
		UpdatedAt:   todo.UpdatedAt.UTC().Format(time.RFC3339Nano),
	}
}

// TodoService defines the operations for managing todos. Every method
// first resolves the caller's email to a user and only ever touches that
// user's rows. Request bodies are passed raw and decoded only once the
// caller is known.
type TodoService interface {
	ListTodos(ctx context.Context, email string) ([]TodoResponse, error)
	GetTodo(ctx context.Context, email, id string) (*TodoResponse, error)
	CreateTodo(ctx context.Context, email string, body json.RawMessage) (*TodoResponse, error)
	UpdateTodo(ctx context.Context, email, id string, body json.RawMessage) (*TodoResponse, error)
	DeleteTodo(ctx context.Context, email, id string) error
}

type todoService struct {
	todos repository.TodoRepository
	users repository.UserRepository
}

func NewTodoService(todos repository.TodoRepository, users repository.UserRepository) TodoService {
	return &todoService{
		todos: todos,
		users: users,
	}
}

// resolveUser maps the session email to the owning user row.
func (s *todoService) resolveUser(ctx context.Context, email string) (*domain.User, error) {
	if email == "" {
		return nil, ErrUnauthorized
	}
	user, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("resolving user: %w", err)
	}
	return user, nil
}

func (s *todoService) ListTodos(ctx context.Context, email string) ([]TodoResponse, error) {
	user, err := s.resolveUser(ctx, email)
	if err != nil {
		return nil, err
	}

	todos, err := s.todos.ListByUser(ctx, user.ID)
	if err != nil {
		return nil, err
	}

	responses := make([]TodoResponse, 0, len(todos))
	for i := range todos {
		responses = append(responses, newTodoResponse(&todos[i]))
	}
	return responses, nil
}

func (s *todoService) GetTodo(ctx context.Context, email, id string) (*TodoResponse, error) {
	user, err := s.resolveUser(ctx, email)
	if err != nil {
		return nil, err
	}

	todo, err := s.todos.FindOwned(ctx, id, user.ID)
	if err != nil {
		return nil, notFound(err)
	}
	resp := newTodoResponse(todo)
	return &resp, nil
}

// CreateTodo stores a new todo owned by the caller. An empty description is
// stored as NULL.
func (s *todoService) CreateTodo(ctx context.Context, email string, body json.RawMessage) (*TodoResponse, error) {
	user, err := s.resolveUser(ctx, email)
	if err != nil {
		return nil, err
	}

	var req CreateTodoRequest
	if err := decodeBody(body, &req); err != nil {
		return nil, err
	}

	if req.Title == "" {
		return nil, &ValidationError{Field: "title", Message: "Title is required"}
	}

	newTodo := &domain.Todo{
		Title:     req.Title,
		Completed: false,
		UserID:    user.ID,
	}
	if req.Description != nil && *req.Description != "" {
		desc := *req.Description
		newTodo.Description = &desc
	}

	if err := s.todos.Create(ctx, newTodo); err != nil {
		return nil, err
	}

	resp := newTodoResponse(newTodo)
	return &resp, nil
}

// UpdateTodo applies the fields present in body. A todo that is missing or
// owned by someone else is always ErrTodoNotFound, whatever the body holds.
func (s *todoService) UpdateTodo(ctx context.Context, email, id string, body json.RawMessage) (*TodoResponse, error) {
	user, err := s.resolveUser(ctx, email)
	if err != nil {
		return nil, err
	}

	var req UpdateTodoRequest
	if err := decodeBody(body, &req); err != nil {
		return nil, err
	}

	patch, err := req.toPatch()
	if err != nil {
		if _, ferr := s.todos.FindOwned(ctx, id, user.ID); ferr != nil {
			return nil, notFound(ferr)
		}
		return nil, err
	}

	todo, err := s.todos.UpdateOwned(ctx, id, user.ID, patch)
	if err != nil {
		return nil, notFound(err)
	}
	resp := newTodoResponse(todo)
	return &resp, nil
}

func (s *todoService) DeleteTodo(ctx context.Context, email, id string) error {
	user, err := s.resolveUser(ctx, email)
	if err != nil {
		return err
	}

	if err := s.todos.DeleteOwned(ctx, id, user.ID); err != nil {
		return notFound(err)
	}
	return nil
}

// toPatch converts the request into a domain patch. Present values apply
// as sent, including "" and false. Only description may be null.
func (req UpdateTodoRequest) toPatch() (domain.TodoPatch, error) {
	var patch domain.TodoPatch

	if req.Title.Set {
		if req.Title.Null {
			return patch, fmt.Errorf("%w: title is null", ErrInvalidPatch)
		}
		title := req.Title.Value
		patch.Title = &title
	}

	if req.Description.Set {
		patch.DescriptionSet = true
		if !req.Description.Null {
			desc := req.Description.Value
			patch.Description = &desc
		}
	}

	if req.Completed.Set {
		if req.Completed.Null {
			return patch, fmt.Errorf("%w: completed is null", ErrInvalidPatch)
		}
		completed := req.Completed.Value
		patch.Completed = &completed
	}

	return patch, nil
}

func decodeBody(body json.RawMessage, dst any) error {
	if err := json.Unmarshal(body, dst); err != nil {
		return fmt.Errorf("%w: %v", ErrMalformedBody, err)
	}
	return nil
}

func notFound(err error) error {
	if errors.Is(err, repository.ErrNotFound) {
		return ErrTodoNotFound
	}
	return err
}
