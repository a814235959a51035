package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/Tomlord1122/tudu-backend/internal/domain"
)

func strPtr(s string) *string { return &s }
func boolPtr(b bool) *bool    { return &b }

func mustCreateUser(t *testing.T, users UserRepository, email string) *domain.User {
	t.Helper()
	user := &domain.User{Email: email}
	if err := users.Create(context.Background(), user); err != nil {
		t.Fatalf("creating user %s: %v", email, err)
	}
	return user
}

func mustCreateTodo(t *testing.T, todos TodoRepository, userID, title string) *domain.Todo {
	t.Helper()
	todo := &domain.Todo{Title: title, UserID: userID}
	if err := todos.Create(context.Background(), todo); err != nil {
		t.Fatalf("creating todo %q: %v", title, err)
	}
	return todo
}

// runRepositoryContract exercises the behaviour every backend must share.
func runRepositoryContract(t *testing.T, todos TodoRepository, users UserRepository) {
	ctx := context.Background()
	alice := mustCreateUser(t, users, "alice@example.com")
	bob := mustCreateUser(t, users, "bob@example.com")

	t.Run("user lookup by email", func(t *testing.T) {
		got, err := users.FindByEmail(ctx, "alice@example.com")
		if err != nil {
			t.Fatalf("FindByEmail() returned error: %v", err)
		}
		if got.ID != alice.ID {
			t.Errorf("expected id %s, got %s", alice.ID, got.ID)
		}

		_, err = users.FindByEmail(ctx, "nobody@example.com")
		if !errors.Is(err, ErrNotFound) {
			t.Errorf("expected ErrNotFound, got %v", err)
		}
	})

	t.Run("duplicate email", func(t *testing.T) {
		err := users.Create(ctx, &domain.User{Email: "alice@example.com"})
		if !errors.Is(err, ErrDuplicate) {
			t.Errorf("expected ErrDuplicate, got %v", err)
		}
	})

	t.Run("create assigns id and timestamps", func(t *testing.T) {
		todo := mustCreateTodo(t, todos, alice.ID, "Buy milk")
		if todo.ID == "" {
			t.Fatal("expected id to be assigned")
		}
		if todo.CreatedAt.IsZero() {
			t.Error("expected created_at to be set")
		}

		got, err := todos.FindOwned(ctx, todo.ID, alice.ID)
		if err != nil {
			t.Fatalf("FindOwned() returned error: %v", err)
		}
		if got.Title != "Buy milk" || got.Completed || got.Description != nil {
			t.Errorf("unexpected stored todo %+v", got)
		}
	})

	t.Run("find is scoped to owner", func(t *testing.T) {
		todo := mustCreateTodo(t, todos, alice.ID, "private")
		_, err := todos.FindOwned(ctx, todo.ID, bob.ID)
		if !errors.Is(err, ErrNotFound) {
			t.Errorf("expected ErrNotFound for other owner, got %v", err)
		}
		_, err = todos.FindOwned(ctx, "does-not-exist", alice.ID)
		if !errors.Is(err, ErrNotFound) {
			t.Errorf("expected ErrNotFound for unknown id, got %v", err)
		}
	})

	t.Run("list newest first and scoped", func(t *testing.T) {
		carol := mustCreateUser(t, users, "carol@example.com")
		var ids []string
		for _, title := range []string{"first", "second", "third"} {
			ids = append(ids, mustCreateTodo(t, todos, carol.ID, title).ID)
			time.Sleep(2 * time.Millisecond)
		}
		mustCreateTodo(t, todos, bob.ID, "not carol's")

		list, err := todos.ListByUser(ctx, carol.ID)
		if err != nil {
			t.Fatalf("ListByUser() returned error: %v", err)
		}
		if len(list) != 3 {
			t.Fatalf("expected 3 todos, got %d", len(list))
		}
		for i, want := range []string{ids[2], ids[1], ids[0]} {
			if list[i].ID != want {
				t.Errorf("position %d: expected %s, got %s", i, want, list[i].ID)
			}
		}

		empty, err := todos.ListByUser(ctx, "no-such-user")
		if err != nil {
			t.Fatalf("ListByUser() returned error: %v", err)
		}
		if empty == nil || len(empty) != 0 {
			t.Errorf("expected empty non-nil slice, got %#v", empty)
		}
	})

	t.Run("sparse update keeps untouched fields", func(t *testing.T) {
		todo := &domain.Todo{Title: "Write report", Description: strPtr("Q3 numbers"), UserID: alice.ID}
		if err := todos.Create(ctx, todo); err != nil {
			t.Fatalf("Create() returned error: %v", err)
		}

		updated, err := todos.UpdateOwned(ctx, todo.ID, alice.ID, domain.TodoPatch{Completed: boolPtr(true)})
		if err != nil {
			t.Fatalf("UpdateOwned() returned error: %v", err)
		}
		if !updated.Completed {
			t.Error("expected completed to be true")
		}
		if updated.Title != "Write report" {
			t.Errorf("expected title to be unchanged, got %q", updated.Title)
		}
		if updated.Description == nil || *updated.Description != "Q3 numbers" {
			t.Errorf("expected description to be unchanged, got %v", updated.Description)
		}
		if drift := updated.CreatedAt.Sub(todo.CreatedAt).Abs(); drift > time.Microsecond {
			t.Errorf("expected created_at to be unchanged, got %v want %v", updated.CreatedAt, todo.CreatedAt)
		}
	})

	t.Run("update can clear description", func(t *testing.T) {
		todo := &domain.Todo{Title: "Call mom", Description: strPtr("Sunday"), UserID: alice.ID}
		if err := todos.Create(ctx, todo); err != nil {
			t.Fatalf("Create() returned error: %v", err)
		}

		updated, err := todos.UpdateOwned(ctx, todo.ID, alice.ID,
			domain.TodoPatch{Title: strPtr("Call dad"), DescriptionSet: true})
		if err != nil {
			t.Fatalf("UpdateOwned() returned error: %v", err)
		}
		if updated.Title != "Call dad" {
			t.Errorf("expected new title, got %q", updated.Title)
		}
		if updated.Description != nil {
			t.Errorf("expected description to be cleared, got %q", *updated.Description)
		}
	})

	t.Run("update by non-owner is rejected and leaves row alone", func(t *testing.T) {
		todo := mustCreateTodo(t, todos, alice.ID, "mine")

		_, err := todos.UpdateOwned(ctx, todo.ID, bob.ID, domain.TodoPatch{Completed: boolPtr(true)})
		if !errors.Is(err, ErrNotFound) {
			t.Fatalf("expected ErrNotFound, got %v", err)
		}

		got, err := todos.FindOwned(ctx, todo.ID, alice.ID)
		if err != nil {
			t.Fatalf("FindOwned() returned error: %v", err)
		}
		if got.Completed {
			t.Error("expected todo to be left unmodified")
		}
	})

	t.Run("empty patch still checks ownership", func(t *testing.T) {
		todo := mustCreateTodo(t, todos, alice.ID, "untouched")

		got, err := todos.UpdateOwned(ctx, todo.ID, alice.ID, domain.TodoPatch{})
		if err != nil {
			t.Fatalf("UpdateOwned() returned error: %v", err)
		}
		if got.Title != "untouched" {
			t.Errorf("unexpected title %q", got.Title)
		}

		_, err = todos.UpdateOwned(ctx, todo.ID, bob.ID, domain.TodoPatch{})
		if !errors.Is(err, ErrNotFound) {
			t.Errorf("expected ErrNotFound, got %v", err)
		}
	})

	t.Run("delete is owner scoped and terminal", func(t *testing.T) {
		todo := mustCreateTodo(t, todos, alice.ID, "to delete")

		if err := todos.DeleteOwned(ctx, todo.ID, bob.ID); !errors.Is(err, ErrNotFound) {
			t.Fatalf("expected ErrNotFound for non-owner, got %v", err)
		}
		if err := todos.DeleteOwned(ctx, todo.ID, alice.ID); err != nil {
			t.Fatalf("DeleteOwned() returned error: %v", err)
		}
		if err := todos.DeleteOwned(ctx, todo.ID, alice.ID); !errors.Is(err, ErrNotFound) {
			t.Errorf("expected second delete to return ErrNotFound, got %v", err)
		}
		if _, err := todos.FindOwned(ctx, todo.ID, alice.ID); !errors.Is(err, ErrNotFound) {
			t.Errorf("expected deleted todo to be gone, got %v", err)
		}
	})
}
