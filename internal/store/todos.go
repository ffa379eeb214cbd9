package store

import (
	"context"
	"errors"

	"todoweb/internal/models"
)

var ErrTodoNotFound = errors.New("todo not found")

// TodoStore is the row-store boundary for the todos table.
// Every operation is scoped to an owner; a row is never visible
// to or mutable by anyone but the user who created it.
type TodoStore interface {
	// ListByOwner returns every todo of the owner ordered by id
	// ascending. Ordering is the store's contract; callers do not
	// re-sort.
	ListByOwner(ctx context.Context, ownerID string) ([]models.Todo, error)

	// Insert stores a new incomplete todo and returns the row with
	// its store-assigned id.
	Insert(ctx context.Context, ownerID, task string) (*models.Todo, error)

	// SetComplete updates the completion flag of one todo.
	// It returns ErrTodoNotFound if no row matches id and owner.
	SetComplete(ctx context.Context, id int64, ownerID string, complete bool) error

	// Rename replaces the task text of one todo.
	// It returns ErrTodoNotFound if no row matches id and owner.
	Rename(ctx context.Context, id int64, ownerID, task string) error

	// Delete removes one todo.
	// It returns ErrTodoNotFound if no row matches id and owner.
	Delete(ctx context.Context, id int64, ownerID string) error
}
