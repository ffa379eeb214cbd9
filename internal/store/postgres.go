package store

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"

	"todoweb/internal/models"
)

type postgresStore struct {
	logger zerolog.Logger
	pgPool *pgxpool.Pool
}

func NewPostgresStore(
	logger zerolog.Logger,
	pgPool *pgxpool.Pool,
) TodoStore {
	return &postgresStore{
		logger: logger,
		pgPool: pgPool,
	}
}

func (s *postgresStore) ListByOwner(ctx context.Context, ownerID string) ([]models.Todo, error) {
	const selectTodosByOwnerQuery = `
SELECT id,
       task,
       is_complete,
       inserted_at
FROM todos
WHERE user_id = $1
ORDER BY id ASC
`
	rows, err := s.pgPool.Query(
		ctx,
		selectTodosByOwnerQuery,
		ownerID,
	)
	if err != nil {
		s.logger.Error().
			Err(err).
			Str("user_id", ownerID).
			Msg("failed to select todos by owner")
		return nil, err
	}
	defer rows.Close()

	todos := make([]models.Todo, 0, 8)
	for rows.Next() {
		todo := models.Todo{UserID: ownerID}
		err = rows.Scan(
			&todo.ID,
			&todo.Task,
			&todo.IsComplete,
			&todo.InsertedAt,
		)
		if err != nil {
			s.logger.Error().
				Err(err).
				Msg("failed to scan todo")
			return nil, err
		}
		todos = append(todos, todo)
	}

	err = rows.Err()
	if err != nil {
		s.logger.Error().
			Err(err).
			Msg("failed to iterate over rows")
		return nil, err
	}
	s.logger.Debug().
		Int("count", len(todos)).
		Str("user_id", ownerID).
		Msg("selected todos by owner")

	return todos, nil
}

func (s *postgresStore) Insert(ctx context.Context, ownerID, task string) (*models.Todo, error) {
	todo := models.Todo{
		UserID:     ownerID,
		Task:       task,
		InsertedAt: time.Now(),
	}

	const insertTodoQuery = `
INSERT INTO todos (user_id,
                   task,
                   inserted_at)
VALUES ($1, $2, $3)
RETURNING id, is_complete
`
	err := s.pgPool.QueryRow(
		ctx,
		insertTodoQuery,
		todo.UserID,
		todo.Task,
		todo.InsertedAt,
	).Scan(
		&todo.ID,
		&todo.IsComplete,
	)
	if err != nil {
		s.logger.Error().
			Err(err).
			Msg("failed to insert todo")
		return nil, err
	}
	s.logger.Debug().
		Int64("todo_id", todo.ID).
		Msg("inserted todo")

	s.logger.Info().
		Int64("todo_id", todo.ID).
		Str("user_id", ownerID).
		Msg("created todo")
	return &todo, nil
}

func (s *postgresStore) SetComplete(ctx context.Context, id int64, ownerID string, complete bool) error {
	const updateCompleteQuery = `
UPDATE todos
SET is_complete = $1
WHERE id = $2 AND user_id = $3
`
	tag, err := s.pgPool.Exec(
		ctx,
		updateCompleteQuery,
		complete,
		id,
		ownerID,
	)
	if err != nil {
		s.logger.Error().
			Err(err).
			Int64("todo_id", id).
			Msg("failed to update completion flag")
		return err
	}
	if tag.RowsAffected() == 0 {
		s.logger.Warn().
			Int64("todo_id", id).
			Str("user_id", ownerID).
			Msg("todo not found")
		return ErrTodoNotFound
	}

	s.logger.Info().
		Int64("todo_id", id).
		Bool("is_complete", complete).
		Msg("updated completion flag")
	return nil
}

func (s *postgresStore) Rename(ctx context.Context, id int64, ownerID, task string) error {
	const updateTaskQuery = `
UPDATE todos
SET task = $1
WHERE id = $2 AND user_id = $3
`
	tag, err := s.pgPool.Exec(
		ctx,
		updateTaskQuery,
		task,
		id,
		ownerID,
	)
	if err != nil {
		s.logger.Error().
			Err(err).
			Int64("todo_id", id).
			Msg("failed to rename todo")
		return err
	}
	if tag.RowsAffected() == 0 {
		s.logger.Warn().
			Int64("todo_id", id).
			Str("user_id", ownerID).
			Msg("todo not found")
		return ErrTodoNotFound
	}

	s.logger.Info().
		Int64("todo_id", id).
		Msg("renamed todo")
	return nil
}

func (s *postgresStore) Delete(ctx context.Context, id int64, ownerID string) error {
	const deleteTodoQuery = `
DELETE FROM todos
WHERE id = $1 AND user_id = $2
`
	tag, err := s.pgPool.Exec(
		ctx,
		deleteTodoQuery,
		id,
		ownerID,
	)
	if err != nil {
		s.logger.Error().
			Err(err).
			Int64("todo_id", id).
			Msg("failed to delete todo")
		return err
	}
	if tag.RowsAffected() == 0 {
		s.logger.Warn().
			Int64("todo_id", id).
			Str("user_id", ownerID).
			Msg("todo not found")
		return ErrTodoNotFound
	}

	s.logger.Info().
		Int64("todo_id", id).
		Msg("deleted todo")
	return nil
}
