package repositories

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prudhvinik1/mobilerp/internal/models"
)

type PostgresTaskRepository struct {
	pool *pgxpool.Pool
}

func NewPostgresTaskRepository(pool *pgxpool.Pool) *PostgresTaskRepository {
	return &PostgresTaskRepository{pool: pool}
}

func (r *PostgresTaskRepository) Create(ctx context.Context, task *models.Task) error {
	query := `INSERT INTO tasks (user_id, title, due_date, is_completed, completed_at)
              VALUES ($1, $2, $3, $4, $5)
              RETURNING id, created_at`

	err := r.pool.QueryRow(ctx, query,
		task.UserID,
		task.Title,
		task.DueDate,
		task.IsCompleted,
		task.CompletedAt,
	).Scan(&task.ID, &task.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to create task: %w", err)
	}
	return nil
}

func (r *PostgresTaskRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Task, error) {
	query := `SELECT id, user_id, title, due_date, is_completed, completed_at, created_at
              FROM tasks WHERE id = $1`

	var task models.Task
	err := r.pool.QueryRow(ctx, query, id).Scan(
		&task.ID,
		&task.UserID,
		&task.Title,
		&task.DueDate,
		&task.IsCompleted,
		&task.CompletedAt,
		&task.CreatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get task: %w", err)
	}
	return &task, nil
}

func (r *PostgresTaskRepository) GetByUserID(ctx context.Context, userID uuid.UUID) ([]*models.Task, error) {
	// Incomplete tasks first, then by due date; NULL due dates sort last.
	query := `SELECT id, user_id, title, due_date, is_completed, completed_at, created_at
              FROM tasks
              WHERE user_id = $1
              ORDER BY is_completed ASC, due_date ASC NULLS LAST, created_at ASC`

	rows, err := r.pool.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query tasks: %w", err)
	}
	defer rows.Close()

	var tasks []*models.Task
	for rows.Next() {
		var task models.Task
		err := rows.Scan(
			&task.ID,
			&task.UserID,
			&task.Title,
			&task.DueDate,
			&task.IsCompleted,
			&task.CompletedAt,
			&task.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan task: %w", err)
		}
		tasks = append(tasks, &task)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating tasks: %w", err)
	}
	return tasks, nil
}

func (r *PostgresTaskRepository) SetCompleted(ctx context.Context, id uuid.UUID, isCompleted bool, completedAt *time.Time) (*models.Task, error) {
	query := `UPDATE tasks
              SET is_completed = $1, completed_at = $2
              WHERE id = $3
              RETURNING id, user_id, title, due_date, is_completed, completed_at, created_at`

	var task models.Task
	err := r.pool.QueryRow(ctx, query, isCompleted, completedAt, id).Scan(
		&task.ID,
		&task.UserID,
		&task.Title,
		&task.DueDate,
		&task.IsCompleted,
		&task.CompletedAt,
		&task.CreatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to update task: %w", err)
	}
	return &task, nil
}

func (r *PostgresTaskRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result, err := r.pool.Exec(ctx, `DELETE FROM tasks WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete task: %w", err)
	}
	if result.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
