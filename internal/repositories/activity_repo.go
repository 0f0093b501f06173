package repositories

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prudhvinik1/mobilerp/internal/models"
)

type PostgresActivityRepository struct {
	pool *pgxpool.Pool
}

func NewPostgresActivityRepository(pool *pgxpool.Pool) *PostgresActivityRepository {
	return &PostgresActivityRepository{pool: pool}
}

func (r *PostgresActivityRepository) Append(ctx context.Context, activity *models.Activity) error {
	query := `INSERT INTO activities (user_id, type, title, description, icon, icon_bg_color, timestamp, reference, reference_type)
              VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
              RETURNING id`

	err := r.pool.QueryRow(ctx, query,
		activity.UserID,
		activity.Type,
		activity.Title,
		activity.Description,
		activity.Icon,
		activity.IconBgColor,
		activity.Timestamp,
		activity.Reference,
		activity.ReferenceType,
	).Scan(&activity.ID)
	if err != nil {
		return fmt.Errorf("failed to append activity: %w", err)
	}
	return nil
}

func (r *PostgresActivityRepository) GetByUserID(ctx context.Context, userID uuid.UUID, limit int) ([]*models.Activity, error) {
	query := `SELECT id, user_id, type, title, description, icon, icon_bg_color, timestamp, reference, reference_type
              FROM activities
              WHERE user_id = $1
              ORDER BY timestamp DESC`
	args := []any{userID}
	if limit > 0 {
		query += ` LIMIT $2`
		args = append(args, limit)
	}

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query activities: %w", err)
	}
	defer rows.Close()

	var activities []*models.Activity
	for rows.Next() {
		var activity models.Activity
		err := rows.Scan(
			&activity.ID,
			&activity.UserID,
			&activity.Type,
			&activity.Title,
			&activity.Description,
			&activity.Icon,
			&activity.IconBgColor,
			&activity.Timestamp,
			&activity.Reference,
			&activity.ReferenceType,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan activity: %w", err)
		}
		activities = append(activities, &activity)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating activities: %w", err)
	}
	return activities, nil
}
