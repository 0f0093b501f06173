package repositories

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prudhvinik1/mobilerp/internal/models"
)

type PostgresStatRepository struct {
	pool *pgxpool.Pool
}

func NewPostgresStatRepository(pool *pgxpool.Pool) *PostgresStatRepository {
	return &PostgresStatRepository{pool: pool}
}

// Upsert keeps the at-most-one-stat-per-(user, type) invariant via the
// unique index on (user_id, type).
func (r *PostgresStatRepository) Upsert(ctx context.Context, stat *models.Stat) error {
	query := `INSERT INTO stats (user_id, type, value, change_percentage, change_direction, icon, last_updated)
              VALUES ($1, $2, $3, $4, $5, $6, $7)
              ON CONFLICT (user_id, type) DO UPDATE
              SET value = EXCLUDED.value,
                  change_percentage = EXCLUDED.change_percentage,
                  change_direction = EXCLUDED.change_direction,
                  icon = EXCLUDED.icon,
                  last_updated = EXCLUDED.last_updated
              RETURNING id`

	err := r.pool.QueryRow(ctx, query,
		stat.UserID,
		stat.Type,
		stat.Value,
		stat.ChangePercentage,
		stat.ChangeDirection,
		stat.Icon,
		stat.LastUpdated,
	).Scan(&stat.ID)
	if err != nil {
		return fmt.Errorf("failed to upsert stat: %w", err)
	}
	return nil
}

func (r *PostgresStatRepository) GetByUserID(ctx context.Context, userID uuid.UUID) ([]*models.Stat, error) {
	query := `SELECT id, user_id, type, value, change_percentage, change_direction, icon, last_updated
              FROM stats
              WHERE user_id = $1
              ORDER BY type ASC`

	rows, err := r.pool.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query stats: %w", err)
	}
	defer rows.Close()

	var stats []*models.Stat
	for rows.Next() {
		var stat models.Stat
		err := rows.Scan(
			&stat.ID,
			&stat.UserID,
			&stat.Type,
			&stat.Value,
			&stat.ChangePercentage,
			&stat.ChangeDirection,
			&stat.Icon,
			&stat.LastUpdated,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan stat: %w", err)
		}
		stats = append(stats, &stat)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating stats: %w", err)
	}
	return stats, nil
}
