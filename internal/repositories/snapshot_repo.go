package repositories

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prudhvinik1/mobilerp/internal/models"
)

type PostgresSnapshotRepository struct {
	pool *pgxpool.Pool
}

func NewPostgresSnapshotRepository(pool *pgxpool.Pool) *PostgresSnapshotRepository {
	return &PostgresSnapshotRepository{pool: pool}
}

func (r *PostgresSnapshotRepository) Get(ctx context.Context, userID uuid.UUID, dataType string) (*models.CachedSnapshot, error) {
	query := `SELECT id, user_id, data_type, data, last_synced
              FROM cached_data
              WHERE user_id = $1 AND data_type = $2`

	var snapshot models.CachedSnapshot
	err := r.pool.QueryRow(ctx, query, userID, dataType).Scan(
		&snapshot.ID,
		&snapshot.UserID,
		&snapshot.DataType,
		&snapshot.Data,
		&snapshot.LastSynced,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get cached snapshot: %w", err)
	}
	return &snapshot, nil
}

// Upsert replaces the snapshot for (user, data type) wholesale. The unique
// index on (user_id, data_type) makes the row-level replacement atomic, so
// concurrent syncs resolve last-write-wins.
func (r *PostgresSnapshotRepository) Upsert(ctx context.Context, userID uuid.UUID, dataType string, data json.RawMessage, syncedAt time.Time) (*models.CachedSnapshot, error) {
	query := `INSERT INTO cached_data (user_id, data_type, data, last_synced)
              VALUES ($1, $2, $3, $4)
              ON CONFLICT (user_id, data_type) DO UPDATE
              SET data = EXCLUDED.data,
                  last_synced = EXCLUDED.last_synced
              RETURNING id`

	snapshot := &models.CachedSnapshot{
		UserID:     userID,
		DataType:   dataType,
		Data:       data,
		LastSynced: syncedAt,
	}
	err := r.pool.QueryRow(ctx, query, userID, dataType, data, syncedAt).Scan(&snapshot.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to upsert cached snapshot: %w", err)
	}
	return snapshot, nil
}
