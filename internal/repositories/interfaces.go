package repositories

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/prudhvinik1/mobilerp/internal/models"
)

type UserRepository interface {
	Create(ctx context.Context, user *models.User) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.User, error)
	GetByUsername(ctx context.Context, username string) (*models.User, error)
	UpdateLastSync(ctx context.Context, id uuid.UUID, lastSync time.Time) error
}

type TaskRepository interface {
	Create(ctx context.Context, task *models.Task) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Task, error)
	// GetByUserID returns the user's tasks, incomplete before completed,
	// then by due date ascending.
	GetByUserID(ctx context.Context, userID uuid.UUID) ([]*models.Task, error)
	SetCompleted(ctx context.Context, id uuid.UUID, isCompleted bool, completedAt *time.Time) (*models.Task, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type ActivityRepository interface {
	Append(ctx context.Context, activity *models.Activity) error
	// GetByUserID returns activities in reverse-chronological order,
	// truncated to limit when limit > 0.
	GetByUserID(ctx context.Context, userID uuid.UUID, limit int) ([]*models.Activity, error)
}

type StatRepository interface {
	// Upsert replaces the stat for (UserID, Type), creating it if absent.
	Upsert(ctx context.Context, stat *models.Stat) error
	GetByUserID(ctx context.Context, userID uuid.UUID) ([]*models.Stat, error)
}

// SnapshotRepository is the cache store for remote collection snapshots,
// one row per (user, data type).
type SnapshotRepository interface {
	Get(ctx context.Context, userID uuid.UUID, dataType string) (*models.CachedSnapshot, error)
	// Upsert overwrites any existing snapshot for the key in full.
	Upsert(ctx context.Context, userID uuid.UUID, dataType string, data json.RawMessage, syncedAt time.Time) (*models.CachedSnapshot, error)
}
