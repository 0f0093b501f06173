package repositories

import (
	"context"
	"encoding/json"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/prudhvinik1/mobilerp/internal/models"
)

// NewMemoryStore returns a Store backed by in-process maps. It implements
// the same contracts as the Postgres store and is what local development
// and tests run against.
func NewMemoryStore() *Store {
	state := &memoryState{
		users:      make(map[uuid.UUID]*models.User),
		tasks:      make(map[uuid.UUID]*models.Task),
		activities: make(map[uuid.UUID]*models.Activity),
		stats:      make(map[uuid.UUID]*models.Stat),
		snapshots:  make(map[snapshotKey]*models.CachedSnapshot),
	}
	return &Store{
		Users:      &memoryUserRepo{state},
		Tasks:      &memoryTaskRepo{state},
		Activities: &memoryActivityRepo{state},
		Stats:      &memoryStatRepo{state},
		Snapshots:  &memorySnapshotRepo{state},
	}
}

type snapshotKey struct {
	userID   uuid.UUID
	dataType string
}

type memoryState struct {
	mu         sync.RWMutex
	users      map[uuid.UUID]*models.User
	tasks      map[uuid.UUID]*models.Task
	activities map[uuid.UUID]*models.Activity
	stats      map[uuid.UUID]*models.Stat
	snapshots  map[snapshotKey]*models.CachedSnapshot
}

type memoryUserRepo struct{ state *memoryState }

func (r *memoryUserRepo) Create(ctx context.Context, user *models.User) error {
	r.state.mu.Lock()
	defer r.state.mu.Unlock()

	user.ID = uuid.New()
	now := time.Now()
	user.CreatedAt = now
	user.UpdatedAt = now
	clone := *user
	r.state.users[user.ID] = &clone
	return nil
}

func (r *memoryUserRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	r.state.mu.RLock()
	defer r.state.mu.RUnlock()

	user, ok := r.state.users[id]
	if !ok {
		return nil, ErrNotFound
	}
	clone := *user
	return &clone, nil
}

func (r *memoryUserRepo) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	r.state.mu.RLock()
	defer r.state.mu.RUnlock()

	for _, user := range r.state.users {
		if user.Username == username {
			clone := *user
			return &clone, nil
		}
	}
	return nil, ErrNotFound
}

func (r *memoryUserRepo) UpdateLastSync(ctx context.Context, id uuid.UUID, lastSync time.Time) error {
	r.state.mu.Lock()
	defer r.state.mu.Unlock()

	user, ok := r.state.users[id]
	if !ok {
		return ErrNotFound
	}
	ts := lastSync
	user.LastSync = &ts
	user.UpdatedAt = time.Now()
	return nil
}

type memoryTaskRepo struct{ state *memoryState }

func (r *memoryTaskRepo) Create(ctx context.Context, task *models.Task) error {
	r.state.mu.Lock()
	defer r.state.mu.Unlock()

	task.ID = uuid.New()
	task.CreatedAt = time.Now()
	clone := *task
	r.state.tasks[task.ID] = &clone
	return nil
}

func (r *memoryTaskRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.Task, error) {
	r.state.mu.RLock()
	defer r.state.mu.RUnlock()

	task, ok := r.state.tasks[id]
	if !ok {
		return nil, ErrNotFound
	}
	clone := *task
	return &clone, nil
}

func (r *memoryTaskRepo) GetByUserID(ctx context.Context, userID uuid.UUID) ([]*models.Task, error) {
	r.state.mu.RLock()
	defer r.state.mu.RUnlock()

	var tasks []*models.Task
	for _, task := range r.state.tasks {
		if task.UserID == userID {
			clone := *task
			tasks = append(tasks, &clone)
		}
	}

	// Incomplete first, then by due date; tasks without a due date last.
	sort.SliceStable(tasks, func(i, j int) bool {
		a, b := tasks[i], tasks[j]
		if a.IsCompleted != b.IsCompleted {
			return !a.IsCompleted
		}
		switch {
		case a.DueDate != nil && b.DueDate != nil:
			if !a.DueDate.Equal(*b.DueDate) {
				return a.DueDate.Before(*b.DueDate)
			}
		case a.DueDate != nil:
			return true
		case b.DueDate != nil:
			return false
		}
		return a.CreatedAt.Before(b.CreatedAt)
	})
	return tasks, nil
}

func (r *memoryTaskRepo) SetCompleted(ctx context.Context, id uuid.UUID, isCompleted bool, completedAt *time.Time) (*models.Task, error) {
	r.state.mu.Lock()
	defer r.state.mu.Unlock()

	task, ok := r.state.tasks[id]
	if !ok {
		return nil, ErrNotFound
	}
	task.IsCompleted = isCompleted
	task.CompletedAt = completedAt
	clone := *task
	return &clone, nil
}

func (r *memoryTaskRepo) Delete(ctx context.Context, id uuid.UUID) error {
	r.state.mu.Lock()
	defer r.state.mu.Unlock()

	if _, ok := r.state.tasks[id]; !ok {
		return ErrNotFound
	}
	delete(r.state.tasks, id)
	return nil
}

type memoryActivityRepo struct{ state *memoryState }

func (r *memoryActivityRepo) Append(ctx context.Context, activity *models.Activity) error {
	r.state.mu.Lock()
	defer r.state.mu.Unlock()

	activity.ID = uuid.New()
	clone := *activity
	r.state.activities[activity.ID] = &clone
	return nil
}

func (r *memoryActivityRepo) GetByUserID(ctx context.Context, userID uuid.UUID, limit int) ([]*models.Activity, error) {
	r.state.mu.RLock()
	defer r.state.mu.RUnlock()

	var activities []*models.Activity
	for _, activity := range r.state.activities {
		if activity.UserID == userID {
			clone := *activity
			activities = append(activities, &clone)
		}
	}
	sort.SliceStable(activities, func(i, j int) bool {
		return activities[i].Timestamp.After(activities[j].Timestamp)
	})
	if limit > 0 && len(activities) > limit {
		activities = activities[:limit]
	}
	return activities, nil
}

type memoryStatRepo struct{ state *memoryState }

func (r *memoryStatRepo) Upsert(ctx context.Context, stat *models.Stat) error {
	r.state.mu.Lock()
	defer r.state.mu.Unlock()

	for _, existing := range r.state.stats {
		if existing.UserID == stat.UserID && existing.Type == stat.Type {
			stat.ID = existing.ID
			clone := *stat
			r.state.stats[existing.ID] = &clone
			return nil
		}
	}
	stat.ID = uuid.New()
	clone := *stat
	r.state.stats[stat.ID] = &clone
	return nil
}

func (r *memoryStatRepo) GetByUserID(ctx context.Context, userID uuid.UUID) ([]*models.Stat, error) {
	r.state.mu.RLock()
	defer r.state.mu.RUnlock()

	var stats []*models.Stat
	for _, stat := range r.state.stats {
		if stat.UserID == userID {
			clone := *stat
			stats = append(stats, &clone)
		}
	}
	sort.SliceStable(stats, func(i, j int) bool {
		return stats[i].Type < stats[j].Type
	})
	return stats, nil
}

type memorySnapshotRepo struct{ state *memoryState }

func (r *memorySnapshotRepo) Get(ctx context.Context, userID uuid.UUID, dataType string) (*models.CachedSnapshot, error) {
	r.state.mu.RLock()
	defer r.state.mu.RUnlock()

	snapshot, ok := r.state.snapshots[snapshotKey{userID, dataType}]
	if !ok {
		return nil, ErrNotFound
	}
	clone := *snapshot
	return &clone, nil
}

func (r *memorySnapshotRepo) Upsert(ctx context.Context, userID uuid.UUID, dataType string, data json.RawMessage, syncedAt time.Time) (*models.CachedSnapshot, error) {
	r.state.mu.Lock()
	defer r.state.mu.Unlock()

	key := snapshotKey{userID, dataType}
	snapshot := &models.CachedSnapshot{
		UserID:     userID,
		DataType:   dataType,
		Data:       data,
		LastSynced: syncedAt,
	}
	if existing, ok := r.state.snapshots[key]; ok {
		snapshot.ID = existing.ID
	} else {
		snapshot.ID = uuid.New()
	}
	r.state.snapshots[key] = snapshot
	clone := *snapshot
	return &clone, nil
}
