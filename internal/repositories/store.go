package repositories

import "github.com/jackc/pgx/v5/pgxpool"

// Store bundles every repository behind one handle. The Postgres and
// in-memory constructors are interchangeable; which one backs the process
// is decided once, at startup.
type Store struct {
	Users      UserRepository
	Tasks      TaskRepository
	Activities ActivityRepository
	Stats      StatRepository
	Snapshots  SnapshotRepository
}

func NewPostgresStore(pool *pgxpool.Pool) *Store {
	return &Store{
		Users:      NewPostgresUserRepository(pool),
		Tasks:      NewPostgresTaskRepository(pool),
		Activities: NewPostgresActivityRepository(pool),
		Stats:      NewPostgresStatRepository(pool),
		Snapshots:  NewPostgresSnapshotRepository(pool),
	}
}
