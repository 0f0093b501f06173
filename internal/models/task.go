package models

import (
	"time"

	"github.com/google/uuid"
)

// Task is a user-owned todo item. CompletedAt is set exactly when
// IsCompleted transitions to true and cleared when it goes back to false.
type Task struct {
	ID          uuid.UUID  `json:"id"`
	UserID      uuid.UUID  `json:"userId"`
	Title       string     `json:"title"`
	DueDate     *time.Time `json:"dueDate,omitempty"`
	IsCompleted bool       `json:"isCompleted"`
	CompletedAt *time.Time `json:"completedAt,omitempty"`
	CreatedAt   time.Time  `json:"createdAt"`
}
