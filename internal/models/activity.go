package models

import (
	"time"

	"github.com/google/uuid"
)

// Activity is an append-only log entry describing a domain event.
// Activities are never mutated after creation.
type Activity struct {
	ID            uuid.UUID `json:"id"`
	UserID        uuid.UUID `json:"userId"`
	Type          string    `json:"type"`
	Title         string    `json:"title"`
	Description   string    `json:"description"`
	Icon          string    `json:"icon"`
	IconBgColor   string    `json:"iconBgColor"`
	Timestamp     time.Time `json:"timestamp"`
	Reference     *string   `json:"reference,omitempty"`
	ReferenceType *string   `json:"referenceType,omitempty"`
}

const (
	ActivityStockReceived = "stock_received"
	ActivityOrderPlaced   = "order_placed"
	ActivityLowStock      = "low_stock"
	ActivityTaskCompleted = "task_completed"
)
