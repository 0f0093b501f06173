package models

import (
	"time"

	"github.com/google/uuid"
)

// Stat is a named dashboard metric. At most one Stat exists per
// (UserID, Type) pair; writes are upserts.
type Stat struct {
	ID               uuid.UUID `json:"id"`
	UserID           uuid.UUID `json:"userId"`
	Type             string    `json:"type"`
	Value            string    `json:"value"`
	ChangePercentage *string   `json:"changePercentage,omitempty"`
	ChangeDirection  *string   `json:"changeDirection,omitempty"`
	Icon             string    `json:"icon"`
	LastUpdated      time.Time `json:"lastUpdated"`
}

const (
	StatSalesToday    = "sales_today"
	StatPendingOrders = "pending_orders"
	StatLowStockItems = "low_stock_items"
)
