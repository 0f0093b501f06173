package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// CachedSnapshot holds the last successfully fetched collection for one
// (UserID, DataType) pair. Replacement is always wholesale: a successful
// fetch overwrites Data and LastSynced in full, never partially.
type CachedSnapshot struct {
	ID         uuid.UUID       `json:"id"`
	UserID     uuid.UUID       `json:"userId"`
	DataType   string          `json:"dataType"`
	Data       json.RawMessage `json:"data"`
	LastSynced time.Time       `json:"lastSynced"`
}

// Tracked data types. These identify one category of remote resource
// collection each and key the cache rows.
const (
	DataTypeSalesOrders    = "sales_orders"
	DataTypeInventoryItems = "inventory_items"
	DataTypePurchaseOrders = "purchase_orders"
)
