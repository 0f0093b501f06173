package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/prudhvinik1/mobilerp/internal/erpnext"
	"github.com/prudhvinik1/mobilerp/internal/models"
	"github.com/prudhvinik1/mobilerp/internal/observability"
	"github.com/prudhvinik1/mobilerp/internal/repositories"
)

// ErrUnknownDataType is returned for a resolve against an untracked type.
var ErrUnknownDataType = errors.New("unknown data type")

// Gateway is the remote ERP boundary the sync layer talks to.
type Gateway interface {
	FetchResource(ctx context.Context, docType string, fields []string, limit int) (json.RawMessage, error)
	Login(ctx context.Context, username, password string) (*erpnext.Profile, error)
}

// resourceSpec fixes the remote doctype, field projection and row limit for
// one tracked data type.
type resourceSpec struct {
	docType string
	fields  []string
	limit   int
}

var resourceSpecs = map[string]resourceSpec{
	models.DataTypeSalesOrders: {
		docType: "Sales Order",
		fields:  []string{"name", "customer", "transaction_date", "grand_total", "status"},
		limit:   20,
	},
	models.DataTypeInventoryItems: {
		docType: "Item",
		fields:  []string{"name", "item_name", "item_code", "stock_uom", "description"},
		limit:   50,
	},
	models.DataTypePurchaseOrders: {
		docType: "Purchase Order",
		fields:  []string{"name", "supplier", "transaction_date", "grand_total", "status"},
		limit:   20,
	},
}

// trackedDataTypes is the fixed set a sync pass refreshes, in order.
var trackedDataTypes = []string{
	models.DataTypeSalesOrders,
	models.DataTypeInventoryItems,
	models.DataTypePurchaseOrders,
}

// SyncService drives both the explicit sync pass and the per-request
// freshness check against the cached snapshots.
type SyncService struct {
	users     repositories.UserRepository
	snapshots repositories.SnapshotRepository
	stats     repositories.StatRepository
	gateway   Gateway
}

func NewSyncService(users repositories.UserRepository, snapshots repositories.SnapshotRepository, stats repositories.StatRepository, gateway Gateway) *SyncService {
	return &SyncService{
		users:     users,
		snapshots: snapshots,
		stats:     stats,
		gateway:   gateway,
	}
}

// ResolveResult is what a read path renders from. A gateway failure is not
// an error here: the result degrades to the cached snapshot instead.
type ResolveResult struct {
	Data       json.RawMessage
	IsFresh    bool
	LastSynced *time.Time
}

// Resolve serves one data request. It attempts a live fetch; on success the
// cache is replaced and the live collection returned as fresh. On any
// gateway failure the cached snapshot (or an empty collection) is returned
// as stale. Only storage failures propagate as errors.
func (s *SyncService) Resolve(ctx context.Context, userID uuid.UUID, dataType string) (*ResolveResult, error) {
	spec, ok := resourceSpecs[dataType]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownDataType, dataType)
	}

	cached, err := s.snapshots.Get(ctx, userID, dataType)
	if err != nil && !errors.Is(err, repositories.ErrNotFound) {
		return nil, fmt.Errorf("failed to read cached snapshot: %w", err)
	}

	data, fetchErr := s.gateway.FetchResource(ctx, spec.docType, spec.fields, spec.limit)
	if fetchErr != nil {
		observability.RecordResolve(dataType, false)
		result := &ResolveResult{Data: json.RawMessage("[]"), IsFresh: false}
		if cached != nil {
			result.Data = cached.Data
			synced := cached.LastSynced
			result.LastSynced = &synced
		}
		return result, nil
	}

	if _, err := s.snapshots.Upsert(ctx, userID, dataType, data, time.Now()); err != nil {
		return nil, fmt.Errorf("failed to store snapshot: %w", err)
	}

	observability.RecordResolve(dataType, true)
	return &ResolveResult{Data: data, IsFresh: true}, nil
}

// SyncResult reports the outcome of one sync pass. IsOfflineSync marks a
// pass that could not reach the remote and left the cache untouched; that
// is still a successful sync from the caller's point of view.
type SyncResult struct {
	LastSync      *time.Time
	IsOfflineSync bool
}

// SyncAll refreshes every tracked data type for the user. The first gateway
// failure aborts the remaining fetches and reports a degraded success with
// the previous LastSync. Each type's cache write is independent: a type
// already written stays written. Only storage or user-lookup failures
// return an error. Concurrent passes for the same user are last-write-wins
// safe because every write is a full replacement.
func (s *SyncService) SyncAll(ctx context.Context, userID uuid.UUID) (*SyncResult, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	syncStart := time.Now()

	var salesOrders json.RawMessage
	for _, dataType := range trackedDataTypes {
		spec := resourceSpecs[dataType]
		data, fetchErr := s.gateway.FetchResource(ctx, spec.docType, spec.fields, spec.limit)
		if fetchErr != nil {
			observability.RecordSyncPass(true)
			return &SyncResult{LastSync: user.LastSync, IsOfflineSync: true}, nil
		}
		if _, err := s.snapshots.Upsert(ctx, userID, dataType, data, syncStart); err != nil {
			return nil, fmt.Errorf("failed to store %s snapshot: %w", dataType, err)
		}
		if dataType == models.DataTypeSalesOrders {
			salesOrders = data
		}
	}

	if err := s.users.UpdateLastSync(ctx, userID, syncStart); err != nil {
		return nil, fmt.Errorf("failed to update last sync: %w", err)
	}
	if err := s.refreshPendingOrdersStat(ctx, userID, salesOrders, syncStart); err != nil {
		return nil, err
	}

	observability.RecordSyncPass(false)
	return &SyncResult{LastSync: &syncStart}, nil
}

// refreshPendingOrdersStat recomputes the pending_orders dashboard stat
// from the sales orders fetched in this pass.
func (s *SyncService) refreshPendingOrdersStat(ctx context.Context, userID uuid.UUID, salesOrders json.RawMessage, syncedAt time.Time) error {
	var orders []struct {
		Status string `json:"status"`
	}
	if err := json.Unmarshal(salesOrders, &orders); err != nil {
		// Collection shape is remote-owned; an unparseable payload leaves
		// the stat as it was.
		return nil
	}

	pending := 0
	for _, order := range orders {
		switch order.Status {
		case "Completed", "Closed", "Cancelled":
		default:
			pending++
		}
	}

	stat := &models.Stat{
		UserID:      userID,
		Type:        models.StatPendingOrders,
		Value:       strconv.Itoa(pending),
		Icon:        "shopping_cart",
		LastUpdated: syncedAt,
	}
	if err := s.stats.Upsert(ctx, stat); err != nil {
		return fmt.Errorf("failed to upsert pending orders stat: %w", err)
	}
	return nil
}
