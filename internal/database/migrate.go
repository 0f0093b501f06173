package database

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prudhvinik1/mobilerp/internal/models"
	"github.com/prudhvinik1/mobilerp/internal/repositories"
	"github.com/prudhvinik1/mobilerp/internal/utils"
)

var schema = []string{
	`CREATE EXTENSION IF NOT EXISTS pgcrypto`,
	`CREATE TABLE IF NOT EXISTS users (
		id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
		username TEXT NOT NULL UNIQUE,
		password_hash TEXT NOT NULL,
		full_name TEXT NOT NULL,
		email TEXT NOT NULL,
		avatar_initials TEXT NOT NULL DEFAULT '',
		last_sync TIMESTAMPTZ,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE TABLE IF NOT EXISTS tasks (
		id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
		user_id UUID NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		title TEXT NOT NULL,
		due_date TIMESTAMPTZ,
		is_completed BOOLEAN NOT NULL DEFAULT FALSE,
		completed_at TIMESTAMPTZ,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE TABLE IF NOT EXISTS activities (
		id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
		user_id UUID NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		type TEXT NOT NULL,
		title TEXT NOT NULL,
		description TEXT NOT NULL,
		icon TEXT NOT NULL,
		icon_bg_color TEXT NOT NULL,
		timestamp TIMESTAMPTZ NOT NULL,
		reference TEXT,
		reference_type TEXT
	)`,
	`CREATE TABLE IF NOT EXISTS stats (
		id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
		user_id UUID NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		type TEXT NOT NULL,
		value TEXT NOT NULL,
		change_percentage TEXT,
		change_direction TEXT,
		icon TEXT NOT NULL,
		last_updated TIMESTAMPTZ NOT NULL,
		UNIQUE (user_id, type)
	)`,
	`CREATE TABLE IF NOT EXISTS cached_data (
		id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
		user_id UUID NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		data_type TEXT NOT NULL,
		data JSONB NOT NULL,
		last_synced TIMESTAMPTZ NOT NULL,
		UNIQUE (user_id, data_type)
	)`,
}

// Migrate creates the schema if it does not exist yet.
func Migrate(ctx context.Context, pool *pgxpool.Pool) error {
	for _, statement := range schema {
		if _, err := pool.Exec(ctx, statement); err != nil {
			return fmt.Errorf("migration failed: %w", err)
		}
	}
	return nil
}

// SeedDemoData provisions the demo user with sample stats, activities and
// tasks. It is a no-op when the demo user already exists.
func SeedDemoData(ctx context.Context, store *repositories.Store) error {
	if _, err := store.Users.GetByUsername(ctx, "demo"); err == nil {
		log.Println("Demo data already exists, skipping initialization")
		return nil
	} else if !errors.Is(err, repositories.ErrNotFound) {
		return fmt.Errorf("failed to check demo user: %w", err)
	}

	hash, err := utils.HashPassword("password")
	if err != nil {
		return fmt.Errorf("failed to hash demo password: %w", err)
	}
	user := &models.User{
		Username:       "demo",
		PasswordHash:   hash,
		FullName:       "Demo User",
		Email:          "demo@example.com",
		AvatarInitials: "DU",
	}
	if err := store.Users.Create(ctx, user); err != nil {
		return err
	}

	now := time.Now()
	up := "up"
	down := "down"
	pctSales := "8.2"
	pctOrders := "3.1"
	seedStats := []*models.Stat{
		{UserID: user.ID, Type: models.StatSalesToday, Value: "24500", ChangePercentage: &pctSales, ChangeDirection: &up, Icon: "trending_up", LastUpdated: now},
		{UserID: user.ID, Type: models.StatPendingOrders, Value: "7", ChangePercentage: &pctOrders, ChangeDirection: &down, Icon: "shopping_cart", LastUpdated: now},
		{UserID: user.ID, Type: models.StatLowStockItems, Value: "3", Icon: "warning", LastUpdated: now},
	}
	for _, stat := range seedStats {
		if err := store.Stats.Upsert(ctx, stat); err != nil {
			return err
		}
	}

	invRef := "INV-001"
	orderRef := "SO-1042"
	itemRef := "ITEM-118"
	inventoryType := "inventory"
	orderType := "order"
	seedActivities := []*models.Activity{
		{
			UserID: user.ID, Type: models.ActivityStockReceived,
			Title: "Stock Received", Description: "25 units of Printer Ink added to inventory",
			Icon: "package", IconBgColor: "bg-green-100",
			Timestamp: now.Add(-2 * time.Hour), Reference: &invRef, ReferenceType: &inventoryType,
		},
		{
			UserID: user.ID, Type: models.ActivityOrderPlaced,
			Title: "Order Placed", Description: "New sales order from Acme Traders",
			Icon: "shopping_cart", IconBgColor: "bg-blue-100",
			Timestamp: now.Add(-5 * time.Hour), Reference: &orderRef, ReferenceType: &orderType,
		},
		{
			UserID: user.ID, Type: models.ActivityLowStock,
			Title: "Low Stock", Description: "A4 Paper is below the reorder level",
			Icon: "warning", IconBgColor: "bg-amber-100",
			Timestamp: now.Add(-26 * time.Hour), Reference: &itemRef, ReferenceType: &inventoryType,
		},
	}
	for _, activity := range seedActivities {
		if err := store.Activities.Append(ctx, activity); err != nil {
			return err
		}
	}

	dueSoon := now.Add(24 * time.Hour)
	dueLater := now.Add(72 * time.Hour)
	seedTasks := []*models.Task{
		{UserID: user.ID, Title: "Follow up with Acme Traders", DueDate: &dueSoon},
		{UserID: user.ID, Title: "Reorder A4 Paper", DueDate: &dueLater},
		{UserID: user.ID, Title: "Approve pending purchase orders"},
	}
	for _, task := range seedTasks {
		if err := store.Tasks.Create(ctx, task); err != nil {
			return err
		}
	}

	log.Println("Initialized demo data")
	return nil
}
