// Package seed fills an empty installation with the stock device catalog and the
// default account managers.
package seed

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/Simplici0/printquote/internal/pricing"
)

// Config contains the values required by startup seed.
type Config struct {
	Devices  []pricing.Device
	Managers []string
}

// Stats contains seed operation counters.
type Stats struct {
	Inserts int
	Skipped int
}

// Run executes the startup seed in an idempotent way. Each table is only seeded while it
// is empty, so devices or managers deleted later are not brought back on restart.
func Run(ctx context.Context, db *sql.DB, cfg Config) (Stats, error) {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return Stats{}, fmt.Errorf("begin seed transaction: %w", err)
	}

	stats := Stats{}

	if err := ensureDevices(ctx, tx, cfg.Devices, &stats); err != nil {
		_ = tx.Rollback()
		return Stats{}, err
	}
	if err := ensureManagers(ctx, tx, cfg.Managers, &stats); err != nil {
		_ = tx.Rollback()
		return Stats{}, err
	}

	if err := tx.Commit(); err != nil {
		return Stats{}, fmt.Errorf("commit seed transaction: %w", err)
	}

	return stats, nil
}

func tableEmpty(ctx context.Context, tx *sql.Tx, table string) (bool, error) {
	var exists bool
	if err := tx.QueryRowContext(ctx, `SELECT EXISTS(SELECT 1 FROM `+table+` LIMIT 1)`).Scan(&exists); err != nil {
		return false, fmt.Errorf("check %s existence: %w", table, err)
	}
	return !exists, nil
}

func ensureDevices(ctx context.Context, tx *sql.Tx, devices []pricing.Device, stats *Stats) error {
	empty, err := tableEmpty(ctx, tx, "devices")
	if err != nil {
		return err
	}
	if !empty {
		stats.Skipped += len(devices)
		return nil
	}

	for i, d := range devices {
		tiers, err := json.Marshal(d.PricingTiers)
		if err != nil {
			return fmt.Errorf("encode tiers for %s: %w", d.Name, err)
		}
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO devices (id, name, capacity, unit_cost, pricing_tiers, position)
			VALUES (?, ?, ?, ?, ?, ?)
		`, d.ID, d.Name, d.Capacity, d.UnitCost.String(), string(tiers), i); err != nil {
			return fmt.Errorf("insert default device %s: %w", d.Name, err)
		}
		stats.Inserts++
	}
	return nil
}

func ensureManagers(ctx context.Context, tx *sql.Tx, managers []string, stats *Stats) error {
	empty, err := tableEmpty(ctx, tx, "account_managers")
	if err != nil {
		return err
	}
	if !empty {
		stats.Skipped += len(managers)
		return nil
	}

	for i, name := range managers {
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO account_managers (name, position)
			VALUES (?, ?)
		`, name, i); err != nil {
			return fmt.Errorf("insert default account manager %s: %w", name, err)
		}
		stats.Inserts++
	}
	return nil
}
