// Package catalog stores the device catalog and the account manager list in SQLite.
package catalog

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/Simplici0/printquote/internal/pricing"
	"github.com/Simplici0/printquote/internal/rates"
)

var (
	ErrNotFound         = errors.New("not found")
	ErrLastDevice       = errors.New("cannot delete the last device")
	ErrDuplicateDevice  = errors.New("device name already exists")
	ErrDuplicateManager = errors.New("account manager already exists")
	ErrInvalidDevice    = errors.New("invalid device")
	ErrInvalidManager   = errors.New("account manager name is required")
)

// DeviceInput is the editable part of a device. Nil PricingTiers means "generate from
// markups".
type DeviceInput struct {
	Name         string
	Capacity     int
	UnitCost     decimal.Decimal
	PricingTiers rates.Tiers
}

// Repository reads and writes catalog rows.
type Repository struct {
	db      *sql.DB
	markups rates.MarkupTiers
	newID   func() string
}

// NewRepository returns a Repository that generates tiers for new devices from markups.
func NewRepository(db *sql.DB, markups rates.MarkupTiers) *Repository {
	return &Repository{db: db, markups: markups, newID: uuid.NewString}
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanDevice(row rowScanner) (pricing.Device, error) {
	var (
		d        pricing.Device
		unitCost string
		tiersRaw string
	)
	if err := row.Scan(&d.ID, &d.Name, &d.Capacity, &unitCost, &tiersRaw); err != nil {
		return pricing.Device{}, err
	}
	cost, err := decimal.NewFromString(unitCost)
	if err != nil {
		return pricing.Device{}, fmt.Errorf("parse unit cost of device %s: %w", d.ID, err)
	}
	d.UnitCost = cost
	if err := json.Unmarshal([]byte(tiersRaw), &d.PricingTiers); err != nil {
		return pricing.Device{}, fmt.Errorf("decode tiers of device %s: %w", d.ID, err)
	}
	return d, nil
}

// ListDevices returns devices in catalog order. Rows without tiers are migrated on read.
func (r *Repository) ListDevices(ctx context.Context) ([]pricing.Device, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, name, capacity, unit_cost, pricing_tiers
		FROM devices
		ORDER BY position, name
	`)
	if err != nil {
		return nil, fmt.Errorf("query devices: %w", err)
	}
	defer rows.Close()

	var out []pricing.Device
	for rows.Next() {
		d, err := scanDevice(rows)
		if err != nil {
			return nil, fmt.Errorf("scan device: %w", err)
		}
		out = append(out, MigrateDevice(d, r.markups))
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate devices: %w", err)
	}
	return out, nil
}

// GetDevice returns one device by id.
func (r *Repository) GetDevice(ctx context.Context, id string) (pricing.Device, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT id, name, capacity, unit_cost, pricing_tiers
		FROM devices
		WHERE id = ?
	`, id)
	d, err := scanDevice(row)
	if errors.Is(err, sql.ErrNoRows) {
		return pricing.Device{}, ErrNotFound
	}
	if err != nil {
		return pricing.Device{}, fmt.Errorf("get device %s: %w", id, err)
	}
	return MigrateDevice(d, r.markups), nil
}

// DeviceSet returns the catalog keyed by id for order resolution.
func (r *Repository) DeviceSet(ctx context.Context) (pricing.DeviceSet, error) {
	devices, err := r.ListDevices(ctx)
	if err != nil {
		return nil, err
	}
	return pricing.NewDeviceSet(devices), nil
}

func (r *Repository) prepare(in DeviceInput) (DeviceInput, error) {
	in.Name = strings.TrimSpace(in.Name)
	if in.Name == "" {
		return DeviceInput{}, fmt.Errorf("%w: name is required", ErrInvalidDevice)
	}
	if in.Capacity <= 0 {
		return DeviceInput{}, fmt.Errorf("%w: capacity must be positive", ErrInvalidDevice)
	}
	if in.UnitCost.IsNegative() {
		return DeviceInput{}, fmt.Errorf("%w: unit cost must not be negative", ErrInvalidDevice)
	}
	if len(in.PricingTiers) == 0 {
		in.PricingTiers = r.markups.Apply(in.UnitCost)
	}
	if err := in.PricingTiers.Validate(); err != nil {
		return DeviceInput{}, fmt.Errorf("%w: pricing tiers: %w", ErrInvalidDevice, err)
	}
	in.PricingTiers = in.PricingTiers.Sorted()
	return in, nil
}

// CreateDevice appends a device to the catalog.
func (r *Repository) CreateDevice(ctx context.Context, in DeviceInput) (pricing.Device, error) {
	in, err := r.prepare(in)
	if err != nil {
		return pricing.Device{}, err
	}
	tiersJSON, err := json.Marshal(in.PricingTiers)
	if err != nil {
		return pricing.Device{}, fmt.Errorf("encode device tiers: %w", err)
	}

	id := r.newID()
	_, err = r.db.ExecContext(ctx, `
		INSERT INTO devices (id, name, capacity, unit_cost, pricing_tiers, position)
		VALUES (?, ?, ?, ?, ?, (SELECT COALESCE(MAX(position), -1) + 1 FROM devices))
	`, id, in.Name, in.Capacity, in.UnitCost.String(), string(tiersJSON))
	if err != nil {
		if isUniqueViolation(err) {
			return pricing.Device{}, ErrDuplicateDevice
		}
		return pricing.Device{}, fmt.Errorf("insert device: %w", err)
	}

	return pricing.Device{ID: id, Name: in.Name, Capacity: in.Capacity, UnitCost: in.UnitCost, PricingTiers: in.PricingTiers}, nil
}

// UpdateDevice replaces a device's editable fields, keeping its catalog position.
func (r *Repository) UpdateDevice(ctx context.Context, id string, in DeviceInput) (pricing.Device, error) {
	in, err := r.prepare(in)
	if err != nil {
		return pricing.Device{}, err
	}
	tiersJSON, err := json.Marshal(in.PricingTiers)
	if err != nil {
		return pricing.Device{}, fmt.Errorf("encode device tiers: %w", err)
	}

	res, err := r.db.ExecContext(ctx, `
		UPDATE devices
		SET name = ?, capacity = ?, unit_cost = ?, pricing_tiers = ?, updated_at = CURRENT_TIMESTAMP
		WHERE id = ?
	`, in.Name, in.Capacity, in.UnitCost.String(), string(tiersJSON), id)
	if err != nil {
		if isUniqueViolation(err) {
			return pricing.Device{}, ErrDuplicateDevice
		}
		return pricing.Device{}, fmt.Errorf("update device %s: %w", id, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return pricing.Device{}, ErrNotFound
	}

	return pricing.Device{ID: id, Name: in.Name, Capacity: in.Capacity, UnitCost: in.UnitCost, PricingTiers: in.PricingTiers}, nil
}

// DeleteDevice removes a device. The catalog always keeps at least one device.
func (r *Repository) DeleteDevice(ctx context.Context, id string) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin delete device: %w", err)
	}
	defer tx.Rollback()

	var exists bool
	if err := tx.QueryRowContext(ctx, `SELECT EXISTS(SELECT 1 FROM devices WHERE id = ?)`, id).Scan(&exists); err != nil {
		return fmt.Errorf("check device existence: %w", err)
	}
	if !exists {
		return ErrNotFound
	}

	var count int
	if err := tx.QueryRowContext(ctx, `SELECT COUNT(*) FROM devices`).Scan(&count); err != nil {
		return fmt.Errorf("count devices: %w", err)
	}
	if count <= 1 {
		return ErrLastDevice
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM devices WHERE id = ?`, id); err != nil {
		return fmt.Errorf("delete device %s: %w", id, err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit delete device: %w", err)
	}
	return nil
}

// ListManagers returns account manager names in the order they were added.
func (r *Repository) ListManagers(ctx context.Context) ([]string, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT name FROM account_managers ORDER BY position, name`)
	if err != nil {
		return nil, fmt.Errorf("query account managers: %w", err)
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("scan account manager: %w", err)
		}
		out = append(out, name)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate account managers: %w", err)
	}
	return out, nil
}

// AddManager appends a trimmed, unique account manager name.
func (r *Repository) AddManager(ctx context.Context, name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", ErrInvalidManager
	}
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO account_managers (name, position)
		VALUES (?, (SELECT COALESCE(MAX(position), -1) + 1 FROM account_managers))
	`, name)
	if err != nil {
		if isUniqueViolation(err) {
			return "", ErrDuplicateManager
		}
		return "", fmt.Errorf("insert account manager: %w", err)
	}
	return name, nil
}

// DeleteManager removes an account manager by name.
func (r *Repository) DeleteManager(ctx context.Context, name string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM account_managers WHERE name = ?`, name)
	if err != nil {
		return fmt.Errorf("delete account manager: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

func isUniqueViolation(err error) bool {
	return strings.Contains(err.Error(), "UNIQUE constraint failed") ||
		strings.Contains(err.Error(), "constraint failed: UNIQUE")
}
