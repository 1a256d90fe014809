package catalog

import (
	"context"
	"database/sql"
	"fmt"
	"path/filepath"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Simplici0/printquote/internal/db"
	"github.com/Simplici0/printquote/internal/migrations"
	"github.com/Simplici0/printquote/internal/pricing"
	"github.com/Simplici0/printquote/internal/rates"
)

func newTestRepository(t *testing.T) (*Repository, *sql.DB) {
	t.Helper()

	database, err := db.Open(filepath.Join(t.TempDir(), "catalog-test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { database.Close() })

	_, err = migrations.Up(context.Background(), database)
	require.NoError(t, err)

	repo := NewRepository(database, rates.Default().DeviceMarkups)
	n := 0
	repo.newID = func() string {
		n++
		return fmt.Sprintf("dev-%d", n)
	}
	return repo, database
}

func TestCreateDevice_GeneratesTiersFromMarkups(t *testing.T) {
	repo, _ := newTestRepository(t)
	ctx := context.Background()

	d, err := repo.CreateDevice(ctx, DeviceInput{Name: "  Pod  ", Capacity: 60, UnitCost: decimal.RequireFromString("2.05")})
	require.NoError(t, err)
	assert.Equal(t, "dev-1", d.ID)
	assert.Equal(t, "Pod", d.Name)
	require.Len(t, d.PricingTiers, 6)
	assert.Equal(t, "2.5", d.PricingTiers[0].Price.String())
	assert.Equal(t, 10000, d.PricingTiers[0].MinQty)
	assert.Equal(t, 0, d.PricingTiers[5].MinQty)

	got, err := repo.GetDevice(ctx, d.ID)
	require.NoError(t, err)
	assert.True(t, got.UnitCost.Equal(d.UnitCost))
	price, err := got.PricingTiers.Lookup(1500)
	require.NoError(t, err)
	assert.Equal(t, "2.77", price.StringFixed(2))
}

func TestCreateDevice_Validation(t *testing.T) {
	repo, _ := newTestRepository(t)
	ctx := context.Background()

	cases := []DeviceInput{
		{Name: "", Capacity: 10, UnitCost: decimal.NewFromInt(1)},
		{Name: "No capacity", Capacity: 0, UnitCost: decimal.NewFromInt(1)},
		{Name: "Negative", Capacity: 10, UnitCost: decimal.NewFromInt(-1)},
		{Name: "No fallback", Capacity: 10, UnitCost: decimal.NewFromInt(1), PricingTiers: rates.Tiers{{MinQty: 100, Price: decimal.NewFromInt(2)}}},
	}
	for _, in := range cases {
		_, err := repo.CreateDevice(ctx, in)
		assert.ErrorIs(t, err, ErrInvalidDevice, "input %+v", in)
	}

	_, err := repo.CreateDevice(ctx, DeviceInput{Name: "Pod", Capacity: 10, UnitCost: decimal.NewFromInt(1)})
	require.NoError(t, err)
	_, err = repo.CreateDevice(ctx, DeviceInput{Name: "Pod", Capacity: 20, UnitCost: decimal.NewFromInt(1)})
	assert.ErrorIs(t, err, ErrDuplicateDevice)
}

func TestUpdateAndDeleteDevice(t *testing.T) {
	repo, _ := newTestRepository(t)
	ctx := context.Background()

	first, err := repo.CreateDevice(ctx, DeviceInput{Name: "A", Capacity: 10, UnitCost: decimal.NewFromInt(1)})
	require.NoError(t, err)
	second, err := repo.CreateDevice(ctx, DeviceInput{Name: "B", Capacity: 10, UnitCost: decimal.NewFromInt(1)})
	require.NoError(t, err)

	custom := rates.Tiers{{MinQty: 0, Price: decimal.NewFromInt(3)}, {MinQty: 500, Price: decimal.NewFromInt(2)}}
	updated, err := repo.UpdateDevice(ctx, first.ID, DeviceInput{Name: "A2", Capacity: 12, UnitCost: decimal.NewFromInt(1), PricingTiers: custom})
	require.NoError(t, err)
	assert.Equal(t, 500, updated.PricingTiers[0].MinQty, "tiers are stored descending")

	list, err := repo.ListDevices(ctx)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "A2", list[0].Name, "update keeps catalog position")
	assert.Equal(t, 12, list[0].Capacity)

	_, err = repo.UpdateDevice(ctx, "missing", DeviceInput{Name: "X", Capacity: 1, UnitCost: decimal.Zero})
	assert.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, repo.DeleteDevice(ctx, first.ID))
	assert.ErrorIs(t, repo.DeleteDevice(ctx, first.ID), ErrNotFound)
	assert.ErrorIs(t, repo.DeleteDevice(ctx, second.ID), ErrLastDevice)

	_, err = repo.GetDevice(ctx, first.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestListDevices_MigratesRowsWithoutTiers(t *testing.T) {
	repo, database := newTestRepository(t)
	ctx := context.Background()

	_, err := database.Exec(`
		INSERT INTO devices (id, name, capacity, unit_cost, pricing_tiers, position)
		VALUES ('old-1', 'MK Lighter', 80, '1.75', 'null', 0),
		       ('old-2', 'Custom', 50, '1.00', '[]', 1)
	`)
	require.NoError(t, err)

	set, err := repo.DeviceSet(ctx)
	require.NoError(t, err)
	require.Len(t, set, 2)

	price, err := set["old-1"].PricingTiers.Lookup(1000)
	require.NoError(t, err)
	assert.Equal(t, "1.00", price.StringFixed(2))

	price, err = set["old-2"].PricingTiers.Lookup(50)
	require.NoError(t, err)
	assert.Equal(t, "1.40", price.StringFixed(2))
}

func TestManagers(t *testing.T) {
	repo, _ := newTestRepository(t)
	ctx := context.Background()

	name, err := repo.AddManager(ctx, "  Ryan ")
	require.NoError(t, err)
	assert.Equal(t, "Ryan", name)
	_, err = repo.AddManager(ctx, "Kyle")
	require.NoError(t, err)

	_, err = repo.AddManager(ctx, "Ryan")
	assert.ErrorIs(t, err, ErrDuplicateManager)
	_, err = repo.AddManager(ctx, "   ")
	assert.ErrorIs(t, err, ErrInvalidManager)

	list, err := repo.ListManagers(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"Ryan", "Kyle"}, list)

	require.NoError(t, repo.DeleteManager(ctx, "Ryan"))
	assert.ErrorIs(t, repo.DeleteManager(ctx, "Ryan"), ErrNotFound)
}

func TestDefaultDevicesArePriceable(t *testing.T) {
	engine, err := pricing.New(rates.Default())
	require.NoError(t, err)

	for _, d := range DefaultDevices() {
		require.NoError(t, d.PricingTiers.Validate(), d.Name)
		order := pricing.Order{
			LineItems: []pricing.LineItem{{
				DeviceID: d.ID, Device: d, Quantity: 1000,
				ServiceType: pricing.PrintAndDevices, Sides: pricing.SingleSided,
				GlossFinish: pricing.GlossNone, Packaging: pricing.PackagingLoose,
			}},
			NumDesigns:   1,
			Turnaround:   pricing.TurnaroundNormal,
			ShippingType: pricing.ShippingPickup,
			PrinterCount: 3,
		}
		_, err := engine.PriceOrder(order)
		require.NoError(t, err, d.Name)
	}
	assert.Equal(t, []string{"Ryan", "Kyle", "Anthony", "Clarence"}, DefaultManagers())
}

func TestMigrateDeviceKeepsExistingTiers(t *testing.T) {
	d := pricing.Device{Name: "1mg Disposable", PricingTiers: rates.Tiers{{MinQty: 0, Price: decimal.NewFromInt(9)}}}
	got := MigrateDevice(d, rates.Default().DeviceMarkups)
	assert.Len(t, got.PricingTiers, 1)
}
