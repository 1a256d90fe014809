package quotes

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"path/filepath"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Simplici0/printquote/internal/catalog"
	"github.com/Simplici0/printquote/internal/db"
	"github.com/Simplici0/printquote/internal/migrations"
	"github.com/Simplici0/printquote/internal/pricing"
	"github.com/Simplici0/printquote/internal/rates"
)

type stubCatalog []pricing.Device

func (c stubCatalog) DeviceSet(context.Context) (pricing.DeviceSet, error) {
	return pricing.NewDeviceSet(c), nil
}

func (c stubCatalog) ListDevices(context.Context) ([]pricing.Device, error) {
	return c, nil
}

func newSQLStore(t *testing.T) *SQLStore {
	t.Helper()

	database, err := db.Open(filepath.Join(t.TempDir(), "quotes-test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { database.Close() })

	_, err = migrations.Up(context.Background(), database)
	require.NoError(t, err)
	return NewSQLStore(database)
}

func newTestService(t *testing.T, store Store, rt rates.RateTable) *Service {
	t.Helper()

	engine, err := pricing.New(rt)
	require.NoError(t, err)

	svc := NewService(engine, store, stubCatalog(catalog.DefaultDevices()), nil, nil)
	clock := time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)
	svc.now = func() time.Time {
		clock = clock.Add(time.Minute)
		return clock
	}
	svc.newID = sequentialIDs()
	return svc
}

func sequentialIDs() func() string {
	n := 0
	return func() string {
		n++
		return fmt.Sprintf("q-%d", n)
	}
}

func printOrder(qty int) pricing.Order {
	return pricing.Order{
		LineItems: []pricing.LineItem{{
			DeviceID:    "1mg-disposable",
			Quantity:    qty,
			ServiceType: pricing.PrintOnly,
			Sides:       pricing.SingleSided,
			GlossFinish: pricing.GlossNone,
			Packaging:   pricing.PackagingLoose,
		}},
		NumDesigns:   1,
		Turnaround:   pricing.TurnaroundNormal,
		ShippingType: pricing.ShippingPickup,
		PrinterCount: 3,
	}
}

func flatPrintRates(price string) rates.RateTable {
	rt := rates.Default()
	tiers := make(rates.Tiers, len(rt.PrintTiers))
	for i, tier := range rt.PrintTiers {
		tiers[i] = rates.Tier{MinQty: tier.MinQty, Price: decimal.RequireFromString(price)}
	}
	rt.PrintTiers = tiers
	return rt
}

func TestSave_CreatesSnapshot(t *testing.T) {
	svc := newTestService(t, newSQLStore(t), rates.Default())
	ctx := context.Background()

	q, err := svc.Save(ctx, SaveInput{ClientName: "  Acme  ", AccountManager: "Kyle", Order: printOrder(2000)})
	require.NoError(t, err)

	assert.Equal(t, "q-1", q.ID)
	assert.Equal(t, "Acme", q.ClientName)
	assert.Equal(t, StatusPending, q.Status)
	assert.Equal(t, "1mg Disposable", q.Order.LineItems[0].Device.Name)
	assert.True(t, q.Result.Quote.TotalQuote.IsPositive())

	got, err := svc.Get(ctx, q.ID)
	require.NoError(t, err)
	assert.True(t, q.Result.Quote.TotalQuote.Equal(got.Result.Quote.TotalQuote))
	assert.Equal(t, q.CreatedAt, got.CreatedAt)
	assert.Equal(t, rates.Default().Version, got.Rates.Version)
}

func TestSave_RequiresClientName(t *testing.T) {
	svc := newTestService(t, newSQLStore(t), rates.Default())

	_, err := svc.Save(context.Background(), SaveInput{ClientName: "   ", Order: printOrder(1000)})
	assert.ErrorIs(t, err, ErrClientNameRequired)
}

func TestSave_UpdateKeepsCreationAndStatus(t *testing.T) {
	svc := newTestService(t, newSQLStore(t), rates.Default())
	ctx := context.Background()

	q, err := svc.Save(ctx, SaveInput{ClientName: "Acme", Order: printOrder(1000)})
	require.NoError(t, err)
	_, err = svc.UpdateStatus(ctx, q.ID, StatusWon)
	require.NoError(t, err)

	updated, err := svc.Save(ctx, SaveInput{ID: q.ID, ClientName: "Acme Corp", Order: printOrder(3000)})
	require.NoError(t, err)

	assert.Equal(t, q.ID, updated.ID)
	assert.Equal(t, q.CreatedAt, updated.CreatedAt)
	assert.True(t, updated.UpdatedAt.After(q.UpdatedAt))
	assert.Equal(t, StatusWon, updated.Status)
	assert.Equal(t, 3000, updated.Result.TotalQuantity)

	_, err = svc.Save(ctx, SaveInput{ID: "missing", ClientName: "Acme", Order: printOrder(1000)})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestSave_PricingErrorIsNotStored(t *testing.T) {
	store := newSQLStore(t)
	svc := newTestService(t, store, rates.Default())
	ctx := context.Background()

	order := printOrder(1000)
	order.LineItems[0].DeviceID = "nope"
	_, err := svc.Save(ctx, SaveInput{ClientName: "Acme", Order: order})
	assert.Equal(t, pricing.KindUnknownDevice, pricing.KindOf(err))

	all, err := store.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, all)
}

func TestUpdateStatus(t *testing.T) {
	svc := newTestService(t, newSQLStore(t), rates.Default())
	ctx := context.Background()

	q, err := svc.Save(ctx, SaveInput{ClientName: "Acme", Order: printOrder(1000)})
	require.NoError(t, err)

	_, err = svc.UpdateStatus(ctx, q.ID, Status("maybe"))
	assert.ErrorIs(t, err, ErrInvalidStatus)

	lost, err := svc.UpdateStatus(ctx, q.ID, StatusLost)
	require.NoError(t, err)
	assert.Equal(t, StatusLost, lost.Status)
	assert.True(t, lost.Result.Quote.TotalQuote.Equal(q.Result.Quote.TotalQuote))

	_, err = svc.UpdateStatus(ctx, "missing", StatusWon)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestDelete(t *testing.T) {
	svc := newTestService(t, newSQLStore(t), rates.Default())
	ctx := context.Background()

	q, err := svc.Save(ctx, SaveInput{ClientName: "Acme", Order: printOrder(1000)})
	require.NoError(t, err)

	require.NoError(t, svc.Delete(ctx, q.ID))
	_, err = svc.Get(ctx, q.ID)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.ErrorIs(t, svc.Delete(ctx, q.ID), ErrNotFound)
}

func TestSnapshotSurvivesRateChange(t *testing.T) {
	store := newSQLStore(t)
	ctx := context.Background()

	before := newTestService(t, store, rates.Default())
	q, err := before.Save(ctx, SaveInput{ClientName: "Acme", Order: printOrder(2000)})
	require.NoError(t, err)

	after := newTestService(t, store, flatPrintRates("0.90"))
	after.newID = before.newID

	stored, err := after.Get(ctx, q.ID)
	require.NoError(t, err)
	assert.True(t, q.Result.Quote.TotalQuote.Equal(stored.Result.Quote.TotalQuote))

	repriced, err := after.Reprice(ctx, q.ID)
	require.NoError(t, err)
	want, err := json.Marshal(stored.Result)
	require.NoError(t, err)
	got, err := json.Marshal(repriced)
	require.NoError(t, err)
	assert.JSONEq(t, string(want), string(got))

	dup, err := after.Duplicate(ctx, q.ID)
	require.NoError(t, err)
	assert.Equal(t, "Acme (Copy)", dup.ClientName)
	assert.Equal(t, StatusPending, dup.Status)
	assert.NotEqual(t, q.ID, dup.ID)
	assert.True(t, dup.Result.Quote.TotalQuote.GreaterThan(q.Result.Quote.TotalQuote))
	assert.Equal(t, "0.9", dup.Result.Quote.BasePrice.String())

	kept, err := after.Get(ctx, q.ID)
	require.NoError(t, err)
	assert.Equal(t, "Acme", kept.ClientName)
	assert.True(t, q.Result.Quote.TotalQuote.Equal(kept.Result.Quote.TotalQuote))
	assert.True(t, q.Result.Quote.BasePrice.Equal(kept.Result.Quote.BasePrice))
}

func TestCreateNeverReplacesExistingQuote(t *testing.T) {
	store := newSQLStore(t)
	ctx := context.Background()

	first := newTestService(t, store, rates.Default())
	q, err := first.Save(ctx, SaveInput{ClientName: "Acme", Order: printOrder(2000)})
	require.NoError(t, err)

	second := newTestService(t, store, flatPrintRates("0.90"))
	second.newID = func() string { return q.ID }
	_, err = second.Save(ctx, SaveInput{ClientName: "Blue Moon", Order: printOrder(1000)})
	assert.ErrorIs(t, err, ErrAlreadyExists)

	_, err = second.Duplicate(ctx, q.ID)
	assert.ErrorIs(t, err, ErrAlreadyExists)

	kept, err := first.Get(ctx, q.ID)
	require.NoError(t, err)
	assert.Equal(t, "Acme", kept.ClientName)
	assert.True(t, q.Result.Quote.TotalQuote.Equal(kept.Result.Quote.TotalQuote))

	all, err := first.Search(ctx, "")
	require.NoError(t, err)
	assert.Len(t, all, 1)
}

func TestSearch(t *testing.T) {
	svc := newTestService(t, newSQLStore(t), rates.Default())
	ctx := context.Background()

	for _, in := range []SaveInput{
		{ClientName: "Acme", AccountManager: "Kyle", Order: printOrder(1000)},
		{ClientName: "Blue Moon", AccountManager: "Ryan", Order: printOrder(1000)},
		{ClientName: "acme west", AccountManager: "Ryan", Order: printOrder(1000)},
	} {
		_, err := svc.Save(ctx, in)
		require.NoError(t, err)
	}
	_, err := svc.UpdateStatus(ctx, "q-2", StatusWon)
	require.NoError(t, err)

	all, err := svc.Search(ctx, "")
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, "q-3", all[0].ID)

	cases := []struct {
		query string
		ids   []string
	}{
		{"ACME", []string{"q-3", "q-1"}},
		{"ryan", []string{"q-3", "q-2"}},
		{"won", []string{"q-2"}},
		{"zzz", nil},
	}
	for _, tc := range cases {
		t.Run(tc.query, func(t *testing.T) {
			got, err := svc.Search(ctx, tc.query)
			require.NoError(t, err)
			var ids []string
			for _, q := range got {
				ids = append(ids, q.ID)
			}
			assert.Equal(t, tc.ids, ids)
		})
	}
}

func TestStatusCountsAndCustomers(t *testing.T) {
	svc := newTestService(t, newSQLStore(t), rates.Default())
	ctx := context.Background()

	_, err := svc.Save(ctx, SaveInput{ClientName: "Small", Order: printOrder(500)})
	require.NoError(t, err)
	_, err = svc.Save(ctx, SaveInput{ClientName: "Big", Order: printOrder(4000)})
	require.NoError(t, err)
	_, err = svc.Save(ctx, SaveInput{ClientName: "Small", Order: printOrder(600)})
	require.NoError(t, err)
	_, err = svc.UpdateStatus(ctx, "q-1", StatusLost)
	require.NoError(t, err)

	counts, err := svc.StatusCounts(ctx)
	require.NoError(t, err)
	assert.Equal(t, StatusCounts{Total: 3, Pending: 2, Lost: 1}, counts)

	customers, err := svc.Customers(ctx)
	require.NoError(t, err)
	require.Len(t, customers, 2)
	assert.Equal(t, "Big", customers[0].Name)
	assert.Equal(t, 1, customers[0].QuoteCount)
	assert.Equal(t, "Small", customers[1].Name)
	assert.Equal(t, 2, customers[1].QuoteCount)

	sum := customers[1].Quotes[0].Result.Quote.TotalQuote.Add(customers[1].Quotes[1].Result.Quote.TotalQuote)
	assert.True(t, sum.Equal(customers[1].TotalValue))
	assert.True(t, customers[0].TotalValue.GreaterThan(customers[1].TotalValue))
}

func TestCompare(t *testing.T) {
	svc := newTestService(t, newSQLStore(t), rates.Default())
	ctx := context.Background()

	q, err := svc.Save(ctx, SaveInput{ClientName: "Acme", Order: printOrder(1000)})
	require.NoError(t, err)

	same, err := svc.Compare(ctx, q.ID, printOrder(1000))
	require.NoError(t, err)
	assert.True(t, same.QuoteDelta.IsZero())
	assert.True(t, same.MarginDelta.IsZero())
	assert.Equal(t, "Acme", same.Saved.ClientName)
	assert.Equal(t, []string{"1mg Disposable"}, same.Current.Devices)

	bigger, err := svc.Compare(ctx, q.ID, printOrder(3000))
	require.NoError(t, err)
	assert.True(t, bigger.QuoteDelta.IsPositive())
	assert.True(t, bigger.QuoteDelta.Equal(bigger.Current.TotalQuote.Sub(q.Result.Quote.TotalQuote)))

	_, err = svc.Compare(ctx, "missing", printOrder(1000))
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestImportLegacy(t *testing.T) {
	svc := newTestService(t, newSQLStore(t), rates.Default())
	ctx := context.Background()

	raw := []byte(`{
		"clientName": "Old Timer",
		"accountManager": "Anthony",
		"status": "won",
		"selectedDevice": 2,
		"quantity": 1500,
		"shippingType": "pickup"
	}`)
	q, err := svc.ImportLegacy(ctx, raw)
	require.NoError(t, err)

	assert.Equal(t, "Old Timer", q.ClientName)
	assert.Equal(t, StatusWon, q.Status)
	assert.Equal(t, "mk-lighter", q.Order.LineItems[0].DeviceID)
	assert.Equal(t, 1500, q.Result.TotalQuantity)

	_, err = svc.ImportLegacy(ctx, []byte(`{"selectedDevice": 0}`))
	assert.ErrorIs(t, err, ErrClientNameRequired)

	_, err = svc.ImportLegacy(ctx, []byte(`{"clientName": "X", "status": "ghosted"}`))
	assert.ErrorIs(t, err, ErrInvalidStatus)

	_, err = svc.ImportLegacy(ctx, []byte(`{"clientName": "X", "selectedDevice": 9}`))
	var pe *pricing.Error
	require.True(t, errors.As(err, &pe))
	assert.Equal(t, pricing.KindUnknownDevice, pe.Kind)
}
