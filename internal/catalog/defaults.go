package catalog

import (
	"github.com/shopspring/decimal"

	"github.com/Simplici0/printquote/internal/pricing"
	"github.com/Simplici0/printquote/internal/rates"
)

func tiers(prices ...string) rates.Tiers {
	breaks := []int{10000, 5000, 3000, 1000, 100, 0}
	out := make(rates.Tiers, len(breaks))
	for i, b := range breaks {
		out[i] = rates.Tier{MinQty: b, Price: decimal.RequireFromString(prices[i])}
	}
	return out
}

// knownTiers are the negotiated selling tiers for the stock devices, keyed by name.
var knownTiers = map[string]rates.Tiers{
	"1mg Disposable": tiers("2.50", "2.75", "3.00", "3.25", "3.75", "3.75"),
	"2mg Disposable": tiers("2.70", "2.95", "3.20", "3.45", "3.95", "3.95"),
	"MK Lighter":     tiers("0.80", "0.85", "0.95", "1.00", "1.20", "1.20"),
}

func stockTiers(name string) rates.Tiers {
	return append(rates.Tiers(nil), knownTiers[name]...)
}

// DefaultDevices is the catalog a fresh installation starts with.
func DefaultDevices() []pricing.Device {
	return []pricing.Device{
		{ID: "1mg-disposable", Name: "1mg Disposable", Capacity: 88, UnitCost: decimal.RequireFromString("2.05"), PricingTiers: stockTiers("1mg Disposable")},
		{ID: "2mg-disposable", Name: "2mg Disposable", Capacity: 77, UnitCost: decimal.RequireFromString("2.50"), PricingTiers: stockTiers("2mg Disposable")},
		{ID: "mk-lighter", Name: "MK Lighter", Capacity: 80, UnitCost: decimal.RequireFromString("1.75"), PricingTiers: stockTiers("MK Lighter")},
	}
}

// DefaultManagers are the account managers a fresh installation starts with.
func DefaultManagers() []string {
	return []string{"Ryan", "Kyle", "Anthony", "Clarence"}
}

// MigrateDevice fills in selling tiers for device records saved before tiers existed:
// stock devices get their negotiated tiers, anything else is priced from markups.
func MigrateDevice(d pricing.Device, markups rates.MarkupTiers) pricing.Device {
	if len(d.PricingTiers) > 0 {
		return d
	}
	if _, ok := knownTiers[d.Name]; ok {
		d.PricingTiers = stockTiers(d.Name)
		return d
	}
	d.PricingTiers = markups.Apply(d.UnitCost)
	return d
}
