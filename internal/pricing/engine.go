// Package pricing turns an order description into a customer quote, a cost floor and
// profit metrics. Every function here is pure: the same order and rate table always
// produce the same result, so an Engine is safe to share between goroutines.
package pricing

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/Simplici0/printquote/internal/production"
	"github.com/Simplici0/printquote/internal/rates"
)

const (
	// MaxLineQuantity caps a single line item.
	MaxLineQuantity = 500000
	MinPrinters     = 1
	MaxPrinters     = 20
)

// ProductionMetrics is the order-wide schedule.
type ProductionMetrics struct {
	TotalBatches            int             `json:"total_batches"`
	TotalMinutes            int             `json:"total_minutes"`
	TotalHours              decimal.Decimal `json:"total_hours"`
	AvgMinutesPerBatch      decimal.Decimal `json:"avg_minutes_per_batch"`
	RequestedPrinters       int             `json:"requested_printers"`
	ActivePrinters          int             `json:"active_printers"`
	EffectiveHours          decimal.Decimal `json:"effective_hours"`
	Days                    int             `json:"days"`
	BatchesPerPrinterPerDay int             `json:"batches_per_printer_per_day"`
	BatchesPerDayTotal      int             `json:"batches_per_day_total"`
}

// Result is everything PriceOrder computed, self-describing enough for invoices and
// exports to render breakdowns without recomputing.
type Result struct {
	TotalQuantity int               `json:"total_quantity"`
	PrintQuantity int               `json:"print_quantity"`
	HasPrinting   bool              `json:"has_printing"`
	HasDevices    bool              `json:"has_devices"`
	BelowMinimum  bool              `json:"below_minimum"`
	LineItems     []LineItemResult  `json:"line_items"`
	Quote         QuoteResult       `json:"quote"`
	CostFloor     CostFloorResult   `json:"cost_floor"`
	Profit        ProfitResult      `json:"profit"`
	Production    ProductionMetrics `json:"production"`
}

// Engine prices orders against one rate table.
type Engine struct {
	rates     rates.RateTable
	estimator production.Estimator
}

// New validates rt and returns an Engine bound to a private copy of it.
func New(rt rates.RateTable) (*Engine, error) {
	if err := rt.Validate(); err != nil {
		return nil, newError(KindInvalidRateTable, "", err)
	}
	rt.PrintTiers = append(rates.Tiers(nil), rt.PrintTiers...)
	rt.DeviceMarkups = append(rates.MarkupTiers(nil), rt.DeviceMarkups...)
	return &Engine{rates: rt, estimator: production.NewEstimator(rt.Production)}, nil
}

// Rates returns the rate table in effect.
func (e *Engine) Rates() rates.RateTable {
	rt := e.rates
	rt.PrintTiers = append(rates.Tiers(nil), e.rates.PrintTiers...)
	rt.DeviceMarkups = append(rates.MarkupTiers(nil), e.rates.DeviceMarkups...)
	return rt
}

// PriceOrder runs the estimator, line item pricing, both aggregators and the profit
// analyzer, in that order. Line item devices must already be resolved.
func (e *Engine) PriceOrder(order Order) (Result, error) {
	o := order.Normalized()
	if err := validateOrder(o); err != nil {
		return Result{}, err
	}

	printQty := o.PrintQuantity()
	basePrice, err := e.rates.PrintTiers.Lookup(printQty)
	if err != nil {
		return Result{}, newError(KindMissingFallbackTier, "print_tiers", err)
	}

	estimates := make([]production.LineEstimate, len(o.LineItems))
	var printing []production.LineEstimate
	for i, li := range o.LineItems {
		if !li.ServiceType.IncludesPrinting() {
			continue
		}
		est, err := e.estimator.EstimateLineItem(li.Quantity, li.Device.Capacity, li.GlossFinish != GlossNone, li.Sides == DoubleSided)
		if err != nil {
			return Result{}, fromProductionError(fmt.Sprintf("line_items[%d]", i), err)
		}
		estimates[i] = est
		printing = append(printing, est)
	}

	pm, err := e.productionMetrics(printing, o.PrinterCount)
	if err != nil {
		return Result{}, err
	}

	items := make([]LineItemResult, len(o.LineItems))
	for i, li := range o.LineItems {
		res, err := priceLineItem(e.rates, i, li, basePrice, estimates[i])
		if err != nil {
			var pe *Error
			if errors.As(err, &pe) {
				pe.Field = fmt.Sprintf("line_items[%d].%s", i, pe.Field)
			}
			return Result{}, err
		}
		items[i] = res
	}

	quote := aggregateQuote(e.rates, o, items, basePrice)
	costFloor := aggregateCostFloor(e.rates, o, items, quote, pm)
	total := o.TotalQuantity()

	return Result{
		TotalQuantity: total,
		PrintQuantity: printQty,
		HasPrinting:   o.HasPrinting(),
		HasDevices:    o.HasDevices(),
		BelowMinimum:  total > 0 && total < e.rates.Fees.MinimumOrderQuantity,
		LineItems:     items,
		Quote:         quote,
		CostFloor:     costFloor,
		Profit:        AnalyzeProfit(quote.TotalQuote, costFloor.Total, total),
		Production:    pm,
	}, nil
}

func (e *Engine) productionMetrics(printing []production.LineEstimate, requested int) (ProductionMetrics, error) {
	pm := ProductionMetrics{RequestedPrinters: requested}
	for _, est := range printing {
		pm.TotalBatches += est.Batches
		pm.TotalMinutes += est.TotalMinutes
	}
	pm.TotalHours = decimal.NewFromInt(int64(pm.TotalMinutes)).Div(decimal.NewFromInt(60))
	pm.AvgMinutesPerBatch = e.estimator.AverageMinutesPerBatch(printing)
	pm.ActivePrinters = production.OptimizePrinterCount(pm.TotalHours, requested)
	pm.EffectiveHours = production.EffectiveHours(pm.TotalHours, pm.ActivePrinters)

	sched, err := e.estimator.EstimateDays(pm.TotalBatches, pm.AvgMinutesPerBatch, pm.ActivePrinters)
	if err != nil {
		return ProductionMetrics{}, fromProductionError("production", err)
	}
	pm.Days = sched.Days
	pm.BatchesPerPrinterPerDay = sched.BatchesPerPrinterPerDay
	pm.BatchesPerDayTotal = sched.BatchesPerDayTotal
	return pm, nil
}

func fromProductionError(field string, err error) *Error {
	switch {
	case errors.Is(err, production.ErrInvalidCapacity):
		return newError(KindInvalidCapacity, field, err)
	case errors.Is(err, production.ErrInvalidQuantity):
		return newError(KindInvalidQuantity, field, err)
	case errors.Is(err, production.ErrInvalidPrinterCount):
		return newError(KindInvalidPrinterCount, field, err)
	}
	return newError(KindNoDailyCapacity, field, err)
}

// validateOrder fails fast on input that would otherwise price plausibly but wrongly.
// o must be normalized.
func validateOrder(o Order) error {
	if len(o.LineItems) == 0 {
		return newErrorf(KindEmptyOrder, "line_items", "order has no line items")
	}
	if o.PrinterCount < MinPrinters || o.PrinterCount > MaxPrinters {
		return newErrorf(KindInvalidPrinterCount, "printer_count", "%d is outside %d..%d", o.PrinterCount, MinPrinters, MaxPrinters)
	}
	if o.NumDesigns < 0 || (o.HasPrinting() && o.NumDesigns < 1) {
		return newErrorf(KindInvalidDesigns, "num_designs", "%d designs", o.NumDesigns)
	}
	if o.DesignWaivers < 0 {
		return newErrorf(KindInvalidDesigns, "design_waivers", "%d waivers", o.DesignWaivers)
	}
	if !o.Turnaround.valid() {
		return newErrorf(KindInvalidOption, "turnaround", "unknown turnaround %q", o.Turnaround)
	}
	if !o.ShippingType.valid() {
		return newErrorf(KindInvalidOption, "shipping_type", "unknown shipping type %q", o.ShippingType)
	}
	amounts := []struct {
		field string
		v     decimal.Decimal
	}{
		{"shipping_base_quote", o.ShippingBaseQuote},
		{"shipping_markup_pct", o.ShippingMarkupPct},
		{"sales_tax_rate_pct", o.SalesTaxRatePct},
	}
	for _, a := range amounts {
		if a.v.IsNegative() {
			return newErrorf(KindInvalidAmount, a.field, "%s is negative", a.v)
		}
	}

	for i, li := range o.LineItems {
		if err := validateLineItem(li); err != nil {
			err.Field = fmt.Sprintf("line_items[%d].%s", i, err.Field)
			return err
		}
	}
	return nil
}

func validateLineItem(li LineItem) *Error {
	if !li.ServiceType.valid() {
		return newErrorf(KindInvalidOption, "service_type", "unknown service type %q", li.ServiceType)
	}
	if !li.Sides.valid() {
		return newErrorf(KindInvalidOption, "sides", "unknown sides %q", li.Sides)
	}
	if !li.GlossFinish.valid() {
		return newErrorf(KindInvalidOption, "gloss_finish", "unknown gloss finish %q", li.GlossFinish)
	}
	if !li.Packaging.valid() {
		return newErrorf(KindInvalidOption, "packaging", "unknown packaging %q", li.Packaging)
	}
	if li.Quantity < 0 || li.Quantity > MaxLineQuantity {
		return newErrorf(KindInvalidQuantity, "quantity", "%d is outside 0..%d", li.Quantity, MaxLineQuantity)
	}
	if li.Device.Capacity <= 0 {
		return newError(KindInvalidCapacity, "device.capacity", production.ErrInvalidCapacity)
	}
	if li.Device.UnitCost.IsNegative() {
		return newErrorf(KindInvalidUnitCost, "device.unit_cost", "%s is negative", li.Device.UnitCost)
	}
	if li.ServiceType.IncludesDevices() {
		if err := li.Device.PricingTiers.Validate(); err != nil {
			if errors.Is(err, rates.ErrMissingFallbackTier) {
				return newError(KindMissingFallbackTier, "device.pricing_tiers", err)
			}
			return newError(KindInvalidTiers, "device.pricing_tiers", err)
		}
	}
	return nil
}
