package pricing

import (
	"github.com/shopspring/decimal"

	"github.com/Simplici0/printquote/internal/rates"
)

var hundred = decimal.NewFromInt(100)

// Designs is the design-fee breakdown.
type Designs struct {
	Requested       int             `json:"requested"`
	Included        int             `json:"included"`
	Extra           int             `json:"extra"`
	Waived          int             `json:"waived"`
	Chargeable      int             `json:"chargeable"`
	ExtraDesignCost decimal.Decimal `json:"extra_design_cost"`
}

// QuoteResult is the customer-facing quote with every fee that produced it.
type QuoteResult struct {
	BasePrice                decimal.Decimal `json:"base_price"`
	TierLabel                string          `json:"tier_label"`
	PrintingSubtotal         decimal.Decimal `json:"printing_subtotal"`
	DeviceRevenueTotal       decimal.Decimal `json:"device_revenue_total"`
	SetupFee                 decimal.Decimal `json:"setup_fee"`
	Designs                  Designs         `json:"designs"`
	SubtotalBeforeTurnaround decimal.Decimal `json:"subtotal_before_turnaround"`
	Turnaround               Turnaround      `json:"turnaround"`
	TurnaroundRate           decimal.Decimal `json:"turnaround_rate"`
	TurnaroundFee            decimal.Decimal `json:"turnaround_fee"`
	SampleFeeCharged         bool            `json:"sample_fee_charged"`
	SampleFee                decimal.Decimal `json:"sample_fee"`
	Subtotal                 decimal.Decimal `json:"subtotal"`
	SalesTaxRatePct          decimal.Decimal `json:"sales_tax_rate_pct"`
	SalesTax                 decimal.Decimal `json:"sales_tax"`
	ShippingType             ShippingType    `json:"shipping_type"`
	ShippingCost             decimal.Decimal `json:"shipping_cost"`
	TotalQuote               decimal.Decimal `json:"total_quote"`
}

func turnaroundRate(t rates.Turnaround, sel Turnaround) decimal.Decimal {
	switch sel {
	case TurnaroundRush:
		return t.Rush
	case TurnaroundWeekend:
		return t.Weekend
	}
	return decimal.Zero
}

// designBreakdown splits the requested designs into included, extra and waived ones.
// Without printing there is nothing to design.
func designBreakdown(f rates.Fees, printQty, requested, waivers int) Designs {
	d := Designs{Requested: requested, ExtraDesignCost: decimal.Zero}
	if printQty == 0 {
		return d
	}
	d.Included = printQty / f.UnitsPerIncludedDesign
	d.Extra = max(0, requested-d.Included)
	d.Waived = min(waivers, d.Extra)
	d.Chargeable = d.Extra - d.Waived
	d.ExtraDesignCost = f.ExtraDesignFee.Mul(decimal.NewFromInt(int64(d.Chargeable)))
	return d
}

// sampleFeeCharged reports whether the sample run is billed.
func sampleFeeCharged(f rates.Fees, o Order, printQty int) bool {
	return o.SampleRun && !o.WaiveSampleFee && printQty > 0 && printQty < f.SampleRunFreeThreshold
}

// shippingCost is zero for pickup, else the carrier quote plus markup.
func shippingCost(o Order) decimal.Decimal {
	if o.ShippingType == ShippingPickup {
		return decimal.Zero
	}
	factor := decimal.NewFromInt(1).Add(o.ShippingMarkupPct.Div(hundred))
	return o.ShippingBaseQuote.Mul(factor)
}

// aggregateQuote applies order-level charges once over the summed line items. Later
// fees compound on earlier subtotals, so the step order is significant.
func aggregateQuote(rt rates.RateTable, o Order, items []LineItemResult, basePrice decimal.Decimal) QuoteResult {
	printQty := o.PrintQuantity()

	q := QuoteResult{
		PrintingSubtotal:   decimal.Zero,
		DeviceRevenueTotal: decimal.Zero,
		SetupFee:           decimal.Zero,
		SampleFee:          decimal.Zero,
		Turnaround:         o.Turnaround,
		SalesTaxRatePct:    o.SalesTaxRatePct,
		ShippingType:       o.ShippingType,
	}
	if o.HasPrinting() {
		q.BasePrice = basePrice
		q.TierLabel = rt.PrintTiers.Label(printQty)
	}

	for _, li := range items {
		q.PrintingSubtotal = q.PrintingSubtotal.Add(li.PrintingSubtotal)
		q.DeviceRevenueTotal = q.DeviceRevenueTotal.Add(li.DeviceRevenue)
	}

	if printQty > 0 && printQty < rt.Fees.SetupFeeThreshold {
		q.SetupFee = rt.Fees.SetupFee
	}

	q.Designs = designBreakdown(rt.Fees, printQty, o.NumDesigns, o.DesignWaivers)

	q.SubtotalBeforeTurnaround = q.PrintingSubtotal.
		Add(q.DeviceRevenueTotal).
		Add(q.SetupFee).
		Add(q.Designs.ExtraDesignCost)

	// Turnaround applies to device revenue too.
	q.TurnaroundRate = turnaroundRate(rt.Turnaround, o.Turnaround)
	q.TurnaroundFee = q.SubtotalBeforeTurnaround.Mul(q.TurnaroundRate)

	q.SampleFeeCharged = sampleFeeCharged(rt.Fees, o, printQty)
	if q.SampleFeeCharged {
		q.SampleFee = rt.Fees.SampleRunFee
	}

	q.Subtotal = q.SubtotalBeforeTurnaround.Add(q.TurnaroundFee).Add(q.SampleFee)
	q.SalesTax = q.Subtotal.Mul(o.SalesTaxRatePct).Div(hundred)
	q.ShippingCost = shippingCost(o)
	q.TotalQuote = q.Subtotal.Add(q.SalesTax).Add(q.ShippingCost)
	return q
}
