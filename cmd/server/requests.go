package main

import (
	"github.com/shopspring/decimal"

	"github.com/Simplici0/printquote/internal/catalog"
	"github.com/Simplici0/printquote/internal/pricing"
	"github.com/Simplici0/printquote/internal/quotes"
	"github.com/Simplici0/printquote/internal/rates"
)

// Defaults for options an order request leaves out.
const defaultPrinterCount = 3

type lineItemRequest struct {
	DeviceID    string `json:"device_id" validate:"required"`
	Quantity    int    `json:"quantity" validate:"gte=0"`
	ServiceType string `json:"service_type" validate:"required"`
	Sides       string `json:"sides"`
	GlossFinish string `json:"gloss_finish"`
	Packaging   string `json:"packaging"`
}

// orderRequest carries an order by device id. Option values are checked by the engine
// so the caller gets the same errors as any other pricing path.
type orderRequest struct {
	LineItems         []lineItemRequest `json:"line_items" validate:"dive"`
	NumDesigns        int               `json:"num_designs" validate:"gte=0"`
	DesignWaivers     int               `json:"design_waivers" validate:"gte=0"`
	Turnaround        string            `json:"turnaround"`
	SampleRun         bool              `json:"sample_run"`
	WaiveSampleFee    bool              `json:"waive_sample_fee"`
	ShippingType      string            `json:"shipping_type"`
	ShippingBaseQuote decimal.Decimal   `json:"shipping_base_quote"`
	ShippingMarkupPct decimal.Decimal   `json:"shipping_markup_pct"`
	SalesTaxRatePct   decimal.Decimal   `json:"sales_tax_rate_pct"`
	PrinterCount      *int              `json:"printer_count"`
}

func (req orderRequest) toOrder() pricing.Order {
	o := pricing.Order{
		NumDesigns:        req.NumDesigns,
		DesignWaivers:     req.DesignWaivers,
		Turnaround:        pricing.Turnaround(orDefault(req.Turnaround, string(pricing.TurnaroundNormal))),
		SampleRun:         req.SampleRun,
		WaiveSampleFee:    req.WaiveSampleFee,
		ShippingType:      pricing.ShippingType(orDefault(req.ShippingType, string(pricing.ShippingCarrier))),
		ShippingBaseQuote: req.ShippingBaseQuote,
		ShippingMarkupPct: req.ShippingMarkupPct,
		SalesTaxRatePct:   req.SalesTaxRatePct,
		PrinterCount:      defaultPrinterCount,
	}
	if req.PrinterCount != nil {
		o.PrinterCount = *req.PrinterCount
	}
	for _, li := range req.LineItems {
		o.LineItems = append(o.LineItems, pricing.LineItem{
			DeviceID:    li.DeviceID,
			Quantity:    li.Quantity,
			ServiceType: pricing.ServiceType(li.ServiceType),
			Sides:       pricing.Sides(orDefault(li.Sides, string(pricing.SingleSided))),
			GlossFinish: pricing.GlossFinish(orDefault(li.GlossFinish, string(pricing.GlossNone))),
			Packaging:   pricing.Packaging(orDefault(li.Packaging, string(pricing.PackagingLoose))),
		})
	}
	return o
}

func orDefault(v, def string) string {
	if v == "" {
		return def
	}
	return v
}

type saveQuoteRequest struct {
	ID             string       `json:"id"`
	ClientName     string       `json:"client_name" validate:"required"`
	AccountManager string       `json:"account_manager"`
	Order          orderRequest `json:"order"`
}

type statusRequest struct {
	Status string `json:"status" validate:"required,oneof=pending won lost"`
}

type deviceRequest struct {
	Name         string          `json:"name" validate:"required"`
	Capacity     int             `json:"capacity" validate:"gt=0"`
	UnitCost     decimal.Decimal `json:"unit_cost"`
	PricingTiers rates.Tiers     `json:"pricing_tiers"`
}

func (req deviceRequest) toInput() catalog.DeviceInput {
	return catalog.DeviceInput{
		Name:         req.Name,
		Capacity:     req.Capacity,
		UnitCost:     req.UnitCost,
		PricingTiers: req.PricingTiers,
	}
}

type managerRequest struct {
	Name string `json:"name" validate:"required"`
}

type legacyPriceResponse struct {
	Order  pricing.Order  `json:"order"`
	Result pricing.Result `json:"result"`
}

type quotesListResponse struct {
	Quotes []quotes.Quote      `json:"quotes"`
	Counts quotes.StatusCounts `json:"counts"`
}

type repriceResponse struct {
	Result          pricing.Result `json:"result"`
	MatchesSnapshot bool           `json:"matches_snapshot"`
}
