package pricing

import (
	"github.com/shopspring/decimal"

	"github.com/Simplici0/printquote/internal/rates"
)

// ServiceType says which of printing and device supply a line item includes.
type ServiceType string

// Service types.
const (
	PrintOnly       ServiceType = "print-only"
	PrintAndDevices ServiceType = "print-and-devices"
	DevicesOnly     ServiceType = "devices-only"
)

func (s ServiceType) valid() bool {
	return s == PrintOnly || s == PrintAndDevices || s == DevicesOnly
}

// IncludesPrinting reports whether the item is printed.
func (s ServiceType) IncludesPrinting() bool { return s != DevicesOnly }

// IncludesDevices reports whether the business supplies the devices.
func (s ServiceType) IncludesDevices() bool { return s != PrintOnly }

// Sides is how many faces of a device are printed.
type Sides string

// Print sides.
const (
	SingleSided Sides = "single"
	DoubleSided Sides = "double"
)

func (s Sides) valid() bool { return s == SingleSided || s == DoubleSided }

// GlossFinish is the gloss coat applied on top of the print.
type GlossFinish string

// Gloss finishes.
const (
	GlossNone       GlossFinish = "none"
	GlossSingleSide GlossFinish = "single-side"
	GlossBothSides  GlossFinish = "both-sides"
)

func (g GlossFinish) valid() bool {
	return g == GlossNone || g == GlossSingleSide || g == GlossBothSides
}

// Sides returns how many sides receive gloss.
func (g GlossFinish) Sides() int {
	switch g {
	case GlossSingleSide:
		return 1
	case GlossBothSides:
		return 2
	}
	return 0
}

// Packaging is how printed units are packed for the client.
type Packaging string

// Packaging options. Partner and client packs are repackaged by hand.
const (
	PackagingLoose   Packaging = "loose"
	PackagingPartner Packaging = "partner-pack"
	PackagingClient  Packaging = "client-pack"
)

func (p Packaging) valid() bool {
	return p == PackagingLoose || p == PackagingPartner || p == PackagingClient
}

// Turnaround is the delivery speed; faster options add a surcharge.
type Turnaround string

// Turnaround options.
const (
	TurnaroundNormal  Turnaround = "normal"
	TurnaroundRush    Turnaround = "rush"
	TurnaroundWeekend Turnaround = "weekend"
)

func (t Turnaround) valid() bool {
	return t == TurnaroundNormal || t == TurnaroundRush || t == TurnaroundWeekend
}

// ShippingType is how the order leaves the shop.
type ShippingType string

// Shipping options. Carrier shipping is billed at the carrier quote plus markup.
const (
	ShippingCarrier ShippingType = "carrier"
	ShippingPickup  ShippingType = "pickup"
)

func (s ShippingType) valid() bool { return s == ShippingCarrier || s == ShippingPickup }

// Device is a catalog entry as the engine sees it.
type Device struct {
	ID           string          `json:"id"`
	Name         string          `json:"name"`
	Capacity     int             `json:"capacity"`
	UnitCost     decimal.Decimal `json:"unit_cost"`
	PricingTiers rates.Tiers     `json:"pricing_tiers"`
}

// LineItem is one device/printing configuration within an order.
type LineItem struct {
	DeviceID    string      `json:"device_id"`
	Device      Device      `json:"device"`
	Quantity    int         `json:"quantity"`
	ServiceType ServiceType `json:"service_type"`
	Sides       Sides       `json:"sides"`
	GlossFinish GlossFinish `json:"gloss_finish"`
	Packaging   Packaging   `json:"packaging"`
}

// Normalize applies the option rules: single-sided items cannot carry both-sides gloss,
// and devices-only items carry no printing options.
func (li LineItem) Normalize() LineItem {
	if li.ServiceType == DevicesOnly {
		li.Sides = SingleSided
		li.GlossFinish = GlossNone
		li.Packaging = PackagingLoose
		return li
	}
	if li.Sides == SingleSided && li.GlossFinish == GlossBothSides {
		li.GlossFinish = GlossSingleSide
	}
	return li
}

// Order is the aggregate the engine prices.
type Order struct {
	LineItems         []LineItem      `json:"line_items"`
	NumDesigns        int             `json:"num_designs"`
	DesignWaivers     int             `json:"design_waivers"`
	Turnaround        Turnaround      `json:"turnaround"`
	SampleRun         bool            `json:"sample_run"`
	WaiveSampleFee    bool            `json:"waive_sample_fee"`
	ShippingType      ShippingType    `json:"shipping_type"`
	ShippingBaseQuote decimal.Decimal `json:"shipping_base_quote"`
	ShippingMarkupPct decimal.Decimal `json:"shipping_markup_pct"`
	SalesTaxRatePct   decimal.Decimal `json:"sales_tax_rate_pct"`
	PrinterCount      int             `json:"printer_count"`
}

// Normalized returns a copy with every line item normalized.
func (o Order) Normalized() Order {
	items := make([]LineItem, len(o.LineItems))
	for i, li := range o.LineItems {
		items[i] = li.Normalize()
	}
	o.LineItems = items
	return o
}

// TotalQuantity is the sum of all line quantities.
func (o Order) TotalQuantity() int {
	total := 0
	for _, li := range o.LineItems {
		total += li.Quantity
	}
	return total
}

// PrintQuantity is the sum of quantities that are printed. It drives the print tier,
// setup fee, included designs and sample fee.
func (o Order) PrintQuantity() int {
	total := 0
	for _, li := range o.LineItems {
		if li.ServiceType.IncludesPrinting() {
			total += li.Quantity
		}
	}
	return total
}

// HasPrinting reports whether any line item includes printing.
func (o Order) HasPrinting() bool {
	for _, li := range o.LineItems {
		if li.ServiceType.IncludesPrinting() {
			return true
		}
	}
	return false
}

// HasDevices reports whether any line item supplies devices.
func (o Order) HasDevices() bool {
	for _, li := range o.LineItems {
		if li.ServiceType.IncludesDevices() {
			return true
		}
	}
	return false
}
