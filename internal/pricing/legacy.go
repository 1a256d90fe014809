package pricing

import (
	"encoding/json"
	"fmt"

	"github.com/shopspring/decimal"
)

// Defaults applied to settings missing from older saved quotes.
const (
	legacyDefaultQuantity = 1000
	legacyDefaultDesigns  = 1
	legacyDefaultPrinters = 3
)

var legacyDefaultMarkupPct = decimal.NewFromInt(20)

type legacyLineItem struct {
	DeviceIndex      int    `json:"deviceIndex"`
	Quantity         *int   `json:"quantity"`
	ServiceType      string `json:"serviceType"`
	SupplyingDevices bool   `json:"supplyingDevices"`
	Sides            string `json:"sides"`
	GlossFinish      string `json:"glossFinish"`
	Packaging        string `json:"packaging"`
}

// legacyOrder covers both saved-quote generations: the single-device form (top-level
// selectedDevice and quantity) and the multi-item form keyed by device index.
type legacyOrder struct {
	LineItems []legacyLineItem `json:"lineItems"`

	SelectedDevice   int    `json:"selectedDevice"`
	Quantity         *int   `json:"quantity"`
	SupplyingDevices bool   `json:"supplyingDevices"`
	Sides            string `json:"sides"`
	GlossFinish      string `json:"glossFinish"`
	Packaging        string `json:"packaging"`

	NumDesigns     *int             `json:"numDesigns"`
	DesignWaivers  int              `json:"designWaivers"`
	Turnaround     string           `json:"turnaround"`
	SampleRun      *bool            `json:"sampleRun"`
	WaiveSampleFee bool             `json:"waiveSampleFee"`
	ShippingType   string           `json:"shippingType"`
	ShopifyQuote   decimal.Decimal  `json:"shopifyQuote"`
	ShippingMarkup *decimal.Decimal `json:"shippingMarkup"`
	SalesTaxRate   decimal.Decimal  `json:"salesTaxRate"`
	NumPrinters    *int             `json:"numPrinters"`
}

var (
	legacyShipping = map[string]ShippingType{
		"":        ShippingCarrier,
		"shopify": ShippingCarrier,
		"carrier": ShippingCarrier,
		"pickup":  ShippingPickup,
	}
	legacyPackaging = map[string]Packaging{
		"":              PackagingLoose,
		"loose":         PackagingLoose,
		"sticker-mania": PackagingPartner,
		"partner-pack":  PackagingPartner,
		"client":        PackagingClient,
		"client-pack":   PackagingClient,
	}
)

// NormalizeLegacyOrder upgrades a saved quote from the earlier storage formats into an
// Order. devices is the catalog in its stored order, since legacy items refer to devices
// by position. Missing settings take the defaults those formats assumed; a zero design
// count, printer count or single-device quantity counts as missing.
func NormalizeLegacyOrder(raw []byte, devices []Device) (Order, error) {
	var lo legacyOrder
	if err := json.Unmarshal(raw, &lo); err != nil {
		return Order{}, newError(KindInvalidLegacyPayload, "", fmt.Errorf("decode legacy order: %w", err))
	}

	items := lo.LineItems
	if items == nil {
		qty := positiveOr(lo.Quantity, legacyDefaultQuantity)
		items = []legacyLineItem{{
			DeviceIndex:      lo.SelectedDevice,
			Quantity:         &qty,
			SupplyingDevices: lo.SupplyingDevices,
			Sides:            lo.Sides,
			GlossFinish:      lo.GlossFinish,
			Packaging:        lo.Packaging,
		}}
	}

	order := Order{
		NumDesigns:        positiveOr(lo.NumDesigns, legacyDefaultDesigns),
		DesignWaivers:     lo.DesignWaivers,
		Turnaround:        Turnaround(stringOr(lo.Turnaround, string(TurnaroundNormal))),
		SampleRun:         lo.SampleRun == nil || *lo.SampleRun,
		WaiveSampleFee:    lo.WaiveSampleFee,
		ShippingBaseQuote: lo.ShopifyQuote,
		ShippingMarkupPct: legacyDefaultMarkupPct,
		SalesTaxRatePct:   lo.SalesTaxRate,
		PrinterCount:      positiveOr(lo.NumPrinters, legacyDefaultPrinters),
	}
	if lo.ShippingMarkup != nil {
		order.ShippingMarkupPct = *lo.ShippingMarkup
	}
	shipping, ok := legacyShipping[lo.ShippingType]
	if !ok {
		return Order{}, newErrorf(KindInvalidLegacyPayload, "shippingType", "unknown shipping type %q", lo.ShippingType)
	}
	order.ShippingType = shipping

	for i, li := range items {
		item, err := upgradeLegacyItem(li, devices)
		if err != nil {
			err.Field = fmt.Sprintf("lineItems[%d].%s", i, err.Field)
			return Order{}, err
		}
		order.LineItems = append(order.LineItems, item)
	}
	return order.Normalized(), nil
}

func upgradeLegacyItem(li legacyLineItem, devices []Device) (LineItem, *Error) {
	if li.DeviceIndex < 0 || li.DeviceIndex >= len(devices) {
		return LineItem{}, newErrorf(KindUnknownDevice, "deviceIndex", "no device at index %d", li.DeviceIndex)
	}
	device := devices[li.DeviceIndex]

	service := ServiceType(li.ServiceType)
	if li.ServiceType == "" {
		service = PrintOnly
		if li.SupplyingDevices {
			service = PrintAndDevices
		}
	}
	packaging, ok := legacyPackaging[li.Packaging]
	if !ok {
		return LineItem{}, newErrorf(KindInvalidLegacyPayload, "packaging", "unknown packaging %q", li.Packaging)
	}

	return LineItem{
		DeviceID:    device.ID,
		Device:      device,
		Quantity:    intOr(li.Quantity, legacyDefaultQuantity),
		ServiceType: service,
		Sides:       Sides(stringOr(li.Sides, string(SingleSided))),
		GlossFinish: GlossFinish(stringOr(li.GlossFinish, string(GlossNone))),
		Packaging:   packaging,
	}, nil
}

func intOr(v *int, def int) int {
	if v == nil {
		return def
	}
	return *v
}

// positiveOr treats zero like a missing value, as the old records did for counts.
func positiveOr(v *int, def int) int {
	if v == nil || *v <= 0 {
		return def
	}
	return *v
}

func stringOr(v, def string) string {
	if v == "" {
		return def
	}
	return v
}
