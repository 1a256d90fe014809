package pricing

import (
	"github.com/shopspring/decimal"

	"github.com/Simplici0/printquote/internal/production"
	"github.com/Simplici0/printquote/internal/rates"
)

// LineItemResult holds one line item's customer charges and cost-floor contributions.
type LineItemResult struct {
	Index            int                     `json:"index"`
	DeviceID         string                  `json:"device_id"`
	DeviceName       string                  `json:"device_name"`
	Quantity         int                     `json:"quantity"`
	ServiceType      ServiceType             `json:"service_type"`
	Sides            Sides                   `json:"sides"`
	GlossFinish      GlossFinish             `json:"gloss_finish"`
	Packaging        Packaging               `json:"packaging"`
	IncludesPrinting bool                    `json:"includes_printing"`
	IncludesDevices  bool                    `json:"includes_devices"`
	SidesPrinted     int                     `json:"sides_printed"`
	Production       production.LineEstimate `json:"production"`

	BasePrice          decimal.Decimal `json:"base_price"`
	BasePrintingCharge decimal.Decimal `json:"base_printing_charge"`
	GlossCharge        decimal.Decimal `json:"gloss_charge"`
	DoubleSidedCharge  decimal.Decimal `json:"double_sided_charge"`
	PackagingCharge    decimal.Decimal `json:"packaging_charge"`
	PrintingSubtotal   decimal.Decimal `json:"printing_subtotal"`
	DeviceSellingPrice decimal.Decimal `json:"device_selling_price"`
	DeviceRevenue      decimal.Decimal `json:"device_revenue"`
	LineItemCharge     decimal.Decimal `json:"line_item_charge"`

	CMYKInkCost     decimal.Decimal `json:"cmyk_ink_cost"`
	GlossInkCost    decimal.Decimal `json:"gloss_ink_cost"`
	RepackagingCost decimal.Decimal `json:"repackaging_cost"`
	DeviceCostFloor decimal.Decimal `json:"device_cost_floor"`
	DeviceProfit    decimal.Decimal `json:"device_profit"`
}

func glossPrice(a rates.AddOns, g GlossFinish) decimal.Decimal {
	switch g {
	case GlossSingleSide:
		return a.GlossSingleSide
	case GlossBothSides:
		return a.GlossBothSides
	}
	return decimal.Zero
}

func packagingPrice(a rates.AddOns, p Packaging) decimal.Decimal {
	switch p {
	case PackagingPartner:
		return a.PackagingPartner
	case PackagingClient:
		return a.PackagingClient
	}
	return decimal.Zero
}

// priceLineItem combines the shared print price basePrice with the item's options and
// its production estimate. li must already be normalized and validated.
func priceLineItem(rt rates.RateTable, index int, li LineItem, basePrice decimal.Decimal, est production.LineEstimate) (LineItemResult, error) {
	q := decimal.NewFromInt(int64(li.Quantity))

	res := LineItemResult{
		Index:            index,
		DeviceID:         li.DeviceID,
		DeviceName:       li.Device.Name,
		Quantity:         li.Quantity,
		ServiceType:      li.ServiceType,
		Sides:            li.Sides,
		GlossFinish:      li.GlossFinish,
		Packaging:        li.Packaging,
		IncludesPrinting: li.ServiceType.IncludesPrinting(),
		IncludesDevices:  li.ServiceType.IncludesDevices(),
		Production:       est,
	}

	if res.IncludesPrinting {
		res.SidesPrinted = 1
		if li.Sides == DoubleSided {
			res.SidesPrinted = 2
			res.DoubleSidedCharge = rt.AddOns.DoubleSided.Mul(q)
		}
		res.BasePrice = basePrice
		res.BasePrintingCharge = basePrice.Mul(q)
		res.GlossCharge = glossPrice(rt.AddOns, li.GlossFinish).Mul(q)
		res.PackagingCharge = packagingPrice(rt.AddOns, li.Packaging).Mul(q)

		sides := decimal.NewFromInt(int64(res.SidesPrinted))
		res.CMYKInkCost = rt.Costs.CMYKInkPerSide.Mul(sides).Mul(q)
		glossSides := decimal.NewFromInt(int64(li.GlossFinish.Sides()))
		res.GlossInkCost = rt.Costs.GlossInkPerSide.Mul(glossSides).Mul(q)
		if li.Packaging != PackagingLoose {
			res.RepackagingCost = rt.Costs.RepackagingPerUnit.Mul(q)
		}
	}
	res.PrintingSubtotal = res.BasePrintingCharge.Add(res.GlossCharge).Add(res.DoubleSidedCharge).Add(res.PackagingCharge)

	if res.IncludesDevices {
		price, err := li.Device.PricingTiers.Lookup(li.Quantity)
		if err != nil {
			return LineItemResult{}, newError(KindMissingFallbackTier, "device.pricing_tiers", err)
		}
		res.DeviceSellingPrice = price
		res.DeviceRevenue = price.Mul(q)
		res.DeviceCostFloor = li.Device.UnitCost.Mul(q)
		res.DeviceProfit = res.DeviceRevenue.Sub(res.DeviceCostFloor)
	}
	res.LineItemCharge = res.PrintingSubtotal.Add(res.DeviceRevenue)

	return res, nil
}
