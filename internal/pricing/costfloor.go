package pricing

import (
	"github.com/shopspring/decimal"

	"github.com/Simplici0/printquote/internal/rates"
)

// PreProduction covers work done before the first batch runs.
type PreProduction struct {
	FileSetupCost      decimal.Decimal `json:"file_setup_cost"`
	MachineSetupCost   decimal.Decimal `json:"machine_setup_cost"`
	SamplePrintingCost decimal.Decimal `json:"sample_printing_cost"`
	Total              decimal.Decimal `json:"total"`
}

// ProductionCosts covers consumables and machine labor.
type ProductionCosts struct {
	CMYKInkCost    decimal.Decimal `json:"cmyk_ink_cost"`
	GlossInkCost   decimal.Decimal `json:"gloss_ink_cost"`
	InkCostTotal   decimal.Decimal `json:"ink_cost_total"`
	EffectiveHours decimal.Decimal `json:"effective_hours"`
	LaborCost      decimal.Decimal `json:"labor_cost"`
	Total          decimal.Decimal `json:"total"`
}

// PostProduction covers packing and shipping preparation.
type PostProduction struct {
	RepackagingCost     decimal.Decimal `json:"repackaging_cost"`
	ShippingStagingCost decimal.Decimal `json:"shipping_staging_cost"`
	Total               decimal.Decimal `json:"total"`
}

// CostFloorResult is the true cost of fulfilling an order.
type CostFloorResult struct {
	PreProduction   PreProduction   `json:"pre_production"`
	Production      ProductionCosts `json:"production"`
	PostProduction  PostProduction  `json:"post_production"`
	DeviceCostFloor decimal.Decimal `json:"device_cost_floor"`
	Total           decimal.Decimal `json:"total"`
}

func zeroCostFloor() CostFloorResult {
	return CostFloorResult{
		PreProduction: PreProduction{
			FileSetupCost:      decimal.Zero,
			MachineSetupCost:   decimal.Zero,
			SamplePrintingCost: decimal.Zero,
			Total:              decimal.Zero,
		},
		Production: ProductionCosts{
			CMYKInkCost:    decimal.Zero,
			GlossInkCost:   decimal.Zero,
			InkCostTotal:   decimal.Zero,
			EffectiveHours: decimal.Zero,
			LaborCost:      decimal.Zero,
			Total:          decimal.Zero,
		},
		PostProduction: PostProduction{
			RepackagingCost:     decimal.Zero,
			ShippingStagingCost: decimal.Zero,
			Total:               decimal.Zero,
		},
		DeviceCostFloor: decimal.Zero,
		Total:           decimal.Zero,
	}
}

// aggregateCostFloor sums raw costs independent of what is charged. Unbilled sample
// work is still performed, so its cost is absorbed unless the fee was charged.
func aggregateCostFloor(rt rates.RateTable, o Order, items []LineItemResult, quote QuoteResult, pm ProductionMetrics) CostFloorResult {
	cf := zeroCostFloor()
	for _, li := range items {
		cf.DeviceCostFloor = cf.DeviceCostFloor.Add(li.DeviceCostFloor)
	}

	if o.HasPrinting() {
		pre := &cf.PreProduction
		pre.FileSetupCost = rt.Costs.FileSetupPerDesign.Mul(decimal.NewFromInt(int64(o.NumDesigns)))
		pre.MachineSetupCost = rt.Costs.MachineSetupPerDay.Mul(decimal.NewFromInt(int64(pm.Days)))
		if !quote.SampleFeeCharged {
			pre.SamplePrintingCost = rt.Costs.SamplePrinting
		}
		pre.Total = pre.FileSetupCost.Add(pre.MachineSetupCost).Add(pre.SamplePrintingCost)

		prod := &cf.Production
		for _, li := range items {
			prod.CMYKInkCost = prod.CMYKInkCost.Add(li.CMYKInkCost)
			prod.GlossInkCost = prod.GlossInkCost.Add(li.GlossInkCost)
		}
		prod.InkCostTotal = prod.CMYKInkCost.Add(prod.GlossInkCost)
		prod.EffectiveHours = pm.EffectiveHours
		prod.LaborCost = pm.EffectiveHours.Mul(rt.Costs.LaborPerHour)
		prod.Total = prod.InkCostTotal.Add(prod.LaborCost)

		post := &cf.PostProduction
		for _, li := range items {
			post.RepackagingCost = post.RepackagingCost.Add(li.RepackagingCost)
		}
		post.ShippingStagingCost = rt.Costs.ShippingStaging()
		post.Total = post.RepackagingCost.Add(post.ShippingStagingCost)
	}

	cf.Total = cf.PreProduction.Total.
		Add(cf.Production.Total).
		Add(cf.PostProduction.Total).
		Add(cf.DeviceCostFloor)
	return cf
}
