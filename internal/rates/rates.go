// Package rates holds the business pricing and cost constants the quote engine runs on.
// A RateTable is plain data: changing a value never requires touching calculation code.
package rates

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/shopspring/decimal"
)

// ErrInvalidRateTable is returned by Validate for out-of-range constants.
var ErrInvalidRateTable = errors.New("invalid rate table")

// AddOns are customer prices per unit for printing options.
type AddOns struct {
	GlossSingleSide  decimal.Decimal `json:"gloss_single_side"`
	GlossBothSides   decimal.Decimal `json:"gloss_both_sides"`
	DoubleSided      decimal.Decimal `json:"double_sided"`
	PackagingPartner decimal.Decimal `json:"packaging_partner"`
	PackagingClient  decimal.Decimal `json:"packaging_client"`
}

// Fees are order-level fixed charges and their thresholds.
type Fees struct {
	SetupFee               decimal.Decimal `json:"setup_fee"`
	SetupFeeThreshold      int             `json:"setup_fee_threshold"`
	ExtraDesignFee         decimal.Decimal `json:"extra_design_fee"`
	SampleRunFee           decimal.Decimal `json:"sample_run_fee"`
	SampleRunFreeThreshold int             `json:"sample_run_free_threshold"`
	UnitsPerIncludedDesign int             `json:"units_per_included_design"`
	MinimumOrderQuantity   int             `json:"minimum_order_quantity"`
}

// Turnaround multipliers applied to the subtotal before turnaround.
type Turnaround struct {
	Rush    decimal.Decimal `json:"rush"`
	Weekend decimal.Decimal `json:"weekend"`
}

// Costs are the raw, unmarked-up costs used by the cost floor.
type Costs struct {
	CMYKInkPerSide            decimal.Decimal `json:"cmyk_ink_per_side"`
	GlossInkPerSide           decimal.Decimal `json:"gloss_ink_per_side"`
	LaborPerHour              decimal.Decimal `json:"labor_per_hour"`
	FileSetupPerDesign        decimal.Decimal `json:"file_setup_per_design"`
	MachineSetupPerDay        decimal.Decimal `json:"machine_setup_per_day"`
	SamplePrinting            decimal.Decimal `json:"sample_printing"`
	RepackagingPerUnit        decimal.Decimal `json:"repackaging_per_unit"`
	ShippingStagingMinutes    int             `json:"shipping_staging_minutes"`
	ShippingStagingHourlyRate decimal.Decimal `json:"shipping_staging_hourly_rate"`
}

// ShippingStaging returns the fixed per-order staging cost.
func (c Costs) ShippingStaging() decimal.Decimal {
	hours := decimal.NewFromInt(int64(c.ShippingStagingMinutes)).Div(decimal.NewFromInt(60))
	return hours.Mul(c.ShippingStagingHourlyRate)
}

// Production holds the batch timing constants used by the estimator.
type Production struct {
	MinutesPerBatch          int `json:"minutes_per_batch"`
	MinutesPerBatchWithGloss int `json:"minutes_per_batch_with_gloss"`
	WorkdayHours             int `json:"workday_hours"`
}

// RateTable is the full set of pricing configuration for one point in time.
type RateTable struct {
	Version       string      `json:"version"`
	PrintTiers    Tiers       `json:"print_tiers"`
	AddOns        AddOns      `json:"add_ons"`
	Fees          Fees        `json:"fees"`
	Turnaround    Turnaround  `json:"turnaround"`
	Costs         Costs       `json:"costs"`
	Production    Production  `json:"production"`
	DeviceMarkups MarkupTiers `json:"device_markups"`
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

// Default returns the rate table the business currently quotes with.
func Default() RateTable {
	return RateTable{
		Version: "2024-12",
		PrintTiers: Tiers{
			{MinQty: 10000, Price: dec("0.60")},
			{MinQty: 5000, Price: dec("0.60")},
			{MinQty: 3000, Price: dec("0.65")},
			{MinQty: 1000, Price: dec("0.70")},
			{MinQty: 500, Price: dec("0.75")},
			{MinQty: 100, Price: dec("0.80")},
			{MinQty: 0, Price: dec("0.80")},
		},
		AddOns: AddOns{
			GlossSingleSide:  dec("0.07"),
			GlossBothSides:   dec("0.12"),
			DoubleSided:      dec("0.35"),
			PackagingPartner: dec("0.11"),
			PackagingClient:  dec("0.16"),
		},
		Fees: Fees{
			SetupFee:               dec("150"),
			SetupFeeThreshold:      1000,
			ExtraDesignFee:         dec("35"),
			SampleRunFee:           dec("65"),
			SampleRunFreeThreshold: 5000,
			UnitsPerIncludedDesign: 1000,
			MinimumOrderQuantity:   100,
		},
		Turnaround: Turnaround{
			Rush:    dec("0.12"),
			Weekend: dec("0.20"),
		},
		Costs: Costs{
			CMYKInkPerSide:            dec("0.03"),
			GlossInkPerSide:           dec("0.01"),
			LaborPerHour:              dec("23"),
			FileSetupPerDesign:        dec("10"),
			MachineSetupPerDay:        dec("23"),
			SamplePrinting:            dec("23"),
			RepackagingPerUnit:        dec("0.06"),
			ShippingStagingMinutes:    40,
			ShippingStagingHourlyRate: dec("20"),
		},
		Production: Production{
			MinutesPerBatch:          35,
			MinutesPerBatchWithGloss: 45,
			WorkdayHours:             6,
		},
		DeviceMarkups: MarkupTiers{
			{MinQty: 10000, MarkupPercent: dec("22")},
			{MinQty: 5000, MarkupPercent: dec("25")},
			{MinQty: 3000, MarkupPercent: dec("30")},
			{MinQty: 1000, MarkupPercent: dec("35")},
			{MinQty: 100, MarkupPercent: dec("40")},
			{MinQty: 0, MarkupPercent: dec("40")},
		},
	}
}

// Load reads a JSON rate table from path. Fields absent from the file keep their
// Default values. An empty path returns Default.
func Load(path string) (RateTable, error) {
	rt := Default()
	if path == "" {
		return rt, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return RateTable{}, fmt.Errorf("read rate table: %w", err)
	}
	if err := json.Unmarshal(data, &rt); err != nil {
		return RateTable{}, fmt.Errorf("decode rate table: %w", err)
	}
	if err := rt.Validate(); err != nil {
		return RateTable{}, err
	}
	return rt, nil
}

// Validate fails fast on tables that would produce plausible but wrong quotes.
func (rt RateTable) Validate() error {
	if err := rt.PrintTiers.Validate(); err != nil {
		return fmt.Errorf("print tiers: %w", err)
	}

	money := map[string]decimal.Decimal{
		"gloss_single_side":            rt.AddOns.GlossSingleSide,
		"gloss_both_sides":             rt.AddOns.GlossBothSides,
		"double_sided":                 rt.AddOns.DoubleSided,
		"packaging_partner":            rt.AddOns.PackagingPartner,
		"packaging_client":             rt.AddOns.PackagingClient,
		"setup_fee":                    rt.Fees.SetupFee,
		"extra_design_fee":             rt.Fees.ExtraDesignFee,
		"sample_run_fee":               rt.Fees.SampleRunFee,
		"rush":                         rt.Turnaround.Rush,
		"weekend":                      rt.Turnaround.Weekend,
		"cmyk_ink_per_side":            rt.Costs.CMYKInkPerSide,
		"gloss_ink_per_side":           rt.Costs.GlossInkPerSide,
		"labor_per_hour":               rt.Costs.LaborPerHour,
		"file_setup_per_design":        rt.Costs.FileSetupPerDesign,
		"machine_setup_per_day":        rt.Costs.MachineSetupPerDay,
		"sample_printing":              rt.Costs.SamplePrinting,
		"repackaging_per_unit":         rt.Costs.RepackagingPerUnit,
		"shipping_staging_hourly_rate": rt.Costs.ShippingStagingHourlyRate,
	}
	for name, v := range money {
		if v.IsNegative() {
			return fmt.Errorf("%w: %s is negative", ErrInvalidRateTable, name)
		}
	}

	if rt.Fees.UnitsPerIncludedDesign <= 0 {
		return fmt.Errorf("%w: units_per_included_design must be positive", ErrInvalidRateTable)
	}
	if rt.Fees.SetupFeeThreshold < 0 || rt.Fees.SampleRunFreeThreshold < 0 || rt.Fees.MinimumOrderQuantity < 0 {
		return fmt.Errorf("%w: fee thresholds must not be negative", ErrInvalidRateTable)
	}
	if rt.Costs.ShippingStagingMinutes < 0 {
		return fmt.Errorf("%w: shipping_staging_minutes is negative", ErrInvalidRateTable)
	}
	if rt.Production.MinutesPerBatch <= 0 || rt.Production.MinutesPerBatchWithGloss <= 0 {
		return fmt.Errorf("%w: minutes per batch must be positive", ErrInvalidRateTable)
	}
	if rt.Production.WorkdayHours <= 0 {
		return fmt.Errorf("%w: workday_hours must be positive", ErrInvalidRateTable)
	}

	if len(rt.DeviceMarkups) > 0 {
		if err := rt.DeviceMarkups.Apply(decimal.NewFromInt(1)).Validate(); err != nil {
			return fmt.Errorf("device markups: %w", err)
		}
	}
	return nil
}
