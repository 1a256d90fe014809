package pricing

import "github.com/shopspring/decimal"

// MarginStatus classifies a profit margin.
type MarginStatus string

const (
	MarginGood    MarginStatus = "good"
	MarginWarning MarginStatus = "warning"
	MarginDanger  MarginStatus = "danger"
)

var (
	goodMarginAt    = decimal.NewFromInt(30)
	warningMarginAt = decimal.NewFromInt(15)
)

// ClassifyMargin maps a margin percentage onto a status.
func ClassifyMargin(marginPct decimal.Decimal) MarginStatus {
	switch {
	case marginPct.GreaterThanOrEqual(goodMarginAt):
		return MarginGood
	case marginPct.GreaterThanOrEqual(warningMarginAt):
		return MarginWarning
	}
	return MarginDanger
}

// ProfitResult relates the quote to the cost floor.
type ProfitResult struct {
	GrossProfit   decimal.Decimal `json:"gross_profit"`
	ProfitMargin  decimal.Decimal `json:"profit_margin"`
	CostPerUnit   decimal.Decimal `json:"cost_per_unit"`
	PricePerUnit  decimal.Decimal `json:"price_per_unit"`
	ProfitPerUnit decimal.Decimal `json:"profit_per_unit"`
	MarginStatus  MarginStatus    `json:"margin_status"`
}

// AnalyzeProfit derives profit metrics. Zero totals yield zero metrics, not errors.
func AnalyzeProfit(totalQuote, totalCostFloor decimal.Decimal, totalQuantity int) ProfitResult {
	p := ProfitResult{
		GrossProfit:   totalQuote.Sub(totalCostFloor),
		ProfitMargin:  decimal.Zero,
		CostPerUnit:   decimal.Zero,
		PricePerUnit:  decimal.Zero,
		ProfitPerUnit: decimal.Zero,
	}
	if totalQuote.IsPositive() {
		p.ProfitMargin = p.GrossProfit.Mul(hundred).Div(totalQuote)
	}
	if totalQuantity > 0 {
		q := decimal.NewFromInt(int64(totalQuantity))
		p.CostPerUnit = totalCostFloor.Div(q)
		p.PricePerUnit = totalQuote.Div(q)
		p.ProfitPerUnit = p.GrossProfit.Div(q)
	}
	p.MarginStatus = ClassifyMargin(p.ProfitMargin)
	return p
}
