// Package invoice renders a priced order as a printable HTML invoice.
package invoice

import (
	"embed"
	"fmt"
	"html/template"
	"io"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/shopspring/decimal"

	"github.com/Simplici0/printquote/internal/pricing"
)

//go:embed templates/invoice.html
var templateFS embed.FS

var invoiceTemplate = template.Must(template.New("invoice.html").Funcs(template.FuncMap{
	"money": Money,
	"units": Units,
}).ParseFS(templateFS, "templates/invoice.html"))

// Row is one line of the charges table. Header rows span both columns.
type Row struct {
	Description string
	Note        string
	Amount      decimal.Decimal
	Header      bool
	Indent      bool
}

// Invoice is the view model behind the template.
type Invoice struct {
	Number         string
	Date           time.Time
	ClientName     string
	AccountManager string

	OrderType      string
	OrderTypeClass string

	TotalQuantity  int
	PrintQuantity  int
	LineItemCount  int
	NumDesigns     int
	IncludedDesign int
	Turnaround     string
	HasPrinting    bool
	HasDevices     bool

	PrintingSubtotal decimal.Decimal
	DeviceRevenue    decimal.Decimal

	Rows []Row

	Subtotal        decimal.Decimal
	PerUnit         string
	SalesTaxRatePct decimal.Decimal
	SalesTax        decimal.Decimal
	ShippingCost    decimal.Decimal
	Total           decimal.Decimal
}

// Number builds an invoice number from the issue date and the quote id.
func Number(now time.Time, quoteID string) string {
	suffix := strings.ToUpper(quoteID)
	if len(suffix) > 6 {
		suffix = suffix[:6]
	}
	return fmt.Sprintf("INV-%s-%s", now.Format("20060102"), suffix)
}

// NewInvoice lays out res for client. Date defaults to now.
func NewInvoice(number, client, manager string, res pricing.Result) Invoice {
	q := res.Quote
	inv := Invoice{
		Number:           number,
		Date:             time.Now().UTC(),
		ClientName:       client,
		AccountManager:   manager,
		TotalQuantity:    res.TotalQuantity,
		PrintQuantity:    res.PrintQuantity,
		LineItemCount:    len(res.LineItems),
		NumDesigns:       q.Designs.Requested,
		IncludedDesign:   q.Designs.Included,
		Turnaround:       turnaroundLabel(q.Turnaround),
		HasPrinting:      res.HasPrinting,
		HasDevices:       res.HasDevices,
		PrintingSubtotal: q.PrintingSubtotal,
		DeviceRevenue:    q.DeviceRevenueTotal,
		Subtotal:         q.Subtotal,
		SalesTaxRatePct:  q.SalesTaxRatePct,
		SalesTax:         q.SalesTax,
		ShippingCost:     q.ShippingCost,
		Total:            q.TotalQuote,
	}

	switch {
	case res.HasPrinting && res.HasDevices:
		inv.OrderType, inv.OrderTypeClass = "Print + Device Order", "order-type-mixed"
	case res.HasDevices:
		inv.OrderType, inv.OrderTypeClass = "Device Order", "order-type-devices"
	default:
		inv.OrderType, inv.OrderTypeClass = "Print Order", "order-type-print"
	}

	if res.TotalQuantity > 0 {
		perUnit := q.Subtotal.Div(decimal.NewFromInt(int64(res.TotalQuantity)))
		inv.PerUnit = "$" + perUnit.StringFixed(3) + "/unit"
	}

	for _, li := range res.LineItems {
		inv.Rows = append(inv.Rows, lineItemRows(li, q.BasePrice)...)
	}
	inv.Rows = append(inv.Rows, orderRows(q)...)
	return inv
}

func lineItemRows(li pricing.LineItemResult, basePrice decimal.Decimal) []Row {
	rows := []Row{{
		Description: fmt.Sprintf("%s (%s units)", li.DeviceName, Units(li.Quantity)),
		Note:        serviceLabel(li.ServiceType),
		Header:      true,
	}}
	if li.IncludesPrinting {
		rows = append(rows, Row{
			Description: fmt.Sprintf("Printing (%s × %s)", Units(li.Quantity), Money(basePrice)),
			Amount:      li.BasePrintingCharge,
			Indent:      true,
		})
		if li.GlossCharge.IsPositive() {
			side := "one side"
			if li.GlossFinish == pricing.GlossBothSides {
				side = "both sides"
			}
			rows = append(rows, Row{Description: "Gloss Finish (" + side + ")", Amount: li.GlossCharge, Indent: true})
		}
		if li.DoubleSidedCharge.IsPositive() {
			rows = append(rows, Row{Description: "Double-sided Printing", Amount: li.DoubleSidedCharge, Indent: true})
		}
		if li.PackagingCharge.IsPositive() {
			rows = append(rows, Row{Description: "Packaging", Amount: li.PackagingCharge, Indent: true})
		}
	}
	if li.DeviceRevenue.IsPositive() {
		rows = append(rows, Row{
			Description: fmt.Sprintf("Devices (%s × %s)", Units(li.Quantity), Money(li.DeviceSellingPrice)),
			Amount:      li.DeviceRevenue,
			Indent:      true,
		})
	}
	return rows
}

func orderRows(q pricing.QuoteResult) []Row {
	var rows []Row
	if q.SetupFee.IsPositive() {
		rows = append(rows, Row{Description: "Setup Fee", Amount: q.SetupFee})
	}
	if d := q.Designs; d.ExtraDesignCost.IsPositive() {
		each := d.ExtraDesignCost.Div(decimal.NewFromInt(int64(d.Chargeable)))
		rows = append(rows, Row{
			Description: fmt.Sprintf("Extra Designs (%d × %s)", d.Chargeable, Money(each)),
			Amount:      d.ExtraDesignCost,
		})
	}
	if q.TurnaroundFee.IsPositive() {
		pct := q.TurnaroundRate.Mul(decimal.NewFromInt(100))
		rows = append(rows, Row{
			Description: fmt.Sprintf("%s Turnaround Fee (%s%%)", turnaroundLabel(q.Turnaround), pct.String()),
			Amount:      q.TurnaroundFee,
		})
	}
	if q.SampleFee.IsPositive() {
		rows = append(rows, Row{Description: "Sample Run", Amount: q.SampleFee})
	}
	if len(rows) == 0 {
		return nil
	}
	return append([]Row{{Description: "Order-Level Charges", Header: true}}, rows...)
}

func serviceLabel(s pricing.ServiceType) string {
	switch s {
	case pricing.DevicesOnly:
		return "Devices Only"
	case pricing.PrintAndDevices:
		return "Print + Devices"
	}
	return "Print Only"
}

func turnaroundLabel(t pricing.Turnaround) string {
	switch t {
	case pricing.TurnaroundRush:
		return "Rush"
	case pricing.TurnaroundWeekend:
		return "Weekend"
	}
	return "Normal"
}

// Money formats d as dollars with thousands separators and two decimals.
func Money(d decimal.Decimal) string {
	sign := ""
	if d.IsNegative() {
		sign = "-"
		d = d.Neg()
	}
	fixed := d.StringFixed(2)
	whole, frac, _ := strings.Cut(fixed, ".")
	n, err := decimal.NewFromString(whole)
	if err != nil {
		return sign + "$" + fixed
	}
	return sign + "$" + humanize.Comma(n.IntPart()) + "." + frac
}

// Units formats a quantity with thousands separators.
func Units(n int) string {
	return humanize.Comma(int64(n))
}

// Render writes inv as a complete HTML document.
func Render(w io.Writer, inv Invoice) error {
	if err := invoiceTemplate.Execute(w, inv); err != nil {
		return fmt.Errorf("render invoice %s: %w", inv.Number, err)
	}
	return nil
}
