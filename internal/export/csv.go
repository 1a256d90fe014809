// Package export writes saved quotes as CSV.
package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"github.com/Simplici0/printquote/internal/quotes"
)

var header = []string{
	"Date",
	"Client",
	"Account Manager",
	"Total Quantity",
	"Print Qty",
	"Line Items",
	"Total Quote",
	"Cost Floor",
	"Profit",
	"Margin %",
	"Status",
	"Production Days",
	"Has Printing",
	"Has Devices",
}

// FileName is the attachment name for an export taken on date (YYYY-MM-DD).
func FileName(date string) string {
	return fmt.Sprintf("quotes-export-%s.csv", date)
}

// WriteQuotes writes one row per quote after a header row.
func WriteQuotes(w io.Writer, qs []quotes.Quote) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(header); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}
	for _, q := range qs {
		if err := cw.Write(row(q)); err != nil {
			return fmt.Errorf("write csv row %s: %w", q.ID, err)
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("flush csv: %w", err)
	}
	return nil
}

func row(q quotes.Quote) []string {
	r := q.Result
	return []string{
		q.CreatedAt.UTC().Format("2006-01-02"),
		q.ClientName,
		q.AccountManager,
		strconv.Itoa(r.TotalQuantity),
		strconv.Itoa(r.PrintQuantity),
		strconv.Itoa(len(r.LineItems)),
		r.Quote.TotalQuote.StringFixed(2),
		r.CostFloor.Total.StringFixed(2),
		r.Profit.GrossProfit.StringFixed(2),
		r.Profit.ProfitMargin.StringFixed(1),
		string(q.Status),
		strconv.Itoa(r.Production.Days),
		yesNo(r.HasPrinting),
		yesNo(r.HasDevices),
	}
}

func yesNo(b bool) string {
	if b {
		return "Yes"
	}
	return "No"
}
