package export

import (
	"bytes"
	"encoding/csv"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Simplici0/printquote/internal/pricing"
	"github.com/Simplici0/printquote/internal/quotes"
)

func TestWriteQuotes(t *testing.T) {
	q := quotes.Quote{
		ID:             "q-1",
		ClientName:     "Acme, Inc.",
		AccountManager: "Kyle",
		Status:         quotes.StatusWon,
		CreatedAt:      time.Date(2025, 2, 14, 23, 0, 0, 0, time.UTC),
		Result: pricing.Result{
			TotalQuantity: 3000,
			PrintQuantity: 2000,
			HasPrinting:   true,
			HasDevices:    true,
			LineItems:     make([]pricing.LineItemResult, 2),
			Quote:         pricing.QuoteResult{TotalQuote: decimal.RequireFromString("4015")},
			CostFloor:     pricing.CostFloorResult{Total: decimal.RequireFromString("2206.833")},
			Profit: pricing.ProfitResult{
				GrossProfit:  decimal.RequireFromString("1808.167"),
				ProfitMargin: decimal.RequireFromString("45.0353"),
			},
			Production: pricing.ProductionMetrics{Days: 2},
		},
	}

	var buf bytes.Buffer
	require.NoError(t, WriteQuotes(&buf, []quotes.Quote{q}))

	records, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, header, records[0])
	assert.Equal(t, []string{
		"2025-02-14", "Acme, Inc.", "Kyle", "3000", "2000", "2",
		"4015.00", "2206.83", "1808.17", "45.0", "won", "2", "Yes", "Yes",
	}, records[1])
}

func TestWriteQuotes_Empty(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteQuotes(&buf, nil))

	records, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	assert.Len(t, records, 1)
}

func TestFileName(t *testing.T) {
	assert.Equal(t, "quotes-export-2025-02-14.csv", FileName("2025-02-14"))
}
