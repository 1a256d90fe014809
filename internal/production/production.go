// Package production estimates batches, machine time and production days for print work.
package production

import (
	"errors"

	"github.com/shopspring/decimal"

	"github.com/Simplici0/printquote/internal/rates"
)

// Estimation errors. ErrNoDailyCapacity means the rate table cannot schedule any work.
var (
	ErrInvalidCapacity     = errors.New("device capacity must be positive")
	ErrInvalidQuantity     = errors.New("quantity must not be negative")
	ErrInvalidPrinterCount = errors.New("printer count must be positive")
	ErrNoDailyCapacity     = errors.New("batch time exceeds a workday: no batches fit in a production day")
)

var sixty = decimal.NewFromInt(60)

// Printer-count thresholds, in production hours.
var (
	singlePrinterBelow = decimal.NewFromInt(2)
	twoPrintersBelow   = decimal.NewFromInt(12)
)

// LineEstimate is the machine time needed for one line item.
type LineEstimate struct {
	Batches         int             `json:"batches"`
	MinutesPerBatch int             `json:"minutes_per_batch"`
	TotalMinutes    int             `json:"total_minutes"`
	Hours           decimal.Decimal `json:"hours"`
}

// Schedule spreads a job's batches over production days.
type Schedule struct {
	Days                    int `json:"days"`
	BatchesPerPrinterPerDay int `json:"batches_per_printer_per_day"`
	BatchesPerDayTotal      int `json:"batches_per_day_total"`
}

// Estimator applies a rate table's production constants.
type Estimator struct {
	rates rates.Production
}

// NewEstimator returns an Estimator for the given constants.
func NewEstimator(p rates.Production) Estimator {
	return Estimator{rates: p}
}

// MinutesPerBatch is the batch time for a finish.
func (e Estimator) MinutesPerBatch(hasGloss bool) int {
	if hasGloss {
		return e.rates.MinutesPerBatchWithGloss
	}
	return e.rates.MinutesPerBatch
}

// EstimateLineItem returns batches and machine time for quantity units of a device that
// holds capacity units per batch. Double-sided work runs every batch twice.
func (e Estimator) EstimateLineItem(quantity, capacity int, hasGloss, doubleSided bool) (LineEstimate, error) {
	if capacity <= 0 {
		return LineEstimate{}, ErrInvalidCapacity
	}
	if quantity < 0 {
		return LineEstimate{}, ErrInvalidQuantity
	}

	batches := (quantity + capacity - 1) / capacity
	minutes := e.MinutesPerBatch(hasGloss)
	passes := 1
	if doubleSided {
		passes = 2
	}
	total := batches * minutes * passes

	return LineEstimate{
		Batches:         batches,
		MinutesPerBatch: minutes,
		TotalMinutes:    total,
		Hours:           decimal.NewFromInt(int64(total)).Div(sixty),
	}, nil
}

// OptimizePrinterCount caps how many printers a job is spread over. Short jobs gain
// nothing from parallel setup, mid-size jobs use at most two printers.
func OptimizePrinterCount(totalHours decimal.Decimal, requested int) int {
	if totalHours.LessThan(singlePrinterBelow) {
		return 1
	}
	if totalHours.LessThan(twoPrintersBelow) {
		return min(2, requested)
	}
	return requested
}

// EstimateDays returns how many workdays totalBatches need on activePrinters printers.
func (e Estimator) EstimateDays(totalBatches int, avgMinutesPerBatch decimal.Decimal, activePrinters int) (Schedule, error) {
	if activePrinters <= 0 {
		return Schedule{}, ErrInvalidPrinterCount
	}
	if !avgMinutesPerBatch.IsPositive() {
		return Schedule{}, ErrNoDailyCapacity
	}

	workdayMinutes := decimal.NewFromInt(int64(e.rates.WorkdayHours * 60))
	perPrinter := int(workdayMinutes.Div(avgMinutesPerBatch).Floor().IntPart())
	perDay := perPrinter * activePrinters
	if perDay == 0 {
		return Schedule{}, ErrNoDailyCapacity
	}

	return Schedule{
		Days:                    (totalBatches + perDay - 1) / perDay,
		BatchesPerPrinterPerDay: perPrinter,
		BatchesPerDayTotal:      perDay,
	}, nil
}

// EffectiveHours is the wall-clock labor exposure once work is split across printers.
func EffectiveHours(totalHours decimal.Decimal, activePrinters int) decimal.Decimal {
	if activePrinters <= 0 {
		return totalHours
	}
	return totalHours.Div(decimal.NewFromInt(int64(activePrinters)))
}

// AverageMinutesPerBatch is the batch-weighted mean batch time across estimates. With no
// batches it falls back to the no-gloss batch time.
func (e Estimator) AverageMinutesPerBatch(estimates []LineEstimate) decimal.Decimal {
	var batches, weighted int
	for _, est := range estimates {
		batches += est.Batches
		weighted += est.Batches * est.MinutesPerBatch
	}
	if batches == 0 {
		return decimal.NewFromInt(int64(e.rates.MinutesPerBatch))
	}
	return decimal.NewFromInt(int64(weighted)).Div(decimal.NewFromInt(int64(batches)))
}
