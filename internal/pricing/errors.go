package pricing

import (
	"errors"
	"fmt"
)

// Kind classifies configuration errors so callers can translate them without parsing text.
type Kind string

const (
	KindEmptyOrder           Kind = "EmptyOrder"
	KindInvalidQuantity      Kind = "InvalidQuantity"
	KindInvalidCapacity      Kind = "InvalidCapacity"
	KindInvalidUnitCost      Kind = "InvalidUnitCost"
	KindMissingFallbackTier  Kind = "MissingFallbackTier"
	KindInvalidTiers         Kind = "InvalidTiers"
	KindInvalidPrinterCount  Kind = "InvalidPrinterCount"
	KindInvalidDesigns       Kind = "InvalidDesigns"
	KindInvalidOption        Kind = "InvalidOption"
	KindInvalidAmount        Kind = "InvalidAmount"
	KindNoDailyCapacity      Kind = "NoDailyCapacity"
	KindUnknownDevice        Kind = "UnknownDevice"
	KindInvalidRateTable     Kind = "InvalidRateTable"
	KindInvalidLegacyPayload Kind = "InvalidLegacyPayload"
)

// Error is returned for input the engine refuses to quote.
type Error struct {
	Kind  Kind
	Field string
	Err   error
}

func (e *Error) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("%s: %v", e.Kind, e.Err)
	}
	return fmt.Sprintf("%s: %s: %v", e.Kind, e.Field, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

func newError(kind Kind, field string, err error) *Error {
	return &Error{Kind: kind, Field: field, Err: err}
}

func newErrorf(kind Kind, field, format string, args ...any) *Error {
	return &Error{Kind: kind, Field: field, Err: fmt.Errorf(format, args...)}
}

// KindOf returns the Kind of err, or "" when err is not a pricing error.
func KindOf(err error) Kind {
	var pe *Error
	if errors.As(err, &pe) {
		return pe.Kind
	}
	return ""
}
