package main

import (
	"errors"

	"github.com/Simplici0/printquote/internal/apperr"
	"github.com/Simplici0/printquote/internal/catalog"
	"github.com/Simplici0/printquote/internal/pricing"
	"github.com/Simplici0/printquote/internal/quotes"
)

// toAppError gives domain errors their public code. Errors already carrying a code pass
// through unchanged.
func toAppError(err error) error {
	if err == nil || apperr.As(err) != nil {
		return err
	}

	var pe *pricing.Error
	if errors.As(err, &pe) {
		details := map[string]any{"kind": string(pe.Kind)}
		if pe.Err != nil {
			details["error"] = pe.Err.Error()
		}
		if pe.Field != "" {
			details["field"] = pe.Field
		}
		return apperr.Wrap(apperr.CodePricing, err, "order cannot be priced").WithDetails(details)
	}

	switch {
	case errors.Is(err, quotes.ErrNotFound):
		return apperr.Wrap(apperr.CodeNotFound, err, "quote not found")
	case errors.Is(err, catalog.ErrNotFound):
		return apperr.Wrap(apperr.CodeNotFound, err, "catalog entry not found")
	case errors.Is(err, quotes.ErrClientNameRequired),
		errors.Is(err, quotes.ErrInvalidStatus),
		errors.Is(err, catalog.ErrInvalidDevice),
		errors.Is(err, catalog.ErrInvalidManager):
		return apperr.Wrap(apperr.CodeValidation, err, err.Error())
	case errors.Is(err, quotes.ErrAlreadyExists),
		errors.Is(err, catalog.ErrLastDevice),
		errors.Is(err, catalog.ErrDuplicateDevice),
		errors.Is(err, catalog.ErrDuplicateManager):
		return apperr.Wrap(apperr.CodeConflict, err, err.Error())
	}
	return err
}
