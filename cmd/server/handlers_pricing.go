package main

import (
	"net/http"

	"github.com/Simplici0/printquote/internal/api/responses"
	"github.com/Simplici0/printquote/internal/api/validators"
)

func (s *server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	responses.WriteError(r.Context(), s.log, w, toAppError(err))
}

func (s *server) handlePrice(w http.ResponseWriter, r *http.Request) {
	var req orderRequest
	if err := validators.DecodeJSONBody(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}

	res, err := s.quotes.Price(r.Context(), req.toOrder())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	responses.WriteSuccess(w, res)
}

// handlePriceLegacy accepts the saved-quote formats of earlier releases as-is.
func (s *server) handlePriceLegacy(w http.ResponseWriter, r *http.Request) {
	raw, err := validators.ReadBody(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	order, res, err := s.quotes.PriceLegacy(r.Context(), raw)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	responses.WriteSuccess(w, legacyPriceResponse{Order: order, Result: res})
}

func (s *server) handleRates(w http.ResponseWriter, r *http.Request) {
	responses.WriteSuccess(w, s.quotes.Engine().Rates())
}
