package main

import (
	"bytes"
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/Simplici0/printquote/internal/api/responses"
	"github.com/Simplici0/printquote/internal/api/validators"
	"github.com/Simplici0/printquote/internal/export"
	"github.com/Simplici0/printquote/internal/invoice"
	"github.com/Simplici0/printquote/internal/quotes"
)

func (s *server) handleQuotesList(w http.ResponseWriter, r *http.Request) {
	list, err := s.quotes.Search(r.Context(), r.URL.Query().Get("q"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	counts, err := s.quotes.StatusCounts(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if list == nil {
		list = []quotes.Quote{}
	}
	responses.WriteSuccess(w, quotesListResponse{Quotes: list, Counts: counts})
}

func (s *server) handleQuotesSave(w http.ResponseWriter, r *http.Request) {
	var req saveQuoteRequest
	if err := validators.DecodeJSONBody(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}

	q, err := s.quotes.Save(r.Context(), quotes.SaveInput{
		ID:             req.ID,
		ClientName:     req.ClientName,
		AccountManager: req.AccountManager,
		Order:          req.Order.toOrder(),
	})
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	status := http.StatusCreated
	if req.ID != "" {
		status = http.StatusOK
	}
	responses.WriteSuccessStatus(w, status, q)
}

func (s *server) handleQuotesImport(w http.ResponseWriter, r *http.Request) {
	raw, err := validators.ReadBody(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	q, err := s.quotes.ImportLegacy(r.Context(), raw)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	responses.WriteSuccessStatus(w, http.StatusCreated, q)
}

func (s *server) handleQuotesExport(w http.ResponseWriter, r *http.Request) {
	list, err := s.quotes.Search(r.Context(), r.URL.Query().Get("q"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	var buf bytes.Buffer
	if err := export.WriteQuotes(&buf, list); err != nil {
		s.writeError(w, r, err)
		return
	}
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="`+export.FileName(s.now().Format("2006-01-02"))+`"`)
	w.Write(buf.Bytes())
}

func (s *server) handleQuoteGet(w http.ResponseWriter, r *http.Request) {
	q, err := s.quotes.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	responses.WriteSuccess(w, q)
}

func (s *server) handleQuoteDelete(w http.ResponseWriter, r *http.Request) {
	if err := s.quotes.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		s.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *server) handleQuoteStatus(w http.ResponseWriter, r *http.Request) {
	var req statusRequest
	if err := validators.DecodeJSONBody(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}

	q, err := s.quotes.UpdateStatus(r.Context(), chi.URLParam(r, "id"), quotes.Status(req.Status))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	responses.WriteSuccess(w, q)
}

func (s *server) handleQuoteDuplicate(w http.ResponseWriter, r *http.Request) {
	q, err := s.quotes.Duplicate(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	responses.WriteSuccessStatus(w, http.StatusCreated, q)
}

func (s *server) handleQuoteReprice(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	res, err := s.quotes.Reprice(r.Context(), id)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	stored, err := s.quotes.Get(r.Context(), id)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	responses.WriteSuccess(w, repriceResponse{Result: res, MatchesSnapshot: sameJSON(res, stored.Result)})
}

func (s *server) handleQuoteCompare(w http.ResponseWriter, r *http.Request) {
	var req orderRequest
	if err := validators.DecodeJSONBody(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}

	cmp, err := s.quotes.Compare(r.Context(), chi.URLParam(r, "id"), req.toOrder())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	responses.WriteSuccess(w, cmp)
}

func (s *server) handleQuoteInvoice(w http.ResponseWriter, r *http.Request) {
	q, err := s.quotes.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	now := s.now()
	inv := invoice.NewInvoice(invoice.Number(now, q.ID), q.ClientName, q.AccountManager, q.Result)
	inv.Date = now

	var buf bytes.Buffer
	if err := invoice.Render(&buf, inv); err != nil {
		s.writeError(w, r, err)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Write(buf.Bytes())
}

func (s *server) handleCustomers(w http.ResponseWriter, r *http.Request) {
	customers, err := s.quotes.Customers(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	responses.WriteSuccess(w, customers)
}

func sameJSON(a, b any) bool {
	x, err := json.Marshal(a)
	if err != nil {
		return false
	}
	y, err := json.Marshal(b)
	if err != nil {
		return false
	}
	return bytes.Equal(x, y)
}
