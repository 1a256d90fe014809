package main

import (
	"database/sql"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/Simplici0/printquote/internal/api/middleware"
	"github.com/Simplici0/printquote/internal/api/responses"
	"github.com/Simplici0/printquote/internal/catalog"
	"github.com/Simplici0/printquote/internal/logger"
	"github.com/Simplici0/printquote/internal/quotes"
)

type server struct {
	log      *logger.Logger
	db       *sql.DB
	catalog  *catalog.Repository
	quotes   *quotes.Service
	gatherer prometheus.Gatherer
	now      func() time.Time
}

func (s *server) routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID(s.log))
	r.Use(middleware.Logging(s.log))
	r.Use(middleware.Recoverer(s.log))

	r.Get("/healthz", s.handleHealthz)
	r.Handle("/metrics", promhttp.HandlerFor(s.gatherer, promhttp.HandlerOpts{}))

	r.Route("/api", func(r chi.Router) {
		r.Post("/price", s.handlePrice)
		r.Post("/price/legacy", s.handlePriceLegacy)
		r.Get("/rates", s.handleRates)

		r.Get("/devices", s.handleDevicesList)
		r.Post("/devices", s.handleDevicesCreate)
		r.Put("/devices/{id}", s.handleDevicesUpdate)
		r.Delete("/devices/{id}", s.handleDevicesDelete)

		r.Get("/managers", s.handleManagersList)
		r.Post("/managers", s.handleManagersCreate)
		r.Delete("/managers/{name}", s.handleManagersDelete)

		r.Get("/quotes", s.handleQuotesList)
		r.Post("/quotes", s.handleQuotesSave)
		r.Post("/quotes/import", s.handleQuotesImport)
		r.Get("/quotes/export.csv", s.handleQuotesExport)
		r.Get("/quotes/{id}", s.handleQuoteGet)
		r.Delete("/quotes/{id}", s.handleQuoteDelete)
		r.Patch("/quotes/{id}/status", s.handleQuoteStatus)
		r.Post("/quotes/{id}/duplicate", s.handleQuoteDuplicate)
		r.Post("/quotes/{id}/reprice", s.handleQuoteReprice)
		r.Post("/quotes/{id}/compare", s.handleQuoteCompare)
		r.Get("/quotes/{id}/invoice", s.handleQuoteInvoice)

		r.Get("/customers", s.handleCustomers)
	})

	return r
}

func (s *server) handleHealthz(w http.ResponseWriter, r *http.Request) {
	if err := s.db.PingContext(r.Context()); err != nil {
		responses.WriteError(r.Context(), s.log, w, err)
		return
	}
	responses.WriteSuccess(w, map[string]string{"status": "ok"})
}
