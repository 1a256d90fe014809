package quotes

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/Simplici0/printquote/internal/logger"
	"github.com/Simplici0/printquote/internal/metrics"
	"github.com/Simplici0/printquote/internal/pricing"
)

// Catalog is the device lookup the service prices against.
type Catalog interface {
	DeviceSet(ctx context.Context) (pricing.DeviceSet, error)
	ListDevices(ctx context.Context) ([]pricing.Device, error)
}

// Service prices orders and manages saved quotes.
type Service struct {
	engine  *pricing.Engine
	store   Store
	catalog Catalog
	metrics *metrics.QuoteMetrics
	log     *logger.Logger

	now   func() time.Time
	newID func() string
}

// NewService wires a service. Nil metrics and logger fall back to no-op versions.
func NewService(engine *pricing.Engine, store Store, catalog Catalog, m *metrics.QuoteMetrics, log *logger.Logger) *Service {
	if m == nil {
		m = metrics.NewQuoteMetrics(nil)
	}
	if log == nil {
		log = logger.Nop()
	}
	return &Service{
		engine:  engine,
		store:   store,
		catalog: catalog,
		metrics: m,
		log:     log,
		now:     func() time.Time { return time.Now().UTC() },
		newID:   func() string { return uuid.NewString() },
	}
}

// Engine returns the engine bound to the current rate table.
func (s *Service) Engine() *pricing.Engine {
	return s.engine
}

// Price resolves the order's devices from the catalog and prices it.
func (s *Service) Price(ctx context.Context, order pricing.Order) (pricing.Result, error) {
	_, res, err := s.price(ctx, s.engine, order)
	return res, err
}

func (s *Service) price(ctx context.Context, engine *pricing.Engine, order pricing.Order) (pricing.Order, pricing.Result, error) {
	devices, err := s.catalog.DeviceSet(ctx)
	if err != nil {
		return pricing.Order{}, pricing.Result{}, fmt.Errorf("load device catalog: %w", err)
	}
	resolved, err := pricing.ResolveDevices(order, devices)
	if err != nil {
		s.metrics.ObservePriced(string(pricing.KindUnknownDevice), 0, 0)
		return pricing.Order{}, pricing.Result{}, err
	}
	res, err := s.evaluate(engine, resolved)
	if err != nil {
		return pricing.Order{}, pricing.Result{}, err
	}
	return resolved.Normalized(), res, nil
}

// evaluate prices an order whose devices are already resolved and records the outcome.
func (s *Service) evaluate(engine *pricing.Engine, order pricing.Order) (pricing.Result, error) {
	start := time.Now()
	res, err := engine.PriceOrder(order)
	elapsed := time.Since(start)
	if err != nil {
		outcome := string(pricing.KindOf(err))
		if outcome == "" {
			outcome = "error"
		}
		s.metrics.ObservePriced(outcome, elapsed, 0)
		return pricing.Result{}, err
	}
	total, _ := res.Quote.TotalQuote.Float64()
	s.metrics.ObservePriced("ok", elapsed, total)
	return res, nil
}

// SaveInput describes a quote to store. An empty ID creates a new quote.
type SaveInput struct {
	ID             string
	ClientName     string
	AccountManager string
	Order          pricing.Order
}

// Save prices in.Order with the current rates and stores the snapshot. Updating an
// existing quote keeps its creation time and status.
func (s *Service) Save(ctx context.Context, in SaveInput) (Quote, error) {
	client := strings.TrimSpace(in.ClientName)
	if client == "" {
		return Quote{}, ErrClientNameRequired
	}
	order, res, err := s.price(ctx, s.engine, in.Order)
	if err != nil {
		return Quote{}, err
	}

	now := s.now()
	q := Quote{
		ID:             in.ID,
		ClientName:     client,
		AccountManager: strings.TrimSpace(in.AccountManager),
		Status:         StatusPending,
		Order:          order,
		Rates:          s.engine.Rates(),
		Result:         res,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if q.ID == "" {
		q.ID = s.newID()
		return s.create(ctx, q, "create")
	}
	existing, err := s.store.Get(ctx, q.ID)
	if err != nil {
		return Quote{}, err
	}
	q.CreatedAt = existing.CreatedAt
	q.Status = existing.Status
	return s.put(ctx, q, "update")
}

// create stores a new quote and never replaces an existing one.
func (s *Service) create(ctx context.Context, q Quote, operation string) (Quote, error) {
	if err := s.store.Create(ctx, q); err != nil {
		return Quote{}, err
	}
	s.saved(ctx, q, operation)
	return q, nil
}

func (s *Service) put(ctx context.Context, q Quote, operation string) (Quote, error) {
	if err := s.store.Put(ctx, q); err != nil {
		return Quote{}, err
	}
	s.saved(ctx, q, operation)
	return q, nil
}

func (s *Service) saved(ctx context.Context, q Quote, operation string) {
	s.metrics.IncSaved(operation)
	ctx = s.log.WithFields(s.log.WithQuoteID(ctx, q.ID), map[string]any{
		"operation": operation,
		"client":    q.ClientName,
	})
	s.log.Info(ctx, "quote.saved")
}

// Get returns the stored snapshot without repricing it.
func (s *Service) Get(ctx context.Context, id string) (Quote, error) {
	return s.store.Get(ctx, id)
}

// Delete removes a saved quote.
func (s *Service) Delete(ctx context.Context, id string) error {
	if err := s.store.Delete(ctx, id); err != nil {
		return err
	}
	s.metrics.IncSaved("delete")
	s.log.Info(s.log.WithQuoteID(ctx, id), "quote.deleted")
	return nil
}

// UpdateStatus moves a quote to status without touching its pricing snapshot.
func (s *Service) UpdateStatus(ctx context.Context, id string, status Status) (Quote, error) {
	if _, err := ParseStatus(string(status)); err != nil {
		return Quote{}, err
	}
	q, err := s.store.Get(ctx, id)
	if err != nil {
		return Quote{}, err
	}
	q.Status = status
	q.UpdatedAt = s.now()
	return s.put(ctx, q, "status")
}

// Duplicate copies a saved order into a new pending quote priced with the current rates.
// The copy keeps the devices stored with the source quote, so it survives catalog deletions.
func (s *Service) Duplicate(ctx context.Context, id string) (Quote, error) {
	src, err := s.store.Get(ctx, id)
	if err != nil {
		return Quote{}, err
	}
	res, err := s.evaluate(s.engine, src.Order)
	if err != nil {
		return Quote{}, err
	}
	now := s.now()
	return s.create(ctx, Quote{
		ID:             s.newID(),
		ClientName:     src.ClientName + " (Copy)",
		AccountManager: src.AccountManager,
		Status:         StatusPending,
		Order:          src.Order,
		Rates:          s.engine.Rates(),
		Result:         res,
		CreatedAt:      now,
		UpdatedAt:      now,
	}, "duplicate")
}

// Search matches query against client, manager and status, ignoring case. An empty
// query returns every quote, newest first.
func (s *Service) Search(ctx context.Context, query string) ([]Quote, error) {
	all, err := s.store.List(ctx)
	if err != nil {
		return nil, err
	}
	needle := strings.ToLower(strings.TrimSpace(query))
	if needle == "" {
		return all, nil
	}
	out := make([]Quote, 0, len(all))
	for _, q := range all {
		if strings.Contains(strings.ToLower(q.ClientName), needle) ||
			strings.Contains(strings.ToLower(q.AccountManager), needle) ||
			strings.Contains(string(q.Status), needle) {
			out = append(out, q)
		}
	}
	return out, nil
}

// StatusCounts tallies saved quotes by status.
type StatusCounts struct {
	Total   int `json:"total"`
	Pending int `json:"pending"`
	Won     int `json:"won"`
	Lost    int `json:"lost"`
}

// StatusCounts counts every saved quote by status.
func (s *Service) StatusCounts(ctx context.Context) (StatusCounts, error) {
	all, err := s.store.List(ctx)
	if err != nil {
		return StatusCounts{}, err
	}
	var c StatusCounts
	for _, q := range all {
		c.Total++
		switch q.Status {
		case StatusPending:
			c.Pending++
		case StatusWon:
			c.Won++
		case StatusLost:
			c.Lost++
		}
	}
	return c, nil
}

// Customer groups every saved quote for one client name.
type Customer struct {
	Name        string          `json:"name"`
	QuoteCount  int             `json:"quote_count"`
	TotalValue  decimal.Decimal `json:"total_value"`
	LastQuoteAt time.Time       `json:"last_quote_at"`
	Quotes      []Quote         `json:"quotes"`
}

// Customers groups quotes by client, highest total value first.
func (s *Service) Customers(ctx context.Context) ([]Customer, error) {
	all, err := s.store.List(ctx)
	if err != nil {
		return nil, err
	}
	byName := make(map[string]*Customer)
	var order []string
	for _, q := range all {
		c, ok := byName[q.ClientName]
		if !ok {
			c = &Customer{Name: q.ClientName, TotalValue: decimal.Zero}
			byName[q.ClientName] = c
			order = append(order, q.ClientName)
		}
		c.QuoteCount++
		c.TotalValue = c.TotalValue.Add(q.Result.Quote.TotalQuote)
		c.Quotes = append(c.Quotes, q)
		if q.CreatedAt.After(c.LastQuoteAt) {
			c.LastQuoteAt = q.CreatedAt
		}
	}

	out := make([]Customer, 0, len(order))
	for _, name := range order {
		out = append(out, *byName[name])
	}
	sort.SliceStable(out, func(i, j int) bool {
		if !out[i].TotalValue.Equal(out[j].TotalValue) {
			return out[i].TotalValue.GreaterThan(out[j].TotalValue)
		}
		return out[i].Name < out[j].Name
	})
	return out, nil
}

// Summary is the side-by-side view of one priced order.
type Summary struct {
	ClientName     string          `json:"client_name,omitempty"`
	TotalQuantity  int             `json:"total_quantity"`
	LineItems      int             `json:"line_items"`
	Devices        []string        `json:"devices"`
	Turnaround     string          `json:"turnaround"`
	ActivePrinters int             `json:"active_printers"`
	ProductionDays int             `json:"production_days"`
	TotalQuote     decimal.Decimal `json:"total_quote"`
	CostFloor      decimal.Decimal `json:"cost_floor"`
	GrossProfit    decimal.Decimal `json:"gross_profit"`
	ProfitMargin   decimal.Decimal `json:"profit_margin"`
}

// Comparison is the current order measured against a saved quote. Deltas are current
// minus saved.
type Comparison struct {
	Current     Summary         `json:"current"`
	Saved       Summary         `json:"saved"`
	QuoteDelta  decimal.Decimal `json:"quote_delta"`
	MarginDelta decimal.Decimal `json:"margin_delta"`
}

func summarize(client string, o pricing.Order, r pricing.Result) Summary {
	devices := make([]string, 0, len(o.LineItems))
	for _, li := range o.LineItems {
		devices = append(devices, li.Device.Name)
	}
	return Summary{
		ClientName:     client,
		TotalQuantity:  r.TotalQuantity,
		LineItems:      len(o.LineItems),
		Devices:        devices,
		Turnaround:     string(o.Turnaround),
		ActivePrinters: r.Production.ActivePrinters,
		ProductionDays: r.Production.Days,
		TotalQuote:     r.Quote.TotalQuote,
		CostFloor:      r.CostFloor.Total,
		GrossProfit:    r.Profit.GrossProfit,
		ProfitMargin:   r.Profit.ProfitMargin,
	}
}

// Compare prices order with the current rates and measures it against the saved quote id.
func (s *Service) Compare(ctx context.Context, id string, order pricing.Order) (Comparison, error) {
	saved, err := s.store.Get(ctx, id)
	if err != nil {
		return Comparison{}, err
	}
	resolved, res, err := s.price(ctx, s.engine, order)
	if err != nil {
		return Comparison{}, err
	}
	cur := summarize("", resolved, res)
	old := summarize(saved.ClientName, saved.Order, saved.Result)
	return Comparison{
		Current:     cur,
		Saved:       old,
		QuoteDelta:  cur.TotalQuote.Sub(old.TotalQuote),
		MarginDelta: cur.ProfitMargin.Sub(old.ProfitMargin),
	}, nil
}

// Reprice evaluates a saved order again against the rate table stored with it. The
// result matches the stored one unless the engine itself changed.
func (s *Service) Reprice(ctx context.Context, id string) (pricing.Result, error) {
	q, err := s.store.Get(ctx, id)
	if err != nil {
		return pricing.Result{}, err
	}
	engine, err := pricing.New(q.Rates)
	if err != nil {
		return pricing.Result{}, fmt.Errorf("load rates of quote %s: %w", id, err)
	}
	return s.evaluate(engine, q.Order)
}

type legacyHeader struct {
	ClientName     string `json:"clientName"`
	AccountManager string `json:"accountManager"`
	Status         string `json:"status"`
}

// ImportLegacy upgrades a quote saved in an earlier format and stores it as a new quote.
func (s *Service) ImportLegacy(ctx context.Context, raw []byte) (Quote, error) {
	var h legacyHeader
	if err := json.Unmarshal(raw, &h); err != nil {
		return Quote{}, &pricing.Error{Kind: pricing.KindInvalidLegacyPayload, Err: fmt.Errorf("decode legacy quote: %w", err)}
	}
	client := strings.TrimSpace(h.ClientName)
	if client == "" {
		return Quote{}, ErrClientNameRequired
	}
	status := StatusPending
	if h.Status != "" {
		st, err := ParseStatus(h.Status)
		if err != nil {
			return Quote{}, err
		}
		status = st
	}

	order, res, err := s.PriceLegacy(ctx, raw)
	if err != nil {
		return Quote{}, err
	}
	now := s.now()
	return s.create(ctx, Quote{
		ID:             s.newID(),
		ClientName:     client,
		AccountManager: strings.TrimSpace(h.AccountManager),
		Status:         status,
		Order:          order,
		Rates:          s.engine.Rates(),
		Result:         res,
		CreatedAt:      now,
		UpdatedAt:      now,
	}, "import")
}

// PriceLegacy upgrades a legacy payload against the catalog's stored device order and
// prices it.
func (s *Service) PriceLegacy(ctx context.Context, raw []byte) (pricing.Order, pricing.Result, error) {
	devices, err := s.catalog.ListDevices(ctx)
	if err != nil {
		return pricing.Order{}, pricing.Result{}, fmt.Errorf("load device catalog: %w", err)
	}
	order, err := pricing.NormalizeLegacyOrder(raw, devices)
	if err != nil {
		var pe *pricing.Error
		if errors.As(err, &pe) {
			s.metrics.ObservePriced(string(pe.Kind), 0, 0)
		}
		return pricing.Order{}, pricing.Result{}, err
	}
	res, err := s.evaluate(s.engine, order)
	if err != nil {
		return pricing.Order{}, pricing.Result{}, err
	}
	return order, res, nil
}
