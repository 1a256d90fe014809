package quotes

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"
)

// SQLStore keeps quotes in the SQLite quotes table, one JSON column per snapshot part.
type SQLStore struct {
	db *sql.DB
}

// NewSQLStore returns a store over db. The quotes table must already be migrated.
func NewSQLStore(db *sql.DB) *SQLStore {
	return &SQLStore{db: db}
}

const insertQuote = `
	INSERT INTO quotes (
		id,
		client_name,
		account_manager,
		status,
		total_quote,
		order_json,
		rates_json,
		result_json,
		created_at,
		updated_at
	)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
`

// Create inserts q, failing with ErrAlreadyExists when its id is taken.
func (s *SQLStore) Create(ctx context.Context, q Quote) error {
	args, err := quoteArgs(q)
	if err != nil {
		return err
	}
	if _, err := s.db.ExecContext(ctx, insertQuote, args...); err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("insert quote %s: %w", q.ID, ErrAlreadyExists)
		}
		return fmt.Errorf("insert quote %s: %w", q.ID, err)
	}
	return nil
}

// Put inserts q or replaces the stored quote with the same id.
func (s *SQLStore) Put(ctx context.Context, q Quote) error {
	args, err := quoteArgs(q)
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx, insertQuote+`
		ON CONFLICT (id) DO UPDATE SET
			client_name = excluded.client_name,
			account_manager = excluded.account_manager,
			status = excluded.status,
			total_quote = excluded.total_quote,
			order_json = excluded.order_json,
			rates_json = excluded.rates_json,
			result_json = excluded.result_json,
			created_at = excluded.created_at,
			updated_at = excluded.updated_at
	`, args...)
	if err != nil {
		return fmt.Errorf("upsert quote %s: %w", q.ID, err)
	}
	return nil
}

func quoteArgs(q Quote) ([]any, error) {
	orderJSON, err := json.Marshal(q.Order)
	if err != nil {
		return nil, fmt.Errorf("encode quote order: %w", err)
	}
	ratesJSON, err := json.Marshal(q.Rates)
	if err != nil {
		return nil, fmt.Errorf("encode quote rates: %w", err)
	}
	resultJSON, err := json.Marshal(q.Result)
	if err != nil {
		return nil, fmt.Errorf("encode quote result: %w", err)
	}
	return []any{
		q.ID,
		q.ClientName,
		q.AccountManager,
		string(q.Status),
		q.Result.Quote.TotalQuote.String(),
		string(orderJSON),
		string(ratesJSON),
		string(resultJSON),
		formatTime(q.CreatedAt),
		formatTime(q.UpdatedAt),
	}, nil
}

func isUniqueViolation(err error) bool {
	return strings.Contains(err.Error(), "UNIQUE constraint failed") ||
		strings.Contains(err.Error(), "constraint failed: UNIQUE")
}

const selectQuote = `
	SELECT id, client_name, account_manager, status, order_json, rates_json, result_json, created_at, updated_at
	FROM quotes
`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanQuote(row rowScanner) (Quote, error) {
	var (
		q                                Quote
		status                           string
		orderJSON, ratesJSON, resultJSON string
		createdAt, updatedAt             string
	)
	if err := row.Scan(&q.ID, &q.ClientName, &q.AccountManager, &status, &orderJSON, &ratesJSON, &resultJSON, &createdAt, &updatedAt); err != nil {
		return Quote{}, err
	}
	q.Status = Status(status)
	if err := json.Unmarshal([]byte(orderJSON), &q.Order); err != nil {
		return Quote{}, fmt.Errorf("decode order of quote %s: %w", q.ID, err)
	}
	if err := json.Unmarshal([]byte(ratesJSON), &q.Rates); err != nil {
		return Quote{}, fmt.Errorf("decode rates of quote %s: %w", q.ID, err)
	}
	if err := json.Unmarshal([]byte(resultJSON), &q.Result); err != nil {
		return Quote{}, fmt.Errorf("decode result of quote %s: %w", q.ID, err)
	}
	var err error
	if q.CreatedAt, err = parseTime(createdAt); err != nil {
		return Quote{}, fmt.Errorf("parse created_at of quote %s: %w", q.ID, err)
	}
	if q.UpdatedAt, err = parseTime(updatedAt); err != nil {
		return Quote{}, fmt.Errorf("parse updated_at of quote %s: %w", q.ID, err)
	}
	return q, nil
}

// Get returns the quote with id or ErrNotFound.
func (s *SQLStore) Get(ctx context.Context, id string) (Quote, error) {
	q, err := scanQuote(s.db.QueryRowContext(ctx, selectQuote+` WHERE id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return Quote{}, ErrNotFound
	}
	if err != nil {
		return Quote{}, fmt.Errorf("get quote %s: %w", id, err)
	}
	return q, nil
}

// List returns every quote, newest first.
func (s *SQLStore) List(ctx context.Context) ([]Quote, error) {
	rows, err := s.db.QueryContext(ctx, selectQuote+` ORDER BY created_at DESC, id`)
	if err != nil {
		return nil, fmt.Errorf("query quotes: %w", err)
	}
	defer rows.Close()

	var out []Quote
	for rows.Next() {
		q, err := scanQuote(rows)
		if err != nil {
			return nil, fmt.Errorf("scan quote: %w", err)
		}
		out = append(out, q)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate quotes: %w", err)
	}
	return out, nil
}

// Delete removes the quote with id or reports ErrNotFound.
func (s *SQLStore) Delete(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM quotes WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete quote %s: %w", id, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

// Times are stored as fixed-width UTC strings so lexical order matches time order.
const timeLayout = "2006-01-02T15:04:05.000000000Z"

func formatTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

func parseTime(s string) (time.Time, error) {
	return time.Parse(timeLayout, s)
}
