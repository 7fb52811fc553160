package storage

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/weekendtraveller/server/internal/refdata"
)

// Querier abstracts the subset of pgxpool.Pool used for reads.
// This allows injection of a mock in tests.
type Querier interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

// TxBeginner abstracts transaction start for the replace operations.
// *pgxpool.Pool satisfies it.
type TxBeginner interface {
	Begin(ctx context.Context) (pgx.Tx, error)
}

// Repository owns the two reference-data collections: currencies and
// airports. The refresh orchestrator is the only writer; everything else
// only reads.
type Repository struct {
	q  Querier
	tx TxBeginner
}

// NewRepository constructs a Repository backed by the given pool.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{q: pool, tx: pool}
}

// NewRepositoryWithQuerier constructs a Repository with custom interfaces (for tests).
func NewRepositoryWithQuerier(q Querier, tx TxBeginner) *Repository {
	return &Repository{q: q, tx: tx}
}

// ReplaceCurrencies atomically swaps the full currencies collection.
func (r *Repository) ReplaceCurrencies(ctx context.Context, codes []string) error {
	rows := make([][]any, 0, len(codes))
	for _, code := range codes {
		rows = append(rows, []any{code})
	}
	return r.replaceAll(ctx, "currencies", []string{"code"}, rows)
}

// ReplaceAirports atomically swaps the full airports collection.
func (r *Repository) ReplaceAirports(ctx context.Context, airports []refdata.Airport) error {
	rows := make([][]any, 0, len(airports))
	for _, a := range airports {
		rows = append(rows, []any{a.ID, a.Name})
	}
	return r.replaceAll(ctx, "airports", []string{"id", "name"}, rows)
}

// replaceAll deletes every row of table and bulk-inserts rows within one
// transaction. Under Read Committed, concurrent readers observe either the
// previous generation or the new one, never an empty or mixed state. DELETE
// is used instead of TRUNCATE so readers are not blocked by an ACCESS
// EXCLUSIVE lock for the duration of the insert.
func (r *Repository) replaceAll(ctx context.Context, table string, columns []string, rows [][]any) error {
	tx, err := r.tx.Begin(ctx)
	if err != nil {
		return fmt.Errorf("beginning replace of %s: %w", table, err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if _, err := tx.Exec(ctx, "DELETE FROM "+table); err != nil {
		return fmt.Errorf("clearing %s: %w", table, err)
	}

	if _, err := tx.CopyFrom(ctx, pgx.Identifier{table}, columns, pgx.CopyFromRows(rows)); err != nil {
		return fmt.Errorf("inserting into %s: %w", table, err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("committing replace of %s: %w", table, err)
	}

	return nil
}

// ListCurrencies returns every cached currency code, ordered.
func (r *Repository) ListCurrencies(ctx context.Context) ([]string, error) {
	const q = `SELECT code FROM currencies ORDER BY code`

	rows, err := r.q.Query(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("querying currencies: %w", err)
	}
	defer rows.Close()

	var codes []string
	for rows.Next() {
		var code string
		if err := rows.Scan(&code); err != nil {
			return nil, fmt.Errorf("scanning currency row: %w", err)
		}
		codes = append(codes, code)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating currency rows: %w", err)
	}

	return codes, nil
}

// SearchAirports returns a page of airport records whose label contains
// search, case-insensitively. An empty search matches everything. The filter
// is applied before pagination; ordering is by label, then ID, so paging is
// stable across requests against the same generation.
func (r *Repository) SearchAirports(ctx context.Context, search string, offset, limit int) ([]refdata.Airport, error) {
	const q = `
		SELECT id, name
		FROM airports
		WHERE name ILIKE '%' || $1 || '%'
		ORDER BY name, id
		LIMIT $2 OFFSET $3
	`

	rows, err := r.q.Query(ctx, q, escapeLike(search), limit, offset)
	if err != nil {
		return nil, fmt.Errorf("querying airports: %w", err)
	}
	defer rows.Close()

	var airports []refdata.Airport
	for rows.Next() {
		var a refdata.Airport
		if err := rows.Scan(&a.ID, &a.Name); err != nil {
			return nil, fmt.Errorf("scanning airport row: %w", err)
		}
		airports = append(airports, a)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating airport rows: %w", err)
	}

	return airports, nil
}

// escapeLike neutralizes LIKE metacharacters so user input matches literally.
func escapeLike(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	s = strings.ReplaceAll(s, `%`, `\%`)
	s = strings.ReplaceAll(s, `_`, `\_`)
	return s
}
