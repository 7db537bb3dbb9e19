package ratestore

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	_ "github.com/lib/pq"
)

// schema is applied on startup. CREATE IF NOT EXISTS keeps it safe to run on
// every boot; the unique index carries the upsert key.
const schema = `
CREATE TABLE IF NOT EXISTS swap_rates (
	id            BIGSERIAL PRIMARY KEY,
	date          DATE NOT NULL,
	currency      TEXT NOT NULL,
	tenor         TEXT NOT NULL,
	tenor_months  INTEGER NOT NULL DEFAULT 0,
	floating_rate TEXT NOT NULL DEFAULT '6M',
	rate          DOUBLE PRECISION NOT NULL,
	source        TEXT NOT NULL DEFAULT '',
	created_at    TIMESTAMPTZ NOT NULL DEFAULT now(),
	updated_at    TIMESTAMPTZ NOT NULL DEFAULT now()
);
CREATE UNIQUE INDEX IF NOT EXISTS swap_rates_entry_key
	ON swap_rates (date, currency, tenor, floating_rate);
CREATE INDEX IF NOT EXISTS swap_rates_currency_idx ON swap_rates (currency);
CREATE INDEX IF NOT EXISTS swap_rates_date_idx ON swap_rates (date);
`

const upsertSQL = `
INSERT INTO swap_rates (date, currency, tenor, tenor_months, floating_rate, rate, source)
VALUES ($1, $2, $3, $4, $5, $6, $7)
ON CONFLICT (date, currency, tenor, floating_rate)
DO UPDATE SET rate = EXCLUDED.rate,
              tenor_months = EXCLUDED.tenor_months,
              source = EXCLUDED.source,
              updated_at = now()`

const selectColumns = `id, date, currency, tenor, tenor_months, floating_rate, rate, source, created_at, updated_at`

// PostgresStore implements Store on a Postgres database through lib/pq.
type PostgresStore struct {
	db *sql.DB
}

// NewPostgresStore opens the database, verifies the connection, and applies
// the schema.
func NewPostgresStore(ctx context.Context, dsn string) (*PostgresStore, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("NewPostgresStore: open: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("NewPostgresStore: ping: %w", err)
	}
	if _, err := db.ExecContext(ctx, schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("NewPostgresStore: apply schema: %w", err)
	}
	return &PostgresStore{db: db}, nil
}

// Save upserts one rate on its (date, currency, tenor, floating rate) key.
func (s *PostgresStore) Save(ctx context.Context, rate SwapRate) error {
	rate = withDefaults(rate)
	if err := validate(rate); err != nil {
		return fmt.Errorf("Save: %w", err)
	}
	_, err := s.db.ExecContext(ctx, upsertSQL,
		rate.Date, rate.Currency, rate.Tenor, rate.TenorMonths,
		rate.FloatingRate, rate.Rate, rate.Source)
	if err != nil {
		return fmt.Errorf("Save: %w", err)
	}
	return nil
}

// SaveBatch upserts the rates inside a single transaction and reports how
// many were written. Any failure rolls the whole batch back.
func (s *PostgresStore) SaveBatch(ctx context.Context, rates []SwapRate) (int, error) {
	if len(rates) == 0 {
		return 0, nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("SaveBatch: begin: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, upsertSQL)
	if err != nil {
		return 0, fmt.Errorf("SaveBatch: prepare: %w", err)
	}
	defer stmt.Close()

	for i, r := range rates {
		r = withDefaults(r)
		if err := validate(r); err != nil {
			return 0, fmt.Errorf("SaveBatch: record %d: %w", i, err)
		}
		if _, err := stmt.ExecContext(ctx,
			r.Date, r.Currency, r.Tenor, r.TenorMonths,
			r.FloatingRate, r.Rate, r.Source); err != nil {
			return 0, fmt.Errorf("SaveBatch: record %d: %w", i, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("SaveBatch: commit: %w", err)
	}
	return len(rates), nil
}

// whereClause assembles the filter into SQL conditions with positional
// arguments, starting from $1.
func whereClause(f Filter) (string, []interface{}) {
	conds := make([]string, 0, 5)
	args := make([]interface{}, 0, 5)
	add := func(cond string, arg interface{}) {
		args = append(args, arg)
		conds = append(conds, fmt.Sprintf(cond, len(args)))
	}

	if f.Currency != "" {
		add("currency = $%d", normalizeCode(f.Currency))
	}
	if f.Tenor != "" {
		add("tenor = $%d", normalizeCode(f.Tenor))
	}
	if f.FloatingRate != "" {
		add("floating_rate = $%d", f.FloatingRate)
	}
	if !f.From.IsZero() {
		add("date >= $%d", dateOnly(f.From))
	}
	if !f.To.IsZero() {
		add("date <= $%d", dateOnly(f.To))
	}

	if len(conds) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(conds, " AND "), args
}

func (s *PostgresStore) queryRates(ctx context.Context, query string, args ...interface{}) ([]SwapRate, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]SwapRate, 0, 32)
	for rows.Next() {
		var r SwapRate
		if err := rows.Scan(&r.ID, &r.Date, &r.Currency, &r.Tenor, &r.TenorMonths,
			&r.FloatingRate, &r.Rate, &r.Source, &r.CreatedAt, &r.UpdatedAt); err != nil {
			return nil, err
		}
		r.Date = dateOnly(r.Date)
		out = append(out, r)
	}
	return out, rows.Err()
}

// Query returns the rates matching the filter, newest date first and
// shortest tenor first within a date.
func (s *PostgresStore) Query(ctx context.Context, f Filter) ([]SwapRate, error) {
	where, args := whereClause(f)
	query := "SELECT " + selectColumns + " FROM swap_rates" + where +
		" ORDER BY date DESC, tenor_months ASC, tenor ASC"
	if f.Limit > 0 {
		query += fmt.Sprintf(" LIMIT %d", f.Limit)
	}

	rates, err := s.queryRates(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("Query: %w", err)
	}
	return rates, nil
}

// Latest returns every rate quoted on the most recent stored date, sorted by
// tenor. With a currency the latest date is taken within that currency.
func (s *PostgresStore) Latest(ctx context.Context, currency string) ([]SwapRate, error) {
	currency = normalizeCode(currency)

	var (
		query string
		args  []interface{}
	)
	if currency == "" {
		query = "SELECT " + selectColumns + " FROM swap_rates" +
			" WHERE date = (SELECT max(date) FROM swap_rates)" +
			" ORDER BY tenor_months ASC, tenor ASC"
	} else {
		query = "SELECT " + selectColumns + " FROM swap_rates" +
			" WHERE currency = $1 AND date = (SELECT max(date) FROM swap_rates WHERE currency = $1)" +
			" ORDER BY tenor_months ASC, tenor ASC"
		args = []interface{}{currency}
	}

	rates, err := s.queryRates(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("Latest: %w", err)
	}
	return rates, nil
}

// LatestDate returns the most recent date with at least one stored rate for
// the currency, or ErrNoData when nothing matches.
func (s *PostgresStore) LatestDate(ctx context.Context, currency string) (time.Time, error) {
	currency = normalizeCode(currency)

	var (
		latest sql.NullTime
		err    error
	)
	if currency == "" {
		err = s.db.QueryRowContext(ctx, "SELECT max(date) FROM swap_rates").Scan(&latest)
	} else {
		err = s.db.QueryRowContext(ctx, "SELECT max(date) FROM swap_rates WHERE currency = $1", currency).Scan(&latest)
	}
	if err != nil {
		return time.Time{}, fmt.Errorf("LatestDate: %w", err)
	}
	if !latest.Valid {
		return time.Time{}, fmt.Errorf("LatestDate: %q: %w", currency, ErrNoData)
	}
	return dateOnly(latest.Time), nil
}

// Currencies lists the distinct stored currency codes in alphabetical order.
func (s *PostgresStore) Currencies(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT DISTINCT currency FROM swap_rates ORDER BY currency")
	if err != nil {
		return nil, fmt.Errorf("Currencies: %w", err)
	}
	defer rows.Close()

	out := make([]string, 0, 8)
	for rows.Next() {
		var c string
		if err := rows.Scan(&c); err != nil {
			return nil, fmt.Errorf("Currencies: %w", err)
		}
		out = append(out, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("Currencies: %w", err)
	}
	return out, nil
}

// Tenors lists the distinct tenor labels stored for the currency, from the
// shortest to the longest. An empty currency spans the whole store.
func (s *PostgresStore) Tenors(ctx context.Context, currency string) ([]string, error) {
	currency = normalizeCode(currency)

	query := "SELECT DISTINCT tenor, tenor_months FROM swap_rates"
	var args []interface{}
	if currency != "" {
		query += " WHERE currency = $1"
		args = []interface{}{currency}
	}
	query += " ORDER BY tenor_months ASC, tenor ASC"

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("Tenors: %w", err)
	}
	defer rows.Close()

	out := make([]string, 0, 16)
	for rows.Next() {
		var (
			tenor  string
			months int
		)
		if err := rows.Scan(&tenor, &months); err != nil {
			return nil, fmt.Errorf("Tenors: %w", err)
		}
		out = append(out, tenor)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("Tenors: %w", err)
	}
	return out, nil
}

// Dates lists the distinct quote dates stored for the currency, newest
// first. An empty currency spans the whole store.
func (s *PostgresStore) Dates(ctx context.Context, currency string) ([]time.Time, error) {
	currency = normalizeCode(currency)

	query := "SELECT DISTINCT date FROM swap_rates"
	var args []interface{}
	if currency != "" {
		query += " WHERE currency = $1"
		args = []interface{}{currency}
	}
	query += " ORDER BY date DESC"

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("Dates: %w", err)
	}
	defer rows.Close()

	out := make([]time.Time, 0, 32)
	for rows.Next() {
		var d time.Time
		if err := rows.Scan(&d); err != nil {
			return nil, fmt.Errorf("Dates: %w", err)
		}
		out = append(out, dateOnly(d))
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("Dates: %w", err)
	}
	return out, nil
}

// DeleteByDate removes the rates for the currency inside the inclusive date
// range and reports how many rows went. Zero bounds widen the range and an
// empty currency spans every market.
func (s *PostgresStore) DeleteByDate(ctx context.Context, currency string, from, to time.Time) (int, error) {
	where, args := whereClause(Filter{Currency: currency, From: from, To: to})

	res, err := s.db.ExecContext(ctx, "DELETE FROM swap_rates"+where, args...)
	if err != nil {
		return 0, fmt.Errorf("DeleteByDate: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("DeleteByDate: %w", err)
	}
	return int(n), nil
}

// Count reports the number of stored rates.
func (s *PostgresStore) Count(ctx context.Context) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, "SELECT count(*) FROM swap_rates").Scan(&n); err != nil {
		return 0, fmt.Errorf("Count: %w", err)
	}
	return n, nil
}

// Close releases the underlying connection pool.
func (s *PostgresStore) Close() error { return s.db.Close() }
