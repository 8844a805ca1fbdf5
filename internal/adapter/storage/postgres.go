package storage

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/lib/pq"

	"prxwallet/internal/domain/model"
	"prxwallet/internal/domain/port"
)

const defaultListLimit = 50

type PostgresAdapter struct {
	db *sql.DB
}

var _ port.JournalPort = (*PostgresAdapter)(nil)

func NewPostgresAdapter(connStr string) (*PostgresAdapter, error) {
	db, err := sql.Open("postgres", connStr)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &PostgresAdapter{db: db}, nil
}

func (a *PostgresAdapter) InitSchema(ctx context.Context) error {
	query := `
	CREATE TABLE IF NOT EXISTS submissions (
		id UUID PRIMARY KEY,
		route VARCHAR(64) NOT NULL,
		amount NUMERIC(36, 18) NOT NULL,
		currency VARCHAR(8) NOT NULL,
		equivalent NUMERIC(36, 18) NOT NULL,
		sender VARCHAR(128) NOT NULL,
		receiver VARCHAR(128),
		status VARCHAR(16) NOT NULL,
		tx_id VARCHAR(128),
		error TEXT,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	);
	CREATE INDEX IF NOT EXISTS idx_submissions_created_at ON submissions(created_at DESC);
	`
	_, err := a.db.ExecContext(ctx, query)
	return err
}

func (a *PostgresAdapter) SaveReceipt(ctx context.Context, r model.Receipt) error {
	_, err := a.db.ExecContext(ctx, `
		INSERT INTO submissions (id, route, amount, currency, equivalent, sender, receiver, status, tx_id, error, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, NULLIF($7, ''), $8, NULLIF($9, ''), NULLIF($10, ''), $11)
		ON CONFLICT (id) DO UPDATE SET status = EXCLUDED.status, tx_id = EXCLUDED.tx_id, error = EXCLUDED.error`,
		r.ID, string(r.Route), numeric(r.Amount), string(r.Currency), numeric(r.Equivalent),
		r.Sender, r.Receiver, string(r.Status), r.TxID, r.Error, r.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to save receipt %s: %w", r.ID, err)
	}
	return nil
}

func (a *PostgresAdapter) ListReceipts(ctx context.Context, limit int) ([]model.Receipt, error) {
	if limit <= 0 || limit > 1000 {
		limit = defaultListLimit
	}

	rows, err := a.db.QueryContext(ctx, `
		SELECT id::text, route, amount::text, currency, equivalent::text, sender,
		       COALESCE(receiver, ''), status, COALESCE(tx_id, ''), COALESCE(error, ''), created_at
		FROM submissions
		ORDER BY created_at DESC
		LIMIT $1`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list receipts: %w", err)
	}
	defer rows.Close()

	out := make([]model.Receipt, 0)
	for rows.Next() {
		var r model.Receipt
		var route, currency, status string
		if err := rows.Scan(&r.ID, &route, &r.Amount, &currency, &r.Equivalent, &r.Sender,
			&r.Receiver, &status, &r.TxID, &r.Error, &r.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan receipt: %w", err)
		}
		r.Route = model.Route(route)
		r.Currency = model.Currency(currency)
		r.Status = model.ReceiptStatus(status)
		out = append(out, r)
	}
	return out, rows.Err()
}

// numeric maps the zero-equivalent sentinel and empty strings to 0 so they
// fit a NUMERIC column.
func numeric(s string) string {
	if s == "" {
		return "0"
	}
	return s
}

func (a *PostgresAdapter) Ping(ctx context.Context) error {
	return a.db.PingContext(ctx)
}

func (a *PostgresAdapter) Close() error {
	return a.db.Close()
}
