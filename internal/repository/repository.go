package repository

import (
	"database/sql"
	"errors"
	"fmt"
)

// ErrNotFound is returned when a requested row does not exist.
var ErrNotFound = errors.New("not found")

// ErrPrincipalExceeded is returned when a principal payment would drive a
// loan's outstanding amount below zero.
var ErrPrincipalExceeded = errors.New("payment exceeds outstanding principal")

// Repository provides database operations
type Repository struct {
	db *sql.DB
}

// NewRepository initializes a new repository
func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

// schema is applied idempotently at startup; there is no migrations tooling.
const schema = `
CREATE SCHEMA IF NOT EXISTS pawn;

CREATE TABLE IF NOT EXISTS pawn.loans (
	id BIGSERIAL PRIMARY KEY,
	created_at TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP,
	item_name TEXT NOT NULL,
	weight_grams DOUBLE PRECISION NOT NULL DEFAULT 0,
	customer_name TEXT NOT NULL DEFAULT '',
	customer_id TEXT NOT NULL DEFAULT '',
	phone TEXT NOT NULL,
	amount DOUBLE PRECISION NOT NULL CHECK (amount >= 0),
	interest_rate DOUBLE PRECISION NOT NULL,
	due_date DATE NOT NULL,
	status TEXT NOT NULL DEFAULT 'ACTIVE',
	redeemed_at TIMESTAMPTZ,
	photo_path TEXT NOT NULL DEFAULT '',
	id_front_path TEXT NOT NULL DEFAULT '',
	id_back_path TEXT NOT NULL DEFAULT '',
	signature_path TEXT NOT NULL DEFAULT ''
);

CREATE TABLE IF NOT EXISTS pawn.payments (
	id BIGSERIAL PRIMARY KEY,
	loan_id BIGINT NOT NULL REFERENCES pawn.loans(id) ON DELETE CASCADE,
	paid_at TIMESTAMPTZ NOT NULL,
	amount DOUBLE PRECISION NOT NULL,
	type TEXT NOT NULL,
	notes TEXT NOT NULL DEFAULT ''
);
CREATE INDEX IF NOT EXISTS payments_loan_paid_idx ON pawn.payments (loan_id, paid_at);

CREATE TABLE IF NOT EXISTS pawn.cash_movements (
	id BIGSERIAL PRIMARY KEY,
	when_at TIMESTAMPTZ NOT NULL,
	concept TEXT NOT NULL,
	amount DOUBLE PRECISION NOT NULL,
	ref TEXT NOT NULL DEFAULT ''
);
CREATE INDEX IF NOT EXISTS cash_movements_when_idx ON pawn.cash_movements (when_at);

CREATE TABLE IF NOT EXISTS pawn.clients (
	id BIGSERIAL PRIMARY KEY,
	name TEXT NOT NULL,
	document TEXT NOT NULL,
	phone TEXT NOT NULL DEFAULT '',
	address TEXT NOT NULL DEFAULT '',
	created_at TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS pawn.sales (
	id BIGSERIAL PRIMARY KEY,
	item_desc TEXT NOT NULL,
	price DOUBLE PRECISION NOT NULL,
	sold_at TIMESTAMPTZ,
	status TEXT NOT NULL DEFAULT 'FOR_SALE'
);

CREATE TABLE IF NOT EXISTS pawn.inventory_items (
	id BIGSERIAL PRIMARY KEY,
	loan_id BIGINT REFERENCES pawn.loans(id) ON DELETE SET NULL,
	item_desc TEXT NOT NULL,
	status TEXT NOT NULL DEFAULT 'FOR_SALE',
	created_at TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS pawn.users (
	id BIGSERIAL PRIMARY KEY,
	name TEXT NOT NULL DEFAULT '',
	username TEXT UNIQUE NOT NULL,
	pass_hash TEXT NOT NULL,
	role TEXT NOT NULL DEFAULT 'staff',
	created_at TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS pawn.settings (
	key TEXT PRIMARY KEY,
	value TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS pawn.password_resets (
	token TEXT PRIMARY KEY,
	user_id BIGINT NOT NULL REFERENCES pawn.users(id) ON DELETE CASCADE,
	expires_at TIMESTAMPTZ NOT NULL,
	created_at TIMESTAMPTZ NOT NULL
);
`

// InitSchema creates the pawn schema and tables when missing.
func (r *Repository) InitSchema() error {
	if _, err := r.db.Exec(schema); err != nil {
		return fmt.Errorf("failed to initialize schema: %w", err)
	}
	return nil
}

// withTx runs fn in a transaction, committing when fn returns nil and
// rolling back otherwise. Money-moving operations go through here.
func (r *Repository) withTx(fn func(tx *sql.Tx) error) error {
	tx, err := r.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	if err := fn(tx); err != nil {
		_ = tx.Rollback()
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}
