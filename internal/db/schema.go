package db

import (
	"database/sql"
	"fmt"
)

// schema is the full database schema. Currency amounts are stored as
// decimal strings.
const schema = `
CREATE TABLE IF NOT EXISTS cards (
    id              INTEGER PRIMARY KEY,
    category        TEXT NOT NULL CHECK (category IN ('sports', 'mtg', 'pokemon')),
    name            TEXT NOT NULL DEFAULT '',
    set_name        TEXT NOT NULL DEFAULT '',
    card_number     TEXT NOT NULL DEFAULT '',
    player_name     TEXT NOT NULL DEFAULT '',
    year            TEXT NOT NULL DEFAULT '',
    condition       TEXT NOT NULL DEFAULT '',
    graded          INTEGER NOT NULL DEFAULT 0,
    grading_company TEXT NOT NULL DEFAULT '',
    grade           TEXT NOT NULL DEFAULT '',
    finish          TEXT NOT NULL DEFAULT '',
    quantity        INTEGER NOT NULL DEFAULT 1 CHECK (quantity >= 1),
    starting_bid    TEXT NOT NULL DEFAULT '0.50',
    notes           TEXT NOT NULL DEFAULT '',
    private_notes   TEXT NOT NULL DEFAULT '',
    image_front     TEXT,
    image_back      TEXT,
    created_at      DATETIME NOT NULL
);

CREATE TABLE IF NOT EXISTS listings (
    id                 INTEGER PRIMARY KEY,
    card_id            INTEGER NOT NULL UNIQUE REFERENCES cards(id),
    ebay_listing_id    TEXT NOT NULL DEFAULT '',
    status             TEXT NOT NULL DEFAULT 'draft' CHECK (status IN (
                           'draft', 'scheduled', 'listed', 'ended_unsold',
                           'ended_sold', 'paid', 'shipped', 'complete')),
    scheduled_end_time DATETIME NOT NULL,
    actual_start_time  DATETIME,
    actual_end_time    DATETIME,
    current_bid        TEXT,
    winning_bid        TEXT,
    ebay_fees          TEXT,
    created_at         DATETIME NOT NULL,
    updated_at         DATETIME NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_listings_status ON listings(status);

CREATE TABLE IF NOT EXISTS orders (
    id               INTEGER PRIMARY KEY,
    listing_id       INTEGER NOT NULL UNIQUE REFERENCES listings(id),
    ebay_order_id    TEXT NOT NULL DEFAULT '',
    buyer_username   TEXT NOT NULL DEFAULT '',
    buyer_name       TEXT NOT NULL DEFAULT '',
    shipping_address TEXT NOT NULL DEFAULT '',
    sale_price       TEXT,
    shipping_cost    TEXT,
    total_price      TEXT,
    payment_status   TEXT NOT NULL DEFAULT 'pending' CHECK (payment_status IN ('pending', 'paid')),
    paid_at          DATETIME,
    tracking_number  TEXT NOT NULL DEFAULT '',
    shipping_carrier TEXT NOT NULL DEFAULT '',
    shipped_at       DATETIME,
    created_at       DATETIME NOT NULL,
    updated_at       DATETIME NOT NULL
);

CREATE TABLE IF NOT EXISTS settings (
    key   TEXT PRIMARY KEY,
    value TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS revoked_tokens (
    jti        TEXT PRIMARY KEY,
    expires_at DATETIME NOT NULL
);
`

// migrations is a list of SQL statements applied in order after schema
// creation. Each migration must be idempotent. Append new migrations at the end.
var migrations = []string{
	// Migration 1: index for the shipped-image cleanup scan.
	`CREATE INDEX IF NOT EXISTS idx_orders_shipped_at ON orders(shipped_at) WHERE shipped_at IS NOT NULL`,
}

// EnsureSchema creates all tables and indexes if they don't already exist and
// applies pending migrations.
func EnsureSchema(db *sql.DB) error {
	if _, err := db.Exec(schema); err != nil {
		return fmt.Errorf("creating schema: %w", err)
	}

	for i, m := range migrations {
		if _, err := db.Exec(m); err != nil {
			return fmt.Errorf("running migration %d: %w", i+1, err)
		}
	}

	return nil
}
