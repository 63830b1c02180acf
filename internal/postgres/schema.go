package postgres

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Migrate creates the tables if they do not exist yet. The constraints carry
// the invariants the repos rely on: stock never below zero, unique order
// numbers, one cart row per (user, book), items cascade with their order.
func Migrate(ctx context.Context, db *pgxpool.Pool) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS users (
			id            BIGSERIAL PRIMARY KEY,
			username      VARCHAR(50)  NOT NULL UNIQUE,
			email         VARCHAR(100) NOT NULL UNIQUE,
			password_hash VARCHAR(255) NOT NULL,
			phone         VARCHAR(20),
			is_active     BOOLEAN NOT NULL DEFAULT TRUE,
			created_at    TIMESTAMPTZ NOT NULL DEFAULT now(),
			updated_at    TIMESTAMPTZ NOT NULL DEFAULT now()
		)`,
		`CREATE TABLE IF NOT EXISTS books (
			id               BIGSERIAL PRIMARY KEY,
			title            VARCHAR(200) NOT NULL,
			author           VARCHAR(100),
			publisher        VARCHAR(100),
			isbn             VARCHAR(20) UNIQUE,
			category         VARCHAR(50),
			description      TEXT,
			original_price   NUMERIC(10,2),
			current_price    NUMERIC(10,2) NOT NULL,
			stock_quantity   INTEGER NOT NULL DEFAULT 0 CHECK (stock_quantity >= 0),
			cover_image_url  VARCHAR(255),
			page_count       INTEGER,
			language         VARCHAR(20) DEFAULT 'zh-CN',
			is_active        BOOLEAN NOT NULL DEFAULT TRUE,
			sales_count      INTEGER NOT NULL DEFAULT 0,
			view_count       INTEGER NOT NULL DEFAULT 0,
			rating           NUMERIC(3,2) NOT NULL DEFAULT 0.00,
			created_at       TIMESTAMPTZ NOT NULL DEFAULT now(),
			updated_at       TIMESTAMPTZ NOT NULL DEFAULT now()
		)`,
		`CREATE TABLE IF NOT EXISTS orders (
			id             BIGSERIAL PRIMARY KEY,
			user_id        BIGINT NOT NULL REFERENCES users(id),
			order_number   VARCHAR(50) NOT NULL UNIQUE,
			total_amount   NUMERIC(10,2) NOT NULL,
			status         VARCHAR(20) NOT NULL DEFAULT 'pending',
			payment_method VARCHAR(50),
			payment_status VARCHAR(20) NOT NULL DEFAULT 'pending',
			notes          TEXT,
			created_at     TIMESTAMPTZ NOT NULL DEFAULT now(),
			updated_at     TIMESTAMPTZ NOT NULL DEFAULT now(),
			paid_at        TIMESTAMPTZ,
			shipped_at     TIMESTAMPTZ,
			delivered_at   TIMESTAMPTZ
		)`,
		`CREATE TABLE IF NOT EXISTS order_items (
			id          BIGSERIAL PRIMARY KEY,
			order_id    BIGINT NOT NULL REFERENCES orders(id) ON DELETE CASCADE,
			book_id     BIGINT NOT NULL REFERENCES books(id),
			quantity    INTEGER NOT NULL CHECK (quantity > 0),
			unit_price  NUMERIC(10,2) NOT NULL,
			total_price NUMERIC(10,2) NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS shopping_cart (
			id         BIGSERIAL PRIMARY KEY,
			user_id    BIGINT NOT NULL REFERENCES users(id),
			book_id    BIGINT NOT NULL REFERENCES books(id),
			quantity   INTEGER NOT NULL DEFAULT 1 CHECK (quantity > 0),
			created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT now(),
			CONSTRAINT unique_user_book UNIQUE (user_id, book_id)
		)`,
		`CREATE INDEX IF NOT EXISTS idx_orders_user_created ON orders (user_id, created_at DESC)`,
		`CREATE INDEX IF NOT EXISTS idx_books_category ON books (category) WHERE is_active`,
	}
	for _, s := range stmts {
		if _, err := db.Exec(ctx, s); err != nil {
			return err
		}
	}
	return nil
}
