package database

import (
	"fmt"
	"log"

	"gorm.io/gorm"
)

// RunMigrations applies the raw-SQL schema in order. Postgres gets the
// overlap exclusion constraint and the atomic use_gift_card function;
// sqlite (local dev, tests) gets an equivalent schema without them.
func RunMigrations(db *gorm.DB) error {
	migrations := sqliteMigrations
	if IsPostgres(db) {
		migrations = postgresMigrations
	}

	for i, m := range migrations {
		if err := db.Exec(m).Error; err != nil {
			return fmt.Errorf("migration %d failed: %w", i+1, err)
		}
	}

	log.Println("database migrations completed")
	return nil
}

// pgx rejects multi-statement Exec, so each entry is one statement.
var postgresMigrations = []string{
	createBookingsTablePG,
	`CREATE EXTENSION IF NOT EXISTS btree_gist;`,
	`ALTER TABLE bookings DROP CONSTRAINT IF EXISTS no_overlapping_bookings;`,
	createBookingOverlapConstraint,
	createGiftCardsTablePG,
	`CREATE INDEX IF NOT EXISTS idx_gift_cards_code ON gift_cards (code);`,
	createGiftCardUsagesTablePG,
	createUseGiftCardFunction,
}

var sqliteMigrations = []string{
	createBookingsTableSQLite,
	createGiftCardsTableSQLite,
	`CREATE INDEX IF NOT EXISTS idx_gift_cards_code ON gift_cards (code);`,
	createGiftCardUsagesTableSQLite,
}

const createBookingsTablePG = `
CREATE TABLE IF NOT EXISTS bookings (
    id BIGSERIAL PRIMARY KEY,
    service VARCHAR(255) NOT NULL,
    start_time TIMESTAMPTZ NOT NULL,
    end_time TIMESTAMPTZ NOT NULL,
    customer_name VARCHAR(255) NOT NULL,
    customer_email VARCHAR(255) NOT NULL,
    customer_phone VARCHAR(64) NOT NULL DEFAULT '',
    notes TEXT,
    status VARCHAR(32) NOT NULL DEFAULT 'pending',
    price_cents BIGINT NOT NULL DEFAULT 0,
    deposit_cents BIGINT NOT NULL DEFAULT 0,
    payment_intent_id VARCHAR(255) NOT NULL DEFAULT '',
    refund_cents BIGINT NOT NULL DEFAULT 0,
    refund_status VARCHAR(16) NOT NULL DEFAULT 'none',
    cancellation_reason TEXT,
    created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    confirmed_at TIMESTAMPTZ,
    cancelled_at TIMESTAMPTZ,
    completed_at TIMESTAMPTZ,
    reminder_sent_at TIMESTAMPTZ,

    CHECK (end_time > start_time),
    CHECK (status IN ('pending', 'awaiting_deposit', 'confirmed', 'cancelling', 'cancelled'))
);`

// Two non-cancelled bookings may never occupy overlapping [start,end)
// ranges. This backstops the in-transaction availability check, so the
// check-then-insert pair cannot race.
const createBookingOverlapConstraint = `
ALTER TABLE bookings ADD CONSTRAINT no_overlapping_bookings
    EXCLUDE USING gist (tstzrange(start_time, end_time, '[)') WITH &&)
    WHERE (status IN ('pending', 'awaiting_deposit', 'confirmed', 'cancelling'));`

const createGiftCardsTablePG = `
CREATE TABLE IF NOT EXISTS gift_cards (
    id UUID PRIMARY KEY,
    code VARCHAR(16) NOT NULL,
    sender_name VARCHAR(255) NOT NULL DEFAULT '',
    sender_email VARCHAR(255) NOT NULL DEFAULT '',
    recipient_name VARCHAR(255) NOT NULL DEFAULT '',
    recipient_email VARCHAR(255) NOT NULL DEFAULT '',
    message TEXT,
    face_cents BIGINT NOT NULL,
    balance_cents BIGINT NOT NULL,
    status VARCHAR(32) NOT NULL DEFAULT 'pending',
    test_mode BOOLEAN NOT NULL DEFAULT FALSE,
    redeemed BOOLEAN NOT NULL DEFAULT FALSE,
    redeemed_at TIMESTAMPTZ,
    redeemed_by VARCHAR(255) NOT NULL DEFAULT '',
    stripe_session_id VARCHAR(255) NOT NULL DEFAULT '',
    created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),

    CHECK (face_cents > 0),
    CHECK (balance_cents >= 0 AND balance_cents <= face_cents)
);`

const createGiftCardUsagesTablePG = `
CREATE TABLE IF NOT EXISTS gift_card_usages (
    id BIGSERIAL PRIMARY KEY,
    gift_card_id UUID NOT NULL REFERENCES gift_cards(id),
    amount_cents BIGINT NOT NULL,
    service_name VARCHAR(255) NOT NULL DEFAULT '',
    notes TEXT,
    used_by VARCHAR(255) NOT NULL DEFAULT '',
    created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);`

// use_gift_card is the single atomic check-and-decrement. Application code
// never touches balance_cents directly; it only interprets the returned
// code: ok, not_found, not_active, invalid_amount, insufficient_balance.
const createUseGiftCardFunction = `
CREATE OR REPLACE FUNCTION use_gift_card(
    p_card_id UUID,
    p_amount BIGINT,
    p_service VARCHAR,
    p_notes TEXT,
    p_used_by VARCHAR
) RETURNS TEXT AS $$
DECLARE
    v_card gift_cards%ROWTYPE;
BEGIN
    IF p_amount IS NULL OR p_amount <= 0 THEN
        RETURN 'invalid_amount';
    END IF;

    SELECT * INTO v_card FROM gift_cards WHERE id = p_card_id FOR UPDATE;
    IF NOT FOUND THEN
        RETURN 'not_found';
    END IF;

    IF v_card.status NOT IN ('active', 'partially_used') THEN
        RETURN 'not_active';
    END IF;

    IF v_card.balance_cents < p_amount THEN
        RETURN 'insufficient_balance';
    END IF;

    UPDATE gift_cards
    SET balance_cents = balance_cents - p_amount,
        status = CASE WHEN balance_cents - p_amount = 0 THEN 'used' ELSE 'partially_used' END,
        updated_at = NOW()
    WHERE id = p_card_id;

    INSERT INTO gift_card_usages (gift_card_id, amount_cents, service_name, notes, used_by)
    VALUES (p_card_id, p_amount, COALESCE(p_service, ''), p_notes, COALESCE(p_used_by, ''));

    RETURN 'ok';
END;
$$ LANGUAGE plpgsql;`

const createBookingsTableSQLite = `
CREATE TABLE IF NOT EXISTS bookings (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    service TEXT NOT NULL,
    start_time DATETIME NOT NULL,
    end_time DATETIME NOT NULL,
    customer_name TEXT NOT NULL,
    customer_email TEXT NOT NULL,
    customer_phone TEXT NOT NULL DEFAULT '',
    notes TEXT,
    status TEXT NOT NULL DEFAULT 'pending',
    price_cents INTEGER NOT NULL DEFAULT 0,
    deposit_cents INTEGER NOT NULL DEFAULT 0,
    payment_intent_id TEXT NOT NULL DEFAULT '',
    refund_cents INTEGER NOT NULL DEFAULT 0,
    refund_status TEXT NOT NULL DEFAULT 'none',
    cancellation_reason TEXT,
    created_at DATETIME,
    updated_at DATETIME,
    confirmed_at DATETIME,
    cancelled_at DATETIME,
    completed_at DATETIME,
    reminder_sent_at DATETIME,

    CHECK (end_time > start_time)
);`

const createGiftCardsTableSQLite = `
CREATE TABLE IF NOT EXISTS gift_cards (
    id TEXT PRIMARY KEY,
    code TEXT NOT NULL,
    sender_name TEXT NOT NULL DEFAULT '',
    sender_email TEXT NOT NULL DEFAULT '',
    recipient_name TEXT NOT NULL DEFAULT '',
    recipient_email TEXT NOT NULL DEFAULT '',
    message TEXT,
    face_cents INTEGER NOT NULL,
    balance_cents INTEGER NOT NULL,
    status TEXT NOT NULL DEFAULT 'pending',
    test_mode INTEGER NOT NULL DEFAULT 0,
    redeemed INTEGER NOT NULL DEFAULT 0,
    redeemed_at DATETIME,
    redeemed_by TEXT NOT NULL DEFAULT '',
    stripe_session_id TEXT NOT NULL DEFAULT '',
    created_at DATETIME,
    updated_at DATETIME,

    CHECK (balance_cents >= 0 AND balance_cents <= face_cents)
);`

const createGiftCardUsagesTableSQLite = `
CREATE TABLE IF NOT EXISTS gift_card_usages (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    gift_card_id TEXT NOT NULL REFERENCES gift_cards(id),
    amount_cents INTEGER NOT NULL,
    service_name TEXT NOT NULL DEFAULT '',
    notes TEXT,
    used_by TEXT NOT NULL DEFAULT '',
    created_at DATETIME
);`
