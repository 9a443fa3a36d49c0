package sqlite

import "database/sql"

// schema sets up the store of record. Money columns hold decimal text so no
// precision is lost; line lists of carts and held bills are JSON documents.
const schema = `
CREATE TABLE IF NOT EXISTS users (
    id TEXT PRIMARY KEY,
    code TEXT NOT NULL UNIQUE,
    display_name TEXT NOT NULL,
    role TEXT NOT NULL,
    password_hash TEXT NOT NULL,
    created_at INTEGER NOT NULL,
    updated_at INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS products (
    item_code TEXT PRIMARY KEY,
    name TEXT NOT NULL,
    retail_price TEXT NOT NULL,
    category_code TEXT NOT NULL DEFAULT '',
    location_code TEXT NOT NULL DEFAULT '',
    manufacturer_id TEXT NOT NULL DEFAULT '',
    alt_codes TEXT NOT NULL DEFAULT '',
    uom TEXT NOT NULL DEFAULT ''
);

CREATE TABLE IF NOT EXISTS customers (
    code TEXT PRIMARY KEY,
    name TEXT NOT NULL DEFAULT '',
    full_name TEXT NOT NULL DEFAULT '',
    category TEXT NOT NULL DEFAULT '',
    location_code TEXT NOT NULL DEFAULT '',
    lock_flag TEXT NOT NULL DEFAULT 'N',
    loyalty_points INTEGER NOT NULL DEFAULT 0 CHECK (loyalty_points >= 0)
);

CREATE TABLE IF NOT EXISTS cart_snapshots (
    bill_no INTEGER NOT NULL,
    location_code TEXT NOT NULL,
    session_id TEXT NOT NULL DEFAULT '',
    seq INTEGER NOT NULL DEFAULT 0,
    items TEXT NOT NULL,
    updated_at INTEGER NOT NULL,
    PRIMARY KEY (bill_no, location_code)
);

CREATE TABLE IF NOT EXISTS held_bills (
    bill_no INTEGER NOT NULL,
    location_code TEXT NOT NULL,
    counter_code TEXT NOT NULL DEFAULT '',
    customer_code TEXT NOT NULL DEFAULT '',
    held_at INTEGER NOT NULL,
    items TEXT NOT NULL,
    PRIMARY KEY (bill_no, location_code)
);

CREATE TABLE IF NOT EXISTS bill_numbers (
    bill_no INTEGER PRIMARY KEY,
    flag TEXT NOT NULL DEFAULT 'n',
    counter_code TEXT NOT NULL DEFAULT '',
    location_code TEXT NOT NULL DEFAULT '',
    bill_date INTEGER NOT NULL,
    paid_at INTEGER
);

CREATE TABLE IF NOT EXISTS bill_settlements (
    id TEXT PRIMARY KEY,
    bill_no INTEGER NOT NULL,
    location_code TEXT NOT NULL,
    counter_code TEXT NOT NULL DEFAULT '',
    customer_code TEXT NOT NULL DEFAULT '',
    method TEXT NOT NULL,
    points_used INTEGER NOT NULL DEFAULT 0,
    subtotal TEXT NOT NULL,
    tax TEXT NOT NULL,
    total TEXT NOT NULL,
    tendered TEXT NOT NULL,
    change_amount TEXT NOT NULL,
    created_at INTEGER NOT NULL,
    UNIQUE (bill_no, location_code)
);

CREATE TABLE IF NOT EXISTS bill_details (
    settlement_id TEXT NOT NULL,
    line_no INTEGER NOT NULL,
    item_code TEXT NOT NULL,
    quantity INTEGER NOT NULL,
    rate TEXT NOT NULL,
    PRIMARY KEY (settlement_id, line_no),
    FOREIGN KEY (settlement_id) REFERENCES bill_settlements(id) ON DELETE CASCADE
);

CREATE INDEX IF NOT EXISTS idx_held_bills_location ON held_bills(location_code, held_at);
CREATE INDEX IF NOT EXISTS idx_products_manufacturer ON products(manufacturer_id);
`

// runMigrations executes the schema setup.
func runMigrations(db *sql.DB) error {
	_, err := db.Exec(schema)
	return err
}
