package database

import (
	"fmt"
	"log/slog"
)

func (db *DB) RunMigrations() error {
	slog.Info("Running database migrations...")

	migrations := []string{
		createUsersTable,
		createCategoriesTable,
		createProductsTable,
		createProductImagesTable,
		createPromotionsTables,
		createCouponsTables,
		createAddressesTable,
		createShippingRatesTable,
		createCartsTables,
		createOrdersTables,
		createEventsTables,
		createReservationsTable,
		createEbooksTables,
		createIndexes,
	}

	for i, migration := range migrations {
		slog.Info("Running migration", "step", i+1)
		if _, err := db.Exec(migration); err != nil {
			return fmt.Errorf("migration %d failed: %w", i+1, err)
		}
	}

	slog.Info("All migrations completed successfully")
	return nil
}

const createUsersTable = `
CREATE TABLE IF NOT EXISTS users (
    user_id SERIAL PRIMARY KEY,
    email VARCHAR(255) UNIQUE NOT NULL,
    password_hash VARCHAR(64) NOT NULL,
    name VARCHAR(255) NOT NULL,
    phone VARCHAR(50),
    is_admin BOOLEAN NOT NULL DEFAULT FALSE,
    is_active BOOLEAN NOT NULL DEFAULT TRUE,
    registered_at TIMESTAMP NOT NULL DEFAULT NOW()
);`

// One table, three trees: kind discriminates product/event/ebook categories.
// Parents must share the child's kind; the cycle guard lives in the service
// layer so the admin gets a readable error instead of a constraint violation.
const createCategoriesTable = `
CREATE TABLE IF NOT EXISTS categories (
    id SERIAL PRIMARY KEY,
    kind VARCHAR(20) NOT NULL,
    name VARCHAR(255) NOT NULL,
    parent_id INTEGER REFERENCES categories(id),
    created_at TIMESTAMP NOT NULL DEFAULT NOW(),

    CHECK (kind IN ('product', 'event', 'ebook'))
);`

const createProductsTable = `
CREATE TABLE IF NOT EXISTS products (
    id SERIAL PRIMARY KEY,
    name VARCHAR(500) NOT NULL,
    description TEXT,
    price DECIMAL(12,2) NOT NULL,
    stock INTEGER NOT NULL DEFAULT 0,
    category_id INTEGER NOT NULL REFERENCES categories(id),
    created_at TIMESTAMP NOT NULL DEFAULT NOW(),
    updated_at TIMESTAMP NOT NULL DEFAULT NOW(),

    CHECK (price >= 0)
);`

const createProductImagesTable = `
CREATE TABLE IF NOT EXISTS product_images (
    id SERIAL PRIMARY KEY,
    product_id INTEGER NOT NULL REFERENCES products(id),
    url TEXT NOT NULL,
    position INTEGER NOT NULL DEFAULT 0
);`

const createPromotionsTables = `
CREATE TABLE IF NOT EXISTS promotions (
    id SERIAL PRIMARY KEY,
    title VARCHAR(255) NOT NULL,
    description TEXT,
    discount_type VARCHAR(20) NOT NULL,
    value DECIMAL(12,2) NOT NULL,
    starts_at TIMESTAMP NOT NULL,
    ends_at TIMESTAMP NOT NULL,
    active BOOLEAN NOT NULL DEFAULT TRUE,
    created_at TIMESTAMP NOT NULL DEFAULT NOW(),

    CHECK (discount_type IN ('percentage', 'fixed'))
);
CREATE TABLE IF NOT EXISTS promotion_products (
    id SERIAL PRIMARY KEY,
    promotion_id INTEGER NOT NULL REFERENCES promotions(id) ON DELETE CASCADE,
    product_id INTEGER NOT NULL REFERENCES products(id) ON DELETE CASCADE,

    UNIQUE(promotion_id, product_id)
);`

// coupon_uses UNIQUE(coupon_id, user_id) is the database half of the
// one-use-per-user invariant; the service checks first for a friendly error.
const createCouponsTables = `
CREATE TABLE IF NOT EXISTS coupons (
    id SERIAL PRIMARY KEY,
    code VARCHAR(64) UNIQUE NOT NULL,
    description TEXT,
    discount_type VARCHAR(20) NOT NULL,
    value DECIMAL(12,2) NOT NULL,
    starts_at TIMESTAMP NOT NULL,
    ends_at TIMESTAMP NOT NULL,
    active BOOLEAN NOT NULL DEFAULT TRUE,

    CHECK (discount_type IN ('percentage', 'fixed'))
);
CREATE TABLE IF NOT EXISTS coupon_uses (
    id SERIAL PRIMARY KEY,
    coupon_id INTEGER NOT NULL REFERENCES coupons(id),
    user_id INTEGER NOT NULL REFERENCES users(user_id) ON DELETE CASCADE,
    used_at TIMESTAMP NOT NULL DEFAULT NOW(),

    UNIQUE(coupon_id, user_id)
);`

const createAddressesTable = `
CREATE TABLE IF NOT EXISTS addresses (
    id SERIAL PRIMARY KEY,
    user_id INTEGER NOT NULL REFERENCES users(user_id) ON DELETE CASCADE,
    line VARCHAR(500) NOT NULL,
    detail VARCHAR(500),
    city VARCHAR(255) NOT NULL,
    region VARCHAR(255) NOT NULL,
    postal_code VARCHAR(20),
    country VARCHAR(100) NOT NULL
);`

const createShippingRatesTable = `
CREATE TABLE IF NOT EXISTS shipping_rates (
    id SERIAL PRIMARY KEY,
    region VARCHAR(255) UNIQUE NOT NULL,
    cost DECIMAL(12,2) NOT NULL DEFAULT 0,
    active BOOLEAN NOT NULL DEFAULT TRUE
);`

// Partial unique index keeps "one active cart per user" true under
// concurrent lazy creation.
const createCartsTables = `
CREATE TABLE IF NOT EXISTS carts (
    id SERIAL PRIMARY KEY,
    user_id INTEGER NOT NULL REFERENCES users(user_id) ON DELETE CASCADE,
    status VARCHAR(20) NOT NULL DEFAULT 'active',
    created_at TIMESTAMP NOT NULL DEFAULT NOW(),

    CHECK (status IN ('active', 'abandoned', 'converted'))
);
CREATE UNIQUE INDEX IF NOT EXISTS carts_one_active_per_user
    ON carts (user_id) WHERE status = 'active';
CREATE TABLE IF NOT EXISTS cart_items (
    id SERIAL PRIMARY KEY,
    cart_id INTEGER NOT NULL REFERENCES carts(id) ON DELETE CASCADE,
    product_id INTEGER NOT NULL REFERENCES products(id),
    quantity INTEGER NOT NULL,

    UNIQUE(cart_id, product_id),
    CHECK (quantity > 0)
);`

// Orders are financial history: user deletion is RESTRICTed while any exist.
const createOrdersTables = `
CREATE TABLE IF NOT EXISTS orders (
    id SERIAL PRIMARY KEY,
    user_id INTEGER NOT NULL REFERENCES users(user_id) ON DELETE RESTRICT,
    address_id INTEGER REFERENCES addresses(id),
    shipping_rate_id INTEGER REFERENCES shipping_rates(id),
    subtotal DECIMAL(12,2) NOT NULL,
    discount DECIMAL(12,2) NOT NULL DEFAULT 0,
    shipping_cost DECIMAL(12,2) NOT NULL DEFAULT 0,
    total DECIMAL(12,2) NOT NULL,
    coupon_code VARCHAR(64),
    status VARCHAR(20) NOT NULL DEFAULT 'pending',
    transaction_id VARCHAR(255),
    created_at TIMESTAMP NOT NULL DEFAULT NOW(),
    updated_at TIMESTAMP NOT NULL DEFAULT NOW(),

    CHECK (status IN ('pending', 'paid', 'shipped', 'cancelled'))
);
CREATE TABLE IF NOT EXISTS order_items (
    id SERIAL PRIMARY KEY,
    order_id INTEGER NOT NULL REFERENCES orders(id) ON DELETE CASCADE,
    product_id INTEGER NOT NULL REFERENCES products(id),
    quantity INTEGER NOT NULL,
    unit_price DECIMAL(12,2) NOT NULL
);`

const createEventsTables = `
CREATE TABLE IF NOT EXISTS events (
    id SERIAL PRIMARY KEY,
    title VARCHAR(500) NOT NULL,
    description TEXT,
    category_id INTEGER REFERENCES categories(id),
    location VARCHAR(500),
    address VARCHAR(500),
    cost DECIMAL(12,2) NOT NULL DEFAULT 0,
    image_url TEXT,
    created_at TIMESTAMP NOT NULL DEFAULT NOW()
);
CREATE TABLE IF NOT EXISTS event_dates (
    id SERIAL PRIMARY KEY,
    event_id INTEGER NOT NULL REFERENCES events(id) ON DELETE CASCADE,
    date DATE NOT NULL
);
CREATE TABLE IF NOT EXISTS time_slots (
    id SERIAL PRIMARY KEY,
    event_date_id INTEGER NOT NULL REFERENCES event_dates(id) ON DELETE CASCADE,
    starts_at VARCHAR(5) NOT NULL,
    duration_minutes INTEGER NOT NULL,
    capacity INTEGER NOT NULL,

    CHECK (capacity > 0)
);`

const createReservationsTable = `
CREATE TABLE IF NOT EXISTS reservations (
    id SERIAL PRIMARY KEY,
    user_id INTEGER REFERENCES users(user_id) ON DELETE RESTRICT,
    time_slot_id INTEGER NOT NULL REFERENCES time_slots(id),
    quantity INTEGER NOT NULL,
    status VARCHAR(20) NOT NULL DEFAULT 'pending',
    transaction_id VARCHAR(255),
    amount_paid DECIMAL(12,2),
    currency VARCHAR(10),
    contact_name VARCHAR(255) NOT NULL,
    contact_email VARCHAR(255) NOT NULL,
    contact_phone VARCHAR(50),
    created_at TIMESTAMP NOT NULL DEFAULT NOW(),
    updated_at TIMESTAMP NOT NULL DEFAULT NOW(),

    CHECK (quantity > 0),
    CHECK (status IN ('pending', 'in_process', 'approved', 'rejected'))
);`

const createEbooksTables = `
CREATE TABLE IF NOT EXISTS ebooks (
    id SERIAL PRIMARY KEY,
    title VARCHAR(500) NOT NULL,
    description TEXT,
    price DECIMAL(12,2) NOT NULL,
    file_url TEXT NOT NULL,
    active BOOLEAN NOT NULL DEFAULT TRUE,
    category_id INTEGER REFERENCES categories(id),
    published_at TIMESTAMP NOT NULL DEFAULT NOW(),

    CHECK (price >= 0)
);
CREATE TABLE IF NOT EXISTS ebook_purchases (
    id SERIAL PRIMARY KEY,
    user_id INTEGER NOT NULL REFERENCES users(user_id) ON DELETE RESTRICT,
    ebook_id INTEGER NOT NULL REFERENCES ebooks(id),
    price_paid DECIMAL(12,2) NOT NULL,
    currency VARCHAR(10),
    payment_method VARCHAR(50) NOT NULL DEFAULT 'paypal',
    status VARCHAR(20) NOT NULL DEFAULT 'pending',
    transaction_id VARCHAR(255),
    download_code VARCHAR(64) UNIQUE,
    created_at TIMESTAMP NOT NULL DEFAULT NOW(),
    updated_at TIMESTAMP NOT NULL DEFAULT NOW(),

    CHECK (status IN ('pending', 'paid', 'failed', 'cancelled'))
);`

const createIndexes = `
CREATE INDEX IF NOT EXISTS products_category_idx ON products (category_id);
CREATE INDEX IF NOT EXISTS reservations_slot_idx ON reservations (time_slot_id);
CREATE INDEX IF NOT EXISTS reservations_txn_idx ON reservations (transaction_id);
CREATE INDEX IF NOT EXISTS orders_user_idx ON orders (user_id);
CREATE INDEX IF NOT EXISTS ebook_purchases_txn_idx ON ebook_purchases (transaction_id);
CREATE INDEX IF NOT EXISTS categories_parent_idx ON categories (parent_id);`
