package db

// schema is the full database schema.
const schema = `
CREATE TABLE IF NOT EXISTS companies (
    id         INTEGER PRIMARY KEY,
    name       TEXT NOT NULL,
    tax_id     TEXT,
    address    TEXT,
    created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
    deleted_at DATETIME
);

CREATE UNIQUE INDEX IF NOT EXISTS idx_companies_name_active
    ON companies(name) WHERE deleted_at IS NULL;

CREATE TABLE IF NOT EXISTS people (
    id            INTEGER PRIMARY KEY,
    username      TEXT NOT NULL,
    password_hash TEXT NOT NULL,
    level         INTEGER NOT NULL DEFAULT 1 CHECK (level IN (1, 2, 3)),
    full_name     TEXT NOT NULL,
    badge         TEXT NOT NULL,
    national_id   TEXT,
    company_id    INTEGER REFERENCES companies(id),
    created_at    DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
    deleted_at    DATETIME
);

CREATE UNIQUE INDEX IF NOT EXISTS idx_people_username_active
    ON people(username) WHERE deleted_at IS NULL;
CREATE UNIQUE INDEX IF NOT EXISTS idx_people_badge_active
    ON people(badge) WHERE deleted_at IS NULL;
CREATE UNIQUE INDEX IF NOT EXISTS idx_people_national_id_active
    ON people(national_id) WHERE deleted_at IS NULL AND national_id IS NOT NULL;

CREATE TABLE IF NOT EXISTS categories (
    id          INTEGER PRIMARY KEY,
    name        TEXT NOT NULL UNIQUE,
    description TEXT
);

CREATE TABLE IF NOT EXISTS items (
    id          INTEGER PRIMARY KEY,
    name        TEXT NOT NULL,
    code        TEXT,
    size        TEXT NOT NULL DEFAULT '',
    brand       TEXT,
    category_id INTEGER REFERENCES categories(id),
    quantity    INTEGER NOT NULL DEFAULT 0 CHECK (quantity >= 0),
    price       TEXT NOT NULL DEFAULT '0',
    min_stock   INTEGER NOT NULL DEFAULT 0 CHECK (min_stock >= 0),
    supplier    TEXT,
    photo       BLOB,
    photo_mime  TEXT,
    created_at  DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
    deleted_at  DATETIME
);

CREATE INDEX IF NOT EXISTS idx_items_name ON items(name);
CREATE UNIQUE INDEX IF NOT EXISTS idx_items_code_active
    ON items(code) WHERE deleted_at IS NULL AND code IS NOT NULL AND code != '';

CREATE TABLE IF NOT EXISTS movements (
    id         INTEGER PRIMARY KEY,
    item_id    INTEGER NOT NULL REFERENCES items(id),
    person_id  INTEGER NOT NULL REFERENCES people(id),
    delta      INTEGER NOT NULL CHECK (delta != 0),
    reason     TEXT NOT NULL DEFAULT '',
    moved_at   DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
    expires_at DATETIME
);

CREATE INDEX IF NOT EXISTS idx_movements_person ON movements(person_id);
CREATE INDEX IF NOT EXISTS idx_movements_moved_at ON movements(moved_at);

CREATE TABLE IF NOT EXISTS audit_logs (
    id         INTEGER PRIMARY KEY,
    actor_id   INTEGER REFERENCES people(id),
    action     TEXT NOT NULL,
    details    TEXT,
    created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
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
