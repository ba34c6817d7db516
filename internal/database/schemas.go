package database

// schemas maps database names to their DDL. The schema for each database is
// applied in full on startup; all statements are idempotent.
var schemas = map[string]string{
	"ledger":    ledgerSchema,
	"portfolio": portfolioSchema,
}

// ledger.db - append-only transaction log and accounts. Rows in transactions
// are never updated or deleted.
const ledgerSchema = `
CREATE TABLE IF NOT EXISTS accounts (
    id         TEXT PRIMARY KEY,
    name       TEXT NOT NULL,
    created_at INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS transactions (
    id                TEXT PRIMARY KEY,
    account_id        TEXT NOT NULL REFERENCES accounts(id),
    ticker            TEXT NOT NULL,
    kind              TEXT NOT NULL CHECK (kind IN ('stock', 'option')),

    action            TEXT,
    shares            REAL,
    price_per_share   REAL,
    total_amount      REAL,
    date              TEXT,
    split_ratio       TEXT,

    strategy          TEXT,
    option_type       TEXT,
    option_action     TEXT,
    contracts         INTEGER,
    strike_price      REAL,
    premium_per_share REAL,
    total_premium     REAL,
    expiration_date   TEXT,
    transaction_date  TEXT,
    assignment_date   TEXT,
    realized_pl       REAL,

    fees              REAL NOT NULL DEFAULT 0,
    notes             TEXT,
    fingerprint       TEXT NOT NULL,
    created_at        INTEGER NOT NULL
);

-- Not UNIQUE: duplicate fingerprints are surfaced as warnings and a user may
-- deliberately record two economically identical trades.
CREATE INDEX IF NOT EXISTS idx_transactions_fingerprint ON transactions(fingerprint);
CREATE INDEX IF NOT EXISTS idx_transactions_account_ticker ON transactions(account_id, ticker);
`

// portfolio.db - derived data. Snapshots are dated msgpack blobs of the full
// recomputed book.
const portfolioSchema = `
CREATE TABLE IF NOT EXISTS position_snapshots (
    id           INTEGER PRIMARY KEY AUTOINCREMENT,
    snapshot_date TEXT NOT NULL,
    book         BLOB NOT NULL,
    created_at   INTEGER NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_snapshots_date ON position_snapshots(snapshot_date);
`
