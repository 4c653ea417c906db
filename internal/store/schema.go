package store

// schemaVersion is stored in PRAGMA user_version. Open rebuilds the cache
// tables when it differs, since the rows can always be reparsed.
const schemaVersion = 2

const dropSQL = `
DROP TABLE IF EXISTS records;
DROP TABLE IF EXISTS sources;
`

const schemaSQL = `
CREATE TABLE IF NOT EXISTS sources (
    location             TEXT PRIMARY KEY,
    mtime_ns             INTEGER NOT NULL,
    size_bytes           INTEGER NOT NULL,
    sheet                TEXT NOT NULL DEFAULT '',
    delimiter            TEXT NOT NULL DEFAULT '',
    total_rows           INTEGER NOT NULL,
    parse_errors         INTEGER NOT NULL,
    dropped_zero_limit   INTEGER NOT NULL,
    parsed_at            TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS records (
    location             TEXT NOT NULL REFERENCES sources(location) ON DELETE CASCADE,
    seq                  INTEGER NOT NULL,
    ren_type             TEXT NOT NULL,
    policy_start_year    INTEGER NOT NULL,
    plan_type            TEXT NOT NULL,
    family_structure     TEXT NOT NULL,
    age_band             TEXT NOT NULL,
    age                  INTEGER NOT NULL,
    opd_mrp_amount       REAL NOT NULL,
    refund_amount        REAL NOT NULL,
    opd_limit            REAL NOT NULL,
    total_opd_used       REAL NOT NULL,
    opd_usage_percent    REAL NOT NULL,
    PRIMARY KEY (location, seq)
);
`
