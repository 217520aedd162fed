package store

const schemaSQL = `
CREATE TABLE IF NOT EXISTS partitions (
    file_path            TEXT PRIMARY KEY,
    columns              TEXT NOT NULL,
    parse_errors         INTEGER NOT NULL DEFAULT 0,
    mtime_ns             INTEGER NOT NULL,
    size_bytes           INTEGER NOT NULL,
    parsed_at            TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS loans (
    file_path            TEXT NOT NULL REFERENCES partitions(file_path) ON DELETE CASCADE,
    row_num              INTEGER NOT NULL,
    id                   TEXT,
    issue_date           TEXT,
    issue_weekday        TEXT,
    loan_amount          REAL,
    interest_rate        REAL,
    term                 TEXT,
    purpose              TEXT,
    loan_condition       TEXT,
    grade                TEXT,
    employment_length    REAL,
    home_ownership       TEXT,
    income_category      TEXT,
    annual_income        REAL,
    interest_payments    TEXT,
    dti                  REAL,
    total_payment        REAL,
    installment          REAL,
    PRIMARY KEY (file_path, row_num)
);

CREATE TABLE IF NOT EXISTS predictions (
    id                   TEXT PRIMARY KEY,
    created_at           TEXT NOT NULL,
    applicant            TEXT NOT NULL,
    percent              REAL NOT NULL,
    label                TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_predictions_created ON predictions(created_at);
`
