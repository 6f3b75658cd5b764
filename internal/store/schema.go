package store

const schemaSQL = `
CREATE TABLE IF NOT EXISTS observations (
    day                  TEXT PRIMARY KEY,
    weight               REAL NOT NULL
);
`
