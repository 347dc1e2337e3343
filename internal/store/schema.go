package store

// currentSchemaVersion is the target schema version for this build.
const currentSchemaVersion = 1

var schemaV1 = `
CREATE TABLE IF NOT EXISTS schema_version (version INTEGER NOT NULL);

CREATE TABLE IF NOT EXISTS runs (
	id           INTEGER PRIMARY KEY AUTOINCREMENT,
	fetched_at   TEXT NOT NULL,
	sheet_id     TEXT NOT NULL,
	record_count INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS records (
	id         INTEGER PRIMARY KEY AUTOINCREMENT,
	run_id     INTEGER NOT NULL,
	company    TEXT NOT NULL,
	role       TEXT NOT NULL,
	source     TEXT NOT NULL DEFAULT '',
	applied_at TEXT NOT NULL DEFAULT '',
	statuses   TEXT NOT NULL DEFAULT '[]',
	FOREIGN KEY (run_id) REFERENCES runs(id)
);

CREATE INDEX IF NOT EXISTS idx_records_run ON records(run_id);
`
