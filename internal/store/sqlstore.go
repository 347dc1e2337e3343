package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/gofrs/flock"
	_ "modernc.org/sqlite"

	"stageflow/internal/funnel"
)

// lockTimeout bounds how long Open waits for a concurrent run to release
// the snapshot file.
const lockTimeout = 5 * time.Second

// SqlStore implements Store with SQLite. A flock beside the DB file keeps
// two pipeline runs from writing the same snapshot at once.
type SqlStore struct {
	db   *sql.DB
	lock *flock.Flock
}

var _ Store = (*SqlStore)(nil)

// Open opens or creates the snapshot DB at path, acquires its lock, and
// runs migrations. The parent directory (e.g. .stageflow) is created if
// missing.
func Open(path string) (*SqlStore, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("create store dir: %w", err)
	}

	lock := flock.New(path + ".lock")
	ctx, cancel := context.WithTimeout(context.Background(), lockTimeout)
	defer cancel()
	ok, err := lock.TryLockContext(ctx, 100*time.Millisecond)
	if err != nil || !ok {
		return nil, fmt.Errorf("snapshot %s is locked by another stageflow run", path)
	}

	// single writer; busy_timeout covers readers racing the writer
	dsn := fmt.Sprintf("file:%s?_pragma=busy_timeout(5000)", path)
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		_ = lock.Unlock()
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	db.SetMaxOpenConns(1)
	if err := db.Ping(); err != nil {
		_ = db.Close()
		_ = lock.Unlock()
		return nil, fmt.Errorf("ping sqlite: %w", err)
	}

	s := &SqlStore{db: db, lock: lock}
	if err := s.migrate(); err != nil {
		_ = s.Close()
		return nil, err
	}
	return s, nil
}

func (s *SqlStore) migrate() error {
	if _, err := s.db.Exec(schemaV1); err != nil {
		return fmt.Errorf("apply schema: %w", err)
	}
	var version int
	err := s.db.QueryRow(`SELECT version FROM schema_version LIMIT 1`).Scan(&version)
	if err == sql.ErrNoRows {
		_, err = s.db.Exec(`INSERT INTO schema_version (version) VALUES (?)`, currentSchemaVersion)
		return err
	}
	if err != nil {
		return fmt.Errorf("read schema version: %w", err)
	}
	if version != currentSchemaVersion {
		return fmt.Errorf("snapshot schema version %d, this build expects %d", version, currentSchemaVersion)
	}
	return nil
}

// Close closes the DB and releases the snapshot lock.
func (s *SqlStore) Close() error {
	err := s.db.Close()
	if s.lock != nil {
		if lerr := s.lock.Unlock(); err == nil {
			err = lerr
		}
	}
	return err
}

func (s *SqlStore) SaveRun(sheetID string, records []funnel.ApplicationRecord) (int64, error) {
	tx, err := s.db.Begin()
	if err != nil {
		return 0, fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.Exec(
		`INSERT INTO runs (fetched_at, sheet_id, record_count) VALUES (?, ?, ?)`,
		time.Now().UTC().Format(time.RFC3339), sheetID, len(records))
	if err != nil {
		return 0, fmt.Errorf("insert run: %w", err)
	}
	runID, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("run id: %w", err)
	}

	stmt, err := tx.Prepare(
		`INSERT INTO records (run_id, company, role, source, applied_at, statuses) VALUES (?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return 0, fmt.Errorf("prepare: %w", err)
	}
	defer stmt.Close()

	for _, rec := range records {
		statuses, err := json.Marshal(rec.Statuses)
		if err != nil {
			return 0, fmt.Errorf("marshal statuses: %w", err)
		}
		if _, err := stmt.Exec(runID, rec.Company, rec.Role, rec.Source, rec.AppliedAt, string(statuses)); err != nil {
			return 0, fmt.Errorf("insert record: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit: %w", err)
	}
	return runID, nil
}

func (s *SqlStore) LatestRun() (*Run, []funnel.ApplicationRecord, error) {
	run := &Run{}
	var fetchedAt string
	err := s.db.QueryRow(
		`SELECT id, fetched_at, sheet_id, record_count FROM runs ORDER BY id DESC LIMIT 1`).
		Scan(&run.ID, &fetchedAt, &run.SheetID, &run.RecordCount)
	if err == sql.ErrNoRows {
		return nil, nil, ErrNoSnapshot
	}
	if err != nil {
		return nil, nil, fmt.Errorf("query latest run: %w", err)
	}
	run.FetchedAt, _ = time.Parse(time.RFC3339, fetchedAt)

	rows, err := s.db.Query(
		`SELECT company, role, source, applied_at, statuses FROM records WHERE run_id = ? ORDER BY id`, run.ID)
	if err != nil {
		return nil, nil, fmt.Errorf("query records: %w", err)
	}
	defer rows.Close()

	var records []funnel.ApplicationRecord
	for rows.Next() {
		var rec funnel.ApplicationRecord
		var statuses string
		if err := rows.Scan(&rec.Company, &rec.Role, &rec.Source, &rec.AppliedAt, &statuses); err != nil {
			return nil, nil, fmt.Errorf("scan record: %w", err)
		}
		if err := json.Unmarshal([]byte(statuses), &rec.Statuses); err != nil {
			return nil, nil, fmt.Errorf("unmarshal statuses: %w", err)
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, nil, fmt.Errorf("iterate records: %w", err)
	}
	return run, records, nil
}

func (s *SqlStore) ListRuns() ([]*Run, error) {
	rows, err := s.db.Query(
		`SELECT id, fetched_at, sheet_id, record_count FROM runs ORDER BY id DESC`)
	if err != nil {
		return nil, fmt.Errorf("query runs: %w", err)
	}
	defer rows.Close()

	var runs []*Run
	for rows.Next() {
		run := &Run{}
		var fetchedAt string
		if err := rows.Scan(&run.ID, &fetchedAt, &run.SheetID, &run.RecordCount); err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		run.FetchedAt, _ = time.Parse(time.RFC3339, fetchedAt)
		runs = append(runs, run)
	}
	return runs, rows.Err()
}
