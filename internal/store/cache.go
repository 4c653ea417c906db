// Package store provides a SQLite-backed cache for parsed input tables.
// Only the cleaned source rows are stored; analysis results are always recomputed.
package store

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/theirongolddev/opdusage/internal/model"

	_ "modernc.org/sqlite" // register sqlite driver
)

// Cache provides SQLite-backed table caching.
type Cache struct {
	db *sql.DB
}

// Open opens or creates the cache database at the given path.
func Open(dbPath string) (*Cache, error) {
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return nil, fmt.Errorf("creating cache dir: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(wal)&_pragma=synchronous(normal)&_pragma=foreign_keys(on)")
	if err != nil {
		return nil, fmt.Errorf("opening cache db: %w", err)
	}

	if err := migrate(db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}

	return &Cache{db: db}, nil
}

func migrate(db *sql.DB) error {
	var version int
	if err := db.QueryRow("PRAGMA user_version").Scan(&version); err != nil {
		return err
	}
	if version != schemaVersion {
		if _, err := db.Exec(dropSQL); err != nil {
			return err
		}
	}
	if _, err := db.Exec(schemaSQL); err != nil {
		return err
	}
	_, err := db.Exec(fmt.Sprintf("PRAGMA user_version = %d", schemaVersion))
	return err
}

// Close closes the cache database.
func (c *Cache) Close() error {
	return c.db.Close()
}

// SourceInfo describes a cached input file, the read options it was parsed
// with and the counters from its load.
type SourceInfo struct {
	Location         string
	MtimeNs          int64
	SizeBytes        int64
	Sheet            string
	Delimiter        string
	TotalRows        int
	ParseErrors      int
	DroppedZeroLimit int
	ParsedAt         time.Time
}

// Fresh reports whether the cached entry still matches the file on disk and
// was parsed with the same sheet and delimiter.
func (s SourceInfo) Fresh(mtimeNs, sizeBytes int64, sheet, delimiter string) bool {
	return s.MtimeNs == mtimeNs && s.SizeBytes == sizeBytes &&
		s.Sheet == sheet && s.Delimiter == delimiter
}

// LookupSource returns the tracked info for location. ok is false when nothing is cached.
func (c *Cache) LookupSource(location string) (info SourceInfo, ok bool, err error) {
	var parsedAt string
	err = c.db.QueryRow(`SELECT location, mtime_ns, size_bytes, sheet, delimiter, total_rows,
		parse_errors, dropped_zero_limit, parsed_at FROM sources WHERE location = ?`, location).Scan(
		&info.Location, &info.MtimeNs, &info.SizeBytes, &info.Sheet, &info.Delimiter,
		&info.TotalRows, &info.ParseErrors, &info.DroppedZeroLimit, &parsedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return SourceInfo{}, false, nil
	}
	if err != nil {
		return SourceInfo{}, false, err
	}
	info.ParsedAt, _ = time.Parse(time.RFC3339, parsedAt)
	return info, true, nil
}

// SaveRecords replaces everything cached for info.Location in one transaction.
func (c *Cache) SaveRecords(info SourceInfo, records []model.Record) error {
	tx, err := c.db.Begin()
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.Exec("DELETE FROM sources WHERE location = ?", info.Location); err != nil {
		return err
	}

	parsedAt := info.ParsedAt
	if parsedAt.IsZero() {
		parsedAt = time.Now()
	}
	_, err = tx.Exec(`INSERT INTO sources
		(location, mtime_ns, size_bytes, sheet, delimiter, total_rows, parse_errors,
		 dropped_zero_limit, parsed_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		info.Location, info.MtimeNs, info.SizeBytes, info.Sheet, info.Delimiter,
		info.TotalRows, info.ParseErrors, info.DroppedZeroLimit, parsedAt.UTC().Format(time.RFC3339),
	)
	if err != nil {
		return err
	}

	stmt, err := tx.Prepare(`INSERT INTO records
		(location, seq, ren_type, policy_start_year, plan_type, family_structure, age_band, age,
		 opd_mrp_amount, refund_amount, opd_limit, total_opd_used, opd_usage_percent)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return err
	}
	defer func() { _ = stmt.Close() }()

	for i, r := range records {
		_, err = stmt.Exec(info.Location, i, r.RenewalType, r.PolicyStartYear, r.PlanType,
			r.FamilyStructure, r.AgeBand, r.Age, r.OPDMRPAmount, r.RefundAmount, r.OPDLimit,
			r.TotalOPDUsed, r.OPDUsagePercent,
		)
		if err != nil {
			return err
		}
	}

	return tx.Commit()
}

// LoadRecords reads the cached rows for location in their original order.
func (c *Cache) LoadRecords(location string) ([]model.Record, error) {
	rows, err := c.db.Query(`SELECT
		ren_type, policy_start_year, plan_type, family_structure, age_band, age,
		opd_mrp_amount, refund_amount, opd_limit, total_opd_used, opd_usage_percent
		FROM records WHERE location = ? ORDER BY seq`, location)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var records []model.Record
	for rows.Next() {
		var r model.Record
		err := rows.Scan(&r.RenewalType, &r.PolicyStartYear, &r.PlanType, &r.FamilyStructure,
			&r.AgeBand, &r.Age, &r.OPDMRPAmount, &r.RefundAmount, &r.OPDLimit,
			&r.TotalOPDUsed, &r.OPDUsagePercent,
		)
		if err != nil {
			return nil, err
		}
		records = append(records, r)
	}
	return records, rows.Err()
}

// DeleteSource removes a cached source and its rows.
func (c *Cache) DeleteSource(location string) error {
	_, err := c.db.Exec("DELETE FROM sources WHERE location = ?", location)
	return err
}

// RecordCount returns the number of cached rows across all sources.
func (c *Cache) RecordCount() (int, error) {
	var count int
	err := c.db.QueryRow("SELECT COUNT(*) FROM records").Scan(&count)
	return count, err
}
