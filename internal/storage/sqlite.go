// Package storage persists resolved works in SQLite so that later runs can
// skip the remote lookup.
package storage

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/matsen/cocite/internal/node"
	_ "modernc.org/sqlite"
)

// DB wraps a SQLite database connection.
type DB struct {
	db *sql.DB
}

// CachedWork is the stored resolution of one work: its representative author
// and institution, either of which may be absent.
type CachedWork struct {
	WorkID      string            `json:"work_id"`
	Author      *node.Author      `json:"author,omitempty"`
	Institution *node.Institution `json:"institution,omitempty"`
	FetchedAt   time.Time         `json:"fetched_at"`
}

// Stats summarizes the cache contents.
type Stats struct {
	Works           int       `json:"works"`
	WithAuthor      int       `json:"with_author"`
	WithInstitution int       `json:"with_institution"`
	OldestFetchedAt time.Time `json:"oldest_fetched_at,omitzero"`
	NewestFetchedAt time.Time `json:"newest_fetched_at,omitzero"`
}

// selectWorkFields contains the standard field list for SELECT queries.
const selectWorkFields = `work_id, fetched_at,
	author_name, author_orcid, author_openalex_id, author_norm_name,
	inst_name, inst_openalex_id, inst_country, inst_type, inst_norm_name,
	has_author, has_inst`

// OpenDB opens or creates a SQLite database at the given path.
func OpenDB(path string) (*DB, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	db.SetMaxOpenConns(1) // SQLite doesn't support concurrent writes

	if err := createSchema(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}

	return &DB{db: db}, nil
}

// Close closes the database connection.
func (d *DB) Close() error {
	return d.db.Close()
}

// createSchema creates the database schema if it doesn't exist.
func createSchema(db *sql.DB) error {
	schema := `
		CREATE TABLE IF NOT EXISTS works (
			work_id TEXT PRIMARY KEY,
			fetched_at INTEGER NOT NULL,
			has_author INTEGER NOT NULL,
			author_name TEXT,
			author_orcid TEXT,
			author_openalex_id TEXT,
			author_norm_name TEXT,
			has_inst INTEGER NOT NULL,
			inst_name TEXT,
			inst_openalex_id TEXT,
			inst_country TEXT,
			inst_type TEXT,
			inst_norm_name TEXT
		);
	`
	_, err := db.Exec(schema)
	return err
}

// GetWork returns the cached resolution of a work, or nil if it was never stored.
func (d *DB) GetWork(workID string) (*CachedWork, error) {
	row := d.db.QueryRow(`SELECT `+selectWorkFields+` FROM works WHERE work_id = ?`, workID)
	w, err := scanWork(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading work %s: %w", workID, err)
	}
	return w, nil
}

const insertWorkSQL = `
	INSERT OR REPLACE INTO works (
		work_id, fetched_at,
		has_author, author_name, author_orcid, author_openalex_id, author_norm_name,
		has_inst, inst_name, inst_openalex_id, inst_country, inst_type, inst_norm_name
	) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

// PutWork stores or replaces the resolution of a work.
func (d *DB) PutWork(w CachedWork) error {
	if _, err := d.db.Exec(insertWorkSQL, workArgs(w)...); err != nil {
		return fmt.Errorf("storing work %s: %w", w.WorkID, err)
	}
	return nil
}

// PutWorks stores or replaces many works in one transaction.
func (d *DB) PutWorks(works []CachedWork) error {
	tx, err := d.db.Begin()
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	// Prepare insert statement
	stmt, err := tx.Prepare(insertWorkSQL)
	if err != nil {
		return fmt.Errorf("preparing insert: %w", err)
	}
	defer stmt.Close()

	for _, w := range works {
		if _, err := stmt.Exec(workArgs(w)...); err != nil {
			return fmt.Errorf("storing work %s: %w", w.WorkID, err)
		}
	}
	return tx.Commit()
}

// AllWorks returns every cached work ordered by work ID.
func (d *DB) AllWorks() ([]CachedWork, error) {
	rows, err := d.db.Query(`SELECT ` + selectWorkFields + ` FROM works ORDER BY work_id`)
	if err != nil {
		return nil, fmt.Errorf("querying works: %w", err)
	}
	defer rows.Close()

	var works []CachedWork
	for rows.Next() {
		w, err := scanWork(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning work: %w", err)
		}
		works = append(works, *w)
	}
	return works, rows.Err()
}

// workArgs returns the insert arguments for w. A zero FetchedAt means now.
func workArgs(w CachedWork) []any {
	if w.FetchedAt.IsZero() {
		w.FetchedAt = time.Now().UTC()
	}

	var a node.Author
	if w.Author != nil {
		a = *w.Author
	}
	var inst node.Institution
	if w.Institution != nil {
		inst = *w.Institution
	}

	return []any{
		w.WorkID, w.FetchedAt.Unix(),
		boolToInt(w.Author != nil), a.Name, a.ORCID, a.OpenAlexAuthorID, a.NormName,
		boolToInt(w.Institution != nil), inst.Name, inst.OpenAlexInstitutionID, inst.Country, inst.Type, inst.NormName,
	}
}

// CountWorks returns the number of cached works.
func (d *DB) CountWorks() (int, error) {
	var n int
	if err := d.db.QueryRow(`SELECT COUNT(*) FROM works`).Scan(&n); err != nil {
		return 0, fmt.Errorf("counting works: %w", err)
	}
	return n, nil
}

// Stats summarizes the cache.
func (d *DB) Stats() (Stats, error) {
	var s Stats
	var oldest, newest sql.NullInt64
	err := d.db.QueryRow(`
		SELECT COUNT(*), COALESCE(SUM(has_author), 0), COALESCE(SUM(has_inst), 0),
			MIN(fetched_at), MAX(fetched_at)
		FROM works`).Scan(&s.Works, &s.WithAuthor, &s.WithInstitution, &oldest, &newest)
	if err != nil {
		return Stats{}, fmt.Errorf("reading cache stats: %w", err)
	}
	if oldest.Valid {
		s.OldestFetchedAt = time.Unix(oldest.Int64, 0).UTC()
	}
	if newest.Valid {
		s.NewestFetchedAt = time.Unix(newest.Int64, 0).UTC()
	}
	return s, nil
}

// Clear removes every cached work and returns how many were removed.
func (d *DB) Clear() (int, error) {
	res, err := d.db.Exec(`DELETE FROM works`)
	if err != nil {
		return 0, fmt.Errorf("clearing works: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("clearing works: %w", err)
	}
	return int(n), nil
}

// scanner is implemented by *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

func scanWork(s scanner) (*CachedWork, error) {
	var (
		w                                  CachedWork
		fetchedAt                          int64
		hasAuthor, hasInst                 int
		aName, aORCID, aID, aNorm          sql.NullString
		iName, iID, iCountry, iType, iNorm sql.NullString
	)
	err := s.Scan(&w.WorkID, &fetchedAt,
		&aName, &aORCID, &aID, &aNorm,
		&iName, &iID, &iCountry, &iType, &iNorm,
		&hasAuthor, &hasInst)
	if err != nil {
		return nil, err
	}

	w.FetchedAt = time.Unix(fetchedAt, 0).UTC()
	if hasAuthor != 0 {
		w.Author = &node.Author{
			Name:             aName.String,
			ORCID:            aORCID.String,
			OpenAlexAuthorID: aID.String,
			NormName:         aNorm.String,
		}
	}
	if hasInst != 0 {
		w.Institution = &node.Institution{
			Name:                  iName.String,
			OpenAlexInstitutionID: iID.String,
			Country:               iCountry.String,
			Type:                  iType.String,
			NormName:              iNorm.String,
		}
	}
	return &w, nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
