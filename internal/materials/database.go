// Package materials reads and writes the local materials database, a SQLite
// file with one row per material entry.
package materials

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/agentic-research/nomadkit/internal/docpath"
	"github.com/ohler55/ojg/oj"
	_ "modernc.org/sqlite"
)

const schema = `
CREATE TABLE IF NOT EXISTS entries (
	id      INTEGER PRIMARY KEY,
	mid     TEXT NOT NULL UNIQUE,
	archive TEXT
);`

// ErrNoArchive is returned by Archive for entries stored without one.
var ErrNoArchive = errors.New("entry has no archive")

// Entry is one material of the database.
type Entry struct {
	// MID identifies the material, e.g. "ZrTe2-f7ad606317e6".
	MID string
	// HasArchive reports whether an Archive Service response is stored.
	HasArchive bool
}

// Database is an open materials database.
type Database struct {
	db   *sql.DB
	path string
}

// Open opens filename inside dir for reading. An absolute filename is used
// as is. The file must exist.
func Open(filename, dir string) (*Database, error) {
	path := filename
	if !filepath.IsAbs(filename) {
		path = filepath.Join(dir, filename)
	}
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("open materials database: %w", err)
	}

	// The pragma in the DSN applies to every pooled connection.
	db, err := sql.Open("sqlite", "file:"+path+"?_pragma=query_only(1)")
	if err != nil {
		return nil, fmt.Errorf("open sqlite %s: %w", path, err)
	}
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("open sqlite %s: %w", path, err)
	}
	return &Database{db: db, path: path}, nil
}

// Create opens path for writing, creating the file and schema if needed.
func Create(path string) (*Database, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite %s: %w", path, err)
	}
	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("create schema: %w", err)
	}
	return &Database{db: db, path: path}, nil
}

// Path returns the database file path.
func (d *Database) Path() string { return d.path }

// Close closes the database.
func (d *Database) Close() error {
	return d.db.Close()
}

// Each calls fn for every entry in insertion order. Rows are streamed, so
// only one entry is alive at a time. An error from fn stops the iteration.
func (d *Database) Each(fn func(Entry) error) error {
	rows, err := d.db.Query("SELECT mid, archive IS NOT NULL FROM entries ORDER BY id")
	if err != nil {
		return fmt.Errorf("query entries: %w", err)
	}
	defer func() { _ = rows.Close() }() // safe to ignore

	for rows.Next() {
		var e Entry
		if err := rows.Scan(&e.MID, &e.HasArchive); err != nil {
			return fmt.Errorf("scan row: %w", err)
		}
		if err := fn(e); err != nil {
			return err
		}
	}
	return rows.Err()
}

// IDs returns the mids of all entries in insertion order.
func (d *Database) IDs() ([]string, error) {
	var ids []string
	err := d.Each(func(e Entry) error {
		ids = append(ids, e.MID)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return ids, nil
}

// Archive returns the stored Archive Service response of mid.
func (d *Database) Archive(mid string) (docpath.Node, error) {
	var raw sql.NullString
	err := d.db.QueryRow("SELECT archive FROM entries WHERE mid = ?", mid).Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("entry %s: not found", mid)
	}
	if err != nil {
		return nil, fmt.Errorf("entry %s: %w", mid, err)
	}
	if !raw.Valid {
		return nil, fmt.Errorf("entry %s: %w", mid, ErrNoArchive)
	}
	doc, err := docpath.Parse([]byte(raw.String))
	if err != nil {
		return nil, fmt.Errorf("entry %s: %w", mid, err)
	}
	return doc, nil
}

// Put inserts mid or replaces its archive. A nil archive stores the id only.
func (d *Database) Put(mid string, archive docpath.Node) error {
	if mid == "" {
		return fmt.Errorf("put: empty mid")
	}
	var raw any
	if archive != nil {
		raw = oj.JSON(archive.Value(), &oj.Options{Sort: true})
	}
	_, err := d.db.Exec(`INSERT INTO entries (mid, archive) VALUES (?, ?)
		ON CONFLICT(mid) DO UPDATE SET archive = excluded.archive`, mid, raw)
	if err != nil {
		return fmt.Errorf("put %s: %w", mid, err)
	}
	return nil
}

// FormatIDs renders ids one per line, preceded by a "# comment" header line
// when comment is set.
func FormatIDs(ids []string, comment *string) string {
	var b strings.Builder
	if comment != nil {
		b.WriteString("# ")
		b.WriteString(*comment)
		b.WriteString("\n")
	}
	b.WriteString(strings.Join(ids, "\n"))
	return b.String()
}
