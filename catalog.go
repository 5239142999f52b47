package hdpic

import (
	"database/sql"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/opencontainers/go-digest"
)

// Catalog is a SQLite database recording every group file produced.
type Catalog struct {
	db *sql.DB
}

// Conversion is a single group file recorded in the catalog.
type Conversion struct {
	ID      int64
	Source  digest.Digest
	Prefix  Prefix
	Output  string
	Created time.Time
	Entries []Entry
}

// Entry is a single appvar inside a recorded group file.
type Entry struct {
	Name string
	Size int
}

// OpenCatalog opens or creates the catalog database in file
func OpenCatalog(file string) (*Catalog, error) {
	db, err := sql.Open("sqlite3", fmt.Sprintf("%s?_foreign_keys=on", file))
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(1)

	if _, err = db.Exec("CREATE TABLE IF NOT EXISTS conversion (id INTEGER PRIMARY KEY NOT NULL, digest TEXT NOT NULL, prefix TEXT NOT NULL, output TEXT NOT NULL, created INTEGER NOT NULL)"); err != nil {
		db.Close()
		return nil, err
	}

	if _, err = db.Exec("CREATE TABLE IF NOT EXISTS entry (conversion_id INTEGER NOT NULL, position INTEGER NOT NULL, name TEXT NOT NULL, size INTEGER NOT NULL, PRIMARY KEY(conversion_id, position), FOREIGN KEY(conversion_id) REFERENCES conversion(id))"); err != nil {
		db.Close()
		return nil, err
	}

	return &Catalog{
		db: db,
	}, nil
}

// Close closes the underlying database
func (c *Catalog) Close() error {
	return c.db.Close()
}

// Record stores a conversion of the source with the given digest along with
// every entry in the group file in order.
func (c *Catalog) Record(source digest.Digest, prefix Prefix, output string, entries []Entry) (int64, error) {
	if err := source.Validate(); err != nil {
		return 0, err
	}

	tx, err := c.db.Begin()
	if err != nil {
		return 0, err
	}
	defer tx.Rollback()

	result, err := tx.Exec("INSERT INTO conversion (digest, prefix, output, created) VALUES (?, ?, ?, ?)", source.String(), string(prefix), output, time.Now().Unix())
	if err != nil {
		return 0, err
	}
	id, err := result.LastInsertId()
	if err != nil {
		return 0, err
	}

	for i, e := range entries {
		if _, err := tx.Exec("INSERT INTO entry (conversion_id, position, name, size) VALUES (?, ?, ?, ?)", id, i, e.Name, e.Size); err != nil {
			return 0, err
		}
	}

	return id, tx.Commit()
}

// FindByDigest returns every conversion of the source with the given digest,
// oldest first.
func (c *Catalog) FindByDigest(source digest.Digest) ([]Conversion, error) {
	rows, err := c.db.Query("SELECT id, prefix, output, created FROM conversion WHERE digest = ? ORDER BY id", source.String())
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var conversions []Conversion
	for rows.Next() {
		var (
			conv    Conversion
			prefix  string
			created int64
		)
		if err := rows.Scan(&conv.ID, &prefix, &conv.Output, &created); err != nil {
			return nil, err
		}
		conv.Source = source
		conv.Prefix = Prefix(prefix)
		conv.Created = time.Unix(created, 0)
		conversions = append(conversions, conv)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i := range conversions {
		if conversions[i].Entries, err = c.entries(conversions[i].ID); err != nil {
			return nil, err
		}
	}

	return conversions, nil
}

func (c *Catalog) entries(id int64) ([]Entry, error) {
	rows, err := c.db.Query("SELECT name, size FROM entry WHERE conversion_id = ? ORDER BY position", id)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var e Entry
		if err := rows.Scan(&e.Name, &e.Size); err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}
