// Package sqlitedb stores trees in SQLite databases, one row per node.
//
// A DB remembers the ids of the nodes it loaded. Saving back to the same
// database rewrites the rows of live nodes and deletes the rows of nodes
// which were erased since, instead of rewriting the whole table. Each save
// records a new generation id; a save whose database was written by
// someone else after it was loaded fails with ErrStaleWrite.
package sqlitedb

import (
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/RoaringBitmap/roaring"
	"github.com/signadot/spdb/backend"
	"github.com/signadot/spdb/entry"
	_ "modernc.org/sqlite"
)

const Name = "sqlite"

const rootID = 0

var ErrStaleWrite = errors.New("database changed since it was loaded")

const schema = `
CREATE TABLE IF NOT EXISTS meta (
	key TEXT PRIMARY KEY,
	value TEXT NOT NULL
);
CREATE TABLE IF NOT EXISTS nodes (
	id INTEGER PRIMARY KEY,
	parent INTEGER,
	key TEXT,
	idx INTEGER,
	tag TEXT NOT NULL,
	value TEXT
);
CREATE INDEX IF NOT EXISTS nodes_parent ON nodes(parent);
`

type Option func(*DB)

func WithLogger(l *slog.Logger) Option {
	return func(d *DB) { d.log = l }
}

// DB is an in-memory object loaded from and saved to a SQLite file.
type DB struct {
	*entry.MemObject
	log *slog.Logger

	// state of the last Load or Save
	locator string
	gen     string
	ids     map[*entry.Entry]uint32
	next    uint32
	stored  *roaring.Bitmap
}

func New(self *entry.Entry, opts ...Option) *DB {
	d := &DB{MemObject: entry.NewObject(self)}
	for _, opt := range opts {
		opt(d)
	}
	if d.log == nil {
		d.log = slog.Default()
	}
	d.reset("")
	return d
}

func Factory(opts ...Option) backend.ObjectFactory {
	return func(self *entry.Entry) (backend.Backend, error) {
		return New(self, opts...), nil
	}
}

// Register adds the sqlite backend to reg, also claiming ".db",
// ".sqlite" and ".sqlite3" files.
func Register(reg *backend.Registry, opts ...Option) error {
	return reg.Register(Name, Factory(opts...), backend.WithPatterns(`\.db$`, `\.sqlite3?$`))
}

func (d *DB) reset(locator string) {
	d.locator = locator
	d.gen = ""
	d.ids = map[*entry.Entry]uint32{}
	d.next = rootID + 1
	d.stored = roaring.New()
}

// Generation returns the generation id read or written by the last Load
// or Save.
func (d *DB) Generation() string { return d.gen }

func open(locator string) (*sql.DB, error) {
	if locator == "" {
		return nil, errors.New("sqlite: empty database path")
	}
	db, err := sql.Open("sqlite", locator)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", locator, err)
	}
	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("create tables in %s: %w", locator, err)
	}
	return db, nil
}

type querier interface {
	QueryRow(query string, args ...any) *sql.Row
}

func generation(q querier) (string, error) {
	var gen string
	err := q.QueryRow("SELECT value FROM meta WHERE key = 'generation'").Scan(&gen)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	return gen, err
}
