package sqlitedb

import (
	"database/sql"
	"fmt"

	"github.com/RoaringBitmap/roaring"
	"github.com/google/uuid"
	"github.com/ohler55/ojg/oj"
	"github.com/signadot/spdb/debug"
	"github.com/signadot/spdb/entry"
	"github.com/signadot/spdb/jsonany"
)

// Save writes the tree held by Self to the database at locator. Saving
// to the locator last loaded or saved is incremental; saving elsewhere
// replaces all rows.
func (d *DB) Save(locator string) error {
	self := d.Self()
	if k := self.Kind(); k != entry.ObjectTag && k != entry.EmptyTag {
		return fmt.Errorf("%w: sqlite documents hold objects, not %s", entry.ErrTypeMismatch, k)
	}
	db, err := open(locator)
	if err != nil {
		return err
	}
	defer func() { _ = db.Close() }()

	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("begin save: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	cur, err := generation(tx)
	if err != nil {
		return err
	}
	incremental := d.locator == locator
	if incremental && cur != d.gen {
		return fmt.Errorf("%w: %s has generation %s, loaded %s", ErrStaleWrite, locator, cur, d.gen)
	}
	s := &saver{root: self, ids: map[*entry.Entry]uint32{}, written: roaring.New()}
	if incremental {
		s.prev, s.next, s.stored = d.ids, d.next, d.stored
	} else {
		s.prev, s.next, s.stored = map[*entry.Entry]uint32{}, rootID+1, roaring.New()
		if _, err := tx.Exec("DELETE FROM nodes"); err != nil {
			return err
		}
	}

	stmt, err := tx.Prepare("INSERT OR REPLACE INTO nodes (id, parent, key, idx, tag, value) VALUES (?, ?, ?, ?, ?, ?)")
	if err != nil {
		return fmt.Errorf("prepare node insert: %w", err)
	}
	defer func() { _ = stmt.Close() }()

	s.stmt = stmt
	if err := s.save(self, sql.NullInt64{}, sql.NullString{}, sql.NullInt64{}); err != nil {
		return err
	}

	stale := roaring.AndNot(s.stored, s.written)
	if !stale.IsEmpty() {
		del, err := tx.Prepare("DELETE FROM nodes WHERE id = ?")
		if err != nil {
			return err
		}
		defer func() { _ = del.Close() }()
		for it := stale.Iterator(); it.HasNext(); {
			if _, err := del.Exec(it.Next()); err != nil {
				return err
			}
		}
	}

	gen := uuid.New().String()
	if _, err := tx.Exec("INSERT OR REPLACE INTO meta (key, value) VALUES ('generation', ?)", gen); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit save: %w", err)
	}

	// state only moves once the rows are committed
	d.locator = locator
	d.ids = s.ids
	d.next = s.next
	d.stored = s.written
	d.gen = gen
	if debug.Backend() {
		debug.Logf("sqlite: saved %d nodes to %s, deleted %d\n", s.written.GetCardinality(), locator, stale.GetCardinality())
	}
	d.log.Debug("saved sqlite", "path", locator, "nodes", s.written.GetCardinality(),
		"deleted", stale.GetCardinality(), "incremental", incremental, "generation", gen)
	return nil
}

type saver struct {
	stmt    *sql.Stmt
	root    *entry.Entry
	ids     map[*entry.Entry]uint32
	written *roaring.Bitmap

	// ids and rows of the previous save, if incremental
	prev   map[*entry.Entry]uint32
	stored *roaring.Bitmap
	next   uint32
}

func (s *saver) id(e *entry.Entry) uint32 {
	if e == s.root {
		return rootID
	}
	if id, ok := s.prev[e]; ok {
		return id
	}
	id := s.next
	s.next++
	return id
}

func (s *saver) save(e *entry.Entry, parent sql.NullInt64, key sql.NullString, idx sql.NullInt64) error {
	id := s.id(e)
	s.ids[e] = id
	s.written.Add(id)

	var value sql.NullString
	tag := e.Kind()
	if e == s.root && tag == entry.EmptyTag {
		tag = entry.ObjectTag
	}
	switch v := e.Value().(type) {
	case entry.Empty, entry.ObjectValue, entry.ArrayValue:
	case entry.Reference:
		t := v.Target()
		if t == nil || t.Released() {
			return fmt.Errorf("%w: dangling reference at %q", entry.ErrNotFound, e.Path())
		}
		base, tp := s.root.Path(), t.Path()
		if t.Root() != s.root.Root() || !tp.HasPrefix(base) {
			return fmt.Errorf("%w: %q refers to %q", jsonany.ErrExternalReference, e.Path(), tp)
		}
		value = sql.NullString{String: tp.Slice(base.Len(), tp.Len()).String(), Valid: true}
	default:
		a, err := jsonany.ToAny(e)
		if err != nil {
			return err
		}
		value = sql.NullString{String: oj.JSON(a, &oj.Options{Sort: true}), Valid: true}
	}
	tagText, _ := tag.MarshalText()
	if _, err := s.stmt.Exec(id, parent, key, idx, string(tagText), value); err != nil {
		return fmt.Errorf("write node %q: %w", e.Path(), err)
	}

	me := sql.NullInt64{Int64: int64(id), Valid: true}
	switch v := e.Value().(type) {
	case entry.ObjectValue:
		for it := range v.Object.Items() {
			if err := s.save(it.Entry, me, sql.NullString{String: it.Key, Valid: true}, sql.NullInt64{}); err != nil {
				return err
			}
		}
	case entry.ArrayValue:
		i := 0
		for c := range v.Array.Children() {
			if err := s.save(c, me, sql.NullString{}, sql.NullInt64{Int64: int64(i), Valid: true}); err != nil {
				return err
			}
			i++
		}
	}
	return nil
}
