package sqlitedb

import (
	"database/sql"
	"fmt"
	"slices"

	"github.com/ohler55/ojg/oj"
	"github.com/signadot/spdb/debug"
	"github.com/signadot/spdb/entry"
	"github.com/signadot/spdb/jsonany"
)

type row struct {
	id     uint32
	parent sql.NullInt64
	key    sql.NullString
	idx    sql.NullInt64
	tag    entry.Tag
	value  sql.NullString
}

// Load replaces the children of d with the tree stored in the database
// at locator. A database without a root row loads as an empty object.
func (d *DB) Load(locator string) error {
	db, err := open(locator)
	if err != nil {
		return err
	}
	defer func() { _ = db.Close() }()

	gen, err := generation(db)
	if err != nil {
		return err
	}
	rows, err := db.Query("SELECT id, parent, key, idx, tag, value FROM nodes")
	if err != nil {
		return fmt.Errorf("query nodes: %w", err)
	}
	defer func() { _ = rows.Close() }()

	children := map[uint32][]*row{}
	var root *row
	var maxID uint32
	for rows.Next() {
		r := &row{}
		var tag string
		if err := rows.Scan(&r.id, &r.parent, &r.key, &r.idx, &tag, &r.value); err != nil {
			return err
		}
		if err := r.tag.UnmarshalText([]byte(tag)); err != nil {
			return fmt.Errorf("node %d: %w", r.id, err)
		}
		maxID = max(maxID, r.id)
		if !r.parent.Valid {
			root = r
			continue
		}
		p := uint32(r.parent.Int64)
		children[p] = append(children[p], r)
	}
	if err := rows.Err(); err != nil {
		return err
	}

	d.Clear()
	d.reset(locator)
	d.gen = gen
	d.next = maxID + 1
	if root == nil {
		return nil
	}
	if root.id != rootID || root.tag != entry.ObjectTag {
		return fmt.Errorf("%w: root node %d is %s", entry.ErrTypeMismatch, root.id, root.tag)
	}
	ld := &loader{d: d, children: children}
	self := d.Self()
	if err := ld.build(root, self); err != nil {
		return err
	}
	if err := ld.resolve(self); err != nil {
		return err
	}
	if debug.Backend() {
		debug.Logf("sqlite: loaded %d nodes from %s generation %s\n", d.stored.GetCardinality(), locator, gen)
	}
	d.log.Debug("loaded sqlite", "path", locator, "nodes", d.stored.GetCardinality(), "generation", gen)
	return nil
}

type loader struct {
	d        *DB
	children map[uint32][]*row
	refs     []*row
	refEnts  []*entry.Entry
}

func (l *loader) build(r *row, e *entry.Entry) error {
	l.d.ids[e] = r.id
	l.d.stored.Add(r.id)
	switch r.tag {
	case entry.EmptyTag:
		return nil
	case entry.ReferenceTag:
		l.refs = append(l.refs, r)
		l.refEnts = append(l.refEnts, e)
		return nil
	case entry.ObjectTag:
		o, err := e.AsObject()
		if err != nil {
			return err
		}
		for _, c := range l.children[r.id] {
			if !c.key.Valid {
				return fmt.Errorf("node %d: object child without key", c.id)
			}
			if err := l.build(c, o.Insert(c.key.String)); err != nil {
				return err
			}
		}
		return nil
	case entry.ArrayTag:
		a, err := e.AsArray()
		if err != nil {
			return err
		}
		kids := slices.Clone(l.children[r.id])
		slices.SortFunc(kids, func(x, y *row) int { return int(x.idx.Int64 - y.idx.Int64) })
		for i, c := range kids {
			if !c.idx.Valid || c.idx.Int64 != int64(i) {
				return fmt.Errorf("node %d: array element %d out of sequence", c.id, i)
			}
			if err := l.build(c, a.PushBack()); err != nil {
				return err
			}
		}
		return nil
	default:
		v, err := oj.ParseString(r.value.String)
		if err != nil {
			return fmt.Errorf("node %d: %w", r.id, err)
		}
		return jsonany.FromAny(v, e)
	}
}

func (l *loader) resolve(root *entry.Entry) error {
	for i, r := range l.refs {
		t, err := root.AtPath(r.value.String)
		if err != nil {
			return fmt.Errorf("node %d: %w", r.id, err)
		}
		if err := l.refEnts[i].SetReference(t); err != nil {
			return err
		}
	}
	return nil
}
