// Package cursor provides a uniform lazy sequence over container elements.
//
// Containers with different native storage (a sorted map, a slice, rows of
// a database) all hand out a [Cursor], so callers never see the backend's
// own iteration type.
//
// # Usage
//
//	for child := range obj.Children() {
//		...
//	}
//
//	// project key/entry pairs down to keys
//	keys := cursor.Collect(cursor.Map(obj.Items(), func(it entry.Item) string { return it.Key }))
//
// A cursor is single pass per range statement but may be ranged again,
// which restarts it. Mutating the backing container while a cursor is in
// use gives unspecified results.
package cursor
