// Package entry provides a hierarchical tree of typed values.
//
// An Entry holds one Value: Empty, a Reference to another entry, a binary
// Block, a keyed Object, an indexed Array, a Scalar or an application
// Extension. Entries are promoted from Empty on first write and only
// return to Empty through Clear.
//
// Objects and Arrays are interfaces so that storage backends can provide
// their own containers; MemObject and MemArray are the in-memory
// defaults. Entries are addressed with paths from package
// [github.com/signadot/spdb/entry/xpath].
//
// Entries are not safe for concurrent mutation.
package entry
