// Package xpath provides paths addressing a location inside an entry tree.
//
// A path is a sequence of segments. Each segment is either a key into an
// object or an index into an array:
//   - "a/b"      → key "a", then key "b"
//   - "a[0]"     → key "a", then index 0
//   - "a/0"      → same as "a[0]" (a bare integer is an index)
//   - "[2]/x"    → index 2, then key "x"
//   - "'0'/a b"  → key "0" (quoted so it is not read as an index), then key "a b"
//   - ""         → the empty path, addressing the node itself
//
// Keys are quoted with single quotes when they are empty, consist only of
// digits, or contain one of / [ ] ' " \. Parse(p.String()) always yields a
// path equal to p.
//
// # Usage
//
//	p, err := xpath.Parse("servers[0]/name")
//	parent := p.Parent() // servers[0]
//	last := p.Last()     // key "name"
//	q := parent.Append(xpath.Key("port"))
package xpath
