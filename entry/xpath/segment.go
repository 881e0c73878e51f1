package xpath

import (
	"strconv"
	"strings"
)

// Segment is one step of a Path: either a Key or an Index.
type Segment struct {
	key     string
	index   int
	isIndex bool
}

// Key returns a key segment.
func Key(k string) Segment {
	return Segment{key: k}
}

// Index returns an index segment.
func Index(i int) Segment {
	return Segment{index: i, isIndex: true}
}

func (s Segment) IsIndex() bool { return s.isIndex }
func (s Segment) IsKey() bool   { return !s.isIndex }

// Key returns the key of a key segment, or "" for an index segment.
func (s Segment) Key() string { return s.key }

// Index returns the index of an index segment, or 0 for a key segment.
func (s Segment) Index() int { return s.index }

// String returns the segment as it appears in a path, without a separator.
func (s Segment) String() string {
	if s.isIndex {
		return "[" + strconv.Itoa(s.index) + "]"
	}
	if needsQuote(s.key) {
		return quoteKey(s.key)
	}
	return s.key
}

func compareSegment(a, b Segment) int {
	if a.isIndex != b.isIndex {
		if a.isIndex {
			return -1
		}
		return 1
	}
	if a.isIndex {
		switch {
		case a.index < b.index:
			return -1
		case a.index > b.index:
			return 1
		}
		return 0
	}
	return strings.Compare(a.key, b.key)
}

func needsQuote(k string) bool {
	if k == "" || isDigits(k) {
		return true
	}
	return strings.ContainsAny(k, `/[]'"\`)
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}

func quoteKey(k string) string {
	var b strings.Builder
	b.Grow(len(k) + 2)
	b.WriteByte('\'')
	for i := 0; i < len(k); i++ {
		c := k[i]
		if c == '\'' || c == '\\' {
			b.WriteByte('\\')
		}
		b.WriteByte(c)
	}
	b.WriteByte('\'')
	return b.String()
}
