package xpath

import (
	"errors"
	"fmt"
	"slices"
	"strconv"
	"strings"
)

var ErrSyntax = errors.New("path syntax error")

// Path is an immutable sequence of segments. The zero value is the empty
// path.
type Path struct {
	segs []Segment
}

// New returns a path made of segs.
func New(segs ...Segment) Path {
	if len(segs) == 0 {
		return Path{}
	}
	return Path{segs: slices.Clone(segs)}
}

// Len returns the number of segments.
func (p Path) Len() int { return len(p.segs) }

// IsEmpty reports whether p addresses the node it is applied to.
func (p Path) IsEmpty() bool { return len(p.segs) == 0 }

// Segment returns the i'th segment.
func (p Path) Segment(i int) Segment { return p.segs[i] }

// Segments returns a copy of the segments.
func (p Path) Segments() []Segment { return slices.Clone(p.segs) }

// Append returns a new path with segs added at the end.
func (p Path) Append(segs ...Segment) Path {
	res := make([]Segment, 0, len(p.segs)+len(segs))
	res = append(res, p.segs...)
	res = append(res, segs...)
	return Path{segs: res}
}

// Join returns p followed by the segments of q.
func (p Path) Join(q Path) Path {
	return p.Append(q.segs...)
}

// Parent returns p without its last segment. The parent of the empty path
// is the empty path.
func (p Path) Parent() Path {
	if len(p.segs) <= 1 {
		return Path{}
	}
	return Path{segs: p.segs[:len(p.segs)-1 : len(p.segs)-1]}
}

// Last returns the last segment. It panics on the empty path.
func (p Path) Last() Segment {
	return p.segs[len(p.segs)-1]
}

// Slice returns the sub path of segments [from, to).
func (p Path) Slice(from, to int) Path {
	return Path{segs: p.segs[from:to:to]}
}

func (p Path) Equal(o Path) bool {
	return p.Compare(o) == 0
}

// HasPrefix reports whether the first segments of p are q.
func (p Path) HasPrefix(q Path) bool {
	if len(q.segs) > len(p.segs) {
		return false
	}
	for i := range q.segs {
		if compareSegment(p.segs[i], q.segs[i]) != 0 {
			return false
		}
	}
	return true
}

// Compare orders paths segment by segment. Index segments sort before key
// segments and a path sorts before any path it is a prefix of.
func (p Path) Compare(o Path) int {
	n := min(len(p.segs), len(o.segs))
	for i := range n {
		if c := compareSegment(p.segs[i], o.segs[i]); c != 0 {
			return c
		}
	}
	switch {
	case len(p.segs) < len(o.segs):
		return -1
	case len(p.segs) > len(o.segs):
		return 1
	}
	return 0
}

func (p Path) String() string {
	var b strings.Builder
	for i, seg := range p.segs {
		if !seg.isIndex && i > 0 {
			b.WriteByte('/')
		}
		b.WriteString(seg.String())
	}
	return b.String()
}

func (p Path) MarshalText() ([]byte, error) {
	return []byte(p.String()), nil
}

func (p *Path) UnmarshalText(d []byte) error {
	q, err := Parse(string(d))
	if err != nil {
		return err
	}
	*p = q
	return nil
}

// MustParse is like Parse but panics on error.
func MustParse(s string) Path {
	p, err := Parse(s)
	if err != nil {
		panic(err)
	}
	return p
}

// Parse parses the textual form of a path. A single leading '/' is
// accepted and ignored.
func Parse(s string) (Path, error) {
	i := 0
	if strings.HasPrefix(s, "/") {
		i = 1
	}
	var segs []Segment
	for i < len(s) {
		var (
			seg Segment
			n   int
			err error
		)
		if s[i] == '[' {
			seg, n, err = parseIndex(s[i:])
		} else {
			seg, n, err = parseKey(s[i:])
		}
		if err != nil {
			return Path{}, fmt.Errorf("%w at offset %d in %q: %w", ErrSyntax, i, s, err)
		}
		segs = append(segs, seg)
		i += n
		if i == len(s) {
			break
		}
		switch s[i] {
		case '[':
		case '/':
			i++
			if i == len(s) {
				return Path{}, fmt.Errorf("%w: trailing '/' in %q", ErrSyntax, s)
			}
			if s[i] == '/' || s[i] == '[' {
				return Path{}, fmt.Errorf("%w: empty key at offset %d in %q", ErrSyntax, i, s)
			}
		default:
			return Path{}, fmt.Errorf("%w: unexpected %q at offset %d in %q", ErrSyntax, s[i], i, s)
		}
	}
	return Path{segs: segs}, nil
}

func parseIndex(s string) (Segment, int, error) {
	end := strings.IndexByte(s, ']')
	if end < 0 {
		return Segment{}, 0, errors.New("unterminated index")
	}
	n, err := strconv.Atoi(s[1:end])
	if err != nil {
		return Segment{}, 0, fmt.Errorf("bad index %q", s[1:end])
	}
	return Index(n), end + 1, nil
}

func parseKey(s string) (Segment, int, error) {
	if s[0] == '\'' {
		return parseQuotedKey(s)
	}
	end := strings.IndexAny(s, "/[")
	if end < 0 {
		end = len(s)
	}
	k := s[:end]
	if k == "" {
		return Segment{}, 0, errors.New("empty key")
	}
	if strings.ContainsAny(k, `]'"\`) {
		return Segment{}, 0, fmt.Errorf("key %q must be quoted", k)
	}
	if isDigits(k) {
		n, err := strconv.Atoi(k)
		if err != nil {
			return Segment{}, 0, fmt.Errorf("bad index %q", k)
		}
		return Index(n), end, nil
	}
	return Key(k), end, nil
}

func parseQuotedKey(s string) (Segment, int, error) {
	var b strings.Builder
	for i := 1; i < len(s); i++ {
		c := s[i]
		switch c {
		case '\\':
			i++
			if i == len(s) {
				return Segment{}, 0, errors.New("unterminated escape")
			}
			b.WriteByte(s[i])
		case '\'':
			return Key(b.String()), i + 1, nil
		default:
			b.WriteByte(c)
		}
	}
	return Segment{}, 0, errors.New("unterminated quoted key")
}
