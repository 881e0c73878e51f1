package cursor

import (
	"slices"
	"strconv"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestMapCollect(t *testing.T) {
	c := Map(FromSlice([]int{1, 2, 3}), strconv.Itoa)
	got := Collect(c)
	if diff := cmp.Diff([]string{"1", "2", "3"}, got); diff != "" {
		t.Errorf("mismatch (-want +got):\n%s", diff)
	}
	// ranging again restarts
	if diff := cmp.Diff([]string{"1", "2", "3"}, Collect(c)); diff != "" {
		t.Errorf("second pass mismatch (-want +got):\n%s", diff)
	}
}

func TestCombinators(t *testing.T) {
	tests := []struct {
		name string
		c    Cursor[int]
		want []int
	}{
		{name: "empty", c: Empty[int](), want: nil},
		{name: "single", c: Single(7), want: []int{7}},
		{name: "filter", c: Filter(FromSlice([]int{1, 2, 3, 4}), func(i int) bool { return i%2 == 0 }), want: []int{2, 4}},
		{name: "concat", c: Concat(Single(1), FromSlice([]int{2, 3})), want: []int{1, 2, 3}},
		{name: "take", c: Take(FromSlice([]int{1, 2, 3}), 2), want: []int{1, 2}},
		{name: "take zero", c: Take(FromSlice([]int{1, 2, 3}), 0), want: nil},
		{name: "from seq", c: FromSeq(slices.Values([]int{5, 6})), want: []int{5, 6}},
		{name: "nil seq", c: FromSeq[int](nil), want: nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if diff := cmp.Diff(tt.want, Collect(tt.c)); diff != "" {
				t.Errorf("mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestEarlyStop(t *testing.T) {
	n := 0
	for v := range FromSlice([]int{1, 2, 3, 4}) {
		n += v
		if v == 2 {
			break
		}
	}
	if n != 3 {
		t.Errorf("got %d, want 3", n)
	}
}

func TestFirstCount(t *testing.T) {
	if v, ok := First(FromSlice([]string{"a", "b"})); !ok || v != "a" {
		t.Errorf("First = %q, %v", v, ok)
	}
	if _, ok := First(Empty[string]()); ok {
		t.Errorf("First on empty returned ok")
	}
	if n := Count(FromSlice([]int{1, 2, 3})); n != 3 {
		t.Errorf("Count = %d", n)
	}
	var nilCursor Cursor[int]
	if n := Count(nilCursor); n != 0 {
		t.Errorf("Count(nil) = %d", n)
	}
}
