package debug

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"
)

type debug struct {
	Resolve bool
	Path    bool
	Backend bool
	Patch   bool
	Diff    bool
}

var d *debug

func init() {
	d = &debug{}
	d.Resolve = boolEnv("SPDB_DEBUG_RESOLVE")
	d.Path = boolEnv("SPDB_DEBUG_PATH")
	d.Backend = boolEnv("SPDB_DEBUG_BACKEND")
	d.Patch = boolEnv("SPDB_DEBUG_PATCH")
	d.Diff = boolEnv("SPDB_DEBUG_DIFF")
}

func boolEnv(v string) bool {
	x := os.Getenv(v)
	if x == "" {
		return false
	}
	b, _ := strconv.ParseBool(x)
	return b
}

func Resolve() bool {
	return d.Resolve
}
func Path() bool {
	return d.Path
}
func Backend() bool {
	return d.Backend
}
func Patch() bool {
	return d.Patch
}
func Diff() bool {
	return d.Diff
}

// Logf writes to stderr. Maps, slices and json.Number arguments are
// rendered as indented JSON.
func Logf(msg string, args ...any) {
	for i := range args {
		a := args[i]
		switch a.(type) {
		case map[string]any, []any, json.Number:
			d, err := json.MarshalIndent(a, "   |", "  ")
			if err != nil {
				args[i] = fmt.Sprintf("%v", a)
				continue
			}
			args[i] = string(d)
		default:
		}
	}
	fmt.Fprintf(os.Stderr, msg, args...)
}

func LogAny(v any) {
	d, err := json.Marshal(v)
	if err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", v)
		return
	}
	os.Stderr.Write(d)
}
