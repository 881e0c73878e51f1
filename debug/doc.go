// Package debug holds environment controlled debug switches.
//
// Each switch is read once at startup from an environment variable:
//
//	SPDB_DEBUG_RESOLVE  reference resolution hops
//	SPDB_DEBUG_PATH     path navigation
//	SPDB_DEBUG_BACKEND  backend resolution, load and save
//	SPDB_DEBUG_PATCH    json patch application
//	SPDB_DEBUG_DIFF     tree diffs
//
// Output goes to stderr through Logf.
package debug
