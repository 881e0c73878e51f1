// Package libdiff computes and applies structural differences between
// entry trees.
//
// # Usage
//
//	changes, err := libdiff.Diff(old, cur)
//	err = libdiff.Apply(other, changes)
//	undo := libdiff.Reverse(changes)
//
// A diff is a list of changes, each at a path relative to the diffed
// roots. Object keys are diffed as sequences, arrays by index, and long
// strings are diffed by text so a small edit yields a small change.
package libdiff
