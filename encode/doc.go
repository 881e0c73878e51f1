// Package encode prints entry trees as indented, human readable text.
//
// # Usage
//
//	root, _ := backend.Load("run.json")
//	err := encode.Encode(root, os.Stdout, encode.EncodeColors(encode.NewColors()))
//
// Objects print as "key: value" lines and arrays as "- value" lines.
// Strings are quoted, references print as "-> path" relative to the
// printed root, blocks print their dtype, shape and leading elements, and
// an empty entry prints as "~". The output is meant for people; use a
// backend to write something which can be read back.
package encode
