// Package wire decodes the primitive fields of a TMOD container: little-endian
// integers, raw byte runs, and strings prefixed by a 7-bit-group length.
//
// All reads go through a forward-only [Cursor]; nothing is ever re-read.
package wire
