// Package container reads the header and file table of a TMOD container.
//
// Layout, all integers little-endian:
//
//	magic          4 bytes "TMOD"
//	format version string
//	hash           20 bytes (SHA-1 of everything after the data length)
//	signature      256 bytes
//	data length    uint32
//	name           string
//	version        string
//	entry count    int32
//	entries        count × (name string, uncompressed int32, compressed int32)
//	payloads       back to back, in table order
//
// Strings are a 7-bit-group length prefix followed by UTF-8 bytes.
package container
