// Package tmod reads TMOD mod packages and extracts the files they contain.
//
// A container is a fixed header (magic "TMOD", format version, SHA-1 hash,
// signature, package name and version), a file table, and the file payloads
// stored back to back in table order. Payloads whose stored size differs from
// their uncompressed size are raw deflate streams.
//
// # Quick Start
//
// Extract a package from disk:
//
//	archive, err := tmod.Open("ExampleMod.tmod")
//	if err != nil {
//	    return err
//	}
//	defer archive.Close()
//	fmt.Println(archive.Header().Name, archive.Header().Version)
//	stats, err := archive.Extract("./out")
//
// Archives opened from a file or another [ByteSource] extract entries
// concurrently. Archives read from a plain [io.Reader] with [NewReader]
// consume the stream once, strictly in order.
//
// # Entry names
//
// Entry names are slash-separated paths. By default a name that would
// resolve outside the output directory fails with [ErrUnsafePath]; use
// [ExtractWithAllowUnsafePaths] to write such names anyway.
package tmod
