package main

import (
	"bufio"
	"fmt"
	"os"

	tmod "github.com/campbellcole/tmod-unpacker"
)

// writeManifest writes one "<sha256 hex>  <name>" line per extracted file,
// in the format sha256sum -c accepts. When a name was written more than
// once, only the final content is listed.
func writeManifest(path string, files []tmod.ExtractedFile) error {
	last := make(map[string]int, len(files))
	for i, f := range files {
		last[f.Name] = i
	}

	out, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create manifest: %w", err)
	}
	w := bufio.NewWriter(out)
	for i, f := range files {
		if last[f.Name] != i {
			continue
		}
		fmt.Fprintf(w, "%s  %s\n", f.Digest.Encoded(), f.Name)
	}
	if err := w.Flush(); err != nil {
		_ = out.Close() //nolint:errcheck // already failing
		return fmt.Errorf("write manifest: %w", err)
	}
	if err := out.Close(); err != nil {
		return fmt.Errorf("write manifest: %w", err)
	}
	return nil
}
