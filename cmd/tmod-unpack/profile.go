package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/felixge/fgprof"
)

// startProfile records a wall-clock profile in pprof format to path.
// The returned stop function writes the profile and closes the file.
func startProfile(path string) (func() error, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("create profile: %w", err)
	}
	stop := fgprof.Start(f, fgprof.FormatPprof)
	return func() error {
		err := stop()
		if cerr := f.Close(); cerr != nil {
			err = errors.Join(err, cerr)
		}
		if err != nil {
			return fmt.Errorf("write profile: %w", err)
		}
		return nil
	}, nil
}
