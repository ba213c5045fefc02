// Command tmod-unpack extracts the files stored in a TMOD mod package.
//
// Usage:
//
//	tmod-unpack [flags] <input file> <output directory>
//
// The input may be a local path, an http(s) URL served with range support,
// or "-" for standard input. The output directory is created if missing.
// Log verbosity is read from TMOD_LOG (trace, debug, info, warn, error).
package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	tmod "github.com/campbellcole/tmod-unpacker"
	tmodhttp "github.com/campbellcole/tmod-unpacker/http"
)

const usageText = `Usage: tmod-unpack [flags] <input file> <output directory>

Extracts every file stored in a TMOD mod package.

The input may be a local path, an http(s) URL, or "-" for standard input.
Set TMOD_LOG to trace, debug, info, warn, or error to change log verbosity.

Flags:
`

type config struct {
	input        string
	output       string
	workers      int
	verify       bool
	allowUnsafe  bool
	direct       bool
	manifestPath string
	profilePath  string
	quiet        bool
}

func main() {
	os.Exit(run(os.Args[1:], os.Stdin, os.Stdout, os.Stderr, os.Getenv))
}

// run executes the command and returns the process exit code.
func run(args []string, stdin io.Reader, stdout, stderr io.Writer, getenv func(string) string) int {
	var cfg config
	fs := newFlagSet(&cfg)
	switch err := parseArgs(fs, args, &cfg); {
	case errors.Is(err, flag.ErrHelp):
		printUsage(stdout, fs)
		return 0
	case isUsageError(err):
		fmt.Fprintf(stderr, "error: %v\n\n", err)
		printUsage(stderr, fs)
		return 2
	}

	level, err := parseLevel(getenv("TMOD_LOG"))
	if err != nil {
		fmt.Fprintf(stderr, "error: %v\n", err)
		return 1
	}
	// Log lines go through the progress printer, which ends an open
	// progress line first.
	var progress *progressPrinter
	logOut := stderr
	if !cfg.quiet {
		progress = newProgressPrinter(stderr)
		logOut = progress
	}
	logger := newLogger(logOut, level)

	if err := unpack(cfg, stdin, progress, logger); err != nil {
		fmt.Fprintf(stderr, "error: %v\n", err)
		return 1
	}
	return 0
}

func newFlagSet(cfg *config) *flag.FlagSet {
	fs := flag.NewFlagSet("tmod-unpack", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	fs.IntVar(&cfg.workers, "workers", 0, "concurrent extraction workers (0 = GOMAXPROCS, <0 = serial)")
	fs.BoolVar(&cfg.verify, "verify", false, "verify the header hash and data length before extracting")
	fs.BoolVar(&cfg.allowUnsafe, "allow-unsafe-paths", false, "write entries whose names escape the output directory")
	fs.BoolVar(&cfg.direct, "direct", false, "write files in place instead of through temp files")
	fs.StringVar(&cfg.manifestPath, "manifest", "", "write a sha256 manifest of extracted files to `file`")
	fs.StringVar(&cfg.profilePath, "profile", "", "write a wall-clock pprof profile of the run to `file`")
	fs.BoolVar(&cfg.quiet, "quiet", false, "disable progress output")
	return fs
}

// parseArgs parses flags and the two positional arguments into cfg.
// It returns flag.ErrHelp for -h and --help, and a usageError for
// anything else the caller got wrong.
func parseArgs(fs *flag.FlagSet, args []string, cfg *config) error {
	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return err
		}
		return usageError{err: err}
	}

	rest := fs.Args()
	if len(rest) > 0 && (rest[0] == "-h" || rest[0] == "--help") {
		return flag.ErrHelp
	}
	switch len(rest) {
	case 0:
		return usageError{err: errors.New("missing input file")}
	case 1:
		return usageError{err: errors.New("missing output directory")}
	case 2:
	default:
		return usageError{err: fmt.Errorf("unexpected argument %q", rest[2])}
	}
	cfg.input = rest[0]
	cfg.output = rest[1]
	return nil
}

func printUsage(w io.Writer, fs *flag.FlagSet) {
	fmt.Fprint(w, usageText)
	fs.SetOutput(w)
	fs.PrintDefaults()
	fs.SetOutput(io.Discard)
}

// unpack opens the input and extracts it into cfg.output.
// progress may be nil.
func unpack(cfg config, stdin io.Reader, progress *progressPrinter, logger *slog.Logger) (err error) {
	if cfg.profilePath != "" {
		stop, perr := startProfile(cfg.profilePath)
		if perr != nil {
			return perr
		}
		defer func() {
			err = errors.Join(err, stop())
		}()
	}

	opts := []tmod.Option{
		tmod.WithLogger(logger),
		tmod.WithVerifyHash(cfg.verify),
	}
	if progress != nil {
		defer progress.finish()
		opts = append(opts, tmod.WithProgress(progress.update))
	}

	a, err := openInput(cfg.input, stdin, opts)
	if err != nil {
		return err
	}
	defer a.Close() //nolint:errcheck // read-only input

	stats, err := a.Extract(cfg.output,
		tmod.ExtractWithWorkers(cfg.workers),
		tmod.ExtractWithAllowUnsafePaths(cfg.allowUnsafe),
		tmod.ExtractWithDirectWrites(cfg.direct),
	)
	if err != nil {
		return err
	}

	if cfg.manifestPath != "" {
		if err := writeManifest(cfg.manifestPath, stats.Files); err != nil {
			return err
		}
	}
	return nil
}

// openInput opens a local file, an HTTP(S) URL, or standard input for "-".
func openInput(input string, stdin io.Reader, opts []tmod.Option) (*tmod.Archive, error) {
	switch {
	case input == "-":
		return tmod.NewReader(stdin, opts...)
	case strings.HasPrefix(input, "http://"), strings.HasPrefix(input, "https://"):
		src, err := tmodhttp.NewSource(input, tmodhttp.WithConditionalHeaders())
		if err != nil {
			return nil, err
		}
		return tmod.OpenSource(src, opts...)
	default:
		return tmod.Open(input, opts...)
	}
}
