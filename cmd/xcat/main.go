// Package main concatenates files through buffered streams.
//
// Examples:
//
//	xcat a.txt b.txt
//	xcat -header '==> %s <==\n' *.log
//	xcat -buffer none -digest big.bin > copy.bin
//	xcat -stats table notes.md
//
// Notes:
// - "-" reads standard input.
// - -header is a printf format; each file gets its path as argument 1 and
//   its 1-based index as argument 2, so '%2$d: %1$s\n' works.
// - Stream sizes come from STDIO_* environment variables unless -config
//   names a YAML file.
package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/bjaus/stdio"
	"github.com/bjaus/stdio/report"
	"github.com/cespare/xxhash/v2"
)

type xcatFlags struct {
	header  string
	buffer  string
	digest  bool
	stats   string
	config  string
	verbose bool
	files   []string
}

func main() {
	flags := parseFlags()

	cfg, err := loadConfig(flags.config)
	if err != nil {
		fmt.Fprintf(os.Stderr, "xcat: %v\n", err)
		os.Exit(2)
	}

	level := slog.LevelWarn
	if flags.verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

	reg, err := stdio.NewRegistry(stdio.WithConfig(cfg), stdio.WithLogger(logger))
	if err != nil {
		fmt.Fprintf(os.Stderr, "xcat: %v\n", err)
		os.Exit(2)
	}

	runErr := run(flags, reg, reg.Stdout(), os.Stderr)
	if err := reg.CloseAll(); err != nil && runErr == nil {
		runErr = err
	}
	if runErr != nil {
		logger.Error("xcat failed", "error", runErr)
		os.Exit(1)
	}
}

func parseFlags() *xcatFlags {
	flags := &xcatFlags{}

	flag.Usage = func() {
		out := flag.CommandLine.Output()
		fmt.Fprint(out, `xcat - concatenate files through buffered streams

USAGE
  xcat [options] [file ...]

OPTIONS (all flags)
`)
		flag.CommandLine.PrintDefaults()
		fmt.Fprintln(out)
	}

	flag.StringVar(&flags.header, "header", "", "printf format written before each file (args: path, index)")
	flag.StringVar(&flags.buffer, "buffer", "", "stdout buffering: full | line | none (default: by device)")
	flag.BoolVar(&flags.digest, "digest", false, "print the xxhash64 of everything written to stderr")
	flag.StringVar(&flags.stats, "stats", "", "print stream statistics to stderr in this format (table, json, yaml, csv, tsv, markdown, plain)")
	flag.StringVar(&flags.config, "config", "", "YAML config file (default: environment)")
	flag.BoolVar(&flags.verbose, "v", false, "debug logging")
	flag.Parse()

	flags.files = flag.Args()
	if len(flags.files) == 0 {
		flags.files = []string{"-"}
	}
	return flags
}

func loadConfig(path string) (stdio.Config, error) {
	if path != "" {
		return stdio.LoadConfigFile(path)
	}
	return stdio.LoadConfig()
}

func parseBuffer(s string) (stdio.BufferMode, error) {
	for _, m := range []stdio.BufferMode{stdio.FullyBuffered, stdio.LineBuffered, stdio.Unbuffered} {
		if m.String() == s {
			return m, nil
		}
	}
	return 0, fmt.Errorf("unknown -buffer %q (want full, line or none)", s)
}

// run copies every input to out. Statistics and the digest go to errOut.
func run(flags *xcatFlags, reg *stdio.Registry, out *stdio.Stream, errOut io.Writer) error {
	if out == nil {
		return errors.New("no output stream")
	}
	if flags.buffer != "" {
		mode, err := parseBuffer(flags.buffer)
		if err != nil {
			return err
		}
		if err := out.SetBuffer(nil, mode); err != nil {
			return fmt.Errorf("set buffer: %w", err)
		}
	}
	var format report.Format
	if flags.stats != "" {
		f, err := report.ParseFormat(flags.stats)
		if err != nil {
			return err
		}
		format = f
	}

	dst := out
	var hash *xxhash.Digest
	if flags.digest {
		hash = xxhash.New()
		tee, err := reg.OpenFuncs(nil, func(p []byte) (int, error) {
			_, _ = hash.Write(p)
			return out.Write(p)
		})
		if err != nil {
			return err
		}
		dst = tee
	}

	buf := make([]byte, reg.Config().BufferSize)
	for i, path := range flags.files {
		if flags.header != "" {
			if _, err := dst.Printf(flags.header, path, i+1); err != nil {
				return fmt.Errorf("header for %s: %w", path, err)
			}
		}
		if err := copyFile(reg, dst, path, buf); err != nil {
			return err
		}
	}

	if format != "" {
		if err := report.Write(errOut, format, reg.Snapshot(), report.WithTitle("streams")); err != nil {
			return err
		}
	}
	if err := dst.Flush(); err != nil {
		return err
	}
	if dst != out {
		if err := dst.Close(); err != nil {
			return err
		}
	}
	if hash != nil {
		line, err := stdio.Sprintf("xxh64 %016x\n", hash.Sum64())
		if err != nil {
			return err
		}
		if _, err := io.WriteString(errOut, line); err != nil {
			return err
		}
	}
	return out.Flush()
}

func copyFile(reg *stdio.Registry, dst *stdio.Stream, path string, buf []byte) error {
	src := reg.Stdin()
	if path != "-" {
		s, err := reg.OpenFile(path, "r")
		if err != nil {
			return err
		}
		defer s.Close()
		src = s
	}
	if src == nil {
		return errors.New("standard input unavailable")
	}
	for {
		n, err := src.Read(buf)
		if n > 0 {
			if _, werr := dst.Write(buf[:n]); werr != nil {
				return fmt.Errorf("write: %w", werr)
			}
		}
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("read %s: %w", path, err)
		}
	}
}
