package main

import (
	"flag"
	"fmt"
	"io"
	"os"
	"runtime"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/ironsheep/colorsquares/internal/detection"
	"github.com/ironsheep/colorsquares/internal/server"
)

// Version information - set by ldflags during build
var (
	Version   = "dev"
	BuildTime = "unknown"
	GitCommit = "unknown"
)

const usage = `squarefind - find and classify colored squares in images

Usage:
  squarefind [options] image...    Detect squares in each image
  squarefind serve [-config file]  Run the MCP server on stdin/stdout
  squarefind version               Print version information
  squarefind help                  Print this help message

Options:
  -config file    YAML detector configuration (default: $SQUAREFIND_CONFIG, then built-in)
  -out dir        Directory for <name>.json and <name>_annotated.png (default ".")
  -annotate       Write the annotated image (default true)
  -json dest      "-" prints the JSON results to stdout instead of <out>/<name>.json
  -workers n      Images processed in parallel (default: number of CPUs)

Environment variables:
  SQUAREFIND_CONFIG=path          Configuration file when -config is not given
  SQUAREFIND_LOG_LEVEL=debug      Log level (debug, info, warn, error)
`

func main() {
	os.Exit(run(os.Args[1:], os.Stdin, os.Stdout, os.Stderr))
}

// run executes the command line and returns the process exit status.
func run(args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	if len(args) > 0 {
		switch args[0] {
		case "--version", "-v", "version":
			fmt.Fprintf(stdout, "squarefind %s\n", Version)
			fmt.Fprintf(stdout, "  Build time: %s\n", BuildTime)
			fmt.Fprintf(stdout, "  Git commit: %s\n", GitCommit)
			return 0
		case "--help", "-h", "help":
			fmt.Fprint(stdout, usage)
			return 0
		case "serve":
			return serve(args[1:], stdin, stdout, stderr)
		}
	}

	log := newLogger(stderr)

	fs := flag.NewFlagSet("squarefind", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.Usage = func() { fmt.Fprint(stderr, usage) }
	var opts batchOptions
	configPath := fs.String("config", "", "YAML detector configuration")
	fs.StringVar(&opts.outDir, "out", ".", "output directory")
	fs.BoolVar(&opts.annotate, "annotate", true, "write annotated images")
	fs.StringVar(&opts.jsonDest, "json", "", `"-" prints JSON to stdout`)
	fs.IntVar(&opts.workers, "workers", runtime.NumCPU(), "parallel images")
	if err := fs.Parse(args); err != nil {
		return 2
	}
	if opts.jsonDest != "" && opts.jsonDest != "-" {
		fmt.Fprintf(stderr, "unsupported -json value %q\n", opts.jsonDest)
		return 2
	}
	paths := fs.Args()
	if len(paths) == 0 {
		fmt.Fprint(stderr, usage)
		return 2
	}

	det, err := newDetector(*configPath, log)
	if err != nil {
		log.Error().Err(err).Msg("invalid configuration")
		return 1
	}

	if err := os.MkdirAll(opts.outDir, 0o755); err != nil {
		log.Error().Err(err).Str("dir", opts.outDir).Msg("cannot create output directory")
		return 1
	}

	start := time.Now()
	results := processAll(det, paths, opts)

	failed := 0
	for _, r := range results {
		if r.err == nil && opts.jsonDest == "-" {
			r.err = r.set.Encode(stdout)
		}
		if r.err != nil {
			failed++
			log.Error().Err(r.err).Str("image", r.path).Msg("image failed")
			continue
		}
		if r.output != outputBase(r.path) && (opts.jsonDest == "" || opts.annotate) {
			log.Warn().
				Str("image", r.path).
				Str("output", r.output).
				Msg("output renamed to avoid a name clash")
		}
		log.Info().
			Str("image", r.path).
			Int("squares", len(r.set.Detections)).
			Interface("color_counts", r.set.ColorCounts.Map()).
			Msg("processed")
	}

	log.Info().
		Int("images", len(paths)).
		Int("failed", failed).
		Dur("elapsed", time.Since(start)).
		Msg("done")

	if failed > 0 {
		return 1
	}
	return 0
}

func serve(args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	// stdout carries the protocol, so logs go to stderr only.
	log := newLogger(stderr)

	fs := flag.NewFlagSet("serve", flag.ContinueOnError)
	fs.SetOutput(stderr)
	configPath := fs.String("config", "", "YAML detector configuration")
	if err := fs.Parse(args); err != nil {
		return 2
	}

	det, err := newDetector(*configPath, log)
	if err != nil {
		log.Error().Err(err).Msg("invalid configuration")
		return 1
	}

	server.Version = Version
	log.Debug().Str("version", Version).Str("commit", GitCommit).Msg("starting MCP server")

	if err := server.New(det, log).Serve(stdin, stdout); err != nil {
		log.Error().Err(err).Msg("server error")
		return 1
	}
	return 0
}

// newLogger writes human-readable logs to w at the level named by
// SQUAREFIND_LOG_LEVEL, info when unset or unknown.
func newLogger(w io.Writer) zerolog.Logger {
	level, err := zerolog.ParseLevel(strings.ToLower(os.Getenv("SQUAREFIND_LOG_LEVEL")))
	if err != nil || level == zerolog.NoLevel {
		level = zerolog.InfoLevel
	}
	return zerolog.New(zerolog.ConsoleWriter{Out: w, TimeFormat: time.Kitchen}).
		Level(level).
		With().
		Timestamp().
		Logger()
}

// newDetector builds a detector from the config file at path, falling back
// to SQUAREFIND_CONFIG and then to the built-in defaults.
func newDetector(path string, log zerolog.Logger) (*detection.Detector, error) {
	if path == "" {
		path = os.Getenv("SQUAREFIND_CONFIG")
	}

	cfg := detection.DefaultConfig()
	if path != "" {
		var err error
		cfg, err = detection.LoadConfig(path)
		if err != nil {
			return nil, err
		}
		log.Debug().Str("config", path).Msg("loaded configuration")
	}
	return detection.NewDetector(cfg, detection.WithLogger(log))
}
