// Package cli implements the rdbsnap command-line dispatcher: a decode
// subcommand and a version subcommand, following the reference tool's
// Execute(args) dispatch shape (flag.NewFlagSet per subcommand, one exit
// code per outcome).
package cli

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"

	"rdbsnap/internal/config"
	"rdbsnap/internal/envelope"
	"rdbsnap/internal/logger"
	"rdbsnap/internal/output"
	"rdbsnap/internal/ratelimit"
	"rdbsnap/internal/rdb"
)

const version = "rdbsnap 0.1.0-dev"

// Execute dispatches CLI subcommands and returns the process exit code.
func Execute(args []string) int {
	if len(args) == 0 {
		printUsage()
		return 2
	}

	switch args[0] {
	case "decode":
		return runDecode(args[1:])
	case "help", "-h", "--help":
		printUsage()
		return 0
	case "version", "--version", "-v":
		fmt.Println(version)
		return 0
	default:
		fmt.Fprintf(os.Stderr, "rdbsnap: unknown subcommand %q\n", args[0])
		printUsage()
		return 2
	}
}

func printUsage() {
	fmt.Fprintf(os.Stderr, `rdbsnap - snapshot decoder

Usage:
  rdbsnap decode <input> [<output>] [options]
  rdbsnap version

Options for decode:
  --pretty              Pretty-print the JSON output
  --simple              Flatten hash/zset values into plain maps
  --max-string-mib N    String size ceiling in MiB (default 100)
  --verify-checksum     Verify the trailing CRC-64/Jones checksum
  --rate-mib N           Throttle reads to N MiB/s (default: unthrottled)
  --config path.yaml     Load defaults from a YAML config file

<output> defaults to stdout.
`)
}

// runDecode implements "rdbsnap decode <input> [<output>] [options]".
func runDecode(args []string) int {
	fs := flag.NewFlagSet("decode", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)

	var (
		pretty         bool
		simple         bool
		maxStringMiB   int
		verifyChecksum bool
		rateMiB        int
		configPath     string
	)
	fs.BoolVar(&pretty, "pretty", false, "pretty-print the JSON output")
	fs.BoolVar(&simple, "simple", false, "flatten hash/zset values into plain maps")
	fs.IntVar(&maxStringMiB, "max-string-mib", 0, "string size ceiling in MiB (default 100)")
	fs.BoolVar(&verifyChecksum, "verify-checksum", false, "verify the trailing CRC-64/Jones checksum")
	fs.IntVar(&rateMiB, "rate-mib", 0, "throttle reads to N MiB/s (default: unthrottled)")
	fs.StringVar(&configPath, "config", "", "YAML config file providing defaults")

	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
		fmt.Fprintf(os.Stderr, "rdbsnap: %v\n", err)
		return 2
	}

	positional := fs.Args()
	if len(positional) == 0 {
		fmt.Fprintln(os.Stderr, "rdbsnap: decode requires an <input> path")
		return 2
	}
	inputPath := positional[0]

	var cfg config.Config
	if configPath != "" {
		loaded, err := config.Load(configPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "rdbsnap: %v\n", err)
			return 2
		}
		cfg = *loaded
	}
	cfg.ApplyDefaults()

	// Explicit flags win over config file defaults.
	if maxStringMiB > 0 {
		cfg.MaxStringMiB = maxStringMiB
	}
	if verifyChecksum {
		cfg.VerifyChecksum = true
	}
	if rateMiB > 0 {
		cfg.RateMiBPerSec = rateMiB
	}
	if pretty {
		cfg.Pretty = true
	}
	if simple {
		cfg.Simple = true
	}

	if err := logger.Init(os.TempDir(), logger.WARN, "rdbsnap"); err != nil {
		fmt.Fprintf(os.Stderr, "rdbsnap: failed to initialize logging: %v\n", err)
		return 1
	}
	defer logger.Close()

	in, err := os.Open(inputPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "rdbsnap: %v\n", err)
		return 2
	}
	defer in.Close()

	var out *os.File
	if len(positional) >= 2 {
		out, err = os.Create(positional[1])
		if err != nil {
			fmt.Fprintf(os.Stderr, "rdbsnap: %v\n", err)
			return 2
		}
		defer out.Close()
	} else {
		out = os.Stdout
	}

	var src io.Reader = in
	if rate := cfg.RateBytesPerSec(); rate > 0 {
		src = ratelimit.NewReader(context.Background(), in, rate, rate)
	}

	unwrapped, envKind, err := envelope.Open(src)
	if err != nil {
		fmt.Fprintf(os.Stderr, "rdbsnap: %v\n", err)
		return 2
	}
	if envKind != envelope.KindNone {
		logger.Info("detected %s envelope on %s", envKind, inputPath)
	}

	opts := rdb.Options{
		MaxStringBytes: cfg.MaxStringBytes(),
		VerifyChecksum: cfg.VerifyChecksum,
	}
	result, err := rdb.NewDecoder(unwrapped, opts).Decode()
	if err != nil {
		var de *rdb.DecodeError
		if errors.As(err, &de) && de.Kind == rdb.ErrMagicMismatch {
			fmt.Fprintf(os.Stderr, "rdbsnap: %v\n", err)
			return 2
		}
		fmt.Fprintf(os.Stderr, "rdbsnap: %v\n", err)
		return 3
	}

	if err := output.Write(out, result, output.Options{Pretty: cfg.Pretty, Simple: cfg.Simple}); err != nil {
		fmt.Fprintf(os.Stderr, "rdbsnap: %v\n", err)
		return 1
	}

	return 0
}
