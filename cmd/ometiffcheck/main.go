// ometiffcheck validates OME-TIFF datasets.
//
// Usage:
//
//	ometiffcheck [-q|--quiet] [-s|--strict] [-v|--verbose] <filename> [<filename> ...]
//
// Options:
//
//	-q, --quiet    Only output errors. Exit code indicates pass/fail.
//	-s, --strict   Treat warnings as errors.
//	-v, --verbose  Print a summary of every valid file.
//	-h, --help     Show this help message.
//	--version      Show version information.
//
// Exit codes:
//
//	0: All files valid
//	1: One or more files invalid
//	2: Error (bad arguments, etc.)
package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/mrjoshuak/go-omefiles/ometiffutil"
)

const version = "0.1.0"

type options struct {
	quiet   bool
	strict  bool
	verbose bool
	files   []string
}

func main() {
	opts, err := parseArgs(os.Args[1:])
	if err != nil {
		fmt.Fprintf(os.Stderr, "ometiffcheck: %v\n", err)
		printUsage(os.Stderr)
		os.Exit(2)
	}
	if opts == nil {
		os.Exit(0)
	}
	os.Exit(run(opts, os.Stdout, os.Stderr))
}

// parseArgs returns nil options when the arguments asked for help or the
// version and nothing else needs doing.
func parseArgs(args []string) (*options, error) {
	opts := &options{}
	for _, arg := range args {
		switch arg {
		case "-q", "--quiet":
			opts.quiet = true
		case "-s", "--strict":
			opts.strict = true
		case "-v", "--verbose":
			opts.verbose = true
		case "-h", "--help":
			printUsage(os.Stdout)
			return nil, nil
		case "--version":
			fmt.Printf("ometiffcheck version %s\n", version)
			return nil, nil
		default:
			if strings.HasPrefix(arg, "-") {
				return nil, fmt.Errorf("unknown option: %s", arg)
			}
			opts.files = append(opts.files, arg)
		}
	}
	if len(opts.files) == 0 {
		return nil, fmt.Errorf("no input files specified")
	}
	return opts, nil
}

func run(opts *options, stdout, stderr io.Writer) int {
	validCount := 0
	for _, filename := range opts.files {
		result, err := ometiffutil.ValidateFile(filename)
		if err != nil {
			fmt.Fprintf(stderr, "%s: error: %v\n", filename, err)
			return 2
		}
		valid := result.Valid && !(opts.strict && len(result.Warnings) > 0)
		if valid {
			validCount++
		}

		switch {
		case opts.quiet:
			for _, msg := range result.Errors {
				fmt.Fprintf(stderr, "%s: %s\n", filename, msg)
			}
		case valid:
			fmt.Fprintf(stdout, "%s: OK\n", filename)
			for _, msg := range result.Warnings {
				fmt.Fprintf(stdout, "  [WARNING] %s\n", msg)
			}
			if opts.verbose {
				if info, err := ometiffutil.GetFileInfo(filename); err == nil {
					fmt.Fprint(stdout, info)
				}
			}
		default:
			fmt.Fprintf(stdout, "%s: INVALID\n", filename)
			for _, msg := range result.Errors {
				fmt.Fprintf(stdout, "  [ERROR] %s\n", msg)
			}
			for _, msg := range result.Warnings {
				fmt.Fprintf(stdout, "  [WARNING] %s\n", msg)
			}
		}
	}

	if len(opts.files) > 1 && !opts.quiet {
		fmt.Fprintf(stdout, "\nSummary: %d of %d files valid\n", validCount, len(opts.files))
	}
	if validCount < len(opts.files) {
		return 1
	}
	return 0
}

func printUsage(w io.Writer) {
	fmt.Fprintln(w, `Usage: ometiffcheck [options] <filename> [<filename> ...]

Validate OME-TIFF datasets: the embedded OME-XML, its agreement with the
TIFF directories, and every plane's pixel data.

Options:
  -q, --quiet    Only output errors. Exit code indicates pass/fail.
  -s, --strict   Treat warnings as errors.
  -v, --verbose  Print a summary of every valid file.
  -h, --help     Show this help message.
  --version      Show version information.

Exit codes:
  0: All files valid
  1: One or more files invalid
  2: Error (bad arguments, etc.)`)
}
