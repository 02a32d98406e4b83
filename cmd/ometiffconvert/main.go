// ometiffconvert rewrites an OME-TIFF dataset into a single file with a
// different layout or compression.
//
// Usage:
//
//	ometiffconvert [options] -o outfile infile
//
// Options:
//
//	-o <path>           output file (required)
//	-compression <name> None, AdobeDeflate, Deflate, PackBits, Zstd or JPEG2000
//	-predictor          apply the horizontal differencing predictor
//	-tile-size <n>      write square tiles of n pixels instead of strips
//	-bigtiff            always write BigTIFF
//	-classic            never write BigTIFF
//	-big-endian         write big-endian files
//	-v                  verbose output
//	-h, --help          print this message
//	--version           print version information
package main

import (
	"encoding/binary"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"

	"github.com/dustin/go-humanize"

	"github.com/mrjoshuak/go-omefiles/compression"
	"github.com/mrjoshuak/go-omefiles/ometiff"
	"github.com/mrjoshuak/go-omefiles/ometiffutil"
	"github.com/mrjoshuak/go-omefiles/tiff"
)

const version = "0.1.0"

type options struct {
	output      string
	compression tiff.Compression
	predictor   bool
	tileSize    int
	bigTIFF     *bool
	bigEndian   bool
	verbose     bool
	input       string
}

func main() {
	if len(os.Args) < 2 {
		usageMessage(os.Stderr)
		os.Exit(1)
	}
	for _, arg := range os.Args[1:] {
		if arg == "-h" || arg == "--help" {
			usageMessage(os.Stdout)
			os.Exit(0)
		}
		if arg == "--version" {
			fmt.Printf("ometiffconvert (go-omefiles) %s\n", version)
			os.Exit(0)
		}
	}

	opts, err := parseArgs(os.Args[1:])
	if err != nil {
		fmt.Fprintf(os.Stderr, "ometiffconvert: %v\n", err)
		usageMessage(os.Stderr)
		os.Exit(1)
	}
	if err := run(opts, os.Stdout); err != nil {
		fmt.Fprintf(os.Stderr, "ometiffconvert: %v\n", err)
		os.Exit(1)
	}
}

func parseArgs(args []string) (*options, error) {
	opts := &options{compression: tiff.CompressionNone}
	yes, no := true, false

	i := 0
	for i < len(args) {
		arg := args[i]
		switch arg {
		case "-o", "-compression", "-tile-size":
			if i+1 >= len(args) {
				return nil, fmt.Errorf("%s requires an argument", arg)
			}
			val := args[i+1]
			switch arg {
			case "-o":
				opts.output = val
			case "-compression":
				s, err := compression.ParseScheme(val)
				if err != nil {
					return nil, err
				}
				if !s.CanEncode() {
					return nil, fmt.Errorf("compression %s cannot be written", s)
				}
				opts.compression = tiff.Compression(s)
			case "-tile-size":
				n, err := strconv.Atoi(val)
				if err != nil || n < 16 || n%16 != 0 {
					return nil, fmt.Errorf("invalid tile size: %s (must be a positive multiple of 16)", val)
				}
				opts.tileSize = n
			}
			i += 2
			continue
		case "-predictor":
			opts.predictor = true
		case "-bigtiff":
			opts.bigTIFF = &yes
		case "-classic":
			opts.bigTIFF = &no
		case "-big-endian":
			opts.bigEndian = true
		case "-v":
			opts.verbose = true
		default:
			if len(arg) > 0 && arg[0] == '-' {
				return nil, fmt.Errorf("unknown option: %s", arg)
			}
			if opts.input != "" {
				return nil, fmt.Errorf("only one input file may be given")
			}
			opts.input = arg
		}
		i++
	}

	if opts.input == "" {
		return nil, fmt.Errorf("no input file specified")
	}
	if opts.output == "" {
		return nil, fmt.Errorf("no output file specified (-o)")
	}
	if opts.predictor && opts.compression == tiff.CompressionNone {
		return nil, fmt.Errorf("-predictor requires -compression")
	}
	return opts, nil
}

func (o *options) writerOptions(stderr io.Writer) ometiff.WriterOptions {
	wo := ometiff.DefaultWriterOptions()
	wo.BigTIFF = o.bigTIFF
	wo.Compression = o.compression
	if o.predictor {
		wo.Predictor = tiff.PredictorHorizontal
	}
	wo.TileWidth, wo.TileHeight = o.tileSize, o.tileSize
	if o.bigEndian {
		wo.ByteOrder = binary.BigEndian
	}
	level := slog.LevelWarn
	if o.verbose {
		level = slog.LevelDebug
	}
	wo.Logger = slog.New(slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: level}))
	return wo
}

func run(opts *options, stdout io.Writer) error {
	if err := ometiffutil.Convert(opts.input, opts.output, opts.writerOptions(os.Stderr)); err != nil {
		return err
	}
	if !opts.verbose {
		return nil
	}
	in, err := os.Stat(opts.input)
	if err != nil {
		return err
	}
	info, err := ometiffutil.GetFileInfo(opts.output)
	if err != nil {
		return err
	}
	fmt.Fprintf(stdout, "converted %s (%s) to %s\n", opts.input, humanize.IBytes(uint64(in.Size())), opts.output)
	fmt.Fprint(stdout, info)
	return nil
}

func usageMessage(w io.Writer) {
	fmt.Fprintln(w, `Usage: ometiffconvert [options] -o outfile infile

Rewrite an OME-TIFF dataset into one file, keeping its OME metadata.

Options:
  -o <path>           output file (required)
  -compression <name> None, AdobeDeflate, Deflate, PackBits, Zstd or JPEG2000
  -predictor          apply the horizontal differencing predictor
  -tile-size <n>      write square tiles of n pixels instead of strips
  -bigtiff            always write BigTIFF
  -classic            never write BigTIFF
  -big-endian         write big-endian files
  -v                  verbose output
  -h, --help          print this message
  --version           print version information`)
}
