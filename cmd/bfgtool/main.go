// Command bfgtool encodes and decodes BFG images from the command line.
//
// Usage:
//
//	bfgtool enc [-o out.bfg] <input.png>        PNG → BFG (use "-" for stdin)
//	bfgtool dec [-o out.png] <input.bfg>        BFG → PNG (use "-" for stdin, -o - for stdout)
//	bfgtool info <input.bfg>                    Display BFG header fields
//	bfgtool bench <input.png> [<input.png>...]  Encode+decode each file, print a ratio/timing table
package main

import (
	"bytes"
	"flag"
	"fmt"
	"image/png"
	"io"
	"os"
	"path/filepath"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/sebseager/bfg"
	"github.com/sebseager/bfg/internal/container"
)

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	var err error
	switch os.Args[1] {
	case "enc":
		err = runEnc(os.Args[2:])
	case "dec":
		err = runDec(os.Args[2:])
	case "info":
		err = runInfo(os.Args[2:])
	case "bench":
		err = runBench(os.Args[2:])
	case "-h", "-help", "--help", "help":
		printUsage()
		return
	default:
		fmt.Fprintf(os.Stderr, "bfgtool: unknown command %q\n\n", os.Args[1])
		printUsage()
		os.Exit(1)
	}

	if err != nil {
		fmt.Fprintf(os.Stderr, "bfgtool: %v\n", err)
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Fprintf(os.Stderr, `Usage:
  bfgtool enc [-o out.bfg] <input.png>        Encode PNG to BFG
  bfgtool dec [-o out.png] <input.bfg>        Decode BFG to PNG
  bfgtool info <input.bfg>                    Display BFG header fields
  bfgtool bench <input.png> [<input.png>...]  Encode+decode each file, print stats

Use "-" as input to read from stdin, "-o -" to write to stdout.
`)
}

// openInput returns an io.ReadCloser for the given path. If path is "-",
// stdin is returned wrapped in a no-op closer, so closing it leaves stdin
// open.
func openInput(path string) (io.ReadCloser, error) {
	if path == "-" {
		return io.NopCloser(os.Stdin), nil
	}
	return os.Open(path)
}

// --- enc ---

func runEnc(args []string) error {
	fs := flag.NewFlagSet("enc", flag.ContinueOnError)
	output := fs.String("o", "", `output path (default: <input>.bfg, "-" for stdout)`)
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() < 1 {
		return fmt.Errorf("enc: missing input file\nUsage: bfgtool enc [-o out.bfg] <input.png>")
	}
	inputPath := fs.Arg(0)

	in, err := openInput(inputPath)
	if err != nil {
		return err
	}
	defer in.Close()

	img, err := png.Decode(in)
	if err != nil {
		return fmt.Errorf("enc: decoding PNG: %w", err)
	}

	data, err := bfg.EncodeImage(img)
	if err != nil {
		return fmt.Errorf("enc: %w", err)
	}

	outputPath := *output
	if outputPath == "-" {
		_, err := os.Stdout.Write(data)
		return err
	}
	if outputPath == "" {
		if inputPath == "-" {
			outputPath = "output.bfg"
		} else {
			base := strings.TrimSuffix(filepath.Base(inputPath), filepath.Ext(inputPath))
			outputPath = base + ".bfg"
		}
	}

	if err := os.WriteFile(outputPath, data, 0o644); err != nil {
		return err
	}
	fmt.Fprintf(os.Stderr, "Encoded %s → %s (%d bytes)\n", inputPath, outputPath, len(data))
	return nil
}

// --- dec ---

func runDec(args []string) error {
	fs := flag.NewFlagSet("dec", flag.ContinueOnError)
	output := fs.String("o", "", `output path (default: <input>.png, "-" for stdout)`)
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() < 1 {
		return fmt.Errorf("dec: missing input file\nUsage: bfgtool dec [-o out.png] <input.bfg>")
	}
	inputPath := fs.Arg(0)

	in, err := openInput(inputPath)
	if err != nil {
		return err
	}
	defer in.Close()

	img, err := bfg.DecodeImage(in)
	if err != nil {
		return fmt.Errorf("dec: %w", err)
	}

	outputPath := *output
	if outputPath == "-" {
		return png.Encode(os.Stdout, img)
	}
	if outputPath == "" {
		if inputPath == "-" {
			outputPath = "output.png"
		} else {
			base := strings.TrimSuffix(filepath.Base(inputPath), filepath.Ext(inputPath))
			outputPath = base + ".png"
		}
	}

	out, err := os.Create(outputPath)
	if err != nil {
		return err
	}
	if err := png.Encode(out, img); err != nil {
		out.Close()
		os.Remove(outputPath)
		return fmt.Errorf("dec: encoding PNG: %w", err)
	}
	if err := out.Close(); err != nil {
		os.Remove(outputPath)
		return err
	}
	fmt.Fprintf(os.Stderr, "Decoded %s → %s\n", inputPath, outputPath)
	return nil
}

// --- info ---

func runInfo(args []string) error {
	if len(args) < 1 {
		return fmt.Errorf("info: missing input file\nUsage: bfgtool info <input.bfg>")
	}
	inputPath := args[0]

	in, err := openInput(inputPath)
	if err != nil {
		return err
	}
	defer in.Close()

	data, err := io.ReadAll(in)
	if err != nil {
		return fmt.Errorf("info: reading input: %w", err)
	}
	if len(data) < container.HeaderSize {
		return fmt.Errorf("info: %w", container.ErrTruncated)
	}
	hdr, err := container.DecodeHeader(data[:container.HeaderSize])
	if err != nil {
		return fmt.Errorf("info: %w", err)
	}

	name := inputPath
	if inputPath == "-" {
		name = "<stdin>"
	}

	raw := uint64(hdr.Width) * uint64(hdr.Height) * uint64(hdr.NChannels)
	ratio := float64(len(data)) / float64(raw+container.HeaderSize)

	fmt.Printf("File:       %s\n", name)
	fmt.Printf("Dimensions: %d x %d\n", hdr.Width, hdr.Height)
	fmt.Printf("Channels:   %d\n", hdr.NChannels)
	fmt.Printf("Payload:    %d bytes\n", hdr.NBytes)
	fmt.Printf("File size:  %d bytes\n", len(data))
	fmt.Printf("Ratio:      %.3f\n", ratio)
	return nil
}

// --- bench ---

func runBench(args []string) error {
	if len(args) < 1 {
		return fmt.Errorf("bench: missing input files\nUsage: bfgtool bench <input.png> [<input.png>...]")
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 2, 2, ' ', 0)
	fmt.Fprintln(w, "FILE\tRAW\tENCODED\tRATIO\tENC TIME\tDEC TIME")

	for _, path := range args {
		if err := benchOne(w, path); err != nil {
			fmt.Fprintf(os.Stderr, "bfgtool: bench %s: %v\n", path, err)
		}
	}
	return w.Flush()
}

func benchOne(w io.Writer, path string) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	img, err := png.Decode(f)
	if err != nil {
		return fmt.Errorf("decoding PNG: %w", err)
	}

	start := time.Now()
	data, err := bfg.EncodeImage(img)
	encDur := time.Since(start)
	if err != nil {
		return fmt.Errorf("encoding: %w", err)
	}

	start = time.Now()
	_, err = bfg.DecodeImage(bytes.NewReader(data))
	decDur := time.Since(start)
	if err != nil {
		return fmt.Errorf("decoding: %w", err)
	}

	b := img.Bounds()
	raw := b.Dx() * b.Dy() * 4
	ratio := float64(len(data)) / float64(raw)

	fmt.Fprintf(w, "%s\t%d\t%d\t%.3f\t%s\t%s\n",
		filepath.Base(path), raw, len(data), ratio, encDur, decDur)
	return nil
}
