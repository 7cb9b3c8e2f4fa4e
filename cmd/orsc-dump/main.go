// Copyright 2023 The go-lpc Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// orsc-dump decodes and displays binary oRSC link pattern files.
//
// Usage: orsc-dump [OPTIONS] FILE1 [FILE2 [FILE3 ...]]
//
// Example:
//
//	$> orsc-dump ./testdata/run-42.raw
//	# run=42 lumi=3 event=1001 format=legacy
//	00 1 0085ea02 00000000 00000000 00000001
//	00 2 00800000 00000000 00000000 00000000
//	[...]
//	=== records: 1000 ===
package main // import "github.com/go-lpc/orsc/cmd/orsc-dump"

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"

	"github.com/go-lpc/orsc/internal/mmap"
	"github.com/go-lpc/orsc/pattern"
)

func main() {
	log.SetPrefix("orsc-dump: ")
	log.SetFlags(0)

	xmain(os.Stdout, os.Args[1:])
}

func xmain(stdout io.Writer, args []string) {
	var (
		fset  = flag.NewFlagSet("orsc-dump", flag.ExitOnError)
		quiet = fset.Bool("q", false, "only display the number of records")
	)

	fset.Usage = func() {
		fmt.Printf(`orsc-dump decodes and displays binary oRSC link pattern files.

Usage: orsc-dump [OPTIONS] FILE1 [FILE2 [FILE3 ...]]

Example:

 $> orsc-dump ./testdata/run-42.raw
 # run=42 lumi=3 event=1001 format=legacy
 00 1 0085ea02 00000000 00000000 00000001
 00 2 00800000 00000000 00000000 00000000
 [...]
 === records: 1000 ===

options:
`)
		fset.PrintDefaults()
	}

	err := fset.Parse(args)
	if err != nil {
		log.Fatalf("could not parse command line arguments: %+v", err)
	}

	if fset.NArg() == 0 {
		fset.Usage()
		log.Fatalf("missing path to input pattern file")
	}

	for _, fname := range fset.Args() {
		err := process(stdout, fname, *quiet)
		if err != nil {
			log.Fatalf("could not dump file %q: %+v", fname, err)
		}
	}
}

func process(w io.Writer, fname string, quiet bool) error {
	f, err := mmap.Open(fname)
	if err != nil {
		return fmt.Errorf("could not open %q: %w", fname, err)
	}
	defer f.Close()

	var (
		dec = pattern.NewDecoder(f.Reader())
		tw  = pattern.NewTextWriter(w)
		n   = 0
	)

loop:
	for {
		var rec pattern.Record
		err := dec.Decode(&rec)
		if err != nil {
			if errors.Is(err, io.EOF) {
				break loop
			}
			_ = tw.Flush()
			return fmt.Errorf("could not decode record %d: %w", n, err)
		}
		n++
		if quiet {
			continue
		}
		err = tw.Write(&rec)
		if err != nil {
			return fmt.Errorf("could not display record %d: %w", n-1, err)
		}
	}

	err = tw.Flush()
	if err != nil {
		return fmt.Errorf("could not flush output: %w", err)
	}

	fmt.Fprintf(w, "=== records: %d ===\n", n)
	return nil
}
