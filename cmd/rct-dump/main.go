// Copyright 2021 The go-lpc Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// rct-dump decodes and displays RCT bunch crossings stored in LCIO files.
//
// Usage: rct-dump [OPTIONS] FILE1 [FILE2 [FILE3 ...]]
//
// Example:
//
//	$> rct-dump ./testdata/rct.lcio
//	=== run=42 lumi=1 event=0 ===
//	BC0:     elec=true jet=true
//	Regions:         2
//	  Region{crate=0 card=0 index=0 et=5 tau=false mip=false of=false fg=false}
//	  HF{crate=3 index=7 et=200 fg=true}
//	EM cands:        1
//	  EM{crate=0 card=5 region=1 slot=0 rank=42 iso=true}
//	[...]
package main // import "github.com/go-lpc/orsc/cmd/rct-dump"

import (
	"bufio"
	"flag"
	"fmt"
	"io"
	"log"
	"os"

	"github.com/go-lpc/orsc/internal/rctio"
	"go-hep.org/x/hep/lcio"
)

const usage = `rct-dump decodes and displays RCT bunch crossings stored in LCIO files.

Usage: rct-dump [OPTIONS] FILE1 [FILE2 [FILE3 ...]]

Example:

 $> rct-dump ./testdata/rct.lcio
 === run=42 lumi=1 event=0 ===
 BC0:     elec=true jet=true
 Regions:         2
   Region{crate=0 card=0 index=0 et=5 tau=false mip=false of=false fg=false}
   HF{crate=3 index=7 et=200 fg=true}
 EM cands:        1
   EM{crate=0 card=5 region=1 slot=0 rank=42 iso=true}
 [...]

`

func main() {
	xmain(os.Stdout, os.Args[1:])
}

func xmain(w io.Writer, args []string) {
	log.SetPrefix("rct-dump: ")
	log.SetFlags(0)

	var (
		fset = flag.NewFlagSet("rct-dump", flag.ExitOnError)

		nevts = fset.Int("n", -1, "number of crossings to display (-1: all)")
	)

	fset.Usage = func() {
		fmt.Print(usage)
		fset.PrintDefaults()
	}

	err := fset.Parse(args)
	if err != nil {
		log.Fatalf("could not parse input arguments: %+v", err)
	}

	if fset.NArg() == 0 {
		fset.Usage()
		log.Fatalf("missing path to input LCIO file")
	}

	for _, fname := range fset.Args() {
		err := process(w, fname, *nevts)
		if err != nil {
			log.Fatalf("could not dump file %q: %+v", fname, err)
		}
	}
}

func process(w io.Writer, fname string, nevts int) error {
	wbuf := bufio.NewWriter(w)
	defer wbuf.Flush()

	r, err := lcio.Open(fname)
	if err != nil {
		return fmt.Errorf("could not open LCIO file: %w", err)
	}
	defer r.Close()

	for i := 0; nevts < 0 || i < nevts; i++ {
		if !r.Next() {
			break
		}
		evt := r.Event()
		in, err := rctio.ReadInput(&evt)
		if err != nil {
			return fmt.Errorf("could not read RCT crossing: %w", err)
		}

		fmt.Fprintf(wbuf, "=== %v ===\n", in.Header)
		fmt.Fprintf(wbuf, "BC0:     elec=%v jet=%v\n", in.ElecBC0, in.JetBC0)
		fmt.Fprintf(wbuf, "Regions:  % 8d\n", len(in.Regions))
		for _, reg := range in.Regions {
			fmt.Fprintf(wbuf, "  %v\n", reg)
		}
		fmt.Fprintf(wbuf, "EM cands: % 8d\n", len(in.Cands))
		for _, c := range in.Cands {
			fmt.Fprintf(wbuf, "  %v\n", c)
		}
	}

	err = r.Err()
	if err != nil && err != io.EOF {
		return fmt.Errorf("could not read LCIO file: %w", err)
	}

	return wbuf.Flush()
}
