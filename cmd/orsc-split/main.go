// Copyright 2021 The go-lpc Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Command orsc-split splits a binary oRSC pattern file into n pattern
// files, one per RCT crate.
package main // import "github.com/go-lpc/orsc/cmd/orsc-split"

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-lpc/orsc/crossing"
	"github.com/go-lpc/orsc/pattern"
)

var (
	msg = log.New(os.Stdout, "orsc-split: ", 0)
)

func main() {
	xmain(os.Args[1:])
}

func xmain(args []string) {
	var (
		fset = flag.NewFlagSet("orsc-split", flag.ExitOnError)

		oname = fset.String("o", "out.raw", "path to output pattern files")
	)

	fset.Usage = func() {
		fmt.Printf(`Usage: orsc-split [OPTIONS] file.raw

ex:
 $> orsc-split -o out.raw ./patterns.raw
 orsc-split: creating output file "out-00.raw"...
 orsc-split: creating output file "out-01.raw"...
 [...]

options:
`)
		fset.PrintDefaults()
	}

	err := fset.Parse(args)
	if err != nil {
		log.Fatalf("could not parse input arguments: %+v", err)
	}

	if fset.NArg() != 1 {
		fset.Usage()
		msg.Fatalf("missing input pattern file")
	}

	if *oname == "" {
		fset.Usage()
		msg.Fatalf("invalid output pattern file")
	}

	for _, arg := range fset.Args() {
		err := process(*oname, arg)
		if err != nil {
			msg.Fatalf("could not split pattern file %q: %+v", arg, err)
		}
	}
}

func process(oname, fname string) error {
	f, err := os.Open(fname)
	if err != nil {
		return fmt.Errorf("could not open pattern file: %w", err)
	}
	defer f.Close()

	var (
		out = make(map[uint8]*pattern.Encoder)
		fs  []*os.File
	)
	defer func() {
		for _, f := range fs {
			_ = f.Close()
		}
	}()

	dec := pattern.NewDecoder(f)

loop:
	for {
		var rec pattern.Record
		err := dec.Decode(&rec)
		if err != nil {
			if errors.Is(err, io.EOF) {
				break loop
			}
			return fmt.Errorf("could not decode record: %w", err)
		}

		for _, lnk := range rec.Links {
			enc, ok := out[lnk.Crate]
			if !ok {
				oid := outFileFrom(oname, lnk.Crate)
				msg.Printf("creating output file %q...", oid)
				o, err := os.Create(oid)
				if err != nil {
					return fmt.Errorf("could not create output file: %w", err)
				}
				fs = append(fs, o)

				enc = pattern.NewEncoder(o)
				out[lnk.Crate] = enc
			}

			sub := pattern.Record{
				Header: rec.Header,
				Format: rec.Format,
				Links:  []crossing.Links{lnk},
			}
			err = enc.Encode(&sub)
			if err != nil {
				return fmt.Errorf("could not encode record: %w", err)
			}
		}
	}

	for _, f := range fs {
		err := f.Close()
		if err != nil {
			return fmt.Errorf("could not close output file %q: %w", f.Name(), err)
		}
	}

	return nil
}

func outFileFrom(fname string, crate uint8) string {
	var (
		ext   = filepath.Ext(fname)
		oname = strings.TrimSuffix(fname, ext) + fmt.Sprintf("-%02d%s", crate, ext)
	)
	return oname
}
