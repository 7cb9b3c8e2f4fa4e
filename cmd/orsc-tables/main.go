// Copyright 2023 The go-lpc Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Command orsc-tables displays and checks the oRSC link layout tables.
//
// Usage: orsc-tables [OPTIONS]
//
// Example:
//
//	$> orsc-tables -format=legacy
//	1 00 0 -> 0
//	[...]
//	1 01 0 -> ElecBC0
//	1 01 1 -> JetBC0
//	1 01 2 -> RC[0][0][5]
//	[...]
//
//	$> orsc-tables -format=extended -check
//	extended: no errors found (sources=334, padding=50)
package main // import "github.com/go-lpc/orsc/cmd/orsc-tables"

import (
	"bufio"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"sort"

	"github.com/go-lpc/orsc/link"
)

func main() {
	log.SetPrefix("orsc-tables: ")
	log.SetFlags(0)

	var (
		format = flag.String("format", "all", "oRSC link format to display (all, legacy, extended)")
		check  = flag.Bool("check", false, "only check each source bit is referenced the expected number of times")
	)

	flag.Parse()

	var fmts []link.Format
	switch *format {
	case "all":
		fmts = []link.Format{link.Legacy, link.Extended}
	default:
		f, err := link.ParseFormat(*format)
		if err != nil {
			log.Fatalf("could not parse link format: %+v", err)
		}
		fmts = []link.Format{f}
	}

	for _, f := range fmts {
		err := process(os.Stdout, f, *check)
		if err != nil {
			log.Fatalf("%+v", err)
		}
	}
}

func process(w io.Writer, f link.Format, check bool) error {
	lay, err := link.LayoutOf(f)
	if err != nil {
		return fmt.Errorf("could not retrieve layout: %w", err)
	}

	if check {
		return checkLayout(w, lay)
	}

	o := bufio.NewWriter(w)
	defer o.Flush()

	for i, rows := range lay.Links {
		for row := range rows {
			for col, cell := range rows[row] {
				fmt.Fprintf(o, "%d %02d %d -> %v\n", i+1, row, col, cell)
			}
		}
	}
	return o.Flush()
}

// checkLayout checks the layout is valid and that every source bit
// of its format is referenced the expected number of times.
func checkLayout(w io.Writer, lay *link.Layout) error {
	err := lay.Validate()
	if err != nil {
		return fmt.Errorf("invalid %v layout: %w", lay.Format, err)
	}

	var (
		want  = expectedCounts(lay.Format)
		got   = lay.Sources()
		cells = make([]link.Cell, 0, len(want))
		nerrs = 0
	)
	for cell := range want {
		cells = append(cells, cell)
	}
	for cell := range got {
		if _, ok := want[cell]; !ok {
			cells = append(cells, cell)
		}
	}
	sort.Slice(cells, func(i, j int) bool {
		return cells[i].String() < cells[j].String()
	})

	for _, cell := range cells {
		n := got[cell]
		exp, known := want[cell]
		switch {
		case !known:
			fmt.Fprintf(w, "unexpected: %v (n=%d)\n", cell, n)
		case n == exp:
			continue
		case n == 0:
			fmt.Fprintf(w, "missing: %v\n", cell)
		default:
			fmt.Fprintf(w, "mismatch: %v (got=%d, want=%d)\n", cell, n, exp)
		}
		nerrs++
	}

	if nerrs > 0 {
		return fmt.Errorf("%v layout: found %d errors", lay.Format, nerrs)
	}

	fmt.Fprintf(w, "%v: no errors found (sources=%d, padding=%d)\n",
		lay.Format, len(want)-3, want[link.Cell{}],
	)
	return nil
}

// expectedCounts returns how many times each source bit must appear
// in the layout of format f.
func expectedCounts(f link.Format) map[link.Cell]int {
	o := make(map[link.Cell]int)
	for card := uint8(0); card < link.NumCards; card++ {
		for idx := uint8(0); idx < link.NumRegions; idx++ {
			for b := uint8(0); b < link.RegionEtBits; b++ {
				o[link.Cell{Kind: link.RegionEt, Card: card, Index: idx, Bit: b}] = 1
			}
			switch f {
			case link.Legacy:
				o[link.Cell{Kind: link.RegionQuiet, Card: card, Index: idx}] = 1
			case link.Extended:
				o[link.Cell{Kind: link.RegionOverflow, Card: card, Index: idx}] = 1
				o[link.Cell{Kind: link.RegionTau, Card: card, Index: idx}] = 1
				o[link.Cell{Kind: link.RegionMIP, Card: card, Index: idx}] = 1
			}
		}
	}

	if f == link.Extended {
		for idx := uint8(0); idx < link.NumHF; idx++ {
			for b := uint8(0); b < link.HFEtBits; b++ {
				o[link.Cell{Kind: link.HFEt, Index: idx, Bit: b}] = 1
			}
			o[link.Cell{Kind: link.HFFineGrain, Index: idx}] = 1
		}
	}

	for slot := uint8(0); slot < link.NumSlots; slot++ {
		for b := uint8(0); b < link.RankBits; b++ {
			o[link.Cell{Kind: link.IsoRank, Index: slot, Bit: b}] = 1
			o[link.Cell{Kind: link.NonIsoRank, Index: slot, Bit: b}] = 1
		}
		for b := uint8(0); b < link.PosBits; b++ {
			o[link.Cell{Kind: link.IsoPos, Index: slot, Bit: b}] = 1
			o[link.Cell{Kind: link.NonIsoPos, Index: slot, Bit: b}] = 1
		}
	}

	var bc0 int
	if f == link.Legacy {
		bc0 = link.NumLinks
	}
	o[link.Cell{Kind: link.ElecBC0}] = bc0
	o[link.Cell{Kind: link.JetBC0}] = bc0

	nbits := link.NumLinks * f.Rows() * link.NumCols
	o[link.Cell{}] = nbits - (len(o) - 2) - 2*bc0
	return o
}
