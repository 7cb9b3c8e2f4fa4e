// Copyright 2023 The go-lpc Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Command rct-gen generates random RCT bunch crossings into a LCIO file.
package main // import "github.com/go-lpc/orsc/cmd/rct-gen"

import (
	"flag"
	"fmt"
	"log"
	"math/rand"

	"github.com/go-lpc/orsc/crossing"
	"github.com/go-lpc/orsc/internal/rctio"
	"github.com/go-lpc/orsc/link"
	"go-hep.org/x/hep/lcio"
)

// orbit is the number of bunch crossings in a LHC orbit.
const orbit = 3564

func main() {
	log.SetPrefix("rct-gen: ")
	log.SetFlags(0)

	var (
		oname = flag.String("o", "rct.lcio", "path to output LCIO file")
		nevts = flag.Int("n", 100, "number of bunch crossings to generate")
		seed  = flag.Int64("seed", 1234, "seed of the random generator")
		run   = flag.Uint("run", 1, "run number")
		occ   = flag.Float64("occ", 0.5, "occupancy of the calorimeter regions")
	)

	flag.Usage = func() {
		fmt.Printf(`Usage: rct-gen [OPTIONS]

ex:
 $> rct-gen -n 1000 -seed 42 -o ./rct.lcio

options:
`)
		flag.PrintDefaults()
	}

	flag.Parse()

	if *oname == "" {
		flag.Usage()
		log.Fatalf("invalid output LCIO file name")
	}

	err := process(*oname, uint32(*run), *nevts, *seed, *occ)
	if err != nil {
		log.Fatalf("could not generate RCT crossings: %+v", err)
	}
}

func process(oname string, run uint32, n int, seed int64, occ float64) error {
	w, err := lcio.Create(oname)
	if err != nil {
		return fmt.Errorf("could not create LCIO file: %w", err)
	}
	defer w.Close()

	err = rctio.WriteRunHeader(w, run)
	if err != nil {
		return fmt.Errorf("could not write run header: %w", err)
	}

	gen := newGenerator(seed, occ)
	for i := 0; i < n; i++ {
		in := gen.crossing(run, uint32(i))
		err = rctio.WriteInput(w, &in)
		if err != nil {
			return fmt.Errorf("could not write crossing %d: %w", i, err)
		}
	}

	err = w.Close()
	if err != nil {
		return fmt.Errorf("could not close LCIO file: %w", err)
	}

	log.Printf("generated %d crossings into %q", n, oname)
	return nil
}

type generator struct {
	rnd *rand.Rand
	occ float64
}

func newGenerator(seed int64, occ float64) *generator {
	return &generator{
		rnd: rand.New(rand.NewSource(seed)),
		occ: occ,
	}
}

// crossing returns a random valid bunch crossing for all the RCT crates.
func (gen *generator) crossing(run, evt uint32) crossing.Input {
	in := crossing.Input{
		Header: crossing.Header{
			Run:   run,
			Lumi:  1 + evt/orbit,
			Event: evt,
		},
		ElecBC0: evt%orbit == 0,
		JetBC0:  evt%orbit == 0,
	}

	for crate := uint8(0); crate < link.NumCrates; crate++ {
		for card := uint8(0); card < link.NumCards; card++ {
			for idx := uint8(0); idx < link.NumRegions; idx++ {
				if gen.rnd.Float64() >= gen.occ {
					continue
				}
				et := uint16(gen.rnd.Intn(1 << link.RegionEtBits))
				in.Regions = append(in.Regions, link.Region{
					Crate:     crate,
					Card:      card,
					Index:     idx,
					Et:        et,
					Tau:       gen.flag(0.1),
					MIP:       gen.flag(0.1),
					Overflow:  et == 1<<link.RegionEtBits-1 || gen.flag(0.01),
					FineGrain: gen.flag(0.1),
				})
			}
		}

		for idx := uint8(0); idx < link.NumHF; idx++ {
			if gen.rnd.Float64() >= gen.occ {
				continue
			}
			in.Regions = append(in.Regions, link.Region{
				Crate:     crate,
				Index:     idx,
				Et:        uint16(gen.rnd.Intn(1 << link.HFEtBits)),
				FineGrain: gen.flag(0.1),
				HF:        true,
			})
		}

		for _, iso := range []bool{true, false} {
			n := gen.rnd.Intn(link.NumSlots + 1)
			for slot := 0; slot < n; slot++ {
				in.Cands = append(in.Cands, link.Candidate{
					Crate:  crate,
					Card:   uint8(gen.rnd.Intn(link.NumCards)),
					Region: uint8(gen.rnd.Intn(link.NumRegions)),
					Slot:   uint8(slot),
					Rank:   uint8(gen.rnd.Intn(1 << link.RankBits)),
					Iso:    iso,
				})
			}
		}
	}

	return in
}

func (gen *generator) flag(p float64) bool {
	return gen.rnd.Float64() < p
}
