// Copyright 2023 The go-lpc Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package rctio

import (
	"fmt"
	"io"

	"github.com/go-daq/tdaq"
	"github.com/go-lpc/orsc/crossing"
	"github.com/go-lpc/orsc/link"
)

// EncodeInput writes the bunch crossing to w, using the TDAQ encoding:
//   - run, lumi, event (u32) and BC0 flags (u8),
//   - number of regions (u32), then per region:
//     crate, card, index (u8), et (u16) and flags (u8),
//   - number of candidates (u32), then per candidate:
//     crate, card, region, slot, rank and iso (u8).
func EncodeInput(w io.Writer, in *crossing.Input) error {
	enc := tdaq.NewEncoder(w)
	enc.WriteU32(in.Run)
	enc.WriteU32(in.Lumi)
	enc.WriteU32(in.Event)
	enc.WriteU8(uint8(bit(in.ElecBC0, flagElecBC0) | bit(in.JetBC0, flagJetBC0)))

	enc.WriteU32(uint32(len(in.Regions)))
	for _, reg := range in.Regions {
		enc.WriteU8(reg.Crate)
		enc.WriteU8(reg.Card)
		enc.WriteU8(reg.Index)
		enc.WriteU16(reg.Et)
		enc.WriteU8(uint8(
			bit(reg.Tau, flagTau) |
				bit(reg.MIP, flagMIP) |
				bit(reg.Overflow, flagOverflow) |
				bit(reg.FineGrain, flagFineGrain) |
				bit(reg.HF, flagHF),
		))
	}

	enc.WriteU32(uint32(len(in.Cands)))
	for _, c := range in.Cands {
		enc.WriteU8(c.Crate)
		enc.WriteU8(c.Card)
		enc.WriteU8(c.Region)
		enc.WriteU8(c.Slot)
		enc.WriteU8(c.Rank)
		enc.WriteU8(uint8(bit(c.Iso, 1)))
	}

	if err := enc.Err(); err != nil {
		return fmt.Errorf("rctio: could not encode crossing (%v): %w", in.Header, err)
	}
	return nil
}

// DecodeInput reads a bunch crossing encoded with EncodeInput from r.
func DecodeInput(r io.Reader, in *crossing.Input) error {
	dec := tdaq.NewDecoder(r)
	in.Run = dec.ReadU32()
	in.Lumi = dec.ReadU32()
	in.Event = dec.ReadU32()
	bc0 := int32(dec.ReadU8())
	in.ElecBC0 = bc0&flagElecBC0 != 0
	in.JetBC0 = bc0&flagJetBC0 != 0

	n := dec.ReadU32()
	if err := dec.Err(); err != nil {
		return fmt.Errorf("rctio: could not decode crossing header: %w", err)
	}
	if n > maxRecords {
		return fmt.Errorf("rctio: invalid number of regions (%d)", n)
	}
	in.Regions = make([]link.Region, n)
	for i := range in.Regions {
		reg := &in.Regions[i]
		reg.Crate = dec.ReadU8()
		reg.Card = dec.ReadU8()
		reg.Index = dec.ReadU8()
		reg.Et = dec.ReadU16()
		flags := int32(dec.ReadU8())
		reg.Tau = flags&flagTau != 0
		reg.MIP = flags&flagMIP != 0
		reg.Overflow = flags&flagOverflow != 0
		reg.FineGrain = flags&flagFineGrain != 0
		reg.HF = flags&flagHF != 0
	}

	n = dec.ReadU32()
	if err := dec.Err(); err != nil {
		return fmt.Errorf("rctio: could not decode regions of crossing (%v): %w", in.Header, err)
	}
	if n > maxRecords {
		return fmt.Errorf("rctio: invalid number of candidates (%d)", n)
	}
	in.Cands = make([]link.Candidate, n)
	for i := range in.Cands {
		c := &in.Cands[i]
		c.Crate = dec.ReadU8()
		c.Card = dec.ReadU8()
		c.Region = dec.ReadU8()
		c.Slot = dec.ReadU8()
		c.Rank = dec.ReadU8()
		c.Iso = dec.ReadU8() != 0
	}

	if err := dec.Err(); err != nil {
		return fmt.Errorf("rctio: could not decode candidates of crossing (%v): %w", in.Header, err)
	}
	return nil
}

// maxRecords bounds the number of regions or candidates of a crossing
// read from the wire.
const maxRecords = 1 << 16
