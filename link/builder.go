// Copyright 2023 The go-lpc Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package link

import (
	"golang.org/x/xerrors"
)

type state uint8

const (
	stateEmpty state = iota
	statePopulated
	stateFinalized
)

// regionBits holds the separated bits of a barrel/endcap region.
type regionBits struct {
	et    [RegionEtBits]uint8
	of    uint8
	tau   uint8
	mip   uint8
	fg    uint8
	quiet uint8
}

// hfBits holds the separated bits of an HF region.
type hfBits struct {
	et [HFEtBits]uint8
	fg uint8
}

// emBits holds the separated bits of an electron/photon candidate.
type emBits struct {
	rank [RankBits]uint8
	pos  [PosBits]uint8
}

// Builder accumulates the RCT output of a single crate for one bunch
// crossing and arranges it into the 2 oRSC link frames.
//
// A Builder goes through 3 states: empty, populated (after any add
// method) and finalized. Once finalized, no more data can be added:
// a new Builder must be created for the next crossing.
//
// A Builder is not safe for concurrent use.
type Builder struct {
	crate uint8
	lay   *Layout
	state state

	bc0 struct {
		elec uint8
		jet  uint8
	}

	rc  [NumCards][NumRegions]regionBits
	hf  [NumHF]hfBits
	iso [NumSlots]emBits
	non [NumSlots]emBits

	links [NumLinks]Frame
}

// NewBuilder creates a new link builder for the provided crate,
// using the layout of format f.
func NewBuilder(crate uint8, f Format) (*Builder, error) {
	if crate >= NumCrates {
		return nil, xerrors.Errorf("link: invalid crate %d: %w", crate, ErrOutOfRange)
	}
	lay, err := LayoutOf(f)
	if err != nil {
		return nil, err
	}
	return &Builder{crate: crate, lay: lay}, nil
}

// Crate returns the crate number of the builder.
func (b *Builder) Crate() uint8 { return b.crate }

// Format returns the layout version of the builder.
func (b *Builder) Format() Format { return b.lay.Format }

func (b *Builder) canAdd() error {
	if b.state == stateFinalized {
		return xerrors.Errorf("link: crate %d: %w", b.crate, ErrFinalized)
	}
	return nil
}

// SetBC0 sets the electron and jet bunch-crossing-zero bits.
// Layouts that do not carry these bits ignore them.
func (b *Builder) SetBC0(elec, jet bool) error {
	if err := b.canAdd(); err != nil {
		return err
	}
	b.bc0.elec = bit(elec)
	b.bc0.jet = bit(jet)
	b.state = statePopulated
	return nil
}

// AddRegion separates and stores the bits of the provided region.
// Adding a region twice at the same card and index replaces the
// previously stored bits.
func (b *Builder) AddRegion(reg Region) error {
	if err := b.canAdd(); err != nil {
		return err
	}
	if reg.Crate != b.crate {
		return xerrors.Errorf(
			"link: crate %d: could not add %v: %w",
			b.crate, reg, ErrCrateMismatch,
		)
	}

	if reg.HF {
		if reg.Index >= NumHF {
			return xerrors.Errorf(
				"link: crate %d: invalid HF region index %d: %w",
				b.crate, reg.Index, ErrOutOfRange,
			)
		}
		hf := &b.hf[reg.Index]
		Decompose(hf.et[:], uint32(reg.Et), false)
		hf.fg = bit(reg.FineGrain)
		b.state = statePopulated
		return nil
	}

	if reg.Card >= NumCards || reg.Index >= NumRegions {
		return xerrors.Errorf(
			"link: crate %d: invalid region card=%d index=%d: %w",
			b.crate, reg.Card, reg.Index, ErrOutOfRange,
		)
	}

	rc := &b.rc[reg.Card][reg.Index]
	Decompose(rc.et[:], uint32(reg.Et), reg.Overflow && b.lay.Format.saturates())
	rc.of = bit(reg.Overflow)
	rc.tau = bit(reg.Tau)
	rc.mip = bit(reg.MIP)
	rc.fg = bit(reg.FineGrain)
	rc.quiet = bit(!reg.Tau && !reg.MIP)
	b.state = statePopulated
	return nil
}

// AddCandidate separates and stores the rank and position bits of the
// provided electron/photon candidate, in the pool of its isolation class.
// Isolated candidates are sent on link 1, non-isolated ones on link 2.
// Adding a candidate twice at the same slot replaces the previously
// stored bits.
func (b *Builder) AddCandidate(cand Candidate) error {
	if err := b.canAdd(); err != nil {
		return err
	}
	if cand.Crate != b.crate {
		return xerrors.Errorf(
			"link: crate %d: could not add %v: %w",
			b.crate, cand, ErrCrateMismatch,
		)
	}
	if cand.Slot >= NumSlots || cand.Region >= NumRegions || cand.Card >= NumCards {
		return xerrors.Errorf(
			"link: crate %d: invalid candidate slot=%d card=%d region=%d: %w",
			b.crate, cand.Slot, cand.Card, cand.Region, ErrOutOfRange,
		)
	}

	em := &b.non[cand.Slot]
	if cand.Iso {
		em = &b.iso[cand.Slot]
	}
	Decompose(em.rank[:], uint32(cand.Rank), false)
	Decompose(em.pos[:], cand.pos(), false)
	b.state = statePopulated
	return nil
}

// Finalize arranges the stored bits into the 2 link frames, following
// the layout of the builder's format.
// Finalize may be called multiple times: frames are recomputed from
// the stored bits each time.
func (b *Builder) Finalize() {
	for i, rows := range b.lay.Links {
		frame := &b.links[i]
		frame.reset(len(rows))
		for row := range rows {
			for col, cell := range rows[row] {
				frame.bits[row][col] = b.value(cell)
			}
		}
	}
	b.state = stateFinalized
}

// value returns the stored bit referenced by the cell.
func (b *Builder) value(c Cell) uint8 {
	switch c.Kind {
	case ElecBC0:
		return b.bc0.elec
	case JetBC0:
		return b.bc0.jet
	case RegionEt:
		return b.rc[c.Card][c.Index].et[c.Bit]
	case RegionOverflow:
		return b.rc[c.Card][c.Index].of
	case RegionTau:
		return b.rc[c.Card][c.Index].tau
	case RegionMIP:
		return b.rc[c.Card][c.Index].mip
	case RegionFineGrain:
		return b.rc[c.Card][c.Index].fg
	case RegionQuiet:
		return b.rc[c.Card][c.Index].quiet
	case HFEt:
		return b.hf[c.Index].et[c.Bit]
	case HFFineGrain:
		return b.hf[c.Index].fg
	case IsoRank:
		return b.iso[c.Index].rank[c.Bit]
	case IsoPos:
		return b.iso[c.Index].pos[c.Bit]
	case NonIsoRank:
		return b.non[c.Index].rank[c.Bit]
	case NonIsoPos:
		return b.non[c.Index].pos[c.Bit]
	}
	return 0
}

func (b *Builder) frame(link int) (*Frame, error) {
	if link < 1 || link > NumLinks {
		return nil, xerrors.Errorf("link: crate %d: link %d: %w", b.crate, link, ErrInvalidLink)
	}
	if b.state != stateFinalized {
		return nil, xerrors.Errorf("link: crate %d: link %d: %w", b.crate, link, ErrNotReady)
	}
	return &b.links[link-1], nil
}

// Frame returns a copy of the finalized frame of the provided link (1 or 2).
func (b *Builder) Frame(link int) (Frame, error) {
	f, err := b.frame(link)
	if err != nil {
		return Frame{}, err
	}
	return f.clone(), nil
}

// Words returns the finalized frame of the provided link (1 or 2),
// grouped into output words as defined by the builder's format.
func (b *Builder) Words(link int) ([]uint32, error) {
	f, err := b.frame(link)
	if err != nil {
		return nil, err
	}
	return b.lay.Format.group(f), nil
}
