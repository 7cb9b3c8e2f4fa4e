// Copyright 2023 The go-lpc Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package link

import (
	"fmt"

	"golang.org/x/xerrors"
)

// Kind identifies the source of a link frame bit.
type Kind uint8

const (
	Pad             Kind = iota // reserved/padding bit, always 0
	ElecBC0                     // electron bunch-crossing-zero
	JetBC0                      // jet bunch-crossing-zero
	RegionEt                    // barrel/endcap region Et bit
	RegionOverflow              // barrel/endcap region overflow
	RegionTau                   // barrel/endcap region tau veto
	RegionMIP                   // barrel/endcap region MIP veto
	RegionFineGrain             // barrel/endcap region fine grain
	RegionQuiet                 // neither tau nor MIP veto (legacy Et-ID)
	HFEt                        // HF region Et bit
	HFFineGrain                 // HF region fine grain
	IsoRank                     // isolated candidate rank bit
	IsoPos                      // isolated candidate position bit
	NonIsoRank                  // non-isolated candidate rank bit
	NonIsoPos                   // non-isolated candidate position bit
)

var kindNames = [...]string{
	Pad:             "0",
	ElecBC0:         "ElecBC0",
	JetBC0:          "JetBC0",
	RegionEt:        "RC",
	RegionOverflow:  "RCOf",
	RegionTau:       "RCTau",
	RegionMIP:       "RCHad",
	RegionFineGrain: "RCFg",
	RegionQuiet:     "RCEtId",
	HFEt:            "HFEt",
	HFFineGrain:     "HFFg",
	IsoRank:         "IE",
	IsoPos:          "IEPos",
	NonIsoRank:      "NE",
	NonIsoPos:       "NEPos",
}

func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return fmt.Sprintf("Kind(%d)", uint8(k))
}

// Cell is the source of one bit of a link frame.
//
// Card and Index address barrel/endcap regions (card, region index),
// HF regions (Index) and candidates (Index is the slot).
// Bit is the bit number inside multi-bit fields.
type Cell struct {
	Kind  Kind
	Card  uint8
	Index uint8
	Bit   uint8
}

func (c Cell) String() string {
	switch c.Kind {
	case Pad, ElecBC0, JetBC0:
		return c.Kind.String()
	case RegionEt:
		return fmt.Sprintf("%v[%d][%d][%d]", c.Kind, c.Card, c.Index, c.Bit)
	case RegionOverflow, RegionTau, RegionMIP, RegionFineGrain, RegionQuiet:
		return fmt.Sprintf("%v[%d][%d]", c.Kind, c.Card, c.Index)
	case HFFineGrain:
		return fmt.Sprintf("%v[%d]", c.Kind, c.Index)
	default:
		return fmt.Sprintf("%v[%d][%d]", c.Kind, c.Index, c.Bit)
	}
}

func (c Cell) valid() bool {
	switch c.Kind {
	case Pad, ElecBC0, JetBC0:
		return c.Card == 0 && c.Index == 0 && c.Bit == 0
	case RegionEt:
		return c.Card < NumCards && c.Index < NumRegions && c.Bit < RegionEtBits
	case RegionOverflow, RegionTau, RegionMIP, RegionFineGrain, RegionQuiet:
		return c.Card < NumCards && c.Index < NumRegions && c.Bit == 0
	case HFEt:
		return c.Index < NumHF && c.Bit < HFEtBits
	case HFFineGrain:
		return c.Index < NumHF && c.Bit == 0
	case IsoRank, NonIsoRank:
		return c.Index < NumSlots && c.Bit < RankBits
	case IsoPos, NonIsoPos:
		return c.Index < NumSlots && c.Bit < PosBits
	}
	return false
}

// Layout is the bit assignment of the 2 oRSC links for a given format.
// Links[i][row][col] is the source of the bit at (row, col) of link i+1.
// Column 0 is the most significant bit of a row.
type Layout struct {
	Format Format
	Links  [NumLinks][][NumCols]Cell
}

// LayoutOf returns the layout of the provided format.
func LayoutOf(f Format) (*Layout, error) {
	switch f {
	case Legacy:
		return &legacyLayout, nil
	case Extended:
		return &extendedLayout, nil
	}
	return nil, xerrors.Errorf("link: no layout for format %v: %w", f, ErrFormat)
}

var (
	legacyLayout = Layout{
		Format: Legacy,
		Links:  [NumLinks][][NumCols]Cell{legacyLink1[:], legacyLink2[:]},
	}

	extendedLayout = Layout{
		Format: Extended,
		Links:  [NumLinks][][NumCols]Cell{extendedLink1[:], extendedLink2[:]},
	}
)

// Validate checks the layout is consistent with its format:
// each link has Format.Rows rows, every cell addresses a valid source
// and no source bit appears twice in the layout. The BC0 bits are the
// exception: they may be repeated once on each link.
func (lay *Layout) Validate() error {
	if !lay.Format.Valid() {
		return xerrors.Errorf("link: invalid layout format %v: %w", lay.Format, ErrFormat)
	}
	seen := make(map[Cell]string)
	for i, rows := range lay.Links {
		if got, want := len(rows), lay.Format.Rows(); got != want {
			return xerrors.Errorf(
				"link: invalid number of rows for link %d (got=%d, want=%d)",
				i+1, got, want,
			)
		}
		for k := range seen {
			if k.Kind == ElecBC0 || k.Kind == JetBC0 {
				delete(seen, k)
			}
		}
		for row := range rows {
			for col, cell := range rows[row] {
				if !cell.valid() {
					return xerrors.Errorf(
						"link: invalid cell %v at link=%d row=%d col=%d",
						cell, i+1, row, col,
					)
				}
				if cell.Kind == Pad {
					continue
				}
				where := fmt.Sprintf("link=%d row=%d col=%d", i+1, row, col)
				if prev, dup := seen[cell]; dup {
					return xerrors.Errorf(
						"link: duplicate cell %v at %s and %s",
						cell, prev, where,
					)
				}
				seen[cell] = where
			}
		}
	}
	return nil
}

// Sources returns how many times each source cell is referenced by
// the layout. Padding cells are counted under the zero Cell.
func (lay *Layout) Sources() map[Cell]int {
	o := make(map[Cell]int)
	for _, rows := range lay.Links {
		for _, row := range rows {
			for _, cell := range row {
				o[cell]++
			}
		}
	}
	return o
}

// Helpers to write the layout tables.

var (
	pad  = Cell{Kind: Pad}
	bc0e = Cell{Kind: ElecBC0}
	bc0j = Cell{Kind: JetBC0}
)

func rc(card, region, bit uint8) Cell {
	return Cell{Kind: RegionEt, Card: card, Index: region, Bit: bit}
}

func rcOf(card, region uint8) Cell  { return Cell{Kind: RegionOverflow, Card: card, Index: region} }
func rcTau(card, region uint8) Cell { return Cell{Kind: RegionTau, Card: card, Index: region} }
func rcHad(card, region uint8) Cell { return Cell{Kind: RegionMIP, Card: card, Index: region} }
func rcID(card, region uint8) Cell  { return Cell{Kind: RegionQuiet, Card: card, Index: region} }

func hf(region, bit uint8) Cell { return Cell{Kind: HFEt, Index: region, Bit: bit} }
func hfFg(region uint8) Cell    { return Cell{Kind: HFFineGrain, Index: region} }

func ie(slot, bit uint8) Cell    { return Cell{Kind: IsoRank, Index: slot, Bit: bit} }
func iePos(slot, bit uint8) Cell { return Cell{Kind: IsoPos, Index: slot, Bit: bit} }
func ne(slot, bit uint8) Cell    { return Cell{Kind: NonIsoRank, Index: slot, Bit: bit} }
func nePos(slot, bit uint8) Cell { return Cell{Kind: NonIsoPos, Index: slot, Bit: bit} }
