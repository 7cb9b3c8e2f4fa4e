// Copyright 2023 The go-lpc Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package link arranges the output bits of a single RCT crate into the
// bit fields of the 2 oRSC optical links.
//
// A Builder is created per crate and per bunch crossing. Regions and
// electron/photon candidates are added to it, then Finalize applies the
// Layout of the selected Format to compute the 2 link frames, which are
// read back as output words with Builder.Words.
package link // import "github.com/go-lpc/orsc/link"

import (
	"fmt"
	"strings"

	"golang.org/x/xerrors"
)

const (
	NumCrates = 18 // number of RCT crates
	NumLinks  = 2  // number of oRSC optical links per crate
	NumCols   = 8  // number of bits per link frame row

	NumCards   = 7 // number of receiver cards per crate
	NumRegions = 2 // number of barrel/endcap regions per card
	NumHF      = 8 // number of HF regions per crate
	NumSlots   = 4 // number of candidates per isolation class

	RegionEtBits = 10 // barrel/endcap region Et width
	HFEtBits     = 8  // HF region Et width
	RankBits     = 6  // candidate rank width
	PosBits      = 4  // candidate position width (region + 3 card bits)
)

// Format describes a version of the oRSC link layout.
type Format uint8

const (
	Legacy   Format = 1 // 16 rows per link, no HF, saturating Et.
	Extended Format = 2 // 24 rows per link, HF, overflow as its own bit.
)

// ParseFormat returns the format named s.
// Both names ("legacy", "extended") and numbers ("1", "2") are accepted.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "legacy", "1", "v1":
		return Legacy, nil
	case "extended", "2", "v2":
		return Extended, nil
	}
	return 0, xerrors.Errorf("link: invalid format %q: %w", s, ErrFormat)
}

func (f Format) String() string {
	switch f {
	case Legacy:
		return "legacy"
	case Extended:
		return "extended"
	default:
		return fmt.Sprintf("Format(%d)", uint8(f))
	}
}

// Valid reports whether f is a known layout version.
func (f Format) Valid() bool {
	return f == Legacy || f == Extended
}

// Rows returns the number of rows of a link frame.
func (f Format) Rows() int {
	switch f {
	case Legacy:
		return 16
	case Extended:
		return 24
	}
	return 0
}

// WordBits returns the width in bits of the output words.
func (f Format) WordBits() int {
	switch f {
	case Legacy:
		return 32
	case Extended:
		return 8
	}
	return 0
}

// Words returns the number of output words per link.
func (f Format) Words() int {
	if !f.Valid() {
		return 0
	}
	return f.Rows() * NumCols / f.WordBits()
}

// saturates reports whether an overflowing region has all its
// Et bits forced to one.
func (f Format) saturates() bool {
	return f == Legacy
}

// Region is a calorimeter region energy sum, as produced by a
// receiver card (barrel/endcap) or by the HF.
type Region struct {
	Crate uint8
	Card  uint8  // receiver card, ignored for HF regions
	Index uint8  // region index: 0-1 for barrel/endcap, 0-7 for HF
	Et    uint16 // 10 bits (barrel/endcap) or 8 bits (HF)

	Tau       bool // tau veto
	MIP       bool // hadronic (MIP) veto
	Overflow  bool
	FineGrain bool
	HF        bool
}

func (r Region) String() string {
	if r.HF {
		return fmt.Sprintf("HF{crate=%d index=%d et=%d fg=%v}", r.Crate, r.Index, r.Et, r.FineGrain)
	}
	return fmt.Sprintf(
		"Region{crate=%d card=%d index=%d et=%d tau=%v mip=%v of=%v fg=%v}",
		r.Crate, r.Card, r.Index, r.Et, r.Tau, r.MIP, r.Overflow, r.FineGrain,
	)
}

// Candidate is an electron/photon trigger candidate.
type Candidate struct {
	Crate  uint8
	Card   uint8
	Region uint8 // 0-1
	Slot   uint8 // 0-3, rank order inside its isolation class
	Rank   uint8 // 6 bits
	Iso    bool  // isolated or non-isolated class
}

func (c Candidate) String() string {
	return fmt.Sprintf(
		"EM{crate=%d card=%d region=%d slot=%d rank=%d iso=%v}",
		c.Crate, c.Card, c.Region, c.Slot, c.Rank, c.Iso,
	)
}

// pos returns the 4-bit candidate position: region in bit 0,
// card in bits 1-3.
func (c Candidate) pos() uint32 {
	return uint32(c.Region&0x1) | uint32(c.Card&0x7)<<1
}
