// Copyright 2023 The go-lpc Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package pattern reads and writes oRSC link pattern files.
//
// Two formats are provided:
//   - a text format, one line per crate link, meant for humans and
//     for the pattern-injection firmware tools,
//   - a binary format, one CRC-16 protected record per bunch crossing.
//
// A binary record is laid out as follows (big-endian):
//
//	0xb0                   crossing header marker
//	u8                     link format
//	u32 u32 u32            run, luminosity section, event
//	u8                     number of crates
//	for each crate:
//	  0xb4                 crate header marker
//	  u8                   crate number
//	  for each link:
//	    u8                 number of words
//	    u32|u8 ...         words (u32 for legacy, u8 for extended)
//	  0xa3                 crate trailer marker
//	0xa0                   crossing trailer marker
//	u16                    CRC-16 of all the previous bytes of the record
package pattern // import "github.com/go-lpc/orsc/pattern"

import (
	"github.com/go-lpc/orsc/crossing"
	"github.com/go-lpc/orsc/link"
)

const (
	cxHeader  = 0xb0 // crossing header marker
	cxTrailer = 0xa0 // crossing trailer marker

	crHeader  = 0xb4 // crate header marker
	crTrailer = 0xa3 // crate trailer marker
)

// Record is the content of the oRSC links of all the enabled crates,
// for one bunch crossing.
type Record struct {
	Header crossing.Header
	Format link.Format
	Links  []crossing.Links
}

// RecordOf returns the pattern record of an encoded bunch crossing.
func RecordOf(res crossing.Result) Record {
	return Record{
		Header: res.Header,
		Format: res.Format,
		Links:  res.Links,
	}
}
