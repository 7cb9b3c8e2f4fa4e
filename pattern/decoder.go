// Copyright 2023 The go-lpc Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package pattern

import (
	"encoding/binary"
	"io"

	"github.com/go-lpc/orsc/crossing"
	"github.com/go-lpc/orsc/internal/crc16"
	"github.com/go-lpc/orsc/link"
	"golang.org/x/xerrors"
)

// Decoder reads (and validates) binary pattern records from an
// underlying data source.
// Decoder computes the CRC-16 checksum of each record on the fly.
type Decoder struct {
	r io.Reader

	buf []byte
	err error
	crc crc16.Hash16
}

// NewDecoder creates a decoder that reads and validates records from r.
func NewDecoder(r io.Reader) *Decoder {
	return &Decoder{
		r:   r,
		buf: make([]byte, 4),
		crc: crc16.New(nil),
	}
}

func (dec *Decoder) crcw(p []byte) {
	_, _ = dec.crc.Write(p) // can not fail.
}

// Decode reads the next record from the stream.
// Decode returns an error wrapping io.EOF when the stream holds no
// more record.
func (dec *Decoder) Decode(rec *Record) error {
	dec.crc.Reset()
	dec.err = nil

	v := dec.readU8()
	if dec.err != nil {
		return xerrors.Errorf("pattern: could not read crossing header marker: %w", dec.err)
	}
	if v != cxHeader {
		return xerrors.Errorf("pattern: invalid crossing header marker (got=0x%x)", v)
	}

	var (
		format = link.Format(dec.readU8())
		hdr    = crossing.Header{
			Run:   dec.readU32(),
			Lumi:  dec.readU32(),
			Event: dec.readU32(),
		}
		ncrates = int(dec.readU8())
	)
	if dec.err != nil {
		return xerrors.Errorf("pattern: could not read crossing header: %w", dec.unexpected())
	}
	if !format.Valid() {
		return xerrors.Errorf("pattern: invalid link format 0x%x: %w", uint8(format), link.ErrFormat)
	}
	if ncrates > link.NumCrates {
		return xerrors.Errorf("pattern: invalid number of crates (got=%d, max=%d)", ncrates, link.NumCrates)
	}

	rec.Header = hdr
	rec.Format = format
	rec.Links = make([]crossing.Links, ncrates)

	nwords := format.Words()
	for i := range rec.Links {
		lnk := &rec.Links[i]
		v := dec.readU8()
		if dec.err != nil {
			return xerrors.Errorf("pattern: could not read crate header marker: %w", dec.unexpected())
		}
		if v != crHeader {
			return xerrors.Errorf("pattern: invalid crate header marker (got=0x%x)", v)
		}
		lnk.Crate = dec.readU8()
		if dec.err != nil {
			return xerrors.Errorf("pattern: could not read crate number: %w", dec.unexpected())
		}
		if lnk.Crate >= link.NumCrates {
			return xerrors.Errorf("pattern: invalid crate number %d: %w", lnk.Crate, link.ErrOutOfRange)
		}

		for j := range lnk.Words {
			n := int(dec.readU8())
			if dec.err != nil {
				return xerrors.Errorf(
					"pattern: crate %d link %d: could not read number of words: %w",
					lnk.Crate, j+1, dec.unexpected(),
				)
			}
			if n != nwords {
				return xerrors.Errorf(
					"pattern: crate %d link %d: invalid number of words (got=%d, want=%d)",
					lnk.Crate, j+1, n, nwords,
				)
			}
			ws := make([]uint32, n)
			for k := range ws {
				switch format {
				case link.Legacy:
					ws[k] = dec.readU32()
				case link.Extended:
					ws[k] = uint32(dec.readU8())
				}
			}
			if dec.err != nil {
				return xerrors.Errorf(
					"pattern: crate %d link %d: could not read words: %w",
					lnk.Crate, j+1, dec.unexpected(),
				)
			}
			lnk.Words[j] = ws
		}

		v = dec.readU8()
		if dec.err != nil {
			return xerrors.Errorf("pattern: crate %d: could not read crate trailer marker: %w", lnk.Crate, dec.unexpected())
		}
		if v != crTrailer {
			return xerrors.Errorf("pattern: crate %d: invalid crate trailer marker (got=0x%x)", lnk.Crate, v)
		}
	}

	v = dec.readU8()
	if dec.err != nil {
		return xerrors.Errorf("pattern: could not read crossing trailer marker: %w", dec.unexpected())
	}
	if v != cxTrailer {
		return xerrors.Errorf("pattern: invalid crossing trailer marker (got=0x%x)", v)
	}

	comp := dec.crc.Sum16()
	recv := dec.readU16()
	if dec.err != nil {
		return xerrors.Errorf("pattern: could not read CRC-16: %w", dec.unexpected())
	}
	if comp != recv {
		return xerrors.Errorf("pattern: inconsistent CRC: recv=0x%04x comp=0x%04x", recv, comp)
	}

	return nil
}

// unexpected returns the current error, with io.EOF turned into
// io.ErrUnexpectedEOF as it happened in the middle of a record.
func (dec *Decoder) unexpected() error {
	if xerrors.Is(dec.err, io.EOF) {
		dec.err = io.ErrUnexpectedEOF
	}
	return dec.err
}

func (dec *Decoder) load(n int) {
	if dec.err != nil {
		return
	}
	_, dec.err = io.ReadFull(dec.r, dec.buf[:n])
	if dec.err != nil {
		return
	}
	dec.crcw(dec.buf[:n])
}

func (dec *Decoder) readU8() uint8 {
	dec.load(1)
	return dec.buf[0]
}

func (dec *Decoder) readU16() uint16 {
	const n = 2
	dec.load(n)
	return binary.BigEndian.Uint16(dec.buf[:n])
}

func (dec *Decoder) readU32() uint32 {
	const n = 4
	dec.load(n)
	return binary.BigEndian.Uint32(dec.buf[:n])
}
