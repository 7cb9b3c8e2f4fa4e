// Copyright 2023 The go-lpc Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package pattern

import (
	"encoding/binary"
	"io"

	"github.com/go-lpc/orsc/internal/crc16"
	"github.com/go-lpc/orsc/link"
	"golang.org/x/xerrors"
)

// Encoder writes binary pattern records to an output stream.
// Encoder computes the CRC-16 checksum of each record on the fly and
// appends it at the end of the record.
type Encoder struct {
	w   io.Writer
	buf []byte
	err error
	crc crc16.Hash16
}

// NewEncoder returns a new Encoder that writes to w.
func NewEncoder(w io.Writer) *Encoder {
	return &Encoder{
		w:   w,
		buf: make([]byte, 4),
		crc: crc16.New(nil),
	}
}

func (enc *Encoder) crcw(p []byte) {
	_, _ = enc.crc.Write(p) // can not fail.
}

// Encode writes the record to the stream, followed by its CRC-16 checksum.
func (enc *Encoder) Encode(rec *Record) error {
	if rec == nil {
		return nil
	}
	if enc.err != nil {
		return enc.err
	}

	if !rec.Format.Valid() {
		return xerrors.Errorf("pattern: invalid record format %v: %w", rec.Format, link.ErrFormat)
	}
	if len(rec.Links) > link.NumCrates {
		return xerrors.Errorf("pattern: too many crates (%d)", len(rec.Links))
	}
	nwords := rec.Format.Words()
	for _, lnk := range rec.Links {
		for i, ws := range lnk.Words {
			if len(ws) != nwords {
				return xerrors.Errorf(
					"pattern: crate %d link %d: invalid number of words (got=%d, want=%d)",
					lnk.Crate, i+1, len(ws), nwords,
				)
			}
		}
	}

	enc.crc.Reset()

	enc.writeU8(cxHeader)
	enc.writeU8(uint8(rec.Format))
	enc.writeU32(rec.Header.Run)
	enc.writeU32(rec.Header.Lumi)
	enc.writeU32(rec.Header.Event)
	enc.writeU8(uint8(len(rec.Links)))
	if enc.err != nil {
		return xerrors.Errorf("pattern: could not write crossing header: %w", enc.err)
	}

	for _, lnk := range rec.Links {
		enc.writeU8(crHeader)
		enc.writeU8(lnk.Crate)
		for _, ws := range lnk.Words {
			enc.writeU8(uint8(len(ws)))
			for _, w := range ws {
				switch rec.Format {
				case link.Legacy:
					enc.writeU32(w)
				case link.Extended:
					enc.writeU8(uint8(w))
				}
			}
		}
		enc.writeU8(crTrailer)
		if enc.err != nil {
			return xerrors.Errorf("pattern: could not write crate %d: %w", lnk.Crate, enc.err)
		}
	}

	enc.writeU8(cxTrailer)

	crc := enc.crc.Sum16()
	enc.writeU16(crc)
	if enc.err != nil {
		return xerrors.Errorf("pattern: could not write crossing trailer: %w", enc.err)
	}

	return nil
}

func (enc *Encoder) write(p []byte) {
	if enc.err != nil {
		return
	}
	_, enc.err = enc.w.Write(p)
	enc.crcw(p)
}

func (enc *Encoder) writeU8(v uint8) {
	const n = 1
	enc.buf[0] = v
	enc.write(enc.buf[:n])
}

func (enc *Encoder) writeU16(v uint16) {
	const n = 2
	binary.BigEndian.PutUint16(enc.buf[:n], v)
	enc.write(enc.buf[:n])
}

func (enc *Encoder) writeU32(v uint32) {
	const n = 4
	binary.BigEndian.PutUint32(enc.buf[:n], v)
	enc.write(enc.buf[:n])
}
