// Copyright 2023 The go-lpc Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package link

// Frame is the payload of one oRSC link for one bunch crossing:
// a matrix of Rows()x8 bits. Column 0 is the most significant bit of
// a row.
type Frame struct {
	bits [][NumCols]uint8
}

func (f *Frame) reset(rows int) {
	if cap(f.bits) < rows {
		f.bits = make([][NumCols]uint8, rows)
	}
	f.bits = f.bits[:rows]
	for i := range f.bits {
		f.bits[i] = [NumCols]uint8{}
	}
}

func (f *Frame) clone() Frame {
	o := Frame{bits: make([][NumCols]uint8, len(f.bits))}
	copy(o.bits, f.bits)
	return o
}

// Rows returns the number of rows of the frame.
func (f Frame) Rows() int { return len(f.bits) }

// Bit returns the bit at the provided row and column.
func (f Frame) Bit(row, col int) uint8 {
	return f.bits[row][col]
}

// Byte returns the 8 bits of a row, column 0 being the most
// significant bit.
func (f Frame) Byte(row int) uint8 {
	var v uint8
	for _, b := range f.bits[row] {
		v <<= 1
		v |= b & 0x1
	}
	return v
}

// group arranges the bits of the frame into output words.
//
// Legacy frames are sent as 32-bit words, each made of 4 consecutive
// rows, most significant bit first. Row 0 is reserved and always sent
// as zeros.
// Extended frames are sent as one byte per row.
func (f Format) group(frame *Frame) []uint32 {
	switch f {
	case Legacy:
		const rowsPerWord = 4
		var (
			n    = frame.Rows() / rowsPerWord
			vals = make([]uint32, 0, n)
			val  uint32
		)
		for i := 0; i < n*rowsPerWord; i++ {
			val <<= NumCols
			if i != 0 {
				val |= uint32(frame.Byte(i))
			}
			if i%rowsPerWord == rowsPerWord-1 {
				vals = append(vals, val)
				val = 0
			}
		}
		return vals

	case Extended:
		vals := make([]uint32, frame.Rows())
		for i := range vals {
			vals[i] = uint32(frame.Byte(i))
		}
		return vals
	}
	panic("link: invalid format " + f.String())
}
