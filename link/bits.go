// Copyright 2023 The go-lpc Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package link

// Decompose separates the len(dst) least significant bits of v into dst,
// least significant bit first, one bit per element.
// If saturate is true, v is ignored and all bits are set to one.
func Decompose(dst []uint8, v uint32, saturate bool) []uint8 {
	for i := range dst {
		if saturate {
			dst[i] = 0x1
			continue
		}
		dst[i] = uint8(v & 0x1)
		v >>= 1
	}
	return dst
}

// Compose is the inverse of Decompose: it reassembles the bits of src,
// least significant bit first.
func Compose(src []uint8) uint32 {
	var v uint32
	for i := len(src) - 1; i >= 0; i-- {
		v <<= 1
		v |= uint32(src[i] & 0x1)
	}
	return v
}

func bit(v bool) uint8 {
	if v {
		return 1
	}
	return 0
}
