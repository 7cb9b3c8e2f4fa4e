// Copyright 2023 The go-lpc Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package crossing

import (
	"fmt"
	"math/bits"
	"strconv"
	"strings"

	"github.com/go-lpc/orsc/link"
)

// Mask is a set of enabled crates, crate i being bit i.
type Mask uint32

// AllCrates enables the 18 RCT crates.
const AllCrates Mask = 1<<link.NumCrates - 1

// Has reports whether crate is enabled.
func (m Mask) Has(crate uint8) bool {
	return crate < link.NumCrates && m&(1<<crate) != 0
}

// Len returns the number of enabled crates.
func (m Mask) Len() int {
	return bits.OnesCount32(uint32(m & AllCrates))
}

// String returns the list of enabled crates, in the format understood
// by ParseMask.
func (m Mask) String() string {
	if m&AllCrates == AllCrates {
		return "all"
	}
	var (
		o     []string
		start = -1
	)
	flush := func(end int) {
		switch {
		case start < 0:
		case start == end:
			o = append(o, strconv.Itoa(start))
		default:
			o = append(o, fmt.Sprintf("%d-%d", start, end))
		}
		start = -1
	}
	for i := 0; i < link.NumCrates; i++ {
		if m.Has(uint8(i)) {
			if start < 0 {
				start = i
			}
			continue
		}
		flush(i - 1)
	}
	flush(link.NumCrates - 1)
	return strings.Join(o, ",")
}

// ParseMask parses a comma separated list of crates or ranges of
// crates ("0,3,5-8"). "all" enables every crate.
func ParseMask(s string) (Mask, error) {
	s = strings.TrimSpace(s)
	if s == "all" {
		return AllCrates, nil
	}

	var m Mask
	for _, tok := range strings.Split(s, ",") {
		tok = strings.TrimSpace(tok)
		beg, end := tok, tok
		if i := strings.Index(tok, "-"); i >= 0 {
			beg, end = tok[:i], tok[i+1:]
		}
		lo, err := parseCrate(beg)
		if err != nil {
			return 0, fmt.Errorf("crossing: could not parse crate mask %q: %w", s, err)
		}
		hi, err := parseCrate(end)
		if err != nil {
			return 0, fmt.Errorf("crossing: could not parse crate mask %q: %w", s, err)
		}
		if lo > hi {
			return 0, fmt.Errorf("crossing: invalid crate range %q", tok)
		}
		for i := lo; i <= hi; i++ {
			m |= 1 << i
		}
	}
	return m, nil
}

func parseCrate(s string) (uint8, error) {
	v, err := strconv.ParseUint(strings.TrimSpace(s), 10, 8)
	if err != nil {
		return 0, err
	}
	if v >= link.NumCrates {
		return 0, fmt.Errorf("invalid crate %d: %w", v, link.ErrOutOfRange)
	}
	return uint8(v), nil
}
