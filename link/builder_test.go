// Copyright 2023 The go-lpc Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package link

import (
	"errors"
	"reflect"
	"testing"
)

func newBuilder(t *testing.T, crate uint8, f Format) *Builder {
	t.Helper()
	b, err := NewBuilder(crate, f)
	if err != nil {
		t.Fatalf("could not create builder: %+v", err)
	}
	return b
}

func words(t *testing.T, b *Builder, link int) []uint32 {
	t.Helper()
	vs, err := b.Words(link)
	if err != nil {
		t.Fatalf("could not get words of link %d: %+v", link, err)
	}
	return vs
}

func frame(t *testing.T, b *Builder, link int) Frame {
	t.Helper()
	f, err := b.Frame(link)
	if err != nil {
		t.Fatalf("could not get frame of link %d: %+v", link, err)
	}
	return f
}

func TestNewBuilder(t *testing.T) {
	for _, tc := range []struct {
		name  string
		crate uint8
		f     Format
		want  error
	}{
		{name: "legacy", crate: 0, f: Legacy},
		{name: "extended", crate: 17, f: Extended},
		{name: "invalid-crate", crate: 18, f: Legacy, want: ErrOutOfRange},
		{name: "invalid-format", crate: 0, f: Format(0), want: ErrFormat},
		{name: "invalid-format-3", crate: 0, f: Format(3), want: ErrFormat},
	} {
		t.Run(tc.name, func(t *testing.T) {
			b, err := NewBuilder(tc.crate, tc.f)
			switch {
			case tc.want == nil && err != nil:
				t.Fatalf("could not create builder: %+v", err)
			case tc.want == nil:
				if got, want := b.Crate(), tc.crate; got != want {
					t.Fatalf("invalid crate: got=%d, want=%d", got, want)
				}
				if got, want := b.Format(), tc.f; got != want {
					t.Fatalf("invalid format: got=%v, want=%v", got, want)
				}
			case !errors.Is(err, tc.want):
				t.Fatalf("invalid error: got=%+v, want=%+v", err, tc.want)
			}
		})
	}
}

func TestBuilderNotReady(t *testing.T) {
	for _, f := range []Format{Legacy, Extended} {
		t.Run(f.String(), func(t *testing.T) {
			b := newBuilder(t, 3, f)
			for _, link := range []int{1, 2} {
				_, err := b.Words(link)
				if !errors.Is(err, ErrNotReady) {
					t.Fatalf("invalid error for empty builder: got=%+v, want=%+v", err, ErrNotReady)
				}
			}

			err := b.AddRegion(Region{Crate: 3, Card: 1, Index: 1, Et: 42})
			if err != nil {
				t.Fatalf("could not add region: %+v", err)
			}

			_, err = b.Frame(1)
			if !errors.Is(err, ErrNotReady) {
				t.Fatalf("invalid error for populated builder: got=%+v, want=%+v", err, ErrNotReady)
			}
		})
	}
}

func TestBuilderInvalidLink(t *testing.T) {
	b := newBuilder(t, 0, Legacy)
	b.Finalize()

	for _, link := range []int{-1, 0, 3} {
		_, err := b.Words(link)
		if !errors.Is(err, ErrInvalidLink) {
			t.Fatalf("link=%d: invalid error: got=%+v, want=%+v", link, err, ErrInvalidLink)
		}
		_, err = b.Frame(link)
		if !errors.Is(err, ErrInvalidLink) {
			t.Fatalf("link=%d: invalid error: got=%+v, want=%+v", link, err, ErrInvalidLink)
		}
	}

	// invalid link is reported before the builder state.
	b = newBuilder(t, 0, Extended)
	_, err := b.Words(3)
	if !errors.Is(err, ErrInvalidLink) {
		t.Fatalf("invalid error: got=%+v, want=%+v", err, ErrInvalidLink)
	}
}

func TestBuilderEmpty(t *testing.T) {
	for _, tc := range []struct {
		f    Format
		n    int
		rows int
	}{
		{f: Legacy, n: 4, rows: 16},
		{f: Extended, n: 24, rows: 24},
	} {
		t.Run(tc.f.String(), func(t *testing.T) {
			b := newBuilder(t, 0, tc.f)
			b.Finalize()
			for _, link := range []int{1, 2} {
				vs := words(t, b, link)
				if got, want := len(vs), tc.n; got != want {
					t.Fatalf("invalid number of words: got=%d, want=%d", got, want)
				}
				if got, want := len(vs), tc.f.Words(); got != want {
					t.Fatalf("invalid number of words: got=%d, want=%d", got, want)
				}
				for i, v := range vs {
					if v != 0 {
						t.Fatalf("link %d: word %d: got=0x%x, want=0", link, i, v)
					}
				}
				fr := frame(t, b, link)
				if got, want := fr.Rows(), tc.rows; got != want {
					t.Fatalf("invalid number of rows: got=%d, want=%d", got, want)
				}
			}
		})
	}
}

func TestBuilderLegacyRegion(t *testing.T) {
	b := newBuilder(t, 0, Legacy)
	err := b.AddRegion(Region{Crate: 0, Card: 0, Index: 0, Et: 5})
	if err != nil {
		t.Fatalf("could not add region: %+v", err)
	}
	b.Finalize()

	fr := frame(t, b, 1)
	if got, want := fr.Byte(1), uint8(0x05); got != want {
		t.Fatalf("invalid row 1: got=%08b, want=%08b", got, want)
	}
	for row := 0; row < fr.Rows(); row++ {
		switch row {
		case 1:
			continue
		case 15:
			// region (0,0) has neither a tau nor a MIP veto.
			if got, want := fr.Byte(row), uint8(0x01); got != want {
				t.Fatalf("invalid row %d: got=%08b, want=%08b", row, got, want)
			}
		default:
			if got := fr.Byte(row); got != 0 {
				t.Fatalf("invalid row %d: got=%08b, want=0", row, got)
			}
		}
	}

	vs := words(t, b, 1)
	want := []uint32{0x00050000, 0, 0, 0x00000001}
	if !reflect.DeepEqual(vs, want) {
		t.Fatalf("invalid link 1 words:\ngot= %08x\nwant=%08x", vs, want)
	}

	vs = words(t, b, 2)
	want = []uint32{0, 0, 0, 0}
	if !reflect.DeepEqual(vs, want) {
		t.Fatalf("invalid link 2 words:\ngot= %08x\nwant=%08x", vs, want)
	}
}

func TestBuilderSaturation(t *testing.T) {
	reg := Region{Crate: 7, Card: 2, Index: 1, Et: 3, Overflow: true, Tau: true}

	t.Run("legacy", func(t *testing.T) {
		b := newBuilder(t, 7, Legacy)
		err := b.AddRegion(reg)
		if err != nil {
			t.Fatalf("could not add region: %+v", err)
		}
		b.Finalize()

		fr := frame(t, b, 1)
		for _, tc := range []struct {
			row  int
			want uint8
		}{
			{row: 13, want: 0xc0}, // Et bits 1-0
			{row: 14, want: 0xff}, // Et bits 9-2
			{row: 15, want: 0x00}, // tau veto
		} {
			if got := fr.Byte(tc.row); got != tc.want {
				t.Fatalf("invalid row %d: got=%08b, want=%08b", tc.row, got, tc.want)
			}
		}
	})

	t.Run("extended", func(t *testing.T) {
		b := newBuilder(t, 7, Extended)
		err := b.AddRegion(reg)
		if err != nil {
			t.Fatalf("could not add region: %+v", err)
		}
		b.Finalize()

		fr := frame(t, b, 1)
		for _, tc := range []struct {
			row  int
			want uint8
		}{
			{row: 20, want: 0x00}, // Et bits 9-8
			{row: 21, want: 0x03}, // Et bits 7-0
			{row: 22, want: 0xc0}, // overflow, tau veto
		} {
			if got := fr.Byte(tc.row); got != tc.want {
				t.Fatalf("invalid row %d: got=%08b, want=%08b", tc.row, got, tc.want)
			}
		}
	})
}

func TestBuilderExtendedHF(t *testing.T) {
	b := newBuilder(t, 5, Extended)
	err := b.AddRegion(Region{Crate: 5, Index: 3, Et: 200, FineGrain: true, HF: true})
	if err != nil {
		t.Fatalf("could not add HF region: %+v", err)
	}
	b.Finalize()

	vs := words(t, b, 1)
	if got, want := len(vs), 24; got != want {
		t.Fatalf("invalid number of words: got=%d, want=%d", got, want)
	}

	want := make([]uint32, 24)
	want[10] = 200  // HF region 3 Et
	want[22] = 0x08 // HF region 3 fine grain
	if !reflect.DeepEqual(vs, want) {
		t.Fatalf("invalid link 1 words:\ngot= %02x\nwant=%02x", vs, want)
	}

	vs = words(t, b, 2)
	if !reflect.DeepEqual(vs, make([]uint32, 24)) {
		t.Fatalf("invalid link 2 words: %02x", vs)
	}

	err = b.AddRegion(Region{Crate: 5, Index: 7, Et: 0x1ff, FineGrain: true, HF: true})
	if !errors.Is(err, ErrFinalized) {
		t.Fatalf("invalid error: got=%+v, want=%+v", err, ErrFinalized)
	}
}

func TestBuilderExtendedHFLink2(t *testing.T) {
	b := newBuilder(t, 5, Extended)
	// Et is truncated to its 8 bits.
	err := b.AddRegion(Region{Crate: 5, Index: 7, Et: 0x1a5, FineGrain: true, HF: true})
	if err != nil {
		t.Fatalf("could not add HF region: %+v", err)
	}
	b.Finalize()

	fr := frame(t, b, 2)
	if got, want := fr.Byte(10), uint8(0xa5); got != want {
		t.Fatalf("invalid HF Et row: got=0x%x, want=0x%x", got, want)
	}
	if got, want := fr.Byte(22), uint8(0x08); got != want {
		t.Fatalf("invalid HF fine grain row: got=%08b, want=%08b", got, want)
	}
}

func TestBuilderIsolationLinks(t *testing.T) {
	for _, f := range []Format{Legacy, Extended} {
		for _, tc := range []struct {
			iso  bool
			link int
		}{
			{iso: true, link: 1},
			{iso: false, link: 2},
		} {
			b := newBuilder(t, 0, f)
			err := b.AddCandidate(Candidate{Slot: 0, Rank: 0x3f, Iso: tc.iso})
			if err != nil {
				t.Fatalf("%v: could not add candidate: %+v", f, err)
			}
			b.Finalize()

			for _, l := range []int{1, 2} {
				fr := frame(t, b, l)
				set := 0
				for row := 0; row < fr.Rows(); row++ {
					if fr.Byte(row) != 0 {
						set++
					}
				}
				switch {
				case l == tc.link && set == 0:
					t.Fatalf("%v: iso=%v: candidate missing from link %d", f, tc.iso, l)
				case l != tc.link && set != 0:
					t.Fatalf("%v: iso=%v: candidate found on link %d", f, tc.iso, l)
				}
			}
		}
	}
}

func TestBuilderCandidates(t *testing.T) {
	iso := Candidate{Crate: 1, Card: 5, Region: 1, Slot: 0, Rank: 0x2a, Iso: true}
	non := iso
	non.Iso = false
	non.Slot = 3
	non.Card = 6
	non.Region = 0
	non.Rank = 0x3f

	t.Run("legacy", func(t *testing.T) {
		b := newBuilder(t, 1, Legacy)
		for _, c := range []Candidate{iso, non} {
			err := b.AddCandidate(c)
			if err != nil {
				t.Fatalf("could not add candidate %v: %+v", c, err)
			}
		}
		b.Finalize()

		if got, want := words(t, b, 1), []uint32{0x0000ea02, 0, 0, 0}; !reflect.DeepEqual(got, want) {
			t.Fatalf("invalid link 1 words:\ngot= %08x\nwant=%08x", got, want)
		}

		// pos = 0b1100: region=0, card=6.
		fr := frame(t, b, 2)
		if got, want := fr.Byte(10), uint8(0x3f); got != want {
			t.Fatalf("invalid row 10: got=%08b, want=%08b", got, want)
		}
		if got, want := fr.Byte(11), uint8(0x03); got != want {
			t.Fatalf("invalid row 11: got=%08b, want=%08b", got, want)
		}
	})

	t.Run("extended", func(t *testing.T) {
		b := newBuilder(t, 1, Extended)
		for _, c := range []Candidate{iso, non} {
			err := b.AddCandidate(c)
			if err != nil {
				t.Fatalf("could not add candidate %v: %+v", c, err)
			}
		}
		b.Finalize()

		fr := frame(t, b, 1)
		if got, want := fr.Byte(2), uint8(0xba); got != want {
			t.Fatalf("invalid row 2: got=%08b, want=%08b", got, want)
		}
		if got, want := fr.Byte(3), uint8(0x80); got != want {
			t.Fatalf("invalid row 3: got=%08b, want=%08b", got, want)
		}

		fr = frame(t, b, 2)
		if got, want := fr.Byte(5), uint8(0x03); got != want {
			t.Fatalf("invalid row 5: got=%08b, want=%08b", got, want)
		}
		if got, want := fr.Byte(6), uint8(0x3f); got != want {
			t.Fatalf("invalid row 6: got=%08b, want=%08b", got, want)
		}
	})
}

func TestBuilderBC0(t *testing.T) {
	t.Run("legacy", func(t *testing.T) {
		b := newBuilder(t, 0, Legacy)
		err := b.SetBC0(true, false)
		if err != nil {
			t.Fatalf("could not set BC0: %+v", err)
		}
		b.Finalize()
		for _, link := range []int{1, 2} {
			if got, want := words(t, b, link)[0], uint32(0x00800000); got != want {
				t.Fatalf("link %d: invalid word 0: got=0x%08x, want=0x%08x", link, got, want)
			}
		}
	})

	t.Run("extended", func(t *testing.T) {
		b := newBuilder(t, 0, Extended)
		err := b.SetBC0(true, true)
		if err != nil {
			t.Fatalf("could not set BC0: %+v", err)
		}
		b.Finalize()
		for _, link := range []int{1, 2} {
			if got, want := words(t, b, link), make([]uint32, 24); !reflect.DeepEqual(got, want) {
				t.Fatalf("link %d: invalid words: got=%02x", link, got)
			}
		}
	})
}

func TestBuilderLastWriteWins(t *testing.T) {
	b := newBuilder(t, 2, Legacy)
	for _, reg := range []Region{
		{Crate: 2, Card: 0, Index: 0, Et: 1023, Tau: true, MIP: true},
		{Crate: 2, Card: 0, Index: 0, Et: 9},
	} {
		err := b.AddRegion(reg)
		if err != nil {
			t.Fatalf("could not add region %v: %+v", reg, err)
		}
	}
	for _, c := range []Candidate{
		{Crate: 2, Card: 6, Region: 1, Slot: 1, Rank: 63, Iso: true},
		{Crate: 2, Card: 1, Region: 0, Slot: 1, Rank: 4, Iso: true},
	} {
		err := b.AddCandidate(c)
		if err != nil {
			t.Fatalf("could not add candidate %v: %+v", c, err)
		}
	}
	b.Finalize()

	fr := frame(t, b, 1)
	for _, tc := range []struct {
		row  int
		want uint8
	}{
		{row: 1, want: 0x09},
		{row: 3, want: 0x00},
		{row: 4, want: 0x84}, // card=1, region=0, rank=4
		{row: 5, want: 0x00},
		{row: 15, want: 0x01},
	} {
		if got := fr.Byte(tc.row); got != tc.want {
			t.Fatalf("invalid row %d: got=%08b, want=%08b", tc.row, got, tc.want)
		}
	}
}

func TestBuilderOutOfRange(t *testing.T) {
	for _, f := range []Format{Legacy, Extended} {
		t.Run(f.String(), func(t *testing.T) {
			const crate = 9
			ref := newBuilder(t, crate, f)
			b := newBuilder(t, crate, f)

			valid := []Region{
				{Crate: crate, Card: 6, Index: 1, Et: 5},
				{Crate: crate, Index: 7, Et: 12, HF: true, FineGrain: true},
			}
			for _, reg := range valid {
				for _, bb := range []*Builder{ref, b} {
					err := bb.AddRegion(reg)
					if err != nil {
						t.Fatalf("could not add region %v: %+v", reg, err)
					}
				}
			}

			for _, reg := range []Region{
				{Crate: crate, Card: 7, Index: 1, Et: 1023, Tau: true},
				{Crate: crate, Card: 6, Index: 2, Et: 1023, Tau: true},
				{Crate: crate, Index: 8, Et: 255, HF: true, FineGrain: true},
			} {
				err := b.AddRegion(reg)
				if !errors.Is(err, ErrOutOfRange) {
					t.Fatalf("invalid error for %v: got=%+v, want=%+v", reg, err, ErrOutOfRange)
				}
			}

			for _, c := range []Candidate{
				{Crate: crate, Card: 1, Region: 0, Slot: 4, Rank: 63},
				{Crate: crate, Card: 1, Region: 2, Slot: 0, Rank: 63},
				{Crate: crate, Card: 7, Region: 0, Slot: 0, Rank: 63, Iso: true},
			} {
				err := b.AddCandidate(c)
				if !errors.Is(err, ErrOutOfRange) {
					t.Fatalf("invalid error for %v: got=%+v, want=%+v", c, err, ErrOutOfRange)
				}
			}

			err := b.AddRegion(Region{Crate: crate + 1, Card: 0, Index: 0, Et: 3})
			if !errors.Is(err, ErrCrateMismatch) {
				t.Fatalf("invalid error: got=%+v, want=%+v", err, ErrCrateMismatch)
			}
			err = b.AddCandidate(Candidate{Crate: crate - 1, Rank: 3})
			if !errors.Is(err, ErrCrateMismatch) {
				t.Fatalf("invalid error: got=%+v, want=%+v", err, ErrCrateMismatch)
			}

			ref.Finalize()
			b.Finalize()
			for _, link := range []int{1, 2} {
				if got, want := words(t, b, link), words(t, ref, link); !reflect.DeepEqual(got, want) {
					t.Fatalf("link %d: rejected records altered the frame:\ngot= %x\nwant=%x", link, got, want)
				}
			}
		})
	}
}

func TestBuilderFinalizeIdempotent(t *testing.T) {
	for _, f := range []Format{Legacy, Extended} {
		t.Run(f.String(), func(t *testing.T) {
			b := newBuilder(t, 4, f)
			_ = b.SetBC0(true, true)
			for card := uint8(0); card < NumCards; card++ {
				for idx := uint8(0); idx < NumRegions; idx++ {
					err := b.AddRegion(Region{
						Crate: 4, Card: card, Index: idx,
						Et:  uint16(card)*100 + uint16(idx)*7,
						Tau: card%2 == 0, MIP: idx == 1,
						Overflow: card == 3,
					})
					if err != nil {
						t.Fatalf("could not add region: %+v", err)
					}
				}
			}
			for slot := uint8(0); slot < NumSlots; slot++ {
				for _, iso := range []bool{true, false} {
					err := b.AddCandidate(Candidate{
						Crate: 4, Card: slot, Region: slot % 2, Slot: slot,
						Rank: 10*slot + 1, Iso: iso,
					})
					if err != nil {
						t.Fatalf("could not add candidate: %+v", err)
					}
				}
			}

			b.Finalize()
			w1 := words(t, b, 1)
			w2 := words(t, b, 2)

			b.Finalize()
			if got := words(t, b, 1); !reflect.DeepEqual(got, w1) {
				t.Fatalf("link 1 changed after second finalize:\ngot= %x\nwant=%x", got, w1)
			}
			if got := words(t, b, 2); !reflect.DeepEqual(got, w2) {
				t.Fatalf("link 2 changed after second finalize:\ngot= %x\nwant=%x", got, w2)
			}

			err := b.SetBC0(false, false)
			if !errors.Is(err, ErrFinalized) {
				t.Fatalf("invalid error: got=%+v, want=%+v", err, ErrFinalized)
			}
			err = b.AddCandidate(Candidate{Crate: 4, Slot: 0, Rank: 1})
			if !errors.Is(err, ErrFinalized) {
				t.Fatalf("invalid error: got=%+v, want=%+v", err, ErrFinalized)
			}
		})
	}
}

func TestFrameCopy(t *testing.T) {
	b := newBuilder(t, 0, Legacy)
	_ = b.AddRegion(Region{Crate: 0, Card: 0, Index: 0, Et: 5})
	b.Finalize()

	fr := frame(t, b, 1)
	fr.bits[1][7] = 0

	if got, want := frame(t, b, 1).Byte(1), uint8(0x05); got != want {
		t.Fatalf("frame modified through copy: got=0x%x, want=0x%x", got, want)
	}
}
