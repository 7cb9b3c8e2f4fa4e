// Copyright 2023 The go-lpc Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package link

import (
	"errors"
	"testing"
)

func TestParseFormat(t *testing.T) {
	for _, tc := range []struct {
		name string
		want Format
		err  error
	}{
		{name: "legacy", want: Legacy},
		{name: "Legacy", want: Legacy},
		{name: "1", want: Legacy},
		{name: " v1 ", want: Legacy},
		{name: "extended", want: Extended},
		{name: "2", want: Extended},
		{name: "V2", want: Extended},
		{name: "", err: ErrFormat},
		{name: "3", err: ErrFormat},
		{name: "hf", err: ErrFormat},
	} {
		t.Run(tc.name, func(t *testing.T) {
			got, err := ParseFormat(tc.name)
			if tc.err != nil {
				if !errors.Is(err, tc.err) {
					t.Fatalf("invalid error: got=%+v, want=%+v", err, tc.err)
				}
				return
			}
			if err != nil {
				t.Fatalf("could not parse format: %+v", err)
			}
			if got != tc.want {
				t.Fatalf("invalid format: got=%v, want=%v", got, tc.want)
			}
		})
	}
}

func TestFormat(t *testing.T) {
	for _, tc := range []struct {
		f     Format
		name  string
		valid bool
		rows  int
		bits  int
		words int
	}{
		{Legacy, "legacy", true, 16, 32, 4},
		{Extended, "extended", true, 24, 8, 24},
		{Format(0), "Format(0)", false, 0, 0, 0},
		{Format(7), "Format(7)", false, 0, 0, 0},
	} {
		t.Run(tc.name, func(t *testing.T) {
			if got, want := tc.f.String(), tc.name; got != want {
				t.Fatalf("invalid name: got=%q, want=%q", got, want)
			}
			if got, want := tc.f.Valid(), tc.valid; got != want {
				t.Fatalf("invalid validity: got=%v, want=%v", got, want)
			}
			if got, want := tc.f.Rows(), tc.rows; got != want {
				t.Fatalf("invalid rows: got=%d, want=%d", got, want)
			}
			if got, want := tc.f.WordBits(), tc.bits; got != want {
				t.Fatalf("invalid word size: got=%d, want=%d", got, want)
			}
			if got, want := tc.f.Words(), tc.words; got != want {
				t.Fatalf("invalid number of words: got=%d, want=%d", got, want)
			}
		})
	}
}

func TestCandidatePos(t *testing.T) {
	for _, tc := range []struct {
		cand Candidate
		want uint32
	}{
		{Candidate{Card: 0, Region: 0}, 0x0},
		{Candidate{Card: 0, Region: 1}, 0x1},
		{Candidate{Card: 5, Region: 1}, 0xb},
		{Candidate{Card: 6, Region: 0}, 0xc},
	} {
		if got := tc.cand.pos(); got != tc.want {
			t.Fatalf("invalid position for %v: got=0x%x, want=0x%x", tc.cand, got, tc.want)
		}
	}
}

func TestStringers(t *testing.T) {
	for _, tc := range []struct {
		v    interface{ String() string }
		want string
	}{
		{
			v:    Region{Crate: 1, Card: 2, Index: 1, Et: 42, Tau: true},
			want: "Region{crate=1 card=2 index=1 et=42 tau=true mip=false of=false fg=false}",
		},
		{
			v:    Region{Crate: 3, Index: 7, Et: 200, FineGrain: true, HF: true},
			want: "HF{crate=3 index=7 et=200 fg=true}",
		},
		{
			v:    Candidate{Crate: 17, Card: 6, Region: 1, Slot: 3, Rank: 63, Iso: true},
			want: "EM{crate=17 card=6 region=1 slot=3 rank=63 iso=true}",
		},
	} {
		if got := tc.v.String(); got != tc.want {
			t.Fatalf("invalid string:\ngot= %q\nwant=%q", got, tc.want)
		}
	}
}
