// Copyright 2023 The go-lpc Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package main

import (
	"context"
	"errors"
	"io"
	"log"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"github.com/go-lpc/orsc/conddb"
	"github.com/go-lpc/orsc/crossing"
	"github.com/go-lpc/orsc/internal/rctio"
	"github.com/go-lpc/orsc/link"
	"github.com/go-lpc/orsc/pattern"
	"go-hep.org/x/hep/lcio"
)

var msg = log.New(io.Discard, "", 0)

func inputs() []crossing.Input {
	return []crossing.Input{
		{
			Header:  crossing.Header{Run: 42, Lumi: 1, Event: 1},
			ElecBC0: true,
			Regions: []link.Region{
				{Crate: 0, Card: 0, Index: 0, Et: 5},
				{Crate: 2, Card: 6, Index: 1, Et: 42, Tau: true},
				{Crate: 2, Index: 5, Et: 12, HF: true, FineGrain: true},
			},
			Cands: []link.Candidate{
				{Crate: 2, Card: 3, Region: 1, Slot: 2, Rank: 7, Iso: true},
			},
		},
		{
			Header: crossing.Header{Run: 42, Lumi: 1, Event: 2},
			JetBC0: true,
			Regions: []link.Region{
				{Crate: 17, Card: 2, Index: 0, Et: 1023, Overflow: true},
				{Crate: 18, Card: 0, Index: 0, Et: 1}, // rejected
			},
		},
	}
}

func writeLCIO(t *testing.T, fname string) {
	t.Helper()

	w, err := lcio.Create(fname)
	if err != nil {
		t.Fatalf("could not create LCIO file: %+v", err)
	}
	defer w.Close()

	ins := inputs()
	err = rctio.WriteRunHeader(w, ins[0].Run)
	if err != nil {
		t.Fatalf("could not write run header: %+v", err)
	}
	for i := range ins {
		err = rctio.WriteInput(w, &ins[i])
		if err != nil {
			t.Fatalf("could not write crossing %d: %+v", i, err)
		}
	}

	err = w.Close()
	if err != nil {
		t.Fatalf("could not close LCIO file: %+v", err)
	}
}

func TestProcess(t *testing.T) {
	tmp, err := os.MkdirTemp("", "orsc-patterns-")
	if err != nil {
		t.Fatalf("could not create tmp dir: %+v", err)
	}
	defer os.RemoveAll(tmp)

	fname := filepath.Join(tmp, "rct.lcio")
	writeLCIO(t, fname)

	n, err := numEvents(fname)
	if err != nil {
		t.Fatalf("could not retrieve number of events: %+v", err)
	}
	if got, want := n, int64(2); got != want {
		t.Fatalf("invalid number of events: got=%d, want=%d", got, want)
	}

	for _, tc := range []struct {
		format string
		crates string
	}{
		{"legacy", "all"},
		{"legacy", "0,2"},
		{"extended", "all"},
		{"extended", "2-17"},
	} {
		t.Run(tc.format+"-"+tc.crates, func(t *testing.T) {
			cfg, err := configFrom(tc.format, tc.crates)
			if err != nil {
				t.Fatalf("could not create link config: %+v", err)
			}

			var (
				oname = filepath.Join(tmp, "out.txt")
				raw   = filepath.Join(tmp, "out.raw")
			)

			stats, err := process(oname, raw, fname, cfg, msg)
			if err != nil {
				t.Fatalf("could not process LCIO file: %+v", err)
			}
			if got, want := stats.Crossings, 2; got != want {
				t.Fatalf("invalid number of crossings: got=%d, want=%d", got, want)
			}
			if got, want := stats.Rejected, 1; got != want {
				t.Fatalf("invalid number of rejected records: got=%d, want=%d", got, want)
			}
			if !errors.Is(stats.Errors[0], link.ErrOutOfRange) {
				t.Fatalf("invalid rejection error: %+v", stats.Errors[0])
			}

			var want []pattern.Record
			for _, in := range inputs() {
				res, err := crossing.Process(context.Background(), cfg.Format, cfg.Crates, in)
				if err != nil {
					t.Fatalf("could not process crossing: %+v", err)
				}
				want = append(want, pattern.RecordOf(res))
			}

			txt, err := os.Open(oname)
			if err != nil {
				t.Fatalf("could not open text patterns: %+v", err)
			}
			defer txt.Close()

			bin, err := os.Open(raw)
			if err != nil {
				t.Fatalf("could not open binary patterns: %+v", err)
			}
			defer bin.Close()

			var (
				tr  = pattern.NewTextReader(txt)
				dec = pattern.NewDecoder(bin)
			)
			for i := range want {
				var rec pattern.Record
				err = tr.Read(&rec)
				if err != nil {
					t.Fatalf("could not read text record %d: %+v", i, err)
				}
				if !reflect.DeepEqual(rec, want[i]) {
					t.Fatalf("invalid text record %d:\ngot= %+v\nwant=%+v", i, rec, want[i])
				}

				err = dec.Decode(&rec)
				if err != nil {
					t.Fatalf("could not decode binary record %d: %+v", i, err)
				}
				if !reflect.DeepEqual(rec, want[i]) {
					t.Fatalf("invalid binary record %d:\ngot= %+v\nwant=%+v", i, rec, want[i])
				}
			}

			var rec pattern.Record
			if err := tr.Read(&rec); !errors.Is(err, io.EOF) {
				t.Fatalf("invalid text EOF: %+v", err)
			}
			if err := dec.Decode(&rec); !errors.Is(err, io.EOF) {
				t.Fatalf("invalid binary EOF: %+v", err)
			}
		})
	}
}

func TestProcessNoRaw(t *testing.T) {
	tmp, err := os.MkdirTemp("", "orsc-patterns-")
	if err != nil {
		t.Fatalf("could not create tmp dir: %+v", err)
	}
	defer os.RemoveAll(tmp)

	fname := filepath.Join(tmp, "rct.lcio")
	writeLCIO(t, fname)

	cfg := conddb.LinkConfig{Format: link.Legacy, Crates: crossing.AllCrates}
	_, err = process(filepath.Join(tmp, "out.txt"), "", fname, cfg, msg)
	if err != nil {
		t.Fatalf("could not process LCIO file: %+v", err)
	}

	_, err = process(filepath.Join(tmp, "out.txt"), "", filepath.Join(tmp, "not-there.lcio"), cfg, msg)
	if err == nil {
		t.Fatalf("expected an error")
	}
}

func TestConfigFrom(t *testing.T) {
	for _, tc := range []struct {
		format string
		crates string
		want   conddb.LinkConfig
		err    string
	}{
		{
			format: "legacy",
			crates: "all",
			want:   conddb.LinkConfig{Format: link.Legacy, Crates: crossing.AllCrates},
		},
		{
			format: "extended",
			crates: "0,3-4",
			want:   conddb.LinkConfig{Format: link.Extended, Crates: 0x19},
		},
		{
			format: "v3",
			crates: "all",
			err:    `could not parse link format: link: invalid format "v3": unknown format`,
		},
		{
			format: "legacy",
			crates: "3-1",
			err:    `could not parse crates mask: crossing: invalid crate range "3-1"`,
		},
	} {
		t.Run(tc.format+"-"+tc.crates, func(t *testing.T) {
			got, err := configFrom(tc.format, tc.crates)
			switch {
			case err != nil && tc.err != "":
				if got, want := err.Error(), tc.err; got != want {
					t.Fatalf("invalid error:\ngot= %v\nwant=%v", got, want)
				}
				return
			case err != nil:
				t.Fatalf("could not create link config: %+v", err)
			case tc.err != "":
				t.Fatalf("expected an error (%s)", tc.err)
			}
			if got != tc.want {
				t.Fatalf("invalid config: got=%+v, want=%+v", got, tc.want)
			}
		})
	}
}

func TestAlertMessage(t *testing.T) {
	stats := rctio.Stats{
		Crossings: 10,
		Rejected:  3,
		Errors: []error{
			errors.New("crossing: run=1 lumi=2 event=3: bad region"),
		},
	}
	cfg := conddb.LinkConfig{Format: link.Extended, Crates: crossing.AllCrates}
	m := alertMessage("rct.lcio", cfg, stats, []string{"shifter@example.com"})

	if got, want := m.GetHeader("Subject"), []string{"[orsc-patterns] rejected records: 3"}; !reflect.DeepEqual(got, want) {
		t.Fatalf("invalid subject: got=%q, want=%q", got, want)
	}
	if got, want := m.GetHeader("Bcc"), []string{"shifter@example.com"}; !reflect.DeepEqual(got, want) {
		t.Fatalf("invalid targets: got=%q, want=%q", got, want)
	}

	o := new(strings.Builder)
	_, err := m.WriteTo(o)
	if err != nil {
		t.Fatalf("could not write mail message: %+v", err)
	}
	for _, want := range []string{"bad region", "(2 more)", "format:    extended"} {
		if !strings.Contains(o.String(), want) {
			t.Fatalf("mail body does not contain %q:\n%s", want, o.String())
		}
	}
}
