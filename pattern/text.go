// Copyright 2023 The go-lpc Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package pattern

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/go-lpc/orsc/crossing"
	"github.com/go-lpc/orsc/link"
	"golang.org/x/xerrors"
)

// TextWriter writes pattern records in a line oriented text format:
//
//	# run=1 lumi=2 event=3 format=legacy
//	00 1 00850000 00000000 00000000 00000001
//	00 2 00800000 00000000 00000000 00000000
//	...
//
// Each crate link line holds the crate number, the link number and
// the link words, in hexadecimal (8 digits for legacy words, 2 digits
// for extended ones).
type TextWriter struct {
	w   *bufio.Writer
	err error
}

// NewTextWriter returns a new TextWriter that writes to w.
func NewTextWriter(w io.Writer) *TextWriter {
	return &TextWriter{w: bufio.NewWriter(w)}
}

// Write writes the record to the underlying stream.
func (tw *TextWriter) Write(rec *Record) error {
	if tw.err != nil {
		return tw.err
	}

	var digits int
	switch rec.Format {
	case link.Legacy:
		digits = 8
	case link.Extended:
		digits = 2
	default:
		return xerrors.Errorf("pattern: invalid record format %v: %w", rec.Format, link.ErrFormat)
	}

	tw.printf(
		"# run=%d lumi=%d event=%d format=%v\n",
		rec.Header.Run, rec.Header.Lumi, rec.Header.Event, rec.Format,
	)
	for _, lnk := range rec.Links {
		for i, ws := range lnk.Words {
			tw.printf("%02d %d", lnk.Crate, i+1)
			for _, w := range ws {
				tw.printf(" %0*x", digits, w)
			}
			tw.printf("\n")
		}
	}
	if tw.err != nil {
		return xerrors.Errorf("pattern: could not write text record: %w", tw.err)
	}
	return nil
}

// Flush writes any buffered data to the underlying stream.
func (tw *TextWriter) Flush() error {
	if tw.err != nil {
		return tw.err
	}
	err := tw.w.Flush()
	if err != nil {
		tw.err = xerrors.Errorf("pattern: could not flush text records: %w", err)
		return tw.err
	}
	return nil
}

func (tw *TextWriter) printf(format string, args ...interface{}) {
	if tw.err != nil {
		return
	}
	_, tw.err = fmt.Fprintf(tw.w, format, args...)
}

// TextReader reads pattern records written by a TextWriter.
type TextReader struct {
	sc   *bufio.Scanner
	line int
	next string // header line of the next record
	err  error
}

// NewTextReader returns a new TextReader that reads from r.
func NewTextReader(r io.Reader) *TextReader {
	return &TextReader{sc: bufio.NewScanner(r)}
}

func (tr *TextReader) scan() (string, bool) {
	for tr.sc.Scan() {
		tr.line++
		txt := strings.TrimSpace(tr.sc.Text())
		if txt == "" {
			continue
		}
		return txt, true
	}
	return "", false
}

// Read reads the next record from the underlying stream.
// Read returns io.EOF when no more record is available.
func (tr *TextReader) Read(rec *Record) error {
	if tr.err != nil {
		return tr.err
	}

	hdr := tr.next
	tr.next = ""
	if hdr == "" {
		var ok bool
		hdr, ok = tr.scan()
		if !ok {
			tr.err = io.EOF
			if err := tr.sc.Err(); err != nil {
				tr.err = xerrors.Errorf("pattern: could not read text records: %w", err)
			}
			return tr.err
		}
	}

	err := tr.parseHeader(rec, hdr)
	if err != nil {
		tr.err = err
		return err
	}

	rec.Links = nil
	nwords := rec.Format.Words()
	for {
		txt, ok := tr.scan()
		if !ok {
			break
		}
		if strings.HasPrefix(txt, "#") {
			tr.next = txt
			break
		}

		toks := strings.Fields(txt)
		if len(toks) != 2+nwords {
			tr.err = xerrors.Errorf(
				"pattern: line %d: invalid number of fields (got=%d, want=%d)",
				tr.line, len(toks), 2+nwords,
			)
			return tr.err
		}
		crate, err := strconv.ParseUint(toks[0], 10, 8)
		if err != nil || crate >= link.NumCrates {
			tr.err = xerrors.Errorf("pattern: line %d: invalid crate %q", tr.line, toks[0])
			return tr.err
		}
		lnk, err := strconv.Atoi(toks[1])
		if err != nil || lnk < 1 || lnk > link.NumLinks {
			tr.err = xerrors.Errorf("pattern: line %d: invalid link %q: %w", tr.line, toks[1], link.ErrInvalidLink)
			return tr.err
		}
		ws := make([]uint32, nwords)
		for i, tok := range toks[2:] {
			v, err := strconv.ParseUint(tok, 16, rec.Format.WordBits())
			if err != nil {
				tr.err = xerrors.Errorf("pattern: line %d: could not parse word %d: %w", tr.line, i, err)
				return tr.err
			}
			ws[i] = uint32(v)
		}

		n := len(rec.Links)
		if n == 0 || rec.Links[n-1].Crate != uint8(crate) {
			rec.Links = append(rec.Links, crossing.Links{Crate: uint8(crate)})
			n++
		}
		rec.Links[n-1].Words[lnk-1] = ws
	}

	if err := tr.sc.Err(); err != nil {
		tr.err = xerrors.Errorf("pattern: could not read text records: %w", err)
		return tr.err
	}
	return nil
}

func (tr *TextReader) parseHeader(rec *Record, txt string) error {
	if !strings.HasPrefix(txt, "#") {
		return xerrors.Errorf("pattern: line %d: invalid record header %q", tr.line, txt)
	}
	var (
		hdr  crossing.Header
		name string
	)
	_, err := fmt.Sscanf(
		txt, "# run=%d lumi=%d event=%d format=%s",
		&hdr.Run, &hdr.Lumi, &hdr.Event, &name,
	)
	if err != nil {
		return xerrors.Errorf("pattern: line %d: could not parse record header %q: %w", tr.line, txt, err)
	}
	f, err := link.ParseFormat(name)
	if err != nil {
		return xerrors.Errorf("pattern: line %d: %w", tr.line, err)
	}
	rec.Header = hdr
	rec.Format = f
	return nil
}
