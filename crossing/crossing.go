// Copyright 2023 The go-lpc Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package crossing encodes the RCT output of one bunch crossing into
// the oRSC link words of all the crates.
package crossing // import "github.com/go-lpc/orsc/crossing"

import (
	"context"
	"fmt"

	"github.com/go-lpc/orsc/link"
	"golang.org/x/sync/errgroup"
)

// Header identifies a bunch crossing.
type Header struct {
	Run   uint32
	Lumi  uint32
	Event uint32
}

func (hdr Header) String() string {
	return fmt.Sprintf("run=%d lumi=%d event=%d", hdr.Run, hdr.Lumi, hdr.Event)
}

// Input is the RCT output of one bunch crossing, for all crates.
type Input struct {
	Header

	ElecBC0 bool
	JetBC0  bool

	Regions []link.Region
	Cands   []link.Candidate
}

// Links holds the output words of the 2 links of a crate.
type Links struct {
	Crate uint8
	Words [link.NumLinks][]uint32
}

// Crossing holds the link builders of the enabled crates for one
// bunch crossing.
type Crossing struct {
	hdr    Header
	format link.Format
	mask   Mask
	crates [link.NumCrates]*link.Builder
}

// New creates the link builders of the crates enabled in mask.
func New(hdr Header, f link.Format, mask Mask) (*Crossing, error) {
	if mask == 0 {
		return nil, fmt.Errorf("crossing: no crate enabled")
	}
	if mask&^AllCrates != 0 {
		return nil, fmt.Errorf("crossing: invalid crate mask 0x%x", uint32(mask))
	}

	c := &Crossing{hdr: hdr, format: f, mask: mask}
	for i := range c.crates {
		crate := uint8(i)
		if !mask.Has(crate) {
			continue
		}
		b, err := link.NewBuilder(crate, f)
		if err != nil {
			return nil, fmt.Errorf("crossing: could not create builder for crate %d: %w", crate, err)
		}
		c.crates[i] = b
	}
	return c, nil
}

func (c *Crossing) Header() Header      { return c.hdr }
func (c *Crossing) Format() link.Format { return c.format }
func (c *Crossing) Mask() Mask          { return c.mask }

// builder returns the builder of the provided crate, or nil if that
// crate is disabled.
func (c *Crossing) builder(crate uint8) (*link.Builder, error) {
	if crate >= link.NumCrates {
		return nil, fmt.Errorf("crossing: invalid crate %d: %w", crate, link.ErrOutOfRange)
	}
	return c.crates[crate], nil
}

// Fill routes the records of the input to the builders of their crate.
// Records of disabled crates are dropped.
//
// Invalid records are rejected and do not prevent the other records
// from being encoded: Fill returns the list of rejected records' errors.
func (c *Crossing) Fill(in Input) []error {
	var errs []error

	for _, b := range c.crates {
		if b == nil {
			continue
		}
		err := b.SetBC0(in.ElecBC0, in.JetBC0)
		if err != nil {
			errs = append(errs, fmt.Errorf("crossing: %v: could not set BC0: %w", c.hdr, err))
		}
	}

	for _, reg := range in.Regions {
		b, err := c.builder(reg.Crate)
		if err != nil {
			errs = append(errs, fmt.Errorf("crossing: %v: could not add %v: %w", c.hdr, reg, err))
			continue
		}
		if b == nil {
			continue
		}
		err = b.AddRegion(reg)
		if err != nil {
			errs = append(errs, fmt.Errorf("crossing: %v: %w", c.hdr, err))
		}
	}

	for _, cand := range in.Cands {
		b, err := c.builder(cand.Crate)
		if err != nil {
			errs = append(errs, fmt.Errorf("crossing: %v: could not add %v: %w", c.hdr, cand, err))
			continue
		}
		if b == nil {
			continue
		}
		err = b.AddCandidate(cand)
		if err != nil {
			errs = append(errs, fmt.Errorf("crossing: %v: %w", c.hdr, err))
		}
	}

	return errs
}

// Finalize computes the link frames of all the enabled crates.
// Each crate is finalized by its own goroutine.
func (c *Crossing) Finalize(ctx context.Context) error {
	grp, ctx := errgroup.WithContext(ctx)
	for i := range c.crates {
		b := c.crates[i]
		if b == nil {
			continue
		}
		grp.Go(func() error {
			if err := ctx.Err(); err != nil {
				return fmt.Errorf("crossing: could not finalize crate %d: %w", b.Crate(), err)
			}
			b.Finalize()
			return nil
		})
	}
	return grp.Wait()
}

// Links returns the output words of the enabled crates, in crate order.
func (c *Crossing) Links() ([]Links, error) {
	o := make([]Links, 0, c.mask.Len())
	for _, b := range c.crates {
		if b == nil {
			continue
		}
		lnk := Links{Crate: b.Crate()}
		for i := range lnk.Words {
			ws, err := b.Words(i + 1)
			if err != nil {
				return nil, fmt.Errorf("crossing: could not get link words: %w", err)
			}
			lnk.Words[i] = ws
		}
		o = append(o, lnk)
	}
	return o, nil
}

// Result is the encoded form of a bunch crossing.
type Result struct {
	Header   Header
	Format   link.Format
	Links    []Links
	Rejected []error // errors of the rejected input records
}

// Process encodes the provided bunch crossing for the crates enabled
// in mask.
func Process(ctx context.Context, f link.Format, mask Mask, in Input) (Result, error) {
	c, err := New(in.Header, f, mask)
	if err != nil {
		return Result{}, err
	}

	res := Result{
		Header:   in.Header,
		Format:   f,
		Rejected: c.Fill(in),
	}

	err = c.Finalize(ctx)
	if err != nil {
		return res, err
	}

	res.Links, err = c.Links()
	if err != nil {
		return res, err
	}

	return res, nil
}
