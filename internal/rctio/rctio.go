// Copyright 2023 The go-lpc Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package rctio reads and writes RCT bunch crossings from/to LCIO files.
//
// Each LCIO event holds one bunch crossing, stored as 3 collections
// of generic objects:
//   - RCTCrossing: one object {run, lumi, event, bc0 flags},
//   - RCTRegions: one object per region {crate, card, index, et, flags},
//   - RCTEmCands: one object per candidate {crate, card, region, slot, rank, iso}.
package rctio // import "github.com/go-lpc/orsc/internal/rctio"

import (
	"fmt"
	"math"

	"github.com/go-lpc/orsc/crossing"
	"github.com/go-lpc/orsc/link"
	"go-hep.org/x/hep/lcio"
)

const (
	Detector = "RCT"

	CrossingName = "RCTCrossing"
	RegionsName  = "RCTRegions"
	CandsName    = "RCTEmCands"
)

// BC0 flags of RCTCrossing.
const (
	flagElecBC0 = 1 << iota
	flagJetBC0
)

// region flags of RCTRegions.
const (
	flagTau = 1 << iota
	flagMIP
	flagOverflow
	flagFineGrain
	flagHF
)

func bit(v bool, flag int32) int32 {
	if v {
		return flag
	}
	return 0
}

// WriteRunHeader writes the LCIO run header of a run of RCT crossings.
func WriteRunHeader(w *lcio.Writer, run uint32) error {
	err := w.WriteRunHeader(&lcio.RunHeader{
		RunNumber: int32(run),
		Detector:  Detector,
		Descr:     "RCT bunch crossings",
		Params: lcio.Params{
			Ints: map[string][]int32{
				"NumCrates": {link.NumCrates},
			},
		},
	})
	if err != nil {
		return fmt.Errorf("rctio: could not write run header: %w", err)
	}
	return nil
}

// WriteInput writes the bunch crossing as a new LCIO event.
func WriteInput(w *lcio.Writer, in *crossing.Input) error {
	evt := lcio.Event{
		RunNumber:   int32(in.Run),
		EventNumber: int32(in.Event),
		Detector:    Detector,
	}

	hdr := &lcio.GenericObject{
		Data: []lcio.GenericObjectData{{
			I32s: []int32{
				int32(in.Run), int32(in.Lumi), int32(in.Event),
				bit(in.ElecBC0, flagElecBC0) | bit(in.JetBC0, flagJetBC0),
			},
		}},
	}

	regs := &lcio.GenericObject{
		Data: make([]lcio.GenericObjectData, len(in.Regions)),
	}
	for i, reg := range in.Regions {
		regs.Data[i].I32s = []int32{
			int32(reg.Crate), int32(reg.Card), int32(reg.Index), int32(reg.Et),
			bit(reg.Tau, flagTau) |
				bit(reg.MIP, flagMIP) |
				bit(reg.Overflow, flagOverflow) |
				bit(reg.FineGrain, flagFineGrain) |
				bit(reg.HF, flagHF),
		}
	}

	cands := &lcio.GenericObject{
		Data: make([]lcio.GenericObjectData, len(in.Cands)),
	}
	for i, c := range in.Cands {
		cands.Data[i].I32s = []int32{
			int32(c.Crate), int32(c.Card), int32(c.Region),
			int32(c.Slot), int32(c.Rank), bit(c.Iso, 1),
		}
	}

	evt.Add(CrossingName, hdr)
	evt.Add(RegionsName, regs)
	evt.Add(CandsName, cands)

	err := w.WriteEvent(&evt)
	if err != nil {
		return fmt.Errorf("rctio: could not write event %d: %w", in.Event, err)
	}
	return nil
}

// ReadInput extracts the bunch crossing stored in the LCIO event.
// Region and candidate records with fields that do not fit the RCT
// record types are reported with an error wrapping link.ErrOutOfRange.
func ReadInput(evt *lcio.Event) (crossing.Input, error) {
	in, rejected, err := readInput(evt)
	if err != nil {
		return in, err
	}
	if len(rejected) > 0 {
		return in, rejected[0]
	}
	return in, nil
}

// readInput extracts the bunch crossing stored in the LCIO event,
// dropping the out of range region and candidate records.
func readInput(evt *lcio.Event) (crossing.Input, []error, error) {
	var (
		in       crossing.Input
		rejected []error
	)

	hdr, err := collection(evt, CrossingName)
	if err != nil {
		return in, nil, err
	}
	if len(hdr.Data) != 1 || len(hdr.Data[0].I32s) != 4 {
		return in, nil, fmt.Errorf("rctio: event %d: invalid %s collection", evt.EventNumber, CrossingName)
	}
	vs := hdr.Data[0].I32s
	in.Run = uint32(vs[0])
	in.Lumi = uint32(vs[1])
	in.Event = uint32(vs[2])
	in.ElecBC0 = vs[3]&flagElecBC0 != 0
	in.JetBC0 = vs[3]&flagJetBC0 != 0

	regs, err := collection(evt, RegionsName)
	if err != nil {
		return in, nil, err
	}
	in.Regions = make([]link.Region, 0, len(regs.Data))
	for i, data := range regs.Data {
		vs := data.I32s
		if len(vs) != 5 {
			return in, nil, fmt.Errorf(
				"rctio: event %d: invalid region %d (len=%d)",
				evt.EventNumber, i, len(vs),
			)
		}
		if !inRange(vs[:3], math.MaxUint8) || !inRange(vs[3:4], math.MaxUint16) {
			rejected = append(rejected, fmt.Errorf(
				"rctio: event %d: invalid region %d (crate=%d, card=%d, index=%d, et=%d): %w",
				evt.EventNumber, i, vs[0], vs[1], vs[2], vs[3], link.ErrOutOfRange,
			))
			continue
		}
		in.Regions = append(in.Regions, link.Region{
			Crate:     uint8(vs[0]),
			Card:      uint8(vs[1]),
			Index:     uint8(vs[2]),
			Et:        uint16(vs[3]),
			Tau:       vs[4]&flagTau != 0,
			MIP:       vs[4]&flagMIP != 0,
			Overflow:  vs[4]&flagOverflow != 0,
			FineGrain: vs[4]&flagFineGrain != 0,
			HF:        vs[4]&flagHF != 0,
		})
	}

	cands, err := collection(evt, CandsName)
	if err != nil {
		return in, nil, err
	}
	in.Cands = make([]link.Candidate, 0, len(cands.Data))
	for i, data := range cands.Data {
		vs := data.I32s
		if len(vs) != 6 {
			return in, nil, fmt.Errorf(
				"rctio: event %d: invalid candidate %d (len=%d)",
				evt.EventNumber, i, len(vs),
			)
		}
		if !inRange(vs[:5], math.MaxUint8) {
			rejected = append(rejected, fmt.Errorf(
				"rctio: event %d: invalid candidate %d (crate=%d, card=%d, region=%d, slot=%d, rank=%d): %w",
				evt.EventNumber, i, vs[0], vs[1], vs[2], vs[3], vs[4], link.ErrOutOfRange,
			))
			continue
		}
		in.Cands = append(in.Cands, link.Candidate{
			Crate:  uint8(vs[0]),
			Card:   uint8(vs[1]),
			Region: uint8(vs[2]),
			Slot:   uint8(vs[3]),
			Rank:   uint8(vs[4]),
			Iso:    vs[5] != 0,
		})
	}

	return in, rejected, nil
}

// inRange reports whether all values are in [0, max].
func inRange(vs []int32, max int32) bool {
	for _, v := range vs {
		if v < 0 || v > max {
			return false
		}
	}
	return true
}

func collection(evt *lcio.Event, name string) (*lcio.GenericObject, error) {
	v := evt.Get(name)
	if v == nil {
		return nil, fmt.Errorf("rctio: event %d: no %s collection", evt.EventNumber, name)
	}
	obj, ok := v.(*lcio.GenericObject)
	if !ok {
		return nil, fmt.Errorf(
			"rctio: event %d: invalid %s collection type %T",
			evt.EventNumber, name, v,
		)
	}
	return obj, nil
}
