// Copyright 2023 The go-lpc Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package rctio

import (
	"context"
	"fmt"
	"log"

	"github.com/go-lpc/orsc/crossing"
	"github.com/go-lpc/orsc/link"
	"go-hep.org/x/hep/lcio"
)

// Stats summarizes a conversion.
type Stats struct {
	Crossings int     // number of encoded bunch crossings
	Rejected  int     // number of rejected input records
	Errors    []error // first rejection errors, at most MaxErrors
}

// MaxErrors is the maximum number of rejection errors kept in Stats.
const MaxErrors = 100

// Convert encodes every bunch crossing read from r into oRSC link words,
// using the layout of format f for the crates enabled in mask, and hands
// them to sink.
// Rejected input records are logged to msg and do not stop the conversion.
func Convert(ctx context.Context, r *lcio.Reader, f link.Format, mask crossing.Mask, freq int, msg *log.Logger, sink func(res crossing.Result) error) (Stats, error) {
	var stats Stats
	if freq <= 0 {
		freq = 1
	}

	for i := 0; r.Next(); i++ {
		if i%freq == 0 {
			msg.Printf("processing evt %d...", i)
		}
		evt := r.Event()
		in, rejected, err := readInput(&evt)
		if err != nil {
			return stats, fmt.Errorf("could not read RCT crossing: %w", err)
		}

		res, err := crossing.Process(ctx, f, mask, in)
		if err != nil {
			return stats, fmt.Errorf("could not encode crossing (%v): %w", in.Header, err)
		}
		rejected = append(rejected, res.Rejected...)
		for _, err := range rejected {
			msg.Printf("rejected record: %+v", err)
			if len(stats.Errors) < MaxErrors {
				stats.Errors = append(stats.Errors, err)
			}
		}
		stats.Rejected += len(rejected)

		err = sink(res)
		if err != nil {
			return stats, fmt.Errorf("could not write crossing (%v): %w", in.Header, err)
		}
		stats.Crossings++
	}

	if err := r.Err(); err != nil {
		return stats, fmt.Errorf("could not read LCIO event: %w", err)
	}

	return stats, nil
}
