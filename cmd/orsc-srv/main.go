// Copyright 2023 The go-lpc Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Command orsc-srv starts a TDAQ server encoding RCT bunch crossings
// into oRSC link patterns.
//
// RCT crossings are received on the /rct input end-point and the
// resulting link patterns, encoded as binary pattern records, are
// sent on the /orsc output end-point.
//
// The /config command takes an optional body holding the name of the
// link format and the list of enabled crates (as 2 TDAQ strings).
package main // import "github.com/go-lpc/orsc/cmd/orsc-srv"

import (
	"bytes"
	"context"
	"fmt"
	"log"
	"os"
	"sync"

	"github.com/go-daq/tdaq"
	"github.com/go-daq/tdaq/flags"
	"github.com/go-lpc/orsc/crossing"
	"github.com/go-lpc/orsc/internal/rctio"
	"github.com/go-lpc/orsc/link"
	"github.com/go-lpc/orsc/pattern"
)

func main() {
	cmd := flags.New()

	dev := newServer(cmd.Args[0])

	srv := tdaq.New(cmd, os.Stdout)
	srv.CmdHandle("/config", dev.OnConfig)
	srv.CmdHandle("/init", dev.OnInit)
	srv.CmdHandle("/reset", dev.OnReset)
	srv.CmdHandle("/start", dev.OnStart)
	srv.CmdHandle("/stop", dev.OnStop)
	srv.CmdHandle("/quit", dev.OnQuit)

	srv.InputHandle("/rct", dev.rct)
	srv.OutputHandle("/orsc", dev.orsc)

	srv.RunHandle(dev.run)

	err := srv.Run(context.Background())
	if err != nil {
		log.Panicf("error: %+v", err)
	}
}

// msgstream is the subset of the TDAQ message stream used by the server.
type msgstream interface {
	Debugf(format string, args ...interface{})
	Infof(format string, args ...interface{})
	Errorf(format string, args ...interface{})
}

type server struct {
	name string

	format link.Format
	mask   crossing.Mask

	// ins and data are replaced on /init and /reset, outside of a run.
	ins  chan crossing.Input
	data chan []byte

	mu       sync.Mutex // guards n and rejected
	n        int        // number of encoded crossings
	rejected int        // number of rejected RCT records
}

func newServer(name string) *server {
	return &server{
		name:   name,
		format: link.Legacy,
		mask:   crossing.AllCrates,
		ins:    make(chan crossing.Input, 1024),
		data:   make(chan []byte, 1024),
	}
}

func (dev *server) OnConfig(ctx tdaq.Context, resp *tdaq.Frame, req tdaq.Frame) error {
	ctx.Msg.Debugf("received /config command...")
	return dev.config(ctx.Msg, req.Body)
}

func (dev *server) config(msg msgstream, body []byte) error {
	if len(body) == 0 {
		msg.Infof("link format: %v, crates: %v", dev.format, dev.mask)
		return nil
	}

	dec := tdaq.NewDecoder(bytes.NewReader(body))
	var (
		name   = dec.ReadStr()
		crates = dec.ReadStr()
	)
	if err := dec.Err(); err != nil {
		msg.Errorf("could not decode /config request: %+v", err)
		return fmt.Errorf("could not decode /config request: %w", err)
	}

	format, err := link.ParseFormat(name)
	if err != nil {
		msg.Errorf("could not parse link format: %+v", err)
		return fmt.Errorf("could not parse link format: %w", err)
	}

	mask, err := crossing.ParseMask(crates)
	if err != nil {
		msg.Errorf("could not parse crates mask: %+v", err)
		return fmt.Errorf("could not parse crates mask: %w", err)
	}

	dev.format = format
	dev.mask = mask
	msg.Infof("link format: %v, crates: %v", dev.format, dev.mask)
	return nil
}

func (dev *server) OnInit(ctx tdaq.Context, resp *tdaq.Frame, req tdaq.Frame) error {
	ctx.Msg.Debugf("received /init command...")
	dev.reset()
	return nil
}

func (dev *server) OnReset(ctx tdaq.Context, resp *tdaq.Frame, req tdaq.Frame) error {
	ctx.Msg.Debugf("received /reset command...")
	dev.reset()
	return nil
}

func (dev *server) reset() {
	dev.ins = make(chan crossing.Input, 1024)
	dev.data = make(chan []byte, 1024)

	dev.mu.Lock()
	dev.n = 0
	dev.rejected = 0
	dev.mu.Unlock()
}

func (dev *server) OnStart(ctx tdaq.Context, resp *tdaq.Frame, req tdaq.Frame) error {
	ctx.Msg.Debugf("received /start command...")
	return nil
}

func (dev *server) OnStop(ctx tdaq.Context, resp *tdaq.Frame, req tdaq.Frame) error {
	n, rejected := dev.stats()
	ctx.Msg.Debugf("received /stop command... -> n=%d, rejected=%d", n, rejected)
	return nil
}

func (dev *server) OnQuit(ctx tdaq.Context, resp *tdaq.Frame, req tdaq.Frame) error {
	ctx.Msg.Debugf("received /quit command...")
	return nil
}

func (dev *server) stats() (n, rejected int) {
	dev.mu.Lock()
	defer dev.mu.Unlock()
	return dev.n, dev.rejected
}

func (dev *server) rct(ctx tdaq.Context, src tdaq.Frame) error {
	return dev.input(ctx.Ctx, ctx.Msg, src.Body)
}

func (dev *server) input(ctx context.Context, msg msgstream, body []byte) error {
	var in crossing.Input
	err := rctio.DecodeInput(bytes.NewReader(body), &in)
	if err != nil {
		msg.Errorf("could not decode RCT crossing: %+v", err)
		return fmt.Errorf("could not decode RCT crossing: %w", err)
	}

	select {
	case <-ctx.Done():
	case dev.ins <- in:
	}
	return nil
}

func (dev *server) orsc(ctx tdaq.Context, dst *tdaq.Frame) error {
	dst.Body = dev.output(ctx.Ctx)
	return nil
}

func (dev *server) output(ctx context.Context) []byte {
	select {
	case <-ctx.Done():
		return nil
	case data := <-dev.data:
		return data
	}
}

func (dev *server) run(ctx tdaq.Context) error {
	return dev.loop(ctx.Ctx, ctx.Msg)
}

func (dev *server) loop(ctx context.Context, msg msgstream) error {
	for {
		select {
		case <-ctx.Done():
			return nil
		case in := <-dev.ins:
			raw, err := dev.process(ctx, msg, in)
			if err != nil {
				msg.Errorf("could not process crossing (%v): %+v", in.Header, err)
				return fmt.Errorf("could not process crossing (%v): %w", in.Header, err)
			}
			select {
			case <-ctx.Done():
				return nil
			case dev.data <- raw:
			}
		}
	}
}

func (dev *server) process(ctx context.Context, msg msgstream, in crossing.Input) ([]byte, error) {
	res, err := crossing.Process(ctx, dev.format, dev.mask, in)
	if err != nil {
		return nil, err
	}
	for _, err := range res.Rejected {
		msg.Errorf("rejected record: %+v", err)
	}

	var (
		buf = new(bytes.Buffer)
		rec = pattern.RecordOf(res)
	)
	err = pattern.NewEncoder(buf).Encode(&rec)
	if err != nil {
		return nil, fmt.Errorf("could not encode link patterns: %w", err)
	}

	dev.mu.Lock()
	dev.n++
	dev.rejected += len(res.Rejected)
	dev.mu.Unlock()

	return buf.Bytes(), nil
}
