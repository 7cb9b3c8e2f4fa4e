// Copyright 2020 The go-lpc Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Command orsc-boot (re)starts the oRSC DAQ processes.
//
// Usage: orsc-boot [OPTIONS] "cmd1 [args...]" ["cmd2 [args...]" ...]
//
// Example:
//
//	$> orsc-boot -pmon "tdaq-runctl -lvl=INFO" "orsc-srv -id=orsc-srv-01"
//
// Each process writes its output to a log file under the directory given
// by -dir (or $ORSCLOGDIR). All the processes are killed when one of them
// fails or on interrupt.
package main // import "github.com/go-lpc/orsc/cmd/orsc-boot"

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"os/exec"
	"os/signal"
	"path/filepath"
	"strings"
	"time"

	"github.com/sbinet/pmon"
	"golang.org/x/sync/errgroup"
)

type config struct {
	mon  bool          // enable pmon monitoring
	freq time.Duration // pmon frequency
	dir  string        // directory of the log files
	kill bool          // kill already running instances
}

func main() {
	var (
		doMon  = flag.Bool("pmon", false, "enable pmon monitoring")
		doFreq = flag.Duration("freq", 1*time.Second, "pmon frequency")
		doKill = flag.Bool("kill", true, "kill already running instances of the processes")
		dir    = flag.String("dir", os.Getenv("ORSCLOGDIR"), "directory of the log files")
	)

	flag.Parse()

	log.SetPrefix("orsc-boot: ")
	log.SetFlags(0)

	if flag.NArg() == 0 {
		flag.Usage()
		log.Fatalf("missing command(s) to boot")
	}

	cmds := make([]*exec.Cmd, 0, flag.NArg())
	for _, arg := range flag.Args() {
		toks := strings.Fields(arg)
		if len(toks) == 0 {
			log.Fatalf("invalid empty command")
		}
		cmds = append(cmds, exec.Command(toks[0], toks[1:]...))
	}

	cfg := config{
		mon:  *doMon,
		freq: *doFreq,
		dir:  *dir,
		kill: *doKill,
	}

	stop := make(chan os.Signal, 1)
	err := run(cfg, cmds, stop)
	if err != nil {
		log.Fatalf("%+v", err)
	}
}

func run(cfg config, cmds []*exec.Cmd, stop chan os.Signal) error {
	signal.Notify(stop, os.Interrupt)
	defer signal.Stop(stop)

	if cfg.kill {
		for _, cmd := range cmds {
			name := filepath.Base(cmd.Path)
			kill := exec.Command("killall", name)
			kill.Stderr = os.Stderr
			kill.Stdout = os.Stdout
			err := kill.Run()
			if err != nil {
				log.Printf("could not kill %q: %+v", name, err)
			}
		}
	}

	if cfg.dir == "" {
		cfg.dir = "/var/log/orsc"
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go func() {
		select {
		case <-stop:
			log.Printf("received interrupt, stopping...")
			cancel()
		case <-ctx.Done():
		}
	}()

	grp, ctx := errgroup.WithContext(ctx)
	for i := range cmds {
		cmd := cmds[i]
		grp.Go(func() error {
			return start(ctx, cmd, cfg)
		})
	}

	err := grp.Wait()
	if err != nil {
		return fmt.Errorf("could not boot DAQ: %w", err)
	}
	return nil
}

func start(ctx context.Context, cmd *exec.Cmd, cfg config) error {
	name := filepath.Base(cmd.Path)
	out, err := os.Create(filepath.Join(cfg.dir, name+".log"))
	if err != nil {
		return fmt.Errorf("could not create output log file for %q: %w", name, err)
	}
	defer out.Close()

	cmd.Stdout = out
	cmd.Stderr = out

	log.Printf("starting %q...", name)
	err = cmd.Start()
	if err != nil {
		return fmt.Errorf("could not start %q: %w", name, err)
	}

	if cfg.mon {
		p, err := pmon.Monitor(cmd.Process.Pid)
		if err != nil {
			_ = cmd.Process.Kill()
			return fmt.Errorf("could not start monitoring %q (pid=%d): %w", name, cmd.Process.Pid, err)
		}
		f, err := os.Create(filepath.Join(cfg.dir, name+"-pmon.log"))
		if err != nil {
			_ = cmd.Process.Kill()
			return fmt.Errorf("could not create pmon log file for command %q: %w", name, err)
		}
		defer f.Close()
		p.W = f
		p.Freq = cfg.freq

		go func() {
			log.Printf("run pmon %q...", name)
			err := p.Run()
			if err != nil {
				log.Printf("could not start monitoring %q: %+v", name, err)
			}
		}()

		defer func() {
			err := p.Kill()
			if err != nil {
				log.Printf("could not stop monitoring %q: %+v", name, err)
			}
		}()
	}

	errch := make(chan error, 1)
	go func() {
		errch <- cmd.Wait()
	}()

	select {
	case <-ctx.Done():
		err = cmd.Process.Kill()
		if err != nil && !errors.Is(err, os.ErrProcessDone) {
			return fmt.Errorf("could not kill %q: %w", name, err)
		}
		<-errch
	case err = <-errch:
		if err != nil {
			return fmt.Errorf("could not run %q: %w", name, err)
		}
	}

	return nil
}
