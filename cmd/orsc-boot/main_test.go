// Copyright 2020 The go-lpc Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package main

import (
	"os"
	"os/exec"
	"path/filepath"
	"testing"
	"time"
)

func TestRun(t *testing.T) {
	if _, err := exec.LookPath("sleep"); err != nil {
		t.Skipf("no sleep command: %+v", err)
	}

	for _, tc := range []struct {
		name string
		cmds func() []*exec.Cmd
		mon  bool
		stop bool
		err  string
	}{
		{
			name: "simple",
			cmds: func() []*exec.Cmd {
				return []*exec.Cmd{
					exec.Command("sleep", "0.5"),
					exec.Command("sleep", "0.5"),
				}
			},
		},
		{
			name: "simple-pmon",
			cmds: func() []*exec.Cmd {
				return []*exec.Cmd{
					exec.Command("sleep", "1"),
					exec.Command("sleep", "1"),
				}
			},
			mon: true,
		},
		{
			name: "simple-stop",
			cmds: func() []*exec.Cmd {
				return []*exec.Cmd{
					exec.Command("sleep", "20"),
					exec.Command("sleep", "20"),
				}
			},
			stop: true,
		},
		{
			name: "simple-stop-pmon",
			cmds: func() []*exec.Cmd {
				return []*exec.Cmd{
					exec.Command("sleep", "20"),
					exec.Command("sleep", "20"),
				}
			},
			stop: true,
			mon:  true,
		},
		{
			name: "fail",
			cmds: func() []*exec.Cmd {
				return []*exec.Cmd{
					exec.Command("sleep", "20"),
					exec.Command("sleep", "not-a-duration"),
				}
			},
			err: "could not boot DAQ: could not run \"sleep\": exit status 1",
		},
	} {
		t.Run(tc.name, func(t *testing.T) {
			dir, err := os.MkdirTemp("", "orsc-boot-")
			if err != nil {
				t.Fatalf("could not create tmpdir: %+v", err)
			}
			defer os.RemoveAll(dir)

			stop := make(chan os.Signal, 1)
			if tc.stop {
				go func() {
					time.Sleep(1 * time.Second)
					stop <- os.Interrupt
				}()
			}

			cfg := config{
				mon:  tc.mon,
				freq: 100 * time.Millisecond,
				dir:  dir,
			}

			beg := time.Now()
			err = run(cfg, tc.cmds(), stop)
			switch {
			case err != nil && tc.err != "":
				if got, want := err.Error(), tc.err; got != want {
					t.Fatalf("invalid error:\ngot= %v\nwant=%v", got, want)
				}
			case err != nil:
				t.Fatalf("could not run processes: %+v", err)
			case tc.err != "":
				t.Fatalf("expected an error (%s)", tc.err)
			}

			if delta := time.Since(beg); delta > 10*time.Second {
				t.Fatalf("processes were not stopped (delta=%v)", delta)
			}

			_, err = os.Stat(filepath.Join(dir, "sleep.log"))
			if err != nil {
				t.Fatalf("could not find log file: %+v", err)
			}
		})
	}
}

func TestRunInvalidDir(t *testing.T) {
	cfg := config{dir: filepath.Join(os.TempDir(), "orsc-boot-not-there", "sub")}
	err := run(cfg, []*exec.Cmd{exec.Command("true")}, make(chan os.Signal, 1))
	if err == nil {
		t.Fatalf("expected an error")
	}
}
