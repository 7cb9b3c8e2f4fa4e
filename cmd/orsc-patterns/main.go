// Copyright 2023 The go-lpc Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Command orsc-patterns converts RCT bunch crossings stored in a LCIO file
// into oRSC optical link patterns.
//
// The link format and the enabled crates may be given on the command line
// or retrieved from the condition database for a given run.
// Rejected RCT records are logged and, optionally, reported by mail.
package main // import "github.com/go-lpc/orsc/cmd/orsc-patterns"

import (
	"context"
	"crypto/tls"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/go-lpc/orsc"
	"github.com/go-lpc/orsc/conddb"
	"github.com/go-lpc/orsc/crossing"
	"github.com/go-lpc/orsc/internal/rctio"
	"github.com/go-lpc/orsc/link"
	"github.com/go-lpc/orsc/pattern"
	"go-hep.org/x/hep/lcio"
	mail "gopkg.in/gomail.v2"
)

func main() {
	log.SetPrefix("orsc-patterns: ")
	log.SetFlags(0)

	var (
		format = flag.String("format", "legacy", "oRSC link format (legacy, extended)")
		crates = flag.String("crates", "all", "list of enabled RCT crates (ex: all, 0-8,17)")
		dbname = flag.String("db", "", "name of the condition database holding the link configuration")
		run    = flag.Int("run", -1, "run number of the link configuration (default: last run)")
		oname  = flag.String("o", "orsc-patterns.txt", "path to output text patterns file")
		raw    = flag.String("raw", "", "path to output binary patterns file")
		mailTo = flag.String("mail-to", os.Getenv("MAIL_TGTS"), "comma-separated list of mail addresses to alert on rejected records")
		vers   = flag.Bool("version", false, "print version and exit")
	)

	flag.Usage = func() {
		fmt.Printf(`Usage: orsc-patterns [OPTIONS] file.lcio

ex:
 $> orsc-patterns -format=extended -crates=0-8 -o out.txt ./rct.lcio
 $> orsc-patterns -db=orsc -run=42 -raw=out.raw ./rct.lcio

options:
`)
		flag.PrintDefaults()
	}

	flag.Parse()

	if *vers {
		v, sum := orsc.Version()
		fmt.Printf("orsc-patterns %s %s\n", v, sum)
		return
	}

	if flag.NArg() != 1 {
		flag.Usage()
		log.Fatalf("missing input LCIO file")
	}

	if *oname == "" {
		flag.Usage()
		log.Fatalf("invalid output patterns file name")
	}

	var (
		cfg conddb.LinkConfig
		err error
	)
	switch *dbname {
	case "":
		cfg, err = configFrom(*format, *crates)
	default:
		cfg, err = configFromDB(*dbname, *run)
	}
	if err != nil {
		log.Fatalf("could not setup link configuration: %+v", err)
	}
	log.Printf("input:  %s", flag.Arg(0))
	log.Printf("format: %v", cfg.Format)
	log.Printf("crates: %v", cfg.Crates)

	msg := log.New(os.Stdout, "orsc-patterns: ", 0)
	stats, err := process(*oname, *raw, flag.Arg(0), cfg, msg)
	if err != nil {
		log.Fatalf("could not convert LCIO file: %+v", err)
	}
	log.Printf("crossings: %d", stats.Crossings)
	log.Printf("rejected:  %d", stats.Rejected)

	if stats.Rejected > 0 && *mailTo != "" {
		alertMail(alertMessage(flag.Arg(0), cfg, stats, strings.Split(*mailTo, ",")))
	}
}

func configFrom(format, crates string) (conddb.LinkConfig, error) {
	var (
		cfg conddb.LinkConfig
		err error
	)
	cfg.Format, err = link.ParseFormat(format)
	if err != nil {
		return cfg, fmt.Errorf("could not parse link format: %w", err)
	}
	cfg.Crates, err = crossing.ParseMask(crates)
	if err != nil {
		return cfg, fmt.Errorf("could not parse crates mask: %w", err)
	}
	return cfg, nil
}

func configFromDB(dbname string, run int) (conddb.LinkConfig, error) {
	db, err := conddb.Open(dbname)
	if err != nil {
		return conddb.LinkConfig{}, fmt.Errorf("could not open condition db: %w", err)
	}
	defer db.Close()

	ctx := context.Background()
	if run < 0 {
		last, err := db.LastRun(ctx)
		if err != nil {
			return conddb.LinkConfig{}, fmt.Errorf("could not retrieve last run: %w", err)
		}
		run = int(last)
	}

	cfg, err := db.LinkConfig(ctx, uint32(run))
	if err != nil {
		return cfg, fmt.Errorf("could not retrieve link configuration for run %d: %w", run, err)
	}
	return cfg, nil
}

func numEvents(fname string) (int64, error) {
	r, err := lcio.Open(fname)
	if err != nil {
		return 0, fmt.Errorf("could not open %q: %w", fname, err)
	}
	defer r.Close()

	var n int64
	for r.Next() {
		n++
	}

	err = r.Err()
	if err != nil && err != io.EOF {
		return 0, fmt.Errorf("could not assess number of events in %q: %w", fname, err)
	}

	return n, nil
}

func process(oname, raw, fname string, cfg conddb.LinkConfig, msg *log.Logger) (rctio.Stats, error) {
	var stats rctio.Stats

	n, err := numEvents(fname)
	if err != nil {
		return stats, fmt.Errorf("could not assess number of events: %w", err)
	}

	r, err := lcio.Open(fname)
	if err != nil {
		return stats, fmt.Errorf("could not open LCIO file: %w", err)
	}
	defer r.Close()

	o, err := os.Create(oname)
	if err != nil {
		return stats, fmt.Errorf("could not create output patterns file: %w", err)
	}
	defer o.Close()

	var (
		tw  = pattern.NewTextWriter(o)
		bin *os.File
		enc *pattern.Encoder
	)

	if raw != "" {
		bin, err = os.Create(raw)
		if err != nil {
			return stats, fmt.Errorf("could not create output binary patterns file: %w", err)
		}
		defer bin.Close()
		enc = pattern.NewEncoder(bin)
	}

	stats, err = rctio.Convert(
		context.Background(), r, cfg.Format, cfg.Crates, int(n/10), msg,
		func(res crossing.Result) error {
			rec := pattern.RecordOf(res)
			err := tw.Write(&rec)
			if err != nil {
				return err
			}
			if enc == nil {
				return nil
			}
			return enc.Encode(&rec)
		},
	)
	if err != nil {
		return stats, fmt.Errorf("could not convert crossings: %w", err)
	}

	err = tw.Flush()
	if err != nil {
		return stats, fmt.Errorf("could not flush output patterns file: %w", err)
	}

	err = o.Close()
	if err != nil {
		return stats, fmt.Errorf("could not close output patterns file: %w", err)
	}

	if bin != nil {
		err = bin.Close()
		if err != nil {
			return stats, fmt.Errorf("could not close output binary patterns file: %w", err)
		}
	}

	return stats, nil
}

var (
	alertMailUsr  = os.Getenv("MAIL_USERNAME")
	alertMailPwd  = os.Getenv("MAIL_PASSWORD")
	alertMailSrv  = os.Getenv("MAIL_SERVER")
	alertMailPort = atoi(os.Getenv("MAIL_PORT"))
)

func alertMessage(fname string, cfg conddb.LinkConfig, stats rctio.Stats, tgts []string) *mail.Message {
	body := new(strings.Builder)
	fmt.Fprintf(body, "file:      %q\n", fname)
	fmt.Fprintf(body, "format:    %v\n", cfg.Format)
	fmt.Fprintf(body, "crates:    %v\n", cfg.Crates)
	fmt.Fprintf(body, "crossings: %d\n", stats.Crossings)
	fmt.Fprintf(body, "rejected:  %d\n", stats.Rejected)
	fmt.Fprintf(body, "date:      %v\n\n", time.Now().UTC().Format(time.RFC3339))
	for _, err := range stats.Errors {
		fmt.Fprintf(body, "- %v\n", err)
	}
	if n := stats.Rejected - len(stats.Errors); n > 0 {
		fmt.Fprintf(body, "[...] (%d more)\n", n)
	}

	msg := mail.NewMessage()
	msg.SetHeader("From", alertMailUsr)
	msg.SetHeader("Bcc", tgts...)
	msg.SetHeader("Subject", fmt.Sprintf("[orsc-patterns] rejected records: %d", stats.Rejected))
	msg.SetBody("text/plain", body.String())
	return msg
}

func alertMail(msg *mail.Message) {
	if alertMailUsr == "" || alertMailPwd == "" ||
		alertMailSrv == "" || alertMailPort == 0 {
		log.Printf("could not send mail alert: missing credentials")
		return
	}

	dial := mail.NewDialer(alertMailSrv, alertMailPort, alertMailUsr, alertMailPwd)
	dial.TLSConfig = &tls.Config{
		InsecureSkipVerify: true,
	}
	err := dial.DialAndSend(msg)
	if err != nil {
		log.Printf("could not send mail alert: %+v", err)
	}
}

func atoi(s string) int {
	v, err := strconv.Atoi(s)
	if err != nil {
		return 0
	}
	return v
}
