// Copyright 2020 The go-lpc Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Command orsc-sql inspects the oRSC link configuration stored in the
// condition database.
package main // import "github.com/go-lpc/orsc/cmd/orsc-sql"

import (
	"context"
	"flag"
	"fmt"
	"log"
	"time"

	"github.com/go-lpc/orsc/conddb"
	"github.com/go-lpc/orsc/crossing"
)

func main() {
	log.SetPrefix("orsc-sql: ")
	log.SetFlags(0)

	var (
		dbname = flag.String("db", "orsc", "name of the condition database")
		run    = flag.Int("run", -1, "run to inspect (default: last run)")
		hist   = flag.Int("n", 10, "number of configuration history entries to display")
	)

	flag.Parse()

	db, err := conddb.Open(*dbname)
	if err != nil {
		log.Fatalf("could not open condition db: %+v", err)
	}
	defer db.Close()

	err = doQuery(db, *run, *hist)
	if err != nil {
		log.Fatalf("could not do query: %+v", err)
	}
}

func doQuery(db *conddb.DB, run, hist int) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if run < 0 {
		v, err := db.LastRun(ctx)
		if err != nil {
			return fmt.Errorf("could not get last run: %w", err)
		}
		run = int(v)
	}
	log.Printf("run: %d", run)

	cfg, err := db.LinkConfig(ctx, uint32(run))
	if err != nil {
		return fmt.Errorf("could not get link cfg (run=%d): %w", run, err)
	}
	log.Printf("format: %v", cfg.Format)
	log.Printf("crates: %v (n=%d)", cfg.Crates, cfg.Crates.Len())

	rows, err := db.QueryContext(
		ctx,
		"SELECT format, crates, datetime FROM orsc_runs WHERE run=? ORDER BY datetime DESC LIMIT ?",
		run, hist,
	)
	if err != nil {
		return fmt.Errorf("could not get link cfg history: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			format string
			crates uint32
			date   string
		)
		err = rows.Scan(&format, &crates, &date)
		if err != nil {
			return fmt.Errorf("could not scan link cfg history: %w", err)
		}
		log.Printf(">>> %s: format=%s, crates=%v", date, format, crossing.Mask(crates))
	}

	if err := rows.Err(); err != nil {
		return fmt.Errorf("could not scan db for link cfg history: %w", err)
	}

	return nil
}
