// Copyright 2020 The go-lpc Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package conddb gives access to the condition database holding the
// oRSC link configuration of each run.
//
// The configuration is stored in the orsc_runs table:
//
//	CREATE TABLE orsc_runs (
//	    run      INT UNSIGNED NOT NULL,
//	    format   VARCHAR(16)  NOT NULL, -- "legacy" or "extended"
//	    crates   INT UNSIGNED NOT NULL, -- mask of enabled crates
//	    datetime DATETIME     NOT NULL
//	);
package conddb // import "github.com/go-lpc/orsc/conddb"

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/go-lpc/orsc/crossing"
	"github.com/go-lpc/orsc/link"
	_ "github.com/go-sql-driver/mysql"
)

const (
	host = "localhost"
)

var (
	usr = "username"
	pwd = "s3cr3t"

	drvName = "mysql"
)

// ErrNoConfig is returned when no link configuration is registered
// for a run.
var ErrNoConfig = errors.New("conddb: no link configuration")

// LinkConfig is the oRSC link configuration of a run.
type LinkConfig struct {
	Run    uint32
	Format link.Format
	Crates crossing.Mask
}

// DB exposes convenience methods to easily retrieve the oRSC link
// configuration from the condition database.
type DB struct {
	db   *sql.DB
	name string // name of the condition database
}

// Open opens a connection to the condition database dbname.
func Open(dbname string) (*DB, error) {
	db, err := sql.Open(drvName, dsn(dbname))
	if err != nil {
		return nil, fmt.Errorf("conddb: could not open %q db: %w", dbname, err)
	}

	err = ping(db, dbname)
	if err != nil {
		_ = db.Close()
		return nil, err
	}

	return &DB{db: db, name: dbname}, nil
}

func dsn(db string) string {
	return fmt.Sprintf("%s:%s@tcp(%s)/%s", usr, pwd, host, db)
}

func ping(db *sql.DB, dbname string) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	err := db.PingContext(ctx)
	if err != nil {
		return fmt.Errorf("conddb: could not ping %q db: %w", dbname, err)
	}

	return nil
}

func (db *DB) Close() error {
	return db.db.Close()
}

func (db *DB) QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error) {
	return db.db.QueryContext(ctx, query, args...)
}

// LastRun returns the most recently configured run.
func (db *DB) LastRun(ctx context.Context) (uint32, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	var run uint32
	rows, err := db.db.QueryContext(
		ctx,
		"SELECT run FROM orsc_runs ORDER BY datetime DESC LIMIT 1",
	)
	if err != nil {
		return run, fmt.Errorf("conddb: could not query last run: %w", err)
	}
	defer rows.Close()

	n := 0
	for rows.Next() {
		err = rows.Scan(&run)
		if err != nil {
			return run, fmt.Errorf("conddb: could not get last run value: %w", err)
		}
		n++
	}

	if err := rows.Err(); err != nil {
		return run, fmt.Errorf("conddb: could not scan db for last run: %w", err)
	}

	if err := ctx.Err(); err != nil {
		return run, fmt.Errorf("conddb: context error while retrieving last run: %w", err)
	}

	if n == 0 {
		return run, fmt.Errorf("conddb: could not find any run: %w", ErrNoConfig)
	}

	return run, nil
}

// LinkConfig returns the link configuration of the provided run.
// If several configurations were registered for that run, the most
// recent one is returned.
func (db *DB) LinkConfig(ctx context.Context, run uint32) (LinkConfig, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	var cfg LinkConfig
	rows, err := db.db.QueryContext(
		ctx,
		"SELECT run, format, crates FROM orsc_runs WHERE run=? ORDER BY datetime DESC LIMIT 1",
		run,
	)
	if err != nil {
		return cfg, fmt.Errorf("conddb: could not query link cfg of run %d: %w", run, err)
	}
	defer rows.Close()

	n := 0
	for rows.Next() {
		var (
			format string
			crates uint32
		)
		err = rows.Scan(&cfg.Run, &format, &crates)
		if err != nil {
			return cfg, fmt.Errorf("conddb: could not scan link cfg of run %d: %w", run, err)
		}
		cfg.Format, err = link.ParseFormat(format)
		if err != nil {
			return cfg, fmt.Errorf("conddb: invalid link cfg of run %d: %w", run, err)
		}
		cfg.Crates = crossing.Mask(crates)
		n++
	}

	if err := rows.Err(); err != nil {
		return cfg, fmt.Errorf("conddb: could not scan db for link cfg of run %d: %w", run, err)
	}

	if err := ctx.Err(); err != nil {
		return cfg, fmt.Errorf("conddb: context error while retrieving link cfg of run %d: %w", run, err)
	}

	if n == 0 {
		return cfg, fmt.Errorf("conddb: run %d: %w", run, ErrNoConfig)
	}

	if cfg.Crates&^crossing.AllCrates != 0 {
		return cfg, fmt.Errorf("conddb: invalid crate mask 0x%x for run %d", uint32(cfg.Crates), run)
	}

	return cfg, nil
}
