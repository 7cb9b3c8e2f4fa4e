// Copyright 2020 The go-lpc Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package fakedb provides an in-memory database/sql driver, named
// "fakedb", serving canned rows to the queries run under Run.
package fakedb // import "github.com/go-lpc/orsc/internal/fakedb"

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"io"
	"sync"
)

var query struct {
	mu   sync.Mutex
	rows Rows
	last Query
}

// Query is a query received by the driver.
type Query struct {
	Text string
	Args []driver.Value
}

// Run runs f while every query issued through the fakedb driver
// returns the provided rows.
func Run(ctx context.Context, rows Rows, f func(ctx context.Context) error) error {
	query.mu.Lock()
	defer query.mu.Unlock()
	query.rows = rows
	query.last = Query{}

	return f(ctx)
}

// Last returns the last query received by the driver.
// Last must be called from within the function passed to Run.
func Last() Query {
	return query.last
}

func init() {
	sql.Register("fakedb", &Driver{})
}

type Driver struct{}

// Open returns a new connection. name is ignored.
func (drv *Driver) Open(name string) (driver.Conn, error) {
	return &Conn{}, nil
}

type Conn struct{}

func (c *Conn) Prepare(query string) (driver.Stmt, error) {
	return &Stmt{query: query}, nil
}

func (c *Conn) Close() error { return nil }

func (c *Conn) Begin() (driver.Tx, error) {
	panic("fakedb: transactions not implemented")
}

type Stmt struct {
	query string
}

func (stmt *Stmt) Close() error { return nil }

// NumInput returns -1: the number of placeholders is not checked.
func (stmt *Stmt) NumInput() int { return -1 }

func (stmt *Stmt) Exec(args []driver.Value) (driver.Result, error) {
	panic("fakedb: exec not implemented")
}

// Query records the query and returns a copy of the canned rows,
// or the canned error.
func (stmt *Stmt) Query(args []driver.Value) (driver.Rows, error) {
	query.last = Query{Text: stmt.query, Args: args}
	if query.rows.Err != nil {
		return nil, query.rows.Err
	}
	rows := query.rows
	return &rows, nil
}

// Rows are the canned results of a query.
type Rows struct {
	Names  []string
	Values [][]driver.Value
	Err    error // error returned by the query, if any
}

func (rows *Rows) Columns() []string { return rows.Names }
func (rows *Rows) Close() error      { return nil }

// Next populates dest with the next row.
// Next returns io.EOF when there are no more rows.
func (rows *Rows) Next(dest []driver.Value) error {
	if len(rows.Values) == 0 {
		return io.EOF
	}
	copy(dest, rows.Values[0])
	rows.Values = rows.Values[1:]
	return nil
}

var (
	_ driver.Driver = (*Driver)(nil)
	_ driver.Conn   = (*Conn)(nil)
	_ driver.Stmt   = (*Stmt)(nil)
	_ driver.Rows   = (*Rows)(nil)
)
