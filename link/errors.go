// Copyright 2023 The go-lpc Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package link

import (
	"golang.org/x/xerrors"
)

var (
	// ErrOutOfRange is returned when a crate, card, region or slot index
	// is outside the bounds of the active format.
	ErrOutOfRange = xerrors.New("index out of range")

	// ErrNotReady is returned when link frames are read before Finalize.
	ErrNotReady = xerrors.New("link frames not finalized")

	// ErrInvalidLink is returned for a link number other than 1 or 2.
	ErrInvalidLink = xerrors.New("invalid link number")

	// ErrFinalized is returned when data is added to a finalized builder.
	ErrFinalized = xerrors.New("builder already finalized")

	// ErrCrateMismatch is returned when a record is routed to the builder
	// of another crate.
	ErrCrateMismatch = xerrors.New("crate mismatch")

	// ErrFormat is returned for an unknown layout version.
	ErrFormat = xerrors.New("unknown format")
)
