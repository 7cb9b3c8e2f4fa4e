// Copyright 2023 The go-lpc Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package crossing

import (
	"testing"
)

func TestParseMask(t *testing.T) {
	for _, tc := range []struct {
		str  string
		want Mask
		n    int
		name string
		err  string
	}{
		{str: "all", want: AllCrates, n: 18, name: "all"},
		{str: "0-17", want: AllCrates, n: 18, name: "all"},
		{str: "0", want: 0x1, n: 1, name: "0"},
		{str: "0,17", want: 0x20001, n: 2, name: "0,17"},
		{str: " 1 - 3 ,5", want: 0x2e, n: 4, name: "1-3,5"},
		{str: "4,3,2", want: 0x1c, n: 3, name: "2-4"},
		{str: "18", err: `crossing: could not parse crate mask "18": invalid crate 18: index out of range`},
		{str: "3-1", err: `crossing: invalid crate range "3-1"`},
		{str: "", err: `crossing: could not parse crate mask "": strconv.ParseUint: parsing "": invalid syntax`},
		{str: "x", err: `crossing: could not parse crate mask "x": strconv.ParseUint: parsing "x": invalid syntax`},
	} {
		t.Run(tc.str, func(t *testing.T) {
			got, err := ParseMask(tc.str)
			if tc.err != "" {
				if err == nil {
					t.Fatalf("expected an error")
				}
				if got, want := err.Error(), tc.err; got != want {
					t.Fatalf("invalid error:\ngot= %q\nwant=%q", got, want)
				}
				return
			}
			if err != nil {
				t.Fatalf("could not parse mask: %+v", err)
			}
			if got != tc.want {
				t.Fatalf("invalid mask: got=0x%x, want=0x%x", got, tc.want)
			}
			if got, want := got.Len(), tc.n; got != want {
				t.Fatalf("invalid number of crates: got=%d, want=%d", got, want)
			}
			if got, want := got.String(), tc.name; got != want {
				t.Fatalf("invalid mask name: got=%q, want=%q", got, want)
			}
		})
	}
}
