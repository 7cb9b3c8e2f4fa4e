// Copyright 2023 The go-lpc Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package link

// Bit assignments of the oRSC optical links.
//
// Each table lists the rows of a link frame from top to bottom, and the
// columns of a row from the most significant bit (left) to the least
// significant bit (right), as in the oRSC link bit-assignment tables.
//
// Legend:
//  - pad:           reserved bit, always 0
//  - bc0e, bc0j:    electron and jet bunch-crossing-zero bits
//  - rc(c, r, b):   bit b of the Et of region r of receiver card c
//  - rcID(c, r):    region c/r has neither a tau nor a MIP veto
//  - rcOf, rcTau, rcHad: overflow, tau veto and MIP veto of region c/r
//  - hf(r, b):      bit b of the Et of HF region r
//  - hfFg(r):       fine grain bit of HF region r
//  - ie(s, b):      bit b of the rank of the isolated candidate in slot s
//  - iePos(s, b):   bit b of its position (bit 0: region, bits 1-3: card)
//  - ne, nePos:     same, for non-isolated candidates

// Legacy layout: 16 rows per link.
// Link 1 carries the isolated candidates, link 2 the non-isolated ones.

var legacyLink1 = [16][NumCols]Cell{
	{pad, pad, pad, pad, pad, pad, pad, pad}, // row 0
	{bc0e, bc0j, rc(0, 0, 5), rc(0, 0, 4), rc(0, 0, 3), rc(0, 0, 2), rc(0, 0, 1), rc(0, 0, 0)},
	{iePos(0, 1), iePos(0, 0), ie(0, 5), ie(0, 4), ie(0, 3), ie(0, 2), ie(0, 1), ie(0, 0)},
	{rc(1, 0, 1), rc(1, 0, 0), rc(0, 0, 9), rc(0, 0, 8), rc(0, 0, 7), rc(0, 0, 6), iePos(0, 3), iePos(0, 2)},
	{iePos(1, 1), iePos(1, 0), ie(1, 5), ie(1, 4), ie(1, 3), ie(1, 2), ie(1, 1), ie(1, 0)}, // row 4
	{rc(1, 0, 7), rc(1, 0, 6), rc(1, 0, 5), rc(1, 0, 4), rc(1, 0, 3), rc(1, 0, 2), iePos(1, 3), iePos(1, 2)},
	{rc(2, 0, 5), rc(2, 0, 4), rc(2, 0, 3), rc(2, 0, 2), rc(2, 0, 1), rc(2, 0, 0), rc(1, 0, 9), rc(1, 0, 8)},
	{rc(3, 0, 3), rc(3, 0, 2), rc(3, 0, 1), rc(3, 0, 0), rc(2, 0, 9), rc(2, 0, 8), rc(2, 0, 7), rc(2, 0, 6)},
	{iePos(2, 1), iePos(2, 0), ie(2, 5), ie(2, 4), ie(2, 3), ie(2, 2), ie(2, 1), ie(2, 0)}, // row 8
	{rc(3, 0, 9), rc(3, 0, 8), rc(3, 0, 7), rc(3, 0, 6), rc(3, 0, 5), rc(3, 0, 4), iePos(2, 3), iePos(2, 2)},
	{iePos(3, 1), iePos(3, 0), ie(3, 5), ie(3, 4), ie(3, 3), ie(3, 2), ie(3, 1), ie(3, 0)},
	{rc(0, 1, 5), rc(0, 1, 4), rc(0, 1, 3), rc(0, 1, 2), rc(0, 1, 1), rc(0, 1, 0), iePos(3, 3), iePos(3, 2)},
	{rc(1, 1, 3), rc(1, 1, 2), rc(1, 1, 1), rc(1, 1, 0), rc(0, 1, 9), rc(0, 1, 8), rc(0, 1, 7), rc(0, 1, 6)}, // row 12
	{rc(2, 1, 1), rc(2, 1, 0), rc(1, 1, 9), rc(1, 1, 8), rc(1, 1, 7), rc(1, 1, 6), rc(1, 1, 5), rc(1, 1, 4)},
	{rc(2, 1, 9), rc(2, 1, 8), rc(2, 1, 7), rc(2, 1, 6), rc(2, 1, 5), rc(2, 1, 4), rc(2, 1, 3), rc(2, 1, 2)},
	{pad, rcID(3, 0), rcID(2, 1), rcID(2, 0), rcID(1, 1), rcID(1, 0), rcID(0, 1), rcID(0, 0)},
}

var legacyLink2 = [16][NumCols]Cell{
	{pad, pad, pad, pad, pad, pad, pad, pad}, // row 0
	{bc0e, bc0j, rc(4, 0, 5), rc(4, 0, 4), rc(4, 0, 3), rc(4, 0, 2), rc(4, 0, 1), rc(4, 0, 0)},
	{nePos(0, 1), nePos(0, 0), ne(0, 5), ne(0, 4), ne(0, 3), ne(0, 2), ne(0, 1), ne(0, 0)},
	{rc(5, 0, 1), rc(5, 0, 0), rc(4, 0, 9), rc(4, 0, 8), rc(4, 0, 7), rc(4, 0, 6), nePos(0, 3), nePos(0, 2)},
	{nePos(1, 1), nePos(1, 0), ne(1, 5), ne(1, 4), ne(1, 3), ne(1, 2), ne(1, 1), ne(1, 0)}, // row 4
	{rc(5, 0, 7), rc(5, 0, 6), rc(5, 0, 5), rc(5, 0, 4), rc(5, 0, 3), rc(5, 0, 2), nePos(1, 3), nePos(1, 2)},
	{rc(6, 0, 5), rc(6, 0, 4), rc(6, 0, 3), rc(6, 0, 2), rc(6, 0, 1), rc(6, 0, 0), rc(5, 0, 9), rc(5, 0, 8)},
	{rc(3, 1, 3), rc(3, 1, 2), rc(3, 1, 1), rc(3, 1, 0), rc(6, 0, 9), rc(6, 0, 8), rc(6, 0, 7), rc(6, 0, 6)},
	{nePos(2, 1), nePos(2, 0), ne(2, 5), ne(2, 4), ne(2, 3), ne(2, 2), ne(2, 1), ne(2, 0)}, // row 8
	{rc(3, 1, 9), rc(3, 1, 8), rc(3, 1, 7), rc(3, 1, 6), rc(3, 1, 5), rc(3, 1, 4), nePos(2, 3), nePos(2, 2)},
	{nePos(3, 1), nePos(3, 0), ne(3, 5), ne(3, 4), ne(3, 3), ne(3, 2), ne(3, 1), ne(3, 0)},
	{rc(4, 1, 5), rc(4, 1, 4), rc(4, 1, 3), rc(4, 1, 2), rc(4, 1, 1), rc(4, 1, 0), nePos(3, 3), nePos(3, 2)},
	{rc(5, 1, 3), rc(5, 1, 2), rc(5, 1, 1), rc(5, 1, 0), rc(4, 1, 9), rc(4, 1, 8), rc(4, 1, 7), rc(4, 1, 6)}, // row 12
	{rc(6, 1, 1), rc(6, 1, 0), rc(5, 1, 9), rc(5, 1, 8), rc(5, 1, 7), rc(5, 1, 6), rc(5, 1, 5), rc(5, 1, 4)},
	{rc(6, 1, 9), rc(6, 1, 8), rc(6, 1, 7), rc(6, 1, 6), rc(6, 1, 5), rc(6, 1, 4), rc(6, 1, 3), rc(6, 1, 2)},
	{pad, rcID(6, 1), rcID(6, 0), rcID(5, 1), rcID(5, 0), rcID(4, 1), rcID(4, 0), rcID(3, 1)},
}

// Extended layout: 24 rows per link, rows 0, 1 and 23 are reserved.
//
//  - rows  2-6:  4 candidates, 10 bits each (position, then rank)
//  - rows  7-10: 4 HF regions, 1 byte each
//  - rows 11-22: 7 barrel/endcap regions, 13 bits each
//                (Et, then overflow, tau veto and MIP veto)
//  - row  22:    the 4 HF fine grain bits in the 4 least significant bits

var extendedLink1 = [24][NumCols]Cell{
	{pad, pad, pad, pad, pad, pad, pad, pad}, // row 0
	{pad, pad, pad, pad, pad, pad, pad, pad},
	{iePos(0, 3), iePos(0, 2), iePos(0, 1), iePos(0, 0), ie(0, 5), ie(0, 4), ie(0, 3), ie(0, 2)},
	{ie(0, 1), ie(0, 0), iePos(1, 3), iePos(1, 2), iePos(1, 1), iePos(1, 0), ie(1, 5), ie(1, 4)},
	{ie(1, 3), ie(1, 2), ie(1, 1), ie(1, 0), iePos(2, 3), iePos(2, 2), iePos(2, 1), iePos(2, 0)}, // row 4
	{ie(2, 5), ie(2, 4), ie(2, 3), ie(2, 2), ie(2, 1), ie(2, 0), iePos(3, 3), iePos(3, 2)},
	{iePos(3, 1), iePos(3, 0), ie(3, 5), ie(3, 4), ie(3, 3), ie(3, 2), ie(3, 1), ie(3, 0)},
	{hf(0, 7), hf(0, 6), hf(0, 5), hf(0, 4), hf(0, 3), hf(0, 2), hf(0, 1), hf(0, 0)},
	{hf(1, 7), hf(1, 6), hf(1, 5), hf(1, 4), hf(1, 3), hf(1, 2), hf(1, 1), hf(1, 0)}, // row 8
	{hf(2, 7), hf(2, 6), hf(2, 5), hf(2, 4), hf(2, 3), hf(2, 2), hf(2, 1), hf(2, 0)},
	{hf(3, 7), hf(3, 6), hf(3, 5), hf(3, 4), hf(3, 3), hf(3, 2), hf(3, 1), hf(3, 0)},
	{rc(0, 0, 9), rc(0, 0, 8), rc(0, 0, 7), rc(0, 0, 6), rc(0, 0, 5), rc(0, 0, 4), rc(0, 0, 3), rc(0, 0, 2)},
	{rc(0, 0, 1), rc(0, 0, 0), rcOf(0, 0), rcTau(0, 0), rcHad(0, 0), rc(1, 0, 9), rc(1, 0, 8), rc(1, 0, 7)}, // row 12
	{rc(1, 0, 6), rc(1, 0, 5), rc(1, 0, 4), rc(1, 0, 3), rc(1, 0, 2), rc(1, 0, 1), rc(1, 0, 0), rcOf(1, 0)},
	{rcTau(1, 0), rcHad(1, 0), rc(2, 0, 9), rc(2, 0, 8), rc(2, 0, 7), rc(2, 0, 6), rc(2, 0, 5), rc(2, 0, 4)},
	{rc(2, 0, 3), rc(2, 0, 2), rc(2, 0, 1), rc(2, 0, 0), rcOf(2, 0), rcTau(2, 0), rcHad(2, 0), rc(3, 0, 9)},
	{rc(3, 0, 8), rc(3, 0, 7), rc(3, 0, 6), rc(3, 0, 5), rc(3, 0, 4), rc(3, 0, 3), rc(3, 0, 2), rc(3, 0, 1)}, // row 16
	{rc(3, 0, 0), rcOf(3, 0), rcTau(3, 0), rcHad(3, 0), rc(0, 1, 9), rc(0, 1, 8), rc(0, 1, 7), rc(0, 1, 6)},
	{rc(0, 1, 5), rc(0, 1, 4), rc(0, 1, 3), rc(0, 1, 2), rc(0, 1, 1), rc(0, 1, 0), rcOf(0, 1), rcTau(0, 1)},
	{rcHad(0, 1), rc(1, 1, 9), rc(1, 1, 8), rc(1, 1, 7), rc(1, 1, 6), rc(1, 1, 5), rc(1, 1, 4), rc(1, 1, 3)},
	{rc(1, 1, 2), rc(1, 1, 1), rc(1, 1, 0), rcOf(1, 1), rcTau(1, 1), rcHad(1, 1), rc(2, 1, 9), rc(2, 1, 8)}, // row 20
	{rc(2, 1, 7), rc(2, 1, 6), rc(2, 1, 5), rc(2, 1, 4), rc(2, 1, 3), rc(2, 1, 2), rc(2, 1, 1), rc(2, 1, 0)},
	{rcOf(2, 1), rcTau(2, 1), rcHad(2, 1), pad, hfFg(3), hfFg(2), hfFg(1), hfFg(0)},
	{pad, pad, pad, pad, pad, pad, pad, pad},
}

var extendedLink2 = [24][NumCols]Cell{
	{pad, pad, pad, pad, pad, pad, pad, pad}, // row 0
	{pad, pad, pad, pad, pad, pad, pad, pad},
	{nePos(0, 3), nePos(0, 2), nePos(0, 1), nePos(0, 0), ne(0, 5), ne(0, 4), ne(0, 3), ne(0, 2)},
	{ne(0, 1), ne(0, 0), nePos(1, 3), nePos(1, 2), nePos(1, 1), nePos(1, 0), ne(1, 5), ne(1, 4)},
	{ne(1, 3), ne(1, 2), ne(1, 1), ne(1, 0), nePos(2, 3), nePos(2, 2), nePos(2, 1), nePos(2, 0)}, // row 4
	{ne(2, 5), ne(2, 4), ne(2, 3), ne(2, 2), ne(2, 1), ne(2, 0), nePos(3, 3), nePos(3, 2)},
	{nePos(3, 1), nePos(3, 0), ne(3, 5), ne(3, 4), ne(3, 3), ne(3, 2), ne(3, 1), ne(3, 0)},
	{hf(4, 7), hf(4, 6), hf(4, 5), hf(4, 4), hf(4, 3), hf(4, 2), hf(4, 1), hf(4, 0)},
	{hf(5, 7), hf(5, 6), hf(5, 5), hf(5, 4), hf(5, 3), hf(5, 2), hf(5, 1), hf(5, 0)}, // row 8
	{hf(6, 7), hf(6, 6), hf(6, 5), hf(6, 4), hf(6, 3), hf(6, 2), hf(6, 1), hf(6, 0)},
	{hf(7, 7), hf(7, 6), hf(7, 5), hf(7, 4), hf(7, 3), hf(7, 2), hf(7, 1), hf(7, 0)},
	{rc(4, 0, 9), rc(4, 0, 8), rc(4, 0, 7), rc(4, 0, 6), rc(4, 0, 5), rc(4, 0, 4), rc(4, 0, 3), rc(4, 0, 2)},
	{rc(4, 0, 1), rc(4, 0, 0), rcOf(4, 0), rcTau(4, 0), rcHad(4, 0), rc(5, 0, 9), rc(5, 0, 8), rc(5, 0, 7)}, // row 12
	{rc(5, 0, 6), rc(5, 0, 5), rc(5, 0, 4), rc(5, 0, 3), rc(5, 0, 2), rc(5, 0, 1), rc(5, 0, 0), rcOf(5, 0)},
	{rcTau(5, 0), rcHad(5, 0), rc(6, 0, 9), rc(6, 0, 8), rc(6, 0, 7), rc(6, 0, 6), rc(6, 0, 5), rc(6, 0, 4)},
	{rc(6, 0, 3), rc(6, 0, 2), rc(6, 0, 1), rc(6, 0, 0), rcOf(6, 0), rcTau(6, 0), rcHad(6, 0), rc(3, 1, 9)},
	{rc(3, 1, 8), rc(3, 1, 7), rc(3, 1, 6), rc(3, 1, 5), rc(3, 1, 4), rc(3, 1, 3), rc(3, 1, 2), rc(3, 1, 1)}, // row 16
	{rc(3, 1, 0), rcOf(3, 1), rcTau(3, 1), rcHad(3, 1), rc(4, 1, 9), rc(4, 1, 8), rc(4, 1, 7), rc(4, 1, 6)},
	{rc(4, 1, 5), rc(4, 1, 4), rc(4, 1, 3), rc(4, 1, 2), rc(4, 1, 1), rc(4, 1, 0), rcOf(4, 1), rcTau(4, 1)},
	{rcHad(4, 1), rc(5, 1, 9), rc(5, 1, 8), rc(5, 1, 7), rc(5, 1, 6), rc(5, 1, 5), rc(5, 1, 4), rc(5, 1, 3)},
	{rc(5, 1, 2), rc(5, 1, 1), rc(5, 1, 0), rcOf(5, 1), rcTau(5, 1), rcHad(5, 1), rc(6, 1, 9), rc(6, 1, 8)}, // row 20
	{rc(6, 1, 7), rc(6, 1, 6), rc(6, 1, 5), rc(6, 1, 4), rc(6, 1, 3), rc(6, 1, 2), rc(6, 1, 1), rc(6, 1, 0)},
	{rcOf(6, 1), rcTau(6, 1), rcHad(6, 1), pad, hfFg(7), hfFg(6), hfFg(5), hfFg(4)},
	{pad, pad, pad, pad, pad, pad, pad, pad},
}
