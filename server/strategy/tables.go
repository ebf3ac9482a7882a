package strategy

// Cell codes for the basic strategy tables.
type cell byte

const (
	cH  cell = iota // hit
	cS              // stand
	cDH             // double, else hit
	cDS             // double, else stand
)

// The tables below are the published multi-deck basic strategy for a dealer
// who stands on soft 17, with double after split allowed. Columns are the
// dealer upcard 2,3,4,5,6,7,8,9,10,A. They are data, not derivation; do not
// "simplify" individual cells.

// hardTable rows are player hard totals 5 through 20.
var hardTable = [16][10]cell{
	//               2    3    4    5    6    7    8    9    10   A
	/* 5  */ {cH, cH, cH, cH, cH, cH, cH, cH, cH, cH},
	/* 6  */ {cH, cH, cH, cH, cH, cH, cH, cH, cH, cH},
	/* 7  */ {cH, cH, cH, cH, cH, cH, cH, cH, cH, cH},
	/* 8  */ {cH, cH, cH, cH, cH, cH, cH, cH, cH, cH},
	/* 9  */ {cH, cDH, cDH, cDH, cDH, cH, cH, cH, cH, cH},
	/* 10 */ {cDH, cDH, cDH, cDH, cDH, cDH, cDH, cDH, cH, cH},
	/* 11 */ {cDH, cDH, cDH, cDH, cDH, cDH, cDH, cDH, cDH, cH},
	/* 12 */ {cH, cH, cS, cS, cS, cH, cH, cH, cH, cH},
	/* 13 */ {cS, cS, cS, cS, cS, cH, cH, cH, cH, cH},
	/* 14 */ {cS, cS, cS, cS, cS, cH, cH, cH, cH, cH},
	/* 15 */ {cS, cS, cS, cS, cS, cH, cH, cH, cH, cH},
	/* 16 */ {cS, cS, cS, cS, cS, cH, cH, cH, cH, cH},
	/* 17 */ {cS, cS, cS, cS, cS, cS, cS, cS, cS, cS},
	/* 18 */ {cS, cS, cS, cS, cS, cS, cS, cS, cS, cS},
	/* 19 */ {cS, cS, cS, cS, cS, cS, cS, cS, cS, cS},
	/* 20 */ {cS, cS, cS, cS, cS, cS, cS, cS, cS, cS},
}

// softTable rows are player soft totals 13 (A,2) through 20 (A,9).
var softTable = [8][10]cell{
	//               2    3    4    5    6    7    8    9    10   A
	/* 13 */ {cH, cH, cH, cDH, cDH, cH, cH, cH, cH, cH},
	/* 14 */ {cH, cH, cH, cDH, cDH, cH, cH, cH, cH, cH},
	/* 15 */ {cH, cH, cDH, cDH, cDH, cH, cH, cH, cH, cH},
	/* 16 */ {cH, cH, cDH, cDH, cDH, cH, cH, cH, cH, cH},
	/* 17 */ {cH, cDH, cDH, cDH, cDH, cH, cH, cH, cH, cH},
	/* 18 */ {cS, cDS, cDS, cDS, cDS, cS, cS, cH, cH, cH},
	/* 19 */ {cS, cS, cS, cS, cS, cS, cS, cS, cS, cS},
	/* 20 */ {cS, cS, cS, cS, cS, cS, cS, cS, cS, cS},
}

// pairTable rows are the paired card value 2..10 then A; true means split.
// Non-split cells fall through to the hard/soft total lookup, which lands on
// the same action the published chart prints for that pair.
var pairTable = [10][10]bool{
	//                  2      3      4      5      6      7      8      9      10     A
	/* 2,2   */ {true, true, true, true, true, true, false, false, false, false},
	/* 3,3   */ {true, true, true, true, true, true, false, false, false, false},
	/* 4,4   */ {false, false, false, true, true, false, false, false, false, false},
	/* 5,5   */ {false, false, false, false, false, false, false, false, false, false},
	/* 6,6   */ {true, true, true, true, true, false, false, false, false, false},
	/* 7,7   */ {true, true, true, true, true, true, false, false, false, false},
	/* 8,8   */ {true, true, true, true, true, true, true, true, true, true},
	/* 9,9   */ {true, true, true, true, true, false, true, true, false, false},
	/* 10,10 */ {false, false, false, false, false, false, false, false, false, false},
	/* A,A   */ {true, true, true, true, true, true, true, true, true, true},
}
