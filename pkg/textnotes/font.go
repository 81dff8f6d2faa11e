package textnotes

// point is a glyph cell: X grows to the right, Y grows downward from the top
// row (0) to the baseline (6). Descenders use row 7.
type point struct{ X, Y int }

// font is a 5x7 bitmap font for A-Z, 0-9 and a few punctuation marks
var font = map[rune][]point{
	'A': {{0, 1}, {0, 2}, {0, 3}, {0, 4}, {0, 5}, {1, 0}, {0, 6}, {2, 0}, {3, 6}, {3, 1}, {3, 2}, {3, 3}, {3, 4}, {3, 5}, {1, 3}, {2, 3}},
	'B': {{0, 0}, {0, 1}, {0, 2}, {0, 3}, {0, 4}, {0, 5}, {0, 6}, {1, 0}, {1, 3}, {1, 6}, {2, 0}, {2, 3}, {2, 6}, {3, 1}, {3, 2}, {3, 4}, {3, 5}},
	'C': {{0, 1}, {0, 2}, {0, 3}, {0, 4}, {0, 5}, {1, 0}, {1, 6}, {2, 0}, {2, 6}, {3, 0}, {3, 6}},
	'D': {{0, 0}, {0, 1}, {0, 2}, {0, 3}, {0, 4}, {0, 5}, {0, 6}, {1, 0}, {1, 6}, {2, 0}, {2, 6}, {3, 1}, {3, 2}, {3, 3}, {3, 4}, {3, 5}},
	'E': {{0, 0}, {0, 1}, {0, 2}, {0, 3}, {0, 4}, {0, 5}, {0, 6}, {1, 0}, {1, 3}, {1, 6}, {2, 0}, {2, 3}, {2, 6}, {3, 0}, {3, 6}},
	'F': {{0, 0}, {0, 1}, {0, 2}, {0, 3}, {0, 4}, {0, 5}, {0, 6}, {1, 0}, {1, 3}, {2, 0}, {2, 3}, {3, 0}},
	'G': {{0, 1}, {0, 2}, {0, 3}, {0, 4}, {0, 5}, {1, 0}, {1, 6}, {2, 0}, {2, 6}, {3, 0}, {3, 3}, {3, 4}, {3, 5}, {3, 6}, {2, 3}},
	'H': {{0, 0}, {0, 1}, {0, 2}, {0, 3}, {0, 4}, {0, 5}, {0, 6}, {1, 3}, {2, 3}, {3, 0}, {3, 1}, {3, 2}, {3, 3}, {3, 4}, {3, 5}, {3, 6}},
	'I': {{0, 0}, {0, 6}, {1, 0}, {1, 1}, {1, 2}, {1, 3}, {1, 4}, {1, 5}, {1, 6}, {2, 0}, {2, 6}},
	'J': {{0, 5}, {1, 6}, {2, 0}, {2, 6}, {3, 0}, {3, 1}, {3, 2}, {3, 3}, {3, 4}, {3, 5}},
	'K': {{0, 0}, {0, 1}, {0, 2}, {0, 3}, {0, 4}, {0, 5}, {0, 6}, {1, 3}, {2, 2}, {2, 4}, {3, 0}, {3, 1}, {3, 5}, {3, 6}},
	'L': {{0, 0}, {0, 1}, {0, 2}, {0, 3}, {0, 4}, {0, 5}, {0, 6}, {1, 6}, {2, 6}, {3, 6}},
	'M': {{0, 0}, {0, 1}, {0, 2}, {0, 3}, {0, 4}, {0, 5}, {0, 6}, {1, 1}, {2, 2}, {1, 3}, {3, 0}, {3, 1}, {3, 2}, {3, 3}, {3, 4}, {3, 5}, {3, 6}},
	'N': {{0, 0}, {0, 1}, {0, 2}, {0, 3}, {0, 4}, {0, 5}, {0, 6}, {1, 1}, {2, 2}, {3, 3}, {4, 0}, {4, 1}, {4, 2}, {4, 3}, {4, 4}, {4, 5}, {4, 6}},
	'O': {{0, 1}, {0, 2}, {0, 3}, {0, 4}, {0, 5}, {1, 0}, {1, 6}, {2, 0}, {2, 6}, {3, 1}, {3, 2}, {3, 3}, {3, 4}, {3, 5}},
	'P': {{0, 0}, {0, 1}, {0, 2}, {0, 3}, {0, 4}, {0, 5}, {0, 6}, {1, 0}, {1, 3}, {2, 0}, {2, 3}, {3, 1}, {3, 2}},
	'Q': {{0, 1}, {0, 2}, {0, 3}, {0, 4}, {1, 0}, {1, 5}, {2, 0}, {2, 5}, {2, 4}, {3, 1}, {3, 2}, {3, 3}, {3, 5}, {3, 6}},
	'R': {{0, 0}, {0, 1}, {0, 2}, {0, 3}, {0, 4}, {0, 5}, {0, 6}, {1, 0}, {1, 3}, {2, 0}, {2, 3}, {3, 1}, {3, 2}, {3, 4}, {3, 5}, {3, 6}},
	'S': {{0, 1}, {0, 2}, {0, 6}, {1, 0}, {1, 3}, {1, 6}, {2, 0}, {2, 3}, {2, 6}, {3, 0}, {3, 4}, {3, 5}},
	'T': {{0, 0}, {1, 0}, {2, 0}, {3, 0}, {4, 0}, {2, 1}, {2, 2}, {2, 3}, {2, 4}, {2, 5}, {2, 6}},
	'U': {{0, 0}, {0, 1}, {0, 2}, {0, 3}, {0, 4}, {0, 5}, {1, 6}, {2, 6}, {3, 0}, {3, 1}, {3, 2}, {3, 3}, {3, 4}, {3, 5}},
	'V': {{0, 0}, {0, 1}, {0, 2}, {0, 3}, {0, 4}, {1, 5}, {2, 5}, {3, 0}, {3, 1}, {3, 2}, {3, 3}, {3, 4}},
	'W': {{0, 0}, {0, 1}, {0, 2}, {0, 3}, {0, 4}, {0, 5}, {1, 6}, {2, 5}, {1, 4}, {3, 6}, {4, 0}, {4, 1}, {4, 2}, {4, 3}, {4, 4}, {4, 5}},
	'X': {{0, 0}, {0, 1}, {0, 5}, {0, 6}, {1, 2}, {1, 4}, {2, 3}, {3, 2}, {3, 4}, {4, 0}, {4, 1}, {4, 5}, {4, 6}},
	'Y': {{0, 0}, {0, 1}, {1, 2}, {2, 3}, {2, 4}, {2, 5}, {2, 6}, {3, 2}, {4, 0}, {4, 1}},
	'Z': {{0, 0}, {0, 6}, {1, 0}, {1, 5}, {1, 6}, {2, 0}, {2, 4}, {2, 6}, {3, 0}, {3, 3}, {3, 6}, {4, 0}, {4, 1}, {4, 2}, {4, 6}},
	' ': {},
	'0': {{0, 1}, {0, 2}, {0, 3}, {0, 4}, {0, 5}, {1, 0}, {1, 6}, {2, 0}, {2, 6}, {3, 1}, {3, 2}, {3, 3}, {3, 4}, {3, 5}},
	'1': {{1, 1}, {2, 0}, {2, 1}, {2, 2}, {2, 3}, {2, 4}, {2, 5}, {2, 6}, {1, 6}, {3, 6}},
	'2': {{0, 1}, {0, 6}, {1, 0}, {1, 6}, {2, 0}, {2, 5}, {2, 6}, {3, 0}, {3, 4}, {3, 3}, {3, 2}, {3, 1}},
	'3': {{0, 0}, {0, 6}, {1, 0}, {1, 6}, {2, 0}, {2, 3}, {2, 6}, {3, 1}, {3, 2}, {3, 4}, {3, 5}},
	'4': {{0, 0}, {0, 1}, {0, 2}, {0, 3}, {1, 3}, {2, 3}, {3, 0}, {3, 1}, {3, 2}, {3, 3}, {3, 4}, {3, 5}, {3, 6}},
	'5': {{0, 0}, {0, 1}, {0, 2}, {0, 3}, {0, 6}, {1, 0}, {1, 3}, {1, 6}, {2, 0}, {2, 3}, {2, 6}, {3, 0}, {3, 4}, {3, 5}},
	'6': {{0, 1}, {0, 2}, {0, 3}, {0, 4}, {0, 5}, {1, 0}, {1, 3}, {1, 6}, {2, 0}, {2, 3}, {2, 6}, {3, 0}, {3, 4}, {3, 5}},
	'7': {{0, 0}, {1, 0}, {2, 0}, {3, 0}, {3, 1}, {3, 2}, {2, 3}, {2, 4}, {1, 5}, {1, 6}},
	'8': {{0, 1}, {0, 2}, {0, 4}, {0, 5}, {1, 0}, {1, 3}, {1, 6}, {2, 0}, {2, 3}, {2, 6}, {3, 1}, {3, 2}, {3, 4}, {3, 5}},
	'9': {{0, 1}, {0, 2}, {1, 0}, {1, 3}, {2, 0}, {2, 3}, {3, 0}, {3, 1}, {3, 2}, {3, 3}, {3, 4}, {3, 5}},
	'.': {{1, 5}, {1, 6}, {2, 5}, {2, 6}},
	',': {{1, 5}, {1, 6}, {1, 7}, {2, 6}, {2, 7}},
	'!': {{1, 0}, {1, 1}, {1, 2}, {1, 3}, {1, 4}, {1, 6}},
	'?': {{0, 1}, {1, 0}, {2, 0}, {3, 0}, {3, 1}, {3, 2}, {2, 3}, {2, 4}, {2, 6}},
	'-': {{1, 3}, {2, 3}, {3, 3}},
	'+': {{1, 3}, {2, 1}, {2, 2}, {2, 3}, {2, 4}, {2, 5}, {3, 3}},
	'=': {{1, 2}, {2, 2}, {3, 2}, {1, 4}, {2, 4}, {3, 4}},
	':': {{1, 2}, {1, 3}, {1, 5}, {1, 6}},
	';': {{1, 2}, {1, 3}, {1, 5}, {1, 6}, {1, 7}},
}
