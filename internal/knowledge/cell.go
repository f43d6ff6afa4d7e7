package knowledge

import (
	"fmt"
	"slices"
)

// Cell is a board coordinate.
type Cell struct {
	Row int `json:"row"`
	Col int `json:"col"`
}

func (c Cell) String() string {
	return fmt.Sprintf("(%d,%d)", c.Row, c.Col)
}

// In reports whether c lies on a width x height board.
func (c Cell) In(width, height int) bool {
	return 0 <= c.Row && c.Row < height && 0 <= c.Col && c.Col < width
}

// Neighbors returns the up to 8 cells adjacent to c, clipped to the board,
// in row-major order.
func (c Cell) Neighbors(width, height int) []Cell {
	ret := make([]Cell, 0, 8)
	for dr := -1; dr <= +1; dr++ {
		for dc := -1; dc <= +1; dc++ {
			if dr == 0 && dc == 0 {
				continue
			}
			n := Cell{c.Row + dr, c.Col + dc}
			if n.In(width, height) {
				ret = append(ret, n)
			}
		}
	}
	return ret
}

// CompareCells orders cells row-major.
func CompareCells(a, b Cell) int {
	if a.Row < b.Row {
		return -1
	}
	if a.Row > b.Row {
		return 1
	}
	if a.Col < b.Col {
		return -1
	}
	if a.Col > b.Col {
		return 1
	}
	return 0
}

type cellset map[Cell]struct{}

func (s cellset) has(c Cell) bool {
	_, ok := s[c]
	return ok
}

func (s cellset) sorted() []Cell {
	ret := make([]Cell, 0, len(s))
	for c := range s {
		ret = append(ret, c)
	}
	slices.SortFunc(ret, CompareCells)
	return ret
}

func (s cellset) clone() cellset {
	ret := make(cellset, len(s))
	for c := range s {
		ret[c] = struct{}{}
	}
	return ret
}
