package board

import (
	"bytes"
	"encoding/gob"
	"fmt"
	"math/rand/v2"
	"strings"

	"github.com/vancomm/minesweeper-agent/internal/knowledge"
)

// Board is the ground truth of one game: where the mines are.
type Board struct {
	Params
	Start knowledge.Cell
	Grid  []bool /* real mine points */
}

func absDiff(x, y int) int {
	if x < y {
		return y - x
	}
	return x - y
}

/*
New places p.MineCount mines uniformly at random, none of which is at start or
within one square of it, so the first probe always reads zero.
*/
func New(p Params, start knowledge.Cell, r *rand.Rand) (*Board, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	if !p.ValidateCell(start) {
		return nil, fmt.Errorf("%w: start %v outside %v", ErrInvalidParams, start, p)
	}
	width, height, mineCount := p.Unpack()
	grid := make([]bool, width*height)

	/*
	 * Write down the list of possible mine locations.
	 */
	candidates := make([]int, 0, width*height)
	for y := range height {
		for x := range width {
			if absDiff(start.Row, y) > 1 || absDiff(start.Col, x) > 1 {
				candidates = append(candidates, y*width+x)
			}
		}
	}

	/*
	 * Now pick n off the list at random.
	 */
	k := len(candidates)
	for range mineCount {
		i := r.IntN(k)
		grid[candidates[i]] = true
		k--
		candidates[i] = candidates[k]
	}

	return &Board{Params: p, Start: start, Grid: grid}, nil
}

// FromMines builds a board with mines exactly at the given cells.
func FromMines(width, height int, mines []knowledge.Cell) (*Board, error) {
	b := &Board{
		Params: Params{Width: width, Height: height},
		Start:  knowledge.Cell{Row: -1, Col: -1},
		Grid:   make([]bool, width*height),
	}
	for _, m := range mines {
		if !b.ValidateCell(m) {
			return nil, fmt.Errorf("%w: mine %v outside %dx%d", ErrInvalidParams, m, width, height)
		}
		if !b.Grid[b.index(m)] {
			b.Grid[b.index(m)] = true
			b.MineCount++
		}
	}
	return b, nil
}

func Decode(buf []byte) (*Board, error) {
	var b Board
	if err := gob.NewDecoder(bytes.NewBuffer(buf)).Decode(&b); err != nil {
		return nil, err
	}
	return &b, nil
}

func (b Board) Bytes() ([]byte, error) {
	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(b); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (b *Board) index(c knowledge.Cell) int {
	return c.Row*b.Width + c.Col
}

func (b *Board) Contains(c knowledge.Cell) bool {
	return b.ValidateCell(c)
}

func (b *Board) IsMine(c knowledge.Cell) bool {
	return b.Contains(c) && b.Grid[b.index(c)]
}

// NeighborMineCount returns the number of mines adjacent to c.
func (b *Board) NeighborMineCount(c knowledge.Cell) int {
	n := 0
	for _, nb := range c.Neighbors(b.Width, b.Height) {
		if b.Grid[b.index(nb)] {
			n++
		}
	}
	return n
}

func (b *Board) Mines() []knowledge.Cell {
	ret := make([]knowledge.Cell, 0, b.MineCount)
	for i, mine := range b.Grid {
		if mine {
			ret = append(ret, knowledge.Cell{Row: i / b.Width, Col: i % b.Width})
		}
	}
	return ret
}

// Board implements [fmt.Stringer]
func (b *Board) String() string {
	var s strings.Builder
	for y := range b.Height {
		for x := range b.Width {
			var ch string
			if x == b.Start.Col && y == b.Start.Row {
				ch = "S "
			} else if b.Grid[y*b.Width+x] {
				ch = "* "
			} else {
				ch = "- "
			}
			fmt.Fprint(&s, ch)
		}
		fmt.Fprint(&s, "\n")
	}
	return s.String()
}
