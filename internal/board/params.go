package board

import (
	"errors"
	"fmt"
	"strings"

	"github.com/vancomm/minesweeper-agent/internal/knowledge"
)

var ErrInvalidParams = errors.New("invalid board params")

// MaxWidth and MaxHeight keep generated boards and agent state bounded.
const (
	MaxWidth  = 64
	MaxHeight = 64
)

type Params struct {
	Width, Height, MineCount int
}

func (p Params) Unpack() (w int, h int, mc int) {
	return p.Width, p.Height, p.MineCount
}

func (p Params) Cells() int {
	return p.Width * p.Height
}

// MaxMines is the most mines a board can hold while keeping the 3x3 block
// around the starting cell free, for any starting cell.
func (p Params) MaxMines() int {
	free := min(p.Width, 3) * min(p.Height, 3)
	return max(p.Cells()-free, 0)
}

func (p Params) Validate() error {
	if p.Width <= 0 || p.Height <= 0 || p.Width > MaxWidth || p.Height > MaxHeight {
		return fmt.Errorf("%w: dimensions %dx%d", ErrInvalidParams, p.Width, p.Height)
	}
	if p.MineCount < 0 || p.MineCount > p.MaxMines() {
		return fmt.Errorf("%w: %d mines on %dx%d (at most %d)",
			ErrInvalidParams, p.MineCount, p.Width, p.Height, p.MaxMines())
	}
	return nil
}

func (p Params) ValidateCell(c knowledge.Cell) bool {
	return c.In(p.Width, p.Height)
}

// String renders p as WIDTHxHEIGHT:MINES, the format ParseParams accepts.
func (p Params) String() string {
	return fmt.Sprintf("%dx%d:%d", p.Width, p.Height, p.MineCount)
}

func ParseParams(s string) (Params, error) {
	var p Params
	ss := strings.NewReplacer("x", " ", ":", " ").Replace(s)
	n, err := fmt.Sscanf(ss, "%d %d %d", &p.Width, &p.Height, &p.MineCount)
	if n != 3 || err != nil {
		return Params{}, fmt.Errorf(
			`%w: "%s" (n = %d, err = %v)`, ErrInvalidParams, s, n, err,
		)
	}
	return p, p.Validate()
}

var (
	Beginner     = Params{Width: 9, Height: 9, MineCount: 10}
	Intermediate = Params{Width: 16, Height: 16, MineCount: 40}
	Expert       = Params{Width: 30, Height: 16, MineCount: 99}
)
