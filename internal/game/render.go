package game

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/vancomm/minesweeper-agent/internal/knowledge"
)

type CellState int8

const (
	Unknown      CellState = -2
	Flagged      CellState = -1
	KnownSafe    CellState = -3 // proven safe, not probed yet
	ExplodedMine CellState = 65
	WrongFlag    CellState = 66
	// 0-8 for a probed cell with given number of mined neighbours
)

func (s CellState) String() string {
	switch s {
	case Unknown:
		return " "
	case Flagged:
		return "*"
	case KnownSafe:
		return "."
	case ExplodedMine:
		return "X"
	case WrongFlag:
		return "!"
	case 0, 1, 2, 3, 4, 5, 6, 7, 8:
		return strconv.Itoa(int(s))
	default:
		return "?"
	}
}

// Grid is the player's view of the board, row-major.
type Grid []CellState

func (g Grid) ToString(width int) string {
	var b strings.Builder
	for y := range len(g) / width {
		for x := range width {
			fmt.Fprint(&b, g[y*width+x].String()+" ")
		}
		fmt.Fprint(&b, "\n")
	}
	return b.String()
}

// PlayerGrid combines what the board revealed with what the agent deduced.
func (g *Game) PlayerGrid() Grid {
	w, h := g.board.Width, g.board.Height
	grid := make(Grid, w*h)
	for i := range grid {
		grid[i] = Unknown
	}
	for _, c := range g.agent.Safes() {
		grid[c.Row*w+c.Col] = KnownSafe
	}
	for _, c := range g.agent.Mines() {
		if g.board.IsMine(c) {
			grid[c.Row*w+c.Col] = Flagged
		} else {
			grid[c.Row*w+c.Col] = WrongFlag
		}
	}
	for _, t := range g.turns {
		i := t.Move.Cell.Row*w + t.Move.Cell.Col
		if t.Mine {
			grid[i] = ExplodedMine
		} else {
			grid[i] = CellState(t.Count)
		}
	}
	return grid
}

func (g *Game) Render() string {
	return g.PlayerGrid().ToString(g.board.Width)
}

// Cell returns the state of a single cell in the player's view.
func (g Grid) Cell(width int, c knowledge.Cell) CellState {
	return g[c.Row*width+c.Col]
}
