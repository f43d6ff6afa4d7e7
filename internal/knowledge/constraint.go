package knowledge

import (
	"slices"
	"strconv"
	"strings"
)

/*
A Constraint states that exactly Count of its cells are mines. Cells are kept
sorted row-major and free of duplicates, so two constraints over the same set
of cells always share a Key.
*/
type Constraint struct {
	cells []Cell
	count int
}

func NewConstraint(cells []Cell, count int) *Constraint {
	sorted := slices.Clone(cells)
	slices.SortFunc(sorted, CompareCells)
	return &Constraint{
		cells: slices.Compact(sorted),
		count: count,
	}
}

func (c *Constraint) Cells() []Cell {
	return slices.Clone(c.cells)
}

func (c *Constraint) Count() int {
	return c.count
}

func (c *Constraint) Len() int {
	return len(c.cells)
}

func (c *Constraint) Contains(cell Cell) bool {
	_, found := slices.BinarySearchFunc(c.cells, cell, CompareCells)
	return found
}

// KnownMines returns every cell when all of them must be mines.
func (c *Constraint) KnownMines() []Cell {
	if len(c.cells) > 0 && c.count == len(c.cells) {
		return c.Cells()
	}
	return nil
}

// KnownSafes returns every cell when none of them can be a mine.
func (c *Constraint) KnownSafes() []Cell {
	if len(c.cells) > 0 && c.count == 0 {
		return c.Cells()
	}
	return nil
}

// MarkMine drops cell from the constraint and lowers the count. It reports
// whether cell was a member.
func (c *Constraint) MarkMine(cell Cell) bool {
	if !c.remove(cell) {
		return false
	}
	c.count--
	return true
}

// MarkSafe drops cell from the constraint, leaving the count as is.
func (c *Constraint) MarkSafe(cell Cell) bool {
	return c.remove(cell)
}

func (c *Constraint) remove(cell Cell) bool {
	i, found := slices.BinarySearchFunc(c.cells, cell, CompareCells)
	if !found {
		return false
	}
	c.cells = slices.Delete(c.cells, i, i+1)
	return true
}

// IsProperSubsetOf reports whether every cell of c is in o and o has at
// least one more. An empty constraint is never a proper subset.
func (c *Constraint) IsProperSubsetOf(o *Constraint) bool {
	if len(c.cells) == 0 || len(c.cells) >= len(o.cells) {
		return false
	}
	j := 0
	for _, cell := range c.cells {
		for j < len(o.cells) && CompareCells(o.cells[j], cell) < 0 {
			j++
		}
		if j == len(o.cells) || o.cells[j] != cell {
			return false
		}
		j++
	}
	return true
}

// Minus returns the cells of c that are not in o, in canonical order.
func (c *Constraint) Minus(o *Constraint) []Cell {
	ret := make([]Cell, 0, len(c.cells))
	j := 0
	for _, cell := range c.cells {
		for j < len(o.cells) && CompareCells(o.cells[j], cell) < 0 {
			j++
		}
		if j < len(o.cells) && o.cells[j] == cell {
			continue
		}
		ret = append(ret, cell)
	}
	return ret
}

// Overlaps reports whether c and o share a cell.
func (c *Constraint) Overlaps(o *Constraint) bool {
	i, j := 0, 0
	for i < len(c.cells) && j < len(o.cells) {
		switch CompareCells(c.cells[i], o.cells[j]) {
		case -1:
			i++
		case 1:
			j++
		default:
			return true
		}
	}
	return false
}

// Key identifies the cell set of c; the count is not part of it.
func (c *Constraint) Key() string {
	buf := make([]byte, 0, len(c.cells)*6)
	for _, cell := range c.cells {
		buf = strconv.AppendInt(buf, int64(cell.Row), 10)
		buf = append(buf, '.')
		buf = strconv.AppendInt(buf, int64(cell.Col), 10)
		buf = append(buf, ';')
	}
	return string(buf)
}

// Valid reports whether 0 <= count <= |cells|.
func (c *Constraint) Valid() bool {
	return 0 <= c.count && c.count <= len(c.cells)
}

func (c *Constraint) clone() *Constraint {
	return &Constraint{cells: slices.Clone(c.cells), count: c.count}
}

// Constraint implements [fmt.Stringer]
func (c *Constraint) String() string {
	parts := make([]string, len(c.cells))
	for i, cell := range c.cells {
		parts[i] = cell.String()
	}
	return "{" + strings.Join(parts, ", ") + "} = " + strconv.Itoa(c.count)
}
