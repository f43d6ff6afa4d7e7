package knowledge

import (
	"os"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
)

func TestMain(m *testing.M) {
	// Log.SetLevel(logrus.TraceLevel)
	Log.SetFormatter(&logrus.TextFormatter{
		DisableTimestamp: true,
	})
	os.Exit(m.Run())
}

var (
	a = Cell{0, 0}
	b = Cell{0, 1}
	c = Cell{0, 2}
	d = Cell{1, 0}
)

func TestNewConstraintIsCanonical(t *testing.T) {
	x := NewConstraint([]Cell{c, a, b, a}, 1)
	y := NewConstraint([]Cell{b, c, a}, 2)

	assert.Equal(t, []Cell{a, b, c}, x.Cells())
	assert.Equal(t, x.Key(), y.Key())
	assert.Equal(t, "{(0,0), (0,1), (0,2)} = 1", x.String())
}

func TestKnownCells(t *testing.T) {
	tests := []struct {
		name  string
		count int
		mines []Cell
		safes []Cell
	}{
		{name: "all mines", count: 3, mines: []Cell{a, b, c}},
		{name: "all safe", count: 0, safes: []Cell{a, b, c}},
		{name: "undecided", count: 1},
		{name: "undecided 2", count: 2},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			s := NewConstraint([]Cell{a, b, c}, test.count)
			assert.Equal(t, test.mines, s.KnownMines())
			assert.Equal(t, test.safes, s.KnownSafes())
		})
	}
}

func TestKnownCellsDoNotAlias(t *testing.T) {
	s := NewConstraint([]Cell{a, b}, 0)
	safes := s.KnownSafes()
	safes[0] = d
	assert.Equal(t, []Cell{a, b}, s.Cells())
}

func TestMarkMine(t *testing.T) {
	s := NewConstraint([]Cell{a, b, c}, 2)

	assert.True(t, s.MarkMine(b))
	assert.Equal(t, []Cell{a, c}, s.Cells())
	assert.Equal(t, 1, s.Count())

	assert.False(t, s.MarkMine(b))
	assert.Equal(t, []Cell{a, c}, s.Cells())
	assert.Equal(t, 1, s.Count())

	assert.False(t, s.MarkMine(d))
	assert.Equal(t, 1, s.Count())
	assert.True(t, s.Valid())
}

func TestMarkSafe(t *testing.T) {
	s := NewConstraint([]Cell{a, b, c}, 2)

	assert.True(t, s.MarkSafe(a))
	assert.False(t, s.MarkSafe(a))
	assert.Equal(t, []Cell{b, c}, s.Cells())
	assert.Equal(t, 2, s.Count())
	assert.Equal(t, []Cell{b, c}, s.KnownMines())
}

func TestValid(t *testing.T) {
	assert.True(t, NewConstraint(nil, 0).Valid())
	assert.False(t, NewConstraint(nil, 1).Valid())
	assert.False(t, NewConstraint([]Cell{a}, -1).Valid())
	assert.False(t, NewConstraint([]Cell{a, b}, 3).Valid())
}

func TestSubsetAndMinus(t *testing.T) {
	abc := NewConstraint([]Cell{a, b, c}, 2)
	bc := NewConstraint([]Cell{c, b}, 1)
	bd := NewConstraint([]Cell{b, d}, 1)
	empty := NewConstraint(nil, 0)

	assert.True(t, bc.IsProperSubsetOf(abc))
	assert.False(t, abc.IsProperSubsetOf(bc))
	assert.False(t, abc.IsProperSubsetOf(abc))
	assert.False(t, bd.IsProperSubsetOf(abc))
	assert.False(t, empty.IsProperSubsetOf(abc))

	assert.Equal(t, []Cell{a}, abc.Minus(bc))
	assert.Equal(t, []Cell{a, c}, abc.Minus(bd))
	assert.Empty(t, bc.Minus(abc))

	assert.True(t, abc.Overlaps(bd))
	assert.False(t, NewConstraint([]Cell{a}, 0).Overlaps(bd))
}

func TestCellNeighbors(t *testing.T) {
	assert.Equal(t, []Cell{{0, 1}, {1, 0}, {1, 1}}, Cell{0, 0}.Neighbors(8, 8))
	assert.Len(t, Cell{3, 3}.Neighbors(8, 8), 8)
	assert.Len(t, Cell{7, 4}.Neighbors(8, 8), 5)
	assert.Empty(t, Cell{0, 0}.Neighbors(1, 1))
}
