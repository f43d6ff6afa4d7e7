package board

import (
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vancomm/minesweeper-agent/internal/knowledge"
)

func TestNewKeepsStartClear(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		params Params
	}{
		{name: "9x9(10)", params: Beginner},
		{name: "16x16(40)", params: Intermediate},
		{name: "30x16(99)", params: Expert},
		{name: "8x8(55)", params: Params{Width: 8, Height: 8, MineCount: 55}},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			t.Parallel()
			r := rand.New(rand.NewPCG(1, 2))
			for row := range test.params.Height {
				for col := range test.params.Width {
					start := knowledge.Cell{Row: row, Col: col}
					b, err := New(test.params, start, r)
					require.NoError(t, err)
					assert.Len(t, b.Mines(), test.params.MineCount)
					assert.False(t, b.IsMine(start))
					assert.Zero(t, b.NeighborMineCount(start))
				}
			}
		})
	}
}

func TestNewIsSeeded(t *testing.T) {
	x, err := New(Beginner, knowledge.Cell{Row: 4, Col: 4}, rand.New(rand.NewPCG(7, 7)))
	require.NoError(t, err)
	y, err := New(Beginner, knowledge.Cell{Row: 4, Col: 4}, rand.New(rand.NewPCG(7, 7)))
	require.NoError(t, err)
	assert.Equal(t, x.Grid, y.Grid)
}

func TestNewRejectsInvalidParams(t *testing.T) {
	r := rand.New(rand.NewPCG(1, 2))
	tests := []Params{
		{Width: 0, Height: 9, MineCount: 1},
		{Width: 9, Height: -1, MineCount: 1},
		{Width: 9, Height: 9, MineCount: 73},
		{Width: 9, Height: 9, MineCount: -1},
		{Width: 65, Height: 9, MineCount: 1},
	}
	for _, p := range tests {
		_, err := New(p, knowledge.Cell{}, r)
		assert.ErrorIs(t, err, ErrInvalidParams, "params %v", p)
	}
	_, err := New(Beginner, knowledge.Cell{Row: 9, Col: 0}, r)
	assert.ErrorIs(t, err, ErrInvalidParams)
}

func TestNeighborMineCount(t *testing.T) {
	b, err := FromMines(3, 3, []knowledge.Cell{{Row: 0, Col: 0}, {Row: 2, Col: 2}, {Row: 0, Col: 0}})
	require.NoError(t, err)

	assert.Equal(t, 2, b.MineCount)
	assert.Equal(t, 2, b.NeighborMineCount(knowledge.Cell{Row: 1, Col: 1}))
	assert.Equal(t, 1, b.NeighborMineCount(knowledge.Cell{Row: 0, Col: 1}))
	assert.Equal(t, 0, b.NeighborMineCount(knowledge.Cell{Row: 0, Col: 0}))
	assert.True(t, b.IsMine(knowledge.Cell{Row: 2, Col: 2}))
	assert.False(t, b.IsMine(knowledge.Cell{Row: 3, Col: 3}))
	assert.Equal(t, "* - - \n- - - \n- - * \n", b.String())

	_, err = FromMines(3, 3, []knowledge.Cell{{Row: 3, Col: 0}})
	assert.ErrorIs(t, err, ErrInvalidParams)
}

func TestParseParams(t *testing.T) {
	p, err := ParseParams("16x16:40")
	require.NoError(t, err)
	assert.Equal(t, Intermediate, p)
	assert.Equal(t, "16x16:40", p.String())

	_, err = ParseParams("16x16")
	assert.ErrorIs(t, err, ErrInvalidParams)
	_, err = ParseParams("3x3:1")
	assert.ErrorIs(t, err, ErrInvalidParams)
}

func TestBytes(t *testing.T) {
	b, err := New(Beginner, knowledge.Cell{Row: 0, Col: 0}, rand.New(rand.NewPCG(1, 2)))
	require.NoError(t, err)
	buf, err := b.Bytes()
	require.NoError(t, err)
	decoded, err := Decode(buf)
	require.NoError(t, err)
	assert.Equal(t, b, decoded)
}
