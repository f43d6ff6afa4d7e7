package agent

import (
	"fmt"
	"math/rand/v2"

	"github.com/sirupsen/logrus"
	"github.com/vancomm/minesweeper-agent/internal/knowledge"
)

var Log = logrus.New()

type MoveKind int8

const (
	Safe MoveKind = iota
	Random
)

func (k MoveKind) String() string {
	switch k {
	case Safe:
		return "safe"
	case Random:
		return "random"
	default:
		return "unknown"
	}
}

// MoveKind implements [encoding.TextMarshaler]
func (k MoveKind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

func (k *MoveKind) UnmarshalText(text []byte) error {
	switch string(text) {
	case "safe":
		*k = Safe
	case "random":
		*k = Random
	default:
		return fmt.Errorf("unknown move kind %q", text)
	}
	return nil
}

type Move struct {
	Cell knowledge.Cell `json:"cell"`
	Kind MoveKind       `json:"kind"`
}

func (m Move) String() string {
	return fmt.Sprintf("%s %v", m.Kind, m.Cell)
}

/*
Agent plays one board. It owns its knowledge base and the random source used
for guesses, so two agents built with equally seeded sources make identical
decisions for identical observations.

Cells handed out by MakeSafeMove or MakeRandomMove stay pending until their
observation arrives and are never handed out twice.
*/
type Agent struct {
	kb      *knowledge.Base
	rnd     *rand.Rand
	pending map[knowledge.Cell]struct{}
}

func New(width, height int, rnd *rand.Rand) *Agent {
	return &Agent{
		kb:      knowledge.New(width, height),
		rnd:     rnd,
		pending: make(map[knowledge.Cell]struct{}),
	}
}

func (a *Agent) Width() int  { return a.kb.Width() }
func (a *Agent) Height() int { return a.kb.Height() }

// Knowledge returns a copy of the agent's knowledge base.
func (a *Agent) Knowledge() *knowledge.Base {
	return a.kb.Clone()
}

func (a *Agent) Mines() []knowledge.Cell     { return a.kb.Mines() }
func (a *Agent) Safes() []knowledge.Cell     { return a.kb.Safes() }
func (a *Agent) MovesMade() []knowledge.Cell { return a.kb.MovesMade() }

func (a *Agent) IsMine(c knowledge.Cell) bool { return a.kb.IsMine(c) }

// AddObservation tells the agent that c was probed and borders count mines.
func (a *Agent) AddObservation(c knowledge.Cell, count int) (knowledge.Stats, error) {
	stats, err := a.kb.AddObservation(c, count)
	if err != nil {
		return stats, err
	}
	delete(a.pending, c)
	Log.WithFields(logrus.Fields{
		"cell": c, "count": count,
		"mines": len(a.kb.Mines()), "constraints": a.kb.ConstraintCount(),
	}).Debug("observation added")
	return stats, nil
}

func (a *Agent) available(c knowledge.Cell) bool {
	_, pending := a.pending[c]
	return !pending && !a.kb.IsMoveMade(c)
}

// MakeSafeMove returns a cell proven safe that has not been played yet,
// lowest row first.
func (a *Agent) MakeSafeMove() (knowledge.Cell, bool) {
	for _, c := range a.kb.Safes() {
		if a.available(c) {
			a.pending[c] = struct{}{}
			return c, true
		}
	}
	return knowledge.Cell{}, false
}

// MakeRandomMove picks uniformly among cells that are neither played nor
// known mines.
func (a *Agent) MakeRandomMove() (knowledge.Cell, bool) {
	candidates := make([]knowledge.Cell, 0, a.Width()*a.Height())
	for row := range a.Height() {
		for col := range a.Width() {
			c := knowledge.Cell{Row: row, Col: col}
			if a.available(c) && !a.kb.IsMine(c) {
				candidates = append(candidates, c)
			}
		}
	}
	if len(candidates) == 0 {
		return knowledge.Cell{}, false
	}
	c := candidates[a.rnd.IntN(len(candidates))]
	a.pending[c] = struct{}{}
	return c, true
}

// NextMove prefers a safe move and falls back to a random one.
func (a *Agent) NextMove() (Move, bool) {
	if c, ok := a.MakeSafeMove(); ok {
		return Move{Cell: c, Kind: Safe}, true
	}
	if c, ok := a.MakeRandomMove(); ok {
		Log.WithField("cell", c).Debug("no safe move, guessing")
		return Move{Cell: c, Kind: Random}, true
	}
	return Move{}, false
}
