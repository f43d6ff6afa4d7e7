package game

import (
	"bytes"
	"context"
	"encoding/gob"
	"errors"
	"fmt"
	"math/rand/v2"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/vancomm/minesweeper-agent/internal/agent"
	"github.com/vancomm/minesweeper-agent/internal/board"
	"github.com/vancomm/minesweeper-agent/internal/knowledge"
)

var (
	ErrGameOver = errors.New("game is over")
	ErrNoMove   = errors.New("agent has no move left")
)

type Status int8

const (
	Playing Status = iota
	Won
	Lost
)

func (s Status) String() string {
	switch s {
	case Playing:
		return "playing"
	case Won:
		return "won"
	case Lost:
		return "lost"
	default:
		return "unknown"
	}
}

// Status implements [encoding.TextMarshaler]
func (s Status) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

func (s *Status) UnmarshalText(text []byte) error {
	switch string(text) {
	case "playing":
		*s = Playing
	case "won":
		*s = Won
	case "lost":
		*s = Lost
	default:
		return fmt.Errorf("unknown game status %q", text)
	}
	return nil
}

// Turn is one probe: the move the agent chose and what the board answered.
type Turn struct {
	Number int             `json:"number"`
	Move   agent.Move      `json:"move"`
	Mine   bool            `json:"mine"`
	Count  int             `json:"count"`
	Stats  knowledge.Stats `json:"stats"`
}

/*
Game drives one agent against one board: it asks the agent for a move,
probes the board and hands the neighbour count back as an observation.
*/
type Game struct {
	board  *board.Board
	agent  *agent.Agent
	log    logrus.FieldLogger
	status Status
	turns  []Turn
	probed int
	first  *agent.Move
}

func New(b *board.Board, a *agent.Agent, log logrus.FieldLogger) *Game {
	return &Game{board: b, agent: a, log: log}
}

/*
Start lets a fresh agent pick its first cell and only then lays out the mines
around it, so the opening probe never hits a mine and always reads zero.
*/
func Start(p board.Params, r *rand.Rand, log logrus.FieldLogger) (*Game, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	a := agent.New(p.Width, p.Height, r)
	first, ok := a.NextMove()
	if !ok {
		return nil, fmt.Errorf("%w: empty %v board", board.ErrInvalidParams, p)
	}
	b, err := board.New(p, first.Cell, r)
	if err != nil {
		return nil, err
	}
	g := New(b, a, log)
	g.first = &first
	return g, nil
}

func (g *Game) Board() *board.Board { return g.board }
func (g *Game) Agent() *agent.Agent { return g.agent }
func (g *Game) Status() Status      { return g.status }
func (g *Game) Over() bool          { return g.status != Playing }
func (g *Game) Turns() []Turn       { return g.turns }
func (g *Game) Probed() int         { return g.probed }

// SafeCellsLeft counts the non-mine cells not probed yet.
func (g *Game) SafeCellsLeft() int {
	return g.board.Cells() - g.board.MineCount - g.probed
}

func (g *Game) LastTurn() (Turn, bool) {
	if len(g.turns) == 0 {
		return Turn{}, false
	}
	return g.turns[len(g.turns)-1], true
}

func (g *Game) nextMove() (agent.Move, bool) {
	if g.first != nil {
		m := *g.first
		g.first = nil
		return m, true
	}
	return g.agent.NextMove()
}

/*
Step plays one turn. An observation the agent rejects aborts the turn and is
returned as is; the agent's knowledge stays as it was before the turn.
*/
func (g *Game) Step() (Turn, error) {
	if g.Over() {
		return Turn{}, ErrGameOver
	}

	move, ok := g.nextMove()
	if !ok {
		g.status = Lost
		return Turn{}, ErrNoMove
	}

	turn := Turn{Number: len(g.turns) + 1, Move: move}
	log := g.log.WithFields(logrus.Fields{"turn": turn.Number, "move": move.String()})

	if g.board.IsMine(move.Cell) {
		turn.Mine = true
		turn.Count = -1
		g.turns = append(g.turns, turn)
		g.status = Lost
		log.Info("stepped on a mine")
		return turn, nil
	}

	turn.Count = g.board.NeighborMineCount(move.Cell)
	stats, err := g.agent.AddObservation(move.Cell, turn.Count)
	if err != nil {
		log.WithError(err).Error("observation rejected")
		return Turn{}, fmt.Errorf("observe %v = %d: %w", move.Cell, turn.Count, err)
	}
	turn.Stats = stats
	g.turns = append(g.turns, turn)
	g.probed++

	log.WithFields(logrus.Fields{
		"count": turn.Count, "steps": stats.Steps, "derived": stats.Derived,
	}).Debug("probed")

	if g.SafeCellsLeft() == 0 {
		g.status = Won
		log.Info("board cleared")
	}
	return turn, nil
}

// Play steps until the game ends or ctx is done.
func (g *Game) Play(ctx context.Context) (*Result, error) {
	start := time.Now()
	for !g.Over() {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if _, err := g.Step(); err != nil {
			if errors.Is(err, ErrNoMove) {
				break
			}
			return nil, err
		}
	}
	return g.Result(time.Since(start)), nil
}

type Result struct {
	Params    board.Params  `json:"params"`
	Status    Status        `json:"status"`
	Turns     int           `json:"turns"`
	Guesses   int           `json:"guesses"`
	SafeMoves int           `json:"safe_moves"`
	Flagged   int           `json:"flagged"`
	Unsound   int           `json:"unsound"`
	Duration  time.Duration `json:"duration"`
	Seed      uint64        `json:"seed"`
	Index     int           `json:"index"`
	Board     *board.Board  `json:"-"`
	History   []Turn        `json:"history,omitempty"`
}

func (r Result) Won() bool { return r.Status == Won }

func (g *Game) Result(d time.Duration) *Result {
	r := &Result{
		Params:   g.board.Params,
		Status:   g.status,
		Turns:    len(g.turns),
		Duration: d,
		Board:    g.board,
		History:  g.turns,
	}
	for _, t := range g.turns {
		switch t.Move.Kind {
		case agent.Random:
			r.Guesses++
		case agent.Safe:
			r.SafeMoves++
		}
	}
	for _, m := range g.agent.Mines() {
		if g.board.IsMine(m) {
			r.Flagged++
		} else {
			r.Unsound++
		}
	}
	return r
}

// HistoryBytes gob-encodes the turns for storage.
func (r Result) HistoryBytes() ([]byte, error) {
	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(r.History); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func DecodeHistory(buf []byte) ([]Turn, error) {
	var turns []Turn
	if err := gob.NewDecoder(bytes.NewBuffer(buf)).Decode(&turns); err != nil {
		return nil, err
	}
	return turns, nil
}
