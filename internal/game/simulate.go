package game

import (
	"context"
	"fmt"
	"math/rand/v2"
	"runtime"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/vancomm/minesweeper-agent/internal/board"
)

type SimulationParams struct {
	board.Params
	Games   int
	Seed    uint64
	Workers int
}

type Summary struct {
	Games    int           `json:"games"`
	Wins     int           `json:"wins"`
	Losses   int           `json:"losses"`
	Guesses  int           `json:"guesses"`
	Turns    int           `json:"turns"`
	Unsound  int           `json:"unsound"`
	Duration time.Duration `json:"duration"`
	Results  []*Result     `json:"-"`
}

func (s Summary) WinRate() float64 {
	if s.Games == 0 {
		return 0
	}
	return float64(s.Wins) / float64(s.Games)
}

func (s Summary) Fields() logrus.Fields {
	return logrus.Fields{
		"games":    s.Games,
		"wins":     s.Wins,
		"losses":   s.Losses,
		"win_rate": fmt.Sprintf("%.3f", s.WinRate()),
		"guesses":  s.Guesses,
		"turns":    s.Turns,
		"unsound":  s.Unsound,
		"duration": s.Duration.String(),
	}
}

// GameRand returns the random source of game i in a batch seeded with seed.
func GameRand(seed uint64, i int) *rand.Rand {
	return rand.New(rand.NewPCG(seed, uint64(i)))
}

/*
Simulate plays p.Games independent games in parallel. Game i draws all its
randomness from GameRand(p.Seed, i), so a batch is reproducible regardless of
the number of workers.
*/
func Simulate(ctx context.Context, p SimulationParams, log logrus.FieldLogger) (*Summary, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	workers := p.Workers
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}

	start := time.Now()
	results := make([]*Result, p.Games)

	g, gCtx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i := range p.Games {
		g.Go(func() error {
			game, err := Start(p.Params, GameRand(p.Seed, i), log.WithField("game", i))
			if err != nil {
				return err
			}
			r, err := game.Play(gCtx)
			if err != nil {
				return fmt.Errorf("game %d: %w", i, err)
			}
			r.Seed, r.Index = p.Seed, i
			results[i] = r
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	s := &Summary{Games: p.Games, Results: results, Duration: time.Since(start)}
	for _, r := range results {
		if r.Won() {
			s.Wins++
		} else {
			s.Losses++
		}
		s.Guesses += r.Guesses
		s.Turns += r.Turns
		s.Unsound += r.Unsound
	}
	log.WithFields(s.Fields()).Info("simulation finished")
	return s, nil
}
