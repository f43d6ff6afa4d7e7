package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"hash/maphash"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/vancomm/minesweeper-agent/internal/agent"
	"github.com/vancomm/minesweeper-agent/internal/board"
	"github.com/vancomm/minesweeper-agent/internal/database"
	"github.com/vancomm/minesweeper-agent/internal/game"
	"github.com/vancomm/minesweeper-agent/internal/knowledge"
	"github.com/vancomm/minesweeper-agent/internal/repository"
)

var (
	log = logrus.New()

	width   int
	height  int
	mines   int
	level   string
	games   int
	seed    uint64
	workers int
	show    bool
	store   bool
	verbose bool
)

func init() {
	flag.IntVar(&width, "width", board.Beginner.Width, "board width")
	flag.IntVar(&height, "height", board.Beginner.Height, "board height")
	flag.IntVar(&mines, "mines", board.Beginner.MineCount, "number of mines")
	flag.StringVar(&level, "level", "", "preset: beginner, intermediate or expert (overrides dimensions)")
	flag.IntVar(&games, "games", 1, "number of games to play")
	flag.Uint64Var(&seed, "seed", 0, "random seed (0 picks one)")
	flag.IntVar(&workers, "workers", 0, "parallel games (0 uses GOMAXPROCS)")
	flag.BoolVar(&show, "show", false, "print the board after every turn of a single game")
	flag.BoolVar(&store, "store", false, "persist results to the database")
	flag.BoolVar(&verbose, "v", false, "debug logging")
}

func setupLogging() {
	logLevel := logrus.InfoLevel
	if verbose {
		logLevel = logrus.DebugLevel
	}
	for _, l := range []*logrus.Logger{log, agent.Log, knowledge.Log} {
		l.SetLevel(logLevel)
		l.SetFormatter(&logrus.TextFormatter{ForceColors: true})
	}
	/* Per-observation chatter drowns out a batch otherwise. */
	agent.Log.SetLevel(min(logLevel, logrus.InfoLevel))
	knowledge.Log.SetLevel(min(logLevel, logrus.InfoLevel))
}

func params() (board.Params, error) {
	switch level {
	case "":
		p := board.Params{Width: width, Height: height, MineCount: mines}
		return p, p.Validate()
	case "beginner":
		return board.Beginner, nil
	case "intermediate":
		return board.Intermediate, nil
	case "expert":
		return board.Expert, nil
	default:
		return board.Params{}, fmt.Errorf("%w: unknown level %q", board.ErrInvalidParams, level)
	}
}

func playOne(ctx context.Context, p board.Params) (*game.Result, error) {
	g, err := game.Start(p, game.GameRand(seed, 0), log)
	if err != nil {
		return nil, err
	}
	start := time.Now()
	for !g.Over() {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		turn, err := g.Step()
		if errors.Is(err, game.ErrNoMove) {
			break
		}
		if err != nil {
			return nil, err
		}
		if show {
			fmt.Printf("turn %d: %s -> ", turn.Number, turn.Move)
			if turn.Mine {
				fmt.Println("mine")
			} else {
				fmt.Println(turn.Count)
			}
			fmt.Println(g.Render())
		}
	}
	if show {
		fmt.Println(g.Board())
	}
	r := g.Result(time.Since(start))
	r.Seed = seed
	return r, nil
}

func persist(ctx context.Context, results []*game.Result) error {
	pool, err := database.Connect(ctx)
	if err != nil {
		return err
	}
	defer pool.Close()

	q := repository.New(pool)
	for _, r := range results {
		params, err := repository.RecordParams(r)
		if err != nil {
			return err
		}
		record, err := q.CreateGameRecord(ctx, params)
		if err != nil {
			return fmt.Errorf("store game %d: %w", r.Index, err)
		}
		log.WithField("record", record.GameRecordId).Debug("stored")
	}
	log.WithField("records", len(results)).Info("results stored")
	return nil
}

func run(ctx context.Context) error {
	p, err := params()
	if err != nil {
		return err
	}
	if seed == 0 {
		seed = new(maphash.Hash).Sum64()
	}
	log.WithFields(logrus.Fields{"params": p.String(), "seed": seed}).Info("playing")

	var results []*game.Result
	if games <= 1 {
		r, err := playOne(ctx, p)
		if err != nil {
			return err
		}
		log.WithFields(logrus.Fields{
			"status":  r.Status,
			"turns":   r.Turns,
			"guesses": r.Guesses,
			"flagged": r.Flagged,
		}).Info("game over")
		results = []*game.Result{r}
	} else {
		summary, err := game.Simulate(ctx, game.SimulationParams{
			Params: p, Games: games, Seed: seed, Workers: workers,
		}, log)
		if err != nil {
			return err
		}
		if summary.Unsound > 0 {
			log.WithField("unsound", summary.Unsound).Error("agent flagged safe cells")
		}
		results = summary.Results
	}

	if store {
		return persist(ctx, results)
	}
	return nil
}

func main() {
	ctx, stop := signal.NotifyContext(
		context.Background(),
		os.Interrupt, syscall.SIGTERM,
	)
	defer stop()

	flag.Parse()
	setupLogging()

	if err := run(ctx); err != nil {
		log.Fatal(err)
	}
}
