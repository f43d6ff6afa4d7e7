package handlers

import (
	"errors"
	"fmt"
	"iter"
	"strconv"
	"strings"

	"github.com/vancomm/minesweeper-agent/internal/knowledge"
)

var (
	ErrUnknownCommand = errors.New("unknown command")
	ErrCommandArgs    = errors.New("invalid number of arguments")
)

// Maps known commands to number of arguments
var commandNargs = map[string]int{
	"o": 3, // o ROW COL COUNT: observe
	"m": 0, // next move
	"s": 0, // knowledge snapshot
}

type Reply struct {
	Line      int              `json:"line"`
	Command   string           `json:"command"`
	Stats     *knowledge.Stats `json:"stats,omitempty"`
	Move      *MoveDTO         `json:"move,omitempty"`
	Done      bool             `json:"done,omitempty"`
	Knowledge *KnowledgeDTO    `json:"knowledge,omitempty"`
	Error     string           `json:"error,omitempty"`
}

func byPiece(s string, sep string) iter.Seq2[int, string] {
	return func(yield func(int, string) bool) {
		i := 0
		found := true
		var piece string
		for found {
			piece, s, found = strings.Cut(s, sep)
			if !yield(i, piece) {
				return
			}
			i += 1
		}
	}
}

func parseInts(ss []string) ([]int, error) {
	ints := make([]int, len(ss))
	for i, s := range ss {
		n, err := strconv.Atoi(s)
		if err != nil {
			return nil, fmt.Errorf("%w: argument %d must be an int", knowledge.ErrInvalidInput, i+1)
		}
		ints[i] = n
	}
	return ints, nil
}

func executeCommand(s *Session, line string) (Reply, error) {
	parts := strings.Fields(line)
	if len(parts) == 0 {
		return Reply{}, ErrUnknownCommand
	}
	reply := Reply{Command: parts[0]}
	nargs, ok := commandNargs[parts[0]]
	if !ok {
		return reply, ErrUnknownCommand
	}
	if nargs != len(parts)-1 {
		return reply, ErrCommandArgs
	}
	switch parts[0] {
	case "o":
		args, err := parseInts(parts[1:])
		if err != nil {
			return reply, err
		}
		stats, err := s.Observe(knowledge.Cell{Row: args[0], Col: args[1]}, args[2])
		if err != nil {
			return reply, err
		}
		reply.Stats = &stats
	case "m":
		if move, ok := s.NextMove(); ok {
			reply.Move = NewMoveDTO(move)
		} else {
			reply.Done = true
		}
	case "s":
		reply.Knowledge = s.Snapshot()
	}
	return reply, nil
}

// executeBatch runs newline-separated commands in order. A failing command
// is reported in its reply and does not stop the ones after it.
func executeBatch(s *Session, text string) []Reply {
	replies := make([]Reply, 0)
	for i, line := range byPiece(strings.TrimSpace(text), "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		reply, err := executeCommand(s, line)
		reply.Line = i
		if err != nil {
			reply.Error = err.Error()
		}
		replies = append(replies, reply)
	}
	return replies
}
