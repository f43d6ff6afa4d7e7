package knowledge

import (
	"fmt"
	"slices"

	"github.com/gammazero/deque"
	"github.com/sirupsen/logrus"
)

var Log = logrus.New()

// MaxObservedCount is the largest number of mines a cell can border.
const MaxObservedCount = 8

type fact struct {
	cell Cell
	mine bool
}

/*
Base is everything an agent knows about one board: the cells it has probed,
the cells proven safe or mined, and the live constraints over the rest.

Two worklists drive inference. facts holds freshly classified cells that still
have to be removed from the constraints containing them; todo holds keys of
constraints that changed and must be checked again for conclusions or subset
derivations. A Base is not safe for concurrent use.
*/
type Base struct {
	width, height int

	moves cellset
	safes cellset
	mines cellset

	constraints map[string]*Constraint
	index       map[Cell]map[string]struct{}

	facts  deque.Deque[fact]
	todo   deque.Deque[string]
	queued map[string]struct{}
	stats  Stats
}

func New(width, height int) *Base {
	return &Base{
		width:       width,
		height:      height,
		moves:       make(cellset),
		safes:       make(cellset),
		mines:       make(cellset),
		constraints: make(map[string]*Constraint),
		index:       make(map[Cell]map[string]struct{}),
		queued:      make(map[string]struct{}),
	}
}

func (kb *Base) Width() int  { return kb.width }
func (kb *Base) Height() int { return kb.height }

func (kb *Base) Contains(c Cell) bool {
	return c.In(kb.width, kb.height)
}

func (kb *Base) IsMine(c Cell) bool     { return kb.mines.has(c) }
func (kb *Base) IsSafe(c Cell) bool     { return kb.safes.has(c) }
func (kb *Base) IsMoveMade(c Cell) bool { return kb.moves.has(c) }

func (kb *Base) Mines() []Cell     { return kb.mines.sorted() }
func (kb *Base) Safes() []Cell     { return kb.safes.sorted() }
func (kb *Base) MovesMade() []Cell { return kb.moves.sorted() }

func (kb *Base) ConstraintCount() int {
	return len(kb.constraints)
}

// Constraints returns copies of the live constraints ordered by key.
func (kb *Base) Constraints() []*Constraint {
	ret := make([]*Constraint, 0, len(kb.constraints))
	for _, key := range kb.sortedKeys() {
		ret = append(ret, kb.constraints[key].clone())
	}
	return ret
}

// Clone returns a deep copy, including constraints still waiting to be
// checked.
func (kb *Base) Clone() *Base {
	ret := New(kb.width, kb.height)
	ret.moves = kb.moves.clone()
	ret.safes = kb.safes.clone()
	ret.mines = kb.mines.clone()
	for key, c := range kb.constraints {
		ret.attach(key, c.clone())
	}
	for i := range kb.todo.Len() {
		ret.enqueue(kb.todo.At(i))
	}
	for i := range kb.facts.Len() {
		ret.facts.PushBack(kb.facts.At(i))
	}
	return ret
}

func (kb *Base) restore(from *Base) {
	*kb = *from
}

// MarkMine records c as a mine and removes it from every constraint. The
// conclusions this enables are left for the next closure.
func (kb *Base) MarkMine(c Cell) error {
	return kb.mark(c, true)
}

// MarkSafe records c as safe and removes it from every constraint.
func (kb *Base) MarkSafe(c Cell) error {
	return kb.mark(c, false)
}

func (kb *Base) mark(c Cell, mine bool) error {
	if !kb.Contains(c) {
		return fmt.Errorf("%w: cell %v outside %dx%d board",
			ErrInvalidInput, c, kb.width, kb.height)
	}
	backup := kb.Clone()
	err := kb.classify(c, mine)
	if err == nil {
		err = kb.applyFacts()
	}
	if err != nil {
		kb.restore(backup)
	}
	return err
}

/*
AddObservation records that c was probed and borders count mines, then runs
inference to a fixed point. The call either succeeds as a whole or leaves the
base exactly as it was.
*/
func (kb *Base) AddObservation(c Cell, count int) (Stats, error) {
	if !kb.Contains(c) {
		return Stats{}, fmt.Errorf("%w: cell %v outside %dx%d board",
			ErrInvalidInput, c, kb.width, kb.height)
	}
	if count < 0 || count > MaxObservedCount {
		return Stats{}, fmt.Errorf("%w: count %d for cell %v", ErrInvalidInput, count, c)
	}
	if kb.moves.has(c) {
		return Stats{}, fmt.Errorf("%w: cell %v already observed", ErrInvalidInput, c)
	}
	return kb.atomically(func() error {
		kb.moves[c] = struct{}{}
		if err := kb.classify(c, false); err != nil {
			return err
		}
		if err := kb.applyFacts(); err != nil {
			return err
		}
		return kb.addConstraint(c.Neighbors(kb.width, kb.height), count)
	})
}

// AddConstraint adds the fact that exactly count of cells are mines and runs
// inference to a fixed point. Known cells are accounted for first.
func (kb *Base) AddConstraint(cells []Cell, count int) (Stats, error) {
	for _, c := range cells {
		if !kb.Contains(c) {
			return Stats{}, fmt.Errorf("%w: cell %v outside %dx%d board",
				ErrInvalidInput, c, kb.width, kb.height)
		}
	}
	return kb.atomically(func() error {
		return kb.addConstraint(cells, count)
	})
}

// Infer checks every live constraint again. On a base that already reached
// its fixed point it changes nothing.
func (kb *Base) Infer() (Stats, error) {
	return kb.atomically(func() error {
		for _, key := range kb.sortedKeys() {
			kb.enqueue(key)
		}
		return nil
	})
}

func (kb *Base) atomically(f func() error) (Stats, error) {
	backup := kb.Clone()
	kb.stats = Stats{}
	err := f()
	if err == nil {
		err = kb.closure()
	}
	stats := kb.stats
	if err != nil {
		Log.WithFields(logrus.Fields{
			"error": err, "steps": stats.Steps,
		}).Warn("rolling back knowledge update")
		kb.restore(backup)
		return stats, err
	}
	return stats, nil
}

func (kb *Base) addConstraint(cells []Cell, count int) error {
	remaining := make([]Cell, 0, len(cells))
	for _, n := range cells {
		switch {
		case kb.moves.has(n), kb.safes.has(n):
		case kb.mines.has(n):
			count--
		default:
			remaining = append(remaining, n)
		}
	}
	_, err := kb.insert(NewConstraint(remaining, count))
	return err
}

func (kb *Base) classify(c Cell, mine bool) error {
	if mine {
		if kb.safes.has(c) {
			return fmt.Errorf("%w: %v is known safe, cannot be a mine", ErrInconsistent, c)
		}
		if kb.mines.has(c) {
			return nil
		}
		kb.mines[c] = struct{}{}
	} else {
		if kb.mines.has(c) {
			return fmt.Errorf("%w: %v is a known mine, cannot be safe", ErrInconsistent, c)
		}
		if kb.safes.has(c) {
			return nil
		}
		kb.safes[c] = struct{}{}
	}
	kb.stats.Classified++
	kb.facts.PushBack(fact{c, mine})
	return nil
}

/*
insert adds c unless its cell set is empty or already present. A duplicate
with a different count, or a count outside [0, |cells|], is a contradiction.
New constraints go on the todo list.
*/
func (kb *Base) insert(c *Constraint) (added bool, err error) {
	if !c.Valid() {
		return false, fmt.Errorf("%w: constraint %v", ErrInconsistent, c)
	}
	if c.Len() == 0 {
		return false, nil
	}
	key := c.Key()
	if existing, ok := kb.constraints[key]; ok {
		if existing.count != c.count {
			return false, fmt.Errorf("%w: %v conflicts with %v",
				ErrInconsistent, c, existing)
		}
		return false, nil
	}
	kb.attach(key, c)
	kb.enqueue(key)
	return true, nil
}

func (kb *Base) attach(key string, c *Constraint) {
	kb.constraints[key] = c
	for _, cell := range c.cells {
		keys, ok := kb.index[cell]
		if !ok {
			keys = make(map[string]struct{})
			kb.index[cell] = keys
		}
		keys[key] = struct{}{}
	}
}

func (kb *Base) detach(key string) *Constraint {
	c, ok := kb.constraints[key]
	if !ok {
		return nil
	}
	delete(kb.constraints, key)
	for _, cell := range c.cells {
		keys := kb.index[cell]
		delete(keys, key)
		if len(keys) == 0 {
			delete(kb.index, cell)
		}
	}
	return c
}

func (kb *Base) enqueue(key string) {
	if _, ok := kb.queued[key]; ok {
		return /* already on it */
	}
	kb.queued[key] = struct{}{}
	kb.todo.PushBack(key)
}

// containing returns the keys of constraints holding cell, in key order.
func (kb *Base) containing(cell Cell) []string {
	keys := make([]string, 0, len(kb.index[cell]))
	for key := range kb.index[cell] {
		keys = append(keys, key)
	}
	slices.Sort(keys)
	return keys
}

func (kb *Base) sortedKeys() []string {
	keys := make([]string, 0, len(kb.constraints))
	for key := range kb.constraints {
		keys = append(keys, key)
	}
	slices.Sort(keys)
	return keys
}
