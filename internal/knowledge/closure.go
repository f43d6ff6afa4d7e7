package knowledge

import (
	"fmt"
	"slices"

	"github.com/sirupsen/logrus"
)

// Stats describes the work done by one inference run.
type Stats struct {
	Steps      int // constraints taken off the todo list
	Derived    int // new constraints produced by subset derivation
	Classified int // cells newly proven safe or mined
}

// closureStepFactor bounds the number of todo entries processed per board
// cell squared before the closure is declared runaway.
const closureStepFactor = 64

func (kb *Base) maxClosureSteps() int {
	n := kb.width * kb.height
	return n*n*closureStepFactor + 1024
}

/*
closure runs the deductive loop until both worklists are empty:

  - every freshly classified cell is removed from the constraints containing
    it, which are then re-keyed, normalised and put back on the todo list;

  - a constraint taken off the todo list either classifies all its cells
    outright (count 0 or count == size) or is compared against every
    overlapping constraint; when one is a proper subset of the other the
    difference becomes a new constraint.

Both lists are FIFO and overlapping constraints are visited in key order, so
the run is deterministic for a given history.
*/
func (kb *Base) closure() error {
	limit := kb.maxClosureSteps()
	for {
		if err := kb.applyFacts(); err != nil {
			return err
		}
		if kb.todo.Len() == 0 {
			break
		}
		if kb.stats.Steps >= limit {
			return fmt.Errorf("%w: %d steps, %d constraints left",
				ErrNoFixedPoint, kb.stats.Steps, len(kb.constraints))
		}
		kb.stats.Steps++

		key := kb.todo.PopFront()
		delete(kb.queued, key)
		c, ok := kb.constraints[key]
		if !ok {
			continue /* whittled away or re-keyed since queued */
		}
		if err := kb.deduce(c); err != nil {
			return err
		}
	}

	Log.WithFields(logrus.Fields{
		"steps":       kb.stats.Steps,
		"derived":     kb.stats.Derived,
		"classified":  kb.stats.Classified,
		"constraints": len(kb.constraints),
		"mines":       len(kb.mines),
		"safes":       len(kb.safes),
	}).Debug("knowledge reached fixed point")
	return nil
}

// applyFacts drains the facts list into the constraints.
func (kb *Base) applyFacts() error {
	for kb.facts.Len() > 0 {
		f := kb.facts.PopFront()
		for _, key := range kb.containing(f.cell) {
			c := kb.detach(key)
			if f.mine {
				c.MarkMine(f.cell)
			} else {
				c.MarkSafe(f.cell)
			}
			if _, err := kb.insert(c); err != nil {
				return err
			}
		}
	}
	return nil
}

func (kb *Base) deduce(c *Constraint) error {
	/*
	 * A count of zero or of the constraint's own size settles every cell
	 * in it. Once the facts are applied the constraint disappears, so
	 * there is nothing more to learn from it.
	 */
	if cells := c.KnownMines(); cells != nil {
		for _, cell := range cells {
			if err := kb.classify(cell, true); err != nil {
				return err
			}
		}
		return nil
	}
	if cells := c.KnownSafes(); cells != nil {
		for _, cell := range cells {
			if err := kb.classify(cell, false); err != nil {
				return err
			}
		}
		return nil
	}

	for _, key := range kb.overlapping(c) {
		o, ok := kb.constraints[key]
		if !ok {
			continue
		}
		var derived *Constraint
		switch {
		case o.IsProperSubsetOf(c):
			derived = NewConstraint(c.Minus(o), c.count-o.count)
		case c.IsProperSubsetOf(o):
			derived = NewConstraint(o.Minus(c), o.count-c.count)
		default:
			continue
		}
		added, err := kb.insert(derived)
		if err != nil {
			return err
		}
		if added {
			kb.stats.Derived++
			Log.WithFields(logrus.Fields{
				"from": c.String(), "with": o.String(), "derived": derived.String(),
			}).Trace("derived constraint")
		}
	}
	return nil
}

// overlapping returns keys of other constraints sharing a cell with c, in
// key order.
func (kb *Base) overlapping(c *Constraint) []string {
	self := c.Key()
	seen := make(map[string]struct{})
	for _, cell := range c.cells {
		for key := range kb.index[cell] {
			if key != self {
				seen[key] = struct{}{}
			}
		}
	}
	keys := make([]string, 0, len(seen))
	for key := range seen {
		keys = append(keys, key)
	}
	slices.Sort(keys)
	return keys
}
