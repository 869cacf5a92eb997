package solver

import (
	"sort"
	"time"

	"github.com/planning-framework/pddl2dypdl/pkg/dypdl"
)

// CABS is complete anytime beam search: beam search restarted with a
// doubling beam width, keeping all layers for duplicate detection.
// Each restart that improves on the incumbent yields a solution; a
// restart that finishes without pruning proves optimality.
type CABS struct {
	model *dypdl.Model
	opts  options

	width     int
	incumbent *Solution
	done      bool

	expanded  int
	generated int
}

func NewCABS(model *dypdl.Model, opts ...Option) *CABS {
	return &CABS{
		model: model,
		opts:  applyOptions(opts),
		width: 1,
	}
}

func (s *CABS) SearchNext() (*Solution, bool, error) {
	if s.done {
		return nil, true, nil
	}
	start := time.Now()
	deadline := s.opts.deadline(start)

	for {
		found, complete, timedOut, err := s.runBeam(deadline)
		if err != nil {
			return nil, true, err
		}
		if timedOut {
			s.done = true
			return &Solution{TimedOut: true, Expanded: s.expanded, Generated: s.generated, Time: time.Since(start)}, false, nil
		}
		improved := found != nil && (s.incumbent == nil || found.cost < s.incumbent.Cost)
		if improved {
			s.incumbent = &Solution{
				Cost:        found.cost,
				Transitions: found.plan(),
				Expanded:    s.expanded,
				Generated:   s.generated,
				Time:        time.Since(start),
			}
		}
		if complete {
			s.done = true
			if s.incumbent == nil {
				return &Solution{Infeasible: true, Expanded: s.expanded, Generated: s.generated, Time: time.Since(start)}, true, nil
			}
			return s.incumbent, true, nil
		}
		s.width *= 2
		if improved {
			return s.incumbent, false, nil
		}
	}
}

// runBeam performs one beam search pass at the current width. It
// returns the best base node reached, if any, whether the pass
// completed without pruning (making the result provably optimal), and
// whether the deadline cut the pass short.
func (s *CABS) runBeam(deadline time.Time) (*node, bool, bool, error) {
	root := &node{state: s.model.Target()}
	layer := []*node{root}
	seen := map[string]int{stateKey(root.state): 0}
	pruned := false
	var best *node
	var counter int

	for len(layer) > 0 {
		if expired(deadline) {
			return nil, false, true, nil
		}
		var next []*node
		for _, n := range layer {
			val, err := s.model.Eval(n.state)
			if err != nil {
				return nil, false, false, err
			}
			if s.model.IsBase(val) {
				if best == nil || n.cost < best.cost {
					best = n
				}
				continue
			}
			s.expanded++
			for _, t := range s.model.Transitions() {
				if !t.Applicable(val) {
					continue
				}
				succ := t.Successor(n.state)
				cost := n.cost + t.Cost()
				k := stateKey(succ)
				if known, ok := seen[k]; ok && known <= cost {
					continue
				}
				seen[k] = cost
				counter++
				s.generated++
				next = append(next, &node{state: succ, cost: cost, via: t, parent: n, order: counter})
			}
		}
		sort.Slice(next, func(i, j int) bool {
			if next[i].cost != next[j].cost {
				return next[i].cost < next[j].cost
			}
			return next[i].order < next[j].order
		})
		if len(next) > s.width {
			next = next[:s.width]
			pruned = true
		}
		layer = next
	}
	return best, !pruned, false, nil
}
