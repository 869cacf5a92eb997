package solver

import (
	"container/heap"
	"time"

	"github.com/planning-framework/pddl2dypdl/pkg/dypdl"
)

// CAASDy is cost-algebraic A* over the transition system. With the
// integer-cost models this repository produces and a zero heuristic it
// is Dijkstra search: the first base state popped is optimal.
type CAASDy struct {
	model *dypdl.Model
	opts  options
	done  bool
}

func NewCAASDy(model *dypdl.Model, opts ...Option) *CAASDy {
	return &CAASDy{
		model: model,
		opts:  applyOptions(opts),
	}
}

func (s *CAASDy) SearchNext() (*Solution, bool, error) {
	if s.done {
		return nil, true, nil
	}
	start := time.Now()
	deadline := s.opts.deadline(start)

	root := &node{state: s.model.Target()}
	open := &openList{root}
	heap.Init(open)
	best := map[string]int{stateKey(root.state): 0}
	var expanded, generated, counter int

	for open.Len() > 0 {
		if expired(deadline) {
			s.done = true
			return &Solution{TimedOut: true, Expanded: expanded, Generated: generated, Time: time.Since(start)}, false, nil
		}
		n := heap.Pop(open).(*node)
		if n.cost > best[stateKey(n.state)] {
			// a cheaper path to this state was found after n was queued
			continue
		}
		val, err := s.model.Eval(n.state)
		if err != nil {
			return nil, true, err
		}
		if s.model.IsBase(val) {
			s.done = true
			return &Solution{
				Cost:        n.cost,
				Transitions: n.plan(),
				Expanded:    expanded,
				Generated:   generated,
				Time:        time.Since(start),
			}, true, nil
		}
		expanded++
		for _, t := range s.model.Transitions() {
			if !t.Applicable(val) {
				continue
			}
			succ := t.Successor(n.state)
			cost := n.cost + t.Cost()
			k := stateKey(succ)
			if known, ok := best[k]; ok && known <= cost {
				continue
			}
			best[k] = cost
			counter++
			generated++
			heap.Push(open, &node{state: succ, cost: cost, via: t, parent: n, order: counter})
		}
	}
	s.done = true
	return &Solution{Infeasible: true, Expanded: expanded, Generated: generated, Time: time.Since(start)}, true, nil
}

// openList is a min-heap over (cost, insertion order).
type openList []*node

func (o openList) Len() int { return len(o) }

func (o openList) Less(i, j int) bool {
	if o[i].cost != o[j].cost {
		return o[i].cost < o[j].cost
	}
	return o[i].order < o[j].order
}

func (o openList) Swap(i, j int) { o[i], o[j] = o[j], o[i] }

func (o *openList) Push(x any) { *o = append(*o, x.(*node)) }

func (o *openList) Pop() any {
	old := *o
	n := old[len(old)-1]
	*o = old[:len(old)-1]
	return n
}
