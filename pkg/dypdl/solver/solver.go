// Package solver implements search over a finished DyPDL model.
// CAASDy is cost-algebraic A* (one optimal solution); CABS is
// complete anytime beam search (a stream of improving solutions that
// ends with an optimality proof). Both expose the same incremental
// interface the planning driver consumes.
package solver

import (
	"strconv"
	"strings"
	"time"

	"github.com/planning-framework/pddl2dypdl/pkg/dypdl"
)

// Solution is one outcome of a search step: a plan with its cost, or
// an infeasibility/timeout verdict, together with search statistics.
type Solution struct {
	Cost        int
	Transitions []*dypdl.Transition
	Infeasible  bool
	TimedOut    bool
	Expanded    int
	Generated   int
	Time        time.Duration
}

// Solver searches a model incrementally. SearchNext returns the next
// solution and whether the search has terminated, i.e. optimality is
// proved or the state space is exhausted. After termination it
// returns (nil, true, nil).
type Solver interface {
	SearchNext() (*Solution, bool, error)
}

type options struct {
	timeLimit time.Duration
}

type Option func(*options)

// WithTimeLimit bounds the wall-clock time of a single SearchNext
// call. An expired limit yields a Solution with TimedOut set, never an
// error.
func WithTimeLimit(d time.Duration) Option {
	return func(o *options) {
		o.timeLimit = d
	}
}

func applyOptions(opts []Option) options {
	var o options
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

func (o options) deadline(start time.Time) time.Time {
	if o.timeLimit == 0 {
		return time.Time{}
	}
	return start.Add(o.timeLimit)
}

func expired(deadline time.Time) bool {
	return !deadline.IsZero() && time.Now().After(deadline)
}

// node is one reached state with the cheapest known path to it.
type node struct {
	state  dypdl.State
	cost   int
	via    *dypdl.Transition
	parent *node
	// order is the insertion counter, the deterministic tie-breaker
	// among equal-cost nodes.
	order int
}

// plan reconstructs the transition sequence from the root to n.
func (n *node) plan() []*dypdl.Transition {
	var rev []*dypdl.Transition
	for cur := n; cur.via != nil; cur = cur.parent {
		rev = append(rev, cur.via)
	}
	plan := make([]*dypdl.Transition, len(rev))
	for i := range rev {
		plan[i] = rev[len(rev)-1-i]
	}
	return plan
}

// stateKey encodes a state for duplicate detection.
func stateKey(s dypdl.State) string {
	var b strings.Builder
	for i, v := range s {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteString(strconv.Itoa(v))
	}
	return b.String()
}
