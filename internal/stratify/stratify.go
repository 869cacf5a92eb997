// Package stratify resolves the dependency structure among the derived
// variables of a SAS+ task into a well-founded, layered set of boolean
// definitions. Every derived variable ends up defined purely in terms
// of primitive-variable equality tests and derived variables of
// strictly smaller layers.
package stratify

import (
	"fmt"
	"sort"
	"strings"

	"github.com/planning-framework/pddl2dypdl/pkg/sas"
)

// CycleError reports that the derived-variable dependency graph is not
// acyclic, so no stratification exists.
type CycleError struct {
	Heads []int
}

func (e *CycleError) Error() string {
	s := make([]string, len(e.Heads))
	for i, h := range e.Heads {
		s[i] = fmt.Sprintf("var%d", h)
	}
	return fmt.Sprintf("cyclic axiom dependency among derived variables %s", strings.Join(s, ", "))
}

// Strata holds the computed layering and the per-head boolean
// definitions, in a processing order that never forward-references.
type Strata struct {
	order  []int
	layers map[int]int
	defs   map[int]Formula
}

// Order returns the derived variable ids in non-decreasing layer
// order, ties broken by id. Definitions reference only heads that
// appear earlier in this order.
func (s *Strata) Order() []int {
	return s.order
}

// Layer returns the computed layer of a derived variable. Layers start
// at 1; primitive variables have no layer.
func (s *Strata) Layer(head int) (int, bool) {
	l, ok := s.layers[head]
	return l, ok
}

// Definition returns the boolean definition of a derived variable.
func (s *Strata) Definition(head int) Formula {
	return s.defs[head]
}

// Stratify computes a well-founded layering of the task's derivation
// rules and builds one boolean definition per head. A dependency cycle
// yields a CycleError.
func Stratify(task *sas.Task) (*Strata, error) {
	heads := make([]int, 0, len(task.Rules))
	edges := map[int]map[int]struct{}{}
	for _, rule := range task.Rules {
		if _, ok := edges[rule.Var]; !ok {
			heads = append(heads, rule.Var)
			edges[rule.Var] = map[int]struct{}{}
		}
		for v := range rule.Preconditions {
			if task.Derived(v) {
				edges[rule.Var][v] = struct{}{}
			}
		}
	}
	sort.Ints(heads)

	layers, err := computeLayers(heads, edges)
	if err != nil {
		return nil, err
	}

	order := append([]int(nil), heads...)
	sort.Slice(order, func(i, j int) bool {
		if layers[order[i]] != layers[order[j]] {
			return layers[order[i]] < layers[order[j]]
		}
		return order[i] < order[j]
	})

	s := &Strata{order: order, layers: layers, defs: map[int]Formula{}}
	for _, head := range order {
		def, err := s.define(task, head)
		if err != nil {
			return nil, err
		}
		s.defs[head] = def
	}
	return s, nil
}

// computeLayers labels every head with 1 plus the longest chain of
// derived dependencies below it, by iterative relaxation to a fixed
// point. An acyclic graph settles within len(heads) rounds; exceeding
// that bound means a cycle.
func computeLayers(heads []int, edges map[int]map[int]struct{}) (map[int]int, error) {
	layers := make(map[int]int, len(heads))
	for _, h := range heads {
		layers[h] = 0
	}
	for round := 0; round <= len(heads); round++ {
		var unsettled []int
		for _, head := range heads {
			want := 1
			for dep := range edges[head] {
				if l := layers[dep] + 1; l > want {
					want = l
				}
			}
			if want != layers[head] {
				layers[head] = want
				unsettled = append(unsettled, head)
			}
		}
		if unsettled == nil {
			return layers, nil
		}
		if round == len(heads) {
			sort.Ints(unsettled)
			return nil, &CycleError{Heads: unsettled}
		}
	}
	return layers, nil
}

// define builds the boolean definition of one head: the disjunction,
// over all rules proving it, of each rule's precondition conjunction.
// A rule with an empty precondition makes the head the constant true.
func (s *Strata) define(task *sas.Task, head int) (Formula, error) {
	var bodies []Formula
	for _, rule := range task.RulesFor(head) {
		if len(rule.Preconditions) == 0 {
			return True{}, nil
		}
		var conj []Formula
		for _, v := range rule.Preconditions.Keys() {
			atom, err := s.atom(task, head, v, rule.Preconditions[v])
			if err != nil {
				return nil, err
			}
			conj = append(conj, atom)
		}
		if len(conj) == 1 {
			bodies = append(bodies, conj[0])
		} else {
			bodies = append(bodies, And{Fs: conj})
		}
	}
	if len(bodies) == 1 {
		return bodies[0], nil
	}
	return Or{Fs: bodies}, nil
}

func (s *Strata) atom(task *sas.Task, head, v, val int) (Formula, error) {
	if !task.Derived(v) {
		return Atom{Var: v, Val: val}, nil
	}
	if _, ok := s.defs[v]; !ok {
		// Unreachable for a layering computed above; guards against a
		// Strata being reused across tasks.
		return nil, fmt.Errorf("definition of var%d references var%d before it is defined", head, v)
	}
	switch val {
	case sas.DerivedTrue:
		return Ref{Var: v}, nil
	case sas.DerivedFalse:
		return Not{F: Ref{Var: v}}, nil
	default:
		return nil, fmt.Errorf("derived variable var%d used with non-boolean value %d", v, val)
	}
}
