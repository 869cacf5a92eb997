// Package dypdl implements the subset of the DyPDL modeling vocabulary
// a translated planning task needs: integer state variables, boolean
// conditions, derived boolean state functions, transitions with
// preconditions, effects and cost, and base cases. Conditions are
// compiled into a shared gini combinational circuit, so evaluating a
// state is a single sweep over the circuit.
package dypdl

import (
	"fmt"

	"github.com/go-air/gini/logic"
	"github.com/go-air/gini/z"
)

// IntVar is an integer state variable. Its target is the value it
// holds in the target (initial) state.
type IntVar struct {
	id     int
	name   string
	target int
}

func (v *IntVar) Name() string { return v.name }

func (v *IntVar) Target() int { return v.target }

// BoolStateFun is a named boolean function of the state, registered
// once and referenced by conditions. It is the model-side image of a
// stratified axiom definition.
type BoolStateFun struct {
	name string
	root z.Lit
}

func (f *BoolStateFun) Name() string { return f.name }

type atomKey struct {
	v   int
	val int
}

// Model is the assembled state-transition model. It is built
// incrementally by a translator and read-only for solvers.
type Model struct {
	c     *logic.C
	atoms map[atomKey]z.Lit

	// inputs records, per circuit input, the equality test it stands
	// for, so a state can be loaded into the circuit for evaluation.
	inputs []inputAtom

	vars        []*IntVar
	funs        []*BoolStateFun
	transitions []*Transition
	baseCases   []z.Lit
}

type inputAtom struct {
	lit z.Lit
	v   int
	val int
}

func NewModel() *Model {
	return &Model{
		c:     logic.NewC(),
		atoms: map[atomKey]z.Lit{},
	}
}

// AddIntVar registers an integer state variable with the given target
// value. Registration order assigns dense ids used by State.
func (m *Model) AddIntVar(name string, target int) *IntVar {
	v := &IntVar{id: len(m.vars), name: name, target: target}
	m.vars = append(m.vars, v)
	return v
}

func (m *Model) IntVars() []*IntVar { return m.vars }

// AddBoolStateFun registers cond as a named boolean state function.
func (m *Model) AddBoolStateFun(name string, cond Condition) *BoolStateFun {
	f := &BoolStateFun{name: name, root: cond.lit}
	m.funs = append(m.funs, f)
	return f
}

func (m *Model) BoolStateFuns() []*BoolStateFun { return m.funs }

// AddTransition registers a transition. Solvers consider transitions
// in registration order.
func (m *Model) AddTransition(t *Transition) {
	m.transitions = append(m.transitions, t)
}

func (m *Model) Transitions() []*Transition { return m.transitions }

// AddBaseCase registers the conjunction of conds as a base case. A
// state is a base state when any registered base case holds.
func (m *Model) AddBaseCase(conds []Condition) {
	root := m.c.T
	for _, cond := range conds {
		root = m.c.And(root, cond.lit)
	}
	m.baseCases = append(m.baseCases, root)
}

// State assigns one value to every IntVar of a model, keyed by
// registration order.
type State []int

// Target returns the model's target (initial) state.
func (m *Model) Target() State {
	s := make(State, len(m.vars))
	for i, v := range m.vars {
		s[i] = v.target
	}
	return s
}

// Valuation is the result of evaluating the model's circuit against
// one state. It answers Holds for any condition of the same model.
type Valuation struct {
	vs []bool
}

// Eval loads the state into the circuit inputs and evaluates every
// node once.
func (m *Model) Eval(s State) (*Valuation, error) {
	if len(s) != len(m.vars) {
		return nil, fmt.Errorf("state has %d values, model has %d variables", len(s), len(m.vars))
	}
	vs := make([]bool, m.c.Len())
	vs[m.c.T.Var()] = true
	for _, in := range m.inputs {
		vs[in.lit.Var()] = s[in.v] == in.val
	}
	m.c.Eval(vs)
	return &Valuation{vs: vs}, nil
}

func (val *Valuation) value(m z.Lit) bool {
	b := val.vs[m.Var()]
	if !m.IsPos() {
		b = !b
	}
	return b
}

// Holds reports whether the condition is true under the valuation.
func (val *Valuation) Holds(cond Condition) bool {
	return val.value(cond.lit)
}

// HoldsFun reports the value of a boolean state function under the
// valuation.
func (val *Valuation) HoldsFun(f *BoolStateFun) bool {
	return val.value(f.root)
}

// IsBase reports whether any registered base case holds.
func (m *Model) IsBase(val *Valuation) bool {
	for _, root := range m.baseCases {
		if val.value(root) {
			return true
		}
	}
	return false
}
