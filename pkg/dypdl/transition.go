package dypdl

// Effect sets one state variable to a fixed value.
type Effect struct {
	Var   *IntVar
	Value int
}

// Transition is one action of the model: a name, a conjoined
// precondition, a list of effects, and a non-negative integer cost.
// The cost is a delta; solvers add it to the accumulated path cost.
type Transition struct {
	name    string
	cost    int
	pre     Condition
	effects []Effect
}

// NewTransition builds a transition whose precondition is the
// conjunction of preconds.
func (m *Model) NewTransition(name string, cost int, preconds []Condition, effects []Effect) *Transition {
	return &Transition{
		name:    name,
		cost:    cost,
		pre:     m.And(preconds...),
		effects: effects,
	}
}

func (t *Transition) Name() string { return t.name }

func (t *Transition) Cost() int { return t.cost }

func (t *Transition) Effects() []Effect { return t.effects }

// Applicable reports whether the transition's precondition holds under
// the valuation.
func (t *Transition) Applicable(val *Valuation) bool {
	return val.Holds(t.pre)
}

// Successor returns the state reached by applying the transition's
// effects to s. The input state is not modified.
func (t *Transition) Successor(s State) State {
	succ := append(State(nil), s...)
	for _, e := range t.effects {
		succ[e.Var.id] = e.Value
	}
	return succ
}
