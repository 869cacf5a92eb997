package dypdl

import "github.com/go-air/gini/z"

// Condition is a boolean expression over the state, compiled to a
// literal in the model's circuit. Conditions are values; they are only
// meaningful for the model that created them.
type Condition struct {
	lit z.Lit
}

// True returns the constant true condition.
func (m *Model) True() Condition { return Condition{lit: m.c.T} }

// False returns the constant false condition.
func (m *Model) False() Condition { return Condition{lit: m.c.F} }

// Equal returns the condition that v holds the given value. Equality
// atoms are strashed: the same (variable, value) pair always yields
// the same circuit input.
func (m *Model) Equal(v *IntVar, val int) Condition {
	key := atomKey{v: v.id, val: val}
	if lit, ok := m.atoms[key]; ok {
		return Condition{lit: lit}
	}
	lit := m.c.Lit()
	m.atoms[key] = lit
	m.inputs = append(m.inputs, inputAtom{lit: lit, v: v.id, val: val})
	return Condition{lit: lit}
}

// Cond returns the condition that the boolean state function holds.
func (m *Model) Cond(f *BoolStateFun) Condition {
	return Condition{lit: f.root}
}

// Not returns the negation of a condition.
func (m *Model) Not(a Condition) Condition {
	return Condition{lit: a.lit.Not()}
}

// And returns the conjunction of conditions.
func (m *Model) And(conds ...Condition) Condition {
	root := m.c.T
	for _, cond := range conds {
		root = m.c.And(root, cond.lit)
	}
	return Condition{lit: root}
}

// Or returns the disjunction of conditions.
func (m *Model) Or(conds ...Condition) Condition {
	root := m.c.F
	for _, cond := range conds {
		root = m.c.Or(root, cond.lit)
	}
	return Condition{lit: root}
}
