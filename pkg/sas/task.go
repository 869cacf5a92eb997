package sas

import (
	"fmt"
	"sort"
)

// The SAS+ encoding of derived (axiom) variables is asymmetric: domain
// index 0 always denotes the atom being on, index 1 denotes it being
// off. Rule validation, precondition encoding and goal encoding all
// depend on this convention, so it is named rather than spelled as
// bare literals.
const (
	// DerivedTrue is the domain index denoting a derived atom that holds.
	DerivedTrue = 0
	// DerivedFalse is the domain index denoting a derived atom that does not hold.
	DerivedFalse = 1
	// DontCare marks an unconstrained pre value in an operator effect.
	DontCare = -1
)

// Assignment is a partial mapping from variable id to domain index.
// DontCare values are never stored in an Assignment.
type Assignment map[int]int

// Keys returns the assigned variable ids in ascending order.
func (a Assignment) Keys() []int {
	keys := make([]int, 0, len(a))
	for v := range a {
		keys = append(keys, v)
	}
	sort.Ints(keys)
	return keys
}

// Variable is one multi-valued state feature. Its id is its zero-based
// position among the variable blocks of the document; ids never appear
// in the text itself.
type Variable struct {
	ID     int
	Name   string
	Values []string
	// AxiomLayer is the layer declared by the grounder. It is kept as
	// a provenance hint only; stratification recomputes layers from
	// the rules themselves.
	AxiomLayer int
}

// Rule is a single derivation rule: when Preconditions hold, the
// derived variable Var takes the value Val. Val is always DerivedTrue;
// rules proving an atom false are outside the supported contract.
type Rule struct {
	Preconditions Assignment
	Var           int
	Val           int
}

// Operator is a ground action with a precondition and effect partial
// assignment and a non-negative integer cost.
type Operator struct {
	Name          string
	Preconditions Assignment
	Effects       Assignment
	Cost          int
}

// Task is the parsed SAS+ planning task. It is constructed once by
// ParseTask and read-only afterwards.
type Task struct {
	Variables []Variable
	Rules     []Rule
	Operators []Operator
	Goal      Assignment
	Init      Assignment

	// UsesAxioms and UsesConditionalEffects record that the document
	// contains features outside the supported subset. Parsing still
	// completes so that structural defects are reported precisely;
	// translation consults the flags before building anything.
	UsesAxioms             bool
	UsesConditionalEffects bool

	heads map[int]struct{}
}

// Derived reports whether the variable with the given id is the head
// of at least one derivation rule.
func (t *Task) Derived(id int) bool {
	_, ok := t.heads[id]
	return ok
}

// RulesFor returns the rules proving the given derived variable, in
// document order.
func (t *Task) RulesFor(head int) []Rule {
	var rules []Rule
	for _, r := range t.Rules {
		if r.Var == head {
			rules = append(rules, r)
		}
	}
	return rules
}

// ParseError is a structural defect in the SAS+ document: a malformed
// or mismatched block delimiter, a wrong field count, a duplicate key
// in an assignment, or a non-integral cost.
type ParseError struct {
	Block string
	Msg   string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("malformed %s block: %s", e.Block, e.Msg)
}

// ContractError is a violation of the assumed SAS+ subset contract: a
// derived variable whose domain is not boolean, or a rule proving an
// atom false. The document may be well-formed SAS+, but it is not a
// document this translator's contract admits.
type ContractError struct {
	Msg string
}

func (e *ContractError) Error() string {
	return e.Msg
}
