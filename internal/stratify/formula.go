package stratify

import (
	"fmt"
	"strings"
)

// Formula is a boolean expression over primitive-variable equality
// tests and references to previously defined derived variables. It is
// the model-independent output of stratification; the encoder lowers
// it into model conditions.
type Formula interface {
	fmt.Stringer
	formula()
}

// True is the constant true, produced for heads proved by a rule with
// an empty precondition.
type True struct{}

// Atom is an equality test on a primitive variable.
type Atom struct {
	Var int
	Val int
}

// Ref is a reference to the definition of a derived variable of a
// strictly smaller layer.
type Ref struct {
	Var int
}

// Not negates a formula.
type Not struct {
	F Formula
}

// And is the conjunction of two or more formulas.
type And struct {
	Fs []Formula
}

// Or is the disjunction of two or more formulas.
type Or struct {
	Fs []Formula
}

func (True) formula() {}
func (Atom) formula() {}
func (Ref) formula()  {}
func (Not) formula()  {}
func (And) formula()  {}
func (Or) formula()   {}

func (True) String() string   { return "true" }
func (a Atom) String() string { return fmt.Sprintf("var%d=%d", a.Var, a.Val) }
func (r Ref) String() string  { return fmt.Sprintf("var%d", r.Var) }
func (n Not) String() string  { return fmt.Sprintf("!%s", n.F) }
func (a And) String() string  { return join(a.Fs, " & ") }
func (o Or) String() string   { return join(o.Fs, " | ") }

func join(fs []Formula, sep string) string {
	s := make([]string, len(fs))
	for i, f := range fs {
		s[i] = f.String()
	}
	return "(" + strings.Join(s, sep) + ")"
}
