// Package translate lowers a parsed SAS+ task into a DyPDL model: one
// integer state variable per primitive SAS+ variable, one boolean
// state function per stratified axiom head, one transition per
// operator, and a base case built from the goal.
package translate

import (
	"fmt"
	"strings"

	"github.com/planning-framework/pddl2dypdl/internal/stratify"
	"github.com/planning-framework/pddl2dypdl/pkg/dypdl"
	"github.com/planning-framework/pddl2dypdl/pkg/sas"
)

// UnsupportedError reports that the task, while well-formed, uses
// SAS+ features outside the supported subset. It names every feature
// that triggered it.
type UnsupportedError struct {
	Features []string
}

func (e *UnsupportedError) Error() string {
	return fmt.Sprintf("unsupported SAS+ features: %s", strings.Join(e.Features, ", "))
}

// Translate builds the DyPDL model for a task. Tasks using axioms or
// conditional effects are refused with an UnsupportedError before any
// part of the model is built; a partially built model is never
// returned.
func Translate(task *sas.Task) (*dypdl.Model, error) {
	var features []string
	if task.UsesAxioms {
		features = append(features, "axioms")
	}
	if task.UsesConditionalEffects {
		features = append(features, "conditional effects")
	}
	if features != nil {
		return nil, &UnsupportedError{Features: features}
	}
	return encode(task)
}

type encoder struct {
	task  *sas.Task
	model *dypdl.Model
	vars  map[int]*dypdl.IntVar
	funs  map[int]*dypdl.BoolStateFun
}

func encode(task *sas.Task) (*dypdl.Model, error) {
	strata, err := stratify.Stratify(task)
	if err != nil {
		return nil, err
	}
	e := &encoder{
		task:  task,
		model: dypdl.NewModel(),
		vars:  map[int]*dypdl.IntVar{},
		funs:  map[int]*dypdl.BoolStateFun{},
	}
	e.stateVariables()
	if err := e.stateFunctions(strata); err != nil {
		return nil, err
	}
	if err := e.transitions(); err != nil {
		return nil, err
	}
	if err := e.baseCase(); err != nil {
		return nil, err
	}
	return e.model, nil
}

// stateVariables registers one integer state variable per primitive
// SAS+ variable, with the initial-state value as target.
func (e *encoder) stateVariables() {
	for _, v := range e.task.Variables {
		if e.task.Derived(v.ID) {
			continue
		}
		e.vars[v.ID] = e.model.AddIntVar(v.Name, e.task.Init[v.ID])
	}
}

// stateFunctions registers one boolean state function per axiom head,
// in strata order, so every definition only references functions that
// are already registered.
func (e *encoder) stateFunctions(strata *stratify.Strata) error {
	for _, head := range strata.Order() {
		cond, err := e.lower(strata.Definition(head))
		if err != nil {
			return err
		}
		e.funs[head] = e.model.AddBoolStateFun(e.task.Variables[head].Name, cond)
	}
	return nil
}

// lower turns a stratified formula into a model condition.
func (e *encoder) lower(f stratify.Formula) (dypdl.Condition, error) {
	switch f := f.(type) {
	case stratify.True:
		return e.model.True(), nil
	case stratify.Atom:
		return e.model.Equal(e.vars[f.Var], f.Val), nil
	case stratify.Ref:
		fun, ok := e.funs[f.Var]
		if !ok {
			return dypdl.Condition{}, fmt.Errorf("state function for var%d referenced before registration", f.Var)
		}
		return e.model.Cond(fun), nil
	case stratify.Not:
		inner, err := e.lower(f.F)
		if err != nil {
			return dypdl.Condition{}, err
		}
		return e.model.Not(inner), nil
	case stratify.And:
		conds, err := e.lowerAll(f.Fs)
		if err != nil {
			return dypdl.Condition{}, err
		}
		return e.model.And(conds...), nil
	case stratify.Or:
		conds, err := e.lowerAll(f.Fs)
		if err != nil {
			return dypdl.Condition{}, err
		}
		return e.model.Or(conds...), nil
	default:
		return dypdl.Condition{}, fmt.Errorf("unknown formula %T", f)
	}
}

func (e *encoder) lowerAll(fs []stratify.Formula) ([]dypdl.Condition, error) {
	conds := make([]dypdl.Condition, len(fs))
	for i, f := range fs {
		cond, err := e.lower(f)
		if err != nil {
			return nil, err
		}
		conds[i] = cond
	}
	return conds, nil
}

// transitions registers one transition per operator. A precondition on
// a derived variable is a reference to its state function, negated for
// the atom-off value. Derived variables must never be effect targets.
func (e *encoder) transitions() error {
	for _, op := range e.task.Operators {
		var preconds []dypdl.Condition
		for _, v := range op.Preconditions.Keys() {
			val := op.Preconditions[v]
			if val == sas.DontCare {
				continue
			}
			if !e.task.Derived(v) {
				preconds = append(preconds, e.model.Equal(e.vars[v], val))
				continue
			}
			switch val {
			case sas.DerivedTrue:
				preconds = append(preconds, e.model.Cond(e.funs[v]))
			case sas.DerivedFalse:
				preconds = append(preconds, e.model.Not(e.model.Cond(e.funs[v])))
			default:
				return &sas.ContractError{Msg: fmt.Sprintf("operator %s requires derived variable var%d with non-boolean value %d", op.Name, v, val)}
			}
		}
		var effects []dypdl.Effect
		for _, v := range op.Effects.Keys() {
			if e.task.Derived(v) {
				return &sas.ContractError{Msg: fmt.Sprintf("operator %s has derived variable var%d as an effect target", op.Name, v)}
			}
			effects = append(effects, dypdl.Effect{Var: e.vars[v], Value: op.Effects[v]})
		}
		e.model.AddTransition(e.model.NewTransition(op.Name, op.Cost, preconds, effects))
	}
	return nil
}

// baseCase registers the goal conjunction: equality for primitive
// variables, the state function or its negation for derived ones.
func (e *encoder) baseCase() error {
	var conds []dypdl.Condition
	for _, v := range e.task.Goal.Keys() {
		val := e.task.Goal[v]
		if !e.task.Derived(v) {
			conds = append(conds, e.model.Equal(e.vars[v], val))
			continue
		}
		switch val {
		case sas.DerivedTrue:
			conds = append(conds, e.model.Cond(e.funs[v]))
		case sas.DerivedFalse:
			conds = append(conds, e.model.Not(e.model.Cond(e.funs[v])))
		default:
			return &sas.ContractError{Msg: fmt.Sprintf("goal on derived variable var%d with non-boolean value %d", v, val)}
		}
	}
	e.model.AddBaseCase(conds)
	return nil
}
