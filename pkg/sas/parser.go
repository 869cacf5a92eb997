package sas

import (
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"
)

// ParseTask reads a SAS+ document, as emitted by the Fast Downward
// translator, and produces the task IR. The grammar is line oriented:
// every structural block is delimited by a literal begin_X/end_X pair,
// and a missing or mismatched terminator is a fatal parse error.
// Records that do not open a recognized block (version, metric and
// mutex-group content) are skipped, matching the reference grammar.
func ParseTask(r io.Reader) (*Task, error) {
	p := &parser{
		reader: newLineReader(r),
		task: &Task{
			Goal:  Assignment{},
			Init:  Assignment{},
			heads: map[int]struct{}{},
		},
	}
	return p.parse()
}

type parser struct {
	reader *lineReader
	task   *Task

	sawGoal  bool
	sawState bool
}

func (p *parser) parse() (*Task, error) {
	for {
		line, ok := p.reader.Next()
		if !ok {
			break
		}
		var err error
		switch line {
		case "begin_variable":
			err = p.variableBlock()
		case "begin_rule":
			err = p.ruleBlock()
		case "begin_operator":
			err = p.operatorBlock()
		case "begin_goal":
			err = p.goalBlock()
		case "begin_state":
			err = p.stateBlock()
		}
		if err != nil {
			return nil, err
		}
	}
	if !p.sawState {
		return nil, &ParseError{Block: "state", Msg: "no initial state block found"}
	}
	if !p.sawGoal {
		return nil, &ParseError{Block: "goal", Msg: "no goal block found"}
	}
	return p.task, nil
}

// line returns the next record, or a parse error naming the block that
// ran out of input.
func (p *parser) line(block string) (string, error) {
	line, ok := p.reader.Next()
	if !ok {
		return "", &ParseError{Block: block, Msg: "unexpected end of input"}
	}
	return line, nil
}

func (p *parser) intLine(block string) (int, error) {
	line, err := p.line(block)
	if err != nil {
		return 0, err
	}
	n, err := strconv.Atoi(strings.TrimSpace(line))
	if err != nil {
		return 0, &ParseError{Block: block, Msg: fmt.Sprintf("expected integer, got %q", line)}
	}
	return n, nil
}

// pairLine reads a "<variable> <value>" record.
func (p *parser) pairLine(block string) (int, int, error) {
	line, err := p.line(block)
	if err != nil {
		return 0, 0, err
	}
	fields := strings.Fields(line)
	if len(fields) != 2 {
		return 0, 0, &ParseError{Block: block, Msg: fmt.Sprintf("expected variable-value pair, got %q", line)}
	}
	v, err := strconv.Atoi(fields[0])
	if err != nil {
		return 0, 0, &ParseError{Block: block, Msg: fmt.Sprintf("invalid variable %q", fields[0])}
	}
	val, err := strconv.Atoi(fields[1])
	if err != nil {
		return 0, 0, &ParseError{Block: block, Msg: fmt.Sprintf("invalid value %q", fields[1])}
	}
	return v, val, nil
}

func (p *parser) terminator(block string) error {
	line, err := p.line(block)
	if err != nil {
		return err
	}
	if line != "end_"+block {
		return &ParseError{Block: block, Msg: fmt.Sprintf("expected end_%s, got %q", block, line)}
	}
	return nil
}

func (p *parser) checkVar(block string, v int) error {
	if v < 0 || v >= len(p.task.Variables) {
		return &ParseError{Block: block, Msg: fmt.Sprintf("variable %d is not declared", v)}
	}
	return nil
}

func (p *parser) variableBlock() error {
	const block = "variable"
	name, err := p.line(block)
	if err != nil {
		return err
	}
	layer, err := p.intLine(block)
	if err != nil {
		return err
	}
	count, err := p.intLine(block)
	if err != nil {
		return err
	}
	if count < 1 {
		return &ParseError{Block: block, Msg: fmt.Sprintf("variable %s has %d values", name, count)}
	}
	values := make([]string, count)
	for i := range values {
		if values[i], err = p.line(block); err != nil {
			return err
		}
	}
	if err := p.terminator(block); err != nil {
		return err
	}

	// Variable identity is positional: the id is the zero-based index
	// of the block among all variable blocks, and the declared name
	// must agree with it.
	id := len(p.task.Variables)
	if want := fmt.Sprintf("var%d", id); name != want {
		return &ParseError{Block: block, Msg: fmt.Sprintf("variable %d declared as %q, want %q", id, name, want)}
	}
	p.task.Variables = append(p.task.Variables, Variable{
		ID:         id,
		Name:       name,
		Values:     values,
		AxiomLayer: layer,
	})
	return nil
}

func (p *parser) ruleBlock() error {
	const block = "rule"
	count, err := p.intLine(block)
	if err != nil {
		return err
	}
	preconditions := Assignment{}
	for i := 0; i < count; i++ {
		v, val, err := p.pairLine(block)
		if err != nil {
			return err
		}
		if err := p.checkVar(block, v); err != nil {
			return err
		}
		if _, dup := preconditions[v]; dup {
			return &ParseError{Block: block, Msg: fmt.Sprintf("duplicate precondition on variable %d", v)}
		}
		preconditions[v] = val
	}

	// The closing record is a (head, old value, new value) triple.
	line, err := p.line(block)
	if err != nil {
		return err
	}
	fields := strings.Fields(line)
	if len(fields) != 3 {
		return &ParseError{Block: block, Msg: fmt.Sprintf("expected head triple, got %q", line)}
	}
	head, err := strconv.Atoi(fields[0])
	if err != nil {
		return &ParseError{Block: block, Msg: fmt.Sprintf("invalid head variable %q", fields[0])}
	}
	val, err := strconv.Atoi(fields[2])
	if err != nil {
		return &ParseError{Block: block, Msg: fmt.Sprintf("invalid head value %q", fields[2])}
	}
	if err := p.checkVar(block, head); err != nil {
		return err
	}
	variable := p.task.Variables[head]
	if len(variable.Values) != 2 {
		return &ContractError{Msg: fmt.Sprintf("derived variable %s has %d values, want 2", variable.Name, len(variable.Values))}
	}
	if !strings.HasPrefix(variable.Values[DerivedTrue], "Atom") || !strings.HasPrefix(variable.Values[DerivedFalse], "NegatedAtom") {
		return &ContractError{Msg: fmt.Sprintf("derived variable %s does not follow the on-is-first value convention", variable.Name)}
	}
	if val != DerivedTrue {
		return &ContractError{Msg: fmt.Sprintf("rule for derived variable %s proves value %d; rules may only prove the atom true", variable.Name, val)}
	}
	if err := p.terminator(block); err != nil {
		return err
	}

	p.task.Rules = append(p.task.Rules, Rule{Preconditions: preconditions, Var: head, Val: val})
	p.task.heads[head] = struct{}{}
	p.task.UsesAxioms = true
	return nil
}

func (p *parser) operatorBlock() error {
	const block = "operator"
	name, err := p.line(block)
	if err != nil {
		return err
	}
	count, err := p.intLine(block)
	if err != nil {
		return err
	}
	preconditions := Assignment{}
	for i := 0; i < count; i++ {
		v, val, err := p.pairLine(block)
		if err != nil {
			return err
		}
		if err := p.checkVar(block, v); err != nil {
			return err
		}
		if _, dup := preconditions[v]; dup {
			return &ParseError{Block: block, Msg: fmt.Sprintf("operator %s: duplicate precondition on variable %d", name, v)}
		}
		preconditions[v] = val
	}

	count, err = p.intLine(block)
	if err != nil {
		return err
	}
	effects := Assignment{}
	for i := 0; i < count; i++ {
		line, err := p.line(block)
		if err != nil {
			return err
		}
		fields := strings.Fields(line)
		if len(fields) < 4 {
			return &ParseError{Block: block, Msg: fmt.Sprintf("operator %s: short effect record %q", name, line)}
		}
		guards, err := strconv.Atoi(fields[0])
		if err != nil || guards < 0 {
			return &ParseError{Block: block, Msg: fmt.Sprintf("operator %s: invalid guard count %q", name, fields[0])}
		}
		if len(fields) != 4+2*guards {
			return &ParseError{Block: block, Msg: fmt.Sprintf("operator %s: effect record %q has %d fields, want %d", name, line, len(fields), 4+2*guards)}
		}
		nums := make([]int, 3)
		for j, f := range fields[len(fields)-3:] {
			if nums[j], err = strconv.Atoi(f); err != nil {
				return &ParseError{Block: block, Msg: fmt.Sprintf("operator %s: invalid effect field %q", name, f)}
			}
		}
		v, pre, post := nums[0], nums[1], nums[2]
		if err := p.checkVar(block, v); err != nil {
			return err
		}
		if guards > 0 {
			// Conditional effects are outside the supported subset.
			// The record is dropped from the operator; the flag gates
			// the whole translation after parsing completes.
			p.task.UsesConditionalEffects = true
			continue
		}
		if pre != DontCare {
			if _, dup := preconditions[v]; dup {
				return &ParseError{Block: block, Msg: fmt.Sprintf("operator %s: effect pre value duplicates precondition on variable %d", name, v)}
			}
			preconditions[v] = pre
		}
		if _, dup := effects[v]; dup {
			return &ParseError{Block: block, Msg: fmt.Sprintf("operator %s: duplicate effect on variable %d", name, v)}
		}
		effects[v] = post
	}

	costLine, err := p.line(block)
	if err != nil {
		return err
	}
	cost, err := strconv.ParseFloat(strings.TrimSpace(costLine), 64)
	if err != nil {
		return &ParseError{Block: block, Msg: fmt.Sprintf("operator %s: invalid cost %q", name, costLine)}
	}
	if cost != math.Round(cost) {
		return &ParseError{Block: block, Msg: fmt.Sprintf("operator %s: cost %v is not an integer", name, cost)}
	}
	if cost < 0 {
		return &ParseError{Block: block, Msg: fmt.Sprintf("operator %s: cost %v is negative", name, cost)}
	}
	if err := p.terminator(block); err != nil {
		return err
	}

	p.task.Operators = append(p.task.Operators, Operator{
		Name:          name,
		Preconditions: preconditions,
		Effects:       effects,
		Cost:          int(cost),
	})
	return nil
}

func (p *parser) goalBlock() error {
	const block = "goal"
	count, err := p.intLine(block)
	if err != nil {
		return err
	}
	for i := 0; i < count; i++ {
		v, val, err := p.pairLine(block)
		if err != nil {
			return err
		}
		if err := p.checkVar(block, v); err != nil {
			return err
		}
		if _, dup := p.task.Goal[v]; dup {
			return &ParseError{Block: block, Msg: fmt.Sprintf("duplicate goal on variable %d", v)}
		}
		p.task.Goal[v] = val
	}
	if err := p.terminator(block); err != nil {
		return err
	}
	p.sawGoal = true
	return nil
}

func (p *parser) stateBlock() error {
	const block = "state"
	for v := range p.task.Variables {
		val, err := p.intLine(block)
		if err != nil {
			return err
		}
		p.task.Init[v] = val
	}
	if err := p.terminator(block); err != nil {
		return err
	}
	p.sawState = true
	return nil
}
