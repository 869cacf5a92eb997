package stratify

import (
	"errors"
	"strconv"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/planning-framework/pddl2dypdl/pkg/sas"
)

func variableBlock(id int, atom string) string {
	return "begin_variable\nvar" + strconv.Itoa(id) + "\n-1\n2\nAtom " + atom + "()\nNegatedAtom " + atom + "()\nend_variable\n"
}

func mustParse(t *testing.T, doc string) *sas.Task {
	t.Helper()
	task, err := sas.ParseTask(strings.NewReader(doc))
	require.NoError(t, err)
	return task
}

// chainTask has one primitive variable and a chain of three derived
// variables: var1 reads var0, var2 reads var1, var3 reads var0 and the
// negation of var2.
func chainTask(t *testing.T) *sas.Task {
	doc := variableBlock(0, "x") +
		variableBlock(1, "d1") +
		variableBlock(2, "d2") +
		variableBlock(3, "d3") +
		"begin_state\n0\n1\n1\n1\nend_state\n" +
		"begin_goal\n1\n0 0\nend_goal\n" +
		"begin_rule\n1\n0 0\n1 1 0\nend_rule\n" +
		"begin_rule\n1\n1 0\n2 1 0\nend_rule\n" +
		"begin_rule\n2\n0 1\n2 1\n3 1 0\nend_rule\n"
	return mustParse(t, doc)
}

func TestLayeringIsWellFounded(t *testing.T) {
	strata, err := Stratify(chainTask(t))
	require.NoError(t, err)

	layer := func(head int) int {
		l, ok := strata.Layer(head)
		require.True(t, ok)
		return l
	}
	assert.Equal(t, 1, layer(1))
	assert.Equal(t, 2, layer(2))
	assert.Equal(t, 3, layer(3))
	assert.Equal(t, []int{1, 2, 3}, strata.Order())
}

func TestDefinitionsReferenceOnlyLowerLayers(t *testing.T) {
	strata, err := Stratify(chainTask(t))
	require.NoError(t, err)

	assert.Equal(t, "var0=0", strata.Definition(1).String())
	assert.Equal(t, "var1", strata.Definition(2).String())
	assert.Equal(t, "(var0=1 & !var2)", strata.Definition(3).String())
}

func TestEmptyPreconditionMakesHeadTrivial(t *testing.T) {
	doc := variableBlock(0, "x") +
		variableBlock(1, "d") +
		"begin_state\n0\n1\nend_state\n" +
		"begin_goal\n1\n0 0\nend_goal\n" +
		"begin_rule\n0\n1 1 0\nend_rule\n" +
		"begin_rule\n1\n0 0\n1 1 0\nend_rule\n"
	strata, err := Stratify(mustParse(t, doc))
	require.NoError(t, err)

	// any proving rule with an empty body wins, regardless of the others
	assert.Equal(t, "true", strata.Definition(1).String())
}

func TestMultipleRulesDisjoin(t *testing.T) {
	doc := variableBlock(0, "x") +
		variableBlock(1, "y") +
		variableBlock(2, "d") +
		"begin_state\n0\n0\n1\nend_state\n" +
		"begin_goal\n1\n0 0\nend_goal\n" +
		"begin_rule\n1\n0 0\n2 1 0\nend_rule\n" +
		"begin_rule\n2\n0 1\n1 1\n2 1 0\nend_rule\n"
	strata, err := Stratify(mustParse(t, doc))
	require.NoError(t, err)

	assert.Equal(t, "(var0=0 | (var0=1 & var1=1))", strata.Definition(2).String())
}

func TestCycleIsDetected(t *testing.T) {
	doc := variableBlock(0, "x") +
		variableBlock(1, "d1") +
		variableBlock(2, "d2") +
		"begin_state\n0\n1\n1\nend_state\n" +
		"begin_goal\n1\n0 0\nend_goal\n" +
		"begin_rule\n1\n2 0\n1 1 0\nend_rule\n" +
		"begin_rule\n1\n1 0\n2 1 0\nend_rule\n"
	_, err := Stratify(mustParse(t, doc))

	var cycleErr *CycleError
	require.True(t, errors.As(err, &cycleErr))
	assert.Contains(t, cycleErr.Error(), "cyclic axiom dependency")
	assert.Equal(t, []int{1, 2}, cycleErr.Heads)
}

func TestNoRulesYieldsEmptyStrata(t *testing.T) {
	doc := variableBlock(0, "x") +
		"begin_state\n0\nend_state\n" +
		"begin_goal\n1\n0 0\nend_goal\n"
	strata, err := Stratify(mustParse(t, doc))
	require.NoError(t, err)
	assert.Empty(t, strata.Order())
}
