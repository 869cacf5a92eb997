package translate_test

import (
	"errors"
	"strings"
	"testing"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/planning-framework/pddl2dypdl/pkg/dypdl"
	"github.com/planning-framework/pddl2dypdl/pkg/sas"
	"github.com/planning-framework/pddl2dypdl/pkg/translate"
)

func TestTranslate(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Translate Suite")
}

const twoVariableTask = `begin_version
3
end_version
begin_metric
0
end_metric
begin_variable
var0
-1
2
Atom a()
NegatedAtom a()
end_variable
begin_variable
var1
-1
2
Atom b()
NegatedAtom b()
end_variable
begin_state
0
0
end_state
begin_goal
1
1 1
end_goal
begin_operator
flip b
1
0 0
1
0 1 -1 1
1
end_operator
`

func parseAndTranslate(doc string) (*dypdl.Model, error) {
	task, err := sas.ParseTask(strings.NewReader(doc))
	Expect(err).ToNot(HaveOccurred())
	return translate.Translate(task)
}

var _ = Describe("Translate", func() {
	It("translates a two-variable task faithfully", func() {
		model, err := parseAndTranslate(twoVariableTask)
		Expect(err).ToNot(HaveOccurred())

		Expect(model.IntVars()).To(HaveLen(2))
		Expect(model.IntVars()[0].Name()).To(Equal("var0"))
		Expect(model.IntVars()[0].Target()).To(Equal(0))
		Expect(model.IntVars()[1].Target()).To(Equal(0))
		Expect(model.BoolStateFuns()).To(BeEmpty())
		Expect(model.Transitions()).To(HaveLen(1))

		tr := model.Transitions()[0]
		Expect(tr.Name()).To(Equal("flip b"))
		Expect(tr.Cost()).To(Equal(1))

		// precondition var0 == 0
		val, err := model.Eval(dypdl.State{0, 0})
		Expect(err).ToNot(HaveOccurred())
		Expect(tr.Applicable(val)).To(BeTrue())
		val, err = model.Eval(dypdl.State{1, 0})
		Expect(err).ToNot(HaveOccurred())
		Expect(tr.Applicable(val)).To(BeFalse())

		// effect var1 := 1
		Expect(tr.Successor(dypdl.State{0, 0})).To(Equal(dypdl.State{0, 1}))

		// base case var1 == 1
		val, err = model.Eval(dypdl.State{0, 1})
		Expect(err).ToNot(HaveOccurred())
		Expect(model.IsBase(val)).To(BeTrue())
		val, err = model.Eval(dypdl.State{0, 0})
		Expect(err).ToNot(HaveOccurred())
		Expect(model.IsBase(val)).To(BeFalse())
	})

	It("translates the same text to a structurally identical model", func() {
		first, err := parseAndTranslate(twoVariableTask)
		Expect(err).ToNot(HaveOccurred())
		second, err := parseAndTranslate(twoVariableTask)
		Expect(err).ToNot(HaveOccurred())

		Expect(second.IntVars()).To(HaveLen(len(first.IntVars())))
		for i, v := range first.IntVars() {
			Expect(second.IntVars()[i].Name()).To(Equal(v.Name()))
			Expect(second.IntVars()[i].Target()).To(Equal(v.Target()))
		}
		Expect(second.Transitions()).To(HaveLen(len(first.Transitions())))
		for i, tr := range first.Transitions() {
			Expect(second.Transitions()[i].Name()).To(Equal(tr.Name()))
			Expect(second.Transitions()[i].Cost()).To(Equal(tr.Cost()))
		}
	})

	It("refuses a task with axioms", func() {
		doc := strings.Replace(twoVariableTask, "begin_operator", `begin_rule
1
0 0
1 1 0
end_rule
begin_operator`, 1)
		_, err := parseAndTranslate(doc)

		var unsupported *translate.UnsupportedError
		Expect(errors.As(err, &unsupported)).To(BeTrue())
		Expect(unsupported.Features).To(Equal([]string{"axioms"}))
		Expect(err.Error()).To(ContainSubstring("axioms"))
	})

	It("refuses a task with conditional effects", func() {
		doc := strings.Replace(twoVariableTask, "0 1 -1 1", "1 0 0 1 -1 1", 1)
		_, err := parseAndTranslate(doc)

		var unsupported *translate.UnsupportedError
		Expect(errors.As(err, &unsupported)).To(BeTrue())
		Expect(unsupported.Features).To(Equal([]string{"conditional effects"}))
	})

	It("names every unsupported feature at once", func() {
		doc := strings.Replace(twoVariableTask, "begin_operator", `begin_rule
1
0 0
1 1 0
end_rule
begin_operator`, 1)
		doc = strings.Replace(doc, "0 1 -1 1", "1 0 0 1 -1 1", 1)
		_, err := parseAndTranslate(doc)

		var unsupported *translate.UnsupportedError
		Expect(errors.As(err, &unsupported)).To(BeTrue())
		Expect(unsupported.Features).To(Equal([]string{"axioms", "conditional effects"}))
	})

	It("keeps only explicitly constrained preconditions", func() {
		// the effect pre value of var0 is don't-care: no precondition
		// may be invented for it
		doc := strings.Replace(twoVariableTask, `1
0 0
1
0 1 -1 1`, `0
2
0 0 -1 1
0 1 -1 1`, 1)
		model, err := parseAndTranslate(doc)
		Expect(err).ToNot(HaveOccurred())

		tr := model.Transitions()[0]
		for a := 0; a < 2; a++ {
			for b := 0; b < 2; b++ {
				val, err := model.Eval(dypdl.State{a, b})
				Expect(err).ToNot(HaveOccurred())
				Expect(tr.Applicable(val)).To(BeTrue())
			}
		}
		Expect(tr.Successor(dypdl.State{0, 0})).To(Equal(dypdl.State{1, 1}))
	})
})
