package solver_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/planning-framework/pddl2dypdl/pkg/dypdl/solver"
	"github.com/planning-framework/pddl2dypdl/pkg/sas"
	"github.com/planning-framework/pddl2dypdl/pkg/translate"
)

// A one-robot, one-ball delivery task: pick the ball in room a, move
// to room b, drop it. var0 is the robot location (a, b), var1 the ball
// location (a, b, held).
const deliveryTask = `begin_version
3
end_version
begin_metric
0
end_metric
begin_variable
var0
-1
2
Atom at-robby(rooma)
Atom at-robby(roomb)
end_variable
begin_variable
var1
-1
3
Atom at(ball, rooma)
Atom at(ball, roomb)
Atom carry(ball)
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
pick ball rooma
1
0 0
1
0 1 0 2
1
end_operator
begin_operator
move rooma roomb
0
1
0 0 0 1
1
end_operator
begin_operator
move roomb rooma
0
1
0 0 1 0
1
end_operator
begin_operator
drop ball roomb
1
0 1
1
0 1 2 1
1
end_operator
`

func TestSearchOverTranslatedTask(t *testing.T) {
	task, err := sas.ParseTask(strings.NewReader(deliveryTask))
	require.NoError(t, err)
	model, err := translate.Translate(task)
	require.NoError(t, err)

	for name, s := range map[string]solver.Solver{
		"caasdy": solver.NewCAASDy(model),
		"cabs":   solver.NewCABS(model),
	} {
		t.Run(name, func(t *testing.T) {
			var best *solver.Solution
			for {
				solution, terminated, err := s.SearchNext()
				require.NoError(t, err)
				if solution == nil {
					break
				}
				require.False(t, solution.Infeasible)
				require.False(t, solution.TimedOut)
				best = solution
				if terminated {
					break
				}
			}
			require.NotNil(t, best)
			assert.Equal(t, 3, best.Cost)

			expected := []string{"pick ball rooma", "move rooma roomb", "drop ball roomb"}
			assert.Equal(t, expected, names(best.Transitions))
		})
	}
}
