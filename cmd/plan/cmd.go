package plan

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/planning-framework/pddl2dypdl/internal/ground"
	planfile "github.com/planning-framework/pddl2dypdl/internal/plan"
	"github.com/planning-framework/pddl2dypdl/pkg/dypdl"
	"github.com/planning-framework/pddl2dypdl/pkg/dypdl/solver"
	"github.com/planning-framework/pddl2dypdl/pkg/sas"
	"github.com/planning-framework/pddl2dypdl/pkg/translate"
)

const defaultTranslator = "ext/translate/translate.py"

func NewPlanCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "plan (<domain.pddl> <problem.pddl> | <task.sas>)",
		Short: "Translates a planning task to DyPDL and searches for plans",
		Long: `Translates a planning task to DyPDL and searches for plans. For instance:

# plan with PDDL input
pddl2dypdl plan ext/blocks/domain.pddl ext/blocks/p01.pddl

# plan with SAS+ input
pddl2dypdl plan ext/blocks/p01.sas

Improving plans are written to <plan-file>.<n> as they are found; the
best plan is written to <plan-file> when the search ends.`,
		Args: cobra.RangeArgs(1, 2),
		PreRunE: func(cmd *cobra.Command, args []string) error {
			for _, path := range args {
				if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
					return fmt.Errorf("file (%s) not found", path)
				}
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, args)
		},
	}
	cmd.Flags().String("plan-file", "sas_plan", "path to the output plan file")
	cmd.Flags().StringP("solver", "s", "cabs", "DyPDL solver (cabs or caasdy)")
	cmd.Flags().IntP("timeout", "t", 1800, "time limit for the solver in seconds")
	cmd.Flags().Bool("validate", false, "validate the output plan with the VAL tool")
	cmd.Flags().String("translator", defaultTranslator, "path to the PDDL-to-SAS+ grounding tool")
	return cmd
}

func run(cmd *cobra.Command, args []string) error {
	planFile, _ := cmd.Flags().GetString("plan-file")
	solverName, _ := cmd.Flags().GetString("solver")
	timeout, _ := cmd.Flags().GetInt("timeout")
	validate, _ := cmd.Flags().GetBool("validate")
	translator, _ := cmd.Flags().GetString("translator")

	var sasText string
	if strings.HasSuffix(args[0], ".sas") {
		data, err := os.ReadFile(args[0])
		if err != nil {
			return err
		}
		sasText = strings.TrimSpace(string(data))
		logrus.Infof("read SAS+ task from %s", args[0])
		if len(args) == 2 {
			logrus.Warn("ignoring second argument, not needed for SAS+ input")
		}
		if validate {
			logrus.Warn("plan validation is not supported for SAS+ input, switching off")
			validate = false
		}
	} else {
		if len(args) != 2 {
			return fmt.Errorf("PDDL input requires a domain and a problem file")
		}
		finish := phase("grounding PDDL to SAS+")
		var err error
		sasText, err = ground.Ground(cmd.Context(), translator, args[0], args[1])
		if err != nil {
			return err
		}
		finish()
		logrus.Infof("read domain PDDL from %s", args[0])
		logrus.Infof("read problem PDDL from %s", args[1])
	}
	logrus.Infof("timeout: %ds", timeout)

	finish := phase("translating SAS+ to DyPDL")
	task, err := sas.ParseTask(strings.NewReader(sasText))
	if err != nil {
		return err
	}
	model, err := translate.Translate(task)
	if err != nil {
		return err
	}
	finish()

	timeLimit := solver.WithTimeLimit(time.Duration(timeout) * time.Second)
	var search solver.Solver
	switch solverName {
	case "cabs":
		search = solver.NewCABS(model, timeLimit)
	case "caasdy":
		search = solver.NewCAASDy(model, timeLimit)
	default:
		return fmt.Errorf("unknown solver %q", solverName)
	}

	logrus.Info("started solving DyPDL problem...")
	start := time.Now()
	var best []*dypdl.Transition
	plansFound := 0
search:
	for {
		solution, terminated, err := search.SearchNext()
		if err != nil {
			return err
		}
		if solution == nil {
			break
		}
		switch {
		case solution.TimedOut:
			logrus.Warn("search timed out")
			break search
		case solution.Infeasible:
			logrus.Warn("search found no solution")
			break search
		default:
			logrus.Info("plan found!")
			logrus.Infof("plan cost: %d", solution.Cost)
			logrus.Infof("expanded: %d", solution.Expanded)
			logrus.Infof("generated: %d", solution.Generated)
			logrus.Infof("planner time: %s", solution.Time.Round(time.Millisecond))

			intermediate := fmt.Sprintf("%s.%d", planFile, plansFound)
			logrus.Infof("writing intermediate plan to %s ...", intermediate)
			if err := planfile.Write(intermediate, solution.Transitions); err != nil {
				return err
			}
			best = solution.Transitions
			plansFound++
			if !terminated {
				logrus.Info("continuing search...")
			}
		}
		if terminated {
			logrus.Info("proved optimality.")
			break
		}
	}
	if plansFound > 0 {
		logrus.Infof("search completed in %s", time.Since(start).Round(time.Millisecond))
	}

	if plansFound == 0 {
		logrus.Info("no plan found!")
		logrus.Info("done.")
		return nil
	}

	logrus.Infof("writing final plan to %s ...", planFile)
	if err := planfile.Write(planFile, best); err != nil {
		return err
	}

	if validate {
		if !planfile.ValidatorAvailable() {
			logrus.Info("the command `validate` from VAL was not found in path, skipping plan validation")
		} else {
			finish := phase("validating plan")
			output, err := planfile.Validate(cmd.Context(), args[0], args[1], planFile)
			logrus.Infof("validation output:\n%s", output)
			if err != nil {
				logrus.Error("INVALID PLAN")
				return err
			}
			finish()
		}
	}

	logrus.Info("done.")
	return nil
}

// phase logs the start of a pipeline phase and returns a func that
// logs its duration.
func phase(description string) func() {
	logrus.Infof("started %s...", description)
	start := time.Now()
	return func() {
		logrus.Infof("finished %s in %s", description, time.Since(start).Round(time.Millisecond))
	}
}
