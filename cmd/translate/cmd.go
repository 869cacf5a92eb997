package translate

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/planning-framework/pddl2dypdl/pkg/sas"
	pkgtranslate "github.com/planning-framework/pddl2dypdl/pkg/translate"
)

func NewTranslateCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "translate <task.sas>",
		Short: "Translates a SAS+ task to a DyPDL model and reports its shape",
		Long: `Translates a SAS+ task to a DyPDL model without solving it, then
prints the model's shape. Useful for inspecting what a task encodes to
and for checking whether a task falls inside the supported subset.`,
		Args: cobra.ExactArgs(1),
		PreRunE: func(cmd *cobra.Command, args []string) error {
			if _, err := os.Stat(args[0]); errors.Is(err, os.ErrNotExist) {
				return fmt.Errorf("file (%s) not found", args[0])
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(args[0])
		},
	}
}

func run(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	task, err := sas.ParseTask(strings.NewReader(strings.TrimSpace(string(data))))
	if err != nil {
		return fmt.Errorf("parsing SAS+ task (%s): %w", path, err)
	}
	model, err := pkgtranslate.Translate(task)
	if err != nil {
		return fmt.Errorf("translating SAS+ task (%s): %w", path, err)
	}

	fmt.Printf("state variables: %d\n", len(model.IntVars()))
	fmt.Printf("state functions: %d\n", len(model.BoolStateFuns()))
	fmt.Printf("transitions:     %d\n", len(model.Transitions()))
	return nil
}
