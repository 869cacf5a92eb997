package root

import (
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/planning-framework/pddl2dypdl/cmd/plan"
	"github.com/planning-framework/pddl2dypdl/cmd/translate"
)

func NewRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "pddl2dypdl",
		Short: "pddl2dypdl translates PDDL planning tasks to DyPDL and plans with them",
		Long: `A translator from PDDL (via the SAS+ intermediate format) to DyPDL
state-transition models, with built-in anytime and optimal search.`,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			if debug, _ := cmd.Flags().GetBool("debug"); debug {
				logrus.SetLevel(logrus.DebugLevel)
			}
		},
	}
	rootCmd.PersistentFlags().Bool("debug", false, "enable debug logging")

	// add sub-commands
	rootCmd.AddCommand(plan.NewPlanCommand())
	rootCmd.AddCommand(translate.NewTranslateCommand())

	return rootCmd
}
