package cmd

import (
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"gooze.dev/pkg/jsgooze/internal/domain"
)

// listCmd represents the list command.
var listCmd = newListCmd()

func newListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list [paths...]",
		Short: "List source files and mutation counts",
		Long:  listLongDescription,
		RunE: func(cmd *cobra.Command, args []string) error {
			types, err := parseMutationTypes(viper.GetStringSlice(operatorsKey))
			if err != nil {
				return err
			}

			wf, err := getWorkflow(cmd)
			if err != nil {
				return err
			}

			return wf.Estimate(cmd.Context(), domain.EstimateArgs{
				Paths:         parsePaths(args),
				Exclude:       viper.GetStringSlice(excludeConfigKey),
				MutationTypes: types,
			})
		},
	}
}

func init() {
	rootCmd.AddCommand(listCmd)
}
