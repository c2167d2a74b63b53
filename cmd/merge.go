package cmd

import (
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"gooze.dev/pkg/jsgooze/internal/domain"
	m "gooze.dev/pkg/jsgooze/internal/model"
)

// mergeCmd represents the merge command.
var mergeCmd = newMergeCmd()

func newMergeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "merge",
		Short: "Merge sharded reports into a single directory",
		Long:  "Merge reports from shard_* subdirectories written by run --shard into the reports directory.",
		Args:  cobra.ExactArgs(0),
		RunE: func(cmd *cobra.Command, _ []string) error {
			wf, err := getWorkflow(cmd)
			if err != nil {
				return err
			}

			return wf.Merge(cmd.Context(), domain.MergeArgs{Reports: m.Path(viper.GetString(outputFlagName))})
		},
	}
}

func init() {
	rootCmd.AddCommand(mergeCmd)
}
