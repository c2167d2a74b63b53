package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"gooze.dev/pkg/jsgooze/internal/domain"
	m "gooze.dev/pkg/jsgooze/internal/model"
)

var runParallelFlag int
var runShardFlag string
var runTimeoutFlag int64

// runCmd represents the run command.
var runCmd = newRunCmd()

func newRunCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run [paths...]",
		Short: "Run mutation testing",
		Long:  runLongDescription,
		RunE: func(cmd *cobra.Command, args []string) error {
			shardIndex, totalShards, err := parseShardFlag(runShardFlag)
			if err != nil {
				return err
			}

			types, err := parseMutationTypes(viper.GetStringSlice(operatorsKey))
			if err != nil {
				return err
			}

			wf, err := getWorkflow(cmd)
			if err != nil {
				return err
			}

			return wf.Test(cmd.Context(), domain.TestArgs{
				EstimateArgs: domain.EstimateArgs{
					Paths:         parsePaths(args),
					Exclude:       viper.GetStringSlice(excludeConfigKey),
					MutationTypes: types,
				},
				Reports:         m.Path(viper.GetString(outputFlagName)),
				UseCache:        !viper.GetBool(noCacheFlagName),
				Threads:         viper.GetInt(runParallelConfigKey),
				ShardIndex:      shardIndex,
				TotalShardCount: totalShards,
				SpillDir:        viper.GetString(tempDirKey),
			})
		},
	}

	configureRunFlags(cmd)

	return cmd
}

func init() {
	rootCmd.AddCommand(runCmd)
}

func configureRunFlags(cmd *cobra.Command) {
	cmd.Flags().IntVarP(&runParallelFlag, runParallelFlagName, "p", viper.GetInt(runParallelConfigKey), "number of parallel workers for mutation testing")
	bindFlagToConfig(cmd.Flags().Lookup(runParallelFlagName), runParallelConfigKey)

	cmd.Flags().Int64Var(&runTimeoutFlag, mutationTimeoutFlagName, viper.GetInt64(mutationTimeoutKey), "seconds allowed for the test run of one mutant")
	bindFlagToConfig(cmd.Flags().Lookup(mutationTimeoutFlagName), mutationTimeoutKey)

	cmd.Flags().StringVarP(&runShardFlag, "shard", "s", "", "shard index and total shard count in the format INDEX/TOTAL (e.g., 0/3)")
}

// parseShardFlag reads INDEX/TOTAL. An empty value means a single shard.
func parseShardFlag(shard string) (int, int, error) {
	if shard == "" {
		return 0, 1, nil
	}

	var index, total int

	_, err := fmt.Sscanf(shard, "%d/%d", &index, &total)
	if err != nil || total <= 0 || index < 0 || index >= total {
		return 0, 0, fmt.Errorf("invalid shard %q: want INDEX/TOTAL with 0 <= INDEX < TOTAL", shard)
	}

	return index, total, nil
}
