package cmd

import (
	"errors"
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var initForceFlag bool

// initCmd represents the init command.
var initCmd = newInitCmd()

func newInitCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "init",
		Short: "Write jsgooze.yaml with the current settings",
		Long: `Write jsgooze.yaml to the working directory. It holds the defaults merged
with any JSGOOZE_* environment variables and flags, ready to be edited.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			path := filepath.Join(configFolderPath, configFileName)

			if err := writeConfig(path, initForceFlag); err != nil {
				return err
			}

			cmd.Println("wrote", path)

			return nil
		},
	}

	cmd.Flags().BoolVarP(&initForceFlag, "force", "f", false, "overwrite an existing config file")

	return cmd
}

func writeConfig(path string, force bool) error {
	if force {
		if err := viper.WriteConfigAs(path); err != nil {
			return fmt.Errorf("write config %s: %w", path, err)
		}

		return nil
	}

	err := viper.SafeWriteConfigAs(path)

	var exists viper.ConfigFileAlreadyExistsError
	if errors.As(err, &exists) {
		return fmt.Errorf("%s already exists, use --force to overwrite it", path)
	}

	if err != nil {
		return fmt.Errorf("write config %s: %w", path, err)
	}

	return nil
}

func init() {
	rootCmd.AddCommand(initCmd)
}
