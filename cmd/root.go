// Package cmd provides the root command and CLI setup for jsgooze.
package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"gooze.dev/pkg/jsgooze/internal/adapter"
	"gooze.dev/pkg/jsgooze/internal/controller"
	"gooze.dev/pkg/jsgooze/internal/domain"
	m "gooze.dev/pkg/jsgooze/internal/model"
)

// workflow is built on first use from the resolved configuration. Tests
// replace it before executing a command.
var workflow domain.Workflow

// reportsOutputDirFlag is a root-level flag shared by commands that read/write reports.
var reportsOutputDirFlag string

// noCacheFlag disables incremental caching when set.
var noCacheFlag bool

// excludePatterns is a root-level flag that filters files for applicable commands.
var excludePatterns []string

var verboseFlag bool
var logFileFlag string

const pathPatternsHelp = `Supports path patterns:
  - ./...          recursively scan current directory
  - ./src/...      recursively scan src directory
  - ./src ./lib    scan multiple directories (not recursive)
  - ./src/app.js   a single file`

const rootLongDescription = `jsgooze is a mutation testing tool for JavaScript and TypeScript. It
introduces small changes (mutations) into your sources and runs your test
suite against each of them to show which changes your tests do not catch.

` + pathPatternsHelp

const runLongDescription = `Run mutation testing for the given paths (default: ./...).

` + pathPatternsHelp

const listLongDescription = `List source files and the number of applicable mutations.

` + pathPatternsHelp

// rootCmd represents the base command when called without any subcommands.
var rootCmd = newRootCmd()

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "jsgooze",
		Short:         "JavaScript mutation testing tool",
		Long:          rootLongDescription,
		SilenceUsage:  true,
		SilenceErrors: false,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			configureLogger(logFileFlag, verboseFlag)
			return nil
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			return cmd.Help()
		},
	}

	configureRootFlags(cmd)

	return cmd
}

func configureRootFlags(cmd *cobra.Command) {
	cmd.PersistentFlags().
		StringVarP(
			&reportsOutputDirFlag, outputFlagName, "o",
			viper.GetString(outputFlagName),
			"output directory for mutation testing reports",
		)
	bindFlagToConfig(cmd.PersistentFlags().Lookup(outputFlagName), outputFlagName)

	cmd.PersistentFlags().BoolVar(&noCacheFlag, noCacheFlagName, viper.GetBool(noCacheFlagName), "disable cached incremental runs (re-test everything)")
	bindFlagToConfig(cmd.PersistentFlags().Lookup(noCacheFlagName), noCacheFlagName)

	cmd.PersistentFlags().StringArrayVarP(&excludePatterns, excludeFlagName, "x", viper.GetStringSlice(excludeConfigKey), "exclude files matching regex (can be repeated)")
	bindFlagToConfig(cmd.PersistentFlags().Lookup(excludeFlagName), excludeConfigKey)

	cmd.PersistentFlags().StringSlice(operatorFlagName, viper.GetStringSlice(operatorsKey), "mutation operators to apply")
	bindFlagToConfig(cmd.PersistentFlags().Lookup(operatorFlagName), operatorsKey)

	cmd.PersistentFlags().BoolVarP(&verboseFlag, verboseFlagName, "v", false, "log at debug level")
	cmd.PersistentFlags().StringVar(&logFileFlag, logFileFlagName, "", "log file path (default from log.filename)")
}

// bindFlagToConfig wires a Cobra flag to a Viper key so config/env values feed the flag.
func bindFlagToConfig(flag *pflag.Flag, key string) {
	if flag == nil {
		cobra.CheckErr(fmt.Errorf("flag for config key %q not found", key))
		return
	}

	cobra.CheckErr(viper.BindPFlag(key, flag))
}

// getWorkflow returns the configured workflow, building it on first use.
func getWorkflow(cmd *cobra.Command) (domain.Workflow, error) {
	if workflow != nil {
		return workflow, nil
	}

	wf, err := buildWorkflow(cmd)
	if err != nil {
		return nil, err
	}

	workflow = wf

	return workflow, nil
}

// buildWorkflow wires adapters from the resolved configuration.
func buildWorkflow(cmd *cobra.Command) (domain.Workflow, error) {
	jsFileAdapter, err := adapter.NewLocalJSFileAdapter(viper.GetStringSlice(pluginsKey))
	if err != nil {
		return nil, fmt.Errorf("configure parser: %w", err)
	}

	workDir, err := projectRoot(cmd.Context())
	if err != nil {
		return nil, err
	}

	fsAdapter := adapter.NewLocalSourceFSAdapter()
	tempAdapter := adapter.NewLocalTempFileAdapter(viper.GetString(tempDirKey))
	testAdapter := adapter.NewLocalTestRunnerAdapter(workDir, viper.GetStringSlice(testCommandKey), 0)
	collector := domain.NewNodeCollector(viper.GetStringSlice(excludedExprKey))

	ui := controller.NewUI(cmd, controller.IsTTY(cmd.OutOrStdout()))
	orchestrator := domain.NewOrchestrator(fsAdapter, tempAdapter, testAdapter, mutationTimeout())
	mutagen := domain.NewMutagen(jsFileAdapter, fsAdapter, collector)

	return domain.NewWorkflow(fsAdapter, adapter.NewReportStore(), ui, orchestrator, mutagen), nil
}

// projectRoot is the nearest directory holding a package.json, or the
// working directory when there is none.
func projectRoot(ctx context.Context) (string, error) {
	cwd, err := os.Getwd()
	if err != nil {
		return "", fmt.Errorf("get working directory: %w", err)
	}

	root, err := adapter.NewLocalSourceFSAdapter().FindProjectRoot(ctx, m.Path(cwd))
	if err != nil || root == "" {
		return cwd, nil //nolint:nilerr // no package.json means the cwd is the project
	}

	return string(root), nil
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	err := rootCmd.ExecuteContext(ctx)
	if err != nil {
		stop()
		os.Exit(1)
	}
}

func parsePaths(args []string) []m.Path {
	if len(args) == 0 {
		return []m.Path{"./..."}
	}

	paths := make([]m.Path, 0, len(args))
	for _, arg := range args {
		paths = append(paths, m.Path(arg))
	}

	return paths
}
