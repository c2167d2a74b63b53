package cmd

import (
	"runtime/debug"
	"strings"

	"github.com/spf13/cobra"
)

const parserModulePath = "github.com/smacker/go-tree-sitter"

// versionCmd represents the version command.
var versionCmd = newVersionCmd()

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print jsgooze, parser and Go versions",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			for _, line := range versionLines(debug.ReadBuildInfo()) {
				cmd.Println(line)
			}
		},
	}
}

// versionLines formats build information. Missing information is reported
// as unknown rather than failing.
func versionLines(info *debug.BuildInfo, ok bool) []string {
	if !ok || info == nil {
		return []string{"jsgooze unknown"}
	}

	version := info.Main.Version
	if version == "" {
		version = "unknown"
	}

	parser := "unknown"

	for _, dep := range info.Deps {
		if dep.Path == parserModulePath {
			parser = dep.Version
			break
		}
	}

	return []string{
		"jsgooze " + version,
		"tree-sitter " + parser,
		"go " + strings.TrimPrefix(info.GoVersion, "go"),
	}
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
