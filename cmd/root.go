// Package cmd implements the ausec command tree.
package cmd

import (
	"github.com/grovetools/ausec/cli"
	"github.com/grovetools/ausec/pkg/profiling"
	"github.com/grovetools/ausec/version"
	"github.com/spf13/cobra"
)

// NewRootCmd builds the ausec command with every subcommand attached.
func NewRootCmd() *cobra.Command {
	root := cli.NewStandardCommand(
		"ausec",
		"Fetch election data from the AEC media feed",
	)
	root.Long = `Fetch election data from the AEC media feed.

ausec walks the feed server, resolves the active election, downloads the
preload bundle and the latest results bundle into a local cache, and
extracts the event, candidate and results documents from them.

Examples:
# fetch the current election and write its documents
ausec fetch --out ./data

# follow the count, serving metrics
ausec watch --interval 2m --metrics-addr :9090`

	profiler := profiling.NewCobraProfiler()
	profiler.AddFlags(root)
	root.PersistentPreRunE = profiler.PreRun
	root.PersistentPostRun = profiler.PostRun

	root.AddCommand(
		NewFetchCmd(),
		NewListCmd(),
		NewElectionsCmd(),
		NewWatchCmd(),
		NewConfigCmd(),
		NewPathsCmd(),
		cli.NewVersionCommand("ausec"),
	)

	cli.SetVersionTemplate(root, version.GetInfo())
	cli.ApplyStyledHelpRecursive(root)
	return root
}
