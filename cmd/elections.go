package cmd

import (
	"fmt"

	"github.com/grovetools/ausec/cli"
	"github.com/grovetools/ausec/errors"
	"github.com/grovetools/ausec/logging"
	"github.com/grovetools/ausec/pkg/listing"
	"github.com/spf13/cobra"
)

type electionsOutput struct {
	Elections []string `json:"elections"`
	Resolved  string   `json:"resolved,omitempty"`
}

func NewElectionsCmd() *cobra.Command {
	var flags sessionFlags

	cmd := &cobra.Command{
		Use:   "elections",
		Short: "Show the elections on the feed server and which one is used",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := flags.loadConfig(cmd)
			if err != nil {
				return err
			}
			lister, err := newLister(cfg)
			if err != nil {
				return err
			}
			found, err := lister.ListTree(cmd.Context())
			if err != nil {
				return err
			}

			result := electionsOutput{Elections: found.Elections()}
			resolved, err := listing.ResolveElection(found, cfg.Election)
			switch {
			case err == nil:
				result.Resolved = resolved
			case errors.Is(err, errors.ErrCodeAmbiguousElection):
				// Shown without a selection.
			default:
				return err
			}

			if cli.GetOptions(cmd).JSONOutput {
				return printJSON(cmd.OutOrStdout(), result)
			}

			pretty := logging.NewPrettyLogger().WithWriter(cmd.OutOrStdout())
			for _, id := range result.Elections {
				if id == result.Resolved {
					pretty.Item(0, id+" (selected)")
				} else {
					pretty.Item(0, id)
				}
			}
			if result.Resolved == "" {
				pretty.WarnPretty(fmt.Sprintf("%d elections on the server; pick one with --election", len(result.Elections)))
			}
			return nil
		},
	}

	flags.add(cmd, false)
	return cmd
}
