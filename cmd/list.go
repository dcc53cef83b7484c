package cmd

import (
	"fmt"
	"strings"

	"github.com/grovetools/ausec/cli"
	"github.com/grovetools/ausec/config"
	"github.com/grovetools/ausec/errors"
	"github.com/grovetools/ausec/logging"
	"github.com/grovetools/ausec/pkg/archive"
	"github.com/grovetools/ausec/pkg/cache"
	"github.com/grovetools/ausec/pkg/listing"
	"github.com/grovetools/ausec/pkg/loader"
	"github.com/spf13/cobra"
)

// candidatesOutput is the --json form of list --dir.
type candidatesOutput struct {
	Dir     string   `json:"dir"`
	Suffix  string   `json:"suffix"`
	Matches []string `json:"matches"`
	Latest  string   `json:"latest,omitempty"`
}

// cachedBundle is one entry of list --cached.
type cachedBundle struct {
	Name    string   `json:"name"`
	Path    string   `json:"path"`
	Members []string `json:"members,omitempty"`
}

func NewListCmd() *cobra.Command {
	var (
		tree    bool
		cached  bool
		members  bool
		dir      string
		suffix   string
		cacheDir string
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List every path on the feed server",
		Long: `List every path on the feed server.

With --tree the listing is shown as an indented tree, rooted at --dir when
given. With --dir alone the entries a selection over that directory would
consider are shown, along with the one it would pick. With --cached the
local cache is listed instead and the server is not contacted; --members
adds the files inside each bundle.

Examples:
ausec list --tree
ausec list --tree --dir /27966/Standard
ausec list --dir /27966/Standard/Light --suffix .zip
ausec list --cached --members`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := cli.LoadConfig(cmd)
			if err != nil {
				return err
			}
			if cacheDir != "" {
				cfg.CacheDir = cacheDir
			}
			if cached {
				return listCached(cmd, cfg, members)
			}
			if members {
				return errors.InvalidInput("--members requires --cached")
			}

			lister, err := newLister(cfg)
			if err != nil {
				return err
			}
			found, err := lister.ListTree(cmd.Context())
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			jsonOutput := cli.GetOptions(cmd).JSONOutput

			switch {
			case tree:
				root := listing.BuildTree(found)
				if dir != "" {
					if root = listing.FindByPath(root, dir); root == nil {
						return errors.InvalidInput(fmt.Sprintf("%s is not on the server", dir))
					}
				}
				if jsonOutput {
					return printJSON(out, root)
				}
				listing.Print(out, root)

			case dir != "":
				result := candidatesOutput{Dir: dir, Suffix: suffix, Matches: found.Matches(dir, suffix)}
				if len(result.Matches) > 0 {
					result.Latest, _ = listing.SelectLatest(logging.NewLogger("list"), found, dir, "", suffix)
				}
				if jsonOutput {
					return printJSON(out, result)
				}
				pretty := logging.NewPrettyLogger().WithWriter(out)
				if len(result.Matches) == 0 {
					pretty.WarnPretty(fmt.Sprintf("Nothing under %s ends in '%s'", dir, suffix))
					return nil
				}
				for _, m := range result.Matches {
					pretty.Item(0, m)
				}
				pretty.Field("Latest", result.Latest)

			default:
				if jsonOutput {
					return printJSON(out, found)
				}
				for _, p := range found {
					fmt.Fprintln(out, p)
				}
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&tree, "tree", false, "Show the listing as a tree")
	cmd.Flags().BoolVar(&cached, "cached", false, "List the bundles in the local cache")
	cmd.Flags().BoolVar(&members, "members", false, "With --cached, list the files inside each bundle")
	cmd.Flags().StringVar(&dir, "dir", "", "Root the tree here, or show the candidates a selection over it sees")
	cmd.Flags().StringVar(&suffix, "suffix", ".zip", "File suffix used with --dir")
	cmd.Flags().StringVar(&cacheDir, "cache-dir", "", "Cache directory used with --cached")
	return cmd
}

// listCached prints the bundles already downloaded, optionally with the
// members of each zip.
func listCached(cmd *cobra.Command, cfg *config.Config, members bool) error {
	c := cache.New(cfg.ResolvedCacheDir(), nil)
	names, err := c.Files()
	if err != nil {
		return fmt.Errorf("failed to read cache directory: %w", err)
	}

	bundles := make([]cachedBundle, 0, len(names))
	for _, name := range names {
		b := cachedBundle{Name: name, Path: c.Path(name)}
		if members && strings.HasSuffix(name, loader.BundleSuffix) {
			if b.Members, err = archive.Members(b.Path); err != nil {
				return err
			}
		}
		bundles = append(bundles, b)
	}

	out := cmd.OutOrStdout()
	if cli.GetOptions(cmd).JSONOutput {
		return printJSON(out, bundles)
	}

	pretty := logging.NewPrettyLogger().WithWriter(out)
	if len(bundles) == 0 {
		pretty.Muted(fmt.Sprintf("Nothing cached in %s", c.Dir()))
		return nil
	}
	for _, b := range bundles {
		pretty.Item(0, b.Name)
		for _, m := range b.Members {
			pretty.Item(1, m)
		}
	}
	return nil
}
