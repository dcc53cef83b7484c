package cmd

import (
	"os"

	"github.com/grovetools/ausec/config"
	"github.com/grovetools/ausec/pkg/paths"
	"github.com/spf13/cobra"
)

// PathsOutput lists the directories ausec reads from and writes to.
type PathsOutput struct {
	ConfigDir     string `json:"config_dir"`
	GlobalConfig  string `json:"global_config"`
	ProjectConfig string `json:"project_config,omitempty"`
	CacheDir      string `json:"cache_dir"`
	StateDir      string `json:"state_dir"`
}

func NewPathsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "paths",
		Short: "Print the paths used by ausec as JSON",
		Long: `Print the paths used by ausec as JSON.

- config_dir: directory of the global ausec.yml
- global_config: the global ausec.yml itself
- project_config: the project config found from the working directory, if any
- cache_dir: default download cache (AUSEC_HOME, XDG_CACHE_HOME or the
  platform cache directory)
- state_dir: what watch remembers between runs`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			output := PathsOutput{
				ConfigDir:    paths.ConfigDir(),
				GlobalConfig: paths.GlobalConfigPath(),
				CacheDir:     paths.CacheDir(),
				StateDir:     paths.StateDir(),
			}
			if cwd, err := os.Getwd(); err == nil {
				output.ProjectConfig = config.FindConfigFile(cwd)
			}
			return printJSON(cmd.OutOrStdout(), output)
		},
	}

	return cmd
}
