package cmd

import (
	"fmt"
	"os"

	"github.com/grovetools/ausec/cli"
	"github.com/grovetools/ausec/config"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

func NewConfigCmd() *cobra.Command {
	var schema bool

	cmd := &cobra.Command{
		Use:   "config",
		Short: "Display the effective configuration",
		Long: `Display the effective configuration.

The configuration is built by merging layers:
1. Global config (~/.config/ausec/ausec.yml)
2. Project config (nearest ausec.yml, .ausec.yml or ausec.toml)
3. AUSEC_ELECTION, AUSEC_CACHE_DIR and AUSEC_FTP_HOST

With --schema the JSON Schema accepted for config files is printed instead.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()

			if schema {
				data, err := config.GenerateSchema()
				if err != nil {
					return err
				}
				fmt.Fprintln(out, string(data))
				return nil
			}

			cfg, err := cli.LoadConfig(cmd)
			if err != nil {
				return err
			}

			if cli.GetOptions(cmd).JSONOutput {
				return printJSON(out, struct {
					*config.Config
					Extensions map[string]interface{} `json:"extensions,omitempty"`
				}{cfg, cfg.Extensions})
			}

			if source := configSource(cmd); source != "" {
				fmt.Fprintf(out, "# Source: %s\n", source)
			}
			data, err := yaml.Marshal(cfg)
			if err != nil {
				return fmt.Errorf("failed to marshal configuration: %w", err)
			}
			fmt.Fprint(out, string(data))
			return nil
		},
	}

	cmd.Flags().BoolVar(&schema, "schema", false, "Print the JSON Schema for config files")
	return cmd
}

func configSource(cmd *cobra.Command) string {
	if f := cli.GetOptions(cmd).ConfigFile; f != "" {
		return f
	}
	cwd, err := os.Getwd()
	if err != nil {
		return ""
	}
	return config.FindConfigFile(cwd)
}
