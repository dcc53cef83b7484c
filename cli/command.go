package cli

import (
	"os"

	"github.com/grovetools/ausec/config"
	"github.com/grovetools/ausec/logging"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

// CommandOptions holds the options shared by every ausec command
type CommandOptions struct {
	ConfigFile string
	Verbose    bool
	JSONOutput bool
}

// NewStandardCommand creates a new command with the standard ausec flags
func NewStandardCommand(use, short string) *cobra.Command {
	cmd := &cobra.Command{
		Use:           use,
		Short:         short,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().BoolP("verbose", "v", false, "Enable verbose logging")
	cmd.PersistentFlags().Bool("json", false, "Output in JSON format")
	cmd.PersistentFlags().StringP("config", "c", "", "Path to ausec.yml config file")

	cmd.SetHelpFunc(styledHelpFunc)

	return cmd
}

// GetOptions extracts common options from a command
func GetOptions(cmd *cobra.Command) CommandOptions {
	configFile, _ := cmd.Flags().GetString("config")
	verbose, _ := cmd.Flags().GetBool("verbose")
	jsonOutput, _ := cmd.Flags().GetBool("json")

	return CommandOptions{
		ConfigFile: configFile,
		Verbose:    verbose,
		JSONOutput: jsonOutput,
	}
}

// LoadConfig loads the configuration named by --config, or discovers one
// from the working directory. Logging is reconfigured from the result and
// --verbose lowers the level to debug.
func LoadConfig(cmd *cobra.Command) (*config.Config, error) {
	opts := GetOptions(cmd)

	var (
		cfg *config.Config
		err error
	)
	if opts.ConfigFile != "" {
		cfg, err = config.Load(opts.ConfigFile)
	} else {
		var cwd string
		cwd, err = os.Getwd()
		if err != nil {
			return nil, err
		}
		cfg, err = config.LoadFrom(cwd)
	}
	if err != nil {
		return nil, err
	}

	if err := logging.ConfigureFrom(cfg); err != nil {
		return nil, err
	}
	if opts.Verbose {
		logging.SetLevel(logrus.DebugLevel)
	}
	return cfg, nil
}
