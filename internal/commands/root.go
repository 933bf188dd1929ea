package commands

import (
	"github.com/spf13/cobra"

	"github.com/cardwatch-dev/cardwatch/internal/buildinfo"
	"github.com/cardwatch-dev/cardwatch/internal/config"
)

// NewRootCommand creates the root CLI command with all subcommands registered.
func NewRootCommand() *cobra.Command {
	var opts globalOptions

	rootCmd := &cobra.Command{
		Use:     "cardwatch",
		Short:   "Review card transactions and flag potential fraud",
		Version: buildinfo.String(),
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return config.LoadDotEnv(opts.envFile)
		},
	}

	rootCmd.PersistentFlags().StringVar(&opts.configPath, "config", "cardwatch.yaml", "path to cardwatch.yaml")
	rootCmd.PersistentFlags().StringVar(&opts.envFile, "env-file", ".env", "optional dotenv file")
	rootCmd.PersistentFlags().BoolVar(&opts.verbose, "verbose", false, "debug logging")

	rootCmd.AddCommand(newInitCommand())
	rootCmd.AddCommand(newListCommand(&opts))
	rootCmd.AddCommand(newProcessCommand(&opts))
	rootCmd.AddCommand(newExportCommand(&opts))
	rootCmd.AddCommand(newServeCommand(&opts))

	return rootCmd
}

type globalOptions struct {
	configPath string
	envFile    string
	verbose    bool
}
