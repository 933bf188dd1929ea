package commands

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/cardwatch-dev/cardwatch/internal/config"
	"github.com/cardwatch-dev/cardwatch/internal/importer"
)

func newInitCommand() *cobra.Command {
	var scorerURL string
	var format string
	var force bool

	cmd := &cobra.Command{
		Use:   "init [directory]",
		Short: "Initialize a new cardwatch project",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := "."
			if len(args) > 0 {
				dir = args[0]
			}

			absDir, err := filepath.Abs(dir)
			if err != nil {
				return fmt.Errorf("resolving path: %w", err)
			}

			return runInit(cmd, absDir, scorerURL, format, force)
		},
	}

	cmd.Flags().StringVar(&scorerURL, "scorer-url", "", "fraud scoring endpoint (default from config)")
	cmd.Flags().StringVar(&format, "format", "kaggle", "transaction file format")
	cmd.Flags().BoolVar(&force, "force", false, "overwrite an existing cardwatch.yaml")

	return cmd
}

func runInit(cmd *cobra.Command, dir, scorerURL, format string, force bool) error {
	if importer.DefaultRegistry().Get(format) == nil {
		return fmt.Errorf("unknown transaction format %q", format)
	}

	configPath := filepath.Join(dir, "cardwatch.yaml")
	if _, err := os.Stat(configPath); err == nil && !force {
		return errors.New("cardwatch.yaml already exists (use --force to overwrite)")
	}

	cfg := config.Default()
	cfg.Data.Format = format
	if scorerURL != "" {
		cfg.Scorer.URL = scorerURL
	}

	for _, d := range []string{filepath.Dir(cfg.Data.Transactions), cfg.Review.LogDir} {
		if err := os.MkdirAll(filepath.Join(dir, d), 0o755); err != nil {
			return fmt.Errorf("creating directory %s: %w", d, err)
		}
	}

	if err := config.Save(configPath, cfg); err != nil {
		return err
	}

	gitignore := "logs/\n.env\n*.xlsx\n"
	if err := os.WriteFile(filepath.Join(dir, ".gitignore"), []byte(gitignore), 0o644); err != nil {
		return fmt.Errorf("writing .gitignore: %w", err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Initialized cardwatch project at %s\n", dir)
	fmt.Fprintf(cmd.OutOrStdout(), "Place your transactions at %s\n", filepath.Join(dir, cfg.Data.Transactions))
	return nil
}
