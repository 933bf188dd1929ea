package commands

import (
	"fmt"
	"io"
	"log/slog"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/cardwatch-dev/cardwatch/internal/importer"
	"github.com/cardwatch-dev/cardwatch/internal/model"
)

func newListCommand(opts *globalOptions) *cobra.Command {
	var sortKey, sortDir string
	var flagged bool
	var files bool

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List transactions in the configured batch",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if files {
				return listFiles(cmd.OutOrStdout(), opts)
			}

			cfg, err := model.ParseSortConfig(sortKey, sortDir)
			if err != nil {
				return err
			}

			a, err := loadApp(opts, newLogger(opts.verbose, slog.LevelWarn))
			if err != nil {
				return err
			}

			txns := a.batch.Sorted(cfg)
			if flagged {
				txns = labeledFraud(txns)
			}
			return printTransactions(cmd.OutOrStdout(), txns)
		},
	}

	cmd.Flags().StringVar(&sortKey, "sort", string(model.DefaultSort.Key), "sort key (date or amount)")
	cmd.Flags().StringVar(&sortDir, "dir", string(model.DefaultSort.Direction), "sort direction (asc or desc)")
	cmd.Flags().BoolVar(&flagged, "labeled-fraud", false, "only show rows the source labels as fraud")
	cmd.Flags().BoolVar(&files, "files", false, "list CSV files in the data directory instead")

	return cmd
}

func listFiles(w io.Writer, opts *globalOptions) error {
	a, err := loadConfig(opts, newLogger(opts.verbose, slog.LevelWarn))
	if err != nil {
		return err
	}
	dir := a.dataDir()
	found, err := importer.Scan(dir)
	if err != nil {
		return err
	}
	if len(found) == 0 {
		fmt.Fprintf(w, "No CSV files in %s\n", dir)
		return nil
	}

	current := a.path(a.cfg.Data.Transactions)
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "FILE\tSIZE\t")
	for _, f := range found {
		marker := ""
		if f.Path == current {
			marker = "(configured)"
		}
		fmt.Fprintf(tw, "%s\t%d\t%s\n", f.Name, f.Size, marker)
	}
	return tw.Flush()
}

func labeledFraud(txns []model.Transaction) []model.Transaction {
	var out []model.Transaction
	for _, t := range txns {
		if t.IsLabeledFraud() {
			out = append(out, t)
		}
	}
	return out
}

func printTransactions(w io.Writer, txns []model.Transaction) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tDATE\tAMOUNT\tMERCHANT\tCARD\tLABEL")
	for _, t := range txns {
		label := "-"
		if t.Fraud != nil {
			label = "legit"
			if *t.Fraud {
				label = "fraud"
			}
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\n",
			t.ID, t.Date.Format(model.DateLayout), t.Amount.StringFixed(2), t.Merchant, t.MaskedCard(), label)
	}
	return tw.Flush()
}
