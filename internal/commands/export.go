package commands

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/cardwatch-dev/cardwatch/internal/batch"
	"github.com/cardwatch-dev/cardwatch/internal/export"
	"github.com/cardwatch-dev/cardwatch/internal/model"
	"github.com/cardwatch-dev/cardwatch/internal/reviewlog"
)

func newExportCommand(opts *globalOptions) *cobra.Command {
	var out string
	var ids []string

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export flagged and review transactions from the review log to XLSX",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := loadApp(opts, newLogger(opts.verbose, slog.LevelWarn))
			if err != nil {
				return err
			}

			entries, err := reviewlog.Read(a.logDir())
			if err != nil {
				return err
			}
			rows := exportRows(a.batch, filterEntries(reviewlog.Latest(entries), ids))

			f, err := os.Create(out)
			if err != nil {
				return fmt.Errorf("creating %s: %w", out, err)
			}
			if err := export.WriteXLSX(f, rows); err != nil {
				f.Close()
				return err
			}
			if err := f.Close(); err != nil {
				return fmt.Errorf("writing %s: %w", out, err)
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Exported %d transactions to %s\n", len(rows), out)
			return nil
		},
	}

	cmd.Flags().StringVarP(&out, "out", "o", "flagged.xlsx", "output file")
	cmd.Flags().StringSliceVar(&ids, "ids", nil, "only export these transaction ids")
	return cmd
}

// exportRows joins the latest log entry per transaction with the batch,
// keeping only outcomes that need attention. Entries for transactions no
// longer in the batch keep their log fields only.
func exportRows(b *batch.Batch, entries []reviewlog.Entry) []export.Row {
	var rows []export.Row
	for _, e := range entries {
		o := model.Outcome{
			ReviewID:    e.ReviewID,
			Transaction: model.Transaction{ID: e.TransactionID},
			Score:       model.Score{Prediction: e.Prediction, Probability: e.Probability},
			Status:      e.Status,
			Explanation: e.Explanation,
			Provider:    e.Provider,
			ProcessedAt: e.Timestamp,
		}
		if !o.NeedsAttention() {
			continue
		}
		if txn, err := b.Get(e.TransactionID); err == nil {
			o.Transaction = txn
		}
		rows = append(rows, export.FromOutcome(o))
	}
	return rows
}

func filterEntries(entries []reviewlog.Entry, ids []string) []reviewlog.Entry {
	if len(ids) == 0 {
		return entries
	}
	keep := make(map[string]bool, len(ids))
	for _, id := range ids {
		keep[id] = true
	}
	var out []reviewlog.Entry
	for _, e := range entries {
		if keep[e.TransactionID] {
			out = append(out, e)
		}
	}
	return out
}
