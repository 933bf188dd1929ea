package commands

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/cardwatch-dev/cardwatch/internal/model"
)

func newProcessCommand(opts *globalOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "process <transaction-id>...",
		Short: "Score transactions and explain ambiguous ones",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := loadApp(opts, newLogger(opts.verbose, slog.LevelWarn))
			if err != nil {
				return err
			}
			defer a.Close()

			// Resolve every id before scoring anything.
			txns := make([]model.Transaction, 0, len(args))
			for _, id := range args {
				txn, err := a.batch.Get(id)
				if err != nil {
					return err
				}
				txns = append(txns, txn)
			}

			reviews, err := a.reviewService(cmd.Context())
			if err != nil {
				return err
			}

			for _, txn := range txns {
				o, err := reviews.Process(cmd.Context(), txn)
				if err != nil {
					return fmt.Errorf("there was an error processing transaction %s: %w", txn.ID, err)
				}
				printOutcome(cmd.OutOrStdout(), o)
			}
			return nil
		},
	}
	return cmd
}

func printOutcome(w io.Writer, o model.Outcome) {
	t := o.Transaction
	fmt.Fprintf(w, "Transaction %s (%s %s, card %s)\n", t.ID, t.Amount.StringFixed(2), t.Merchant, t.MaskedCard())
	fmt.Fprintf(w, "  Status:      %s\n", o.Status)
	fmt.Fprintf(w, "  Probability: %.4f\n", o.Score.Probability)
	switch o.Status {
	case model.StatusApproved:
		fmt.Fprintln(w, "  Transaction has been successfully processed.")
	case model.StatusFlagged:
		fmt.Fprintln(w, "  Transaction was flagged as fraudulent.")
	case model.StatusReview:
		if o.Explanation == "" {
			fmt.Fprintln(w, "  Needs review. No explanation is available.")
			return
		}
		fmt.Fprintf(w, "  Needs review. Explanation (%s):\n", o.Provider)
		fmt.Fprintf(w, "%s\n", o.Explanation)
	}
}
