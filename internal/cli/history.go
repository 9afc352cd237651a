package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"
)

// NewHistoryCommand creates the history command.
func NewHistoryCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history <account-id>",
		Short: "Show an account's transactions, newest first",
		Long: `Show every transaction the account sent or received, newest first.
Failed and still-queued attempts are part of the record.

Example:
  paisa history rahul-kumar`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runHistory(rootOpts, cmd, args[0])
		},
	}
	return cmd
}

func runHistory(opts *RootOptions, cmd *cobra.Command, accountID string) error {
	a, err := openApp(cmd.Context(), opts)
	if err != nil {
		return err
	}
	defer a.Close()

	f := &OutputFormatter{Format: opts.Format, Writer: cmd.OutOrStdout(), Verbose: opts.Verbose}

	history, err := a.service.History(cmd.Context(), accountID)
	if err != nil {
		f.Fail(err)
		return domainExit("history lookup failed", err)
	}

	return f.JSON(history, func(w io.Writer) {
		if len(history) == 0 {
			fmt.Fprintln(w, "no transactions")
			return
		}
		for _, tx := range history {
			direction := "->"
			counterparty := tx.ReceiverID
			if tx.ReceiverID == accountID {
				direction = "<-"
				counterparty = tx.SenderID
			}
			fmt.Fprintf(w, "%4d  %s %s %-20s %10s  %-12s %s\n",
				tx.Seq, tx.CreatedAt.Format("2006-01-02 15:04"), direction,
				counterparty, tx.Amount, tx.Status, tx.Description)
		}
	})
}
