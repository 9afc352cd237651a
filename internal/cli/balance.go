package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/paisapp/paisa/internal/service"
)

// NewBalanceCommand creates the balance command.
func NewBalanceCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "balance [account-id]",
		Short: "Show account balances",
		Long: `Show the primary and emergency balances of one account, or of every
account when no id is given.

Example:
  paisa balance rahul-kumar
  paisa balance --format json`,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runBalance(rootOpts, cmd, args)
		},
	}
	return cmd
}

func runBalance(opts *RootOptions, cmd *cobra.Command, args []string) error {
	a, err := openApp(cmd.Context(), opts)
	if err != nil {
		return err
	}
	defer a.Close()

	f := &OutputFormatter{Format: opts.Format, Writer: cmd.OutOrStdout(), Verbose: opts.Verbose}

	var accounts []service.AccountView
	if len(args) == 1 {
		acc, err := a.service.Account(cmd.Context(), args[0])
		if err != nil {
			f.Fail(err)
			return domainExit("balance lookup failed", err)
		}
		accounts = []service.AccountView{acc}
	} else {
		accounts, err = a.service.Accounts(cmd.Context())
		if err != nil {
			f.Fail(err)
			return domainExit("balance lookup failed", err)
		}
	}

	return f.JSON(accounts, func(w io.Writer) {
		for _, acc := range accounts {
			fmt.Fprintf(w, "%-20s %-20s primary %10s  emergency %10s\n",
				acc.ID, acc.Name, acc.Primary, acc.Emergency)
		}
	})
}
