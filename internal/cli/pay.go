package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/paisapp/paisa/internal/service"
)

// PayOptions holds flags for the pay command.
type PayOptions struct {
	*RootOptions
	Description string
	Proximity   bool
}

// NewPayCommand creates the pay command.
func NewPayCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &PayOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "pay <sender-id> <receiver-id> <amount>",
		Short: "Send a payment",
		Long: `Send a payment from one account to another.

A direct payment settles immediately while online. With --proximity the
payment goes over the local channel and queues for reconciliation, which
also happens automatically to any payment made while offline.

Example:
  paisa pay rahul-kumar medplus-pharmacy 500.00
  paisa pay rahul-kumar priya-sharma 300.00 --proximity --desc "auto fare"`,
		Args:          cobra.ExactArgs(3),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPay(opts, cmd, args)
		},
	}

	cmd.Flags().StringVar(&opts.Description, "desc", "", "free-form payment description")
	cmd.Flags().BoolVar(&opts.Proximity, "proximity", false, "send over the proximity channel")

	return cmd
}

func runPay(opts *PayOptions, cmd *cobra.Command, args []string) error {
	a, err := openApp(cmd.Context(), opts.RootOptions)
	if err != nil {
		return err
	}
	defer a.Close()

	f := &OutputFormatter{Format: opts.Format, Writer: cmd.OutOrStdout(), Verbose: opts.Verbose}

	view, err := a.service.Pay(cmd.Context(), service.PayRequest{
		SenderID:    args[0],
		ReceiverID:  args[1],
		Amount:      args[2],
		Description: opts.Description,
		Proximity:   opts.Proximity,
	})
	if err != nil {
		f.Fail(err)
		return domainExit("payment rejected", err)
	}

	return f.JSON(view, func(w io.Writer) {
		fmt.Fprintf(w, "%s  %s -> %s  %s  [%s]\n",
			view.ID, view.SenderID, view.ReceiverID, view.Amount, view.Status)
	})
}
