package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"
)

// NewEmergencyCommand creates the emergency command.
func NewEmergencyCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "emergency <account-id> <amount>",
		Short: "Draw from the emergency reserve",
		Long: `Move money from the account's emergency reserve into its spendable
primary balance. Ordinary payments never touch the reserve; this is the
only way in or out of it.

Example:
  paisa emergency rahul-kumar 200.00`,
		Args:          cobra.ExactArgs(2),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runEmergency(rootOpts, cmd, args[0], args[1])
		},
	}
	return cmd
}

func runEmergency(opts *RootOptions, cmd *cobra.Command, accountID, amount string) error {
	a, err := openApp(cmd.Context(), opts)
	if err != nil {
		return err
	}
	defer a.Close()

	f := &OutputFormatter{Format: opts.Format, Writer: cmd.OutOrStdout(), Verbose: opts.Verbose}

	acc, err := a.service.DrawEmergency(cmd.Context(), accountID, amount)
	if err != nil {
		f.Fail(err)
		return domainExit("emergency draw rejected", err)
	}

	return f.JSON(acc, func(w io.Writer) {
		fmt.Fprintf(w, "%s  primary %s  emergency %s\n", acc.ID, acc.Primary, acc.Emergency)
	})
}
