package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/paisapp/paisa/internal/service"
)

// NewModeCommand creates the mode command.
func NewModeCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "mode [online|offline]",
		Short: "Show or switch the connectivity mode",
		Long: `Show the current connectivity mode, or switch it. Going back online
drains the reconciliation queue before the command returns, so the
reported queue depth reflects the settled state.

Example:
  paisa mode
  paisa mode offline
  paisa mode online`,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runMode(rootOpts, cmd, args)
		},
	}
	return cmd
}

func runMode(opts *RootOptions, cmd *cobra.Command, args []string) error {
	a, err := openApp(cmd.Context(), opts)
	if err != nil {
		return err
	}
	defer a.Close()

	f := &OutputFormatter{Format: opts.Format, Writer: cmd.OutOrStdout(), Verbose: opts.Verbose}

	var status service.StatusView
	if len(args) == 1 {
		status, err = a.service.SetMode(cmd.Context(), args[0])
		if err != nil {
			f.Fail(err)
			return domainExit("mode change failed", err)
		}
	} else {
		status = a.service.Status()
	}

	return f.JSON(status, func(w io.Writer) {
		fmt.Fprintf(w, "%s (since %s), %d queued\n",
			status.Mode, status.ChangedAt.Format("2006-01-02 15:04:05"), status.Queued)
	})
}
