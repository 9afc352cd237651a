package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"
)

// NewScanCommand creates the scan command.
func NewScanCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "scan",
		Short: "Discover proximity peers",
		Long: `Scan for counterparties reachable over the proximity channel, nearest
first. Works regardless of connectivity mode.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runScan(rootOpts, cmd)
		},
	}
	return cmd
}

func runScan(opts *RootOptions, cmd *cobra.Command) error {
	a, err := openApp(cmd.Context(), opts)
	if err != nil {
		return err
	}
	defer a.Close()

	f := &OutputFormatter{Format: opts.Format, Writer: cmd.OutOrStdout(), Verbose: opts.Verbose}

	peers, err := a.service.Scan(cmd.Context())
	if err != nil {
		f.Fail(err)
		return domainExit("scan failed", err)
	}

	return f.JSON(peers, func(w io.Writer) {
		if len(peers) == 0 {
			fmt.Fprintln(w, "no peers in range")
			return
		}
		for _, p := range peers {
			kind := "person"
			if p.Merchant {
				kind = "merchant"
			}
			fmt.Fprintf(w, "%-20s %-20s %4.1f km  %s\n", p.AccountID, p.Name, p.DistanceKm, kind)
		}
	})
}
