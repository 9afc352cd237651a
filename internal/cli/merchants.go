package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"
)

// MerchantsOptions holds flags for the merchants command.
type MerchantsOptions struct {
	*RootOptions
	Essential bool
}

// NewMerchantsCommand creates the merchants command.
func NewMerchantsCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &MerchantsOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "merchants",
		Short: "List merchants",
		Long: `List registered merchants. With --essential, only services flagged as
essential (pharmacies, fuel, groceries) are shown.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runMerchants(opts, cmd)
		},
	}

	cmd.Flags().BoolVar(&opts.Essential, "essential", false, "only essential services")

	return cmd
}

func runMerchants(opts *MerchantsOptions, cmd *cobra.Command) error {
	a, err := openApp(cmd.Context(), opts.RootOptions)
	if err != nil {
		return err
	}
	defer a.Close()

	f := &OutputFormatter{Format: opts.Format, Writer: cmd.OutOrStdout(), Verbose: opts.Verbose}

	merchants, err := a.service.Merchants(cmd.Context(), opts.Essential)
	if err != nil {
		f.Fail(err)
		return domainExit("merchant lookup failed", err)
	}

	return f.JSON(merchants, func(w io.Writer) {
		for _, m := range merchants {
			marker := ""
			if m.Essential {
				marker = "  [essential]"
			}
			fmt.Fprintf(w, "%-20s %-24s %s%s\n", m.ID, m.Name, m.Category, marker)
		}
	})
}
