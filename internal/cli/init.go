package cli

import (
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"github.com/paisapp/paisa/internal/provision"
	"github.com/paisapp/paisa/internal/store"
)

// InitOptions holds flags for the init command.
type InitOptions struct {
	*RootOptions
	Seed string
}

// NewInitCommand creates the init command.
func NewInitCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &InitOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Create the ledger database and seed accounts",
		Long: `Create the ledger database, applying either the built-in demo seed or a
YAML seed file. Provisioning is idempotent: accounts that already exist
keep their balances.

Example:
  paisa init --db ./paisa.db
  paisa init --db ./paisa.db --seed ./accounts.yaml`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runInit(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Seed, "seed", "", "path to a YAML seed file (default: built-in demo seed)")

	return cmd
}

func runInit(opts *InitOptions, cmd *cobra.Command) error {
	seed := provision.DefaultSeed()
	if opts.Seed != "" {
		loaded, err := provision.Load(opts.Seed)
		if err != nil {
			return WrapExitError(ExitCommandError, "failed to load seed file", err)
		}
		seed = loaded
	}

	st, err := store.Open(opts.Database)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to open database", err)
	}
	defer st.Close()

	created, err := provision.Apply(cmd.Context(), st, seed, time.Now)
	if err != nil {
		return domainExit("provisioning failed", err)
	}

	f := &OutputFormatter{Format: opts.Format, Writer: cmd.OutOrStdout(), Verbose: opts.Verbose}
	result := struct {
		Database string `json:"database"`
		Created  int    `json:"created"`
	}{opts.Database, created}
	return f.JSON(result, func(w io.Writer) {
		fmt.Fprintf(w, "ledger ready at %s (%d accounts created)\n", opts.Database, created)
	})
}
