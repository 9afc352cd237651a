package cli

import (
	"encoding/json"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/paisapp/paisa/internal/broadcast"
)

// NewWatchCommand creates the watch command.
func NewWatchCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Stream ledger events",
		Long: `Stream transaction updates and connectivity changes as they happen.
The first event is always the current connectivity mode. Runs until
interrupted.

Example:
  paisa watch --format json`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runWatch(rootOpts, cmd)
		},
	}
	return cmd
}

// eventLine is the JSON shape of one streamed event.
type eventLine struct {
	Topic         string `json:"topic"`
	TransactionID string `json:"transaction_id,omitempty"`
	Status        string `json:"status,omitempty"`
	Mode          string `json:"mode,omitempty"`
}

func runWatch(opts *RootOptions, cmd *cobra.Command) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	a, err := openApp(ctx, opts)
	if err != nil {
		return err
	}
	defer a.Close()

	sub := a.service.Subscribe()
	defer sub.Close()

	out := cmd.OutOrStdout()
	enc := json.NewEncoder(out)

	for {
		ev, ok := sub.Next(ctx)
		if !ok {
			return nil
		}

		line := eventLine{Topic: string(ev.Topic())}
		switch e := ev.(type) {
		case broadcast.TransactionUpdate:
			line.TransactionID = e.TransactionID
			line.Status = string(e.Status)
		case broadcast.ConnectivityChanged:
			line.Mode = string(e.Mode)
		}

		if opts.Format == "json" {
			if err := enc.Encode(line); err != nil {
				return err
			}
			continue
		}

		switch e := ev.(type) {
		case broadcast.TransactionUpdate:
			fmt.Fprintf(out, "transaction %s -> %s\n", e.TransactionID, e.Status)
		case broadcast.ConnectivityChanged:
			fmt.Fprintf(out, "connectivity: %s\n", e.Mode)
		}
	}
}
