package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ginkgo-talk/gtalk-remote/internal/pairing"
)

func pairCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "pair <code>",
		Short: "Pair this device using the 4-digit code shown on the desktop",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := buildEnv()
			if err != nil {
				return err
			}

			coord := pairing.New(e.ids, e.api, nil, nil)
			if err := coord.SubmitCode(cmd.Context(), args[0]); err != nil {
				return err
			}

			// Confirm with the desktop before declaring success.
			if coord.EnsurePaired(context.Background()) {
				fmt.Println("Paired. Run `gtalk-remote` to start the session.")
				return nil
			}
			fmt.Println("Code accepted but the desktop has not confirmed the pairing yet.")
			return nil
		},
	}
}
