package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ginkgo-talk/gtalk-remote/pkg/protocol"
)

func keyCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "key <command>",
		Short: "Send a keyboard command to the desktop",
		Long: "Sends a single keyboard command (" + strings.Join(protocol.Commands, ", ") +
			") over a short-lived connection.",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			name := args[0]
			if !protocol.ValidCommand(name) {
				return fmt.Errorf("unknown command %q (%s)", name, strings.Join(protocol.Commands, ", "))
			}

			e, err := buildEnv()
			if err != nil {
				return err
			}
			conn, err := dialDesktop(cmd.Context(), e)
			if err != nil {
				return err
			}
			defer conn.Close()

			if err := conn.WriteJSON(protocol.CommandMessage{
				Type: protocol.TypeCommand,
				Text: name,
			}); err != nil {
				return fmt.Errorf("send command: %w", err)
			}
			// Commands are fire-and-forget; a clean write is success.
			fmt.Println("Sent.")
			return nil
		},
	}
}
