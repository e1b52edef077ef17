package cmd

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ginkgo-talk/gtalk-remote/internal/api"
)

func statusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show pairing and AI availability of the desktop",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := buildEnv()
			if err != nil {
				return err
			}

			st, err := e.api.FetchStatus(cmd.Context())
			if errors.Is(err, api.ErrUnauthorized) {
				fmt.Println("Server:  ", e.cfg.ServerURL)
				fmt.Println("Paired:   no (token rejected, run `gtalk-remote pair <code>`)")
				return nil
			}
			if err != nil {
				return err
			}

			fmt.Println("Server:  ", e.cfg.ServerURL)
			fmt.Println("Paired:  ", yesNo(st.Paired))
			fmt.Println("AI:      ", yesNo(st.AIAvailable))
			return nil
		},
	}
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}
