package cmd

import (
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/ginkgo-talk/gtalk-remote/internal/config"
	"github.com/ginkgo-talk/gtalk-remote/pkg/protocol"
)

func sendCmd() *cobra.Command {
	var mode string

	cmd := &cobra.Command{
		Use:   "send <text>...",
		Short: "Send text to the desktop (one-shot)",
		Long: "Sends text over a short-lived connection and waits for the desktop's\n" +
			"acknowledgement. With --mode, the text is rewritten by the desktop's AI\n" +
			"first and the preview is printed instead of typed.",
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			text := strings.TrimSpace(strings.Join(args, " "))
			if text == "" {
				return errors.New("nothing to send")
			}
			if !protocol.ValidMode(mode) {
				return fmt.Errorf("unknown mode %q (raw, tidy, formal, translate)", mode)
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

			id := uuid.NewString()
			if err := conn.WriteJSON(protocol.TextMessage{
				Type: protocol.TypeText,
				ID:   id,
				Text: text,
				Mode: mode,
			}); err != nil {
				return fmt.Errorf("send: %w", err)
			}

			timeout := config.RawSendTimeout
			if mode != protocol.ModeRaw {
				timeout = config.TransformTimeout
			}
			msg, err := awaitResolution(conn, id, timeout)
			if err != nil {
				return err
			}

			switch msg.Type {
			case protocol.TypeAck:
				fmt.Println("Typed on desktop.")
			case protocol.TypeAIPreview:
				fmt.Println(msg.Text)
			case protocol.TypeAIError:
				return fmt.Errorf("AI processing failed: %s", msg.Error)
			case protocol.TypeError:
				return fmt.Errorf("desktop error: %s", msg.Error)
			default:
				return fmt.Errorf("unexpected response type %q", msg.Type)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&mode, "mode", protocol.ModeRaw, "text mode: raw, tidy, formal, translate")
	return cmd
}
