// Package cmd wires the CLI surface: the interactive TUI plus one-shot
// verbs for scripting (send, key, pair, status, config, lang).
package cmd

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/ginkgo-talk/gtalk-remote/internal/config"
	"github.com/ginkgo-talk/gtalk-remote/internal/history"
	"github.com/ginkgo-talk/gtalk-remote/internal/i18n"
	"github.com/ginkgo-talk/gtalk-remote/internal/pairing"
	"github.com/ginkgo-talk/gtalk-remote/internal/session"
	"github.com/ginkgo-talk/gtalk-remote/internal/ui"
)

var (
	flagConfig string
	flagServer string
	flagToken  string
)

func rootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "gtalk-remote",
		Short: "Remote input client for a Ginkgo Talk desktop",
		Long: "gtalk-remote turns this terminal into a remote input device for a\n" +
			"paired Ginkgo Talk desktop: text you type (optionally rewritten by the\n" +
			"desktop's AI modes) is relayed over a persistent connection.",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTUI()
		},
	}

	cmd.PersistentFlags().StringVar(&flagConfig, "config", "", "config file (default ~/.gtalk-remote/config.json)")
	cmd.PersistentFlags().StringVar(&flagServer, "server", "", "desktop base URL (overrides config)")
	cmd.PersistentFlags().StringVar(&flagToken, "token", "", "session token (stored, supersedes the saved one)")

	cmd.AddCommand(pairCmd())
	cmd.AddCommand(sendCmd())
	cmd.AddCommand(keyCmd())
	cmd.AddCommand(statusCmd())
	cmd.AddCommand(configCmd())
	cmd.AddCommand(langCmd())

	return cmd
}

// Execute runs the CLI.
func Execute() {
	if err := rootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func runTUI() error {
	env, err := buildEnv()
	if err != nil {
		return err
	}

	// The TUI owns the terminal; logs go to a file instead.
	logPath := filepath.Join(config.DefaultDir(), "client.log")
	if f, err := os.OpenFile(logPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0600); err == nil {
		slog.SetDefault(slog.New(slog.NewTextHandler(f, &slog.HandlerOptions{Level: env.logLevel})))
		defer f.Close()
	}

	log := history.NewLog(nil)
	cat := i18n.New(config.DefaultDir())

	sess := session.New(env.cfg.ServerURL, env.ids, nil, env.api, log, session.Options{})
	coord := pairing.New(env.ids, env.api, sess.NotifyPairing, sess.Connect)
	sess.SetPairer(coord)
	sess.Start()
	defer sess.Close()

	// Hot reload: a changed server URL applies to the next connect attempt.
	if w, err := config.NewWatcher(env.configPath, func(cfg *config.Config) {
		if cfg.ServerURL != "" {
			env.api.SetBaseURL(cfg.ServerURL)
			sess.SetServerURL(cfg.ServerURL)
		}
	}); err == nil {
		if err := w.Start(); err == nil {
			defer w.Stop()
		}
	}

	p := tea.NewProgram(ui.New(sess, log, cat), tea.WithAltScreen())
	_, err = p.Run()
	return err
}
