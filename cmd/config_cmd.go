package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ginkgo-talk/gtalk-remote/internal/api"
	"github.com/ginkgo-talk/gtalk-remote/internal/config"
)

func configCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Inspect or change configuration",
	}
	cmd.AddCommand(configGetCmd())
	cmd.AddCommand(configSetCmd())
	return cmd
}

func configGetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "get",
		Short: "Show local settings and the desktop's AI configuration",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := buildEnv()
			if err != nil {
				return err
			}

			fmt.Println("serverUrl:", e.cfg.ServerURL)
			fmt.Println("logLevel: ", e.cfg.LogLevel)

			dc, err := e.api.FetchConfig(cmd.Context())
			if err != nil {
				fmt.Println("desktop:   unreachable:", err)
				return nil
			}
			fmt.Println("apiKey:   ", valueOr(dc.APIKey, "(not set)"))
			fmt.Println("baseUrl:  ", valueOr(dc.BaseURL, "(default)"))
			fmt.Println("model:    ", valueOr(dc.Model, "(default)"))
			if dc.LanIP != "" {
				fmt.Println("lanIp:    ", dc.LanIP)
			}
			return nil
		},
	}
}

func configSetCmd() *cobra.Command {
	var (
		serverURL string
		apiKey    string
		baseURL   string
		model     string
	)

	cmd := &cobra.Command{
		Use:   "set",
		Short: "Change local settings or the desktop's AI configuration",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			// serverUrl is ours; everything else is stored on the desktop.
			if serverURL != "" {
				path := resolveConfigPath()
				cfg, err := config.Load(path)
				if err != nil {
					return err
				}
				cfg.ServerURL = serverURL
				if err := config.Save(path, cfg); err != nil {
					return err
				}
				fmt.Println("serverUrl saved.")
			}

			fields := api.DesktopConfig{APIKey: apiKey, BaseURL: baseURL, Model: model}
			if fields == (api.DesktopConfig{}) {
				if serverURL == "" {
					return fmt.Errorf("nothing to set; see `gtalk-remote config set --help`")
				}
				return nil
			}

			e, err := buildEnv()
			if err != nil {
				return err
			}
			res, err := e.api.SaveConfig(cmd.Context(), fields)
			if err != nil {
				return err
			}
			if !res.OK {
				return fmt.Errorf("desktop rejected the configuration")
			}
			fmt.Println("Desktop configuration saved. AI available:", yesNo(res.AIAvailable))
			return nil
		},
	}

	cmd.Flags().StringVar(&serverURL, "server-url", "", "desktop base URL (stored locally)")
	cmd.Flags().StringVar(&apiKey, "api-key", "", "AI provider API key (stored on the desktop)")
	cmd.Flags().StringVar(&baseURL, "base-url", "", "AI provider base URL (stored on the desktop)")
	cmd.Flags().StringVar(&model, "model", "", "AI model name (stored on the desktop)")
	return cmd
}

func valueOr(v, fallback string) string {
	if v == "" {
		return fallback
	}
	return v
}
