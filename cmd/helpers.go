package cmd

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/gorilla/websocket"

	"github.com/ginkgo-talk/gtalk-remote/internal/api"
	"github.com/ginkgo-talk/gtalk-remote/internal/config"
	"github.com/ginkgo-talk/gtalk-remote/internal/identity"
	"github.com/ginkgo-talk/gtalk-remote/internal/session"
	"github.com/ginkgo-talk/gtalk-remote/pkg/protocol"
)

// env bundles the shared dependencies every command needs.
type env struct {
	configPath string
	cfg        *config.Config
	ids        *identity.Store
	api        *api.Client
	logLevel   slog.Level
}

func resolveConfigPath() string {
	if flagConfig != "" {
		return flagConfig
	}
	return config.DefaultPath()
}

// buildEnv loads config, applies flag overrides, and adopts an out-of-band
// token if one was supplied.
func buildEnv() (*env, error) {
	path := resolveConfigPath()
	cfg, err := config.Load(path)
	if err != nil {
		return nil, err
	}
	if flagServer != "" {
		cfg.ServerURL = flagServer
	}
	if cfg.ServerURL == "" {
		return nil, errors.New("no desktop server configured; pass --server or set serverUrl in " + path)
	}

	ids := identity.NewStore(config.DefaultDir())
	token := flagToken
	if token == "" {
		token = os.Getenv("GTALK_TOKEN")
	}
	if err := ids.AdoptToken(token); err != nil {
		return nil, fmt.Errorf("store token: %w", err)
	}

	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(cfg.LogLevel)); err != nil {
		lvl = slog.LevelInfo
	}

	return &env{
		configPath: path,
		cfg:        cfg,
		ids:        ids,
		api:        api.New(cfg.ServerURL, ids),
		logLevel:   lvl,
	}, nil
}

// dialDesktop opens a one-shot WebSocket to the desktop with the stored
// credentials attached, the same way the session does.
func dialDesktop(ctx context.Context, e *env) (*websocket.Conn, error) {
	wsURL, err := session.DeriveWSURL(e.cfg.ServerURL, e.ids)
	if err != nil {
		return nil, err
	}
	dctx, cancel := context.WithTimeout(ctx, config.ConnectTimeout)
	defer cancel()
	conn, resp, err := websocket.DefaultDialer.DialContext(dctx, wsURL, nil)
	if resp != nil && resp.Body != nil {
		resp.Body.Close()
	}
	if err != nil {
		return nil, fmt.Errorf("connect to desktop at %s: %w", wsURL, err)
	}
	return conn, nil
}

// awaitResolution reads server messages until one resolves the request with
// the given correlation id, or the deadline passes.
func awaitResolution(conn *websocket.Conn, id string, timeout time.Duration) (protocol.ServerMessage, error) {
	conn.SetReadDeadline(time.Now().Add(timeout))
	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			return protocol.ServerMessage{}, fmt.Errorf("read response: %w", err)
		}
		typ, err := protocol.ParseType(data)
		if err != nil || typ == protocol.TypeProcessing {
			continue
		}
		var msg protocol.ServerMessage
		if err := json.Unmarshal(data, &msg); err != nil {
			continue
		}
		if msg.ID != "" && msg.ID != id {
			continue
		}
		return msg, nil
	}
}
