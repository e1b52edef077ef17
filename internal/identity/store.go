// Package identity owns the durable device identity and auth token.
//
// The device ID is created once on first run and never changes for the
// lifetime of the installation. The auth token lives in the OS keyring when
// one is available, with a plain file fallback so headless machines still
// work. Neither operation ever touches the network.
package identity

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"log/slog"
	mathrand "math/rand"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/zalando/go-keyring"
)

const (
	keyringService = "gtalk-remote"
	deviceIDFile   = "device_id"
	tokenFile      = "token"
)

// Store persists the device identity and auth token under dir.
type Store struct {
	dir        string
	useKeyring bool
}

// NewStore creates a store rooted at dir (e.g. ~/.gtalk-remote).
func NewStore(dir string) *Store {
	return &Store{dir: dir, useKeyring: keyringAvailable()}
}

// keyringAvailable probes the OS keyring with a round-trip so we fail over
// to the file store once, up front, instead of on every call.
func keyringAvailable() bool {
	const probe = "__probe__"
	if err := keyring.Set(keyringService, probe, "ok"); err != nil {
		return false
	}
	keyring.Delete(keyringService, probe)
	return true
}

// DeviceID returns the persisted device identifier, generating and persisting
// a new one on first call. Idempotent.
func (s *Store) DeviceID() (string, error) {
	path := filepath.Join(s.dir, deviceIDFile)
	if data, err := os.ReadFile(path); err == nil {
		if id := strings.TrimSpace(string(data)); id != "" {
			return id, nil
		}
	}

	id := generateDeviceID()
	if err := s.writeFile(deviceIDFile, id); err != nil {
		return "", fmt.Errorf("persist device id: %w", err)
	}
	slog.Info("device id generated", "device_id", id)
	return id, nil
}

// generateDeviceID returns 16 random bytes hex-encoded. If the secure source
// fails it falls back to a timestamp plus pseudo-random suffix.
func generateDeviceID() string {
	b := make([]byte, 16)
	if _, err := rand.Read(b); err != nil {
		slog.Warn("secure random unavailable, using fallback device id", "error", err)
		return fmt.Sprintf("dev_%d_%x", time.Now().UnixMilli(), mathrand.Int63())
	}
	return hex.EncodeToString(b)
}

// Token returns the stored auth token, or "" if none is stored.
func (s *Store) Token() string {
	if s.useKeyring {
		id, err := s.DeviceID()
		if err == nil {
			tok, err := keyring.Get(keyringService, id)
			if err == nil {
				return strings.TrimSpace(tok)
			}
			if err != keyring.ErrNotFound {
				slog.Warn("keyring read failed", "error", err)
			}
		}
	}
	data, err := os.ReadFile(filepath.Join(s.dir, tokenFile))
	if err != nil {
		return ""
	}
	return strings.TrimSpace(string(data))
}

// SetToken stores the auth token. An empty token clears the stored value.
func (s *Store) SetToken(token string) error {
	token = strings.TrimSpace(token)
	if token == "" {
		return s.clearToken()
	}
	if s.useKeyring {
		id, err := s.DeviceID()
		if err != nil {
			return err
		}
		if err := keyring.Set(keyringService, id, token); err != nil {
			slog.Warn("keyring write failed, falling back to file", "error", err)
		} else {
			// Drop any stale file copy so the keyring stays authoritative.
			os.Remove(filepath.Join(s.dir, tokenFile))
			return nil
		}
	}
	return s.writeFile(tokenFile, token)
}

// AdoptToken persists a token supplied out-of-band at startup (flag or env).
// It always supersedes whatever was stored before.
func (s *Store) AdoptToken(token string) error {
	token = strings.TrimSpace(token)
	if token == "" {
		return nil
	}
	return s.SetToken(token)
}

func (s *Store) clearToken() error {
	if s.useKeyring {
		id, err := s.DeviceID()
		if err == nil {
			if err := keyring.Delete(keyringService, id); err != nil && err != keyring.ErrNotFound {
				slog.Warn("keyring delete failed", "error", err)
			}
		}
	}
	err := os.Remove(filepath.Join(s.dir, tokenFile))
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("clear token: %w", err)
	}
	return nil
}

func (s *Store) writeFile(name, value string) error {
	if err := os.MkdirAll(s.dir, 0700); err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(s.dir, name), []byte(value+"\n"), 0600)
}
