package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/mansoorceksport/fitcoach/internal/client"
)

const defaultServer = "http://localhost:8080"

// sessionFile is what `coach session` stores between runs
type sessionFile struct {
	Server    string    `json:"server"`
	Token     string    `json:"token"`
	SessionID string    `json:"session_id"`
	ExpiresAt time.Time `json:"expires_at"`
}

var errNoSession = errors.New("no session yet, run `coach session` first")

func serverURL() string {
	if s := os.Getenv("COACH_SERVER"); s != "" {
		return s
	}
	return defaultServer
}

func sessionPath() (string, error) {
	if p := os.Getenv("COACH_SESSION_FILE"); p != "" {
		return p, nil
	}
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("failed to locate config dir: %w", err)
	}
	return filepath.Join(dir, "fitcoach", "session.json"), nil
}

func loadSession() (*sessionFile, error) {
	path, err := sessionPath()
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, errNoSession
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read session file: %w", err)
	}

	var s sessionFile
	if err := json.Unmarshal(data, &s); err != nil || s.Token == "" {
		return nil, errNoSession
	}
	return &s, nil
}

func saveSession(s *sessionFile) error {
	path, err := sessionPath()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return fmt.Errorf("failed to create session dir: %w", err)
	}
	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o600)
}

// sessionClient returns an API client authenticated with the stored session.
// Tokens close to expiry are renewed.
func sessionClient(ctx context.Context) (*client.Client, error) {
	s, err := loadSession()
	if err != nil {
		return nil, err
	}
	server := s.Server
	if os.Getenv("COACH_SERVER") != "" || server == "" {
		server = serverURL()
	}

	c := client.New(client.Config{BaseURL: server, Token: s.Token})
	if !s.ExpiresAt.IsZero() && time.Until(s.ExpiresAt) < 24*time.Hour {
		renewed, err := c.RenewSession(ctx)
		if err != nil {
			return nil, fmt.Errorf("session expired, run `coach session`: %w", err)
		}
		s.Token, s.ExpiresAt = renewed.Token, renewed.ExpiresAt
		if err := saveSession(s); err != nil {
			return nil, err
		}
		c = c.WithToken(renewed.Token)
	}
	return c, nil
}

func runSession(ctx context.Context, args []string) error {
	fs := newFlagSet("session")
	server := fs.String("server", serverURL(), "API base URL")
	if err := fs.Parse(args); err != nil {
		return err
	}

	session, err := client.New(client.Config{BaseURL: *server}).CreateSession(ctx)
	if err != nil {
		return err
	}
	if err := saveSession(&sessionFile{
		Server:    strings.TrimRight(*server, "/"),
		Token:     session.Token,
		SessionID: session.SessionID,
		ExpiresAt: session.ExpiresAt,
	}); err != nil {
		return err
	}

	fmt.Printf("✓ Session %s opened (expires %s)\n", session.SessionID, session.ExpiresAt.Local().Format(time.RFC1123))
	return nil
}
