package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

// Config holds CLI configuration
type Config struct {
	ServerURL   string
	SessionFile string
	Output      string
	Verbose     bool

	// Session is the identity saved by the last create or join, if any
	Session *Session
}

// Session remembers which room and player this CLI is acting as
type Session struct {
	Code     string `json:"code"`
	PlayerID string `json:"playerId"`
	Name     string `json:"name"`
}

// DefaultConfig returns a Config with default values
func DefaultConfig() *Config {
	return &Config{
		ServerURL:   getEnvOrDefault("ROULETTE_SERVER", "http://localhost:4000"),
		SessionFile: getEnvOrDefault("ROULETTE_SESSION_FILE", defaultSessionFile()),
		Output:      "text",
		Verbose:     false,
	}
}

// LoadSession loads the session file if it exists
func (c *Config) LoadSession() error {
	data, err := os.ReadFile(c.SessionFile)
	if err != nil {
		if os.IsNotExist(err) {
			return nil // No session file is fine
		}
		return err
	}

	var s Session
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("corrupt session file %s: %w", c.SessionFile, err)
	}
	c.Session = &s
	return nil
}

// SaveSession writes the session file
func (c *Config) SaveSession(s Session) error {
	c.Session = &s

	dir := filepath.Dir(c.SessionFile)
	if err := os.MkdirAll(dir, 0700); err != nil {
		return err
	}

	data, err := json.Marshal(s)
	if err != nil {
		return err
	}
	return os.WriteFile(c.SessionFile, data, 0600)
}

// ClearSession removes the session file
func (c *Config) ClearSession() error {
	c.Session = nil
	if err := os.Remove(c.SessionFile); err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

// resolveCode returns the explicit code, falling back to the session
func (c *Config) resolveCode(args []string) (string, error) {
	if len(args) > 0 && args[0] != "" {
		return args[0], nil
	}
	if c.Session != nil && c.Session.Code != "" {
		return c.Session.Code, nil
	}
	return "", errors.New("room code required (no saved session)")
}

// resolvePlayer returns the explicit player ID, falling back to the session
func (c *Config) resolvePlayer(playerID string) (string, error) {
	if playerID != "" {
		return playerID, nil
	}
	if c.Session != nil && c.Session.PlayerID != "" {
		return c.Session.PlayerID, nil
	}
	return "", errors.New("--player is required (no saved session)")
}

func defaultSessionFile() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".roulette/session.json"
	}
	return filepath.Join(home, ".roulette", "session.json")
}

func getEnvOrDefault(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}
