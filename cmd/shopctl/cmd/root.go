package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"storefront-api/internal/client"
)

var (
	apiURL      string
	sessionFile string
)

const defaultAPIURL = "http://localhost:8080"

var (
	titleStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#7C3AED"))
	successStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#10B981"))
	errorStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#EF4444"))
	mutedStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#6B7280"))
)

var rootCmd = &cobra.Command{
	Use:   "shopctl",
	Short: "CLI for the storefront API",
	Long: `shopctl talks to the storefront API: register, log in, inspect your
profile and browse the catalog. The session (access token and refresh
token) is stored in a local file between invocations.

Environment Variables:
  SHOPCTL_API_URL  API base URL (default: http://localhost:8080)`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func Execute() error {
	err := rootCmd.Execute()
	if err != nil {
		fmt.Fprintln(os.Stderr, errorStyle.Render("Error: ")+err.Error())
	}
	return err
}

func init() {
	rootCmd.PersistentFlags().StringVar(&apiURL, "api-url", "", "API base URL (overrides SHOPCTL_API_URL)")
	rootCmd.PersistentFlags().StringVar(&sessionFile, "session-file", "", "Path to the session file (default: ~/.config/shopctl/session.json)")
}

func baseURL() string {
	if apiURL != "" {
		return apiURL
	}
	if envURL := os.Getenv("SHOPCTL_API_URL"); envURL != "" {
		return envURL
	}
	return defaultAPIURL
}

func sessionPath() (string, error) {
	if sessionFile != "" {
		return sessionFile, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolve home dir: %w", err)
	}
	return filepath.Join(home, ".config", "shopctl", "session.json"), nil
}

// loadSession builds a client session and restores any saved state.
func loadSession() (*client.Session, error) {
	sess, err := client.NewSession(baseURL())
	if err != nil {
		return nil, err
	}
	path, err := sessionPath()
	if err != nil {
		return nil, err
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return sess, nil
		}
		return nil, fmt.Errorf("read session file: %w", err)
	}
	var st client.State
	if err := json.Unmarshal(raw, &st); err != nil {
		return nil, fmt.Errorf("decode session file: %w", err)
	}
	if err := sess.Restore(st); err != nil {
		return nil, err
	}
	return sess, nil
}

func saveSession(sess *client.Session) error {
	st, err := sess.Export()
	if err != nil {
		return err
	}
	path, err := sessionPath()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return fmt.Errorf("create session dir: %w", err)
	}
	raw, err := json.MarshalIndent(st, "", "  ")
	if err != nil {
		return err
	}
	// holds the refresh token, keep it owner-only
	if err := os.WriteFile(path, raw, 0o600); err != nil {
		return fmt.Errorf("write session file: %w", err)
	}
	return nil
}

func clearSession() error {
	path, err := sessionPath()
	if err != nil {
		return err
	}
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("remove session file: %w", err)
	}
	return nil
}
