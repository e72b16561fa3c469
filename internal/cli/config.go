package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

const defaultServerURL = "http://localhost:8080"

// CLIConfig holds CLI configuration persisted to disk.
type CLIConfig struct {
	ServerURL string `yaml:"server_url,omitempty"`
	Executive string `yaml:"executive,omitempty"`
}

// configPath returns the path to the CLI config file.
func configPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("finding home directory: %w", err)
	}
	return filepath.Join(home, ".config", "medicall", "config.yaml"), nil
}

// loadConfig reads the CLI config from disk.
// Returns a zero-value config if the file doesn't exist.
func loadConfig() (CLIConfig, error) {
	path, err := configPath()
	if err != nil {
		return CLIConfig{}, err
	}

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return CLIConfig{}, nil
	}
	if err != nil {
		return CLIConfig{}, fmt.Errorf("reading config: %w", err)
	}

	var cfg CLIConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return CLIConfig{}, fmt.Errorf("parsing config: %w", err)
	}

	return cfg, nil
}

// saveConfig writes the CLI config to disk.
func saveConfig(cfg CLIConfig) error {
	path, err := configPath()
	if err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}

	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}

	return nil
}

// getServerURL returns the server URL from env var, config, or default.
func getServerURL() string {
	if v := os.Getenv("MEDICALL_SERVER_URL"); v != "" {
		return v
	}
	cfg, err := loadConfig()
	if err == nil && cfg.ServerURL != "" {
		return cfg.ServerURL
	}
	return defaultServerURL
}

// defaultExecutive returns the executive used when a command's
// --executive flag is empty: the env var, then the config.
func defaultExecutive() string {
	if v := os.Getenv("MEDICALL_EXECUTIVE"); v != "" {
		return v
	}
	cfg, err := loadConfig()
	if err == nil {
		return cfg.Executive
	}
	return ""
}

// resolveExecutive applies defaultExecutive to an empty flag. "ALL"
// selects every executive.
func resolveExecutive(flag string) string {
	if flag == "" {
		flag = defaultExecutive()
	}
	if strings.EqualFold(flag, "ALL") {
		return ""
	}
	return flag
}

func newConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Show or change CLI settings",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runConfigShow()
		},
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "set <key> <value>",
		Short: "Set server_url or executive",
		Long: `Set a CLI setting.

Keys:
  server_url  API server, e.g. http://crm.local:8080
  executive   default executive for stats, calendar and exports

Examples:
  medicall config set server_url http://crm.local:8080
  medicall config set executive LUIS`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runConfigSet(args[0], args[1])
		},
	})

	return cmd
}

func runConfigShow() error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if isJSON() {
		return printJSON(map[string]string{
			"server_url": getServerURL(),
			"executive":  cfg.Executive,
		})
	}
	fmt.Printf("Server:    %s\n", getServerURL())
	exec := cfg.Executive
	if exec == "" {
		exec = "(all)"
	}
	fmt.Printf("Executive: %s\n", exec)
	return nil
}

func runConfigSet(key, value string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	switch key {
	case "server_url":
		cfg.ServerURL = strings.TrimRight(value, "/")
	case "executive":
		cfg.Executive = strings.ToUpper(strings.TrimSpace(value))
	default:
		return fmt.Errorf("unknown config key %q (server_url, executive)", key)
	}

	if err := saveConfig(cfg); err != nil {
		return err
	}
	fmt.Printf("%s saved.\n", key)
	return nil
}
