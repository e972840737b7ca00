package cli

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/parchment-labs/scandex-cli/internal/config"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage configuration",
	Long:  `View and configure directories, models, and API credentials.`,
}

var configSetKeyCmd = &cobra.Command{
	Use:   "set-key [mistral|openrouter]",
	Short: "Store an API key",
	Long: `Prompt for an API key and store it in the .env file next to the
config file. Keys are never written into the TOML config itself.

Examples:
  scandex config set-key mistral
  scandex config set-key openrouter`,
	Args:      cobra.ExactArgs(1),
	ValidArgs: []string{"mistral", "openrouter"},
	RunE:      runConfigSetKey,
}

func init() {
	configCmd.AddCommand(configSetKeyCmd)
	rootCmd.AddCommand(configCmd)
}

func runConfigSetKey(cmd *cobra.Command, args []string) error {
	var envName string
	switch args[0] {
	case "mistral":
		envName = config.EnvMistralKey
	case "openrouter":
		envName = config.EnvOpenRouterKey
	default:
		return fmt.Errorf("unknown provider %q (expected mistral or openrouter)", args[0])
	}

	cmd.Printf("Enter %s API key: ", args[0])
	key := readPassword()
	cmd.Println()

	if key == "" {
		return fmt.Errorf("empty key, nothing stored")
	}

	dir := filepath.Dir(configFilePath())
	if err := config.WriteKey(dir, envName, key); err != nil {
		return fmt.Errorf("storing key: %w", err)
	}

	cmd.Printf("Stored %s (%s) in %s\n", envName, maskAPIKey(key), filepath.Join(dir, ".env"))
	return nil
}

// configFilePath resolves the effective config file path, honouring --config.
func configFilePath() string {
	if cfgPath != "" {
		return cfgPath
	}
	dir, err := config.DefaultDir()
	if err != nil {
		return "config.toml"
	}
	return filepath.Join(dir, "config.toml")
}

//nolint:errcheck // CLI helper, error ignored for UX
func readPassword() string {
	// Try to read password without echo
	if term.IsTerminal(int(os.Stdin.Fd())) {
		password, err := term.ReadPassword(int(os.Stdin.Fd()))
		if err == nil {
			return string(password)
		}
	}
	// Fallback to regular input
	reader := bufio.NewReader(os.Stdin)
	input, _ := reader.ReadString('\n')
	return strings.TrimSpace(input)
}

func maskAPIKey(key string) string {
	if len(key) <= 8 {
		return "****"
	}
	return key[:4] + "..." + key[len(key)-4:]
}
