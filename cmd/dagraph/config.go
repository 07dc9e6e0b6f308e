package main

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/decisionlab/dagraph/internal/config"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage dagraph configuration",
	Long:  `View, validate and initialise dagraph configuration and credentials.`,
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the effective configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		shown := *cfg
		shown.Cosmos.Key = config.MaskKey(cfg.Cosmos.Key)
		if shown.Cache.RedisPassword != "" {
			shown.Cache.RedisPassword = config.MaskKey(cfg.Cache.RedisPassword)
		}
		return printResult(cmd, shown)
	},
}

var configValidateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Check the configuration for the selected environment",
	RunE: func(cmd *cobra.Command, args []string) error {
		result := cfg.Validate()
		out := cmd.OutOrStdout()
		if result.HasErrors() {
			return result.Err()
		}
		for _, warn := range result.Warnings {
			fmt.Fprintf(out, "  ⚠️  %s\n", warn)
		}

		env, _ := config.ParseEnvironment(cfg.Environment)
		fmt.Fprintf(out, "✓ Configuration valid for %s (%s)\n", env, env.Description())
		return nil
	},
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Write the effective configuration to .dagraph/config.yaml",
	RunE: func(cmd *cobra.Command, args []string) error {
		path := cfgFile
		if path == "" {
			path = filepath.Join(".dagraph", "config.yaml")
		}
		if err := cfg.Save(path); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "✓ Configuration written to %s\n", path)
		return nil
	},
}

var configSetKeyCmd = &cobra.Command{
	Use:   "set-key [key]",
	Short: "Store the Azure Cosmos DB account key",
	Long: `Store the Azure Cosmos DB account key in the OS keychain, or in
~/.config/dagraph/credentials.yaml when no keychain is available.
Without an argument the key is read from the terminal without echo.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		var key string
		if len(args) == 1 {
			key = args[0]
		} else {
			var err error
			if key, err = readKey(cmd); err != nil {
				return err
			}
		}
		if key == "" {
			return fmt.Errorf("cosmos key cannot be empty")
		}

		cm := config.NewCredentialManager()
		if err := cm.SaveCosmosKey(key); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "✓ Cosmos key saved (%s)\n", config.MaskKey(key))
		return nil
	},
}

var configDeleteKeyCmd = &cobra.Command{
	Use:   "delete-key",
	Short: "Remove the Azure Cosmos DB account key from the OS keychain",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := config.NewKeyringManager().DeleteCosmosKey(); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), "✓ Cosmos key removed from keychain")
		return nil
	},
}

func readKey(cmd *cobra.Command) (string, error) {
	fmt.Fprint(cmd.OutOrStdout(), "Azure Cosmos DB account key: ")
	if term.IsTerminal(int(os.Stdin.Fd())) {
		raw, err := term.ReadPassword(int(os.Stdin.Fd()))
		fmt.Fprintln(cmd.OutOrStdout())
		if err != nil {
			return "", err
		}
		return strings.TrimSpace(string(raw)), nil
	}
	line, err := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
	if err != nil && line == "" {
		return "", err
	}
	return strings.TrimSpace(line), nil
}

func init() {
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configValidateCmd)
	configCmd.AddCommand(configInitCmd)
	configCmd.AddCommand(configSetKeyCmd)
	configCmd.AddCommand(configDeleteKeyCmd)
}
