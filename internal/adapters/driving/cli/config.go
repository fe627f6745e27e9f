package cli

import (
	"errors"
	"fmt"
	"sort"
	"strconv"

	"github.com/spf13/cobra"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage configuration",
	Long: `View and set configuration values stored in config.toml.

Common keys:
  embedding.provider   openai | ollama | disabled
  embedding.model      embedding model name
  embedding.api_key    provider API key (openai)
  embedding.base_url   provider base URL override
  storage.backend      sqlite | file | memory
  search.default_limit default result count`,
}

var configGetCmd = &cobra.Command{
	Use:   "get [key]",
	Short: "Show a configuration value",
	Args:  cobra.ExactArgs(1),
	RunE:  runConfigGet,
}

var configSetCmd = &cobra.Command{
	Use:   "set [key] [value]",
	Short: "Set a configuration value",
	Args:  cobra.ExactArgs(2),
	RunE:  runConfigSet,
}

var configListCmd = &cobra.Command{
	Use:   "list",
	Short: "List all configuration values",
	RunE:  runConfigList,
}

func init() {
	configCmd.AddCommand(configGetCmd)
	configCmd.AddCommand(configSetCmd)
	configCmd.AddCommand(configListCmd)
	rootCmd.AddCommand(configCmd)
}

func runConfigGet(cmd *cobra.Command, args []string) error {
	if configStore == nil {
		return errors.New("config store not configured")
	}

	val, ok := configStore.Get(args[0])
	if !ok {
		return fmt.Errorf("key %q is not set", args[0])
	}
	cmd.Printf("%v\n", maskedValue(args[0], val))
	return nil
}

func runConfigSet(cmd *cobra.Command, args []string) error {
	if configStore == nil {
		return errors.New("config store not configured")
	}

	key, raw := args[0], args[1]

	// Store booleans and integers typed so TOML round-trips them.
	var value any = raw
	if b, err := strconv.ParseBool(raw); err == nil && (raw == "true" || raw == "false") {
		value = b
	} else if n, err := strconv.Atoi(raw); err == nil {
		value = n
	}

	if err := configStore.Set(key, value); err != nil {
		return fmt.Errorf("failed to set %s: %w", key, err)
	}
	cmd.Printf("Set %s.\n", key)
	return nil
}

func runConfigList(cmd *cobra.Command, _ []string) error {
	if configStore == nil {
		return errors.New("config store not configured")
	}

	keys := configKeys()
	if len(keys) == 0 {
		cmd.Println("No configuration values set.")
		return nil
	}

	for _, key := range keys {
		val, _ := configStore.Get(key)
		cmd.Printf("%s = %v\n", key, maskedValue(key, val))
	}
	return nil
}

// configKeys returns the known keys that currently hold a value.
func configKeys() []string {
	known := []string{
		"embedding.provider",
		"embedding.model",
		"embedding.api_key",
		"embedding.base_url",
		"storage.backend",
		"storage.data_dir",
		"search.default_limit",
	}
	var present []string
	for _, key := range known {
		if _, ok := configStore.Get(key); ok {
			present = append(present, key)
		}
	}
	sort.Strings(present)
	return present
}

// maskedValue hides secrets in display output.
func maskedValue(key string, val any) any {
	if key != "embedding.api_key" {
		return val
	}
	s, ok := val.(string)
	if !ok || len(s) <= 8 {
		return "****"
	}
	return s[:4] + "..." + s[len(s)-4:]
}
