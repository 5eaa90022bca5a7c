package cli

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/citeview-labs/citeview-cli/internal/adapters/driven/config/file"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage configuration",
	Long: `View and change configuration values.

Settings live in a TOML file under the home directory. API keys are
read from the environment (GEMINI_API_KEY, PINECONE_API_KEY) and are
never written to the file.`,
	RunE: runConfigPath,
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Write a config file with the default settings",
	RunE:  runConfigInit,
}

var configGetCmd = &cobra.Command{
	Use:   "get [key]",
	Short: "Print one configuration value",
	Args:  cobra.ExactArgs(1),
	RunE:  runConfigGet,
}

var configSetCmd = &cobra.Command{
	Use:   "set [key] [value]",
	Short: "Set and persist one configuration value",
	Args:  cobra.ExactArgs(2),
	RunE:  runConfigSet,
}

var configPathCmd = &cobra.Command{
	Use:   "path",
	Short: "Print the config file location",
	RunE:  runConfigPath,
}

func init() {
	configCmd.AddCommand(configInitCmd)
	configCmd.AddCommand(configGetCmd)
	configCmd.AddCommand(configSetCmd)
	configCmd.AddCommand(configPathCmd)
	rootCmd.AddCommand(configCmd)
}

// defaultConfig seeds a new config file so every tunable is visible.
var defaultConfig = []struct {
	key   string
	value any
}{
	{file.KeyEmbeddingProvider, "ollama"},
	{file.KeyEmbeddingModel, "nomic-embed-text"},
	{file.KeyEmbeddingBaseURL, "http://localhost:11434"},
	{file.KeyEmbeddingDimensions, 768},
	{file.KeyEmbeddingCacheSize, 512},
	{file.KeyLLMProvider, "ollama"},
	{file.KeyLLMModel, "llama3.2"},
	{file.KeyLLMBaseURL, "http://localhost:11434"},
	{file.KeyVectorPineconeHost, ""},
	{file.KeyChunkingTargetTokens, 1000},
	{file.KeyChunkingOverlapTokens, 200},
	{file.KeyDefaultWorkspace, "default"},
}

func runConfigInit(cmd *cobra.Command, _ []string) error {
	if services.Config == nil {
		return errors.New("config store not configured")
	}

	for _, entry := range defaultConfig {
		if _, exists := services.Config.Get(entry.key); exists {
			continue
		}
		if err := services.Config.Set(entry.key, entry.value); err != nil {
			return fmt.Errorf("writing config: %w", err)
		}
	}

	cmd.Printf("Config written to %s\n", services.Config.Path())
	return nil
}

func runConfigGet(cmd *cobra.Command, args []string) error {
	if services.Config == nil {
		return errors.New("config store not configured")
	}

	value, ok := services.Config.Get(args[0])
	if !ok {
		return fmt.Errorf("key %q not set", args[0])
	}
	cmd.Printf("%v\n", value)
	return nil
}

func runConfigSet(cmd *cobra.Command, args []string) error {
	if services.Config == nil {
		return errors.New("config store not configured")
	}

	if err := services.Config.Set(args[0], parseConfigValue(args[1])); err != nil {
		return fmt.Errorf("setting %s: %w", args[0], err)
	}
	cmd.Printf("%s = %s\n", args[0], args[1])
	return nil
}

func runConfigPath(cmd *cobra.Command, _ []string) error {
	if services.Config == nil {
		return errors.New("config store not configured")
	}
	cmd.Println(services.Config.Path())
	return nil
}

// parseConfigValue keeps integers and booleans typed in the TOML file.
func parseConfigValue(raw string) any {
	if n, err := strconv.Atoi(raw); err == nil {
		return n
	}
	if b, err := strconv.ParseBool(raw); err == nil {
		return b
	}
	return raw
}
