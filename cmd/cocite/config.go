package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/matsen/cocite/internal/config"
)

func init() {
	addSourceFlags(configCmd)
	addOutputFlags(configCmd)
	addMinWeightFlag(configCmd)
	rootCmd.AddCommand(configCmd)
}

var configCmd = &cobra.Command{
	Use:   "config [key]",
	Short: "Show the effective configuration",
	Long: `Show the configuration after every layer is applied: defaults, the global
file, cocite.yml (or --config), COCITE_* environment variables and flags.

Usage:
  cocite config                # Show all settings
  cocite config api-base       # Show one setting

Keys use the names of cocite.yml; dashes and underscores are interchangeable.
The contact email is never shown.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runConfig,
}

func runConfig(cmd *cobra.Command, args []string) error {
	cfg := mustLoadConfig(cmd)

	values, err := configValues(cfg)
	if err != nil {
		exitWithError(ExitError, "%v", err)
	}

	if len(args) == 0 {
		if humanOutput {
			out, err := yaml.Marshal(values)
			if err != nil {
				exitWithError(ExitError, "%v", err)
			}
			fmt.Print(string(out))
			return nil
		}
		return outputJSON(values)
	}

	key := normalizeKey(args[0])
	v, ok := values[key]
	if !ok {
		exitWithError(ExitConfigError, "unknown key %q", args[0])
	}
	if humanOutput {
		fmt.Println(v)
		return nil
	}
	return outputJSON(map[string]any{key: v})
}

// configValues flattens cfg into its file keys, leaving out the contact email.
func configValues(cfg *config.Config) (map[string]any, error) {
	c := *cfg
	c.Mailto = ""
	data, err := yaml.Marshal(&c)
	if err != nil {
		return nil, fmt.Errorf("encoding config: %w", err)
	}
	values := make(map[string]any)
	if err := yaml.Unmarshal(data, &values); err != nil {
		return nil, fmt.Errorf("decoding config: %w", err)
	}
	return values, nil
}

// normalizeKey converts a user key (api-base, API_BASE) to its file form.
func normalizeKey(key string) string {
	return strings.ReplaceAll(strings.ToLower(key), "-", "_")
}
