// File: cmd/stowage/config_cmd.go
package main

import (
	"fmt"
	"maps"
	"slices"
	"strings"

	"stowage/internal/flags"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

func newConfigCmd() *cobra.Command {
	var output string

	configCmd := &cobra.Command{
		Use:   "config",
		Short: "Manage configuration settings",
		Long: `Manage the configuration file. You can set, get, list, and delete configuration values.
Keys use dot notation, e.g. backends.archive.kind or mirror.return_policy.`,
	}

	configSetCmd := &cobra.Command{
		Use:   "set [key] [value]",
		Short: "Set a configuration key-value pair",
		Long: `Sets a configuration value. For example: 'stowage config set backends.archive.kind gcs'.
List values such as mirror.backends take a comma-separated string.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := appFromContext(cmd.Context())
			if err != nil {
				return err
			}

			key := strings.ToLower(args[0])
			value := args[1]

			if err := app.ConfigManager.SetValue(key, value); err != nil {
				return fmt.Errorf("error setting configuration: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Configuration set: %s = %s\n", key, value)
			return nil
		},
	}

	configGetCmd := &cobra.Command{
		Use:   "get [key]",
		Short: "Get a configuration value by key",
		Long:  `Retrieves a configuration value for a given key. For example: 'stowage config get mirror.strategy'`,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := appFromContext(cmd.Context())
			if err != nil {
				return err
			}

			key := strings.ToLower(args[0])
			value, exists := app.ConfigManager.GetValue(key)
			if !exists || value == "" {
				return fmt.Errorf("configuration key '%s' not found or not set", key)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s = %v\n", key, value)
			return nil
		},
	}

	configDeleteCmd := &cobra.Command{
		Use:   "delete [key]",
		Short: "Delete a configuration value by key",
		Long:  `Deletes a configuration value, or a whole section, for a given key. For example: 'stowage config delete backends.archive'`,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := appFromContext(cmd.Context())
			if err != nil {
				return err
			}

			key := strings.ToLower(args[0])
			deleted, err := app.ConfigManager.DeleteValue(key)
			if err != nil {
				return fmt.Errorf("error deleting configuration: %w", err)
			}
			if !deleted {
				return fmt.Errorf("configuration key '%s' not found", key)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Configuration key '%s' deleted\n", key)
			return nil
		},
	}

	configListCmd := &cobra.Command{
		Use:   "list",
		Short: "List all current configuration values",
		Long:  `Displays the effective configuration: the file layered over defaults and STOWAGE_* environment variables.`,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := appFromContext(cmd.Context())
			if err != nil {
				return err
			}

			settings := app.ConfigManager.GetAllSettings()

			switch output {
			case "yaml":
				out, err := yaml.Marshal(settings)
				if err != nil {
					return fmt.Errorf("error encoding configuration: %w", err)
				}
				fmt.Fprint(cmd.OutOrStdout(), string(out))
				return nil
			case "", "text":
			default:
				return fmt.Errorf("unknown output format %q (want text or yaml)", output)
			}

			displaySettings := make(map[string]any)
			for k, v := range flattenConfigMap(settings) {
				if s, ok := v.(string); ok {
					if s != "" {
						displaySettings[k] = v
					}
				} else if v != nil {
					displaySettings[k] = v
				}
			}

			if len(displaySettings) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No configuration values set. Use 'stowage config set <key> <value>'.")
				return nil
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Current configuration (%s):\n", app.ConfigManager.Path())
			for _, k := range slices.Sorted(maps.Keys(displaySettings)) {
				fmt.Fprintf(cmd.OutOrStdout(), "  %s = %v\n", k, displaySettings[k])
			}
			return nil
		},
	}
	configListCmd.Flags().StringVarP(&output, flags.Output, flags.OutputShort, "text", "Output format: text or yaml")

	configCmd.AddCommand(configSetCmd, configGetCmd, configDeleteCmd, configListCmd)
	return configCmd
}

// Recursively flattens a nested map (like Viper's config) into a flat map with dot notation keys
func flattenConfigMap(nestedMap map[string]any) map[string]any {
	flattenedMap := make(map[string]any)

	var flatten func(string, any)
	flatten = func(prefix string, value any) {
		switch v := value.(type) {
		case map[string]any:
			for k, val := range v {
				newPrefix := k
				if prefix != "" {
					newPrefix = prefix + "." + k
				}
				flatten(newPrefix, val)
			}
		default:
			if prefix != "" {
				flattenedMap[prefix] = value
			}
		}
	}

	flatten("", nestedMap)
	return flattenedMap
}
