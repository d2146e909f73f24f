package cmd

import (
	"encoding/json"
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"alertprefs/internal/config"
)

// newConfigCmd creates the config command with subcommands.
func newConfigCmd(provider *AppProvider) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage configuration settings",
		Long: `Manage alertprefs configuration settings.

Configuration lives in .alertprefs/config.yaml and is addressed with dotted
keys (store.backend, broadcast.channel, log_level, ...). These commands
never open the preference store.

Subcommands:
  show      Show all configuration values
  get       Get a configuration value
  set       Set a configuration value
  validate  Validate configuration`,
	}

	cmd.AddCommand(newConfigShowCmd(provider))
	cmd.AddCommand(newConfigGetCmd(provider))
	cmd.AddCommand(newConfigSetCmd(provider))
	cmd.AddCommand(newConfigValidateCmd(provider))

	return cmd
}

// newConfigShowCmd creates the "config show" subcommand.
func newConfigShowCmd(provider *AppProvider) *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Show all configuration values",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			_, cfg, err := provider.ConfigPaths()
			if err != nil {
				return err
			}
			all := config.Flatten(cfg)

			if provider.JSONOutput {
				return json.NewEncoder(provider.Out).Encode(all)
			}

			keys := make([]string, 0, len(all))
			for k := range all {
				keys = append(keys, k)
			}
			sort.Strings(keys)
			for _, k := range keys {
				fmt.Fprintf(provider.Out, "%s = %s\n", k, all[k])
			}
			return nil
		},
	}
}

// newConfigGetCmd creates the "config get" subcommand.
func newConfigGetCmd(provider *AppProvider) *cobra.Command {
	return &cobra.Command{
		Use:   "get <key>",
		Short: "Get a configuration value",
		Long: `Get the value of a configuration key, with environment overrides applied.

Examples:
  alertprefs config get store.backend
  alertprefs config get log_level`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			_, cfg, err := provider.ConfigPaths()
			if err != nil {
				return err
			}

			key := args[0]
			value, ok := config.Get(cfg, key)
			if !ok {
				return fmt.Errorf("unknown config key %q", key)
			}

			if provider.JSONOutput {
				return json.NewEncoder(provider.Out).Encode(map[string]string{
					"key":   key,
					"value": value,
				})
			}
			fmt.Fprintln(provider.Out, value)
			return nil
		},
	}
}

// newConfigSetCmd creates the "config set" subcommand.
func newConfigSetCmd(provider *AppProvider) *cobra.Command {
	return &cobra.Command{
		Use:   "set <key> <value>",
		Short: "Set a configuration value",
		Long: `Set a configuration key to a value and write config.yaml.

The resulting configuration must validate; nothing is written otherwise.
Environment overrides are not written back.

Examples:
  alertprefs config set store.backend sql
  alertprefs config set broadcast.backend redis`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			paths, _, err := provider.ConfigPaths()
			if err != nil {
				return err
			}
			cfg, err := config.Load(paths.ConfigFile)
			if err != nil {
				return err
			}

			key, value := args[0], args[1]
			if err := config.Set(&cfg, key, value); err != nil {
				return err
			}
			if err := config.Validate(cfg); err != nil {
				return err
			}
			if err := config.Write(paths.ConfigFile, cfg); err != nil {
				return err
			}

			if provider.JSONOutput {
				return json.NewEncoder(provider.Out).Encode(map[string]string{
					"key":   key,
					"value": value,
				})
			}
			fmt.Fprintf(provider.Out, "Set %s = %s\n", key, value)
			return nil
		},
	}
}

// newConfigValidateCmd creates the "config validate" subcommand.
func newConfigValidateCmd(provider *AppProvider) *cobra.Command {
	return &cobra.Command{
		Use:   "validate",
		Short: "Validate configuration",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			_, cfg, err := provider.ConfigPaths()
			if err != nil {
				return err
			}
			verr := config.Validate(cfg)

			if provider.JSONOutput {
				result := map[string]interface{}{"valid": verr == nil}
				if verr != nil {
					result["error"] = verr.Error()
				}
				if err := json.NewEncoder(provider.Out).Encode(result); err != nil {
					return err
				}
				return verr
			}
			if verr != nil {
				return verr
			}
			fmt.Fprintln(provider.Out, "Configuration is valid")
			return nil
		},
	}
}
