package cmd

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"alertprefs/internal/settings"
)

func newShowCmd(provider *AppProvider) *cobra.Command {
	var all bool

	cmd := &cobra.Command{
		Use:   "show [key...]",
		Short: "Show preference values",
		Long: `Show the current preference values.

Without arguments, shows every preference visible on this device. Disabled
preferences are marked; they cannot be changed until the preference that
controls them allows it.

Examples:
  alertprefs show
  alertprefs show --all
  alertprefs show override_dnd enable_alert_vibrate`,
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := provider.Get()
			if err != nil {
				return err
			}

			var items []settings.Item
			if len(args) > 0 {
				for _, key := range args {
					it, ok := app.Model.Item(key)
					if !ok {
						return fmt.Errorf("%q: %w", key, settings.ErrUnknownKey)
					}
					items = append(items, it)
				}
			} else {
				for _, it := range app.Model.Items() {
					if all || it.Visible {
						items = append(items, it)
					}
				}
			}

			if app.JSON {
				if items == nil {
					items = []settings.Item{}
				}
				return json.NewEncoder(app.Out).Encode(items)
			}
			for _, it := range items {
				fmt.Fprintln(app.Out, formatItem(app, it))
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&all, "all", false, "Include preferences hidden on this device")

	return cmd
}

// formatItem renders one item as "key  value" with state markers.
func formatItem(app *App, it settings.Item) string {
	value := it.Value
	if it.Kind == settings.KindList {
		for _, c := range it.Choices {
			if c.Value == it.Value && c.Label != "" {
				value = fmt.Sprintf("%s (%s)", it.Value, c.Label)
				break
			}
		}
	}

	line := fmt.Sprintf("%-42s %s", it.Key, value)
	if !it.Visible {
		line += " [hidden]"
	}
	if !it.Enabled {
		return app.DimColor(line + " [disabled]")
	}
	return line
}
