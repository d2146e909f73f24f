package cmd

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"alertprefs/internal/rules"
	"alertprefs/internal/settings"
)

func newKeysCmd(provider *AppProvider) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "keys",
		Short: "List preference keys, marker keys and rules",
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := provider.Get()
			if err != nil {
				return err
			}

			type keyInfo struct {
				Key  string        `json:"key"`
				Kind settings.Kind `json:"kind"`
			}
			var keys []keyInfo
			for _, it := range app.Model.Items() {
				keys = append(keys, keyInfo{Key: it.Key, Kind: it.Kind})
			}
			ruleSet := app.Model.Rules()

			if app.JSON {
				return json.NewEncoder(app.Out).Encode(struct {
					Keys    []keyInfo    `json:"keys"`
					Markers []string     `json:"markers"`
					Rules   []rules.Rule `json:"rules"`
				}{keys, settings.MarkerKeys(), ruleSet})
			}

			for _, k := range keys {
				fmt.Fprintf(app.Out, "%-42s %s\n", k.Key, k.Kind)
			}
			fmt.Fprintln(app.Out)
			fmt.Fprintln(app.Out, "Markers:")
			for _, k := range settings.MarkerKeys() {
				fmt.Fprintf(app.Out, "  %s\n", k)
			}
			fmt.Fprintln(app.Out)
			fmt.Fprintln(app.Out, "Rules:")
			for _, r := range ruleSet {
				fmt.Fprintf(app.Out, "  %s: %s -> %s\n", r.Name, r.Trigger, strings.Join(r.Targets, ", "))
			}
			return nil
		},
	}
	return cmd
}
