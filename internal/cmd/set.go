package cmd

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"alertprefs/internal/pref"
	"alertprefs/internal/settings"
)

func newSetCmd(provider *AppProvider) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "set <key> <value>",
		Short: "Change a preference",
		Long: `Change a preference the way a user would on the settings screen.

Switches take true or false; lists take one of their values. Rules run as
part of the change, and every preference they touch is reported.

Examples:
  alertprefs set enable_alerts_master_toggle false
  alertprefs set alert_reminder_interval 15`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := provider.Get()
			if err != nil {
				return err
			}
			return applyChange(cmd.Context(), app, args[0], args[1])
		},
	}
	return cmd
}

func newToggleCmd(provider *AppProvider) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "toggle <key>",
		Short: "Flip a switch",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := provider.Get()
			if err != nil {
				return err
			}
			it, ok := app.Model.Item(args[0])
			if !ok || it.Kind != settings.KindSwitch {
				return fmt.Errorf("switch %q: %w", args[0], settings.ErrUnknownKey)
			}
			return applyChange(cmd.Context(), app, it.Key, strconv.FormatBool(!it.Checked()))
		},
	}
	return cmd
}

// changeResult is the JSON form of a set/toggle.
type changeResult struct {
	Key     string         `json:"key"`
	Value   string         `json:"value"`
	Changed bool           `json:"changed"`
	Effects []changeEffect `json:"effects"`
}

type changeEffect struct {
	Key   string `json:"key"`
	Field string `json:"field"`
	Value any    `json:"value"`
}

// applyChange routes a user edit through the model, then flushes the
// notifier so markers and broadcasts go out before the command exits.
func applyChange(ctx context.Context, app *App, key, raw string) error {
	it, ok := app.Model.Item(key)
	if !ok {
		return fmt.Errorf("%q: %w", key, settings.ErrUnknownKey)
	}

	var changed bool
	var effects []changeEffect
	sub := app.Model.Subscribe(func(c pref.Change) {
		if c.Key == key && c.Field == pref.FieldValue {
			changed = true
			return
		}
		effects = append(effects, changeEffect{Key: c.Key, Field: c.Field.String(), Value: c.New})
	})
	defer sub.Unsubscribe()

	var changeErr error
	switch it.Kind {
	case settings.KindSwitch:
		v, err := strconv.ParseBool(raw)
		if err != nil {
			return fmt.Errorf("%s: value must be true or false, got %q", key, raw)
		}
		raw = strconv.FormatBool(v)
		changeErr = app.Model.ChangeSwitch(key, v)
	default:
		changeErr = app.Model.ChangeList(key, raw)
	}

	// A failed rule still leaves the user's own value persisted, so the
	// markers are written before any error is reported.
	if ctx == nil {
		ctx = context.Background()
	}
	if err := app.Notifier.Flush(ctx); err != nil {
		return errors.Join(changeErr, fmt.Errorf("notifying change: %w", err))
	}
	if changeErr != nil {
		return changeErr
	}

	if app.JSON {
		if effects == nil {
			effects = []changeEffect{}
		}
		return json.NewEncoder(app.Out).Encode(changeResult{
			Key:     key,
			Value:   raw,
			Changed: changed,
			Effects: effects,
		})
	}

	if !changed {
		fmt.Fprintf(app.Out, "%s already %s\n", key, raw)
		return nil
	}
	fmt.Fprintf(app.Out, "%s %s = %s\n", app.SuccessColor("Set"), key, raw)
	for _, e := range effects {
		fmt.Fprintf(app.Out, "  %s %s.%s = %v\n", app.WarnColor("->"), e.Key, e.Field, e.Value)
	}
	return nil
}
