package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"alertprefs/internal/config"
	"alertprefs/internal/logging"
	"alertprefs/internal/notifier"
	"alertprefs/internal/prefstore"
	"alertprefs/internal/settings"
	"alertprefs/internal/snapshot"
)

// AppProvider lazily initializes the App on first use.
type AppProvider struct {
	once sync.Once
	app  *App
	err  error

	// Config captured from flags before Execute()
	Path       string
	JSONOutput bool
	Out        io.Writer
	Err        io.Writer
}

// Get returns the App, initializing it on first call.
func (p *AppProvider) Get() (*App, error) {
	p.once.Do(func() {
		if p.app == nil {
			p.app, p.err = p.init(context.Background())
		}
	})
	return p.app, p.err
}

// Close closes the App if it was initialized.
func (p *AppProvider) Close() error {
	if p.app == nil {
		return nil
	}
	return p.app.Close()
}

// NewTestProvider creates a provider pre-initialized with the given App.
// Used for testing commands with a mock/test App.
func NewTestProvider(app *App) *AppProvider {
	return &AppProvider{
		app:        app,
		Path:       app.ConfigDir,
		JSONOutput: app.JSON,
		Out:        app.Out,
		Err:        app.Err,
	}
}

// ConfigPaths resolves the config directory without opening any backend.
func (p *AppProvider) ConfigPaths() (config.Paths, config.Config, error) {
	return config.ResolvePaths(p.Path)
}

func (p *AppProvider) init(ctx context.Context) (*App, error) {
	paths, cfg, err := p.ConfigPaths()
	if err != nil {
		return nil, err
	}
	cfg = cfg.Resolve(paths.ConfigDir)
	if err := config.Validate(cfg); err != nil {
		return nil, err
	}

	out := p.Out
	if out == nil {
		out = os.Stdout
	}
	errOut := p.Err
	if errOut == nil {
		errOut = os.Stderr
	}

	app := &App{
		Config:    cfg,
		ConfigDir: paths.ConfigDir,
		Registry:  prometheus.NewRegistry(),
		Log:       logging.NewLogger(errOut, cfg.LogLevel),
		Out:       out,
		Err:       errOut,
		JSON:      p.JSONOutput,
	}
	if err := wireApp(ctx, app); err != nil {
		_ = app.Close()
		return nil, err
	}
	return app, nil
}

// wireApp opens the backends named by app.Config and builds the model and
// notifier on top of them.
func wireApp(ctx context.Context, app *App) error {
	cfg := app.Config

	backend, closer, err := openBackend(ctx, cfg.Store)
	if err != nil {
		return err
	}
	if closer != nil {
		app.closers = append(app.closers, closer)
	}
	app.Store = prefstore.New(backend)

	snap, err := snapshot.Load(cfg.Snapshot, logging.NewComponentLogger(app.Log, "snapshot"))
	if err != nil {
		return err
	}

	opts := []settings.Option{settings.WithLogger(app.Log)}
	if cfg.StrictLists {
		opts = append(opts, settings.WithStrictLists())
	}
	app.Model, err = settings.New(app.Store, snap, opts...)
	if err != nil {
		return err
	}

	app.Metrics, err = notifier.NewMetrics(app.Registry)
	if err != nil {
		return err
	}
	nopts := []notifier.Option{notifier.WithLogger(app.Log), notifier.WithMetrics(app.Metrics)}
	broadcaster, closer, err := openBroadcaster(ctx, cfg)
	if err != nil {
		return err
	}
	if broadcaster != nil {
		nopts = append(nopts, notifier.WithBroadcaster(broadcaster))
	}
	if closer != nil {
		app.closers = append(app.closers, closer)
	}
	app.Notifier, err = notifier.New(app.Model, app.Store, nopts...)
	return err
}

// Execute runs the CLI.
func Execute() error {
	if err := config.LoadEnv(); err != nil {
		return fmt.Errorf("loading .env: %w", err)
	}

	provider := &AppProvider{
		Out:        os.Stdout,
		Err:        os.Stderr,
		JSONOutput: config.EnvBool(config.EnvJSON),
	}
	defer provider.Close()

	rootCmd := newRootCmd(provider)
	return rootCmd.Execute()
}

// newRootCmd creates the root command with all subcommands.
func newRootCmd(provider *AppProvider) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "alertprefs",
		Short: "Inspect and change emergency alert preferences",
		Long: `alertprefs manages the preference state behind an emergency alert
settings screen: the master toggle, per-category alert switches, vibration
and DND override, and the reminder interval.

Changes made here go through the same rules as the settings screen, so
turning off the master toggle disables every sub-alert, and overriding DND
forces vibration on.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	// Global flags - these populate the provider config
	rootCmd.PersistentFlags().BoolVar(&provider.JSONOutput, "json", provider.JSONOutput, "Output in JSON format")
	rootCmd.PersistentFlags().StringVar(&provider.Path, "path", provider.Path, "Path to project or .alertprefs directory (default: search from cwd)")

	rootCmd.AddCommand(newInitCmd(provider))
	rootCmd.AddCommand(newShowCmd(provider))
	rootCmd.AddCommand(newSetCmd(provider))
	rootCmd.AddCommand(newToggleCmd(provider))
	rootCmd.AddCommand(newKeysCmd(provider))
	rootCmd.AddCommand(newConfigCmd(provider))
	rootCmd.AddCommand(newVersionCmd(provider))

	return rootCmd
}
