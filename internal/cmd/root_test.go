package cmd

import (
	"bytes"
	"context"
	"path/filepath"
	"strings"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/prometheus/client_golang/prometheus"

	"alertprefs/internal/config"
	"alertprefs/internal/logging"
)

// newTestApp builds a fully wired App over a yaml store in a temp dir.
func newTestApp(t *testing.T, mutate ...func(*config.Config)) (*App, *bytes.Buffer) {
	t.Helper()
	dir := filepath.Join(t.TempDir(), config.DirName)
	cfg := config.Default()
	for _, m := range mutate {
		m(&cfg)
	}

	var out bytes.Buffer
	app := &App{
		Config:    cfg.Resolve(dir),
		ConfigDir: dir,
		Registry:  prometheus.NewRegistry(),
		Log:       logging.Discard(),
		Out:       &out,
		Err:       &out,
	}
	if err := wireApp(context.Background(), app); err != nil {
		t.Fatalf("wireApp: %v", err)
	}
	t.Cleanup(func() { _ = app.Close() })
	return app, &out
}

func runCmd(t *testing.T, app *App, args ...string) (string, error) {
	t.Helper()
	out := app.Out.(*bytes.Buffer)
	out.Reset()
	root := newRootCmd(NewTestProvider(app))
	root.SetArgs(args)
	root.SetOut(out)
	root.SetErr(out)
	err := root.Execute()
	return out.String(), err
}

func TestProvider_Init(t *testing.T) {
	tmp := t.TempDir()
	t.Setenv(config.EnvDir, "")
	if err := runInit(&bytes.Buffer{}, tmp, false, false, "yaml", "yaml"); err != nil {
		t.Fatalf("runInit: %v", err)
	}

	var out bytes.Buffer
	provider := &AppProvider{Path: tmp, Out: &out, Err: &out}
	defer provider.Close()

	app, err := provider.Get()
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if app.Model == nil || app.Notifier == nil || app.Store == nil {
		t.Fatalf("app not wired: %+v", app)
	}
	again, _ := provider.Get()
	if again != app {
		t.Error("Get() built a second App")
	}
	if got := app.Config.Store.Path; got != filepath.Join(tmp, config.DirName, "preferences.yaml") {
		t.Errorf("Store.Path = %q", got)
	}
}

func TestProvider_NotInitialized(t *testing.T) {
	t.Setenv(config.EnvDir, "")
	provider := &AppProvider{Path: t.TempDir(), Out: &bytes.Buffer{}}
	if _, err := provider.Get(); err == nil {
		t.Error("Get() should fail without a config")
	}
}

func TestProvider_InvalidConfig(t *testing.T) {
	tmp := t.TempDir()
	t.Setenv(config.EnvDir, "")
	if err := runInit(&bytes.Buffer{}, tmp, false, false, "yaml", "yaml"); err != nil {
		t.Fatalf("runInit: %v", err)
	}
	t.Setenv(config.EnvBackend, "mongo")

	provider := &AppProvider{Path: tmp, Out: &bytes.Buffer{}}
	_, err := provider.Get()
	if err == nil || !strings.Contains(err.Error(), "store.backend") {
		t.Errorf("Get: got %v, want a store.backend validation error", err)
	}
}

func TestWireApp_Backends(t *testing.T) {
	cases := map[string]func(*config.Config){
		"yaml":  func(c *config.Config) {},
		"files": func(c *config.Config) { c.Store = config.StoreConfig{Backend: "files", Path: "prefs"} },
		"sql":   func(c *config.Config) { c.Store = config.StoreConfig{Backend: "sql", SQLPath: ":memory:"} },
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			app, _ := newTestApp(t, mutate)
			if _, err := runCmd(t, app, "set", "enable_alert_speech", "false"); err != nil {
				t.Fatalf("set: %v", err)
			}
			v, err := app.Store.GetBoolean("enable_alert_speech", true)
			if err != nil || v {
				t.Errorf("stored value = %v, %v; want false", v, err)
			}
		})
	}
}

func TestWireApp_Redis(t *testing.T) {
	mr := miniredis.RunT(t)
	app, _ := newTestApp(t, func(c *config.Config) {
		c.Store = config.StoreConfig{Backend: "redis", RedisURL: "redis://" + mr.Addr(), RedisKey: "prefs"}
		c.Broadcast = config.BroadcastConfig{Backend: "redis", Channel: "chan"}
	})

	if _, err := runCmd(t, app, "set", "enable_area_update_info_alerts", "false"); err != nil {
		t.Fatalf("set: %v", err)
	}
	if got := mr.HGet("prefs", "enable_area_update_info_alerts"); got != "false" {
		t.Errorf("redis hash value = %q, want %q", got, "false")
	}
	if got := mr.HGet("prefs", "any_preference_changed_by_user"); got != "true" {
		t.Errorf("marker = %q, want %q", got, "true")
	}
}

func TestWireApp_UnknownBackend(t *testing.T) {
	app := &App{
		Config:   config.Config{Store: config.StoreConfig{Backend: "mongo"}},
		Registry: prometheus.NewRegistry(),
		Log:      logging.Discard(),
		Out:      &bytes.Buffer{},
	}
	if err := wireApp(context.Background(), app); err == nil {
		t.Error("wireApp should reject an unknown backend")
	}
}

func TestRootCmd_Help(t *testing.T) {
	var out bytes.Buffer
	root := newRootCmd(&AppProvider{Out: &out})
	root.SetOut(&out)
	root.SetArgs([]string{"--help"})
	if err := root.Execute(); err != nil {
		t.Fatalf("help: %v", err)
	}
	for _, sub := range []string{"init", "show", "set", "toggle", "keys", "config", "version"} {
		if !strings.Contains(out.String(), sub) {
			t.Errorf("help does not list %q", sub)
		}
	}
}

func TestApp_ColorsOffForBuffers(t *testing.T) {
	app := &App{Out: &bytes.Buffer{}}
	if app.SuccessColor("x") != "x" || app.WarnColor("x") != "x" || app.DimColor("x") != "x" {
		t.Error("colors applied to a non-terminal writer")
	}
}
