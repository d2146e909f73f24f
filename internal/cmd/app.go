// Package cmd implements the alertprefs command-line interface.
package cmd

import (
	"errors"
	"io"
	"os"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/sirupsen/logrus"
	"golang.org/x/term"

	"alertprefs/internal/config"
	"alertprefs/internal/notifier"
	"alertprefs/internal/prefstore"
	"alertprefs/internal/settings"
)

// App holds application state shared across commands.
type App struct {
	Model     *settings.Model
	Notifier  *notifier.Notifier
	Store     *prefstore.Store
	Config    config.Config
	ConfigDir string // path to .alertprefs directory
	Registry  *prometheus.Registry
	Metrics   *notifier.Metrics
	Log       *logrus.Logger
	Out       io.Writer
	Err       io.Writer
	JSON      bool // output in JSON format

	closers []io.Closer
}

// Close releases backend connections.
func (a *App) Close() error {
	if a.Notifier != nil {
		a.Notifier.Close()
	}
	var errs []error
	for _, c := range a.closers {
		errs = append(errs, c.Close())
	}
	a.closers = nil
	return errors.Join(errs...)
}

func (a *App) isTerminal() bool {
	f, ok := a.Out.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

// SuccessColor returns the string wrapped in green ANSI codes if stdout is a terminal,
// otherwise returns the string unchanged.
func (a *App) SuccessColor(s string) string {
	if a.isTerminal() {
		return "\033[32m" + s + "\033[0m"
	}
	return s
}

// WarnColor returns the string wrapped in orange ANSI codes if stdout is a terminal,
// otherwise returns the string unchanged.
func (a *App) WarnColor(s string) string {
	if a.isTerminal() {
		return "\033[38;5;214m" + s + "\033[0m"
	}
	return s
}

// DimColor returns the string wrapped in faint ANSI codes if stdout is a terminal,
// otherwise returns the string unchanged.
func (a *App) DimColor(s string) string {
	if a.isTerminal() {
		return "\033[2m" + s + "\033[0m"
	}
	return s
}
