package cmd

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"alertprefs/internal/config"
	"alertprefs/internal/snapshot"
)

// newInitCmd creates the init command.
// Note: init doesn't use the provider's App since it creates the .alertprefs directory.
func newInitCmd(provider *AppProvider) *cobra.Command {
	var (
		force   bool
		format  string
		backend string
	)

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Initialize a new .alertprefs directory",
		Long: `Initialize a new .alertprefs directory in the current directory
(or the directory given by --path or ALERTPREFS_DIR).

Writes config.yaml with the default settings and a device snapshot
(snapshot.yaml, or snapshot.toml with --snapshot-format toml).`,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := provider.Out
			if out == nil {
				out = os.Stdout
			}
			return runInit(out, provider.Path, provider.JSONOutput, force, format, backend)
		},
	}

	cmd.Flags().BoolVar(&force, "force", false, "Overwrite an existing configuration")
	cmd.Flags().StringVar(&format, "snapshot-format", "yaml", "Snapshot file format (yaml or toml)")
	cmd.Flags().StringVar(&backend, "backend", "yaml", "Preference store backend (yaml, files, redis, sql)")

	return cmd
}

func runInit(out io.Writer, base string, jsonOut, force bool, format, backend string) error {
	if format != "yaml" && format != "toml" {
		return fmt.Errorf("invalid snapshot format %q (allowed: yaml, toml)", format)
	}

	// Path resolution: --path > ALERTPREFS_DIR env var > CWD
	if base == "" {
		base = os.Getenv(config.EnvDir)
	}
	if base == "" {
		cwd, err := os.Getwd()
		if err != nil {
			return fmt.Errorf("getting current directory: %w", err)
		}
		base = cwd
	}
	absPath, err := filepath.Abs(base)
	if err != nil {
		return fmt.Errorf("resolving path: %w", err)
	}
	dir := absPath
	if filepath.Base(dir) != config.DirName {
		dir = filepath.Join(absPath, config.DirName)
	}

	configPath := filepath.Join(dir, config.FileName)
	if _, err := os.Stat(configPath); err == nil {
		if !force {
			return errors.New("alertprefs is already initialized (use --force to reinitialize)")
		}
	} else if !os.IsNotExist(err) {
		return fmt.Errorf("checking %s: %w", configPath, err)
	}

	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("creating %s directory: %w", config.DirName, err)
	}

	cfg := config.Default()
	cfg.Store.Backend = backend
	if backend == "files" {
		cfg.Store.Path = "preferences"
	}
	cfg.Snapshot = "snapshot." + format
	if err := config.Validate(cfg); err != nil {
		return err
	}
	if err := config.Write(configPath, cfg); err != nil {
		return err
	}

	snapshotPath := filepath.Join(dir, cfg.Snapshot)
	if err := snapshot.Write(snapshotPath, snapshot.DefaultFile()); err != nil {
		return err
	}

	if jsonOut {
		return json.NewEncoder(out).Encode(map[string]string{
			"path":     dir,
			"config":   configPath,
			"snapshot": snapshotPath,
		})
	}
	fmt.Fprintf(out, "Initialized alertprefs in %s\n", dir)
	return nil
}
