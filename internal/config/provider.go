package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

// ErrNotInitialized is returned when no .alertprefs directory can be found.
var ErrNotInitialized = errors.New("no .alertprefs directory found (run 'alertprefs init')")

// Paths captures resolved locations for config.
type Paths struct {
	ConfigDir  string // path to .alertprefs directory
	ConfigFile string // path to .alertprefs/config.yaml
}

// ResolvePaths finds the config directory and loads its config.
// Discovery order: explicit base > ALERTPREFS_DIR env var > walk up from CWD
// (stopping at the git root). Env overrides are applied to the returned Config.
func ResolvePaths(base string) (Paths, Config, error) {
	if base == "" {
		base = os.Getenv(EnvDir)
	}

	var dir string
	if base != "" {
		abs, err := normalizeBasePath(base)
		if err != nil {
			return Paths{}, Config{}, err
		}
		dir = abs
	} else {
		cwd, err := os.Getwd()
		if err != nil {
			return Paths{}, Config{}, fmt.Errorf("cannot get current directory: %w", err)
		}
		found, ok, err := findConfigUpward(cwd)
		if err != nil {
			return Paths{}, Config{}, err
		}
		if !ok {
			return Paths{}, Config{}, ErrNotInitialized
		}
		dir = found
	}

	paths := Paths{ConfigDir: dir, ConfigFile: filepath.Join(dir, FileName)}
	cfg, err := Load(paths.ConfigFile)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return Paths{}, Config{}, fmt.Errorf("%s: %w", paths.ConfigFile, ErrNotInitialized)
		}
		return Paths{}, Config{}, err
	}
	ApplyEnvOverrides(&cfg)
	return paths, cfg, nil
}

func normalizeBasePath(path string) (string, error) {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return "", fmt.Errorf("resolving path: %w", err)
	}
	if filepath.Base(absPath) != DirName {
		absPath = filepath.Join(absPath, DirName)
	}
	return absPath, nil
}

// findConfigUpward walks from start toward the filesystem root looking for
// .alertprefs/config.yaml. It stops at the git repository root.
func findConfigUpward(start string) (string, bool, error) {
	gitRoot := FindGitRoot(start)

	dir := start
	for {
		configDir := filepath.Join(dir, DirName)
		info, err := os.Stat(filepath.Join(configDir, FileName))
		if err == nil && !info.IsDir() {
			return configDir, true, nil
		} else if err != nil && !errors.Is(err, os.ErrNotExist) {
			return "", false, fmt.Errorf("checking config: %w", err)
		}

		if gitRoot != "" && dir == gitRoot {
			return "", false, nil
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", false, nil
		}
		dir = parent
	}
}

// FindGitRoot returns the git repository root for startDir, or "" if it is
// not inside a repository.
func FindGitRoot(startDir string) string {
	dir := startDir
	for {
		if info, err := os.Stat(filepath.Join(dir, ".git")); err == nil {
			if info.IsDir() || info.Mode().IsRegular() {
				return dir
			}
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return ""
		}
		dir = parent
	}
}
