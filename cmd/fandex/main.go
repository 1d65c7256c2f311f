// Package main is the fandex CLI entry point.
package main

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/hyperjump/fandex/internal/config"
	"github.com/hyperjump/fandex/internal/models"
)

var version = "dev"

const defaultConfigPath = "/usr/local/etc/fandex/config.yaml"

// globalOptions are the flags shared by every command.
type globalOptions struct {
	configPath string
	debug      bool
	catalogs   []string // domain=path overrides
}

// loadConfig loads config from path. When path is the default, it first looks for
// config.yaml in the current directory (for development); if that exists it is used.
// A missing default config yields the built-in defaults, so --catalog alone is enough
// for one-shot commands. Returns the config and the path that was actually loaded.
func loadConfig(path string) (*config.Config, string, error) {
	if path == defaultConfigPath {
		if cwd, cwdErr := os.Getwd(); cwdErr == nil {
			fallback := filepath.Join(cwd, "config.yaml")
			if _, statErr := os.Stat(fallback); statErr == nil {
				cfg, loadErr := config.Load(fallback)
				if loadErr != nil {
					return nil, "", loadErr
				}
				return cfg, fallback, nil
			}
		}
		if _, statErr := os.Stat(path); errors.Is(statErr, fs.ErrNotExist) {
			cfg := &config.Config{}
			config.ApplyDefaults(cfg)
			return cfg, "", nil
		}
	}
	cfg, err := config.Load(path)
	if err != nil {
		return nil, "", err
	}
	return cfg, path, nil
}

// applyCatalogFlags replaces or adds catalog sources from domain=path flags.
// Paths ending in .db, .sqlite or .sqlite3 are treated as SQLite databases.
func applyCatalogFlags(cfg *config.Config, flags []string) error {
	for _, f := range flags {
		name, path, ok := strings.Cut(f, "=")
		if !ok || path == "" {
			return fmt.Errorf("invalid --catalog %q, want domain=path", f)
		}
		d, err := models.ParseDomain(name)
		if err != nil {
			return err
		}
		abs, err := filepath.Abs(path)
		if err != nil {
			return fmt.Errorf("invalid catalog path %q: %w", path, err)
		}
		src := config.SourceConfig{Domain: string(d), Path: abs}
		switch strings.ToLower(filepath.Ext(abs)) {
		case ".db", ".sqlite", ".sqlite3":
			src = config.SourceConfig{Domain: string(d), Database: abs}
		}

		replaced := false
		for i, existing := range cfg.Catalog.Sources {
			if existing.Domain == string(d) {
				cfg.Catalog.Sources[i] = src
				replaced = true
			}
		}
		if !replaced {
			cfg.Catalog.Sources = append(cfg.Catalog.Sources, src)
		}
	}
	return cfg.Validate()
}

// buildSearchQuery joins all positional args with spaces so multi-word queries
// work the same with or without shell quoting.
func buildSearchQuery(args []string) string {
	return strings.TrimSpace(strings.Join(args, " "))
}

func newRootCmd() *cobra.Command {
	opts := &globalOptions{}
	root := &cobra.Command{
		Use:   "fandex",
		Short: "Fuzzy search over anime, manga and quiz catalogs",
		Long: `fandex searches anime, manga and quiz catalogs with typo correction,
synonym expansion and fuzzy matching, either from the command line or as an
HTTP service.`,
		SilenceUsage: true,
	}
	root.PersistentFlags().StringVar(&opts.configPath, "config", defaultConfigPath, "config file path")
	root.PersistentFlags().BoolVar(&opts.debug, "debug", false, "enable debug logging")
	root.PersistentFlags().StringArrayVar(&opts.catalogs, "catalog", nil, "catalog source as domain=path (repeatable, overrides config)")

	root.AddCommand(
		newServeCmd(opts),
		newSearchCmd(opts),
		newSuggestCmd(opts),
		newSimilarCmd(opts),
		newImportCmd(opts),
		newVersionCmd(),
	)
	return root
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
