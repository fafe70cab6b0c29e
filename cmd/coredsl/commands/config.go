package commands

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"

	"github.com/joho/godotenv"
	"github.com/panyam/coredsl/loader"
	"github.com/spf13/cobra"
)

// Config holds the settings shared by all commands.  Values come from the
// environment (optionally seeded from an env file) and are overridden by
// flags.
type Config struct {
	SearchPaths []string
	MaxDepth    int
	LogLevel    slog.Level
}

var config = Config{LogLevel: slog.LevelWarn}

// newFileSystem returns the file system documents are read from.
var newFileSystem = func() loader.FileSystem {
	return loader.DefaultFileSystem(".")
}

func loadConfig(cmd *cobra.Command) (cfg Config, err error) {
	if err = godotenv.Load(envFile); err != nil {
		if cmd.Flags().Changed("env") || !errors.Is(err, fs.ErrNotExist) {
			return cfg, fmt.Errorf("error loading env file '%s': %w", envFile, err)
		}
	}

	cfg.LogLevel = slog.LevelWarn
	if v := os.Getenv("COREDSL_LOG_LEVEL"); v != "" {
		if err = cfg.LogLevel.UnmarshalText([]byte(v)); err != nil {
			return cfg, fmt.Errorf("invalid COREDSL_LOG_LEVEL '%s': %w", v, err)
		}
	}
	if v := os.Getenv("COREDSL_MAX_IMPORT_DEPTH"); v != "" {
		if cfg.MaxDepth, err = strconv.Atoi(v); err != nil {
			return cfg, fmt.Errorf("invalid COREDSL_MAX_IMPORT_DEPTH '%s': %w", v, err)
		}
	}
	if v := os.Getenv("COREDSL_PATH"); v != "" {
		cfg.SearchPaths = filepath.SplitList(v)
	}

	flags := cmd.Flags()
	if flags.Changed("log-level") {
		if err = cfg.LogLevel.UnmarshalText([]byte(logLevel)); err != nil {
			return cfg, fmt.Errorf("invalid log level '%s': %w", logLevel, err)
		}
	}
	if flags.Changed("max-depth") {
		cfg.MaxDepth = maxDepth
	}
	if flags.Changed("include") {
		cfg.SearchPaths = append(append([]string{}, searchPaths...), cfg.SearchPaths...)
	}
	return cfg, nil
}

func newLoader() *loader.Loader {
	resolver := loader.NewFileSystemResolver(newFileSystem(), config.SearchPaths...)
	return loader.NewLoader(loader.NewParser(), resolver, config.MaxDepth)
}
