package main

import (
	"fmt"

	"github.com/recera/rulesheet/cmd/rulesheet/internal/config"
	"github.com/recera/rulesheet/internal/cache"
	"github.com/recera/rulesheet/internal/defs"
	"github.com/recera/rulesheet/internal/logger"
	"github.com/recera/rulesheet/pkg/styling"
	"github.com/spf13/cobra"
)

// app holds state shared by every command
type app struct {
	configPath string
	logLevel   string
	jsonLogs   bool

	cfg *config.Config
	log *logger.Logger
}

func (a *app) setup(cmd *cobra.Command) error {
	var err error
	if a.configPath != "" {
		a.cfg, err = config.LoadFile(a.configPath)
	} else {
		a.cfg, err = config.Load(".")
	}
	if err != nil {
		return err
	}

	level := a.cfg.Log.Level
	if a.logLevel != "" {
		level = a.logLevel
	}
	a.log, err = logger.New(logger.Options{
		Level:         level,
		HumanReadable: a.cfg.Log.Human && !a.jsonLogs,
		Writer:        cmd.ErrOrStderr(),
	})
	if err != nil {
		return fmt.Errorf("invalid log level %q: %w", level, err)
	}
	return nil
}

// registry creates a registry from the styles config
func (a *app) registry() *styling.Registry {
	return styling.NewRegistry(
		styling.WithLogger(a.log.Zerolog()),
		styling.WithDefaultSheet(a.cfg.Styles.DefaultSheet),
		styling.WithMaxEntries(a.cfg.Styles.MaxEntries),
	)
}

// artifactCache opens the build artifact cache from the build config
func (a *app) artifactCache() (*cache.Cache, error) {
	strategy, err := cache.ParseStrategy(a.cfg.Build.CacheStrategy)
	if err != nil {
		return nil, err
	}
	maxAge, err := a.cfg.Build.MaxAge()
	if err != nil {
		return nil, err
	}
	return cache.New(cache.Config{
		Dir:      a.cfg.Build.CacheDir,
		MaxSize:  a.cfg.Build.CacheMaxSize,
		MaxAge:   maxAge,
		Strategy: strategy,
		Logger:   a.log.Zerolog(),
	})
}

// definitionFiles returns files, or the configured definitions when empty
func (a *app) definitionFiles(files []string) ([]string, error) {
	if len(files) == 0 {
		files = a.cfg.Styles.Definitions
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("no definition files: pass -f or set styles.definitions in the config")
	}
	return files, nil
}

// compile loads files and inserts them into a fresh registry
func (a *app) compile(files []string, rtl bool) (*styling.Registry, map[string]string, error) {
	loaded, err := defs.LoadAll(files)
	if err != nil {
		return nil, nil, err
	}
	reg := a.registry()
	classes, err := defs.InsertAll(reg, loaded, rtl)
	if err != nil {
		return nil, nil, err
	}
	return reg, classes, nil
}
