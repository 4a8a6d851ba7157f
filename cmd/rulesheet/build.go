package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"

	"github.com/recera/rulesheet/internal/cache"
	"github.com/spf13/cobra"
)

type buildOptions struct {
	files    []string
	output   string
	classMap string
	rtl      bool
	noCache  bool
}

func newBuildCommand(a *app) *cobra.Command {
	var opts buildOptions

	cmd := &cobra.Command{
		Use:   "build",
		Short: "Compile definition files into a stylesheet",
		Long: `Inserts every rule set of the definition files into a fresh registry and
writes the resulting CSS plus a JSON map from set name to class names.
Outputs are cached by input content.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !cmd.Flags().Changed("rtl") {
				opts.rtl = a.cfg.Styles.RTL
			}
			if opts.output == "" {
				opts.output = a.cfg.Build.Output
			}
			if opts.classMap == "" {
				opts.classMap = a.cfg.Build.ClassMap
			}
			return runBuild(a, opts)
		},
	}

	cmd.Flags().StringSliceVarP(&opts.files, "file", "f", nil, "Definition file (repeatable)")
	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "CSS output path")
	cmd.Flags().StringVar(&opts.classMap, "class-map", "", "Class map output path")
	cmd.Flags().BoolVar(&opts.rtl, "rtl", false, "Select right-to-left variants")
	cmd.Flags().BoolVar(&opts.noCache, "no-cache", false, "Skip the artifact cache")

	return cmd
}

// artifact is what a build produces and the cache stores
type artifact struct {
	css     []byte
	classes map[string]string
}

func runBuild(a *app, opts buildOptions) error {
	files, err := a.definitionFiles(opts.files)
	if err != nil {
		return err
	}

	var store *cache.Cache
	var key string
	if !opts.noCache {
		store, err = a.artifactCache()
		if err != nil {
			a.log.Error(err, "artifact cache unavailable, building without it")
		} else {
			defer store.Close()
			fileKey, err := cache.KeyFromFiles(files...)
			if err != nil {
				return err
			}
			key = cache.Key(fileKey, a.cfg.Styles.DefaultSheet, strconv.FormatBool(opts.rtl))
		}
	}

	art, hit := cachedArtifact(store, key)
	if !hit {
		reg, classes, err := a.compile(files, opts.rtl)
		if err != nil {
			return err
		}
		art = artifact{css: []byte(reg.AllCSS()), classes: classes}

		if store != nil {
			if err := storeArtifact(store, key, files, art); err != nil {
				a.log.Error(err, "failed to cache build output")
			}
		}
	}

	if err := writeFile(opts.output, art.css); err != nil {
		return err
	}
	if opts.classMap != "" {
		data, err := json.MarshalIndent(art.classes, "", "  ")
		if err != nil {
			return err
		}
		if err := writeFile(opts.classMap, append(data, '\n')); err != nil {
			return err
		}
	}

	a.log.WithFields(map[string]any{
		"output": opts.output,
		"sets":   len(art.classes),
		"bytes":  len(art.css),
		"cached": hit,
		"rtl":    opts.rtl,
	}).Info("build complete")
	return nil
}

func cachedArtifact(store *cache.Cache, key string) (artifact, bool) {
	if store == nil {
		return artifact{}, false
	}
	css, ok := store.Get(key)
	if !ok {
		return artifact{}, false
	}
	entry, _ := store.Lookup(key)
	classes := make(map[string]string)
	if err := json.Unmarshal([]byte(entry.Metadata["classes"]), &classes); err != nil {
		return artifact{}, false
	}
	return artifact{css: css, classes: classes}, true
}

func storeArtifact(store *cache.Cache, key string, files []string, art artifact) error {
	classes, err := json.Marshal(art.classes)
	if err != nil {
		return err
	}
	sources := make([]string, 0, len(files))
	for _, f := range files {
		if abs, err := filepath.Abs(f); err == nil {
			f = abs
		}
		sources = append(sources, f)
	}
	sort.Strings(sources)
	return store.Put(key, art.css, sources, map[string]string{"classes": string(classes)})
}

func writeFile(path string, data []byte) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create output directory: %w", err)
		}
	}
	return os.WriteFile(path, data, 0644)
}
