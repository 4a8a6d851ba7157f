package main

import (
	"context"
	"errors"
	"net"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"syscall"
	"time"

	"github.com/recera/rulesheet/internal/cache"
	"github.com/recera/rulesheet/internal/defs"
	"github.com/recera/rulesheet/pkg/live"
	"github.com/recera/rulesheet/pkg/server"
	"github.com/recera/rulesheet/pkg/styling"
	"github.com/spf13/cobra"
)

type serveOptions struct {
	files []string
	host  string
	port  int
	watch bool
	rtl   bool
}

func newServeCommand(a *app) *cobra.Command {
	var opts serveOptions

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the style registry over HTTP",
		Long: `Loads the definition files into a registry and serves insertion, sheet
CSS, component rendering and the live rule stream. With --watch, edited
definition files are inserted again; only rules for new class names reach
the sheets.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !cmd.Flags().Changed("host") {
				opts.host = a.cfg.Server.Host
			}
			if !cmd.Flags().Changed("port") {
				opts.port = a.cfg.Server.Port
			}
			if !cmd.Flags().Changed("watch") {
				opts.watch = a.cfg.Server.Watch
			}
			if !cmd.Flags().Changed("rtl") {
				opts.rtl = a.cfg.Styles.RTL
			}
			if len(opts.files) == 0 {
				opts.files = a.cfg.Styles.Definitions
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return runServe(ctx, a, opts, nil)
		},
	}

	cmd.Flags().StringSliceVarP(&opts.files, "file", "f", nil, "Definition file (repeatable)")
	cmd.Flags().StringVar(&opts.host, "host", "", "Listen host")
	cmd.Flags().IntVarP(&opts.port, "port", "p", 0, "Listen port")
	cmd.Flags().BoolVarP(&opts.watch, "watch", "w", false, "Reload definition files on change")
	cmd.Flags().BoolVar(&opts.rtl, "rtl", false, "Select right-to-left variants for definition files")

	return cmd
}

// runServe blocks until ctx is done. ready, when set, receives the bound
// address once the listener is open.
func runServe(ctx context.Context, a *app, opts serveOptions, ready chan<- string) error {
	reg := a.registry()
	defer reg.Close()

	if err := loadInto(a, reg, opts.files, opts.rtl); err != nil {
		return err
	}

	liveServer := live.NewServer(reg,
		live.WithLogger(a.log.Zerolog()),
		live.WithAllowedOrigins(a.cfg.Server.AllowedOrigins...),
	)
	defer liveServer.Close()

	httpServer := &http.Server{
		Handler:           server.New(reg, liveServer, a.log.Zerolog()),
		ReadHeaderTimeout: 10 * time.Second,
	}

	ln, err := net.Listen("tcp", net.JoinHostPort(opts.host, strconv.Itoa(opts.port)))
	if err != nil {
		return err
	}
	a.log.With("addr", ln.Addr().String()).Info("serving")
	if ready != nil {
		ready <- ln.Addr().String()
	}

	if opts.watch && len(opts.files) > 0 {
		store, err := a.artifactCache()
		if err != nil {
			a.log.Error(err, "artifact cache unavailable, built artifacts will not be invalidated")
		} else {
			defer store.Close()
		}

		go func() {
			err := watchFiles(ctx, opts.files, a.log, func(changed []string) {
				a.log.With("files", changed).Info("definitions changed")
				if store != nil {
					invalidateArtifacts(a, store, changed)
				}
				if err := loadInto(a, reg, changed, opts.rtl); err != nil {
					a.log.Error(err, "reload failed")
				}
			})
			if err != nil {
				a.log.Error(err, "watcher stopped")
			}
		}()
	}

	errCh := make(chan error, 1)
	go func() { errCh <- httpServer.Serve(ln) }()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errCh; !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	a.log.Info("server stopped")
	return nil
}

// invalidateArtifacts drops build artifacts made from any changed file
func invalidateArtifacts(a *app, store *cache.Cache, changed []string) {
	removed := 0
	for _, path := range changed {
		if abs, err := filepath.Abs(path); err == nil {
			path = abs
		}
		removed += store.InvalidateSource(path)
	}
	if removed > 0 {
		a.log.With("artifacts", removed).Debug("invalidated build artifacts")
	}
}

// loadInto inserts definition files into reg. Class names already
// cached are not inserted again.
func loadInto(a *app, reg *styling.Registry, files []string, rtl bool) error {
	if len(files) == 0 {
		return nil
	}
	loaded, err := defs.LoadAll(files)
	if err != nil {
		return err
	}
	before := reg.Stats().Inserted
	classes, err := defs.InsertAll(reg, loaded, rtl)
	if err != nil {
		return err
	}
	a.log.WithFields(map[string]any{
		"sets":     len(classes),
		"inserted": reg.Stats().Inserted - before,
	}).Info("definitions loaded")
	return nil
}
