package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"sync"
	"syscall"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/robfig/cron/v3"
	"github.com/spf13/cobra"

	"github.com/rebron1900/bymattlee-11ty-starter/internal/logger"
	"github.com/rebron1900/bymattlee-11ty-starter/internal/site"
)

const debounceDuration = 500 * time.Millisecond

var serverPort int

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serves the site locally and rebuilds on changes",
	Long: `The serve command performs an initial build, then serves the output
directory over HTTP. Changes below the input and asset directories trigger a
rebuild. With serve.schedule set, the site is also rebuilt on that cron
schedule so new Ghost content shows up without a file change.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		log := logger.Log
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		b, closeFn, err := newSiteBuilder(appConfig)
		if err != nil {
			return err
		}
		defer closeFn()

		log.Info("performing initial build")
		if _, err := b.Build(ctx); err != nil {
			return fmt.Errorf("initial build failed: %w", err)
		}

		rb := &rebuilder{builder: b}

		watcher, err := fsnotify.NewWatcher()
		if err != nil {
			return fmt.Errorf("failed to create file watcher: %w", err)
		}
		defer watcher.Close()
		go rb.watch(ctx, watcher)
		for _, root := range watchRoots() {
			addWatchTree(watcher, root)
		}

		if appConfig.Serve.Schedule != "" {
			c := cron.New()
			if _, err := c.AddFunc(appConfig.Serve.Schedule, func() {
				log.Info("scheduled rebuild")
				rb.rebuild(ctx)
			}); err != nil {
				return fmt.Errorf("invalid serve.schedule %q: %w", appConfig.Serve.Schedule, err)
			}
			c.Start()
			defer c.Stop()
		}

		port := serverPort
		if !cmd.Flags().Changed("port") && appConfig.Serve.Port != 0 {
			port = appConfig.Serve.Port
		}
		srv := &http.Server{
			Addr:              fmt.Sprintf(":%d", port),
			Handler:           noCacheFileServer(appConfig.OutputDir),
			ReadHeaderTimeout: 10 * time.Second,
		}

		errCh := make(chan error, 1)
		go func() {
			log.Info("serving site", "dir", appConfig.OutputDir, "url", fmt.Sprintf("http://localhost:%d", port))
			errCh <- srv.ListenAndServe()
		}()

		select {
		case err := <-errCh:
			if !errors.Is(err, http.ErrServerClosed) {
				return fmt.Errorf("failed to start HTTP server: %w", err)
			}
			return nil
		case <-ctx.Done():
			log.Info("shutting down")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		}
	},
}

// rebuilder serialises rebuilds triggered by the watcher and the scheduler.
type rebuilder struct {
	builder *site.Builder
	mu      sync.Mutex
}

func (r *rebuilder) rebuild(ctx context.Context) {
	r.mu.Lock()
	defer r.mu.Unlock()
	runBuild(ctx, r.builder)
}

func (r *rebuilder) watch(ctx context.Context, watcher *fsnotify.Watcher) {
	log := logger.Log
	var buildTimer *time.Timer

	for {
		select {
		case <-ctx.Done():
			return
		case event, ok := <-watcher.Events:
			if !ok {
				return
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) &&
				!event.Has(fsnotify.Remove) && !event.Has(fsnotify.Rename) {
				continue
			}
			log.Debug("change detected", "path", event.Name, "op", event.Op.String())

			// New directories are not watched automatically.
			if event.Has(fsnotify.Create) && isDir(event.Name) {
				addWatchTree(watcher, event.Name)
			}

			if buildTimer != nil {
				buildTimer.Stop()
			}
			buildTimer = time.AfterFunc(debounceDuration, func() {
				log.Info("rebuilding site due to changes")
				r.rebuild(ctx)
			})
		case err, ok := <-watcher.Errors:
			if !ok {
				return
			}
			log.Warn("watcher error", "error", err)
		}
	}
}

// watchRoots lists the directories whose changes trigger a rebuild.
func watchRoots() []string {
	roots := []string{appConfig.InputDir}
	assetsSrc := appConfig.Assets.Src
	if assetsSrc == "" {
		assetsSrc = filepath.Join(filepath.Dir(filepath.Clean(appConfig.InputDir)), "assets")
	}
	return append(roots, assetsSrc)
}

func addWatchTree(watcher *fsnotify.Watcher, root string) {
	log := logger.Log
	if _, err := os.Stat(root); os.IsNotExist(err) {
		log.Debug("directory not found, not watching", "dir", root)
		return
	}

	out := filepath.Clean(appConfig.OutputDir)
	err := filepath.WalkDir(root, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			log.Warn("error walking directory", "path", path, "error", err)
			return nil
		}
		if !d.IsDir() {
			return nil
		}
		if filepath.Clean(path) == out {
			return filepath.SkipDir
		}
		if watchErr := watcher.Add(path); watchErr != nil {
			log.Warn("failed to watch directory", "path", path, "error", watchErr)
		}
		return nil
	})
	if err != nil {
		log.Warn("error setting up watch", "root", root, "error", err)
	}
}

// noCacheFileServer serves dir without directory listings and with caching
// disabled.
func noCacheFileServer(dir string) http.Handler {
	fs := http.FileServer(http.Dir(dir))
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if strings.HasSuffix(r.URL.Path, "/") && r.URL.Path != "/" {
			_, err := os.Stat(filepath.Join(dir, filepath.FromSlash(r.URL.Path), "index.html"))
			if os.IsNotExist(err) {
				http.NotFound(w, r)
				return
			}
		}
		w.Header().Set("Cache-Control", "no-cache, no-store, must-revalidate")
		w.Header().Set("Pragma", "no-cache")
		w.Header().Set("Expires", "0")
		fs.ServeHTTP(w, r)
	})
}

func isDir(path string) bool {
	fileInfo, err := os.Stat(path)
	if err != nil {
		return false
	}
	return fileInfo.IsDir()
}

func init() {
	serveCmd.Flags().IntVarP(&serverPort, "port", "p", 3000, "Port to serve the site on")
	rootCmd.AddCommand(serveCmd)
}
