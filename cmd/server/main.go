package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/exec"
	"os/signal"
	"path/filepath"
	"runtime"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/hoanghai1803/driverpro/internal/api"
	"github.com/hoanghai1803/driverpro/internal/config"
	"github.com/hoanghai1803/driverpro/internal/identity"
	"github.com/hoanghai1803/driverpro/internal/logging"
	"github.com/hoanghai1803/driverpro/internal/opportunities"
	"github.com/hoanghai1803/driverpro/internal/places"
	"github.com/hoanghai1803/driverpro/internal/preferences"
	"github.com/hoanghai1803/driverpro/internal/session"
	"github.com/hoanghai1803/driverpro/internal/settings"
	"github.com/hoanghai1803/driverpro/internal/storage"
	"github.com/hoanghai1803/driverpro/internal/web"
)

// documentBackend is a document store that can report its own health.
type documentBackend interface {
	storage.DocumentStore
	Ping(ctx context.Context) error
}

func main() {
	configPath := flag.String("config", "config.toml", "path to config file")
	dataDir := flag.String("data-dir", "./data", "path to data directory")
	flag.Parse()

	if err := run(*configPath, *dataDir); err != nil {
		slog.Error("server failed", "error", err)
		os.Exit(1)
	}
}

func run(configPath, dataDir string) error {
	// Load configuration (auto-creates default if missing).
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	logging.Setup(cfg.Log.Level, cfg.Log.Format)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		return fmt.Errorf("creating data directory: %w", err)
	}

	// Open database with WAL mode and pragmas.
	db, err := storage.OpenDatabase(filepath.Join(dataDir, "driverpro.db"))
	if err != nil {
		return err
	}
	defer db.Close()

	if err := storage.RunMigrations(db); err != nil {
		return fmt.Errorf("running migrations: %w", err)
	}
	store := storage.NewStore(db)
	if n, err := store.CountIdentities(ctx, ""); err != nil {
		slog.Warn("failed to count identities", "error", err)
	} else {
		slog.Info("identity store ready", "identities", n)
	}

	docs, closeDocs, err := openDocuments(ctx, cfg, store)
	if err != nil {
		return err
	}
	defer closeDocs()

	ids := identity.NewService(store, cfg.Auth.CustomTokenSecret)
	repo := preferences.NewRepository(docs, cfg.App.ID)

	// Each session gets its own auth client; the shared store must be
	// reachable before a session counts as connected.
	connect := func(ctx context.Context) (*session.Backend, error) {
		if err := docs.Ping(ctx); err != nil {
			return nil, err
		}
		return &session.Backend{Auth: ids.NewClient(), Preferences: repo}, nil
	}
	boot := session.NewBootstrapper(connect, session.Options{
		InitialAuthToken: cfg.Auth.InitialAuthToken,
		IdentityTimeout:  cfg.Auth.IdentityTimeout(),
		SignInAttempts:   cfg.Auth.SignInAttempts,
		RetryBackoff:     cfg.Auth.RetryBackoff(),
	})
	sessions := session.NewManager(boot)
	defer sessions.Close()

	suggester, err := places.NewSuggester(places.Config{
		Provider: cfg.Places.Provider,
		Areas:    cfg.Places.Areas,
	})
	if err != nil {
		return fmt.Errorf("creating suggestion provider: %w", err)
	}

	tmpl, err := web.Templates()
	if err != nil {
		return fmt.Errorf("parsing templates: %w", err)
	}

	router := api.NewRouter(api.Deps{
		Sessions:  sessions,
		Source:    opportunities.NewSource(cfg.Seed.Latency()),
		Settings:  settings.NewService(repo),
		Suggester: suggester,
		Health:    docs,
		Templates: tmpl,
	})

	// Localhost only.
	addr := fmt.Sprintf("localhost:%d", cfg.Server.Port)
	srv := &http.Server{
		Addr:              addr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		slog.Info("starting server", "addr", "http://"+addr, "app_id", cfg.App.ID, "storage", cfg.Storage.Backend)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		slog.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	// Auto-open browser after a short delay to let the server start.
	if cfg.Server.AutoOpenBrowser {
		go func() {
			time.Sleep(500 * time.Millisecond)
			openBrowser("http://" + addr)
		}()
	}

	return g.Wait()
}

// openDocuments returns the configured preference document backend and a
// func that releases it.
func openDocuments(ctx context.Context, cfg *config.Config, store *storage.Store) (documentBackend, func(), error) {
	if cfg.Storage.Backend != "redis" {
		return store, func() {}, nil
	}

	client, err := storage.OpenRedis(ctx, cfg.Storage.RedisAddr, cfg.Storage.RedisPassword, cfg.Storage.RedisDB)
	if err != nil {
		return nil, nil, err
	}
	slog.Info("using redis document store", "addr", cfg.Storage.RedisAddr, "db", cfg.Storage.RedisDB)
	return storage.NewRedisDocuments(client, cfg.Storage.RedisPrefix), func() { client.Close() }, nil
}

// openBrowser opens the given URL in the user's default browser.
// It is a fire-and-forget operation; errors are silently ignored.
func openBrowser(url string) {
	var cmd *exec.Cmd
	switch runtime.GOOS {
	case "darwin":
		cmd = exec.Command("open", url)
	case "linux":
		cmd = exec.Command("xdg-open", url)
	case "windows":
		cmd = exec.Command("cmd", "/c", "start", url)
	}
	if cmd != nil {
		_ = cmd.Start()
	}
}
