// Package main is the entry point for the studylenses server.
//
// studylenses serves a codebase as an explorable study environment: a
// virtual filesystem assembled from a snapshot file, a local git checkout,
// a GitHub repository, a gist, or browser uploads, plus the per-directory
// lens configuration cascade. Configuration is read from CLI flags and an
// optional YAML file; flags win.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"runtime/debug"
	"strings"
	"syscall"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/lmittmann/tint"
	"github.com/mattn/go-colorable"
	"github.com/mattn/go-isatty"

	"github.com/studylenses/studylenses/internal/config"
	"github.com/studylenses/studylenses/internal/github"
	"github.com/studylenses/studylenses/internal/gitload"
	"github.com/studylenses/studylenses/internal/server"
	"github.com/studylenses/studylenses/internal/server/handlers"
	"github.com/studylenses/studylenses/internal/server/ratelimit"
	"github.com/studylenses/studylenses/internal/session"
	"github.com/studylenses/studylenses/internal/vfs"
)

func main() {
	if err := mainImpl(); err != nil && !errors.Is(err, context.Canceled) {
		fmt.Fprintf(os.Stderr, "studylenses: %v\n", err)
		os.Exit(1)
	}
}

func mainImpl() error {
	version := flag.Bool("version", false, "Print version and exit")
	httpAddr := flag.String("http", "", "Address to listen on (e.g., localhost:8080, :8080). Use 0.0.0.0:port to listen on all interfaces.")
	configPath := flag.String("config", "studylenses.yaml", "Path to the YAML configuration file")
	snapshot := flag.String("snapshot", "", "Path to a snapshot document to serve at startup")
	gitDir := flag.String("git-dir", "", "Local git checkout to serve at startup")
	githubToken := flag.String("github-token", "", "GitHub API token (raises rate limits)")
	logLevel := flag.String("log-level", "", "Log level (debug, info, warn, error)")
	flag.Parse()
	if len(flag.Args()) > 0 {
		return fmt.Errorf("unknown arguments: %v", flag.Args())
	}

	if *version {
		printVersion()
		return nil
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM, os.Interrupt)
	defer stop()
	ll := &slog.LevelVar{}
	ll.Set(slog.LevelInfo)
	// Skip timestamps when running under systemd (it adds its own).
	underSystemd := os.Getenv("JOURNAL_STREAM") != ""
	logger := slog.New(tint.NewHandler(colorable.NewColorable(os.Stderr), &tint.Options{
		Level:      ll,
		TimeFormat: "15:04:05.000", // Like time.TimeOnly plus milliseconds.
		NoColor:    !isatty.IsTerminal(os.Stderr.Fd()),
		ReplaceAttr: func(groups []string, a slog.Attr) slog.Attr {
			if underSystemd && a.Key == slog.TimeKey && len(groups) == 0 {
				return slog.Attr{}
			}
			// Drop localhost IPs (not useful in logs).
			if a.Key == "ip" {
				if v := a.Value.String(); v == "127.0.0.1" || v == "::1" {
					return slog.Attr{}
				}
			}
			val := a.Value.Any()
			skip := false
			switch t := val.(type) {
			case string:
				skip = t == ""
			case bool:
				skip = !t
			case uint64:
				skip = t == 0
			case int64:
				skip = t == 0
			case float64:
				skip = t == 0
			case time.Time:
				skip = t.IsZero()
			case time.Duration:
				skip = t == 0
			case nil:
				skip = true
			}
			if skip {
				return slog.Attr{}
			}
			return a
		},
	}))
	slog.SetDefault(logger)

	cfg, err := config.Load(*configPath)
	if err != nil {
		return err
	}

	// Flags override file values only when explicitly set.
	set := make(map[string]bool)
	flag.Visit(func(f *flag.Flag) {
		set[f.Name] = true
	})
	if set["http"] {
		cfg.HTTP = *httpAddr
	}
	if set["snapshot"] {
		cfg.Snapshot = *snapshot
	}
	if set["git-dir"] {
		cfg.GitDir = *gitDir
	}
	if set["github-token"] {
		cfg.GitHubToken = *githubToken
	}
	if set["log-level"] {
		cfg.LogLevel = *logLevel
	}

	switch cfg.LogLevel {
	case "debug":
		ll.Set(slog.LevelDebug)
	case "info":
	case "warn":
		ll.Set(slog.LevelWarn)
	case "error":
		ll.Set(slog.LevelError)
	default:
		return fmt.Errorf("unknown log level: %q", cfg.LogLevel)
	}

	if cfg.Snapshot != "" && cfg.GitDir != "" {
		return errors.New("snapshot and git-dir are mutually exclusive")
	}

	// Normalize addr: ":8080" becomes "localhost:8080".
	addr := cfg.HTTP
	if strings.HasPrefix(addr, ":") {
		addr = "localhost" + addr
	}

	gh := github.NewClient(cfg.GitHubToken)
	sess := session.New(gh)

	if cfg.Snapshot != "" {
		if err := loadSnapshot(sess, cfg.Snapshot); err != nil {
			return err
		}
		if err := watchSnapshot(ctx, sess, cfg.Snapshot); err != nil {
			return fmt.Errorf("failed to watch snapshot: %w", err)
		}
	}
	if cfg.GitDir != "" {
		tree, err := gitload.Load(cfg.GitDir, "")
		if err != nil {
			return fmt.Errorf("failed to load git checkout: %w", err)
		}
		sess.Replace(tree, "git:"+filepath.Base(cfg.GitDir), nil)
		slog.InfoContext(ctx, "Loaded git checkout", "dir", cfg.GitDir, "files", len(vfs.Files(tree)))
	}

	// Watch own executable for modifications (for development restarts).
	if err := watchExecutable(ctx, stop); err != nil {
		return fmt.Errorf("failed to watch executable: %w", err)
	}

	buildVersion, _, _, _ := getBuildInfo()
	svc := &handlers.Services{
		Session: sess,
		GitHub:  gh,
	}
	srvCfg := &handlers.Config{
		JWTSecret:              []byte(cfg.JWTSecret),
		InstructorPasswordHash: cfg.InstructorPasswordHash,
		Version:                buildVersion,
		MaxRequestBodyBytes:    16 << 20,
	}
	limits := ratelimit.DefaultConfig()
	defer limits.Close()

	httpServer := &http.Server{
		Addr:              addr,
		Handler:           server.NewRouter(svc, srvCfg, limits),
		BaseContext:       func(_ net.Listener) context.Context { return ctx },
		ReadHeaderTimeout: 10 * time.Second,
	}

	serverErr := make(chan error, 1)
	go func() {
		slog.InfoContext(ctx, "Starting server", "addr", addr, "version", buildVersion)
		serverErr <- httpServer.ListenAndServe()
	}()

	select {
	case err := <-serverErr:
		if !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server error: %w", err)
		}
	case <-ctx.Done():
		slog.InfoContext(ctx, "Shutting down server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown error: %w", err)
		}
		slog.InfoContext(ctx, "Server stopped")
	}
	return nil
}

// loadSnapshot parses a snapshot document and installs it as the session tree.
func loadSnapshot(sess *session.Session, path string) error {
	data, err := os.ReadFile(path) //nolint:gosec // G304: path comes from a flag, not user input
	if err != nil {
		return fmt.Errorf("failed to read snapshot: %w", err)
	}
	tree, err := vfs.ParseSnapshot(data)
	if err != nil {
		return fmt.Errorf("failed to parse snapshot %s: %w", path, err)
	}
	sess.Replace(tree, "snapshot:"+filepath.Base(path), nil)
	slog.Info("Loaded snapshot", "path", path, "files", len(vfs.Files(tree)))
	return nil
}

// watchSnapshot reloads the snapshot file whenever it changes on disk, so an
// instructor can regenerate it without restarting the server. A snapshot that
// stops parsing keeps the previous tree.
func watchSnapshot(ctx context.Context, sess *session.Session, path string) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	// Watch the directory: editors replace files by rename, which drops a
	// watch placed on the file itself.
	if err := w.Add(filepath.Dir(path)); err != nil {
		_ = w.Close()
		return err
	}
	base := filepath.Base(path)
	go func() {
		defer func() { _ = w.Close() }()
		for {
			select {
			case <-ctx.Done():
				return
			case event, ok := <-w.Events:
				if !ok {
					return
				}
				if filepath.Base(event.Name) != base {
					continue
				}
				if event.Has(fsnotify.Write) || event.Has(fsnotify.Create) || event.Has(fsnotify.Rename) {
					if err := loadSnapshot(sess, path); err != nil {
						slog.WarnContext(ctx, "Snapshot reload failed, keeping previous tree", "err", err)
					}
				}
			case err, ok := <-w.Errors:
				if !ok {
					return
				}
				slog.WarnContext(ctx, "Error watching snapshot", "err", err)
			}
		}
	}()
	return nil
}

// watchExecutable watches the current executable for modifications and calls
// stop to trigger graceful shutdown when detected. This enables seamless
// restarts during development.
func watchExecutable(ctx context.Context, stop context.CancelFunc) error {
	exe, err := os.Executable()
	if err != nil {
		return err
	}
	exe, err = filepath.EvalSymlinks(exe)
	if err != nil {
		return err
	}
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	if err := w.Add(exe); err != nil {
		_ = w.Close()
		return err
	}
	go func() {
		defer func() { _ = w.Close() }()
		for {
			select {
			case <-ctx.Done():
				return
			case event, ok := <-w.Events:
				if !ok {
					return
				}
				if event.Has(fsnotify.Write) || event.Has(fsnotify.Chmod) {
					slog.InfoContext(ctx, "Executable modified, initiating shutdown")
					stop()
					return
				}
			case err, ok := <-w.Errors:
				if !ok {
					return
				}
				slog.WarnContext(ctx, "Error watching executable", "err", err)
			}
		}
	}()
	return nil
}

func printVersion() {
	version, goVersion, revision, dirty := getBuildInfo()
	fmt.Printf("studylenses %s\n", version)
	fmt.Printf("  Go version: %s\n", goVersion)
	fmt.Printf("  Revision:   %s\n", revision)
	if dirty {
		fmt.Printf("  Modified:   true\n")
	}
}

func getBuildInfo() (version, goVersion, revision string, dirty bool) {
	version = "unknown"
	goVersion = "unknown"
	revision = "unknown"
	info, ok := debug.ReadBuildInfo()
	if !ok {
		return
	}
	version = info.Main.Version
	if version == "" || version == "(devel)" {
		version = "dev"
	}
	goVersion = info.GoVersion
	for _, setting := range info.Settings {
		switch setting.Key {
		case "vcs.revision":
			revision = setting.Value
		case "vcs.modified":
			dirty = setting.Value == "true"
		}
	}
	return
}
