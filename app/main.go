package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/lysyi3m/blogfront/app/api"
	"github.com/lysyi3m/blogfront/app/blog"
	"github.com/lysyi3m/blogfront/app/cfg"
	"github.com/lysyi3m/blogfront/app/monitor"
	"github.com/lysyi3m/blogfront/app/present"
	"github.com/lysyi3m/blogfront/app/theme"
)

func main() {
	appCfg, err := cfg.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}
	if appCfg == nil {
		// Help was shown
		return
	}

	setupLogger(appCfg.Debug)

	slog.Info("Starting Blogfront server", "version", appCfg.Version, "api", appCfg.APIBaseURL)

	themes, err := theme.Load(appCfg.ThemesFile)
	if err != nil {
		slog.Error("Failed to load themes", "file", appCfg.ThemesFile, "error", err)
		os.Exit(1)
	}
	slog.Info("Themes loaded", "categories", themes.Count())

	normalizer := blog.NewNormalizer(themes, appCfg.PlaceholderImageURL)
	client := blog.NewClient(appCfg.APIBaseURL, &http.Client{}, normalizer, appCfg.UserAgent)

	// The dashboard view is what a completed generation session refreshes.
	dashboard := blog.NewListView(client)
	defer dashboard.Close()

	progress := monitor.New(client.StreamURL(), &http.Client{}, dashboard, appCfg.UserAgent)
	defer progress.Stop()

	templates, err := present.Templates()
	if err != nil {
		slog.Error("Failed to load templates", "error", err)
		os.Exit(1)
	}

	handler := api.NewHandler(client, dashboard, progress, themes)
	server := api.NewServer(handler, templates, appCfg.APIAccessKey)

	// No WriteTimeout: /generate/events holds the response open for a whole session.
	httpServer := &http.Server{
		Addr:              ":" + appCfg.Port,
		Handler:           server,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	serverErrChan := make(chan error, 1)
	go func() {
		slog.Info("Starting HTTP server", "port", appCfg.Port)
		slog.Info("Pages available",
			"home", fmt.Sprintf("http://localhost:%s/", appCfg.Port),
			"post", fmt.Sprintf("http://localhost:%s/posts/<slug>", appCfg.Port),
			"feed", fmt.Sprintf("http://localhost:%s/feed.xml", appCfg.Port))

		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serverErrChan <- fmt.Errorf("HTTP server error: %w", err)
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	select {
	case sig := <-sigChan:
		slog.Info("Received signal", "signal", sig)
	case err := <-serverErrChan:
		slog.Error("Server error", "error", err)
	}

	slog.Info("Shutting down server gracefully")

	// Ends any open progress relay so Shutdown does not wait on it.
	progress.Stop()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		slog.Error("HTTP server shutdown error", "error", err)
	} else {
		slog.Info("HTTP server stopped")
	}

	slog.Info("Blogfront server shutdown complete")
}

func setupLogger(debug bool) {
	level := slog.LevelInfo
	if debug {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: level})))
}
