package main

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/clipmark/clipmark-agent/internal/api"
	"github.com/clipmark/clipmark-agent/internal/backend"
	"github.com/clipmark/clipmark-agent/internal/config"
	"github.com/clipmark/clipmark-agent/internal/db"
	"github.com/clipmark/clipmark-agent/internal/history"
	"github.com/clipmark/clipmark-agent/internal/logging"
	"github.com/clipmark/clipmark-agent/internal/player"
	"github.com/clipmark/clipmark-agent/internal/trim"
	"github.com/clipmark/clipmark-agent/internal/ui"
)

func main() {
	if err := run(); err != nil {
		log.Fatalf("fatal error: %v", err)
	}
}

func run() error {
	startTime := time.Now()

	cfg, err := config.New()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	if err := os.MkdirAll(cfg.DataDir(), 0755); err != nil {
		return fmt.Errorf("failed to create data dir: %w", err)
	}

	logger := logging.NewLogger(cfg.LogLevel())
	logger.Info("starting clipmark agent",
		"version", config.Version,
		"data_dir", logging.SanitizePath(cfg.DataDir()),
		"backend_origin", cfg.BackendOrigin(),
	)

	database, err := db.New(cfg.DBPath(), logger)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	defer database.Close()

	repo := history.NewRepository(database.Conn())
	historySvc := history.NewService(repo, logger)

	authToken, err := ensureAuthToken(repo)
	if err != nil {
		return fmt.Errorf("failed to ensure auth token: %w", err)
	}

	fmt.Println()
	fmt.Println("╔═══════════════════════════════════════════════════════════╗")
	fmt.Printf("║                  CLIPMARK AGENT v%-25s║\n", config.Version)
	fmt.Println("╠═══════════════════════════════════════════════════════════╣")
	fmt.Printf("║  API URL:    http://127.0.0.1:%-27d ║\n", cfg.Port())
	fmt.Printf("║  Auth Token: %-45s ║\n", authToken)
	fmt.Println("╚═══════════════════════════════════════════════════════════╝")
	fmt.Println()

	var cutClient backend.Client
	if cfg.BackendStub() {
		cutClient = backend.NewStubClient(cfg.BackendOrigin(), logger)
		logger.Info("cut service stubbed, exports return synthetic paths")
	} else {
		cutClient = backend.NewHTTPClient(cfg.BackendOrigin(), cfg.ExportTimeout(), logger)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	widget, closePlayer := startPlayer(ctx, cfg, logger)
	defer closePlayer()

	controller := trim.NewController(trim.Config{
		Player:       widget,
		Backend:      cutClient,
		History:      historySvc,
		PollInterval: cfg.PollInterval(),
		Logger:       logger,
	})
	defer controller.Close()

	apiServer := api.NewServer(api.ServerConfig{
		Port:            cfg.Port(),
		Session:         controller,
		History:         historySvc,
		Tokens:          repo,
		CORSOrigins:     cfg.CORSOrigins(),
		ExportRateLimit: cfg.ExportRateLimit(),
		Version:         config.Version,
		Logger:          logger,
		StartTime:       startTime,
	})

	quitCh := make(chan struct{})
	var quitOnce sync.Once
	quit := func() { quitOnce.Do(func() { close(quitCh) }) }

	g, gctx := errgroup.WithContext(ctx)
	g.Go(apiServer.Start)
	g.Go(func() error {
		select {
		case <-gctx.Done():
		case <-quitCh:
		}
		logger.Info("initiating graceful shutdown")

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer shutdownCancel()
		if err := apiServer.Shutdown(shutdownCtx); err != nil {
			logger.Error("failed to shutdown HTTP server", "error", err)
		}
		return nil
	})

	if cfg.Headless() {
		logger.Info("running in headless mode (no system tray)")
	} else {
		tray := ui.NewTray(ui.TrayConfig{
			Controls: controller,
			Logger:   logger,
			OnQuit:   quit,
		})
		go tray.Run()
	}

	if err := g.Wait(); err != nil {
		return fmt.Errorf("HTTP server: %w", err)
	}

	logger.Info("shutdown complete")
	return nil
}

// startPlayer starts mpv when configured and available, falling back to the
// simulated player otherwise. The returned func releases the player.
func startPlayer(ctx context.Context, cfg config.Config, logger *slog.Logger) (player.Player, func()) {
	simulated := func() (player.Player, func()) {
		logger.Info("using simulated player")
		return player.NewSimulated(player.DefaultSimulatedDuration, logger), func() {}
	}

	if cfg.Player() != config.PlayerMPV {
		return simulated()
	}

	launcher, err := player.NewLauncher(player.LauncherConfig{
		BinaryPath: cfg.MPVPath(),
		SocketPath: cfg.MPVSocket(),
		Logger:     logger,
	})
	if err != nil {
		logger.Warn("mpv unavailable", "error", err)
		return simulated()
	}

	client, err := launcher.Start(ctx)
	if err != nil {
		logger.Warn("failed to start mpv", "error", err, "stderr", launcher.StderrTail())
		return simulated()
	}

	return client, func() {
		client.Close()
		launcher.Stop()
	}
}

func ensureAuthToken(repo history.Repository) (string, error) {
	ctx := context.Background()

	existing, err := repo.GetConfig(ctx, api.AuthTokenKey)
	if err == nil && existing != "" {
		return existing, nil
	}

	tokenBytes := make([]byte, 32)
	if _, err := rand.Read(tokenBytes); err != nil {
		return "", err
	}
	token := hex.EncodeToString(tokenBytes)

	if err := repo.SetConfig(ctx, api.AuthTokenKey, token); err != nil {
		return "", err
	}

	return token, nil
}
