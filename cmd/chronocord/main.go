package main

import (
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/DevArqf/ChronoCord/application"
	"github.com/DevArqf/ChronoCord/config"
	"github.com/DevArqf/ChronoCord/database"
	"github.com/DevArqf/ChronoCord/discord"
	"github.com/DevArqf/ChronoCord/infrastructure/repository"
)

func main() {
	// .env is optional; real deployments set the environment directly
	_ = godotenv.Load()

	cfg, err := config.LoadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	logger, err := initLogger(cfg.DevMode())
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	if cfg.GetDiscordToken() == "" {
		logger.Fatal("CC_DISCORD_TOKEN is not set")
	}

	dbPath := cfg.GetDBPath()
	if dir := filepath.Dir(dbPath); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			logger.Fatal("Failed to create data directory", zap.String("dir", dir), zap.Error(err))
		}
	}

	db, err := database.Open(dbPath)
	if err != nil {
		logger.Fatal("Failed to open database", zap.String("path", dbPath), zap.Error(err))
	}
	defer db.Close()

	repo := repository.New(db)

	gateway, err := discord.New(cfg, logger)
	if err != nil {
		logger.Fatal("Failed to create gateway", zap.Error(err))
	}

	app := application.New(repo, repo, gateway, application.Defaults{
		Color:            cfg.GetDefaultColor(),
		NotifyColor:      cfg.GetNotifyColor(),
		ListColor:        cfg.GetListColor(),
		Footer:           cfg.GetFooterText(),
		MaxSelectOptions: cfg.GetMaxSelectOptions(),
		DefaultMaxVotes:  1,
	}, cfg.GetDevUserID(), logger)

	gateway.Attach(app)

	if err := gateway.Start(); err != nil {
		logger.Fatal("Failed to start gateway", zap.Error(err))
	}
	logger.Info("gateway started", zap.Bool("dev_mode", cfg.DevMode()))

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	logger.Info("shutting down")

	// stop refresh workers first so nothing edits messages mid-teardown;
	// live poll messages stay up across restarts
	app.Sessions().Shutdown()

	if err := gateway.Close(); err != nil {
		logger.Warn("gateway close failed", zap.Error(err))
	}
}

func initLogger(dev bool) (*zap.Logger, error) {
	if dev {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}
