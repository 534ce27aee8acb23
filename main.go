package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/caarlos0/env/v9"

	"github.com/mpetrov/chatgpt-tui-client/pkg/attachment"
	"github.com/mpetrov/chatgpt-tui-client/pkg/auth"
	"github.com/mpetrov/chatgpt-tui-client/pkg/database"
	"github.com/mpetrov/chatgpt-tui-client/pkg/domain"
	"github.com/mpetrov/chatgpt-tui-client/pkg/logger"
	"github.com/mpetrov/chatgpt-tui-client/pkg/preferences"
	"github.com/mpetrov/chatgpt-tui-client/pkg/relay"
	"github.com/mpetrov/chatgpt-tui-client/pkg/repository"
	"github.com/mpetrov/chatgpt-tui-client/pkg/service"
	"github.com/mpetrov/chatgpt-tui-client/pkg/services"
	"github.com/mpetrov/chatgpt-tui-client/pkg/tui"
	"github.com/mpetrov/chatgpt-tui-client/pkg/workers"
)

type Config struct {
	RelayURL  string `env:"RELAY_URL" envDefault:"http://localhost:8080"`
	PgURL     string `env:"DATABASE_URL"`
	PgHost    string `env:"DB_HOST" envDefault:"localhost:5432"`
	AuthToken string `env:"AUTH_TOKEN"`
	AppID     string `env:"APP_ID" envDefault:"chatgpt-tui"`
	StateDir  string `env:"STATE_DIR"`
}

func main() {
	slog.SetDefault(slog.New(logger.NewHandler(os.Stderr, logger.DefaultOptions)))

	if err := runMain(); err != nil {
		slog.Error("shutting down due to error", logger.Err(err))
		os.Exit(1)
	}
	slog.Info("shutdown complete")
}

func runMain() error {
	ctx, cancelFn := context.WithCancel(context.Background())
	defer cancelFn()

	serviceGroup, err := setupServices(ctx)
	if err != nil {
		return err
	}

	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		select {
		case s := <-sigCh:
			slog.Info("shutting down due to signal", "signal", s.String())
			cancelFn()
		case <-ctx.Done():
		}
	}()

	return serviceGroup.Run(ctx)
}

func setupServices(ctx context.Context) (service.Group, error) {
	cfg := Config{}
	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("parsing env config: %w", err)
	}

	stateDir, err := resolveStateDir(cfg.StateDir)
	if err != nil {
		return nil, err
	}

	// The alternate screen owns the terminal, so logs go to a file.
	logFile, err := os.OpenFile(filepath.Join(stateDir, "client.log"), os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o600)
	if err != nil {
		return nil, fmt.Errorf("opening log file: %w", err)
	}
	slog.SetDefault(slog.New(logger.NewHandler(logFile, &logger.Options{
		Level:      slog.LevelDebug,
		TimeFormat: logger.DefaultOptions.TimeFormat,
		NoColor:    true,
	})))

	userID, err := auth.NewAuthenticator(cfg.AuthToken, stateDir).SignIn()
	if err != nil {
		return nil, fmt.Errorf("signing in: %w", err)
	}
	slog.Info("signed in", "user_id", userID)

	db, err := database.NewPostgres(cfg.PgURL, cfg.PgHost)
	if err != nil {
		return nil, fmt.Errorf("creating db: %w", err)
	}

	relayClient, err := relay.NewClient(cfg.RelayURL)
	if err != nil {
		return nil, fmt.Errorf("creating relay client: %w", err)
	}

	chatsRepository := repository.NewChatsRepository(db, cfg.AppID)
	sessionService := services.NewSessionService(chatsRepository, relayClient, userID)
	historyService := services.NewHistoryService()
	preferencesStore := preferences.NewStore(stateDir)

	model := tui.New(
		ctx,
		sessionService,
		historyService,
		chatsRepository,
		preferencesStore,
		attachment.Read,
		userID,
	)

	snapshotCh := make(chan []domain.Chat, 1)

	return service.Group{
		workers.NewChatFeed(db, chatsRepository, userID, snapshotCh),
		workers.NewUI(model, snapshotCh),
	}, nil
}

func resolveStateDir(configured string) (string, error) {
	dir := configured
	if dir == "" {
		base, err := os.UserConfigDir()
		if err != nil {
			return "", fmt.Errorf("resolving config dir: %w", err)
		}
		dir = filepath.Join(base, "chatgpt-tui")
	}
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return "", fmt.Errorf("creating state dir: %w", err)
	}
	return dir, nil
}
