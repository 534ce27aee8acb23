package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/caarlos0/env/v9"

	"github.com/mpetrov/chatgpt-tui-client/pkg/api/handler"
	"github.com/mpetrov/chatgpt-tui-client/pkg/api/middleware"
	"github.com/mpetrov/chatgpt-tui-client/pkg/chatgpt"
	"github.com/mpetrov/chatgpt-tui-client/pkg/logger"
	"github.com/mpetrov/chatgpt-tui-client/pkg/service"
	"github.com/mpetrov/chatgpt-tui-client/pkg/workers"
)

type Config struct {
	Port        int    `env:"PORT" envDefault:"8080"`
	OpenAIToken string `env:"OPEN_AI_TOKEN,required"`
	OpenAIModel string `env:"OPEN_AI_MODEL" envDefault:"gpt-4o-mini"`
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
	serviceGroup, err := setupServices()
	if err != nil {
		return err
	}

	ctx, cancelFn := context.WithCancel(context.Background())
	defer cancelFn()

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

func setupServices() (service.Group, error) {
	cfg := Config{}
	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("parsing env config: %w", err)
	}

	completionClient, err := chatgpt.NewClient(cfg.OpenAIToken, cfg.OpenAIModel)
	if err != nil {
		return nil, fmt.Errorf("creating completion client: %w", err)
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/generate-response", handler.NewGenerate(completionClient).GenerateResponse)

	return service.Group{
		workers.NewRelayServer(fmt.Sprintf(":%d", cfg.Port), middleware.RequestID(mux)),
	}, nil
}
