package workers

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/mpetrov/chatgpt-tui-client/pkg/logger"
)

const shutdownTimeout = 5 * time.Second

type relayServer struct {
	server *http.Server
}

func NewRelayServer(addr string, handler http.Handler) *relayServer {
	return &relayServer{
		server: &http.Server{
			Addr:              addr,
			Handler:           handler,
			ReadHeaderTimeout: 10 * time.Second,
		},
	}
}

func (s *relayServer) Name() string { return "relay server" }

func (s *relayServer) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		slog.Info("relay server listening", "addr", s.server.Addr)
		if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("serving http: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	shutdownCtx, cancelFn := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancelFn()
	if err := s.server.Shutdown(shutdownCtx); err != nil {
		slog.Warn("relay server shutdown", logger.Err(err))
		return fmt.Errorf("shutting down http server: %w", err)
	}
	return nil
}
