package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/gilshabo/tic-tac-two/internal/bus"
	"github.com/gilshabo/tic-tac-two/internal/config"
	"github.com/gilshabo/tic-tac-two/internal/registry"
	"github.com/gilshabo/tic-tac-two/internal/repository"
	"github.com/gilshabo/tic-tac-two/internal/repository/storage"
	"github.com/gilshabo/tic-tac-two/internal/usecase"
	"github.com/gilshabo/tic-tac-two/transport/rest"
	"github.com/gilshabo/tic-tac-two/transport/websocket"
)

var ErrAddrNotFound = errors.New("redis address string is empty")

// RunApp - runs the application. A process that cannot reach Redis does not
// come up: without the shared record store there is no state to serve.
func RunApp(logger *slog.Logger, conf *config.Config) error {
	log := logger.With("component", "app")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigs
		log.Info("Received signal, shutting down", "signal", sig)
		cancel()
	}()

	redisAddrString := conf.Redis.GetRedisAddr()
	if redisAddrString == "" {
		return ErrAddrNotFound
	}

	redisClient, err := storage.New(ctx, redisAddrString)
	if err != nil {
		return fmt.Errorf("could not connect to redis storage: %w", err)
	}

	defer func() {
		if err = redisClient.Close(); err != nil {
			log.Error("could not close redis client", "error", err)
		}
	}()

	roomRepo := repository.NewRoomRepository(redisClient)
	changeBus := bus.NewRedisBus(logger, redisClient)
	connRegistry := registry.New(logger)

	coordinator := usecase.NewCoordinator(
		logger,
		roomRepo,
		changeBus,
		connRegistry,
		usecase.RetryPolicy{Attempts: conf.Sync.JoinAttempts, Backoff: conf.Sync.JoinBackoff},
		usecase.RetryPolicy{Attempts: conf.Sync.MoveAttempts, Backoff: conf.Sync.MoveBackoff},
	)

	log.Info("process joined the bus", "originID", changeBus.OriginID())

	// run HTTP server
	httpErrCh := make(chan error, 1)
	go func() {
		log.Info("Starting HTTP server", "port", conf.HTTPPort)
		if httpErr := rest.Start(conf.HTTPPort); httpErr != nil {
			log.Error("HTTP server error", "error", httpErr)
			httpErrCh <- httpErr
		}
	}()

	// run WebSocket server
	wsErrCh := make(chan error, 1)
	go func() {
		log.Info("Starting WebSocket server", "port", conf.SocketPort)
		wsServer := websocket.New(logger, coordinator)
		if wsErr := wsServer.Start(ctx, conf.SocketPort); wsErr != nil {
			log.Error("WebSocket server error", "error", wsErr)
			wsErrCh <- wsErr
		}
	}()

	select {
	case err = <-httpErrCh:
		return fmt.Errorf("HTTP server error: %w", err)
	case err = <-wsErrCh:
		return fmt.Errorf("WebSocket server error: %w", err)
	case <-ctx.Done():
		log.Info("Application context canceled, shutting down")
		return nil
	}
}
