package application

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/jonboulle/clockwork"
	"golang.org/x/sync/errgroup"

	"github.com/rocketscienceinc/tictactoe-sessions/internal/client"
	"github.com/rocketscienceinc/tictactoe-sessions/internal/config"
	"github.com/rocketscienceinc/tictactoe-sessions/internal/repository"
	"github.com/rocketscienceinc/tictactoe-sessions/internal/repository/storage"
	"github.com/rocketscienceinc/tictactoe-sessions/internal/service"
	"github.com/rocketscienceinc/tictactoe-sessions/internal/tictactoe"
	"github.com/rocketscienceinc/tictactoe-sessions/internal/usecase"
	"github.com/rocketscienceinc/tictactoe-sessions/transport/rest"
	"github.com/rocketscienceinc/tictactoe-sessions/transport/websocket"
)

// RunApp - runs both servers until a signal arrives or one of them fails.
func RunApp(logger *slog.Logger, conf *config.Config) error {
	log := logger.With("component", "app")

	ctx, cancel := withSignals(log)
	defer cancel()

	sessionRepo, closeStore, err := newSessionRepository(ctx, conf)
	if err != nil {
		return err
	}
	defer closeStore()

	hub := websocket.NewHub(logger)
	manager := usecase.NewSessionManager(logger, sessionRepo, tictactoe.NewAdversary(), hub, clockwork.NewRealClock())

	restServer := rest.New(logger, manager)
	wsServer := websocket.New(logger, manager, hub, websocket.Config{
		PingPeriod: conf.Socket.PingPeriod,
		PongWait:   conf.Socket.PongWait,
		SendBuffer: conf.Socket.SendBuffer,
	})

	group, groupCtx := errgroup.WithContext(ctx)

	group.Go(func() error {
		log.Info("Starting HTTP server", "port", conf.HTTPPort)
		if err := restServer.Start(groupCtx, conf.HTTPPort); err != nil {
			return fmt.Errorf("HTTP server error: %w", err)
		}
		return nil
	})

	group.Go(func() error {
		log.Info("Starting WebSocket server", "port", conf.SocketPort)
		if err := wsServer.Start(groupCtx, conf.SocketPort); err != nil {
			return fmt.Errorf("WebSocket server error: %w", err)
		}
		return nil
	})

	// hijacked sockets outlive http.Server.Shutdown
	group.Go(func() error {
		<-groupCtx.Done()
		hub.Close()
		return nil
	})

	if err = group.Wait(); err != nil {
		return err
	}

	log.Info("Application context canceled, shutting down")

	return nil
}

// RunBot - seats a network bot in session code and plays until a signal arrives.
func RunBot(logger *slog.Logger, conf *config.Config, code, playerID string) error {
	log := logger.With("component", "bot-app")

	ctx, cancel := withSignals(log)
	defer cancel()

	c := client.New(logger, client.Config{
		HTTPURL:      conf.Client.HTTPURL,
		SocketURL:    conf.Client.SocketURL,
		PollInterval: conf.Client.PollInterval,
	})

	bot := service.NewBotPlayer(logger, c, tictactoe.NewAdversary(), playerID)

	if err := bot.Play(ctx, code); err != nil {
		return fmt.Errorf("bot stopped: %w", err)
	}

	return nil
}

func withSignals(log *slog.Logger) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(context.Background())

	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		select {
		case sig := <-sigs:
			log.Info("Received signal, shutting down", "signal", sig)
			cancel()
		case <-ctx.Done():
		}
		signal.Stop(sigs)
	}()

	return ctx, cancel
}

// newSessionRepository - opens the configured store. The returned func releases it.
func newSessionRepository(ctx context.Context, conf *config.Config) (repository.SessionRepository, func(), error) {
	switch conf.Storage.Driver {
	case config.StorageRedis:
		redisStorage, err := storage.NewRedisStorage(ctx, conf.Redis.GetRedisAddr())
		if err != nil {
			return nil, nil, fmt.Errorf("could not connect to redis storage: %w", err)
		}

		return repository.NewSessionRepository(redisStorage.Connection), func() { _ = redisStorage.Close() }, nil

	case config.StorageSQLite:
		sqliteStorage, err := storage.NewSQLiteStorage(conf.SQLiteStoragePath)
		if err != nil {
			return nil, nil, fmt.Errorf("could not open sqlite storage: %w", err)
		}

		if err = sqliteStorage.Init(ctx); err != nil {
			_ = sqliteStorage.Close()
			return nil, nil, fmt.Errorf("could not init sqlite storage: %w", err)
		}

		return repository.NewSQLiteSessionRepository(sqliteStorage.Connection), func() { _ = sqliteStorage.Close() }, nil

	default:
		return repository.NewMemorySessionRepository(), func() {}, nil
	}
}
