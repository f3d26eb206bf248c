package rest

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/rocketscienceinc/tictactoe-sessions/internal/entity"
	"github.com/rocketscienceinc/tictactoe-sessions/internal/usecase"
)

const shutdownWait = 5 * time.Second

type sessionManager interface {
	CreateWithOpponent(ctx context.Context, hostID string, opponent entity.Opponent) (*entity.Session, error)
	Join(ctx context.Context, code, guestID string) (*entity.Session, error)
	Move(ctx context.Context, code, playerID string, cell int) (*entity.Session, error)
	Reset(ctx context.Context, code string) (*entity.Session, error)
	Get(ctx context.Context, code string) (*entity.Session, error)
	Poll(ctx context.Context, code string, since *time.Time) (*usecase.PollResult, error)
}

type Server struct {
	logger  *slog.Logger
	manager sessionManager
}

func New(logger *slog.Logger, manager sessionManager) *Server {
	return &Server{
		logger:  logger.With("component", "rest"),
		manager: manager,
	}
}

func (that *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /ping", pingHandler)
	mux.HandleFunc("GET /api/health", healthHandler)

	mux.HandleFunc("POST /api/sessions", that.handleCreate)
	mux.HandleFunc("GET /api/sessions/{code}", that.handleGet)
	mux.HandleFunc("POST /api/sessions/{code}/join", that.handleJoin)
	mux.HandleFunc("POST /api/sessions/{code}/move", that.handleMove)
	mux.HandleFunc("POST /api/sessions/{code}/reset", that.handleReset)
	mux.HandleFunc("GET /api/sessions/{code}/poll", that.handlePoll)

	return mux
}

// Start - starts HTTP server and stops it when ctx is done.
func (that *Server) Start(ctx context.Context, port string) error {
	srv := &http.Server{
		Addr:         ":" + port,
		Handler:      that.Handler(),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  30 * time.Second,
	}

	go func() {
		<-ctx.Done()

		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownWait)
		defer cancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			that.logger.Error("failed to shutdown server", "error", err)
		}
	}()

	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("failed to start server: %w", err)
	}

	return nil
}
