package websocket

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/rocketscienceinc/tictactoe-sessions/internal/apperror"
	"github.com/rocketscienceinc/tictactoe-sessions/internal/entity"
)

const (
	maxMessageSize = 4096
	writeWait      = 10 * time.Second
	shutdownWait   = 5 * time.Second
)

type sessionManager interface {
	Get(ctx context.Context, code string) (*entity.Session, error)
	Join(ctx context.Context, code, guestID string) (*entity.Session, error)
	Move(ctx context.Context, code, playerID string, cell int) (*entity.Session, error)
	Reset(ctx context.Context, code string) (*entity.Session, error)
	Snapshot(ctx context.Context, code string, fn func(session *entity.Session)) error
}

type Config struct {
	PingPeriod time.Duration
	PongWait   time.Duration
	SendBuffer int
}

type handlerFunc func(ctx context.Context, c *conn, data []byte) error

type Server struct {
	logger  *slog.Logger
	manager sessionManager
	hub     *Hub
	conf    Config

	upgrader websocket.Upgrader
	handlers map[MessageType]handlerFunc
}

func New(logger *slog.Logger, manager sessionManager, hub *Hub, conf Config) *Server {
	server := &Server{
		logger:  logger.With("component", "websocket"),
		manager: manager,
		hub:     hub,
		conf:    conf,

		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(*http.Request) bool { return true },
		},
		handlers: make(map[MessageType]handlerFunc),
	}

	server.handlers[TypeJoinSession] = server.handleJoinSession
	server.handlers[TypeMakeMove] = server.handleMakeMove
	server.handlers[TypeResetGame] = server.handleResetGame

	return server
}

func (that *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/ws", that.serveWS)

	return mux
}

// Start - starts WebSocket server and stops it when ctx is done.
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

// serveWS - upgrades the connection and runs it until the peer goes away.
func (that *Server) serveWS(w http.ResponseWriter, r *http.Request) {
	log := that.logger.With("method", "serveWS")

	ws, err := that.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Warn("failed to upgrade connection", "error", err)
		return
	}

	c := newConn(uuid.NewString(), ws, that.conf.SendBuffer)

	log.Info("WebSocket connection established", "connID", c.id)

	go that.writePump(c)
	that.readPump(context.WithoutCancel(r.Context()), c)
}

func (that *Server) readPump(ctx context.Context, c *conn) {
	log := that.logger.With("method", "readPump", "connID", c.id)

	defer func() {
		that.hub.Leave(c)
		c.close()
		log.Info("WebSocket connection closed")
	}()

	c.ws.SetReadLimit(maxMessageSize)
	_ = c.ws.SetReadDeadline(time.Now().Add(that.conf.PongWait))
	c.ws.SetPongHandler(func(string) error {
		return c.ws.SetReadDeadline(time.Now().Add(that.conf.PongWait))
	})

	for {
		_, data, err := c.ws.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Warn("unexpected close", "error", err)
			}
			return
		}

		if err = that.dispatch(ctx, c, data); err != nil {
			that.sendError(c, err)
		}
	}
}

func (that *Server) writePump(c *conn) {
	log := that.logger.With("method", "writePump", "connID", c.id)

	ticker := time.NewTicker(that.conf.PingPeriod)
	defer func() {
		ticker.Stop()
		c.close()
	}()

	for {
		select {
		case <-c.done:
			return
		case message := <-c.send:
			_ = c.ws.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.ws.WriteMessage(websocket.TextMessage, message); err != nil {
				log.Debug("failed to write message", "error", err)
				return
			}
		case <-ticker.C:
			_ = c.ws.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.ws.WriteMessage(websocket.PingMessage, nil); err != nil {
				log.Debug("failed to write ping", "error", err)
				return
			}
		}
	}
}

func (that *Server) dispatch(ctx context.Context, c *conn, data []byte) error {
	kind, err := messageType(data)
	if err != nil {
		return err
	}

	handler, ok := that.handlers[kind]
	if !ok {
		return fmt.Errorf("%w: unknown message type %q", apperror.ErrInvalidArgument, kind)
	}

	return handler(ctx, c, data)
}

// sendError - reports a rejected action to the connection that sent it.
func (that *Server) sendError(c *conn, err error) {
	log := that.logger.With("method", "sendError", "connID", c.id)

	code := apperror.Code(err)
	message := err.Error()

	if code == apperror.CodeInternal {
		log.Error("failed to process message", "error", err)
		message = "internal error"
	} else {
		log.Debug("message rejected", "code", code, "error", err)
	}

	payload, encodeErr := encodeError(code, message)
	if encodeErr != nil {
		log.Error("failed to encode error", "error", encodeErr)
		return
	}

	that.hub.deliver(c, payload)
}
