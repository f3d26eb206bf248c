package client

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/go-co-op/gocron/v2"
	"github.com/gorilla/websocket"

	"github.com/rocketscienceinc/tictactoe-sessions/internal/entity"
	wsproto "github.com/rocketscienceinc/tictactoe-sessions/transport/websocket"
)

type Mode string

const (
	ModePush Mode = "push"
	ModePull Mode = "pull"
)

const (
	updatesBuffer = 32
	errorsBuffer  = 8
)

var (
	errNoSocket   = errors.New("no socket url configured")
	errLinkClosed = errors.New("link is closed")
)

// Link follows one session for one player. It starts on the socket and falls back
// to polling for the rest of its life once the socket is unavailable.
type Link struct {
	client   *Client
	logger   *slog.Logger
	code     string
	playerID string

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	mu        sync.Mutex
	mode      Mode
	ws        *websocket.Conn
	scheduler gocron.Scheduler
	closed    bool

	// gorilla allows one concurrent writer
	writeMu sync.Mutex

	deliverMu sync.Mutex
	last      time.Time
	updates   chan *entity.Session
	errs      chan error
}

// Attach - starts following code as playerID. The player should already hold a seat
// or be content to watch.
func (that *Client) Attach(ctx context.Context, code, playerID string) (*Link, error) {
	linkCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))

	link := &Link{
		client:   that,
		logger:   that.logger.With("sessionCode", code, "playerID", playerID),
		code:     code,
		playerID: playerID,

		ctx:    linkCtx,
		cancel: cancel,

		updates: make(chan *entity.Session, updatesBuffer),
		errs:    make(chan error, errorsBuffer),
	}

	if err := link.connectPush(ctx); err != nil {
		link.logger.Info("socket unavailable, polling", "error", err)

		if err = link.startPull(); err != nil {
			link.Close()
			return nil, fmt.Errorf("failed to attach: %w", err)
		}
	}

	return link, nil
}

// Updates - records in commit order. Consumers must keep reading until Close.
func (that *Link) Updates() <-chan *entity.Session {
	return that.updates
}

// Errors - rejections of actions sent over the socket. Old errors are dropped when nobody reads.
func (that *Link) Errors() <-chan error {
	return that.errs
}

func (that *Link) Mode() Mode {
	that.mu.Lock()
	defer that.mu.Unlock()

	return that.mode
}

// Move - submits one move through the active transport.
func (that *Link) Move(ctx context.Context, cell int) error {
	sent, err := that.sendPush(wsproto.MakeMove{Type: wsproto.TypeMakeMove, Position: &cell})
	if err != nil || sent {
		return err
	}

	session, err := that.client.Move(ctx, that.code, that.playerID, cell)
	if err != nil {
		return err
	}

	that.deliver(session)

	return nil
}

// Reset - asks for a fresh board through the active transport.
func (that *Link) Reset(ctx context.Context) error {
	sent, err := that.sendPush(wsproto.ResetGame{Type: wsproto.TypeResetGame})
	if err != nil || sent {
		return err
	}

	session, err := that.client.Reset(ctx, that.code)
	if err != nil {
		return err
	}

	that.deliver(session)

	return nil
}

// Close - stops both transports and closes Updates.
func (that *Link) Close() {
	that.mu.Lock()
	if that.closed {
		that.mu.Unlock()
		return
	}
	that.closed = true
	ws, scheduler := that.ws, that.scheduler
	that.ws, that.scheduler = nil, nil
	that.mu.Unlock()

	that.cancel()

	if ws != nil {
		that.writeMu.Lock()
		_ = ws.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""), time.Now().Add(time.Second))
		that.writeMu.Unlock()
		_ = ws.Close()
	}

	if scheduler != nil {
		if err := scheduler.Shutdown(); err != nil {
			that.logger.Warn("failed to stop poller", "error", err)
		}
	}

	that.wg.Wait()

	that.deliverMu.Lock()
	close(that.updates)
	that.deliverMu.Unlock()
}

func (that *Link) connectPush(ctx context.Context) error {
	if that.client.conf.SocketURL == "" {
		return errNoSocket
	}

	ws, resp, err := that.client.dialer.DialContext(ctx, that.client.conf.SocketURL, nil)
	if err != nil {
		return fmt.Errorf("failed to dial socket: %w", err)
	}
	resp.Body.Close()

	join := wsproto.JoinSession{
		Type:        wsproto.TypeJoinSession,
		SessionCode: that.code,
		PlayerID:    that.playerID,
	}
	if err = ws.WriteJSON(join); err != nil {
		_ = ws.Close()
		return fmt.Errorf("failed to join over socket: %w", err)
	}

	that.mu.Lock()
	that.ws = ws
	that.mode = ModePush
	that.mu.Unlock()

	that.wg.Add(1)
	go that.readLoop(ws)

	return nil
}

func (that *Link) readLoop(ws *websocket.Conn) {
	defer that.wg.Done()

	for {
		var event wsproto.Event
		if err := ws.ReadJSON(&event); err != nil {
			if that.ctx.Err() == nil {
				that.logger.Warn("socket dropped, polling", "error", err)
				that.fallback(ws)
			}
			return
		}

		switch event.Type {
		case wsproto.TypeSessionState, wsproto.TypeGameUpdate:
			that.deliver(event.Session)
		case wsproto.TypeError:
			that.report(fmt.Errorf("%s: %s", event.Code, event.Message))
		case wsproto.TypePlayerJoined, wsproto.TypePlayerLeft:
			that.logger.Debug("presence changed", "type", event.Type, "otherID", event.PlayerID)
		default:
			that.logger.Debug("unknown event", "type", event.Type)
		}
	}
}

// sendPush - returns sent=false when the link is polling, so the caller goes over HTTP.
func (that *Link) sendPush(message any) (bool, error) {
	that.mu.Lock()
	ws, closed := that.ws, that.closed
	that.mu.Unlock()

	if closed {
		return false, errLinkClosed
	}

	if ws == nil {
		return false, nil
	}

	that.writeMu.Lock()
	err := ws.WriteJSON(message)
	that.writeMu.Unlock()

	if err == nil {
		return true, nil
	}

	// an unfinished frame is discarded by the server, so the HTTP retry cannot double-apply
	that.logger.Warn("failed to write to socket, polling", "error", err)
	that.fallback(ws)

	return false, nil
}

// fallback - switches from ws to polling once, whoever notices first.
func (that *Link) fallback(ws *websocket.Conn) {
	that.mu.Lock()
	if that.closed || that.ws != ws {
		that.mu.Unlock()
		return
	}
	that.ws = nil
	that.mu.Unlock()

	_ = ws.Close()

	if err := that.startPull(); err != nil {
		that.logger.Error("failed to start polling", "error", err)
		that.report(err)
	}
}

func (that *Link) startPull() error {
	scheduler, err := gocron.NewScheduler()
	if err != nil {
		return fmt.Errorf("failed to create poller: %w", err)
	}

	_, err = scheduler.NewJob(
		gocron.DurationJob(that.client.conf.PollInterval),
		gocron.NewTask(that.pollOnce),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
		gocron.WithStartAt(gocron.WithStartImmediately()),
	)
	if err != nil {
		_ = scheduler.Shutdown()
		return fmt.Errorf("failed to schedule poll: %w", err)
	}

	that.mu.Lock()
	if that.closed {
		that.mu.Unlock()
		_ = scheduler.Shutdown()
		return errLinkClosed
	}
	that.scheduler = scheduler
	that.mode = ModePull
	that.mu.Unlock()

	scheduler.Start()

	return nil
}

func (that *Link) pollOnce() {
	var since *time.Time

	that.deliverMu.Lock()
	if !that.last.IsZero() {
		last := that.last
		since = &last
	}
	that.deliverMu.Unlock()

	result, err := that.client.Poll(that.ctx, that.code, since)
	if err != nil {
		if that.ctx.Err() == nil {
			that.logger.Warn("poll failed", "error", err)
		}
		return
	}

	if result.HasUpdate {
		that.deliver(result.Session)
	}
}

// deliver - drops records not newer than the last one handed out.
func (that *Link) deliver(session *entity.Session) {
	if session == nil {
		return
	}

	that.deliverMu.Lock()
	defer that.deliverMu.Unlock()

	if that.ctx.Err() != nil {
		return
	}

	if !that.last.IsZero() && !session.UpdatedAt.After(that.last) {
		return
	}

	that.last = session.UpdatedAt

	select {
	case that.updates <- session:
	case <-that.ctx.Done():
	}
}

func (that *Link) report(err error) {
	select {
	case that.errs <- err:
	default:
	}
}
