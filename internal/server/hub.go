package server

import (
	"context"
	"errors"
	"log/slog"
	"math/rand/v2"
	"strconv"
	"strings"
	"time"

	"blackqueen/internal/game"
	"blackqueen/internal/metrics"
	"blackqueen/internal/protocol"
	"blackqueen/internal/shared"
)

var (
	ErrSessionNotFound = errors.New("session not found")
	ErrHubStopped      = errors.New("hub stopped")
)

// clientMessage is a helper struct to pass messages along with the client reference.
type clientMessage struct {
	client  *Client
	message protocol.Message
}

// sessionEntry is one live game and the websocket clients watching it.
type sessionEntry struct {
	session  *game.Session
	lastSeen time.Time
	clients  map[*Client]bool
}

// HubConfig tunes session handling.
type HubConfig struct {
	CodeLength  int           // Length of the shareable session code
	IdleTimeout time.Duration // Sessions untouched and unwatched this long are discarded
}

// Hub owns every session. All reads and writes of sessions happen on the Run
// goroutine, so each action completes before the next one starts and the game
// package needs no locking.
type Hub struct {
	cfg            HubConfig
	sessions       map[string]*sessionEntry
	clients        map[*Client]bool
	processMessage chan clientMessage
	register       chan *Client
	unregister     chan *Client
	requests       chan func()
	stopped        chan struct{}
	rng            *rand.Rand
	now            func() time.Time
	metrics        *metrics.Metrics
	logger         *slog.Logger
}

// NewHub creates a new Hub instance. Call Run to start serving it.
func NewHub(cfg HubConfig, m *metrics.Metrics, logger *slog.Logger) *Hub {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	seed := uint64(time.Now().UnixNano())
	return &Hub{
		cfg:            cfg,
		sessions:       make(map[string]*sessionEntry),
		clients:        make(map[*Client]bool),
		processMessage: make(chan clientMessage),
		register:       make(chan *Client),
		unregister:     make(chan *Client),
		requests:       make(chan func()),
		stopped:        make(chan struct{}),
		rng:            rand.New(rand.NewPCG(seed, seed>>1)),
		now:            time.Now,
		metrics:        m,
		logger:         logger,
	}
}

// generateCode creates a unique alphanumeric session code.
func (h *Hub) generateCode() string {
	const letters = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"
	for {
		var sb strings.Builder
		for i := 0; i < h.cfg.CodeLength; i++ {
			sb.WriteByte(letters[h.rng.IntN(len(letters))])
		}
		code := sb.String()
		if _, exists := h.sessions[code]; !exists {
			return code
		}
		h.logger.Debug("Generated session code collided, retrying", "code", code)
	}
}

// Run starts the Hub's main loop. It returns when ctx is cancelled.
func (h *Hub) Run(ctx context.Context) {
	sweep := min(h.cfg.IdleTimeout/2, time.Minute)
	if sweep <= 0 {
		sweep = time.Minute
	}
	ticker := time.NewTicker(sweep)
	defer ticker.Stop()
	defer close(h.stopped)

	for {
		select {
		case <-ctx.Done():
			for client := range h.clients {
				h.dropClient(client)
			}
			h.logger.Info("Hub stopped", "sessions", len(h.sessions))
			return

		case client := <-h.register:
			h.attach(client)

		case client := <-h.unregister:
			if h.clients[client] {
				h.logger.Info("Client disconnected", "client", client.ID, "session", client.code)
				h.dropClient(client)
			}

		case cm := <-h.processMessage:
			h.handleMessage(cm.client, cm.message)

		case fn := <-h.requests:
			fn()

		case <-ticker.C:
			h.evictIdle()
		}
	}
}

// exec runs fn on the hub goroutine and waits for it to finish. ctx only
// bounds the hand-off; once the hub has taken fn, exec waits for it so the
// caller never reports failure for an applied change.
func (h *Hub) exec(ctx context.Context, fn func()) error {
	done := make(chan struct{})
	task := func() {
		defer close(done)
		fn()
	}
	select {
	case h.requests <- task:
	case <-ctx.Done():
		return ctx.Err()
	case <-h.stopped:
		return ErrHubStopped
	}
	<-done
	return nil
}

// lookup finds a session by its case-insensitive code and marks it as used.
func (h *Hub) lookup(code string) (*sessionEntry, string, error) {
	code = strings.ToUpper(strings.TrimSpace(code))
	e, ok := h.sessions[code]
	if !ok {
		return nil, code, ErrSessionNotFound
	}
	e.lastSeen = h.now()
	return e, code, nil
}

// Create opens a new session in the setup phase and returns its code.
func (h *Hub) Create(ctx context.Context) (string, error) {
	var code string
	err := h.exec(ctx, func() {
		code = h.generateCode()
		h.sessions[code] = &sessionEntry{
			session:  game.NewSession(h.logger),
			lastSeen: h.now(),
			clients:  make(map[*Client]bool),
		}
		h.metrics.SetActiveSessions(len(h.sessions))
		h.logger.Info("Session created", "code", code, "session", h.sessions[code].session.ID)
	})
	return code, err
}

// Delete discards a session and disconnects its watchers.
func (h *Hub) Delete(ctx context.Context, code string) error {
	var opErr error
	err := h.exec(ctx, func() {
		e, c, err := h.lookup(code)
		if err != nil {
			opErr = err
			return
		}
		h.closeSession(c, e, "Session deleted.")
		h.logger.Info("Session deleted", "code", c)
	})
	return errors.Join(err, opErr)
}

// Snapshot returns a detached copy of a session for rendering or export.
func (h *Hub) Snapshot(ctx context.Context, code string) (*game.Session, error) {
	var (
		snap  *game.Session
		opErr error
	)
	err := h.exec(ctx, func() {
		e, _, err := h.lookup(code)
		if err != nil {
			opErr = err
			return
		}
		snap = e.session.Snapshot()
	})
	return snap, errors.Join(err, opErr)
}

// State returns the wire view of a session.
func (h *Hub) State(ctx context.Context, code string) (protocol.StatePayload, error) {
	var (
		state protocol.StatePayload
		opErr error
	)
	err := h.exec(ctx, func() {
		e, c, err := h.lookup(code)
		if err != nil {
			opErr = err
			return
		}
		state = protocol.NewState(c, e.session)
	})
	return state, errors.Join(err, opErr)
}

// StartGame fixes the roster of a session.
func (h *Hub) StartGame(ctx context.Context, code string, names []string) ([]string, error) {
	var (
		roster []string
		opErr  error
	)
	err := h.exec(ctx, func() {
		roster, opErr = h.startGame(code, names)
	})
	return roster, errors.Join(err, opErr)
}

// SubmitRound scores one round of a session.
func (h *Hub) SubmitRound(ctx context.Context, code string, sub game.Submission) (shared.RoundRecord, error) {
	var (
		rec   shared.RoundRecord
		opErr error
	)
	err := h.exec(ctx, func() {
		rec, opErr = h.submitRound(code, sub)
	})
	return rec, errors.Join(err, opErr)
}

// Reset returns a session to the setup phase.
func (h *Hub) Reset(ctx context.Context, code string) error {
	var opErr error
	err := h.exec(ctx, func() {
		opErr = h.resetGame(code)
	})
	return errors.Join(err, opErr)
}

func (h *Hub) startGame(code string, names []string) ([]string, error) {
	e, c, err := h.lookup(code)
	if err != nil {
		return nil, err
	}
	roster, err := e.session.StartGame(names)
	if err != nil {
		h.metrics.ValidationFailed(game.ErrorCode(err))
		return nil, err
	}
	h.metrics.GameStarted()
	h.broadcastState(c, e)
	return roster, nil
}

func (h *Hub) submitRound(code string, sub game.Submission) (shared.RoundRecord, error) {
	e, c, err := h.lookup(code)
	if err != nil {
		return shared.RoundRecord{}, err
	}
	rec, err := e.session.SubmitRound(sub)
	if err != nil {
		h.metrics.ValidationFailed(game.ErrorCode(err))
		return shared.RoundRecord{}, err
	}
	h.metrics.RoundSubmitted(string(rec.Outcome), strconv.Itoa(int(rec.DeckCount)))

	msg, err := protocol.NewMessage(protocol.TypeRoundSubmitted, protocol.RoundSubmittedPayload{
		Round:  rec.Round,
		Bidder: rec.Team.Bidder,
		Result: string(rec.Outcome),
	})
	if err == nil {
		h.broadcast(e, msg)
	}
	h.broadcastState(c, e)
	return rec, nil
}

func (h *Hub) resetGame(code string) error {
	e, c, err := h.lookup(code)
	if err != nil {
		return err
	}
	e.session.Reset()
	h.broadcastState(c, e)
	return nil
}

// evictIdle discards sessions nobody has touched or watched within the idle timeout.
func (h *Hub) evictIdle() {
	now := h.now()
	evicted := 0
	for code, e := range h.sessions {
		if len(e.clients) == 0 && now.Sub(e.lastSeen) > h.cfg.IdleTimeout {
			h.closeSession(code, e, "")
			evicted++
		}
	}
	if evicted > 0 {
		h.metrics.SessionsEvicted(evicted)
		h.logger.Info("Evicted idle sessions", "count", evicted, "remaining", len(h.sessions))
	}
}

func (h *Hub) closeSession(code string, e *sessionEntry, reason string) {
	if reason != "" {
		if msg, err := protocol.NewMessage(protocol.TypeError, protocol.ErrorPayload{Message: reason}); err == nil {
			h.broadcast(e, msg)
		}
	}
	for client := range e.clients {
		h.dropClient(client)
	}
	delete(h.sessions, code)
	h.metrics.SetActiveSessions(len(h.sessions))
}

// attach registers a websocket client on the session it asked for.
func (h *Hub) attach(client *Client) {
	h.clients[client] = true

	e, code, err := h.lookup(client.code)
	if err != nil {
		h.logger.Info("Client asked for unknown session", "client", client.ID, "code", code)
		h.sendError(client, err)
		h.dropClient(client)
		return
	}
	e.clients[client] = true
	h.logger.Info("Client connected", "client", client.ID, "session", code, "watchers", len(e.clients))
	h.sendState(client, code, e)
}

// dropClient forgets a client and closes its send channel, which ends its write pump.
func (h *Hub) dropClient(client *Client) {
	if !h.clients[client] {
		return
	}
	delete(h.clients, client)
	if e, ok := h.sessions[client.code]; ok {
		delete(e.clients, client)
	}
	close(client.send)
}

// handleMessage processes a message received from a client.
func (h *Hub) handleMessage(client *Client, msg protocol.Message) {
	if !h.clients[client] {
		return
	}
	switch msg.Type {
	case protocol.TypeStartGame:
		var payload protocol.StartGamePayload
		if err := decodePayload(msg, &payload); err != nil {
			h.sendError(client, err)
			return
		}
		if _, err := h.startGame(client.code, payload.Names); err != nil {
			h.sendError(client, err)
		}

	case protocol.TypeSubmitRound:
		var payload protocol.SubmitRoundPayload
		if err := decodePayload(msg, &payload); err != nil {
			h.sendError(client, err)
			return
		}
		sub, err := payload.Submission()
		if err != nil {
			h.sendError(client, err)
			return
		}
		if _, err := h.submitRound(client.code, sub); err != nil {
			h.sendError(client, err)
		}

	case protocol.TypeResetGame:
		if err := h.resetGame(client.code); err != nil {
			h.sendError(client, err)
		}

	case protocol.TypePing:
		if pong, err := protocol.NewMessage(protocol.TypePong, nil); err == nil {
			h.send(client, pong)
		}

	default:
		h.logger.Info("Received unknown message type", "type", msg.Type, "client", client.ID)
		h.sendError(client, errors.New("unknown message type"))
	}
}

func (h *Hub) sendState(client *Client, code string, e *sessionEntry) {
	msg, err := protocol.NewMessage(protocol.TypeState, protocol.NewState(code, e.session))
	if err != nil {
		h.logger.Error("Failed to encode state", "session", code, "error", err)
		return
	}
	h.send(client, msg)
}

// broadcastState pushes the current view of a session to everyone watching it.
func (h *Hub) broadcastState(code string, e *sessionEntry) {
	if len(e.clients) == 0 {
		return
	}
	msg, err := protocol.NewMessage(protocol.TypeState, protocol.NewState(code, e.session))
	if err != nil {
		h.logger.Error("Failed to encode state", "session", code, "error", err)
		return
	}
	h.broadcast(e, msg)
}

func (h *Hub) broadcast(e *sessionEntry, msg []byte) {
	for client := range e.clients {
		h.send(client, msg)
	}
}

func (h *Hub) sendError(client *Client, err error) {
	msg, encErr := protocol.NewMessage(protocol.TypeError, protocol.NewError(err))
	if encErr != nil {
		h.logger.Error("Failed to encode error message", "client", client.ID, "error", encErr)
		return
	}
	h.send(client, msg)
}

// send never blocks the hub; a client that cannot keep up is disconnected.
func (h *Hub) send(client *Client, msg []byte) {
	if !h.clients[client] {
		return
	}
	select {
	case client.send <- msg:
	default:
		h.logger.Warn("Client send buffer full, disconnecting", "client", client.ID)
		h.dropClient(client)
	}
}
