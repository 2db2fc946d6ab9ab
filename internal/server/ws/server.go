// Package ws is the gateway's WebSocket transport. It authenticates each
// connection, registers it as the user's session and dispatches inbound
// frames to the chat services.
package ws

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/dmitrijs2005/gophchat/internal/common"
	"github.com/dmitrijs2005/gophchat/internal/logging"
	"github.com/dmitrijs2005/gophchat/internal/server/models"
	"github.com/dmitrijs2005/gophchat/internal/server/protocol"
	"github.com/dmitrijs2005/gophchat/internal/server/sessions"
	"github.com/gorilla/websocket"
)

// Options bounds the resources a single connection may hold.
type Options struct {
	HandshakeTimeout time.Duration
	WriteTimeout     time.Duration
	PongWait         time.Duration
	RequestTimeout   time.Duration
	SendQueueSize    int
	MaxFrameBytes    int64
}

func DefaultOptions() Options {
	return Options{
		HandshakeTimeout: 10 * time.Second,
		WriteTimeout:     10 * time.Second,
		PongWait:         60 * time.Second,
		RequestTimeout:   5 * time.Second,
		SendQueueSize:    64,
		MaxFrameBytes:    16 << 10,
	}
}

type Authenticator interface {
	Authenticate(token string) (string, error)
}

type Registry interface {
	Register(userID string, conn sessions.Conn)
	Unregister(userID string, conn sessions.Conn) bool
}

type SnapshotPusher interface {
	PushSnapshot(ctx context.Context, userID string) error
}

type ChatManager interface {
	CreateChat(ctx context.Context, requesterID string, names []string) (*models.Chat, error)
	DeleteChat(ctx context.Context, chatID, requesterID string) (*models.Chat, error)
}

type MessageSubmitter interface {
	Submit(ctx context.Context, chatID, senderID, raw string) (*models.MessageView, error)
}

type HistoryReader interface {
	History(ctx context.Context, chatID, requesterID string) ([]models.MessageView, error)
}

// Deps are the collaborators of the transport.
type Deps struct {
	Auth     Authenticator
	Sessions Registry
	Snapshot SnapshotPusher
	Chats    ChatManager
	Messages MessageSubmitter
	History  HistoryReader
}

type Server struct {
	deps     Deps
	opts     Options
	upgrader websocket.Upgrader
	log      logging.Logger
}

func NewServer(deps Deps, opts Options, log logging.Logger) *Server {
	return &Server{
		deps: deps,
		opts: opts,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
		log: log,
	}
}

// tokenFromRequest reads the bearer token from the Authorization header or
// the token query parameter.
func tokenFromRequest(r *http.Request) string {
	if h := r.Header.Get("Authorization"); h != "" {
		if t, ok := strings.CutPrefix(h, "Bearer "); ok {
			return strings.TrimSpace(t)
		}
	}
	return strings.TrimSpace(r.URL.Query().Get(common.TokenQueryParam))
}

// ServeHTTP upgrades the request and runs the connection until it closes.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.log.Warn(r.Context(), "upgrade failed", "error", err)
		return
	}
	conn.SetReadLimit(s.opts.MaxFrameBytes)

	ctx, cancel := context.WithCancel(context.WithoutCancel(r.Context()))
	defer cancel()

	userID, err := s.authenticate(conn, tokenFromRequest(r))
	if err != nil {
		s.log.Warn(ctx, "handshake rejected", "remote", r.RemoteAddr, "error", err)
		s.reject(conn)
		return
	}

	peer := newPeer(conn, userID, s.opts, s.log)
	go peer.writePump()

	s.deps.Sessions.Register(userID, peer)
	s.log.Info(ctx, "user connected", "user_id", userID)

	defer func() {
		s.deps.Sessions.Unregister(userID, peer)
		_ = peer.Close()
		s.log.Info(ctx, "user disconnected", "user_id", userID)
	}()

	if err := s.deps.Snapshot.PushSnapshot(ctx, userID); err != nil {
		s.log.Error(ctx, "initial snapshot failed", "user_id", userID, "error", err)
	}

	s.readLoop(ctx, peer)
}

// authenticate verifies token, or when it is empty waits HandshakeTimeout
// for an auth frame carrying one.
func (s *Server) authenticate(conn *websocket.Conn, token string) (string, error) {
	if token == "" {
		_ = conn.SetReadDeadline(time.Now().Add(s.opts.HandshakeTimeout))
		_, raw, err := conn.ReadMessage()
		if err != nil {
			return "", errors.Join(common.ErrInvalidToken, err)
		}
		f, err := protocol.ParseFrame(raw)
		if err != nil {
			return "", errors.Join(common.ErrInvalidToken, err)
		}
		a, err := protocol.DecodeAuth(f)
		if err != nil {
			return "", errors.Join(common.ErrInvalidToken, err)
		}
		token = a.Token
	}
	return s.deps.Auth.Authenticate(token)
}

// reject closes an unauthenticated connection with a policy-violation
// close frame and no events.
func (s *Server) reject(conn *websocket.Conn) {
	msg := websocket.FormatCloseMessage(websocket.ClosePolicyViolation, "unauthorized")
	_ = conn.WriteControl(websocket.CloseMessage, msg, time.Now().Add(s.opts.WriteTimeout))
	_ = conn.Close()
}

func (s *Server) readLoop(ctx context.Context, p *Peer) {
	_ = p.conn.SetReadDeadline(time.Now().Add(s.opts.PongWait))
	p.conn.SetPongHandler(func(string) error {
		return p.conn.SetReadDeadline(time.Now().Add(s.opts.PongWait))
	})

	for {
		msgType, raw, err := p.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure, websocket.CloseNoStatusReceived) {
				s.log.Debug(ctx, "read failed", "user_id", p.userID, "error", err)
			}
			return
		}
		_ = p.conn.SetReadDeadline(time.Now().Add(s.opts.PongWait))
		if msgType != websocket.TextMessage {
			s.log.Debug(ctx, "non-text frame ignored", "user_id", p.userID)
			continue
		}
		s.dispatch(ctx, p, raw)
	}
}
