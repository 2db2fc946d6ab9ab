package ws

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"time"

	"github.com/dmitrijs2005/gophchat/internal/logging"
	"github.com/dmitrijs2005/gophchat/internal/server/protocol"
	"github.com/gorilla/websocket"
)

var (
	ErrPeerClosed   = errors.New("peer closed")
	ErrSlowConsumer = errors.New("send queue full")
)

// Peer is one authenticated client connection. Writes go through a bounded
// queue drained by a single writer goroutine.
type Peer struct {
	conn   *websocket.Conn
	userID string
	send   chan []byte
	done   chan struct{}
	once   sync.Once

	writeTimeout time.Duration
	pingPeriod   time.Duration
	log          logging.Logger
}

func newPeer(conn *websocket.Conn, userID string, opts Options, log logging.Logger) *Peer {
	return &Peer{
		conn:         conn,
		userID:       userID,
		send:         make(chan []byte, opts.SendQueueSize),
		done:         make(chan struct{}),
		writeTimeout: opts.WriteTimeout,
		pingPeriod:   opts.PongWait * 9 / 10,
		log:          log,
	}
}

// UserID returns the authenticated user of the connection.
func (p *Peer) UserID() string { return p.userID }

// Send queues ev for delivery without blocking. A full queue closes the peer.
func (p *Peer) Send(ev protocol.Event) error {
	b, err := json.Marshal(ev)
	if err != nil {
		return err
	}

	select {
	case <-p.done:
		return ErrPeerClosed
	default:
	}

	select {
	case p.send <- b:
		return nil
	case <-p.done:
		return ErrPeerClosed
	default:
		p.log.Warn(context.Background(), "slow consumer, closing", "user_id", p.userID)
		_ = p.Close()
		return ErrSlowConsumer
	}
}

// Close stops the writer and closes the socket. It is safe to call more
// than once.
func (p *Peer) Close() error {
	var err error
	p.once.Do(func() {
		close(p.done)
		err = p.conn.Close()
	})
	return err
}

// writePump writes queued frames and keepalive pings until the peer closes.
func (p *Peer) writePump() {
	ticker := time.NewTicker(p.pingPeriod)
	defer func() {
		ticker.Stop()
		_ = p.Close()
	}()

	for {
		select {
		case <-p.done:
			return
		case b := <-p.send:
			_ = p.conn.SetWriteDeadline(time.Now().Add(p.writeTimeout))
			if err := p.conn.WriteMessage(websocket.TextMessage, b); err != nil {
				p.log.Debug(context.Background(), "write failed", "user_id", p.userID, "error", err)
				return
			}
		case <-ticker.C:
			_ = p.conn.SetWriteDeadline(time.Now().Add(p.writeTimeout))
			if err := p.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
