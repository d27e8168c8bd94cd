// Package whatsapp bridges the API to the external WhatsApp engine over
// NATS. The pairing protocol itself (QR generation, session state machine)
// lives in the engine; this package only ferries events and outbound sends.
package whatsapp

import (
	"context"
	"crypto/tls"
	"crypto/x509"
	"encoding/json"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/nats-io/nats.go"
	"go.uber.org/zap"

	"github.com/nafioutino/xamxam.io-sub000/pkg/logger"
)

// Subjects exchanged with the engine. The engine subscribes to start/send
// and publishes session events.
const (
	subjectPrefix = "wa"
)

// Config holds NATS connection configuration for the engine bridge.
type Config struct {
	URL      string
	CAFile   string
	CertFile string
	KeyFile  string
	Token    string
}

// EventType is the kind of pairing event reported by the engine.
type EventType string

const (
	EventQR        EventType = "qr"
	EventConnected EventType = "connected"
	EventError     EventType = "error"
)

// Event is one pairing event for a session.
type Event struct {
	Type      EventType `json:"type"`
	SessionID string    `json:"sessionId"`
	ShopID    string    `json:"shopId"`
	QR        string    `json:"qr,omitempty"`
	JID       string    `json:"jid,omitempty"`
	Reason    string    `json:"reason,omitempty"`
}

// startRequest asks the engine to open a pairing session.
type startRequest struct {
	SessionID string `json:"sessionId"`
	ShopID    string `json:"shopId"`
}

// outboundMessage is a send instruction for an already paired account.
type outboundMessage struct {
	ShopID string `json:"shopId"`
	To     string `json:"to"`
	Body   string `json:"body"`
}

// Bridge wraps the NATS connection to the engine.
type Bridge struct {
	conn   *nats.Conn
	logger *logger.Logger
}

// Connect establishes the connection to the NATS server the engine listens on.
func Connect(cfg Config, log *logger.Logger) (*Bridge, error) {
	opts := []nats.Option{
		nats.MaxReconnects(-1),
		nats.ReconnectWait(2 * time.Second),
		nats.DisconnectErrHandler(func(nc *nats.Conn, err error) {
			log.Warn("engine bridge disconnected", zap.Error(err))
		}),
		nats.ReconnectHandler(func(nc *nats.Conn) {
			log.Info("engine bridge reconnected")
		}),
		nats.ErrorHandler(func(nc *nats.Conn, sub *nats.Subscription, err error) {
			log.Error("engine bridge error", zap.Error(err))
		}),
	}

	if cfg.CAFile != "" && cfg.CertFile != "" && cfg.KeyFile != "" {
		tlsConfig, err := createTLSConfig(cfg.CAFile, cfg.CertFile, cfg.KeyFile)
		if err != nil {
			return nil, fmt.Errorf("failed to create TLS config: %w", err)
		}
		opts = append(opts, nats.Secure(tlsConfig))
	}
	if cfg.Token != "" {
		opts = append(opts, nats.Token(cfg.Token))
	}

	nc, err := nats.Connect(cfg.URL, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to NATS: %w", err)
	}

	return &Bridge{conn: nc, logger: log}, nil
}

// StartSession asks the engine to begin a pairing handshake for a shop.
func (b *Bridge) StartSession(ctx context.Context, sessionID, shopID string) error {
	data, err := json.Marshal(startRequest{SessionID: sessionID, ShopID: shopID})
	if err != nil {
		return err
	}
	return b.conn.Publish(StartSubject(), data)
}

// sessionStream carries engine events to one SSE reader. Delivery and close
// share a mutex: Unsubscribe does not wait for an in-flight subscription
// callback, so without the lock a late publish could hit a closed channel.
type sessionStream struct {
	mu     sync.Mutex
	events chan Event
	closed bool
}

func newSessionStream() *sessionStream {
	return &sessionStream{events: make(chan Event, 16)}
}

// deliver hands one event to the reader. Events are dropped when the stream
// is already stopped or the reader is too far behind.
func (s *sessionStream) deliver(ev Event) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return false
	}
	select {
	case s.events <- ev:
		return true
	default:
		return false
	}
}

// stop closes the event channel. Idempotent.
func (s *sessionStream) stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.closed = true
	close(s.events)
}

// SessionEvents subscribes to the pairing events of one session. The
// returned cancel function drains the subscription.
func (b *Bridge) SessionEvents(sessionID string) (<-chan Event, func(), error) {
	stream := newSessionStream()

	sub, err := b.conn.Subscribe(EventSubject(sessionID), func(m *nats.Msg) {
		var ev Event
		if err := json.Unmarshal(m.Data, &ev); err != nil {
			b.logger.Warn("malformed engine event", zap.Error(err))
			return
		}
		if !stream.deliver(ev) {
			b.logger.Warn("engine event dropped", zap.String("session_id", sessionID))
		}
	})
	if err != nil {
		return nil, nil, err
	}

	cancel := func() {
		sub.Unsubscribe()
		stream.stop()
	}
	return stream.events, cancel, nil
}

// SendMessage forwards an outbound message to the engine and waits for its
// acknowledgement.
func (b *Bridge) SendMessage(ctx context.Context, shopID, to, body string) error {
	data, err := json.Marshal(outboundMessage{ShopID: shopID, To: to, Body: body})
	if err != nil {
		return err
	}
	_, err = b.conn.RequestWithContext(ctx, SendSubject(shopID), data)
	return err
}

// IsConnected reports whether the bridge currently has a live connection.
func (b *Bridge) IsConnected() bool {
	return b.conn != nil && b.conn.IsConnected()
}

// Close drains the connection.
func (b *Bridge) Close() {
	if b.conn != nil {
		b.conn.Close()
	}
}

// StartSubject is where the engine listens for session-start requests.
func StartSubject() string {
	return fmt.Sprintf("%s.session.start", subjectPrefix)
}

// EventSubject carries pairing events for one session.
func EventSubject(sessionID string) string {
	return fmt.Sprintf("%s.session.%s.events", subjectPrefix, sessionID)
}

// SendSubject carries outbound messages for one shop's paired account.
func SendSubject(shopID string) string {
	return fmt.Sprintf("%s.send.%s", subjectPrefix, shopID)
}

func createTLSConfig(caFile, certFile, keyFile string) (*tls.Config, error) {
	caCert, err := os.ReadFile(caFile)
	if err != nil {
		return nil, fmt.Errorf("failed to read CA file: %w", err)
	}

	caCertPool := x509.NewCertPool()
	if !caCertPool.AppendCertsFromPEM(caCert) {
		return nil, fmt.Errorf("failed to parse CA certificate")
	}

	cert, err := tls.LoadX509KeyPair(certFile, keyFile)
	if err != nil {
		return nil, fmt.Errorf("failed to load client cert: %w", err)
	}

	return &tls.Config{
		RootCAs:      caCertPool,
		Certificates: []tls.Certificate{cert},
		MinVersion:   tls.VersionTLS12,
	}, nil
}
