package livefeed

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
)

// JoinTimeout bounds how long a join waits for the server ack. A teardown
// racing an in-flight join waits at most this long before touching the
// connection.
const JoinTimeout = 2 * time.Second

// Subscriber is the client end of the live feed: one WebSocket connection,
// explicit group joins, events surfaced on a channel. The connection is not
// safe for concurrent join/leave sequences, so every operation serializes
// on one mutex around a single started flag.
type Subscriber struct {
	url string
	log zerolog.Logger

	mu      sync.Mutex
	started bool
	conn    *websocket.Conn
	joined  map[string]bool

	// acks has its own lock: the read loop signals acks while Join holds
	// mu waiting for one.
	ackMu sync.Mutex
	acks  map[string]chan struct{}

	events chan Event
	done   chan struct{}
}

func NewSubscriber(url string, log zerolog.Logger) *Subscriber {
	return &Subscriber{
		url:    url,
		log:    log,
		joined: make(map[string]bool),
		acks:   make(map[string]chan struct{}),
		events: make(chan Event, subscriberBuffer),
		done:   make(chan struct{}),
	}
}

// Events delivers feed events until Stop. The channel closes when the
// connection ends.
func (s *Subscriber) Events() <-chan Event { return s.events }

func (s *Subscriber) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.started {
		return fmt.Errorf("subscriber already started")
	}
	conn, _, err := websocket.DefaultDialer.DialContext(ctx, s.url, nil)
	if err != nil {
		return fmt.Errorf("dialing live feed: %w", err)
	}
	s.conn = conn
	s.started = true
	go s.readLoop(conn)
	return nil
}

// Join subscribes to a named group and waits for the server ack, bounded
// by JoinTimeout (or ctx, whichever is sooner).
func (s *Subscriber) Join(ctx context.Context, group string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.started {
		return fmt.Errorf("subscriber not started")
	}
	if s.joined[group] {
		return nil
	}

	ack := make(chan struct{}, 1)
	s.ackMu.Lock()
	s.acks[group] = ack
	s.ackMu.Unlock()
	defer func() {
		s.ackMu.Lock()
		delete(s.acks, group)
		s.ackMu.Unlock()
	}()

	if err := s.conn.WriteJSON(wsCommand{Action: "join", Group: group}); err != nil {
		return fmt.Errorf("sending join for %s: %w", group, err)
	}

	timer := time.NewTimer(JoinTimeout)
	defer timer.Stop()
	select {
	case <-ack:
		s.joined[group] = true
		s.log.Debug().Str("group", group).Msg("joined live group")
		return nil
	case <-timer.C:
		return fmt.Errorf("join %s: no ack within %s", group, JoinTimeout)
	case <-ctx.Done():
		return ctx.Err()
	case <-s.done:
		return fmt.Errorf("connection closed during join")
	}
}

// Leave drops a group. Best effort: a failed leave only means the server
// keeps sending to a channel nobody reads.
func (s *Subscriber) Leave(group string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.started || !s.joined[group] {
		return nil
	}
	delete(s.joined, group)
	if err := s.conn.WriteJSON(wsCommand{Action: "leave", Group: group}); err != nil {
		return fmt.Errorf("sending leave for %s: %w", group, err)
	}
	return nil
}

// Stop leaves every joined group and closes the connection. Taking the
// mutex first means any in-flight join has finished (or timed out) before
// the connection is torn down.
func (s *Subscriber) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.started {
		return
	}
	for group := range s.joined {
		if err := s.conn.WriteJSON(wsCommand{Action: "leave", Group: group}); err != nil {
			break
		}
	}
	s.joined = make(map[string]bool)
	s.conn.WriteControl(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
		time.Now().Add(time.Second))
	s.conn.Close()
	s.started = false
}

func (s *Subscriber) readLoop(conn *websocket.Conn) {
	defer close(s.events)
	defer close(s.done)
	for {
		_, raw, err := conn.ReadMessage()
		if err != nil {
			return
		}
		var ack wsAck
		if err := json.Unmarshal(raw, &ack); err == nil && (ack.Type == "joined" || ack.Type == "left") {
			if ack.Type == "joined" {
				s.signalAck(ack.Group)
			}
			continue
		}
		var ev Event
		if err := json.Unmarshal(raw, &ev); err != nil || ev.Type == "" {
			continue
		}
		select {
		case s.events <- ev:
		default:
			s.log.Warn().Str("group", ev.Group).Msg("event buffer full, dropping")
		}
	}
}

func (s *Subscriber) signalAck(group string) {
	s.ackMu.Lock()
	ack, ok := s.acks[group]
	s.ackMu.Unlock()
	if ok {
		select {
		case ack <- struct{}{}:
		default:
		}
	}
}
