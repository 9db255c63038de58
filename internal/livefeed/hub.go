// Package livefeed is the push layer between the marketplace broker and
// connected clients: a group fan-out hub fed by a RabbitMQ consumer and
// drained over SSE or WebSocket, plus the client-side subscriber.
package livefeed

import (
	"github.com/gammazero/deque"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// DefaultReplayDepth is how many recent events per group are replayed to a
// late joiner. Overlap with what the client already fetched is absorbed by
// the reconcile dedup rules.
const DefaultReplayDepth = 32

const subscriberBuffer = 64

// Subscription is one connected client's event stream.
type Subscription struct {
	ID     string
	Events chan Event
	hub    *Hub
}

func (s *Subscription) Join(group string)  { s.hub.member(s.hub.join, s, group) }
func (s *Subscription) Leave(group string) { s.hub.member(s.hub.leave, s, group) }

// Close leaves every group and releases the subscription. The Events
// channel is closed by the hub loop.
func (s *Subscription) Close() {
	done := make(chan struct{})
	select {
	case s.hub.unregister <- subReq{sub: s, done: done}:
		<-done
	case <-s.hub.quit:
	}
}

type subReq struct {
	sub  *Subscription
	done chan struct{}
}

type memberReq struct {
	sub   *Subscription
	group string
	done  chan struct{}
}

type pubReq struct {
	ev   Event
	done chan struct{}
}

// Hub owns all subscription and group state inside a single goroutine, the
// same shape as a chat-room loop: every mutation arrives over a channel, so
// no locks are needed and join/leave are naturally serialized.
type Hub struct {
	register   chan subReq
	unregister chan subReq
	join       chan memberReq
	leave      chan memberReq
	publish    chan pubReq
	quit       chan struct{}

	subs        map[string]*Subscription
	groups      map[string]map[string]*Subscription
	memberships map[string]map[string]bool
	recent      map[string]*deque.Deque[Event]
	replayDepth int
	log         zerolog.Logger
}

func NewHub(replayDepth int, log zerolog.Logger) *Hub {
	if replayDepth < 0 {
		replayDepth = DefaultReplayDepth
	}
	h := &Hub{
		register:    make(chan subReq),
		unregister:  make(chan subReq),
		join:        make(chan memberReq),
		leave:       make(chan memberReq),
		publish:     make(chan pubReq),
		quit:        make(chan struct{}),
		subs:        make(map[string]*Subscription),
		groups:      make(map[string]map[string]*Subscription),
		memberships: make(map[string]map[string]bool),
		recent:      make(map[string]*deque.Deque[Event]),
		replayDepth: replayDepth,
		log:         log,
	}
	go h.run()
	return h
}

// Subscribe registers a new client stream. id may be empty.
func (h *Hub) Subscribe(id string) *Subscription {
	if id == "" {
		id = uuid.NewString()
	}
	s := &Subscription{ID: id, Events: make(chan Event, subscriberBuffer), hub: h}
	done := make(chan struct{})
	select {
	case h.register <- subReq{sub: s, done: done}:
		<-done
	case <-h.quit:
		close(s.Events)
	}
	return s
}

// Publish hands an event to the fan-out loop and returns once it has been
// delivered (or dropped, for slow subscribers). Fan-out never blocks on a
// subscriber, so this is cheap for the caller.
func (h *Hub) Publish(ev Event) {
	done := make(chan struct{})
	select {
	case h.publish <- pubReq{ev: ev, done: done}:
		<-done
	case <-h.quit:
	}
}

// Shutdown stops the loop and closes every subscriber channel.
func (h *Hub) Shutdown() {
	close(h.quit)
}

func (h *Hub) member(ch chan memberReq, s *Subscription, group string) {
	done := make(chan struct{})
	select {
	case ch <- memberReq{sub: s, group: group, done: done}:
		<-done
	case <-h.quit:
	}
}

func (h *Hub) run() {
	for {
		select {
		case req := <-h.register:
			h.subs[req.sub.ID] = req.sub
			h.memberships[req.sub.ID] = make(map[string]bool)
			close(req.done)

		case req := <-h.unregister:
			h.drop(req.sub)
			close(req.done)

		case req := <-h.join:
			h.handleJoin(req.sub, req.group)
			close(req.done)

		case req := <-h.leave:
			h.handleLeave(req.sub, req.group)
			close(req.done)

		case req := <-h.publish:
			h.fanout(req.ev)
			close(req.done)

		case <-h.quit:
			for _, s := range h.subs {
				close(s.Events)
			}
			h.subs = nil
			return
		}
	}
}

func (h *Hub) handleJoin(s *Subscription, group string) {
	if _, ok := h.subs[s.ID]; !ok {
		return
	}
	if h.groups[group] == nil {
		h.groups[group] = make(map[string]*Subscription)
	}
	if h.groups[group][s.ID] != nil {
		return
	}
	h.groups[group][s.ID] = s
	h.memberships[s.ID][group] = true
	h.log.Debug().Str("sub", s.ID).Str("group", group).Msg("joined group")

	// Replay what the group saw recently so a late joiner is not blind
	// until the next event.
	if q := h.recent[group]; q != nil {
		for i := 0; i < q.Len(); i++ {
			select {
			case s.Events <- q.At(i):
			default:
			}
		}
	}
}

func (h *Hub) handleLeave(s *Subscription, group string) {
	if members, ok := h.groups[group]; ok {
		delete(members, s.ID)
		if len(members) == 0 {
			delete(h.groups, group)
		}
	}
	if m, ok := h.memberships[s.ID]; ok {
		delete(m, group)
	}
}

func (h *Hub) drop(s *Subscription) {
	if _, ok := h.subs[s.ID]; !ok {
		return
	}
	for group := range h.memberships[s.ID] {
		h.handleLeave(s, group)
	}
	delete(h.memberships, s.ID)
	delete(h.subs, s.ID)
	close(s.Events)
	h.log.Debug().Str("sub", s.ID).Msg("subscription closed")
}

func (h *Hub) fanout(ev Event) {
	if h.replayDepth > 0 {
		q := h.recent[ev.Group]
		if q == nil {
			q = new(deque.Deque[Event])
			h.recent[ev.Group] = q
		}
		q.PushBack(ev)
		for q.Len() > h.replayDepth {
			q.PopFront()
		}
	}
	for _, s := range h.groups[ev.Group] {
		select {
		case s.Events <- ev:
		default:
			// Slow subscriber: drop the delivery. The client view
			// self-heals on its next fetch.
			h.log.Warn().Str("sub", s.ID).Str("group", ev.Group).Msg("dropping event for slow subscriber")
		}
	}
}
