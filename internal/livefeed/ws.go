package livefeed

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  4096,
	WriteBufferSize: 4096,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

const (
	pongWait   = 60 * time.Second
	pingPeriod = 25 * time.Second
	writeWait  = 10 * time.Second
)

// Inbound control frames from the client.
type wsCommand struct {
	Action string `json:"action"` // "join" or "leave"
	Group  string `json:"group"`
}

// Outbound acks; data events go out as plain Event envelopes.
type wsAck struct {
	Type  string `json:"type"` // "joined" or "left"
	Group string `json:"group"`
}

// WSHandler upgrades a connection and speaks the join/leave protocol:
// the client joins named groups explicitly and gets an ack per command.
type WSHandler struct {
	Hub *Hub
	Log zerolog.Logger
}

func (h *WSHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		http.Error(w, "upgrade failed", http.StatusBadRequest)
		return
	}
	defer conn.Close()

	sub := h.Hub.Subscribe(r.URL.Query().Get("client_id"))
	defer sub.Close()

	// Write side: data events and acks share one goroutine so writes
	// never interleave on the connection.
	acks := make(chan wsAck, 8)
	writerDone := make(chan struct{})
	go func() {
		defer close(writerDone)
		ping := time.NewTicker(pingPeriod)
		defer ping.Stop()
		for {
			select {
			case ev, ok := <-sub.Events:
				if !ok {
					return
				}
				conn.SetWriteDeadline(time.Now().Add(writeWait))
				if err := conn.WriteJSON(ev); err != nil {
					return
				}
			case ack, ok := <-acks:
				if !ok {
					return
				}
				conn.SetWriteDeadline(time.Now().Add(writeWait))
				if err := conn.WriteJSON(ack); err != nil {
					return
				}
			case <-ping.C:
				conn.SetWriteDeadline(time.Now().Add(writeWait))
				if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
					return
				}
			}
		}
	}()

	conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, raw, err := conn.ReadMessage()
		if err != nil {
			break
		}
		var cmd wsCommand
		if err := json.Unmarshal(raw, &cmd); err != nil || cmd.Group == "" {
			h.Log.Warn().Str("sub", sub.ID).Msg("ignoring malformed ws command")
			continue
		}
		var ack wsAck
		switch cmd.Action {
		case "join":
			sub.Join(cmd.Group)
			ack = wsAck{Type: "joined", Group: cmd.Group}
		case "leave":
			sub.Leave(cmd.Group)
			ack = wsAck{Type: "left", Group: cmd.Group}
		default:
			continue
		}
		select {
		case acks <- ack:
		case <-writerDone:
		}
	}

	close(acks)
	<-writerDone
}
