package http

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	"linguahub/internal/domain"
	"linguahub/internal/identity"
	"linguahub/internal/realtime"
)

// WSHandler upgrades authenticated clients to websockets and wires them
// into the session registry. Room membership and typing signals are the
// only inbound events; message sending stays on the REST path so that
// persistence always precedes dispatch.
type WSHandler struct {
	verifier   identity.Verifier
	registry   *realtime.Registry
	dispatcher *realtime.Dispatcher
	upgrader   websocket.Upgrader
}

func NewWSHandler(verifier identity.Verifier, registry *realtime.Registry, dispatcher *realtime.Dispatcher) *WSHandler {
	return &WSHandler{
		verifier:   verifier,
		registry:   registry,
		dispatcher: dispatcher,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
	}
}

type peerPayload struct {
	PeerID string `json:"peerId"`
}

type typingPayload struct {
	PeerID string `json:"peerId"`
	Typing bool   `json:"typing"`
}

type typingEvent struct {
	From   string `json:"from"`
	Typing bool   `json:"typing"`
}

// ServeWS validates the handshake credential, registers the connection
// under the caller's identity, and pumps inbound events until
// disconnect. An invalid token is refused before any subscription
// happens; registering implicitly subscribes the personal channel.
func (h *WSHandler) ServeWS(w http.ResponseWriter, r *http.Request) {
	principal, err := h.verifier.Verify(bearerToken(r))
	if err != nil {
		writeError(w, err)
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Warn().Err(err).Msg("ws upgrade failed")
		return
	}
	defer conn.Close()

	client := newWSClient(conn)
	session, err := h.registry.Register(principal.ID, client)
	if err != nil {
		_ = conn.WriteJSON(envelope{Event: "error", Data: errorResponse{Message: err.Error()}})
		return
	}
	defer h.registry.Unregister(session)
	defer client.close()

	go client.writePump()
	log.Info().Str("user", principal.ID).Msg("ws connected")

	for {
		var inbound struct {
			Event string          `json:"event"`
			Data  json.RawMessage `json:"data"`
		}
		if err := conn.ReadJSON(&inbound); err != nil {
			break
		}
		switch inbound.Event {
		case "chat:join":
			var p peerPayload
			if err := json.Unmarshal(inbound.Data, &p); err != nil || p.PeerID == "" {
				client.Send("error", errorResponse{Message: "invalid join payload"})
				continue
			}
			h.registry.JoinRoom(session, domain.RoomKey(principal.ID, p.PeerID))
		case "chat:leave":
			var p peerPayload
			if err := json.Unmarshal(inbound.Data, &p); err != nil || p.PeerID == "" {
				client.Send("error", errorResponse{Message: "invalid leave payload"})
				continue
			}
			h.registry.LeaveRoom(session, domain.RoomKey(principal.ID, p.PeerID))
		case "chat:typing":
			var p typingPayload
			if err := json.Unmarshal(inbound.Data, &p); err != nil || p.PeerID == "" {
				client.Send("error", errorResponse{Message: "invalid typing payload"})
				continue
			}
			// transient: fanned out to the room, never persisted
			room := domain.RoomKey(principal.ID, p.PeerID)
			h.dispatcher.PublishToRoomExcept(room, session, "chat:typing", typingEvent{
				From:   principal.ID,
				Typing: p.Typing,
			})
		default:
			client.Send("error", errorResponse{Message: "unsupported event"})
		}
	}

	log.Info().Str("user", principal.ID).Msg("ws disconnected")
}
