// internal/handlers/room_ws.go
package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/coder/websocket"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/pverdier/undercover/internal/game"
	"github.com/pverdier/undercover/internal/middleware"
)

// clientMessage is the envelope for every inbound client event. Field names
// are wire format and must match the client exactly.
type clientMessage struct {
	Type            string `json:"type"`
	Name            string `json:"name,omitempty"`
	RoomCode        string `json:"roomCode,omitempty"`
	Count           int    `json:"count,omitempty"`
	PlayerID        string `json:"playerId,omitempty"`
	VotedPlayerName string `json:"votedPlayerName,omitempty"`
}

// RoomWSHandler upgrades the connection, mints a fresh connection handle and
// pumps client events into the session machine until the socket dies.
func RoomWSHandler(logger *logrus.Logger, hub *Hub, session *game.Session) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		c, err := websocket.Accept(w, r, &websocket.AcceptOptions{
			Subprotocols:   []string{"undercover"},
			OriginPatterns: []string{"*"}, // Adjust in production.
		})
		if err != nil {
			logger.Warnf("websocket accept error: %v", err)
			return
		}
		defer c.Close(websocket.StatusInternalError, "handler finished")

		if c.Subprotocol() != "undercover" {
			c.Close(BadSubprotocolError, "client must speak the undercover subprotocol")
			return
		}

		// The handle is this connection's transient identity. It is never a
		// player identity: players are keyed by name and rebound on reconnect.
		handle := uuid.New()
		middleware.LogWebSocketConnect(logger, r.RemoteAddr, r.URL.Path)

		ctx, cancel := context.WithCancel(r.Context())
		defer cancel()

		cl := &client{
			handle: handle,
			out:    make(chan game.Event, 16),
			cancel: cancel,
		}
		hub.register(cl)

		go writePump(ctx, c, cl, logger)

		readPump(ctx, c, cl, session, logger)

		// The directory must stop reporting this handle as live before the
		// session machine decides what the disconnect means.
		hub.unregister(handle)
		session.HandleDisconnect(handle)
		middleware.LogWebSocketDisconnect(logger, r.RemoteAddr, r.URL.Path, nil)
	}
}

// readPump decodes inbound events and routes them to the session machine.
// Returns when the connection closes or the context is cancelled.
func readPump(ctx context.Context, c *websocket.Conn, cl *client, session *game.Session, logger *logrus.Logger) {
	for {
		typ, data, err := c.Read(ctx)
		if err != nil {
			status := websocket.CloseStatus(err)
			if status == websocket.StatusNormalClosure || status == websocket.StatusGoingAway {
				logger.Infof("websocket closed normally for %s", cl.handle)
			} else if !strings.Contains(err.Error(), "context canceled") {
				logger.Warnf("read error for %s: %v", cl.handle, err)
			}
			return
		}
		if typ != websocket.MessageText {
			continue
		}

		var msg clientMessage
		if err := json.Unmarshal(data, &msg); err != nil {
			logger.Warnf("invalid json from %s: %v", cl.handle, err)
			cl.write(game.Event{Type: game.EventGameError, Data: game.MessagePayload{Message: "Invalid JSON format"}}, logger)
			continue
		}

		dispatch(session, cl.handle, msg, logger)
	}
}

// dispatch maps one inbound event onto a session transition.
func dispatch(session *game.Session, handle uuid.UUID, msg clientMessage, logger *logrus.Logger) {
	switch msg.Type {
	case "createRoom":
		session.CreateRoom(handle, msg.Name)
	case "joinRoom":
		session.JoinRoom(handle, msg.RoomCode, msg.Name)
	case "updateImpostorCount":
		session.UpdateImpostorCount(handle, msg.RoomCode, msg.Count)
	case "kickPlayer":
		session.KickPlayer(handle, msg.RoomCode, msg.PlayerID)
	case "startGame":
		session.StartGame(handle, msg.RoomCode)
	case "newRound":
		session.NewRound(handle, msg.RoomCode)
	case "nextSpeaker":
		session.NextSpeaker(handle, msg.RoomCode)
	case "toggleVoting":
		session.ToggleVoting(handle, msg.RoomCode)
	case "voteImpostor":
		session.VoteImpostor(handle, msg.RoomCode, msg.VotedPlayerName)
	case "endRound":
		session.EndRound(handle, msg.RoomCode)
	case "leaveRoom":
		session.LeaveRoom(handle, msg.RoomCode)
	case "endGame":
		session.EndGame(handle, msg.RoomCode)
	default:
		logger.Warnf("unknown event type %q from %s", msg.Type, handle)
	}
}

// writePump drains the client's outbound queue onto the socket and keeps the
// connection alive with periodic pings.
func writePump(ctx context.Context, c *websocket.Conn, cl *client, logger *logrus.Logger) {
	ticker := time.NewTicker(30 * time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-cl.out:
			if !ok {
				return
			}
			data, err := json.Marshal(ev)
			if err != nil {
				logger.Warnf("failed to marshal %s event for %s: %v", ev.Type, cl.handle, err)
				continue
			}
			writeCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
			err = c.Write(writeCtx, websocket.MessageText, data)
			cancel()
			if err != nil {
				logger.Warnf("write failed for %s: %v", cl.handle, err)
				return
			}
		case <-ticker.C:
			pingCtx, cancel := context.WithTimeout(ctx, 15*time.Second)
			err := c.Ping(pingCtx)
			cancel()
			if err != nil {
				logger.Warnf("ping failed for %s, assuming disconnect: %v", cl.handle, err)
				return
			}
		}
	}
}
