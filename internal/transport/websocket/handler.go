package websocket

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"slices"
	"time"

	"github.com/gorilla/websocket"
	"github.com/iamasit07/connect4-ai/internal/domain"
	"github.com/iamasit07/connect4-ai/internal/service/game"
	"github.com/iamasit07/connect4-ai/pkg/auth"
)

const (
	pongWait   = 60 * time.Second
	pingPeriod = 30 * time.Second
)

type TokenValidator interface {
	ValidateToken(ctx context.Context, token string) (*auth.Claims, error)
}

// Handler serves /ws: one human playing the computer per socket.
type Handler struct {
	ConnManager    *ConnectionManager
	SessionManager *game.SessionManager
	Auth           TokenValidator
	Upgrader       websocket.Upgrader
}

// NewHandler accepts sockets from allowedOrigins and from clients that send no Origin.
func NewHandler(cm *ConnectionManager, sm *game.SessionManager, validator TokenValidator, allowedOrigins []string) *Handler {
	return &Handler{
		ConnManager:    cm,
		SessionManager: sm,
		Auth:           validator,
		Upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				origin := r.Header.Get("Origin")
				return origin == "" || slices.Contains(allowedOrigins, origin)
			},
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
		},
	}
}

func (h *Handler) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := h.Upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("[WS] Upgrade error: %v", err)
		return
	}

	h.handleConnection(r.Context(), conn)
}

func (h *Handler) handleConnection(ctx context.Context, conn *websocket.Conn) {
	conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	userID, username, ok := h.authenticate(ctx, conn)
	if !ok {
		conn.Close()
		return
	}

	done := make(chan struct{})
	go h.keepAlive(userID, conn, done)

	defer func() {
		close(done)
		log.Printf("[WS] Connection closed for user %s", username)
		// a replaced socket must not end the game its successor is playing
		if h.ConnManager.IsCurrentConnection(userID, conn) {
			h.SessionManager.HandleDisconnect(userID)
		}
		h.ConnManager.RemoveConnectionIfMatching(userID, conn)
	}()

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Printf("[WS] User %d disconnected unexpectedly: %v", userID, err)
			}
			return
		}

		var msg domain.ClientMessage
		if err := json.Unmarshal(data, &msg); err != nil {
			log.Printf("[WS] Invalid message format from user %d: %v", userID, err)
			h.sendError(userID, "invalid message format")
			continue
		}

		h.processMessage(userID, msg)
	}
}

// authenticate waits for the init message and registers the socket.
// A game that is still running for the user is sent again.
func (h *Handler) authenticate(ctx context.Context, conn *websocket.Conn) (int64, string, bool) {
	_, data, err := conn.ReadMessage()
	if err != nil {
		log.Printf("[WS] Read error during init: %v", err)
		return 0, "", false
	}

	var message domain.ClientMessage
	if err := json.Unmarshal(data, &message); err != nil || message.Type != "init" || message.JWT == "" {
		log.Printf("[WS] Missing initialization or token")
		conn.WriteJSON(domain.ErrorMessage{Type: "error", Message: "first message must be init with a token"})
		return 0, "", false
	}

	claims, err := h.Auth.ValidateToken(ctx, message.JWT)
	if err != nil {
		log.Printf("[WS] Invalid token during init: %v", err)
		conn.WriteJSON(domain.ErrorMessage{Type: "error", Message: "Invalid token or session expired"})
		return 0, "", false
	}

	log.Printf("[WS] Connection initialized for user: %s (ID: %d)", claims.Username, claims.UserID)
	h.ConnManager.AddConnection(claims.UserID, conn, claims.Username)

	if session, exists := h.SessionManager.GetSessionByUserID(claims.UserID); exists {
		session.Resync(h.ConnManager)
	}
	return claims.UserID, claims.Username, true
}

func (h *Handler) keepAlive(userID int64, conn *websocket.Conn, done <-chan struct{}) {
	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()
	for {
		select {
		case <-done:
			return
		case <-ticker.C:
			if !h.ConnManager.IsCurrentConnection(userID, conn) {
				return
			}
			if err := conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeWait)); err != nil {
				return
			}
		}
	}
}

func (h *Handler) processMessage(userID int64, msg domain.ClientMessage) {
	switch msg.Type {
	case "start_game":
		difficulty, err := domain.ParseDifficulty(msg.Difficulty)
		if err != nil {
			h.sendError(userID, err.Error())
			return
		}
		username, _ := h.ConnManager.GetUsername(userID)
		h.SessionManager.CreateSession(userID, username, difficulty, h.ConnManager)

	case "make_move":
		session, ok := h.session(userID)
		if !ok {
			return
		}
		if err := session.HandleMove(userID, msg.Column); err != nil {
			h.sendError(userID, err.Error())
		}

	case "pause":
		session, ok := h.session(userID)
		if !ok {
			return
		}
		if err := session.Pause(); err != nil {
			h.sendError(userID, err.Error())
		}

	case "resume":
		session, ok := h.session(userID)
		if !ok {
			return
		}
		if err := session.Resume(); err != nil {
			h.sendError(userID, err.Error())
		}

	case "restart":
		if _, err := h.SessionManager.Restart(userID, h.ConnManager); err != nil {
			h.sendError(userID, err.Error())
		}

	case "abandon_game":
		session, ok := h.session(userID)
		if !ok {
			return
		}
		session.Abandon()

	default:
		h.sendError(userID, "unknown message type: "+msg.Type)
	}
}

func (h *Handler) session(userID int64) (*game.GameSession, bool) {
	session, exists := h.SessionManager.GetSessionByUserID(userID)
	if !exists {
		h.sendError(userID, "Game not found")
	}
	return session, exists
}

func (h *Handler) sendError(userID int64, message string) {
	h.ConnManager.SendMessage(userID, domain.ServerMessage{Type: "error", Message: message})
}
