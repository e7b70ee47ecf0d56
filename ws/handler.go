package ws

import (
	"log"
	"net/http"

	"github.com/gorilla/websocket"

	"github.com/akinalp/forum/models"
)

// TokenValidator is the slice of the auth service the handler needs.
// Declared here so ws does not import services.
type TokenValidator interface {
	ValidateAccessToken(tokenString string) (*models.TokenClaims, error)
}

// Handler upgrades /ws requests.
type Handler struct {
	hub            *Hub
	tokenValidator TokenValidator
	upgrader       websocket.Upgrader
}

// NewHandler accepts upgrades from allowedOrigins; an empty list or "*"
// allows any origin.
func NewHandler(hub *Hub, tokenValidator TokenValidator, allowedOrigins []string) *Handler {
	return &Handler{
		hub:            hub,
		tokenValidator: tokenValidator,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     originChecker(allowedOrigins),
		},
	}
}

func originChecker(allowed []string) func(r *http.Request) bool {
	set := make(map[string]bool, len(allowed))
	for _, o := range allowed {
		if o == "*" {
			return func(*http.Request) bool { return true }
		}
		set[o] = true
	}
	if len(set) == 0 {
		return func(*http.Request) bool { return true }
	}
	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		return origin == "" || set[origin]
	}
}

// HandleConnection authenticates with the token query parameter (browsers
// cannot set headers on a WebSocket handshake), upgrades, registers the
// client and blocks in ReadPump until the connection ends.
//
//	ws://host/ws?token=<access token>
func (h *Handler) HandleConnection(w http.ResponseWriter, r *http.Request) {
	token := r.URL.Query().Get("token")
	if token == "" {
		http.Error(w, "missing token", http.StatusUnauthorized)
		return
	}

	claims, err := h.tokenValidator.ValidateAccessToken(token)
	if err != nil {
		http.Error(w, "invalid token", http.StatusUnauthorized)
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("[ws] upgrade failed for user %d: %v", claims.UserID, err)
		return
	}

	client := &Client{
		hub:    h.hub,
		conn:   conn,
		userID: claims.UserID,
		send:   make(chan []byte, sendBufferSize),
	}

	select {
	case h.hub.register <- client:
	case <-h.hub.done:
		conn.Close()
		return
	}

	client.sendEvent(Event{
		Op: OpReady,
		Data: ReadyData{
			UserID:        claims.UserID,
			OnlineUserIDs: h.hub.GetOnlineUserIDs(),
		},
	})

	go client.WritePump()
	client.ReadPump()
}
