// Package ws serves the live chat subscriptions over websocket. The service
// layer owns the subscription contract; this package is just the transport.
package ws

import (
	"log"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"

	"pawstogether/internal/chat/service"
	"pawstogether/internal/common"
)

// ChatWebSocketHandler bridges chat subscriptions onto websocket connections.
type ChatWebSocketHandler struct {
	chatService service.ChatService
}

func NewChatWebSocketHandler(chatService service.ChatService) *ChatWebSocketHandler {
	return &ChatWebSocketHandler{chatService: chatService}
}

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// Register mounts the websocket routes.
func (h *ChatWebSocketHandler) Register(r *mux.Router) {
	r.HandleFunc("/ws/chats/{userId}", h.handleMessages)
	r.HandleFunc("/ws/previews", h.handlePreviews)
}

type inboundFrame struct {
	Content string `json:"content"`
}

// handleMessages streams the conversation with {userId}: full history replay,
// then live updates. Inbound frames are treated as message sends.
func (h *ChatWebSocketHandler) handleMessages(w http.ResponseWriter, r *http.Request) {
	userID, ok := identify(w, r)
	if !ok {
		return
	}
	otherID := mux.Vars(r)["userId"]

	conversationID := h.chatService.ConversationID(userID, otherID)
	sub, err := h.chatService.SubscribeMessages(r.Context(), conversationID)
	if err != nil {
		log.Printf("ws: subscribe messages failed: %v", err)
		http.Error(w, "subscription failed", http.StatusInternalServerError)
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		sub.Cancel()
		return
	}

	// single writer: live messages and error frames both go out through this
	// goroutine; the connection tolerates only one concurrent writer
	errs := make(chan string, 8)
	go func() {
		defer conn.Close()
		for {
			select {
			case msg, ok := <-sub.C:
				if !ok {
					// subscription cancelled; nothing more will arrive
					return
				}
				if err := conn.WriteJSON(msg); err != nil {
					log.Printf("websocket write error: %v", err)
					return
				}
			case e := <-errs:
				if err := conn.WriteJSON(map[string]string{"error": e}); err != nil {
					return
				}
			}
		}
	}()

	// reader: socket -> send path. Read failure ends the session and the
	// subscription with it: cancellation is explicit, never leaked.
	defer sub.Cancel()
	for {
		var frame inboundFrame
		if err := conn.ReadJSON(&frame); err != nil {
			conn.Close()
			return
		}
		if _, err := h.chatService.SendMessage(r.Context(), userID, otherID, frame.Content); err != nil {
			// transient: report on the socket, keep the session alive
			select {
			case errs <- err.Error():
			default:
			}
		}
	}
}

// handlePreviews streams the caller's chat list: replay, then overwrites.
func (h *ChatWebSocketHandler) handlePreviews(w http.ResponseWriter, r *http.Request) {
	userID, ok := identify(w, r)
	if !ok {
		return
	}

	sub, err := h.chatService.SubscribePreviews(r.Context(), userID)
	if err != nil {
		log.Printf("ws: subscribe previews failed: %v", err)
		http.Error(w, "subscription failed", http.StatusInternalServerError)
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		sub.Cancel()
		return
	}

	go func() {
		for p := range sub.C {
			if err := conn.WriteJSON(p); err != nil {
				log.Printf("websocket write error: %v", err)
				conn.Close()
				return
			}
		}
		conn.Close()
	}()

	defer sub.Cancel()
	for {
		// previews are read-only; drain control frames until the peer leaves
		if _, _, err := conn.ReadMessage(); err != nil {
			conn.Close()
			return
		}
	}
}

// identify pulls the authenticated user id from the request context, falling
// back to a token query parameter for browser websocket clients that cannot
// set headers.
func identify(w http.ResponseWriter, r *http.Request) (string, bool) {
	if userID := common.UserIDFrom(r.Context()); userID != "" {
		return userID, true
	}
	if token := r.URL.Query().Get("token"); token != "" {
		if claims, err := common.ValidToken(token); err == nil {
			return claims.UserID, true
		}
	}
	http.Error(w, "authentication required", http.StatusUnauthorized)
	return "", false
}
