// Package handler exposes the chat service over HTTP.
package handler

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"github.com/gorilla/mux"

	"pawstogether/internal/chat/service"
	"pawstogether/internal/common"
)

type ChatHandler struct {
	chatService service.ChatService
}

func NewChatHandler(chatService service.ChatService) *ChatHandler {
	return &ChatHandler{chatService: chatService}
}

// Register mounts the chat routes on the given router.
func (h *ChatHandler) Register(r *mux.Router) {
	r.HandleFunc("/chats", h.listPreviews).Methods("GET")
	r.HandleFunc("/chats/{userId}/messages", h.getHistory).Methods("GET")
	r.HandleFunc("/chats/{userId}/messages", h.sendMessage).Methods("POST")
	r.HandleFunc("/chats/{userId}/adoption-chat", h.startAdoptionChat).Methods("POST")
}

type sendMessageRequest struct {
	Content string `json:"content"`
}

type adoptionChatRequest struct {
	PetName string `json:"petName"`
}

func (h *ChatHandler) sendMessage(w http.ResponseWriter, r *http.Request) {
	senderID := common.UserIDFrom(r.Context())
	receiverID := mux.Vars(r)["userId"]

	var req sendMessageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	msg, err := h.chatService.SendMessage(r.Context(), senderID, receiverID, req.Content)
	if err != nil {
		h.writeServiceError(w, "send message", err)
		return
	}

	writeJSON(w, http.StatusCreated, msg)
}

func (h *ChatHandler) getHistory(w http.ResponseWriter, r *http.Request) {
	userID := common.UserIDFrom(r.Context())
	otherID := mux.Vars(r)["userId"]

	messages, err := h.chatService.History(r.Context(), userID, otherID)
	if err != nil {
		h.writeServiceError(w, "get history", err)
		return
	}

	writeJSON(w, http.StatusOK, messages)
}

func (h *ChatHandler) listPreviews(w http.ResponseWriter, r *http.Request) {
	userID := common.UserIDFrom(r.Context())

	previews, err := h.chatService.Previews(r.Context(), userID)
	if err != nil {
		h.writeServiceError(w, "list previews", err)
		return
	}

	writeJSON(w, http.StatusOK, previews)
}

func (h *ChatHandler) startAdoptionChat(w http.ResponseWriter, r *http.Request) {
	senderID := common.UserIDFrom(r.Context())
	receiverID := mux.Vars(r)["userId"]

	var req adoptionChatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	msg, err := h.chatService.StartAdoptionChat(r.Context(), senderID, receiverID, req.PetName)
	if err != nil {
		h.writeServiceError(w, "start adoption chat", err)
		return
	}

	writeJSON(w, http.StatusCreated, msg)
}

func (h *ChatHandler) writeServiceError(w http.ResponseWriter, op string, err error) {
	switch {
	case errors.Is(err, service.ErrNotAuthenticated):
		http.Error(w, "authentication required", http.StatusUnauthorized)
	case errors.Is(err, service.ErrBlankMessage), errors.Is(err, service.ErrSelfChat):
		http.Error(w, err.Error(), http.StatusBadRequest)
	default:
		log.Printf("chat handler: %s failed: %v", op, err)
		http.Error(w, "request failed, please retry", http.StatusInternalServerError)
	}
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("failed to encode response: %v", err)
	}
}
