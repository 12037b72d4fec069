package feed

import (
	"encoding/json"
	"errors"
	"io"
	"log"
	"net/http"

	"github.com/gorilla/mux"

	"pawstogether/internal/common"
)

// maxUploadBytes caps post media uploads (32 MB).
const maxUploadBytes = 32 << 20

type FeedHandlers struct {
	FeedSvc FeedUsecase
}

func NewFeedHandlers(svc FeedUsecase) *FeedHandlers {
	return &FeedHandlers{FeedSvc: svc}
}

// Register mounts the feed routes on the given router.
func (h *FeedHandlers) Register(r *mux.Router) {
	r.HandleFunc("/posts", h.GetFeed).Methods("GET")
	r.HandleFunc("/posts", h.CreatePost).Methods("POST")
	r.HandleFunc("/posts/{postId}", h.GetPost).Methods("GET")
	r.HandleFunc("/posts/{postId}/like", h.Like).Methods("POST")
	r.HandleFunc("/posts/{postId}/unlike", h.Unlike).Methods("POST")
	r.HandleFunc("/posts/{postId}/comments", h.AddComment).Methods("POST")
}

// CreatePost accepts multipart form data: a "description" field and an
// optional "media" file.
func (h *FeedHandlers) CreatePost(w http.ResponseWriter, r *http.Request) {
	userID := common.UserIDFrom(r.Context())

	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		http.Error(w, "invalid multipart form", http.StatusBadRequest)
		return
	}

	description := r.FormValue("description")

	var media io.Reader
	var filename, mimeType string
	if file, header, err := r.FormFile("media"); err == nil {
		defer file.Close()
		media = file
		filename = header.Filename
		mimeType = header.Header.Get("Content-Type")
	}

	post, err := h.FeedSvc.CreatePost(r.Context(), userID, description, media, filename, mimeType)
	if err != nil {
		h.writeServiceError(w, "create post", err)
		return
	}

	writeJSON(w, http.StatusCreated, post)
}

func (h *FeedHandlers) GetFeed(w http.ResponseWriter, r *http.Request) {
	posts, err := h.FeedSvc.GetFeed(r.Context())
	if err != nil {
		h.writeServiceError(w, "get feed", err)
		return
	}
	if posts == nil {
		posts = []Post{}
	}
	writeJSON(w, http.StatusOK, posts)
}

func (h *FeedHandlers) GetPost(w http.ResponseWriter, r *http.Request) {
	post, err := h.FeedSvc.GetPost(r.Context(), mux.Vars(r)["postId"])
	if err != nil {
		h.writeServiceError(w, "get post", err)
		return
	}
	writeJSON(w, http.StatusOK, post)
}

func (h *FeedHandlers) Like(w http.ResponseWriter, r *http.Request) {
	userID := common.UserIDFrom(r.Context())
	postID := mux.Vars(r)["postId"]

	if err := h.FeedSvc.Like(r.Context(), postID, userID); err != nil {
		h.writeServiceError(w, "like", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *FeedHandlers) Unlike(w http.ResponseWriter, r *http.Request) {
	userID := common.UserIDFrom(r.Context())
	postID := mux.Vars(r)["postId"]

	if err := h.FeedSvc.Unlike(r.Context(), postID, userID); err != nil {
		h.writeServiceError(w, "unlike", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type addCommentRequest struct {
	Text string `json:"text"`
}

func (h *FeedHandlers) AddComment(w http.ResponseWriter, r *http.Request) {
	userID := common.UserIDFrom(r.Context())
	postID := mux.Vars(r)["postId"]

	var req addCommentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	comment, err := h.FeedSvc.AddComment(r.Context(), postID, userID, req.Text)
	if err != nil {
		h.writeServiceError(w, "add comment", err)
		return
	}

	writeJSON(w, http.StatusCreated, comment)
}

func (h *FeedHandlers) writeServiceError(w http.ResponseWriter, op string, err error) {
	switch {
	case errors.Is(err, ErrNotAuthenticated):
		http.Error(w, "authentication required", http.StatusUnauthorized)
	case errors.Is(err, ErrPostNotFound):
		http.Error(w, "post not found", http.StatusNotFound)
	case errors.Is(err, ErrEmptyPost), errors.Is(err, ErrBlankComment):
		http.Error(w, err.Error(), http.StatusBadRequest)
	default:
		log.Printf("feed handler: %s failed: %v", op, err)
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
