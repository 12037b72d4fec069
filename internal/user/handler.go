package user

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"github.com/gorilla/mux"

	"pawstogether/internal/common"
)

type UserHandlers struct {
	UserSvc UserService
}

func NewUserHandlers(svc UserService) *UserHandlers {
	return &UserHandlers{UserSvc: svc}
}

// RegisterPublic mounts the routes reachable without a token.
func (h *UserHandlers) RegisterPublic(r *mux.Router) {
	r.HandleFunc("/register", h.Register).Methods("POST")
	r.HandleFunc("/login", h.Login).Methods("POST")
}

// RegisterProtected mounts the routes behind the auth middleware.
func (h *UserHandlers) RegisterProtected(r *mux.Router) {
	r.HandleFunc("/users/{userId}", h.GetProfile).Methods("GET")
	r.HandleFunc("/users/{userId}/ratings", h.GetRatings).Methods("GET")
	r.HandleFunc("/users/{userId}/ratings", h.SubmitRating).Methods("POST")
}

type registerRequest struct {
	DisplayName string `json:"displayName"`
	Email       string `json:"email"`
	Password    string `json:"password"`
}

type authResponse struct {
	UserID      string `json:"userId"`
	DisplayName string `json:"displayName"`
	Token       string `json:"token"`
}

func (h *UserHandlers) Register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	account, token, err := h.UserSvc.RegisterUser(r.Context(), req.DisplayName, req.Email, req.Password)
	if err != nil {
		h.writeServiceError(w, "register", err)
		return
	}

	writeJSON(w, http.StatusCreated, authResponse{
		UserID:      account.UserID,
		DisplayName: account.DisplayName,
		Token:       token,
	})
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (h *UserHandlers) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	account, token, err := h.UserSvc.LoginUser(r.Context(), req.Email, req.Password)
	if err != nil {
		h.writeServiceError(w, "login", err)
		return
	}

	writeJSON(w, http.StatusOK, authResponse{
		UserID:      account.UserID,
		DisplayName: account.DisplayName,
		Token:       token,
	})
}

func (h *UserHandlers) GetProfile(w http.ResponseWriter, r *http.Request) {
	account, err := h.UserSvc.GetProfile(r.Context(), mux.Vars(r)["userId"])
	if err != nil {
		h.writeServiceError(w, "get profile", err)
		return
	}
	writeJSON(w, http.StatusOK, account)
}

type submitRatingRequest struct {
	Stars       int    `json:"stars"`
	Review      string `json:"review"`
	ServiceType string `json:"serviceType"`
	IsThankYou  bool   `json:"isThankYou"`
}

func (h *UserHandlers) SubmitRating(w http.ResponseWriter, r *http.Request) {
	fromUserID := common.UserIDFrom(r.Context())
	toUserID := mux.Vars(r)["userId"]

	var req submitRatingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	rating, err := h.UserSvc.SubmitRating(r.Context(), fromUserID, toUserID,
		req.Stars, req.Review, req.ServiceType, req.IsThankYou)
	if err != nil {
		h.writeServiceError(w, "submit rating", err)
		return
	}

	writeJSON(w, http.StatusCreated, rating)
}

func (h *UserHandlers) GetRatings(w http.ResponseWriter, r *http.Request) {
	ratings, err := h.UserSvc.GetRatings(r.Context(), mux.Vars(r)["userId"])
	if err != nil {
		h.writeServiceError(w, "get ratings", err)
		return
	}
	writeJSON(w, http.StatusOK, ratings)
}

func (h *UserHandlers) writeServiceError(w http.ResponseWriter, op string, err error) {
	switch {
	case errors.Is(err, ErrInvalidCredentials):
		http.Error(w, err.Error(), http.StatusUnauthorized)
	case errors.Is(err, ErrUserNotFound):
		http.Error(w, err.Error(), http.StatusNotFound)
	case errors.Is(err, ErrEmailTaken):
		http.Error(w, err.Error(), http.StatusConflict)
	case errors.Is(err, ErrSelfRating), errors.Is(err, ErrInvalidInput):
		http.Error(w, err.Error(), http.StatusBadRequest)
	default:
		log.Printf("user handler: %s failed: %v", op, err)
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
