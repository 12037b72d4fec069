package adoption

import (
	"encoding/json"
	"errors"
	"io"
	"log"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"pawstogether/internal/common"
)

const maxPhotoBytes = 16 << 20

type AdoptionHandlers struct {
	AdoptionSvc AdoptionUsecase
}

func NewAdoptionHandlers(svc AdoptionUsecase) *AdoptionHandlers {
	return &AdoptionHandlers{AdoptionSvc: svc}
}

func (h *AdoptionHandlers) Register(r *mux.Router) {
	r.HandleFunc("/adoption/pets", h.ListAvailable).Methods("GET")
	r.HandleFunc("/adoption/pets", h.PublishPet).Methods("POST")
	r.HandleFunc("/adoption/pets/{petId}", h.GetPet).Methods("GET")
	r.HandleFunc("/adoption/pets/{petId}", h.UpdateListing).Methods("PATCH")
	r.HandleFunc("/adoption/pets/{petId}/adopt", h.MarkAdopted).Methods("POST")
}

// PublishPet accepts multipart form data: pet fields plus an optional
// "photo" file.
func (h *AdoptionHandlers) PublishPet(w http.ResponseWriter, r *http.Request) {
	ownerID := common.UserIDFrom(r.Context())

	if err := r.ParseMultipartForm(maxPhotoBytes); err != nil {
		http.Error(w, "invalid multipart form", http.StatusBadRequest)
		return
	}

	age, _ := strconv.Atoi(r.FormValue("age"))
	pet := Pet{
		Name:        r.FormValue("name"),
		Breed:       r.FormValue("breed"),
		Age:         age,
		Description: r.FormValue("description"),
	}

	var photo io.Reader
	var filename, mimeType string
	if file, header, err := r.FormFile("photo"); err == nil {
		defer file.Close()
		photo = file
		filename = header.Filename
		mimeType = header.Header.Get("Content-Type")
	}

	created, err := h.AdoptionSvc.PublishPet(r.Context(), ownerID, pet, photo, filename, mimeType)
	if err != nil {
		h.writeServiceError(w, "publish pet", err)
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

func (h *AdoptionHandlers) ListAvailable(w http.ResponseWriter, r *http.Request) {
	pets, err := h.AdoptionSvc.ListAvailable(r.Context())
	if err != nil {
		h.writeServiceError(w, "list pets", err)
		return
	}
	if pets == nil {
		pets = []Pet{}
	}
	writeJSON(w, http.StatusOK, pets)
}

func (h *AdoptionHandlers) GetPet(w http.ResponseWriter, r *http.Request) {
	pet, err := h.AdoptionSvc.GetPet(r.Context(), mux.Vars(r)["petId"])
	if err != nil {
		h.writeServiceError(w, "get pet", err)
		return
	}
	writeJSON(w, http.StatusOK, pet)
}

func (h *AdoptionHandlers) UpdateListing(w http.ResponseWriter, r *http.Request) {
	callerID := common.UserIDFrom(r.Context())

	var update ListingUpdate
	if err := json.NewDecoder(r.Body).Decode(&update); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	pet, err := h.AdoptionSvc.UpdateListing(r.Context(), mux.Vars(r)["petId"], callerID, update)
	if err != nil {
		h.writeServiceError(w, "update listing", err)
		return
	}
	writeJSON(w, http.StatusOK, pet)
}

func (h *AdoptionHandlers) MarkAdopted(w http.ResponseWriter, r *http.Request) {
	callerID := common.UserIDFrom(r.Context())

	if err := h.AdoptionSvc.MarkAdopted(r.Context(), mux.Vars(r)["petId"], callerID); err != nil {
		h.writeServiceError(w, "mark adopted", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *AdoptionHandlers) writeServiceError(w http.ResponseWriter, op string, err error) {
	switch {
	case errors.Is(err, ErrNotAuthenticated):
		http.Error(w, "authentication required", http.StatusUnauthorized)
	case errors.Is(err, ErrNotOwner):
		http.Error(w, err.Error(), http.StatusForbidden)
	case errors.Is(err, ErrPetNotFound):
		http.Error(w, "pet not found", http.StatusNotFound)
	case errors.Is(err, ErrAlreadyAdopted):
		http.Error(w, err.Error(), http.StatusConflict)
	case errors.Is(err, ErrMissingPetName):
		http.Error(w, err.Error(), http.StatusBadRequest)
	default:
		log.Printf("adoption handler: %s failed: %v", op, err)
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
