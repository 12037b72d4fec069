package user

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pawstogether/internal/common"
)

func newTestRouter(t *testing.T) (*mux.Router, UserService) {
	t.Helper()
	svc, _, _ := newTestUserService()
	h := NewUserHandlers(svc)

	r := mux.NewRouter()
	h.RegisterPublic(r)
	h.RegisterProtected(r) // middleware is exercised elsewhere; inject identity per request
	return r, svc
}

func doJSON(t *testing.T, r *mux.Router, method, path string, body interface{}, asUserID string) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	if asUserID != "" {
		req = req.WithContext(context.WithValue(req.Context(), common.ContextUserID, asUserID))
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestRegisterEndpoint(t *testing.T) {
	r, _ := newTestRouter(t)

	w := doJSON(t, r, http.MethodPost, "/register", registerRequest{
		DisplayName: "Alice",
		Email:       "alice@example.com",
		Password:    "secret123",
	}, "")
	require.Equal(t, http.StatusCreated, w.Code)

	var resp authResponse
	require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
	assert.NotEmpty(t, resp.UserID)
	assert.NotEmpty(t, resp.Token)
	assert.Equal(t, "Alice", resp.DisplayName)

	// duplicate email conflicts
	w = doJSON(t, r, http.MethodPost, "/register", registerRequest{
		DisplayName: "Alice Again",
		Email:       "alice@example.com",
		Password:    "secret123",
	}, "")
	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestLoginEndpoint(t *testing.T) {
	r, svc := newTestRouter(t)
	registerTestUser(t, svc, "Alice", "alice@example.com")

	w := doJSON(t, r, http.MethodPost, "/login", loginRequest{
		Email:    "alice@example.com",
		Password: "secret123",
	}, "")
	assert.Equal(t, http.StatusOK, w.Code)

	w = doJSON(t, r, http.MethodPost, "/login", loginRequest{
		Email:    "alice@example.com",
		Password: "nope",
	}, "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestSubmitRatingEndpoint(t *testing.T) {
	r, svc := newTestRouter(t)
	alice := registerTestUser(t, svc, "Alice", "alice@example.com")
	bob := registerTestUser(t, svc, "Bob", "bob@example.com")

	w := doJSON(t, r, http.MethodPost, "/users/"+alice.UserID+"/ratings", submitRatingRequest{
		Stars:       4,
		Review:      "very reliable",
		ServiceType: "pet_sitting",
	}, bob.UserID)
	require.Equal(t, http.StatusCreated, w.Code)

	// rating yourself is rejected
	w = doJSON(t, r, http.MethodPost, "/users/"+alice.UserID+"/ratings", submitRatingRequest{
		Stars: 5,
	}, alice.UserID)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = doJSON(t, r, http.MethodGet, "/users/"+alice.UserID+"/ratings", nil, bob.UserID)
	require.Equal(t, http.StatusOK, w.Code)
}

func TestGetProfileEndpoint(t *testing.T) {
	r, svc := newTestRouter(t)
	alice := registerTestUser(t, svc, "Alice", "alice@example.com")

	w := doJSON(t, r, http.MethodGet, "/users/"+alice.UserID, nil, alice.UserID)
	assert.Equal(t, http.StatusOK, w.Code)

	w = doJSON(t, r, http.MethodGet, "/users/ghost", nil, alice.UserID)
	assert.Equal(t, http.StatusNotFound, w.Code)
}
