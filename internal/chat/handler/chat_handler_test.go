package handler

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

	"pawstogether/internal/chat/repository"
	"pawstogether/internal/chat/service"
	"pawstogether/internal/common"
)

type fakeChatRepo struct {
	messages map[string][]repository.Message
	previews map[string]repository.ChatPreview
}

func newFakeChatRepo() *fakeChatRepo {
	return &fakeChatRepo{
		messages: map[string][]repository.Message{},
		previews: map[string]repository.ChatPreview{},
	}
}

func (r *fakeChatRepo) SaveFanOut(ctx context.Context, fo *repository.FanOut) error {
	r.messages[fo.ConversationID] = append(r.messages[fo.ConversationID], fo.Message)
	r.previews[fo.SenderPreview.OwnerID+"_"+fo.SenderPreview.UserID] = fo.SenderPreview
	r.previews[fo.ReceiverPreview.OwnerID+"_"+fo.ReceiverPreview.UserID] = fo.ReceiverPreview
	return nil
}

func (r *fakeChatRepo) FetchHistory(ctx context.Context, conversationID string) ([]repository.Message, error) {
	return r.messages[conversationID], nil
}

func (r *fakeChatRepo) FetchPreviews(ctx context.Context, ownerID string) ([]repository.ChatPreview, error) {
	var out []repository.ChatPreview
	for _, p := range r.previews {
		if p.OwnerID == ownerID {
			out = append(out, p)
		}
	}
	return out, nil
}

type staticResolver map[string]string

func (s staticResolver) ResolveDisplayName(ctx context.Context, userID string) string {
	return s[userID]
}

func newTestRouter() *mux.Router {
	repo := newFakeChatRepo()
	svc := service.NewChatService(repo, staticResolver{"u1": "Alice", "u2": "Bob"})
	h := NewChatHandler(svc)

	r := mux.NewRouter()
	h.Register(r)
	return r
}

func asUser(r *http.Request, userID string) *http.Request {
	ctx := context.WithValue(r.Context(), common.ContextUserID, userID)
	return r.WithContext(ctx)
}

func TestSendMessage_Created(t *testing.T) {
	router := newTestRouter()

	body := bytes.NewBufferString(`{"content":"hi"}`)
	req := asUser(httptest.NewRequest("POST", "/chats/u2/messages", body), "u1")
	rec := httptest.NewRecorder()

	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusCreated, rec.Code)

	var msg repository.Message
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&msg))
	assert.Equal(t, "hi", msg.Content)
	assert.Equal(t, "u1", msg.SenderID)
	assert.Equal(t, "Alice", msg.SenderName)
}

func TestSendMessage_BlankIsBadRequest(t *testing.T) {
	router := newTestRouter()

	body := bytes.NewBufferString(`{"content":"   "}`)
	req := asUser(httptest.NewRequest("POST", "/chats/u2/messages", body), "u1")
	rec := httptest.NewRecorder()

	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestSendMessage_NoIdentityIsUnauthorized(t *testing.T) {
	router := newTestRouter()

	body := bytes.NewBufferString(`{"content":"hi"}`)
	req := httptest.NewRequest("POST", "/chats/u2/messages", body)
	rec := httptest.NewRecorder()

	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestHistoryAndPreviews_RoundTrip(t *testing.T) {
	router := newTestRouter()

	body := bytes.NewBufferString(`{"content":"hello bob"}`)
	req := asUser(httptest.NewRequest("POST", "/chats/u2/messages", body), "u1")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusCreated, rec.Code)

	// history seen from the receiver's side
	req = asUser(httptest.NewRequest("GET", "/chats/u1/messages", nil), "u2")
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	var messages []repository.Message
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&messages))
	require.Len(t, messages, 1)
	assert.Equal(t, "hello bob", messages[0].Content)

	// previews for the receiver
	req = asUser(httptest.NewRequest("GET", "/chats", nil), "u2")
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	var previews []repository.ChatPreview
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&previews))
	require.Len(t, previews, 1)
	assert.Equal(t, "u1", previews[0].UserID)
	assert.Equal(t, "hello bob", previews[0].LastMessage)
}

func TestStartAdoptionChat(t *testing.T) {
	router := newTestRouter()

	body := bytes.NewBufferString(`{"petName":"Rocky"}`)
	req := asUser(httptest.NewRequest("POST", "/chats/u2/adoption-chat", body), "u1")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusCreated, rec.Code)

	var msg repository.Message
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&msg))
	assert.Contains(t, msg.Content, "Rocky")
}
