package ws

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pawstogether/internal/chat/repository"
	"pawstogether/internal/chat/service"
	"pawstogether/internal/common"
	"pawstogether/internal/observability"
)

type fakeChatRepo struct {
	messages map[string][]repository.Message
}

func (r *fakeChatRepo) SaveFanOut(ctx context.Context, fo *repository.FanOut) error {
	r.messages[fo.ConversationID] = append(r.messages[fo.ConversationID], fo.Message)
	return nil
}

func (r *fakeChatRepo) FetchHistory(ctx context.Context, conversationID string) ([]repository.Message, error) {
	return r.messages[conversationID], nil
}

func (r *fakeChatRepo) FetchPreviews(ctx context.Context, ownerID string) ([]repository.ChatPreview, error) {
	return nil, nil
}

type staticResolver map[string]string

func (s staticResolver) ResolveDisplayName(ctx context.Context, userID string) string {
	return s[userID]
}

func newTestServer(t *testing.T) (*httptest.Server, service.ChatService) {
	t.Helper()
	repo := &fakeChatRepo{messages: map[string][]repository.Message{}}
	svc := service.NewChatService(repo, staticResolver{"u1": "Alice", "u2": "Bob"})

	r := mux.NewRouter()
	NewChatWebSocketHandler(svc).Register(r)
	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)
	return srv, svc
}

func wsURL(srv *httptest.Server, path string) string {
	return "ws" + strings.TrimPrefix(srv.URL, "http") + path
}

func TestIdentify_RejectsAnonymous(t *testing.T) {
	srv, _ := newTestServer(t)

	resp, err := http.Get(srv.URL + "/ws/previews")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestMessagesStream_ReplayThenLive(t *testing.T) {
	common.SetJWTSecret("ws-test-secret")
	srv, svc := newTestServer(t)

	// pre-existing history
	_, err := svc.SendMessage(context.Background(), "u1", "u2", "earlier")
	require.NoError(t, err)

	token, err := common.GenerateToken("u2", "Bob")
	require.NoError(t, err)

	conn, _, err := websocket.DefaultDialer.Dial(wsURL(srv, "/ws/chats/u1?token="+token), nil)
	require.NoError(t, err)
	defer conn.Close()

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))

	var replayed repository.Message
	require.NoError(t, conn.ReadJSON(&replayed))
	assert.Equal(t, "earlier", replayed.Content)

	// live event triggered by a send from the other side
	_, err = svc.SendMessage(context.Background(), "u1", "u2", "just now")
	require.NoError(t, err)

	var live repository.Message
	require.NoError(t, conn.ReadJSON(&live))
	assert.Equal(t, "just now", live.Content)
}

// Mirrors the production wiring: the whole router, websocket routes included,
// sits behind the metrics middleware. The upgrade must still succeed.
func TestMessagesStream_ThroughMetricsMiddleware(t *testing.T) {
	common.SetJWTSecret("ws-test-secret")

	repo := &fakeChatRepo{messages: map[string][]repository.Message{}}
	svc := service.NewChatService(repo, staticResolver{"u1": "Alice", "u2": "Bob"})

	r := mux.NewRouter()
	NewChatWebSocketHandler(svc).Register(r)
	srv := httptest.NewServer(observability.HTTPMetricsMiddleware("chat", r))
	t.Cleanup(srv.Close)

	_, err := svc.SendMessage(context.Background(), "u1", "u2", "earlier")
	require.NoError(t, err)

	token, err := common.GenerateToken("u2", "Bob")
	require.NoError(t, err)

	conn, _, err := websocket.DefaultDialer.Dial(wsURL(srv, "/ws/chats/u1?token="+token), nil)
	require.NoError(t, err, "upgrade must pass through the metrics middleware")
	defer conn.Close()

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	var replayed repository.Message
	require.NoError(t, conn.ReadJSON(&replayed))
	assert.Equal(t, "earlier", replayed.Content)
}

func TestMessagesStream_ErrorFrameKeepsSessionAlive(t *testing.T) {
	common.SetJWTSecret("ws-test-secret")
	srv, svc := newTestServer(t)

	token, err := common.GenerateToken("u1", "Alice")
	require.NoError(t, err)

	conn, _, err := websocket.DefaultDialer.Dial(wsURL(srv, "/ws/chats/u2?token="+token), nil)
	require.NoError(t, err)
	defer conn.Close()

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))

	// blank content is rejected; the error comes back as a frame
	require.NoError(t, conn.WriteJSON(map[string]string{"content": "   "}))
	var errFrame map[string]string
	require.NoError(t, conn.ReadJSON(&errFrame))
	assert.Contains(t, errFrame["error"], "empty")

	// the session survives and the next send flows normally
	require.NoError(t, conn.WriteJSON(map[string]string{"content": "still here"}))
	var echoed repository.Message
	require.NoError(t, conn.ReadJSON(&echoed))
	assert.Equal(t, "still here", echoed.Content)

	history, err := svc.History(context.Background(), "u2", "u1")
	require.NoError(t, err)
	require.Len(t, history, 1)
}

func TestMessagesStream_InboundFrameSends(t *testing.T) {
	common.SetJWTSecret("ws-test-secret")
	srv, svc := newTestServer(t)

	token, err := common.GenerateToken("u1", "Alice")
	require.NoError(t, err)

	conn, _, err := websocket.DefaultDialer.Dial(wsURL(srv, "/ws/chats/u2?token="+token), nil)
	require.NoError(t, err)
	defer conn.Close()

	require.NoError(t, conn.WriteJSON(map[string]string{"content": "over the wire"}))

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	var echoed repository.Message
	require.NoError(t, conn.ReadJSON(&echoed))
	assert.Equal(t, "over the wire", echoed.Content)
	assert.Equal(t, "u1", echoed.SenderID)

	// the write is visible through the ordinary history path too
	history, err := svc.History(context.Background(), "u2", "u1")
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.Equal(t, "over the wire", history[0].Content)
}
