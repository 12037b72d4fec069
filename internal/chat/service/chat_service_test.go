package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pawstogether/internal/chat/repository"
)

// ---- In-memory fakes ----

type fakeChatRepo struct {
	fanOuts  []*repository.FanOut
	messages map[string][]repository.Message    // conversationID -> messages
	previews map[string]repository.ChatPreview  // ownerID_userID -> preview
	failNext error

	// onFetchHistory fires once, before the history snapshot is taken
	onFetchHistory func()

	SaveCalls int
}

func newFakeChatRepo() *fakeChatRepo {
	return &fakeChatRepo{
		messages: map[string][]repository.Message{},
		previews: map[string]repository.ChatPreview{},
	}
}

func (r *fakeChatRepo) SaveFanOut(ctx context.Context, fo *repository.FanOut) error {
	r.SaveCalls++
	if r.failNext != nil {
		err := r.failNext
		r.failNext = nil
		return err
	}
	// all-or-nothing, like the real transaction
	r.fanOuts = append(r.fanOuts, fo)
	r.messages[fo.ConversationID] = append(r.messages[fo.ConversationID], fo.Message)
	r.previews[fo.SenderPreview.OwnerID+"_"+fo.SenderPreview.UserID] = fo.SenderPreview
	r.previews[fo.ReceiverPreview.OwnerID+"_"+fo.ReceiverPreview.UserID] = fo.ReceiverPreview
	return nil
}

func (r *fakeChatRepo) FetchHistory(ctx context.Context, conversationID string) ([]repository.Message, error) {
	if r.onFetchHistory != nil {
		hook := r.onFetchHistory
		r.onFetchHistory = nil
		hook()
	}
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

type fakeResolver struct {
	names map[string]string
}

func (f *fakeResolver) ResolveDisplayName(ctx context.Context, userID string) string {
	return f.names[userID]
}

func newTestService() (ChatService, *fakeChatRepo) {
	repo := newFakeChatRepo()
	resolver := &fakeResolver{names: map[string]string{
		"alice-1": "Alice",
		"bob-2":   "Bob",
	}}
	return NewChatService(repo, resolver), repo
}

// ---- Tests ----

func TestConversationID_Commutative(t *testing.T) {
	svc, _ := newTestService()

	assert.Equal(t, svc.ConversationID("a", "b"), svc.ConversationID("b", "a"))
	assert.Equal(t, "a_b", svc.ConversationID("b", "a"))
	assert.Equal(t, "alice-1_bob-2", svc.ConversationID("bob-2", "alice-1"))
}

func TestSendMessage_BlankTextWritesNothing(t *testing.T) {
	svc, repo := newTestService()

	sub, err := svc.SubscribePreviews(context.Background(), "bob-2")
	require.NoError(t, err)
	defer sub.Cancel()

	for _, text := range []string{"", "   ", "\t\n"} {
		_, err := svc.SendMessage(context.Background(), "alice-1", "bob-2", text)
		assert.ErrorIs(t, err, ErrBlankMessage)
	}

	assert.Equal(t, 0, repo.SaveCalls, "no write may happen for blank text")
	assert.Len(t, sub.C, 0, "no subscription event may fire for blank text")
}

func TestSendMessage_NotAuthenticated(t *testing.T) {
	svc, repo := newTestService()

	_, err := svc.SendMessage(context.Background(), "", "bob-2", "hi")
	assert.ErrorIs(t, err, ErrNotAuthenticated)
	assert.Equal(t, 0, repo.SaveCalls)
}

func TestSendMessage_SelfChatRejected(t *testing.T) {
	svc, repo := newTestService()

	_, err := svc.SendMessage(context.Background(), "alice-1", "alice-1", "hi me")
	assert.ErrorIs(t, err, ErrSelfChat)
	assert.Equal(t, 0, repo.SaveCalls)
}

func TestSendMessage_FanOutShape(t *testing.T) {
	svc, repo := newTestService()

	msg, err := svc.SendMessage(context.Background(), "alice-1", "bob-2", "hi")
	require.NoError(t, err)
	require.Equal(t, 1, repo.SaveCalls)

	fo := repo.fanOuts[0]
	assert.Equal(t, "alice-1_bob-2", fo.ConversationID)
	assert.ElementsMatch(t, []string{"alice-1", "bob-2"}, fo.Participants)

	assert.NotEmpty(t, msg.ID)
	assert.Equal(t, "hi", msg.Content)
	assert.Equal(t, "Alice", msg.SenderName)
	assert.NotZero(t, msg.Timestamp)

	// sender's preview describes the receiver, and vice versa
	assert.Equal(t, "alice-1", fo.SenderPreview.OwnerID)
	assert.Equal(t, "bob-2", fo.SenderPreview.UserID)
	assert.Equal(t, "Bob", fo.SenderPreview.UserName)
	assert.Equal(t, "hi", fo.SenderPreview.LastMessage)

	assert.Equal(t, "bob-2", fo.ReceiverPreview.OwnerID)
	assert.Equal(t, "alice-1", fo.ReceiverPreview.UserID)
	assert.Equal(t, "Alice", fo.ReceiverPreview.UserName)
	assert.Equal(t, "hi", fo.ReceiverPreview.LastMessage)
}

func TestSendMessage_BothPreviewSubscriptionsFire(t *testing.T) {
	svc, _ := newTestService()

	subAlice, err := svc.SubscribePreviews(context.Background(), "alice-1")
	require.NoError(t, err)
	defer subAlice.Cancel()

	subBob, err := svc.SubscribePreviews(context.Background(), "bob-2")
	require.NoError(t, err)
	defer subBob.Cancel()

	_, err = svc.SendMessage(context.Background(), "alice-1", "bob-2", "hi")
	require.NoError(t, err)

	got := <-subAlice.C
	assert.Equal(t, "bob-2", got.UserID)
	assert.Equal(t, "hi", got.LastMessage)

	got = <-subBob.C
	assert.Equal(t, "alice-1", got.UserID)
	assert.Equal(t, "hi", got.LastMessage)
}

func TestSendMessage_RepoFailurePublishesNothing(t *testing.T) {
	svc, repo := newTestService()
	repo.failNext = errors.New("permission denied")

	sub, err := svc.SubscribeMessages(context.Background(), "alice-1_bob-2")
	require.NoError(t, err)
	defer sub.Cancel()

	_, err = svc.SendMessage(context.Background(), "alice-1", "bob-2", "hi")
	assert.Error(t, err)
	assert.Len(t, sub.C, 0, "failed batch must not produce subscription events")
}

func TestSubscribeMessages_ReplayThenLive(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	_, err := svc.SendMessage(ctx, "alice-1", "bob-2", "one")
	require.NoError(t, err)
	_, err = svc.SendMessage(ctx, "bob-2", "alice-1", "two")
	require.NoError(t, err)

	sub, err := svc.SubscribeMessages(ctx, svc.ConversationID("alice-1", "bob-2"))
	require.NoError(t, err)
	defer sub.Cancel()

	first := <-sub.C
	second := <-sub.C
	assert.Equal(t, "one", first.Content)
	assert.Equal(t, "two", second.Content)
	assert.LessOrEqual(t, first.Timestamp, second.Timestamp)

	_, err = svc.SendMessage(ctx, "alice-1", "bob-2", "three")
	require.NoError(t, err)

	live := <-sub.C
	assert.Equal(t, "three", live.Content)
}

func TestSubscribeMessages_NoGapForConcurrentSend(t *testing.T) {
	svc, repo := newTestService()
	ctx := context.Background()

	_, err := svc.SendMessage(ctx, "alice-1", "bob-2", "before")
	require.NoError(t, err)

	// commit a message in the window between live registration and the
	// history read; it must arrive exactly once
	repo.onFetchHistory = func() {
		_, err := svc.SendMessage(ctx, "alice-1", "bob-2", "during")
		require.NoError(t, err)
	}

	sub, err := svc.SubscribeMessages(ctx, svc.ConversationID("alice-1", "bob-2"))
	require.NoError(t, err)
	defer sub.Cancel()

	first := <-sub.C
	second := <-sub.C
	assert.Equal(t, "before", first.Content)
	assert.Equal(t, "during", second.Content)

	// the next event is the next send, never a duplicate of "during"
	_, err = svc.SendMessage(ctx, "alice-1", "bob-2", "after")
	require.NoError(t, err)
	third := <-sub.C
	assert.Equal(t, "after", third.Content)
}

func TestSubscription_CancelStopsDelivery(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	sub, err := svc.SubscribeMessages(ctx, svc.ConversationID("alice-1", "bob-2"))
	require.NoError(t, err)

	sub.Cancel()
	// cancel is idempotent
	sub.Cancel()

	_, err = svc.SendMessage(ctx, "alice-1", "bob-2", "after cancel")
	require.NoError(t, err)

	// channel is closed and drained; no event arrives
	_, ok := <-sub.C
	assert.False(t, ok)
}

func TestPreview_OverwrittenOnSecondMessage(t *testing.T) {
	svc, repo := newTestService()
	ctx := context.Background()

	_, err := svc.SendMessage(ctx, "alice-1", "bob-2", "first")
	require.NoError(t, err)
	_, err = svc.SendMessage(ctx, "alice-1", "bob-2", "second")
	require.NoError(t, err)

	previews, err := repo.FetchPreviews(ctx, "bob-2")
	require.NoError(t, err)
	require.Len(t, previews, 1, "one preview per (owner, counterpart) pair")
	assert.Equal(t, "second", previews[0].LastMessage)
}

func TestStartAdoptionChat(t *testing.T) {
	svc, repo := newTestService()

	msg, err := svc.StartAdoptionChat(context.Background(), "alice-1", "bob-2", "Firulais")
	require.NoError(t, err)
	assert.Contains(t, msg.Content, "Firulais")
	assert.Equal(t, 1, repo.SaveCalls)

	_, err = svc.StartAdoptionChat(context.Background(), "alice-1", "bob-2", "  ")
	assert.Error(t, err)
}

func TestResolveDisplayName_UnknownUserStillSends(t *testing.T) {
	svc, repo := newTestService()

	// receiver has no user record; resolver yields "" which means unknown
	msg, err := svc.SendMessage(context.Background(), "alice-1", "ghost-9", "hello?")
	require.NoError(t, err)
	assert.Equal(t, "Alice", msg.SenderName)
	assert.Equal(t, "", repo.fanOuts[0].SenderPreview.UserName)
}
