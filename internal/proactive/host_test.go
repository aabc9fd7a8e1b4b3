package proactive

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/relaydesk/handoff/internal/activity"
)

func TestContinueConversationStampsReferenceIdentity(t *testing.T) {
	t.Parallel()

	var gotPath string
	var sent activity.Activity
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		body, _ := io.ReadAll(r.Body)
		_ = json.Unmarshal(body, &sent)
	}))
	defer srv.Close()

	ref := activity.ConversationReference{
		ChannelID:    "webchat",
		ServiceURL:   srv.URL,
		Conversation: activity.ConversationAccount{ID: "conv-1"},
		User:         activity.ChannelAccount{ID: "user-1"},
		Agent:        activity.ChannelAccount{ID: "agent-1"},
	}

	host := NewHTTPHost(nil, srv.Client())
	err := host.ContinueConversation(context.Background(), ref, func(ctx context.Context, send Sender) error {
		// The activity carries a forged identity; the stored reference wins.
		act := activity.NewMessage("agent reply")
		act.From = activity.ChannelAccount{ID: "impostor"}
		act.Conversation = activity.ConversationAccount{ID: "other-conv"}
		return send.SendActivity(ctx, act)
	})

	assert.NoError(t, err)
	assert.Equal(t, "/v3/conversations/conv-1/activities", gotPath)
	assert.Equal(t, "agent reply", sent.Text)
	assert.Equal(t, "webchat", sent.ChannelID)
	assert.Equal(t, "conv-1", sent.Conversation.ID)
	assert.Equal(t, "agent-1", sent.From.ID)
	assert.Equal(t, "user-1", sent.Recipient.ID)
}

func TestContinueConversationInvalidReference(t *testing.T) {
	t.Parallel()

	host := NewHTTPHost(nil, nil)
	called := false
	err := host.ContinueConversation(context.Background(), activity.ConversationReference{}, func(ctx context.Context, send Sender) error {
		called = true
		return nil
	})

	assert.Error(t, err)
	assert.False(t, called)
}

func TestSendActivityChannelError(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	ref := activity.ConversationReference{
		ServiceURL:   srv.URL,
		Conversation: activity.ConversationAccount{ID: "conv-1"},
	}
	host := NewHTTPHost(nil, srv.Client())
	err := host.ContinueConversation(context.Background(), ref, func(ctx context.Context, send Sender) error {
		return send.SendActivity(ctx, activity.NewMessage("hi"))
	})
	assert.Error(t, err)
}
