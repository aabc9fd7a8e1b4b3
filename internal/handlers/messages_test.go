package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"

	"github.com/relaydesk/handoff/internal/activity"
	"github.com/relaydesk/handoff/internal/auth"
	"github.com/relaydesk/handoff/internal/bridge"
	"github.com/relaydesk/handoff/internal/platform"
	"github.com/relaydesk/handoff/internal/response"
	"github.com/relaydesk/handoff/internal/session"
	"github.com/relaydesk/handoff/internal/state"
	"github.com/relaydesk/handoff/internal/storage"
)

type stubSessionClient struct {
	startReplies []activity.Activity
	sendReplies  []activity.Activity
}

var _ session.Client = (*stubSessionClient)(nil)

func (c *stubSessionClient) StartSession(context.Context) ([]activity.Activity, error) {
	return c.startReplies, nil
}

func (c *stubSessionClient) SendActivity(context.Context, activity.Activity) ([]activity.Activity, error) {
	return c.sendReplies, nil
}

func newMessagesBridge(t *testing.T, sessions session.Client) *bridge.Bridge {
	t.Helper()

	store := storage.NewMemoryStore()
	refs := platform.NewReferenceStore(store)
	authn := platform.NewAuthenticator(nil, nil, "http://platform.invalid/oauth/token", "client", "secret")
	relay := platform.NewRelay(nil, nil, authn, refs, "http://platform.invalid", "integration-1")
	return bridge.New(nil, sessions, relay, state.NewManager(store), response.NewProcessor(nil))
}

func newMessagesEcho(t *testing.T, sessions session.Client) *echo.Echo {
	t.Helper()

	e := echo.New()
	NewMessagesHandler(nil, newMessagesBridge(t, sessions)).Register(e)
	return e
}

func TestMessagesHandlerReturnsTurnReplies(t *testing.T) {
	t.Parallel()

	greeting := activity.NewMessage("Hello! Ask me anything.")
	greeting.Conversation = activity.ConversationAccount{ID: "session-1"}
	e := newMessagesEcho(t, &stubSessionClient{startReplies: []activity.Activity{greeting}})

	payload := `{"type":"message","text":"hi","conversation":{"id":"conv-1"}}`
	req := httptest.NewRequest(http.MethodPost, "/api/messages", strings.NewReader(payload))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)

	var replies []activity.Activity
	if err := json.Unmarshal(rec.Body.Bytes(), &replies); err != nil {
		t.Fatalf("decode replies: %v", err)
	}
	assert.Len(t, replies, 1)
	assert.Equal(t, "Hello! Ask me anything.", replies[0].Text)
}

func TestMessagesHandlerRequiresConversationID(t *testing.T) {
	t.Parallel()

	e := newMessagesEcho(t, &stubSessionClient{})

	payload := `{"type":"message","text":"hi"}`
	req := httptest.NewRequest(http.MethodPost, "/api/messages", strings.NewReader(payload))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestMessagesHandlerLogsAuthenticatedCaller(t *testing.T) {
	t.Parallel()

	var logs bytes.Buffer
	log := slog.New(slog.NewTextHandler(&logs, nil))
	h := NewMessagesHandler(log, newMessagesBridge(t, &stubSessionClient{}))

	secret := "test-secret"
	tokenStr, _, err := auth.GenerateToken("user-123", secret, time.Hour)
	assert.NoError(t, err)
	token, err := jwt.Parse(tokenStr, func(token *jwt.Token) (interface{}, error) {
		return []byte(secret), nil
	})
	assert.NoError(t, err)

	e := echo.New()
	payload := `{"type":"message","text":"hi","conversation":{"id":"conv-1"}}`
	req := httptest.NewRequest(http.MethodPost, "/api/messages", strings.NewReader(payload))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.Set("user", token)

	assert.NoError(t, h.Handle(c))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, logs.String(), "user_id=user-123")
	assert.Contains(t, logs.String(), "conversation_id=conv-1")
}

func TestMessagesHandlerRejectsMalformedBody(t *testing.T) {
	t.Parallel()

	e := newMessagesEcho(t, &stubSessionClient{})

	req := httptest.NewRequest(http.MethodPost, "/api/messages", strings.NewReader("{not json"))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
