package handlers

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/relaydesk/handoff/internal/activity"
	"github.com/relaydesk/handoff/internal/auth"
	"github.com/relaydesk/handoff/internal/bridge"
)

// MessagesHandler is the user-turn entry point: each POST carries one
// inbound activity from the user channel and returns the reply activities
// produced for that turn.
type MessagesHandler struct {
	logger *slog.Logger
	bridge *bridge.Bridge
}

// NewMessagesHandler creates the messages handler.
func NewMessagesHandler(log *slog.Logger, b *bridge.Bridge) *MessagesHandler {
	if log == nil {
		log = slog.Default()
	}
	return &MessagesHandler{
		logger: log.With(slog.String("handler", "messages")),
		bridge: b,
	}
}

// Register registers the message routes.
func (h *MessagesHandler) Register(e *echo.Echo) {
	e.POST("/api/messages", h.Handle)
}

func (h *MessagesHandler) Handle(c echo.Context) error {
	var turn activity.Activity
	if err := c.Bind(&turn); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid activity payload")
	}
	if strings.TrimSpace(turn.Conversation.ID) == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "conversation id is required")
	}
	if callerID, err := auth.UserIDFromContext(c); err == nil {
		h.logger.Info("turn received",
			slog.String("conversation_id", turn.Conversation.ID),
			slog.String("user_id", callerID))
	}

	collector := &replyCollector{}
	if err := h.bridge.HandleTurn(c.Request().Context(), turn, collector); err != nil {
		h.logger.Error("turn processing failed",
			slog.String("conversation_id", turn.Conversation.ID),
			slog.Any("error", err))
		return echo.NewHTTPError(http.StatusInternalServerError, "turn processing failed")
	}
	return c.JSON(http.StatusOK, collector.activities)
}

// replyCollector gathers the turn's outbound activities for the HTTP reply.
type replyCollector struct {
	activities []activity.Activity
}

func (r *replyCollector) SendActivity(_ context.Context, act activity.Activity) error {
	r.activities = append(r.activities, act)
	return nil
}
