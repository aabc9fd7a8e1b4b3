package handlers

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/relaydesk/handoff/internal/platform"
)

const webhookMaxBodyBytes int64 = 1 << 20 // 1 MiB

// WebhookHandler receives outbound-notification callbacks from the
// contact-center platform.
type WebhookHandler struct {
	logger    *slog.Logger
	processor *platform.InboundProcessor
}

// NewWebhookHandler creates the platform webhook handler.
func NewWebhookHandler(log *slog.Logger, processor *platform.InboundProcessor) *WebhookHandler {
	if log == nil {
		log = slog.Default()
	}
	return &WebhookHandler{
		logger:    log.With(slog.String("handler", "platform_webhook")),
		processor: processor,
	}
}

// Register registers the webhook callback routes.
func (h *WebhookHandler) Register(e *echo.Echo) {
	e.GET("/platform/webhook", h.HandleProbe)
	e.POST("/platform/webhook", h.Handle)
}

// HandleProbe responds to health/probe requests on the webhook URL.
func (h *WebhookHandler) HandleProbe(c echo.Context) error {
	return c.String(http.StatusOK, "ok")
}

// Handle processes one webhook delivery. Signature verification runs over
// the raw body bytes, so the body is read before any parsing. Dropped events
// still return 200 to keep the platform from retry-storming; only a
// signature failure is rejected.
func (h *WebhookHandler) Handle(c echo.Context) error {
	body, err := io.ReadAll(io.LimitReader(c.Request().Body, webhookMaxBodyBytes+1))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, fmt.Sprintf("read body: %v", err))
	}
	if int64(len(body)) > webhookMaxBodyBytes {
		return echo.NewHTTPError(http.StatusRequestEntityTooLarge, fmt.Sprintf("payload too large: max %d bytes", webhookMaxBodyBytes))
	}

	signature := c.Request().Header.Get(platform.SignatureHeader)
	if err := h.processor.HandleInboundWebhook(c.Request().Context(), body, signature); err != nil {
		if errors.Is(err, platform.ErrUnauthorized) {
			return echo.NewHTTPError(http.StatusUnauthorized, "invalid webhook signature")
		}
		h.logger.Error("webhook processing failed", slog.Any("error", err))
		return echo.NewHTTPError(http.StatusInternalServerError, "webhook processing failed")
	}
	return c.NoContent(http.StatusOK)
}
