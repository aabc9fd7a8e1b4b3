package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

// PingHandler answers liveness probes.
type PingHandler struct{}

// NewPingHandler creates the ping handler.
func NewPingHandler() *PingHandler { return &PingHandler{} }

// Register registers the ping route.
func (h *PingHandler) Register(e *echo.Echo) {
	e.GET("/ping", h.Ping)
}

func (h *PingHandler) Ping(c echo.Context) error {
	return c.String(http.StatusOK, "ok")
}
