package server

import (
	"errors"
	"fmt"
	"log"
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/rajtharani77/YouTube-AI-Assistant---Telegram-Bot/internal/assistant"
)

// New builds the HTTP chat transport: one chat endpoint plus health and
// metrics. The echo instance is returned so callers control Start/Shutdown.
func New(assist *assistant.Assistant) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.Use(middleware.Recover())

	baseLogger := log.New(log.Writer(), "[HTTP] ", log.LstdFlags)
	e.HTTPErrorHandler = func(err error, c echo.Context) {
		code := http.StatusInternalServerError
		msg := err.Error()
		if he, ok := err.(*echo.HTTPError); ok {
			code = he.Code
			if he.Message != nil {
				msg = fmt.Sprint(he.Message)
			}
		}
		req := c.Request()
		baseLogger.Printf("%d %s %s from %s: %v", code, req.Method, req.URL.Path, c.RealIP(), err)
		if !c.Response().Committed {
			_ = c.JSON(code, map[string]interface{}{"error": msg})
		}
	}

	e.GET("/healthz", func(c echo.Context) error { return c.String(http.StatusOK, "ok") })
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	h := &ChatHandler{Assist: assist, Logger: baseLogger}
	h.Register(e.Group("/api"))

	return e
}

// ChatHandler exposes the assistant over HTTP.
type ChatHandler struct {
	Assist *assistant.Assistant
	Logger *log.Logger
}

func (h *ChatHandler) Register(g *echo.Group) {
	g.POST("/chat", h.chat)
}

type chatRequest struct {
	UserID string `json:"user_id"`
	Text   string `json:"text"`
}

type chatResponse struct {
	Reply string `json:"reply"`
}

func (h *ChatHandler) chat(c echo.Context) error {
	var req chatRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if req.UserID == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "user_id required")
	}

	reqID := uuid.NewString()
	h.Logger.Printf("[%s] chat from user %s", reqID, req.UserID)

	reply, err := h.Assist.HandleMessage(c.Request().Context(), req.UserID, req.Text)
	if err != nil {
		h.Logger.Printf("[%s] %v", reqID, err)
		return echo.NewHTTPError(statusFor(err), assistant.UserMessage(err))
	}
	return c.JSON(http.StatusOK, chatResponse{Reply: reply})
}

// statusFor maps assistant error kinds to HTTP statuses so clients can react
// per kind (retry-later vs fix-input vs upstream trouble).
func statusFor(err error) int {
	switch {
	case errors.Is(err, assistant.ErrRateLimited):
		return http.StatusTooManyRequests
	case errors.Is(err, assistant.ErrNoSession):
		return http.StatusNotFound
	case errors.Is(err, assistant.ErrInvalidInput):
		return http.StatusBadRequest
	case errors.Is(err, assistant.ErrSourceFetch), errors.Is(err, assistant.ErrGeneration):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
