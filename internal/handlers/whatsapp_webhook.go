package handlers

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/deskhq/deskhq/internal/channel"
	"github.com/deskhq/deskhq/internal/message"
	"github.com/deskhq/deskhq/internal/whatsapp"
)

// WebhookPipeline is the slice of the ingestion pipeline this handler
// drives.
type WebhookPipeline interface {
	Validate(ctx context.Context, raw []byte, callbackID, signature string) error
	Process(ctx context.Context, raw []byte, callbackID string) (message.Message, error)
}

// ChannelResolver resolves channels for the subscription handshake.
type ChannelResolver interface {
	GetByCallbackID(ctx context.Context, callbackID string) (channel.Channel, error)
}

type WhatsAppWebhookHandler struct {
	logger       *slog.Logger
	pipeline     WebhookPipeline
	channels     ChannelResolver
	maxBodyBytes int64
}

func NewWhatsAppWebhookHandler(log *slog.Logger, pipeline WebhookPipeline, channels ChannelResolver, maxBodyBytes int64) *WhatsAppWebhookHandler {
	return &WhatsAppWebhookHandler{
		logger:       log.With(slog.String("handler", "whatsapp_webhook")),
		pipeline:     pipeline,
		channels:     channels,
		maxBodyBytes: maxBodyBytes,
	}
}

func (h *WhatsAppWebhookHandler) Register(e *echo.Echo) {
	e.GET("/channels/whatsapp/webhook/:callback_id", h.Subscribe)
	e.POST("/channels/whatsapp/webhook/:callback_id", h.Receive)
}

// Subscribe answers the vendor's endpoint verification handshake: echo
// the challenge back when the verify token matches the channel's.
func (h *WhatsAppWebhookHandler) Subscribe(c echo.Context) error {
	callbackID := c.Param("callback_id")
	ch, err := h.channels.GetByCallbackID(c.Request().Context(), callbackID)
	if errors.Is(err, channel.ErrNotFound) {
		return echo.NewHTTPError(http.StatusNotFound, "unknown callback id")
	}
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "channel lookup failed")
	}
	if ch.Disabled {
		return echo.NewHTTPError(http.StatusNotFound, "unknown callback id")
	}

	mode := c.QueryParam("hub.mode")
	token := c.QueryParam("hub.verify_token")
	challenge := c.QueryParam("hub.challenge")
	if mode != "subscribe" || ch.VerifyToken == "" || token != ch.VerifyToken {
		h.logger.Warn("webhook handshake rejected", slog.String("callback_id", callbackID))
		return echo.NewHTTPError(http.StatusForbidden, "verification failed")
	}
	return c.String(http.StatusOK, challenge)
}

// Receive validates and processes one webhook delivery. Unprocessable
// deliveries are acknowledged with 200 so the vendor does not retry them.
func (h *WhatsAppWebhookHandler) Receive(c echo.Context) error {
	callbackID := c.Param("callback_id")
	ctx := c.Request().Context()

	body, err := h.readBody(c)
	if err != nil {
		return err
	}
	signature := c.Request().Header.Get(whatsapp.SignatureHeader)

	if err := h.pipeline.Validate(ctx, body, callbackID, signature); err != nil {
		switch {
		case errors.Is(err, whatsapp.ErrNoChannel):
			return echo.NewHTTPError(http.StatusNotFound, "unknown callback id")
		case errors.Is(err, whatsapp.ErrInvalidSignature):
			return echo.NewHTTPError(http.StatusForbidden, "signature verification failed")
		default:
			h.logger.Error("webhook validation failed", slog.String("error", err.Error()))
			return echo.NewHTTPError(http.StatusInternalServerError, "validation failed")
		}
	}

	msg, err := h.pipeline.Process(ctx, body, callbackID)
	if err != nil {
		if whatsapp.IsProcessable(err) {
			h.logger.Info("webhook delivery ignored",
				slog.String("callback_id", callbackID),
				slog.String("reason", err.Error()))
			return c.JSON(http.StatusOK, map[string]string{"status": "ignored"})
		}
		h.logger.Error("webhook processing failed",
			slog.String("callback_id", callbackID),
			slog.String("error", err.Error()))
		return echo.NewHTTPError(http.StatusInternalServerError, "processing failed")
	}

	return c.JSON(http.StatusOK, map[string]string{
		"status":     "ok",
		"message_id": msg.ID,
	})
}

func (h *WhatsAppWebhookHandler) readBody(c echo.Context) ([]byte, error) {
	reader := http.MaxBytesReader(c.Response(), c.Request().Body, h.maxBodyBytes)
	defer reader.Close()
	body, err := io.ReadAll(reader)
	if err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			return nil, echo.NewHTTPError(http.StatusRequestEntityTooLarge, "body too large")
		}
		return nil, echo.NewHTTPError(http.StatusBadRequest, "read body failed")
	}
	return body, nil
}
