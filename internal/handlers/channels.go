package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"

	"github.com/deskhq/deskhq/internal/channel"
)

// ChannelHandler exposes the administrative channel API. All routes sit
// behind JWT auth.
type ChannelHandler struct {
	logger *slog.Logger
	store  *channel.Store
}

func NewChannelHandler(log *slog.Logger, store *channel.Store) *ChannelHandler {
	return &ChannelHandler{
		logger: log.With(slog.String("handler", "channels")),
		store:  store,
	}
}

func (h *ChannelHandler) Register(e *echo.Echo) {
	e.GET("/channels", h.List)
	e.POST("/channels", h.Create)
	e.GET("/channels/:id", h.Get)
	e.POST("/channels/:id/disable", h.Disable)
	e.POST("/channels/:id/enable", h.Enable)
}

func (h *ChannelHandler) List(c echo.Context) error {
	channels, err := h.store.List(c.Request().Context())
	if err != nil {
		h.logger.Error("list channels failed", slog.String("error", err.Error()))
		return echo.NewHTTPError(http.StatusInternalServerError, "list channels failed")
	}
	return c.JSON(http.StatusOK, channels)
}

func (h *ChannelHandler) Get(c echo.Context) error {
	ch, err := h.store.GetByID(c.Request().Context(), c.Param("id"))
	if errors.Is(err, channel.ErrNotFound) {
		return echo.NewHTTPError(http.StatusNotFound, "channel not found")
	}
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "get channel failed")
	}
	return c.JSON(http.StatusOK, ch)
}

func (h *ChannelHandler) Create(c echo.Context) error {
	var input channel.CreateInput
	if err := c.Bind(&input); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	ch, err := h.store.Create(c.Request().Context(), input)
	if err != nil {
		var validationErrs validator.ValidationErrors
		if errors.As(err, &validationErrs) {
			return echo.NewHTTPError(http.StatusBadRequest, err.Error())
		}
		h.logger.Error("create channel failed", slog.String("error", err.Error()))
		return echo.NewHTTPError(http.StatusInternalServerError, "create channel failed")
	}
	return c.JSON(http.StatusCreated, ch)
}

func (h *ChannelHandler) Disable(c echo.Context) error {
	return h.setDisabled(c, true)
}

func (h *ChannelHandler) Enable(c echo.Context) error {
	return h.setDisabled(c, false)
}

func (h *ChannelHandler) setDisabled(c echo.Context, disabled bool) error {
	err := h.store.SetDisabled(c.Request().Context(), c.Param("id"), disabled)
	if errors.Is(err, channel.ErrNotFound) {
		return echo.NewHTTPError(http.StatusNotFound, "channel not found")
	}
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "update channel failed")
	}
	return c.NoContent(http.StatusNoContent)
}
