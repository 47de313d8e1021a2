package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/makerspace/membership-service/internal/core/ports"
)

// ChatHandler serves chat server onboarding and announcements.
type ChatHandler struct {
	chat ports.ChatService
}

func NewChatHandler(chat ports.ChatService) *ChatHandler {
	return &ChatHandler{chat: chat}
}

// Invite handles POST /v1/members/:userID/chat-invite.
//
// @Summary      Invite a member to the chat server
// @Tags         chat
// @Produce      json
// @Security     BearerAuth
// @Param        userID  path      string  true  "User ID"
// @Success      201     {object}  ports.ChatInvite
// @Failure      403     {object}  errorResponse
// @Failure      409     {object}  errorResponse
// @Router       /v1/members/{userID}/chat-invite [post]
func (h *ChatHandler) Invite(c echo.Context) error {
	inv, err := h.chat.Invite(c.Request().Context(), c.Param("userID"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, inv)
}

// Announce handles POST /v1/admin/announcements.
//
// @Summary      Post an announcement
// @Tags         admin
// @Accept       json
// @Security     BearerAuth
// @Param        body  body  announcementRequest  true  "Announcement"
// @Success      204
// @Failure      422   {object}  errorResponse
// @Router       /v1/admin/announcements [post]
func (h *ChatHandler) Announce(c echo.Context) error {
	var req announcementRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusUnprocessableEntity, err.Error())
	}

	if err := h.chat.Announce(c.Request().Context(), req.Message); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}
