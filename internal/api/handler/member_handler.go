package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/makerspace/membership-service/internal/core/ports"
)

// MemberHandler serves member profile and checkout endpoints.
type MemberHandler struct {
	members ports.MemberService
}

func NewMemberHandler(members ports.MemberService) *MemberHandler {
	return &MemberHandler{members: members}
}

// Get handles GET /v1/members/:userID.
//
// @Summary      Get a member
// @Tags         members
// @Produce      json
// @Security     BearerAuth
// @Param        userID  path      string  true  "User ID"
// @Success      200     {object}  domain.User
// @Failure      403     {object}  errorResponse
// @Failure      404     {object}  errorResponse
// @Router       /v1/members/{userID} [get]
func (h *MemberHandler) Get(c echo.Context) error {
	userID := c.Param("userID")

	user, err := h.members.GetMember(c.Request().Context(), userID)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, user)
}

// UpdateCreatorTypes handles PUT /v1/members/:userID/creator-types.
//
// @Summary      Set creator categories
// @Tags         members
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        userID  path      string               true  "User ID"
// @Param        body    body      creatorTypesRequest  true  "Selected categories"
// @Success      200     {object}  domain.User
// @Failure      400     {object}  errorResponse
// @Failure      422     {object}  errorResponse
// @Router       /v1/members/{userID}/creator-types [put]
func (h *MemberHandler) UpdateCreatorTypes(c echo.Context) error {
	userID := c.Param("userID")

	var req creatorTypesRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusUnprocessableEntity, err.Error())
	}

	user, err := h.members.UpdateCreatorTypes(c.Request().Context(), userID, req.CreatorTypes)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, user)
}

// Subscribe handles POST /v1/members/:userID/subscribe.
//
// @Summary      Start a membership checkout
// @Tags         members
// @Produce      json
// @Security     BearerAuth
// @Param        userID  path      string  true  "User ID"
// @Success      201     {object}  checkoutResponse
// @Failure      403     {object}  errorResponse
// @Failure      404     {object}  errorResponse
// @Router       /v1/members/{userID}/subscribe [post]
func (h *MemberHandler) Subscribe(c echo.Context) error {
	userID := c.Param("userID")

	link, err := h.members.MembershipCheckout(c.Request().Context(), userID)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, toCheckoutResponse(link))
}

// SponsorshipCheckout handles POST /v1/sponsorships/checkout. The caller is
// the donor unless the sponsorship is anonymous.
//
// @Summary      Sponsor a member
// @Tags         sponsorships
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      sponsorshipCheckoutRequest  true  "Sponsorship"
// @Success      201   {object}  checkoutResponse
// @Failure      404   {object}  errorResponse
// @Failure      422   {object}  errorResponse
// @Router       /v1/sponsorships/checkout [post]
func (h *MemberHandler) SponsorshipCheckout(c echo.Context) error {
	donorID, _, err := ctxClaims(c)
	if err != nil {
		return err
	}

	var req sponsorshipCheckoutRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusUnprocessableEntity, err.Error())
	}
	if req.Anonymous {
		donorID = ""
	}

	link, err := h.members.SponsorshipCheckout(c.Request().Context(), ports.SponsorshipCheckoutInput{
		RecipientID: req.RecipientID,
		DonorID:     donorID,
		Recurring:   req.Recurring,
		AmountCents: req.AmountCents,
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, toCheckoutResponse(link))
}
