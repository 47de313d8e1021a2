package api

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/makerspace/membership-service/internal/core/domain"
)

type errorResponse struct {
	Error string `json:"error"`
}

// domainErrors is checked in order with errors.Is.
var domainErrors = []struct {
	err  error
	code int
	msg  string
}{
	{domain.ErrUserNotFound, http.StatusNotFound, "user not found"},
	{domain.ErrSubscriptionNotFound, http.StatusNotFound, "subscription not found"},
	{domain.ErrForbidden, http.StatusForbidden, "access forbidden"},
	{domain.ErrInvalidCredentials, http.StatusUnauthorized, "invalid credentials"},
	{domain.ErrInvalidSignature, http.StatusUnauthorized, "invalid webhook signature"},
	{domain.ErrUserExists, http.StatusConflict, "user already exists"},
	{domain.ErrNoChatAccount, http.StatusUnprocessableEntity, "member has no linked chat account"},
	{domain.ErrMembershipInactive, http.StatusForbidden, "membership is not active"},
	{domain.ErrAlreadyInGuild, http.StatusConflict, "member already joined the chat server"},
	{domain.ErrChannelNotFound, http.StatusServiceUnavailable, "chat server is not set up"},
}

// NewHTTPErrorHandler renders every error as {"error": "<message>"}. Echo
// errors keep their code, domain errors map through domainErrors, and
// anything else is logged and reported as a 500 without details.
func NewHTTPErrorHandler(log zerolog.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		code, msg := statusFor(err)
		if code == http.StatusInternalServerError {
			log.Error().
				Err(err).
				Str("method", c.Request().Method).
				Str("path", c.Path()).
				Str("request_id", c.Response().Header().Get(echo.HeaderXRequestID)).
				Msg("unhandled error")
		}
		_ = c.JSON(code, errorResponse{Error: msg})
	}
}

func statusFor(err error) (int, string) {
	var he *echo.HTTPError
	if errors.As(err, &he) {
		return he.Code, fmt.Sprintf("%v", he.Message)
	}
	for _, m := range domainErrors {
		if errors.Is(err, m.err) {
			return m.code, m.msg
		}
	}
	return http.StatusInternalServerError, "internal server error"
}
