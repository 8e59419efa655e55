package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"trading-journal-go/internal/journal"
	"trading-journal-go/internal/models"
	"trading-journal-go/internal/session"
	"trading-journal-go/internal/supabase"
)

type apiResponse struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Data    any    `json:"data,omitempty"`
}

func ok(c *gin.Context, status int, message string, data any) {
	if message == "" {
		message = "ok"
	}
	c.JSON(status, apiResponse{Code: 0, Message: message, Data: data})
}

func fail(c *gin.Context, status int, message string, data any) {
	c.AbortWithStatusJSON(status, apiResponse{Code: status, Message: message, Data: data})
}

// failErr writes err with the status its kind maps to.
func failErr(c *gin.Context, err error) {
	var verr *models.ValidationError
	if errors.As(err, &verr) {
		fail(c, http.StatusBadRequest, err.Error(), verr.Fields)
		return
	}
	fail(c, statusFor(err), err.Error(), nil)
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, journal.ErrValidation),
		errors.Is(err, supabase.ErrInvalidPage),
		errors.Is(err, session.ErrMissingCredentials):
		return http.StatusBadRequest
	case errors.Is(err, session.ErrNotAuthenticated):
		return http.StatusUnauthorized
	case errors.Is(err, session.ErrAlreadyRegistered):
		return http.StatusConflict
	case errors.Is(err, supabase.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, supabase.ErrNotConfigured):
		return http.StatusServiceUnavailable
	default:
		return http.StatusBadGateway
	}
}
