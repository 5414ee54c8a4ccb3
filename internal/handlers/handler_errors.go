package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/splitr-app/splitr_backend/internal/apperrors"
	"github.com/splitr-app/splitr_backend/internal/middleware"
)

// ErrorResponse is the error body returned by every endpoint.
type ErrorResponse struct {
	Code        int    `json:"code"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

// respondError maps a service error onto the HTTP status and error body.
// Unrecognized errors become opaque 500s; their details go to the log only.
func respondError(c *gin.Context, err error) {
	var resp ErrorResponse

	switch {
	case errors.Is(err, apperrors.ErrInvalidPolicy):
		resp = ErrorResponse{http.StatusBadRequest, "InvalidPolicy", err.Error()}
	case errors.Is(err, apperrors.ErrInvalidItemUsers):
		resp = ErrorResponse{http.StatusBadRequest, "InvalidItemUsers", err.Error()}
	case errors.Is(err, apperrors.ErrMissingWeight):
		resp = ErrorResponse{http.StatusBadRequest, "MissingWeight", err.Error()}
	case errors.Is(err, apperrors.ErrValidation):
		resp = ErrorResponse{http.StatusBadRequest, "Validation", err.Error()}
	case errors.Is(err, apperrors.ErrRefreshTokenExpired):
		resp = ErrorResponse{http.StatusUnauthorized, "Unauthorized", "refresh token expired"}
	case errors.Is(err, apperrors.ErrUnauthorized):
		resp = ErrorResponse{http.StatusUnauthorized, "Unauthorized", "invalid credentials"}
	case errors.Is(err, apperrors.ErrForbidden):
		resp = ErrorResponse{http.StatusForbidden, "Forbidden", err.Error()}
	case errors.Is(err, apperrors.ErrNotFound):
		resp = ErrorResponse{http.StatusNotFound, "NotFound", err.Error()}
	case errors.Is(err, apperrors.ErrDuplicate):
		resp = ErrorResponse{http.StatusConflict, "Duplicate", err.Error()}
	case errors.Is(err, apperrors.ErrConflict):
		resp = ErrorResponse{http.StatusConflict, "Conflict", err.Error()}
	default:
		var appErr *apperrors.AppError
		if errors.As(err, &appErr) && appErr.Code >= 400 && appErr.Code < 500 {
			resp = ErrorResponse{appErr.Code, http.StatusText(appErr.Code), appErr.Message}
			break
		}
		middleware.GetLoggerFromCtx(c.Request.Context()).Error("Unhandled service error", slog.String("error", err.Error()))
		resp = ErrorResponse{http.StatusInternalServerError, "Internal", "internal server error"}
	}

	c.AbortWithStatusJSON(resp.Code, resp)
}

// respondBindError maps a gin binding failure onto the Validation error body.
func respondBindError(c *gin.Context, err error) {
	c.AbortWithStatusJSON(http.StatusBadRequest, ErrorResponse{
		Code:        http.StatusBadRequest,
		Name:        "Validation",
		Description: "invalid request: " + err.Error(),
	})
}
