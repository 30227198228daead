package middleware

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/kayra/examseat/internal/app/models/dto"
	"github.com/kayra/examseat/internal/pkg/apperrors"
)

// HandleAPIError maps service errors onto the standard error envelope. Every
// controller funnels its failures through here so status codes and error
// codes stay consistent across endpoints.
func HandleAPIError(c *gin.Context, err error) {
	var dup *apperrors.DuplicateSeatError
	if errors.As(err, &dup) {
		respond(c, http.StatusConflict, dto.NewErrorDetail(dto.ErrorCodeDuplicateSeat,
			fmt.Sprintf("seat number %d is already assigned", dup.SeatNumber)).
			WithDetails(gin.H{"seatNumber": dup.SeatNumber}))
		return
	}

	switch {
	case errors.Is(err, apperrors.ErrValidationFailed), errors.Is(err, apperrors.ErrBadRequest):
		respond(c, http.StatusBadRequest, dto.NewErrorDetail(dto.ErrorCodeValidationFailed, err.Error()))

	case errors.Is(err, apperrors.ErrExamNotFound), errors.Is(err, apperrors.ErrSeatNotFound):
		respond(c, http.StatusNotFound, dto.NewErrorDetail(dto.ErrorCodeResourceNotFound, err.Error()))

	case errors.Is(err, apperrors.ErrExamAlreadyExists), errors.Is(err, apperrors.ErrUsernameExists):
		respond(c, http.StatusConflict, dto.NewErrorDetail(dto.ErrorCodeResourceAlreadyExists, err.Error()))

	case errors.Is(err, apperrors.ErrInvalidCredentials):
		respond(c, http.StatusUnauthorized, dto.NewErrorDetail(dto.ErrorCodeInvalidCredentials, "Invalid username or password"))

	case errors.Is(err, apperrors.ErrTokenExpired):
		respond(c, http.StatusUnauthorized, dto.NewErrorDetail(dto.ErrorCodeExpiredToken, "Token expired"))

	case errors.Is(err, apperrors.ErrTokenInvalid):
		respond(c, http.StatusUnauthorized, dto.NewErrorDetail(dto.ErrorCodeInvalidToken, "Invalid token"))

	case errors.Is(err, apperrors.ErrStorage):
		log.Error().Err(err).Str("path", c.Request.URL.Path).Msg("Storage failure")
		respond(c, http.StatusInternalServerError, dto.NewErrorDetail(dto.ErrorCodeDatabaseError, "A storage error occurred"))

	default:
		log.Error().Err(err).Str("path", c.Request.URL.Path).Msg("Unhandled error")
		respond(c, http.StatusInternalServerError, dto.NewErrorDetail(dto.ErrorCodeInternalServer, "An unexpected error occurred"))
	}
}

// HandleBindingError reports a gin binding failure as a validation error
func HandleBindingError(c *gin.Context, err error) {
	respond(c, http.StatusBadRequest, dto.NewErrorDetail(dto.ErrorCodeValidationFailed,
		fmt.Sprintf("invalid request payload: %v", err)))
}

func respond(c *gin.Context, status int, detail *dto.ErrorDetail) {
	c.AbortWithStatusJSON(status, dto.NewErrorResponse(detail))
}
