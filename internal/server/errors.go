package server

import (
	"errors"
	"net/http"
	"strings"

	catalogdomain "github.com/Cachi0001/bizcore/internal/catalog/domain"
	directorydomain "github.com/Cachi0001/bizcore/internal/directory/domain"
	"github.com/Cachi0001/bizcore/internal/gateway"
	saledomain "github.com/Cachi0001/bizcore/internal/sale/domain"
	"github.com/gin-gonic/gin"
)

type ValidationError struct {
	Field   string `json:"field"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

type errorPayload struct {
	Type    string            `json:"type"`
	Message string            `json:"message"`
	Errors  []ValidationError `json:"errors,omitempty"`
}

type errorResponse struct {
	Error errorPayload `json:"error"`
}

var ErrInvalidRequest = errors.New("invalid_request")

func ErrorHandlingMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if c.Writer.Written() {
			return
		}

		lastErr := c.Errors.Last()
		if lastErr == nil {
			return
		}

		status, payload := mapError(lastErr.Err)
		c.Header("Content-Type", "application/json")
		c.AbortWithStatusJSON(status, errorResponse{Error: payload})
	}
}

func AbortWithError(c *gin.Context, err error) {
	if err == nil {
		return
	}
	_ = c.Error(err)
	c.Abort()
}

func mapError(err error) (int, errorPayload) {
	switch {
	case isValidationError(err):
		code := validationErrorCode(err)
		return http.StatusBadRequest, errorPayload{
			Type:    "validation_error",
			Message: "validation error",
			Errors: []ValidationError{
				{
					Field:   validationErrorField(code),
					Code:    code,
					Message: validationErrorMessage(err, code),
				},
			},
		}

	case isNotFoundError(err):
		return http.StatusNotFound, errorPayload{
			Type:    "not_found",
			Message: "not found",
		}

	case errors.Is(err, saledomain.ErrInsufficientStock),
		errors.Is(err, saledomain.ErrOutOfStock):
		return http.StatusConflict, errorPayload{
			Type:    "conflict",
			Message: err.Error(),
		}

	case isUpstreamError(err):
		return http.StatusBadGateway, errorPayload{
			Type:    "upstream_error",
			Message: "records api unavailable",
		}

	default:
		return http.StatusInternalServerError, errorPayload{
			Type:    "internal_error",
			Message: "internal server error",
		}
	}
}

func isValidationError(err error) bool {
	switch {
	case errors.Is(err, ErrInvalidRequest),
		errors.Is(err, saledomain.ErrMissingProduct),
		errors.Is(err, saledomain.ErrInvalidQuantity),
		errors.Is(err, saledomain.ErrInvalidPrice),
		errors.Is(err, saledomain.ErrPriceDerived),
		errors.Is(err, saledomain.ErrInvalidPaymentMethod),
		errors.Is(err, saledomain.ErrInvalidDate),
		errors.Is(err, directorydomain.ErrInvalidName):
		return true
	default:
		return false
	}
}

func isNotFoundError(err error) bool {
	switch {
	case errors.Is(err, catalogdomain.ErrNotFound),
		errors.Is(err, directorydomain.ErrNotFound),
		errors.Is(err, saledomain.ErrDraftNotFound):
		return true
	default:
		return false
	}
}

func isUpstreamError(err error) bool {
	var apiErr *gateway.APIError
	return errors.As(err, &apiErr)
}

func validationErrorCode(err error) string {
	for _, sentinel := range []error{
		saledomain.ErrMissingProduct,
		saledomain.ErrInvalidQuantity,
		saledomain.ErrInvalidPrice,
		saledomain.ErrPriceDerived,
		saledomain.ErrInvalidPaymentMethod,
		saledomain.ErrInvalidDate,
		directorydomain.ErrInvalidName,
	} {
		if errors.Is(err, sentinel) {
			return sentinel.Error()
		}
	}
	return "invalid_request"
}

func validationErrorField(code string) string {
	if strings.HasPrefix(code, "invalid_") {
		return strings.TrimPrefix(code, "invalid_")
	}
	if strings.HasPrefix(code, "missing_") {
		return strings.TrimPrefix(code, "missing_")
	}
	return "request"
}

func validationErrorMessage(err error, code string) string {
	// Wrapped sentinels carry a human message after the code.
	if msg := strings.TrimPrefix(err.Error(), code+": "); msg != err.Error() {
		return msg
	}
	if code == "invalid_request" {
		return "invalid request"
	}
	return "invalid value"
}
