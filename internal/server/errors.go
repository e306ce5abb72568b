package server

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	currencydomain "github.com/smallbiznis/ratecard/internal/currency/domain"
	dashboarddomain "github.com/smallbiznis/ratecard/internal/dashboard/domain"
	engagementdomain "github.com/smallbiznis/ratecard/internal/engagement/domain"
	profiledomain "github.com/smallbiznis/ratecard/internal/profile/domain"
	ratecarddomain "github.com/smallbiznis/ratecard/internal/ratecard/domain"
	ratingdomain "github.com/smallbiznis/ratecard/internal/rating/domain"
	socialaccountdomain "github.com/smallbiznis/ratecard/internal/socialaccount/domain"
	"gorm.io/gorm"
)

type ValidationError struct {
	Field   string `json:"field"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

type ValidationErrors struct {
	Errors []ValidationError `json:"errors"`
}

func (v ValidationErrors) Error() string {
	return "validation error"
}

type errorPayload struct {
	Type    string            `json:"type"`
	Message string            `json:"message"`
	Errors  []ValidationError `json:"errors,omitempty"`
}

type errorResponse struct {
	Error errorPayload `json:"error"`
}

var (
	ErrConflict           = errors.New("conflict")
	ErrInternal           = errors.New("internal_error")
	ErrNotFound           = errors.New("not_found")
	ErrInvalidRequest     = errors.New("invalid_request")
	ErrRateLimited        = errors.New("rate_limited")
	ErrSyncInProgress     = errors.New("sync_in_progress")
	ErrServiceUnavailable = errors.New("service_unavailable")
)

// validationSentinels are domain errors reported as a 400 validation error
// on the field named after the sentinel.
var validationSentinels = []error{
	ErrInvalidRequest,
	ratingdomain.ErrInvalidFollowers,
	ratingdomain.ErrInvalidEngagement,
	engagementdomain.ErrInvalidCounter,
	profiledomain.ErrInvalidSubject,
	socialaccountdomain.ErrInvalidSubject,
	socialaccountdomain.ErrInvalidPlatform,
	socialaccountdomain.ErrInvalidUsername,
	socialaccountdomain.ErrInvalidFollowers,
	ratecarddomain.ErrInvalidSubject,
	ratecarddomain.ErrInvalidPlatform,
	ratecarddomain.ErrInvalidCampaignType,
	ratecarddomain.ErrInvalidCurrency,
	ratecarddomain.ErrInvalidBaseRate,
	dashboarddomain.ErrInvalidSubject,
}

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

func invalidRequestError() error {
	return newValidationError("request", "invalid_request", "invalid request")
}

func newValidationError(field, code, message string) error {
	return &ValidationErrors{
		Errors: []ValidationError{
			{
				Field:   field,
				Code:    code,
				Message: message,
			},
		},
	}
}

func mapError(err error) (int, errorPayload) {
	if err == nil {
		return http.StatusInternalServerError, errorPayload{
			Type:    "internal_error",
			Message: "internal server error",
		}
	}

	if vErr := asValidationErrors(err); vErr != nil {
		return http.StatusBadRequest, errorPayload{
			Type:    "validation_error",
			Message: "validation error",
			Errors:  vErr.Errors,
		}
	}

	if sentinel := validationSentinel(err); sentinel != nil {
		code := sentinel.Error()
		return http.StatusBadRequest, errorPayload{
			Type:    "validation_error",
			Message: "validation error",
			Errors: []ValidationError{
				{
					Field:   validationErrorField(code),
					Code:    code,
					Message: validationErrorMessage(code),
				},
			},
		}
	}

	switch {
	case errors.Is(err, engagementdomain.ErrInsufficientData):
		return http.StatusUnprocessableEntity, errorPayload{
			Type:    "insufficient_data",
			Message: "cannot compute engagement from no data",
		}
	case errors.Is(err, currencydomain.ErrUnsupportedCurrency):
		return http.StatusBadRequest, errorPayload{
			Type:    "unsupported_currency",
			Message: "currency is not supported, pick another one",
		}
	case errors.Is(err, engagementdomain.ErrCounterOverflow):
		return http.StatusUnprocessableEntity, errorPayload{
			Type:    "counter_overflow",
			Message: "content counters are too large to add up",
		}
	case errors.Is(err, ratingdomain.ErrRateOutOfRange):
		return http.StatusUnprocessableEntity, errorPayload{
			Type:    "rate_out_of_range",
			Message: "audience metrics are too large to price",
		}
	case errors.Is(err, ratingdomain.ErrMissingMetrics):
		return http.StatusConflict, errorPayload{
			Type:    "platform_not_connected",
			Message: "connect the platform or supply custom metrics",
		}
	case errors.Is(err, ErrRateLimited):
		return http.StatusTooManyRequests, errorPayload{
			Type:    "rate_limited",
			Message: "too many requests",
		}
	case errors.Is(err, ErrSyncInProgress):
		return http.StatusConflict, errorPayload{
			Type:    "sync_in_progress",
			Message: "a sync for this account is already running",
		}
	case errors.Is(err, ErrConflict):
		return http.StatusConflict, errorPayload{
			Type:    "conflict",
			Message: "conflict",
		}
	case isNotFoundError(err):
		return http.StatusNotFound, errorPayload{
			Type:    "not_found",
			Message: "not found",
		}
	case errors.Is(err, ErrServiceUnavailable):
		return http.StatusServiceUnavailable, errorPayload{
			Type:    "service_unavailable",
			Message: "service unavailable",
		}
	default:
		return http.StatusInternalServerError, errorPayload{
			Type:    "internal_error",
			Message: "internal server error",
		}
	}
}

// classifyErrorForLog returns the response type and, for validation
// errors, the first error code.
func classifyErrorForLog(err error) (string, string) {
	_, payload := mapError(err)
	code := ""
	if len(payload.Errors) > 0 {
		code = payload.Errors[0].Code
	}
	return payload.Type, code
}

func asValidationErrors(err error) *ValidationErrors {
	var vErr *ValidationErrors
	if errors.As(err, &vErr) && vErr != nil {
		return vErr
	}
	return nil
}

func validationSentinel(err error) error {
	for _, sentinel := range validationSentinels {
		if errors.Is(err, sentinel) {
			return sentinel
		}
	}
	return nil
}

func isNotFoundError(err error) bool {
	switch {
	case errors.Is(err, ErrNotFound),
		errors.Is(err, socialaccountdomain.ErrNotFound),
		errors.Is(err, gorm.ErrRecordNotFound):
		return true
	default:
		return false
	}
}

func validationErrorField(code string) string {
	if code == "invalid_request" {
		return "request"
	}
	if strings.HasPrefix(code, "invalid_") {
		return strings.TrimPrefix(code, "invalid_")
	}
	return ""
}

func validationErrorMessage(code string) string {
	switch code {
	case "invalid_request":
		return "invalid request"
	default:
		return "invalid value"
	}
}
