package server

import (
	"errors"
	"net/http"
	"strings"

	catalogdomain "github.com/storeops/salescore/internal/catalog/domain"
	customerdomain "github.com/storeops/salescore/internal/customer/domain"
	employeedomain "github.com/storeops/salescore/internal/employee/domain"
	saledomain "github.com/storeops/salescore/internal/sale/domain"
	sequencedomain "github.com/storeops/salescore/internal/sequence/domain"
	storedomain "github.com/storeops/salescore/internal/store/domain"

	"github.com/gin-gonic/gin"
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
	Details map[string]any    `json:"details,omitempty"`
}

type errorResponse struct {
	Error errorPayload `json:"error"`
}

var (
	ErrInvalidRequest = errors.New("invalid_request")
	ErrNotFound       = errors.New("not_found")
	ErrInternal       = errors.New("internal_error")
)

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

	if isValidationError(err) {
		code := err.Error()
		return http.StatusBadRequest, errorPayload{
			Type:    "validation_error",
			Message: "validation error",
			Errors: []ValidationError{
				{
					Field:   validationErrorField(code),
					Code:    code,
					Message: "invalid value",
				},
			},
		}
	}

	var insufficient *catalogdomain.InsufficientStockError
	if errors.As(err, &insufficient) {
		return http.StatusConflict, errorPayload{
			Type:    "insufficient_stock",
			Message: insufficient.Error(),
			Details: map[string]any{
				"product_id": insufficient.ProductID.String(),
				"available":  insufficient.Available,
				"requested":  insufficient.Requested,
			},
		}
	}

	var transition *saledomain.InvalidTransitionError
	if errors.As(err, &transition) {
		return http.StatusConflict, errorPayload{
			Type:    "invalid_transition",
			Message: transition.Error(),
			Details: map[string]any{
				"from":   string(transition.From),
				"reason": transition.Reason,
			},
		}
	}

	switch {
	case errors.Is(err, saledomain.ErrConflict),
		errors.Is(err, sequencedomain.ErrConflict):
		return http.StatusConflict, errorPayload{
			Type:    "conflict",
			Message: "conflict",
		}
	case isNotFoundError(err):
		return http.StatusNotFound, errorPayload{
			Type:    "not_found",
			Message: "not found",
		}
	default:
		return http.StatusInternalServerError, errorPayload{
			Type:    "internal_error",
			Message: "internal server error",
		}
	}
}

func asValidationErrors(err error) *ValidationErrors {
	var vErr *ValidationErrors
	if errors.As(err, &vErr) && vErr != nil {
		return vErr
	}
	return nil
}

func isValidationError(err error) bool {
	switch {
	case errors.Is(err, ErrInvalidRequest):
		return true
	case isSaleValidationError(err),
		isCatalogValidationError(err),
		isDirectoryValidationError(err):
		return true
	default:
		return false
	}
}

func isSaleValidationError(err error) bool {
	switch {
	case errors.Is(err, saledomain.ErrInvalidID),
		errors.Is(err, saledomain.ErrInvalidCustomerID),
		errors.Is(err, saledomain.ErrInvalidStoreID),
		errors.Is(err, saledomain.ErrInvalidEmployeeID),
		errors.Is(err, saledomain.ErrInvalidProductID),
		errors.Is(err, saledomain.ErrInvalidStatus),
		errors.Is(err, saledomain.ErrEmptyLines),
		errors.Is(err, saledomain.ErrInvalidQuantity),
		errors.Is(err, saledomain.ErrInvalidAmount),
		errors.Is(err, saledomain.ErrCustomerNotFound),
		errors.Is(err, saledomain.ErrStoreNotFound),
		errors.Is(err, saledomain.ErrEmployeeNotFound):
		return true
	default:
		return false
	}
}

func isCatalogValidationError(err error) bool {
	switch {
	case errors.Is(err, catalogdomain.ErrInvalidID),
		errors.Is(err, catalogdomain.ErrInvalidSKU),
		errors.Is(err, catalogdomain.ErrInvalidName),
		errors.Is(err, catalogdomain.ErrInvalidPrice),
		errors.Is(err, catalogdomain.ErrInvalidQuantity):
		return true
	default:
		return false
	}
}

func isDirectoryValidationError(err error) bool {
	switch {
	case errors.Is(err, customerdomain.ErrInvalidID),
		errors.Is(err, customerdomain.ErrInvalidName),
		errors.Is(err, storedomain.ErrInvalidID),
		errors.Is(err, storedomain.ErrInvalidCode),
		errors.Is(err, storedomain.ErrInvalidName),
		errors.Is(err, employeedomain.ErrInvalidID),
		errors.Is(err, employeedomain.ErrInvalidName),
		errors.Is(err, employeedomain.ErrInvalidStoreID):
		return true
	default:
		return false
	}
}

func isNotFoundError(err error) bool {
	switch {
	case errors.Is(err, ErrNotFound),
		errors.Is(err, saledomain.ErrNotFound),
		errors.Is(err, catalogdomain.ErrNotFound),
		errors.Is(err, customerdomain.ErrNotFound),
		errors.Is(err, storedomain.ErrNotFound),
		errors.Is(err, employeedomain.ErrNotFound),
		errors.Is(err, gorm.ErrRecordNotFound):
		return true
	default:
		return false
	}
}

func validationErrorField(code string) string {
	if strings.HasPrefix(code, "invalid_") {
		return strings.TrimPrefix(code, "invalid_")
	}
	return ""
}
