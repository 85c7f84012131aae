package server

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	auditdomain "github.com/kasirhq/kasira/internal/audit/domain"
	receiptdomain "github.com/kasirhq/kasira/internal/receipt/domain"
	txndomain "github.com/kasirhq/kasira/internal/transaction/domain"
)

var (
	ErrUnauthorized   = errors.New("unauthorized")
	ErrInvalidRequest = errors.New("invalid_request")
	ErrTooManyRequest = errors.New("too_many_requests")
)

// ErrorHandlingMiddleware turns errors collected on the gin context into the
// response envelope. Handlers abort with an error and never write failure
// bodies themselves.
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

		status, code, message := mapError(lastErr.Err)
		c.AbortWithStatusJSON(status, Response{
			Success:   false,
			Message:   message,
			ErrorCode: code,
			Timestamp: time.Now().UTC(),
		})
	}
}

func AbortWithError(c *gin.Context, err error) {
	if err == nil {
		return
	}
	_ = c.Error(err)
	c.Abort()
}

// mapError classifies a domain error into HTTP status, machine code and a
// human message. Unclassified errors stay opaque.
func mapError(err error) (int, string, string) {
	switch {
	case isValidationError(err):
		return http.StatusBadRequest, err.Error(), "validation error"

	case errors.Is(err, ErrUnauthorized),
		errors.Is(err, txndomain.ErrTenantRequired),
		errors.Is(err, receiptdomain.ErrTenantRequired),
		errors.Is(err, auditdomain.ErrTenantRequired):
		return http.StatusUnauthorized, "unauthorized", "unauthorized"

	case isNotFoundError(err):
		return http.StatusNotFound, err.Error(), "not found"

	case isConflictError(err):
		return http.StatusConflict, err.Error(), "conflict"

	case errors.Is(err, ErrTooManyRequest):
		return http.StatusTooManyRequests, "too_many_requests", "too many requests"

	default:
		return http.StatusInternalServerError, "internal_error", "internal server error"
	}
}

// classifyErrorForLog feeds the request logger a stable error taxonomy
// without leaking messages.
func classifyErrorForLog(err error) (string, string) {
	if err == nil {
		return "", ""
	}
	status, code, _ := mapError(err)
	switch {
	case status == http.StatusBadRequest:
		return "validation_error", code
	case status == http.StatusUnauthorized:
		return "unauthorized", code
	case status == http.StatusNotFound:
		return "not_found", code
	case status == http.StatusConflict:
		return "conflict", code
	case status == http.StatusTooManyRequests:
		return "rate_limited", code
	default:
		return "internal_error", code
	}
}

func isValidationError(err error) bool {
	switch {
	case errors.Is(err, ErrInvalidRequest),
		errors.Is(err, txndomain.ErrBranchRequired),
		errors.Is(err, txndomain.ErrInvalidCustomer),
		errors.Is(err, txndomain.ErrItemsRequired),
		errors.Is(err, txndomain.ErrInvalidProduct),
		errors.Is(err, txndomain.ErrInvalidTransactionType),
		errors.Is(err, txndomain.ErrInvalidQuantity),
		errors.Is(err, txndomain.ErrInvalidUnitPrice),
		errors.Is(err, txndomain.ErrInvalidDiscount),
		errors.Is(err, txndomain.ErrInvalidTaxRate),
		errors.Is(err, txndomain.ErrDiscountExceedsSubtotal),
		errors.Is(err, txndomain.ErrInvalidPaymentMethod),
		errors.Is(err, txndomain.ErrInvalidPaymentAmount),
		errors.Is(err, auditdomain.ErrInvalidAction),
		errors.Is(err, auditdomain.ErrInvalidTimeRange):
		return true
	default:
		return false
	}
}

func isNotFoundError(err error) bool {
	switch {
	case errors.Is(err, txndomain.ErrTransactionNotFound),
		errors.Is(err, receiptdomain.ErrReceiptNotFound):
		return true
	default:
		return false
	}
}

func isConflictError(err error) bool {
	switch {
	case errors.Is(err, txndomain.ErrAlreadyCancelled),
		errors.Is(err, txndomain.ErrNotCancellable),
		errors.Is(err, txndomain.ErrVersionConflict),
		errors.Is(err, receiptdomain.ErrReceiptExists),
		errors.Is(err, receiptdomain.ErrIssueContended),
		errors.Is(err, receiptdomain.ErrNotReceiptable):
		return true
	default:
		return false
	}
}
