package domain

import (
	"context"
	"errors"
	"time"

	"github.com/kasirhq/kasira/pkg/db/pagination"
	"github.com/shopspring/decimal"
)

// ItemRequest is one requested sale line. Product identifiers and snapshots
// are accepted as supplied; referential checks against the product service
// are deliberately not performed here.
type ItemRequest struct {
	ProductID   string           `json:"product_id" binding:"required"`
	ProductCode string           `json:"product_code"`
	ProductName string           `json:"product_name" binding:"required"`
	Quantity    int64            `json:"quantity" binding:"required"`
	UnitPrice   decimal.Decimal  `json:"unit_price" binding:"required"`
	Discount    *decimal.Decimal `json:"discount,omitempty"`
	TaxRate     *decimal.Decimal `json:"tax_rate,omitempty"`
}

// PaymentRequest is one tender submitted with a creation request.
type PaymentRequest struct {
	Method          PaymentMethod   `json:"method" binding:"required"`
	Amount          decimal.Decimal `json:"amount" binding:"required"`
	ReferenceNumber string          `json:"reference_number"`
	Notes           string          `json:"notes"`
}

// CreateTransactionRequest creates a transaction from a cart of line items
// and zero or more payments. An empty payment list records the transaction
// as PENDING with nothing paid.
type CreateTransactionRequest struct {
	BranchID    string           `json:"branch_id" binding:"required"`
	CustomerID  *string          `json:"customer_id,omitempty"`
	Type        TransactionType  `json:"type"`
	Notes       string           `json:"notes"`
	CashierName string           `json:"cashier_name"`
	Items       []ItemRequest    `json:"items"`
	Payments    []PaymentRequest `json:"payments"`
}

type ListTransactionRequest struct {
	pagination.Pagination
	BranchID   *string
	CustomerID *string
	Status     *TransactionStatus
	DateFrom   *time.Time
	DateTo     *time.Time
}

type ListTransactionResponse struct {
	pagination.PageInfo
	Transactions []Transaction `json:"transactions"`
}

// Service drives the transaction lifecycle: creation with settlement and the
// cancellation state machine. Every call is scoped to the tenant carried in
// ctx and fails fast when it is absent.
type Service interface {
	Create(ctx context.Context, req CreateTransactionRequest) (Transaction, error)
	Cancel(ctx context.Context, id string) (Transaction, error)
	GetByID(ctx context.Context, id string) (Transaction, error)
	GetByNumber(ctx context.Context, number string) (Transaction, error)
	List(ctx context.Context, req ListTransactionRequest) (ListTransactionResponse, error)
}

var (
	ErrTenantRequired          = errors.New("tenant_required")
	ErrBranchRequired          = errors.New("branch_required")
	ErrInvalidCustomer         = errors.New("invalid_customer_id")
	ErrItemsRequired           = errors.New("transaction_items_required")
	ErrInvalidProduct          = errors.New("invalid_product_id")
	ErrInvalidTransactionType  = errors.New("invalid_transaction_type")
	ErrInvalidQuantity         = errors.New("invalid_quantity")
	ErrInvalidUnitPrice        = errors.New("invalid_unit_price")
	ErrInvalidDiscount         = errors.New("invalid_discount")
	ErrInvalidTaxRate          = errors.New("invalid_tax_rate")
	ErrDiscountExceedsSubtotal = errors.New("discount_exceeds_subtotal")
	ErrInvalidPaymentMethod    = errors.New("invalid_payment_method")
	ErrInvalidPaymentAmount    = errors.New("invalid_payment_amount")
	ErrTransactionNotFound     = errors.New("transaction_not_found")
	ErrAlreadyCancelled        = errors.New("transaction_already_cancelled")
	ErrNotCancellable          = errors.New("transaction_not_cancellable")
	ErrVersionConflict         = errors.New("transaction_version_conflict")
)
