// Package domain contains the sales transaction aggregate and its contracts.
package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/kasirhq/kasira/pkg/entity"
	"github.com/shopspring/decimal"
)

// TransactionStatus represents transaction lifecycle states.
type TransactionStatus string

const (
	TransactionStatusPending   TransactionStatus = "PENDING"
	TransactionStatusCompleted TransactionStatus = "COMPLETED"
	TransactionStatusCancelled TransactionStatus = "CANCELLED"
	TransactionStatusRefunded  TransactionStatus = "REFUNDED"
)

// Terminal reports whether no further transition is allowed out of the status.
func (s TransactionStatus) Terminal() bool {
	return s == TransactionStatusCancelled || s == TransactionStatusRefunded
}

// TransactionType classifies the commercial intent of a transaction.
type TransactionType string

const (
	TransactionTypeSale     TransactionType = "SALE"
	TransactionTypeReturn   TransactionType = "RETURN"
	TransactionTypeExchange TransactionType = "EXCHANGE"
)

// ValidTransactionType reports whether t is a known type.
func ValidTransactionType(t TransactionType) bool {
	switch t {
	case TransactionTypeSale, TransactionTypeReturn, TransactionTypeExchange:
		return true
	default:
		return false
	}
}

// PaymentMethod enumerates supported tender kinds.
type PaymentMethod string

const (
	PaymentMethodCash         PaymentMethod = "CASH"
	PaymentMethodCard         PaymentMethod = "CARD"
	PaymentMethodEWallet      PaymentMethod = "EWALLET"
	PaymentMethodBankTransfer PaymentMethod = "BANK_TRANSFER"
	PaymentMethodCheck        PaymentMethod = "CHECK"
)

// ValidPaymentMethod reports whether m is a known tender kind.
func ValidPaymentMethod(m PaymentMethod) bool {
	switch m {
	case PaymentMethodCash, PaymentMethodCard, PaymentMethodEWallet, PaymentMethodBankTransfer, PaymentMethodCheck:
		return true
	default:
		return false
	}
}

// Transaction is the aggregate root of the settlement engine. It owns its
// items and payments; children never outlive the parent and always carry the
// parent's tenant.
type Transaction struct {
	ID              snowflake.ID      `gorm:"primaryKey" json:"id"`
	TenantID        snowflake.ID      `gorm:"not null;index;uniqueIndex:ux_transactions_tenant_number" json:"tenant_id"`
	Number          string            `gorm:"type:text;not null;uniqueIndex:ux_transactions_tenant_number" json:"number"`
	BranchID        snowflake.ID      `gorm:"not null;index" json:"branch_id"`
	CustomerID      *snowflake.ID     `gorm:"index" json:"customer_id,omitempty"`
	TransactionDate time.Time         `gorm:"not null;index" json:"transaction_date"`
	Status          TransactionStatus `gorm:"type:text;not null;default:'PENDING';index" json:"status"`
	Type            TransactionType   `gorm:"type:text;not null;default:'SALE'" json:"type"`
	Subtotal        decimal.Decimal   `gorm:"type:decimal(19,4);not null" json:"subtotal"`
	DiscountAmount  decimal.Decimal   `gorm:"type:decimal(19,4);not null" json:"discount_amount"`
	TaxAmount       decimal.Decimal   `gorm:"type:decimal(19,4);not null" json:"tax_amount"`
	TotalAmount     decimal.Decimal   `gorm:"type:decimal(19,4);not null" json:"total_amount"`
	PaidAmount      decimal.Decimal   `gorm:"type:decimal(19,4);not null" json:"paid_amount"`
	ChangeAmount    decimal.Decimal   `gorm:"type:decimal(19,4);not null" json:"change_amount"`
	Notes           string            `gorm:"type:text" json:"notes,omitempty"`
	CashierID       string            `gorm:"type:text" json:"cashier_id,omitempty"`
	CashierName     string            `gorm:"type:text" json:"cashier_name,omitempty"`

	Items    []TransactionItem `gorm:"foreignKey:TransactionID;constraint:OnDelete:CASCADE" json:"items"`
	Payments []Payment         `gorm:"foreignKey:TransactionID;constraint:OnDelete:CASCADE" json:"payments"`

	entity.Audited
}

// TableName sets the database table name.
func (Transaction) TableName() string { return "transactions" }

// TransactionItem is one sold line. Product name and code are snapshots taken
// at transaction time so later catalog edits do not rewrite history.
type TransactionItem struct {
	ID            snowflake.ID    `gorm:"primaryKey" json:"id"`
	TenantID      snowflake.ID    `gorm:"not null;index" json:"tenant_id"`
	TransactionID snowflake.ID    `gorm:"not null;index" json:"transaction_id"`
	ProductID     snowflake.ID    `gorm:"not null" json:"product_id"`
	ProductCode   string          `gorm:"type:text" json:"product_code"`
	ProductName   string          `gorm:"type:text;not null" json:"product_name"`
	Quantity      int64           `gorm:"not null" json:"quantity"`
	UnitPrice     decimal.Decimal `gorm:"type:decimal(19,4);not null" json:"unit_price"`
	Discount      decimal.Decimal `gorm:"type:decimal(19,4);not null" json:"discount"`
	TaxRate       decimal.Decimal `gorm:"type:decimal(7,4);not null" json:"tax_rate"`
	TaxAmount     decimal.Decimal `gorm:"type:decimal(19,4);not null" json:"tax_amount"`
	Subtotal      decimal.Decimal `gorm:"type:decimal(19,4);not null" json:"subtotal"`
	Total         decimal.Decimal `gorm:"type:decimal(19,4);not null" json:"total"`

	entity.Audited
}

// TableName sets the database table name.
func (TransactionItem) TableName() string { return "transaction_items" }

// Payment is one tender applied against a transaction. A transaction may be
// funded by several payments (split tender). Never mutated after creation.
type Payment struct {
	ID              snowflake.ID    `gorm:"primaryKey" json:"id"`
	TenantID        snowflake.ID    `gorm:"not null;index" json:"tenant_id"`
	TransactionID   snowflake.ID    `gorm:"not null;index" json:"transaction_id"`
	Method          PaymentMethod   `gorm:"type:text;not null" json:"method"`
	Amount          decimal.Decimal `gorm:"type:decimal(19,4);not null" json:"amount"`
	PaidAt          time.Time       `gorm:"not null" json:"paid_at"`
	ReferenceNumber string          `gorm:"type:text" json:"reference_number,omitempty"`
	Notes           string          `gorm:"type:text" json:"notes,omitempty"`

	entity.Audited
}

// TableName sets the database table name.
func (Payment) TableName() string { return "payments" }
