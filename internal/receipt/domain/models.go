// Package domain contains the receipt aggregate and its contracts.
package domain

import (
	"context"
	"errors"
	"io"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/kasirhq/kasira/pkg/entity"
)

// Receipt is the customer-facing record of a settled transaction. The body is
// rendered once at issue time and stored verbatim; reprints serve the stored
// content so a receipt never changes after the fact.
type Receipt struct {
	ID            snowflake.ID `gorm:"primaryKey" json:"id"`
	TenantID      snowflake.ID `gorm:"not null;index;uniqueIndex:ux_receipts_tenant_number;uniqueIndex:ux_receipts_tenant_transaction" json:"tenant_id"`
	TransactionID snowflake.ID `gorm:"not null;uniqueIndex:ux_receipts_tenant_transaction" json:"transaction_id"`
	Number        string       `gorm:"type:text;not null;uniqueIndex:ux_receipts_tenant_number" json:"number"`
	IssuedAt      time.Time    `gorm:"not null" json:"issued_at"`
	Content       string       `gorm:"type:text;not null" json:"content"`
	PrintCount    int          `gorm:"not null;default:0" json:"print_count"`
	LastPrintedAt *time.Time   `json:"last_printed_at,omitempty"`

	entity.Audited
}

// TableName sets the database table name.
func (Receipt) TableName() string { return "receipts" }

// Service issues and serves receipts. Generation is once per transaction;
// printing re-serves the stored body and counts the print.
type Service interface {
	Generate(ctx context.Context, transactionID string) (Receipt, error)
	Print(ctx context.Context, id string) (Receipt, error)
	GetByID(ctx context.Context, id string) (Receipt, error)
	GetByTransaction(ctx context.Context, transactionID string) (Receipt, error)
	Content(ctx context.Context, id string) (string, error)
	RenderPDF(ctx context.Context, id string) (io.Reader, error)
}

var (
	ErrTenantRequired  = errors.New("tenant_required")
	ErrReceiptNotFound = errors.New("receipt_not_found")
	ErrReceiptExists   = errors.New("receipt_already_exists")
	ErrIssueContended  = errors.New("receipt_issue_in_progress")
	ErrNotReceiptable  = errors.New("transaction_not_receiptable")
)
