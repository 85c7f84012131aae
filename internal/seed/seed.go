// Package seed provisions demo data so a fresh local install has something
// to look at without going through the API first.
package seed

import (
	"context"
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
	txndomain "github.com/kasirhq/kasira/internal/transaction/domain"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

const (
	demoTenantID  snowflake.ID = 1
	demoBranchID  snowflake.ID = 1
	demoProductID snowflake.ID = 1

	demoNumber  = "TRX00000000000000DEMO"
	demoCashier = "demo"
)

// EnsureDemoData seeds one settled sale under the demo tenant. Safe to call
// on every startup; it does nothing when the sale already exists.
func EnsureDemoData(db *gorm.DB) error {
	if db == nil {
		return errors.New("seed database handle is required")
	}

	node, err := snowflake.NewNode(1)
	if err != nil {
		return err
	}

	ctx := context.Background()
	return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return ensureDemoSaleTx(ctx, tx, node)
	})
}

func ensureDemoSaleTx(ctx context.Context, tx *gorm.DB, node *snowflake.Node) error {
	var count int64
	if err := tx.WithContext(ctx).
		Model(&txndomain.Transaction{}).
		Where("tenant_id = ? AND number = ?", demoTenantID, demoNumber).
		Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	now := time.Now().UTC()
	unitPrice := decimal.RequireFromString("25000")
	subtotal := unitPrice.Mul(decimal.NewFromInt(2))
	tax := subtotal.Mul(decimal.RequireFromString("0.11")).RoundBank(2)
	total := subtotal.Add(tax)

	sale := txndomain.Transaction{
		ID:              node.Generate(),
		TenantID:        demoTenantID,
		Number:          demoNumber,
		BranchID:        demoBranchID,
		TransactionDate: now,
		Status:          txndomain.TransactionStatusCompleted,
		Type:            txndomain.TransactionTypeSale,
		Subtotal:        subtotal,
		DiscountAmount:  decimal.Zero,
		TaxAmount:       tax,
		TotalAmount:     total,
		PaidAmount:      total,
		ChangeAmount:    decimal.Zero,
		CashierID:       demoCashier,
		CashierName:     "Demo Cashier",
		Items: []txndomain.TransactionItem{
			{
				ID:          node.Generate(),
				TenantID:    demoTenantID,
				ProductID:   demoProductID,
				ProductCode: "KOPI-001",
				ProductName: "Kopi Susu",
				Quantity:    2,
				UnitPrice:   unitPrice,
				Discount:    decimal.Zero,
				TaxRate:     decimal.RequireFromString("11"),
				TaxAmount:   tax,
				Subtotal:    subtotal,
				Total:       subtotal.Add(tax),
			},
		},
		Payments: []txndomain.Payment{
			{
				ID:       node.Generate(),
				TenantID: demoTenantID,
				Method:   txndomain.PaymentMethodCash,
				Amount:   total,
				PaidAt:   now,
			},
		},
	}
	sale.CreatedBy = demoCashier
	sale.UpdatedBy = demoCashier

	return tx.WithContext(ctx).Create(&sale).Error
}
