package service

import (
	"testing"

	txndomain "github.com/kasirhq/kasira/internal/transaction/domain"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func decPtr(s string) *decimal.Decimal {
	d := decimal.RequireFromString(s)
	return &d
}

func TestAssembleItems_SingleLineWithTax(t *testing.T) {
	lines, err := assembleItems([]txndomain.ItemRequest{
		{
			ProductID:   "1234567890",
			ProductName: "Americano",
			Quantity:    2,
			UnitPrice:   dec("10.00"),
			TaxRate:     decPtr("10"),
		},
	})
	assert.NoError(t, err)
	assert.Len(t, lines.items, 1)

	item := lines.items[0]
	assert.True(t, item.Subtotal.Equal(dec("20.00")), item.Subtotal.String())
	assert.True(t, item.TaxAmount.Equal(dec("2.00")), item.TaxAmount.String())
	assert.True(t, item.Total.Equal(dec("22.00")), item.Total.String())

	assert.True(t, lines.subtotal.Equal(dec("20.00")), lines.subtotal.String())
	assert.True(t, lines.discount.Equal(dec("0")), lines.discount.String())
	assert.True(t, lines.tax.Equal(dec("2.00")), lines.tax.String())
}

func TestAssembleItems_DiscountReducesTaxable(t *testing.T) {
	lines, err := assembleItems([]txndomain.ItemRequest{
		{
			ProductID:   "1234567890",
			ProductName: "Latte",
			Quantity:    2,
			UnitPrice:   dec("10.00"),
			Discount:    decPtr("5.00"),
			TaxRate:     decPtr("10"),
		},
	})
	assert.NoError(t, err)

	item := lines.items[0]
	assert.True(t, item.Subtotal.Equal(dec("20.00")), item.Subtotal.String())
	assert.True(t, item.TaxAmount.Equal(dec("1.50")), item.TaxAmount.String())
	assert.True(t, item.Total.Equal(dec("16.50")), item.Total.String())
}

func TestAssembleItems_BankersRounding(t *testing.T) {
	// 0.33 * 7.5% = 0.02475, half-even to two places -> 0.02
	lines, err := assembleItems([]txndomain.ItemRequest{
		{
			ProductID:   "1234567890",
			ProductName: "Gum",
			Quantity:    1,
			UnitPrice:   dec("0.33"),
			TaxRate:     decPtr("7.5"),
		},
	})
	assert.NoError(t, err)
	assert.True(t, lines.tax.Equal(dec("0.02")), lines.tax.String())

	// 1.25 * 10% = 0.125, half-even to two places -> 0.12
	lines, err = assembleItems([]txndomain.ItemRequest{
		{
			ProductID:   "1234567890",
			ProductName: "Candy",
			Quantity:    1,
			UnitPrice:   dec("1.25"),
			TaxRate:     decPtr("10"),
		},
	})
	assert.NoError(t, err)
	assert.True(t, lines.tax.Equal(dec("0.12")), lines.tax.String())
}

func TestAssembleItems_MultiLineSums(t *testing.T) {
	lines, err := assembleItems([]txndomain.ItemRequest{
		{ProductID: "1", ProductName: "A", Quantity: 1, UnitPrice: dec("10.00"), TaxRate: decPtr("10")},
		{ProductID: "2", ProductName: "B", Quantity: 3, UnitPrice: dec("4.50"), Discount: decPtr("1.50")},
	})
	assert.NoError(t, err)
	assert.Len(t, lines.items, 2)

	assert.True(t, lines.subtotal.Equal(dec("23.50")), lines.subtotal.String())
	assert.True(t, lines.discount.Equal(dec("1.50")), lines.discount.String())
	assert.True(t, lines.tax.Equal(dec("1.00")), lines.tax.String())

	// Order follows request order.
	assert.Equal(t, "A", lines.items[0].ProductName)
	assert.Equal(t, "B", lines.items[1].ProductName)
}

func TestAssembleItems_Validation(t *testing.T) {
	base := txndomain.ItemRequest{
		ProductID:   "1234567890",
		ProductName: "Widget",
		Quantity:    1,
		UnitPrice:   dec("10.00"),
	}

	_, err := assembleItems(nil)
	assert.ErrorIs(t, err, txndomain.ErrItemsRequired)

	bad := base
	bad.Quantity = 0
	_, err = assembleItems([]txndomain.ItemRequest{bad})
	assert.ErrorIs(t, err, txndomain.ErrInvalidQuantity)

	bad = base
	bad.Quantity = -3
	_, err = assembleItems([]txndomain.ItemRequest{bad})
	assert.ErrorIs(t, err, txndomain.ErrInvalidQuantity)

	bad = base
	bad.UnitPrice = dec("0")
	_, err = assembleItems([]txndomain.ItemRequest{bad})
	assert.ErrorIs(t, err, txndomain.ErrInvalidUnitPrice)

	bad = base
	bad.ProductID = "not-a-number"
	_, err = assembleItems([]txndomain.ItemRequest{bad})
	assert.ErrorIs(t, err, txndomain.ErrInvalidProduct)

	bad = base
	bad.Discount = decPtr("-1")
	_, err = assembleItems([]txndomain.ItemRequest{bad})
	assert.ErrorIs(t, err, txndomain.ErrInvalidDiscount)

	bad = base
	bad.TaxRate = decPtr("-5")
	_, err = assembleItems([]txndomain.ItemRequest{bad})
	assert.ErrorIs(t, err, txndomain.ErrInvalidTaxRate)

	bad = base
	bad.Discount = decPtr("10.01")
	_, err = assembleItems([]txndomain.ItemRequest{bad})
	assert.ErrorIs(t, err, txndomain.ErrDiscountExceedsSubtotal)
}

func TestAssembleItems_DiscountEqualToSubtotal(t *testing.T) {
	// A fully discounted line is legal: zero taxable, zero tax.
	lines, err := assembleItems([]txndomain.ItemRequest{
		{
			ProductID:   "1234567890",
			ProductName: "Freebie",
			Quantity:    1,
			UnitPrice:   dec("10.00"),
			Discount:    decPtr("10.00"),
			TaxRate:     decPtr("10"),
		},
	})
	assert.NoError(t, err)
	assert.True(t, lines.items[0].TaxAmount.Equal(dec("0")), lines.items[0].TaxAmount.String())
	assert.True(t, lines.items[0].Total.Equal(dec("0")), lines.items[0].Total.String())
}
