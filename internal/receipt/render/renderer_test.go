package render

import (
	"strings"
	"testing"
	"time"
	"unicode/utf8"

	"github.com/kasirhq/kasira/internal/config"
	txndomain "github.com/kasirhq/kasira/internal/transaction/domain"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func sampleInput() RenderInput {
	return RenderInput{
		Store: config.StoreProfile{
			StoreName:    "Kopi Kenangan",
			AddressLine1: "Jl. Sudirman 12",
			Phone:        "021-555-0123",
			FooterNote:   "Thank you for your purchase",
			Currency:     "IDR",
		},
		Number:   "RCP20240501103000ABCD",
		IssuedAt: time.Date(2024, 5, 1, 10, 30, 0, 0, time.UTC),
		Transaction: txndomain.Transaction{
			Number:         "TRX20240501102959WXYZ",
			CashierName:    "Ani",
			Subtotal:       dec("20.00"),
			DiscountAmount: dec("0"),
			TaxAmount:      dec("2.00"),
			TotalAmount:    dec("22.00"),
			PaidAmount:     dec("25.00"),
			ChangeAmount:   dec("3.00"),
			Items: []txndomain.TransactionItem{
				{
					ProductName: "Americano",
					Quantity:    2,
					UnitPrice:   dec("10.00"),
					Discount:    dec("0"),
					Subtotal:    dec("20.00"),
				},
			},
			Payments: []txndomain.Payment{
				{Method: txndomain.PaymentMethodCash, Amount: dec("25.00")},
			},
		},
	}
}

func TestRenderText_Layout(t *testing.T) {
	out, err := NewRenderer().RenderText(sampleInput())
	assert.NoError(t, err)

	lines := strings.Split(out, "\n")
	assert.Greater(t, len(lines), 10)

	// Header is centered, body rows are exactly printer width.
	assert.Equal(t, strings.TrimSpace(lines[0]), "Kopi Kenangan")
	for _, line := range lines {
		assert.LessOrEqual(t, len(line), 40, line)
	}

	assert.Contains(t, out, "RCP20240501103000ABCD")
	assert.Contains(t, out, "TRX20240501102959WXYZ")
	assert.Contains(t, out, "2024-05-01 10:30:00")
	assert.Contains(t, out, "Americano")
	assert.Contains(t, out, "2 x IDR 10.00")
	assert.Contains(t, out, "Thank you for your purchase")
}

func TestRenderText_Amounts(t *testing.T) {
	out, err := NewRenderer().RenderText(sampleInput())
	assert.NoError(t, err)

	for _, row := range []struct{ label, value string }{
		{"Subtotal", "IDR 20.00"},
		{"Tax", "IDR 2.00"},
		{"TOTAL", "IDR 22.00"},
		{"CASH", "IDR 25.00"},
		{"Change", "IDR 3.00"},
	} {
		line := rowLine(row.label, row.value)
		assert.Contains(t, out, line)
		assert.Len(t, line, 40)
	}

	// No discount, no discount row.
	assert.NotContains(t, out, "Discount")
}

func TestRenderText_DiscountRows(t *testing.T) {
	input := sampleInput()
	input.Transaction.DiscountAmount = dec("5.00")
	input.Transaction.Items[0].Discount = dec("5.00")

	out, err := NewRenderer().RenderText(input)
	assert.NoError(t, err)

	assert.Contains(t, out, rowLine("Discount", "-IDR 5.00"))
	assert.Contains(t, out, rowLine("  Discount", "-IDR 5.00"))
}

func TestRenderText_NoCurrencyConfigured(t *testing.T) {
	input := sampleInput()
	input.Store.Currency = ""

	out, err := NewRenderer().RenderText(input)
	assert.NoError(t, err)

	assert.Contains(t, out, rowLine("TOTAL", "22.00"))
	assert.NotContains(t, out, "IDR")
}

func TestRenderText_LongNamesTruncated(t *testing.T) {
	input := sampleInput()
	input.Transaction.Items[0].ProductName = strings.Repeat("Very Long Product Name ", 4)

	out, err := NewRenderer().RenderText(input)
	assert.NoError(t, err)

	for _, line := range strings.Split(out, "\n") {
		assert.LessOrEqual(t, len(line), 40, line)
	}
}

func TestRenderText_MultibyteNamesTruncatedOnRune(t *testing.T) {
	input := sampleInput()
	input.Store.StoreName = strings.Repeat("Kedai Kopi é", 5)
	input.Transaction.Items[0].ProductName = strings.Repeat("Soto Ayam Spésial ", 4)

	out, err := NewRenderer().RenderText(input)
	assert.NoError(t, err)
	assert.True(t, utf8.ValidString(out))

	for _, line := range strings.Split(out, "\n") {
		assert.LessOrEqual(t, utf8.RuneCountInString(line), 40, line)
	}
}
