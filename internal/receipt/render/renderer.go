// Package render turns a settled transaction into the fixed-width receipt
// body stored on the receipt record.
package render

import (
	"bytes"
	"strings"
	"text/template"
	"time"

	"github.com/kasirhq/kasira/internal/config"
	txndomain "github.com/kasirhq/kasira/internal/transaction/domain"
	"github.com/shopspring/decimal"
)

// receiptWidth matches a 58mm thermal printer.
const receiptWidth = 40

const receiptTextTemplate = `{{center .Store.StoreName}}
{{- if .Store.AddressLine1}}
{{center .Store.AddressLine1}}
{{- end}}
{{- if .Store.AddressLine2}}
{{center .Store.AddressLine2}}
{{- end}}
{{- if .Store.Phone}}
{{center .Store.Phone}}
{{- end}}
{{rule "="}}
{{row "Receipt" .Number}}
{{row "Date" (datetime .IssuedAt)}}
{{row "Trx" .Transaction.Number}}
{{- if .Transaction.CashierName}}
{{row "Cashier" .Transaction.CashierName}}
{{- end}}
{{rule "-"}}
{{- range .Transaction.Items}}
{{trunc .ProductName}}
{{row (printf "  %d x %s" .Quantity (money $.Store.Currency .UnitPrice)) (money $.Store.Currency .Subtotal)}}
{{- if not .Discount.IsZero}}
{{row "  Discount" (printf "-%s" (money $.Store.Currency .Discount))}}
{{- end}}
{{- end}}
{{rule "-"}}
{{row "Subtotal" (money $.Store.Currency .Transaction.Subtotal)}}
{{- if not .Transaction.DiscountAmount.IsZero}}
{{row "Discount" (printf "-%s" (money $.Store.Currency .Transaction.DiscountAmount))}}
{{- end}}
{{row "Tax" (money $.Store.Currency .Transaction.TaxAmount)}}
{{row "TOTAL" (money $.Store.Currency .Transaction.TotalAmount)}}
{{rule "-"}}
{{- range .Transaction.Payments}}
{{row (string .Method) (money $.Store.Currency .Amount)}}
{{- end}}
{{row "Paid" (money $.Store.Currency .Transaction.PaidAmount)}}
{{row "Change" (money $.Store.Currency .Transaction.ChangeAmount)}}
{{rule "="}}
{{- if .Store.FooterNote}}
{{center .Store.FooterNote}}
{{- end}}
`

// RenderInput carries everything the template needs. The store profile is
// captured at issue time so later profile edits do not rewrite old receipts.
type RenderInput struct {
	Store       config.StoreProfile
	Transaction txndomain.Transaction
	Number      string
	IssuedAt    time.Time
}

type Renderer interface {
	RenderText(input RenderInput) (string, error)
}

type TextRenderer struct {
	tpl *template.Template
}

func NewRenderer() Renderer {
	funcs := template.FuncMap{
		"center":   centerText,
		"rule":     ruleLine,
		"row":      rowLine,
		"trunc":    truncLine,
		"money":    formatMoney,
		"datetime": formatDateTime,
		"string":   func(m txndomain.PaymentMethod) string { return string(m) },
	}
	return &TextRenderer{
		tpl: template.Must(template.New("receipt").Funcs(funcs).Parse(receiptTextTemplate)),
	}
}

func (r *TextRenderer) RenderText(input RenderInput) (string, error) {
	var buf bytes.Buffer
	if err := r.tpl.Execute(&buf, input); err != nil {
		return "", err
	}
	return buf.String(), nil
}

func centerText(value string) string {
	runes := []rune(strings.TrimSpace(value))
	if len(runes) >= receiptWidth {
		return string(runes[:receiptWidth])
	}
	pad := (receiptWidth - len(runes)) / 2
	return strings.Repeat(" ", pad) + string(runes)
}

func ruleLine(char string) string {
	if char == "" {
		char = "-"
	}
	return strings.Repeat(char[:1], receiptWidth)
}

// rowLine left-aligns the label and right-aligns the value on one line,
// truncating the label when both do not fit. Widths are counted in runes so
// multibyte names are never cut mid-character.
func rowLine(label, value string) string {
	labelRunes := []rune(label)
	valueRunes := []rune(value)
	space := receiptWidth - len(valueRunes) - 1
	if space < 0 {
		return string(valueRunes[:receiptWidth])
	}
	if len(labelRunes) > space {
		labelRunes = labelRunes[:space]
	}
	return string(labelRunes) + strings.Repeat(" ", receiptWidth-len(labelRunes)-len(valueRunes)) + string(valueRunes)
}

func truncLine(value string) string {
	runes := []rune(strings.TrimSpace(value))
	if len(runes) > receiptWidth {
		return string(runes[:receiptWidth])
	}
	return string(runes)
}

func formatMoney(currency string, amount decimal.Decimal) string {
	value := amount.StringFixed(2)
	if currency = strings.TrimSpace(currency); currency != "" {
		return currency + " " + value
	}
	return value
}

func formatDateTime(value time.Time) string {
	return value.UTC().Format("2006-01-02 15:04:05")
}
