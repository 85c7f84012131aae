package service

import (
	"strings"

	"github.com/bwmarrin/snowflake"
	txndomain "github.com/kasirhq/kasira/internal/transaction/domain"
	"github.com/shopspring/decimal"
)

// assembledLines is the result of turning item requests into owned child
// records plus the running sums feeding the transaction-level amounts.
type assembledLines struct {
	items    []txndomain.TransactionItem
	subtotal decimal.Decimal
	discount decimal.Decimal
	tax      decimal.Decimal
}

// assembleItems builds one line per request, deriving the per-item subtotal,
// tax and total. Item order follows request order. Returned items carry the
// product snapshot but no identifiers; the caller stamps IDs and tenant.
func assembleItems(reqs []txndomain.ItemRequest) (assembledLines, error) {
	if len(reqs) == 0 {
		return assembledLines{}, txndomain.ErrItemsRequired
	}

	out := assembledLines{
		items:    make([]txndomain.TransactionItem, 0, len(reqs)),
		subtotal: decimal.Zero,
		discount: decimal.Zero,
		tax:      decimal.Zero,
	}

	for _, req := range reqs {
		if req.Quantity <= 0 {
			return assembledLines{}, txndomain.ErrInvalidQuantity
		}
		if !req.UnitPrice.IsPositive() {
			return assembledLines{}, txndomain.ErrInvalidUnitPrice
		}

		productID, err := snowflake.ParseString(strings.TrimSpace(req.ProductID))
		if err != nil {
			return assembledLines{}, txndomain.ErrInvalidProduct
		}

		discount := decimal.Zero
		if req.Discount != nil {
			if req.Discount.IsNegative() {
				return assembledLines{}, txndomain.ErrInvalidDiscount
			}
			discount = roundMoney(*req.Discount)
		}

		taxRate := decimal.Zero
		if req.TaxRate != nil {
			if req.TaxRate.IsNegative() {
				return assembledLines{}, txndomain.ErrInvalidTaxRate
			}
			taxRate = *req.TaxRate
		}

		subtotal := roundMoney(req.UnitPrice.Mul(decimal.NewFromInt(req.Quantity)))
		taxable := subtotal.Sub(discount)
		if taxable.IsNegative() {
			return assembledLines{}, txndomain.ErrDiscountExceedsSubtotal
		}

		tax := taxFor(taxable, taxRate)
		total := taxable.Add(tax)

		out.items = append(out.items, txndomain.TransactionItem{
			ProductID:   productID,
			ProductCode: strings.TrimSpace(req.ProductCode),
			ProductName: strings.TrimSpace(req.ProductName),
			Quantity:    req.Quantity,
			UnitPrice:   req.UnitPrice,
			Discount:    discount,
			TaxRate:     taxRate,
			TaxAmount:   tax,
			Subtotal:    subtotal,
			Total:       total,
		})

		out.subtotal = out.subtotal.Add(subtotal)
		out.discount = out.discount.Add(discount)
		out.tax = out.tax.Add(tax)
	}

	return out, nil
}
