package service

import (
	"strings"
	"time"

	txndomain "github.com/kasirhq/kasira/internal/transaction/domain"
	"github.com/shopspring/decimal"
)

// settlement is the outcome of reconciling submitted payments against the
// transaction total.
type settlement struct {
	payments []txndomain.Payment
	paid     decimal.Decimal
	change   decimal.Decimal
	status   txndomain.TransactionStatus
}

// reconcilePayments attaches one payment per request, timestamped at
// processing time, and decides the settlement status. An empty request list
// is a valid deferred payment: the transaction stays PENDING with nothing
// paid. Change is only ever due on overpayment.
func reconcilePayments(reqs []txndomain.PaymentRequest, total decimal.Decimal, paidAt time.Time) (settlement, error) {
	out := settlement{
		payments: make([]txndomain.Payment, 0, len(reqs)),
		paid:     decimal.Zero,
		change:   decimal.Zero,
		status:   txndomain.TransactionStatusPending,
	}

	for _, req := range reqs {
		if !txndomain.ValidPaymentMethod(req.Method) {
			return settlement{}, txndomain.ErrInvalidPaymentMethod
		}
		if !req.Amount.IsPositive() {
			return settlement{}, txndomain.ErrInvalidPaymentAmount
		}

		amount := roundMoney(req.Amount)
		out.payments = append(out.payments, txndomain.Payment{
			Method:          req.Method,
			Amount:          amount,
			PaidAt:          paidAt,
			ReferenceNumber: strings.TrimSpace(req.ReferenceNumber),
			Notes:           strings.TrimSpace(req.Notes),
		})
		out.paid = out.paid.Add(amount)
	}

	if out.paid.GreaterThanOrEqual(total) {
		out.change = out.paid.Sub(total)
		out.status = txndomain.TransactionStatusCompleted
	}

	return out, nil
}
