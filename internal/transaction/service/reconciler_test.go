package service

import (
	"testing"
	"time"

	txndomain "github.com/kasirhq/kasira/internal/transaction/domain"
	"github.com/stretchr/testify/assert"
)

func TestReconcilePayments_ExactPaymentCompletes(t *testing.T) {
	paidAt := time.Date(2024, 5, 1, 10, 30, 0, 0, time.UTC)

	settled, err := reconcilePayments([]txndomain.PaymentRequest{
		{Method: txndomain.PaymentMethodCash, Amount: dec("22.00")},
	}, dec("22.00"), paidAt)
	assert.NoError(t, err)

	assert.Equal(t, txndomain.TransactionStatusCompleted, settled.status)
	assert.True(t, settled.paid.Equal(dec("22.00")), settled.paid.String())
	assert.True(t, settled.change.Equal(dec("0")), settled.change.String())
	assert.Len(t, settled.payments, 1)
	assert.Equal(t, paidAt, settled.payments[0].PaidAt)
}

func TestReconcilePayments_OverpaymentReturnsChange(t *testing.T) {
	settled, err := reconcilePayments([]txndomain.PaymentRequest{
		{Method: txndomain.PaymentMethodCash, Amount: dec("25.00")},
	}, dec("22.00"), time.Now().UTC())
	assert.NoError(t, err)

	assert.Equal(t, txndomain.TransactionStatusCompleted, settled.status)
	assert.True(t, settled.change.Equal(dec("3.00")), settled.change.String())
}

func TestReconcilePayments_PartialPaymentStaysPending(t *testing.T) {
	settled, err := reconcilePayments([]txndomain.PaymentRequest{
		{Method: txndomain.PaymentMethodCard, Amount: dec("10.00")},
	}, dec("22.00"), time.Now().UTC())
	assert.NoError(t, err)

	assert.Equal(t, txndomain.TransactionStatusPending, settled.status)
	assert.True(t, settled.paid.Equal(dec("10.00")), settled.paid.String())
	assert.True(t, settled.change.Equal(dec("0")), settled.change.String())
}

func TestReconcilePayments_SplitTender(t *testing.T) {
	settled, err := reconcilePayments([]txndomain.PaymentRequest{
		{Method: txndomain.PaymentMethodCash, Amount: dec("10.00")},
		{Method: txndomain.PaymentMethodEWallet, Amount: dec("12.00"), ReferenceNumber: "OVO-123"},
	}, dec("22.00"), time.Now().UTC())
	assert.NoError(t, err)

	assert.Equal(t, txndomain.TransactionStatusCompleted, settled.status)
	assert.True(t, settled.paid.Equal(dec("22.00")), settled.paid.String())
	assert.Len(t, settled.payments, 2)
	assert.Equal(t, "OVO-123", settled.payments[1].ReferenceNumber)
}

func TestReconcilePayments_EmptyIsDeferred(t *testing.T) {
	settled, err := reconcilePayments(nil, dec("22.00"), time.Now().UTC())
	assert.NoError(t, err)

	assert.Equal(t, txndomain.TransactionStatusPending, settled.status)
	assert.Empty(t, settled.payments)
	assert.True(t, settled.paid.Equal(dec("0")), settled.paid.String())
}

func TestReconcilePayments_ZeroTotalCompletesWithoutPayment(t *testing.T) {
	settled, err := reconcilePayments(nil, dec("0"), time.Now().UTC())
	assert.NoError(t, err)
	assert.Equal(t, txndomain.TransactionStatusCompleted, settled.status)
	assert.True(t, settled.change.Equal(dec("0")), settled.change.String())
}

func TestReconcilePayments_Validation(t *testing.T) {
	_, err := reconcilePayments([]txndomain.PaymentRequest{
		{Method: "CRYPTO", Amount: dec("10.00")},
	}, dec("10.00"), time.Now().UTC())
	assert.ErrorIs(t, err, txndomain.ErrInvalidPaymentMethod)

	_, err = reconcilePayments([]txndomain.PaymentRequest{
		{Method: txndomain.PaymentMethodCash, Amount: dec("0")},
	}, dec("10.00"), time.Now().UTC())
	assert.ErrorIs(t, err, txndomain.ErrInvalidPaymentAmount)

	_, err = reconcilePayments([]txndomain.PaymentRequest{
		{Method: txndomain.PaymentMethodCash, Amount: dec("-5")},
	}, dec("10.00"), time.Now().UTC())
	assert.ErrorIs(t, err, txndomain.ErrInvalidPaymentAmount)
}

func TestReconcilePayments_AmountsRounded(t *testing.T) {
	settled, err := reconcilePayments([]txndomain.PaymentRequest{
		{Method: txndomain.PaymentMethodCash, Amount: dec("10.005")},
	}, dec("5.00"), time.Now().UTC())
	assert.NoError(t, err)

	// Half-even: 10.005 -> 10.00
	assert.True(t, settled.payments[0].Amount.Equal(dec("10.00")), settled.payments[0].Amount.String())
	assert.True(t, settled.change.Equal(dec("5.00")), settled.change.String())
}
