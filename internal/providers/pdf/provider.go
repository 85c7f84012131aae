// Package pdf renders receipts as PDF documents for download and email.
package pdf

import (
	"context"
	"io"

	"go.uber.org/fx"
)

type Provider interface {
	GenerateReceipt(ctx context.Context, data ReceiptData) (io.Reader, error)
}

var Module = fx.Module("providers.pdf",
	fx.Provide(NewProvider),
)

func NewProvider() Provider {
	return &marotoProvider{}
}
