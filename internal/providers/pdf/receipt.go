package pdf

import (
	"bytes"
	"context"
	"fmt"
	"io"

	"github.com/johnfercher/maroto/v2"
	"github.com/johnfercher/maroto/v2/pkg/components/col"
	"github.com/johnfercher/maroto/v2/pkg/components/text"
	"github.com/johnfercher/maroto/v2/pkg/config"
	"github.com/johnfercher/maroto/v2/pkg/consts/align"
	"github.com/johnfercher/maroto/v2/pkg/consts/fontstyle"
	"github.com/johnfercher/maroto/v2/pkg/props"
)

type ReceiptItem struct {
	Description string
	Qty         int64
	UnitPrice   string
	Amount      string
}

type ReceiptPayment struct {
	Method string
	Amount string
}

type ReceiptData struct {
	StoreName    string
	AddressLine1 string
	AddressLine2 string
	Phone        string
	FooterNote   string

	Number            string
	TransactionNumber string
	IssuedAt          string
	CashierName       string

	Items    []ReceiptItem
	Payments []ReceiptPayment

	Subtotal string
	Discount string
	Tax      string
	Total    string
	Paid     string
	Change   string
}

type marotoProvider struct{}

func (p *marotoProvider) GenerateReceipt(ctx context.Context, data ReceiptData) (io.Reader, error) {
	cfg := config.NewBuilder().Build()

	m := maroto.New(cfg)

	m.AddRow(14,
		text.NewCol(12, data.StoreName, props.Text{
			Size:  16,
			Style: fontstyle.Bold,
			Align: align.Center,
		}),
	)
	if data.AddressLine1 != "" || data.Phone != "" {
		m.AddRow(14,
			col.New(12).Add(
				text.New(data.AddressLine1, props.Text{Size: 9, Align: align.Center}),
				text.New(data.AddressLine2, props.Text{Size: 9, Align: align.Center, Top: 4}),
				text.New(data.Phone, props.Text{Size: 9, Align: align.Center, Top: 8}),
			),
		)
	}

	m.AddRow(18,
		col.New(6).Add(
			text.New("Receipt: "+data.Number, props.Text{Size: 9}),
			text.New("Transaction: "+data.TransactionNumber, props.Text{Size: 9, Top: 4}),
		),
		col.New(6).Add(
			text.New("Issued: "+data.IssuedAt, props.Text{Size: 9, Align: align.Right}),
			text.New("Cashier: "+data.CashierName, props.Text{Size: 9, Align: align.Right, Top: 4}),
		),
	)

	m.AddRow(8,
		text.NewCol(6, "Item", props.Text{Style: fontstyle.Bold, Size: 9}),
		text.NewCol(2, "Qty", props.Text{Style: fontstyle.Bold, Size: 9, Align: align.Right}),
		text.NewCol(2, "Unit", props.Text{Style: fontstyle.Bold, Size: 9, Align: align.Right}),
		text.NewCol(2, "Amount", props.Text{Style: fontstyle.Bold, Size: 9, Align: align.Right}),
	)
	for _, item := range data.Items {
		m.AddRow(7,
			text.NewCol(6, item.Description, props.Text{Size: 9}),
			text.NewCol(2, fmt.Sprintf("%d", item.Qty), props.Text{Size: 9, Align: align.Right}),
			text.NewCol(2, item.UnitPrice, props.Text{Size: 9, Align: align.Right}),
			text.NewCol(2, item.Amount, props.Text{Size: 9, Align: align.Right}),
		)
	}

	m.AddRow(7,
		col.New(8),
		text.NewCol(2, "Subtotal", props.Text{Size: 9}),
		text.NewCol(2, data.Subtotal, props.Text{Size: 9, Align: align.Right}),
	)
	if data.Discount != "" {
		m.AddRow(7,
			col.New(8),
			text.NewCol(2, "Discount", props.Text{Size: 9}),
			text.NewCol(2, "-"+data.Discount, props.Text{Size: 9, Align: align.Right}),
		)
	}
	m.AddRow(7,
		col.New(8),
		text.NewCol(2, "Tax", props.Text{Size: 9}),
		text.NewCol(2, data.Tax, props.Text{Size: 9, Align: align.Right}),
	)
	m.AddRow(8,
		col.New(8),
		text.NewCol(2, "Total", props.Text{Style: fontstyle.Bold, Size: 10}),
		text.NewCol(2, data.Total, props.Text{Style: fontstyle.Bold, Size: 10, Align: align.Right}),
	)

	for _, payment := range data.Payments {
		m.AddRow(7,
			col.New(8),
			text.NewCol(2, payment.Method, props.Text{Size: 9}),
			text.NewCol(2, payment.Amount, props.Text{Size: 9, Align: align.Right}),
		)
	}
	m.AddRow(7,
		col.New(8),
		text.NewCol(2, "Change", props.Text{Size: 9}),
		text.NewCol(2, data.Change, props.Text{Size: 9, Align: align.Right}),
	)

	if data.FooterNote != "" {
		m.AddRow(14,
			text.NewCol(12, data.FooterNote, props.Text{Size: 9, Align: align.Center, Top: 6}),
		)
	}

	doc, err := m.Generate()
	if err != nil {
		return nil, err
	}

	return bytes.NewReader(doc.GetBytes()), nil
}
