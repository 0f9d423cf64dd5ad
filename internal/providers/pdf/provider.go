package pdf

import (
	"context"
	"fmt"
	"io"
)

// ReceiptData carries the already-formatted values printed on a sale
// receipt. Amounts arrive in minor units and are formatted here.
type ReceiptData struct {
	StoreName    string
	StoreAddress string
	SaleNumber   string
	SaleDate     string
	CustomerName string
	EmployeeName string
	PaymentInfo  string

	Items []ReceiptItem

	Subtotal     int64
	ShippingCost int64
	Discount     int64
	Total        int64
}

type ReceiptItem struct {
	Description string
	Qty         int64
	UnitPrice   int64
	Amount      int64
}

type Provider interface {
	GenerateReceipt(ctx context.Context, data ReceiptData) (io.Reader, error)
}

type NoOpProvider struct{}

func (p *NoOpProvider) GenerateReceipt(ctx context.Context, data ReceiptData) (io.Reader, error) {
	return nil, nil
}

// money renders minor units as a decimal string.
func money(v int64) string {
	sign := ""
	if v < 0 {
		sign = "-"
		v = -v
	}
	return fmt.Sprintf("%s%d.%02d", sign, v/100, v%100)
}
