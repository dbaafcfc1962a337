package entity

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/google/uuid"
)

type Product struct {
	ID         string `json:"id"`
	Code       string `json:"code"`
	Label      string `json:"label"`
	PriceCents int    `json:"price_cents"`
}

func NewProduct(code, label string, priceCents int) *Product {
	return &Product{
		ID:         uuid.New().String(),
		Code:       code,
		Label:      label,
		PriceCents: priceCents,
	}
}

// ProductCodes joins the codes of the purchased products for logs and export.
func ProductCodes(products []Product) string {
	codes := make([]string, 0, len(products))
	for _, p := range products {
		codes = append(codes, p.Code)
	}
	return strings.Join(codes, "; ")
}

// Order is the payment block the site builder attaches to a submission:
// the external order reference plus the purchased products.
type Order struct {
	OrderID  string
	Products []Product
}

type orderPayload struct {
	OrderID  string `json:"orderid"`
	Amount   string `json:"amount"`
	Products []struct {
		SKU      string  `json:"sku"`
		Name     string  `json:"name"`
		Price    float64 `json:"price,string"`
		Quantity int     `json:"quantity,string"`
	} `json:"products"`
}

// ParseOrder decodes the raw payment JSON carried in the submission. An empty
// payload yields an empty order; the reconciliation sweep treats that as a
// data-integrity error, not this parser.
func ParseOrder(raw string) (Order, error) {
	if strings.TrimSpace(raw) == "" {
		return Order{}, nil
	}

	var payload orderPayload
	if err := json.Unmarshal([]byte(raw), &payload); err != nil {
		return Order{}, fmt.Errorf("malformed payment payload: %w", err)
	}

	order := Order{OrderID: payload.OrderID}
	for _, p := range payload.Products {
		order.Products = append(order.Products, *NewProduct(p.SKU, p.Name, int(p.Price*100)))
	}
	return order, nil
}
