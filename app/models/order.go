package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Customer holds the checkout form fields.
type Customer struct {
	Name       string `json:"customer_name"`
	Email      string `json:"email"`
	Phone      string `json:"phone"`
	MpesaPhone string `json:"mpesa_phone"`
	Address    string `json:"address"`
	Notes      string `json:"notes"`
}

// Order is an immutable record in the order log.
type Order struct {
	ID           string          `json:"id"`
	CustomerName string          `json:"customer_name"`
	Email        string          `json:"email"`
	Phone        string          `json:"phone"`
	MpesaPhone   string          `json:"mpesa_phone"`
	Address      string          `json:"address"`
	Notes        string          `json:"notes"`
	Items        []CartLine      `json:"items"`
	Total        decimal.Decimal `json:"total"`
	CreatedAt    time.Time       `json:"created_at"`
}

// ItemCount sums the quantities of the order's lines.
func (o Order) ItemCount() int {
	n := 0
	for _, l := range o.Items {
		n += l.Quantity
	}
	return n
}
