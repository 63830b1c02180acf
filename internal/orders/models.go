package orders

import (
	"time"

	"github.com/huaxuan-books/bookstore/internal/catalog"
	"github.com/shopspring/decimal"
)

type Order struct {
	ID            int64           `json:"id"`
	UserID        int64           `json:"-"`
	OrderNumber   string          `json:"orderNumber"`
	TotalAmount   decimal.Decimal `json:"totalAmount"`
	Status        Status          `json:"status"`
	PaymentMethod string          `json:"paymentMethod"`
	PaymentStatus PaymentStatus   `json:"paymentStatus"`
	Notes         string          `json:"notes"`
	CreatedAt     time.Time       `json:"createdAt"`
	PaidAt        *time.Time      `json:"paidAt"`
	ShippedAt     *time.Time      `json:"shippedAt"`
	DeliveredAt   *time.Time      `json:"deliveredAt"`
	Items         []OrderItem     `json:"items"`
}

// OrderItem snapshots the unit price at order time; it never changes after
// creation, even when the catalog price does.
type OrderItem struct {
	ID         int64           `json:"id"`
	OrderID    int64           `json:"-"`
	BookID     int64           `json:"bookId"`
	Quantity   int             `json:"quantity"`
	UnitPrice  decimal.Decimal `json:"unitPrice"`
	TotalPrice decimal.Decimal `json:"totalPrice"`
	Book       *catalog.Book   `json:"book,omitempty"`
}

type CartEntry struct {
	ID         int64           `json:"id"`
	UserID     int64           `json:"-"`
	BookID     int64           `json:"bookId"`
	Quantity   int             `json:"quantity"`
	TotalPrice decimal.Decimal `json:"totalPrice"`
	Book       *catalog.Book   `json:"book,omitempty"`
}

type Cart struct {
	Items       []CartEntry     `json:"items"`
	TotalAmount decimal.Decimal `json:"totalAmount"`
	ItemCount   int             `json:"itemCount"`
}

type ItemInput struct {
	BookID   int64 `json:"bookId"`
	Quantity int   `json:"quantity"`
}

type CreateOrderInput struct {
	Items         []ItemInput
	Notes         string
	PaymentMethod string
}
