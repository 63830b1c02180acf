package orders

import (
	"encoding/json"
	"time"
)

const (
	EventOrderCreated   = "OrderCreated"
	EventOrderPaid      = "OrderPaid"
	EventOrderCancelled = "OrderCancelled"
)

// Envelope v1. Events are post-commit facts about the ledger, never commands:
// a lost event can at worst leave a cache stale.
type Envelope struct {
	EventID       string          `json:"event_id"`      // uuid
	EventType     string          `json:"event_type"`    // salah satu const di atas
	EventVersion  int             `json:"event_version"` // 1
	OccurredAt    time.Time       `json:"occurred_at"`   // RFC3339
	Producer      string          `json:"producer"`      // e.g., "bookstore-api"
	TraceID       string          `json:"trace_id,omitempty"`
	CorrelationID string          `json:"correlation_id,omitempty"` // order_id
	Payload       json.RawMessage `json:"payload"`
}

type EventItem struct {
	BookID    int64  `json:"book_id"`
	Qty       int    `json:"qty"`
	UnitPrice string `json:"unit_price"`
}

type OrderCreatedPayload struct {
	OrderID     int64       `json:"order_id"`
	OrderNumber string      `json:"order_number"`
	UserID      int64       `json:"user_id"`
	Items       []EventItem `json:"items"`
	TotalAmount string      `json:"total_amount"`
	EmailSent   bool        `json:"email_sent"`
}

type OrderPaidPayload struct {
	OrderID       int64  `json:"order_id"`
	OrderNumber   string `json:"order_number"`
	UserID        int64  `json:"user_id"`
	PaymentMethod string `json:"payment_method"`
	TotalAmount   string `json:"total_amount"`
}

type OrderCancelledPayload struct {
	OrderID     int64       `json:"order_id"`
	OrderNumber string      `json:"order_number"`
	UserID      int64       `json:"user_id"`
	Restocked   []EventItem `json:"restocked"`
}

func toEventItems(items []OrderItem) []EventItem {
	out := make([]EventItem, 0, len(items))
	for _, it := range items {
		out = append(out, EventItem{BookID: it.BookID, Qty: it.Quantity, UnitPrice: it.UnitPrice.StringFixed(2)})
	}
	return out
}
