package orders

import (
	"context"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	kafkax "github.com/huaxuan-books/bookstore/internal/kafka"
	"github.com/huaxuan-books/bookstore/internal/mail"
	"github.com/huaxuan-books/bookstore/internal/users"
	kafkago "github.com/segmentio/kafka-go"
)

// Publisher is the outbound side of the event stream. Fire and forget;
// implementations must not block the request path on broker trouble.
type Publisher interface {
	Publish(topic string, key, value []byte, headers ...kafkago.Header)
}

// Service glues the ledger to its post-commit side effects: the confirmation
// email and the event stream. Everything after the commit is best effort.
type Service struct {
	Ledger      Ledger
	Cart        CartStore
	Mailer      mail.Dispatcher
	Producer    Publisher
	ServiceName string
}

// CreateOrder places the order, then attempts the confirmation email. The
// second return value is the email outcome; a failed send never fails the
// order.
func (s *Service) CreateOrder(ctx context.Context, user *users.User, in CreateOrderInput) (*Order, bool, error) {
	if len(in.Items) == 0 {
		return nil, false, ErrEmptyOrderItems
	}

	o, err := s.Ledger.CreateOrder(ctx, user.ID, in)
	if err != nil {
		return nil, false, err
	}

	emailSent := false
	if s.Mailer != nil {
		emailSent = s.Mailer.SendOrderConfirmation(ctx, user.Email, user.Username, snapshotFor(o))
	}

	s.publish(ctx, TopicOrderCreated, EventOrderCreated, o.ID, OrderCreatedPayload{
		OrderID:     o.ID,
		OrderNumber: o.OrderNumber,
		UserID:      o.UserID,
		Items:       toEventItems(o.Items),
		TotalAmount: o.TotalAmount.StringFixed(2),
		EmailSent:   emailSent,
	})
	return o, emailSent, nil
}

func (s *Service) PayOrder(ctx context.Context, userID, orderID int64, paymentMethod string) (*Order, error) {
	o, err := s.Ledger.PayOrder(ctx, userID, orderID, paymentMethod)
	if err != nil {
		return nil, err
	}

	s.publish(ctx, TopicOrderPaid, EventOrderPaid, o.ID, OrderPaidPayload{
		OrderID:       o.ID,
		OrderNumber:   o.OrderNumber,
		UserID:        o.UserID,
		PaymentMethod: o.PaymentMethod,
		TotalAmount:   o.TotalAmount.StringFixed(2),
	})
	return o, nil
}

func (s *Service) CancelOrder(ctx context.Context, userID, orderID int64) (*Order, error) {
	o, err := s.Ledger.CancelOrder(ctx, userID, orderID)
	if err != nil {
		return nil, err
	}

	s.publish(ctx, TopicOrderCancelled, EventOrderCancelled, o.ID, OrderCancelledPayload{
		OrderID:     o.ID,
		OrderNumber: o.OrderNumber,
		UserID:      o.UserID,
		Restocked:   toEventItems(o.Items),
	})
	return o, nil
}

func (s *Service) GetOrder(ctx context.Context, userID, orderID int64) (*Order, error) {
	return s.Ledger.GetOrder(ctx, userID, orderID)
}

func (s *Service) ListOrders(ctx context.Context, userID int64, status string, offset, limit int) ([]Order, int, error) {
	return s.Ledger.ListOrders(ctx, userID, status, offset, limit)
}

func (s *Service) ListCart(ctx context.Context, userID int64) (*Cart, error) {
	return s.Cart.ListCart(ctx, userID)
}

func (s *Service) AddToCart(ctx context.Context, userID, bookID int64, quantity int) error {
	return s.Cart.AddToCart(ctx, userID, bookID, quantity)
}

func (s *Service) UpdateCartItem(ctx context.Context, userID, itemID int64, quantity int) error {
	return s.Cart.UpdateCartItem(ctx, userID, itemID, quantity)
}

func (s *Service) RemoveCartItem(ctx context.Context, userID, itemID int64) error {
	return s.Cart.RemoveCartItem(ctx, userID, itemID)
}

func (s *Service) ClearCart(ctx context.Context, userID int64) error {
	return s.Cart.ClearCart(ctx, userID)
}

func (s *Service) publish(ctx context.Context, topic, eventType string, orderID int64, payload any) {
	if s.Producer == nil {
		return
	}
	env := Envelope{
		EventID:       uuid.NewString(),
		EventType:     eventType,
		EventVersion:  1,
		OccurredAt:    time.Now().UTC(),
		Producer:      s.ServiceName,
		TraceID:       middleware.GetReqID(ctx),
		CorrelationID: strconv.FormatInt(orderID, 10),
		Payload:       kafkax.MustMarshal(payload),
	}
	s.Producer.Publish(topic, PartitionKey(orderID), kafkax.MustMarshal(env),
		kafkago.Header{Key: "x-event-type", Value: []byte(eventType)},
		kafkago.Header{Key: "x-event-version", Value: []byte("1")},
	)
}

func snapshotFor(o *Order) mail.OrderSnapshot {
	snap := mail.OrderSnapshot{
		OrderNumber:   o.OrderNumber,
		CreatedAt:     o.CreatedAt,
		PaymentMethod: o.PaymentMethod,
		TotalAmount:   o.TotalAmount,
	}
	for _, it := range o.Items {
		item := mail.ItemSnapshot{
			Quantity:   it.Quantity,
			UnitPrice:  it.UnitPrice,
			TotalPrice: it.TotalPrice,
		}
		if it.Book != nil {
			item.Title = it.Book.Title
			item.Author = it.Book.Author
			item.Publisher = it.Book.Publisher
			item.ISBN = it.Book.ISBN
		}
		snap.Items = append(snap.Items, item)
	}
	return snap
}
