package worker

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strconv"
	"time"

	kafkax "github.com/huaxuan-books/bookstore/internal/kafka"
	"github.com/huaxuan-books/bookstore/internal/orders"
	"github.com/huaxuan-books/bookstore/internal/redisx"
	kafkago "github.com/segmentio/kafka-go"
)

// CartPurger is the slice of the cart store the worker needs.
type CartPurger interface {
	PurgeInvalid(ctx context.Context) (int64, error)
}

// Service keeps the Redis order-status cache in step with the event stream
// and periodically sweeps delisted books out of carts. It never writes the
// ledger; the API already committed before any event exists.
type Service struct {
	Redis       redisx.Cmds
	Cart        CartPurger
	ServiceName string
}

// HandleOrderEvent: dipasang sebagai handler consumer untuk ketiga topic.
func (s *Service) HandleOrderEvent(ctx context.Context, m kafkago.Message) error {
	var env orders.Envelope
	if err := json.Unmarshal(m.Value, &env); err != nil {
		return err
	}

	status, ok := statusForEvent(env.EventType)
	if !ok {
		return nil
	} // ignore

	// dedup via Redis (pakai event_id)
	dkey := fmt.Sprintf(redisx.KeyDedup, s.ServiceName, env.EventID)
	exists, _ := redisx.Exists(ctx, s.Redis, dkey)
	if exists {
		return nil
	}

	orderID, err := strconv.ParseInt(env.CorrelationID, 10, 64)
	if err != nil {
		log.Printf("bad correlation_id %q event=%s", env.CorrelationID, env.EventID)
		return nil
	}

	// Surface failed confirmation emails for ops follow-up.
	if env.EventType == orders.EventOrderCreated {
		if p, err := kafkax.UnwrapPayload[orders.OrderCreatedPayload](env.Payload); err == nil && !p.EmailSent {
			log.Printf("order %s created without confirmation email", p.OrderNumber)
		}
	}

	key := fmt.Sprintf(redisx.KeyOrderStatus, orderID)
	body, _ := json.Marshal(map[string]any{"status": status, "updatedAt": env.OccurredAt})
	if err := s.Redis.Set(ctx, key, body, redisx.TTLStatusCache).Err(); err != nil {
		return err
	}

	// Marker ditulis setelah cache sukses; kalau cache gagal, redelivery
	// masih memproses event ini.
	_ = s.Redis.Set(ctx, dkey, "1", redisx.TTLDedup).Err()
	return nil
}

// statusForEvent maps stream events onto the cached order status.
func statusForEvent(eventType string) (orders.Status, bool) {
	switch eventType {
	case orders.EventOrderCreated:
		return orders.StatusPending, true
	case orders.EventOrderPaid:
		return orders.StatusPaid, true
	case orders.EventOrderCancelled:
		return orders.StatusCancelled, true
	default:
		return "", false
	}
}

// RunCartPurge sweeps until the context is cancelled.
func (s *Service) RunCartPurge(ctx context.Context, every time.Duration) {
	t := time.NewTicker(every)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			n, err := s.Cart.PurgeInvalid(ctx)
			if err != nil {
				log.Printf("cart purge: %v", err)
				continue
			}
			if n > 0 {
				log.Printf("cart purge: removed %d stale item(s)", n)
			}
		}
	}
}
