package worker

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/huaxuan-books/bookstore/internal/orders"
	"github.com/huaxuan-books/bookstore/internal/redisx"
	"github.com/redis/go-redis/v9"
	kafkago "github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeRedis struct {
	data     map[string]string
	failKeys map[string]bool
}

func newFakeRedis() *fakeRedis {
	return &fakeRedis{data: map[string]string{}, failKeys: map[string]bool{}}
}

func (f *fakeRedis) Exists(ctx context.Context, keys ...string) *redis.IntCmd {
	var n int64
	for _, k := range keys {
		if _, ok := f.data[k]; ok {
			n++
		}
	}
	return redis.NewIntResult(n, nil)
}

func (f *fakeRedis) Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd {
	if f.failKeys[key] {
		return redis.NewStatusResult("", errors.New("redis down"))
	}
	switch v := value.(type) {
	case string:
		f.data[key] = v
	case []byte:
		f.data[key] = string(v)
	}
	return redis.NewStatusResult("OK", nil)
}

func paidEventMessage(t *testing.T, eventID, orderID string) kafkago.Message {
	t.Helper()
	env := orders.Envelope{
		EventID:       eventID,
		EventType:     orders.EventOrderPaid,
		EventVersion:  1,
		OccurredAt:    time.Now().UTC(),
		Producer:      "test-api",
		CorrelationID: orderID,
		Payload:       json.RawMessage(`{}`),
	}
	b, err := json.Marshal(env)
	require.NoError(t, err)
	return kafkago.Message{Value: b}
}

func TestHandleOrderEventDedupAfterCacheWrite(t *testing.T) {
	rdb := newFakeRedis()
	svc := &Service{Redis: rdb, ServiceName: "test-worker"}

	statusKey := fmt.Sprintf(redisx.KeyOrderStatus, int64(42))
	dedupKey := fmt.Sprintf(redisx.KeyDedup, "test-worker", "ev-1")
	msg := paidEventMessage(t, "ev-1", "42")

	// A failed cache write must not leave a dedup marker behind, or the
	// redelivered message would be skipped and the refresh lost.
	rdb.failKeys[statusKey] = true
	require.Error(t, svc.HandleOrderEvent(context.Background(), msg))
	_, marked := rdb.data[dedupKey]
	assert.False(t, marked)

	// Redelivery succeeds and marks the event processed.
	delete(rdb.failKeys, statusKey)
	require.NoError(t, svc.HandleOrderEvent(context.Background(), msg))
	assert.Contains(t, rdb.data[statusKey], `"paid"`)
	assert.Equal(t, "1", rdb.data[dedupKey])

	// A duplicate after the marker is a no-op.
	rdb.data[statusKey] = "sentinel"
	require.NoError(t, svc.HandleOrderEvent(context.Background(), msg))
	assert.Equal(t, "sentinel", rdb.data[statusKey])
}

func TestStatusForEvent(t *testing.T) {
	tests := []struct {
		event  string
		want   orders.Status
		wantOK bool
	}{
		{orders.EventOrderCreated, orders.StatusPending, true},
		{orders.EventOrderPaid, orders.StatusPaid, true},
		{orders.EventOrderCancelled, orders.StatusCancelled, true},
		{"SomethingElse", "", false},
		{"", "", false},
	}
	for _, tt := range tests {
		got, ok := statusForEvent(tt.event)
		if got != tt.want || ok != tt.wantOK {
			t.Errorf("statusForEvent(%q) = (%q, %v), want (%q, %v)", tt.event, got, ok, tt.want, tt.wantOK)
		}
	}
}
