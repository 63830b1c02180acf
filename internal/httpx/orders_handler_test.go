package httpx

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/huaxuan-books/bookstore/internal/auth"
	"github.com/huaxuan-books/bookstore/internal/orders"
	"github.com/huaxuan-books/bookstore/internal/users"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testSecret = []byte("test-secret")

type stubUsers struct{ u *users.User }

func (s *stubUsers) GetByID(ctx context.Context, id int64) (*users.User, error) {
	if s.u != nil && s.u.ID == id {
		return s.u, nil
	}
	return nil, users.ErrNotFound
}

// stubLedger returns canned outcomes; transactional behaviour is covered in
// the orders package.
type stubLedger struct {
	order *orders.Order
	err   error
}

func (s *stubLedger) CreateOrder(ctx context.Context, userID int64, in orders.CreateOrderInput) (*orders.Order, error) {
	return s.order, s.err
}
func (s *stubLedger) GetOrder(ctx context.Context, userID, orderID int64) (*orders.Order, error) {
	return s.order, s.err
}
func (s *stubLedger) ListOrders(ctx context.Context, userID int64, status string, offset, limit int) ([]orders.Order, int, error) {
	if s.err != nil {
		return nil, 0, s.err
	}
	return []orders.Order{*s.order}, 1, nil
}
func (s *stubLedger) PayOrder(ctx context.Context, userID, orderID int64, paymentMethod string) (*orders.Order, error) {
	return s.order, s.err
}
func (s *stubLedger) CancelOrder(ctx context.Context, userID, orderID int64) (*orders.Order, error) {
	return s.order, s.err
}

// stubCart is always empty; every op behaves as the contract demands on an
// empty cart.
type stubCart struct{ cleared int }

func (s *stubCart) ListCart(ctx context.Context, userID int64) (*orders.Cart, error) {
	return &orders.Cart{Items: []orders.CartEntry{}}, nil
}
func (s *stubCart) AddToCart(ctx context.Context, userID, bookID int64, quantity int) error {
	return nil
}
func (s *stubCart) UpdateCartItem(ctx context.Context, userID, itemID int64, quantity int) error {
	return orders.ErrCartItemNotFound
}
func (s *stubCart) RemoveCartItem(ctx context.Context, userID, itemID int64) error {
	return orders.ErrCartItemNotFound
}
func (s *stubCart) ClearCart(ctx context.Context, userID int64) error {
	s.cleared++
	return nil
}
func (s *stubCart) PurgeInvalid(ctx context.Context) (int64, error) { return 0, nil }

func signToken(t *testing.T, userID string) string {
	t.Helper()
	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": userID,
		"exp": time.Now().Add(time.Hour).Unix(),
	})
	s, err := tok.SignedString(testSecret)
	require.NoError(t, err)
	return s
}

func newTestHandler(ledger orders.Ledger) *OrdersHandler {
	svc := &orders.Service{Ledger: ledger, Cart: &stubCart{}, ServiceName: "test"}
	v := &auth.Verifier{
		Secret: testSecret,
		Users:  &stubUsers{u: &users.User{ID: 7, Username: "reader", Email: "r@example.com", IsActive: true}},
	}
	return &OrdersHandler{Svc: svc, Verifier: v, PerPage: 10}
}

func doRequest(h *OrdersHandler, method, path, token, body string) *httptest.ResponseRecorder {
	r := NewRouter()
	h.Register(r)
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestCreateOrderEndpoint(t *testing.T) {
	ledger := &stubLedger{order: &orders.Order{
		ID:          1,
		OrderNumber: "HX20260829120000AB12CD34",
		TotalAmount: decimal.RequireFromString("60.00"),
		Status:      orders.StatusPending,
	}}
	h := newTestHandler(ledger)

	w := doRequest(h, "POST", "/api/order", signToken(t, "7"),
		`{"items":[{"bookId":1,"quantity":3}]}`)
	require.Equal(t, http.StatusOK, w.Code)

	var env Envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
	assert.True(t, env.Success)
	assert.Empty(t, env.ErrorCode)

	data, ok := env.Data.(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "HX20260829120000AB12CD34", data["orderNumber"])
	assert.Equal(t, false, data["emailSent"])
}

func TestCreateOrderValidationEnvelope(t *testing.T) {
	h := newTestHandler(&stubLedger{})

	w := doRequest(h, "POST", "/api/order", signToken(t, "7"), `{"items":[]}`)
	require.Equal(t, http.StatusBadRequest, w.Code)

	var env Envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
	assert.False(t, env.Success)
	assert.Equal(t, "EMPTY_ORDER_ITEMS", env.ErrorCode)
}

func TestAuthRequired(t *testing.T) {
	h := newTestHandler(&stubLedger{})

	for _, token := range []string{"", "garbage", signToken(t, "999")} {
		w := doRequest(h, "GET", "/api/order/cart", token, "")
		assert.Equal(t, http.StatusUnauthorized, w.Code, "token=%q", token)

		var env Envelope
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
		assert.Equal(t, "AUTH_FAILED", env.ErrorCode)
	}
}

func TestPayRequiresPaymentMethod(t *testing.T) {
	h := newTestHandler(&stubLedger{order: &orders.Order{ID: 1}})

	w := doRequest(h, "PUT", "/api/order/1/pay", signToken(t, "7"), `{}`)
	require.Equal(t, http.StatusBadRequest, w.Code)

	var env Envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
	assert.Equal(t, "MISSING_FIELDS", env.ErrorCode)
}

func TestClearEmptyCartSucceeds(t *testing.T) {
	cart := &stubCart{}
	h := newTestHandler(&stubLedger{})
	h.Svc.Cart = cart

	w := doRequest(h, "DELETE", "/api/order/cart/clear", signToken(t, "7"), "")
	require.Equal(t, http.StatusOK, w.Code)

	var env Envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
	assert.True(t, env.Success)
	assert.Empty(t, env.ErrorCode)
	assert.Equal(t, 1, cart.cleared)

	// Clearing again is still a success, not an error.
	w = doRequest(h, "DELETE", "/api/order/cart/clear", signToken(t, "7"), "")
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestOrderNotFoundEnvelope(t *testing.T) {
	h := newTestHandler(&stubLedger{err: orders.ErrOrderNotFound})

	w := doRequest(h, "GET", "/api/order/42", signToken(t, "7"), "")
	require.Equal(t, http.StatusNotFound, w.Code)

	var env Envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
	assert.Equal(t, "ORDER_NOT_FOUND", env.ErrorCode)
}
