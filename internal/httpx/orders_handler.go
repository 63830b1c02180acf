package httpx

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/huaxuan-books/bookstore/internal/auth"
	"github.com/huaxuan-books/bookstore/internal/orders"
	"github.com/huaxuan-books/bookstore/internal/redisx"
	"github.com/redis/go-redis/v9"
)

type OrdersHandler struct {
	Svc      *orders.Service
	Verifier *auth.Verifier
	Redis    *redis.Client
	PerPage  int
}

type createOrderReq struct {
	Items         []orders.ItemInput `json:"items"`
	Notes         string             `json:"notes"`
	PaymentMethod string             `json:"paymentMethod"`
}

type payOrderReq struct {
	PaymentMethod string `json:"paymentMethod"`
}

type cartAddReq struct {
	BookID   int64 `json:"bookId"`
	Quantity int   `json:"quantity"`
}

type cartUpdateReq struct {
	ItemID   int64 `json:"itemId"`
	Quantity int   `json:"quantity"`
}

func (h *OrdersHandler) Register(r *chi.Mux) {
	r.Route("/api/order", func(r chi.Router) {
		r.Use(RequireUser(h.Verifier))

		// Rute statis /cart didaftarkan sebelum /{id}.
		r.Get("/cart", h.listCart)
		r.Post("/cart/add", h.addToCart)
		r.Put("/cart/update", h.updateCartItem)
		r.Delete("/cart/remove", h.removeCartItem)
		r.Delete("/cart/clear", h.clearCart)

		r.Get("/", h.listOrders)
		r.Post("/", h.createOrder)
		r.Get("/{id}", h.getOrder)
		r.Put("/{id}/pay", h.payOrder)
		r.Put("/{id}/cancel", h.cancelOrder)
	})
}

func (h *OrdersHandler) createOrder(w http.ResponseWriter, r *http.Request) {
	var req createOrderReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		FailWith(w, http.StatusBadRequest, "MISSING_FIELDS", "invalid json")
		return
	}
	if req.PaymentMethod == "" {
		req.PaymentMethod = "alipay"
	}

	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	u := currentUser(r)
	o, emailSent, err := h.Svc.CreateOrder(ctx, u, orders.CreateOrderInput{
		Items:         req.Items,
		Notes:         req.Notes,
		PaymentMethod: req.PaymentMethod,
	})
	if err != nil {
		Fail(w, err)
		return
	}

	h.cacheStatus(ctx, o.ID, o.Status)

	OK(w, http.StatusOK, struct {
		*orders.Order
		EmailSent bool `json:"emailSent"`
	}{Order: o, EmailSent: emailSent}, "order created")
}

func (h *OrdersHandler) getOrder(w http.ResponseWriter, r *http.Request) {
	orderID, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		Fail(w, orders.ErrOrderNotFound)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	o, err := h.Svc.GetOrder(ctx, currentUser(r).ID, orderID)
	if err != nil {
		Fail(w, err)
		return
	}
	h.cacheStatus(ctx, o.ID, o.Status)
	OK(w, http.StatusOK, o, "")
}

func (h *OrdersHandler) listOrders(w http.ResponseWriter, r *http.Request) {
	page, perPage := pageParams(r, h.PerPage)
	status := r.URL.Query().Get("status")

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	list, total, err := h.Svc.ListOrders(ctx, currentUser(r).ID, status, (page-1)*perPage, perPage)
	if err != nil {
		Fail(w, err)
		return
	}
	OK(w, http.StatusOK, map[string]any{
		"orders":     list,
		"pagination": paginate(page, perPage, total),
	}, "")
}

func (h *OrdersHandler) payOrder(w http.ResponseWriter, r *http.Request) {
	orderID, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		Fail(w, orders.ErrOrderNotFound)
		return
	}
	var req payOrderReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.PaymentMethod == "" {
		FailWith(w, http.StatusBadRequest, "MISSING_FIELDS", "paymentMethod is required")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	o, err := h.Svc.PayOrder(ctx, currentUser(r).ID, orderID, req.PaymentMethod)
	if err != nil {
		Fail(w, err)
		return
	}

	h.cacheStatus(ctx, o.ID, o.Status)
	OK(w, http.StatusOK, o, "payment successful")
}

func (h *OrdersHandler) cancelOrder(w http.ResponseWriter, r *http.Request) {
	orderID, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		Fail(w, orders.ErrOrderNotFound)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	o, err := h.Svc.CancelOrder(ctx, currentUser(r).ID, orderID)
	if err != nil {
		Fail(w, err)
		return
	}

	h.cacheStatus(ctx, o.ID, o.Status)
	OK(w, http.StatusOK, o, "order cancelled")
}

func (h *OrdersHandler) listCart(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	cart, err := h.Svc.ListCart(ctx, currentUser(r).ID)
	if err != nil {
		Fail(w, err)
		return
	}
	OK(w, http.StatusOK, cart, "")
}

func (h *OrdersHandler) addToCart(w http.ResponseWriter, r *http.Request) {
	var req cartAddReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.BookID == 0 {
		FailWith(w, http.StatusBadRequest, "MISSING_FIELDS", "bookId is required")
		return
	}
	if req.Quantity == 0 {
		req.Quantity = 1
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	if err := h.Svc.AddToCart(ctx, currentUser(r).ID, req.BookID, req.Quantity); err != nil {
		Fail(w, err)
		return
	}
	OK(w, http.StatusOK, nil, "added to cart")
}

func (h *OrdersHandler) updateCartItem(w http.ResponseWriter, r *http.Request) {
	var req cartUpdateReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.ItemID == 0 {
		FailWith(w, http.StatusBadRequest, "MISSING_FIELDS", "itemId is required")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	if err := h.Svc.UpdateCartItem(ctx, currentUser(r).ID, req.ItemID, req.Quantity); err != nil {
		Fail(w, err)
		return
	}
	OK(w, http.StatusOK, nil, "cart updated")
}

func (h *OrdersHandler) removeCartItem(w http.ResponseWriter, r *http.Request) {
	itemID, err := strconv.ParseInt(r.URL.Query().Get("itemId"), 10, 64)
	if err != nil {
		Fail(w, orders.ErrCartItemNotFound)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	if err := h.Svc.RemoveCartItem(ctx, currentUser(r).ID, itemID); err != nil {
		Fail(w, err)
		return
	}
	OK(w, http.StatusOK, nil, "removed from cart")
}

func (h *OrdersHandler) clearCart(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	if err := h.Svc.ClearCart(ctx, currentUser(r).ID); err != nil {
		Fail(w, err)
		return
	}
	OK(w, http.StatusOK, nil, "cart cleared")
}

// cacheStatus warms the status cache so GETs can skip the DB; best effort.
func (h *OrdersHandler) cacheStatus(ctx context.Context, orderID int64, status orders.Status) {
	if h.Redis == nil {
		return
	}
	key := fmt.Sprintf(redisx.KeyOrderStatus, orderID)
	b, _ := json.Marshal(map[string]any{"status": status, "updatedAt": time.Now().UTC()})
	_ = h.Redis.Set(ctx, key, b, redisx.TTLStatusCache).Err()
}
