package orders

import (
	"github.com/huaxuan-books/bookstore/internal/catalog"
	"github.com/shopspring/decimal"
)

// priceOrder validates every requested line against the supplied book rows
// (already locked by the caller) and prices the order. It fails on the first
// offending line, in request order, before any mutation happens: absent or
// inactive book, non-positive quantity, then stock shortfall. Totals are
// exact decimal sums of unit_price * quantity.
//
// Note: Repo.CreateOrder resolves absent books during its lock phase, before
// calling this, so a request mixing an early stock-short line with a later
// unknown book reports the unknown book there. The per-line ordering here
// governs quantity and stock failures, and any caller passing a pre-built
// book map.
//
// A book repeated across lines is validated per line; the combined decrement
// is backstopped by the stock_quantity >= 0 constraint.
func priceOrder(items []ItemInput, books map[int64]*catalog.Book) ([]OrderItem, decimal.Decimal, error) {
	out := make([]OrderItem, 0, len(items))
	total := decimal.Zero

	for _, it := range items {
		b := books[it.BookID]
		if b == nil || !b.IsActive {
			return nil, decimal.Zero, BookNotFoundErr(it.BookID)
		}
		if it.Quantity <= 0 {
			return nil, decimal.Zero, ErrInvalidQuantity
		}
		if b.StockQuantity < it.Quantity {
			return nil, decimal.Zero, InsufficientStockErr(b.Title)
		}

		line := b.CurrentPrice.Mul(decimal.NewFromInt(int64(it.Quantity)))
		total = total.Add(line)
		out = append(out, OrderItem{
			BookID:     b.ID,
			Quantity:   it.Quantity,
			UnitPrice:  b.CurrentPrice,
			TotalPrice: line,
			Book:       b,
		})
	}
	return out, total, nil
}
