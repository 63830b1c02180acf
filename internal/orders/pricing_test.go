package orders

import (
	"errors"
	"testing"

	"github.com/huaxuan-books/bookstore/internal/catalog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func book(id int64, title, price string, stock int) *catalog.Book {
	return &catalog.Book{
		ID:            id,
		Title:         title,
		CurrentPrice:  decimal.RequireFromString(price),
		StockQuantity: stock,
		IsActive:      true,
	}
}

func TestPriceOrderExactTotals(t *testing.T) {
	books := map[int64]*catalog.Book{
		1: book(1, "Go in Action", "20.00", 10),
		2: book(2, "SQL Basics", "15.50", 5),
	}

	items, total, err := priceOrder([]ItemInput{
		{BookID: 1, Quantity: 3},
		{BookID: 2, Quantity: 2},
	}, books)
	require.NoError(t, err)
	require.Len(t, items, 2)

	assert.Equal(t, "60.00", items[0].TotalPrice.StringFixed(2))
	assert.Equal(t, "31.00", items[1].TotalPrice.StringFixed(2))
	assert.Equal(t, "91.00", total.StringFixed(2))
	assert.True(t, items[0].UnitPrice.Equal(decimal.RequireFromString("20.00")))
}

func TestPriceOrderNoFloatDrift(t *testing.T) {
	// 0.1 * 3 == exactly 0.3 in decimal
	books := map[int64]*catalog.Book{1: book(1, "Penny Book", "0.10", 100)}
	_, total, err := priceOrder([]ItemInput{{BookID: 1, Quantity: 3}}, books)
	require.NoError(t, err)
	assert.True(t, total.Equal(decimal.RequireFromString("0.3")))
}

func TestPriceOrderValidation(t *testing.T) {
	books := map[int64]*catalog.Book{
		1: book(1, "Available", "10.00", 2),
		3: book(3, "Inactive", "10.00", 2),
	}
	books[3].IsActive = false

	tests := []struct {
		name  string
		items []ItemInput
		want  error
	}{
		{"unknown book", []ItemInput{{BookID: 99, Quantity: 1}}, BookNotFoundErr(99)},
		{"inactive book", []ItemInput{{BookID: 3, Quantity: 1}}, BookNotFoundErr(3)},
		{"zero quantity", []ItemInput{{BookID: 1, Quantity: 0}}, ErrInvalidQuantity},
		{"negative quantity", []ItemInput{{BookID: 1, Quantity: -1}}, ErrInvalidQuantity},
		{"stock shortfall", []ItemInput{{BookID: 1, Quantity: 3}}, InsufficientStockErr("Available")},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := priceOrder(tt.items, books)
			require.Error(t, err)
			assert.True(t, errors.Is(err, tt.want), "got %v, want %v", err, tt.want)
		})
	}
}

func TestPriceOrderFailsFirstOffendingLine(t *testing.T) {
	books := map[int64]*catalog.Book{
		1: book(1, "First", "10.00", 1),
		2: book(2, "Second", "10.00", 1),
	}

	// Line 1 shortfall is reported even though line 2 has an unknown book.
	_, _, err := priceOrder([]ItemInput{
		{BookID: 1, Quantity: 5},
		{BookID: 99, Quantity: 1},
	}, books)
	assert.True(t, errors.Is(err, InsufficientStockErr("First")))

	_, _, err = priceOrder([]ItemInput{
		{BookID: 99, Quantity: 1},
		{BookID: 1, Quantity: 5},
	}, books)
	assert.True(t, errors.Is(err, BookNotFoundErr(99)))
}

func TestCodedErrorWrapping(t *testing.T) {
	cause := errors.New("connection reset")
	wrapped := ErrOrderCreateFailed.With(cause)

	assert.True(t, errors.Is(wrapped, ErrOrderCreateFailed))
	assert.ErrorIs(t, wrapped, cause)
	assert.Equal(t, "ORDER_CREATE_FAILED", wrapped.Code)
	assert.Contains(t, wrapped.Error(), "connection reset")
}
