package mail

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRenderConfirmation(t *testing.T) {
	snap := OrderSnapshot{
		OrderNumber:   "HX20260829120000AB12CD34",
		CreatedAt:     time.Date(2026, 8, 29, 12, 0, 0, 0, time.UTC),
		PaymentMethod: "alipay",
		TotalAmount:   decimal.RequireFromString("91.00"),
		Items: []ItemSnapshot{
			{Title: "Go in Action", Author: "W. Kennedy", Quantity: 3,
				UnitPrice:  decimal.RequireFromString("20.00"),
				TotalPrice: decimal.RequireFromString("60.00")},
			{Title: "SQL Basics", Author: "A. Writer", Quantity: 2,
				UnitPrice:  decimal.RequireFromString("15.50"),
				TotalPrice: decimal.RequireFromString("31.00")},
		},
	}

	html, err := renderConfirmation("reader", snap)
	require.NoError(t, err)

	assert.Contains(t, html, "HX20260829120000AB12CD34")
	assert.Contains(t, html, "reader")
	assert.Contains(t, html, "Go in Action")
	assert.Contains(t, html, "60.00")
	assert.Contains(t, html, "Total: 91.00")
	assert.Contains(t, html, "2026-08-29 12:00:00")
	assert.Contains(t, html, "alipay")
}

func TestRenderConfirmationEscapesHTML(t *testing.T) {
	snap := OrderSnapshot{
		OrderNumber: "HX1",
		TotalAmount: decimal.Zero,
		Items: []ItemSnapshot{
			{Title: "<script>alert(1)</script>", Quantity: 1,
				UnitPrice: decimal.Zero, TotalPrice: decimal.Zero},
		},
	}
	html, err := renderConfirmation("x", snap)
	require.NoError(t, err)
	assert.NotContains(t, html, "<script>alert(1)</script>")
}

func TestUnconfiguredMailerSkips(t *testing.T) {
	m := &SMTPMailer{}
	ok := m.SendOrderConfirmation(context.Background(), "a@b.c", "x", OrderSnapshot{OrderNumber: "HX1", TotalAmount: decimal.Zero})
	assert.False(t, ok)
}
