package models

import (
	"regexp"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestComputeOrderTotals(t *testing.T) {
	t.Run("derives total when not supplied", func(t *testing.T) {
		o := Order{
			Items:       []OrderItem{{Price: 10, Quantity: 2}, {Price: 5, Quantity: 1}},
			DeliveryFee: 2,
			Discount:    1,
		}
		ComputeOrderTotals(&o, false)

		assert.Equal(t, 20.0, o.Items[0].Subtotal)
		assert.Equal(t, 5.0, o.Items[1].Subtotal)
		assert.Equal(t, 26.0, o.TotalAmount)
	})

	t.Run("explicit total wins", func(t *testing.T) {
		o := Order{Items: []OrderItem{{Price: 10, Quantity: 3}}, TotalAmount: 99}
		ComputeOrderTotals(&o, true)

		assert.Equal(t, 30.0, o.Items[0].Subtotal)
		assert.Equal(t, 99.0, o.TotalAmount)
	})

	t.Run("ignores stale subtotals", func(t *testing.T) {
		o := Order{Items: []OrderItem{{Price: 4, Quantity: 2, Subtotal: 1000}}, TotalAmount: 1000}
		ComputeOrderTotals(&o, false)

		assert.Equal(t, 8.0, o.Items[0].Subtotal)
		assert.Equal(t, 8.0, o.TotalAmount)
	})

	t.Run("sums cents exactly", func(t *testing.T) {
		o := Order{Items: []OrderItem{{Price: 19.99, Quantity: 3}, {Price: 0.1, Quantity: 2}}, DeliveryFee: 7}
		ComputeOrderTotals(&o, false)

		assert.Equal(t, 59.97, o.Items[0].Subtotal)
		assert.Equal(t, 67.17, o.TotalAmount)
	})

	t.Run("no items leaves order untouched", func(t *testing.T) {
		o := Order{TotalAmount: 12}
		ComputeOrderTotals(&o, false)
		assert.Equal(t, 12.0, o.TotalAmount)
	})
}

func TestOrderUpdateStatus(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	o := Order{Status: OrderPending, PaymentStatus: PaymentPending, CreatedAt: now.Add(-5*time.Hour - time.Minute)}
	o.UpdateStatus(OrderConfirmed, now)
	assert.Equal(t, OrderConfirmed, o.Status)
	assert.Nil(t, o.ActualDeliveryTime)
	assert.Equal(t, PaymentPending, o.PaymentStatus)
	assert.False(t, o.IsTerminal())

	o.UpdateStatus(OrderDelivered, now)
	require.NotNil(t, o.ActualDeliveryTime)
	assert.Equal(t, now, *o.ActualDeliveryTime)
	assert.Equal(t, PaymentPaid, o.PaymentStatus)
	assert.True(t, o.IsTerminal())

	hours, ok := o.DeliveryDuration()
	require.True(t, ok)
	assert.Equal(t, 6, hours)
}

func TestIsValidOrderStatus(t *testing.T) {
	for _, s := range OrderStatuses {
		assert.True(t, IsValidOrderStatus(s), s)
	}
	assert.False(t, IsValidOrderStatus("shipped"))
	assert.False(t, IsValidOrderStatus(""))
}

func TestGenerateOrderNumber(t *testing.T) {
	now := time.UnixMilli(1700000123456)

	got := GenerateOrderNumber(now, func(int) int { return 7 })
	assert.Equal(t, "CHB-123456007", got)

	pattern := regexp.MustCompile(`^CHB-\d{9}$`)
	got = GenerateOrderNumber(time.Now(), func(n int) int { return n - 1 })
	assert.Regexp(t, pattern, got)
}

func TestOrderAgeDays(t *testing.T) {
	created := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	o := Order{CreatedAt: created}
	assert.Equal(t, 2, o.AgeDays(created.Add(25*time.Hour)))
}
