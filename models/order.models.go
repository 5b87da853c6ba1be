package models

import (
	"fmt"
	"math"
	"strconv"
	"time"

	"github.com/shopspring/decimal"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// OrderStatus is the fulfilment state of an order
type OrderStatus string

const (
	OrderPending        OrderStatus = "pending"
	OrderConfirmed      OrderStatus = "confirmed"
	OrderPreparing      OrderStatus = "preparing"
	OrderOutForDelivery OrderStatus = "out_for_delivery"
	OrderDelivered      OrderStatus = "delivered"
	OrderCancelled      OrderStatus = "cancelled"
)

// OrderStatuses lists every accepted status in lifecycle order
var OrderStatuses = []OrderStatus{
	OrderPending, OrderConfirmed, OrderPreparing, OrderOutForDelivery, OrderDelivered, OrderCancelled,
}

// IsValidOrderStatus reports whether s is one of OrderStatuses
func IsValidOrderStatus(s OrderStatus) bool {
	for _, v := range OrderStatuses {
		if v == s {
			return true
		}
	}
	return false
}

// OrderItem is one line of an order. Name and Price are snapshots taken when
// the order was placed.
type OrderItem struct {
	Product  primitive.ObjectID `bson:"product" json:"product"`
	Name     string             `bson:"name" json:"name"`
	Size     string             `bson:"size,omitempty" json:"size,omitempty"`
	Price    float64            `bson:"price" json:"price"`
	Quantity int                `bson:"quantity" json:"quantity"`
	Subtotal float64            `bson:"subtotal" json:"subtotal"`
}

// ShippingAddress is where an order is delivered
type ShippingAddress struct {
	FullName string `bson:"fullName" json:"fullName" validate:"required"`
	Phone    string `bson:"phone" json:"phone" validate:"required"`
	Street   string `bson:"street" json:"street" validate:"required"`
	City     string `bson:"city" json:"city" validate:"required"`
	State    string `bson:"state" json:"state" validate:"required"`
	ZipCode  string `bson:"zipCode" json:"zipCode" validate:"required"`
	Country  string `bson:"country" json:"country"`
}

// OrderReview is a customer rating of a completed order
type OrderReview struct {
	Rating    int       `bson:"rating" json:"rating"`
	Comment   string    `bson:"comment,omitempty" json:"comment,omitempty"`
	CreatedAt time.Time `bson:"createdAt" json:"createdAt"`
}

// Order represents a user's order
type Order struct {
	ID                    primitive.ObjectID `bson:"_id,omitempty" json:"id,omitempty"`
	OrderNumber           string             `bson:"orderNumber" json:"orderNumber"`
	User                  primitive.ObjectID `bson:"user" json:"user"`
	Items                 []OrderItem        `bson:"items" json:"items"`
	ShippingAddress       ShippingAddress    `bson:"shippingAddress" json:"shippingAddress"`
	PaymentMethod         PaymentMethod      `bson:"paymentMethod" json:"paymentMethod"`
	PaymentStatus         PaymentStatus      `bson:"paymentStatus" json:"paymentStatus"`
	Status                OrderStatus        `bson:"status" json:"status"`
	TotalAmount           float64            `bson:"totalAmount" json:"totalAmount"`
	DeliveryFee           float64            `bson:"deliveryFee" json:"deliveryFee"`
	Discount              float64            `bson:"discount" json:"discount"`
	Note                  string             `bson:"note,omitempty" json:"note,omitempty"`
	EstimatedDeliveryTime *time.Time         `bson:"estimatedDeliveryTime,omitempty" json:"estimatedDeliveryTime,omitempty"`
	ActualDeliveryTime    *time.Time         `bson:"actualDeliveryTime,omitempty" json:"actualDeliveryTime,omitempty"`
	TrackingNumber        string             `bson:"trackingNumber,omitempty" json:"trackingNumber,omitempty"`
	CancelReason          string             `bson:"cancelReason,omitempty" json:"cancelReason,omitempty"`
	Reviews               []OrderReview      `bson:"reviews,omitempty" json:"reviews,omitempty"`
	CreatedAt             time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt             time.Time          `bson:"updatedAt" json:"updatedAt"`
	Version               int64              `bson:"version" json:"-"`
}

// ComputeOrderTotals sets each item's subtotal and, unless the caller supplied
// an explicit total, the order total. Previously stored values are ignored.
// Amounts are rounded to 2 decimal places.
func ComputeOrderTotals(o *Order, explicitTotal bool) {
	if len(o.Items) == 0 {
		return
	}
	itemsTotal := decimal.Zero
	for i := range o.Items {
		subtotal := decimal.NewFromFloat(o.Items[i].Price).Mul(decimal.NewFromInt(int64(o.Items[i].Quantity)))
		o.Items[i].Subtotal = subtotal.Round(2).InexactFloat64()
		itemsTotal = itemsTotal.Add(subtotal)
	}
	if !explicitTotal {
		total := itemsTotal.Add(decimal.NewFromFloat(o.DeliveryFee)).Sub(decimal.NewFromFloat(o.Discount))
		o.TotalAmount = total.Round(2).InexactFloat64()
	}
}

// IsTerminal reports whether the order can no longer change status
func (o *Order) IsTerminal() bool {
	return o.Status == OrderDelivered || o.Status == OrderCancelled
}

// UpdateStatus moves the order to status. Delivery stamps the delivery time
// and marks the order paid.
func (o *Order) UpdateStatus(status OrderStatus, now time.Time) {
	o.Status = status
	if status == OrderDelivered {
		t := now
		o.ActualDeliveryTime = &t
		o.PaymentStatus = PaymentPaid
	}
}

// DeliveryDuration returns the hours between placement and delivery, rounded up
func (o *Order) DeliveryDuration() (int, bool) {
	if o.ActualDeliveryTime == nil || o.CreatedAt.IsZero() {
		return 0, false
	}
	return int(math.Ceil(o.ActualDeliveryTime.Sub(o.CreatedAt).Hours())), true
}

// AgeDays returns the order age in days, rounded up
func (o *Order) AgeDays(now time.Time) int {
	return int(math.Ceil(now.Sub(o.CreatedAt).Hours() / 24))
}

// GenerateOrderNumber builds "CHB-" followed by the last six digits of the
// millisecond timestamp and a zero-padded three digit random suffix.
// randIntN must return a value in [0, n).
func GenerateOrderNumber(now time.Time, randIntN func(n int) int) string {
	ts := strconv.FormatInt(now.UnixMilli(), 10)
	if len(ts) > 6 {
		ts = ts[len(ts)-6:]
	}
	return fmt.Sprintf("CHB-%s%03d", ts, randIntN(1000))
}
