// controllers/order.go
package controllers

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/fehmi19/cheebo/middleware"
	"github.com/fehmi19/cheebo/models"
	"github.com/fehmi19/cheebo/repository"
	"github.com/fehmi19/cheebo/utils"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// OrderController handles order-related requests
type OrderController struct {
	orders   repository.OrderRepository
	products repository.ProductRepository
	users    repository.UserRepository
	mailer   Mailer
}

// NewOrderController creates a new OrderController
func NewOrderController(orders repository.OrderRepository, products repository.ProductRepository, users repository.UserRepository, mailer Mailer) *OrderController {
	return &OrderController{orders: orders, products: products, users: users, mailer: mailer}
}

type orderItemRequest struct {
	Product  string `json:"product" validate:"required"`
	Quantity int    `json:"quantity" validate:"required,min=1"`
	Size     *int   `json:"size"`
}

type createOrderRequest struct {
	Items           []orderItemRequest      `json:"items" validate:"required,min=1,dive"`
	ShippingAddress *models.ShippingAddress `json:"shippingAddress" validate:"required"`
	PaymentMethod   models.PaymentMethod    `json:"paymentMethod" validate:"omitempty,oneof=cash_on_delivery credit_card bank_transfer mobile_payment"`
	TotalAmount     *float64                `json:"totalAmount" validate:"omitempty,min=0"`
	DeliveryFee     float64                 `json:"deliveryFee" validate:"min=0"`
	Discount        float64                 `json:"discount" validate:"min=0"`
	Note            string                  `json:"note" validate:"max=500"`
}

// CreateOrder places an order for the authenticated user. Stock is reserved
// item by item and released again if a later step fails.
func (oc *OrderController) CreateOrder(w http.ResponseWriter, r *http.Request) {
	user, err := currentUser(r)
	if err != nil {
		fail(w, r, err)
		return
	}
	var req createOrderRequest
	if err := decodeJSON(r, &req); err != nil {
		fail(w, r, err)
		return
	}

	ctx, cancel := requestContext(r)
	defer cancel()

	now := time.Now().UTC()
	items := make([]models.OrderItem, 0, len(req.Items))
	for _, it := range req.Items {
		item, err := oc.reserve(ctx, it, now)
		if err != nil {
			oc.release(ctx, r, items)
			fail(w, r, err)
			return
		}
		items = append(items, item)
	}

	order := models.Order{
		User:            user.ID,
		Items:           items,
		ShippingAddress: *req.ShippingAddress,
		PaymentMethod:   req.PaymentMethod,
		PaymentStatus:   models.PaymentPending,
		Status:          models.OrderPending,
		DeliveryFee:     req.DeliveryFee,
		Discount:        req.Discount,
		Note:            req.Note,
	}
	if order.PaymentMethod == "" {
		order.PaymentMethod = models.PaymentCashOnDelivery
	}
	explicitTotal := req.TotalAmount != nil && *req.TotalAmount > 0
	if explicitTotal {
		order.TotalAmount = *req.TotalAmount
	}
	models.ComputeOrderTotals(&order, explicitTotal)
	if order.TotalAmount < 0 {
		oc.release(ctx, r, items)
		fail(w, r, utils.Validation("Total amount cannot be negative"))
		return
	}

	if err := oc.orders.Create(ctx, &order); err != nil {
		oc.release(ctx, r, items)
		fail(w, r, err)
		return
	}

	if err := oc.mailer.SendOrderConfirmationEmail(user.Email, order); err != nil {
		middleware.Logger(r).Warn().Err(err).Str("order", order.OrderNumber).Msg("order confirmation not sent")
	}
	utils.WriteData(w, http.StatusCreated, order, "Order created successfully")
}

// reserve checks availability, snapshots name and price, and takes the
// quantity out of stock.
func (oc *OrderController) reserve(ctx context.Context, it orderItemRequest, now time.Time) (models.OrderItem, error) {
	productID, err := primitive.ObjectIDFromHex(it.Product)
	if err != nil {
		return models.OrderItem{}, utils.Validation("Invalid product ID")
	}

	var item models.OrderItem
	err = retry(ctx, func(ctx context.Context) error {
		product, err := oc.products.FindByID(ctx, productID)
		if err != nil {
			return err
		}
		if !product.CheckAvailability(it.Quantity) {
			return utils.Validation(fmt.Sprintf("Product %s is not available in the requested quantity", product.Name))
		}
		item = models.OrderItem{
			Product:  product.ID,
			Name:     product.Name,
			Size:     product.SizeName(it.Size),
			Price:    product.FinalPrice(it.Size, now),
			Quantity: it.Quantity,
		}
		if err := product.UpdateStock(it.Quantity, models.StockSubtract); err != nil {
			return err
		}
		product.OrderCount += it.Quantity
		return oc.products.Update(ctx, product)
	})
	if err != nil {
		return models.OrderItem{}, storeErr(err, "Product not found: "+it.Product)
	}
	return item, nil
}

// release puts reserved quantities back in stock. Failures are logged since
// the request is already failing.
func (oc *OrderController) release(ctx context.Context, r *http.Request, items []models.OrderItem) {
	for _, item := range items {
		err := retry(ctx, func(ctx context.Context) error {
			product, err := oc.products.FindByID(ctx, item.Product)
			if err != nil {
				return err
			}
			if err := product.UpdateStock(item.Quantity, models.StockAdd); err != nil {
				return err
			}
			product.OrderCount = max(0, product.OrderCount-item.Quantity)
			return oc.products.Update(ctx, product)
		})
		if err != nil {
			middleware.Logger(r).Error().Err(err).Str("product", item.Product.Hex()).Msg("stock not released")
		}
	}
}

// restock returns a cancelled order's items to stock and takes them out of
// the popularity count.
func (oc *OrderController) restock(ctx context.Context, r *http.Request, order *models.Order) {
	for _, item := range order.Items {
		err := retry(ctx, func(ctx context.Context) error {
			product, err := oc.products.FindByID(ctx, item.Product)
			if err != nil {
				return err
			}
			if err := product.UpdateStock(item.Quantity, models.StockAdd); err != nil {
				return err
			}
			product.OrderCount = max(0, product.OrderCount-item.Quantity)
			return oc.products.Update(ctx, product)
		})
		if err != nil {
			middleware.Logger(r).Error().Err(err).
				Str("order", order.OrderNumber).
				Str("product", item.Product.Hex()).
				Msg("cancelled order not restocked")
		}
	}
}

// GetOrders lists every order, newest first
func (oc *OrderController) GetOrders(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := requestContext(r)
	defer cancel()

	orders, err := oc.orders.List(ctx)
	if err != nil {
		fail(w, r, err)
		return
	}
	utils.WriteList(w, orders, len(orders))
}

// GetOrderStats summarises orders and delivered revenue
func (oc *OrderController) GetOrderStats(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := requestContext(r)
	defer cancel()

	stats, err := oc.orders.Stats(ctx)
	if err != nil {
		fail(w, r, err)
		return
	}
	utils.WriteData(w, http.StatusOK, stats, "")
}

// GetUserOrders lists one user's orders
func (oc *OrderController) GetUserOrders(w http.ResponseWriter, r *http.Request) {
	caller, err := currentUser(r)
	if err != nil {
		fail(w, r, err)
		return
	}
	userID, err := pathID(r, "userId", "user")
	if err != nil {
		fail(w, r, err)
		return
	}
	if err := selfOrAdmin(caller, userID); err != nil {
		fail(w, r, err)
		return
	}

	ctx, cancel := requestContext(r)
	defer cancel()

	orders, err := oc.orders.ListByUser(ctx, userID)
	if err != nil {
		fail(w, r, err)
		return
	}
	utils.WriteList(w, orders, len(orders))
}

// GetOrder returns one order to its owner, staff or an admin
func (oc *OrderController) GetOrder(w http.ResponseWriter, r *http.Request) {
	caller, err := currentUser(r)
	if err != nil {
		fail(w, r, err)
		return
	}
	id, err := pathID(r, "id", "order")
	if err != nil {
		fail(w, r, err)
		return
	}

	ctx, cancel := requestContext(r)
	defer cancel()

	order, err := oc.orders.FindByID(ctx, id)
	if err != nil {
		fail(w, r, storeErr(err, "Order not found"))
		return
	}
	if order.User != caller.ID && !caller.HasRole(models.RoleAdmin, models.RoleDelivery) {
		fail(w, r, utils.Forbidden("Access denied"))
		return
	}
	utils.WriteData(w, http.StatusOK, order, "")
}

type orderStatusRequest struct {
	Status       models.OrderStatus `json:"status"`
	CancelReason string             `json:"cancelReason" validate:"max=500"`
}

// UpdateOrderStatus moves an order through its lifecycle. Delivered and
// cancelled orders are final.
func (oc *OrderController) UpdateOrderStatus(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id", "order")
	if err != nil {
		fail(w, r, err)
		return
	}
	var req orderStatusRequest
	if err := decodeJSON(r, &req); err != nil {
		fail(w, r, err)
		return
	}
	if !models.IsValidOrderStatus(req.Status) {
		fail(w, r, utils.Validation("Invalid status"))
		return
	}

	ctx, cancel := requestContext(r)
	defer cancel()

	var updated *models.Order
	err = retry(ctx, func(ctx context.Context) error {
		order, err := oc.orders.FindByID(ctx, id)
		if err != nil {
			return err
		}
		if order.IsTerminal() {
			return utils.Validation(fmt.Sprintf("Cannot change the status of a %s order", order.Status))
		}
		order.UpdateStatus(req.Status, time.Now().UTC())
		if req.Status == models.OrderCancelled {
			order.CancelReason = req.CancelReason
		}
		if err := oc.orders.Update(ctx, order); err != nil {
			return err
		}
		updated = order
		return nil
	})
	if err != nil {
		fail(w, r, storeErr(err, "Order not found"))
		return
	}

	switch updated.Status {
	case models.OrderCancelled:
		oc.restock(ctx, r, updated)
	case models.OrderDelivered:
		oc.recordDelivery(ctx, r, updated)
	}
	utils.WriteData(w, http.StatusOK, updated, fmt.Sprintf("Order status updated to %s", updated.Status))
}

// recordDelivery credits the order to its user's stats and loyalty balance
// and tells them it arrived.
func (oc *OrderController) recordDelivery(ctx context.Context, r *http.Request, order *models.Order) {
	var customer *models.User
	err := retry(ctx, func(ctx context.Context) error {
		user, err := oc.users.FindByID(ctx, order.User)
		if err != nil {
			return err
		}
		user.UpdateOrderStats(order.TotalAmount)
		if err := oc.users.Update(ctx, user); err != nil {
			return err
		}
		customer = user
		return nil
	})
	if err != nil {
		middleware.Logger(r).Error().Err(err).Str("order", order.OrderNumber).Msg("order stats not recorded")
		return
	}
	if err := oc.mailer.SendOrderStatusEmail(customer.Email, customer.Name, *order); err != nil {
		middleware.Logger(r).Warn().Err(err).Str("order", order.OrderNumber).Msg("status email not sent")
	}
}

type updateOrderRequest struct {
	Note                  *string                 `json:"note" validate:"omitempty,max=500"`
	ShippingAddress       *models.ShippingAddress `json:"shippingAddress"`
	PaymentStatus         *models.PaymentStatus   `json:"paymentStatus"`
	TrackingNumber        *string                 `json:"trackingNumber"`
	EstimatedDeliveryTime *time.Time              `json:"estimatedDeliveryTime"`
}

// UpdateOrder edits the administrative fields of an order
func (oc *OrderController) UpdateOrder(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id", "order")
	if err != nil {
		fail(w, r, err)
		return
	}
	var req updateOrderRequest
	if err := decodeJSON(r, &req); err != nil {
		fail(w, r, err)
		return
	}
	if req.PaymentStatus != nil && !models.IsValidPaymentStatus(*req.PaymentStatus) {
		fail(w, r, utils.Validation("Invalid payment status"))
		return
	}

	ctx, cancel := requestContext(r)
	defer cancel()

	var updated *models.Order
	err = retry(ctx, func(ctx context.Context) error {
		order, err := oc.orders.FindByID(ctx, id)
		if err != nil {
			return err
		}
		if req.Note != nil {
			order.Note = *req.Note
		}
		if req.ShippingAddress != nil {
			order.ShippingAddress = *req.ShippingAddress
		}
		if req.PaymentStatus != nil {
			order.PaymentStatus = *req.PaymentStatus
		}
		if req.TrackingNumber != nil {
			order.TrackingNumber = *req.TrackingNumber
		}
		if req.EstimatedDeliveryTime != nil {
			order.EstimatedDeliveryTime = req.EstimatedDeliveryTime
		}
		if err := oc.orders.Update(ctx, order); err != nil {
			return err
		}
		updated = order
		return nil
	})
	if err != nil {
		fail(w, r, storeErr(err, "Order not found"))
		return
	}
	utils.WriteData(w, http.StatusOK, updated, "Order updated successfully")
}

// DeleteOrder removes an order without touching stock
func (oc *OrderController) DeleteOrder(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id", "order")
	if err != nil {
		fail(w, r, err)
		return
	}

	ctx, cancel := requestContext(r)
	defer cancel()

	if err := oc.orders.Delete(ctx, id); err != nil {
		fail(w, r, storeErr(err, "Order not found"))
		return
	}
	utils.WriteSuccess(w, http.StatusOK, utils.Response{Message: "Order deleted successfully"})
}
