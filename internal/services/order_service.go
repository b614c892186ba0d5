package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"time"

	"shopsmart/internal/models"
	"shopsmart/internal/repositories"
	"shopsmart/pkg/payment"
	"shopsmart/pkg/rabbitmq"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// OrderService orchestrates checkout, the order status machine and payment
// webhook handling.
type OrderService struct {
	orderRepo      repositories.OrderRepository
	productRepo    repositories.ProductRepository
	cartRepo       repositories.CartRepository
	gateway        payment.Gateway  // nil when card payments are not configured
	mqClient       *rabbitmq.Client // nil when event publishing is not configured
	paymentTimeout time.Duration
}

// NewOrderService creates a new OrderService. gateway and mqClient may be
// nil; card checkouts then fail with ErrInvalidPaymentMethod and event
// publication is skipped.
func NewOrderService(
	orderRepo repositories.OrderRepository,
	productRepo repositories.ProductRepository,
	cartRepo repositories.CartRepository,
	gateway payment.Gateway,
	mqClient *rabbitmq.Client,
	paymentTimeout time.Duration,
) *OrderService {
	if paymentTimeout <= 0 {
		paymentTimeout = 30 * time.Second
	}
	return &OrderService{
		orderRepo:      orderRepo,
		productRepo:    productRepo,
		cartRepo:       cartRepo,
		gateway:        gateway,
		mqClient:       mqClient,
		paymentTimeout: paymentTimeout,
	}
}

// CheckoutResult is what a successful checkout hands back to the caller.
// ClientSecret is empty for cash-on-delivery orders.
type CheckoutResult struct {
	Order        *models.Order
	ClientSecret string
}

// decremented tracks stock already committed so a later failure can restock
// it.
type decremented struct {
	productID string
	quantity  int
}

// Checkout converts the user's cart into an order.
//
// Every line is validated before any stock is touched, decrements go through
// the repository's conditional update, and any failure after the first
// decrement restocks what was already committed. A crash between decrement
// and restock can still strand stock; that window is the cost of compensating
// instead of a cross-entity transaction.
func (s *OrderService) Checkout(ctx context.Context, userID string, addr models.ShippingAddress, paymentMethod, paymentMethodID string) (*CheckoutResult, error) {
	cart, err := s.cartRepo.GetByUserID(userID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrEmptyCart
		}
		return nil, err
	}
	if len(cart.Items) == 0 {
		return nil, ErrEmptyCart
	}

	// Reject a bad payment method before any stock is committed.
	switch paymentMethod {
	case models.PaymentMethodCashOnDelivery:
	case models.PaymentMethodCreditCard:
		if s.gateway == nil || paymentMethodID == "" {
			return nil, ErrInvalidPaymentMethod
		}
	default:
		return nil, ErrInvalidPaymentMethod
	}

	// First pass: resolve every product and validate every line, so one
	// short line cannot leave earlier lines decremented.
	totalAmount := decimal.Zero
	orderItems := make([]models.OrderItem, 0, len(cart.Items))
	for _, item := range cart.Items {
		product, err := s.productRepo.GetByID(item.ProductID)
		if err != nil {
			return nil, fmt.Errorf("product %s not found: %w", item.ProductID, err)
		}
		if product.Stock < item.Quantity {
			return nil, &InsufficientStockError{ProductName: product.Name, Available: product.Stock}
		}
		orderItems = append(orderItems, models.OrderItem{
			ProductID:       item.ProductID,
			Quantity:        item.Quantity,
			PriceAtPurchase: product.Price,
		})
		totalAmount = totalAmount.Add(product.Price.Mul(decimal.NewFromInt(int64(item.Quantity))))
	}

	// Second pass: commit the decrements. A concurrent checkout may still
	// win a line between the passes; the conditional update catches that
	// and everything already taken is restocked.
	var committed []decremented
	for _, item := range cart.Items {
		if err := s.productRepo.DecrementStock(item.ProductID, item.Quantity); err != nil {
			s.restock(committed)
			if errors.Is(err, repositories.ErrInsufficientStock) {
				return nil, s.insufficientStock(item.ProductID)
			}
			return nil, err
		}
		committed = append(committed, decremented{productID: item.ProductID, quantity: item.Quantity})
	}

	paymentStatus := models.PaymentStatusPending
	orderStatus := models.OrderStatusProcessing
	paymentIntentID := ""
	clientSecret := ""

	if paymentMethod == models.PaymentMethodCreditCard {
		payCtx, cancel := context.WithTimeout(ctx, s.paymentTimeout)
		defer cancel()

		intent, err := s.gateway.CreateIntent(payCtx, payment.CreateIntentParams{
			// The provider expects the amount in minor units.
			Amount:          totalAmount.Mul(decimal.NewFromInt(100)).Round(0).IntPart(),
			Currency:        "usd",
			PaymentMethodID: paymentMethodID,
			Metadata:        map[string]string{"user_id": userID},
		})
		if err != nil {
			s.restock(committed)
			return nil, fmt.Errorf("%w: %v", ErrPaymentFailed, err)
		}
		if intent.Status != payment.IntentStatusSucceeded {
			s.restock(committed)
			if intent.FailureMessage != "" {
				return nil, fmt.Errorf("%w: %s", ErrPaymentFailed, intent.FailureMessage)
			}
			return nil, ErrPaymentFailed
		}

		paymentStatus = models.PaymentStatusPaid
		paymentIntentID = intent.ID
		clientSecret = intent.ClientSecret
	}

	order := &models.Order{
		ID:              uuid.New().String(),
		UserID:          userID,
		Items:           orderItems,
		TotalAmount:     totalAmount,
		ShippingAddress: addr,
		PaymentStatus:   paymentStatus,
		OrderStatus:     orderStatus,
		PaymentIntentID: paymentIntentID,
	}
	if err := s.orderRepo.Create(order); err != nil {
		// The card charge, if any, has already gone through; restocking is
		// all we can compensate here.
		s.restock(committed)
		return nil, fmt.Errorf("failed to create order: %w", err)
	}

	if paymentIntentID != "" {
		if err := s.gateway.AttachOrderID(ctx, paymentIntentID, order.ID); err != nil {
			log.Printf("Warning: failed to attach order %s to intent %s: %v", order.ID, paymentIntentID, err)
		}
	}

	if err := s.cartRepo.ClearItems(cart.ID); err != nil {
		log.Printf("Warning: failed to clear cart %s after checkout: %v", cart.ID, err)
	}

	s.publishEvent("order.created", map[string]interface{}{
		"orderID": order.ID,
		"userID":  order.UserID,
		"status":  order.OrderStatus,
		"total":   order.TotalAmount,
	})

	return &CheckoutResult{Order: order, ClientSecret: clientSecret}, nil
}

// GetAllOrders retrieves every order (admin listing).
func (s *OrderService) GetAllOrders() ([]models.Order, error) {
	return s.orderRepo.GetAll()
}

// GetOrdersForUser retrieves the orders belonging to one user.
func (s *OrderService) GetOrdersForUser(userID string) ([]models.Order, error) {
	return s.orderRepo.GetByUserID(userID)
}

// GetOrder retrieves one order, enforcing that the requester owns it or
// holds the admin role.
func (s *OrderService) GetOrder(id, requesterID string, role models.Role) (*models.Order, error) {
	order, err := s.orderRepo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if order.UserID != requesterID && !role.IsAdmin() {
		return nil, ErrNotAuthorized
	}
	return order, nil
}

// Cancel performs a user- or admin-initiated cancellation. The same
// transition rule as UpdateStatus applies; a cancelled order's stock is
// returned to the shelf.
func (s *OrderService) Cancel(id, requesterID string, role models.Role) (*models.Order, error) {
	order, err := s.orderRepo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if order.UserID != requesterID && !role.IsAdmin() {
		return nil, ErrNotAuthorized
	}
	return s.transition(order, models.OrderStatusCancelled)
}

// UpdateStatus is the admin-driven status overwrite. It goes through the
// same legality check as cancellation, so an illegal move is rejected no
// matter who asks.
func (s *OrderService) UpdateStatus(id string, next models.OrderStatus) (*models.Order, error) {
	if !next.Valid() {
		return nil, fmt.Errorf("unknown order status %q: %w", next, ErrIllegalTransition)
	}
	order, err := s.orderRepo.GetByID(id)
	if err != nil {
		return nil, err
	}
	return s.transition(order, next)
}

// transition applies one legal status change and its side effects.
func (s *OrderService) transition(order *models.Order, next models.OrderStatus) (*models.Order, error) {
	if !order.OrderStatus.CanTransitionTo(next) {
		return nil, fmt.Errorf("cannot move order %s from %s to %s: %w",
			order.ID, order.OrderStatus, next, ErrIllegalTransition)
	}

	if err := s.orderRepo.UpdateStatus(order.ID, next); err != nil {
		return nil, err
	}

	event := "order.status_updated"
	if next == models.OrderStatusCancelled {
		event = "order.cancelled"
		for _, item := range order.Items {
			if err := s.productRepo.IncrementStock(item.ProductID, item.Quantity); err != nil {
				log.Printf("Warning: failed to restock product %s for cancelled order %s: %v",
					item.ProductID, order.ID, err)
			}
		}
	}

	order.OrderStatus = next
	s.publishEvent(event, map[string]interface{}{
		"orderID": order.ID,
		"userID":  order.UserID,
		"status":  order.OrderStatus,
	})
	return order, nil
}

// HandlePaymentEvent applies a verified provider webhook to the correlated
// order's payment status. The order's lifecycle status is never touched
// here. Events the shop does not react to are acknowledged as no-ops.
func (s *OrderService) HandlePaymentEvent(event *payment.Event) error {
	var status models.PaymentStatus
	switch event.Type {
	case payment.EventPaymentSucceeded:
		status = models.PaymentStatusPaid
	case payment.EventPaymentFailed:
		status = models.PaymentStatusFailed
	default:
		log.Printf("Unhandled payment event type %s", event.Type)
		return nil
	}

	order, err := s.orderRepo.GetByPaymentIntentID(event.IntentID)
	if err != nil {
		return err
	}
	if err := s.orderRepo.UpdatePaymentStatus(order.ID, status); err != nil {
		return err
	}

	s.publishEvent("order.payment_updated", map[string]interface{}{
		"orderID":       order.ID,
		"userID":        order.UserID,
		"paymentStatus": status,
	})
	return nil
}

// restock compensates already-committed decrements after a failed checkout.
func (s *OrderService) restock(committed []decremented) {
	for _, d := range committed {
		if err := s.productRepo.IncrementStock(d.productID, d.quantity); err != nil {
			log.Printf("Warning: failed to restock product %s by %d: %v", d.productID, d.quantity, err)
		}
	}
}

// insufficientStock builds the caller-facing error for a decrement that lost
// a race, naming the product and what is left.
func (s *OrderService) insufficientStock(productID string) error {
	product, err := s.productRepo.GetByID(productID)
	if err != nil {
		return &InsufficientStockError{ProductName: productID}
	}
	return &InsufficientStockError{ProductName: product.Name, Available: product.Stock}
}

// publishEvent publishes one order event, best-effort, matching how the rest
// of the system treats the broker as optional.
func (s *OrderService) publishEvent(eventType string, data map[string]interface{}) {
	if s.mqClient == nil {
		return
	}
	body, err := json.Marshal(data)
	if err != nil {
		log.Printf("Failed to marshal %s event: %v", eventType, err)
		return
	}
	if err := s.mqClient.Publish(eventType, body); err != nil {
		log.Printf("Warning: failed to publish %s event: %v", eventType, err)
	}
}
