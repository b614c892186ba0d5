package handlers

import (
	"log"

	"shopsmart/internal/models"
	"shopsmart/internal/services"
	"shopsmart/pkg/payment"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

// OrderHandler handles HTTP requests for checkout and the order lifecycle.
type OrderHandler struct {
	service  *services.OrderService
	gateway  payment.Gateway // nil when card payments are not configured
	validate *validator.Validate
}

// NewOrderHandler creates a new OrderHandler.
func NewOrderHandler(service *services.OrderService, gateway payment.Gateway) *OrderHandler {
	return &OrderHandler{
		service:  service,
		gateway:  gateway,
		validate: validator.New(),
	}
}

// RegisterRoutes registers the order routes with the Fiber app. The webhook
// stays outside authentication; it is verified by provider signature instead.
func (h *OrderHandler) RegisterRoutes(router fiber.Router, authRequired, adminRequired fiber.Handler) {
	orderRoutes := router.Group("/orders")
	orderRoutes.Post("/webhook", h.HandleWebhook)
	orderRoutes.Post("/checkout", authRequired, h.HandleCheckout)
	orderRoutes.Get("/", authRequired, h.HandleGetMyOrders)
	orderRoutes.Get("/all", authRequired, adminRequired, h.HandleGetAllOrders)
	orderRoutes.Get("/:id", authRequired, h.HandleGetOrderByID)
	orderRoutes.Put("/:id/status", authRequired, adminRequired, h.HandleUpdateOrderStatus)
	orderRoutes.Put("/:id/cancel", authRequired, h.HandleCancelOrder)
}

// CheckoutRequest is the request body for running the checkout workflow.
type CheckoutRequest struct {
	ShippingAddress models.ShippingAddress `json:"shippingAddress"`
	PaymentMethod   string                 `json:"paymentMethod"`
	PaymentMethodID string                 `json:"paymentMethodId"`
}

// HandleCheckout converts the caller's cart into an order.
func (h *OrderHandler) HandleCheckout(c *fiber.Ctx) error {
	var req CheckoutRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"msg": "Invalid request body"})
	}
	// The address is checked before anything else so an incomplete one
	// cannot cause any state change.
	if err := h.validate.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"msg": "Shipping address is incomplete. Missing street, city, state, zip, or country.",
		})
	}

	userID, _ := c.Locals("user_id").(string)
	result, err := h.service.Checkout(c.Context(), userID, req.ShippingAddress, req.PaymentMethod, req.PaymentMethodID)
	if err != nil {
		log.Printf("Checkout failed for user %s: %v", userID, err)
		return respondError(c, err)
	}

	return c.JSON(fiber.Map{
		"order":        result.Order,
		"clientSecret": result.ClientSecret,
		"msg":          "Order created successfully!",
	})
}

// HandleGetMyOrders lists the caller's own orders.
func (h *OrderHandler) HandleGetMyOrders(c *fiber.Ctx) error {
	userID, _ := c.Locals("user_id").(string)
	orders, err := h.service.GetOrdersForUser(userID)
	if err != nil {
		log.Printf("Error getting orders for user %s: %v", userID, err)
		return respondError(c, err)
	}
	return c.JSON(orders)
}

// HandleGetAllOrders lists every order (admin only).
func (h *OrderHandler) HandleGetAllOrders(c *fiber.Ctx) error {
	orders, err := h.service.GetAllOrders()
	if err != nil {
		log.Printf("Error getting all orders: %v", err)
		return respondError(c, err)
	}
	return c.JSON(orders)
}

// HandleGetOrderByID fetches one order; the caller must own it or be admin.
func (h *OrderHandler) HandleGetOrderByID(c *fiber.Ctx) error {
	userID, _ := c.Locals("user_id").(string)
	role, _ := c.Locals("role").(models.Role)

	order, err := h.service.GetOrder(c.Params("id"), userID, role)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(order)
}

// UpdateStatusRequest is the request body for an admin status update.
type UpdateStatusRequest struct {
	OrderStatus models.OrderStatus `json:"orderStatus" validate:"required"`
}

// HandleUpdateOrderStatus applies an admin-driven status change. Illegal
// transitions are rejected exactly like they are for cancellation.
func (h *OrderHandler) HandleUpdateOrderStatus(c *fiber.Ctx) error {
	var req UpdateStatusRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"msg": "Invalid request body"})
	}
	if err := h.validate.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"errors": validationErrors(err)})
	}

	order, err := h.service.UpdateStatus(c.Params("id"), req.OrderStatus)
	if err != nil {
		log.Printf("Error updating status for order %s: %v", c.Params("id"), err)
		return respondError(c, err)
	}
	return c.JSON(order)
}

// HandleCancelOrder cancels an order on behalf of its owner or an admin.
func (h *OrderHandler) HandleCancelOrder(c *fiber.Ctx) error {
	userID, _ := c.Locals("user_id").(string)
	role, _ := c.Locals("role").(models.Role)

	order, err := h.service.Cancel(c.Params("id"), userID, role)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"msg": "Order cancelled successfully", "order": order})
}

// HandleWebhook receives payment-provider callbacks. The raw body and the
// provider signature header go to the gateway for verification before any
// state changes.
func (h *OrderHandler) HandleWebhook(c *fiber.Ctx) error {
	if h.gateway == nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"msg": "Payments are not configured"})
	}

	event, err := h.gateway.ParseWebhook(c.Body(), c.Get("Stripe-Signature"))
	if err != nil {
		log.Printf("Webhook verification failed: %v", err)
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"msg": "Webhook Error"})
	}

	if err := h.service.HandlePaymentEvent(event); err != nil {
		log.Printf("Error applying payment event %s: %v", event.Type, err)
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"received": true})
}
