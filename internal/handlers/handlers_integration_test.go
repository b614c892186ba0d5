package handlers_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"shopsmart/internal/handlers"
	"shopsmart/internal/middleware"
	"shopsmart/internal/models"
	"shopsmart/internal/repositories"
	"shopsmart/internal/services"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const (
	testJWTSecret = "integration-test-secret"
	testAdminKey  = "integration-admin-key"
)

// setupApp wires the full HTTP surface against an isolated in-memory SQLite
// database, mirroring the production wiring minus Stripe and RabbitMQ.
func setupApp(t *testing.T) *fiber.App {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	require.NoError(t, db.AutoMigrate(
		&models.User{},
		&models.Category{},
		&models.Product{},
		&models.Cart{},
		&models.CartItem{},
		&models.Order{},
		&models.OrderItem{},
	))

	userRepo := repositories.NewGORMUserRepository(db)
	categoryRepo := repositories.NewGORMCategoryRepository(db)
	productRepo := repositories.NewGORMProductRepository(db)
	cartRepo := repositories.NewGORMCartRepository(db)
	orderRepo := repositories.NewGORMOrderRepository(db)

	authService := services.NewAuthService(userRepo, testJWTSecret, testAdminKey)
	categoryService := services.NewCategoryService(categoryRepo)
	productService := services.NewProductService(productRepo, categoryRepo)
	cartService := services.NewCartService(cartRepo, productRepo)
	orderService := services.NewOrderService(orderRepo, productRepo, cartRepo, nil, nil, 0)

	app := fiber.New()
	api := app.Group("/api")
	authRequired := middleware.AuthRequired(authService)
	adminRequired := middleware.AdminRequired()

	handlers.NewAuthHandler(authService).RegisterRoutes(api, authRequired)
	handlers.NewCategoryHandler(categoryService).RegisterRoutes(api, authRequired, adminRequired)
	handlers.NewProductHandler(productService).RegisterRoutes(api, authRequired, adminRequired)
	handlers.NewCartHandler(cartService).RegisterRoutes(api, authRequired)
	handlers.NewOrderHandler(orderService, nil).RegisterRoutes(api, authRequired, adminRequired)

	return app
}

// doJSON performs one request and decodes the JSON response body. The decoded
// value is nil for list responses; use doJSONList for those.
func doJSON(t *testing.T, app *fiber.App, method, path, token string, body interface{}) (int, map[string]interface{}) {
	t.Helper()
	status, raw := doRaw(t, app, method, path, token, body)
	var decoded map[string]interface{}
	if len(raw) > 0 && raw[0] == '{' {
		require.NoError(t, json.Unmarshal(raw, &decoded))
	}
	return status, decoded
}

func doJSONList(t *testing.T, app *fiber.App, method, path, token string, body interface{}) (int, []map[string]interface{}) {
	t.Helper()
	status, raw := doRaw(t, app, method, path, token, body)
	var decoded []map[string]interface{}
	require.NoError(t, json.Unmarshal(raw, &decoded))
	return status, decoded
}

func doRaw(t *testing.T, app *fiber.App, method, path, token string, body interface{}) (int, []byte) {
	t.Helper()
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(payload)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set(middleware.HeaderName, token)
	}
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp.StatusCode, raw
}

func registerUser(t *testing.T, app *fiber.App, name, email string) string {
	t.Helper()
	status, body := doJSON(t, app, http.MethodPost, "/api/users", "", fiber.Map{
		"name": name, "email": email, "password": "hunter22",
	})
	require.Equal(t, http.StatusOK, status)
	token, _ := body["token"].(string)
	require.NotEmpty(t, token)
	return token
}

func registerAdmin(t *testing.T, app *fiber.App, email string) string {
	t.Helper()
	status, body := doJSON(t, app, http.MethodPost, "/api/users/admin-register", "", fiber.Map{
		"name": "Admin", "email": email, "password": "hunter22", "admin_secret_key": testAdminKey,
	})
	require.Equal(t, http.StatusOK, status)
	require.Equal(t, "admin", body["role"])
	token, _ := body["token"].(string)
	require.NotEmpty(t, token)
	return token
}

// seedProduct creates a category plus one product through the admin routes
// and returns the product ID.
func seedProduct(t *testing.T, app *fiber.App, adminToken, name string, price float64, stock int) string {
	t.Helper()
	status, category := doJSON(t, app, http.MethodPost, "/api/categories", adminToken, fiber.Map{
		"name": name + " Category",
	})
	require.Equal(t, http.StatusCreated, status)

	status, product := doJSON(t, app, http.MethodPost, "/api/products", adminToken, fiber.Map{
		"name":        name,
		"description": "An item sold by the integration shop",
		"price":       price,
		"category_id": category["id"],
		"stock":       stock,
	})
	require.Equal(t, http.StatusCreated, status)
	id, _ := product["id"].(string)
	require.NotEmpty(t, id)
	return id
}

func productStock(t *testing.T, app *fiber.App, productID string) int {
	t.Helper()
	status, product := doJSON(t, app, http.MethodGet, "/api/products/"+productID, "", nil)
	require.Equal(t, http.StatusOK, status)
	stock, ok := product["stock"].(float64)
	require.True(t, ok)
	return int(stock)
}

var fullAddress = fiber.Map{
	"street": "1 Main St", "city": "Springfield", "state": "IL", "zip": "62704", "country": "USA",
}

func TestRegisterAndLogin(t *testing.T) {
	app := setupApp(t)

	status, body := doJSON(t, app, http.MethodPost, "/api/users", "", fiber.Map{
		"name": "Ada", "email": "ada@example.com", "password": "hunter22",
	})
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "user", body["role"])
	assert.NotEmpty(t, body["token"])
	assert.NotEmpty(t, body["userId"])

	// Duplicate email is rejected with the errors envelope.
	status, body = doJSON(t, app, http.MethodPost, "/api/users", "", fiber.Map{
		"name": "Ada Again", "email": "ada@example.com", "password": "hunter22",
	})
	assert.Equal(t, http.StatusBadRequest, status)
	errs, _ := body["errors"].([]interface{})
	require.Len(t, errs, 1)
	assert.Equal(t, "User already exists", errs[0].(map[string]interface{})["msg"])

	// Wrong password and unknown email read identically.
	status, body = doJSON(t, app, http.MethodPost, "/api/auth", "", fiber.Map{
		"email": "ada@example.com", "password": "wrong-password",
	})
	assert.Equal(t, http.StatusBadRequest, status)
	errs, _ = body["errors"].([]interface{})
	require.Len(t, errs, 1)
	assert.Equal(t, "Invalid Credentials", errs[0].(map[string]interface{})["msg"])

	status, body = doJSON(t, app, http.MethodPost, "/api/auth", "", fiber.Map{
		"email": "ada@example.com", "password": "hunter22",
	})
	assert.Equal(t, http.StatusOK, status)
	token, _ := body["token"].(string)
	require.NotEmpty(t, token)

	// The session endpoint returns the record without the password hash.
	status, body = doJSON(t, app, http.MethodGet, "/api/auth", token, nil)
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "ada@example.com", body["email"])
	_, hasPassword := body["password"]
	assert.False(t, hasPassword)

	status, body = doJSON(t, app, http.MethodGet, "/api/auth", "", nil)
	assert.Equal(t, http.StatusUnauthorized, status)
	assert.Equal(t, "No token, authorization denied", body["msg"])

	status, body = doJSON(t, app, http.MethodGet, "/api/auth", "not-a-jwt", nil)
	assert.Equal(t, http.StatusUnauthorized, status)
	assert.Equal(t, "Token is not valid", body["msg"])
}

func TestAdminRegistration(t *testing.T) {
	app := setupApp(t)

	status, body := doJSON(t, app, http.MethodPost, "/api/users/admin-register", "", fiber.Map{
		"name": "Mallory", "email": "mallory@example.com", "password": "hunter22",
		"admin_secret_key": "guessed-wrong",
	})
	assert.Equal(t, http.StatusForbidden, status)
	assert.Equal(t, "Invalid Admin Secret Key", body["msg"])

	registerAdmin(t, app, "root@example.com")
}

func TestCatalogAuthorization(t *testing.T) {
	app := setupApp(t)
	adminToken := registerAdmin(t, app, "root@example.com")
	userToken := registerUser(t, app, "Ada", "ada@example.com")

	// Anonymous and non-admin writes are rejected before touching the store.
	status, _ := doJSON(t, app, http.MethodPost, "/api/products", "", fiber.Map{"name": "Nope"})
	assert.Equal(t, http.StatusUnauthorized, status)

	status, body := doJSON(t, app, http.MethodPost, "/api/products", userToken, fiber.Map{"name": "Nope"})
	assert.Equal(t, http.StatusForbidden, status)
	assert.Equal(t, "Authorization denied, admin access required", body["msg"])

	productID := seedProduct(t, app, adminToken, "Gadget", 19.99, 5)

	// Reads stay public.
	status, list := doJSONList(t, app, http.MethodGet, "/api/products", "", nil)
	assert.Equal(t, http.StatusOK, status)
	require.Len(t, list, 1)
	assert.Equal(t, productID, list[0]["id"])
	assert.Equal(t, "19.99", list[0]["price"])

	// A product must reference an existing category.
	status, _ = doJSON(t, app, http.MethodPost, "/api/products", adminToken, fiber.Map{
		"name":        "Orphan",
		"description": "Points at a category that does not exist",
		"price":       5,
		"category_id": "00000000-0000-0000-0000-000000000000",
		"stock":       1,
	})
	assert.Equal(t, http.StatusNotFound, status)
}

func TestCartEndpoints(t *testing.T) {
	app := setupApp(t)
	adminToken := registerAdmin(t, app, "root@example.com")
	userToken := registerUser(t, app, "Ada", "ada@example.com")
	productID := seedProduct(t, app, adminToken, "Widget", 4.50, 3)

	// First read lazily creates an empty cart.
	status, cart := doJSON(t, app, http.MethodGet, "/api/cart", userToken, nil)
	assert.Equal(t, http.StatusOK, status)
	assert.Empty(t, cart["items"])

	// Adding the same product twice merges into one line.
	status, _ = doJSON(t, app, http.MethodPost, "/api/cart/add", userToken, fiber.Map{
		"productId": productID, "quantity": 1,
	})
	assert.Equal(t, http.StatusOK, status)
	status, cart = doJSON(t, app, http.MethodPost, "/api/cart/add", userToken, fiber.Map{
		"productId": productID, "quantity": 2,
	})
	assert.Equal(t, http.StatusOK, status)
	items, _ := cart["items"].([]interface{})
	require.Len(t, items, 1)
	assert.EqualValues(t, 3, items[0].(map[string]interface{})["quantity"])

	// Asking for more than the shelf holds is refused.
	status, body := doJSON(t, app, http.MethodPost, "/api/cart/add", userToken, fiber.Map{
		"productId": productID, "quantity": 1,
	})
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "not enough stock for Widget. Available: 3", body["msg"])

	// Setting a quantity of zero drops the line.
	status, cart = doJSON(t, app, http.MethodPut, "/api/cart/update-quantity", userToken, fiber.Map{
		"productId": productID, "quantity": 0,
	})
	assert.Equal(t, http.StatusOK, status)
	assert.Empty(t, cart["items"])

	status, _ = doJSON(t, app, http.MethodGet, "/api/cart", "", nil)
	assert.Equal(t, http.StatusUnauthorized, status)
}

func TestCheckoutFlow(t *testing.T) {
	app := setupApp(t)
	adminToken := registerAdmin(t, app, "root@example.com")
	userToken := registerUser(t, app, "Ada", "ada@example.com")
	productID := seedProduct(t, app, adminToken, "Gadget", 19.99, 5)

	status, _ := doJSON(t, app, http.MethodPost, "/api/cart/add", userToken, fiber.Map{
		"productId": productID, "quantity": 2,
	})
	require.Equal(t, http.StatusOK, status)

	// An incomplete address changes nothing.
	incomplete := fiber.Map{"street": "1 Main St", "city": "Springfield", "state": "IL", "country": "USA"}
	status, body := doJSON(t, app, http.MethodPost, "/api/orders/checkout", userToken, fiber.Map{
		"shippingAddress": incomplete,
		"paymentMethod":   models.PaymentMethodCashOnDelivery,
	})
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "Shipping address is incomplete. Missing street, city, state, zip, or country.", body["msg"])
	assert.Equal(t, 5, productStock(t, app, productID))

	// An unknown payment method is refused before stock moves.
	status, body = doJSON(t, app, http.MethodPost, "/api/orders/checkout", userToken, fiber.Map{
		"shippingAddress": fullAddress,
		"paymentMethod":   "Carrier Pigeon",
	})
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "invalid payment method", body["msg"])
	assert.Equal(t, 5, productStock(t, app, productID))

	// The happy path: order snapshot, stock decrement, cart emptied.
	status, body = doJSON(t, app, http.MethodPost, "/api/orders/checkout", userToken, fiber.Map{
		"shippingAddress": fullAddress,
		"paymentMethod":   models.PaymentMethodCashOnDelivery,
	})
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "Order created successfully!", body["msg"])
	order, _ := body["order"].(map[string]interface{})
	require.NotNil(t, order)
	assert.Equal(t, "processing", order["order_status"])
	assert.Equal(t, "pending", order["payment_status"])
	assert.Equal(t, "39.98", order["total_amount"])
	orderItems, _ := order["items"].([]interface{})
	require.Len(t, orderItems, 1)
	assert.Equal(t, "19.99", orderItems[0].(map[string]interface{})["price_at_purchase"])

	assert.Equal(t, 3, productStock(t, app, productID))
	status, cart := doJSON(t, app, http.MethodGet, "/api/cart", userToken, nil)
	assert.Equal(t, http.StatusOK, status)
	assert.Empty(t, cart["items"])

	// The cart is now empty, so a second checkout has nothing to sell.
	status, body = doJSON(t, app, http.MethodPost, "/api/orders/checkout", userToken, fiber.Map{
		"shippingAddress": fullAddress,
		"paymentMethod":   models.PaymentMethodCashOnDelivery,
	})
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "your cart is empty", body["msg"])
}

func TestOrderLifecycle(t *testing.T) {
	app := setupApp(t)
	adminToken := registerAdmin(t, app, "root@example.com")
	userToken := registerUser(t, app, "Ada", "ada@example.com")
	otherToken := registerUser(t, app, "Bob", "bob@example.com")
	productID := seedProduct(t, app, adminToken, "Gadget", 10.00, 5)

	checkout := func(token string, quantity int) string {
		status, _ := doJSON(t, app, http.MethodPost, "/api/cart/add", token, fiber.Map{
			"productId": productID, "quantity": quantity,
		})
		require.Equal(t, http.StatusOK, status)
		status, body := doJSON(t, app, http.MethodPost, "/api/orders/checkout", token, fiber.Map{
			"shippingAddress": fullAddress,
			"paymentMethod":   models.PaymentMethodCashOnDelivery,
		})
		require.Equal(t, http.StatusOK, status)
		order := body["order"].(map[string]interface{})
		return order["id"].(string)
	}

	orderID := checkout(userToken, 2)

	// Owner sees it, a stranger does not, an admin always does.
	status, _ := doJSON(t, app, http.MethodGet, "/api/orders/"+orderID, userToken, nil)
	assert.Equal(t, http.StatusOK, status)
	status, body := doJSON(t, app, http.MethodGet, "/api/orders/"+orderID, otherToken, nil)
	assert.Equal(t, http.StatusUnauthorized, status)
	assert.Equal(t, "User not authorized", body["msg"])
	status, _ = doJSON(t, app, http.MethodGet, "/api/orders/"+orderID, adminToken, nil)
	assert.Equal(t, http.StatusOK, status)

	// The admin listing is gated on role.
	status, _ = doJSON(t, app, http.MethodGet, "/api/orders/all", userToken, nil)
	assert.Equal(t, http.StatusForbidden, status)
	status, all := doJSONList(t, app, http.MethodGet, "/api/orders/all", adminToken, nil)
	assert.Equal(t, http.StatusOK, status)
	assert.Len(t, all, 1)

	// Only admins may overwrite the status, and only forward.
	status, _ = doJSON(t, app, http.MethodPut, "/api/orders/"+orderID+"/status", userToken, fiber.Map{
		"orderStatus": models.OrderStatusShipped,
	})
	assert.Equal(t, http.StatusForbidden, status)

	status, body = doJSON(t, app, http.MethodPut, "/api/orders/"+orderID+"/status", adminToken, fiber.Map{
		"orderStatus": models.OrderStatusShipped,
	})
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "shipped", body["order_status"])

	status, body = doJSON(t, app, http.MethodPut, "/api/orders/"+orderID+"/status", adminToken, fiber.Map{
		"orderStatus": models.OrderStatusProcessing,
	})
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Contains(t, body["msg"], "illegal order status transition")

	// Shipped orders can no longer be cancelled, even by their owner.
	status, body = doJSON(t, app, http.MethodPut, "/api/orders/"+orderID+"/cancel", userToken, nil)
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Contains(t, body["msg"], "illegal order status transition")

	// A fresh order cancels cleanly and returns its stock.
	secondID := checkout(otherToken, 3)
	assert.Equal(t, 0, productStock(t, app, productID))
	status, body = doJSON(t, app, http.MethodPut, "/api/orders/"+secondID+"/cancel", otherToken, nil)
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "Order cancelled successfully", body["msg"])
	cancelled, _ := body["order"].(map[string]interface{})
	assert.Equal(t, "cancelled", cancelled["order_status"])
	assert.Equal(t, 3, productStock(t, app, productID))

	// Each user's own listing stays scoped to them.
	status, mine := doJSONList(t, app, http.MethodGet, "/api/orders", userToken, nil)
	assert.Equal(t, http.StatusOK, status)
	assert.Len(t, mine, 1)
}

func TestWebhookWithoutGateway(t *testing.T) {
	app := setupApp(t)

	status, body := doJSON(t, app, http.MethodPost, "/api/orders/webhook", "", fiber.Map{
		"type": "payment_intent.succeeded",
	})
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "Payments are not configured", body["msg"])
}
