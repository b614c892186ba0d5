package services_test

import (
	"testing"

	"shopsmart/internal/models"
	"shopsmart/internal/repositories"
	"shopsmart/internal/services"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func newCartFixture(t *testing.T) (*services.CartService, *repositories.MockProductRepository, *repositories.MockCartRepository) {
	t.Helper()
	productRepo := repositories.NewMockProductRepository()
	cartRepo := repositories.NewMockCartRepository()

	err := productRepo.Create(&models.Product{
		ID:    "prod-1",
		Name:  "Laptop",
		Price: decimal.NewFromFloat(1200.00),
		Stock: 10,
	})
	assert.NoError(t, err)
	err = productRepo.Create(&models.Product{
		ID:    "prod-2",
		Name:  "Mouse",
		Price: decimal.NewFromFloat(25.00),
		Stock: 2,
	})
	assert.NoError(t, err)

	return services.NewCartService(cartRepo, productRepo), productRepo, cartRepo
}

func TestCartService_GetCartCreatesLazily(t *testing.T) {
	service, _, _ := newCartFixture(t)

	cart, err := service.GetCart("user-1")
	assert.NoError(t, err)
	assert.NotEmpty(t, cart.ID)
	assert.Empty(t, cart.Items)

	// Same cart comes back the second time.
	again, err := service.GetCart("user-1")
	assert.NoError(t, err)
	assert.Equal(t, cart.ID, again.ID)
}

func TestCartService_AddItemMergesDuplicateLines(t *testing.T) {
	service, _, _ := newCartFixture(t)

	cart, err := service.AddItem("user-1", "prod-1", 2)
	assert.NoError(t, err)
	assert.Len(t, cart.Items, 1)
	assert.Equal(t, 2, cart.Items[0].Quantity)

	// Adding the same product again merges instead of duplicating the line.
	cart, err = service.AddItem("user-1", "prod-1", 3)
	assert.NoError(t, err)
	assert.Len(t, cart.Items, 1)
	assert.Equal(t, 5, cart.Items[0].Quantity)
}

func TestCartService_AddItemCappedByStock(t *testing.T) {
	service, _, _ := newCartFixture(t)

	_, err := service.AddItem("user-1", "prod-2", 3)
	var stockErr *services.InsufficientStockError
	assert.ErrorAs(t, err, &stockErr)
	assert.Equal(t, "Mouse", stockErr.ProductName)
	assert.Equal(t, 2, stockErr.Available)

	// The merged quantity is capped too.
	_, err = service.AddItem("user-1", "prod-2", 2)
	assert.NoError(t, err)
	_, err = service.AddItem("user-1", "prod-2", 1)
	assert.ErrorAs(t, err, &stockErr)
}

func TestCartService_AddItemUnknownProduct(t *testing.T) {
	service, _, _ := newCartFixture(t)

	_, err := service.AddItem("user-1", "prod-404", 1)
	assert.ErrorIs(t, err, repositories.ErrNotFound)
}

func TestCartService_UpdateQuantity(t *testing.T) {
	service, _, _ := newCartFixture(t)

	_, err := service.AddItem("user-1", "prod-1", 2)
	assert.NoError(t, err)

	cart, err := service.UpdateQuantity("user-1", "prod-1", 4)
	assert.NoError(t, err)
	assert.Equal(t, 4, cart.Items[0].Quantity)

	// Zero removes the line.
	cart, err = service.UpdateQuantity("user-1", "prod-1", 0)
	assert.NoError(t, err)
	assert.Empty(t, cart.Items)

	// Updating a product that is not in the cart fails.
	_, err = service.UpdateQuantity("user-1", "prod-1", 1)
	assert.ErrorIs(t, err, repositories.ErrNotFound)
}

func TestCartService_RemoveItem(t *testing.T) {
	service, _, _ := newCartFixture(t)

	_, err := service.AddItem("user-1", "prod-1", 1)
	assert.NoError(t, err)
	_, err = service.AddItem("user-1", "prod-2", 1)
	assert.NoError(t, err)

	cart, err := service.RemoveItem("user-1", "prod-1")
	assert.NoError(t, err)
	assert.Len(t, cart.Items, 1)
	assert.Equal(t, "prod-2", cart.Items[0].ProductID)

	_, err = service.RemoveItem("user-1", "prod-1")
	assert.ErrorIs(t, err, repositories.ErrNotFound)
}

func TestCartService_ClearKeepsCart(t *testing.T) {
	service, _, _ := newCartFixture(t)

	first, err := service.AddItem("user-1", "prod-1", 2)
	assert.NoError(t, err)

	cart, err := service.Clear("user-1")
	assert.NoError(t, err)
	assert.Empty(t, cart.Items)
	assert.Equal(t, first.ID, cart.ID)
}
