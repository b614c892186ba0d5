package services

import (
	"errors"
	"fmt"

	"shopsmart/internal/models"
	"shopsmart/internal/repositories"
)

// CartService handles business logic for the per-user cart. A cart is
// created lazily on first access and survives checkout empty; it is never
// deleted.
type CartService struct {
	cartRepo    repositories.CartRepository
	productRepo repositories.ProductRepository
}

// NewCartService creates a new CartService.
func NewCartService(cartRepo repositories.CartRepository, productRepo repositories.ProductRepository) *CartService {
	return &CartService{
		cartRepo:    cartRepo,
		productRepo: productRepo,
	}
}

// GetCart returns the user's cart, creating an empty one if none exists yet.
func (s *CartService) GetCart(userID string) (*models.Cart, error) {
	cart, err := s.cartRepo.GetByUserID(userID)
	if err == nil {
		return cart, nil
	}
	if !errors.Is(err, repositories.ErrNotFound) {
		return nil, err
	}

	newCart := &models.Cart{UserID: userID}
	if err := s.cartRepo.Create(newCart); err != nil {
		return nil, fmt.Errorf("failed to create cart for user %s: %w", userID, err)
	}
	return newCart, nil
}

// AddItem adds a product to the cart, merging into the existing line when
// the product is already present. The merged quantity is capped by stock.
func (s *CartService) AddItem(userID, productID string, quantity int) (*models.Cart, error) {
	product, err := s.productRepo.GetByID(productID)
	if err != nil {
		return nil, err
	}

	cart, err := s.GetCart(userID)
	if err != nil {
		return nil, err
	}

	merged := false
	for i := range cart.Items {
		if cart.Items[i].ProductID == productID {
			newQuantity := cart.Items[i].Quantity + quantity
			if product.Stock < newQuantity {
				return nil, &InsufficientStockError{ProductName: product.Name, Available: product.Stock}
			}
			cart.Items[i].Quantity = newQuantity
			merged = true
			break
		}
	}
	if !merged {
		if product.Stock < quantity {
			return nil, &InsufficientStockError{ProductName: product.Name, Available: product.Stock}
		}
		cart.Items = append(cart.Items, models.CartItem{ProductID: productID, Quantity: quantity})
	}

	if err := s.cartRepo.SaveItems(cart); err != nil {
		return nil, err
	}
	return s.cartRepo.GetByUserID(userID)
}

// UpdateQuantity sets a cart line's quantity. Zero removes the line.
func (s *CartService) UpdateQuantity(userID, productID string, quantity int) (*models.Cart, error) {
	cart, err := s.cartRepo.GetByUserID(userID)
	if err != nil {
		return nil, err
	}

	idx := -1
	for i := range cart.Items {
		if cart.Items[i].ProductID == productID {
			idx = i
			break
		}
	}
	if idx == -1 {
		return nil, fmt.Errorf("product %s not in cart: %w", productID, repositories.ErrNotFound)
	}

	if quantity == 0 {
		cart.Items = append(cart.Items[:idx], cart.Items[idx+1:]...)
	} else {
		product, err := s.productRepo.GetByID(productID)
		if err != nil {
			return nil, err
		}
		if product.Stock < quantity {
			return nil, &InsufficientStockError{ProductName: product.Name, Available: product.Stock}
		}
		cart.Items[idx].Quantity = quantity
	}

	if err := s.cartRepo.SaveItems(cart); err != nil {
		return nil, err
	}
	return s.cartRepo.GetByUserID(userID)
}

// RemoveItem deletes one product line from the cart.
func (s *CartService) RemoveItem(userID, productID string) (*models.Cart, error) {
	cart, err := s.cartRepo.GetByUserID(userID)
	if err != nil {
		return nil, err
	}

	kept := cart.Items[:0]
	for _, item := range cart.Items {
		if item.ProductID != productID {
			kept = append(kept, item)
		}
	}
	if len(kept) == len(cart.Items) {
		return nil, fmt.Errorf("product %s not in cart: %w", productID, repositories.ErrNotFound)
	}
	cart.Items = kept

	if err := s.cartRepo.SaveItems(cart); err != nil {
		return nil, err
	}
	return s.cartRepo.GetByUserID(userID)
}

// Clear empties the cart, keeping the cart entity itself.
func (s *CartService) Clear(userID string) (*models.Cart, error) {
	cart, err := s.cartRepo.GetByUserID(userID)
	if err != nil {
		return nil, err
	}
	if err := s.cartRepo.ClearItems(cart.ID); err != nil {
		return nil, err
	}
	return s.cartRepo.GetByUserID(userID)
}
