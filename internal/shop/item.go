package shop

import (
	"errors"
	"fmt"
	"sync"

	"github.com/shopspring/decimal"
)

var (
	ErrInvalidArgument   = errors.New("invalid argument")
	ErrInsufficientStock = errors.New("insufficient stock")
	ErrEmptyCart         = errors.New("cart is empty")
	ErrNotFound          = errors.New("not found")
)

// Item is a named, priced, quantity-tracked product. Two items with the same
// name are the same product; use Key for map keys and Equal for comparison.
type Item struct {
	name string

	mu        sync.Mutex
	unitPrice decimal.Decimal
	available int
}

// NewItem creates a new inventory item
func NewItem(name string, unitPrice decimal.Decimal, available int) (*Item, error) {
	if name == "" {
		return nil, fmt.Errorf("%w: item name is required", ErrInvalidArgument)
	}
	if unitPrice.IsNegative() {
		return nil, fmt.Errorf("%w: price must not be negative", ErrInvalidArgument)
	}
	if available < 0 {
		return nil, fmt.Errorf("%w: quantity must not be negative", ErrInvalidArgument)
	}
	return &Item{name: name, unitPrice: unitPrice, available: available}, nil
}

func (i *Item) Name() string   { return i.name }
func (i *Item) Key() string    { return i.name }
func (i *Item) String() string { return i.name }

// Equal compares items by name.
func (i *Item) Equal(other *Item) bool {
	if i == nil || other == nil {
		return i == other
	}
	return i.name == other.name
}

// Price returns the current unit price
func (i *Item) Price() decimal.Decimal {
	i.mu.Lock()
	defer i.mu.Unlock()
	return i.unitPrice
}

// Available returns the current stock
func (i *Item) Available() int {
	i.mu.Lock()
	defer i.mu.Unlock()
	return i.available
}

// IsAvailable reports whether requested units are in stock
func (i *Item) IsAvailable(requested int) bool {
	i.mu.Lock()
	defer i.mu.Unlock()
	return i.available >= requested
}

// Buy decrements stock. Stock is left untouched on error.
func (i *Item) Buy(requested int) error {
	if requested <= 0 {
		return fmt.Errorf("%w: buy amount must be greater than zero", ErrInvalidArgument)
	}

	i.mu.Lock()
	defer i.mu.Unlock()

	if i.available < requested {
		return fmt.Errorf("%w: %s requested=%d, available=%d",
			ErrInsufficientStock, i.name, requested, i.available)
	}
	i.available -= requested
	return nil
}

// Restock adds units to stock
func (i *Item) Restock(amount int) error {
	if amount <= 0 {
		return fmt.Errorf("%w: restock amount must be greater than zero", ErrInvalidArgument)
	}

	i.mu.Lock()
	i.available += amount
	i.mu.Unlock()
	return nil
}

// UpdatePrice replaces the unit price
func (i *Item) UpdatePrice(price decimal.Decimal) error {
	if !price.IsPositive() {
		return fmt.Errorf("%w: price must be greater than zero", ErrInvalidArgument)
	}

	i.mu.Lock()
	i.unitPrice = price
	i.mu.Unlock()
	return nil
}
