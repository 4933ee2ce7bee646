package shop

import (
	"fmt"

	"github.com/shopspring/decimal"
)

type lineItem struct {
	item     *Item
	quantity int
}

// Cart accumulates line items keyed by item name. A cart is not safe for
// concurrent use.
type Cart struct {
	lines map[string]*lineItem
	order []string
}

// NewCart creates an empty cart
func NewCart() *Cart {
	return &Cart{lines: make(map[string]*lineItem)}
}

// Add sets the quantity for an item, replacing any previous quantity.
func (c *Cart) Add(item *Item, amount int) error {
	if item == nil {
		return fmt.Errorf("%w: item cannot be nil", ErrInvalidArgument)
	}
	if amount <= 0 {
		return fmt.Errorf("%w: amount must be greater than zero", ErrInvalidArgument)
	}
	if !item.IsAvailable(amount) {
		return fmt.Errorf("%w: %s has only %d items", ErrInsufficientStock, item, item.Available())
	}

	if line, ok := c.lines[item.Key()]; ok {
		line.item = item
		line.quantity = amount
		return nil
	}

	c.lines[item.Key()] = &lineItem{item: item, quantity: amount}
	c.order = append(c.order, item.Key())
	return nil
}

// UpdateQuantity changes the quantity of an item already in the cart
func (c *Cart) UpdateQuantity(item *Item, amount int) error {
	if item == nil {
		return fmt.Errorf("%w: item cannot be nil", ErrInvalidArgument)
	}
	if amount <= 0 {
		return fmt.Errorf("%w: quantity must be a positive integer", ErrInvalidArgument)
	}

	line, ok := c.lines[item.Key()]
	if !ok {
		return fmt.Errorf("%w: %s is not in the cart", ErrNotFound, item)
	}
	if !line.item.IsAvailable(amount) {
		return fmt.Errorf("%w: cannot update quantity for %s", ErrInsufficientStock, item)
	}

	line.quantity = amount
	return nil
}

// Remove drops an item from the cart. Absent items are ignored.
func (c *Cart) Remove(item *Item) {
	if item == nil {
		return
	}
	key := item.Key()
	if _, ok := c.lines[key]; !ok {
		return
	}

	delete(c.lines, key)
	for i, k := range c.order {
		if k == key {
			c.order = append(c.order[:i], c.order[i+1:]...)
			break
		}
	}
}

func (c *Cart) Contains(item *Item) bool {
	if item == nil {
		return false
	}
	_, ok := c.lines[item.Key()]
	return ok
}

// Quantity returns the requested quantity, 0 when absent
func (c *Cart) Quantity(item *Item) int {
	if item == nil {
		return 0
	}
	if line, ok := c.lines[item.Key()]; ok {
		return line.quantity
	}
	return 0
}

func (c *Cart) Len() int {
	return len(c.lines)
}

func (c *Cart) Clear() {
	c.lines = make(map[string]*lineItem)
	c.order = nil
}

// Total sums unit price times quantity over all line items
func (c *Cart) Total() decimal.Decimal {
	total := decimal.Zero
	for _, key := range c.order {
		line := c.lines[key]
		total = total.Add(line.item.Price().Mul(decimal.NewFromInt(int64(line.quantity))))
	}
	return total
}

// Submit buys every line item and empties the cart, returning the purchased
// product ids in insertion order.
//
// Submission is all-or-nothing: if a purchase fails part-way, units already
// bought are restocked and the cart is left as it was.
func (c *Cart) Submit() ([]string, error) {
	if len(c.lines) == 0 {
		return nil, ErrEmptyCart
	}

	productIDs := make([]string, 0, len(c.order))
	bought := make([]*lineItem, 0, len(c.order))

	for _, key := range c.order {
		line := c.lines[key]
		if err := line.item.Buy(line.quantity); err != nil {
			c.compensate(bought)
			return nil, fmt.Errorf("failed to buy %s: %w", line.item, err)
		}
		bought = append(bought, line)
		productIDs = append(productIDs, line.item.Key())
	}

	c.Clear()
	return productIDs, nil
}

// compensate restocks lines bought by a failed submission
func (c *Cart) compensate(bought []*lineItem) {
	for _, line := range bought {
		_ = line.item.Restock(line.quantity)
	}
}
