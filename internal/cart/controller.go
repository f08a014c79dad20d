package cart

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/teahouse-dev/tea-house-client/internal/api"
	"github.com/teahouse-dev/tea-house-client/internal/guest"
)

// defaultTable is the sentinel sent when no table context exists.
const defaultTable = "0"

const defaultCheckoutTimeout = 15 * time.Second

var (
	ErrEmptyCart = errors.New("cart is empty")
	ErrBusy      = errors.New("an order is already being submitted")
)

// OrderPlacer is the slice of the gateway checkout needs.
type OrderPlacer interface {
	CreateOrder(ctx context.Context, req api.OrderRequest) (int, error)
}

// Controller is the only component that mutates the cart. Every mutation
// re-reads the stored document, applies the change, persists and fires
// the change listener exactly once, all under one lock so concurrent
// calls cannot interleave their read-modify-write.
type Controller struct {
	mu         sync.Mutex
	store      *Store
	orders     OrderPlacer
	log        *zap.Logger
	table      string
	timeout    time.Duration
	onChange   func(Cart)
	submitting bool
}

type Option func(*Controller)

// WithTableNumber sets the table sent on orders.
func WithTableNumber(table string) Option {
	return func(c *Controller) {
		if table != "" {
			c.table = table
		}
	}
}

// WithCheckoutTimeout bounds how long a checkout may stay in flight
// before it fails with a timeout message.
func WithCheckoutTimeout(d time.Duration) Option {
	return func(c *Controller) {
		if d > 0 {
			c.timeout = d
		}
	}
}

// WithChangeListener registers the UI refresh hook, called once per
// completed mutation with the new cart.
func WithChangeListener(fn func(Cart)) Option {
	return func(c *Controller) { c.onChange = fn }
}

func NewController(store *Store, orders OrderPlacer, log *zap.Logger, opts ...Option) *Controller {
	c := &Controller{
		store:   store,
		orders:  orders,
		log:     log,
		table:   defaultTable,
		timeout: defaultCheckoutTimeout,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// AddItem merges by dish id: an existing row gains quantity 1, otherwise
// a new row is appended with quantity 1.
func (ct *Controller) AddItem(id int, name string, price decimal.Decimal) Cart {
	ct.mu.Lock()
	defer ct.mu.Unlock()

	c := ct.store.Load()
	if i := c.Find(id); i >= 0 {
		c[i].Quantity++
	} else {
		c = append(c, LineItem{ID: id, Name: name, Price: price, Quantity: 1})
	}
	ct.store.Save(c)
	ct.notify(c)
	return c.Clone()
}

// SetQuantity overwrites a row's quantity; zero or less removes the row.
func (ct *Controller) SetQuantity(id, quantity int) Cart {
	if quantity <= 0 {
		return ct.RemoveItem(id)
	}

	ct.mu.Lock()
	defer ct.mu.Unlock()

	c := ct.store.Load()
	i := c.Find(id)
	if i < 0 {
		return c.Clone()
	}
	c[i].Quantity = quantity
	ct.store.Save(c)
	ct.notify(c)
	return c.Clone()
}

// RemoveItem deletes the row for the dish id. Removing an absent id is a
// no-op.
func (ct *Controller) RemoveItem(id int) Cart {
	ct.mu.Lock()
	defer ct.mu.Unlock()

	c := ct.store.Load()
	i := c.Find(id)
	if i < 0 {
		return c.Clone()
	}
	c = append(c[:i], c[i+1:]...)
	ct.store.Save(c)
	ct.notify(c)
	return c.Clone()
}

// Clear empties the cart and persists the empty state.
func (ct *Controller) Clear() {
	ct.mu.Lock()
	defer ct.mu.Unlock()
	ct.store.Save(Cart{})
	ct.notify(Cart{})
}

// Items returns a copy of the current cart.
func (ct *Controller) Items() Cart {
	ct.mu.Lock()
	defer ct.mu.Unlock()
	return ct.store.Load().Clone()
}

// Total recomputes the displayed sum from the current line items.
func (ct *Controller) Total() decimal.Decimal {
	ct.mu.Lock()
	defer ct.mu.Unlock()
	return ct.store.Load().Total()
}

// ItemCount is the badge number.
func (ct *Controller) ItemCount() int {
	ct.mu.Lock()
	defer ct.mu.Unlock()
	return ct.store.Load().ItemCount()
}

// CheckoutResult reports a completed checkout attempt.
type CheckoutResult struct {
	OrderID int
	Message string
}

// Checkout submits the cart as an order. The cart is cleared only after
// the backend confirms: any failure, including a timeout, leaves the cart
// exactly as it was so the attempt can be retried. An empty cart is
// refused before any HTTP call; a second checkout while one is in flight
// is refused with ErrBusy.
func (ct *Controller) Checkout(ctx context.Context, ident guest.Identity) (CheckoutResult, error) {
	ct.mu.Lock()
	if ct.submitting {
		ct.mu.Unlock()
		return CheckoutResult{Message: ErrBusy.Error()}, ErrBusy
	}
	c := ct.store.Load()
	if len(c) == 0 {
		ct.mu.Unlock()
		return CheckoutResult{Message: ErrEmptyCart.Error()}, ErrEmptyCart
	}
	ct.submitting = true
	req := buildOrderRequest(c, ct.table, ident)
	ct.mu.Unlock()

	ctx, cancel := context.WithTimeout(ctx, ct.timeout)
	defer cancel()
	orderID, err := ct.orders.CreateOrder(ctx, req)

	ct.mu.Lock()
	defer ct.mu.Unlock()
	ct.submitting = false

	if err != nil {
		ct.log.Warn("order submission failed, cart kept", zap.Error(err))
		return CheckoutResult{Message: err.Error()}, err
	}

	ct.store.Clear()
	ct.notify(Cart{})
	ct.log.Info("order placed",
		zap.Int("order_id", orderID),
		zap.Int("items", len(req.Items)),
		zap.String("table", req.TableNumber))
	return CheckoutResult{OrderID: orderID, Message: "order placed"}, nil
}

func buildOrderRequest(c Cart, table string, ident guest.Identity) api.OrderRequest {
	items := make([]api.OrderItem, 0, len(c))
	for _, it := range c {
		items = append(items, api.OrderItem{DishID: it.ID, Quantity: it.Quantity})
	}
	return api.OrderRequest{
		TableNumber: table,
		Items:       items,
		GuestPhone:  ident.Phone,
		GuestName:   ident.Name,
	}
}

func (ct *Controller) notify(c Cart) {
	if ct.onChange != nil {
		ct.onChange(c.Clone())
	}
}
