package admin

import (
	"context"
	"errors"
	"sort"
	"time"

	"go.uber.org/zap"

	"github.com/teahouse-dev/tea-house-client/internal/api"
)

// Order lifecycle on the kitchen board.
const (
	StatusPending    = "pending"
	StatusInProgress = "in_progress"
	StatusReady      = "ready"
	StatusDelivered  = "delivered"
	StatusComplete   = "complete"
)

// statusRank orders the board: fresh work first, finished orders last.
var statusRank = map[string]int{
	StatusPending:    1,
	StatusInProgress: 2,
	StatusReady:      3,
	StatusDelivered:  4,
	StatusComplete:   5,
}

var (
	ErrFinalStatus  = errors.New("order is already in a final status")
	ErrNotDeletable = errors.New("only handed-over orders can be deleted")
)

// Gateway is the slice of the client the board needs.
type Gateway interface {
	Orders(ctx context.Context, status string) ([]api.Order, error)
	UpdateOrderStatus(ctx context.Context, orderID int, status string) error
	DeleteOrder(ctx context.Context, orderID int) error
}

// Board is the kitchen-side view over submitted orders.
type Board struct {
	api Gateway
	log *zap.Logger
}

func NewBoard(gw Gateway, log *zap.Logger) *Board {
	return &Board{api: gw, log: log}
}

// Refresh fetches the orders, defaults a missing status to pending and
// sorts by board rank, keeping arrival order within a rank.
func (b *Board) Refresh(ctx context.Context) ([]api.Order, error) {
	orders, err := b.api.Orders(ctx, "")
	if err != nil {
		return nil, err
	}
	for i := range orders {
		if orders[i].Status == "" {
			orders[i].Status = StatusPending
		}
	}
	sort.SliceStable(orders, func(i, j int) bool {
		return rank(orders[i].Status) < rank(orders[j].Status)
	})
	return orders, nil
}

// NextStatus is the board's single forward transition: accept, ready,
// hand over. Delivered and complete orders have no next step.
func NextStatus(status string) (string, bool) {
	switch status {
	case StatusPending:
		return StatusInProgress, true
	case StatusInProgress:
		return StatusReady, true
	case StatusReady:
		return StatusDelivered, true
	}
	return "", false
}

// Advance moves an order one step forward and reports the new status.
func (b *Board) Advance(ctx context.Context, o api.Order) (string, error) {
	next, ok := NextStatus(o.Status)
	if !ok {
		return "", ErrFinalStatus
	}
	if err := b.api.UpdateOrderStatus(ctx, o.ID, next); err != nil {
		return "", err
	}
	b.log.Info("order advanced",
		zap.Int("order_id", o.ID), zap.String("status", next))
	return next, nil
}

// Delete removes a finished order from the board.
func (b *Board) Delete(ctx context.Context, o api.Order) error {
	if o.Status != StatusDelivered && o.Status != StatusComplete {
		return ErrNotDeletable
	}
	if err := b.api.DeleteOrder(ctx, o.ID); err != nil {
		return err
	}
	b.log.Info("order deleted", zap.Int("order_id", o.ID))
	return nil
}

// Watch polls the board until ctx is done, passing each successful
// refresh to fn. Poll failures are logged and the loop keeps going, like
// the page's auto-refresh.
func (b *Board) Watch(ctx context.Context, every time.Duration, fn func([]api.Order)) {
	ticker := time.NewTicker(every)
	defer ticker.Stop()
	for {
		orders, err := b.Refresh(ctx)
		if err != nil {
			b.log.Warn("board refresh failed", zap.Error(err))
		} else {
			fn(orders)
		}
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

func rank(status string) int {
	if r, ok := statusRank[status]; ok {
		return r
	}
	// unknown statuses sink to the bottom
	return len(statusRank) + 1
}
