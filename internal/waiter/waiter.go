package waiter

import (
	"context"
	"errors"
	"strings"

	"go.uber.org/zap"

	"github.com/teahouse-dev/tea-house-client/internal/api"
	"github.com/teahouse-dev/tea-house-client/internal/menu"
)

const defaultTopK = 3

var ErrEmptyMessage = errors.New("message is empty")

// Chatter is the slice of the gateway the waiter needs.
type Chatter interface {
	Chat(ctx context.Context, message string, topK int) (api.ChatReply, error)
}

// Reply is a waiter answer with its suggestions resolved against the
// loaded catalog, so a recommended dish can go straight into the cart.
type Reply struct {
	Message   string
	Dishes    []api.Dish
	Unmatched []string
}

// Waiter is the chat-widget client.
type Waiter struct {
	api     Chatter
	catalog menu.Catalog
	topK    int
	log     *zap.Logger
}

func New(chatter Chatter, catalog menu.Catalog, log *zap.Logger) *Waiter {
	return &Waiter{api: chatter, catalog: catalog, topK: defaultTopK, log: log}
}

// Ask sends one message and resolves the suggestions that come back.
func (w *Waiter) Ask(ctx context.Context, message string) (Reply, error) {
	message = strings.TrimSpace(message)
	if message == "" {
		return Reply{}, ErrEmptyMessage
	}

	raw, err := w.api.Chat(ctx, message, w.topK)
	if err != nil {
		return Reply{}, err
	}

	r := Reply{Message: raw.Message}
	seen := make(map[int]bool)
	for _, s := range raw.Suggestions {
		d, ok := w.matchDish(s)
		if !ok {
			if s.Name != "" {
				r.Unmatched = append(r.Unmatched, s.Name)
			}
			continue
		}
		if seen[d.ID] {
			continue
		}
		seen[d.ID] = true
		r.Dishes = append(r.Dishes, d)
	}
	if len(r.Unmatched) > 0 {
		w.log.Debug("suggestions without a menu match",
			zap.Strings("names", r.Unmatched))
	}
	return r, nil
}

// matchDish resolves a suggestion to a catalog dish: by id when one is
// present, otherwise by name, trying an exact match before the closest
// prefix/substring variant, since the model paraphrases dish names.
func (w *Waiter) matchDish(s api.Suggestion) (api.Dish, bool) {
	if s.DishID != 0 {
		if d, ok := w.catalog.FindDish(s.DishID); ok {
			return d, true
		}
	}

	name := normalizeName(s.Name)
	if name == "" {
		return api.Dish{}, false
	}

	var best api.Dish
	bestScore := 0
	for _, d := range w.catalog.AllDishes() {
		dn := normalizeName(d.Name)
		if dn == name {
			return d, true
		}
		score := 0
		switch {
		case strings.HasPrefix(dn, name) || strings.HasPrefix(name, dn):
			score = 2
		case strings.Contains(dn, name) || strings.Contains(name, dn):
			score = 1
		}
		if score > bestScore {
			best, bestScore = d, score
		}
	}
	return best, bestScore > 0
}

func normalizeName(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	// menus spell the same dish with either letter
	s = strings.ReplaceAll(s, "ё", "е")
	return strings.Join(strings.Fields(s), " ")
}
