package cart

import (
	"encoding/json"

	"go.uber.org/zap"

	"github.com/teahouse-dev/tea-house-client/internal/storage"
)

// storageKey is the one canonical cart key. Earlier builds also wrote
// the same cart under legacyKey; Load migrates such a value once and
// removes the old key.
const (
	storageKey = "tea_house_cart"
	legacyKey  = "teaHouseCart"
)

// Store persists the whole cart document under a fixed key. It performs
// no line-item validation; invariants are the controller's job.
type Store struct {
	kv  storage.Store
	log *zap.Logger
}

func NewStore(kv storage.Store, log *zap.Logger) *Store {
	return &Store{kv: kv, log: log}
}

// Load returns the persisted cart. Absent or unreadable data is an empty
// cart, never an error.
func (s *Store) Load() Cart {
	raw, ok := s.kv.Get(storageKey)
	if !ok {
		raw, ok = s.kv.Get(legacyKey)
		if !ok {
			return Cart{}
		}
		if err := s.kv.Set(storageKey, raw); err == nil {
			s.kv.Delete(legacyKey)
			s.log.Info("migrated cart from legacy storage key")
		}
	}

	var c Cart
	if err := json.Unmarshal(raw, &c); err != nil {
		s.log.Warn("discarding unreadable cart", zap.Error(err))
		return Cart{}
	}
	return c
}

// Save replaces the persisted cart. Storage failures are logged, not
// raised: in-memory state may then run ahead of disk until the next
// successful save.
func (s *Store) Save(c Cart) {
	if c == nil {
		c = Cart{}
	}
	raw, err := json.Marshal(c)
	if err == nil {
		err = s.kv.Set(storageKey, raw)
	}
	if err != nil {
		s.log.Warn("cart not persisted", zap.Error(err))
	}
}

// Clear removes the persisted cart entirely, so the next Load takes the
// absent path.
func (s *Store) Clear() {
	s.kv.Delete(storageKey)
	s.kv.Delete(legacyKey)
}
