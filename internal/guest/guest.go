package guest

import (
	"context"
	"encoding/json"
	"errors"
	"regexp"
	"strings"

	"go.uber.org/zap"

	"github.com/teahouse-dev/tea-house-client/internal/api"
	"github.com/teahouse-dev/tea-house-client/internal/storage"
)

const (
	phoneKey = "guest_phone"
	nameKey  = "guest_name"
)

// same rules as the registration form mask
var phonePattern = regexp.MustCompile(`^[+]?[7-8]?[0-9\s\-()]{10,15}$`)

var (
	ErrMissingFields = errors.New("phone and name are required")
	ErrInvalidPhone  = errors.New("enter a valid phone number")
)

// Identity is the locally remembered guest record attached to orders.
type Identity struct {
	Phone string `json:"phone"`
	Name  string `json:"name"`
}

// Registrar is the slice of the gateway the manager needs.
type Registrar interface {
	FindOrCreateGuest(ctx context.Context, phone, name string) (api.Guest, error)
}

// Manager owns the persisted identity and the registration flow.
type Manager struct {
	kv  storage.Store
	reg Registrar
	log *zap.Logger
}

func NewManager(kv storage.Store, reg Registrar, log *zap.Logger) *Manager {
	return &Manager{kv: kv, reg: reg, log: log}
}

// Current returns the stored identity, if any. A record without a phone
// is treated as absent.
func (m *Manager) Current() (Identity, bool) {
	var id Identity
	if raw, ok := m.kv.Get(phoneKey); ok {
		_ = json.Unmarshal(raw, &id.Phone)
	}
	if raw, ok := m.kv.Get(nameKey); ok {
		_ = json.Unmarshal(raw, &id.Name)
	}
	if id.Phone == "" {
		return Identity{}, false
	}
	return id, true
}

// Register validates the form fields, registers the guest with the
// backend and remembers the identity locally on success.
func (m *Manager) Register(ctx context.Context, phone, name string) (Identity, error) {
	phone = strings.TrimSpace(phone)
	name = strings.TrimSpace(name)
	if phone == "" || name == "" {
		return Identity{}, ErrMissingFields
	}
	if !phonePattern.MatchString(phone) {
		return Identity{}, ErrInvalidPhone
	}

	g, err := m.reg.FindOrCreateGuest(ctx, phone, name)
	if err != nil {
		return Identity{}, err
	}

	id := Identity{Phone: phone, Name: name}
	m.persist(phoneKey, id.Phone)
	m.persist(nameKey, id.Name)
	m.log.Info("guest registered", zap.Int("guest_id", g.ID))
	return id, nil
}

// Forget drops the stored identity; future orders go out anonymous.
func (m *Manager) Forget() {
	m.kv.Delete(phoneKey)
	m.kv.Delete(nameKey)
}

func (m *Manager) persist(key, value string) {
	raw, err := json.Marshal(value)
	if err == nil {
		err = m.kv.Set(key, raw)
	}
	if err != nil {
		m.log.Warn("identity not persisted", zap.String("key", key), zap.Error(err))
	}
}
