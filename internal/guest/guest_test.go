package guest

import (
	"context"
	"errors"
	"testing"

	"go.uber.org/zap"

	"github.com/teahouse-dev/tea-house-client/internal/api"
	"github.com/teahouse-dev/tea-house-client/internal/storage"
)

type fakeRegistrar struct {
	calls int
	fail  error
}

func (f *fakeRegistrar) FindOrCreateGuest(ctx context.Context, phone, name string) (api.Guest, error) {
	f.calls++
	if f.fail != nil {
		return api.Guest{}, f.fail
	}
	return api.Guest{ID: 11, Phone: phone, Name: name}, nil
}

func TestRegisterValidation(t *testing.T) {
	m := NewManager(storage.NewMemory(), &fakeRegistrar{}, zap.NewNop())

	if _, err := m.Register(context.Background(), "", "Тимур"); err != ErrMissingFields {
		t.Fatalf("expected ErrMissingFields, got %v", err)
	}
	if _, err := m.Register(context.Background(), "+7900", "Тимур"); err != ErrInvalidPhone {
		t.Fatalf("expected ErrInvalidPhone for short number, got %v", err)
	}
	if _, err := m.Register(context.Background(), "abc-def-ghij", "Тимур"); err != ErrInvalidPhone {
		t.Fatalf("expected ErrInvalidPhone for letters, got %v", err)
	}
	if _, ok := m.Current(); ok {
		t.Fatalf("failed registrations must not persist an identity")
	}
}

func TestRegisterPersistsIdentity(t *testing.T) {
	kv := storage.NewMemory()
	reg := &fakeRegistrar{}
	m := NewManager(kv, reg, zap.NewNop())

	id, err := m.Register(context.Background(), " +7 900 123-45-67 ", "Амина ")
	if err != nil {
		t.Fatalf("register failed: %v", err)
	}
	if id.Phone != "+7 900 123-45-67" || id.Name != "Амина" {
		t.Fatalf("fields not trimmed: %+v", id)
	}
	if reg.calls != 1 {
		t.Fatalf("expected exactly one backend call, got %d", reg.calls)
	}

	// a fresh manager over the same storage sees the identity
	m2 := NewManager(kv, reg, zap.NewNop())
	got, ok := m2.Current()
	if !ok || got != id {
		t.Fatalf("identity did not survive: %+v ok=%v", got, ok)
	}

	m2.Forget()
	if _, ok := m2.Current(); ok {
		t.Fatalf("identity should be gone after Forget")
	}
}

func TestRegisterBackendFailure(t *testing.T) {
	kv := storage.NewMemory()
	reg := &fakeRegistrar{fail: errors.New("cannot reach server")}
	m := NewManager(kv, reg, zap.NewNop())

	if _, err := m.Register(context.Background(), "+79001234567", "Тимур"); err == nil {
		t.Fatalf("expected backend error to propagate")
	}
	if _, ok := m.Current(); ok {
		t.Fatalf("identity must not be stored when the backend rejects")
	}
}
