package storage

import (
	"encoding/json"
	"os"
	"sync"

	"go.uber.org/zap"
)

// File persists keys in a single JSON document on disk, written through
// on every change. A missing or unreadable file starts empty rather than
// failing: losing stale state is preferable to refusing to run.
type File struct {
	mu   sync.Mutex
	path string
	data map[string]json.RawMessage
	log  *zap.Logger
}

func OpenFile(path string, log *zap.Logger) *File {
	f := &File{path: path, data: make(map[string]json.RawMessage), log: log}
	raw, err := os.ReadFile(path)
	if err != nil {
		if !os.IsNotExist(err) {
			log.Warn("state file unreadable, starting empty", zap.String("path", path), zap.Error(err))
		}
		return f
	}
	if err := json.Unmarshal(raw, &f.data); err != nil {
		log.Warn("state file corrupt, starting empty", zap.String("path", path), zap.Error(err))
		f.data = make(map[string]json.RawMessage)
	}
	return f
}

func (f *File) Get(key string) ([]byte, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	v, ok := f.data[key]
	if !ok {
		return nil, false
	}
	out := make([]byte, len(v))
	copy(out, v)
	return out, true
}

func (f *File) Set(key string, value []byte) error {
	if !json.Valid(value) {
		// store values as-is inside the state document; anything else
		// would corrupt the whole file on the next flush
		b, err := json.Marshal(string(value))
		if err != nil {
			return err
		}
		value = b
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	v := make(json.RawMessage, len(value))
	copy(v, value)
	f.data[key] = v
	return f.flush()
}

func (f *File) Delete(key string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.data[key]; !ok {
		return
	}
	delete(f.data, key)
	if err := f.flush(); err != nil {
		f.log.Warn("could not persist delete", zap.String("key", key), zap.Error(err))
	}
}

func (f *File) flush() error {
	raw, err := json.MarshalIndent(f.data, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(f.path, raw, 0o644)
}
