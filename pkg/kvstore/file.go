package kvstore

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

type fileEnvelope struct {
	Value     string     `json:"value"`
	ExpiresAt *time.Time `json:"expires_at,omitempty"`
}

// FileStore keeps one JSON file per key under a directory. It is the secondary
// durable slot used when Redis is unavailable.
type FileStore struct {
	dir string
}

func NewFileStore(dir string) (*FileStore, error) {
	if dir == "" {
		return nil, fmt.Errorf("directory is required")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating kvstore dir: %w", err)
	}
	return &FileStore{dir: dir}, nil
}

func (f *FileStore) Name() string { return "file" }

func (f *FileStore) Get(_ context.Context, key string) (string, error) {
	raw, err := os.ReadFile(f.path(key))
	if err != nil {
		if os.IsNotExist(err) {
			return "", ErrNotFound
		}
		return "", err
	}
	var envelope fileEnvelope
	if err := json.Unmarshal(raw, &envelope); err != nil {
		return "", err
	}
	if envelope.ExpiresAt != nil && time.Now().After(*envelope.ExpiresAt) {
		_ = os.Remove(f.path(key))
		return "", ErrNotFound
	}
	return envelope.Value, nil
}

func (f *FileStore) Set(_ context.Context, key, value string, ttl time.Duration) error {
	envelope := fileEnvelope{Value: value}
	if ttl > 0 {
		expires := time.Now().Add(ttl)
		envelope.ExpiresAt = &expires
	}
	raw, err := json.Marshal(envelope)
	if err != nil {
		return err
	}
	tmp := f.path(key) + ".tmp"
	if err := os.WriteFile(tmp, raw, 0o644); err != nil {
		return err
	}
	return os.Rename(tmp, f.path(key))
}

func (f *FileStore) Del(_ context.Context, key string) error {
	err := os.Remove(f.path(key))
	if err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

func (f *FileStore) path(key string) string {
	encoded := base64.RawURLEncoding.EncodeToString([]byte(key))
	return filepath.Join(f.dir, encoded+".json")
}
