package memory

import (
	"bytes"
	"context"
	"io"
	"strings"
	"sync"

	"cabinrent/internal/app/policies"
)

// ImageStore keeps uploaded blobs in memory for local runs and tests.
type ImageStore struct {
	mu      sync.RWMutex
	baseURL string
	blobs   map[string][]byte
}

func NewImageStore(baseURL string) *ImageStore {
	if baseURL == "" {
		baseURL = "memory://images"
	}
	return &ImageStore{baseURL: strings.TrimRight(baseURL, "/"), blobs: make(map[string][]byte)}
}

func (s *ImageStore) Upload(_ context.Context, img policies.ImageUpload) (string, error) {
	var buf bytes.Buffer
	if _, err := io.Copy(&buf, img.Body); err != nil {
		return "", err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.blobs[img.Key] = buf.Bytes()
	return s.baseURL + "/" + img.Key, nil
}

func (s *ImageStore) Delete(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.blobs, key)
	return nil
}

func (s *ImageStore) Object(key string) ([]byte, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	b, ok := s.blobs[key]
	return b, ok
}

var _ policies.ImageStorage = (*ImageStore)(nil)
