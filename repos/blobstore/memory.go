package blobstore

import (
	"context"
	"sync"

	"golang.org/x/xerrors"

	"github.com/gjc-app/board-sync/pkg/anonID"
	"github.com/gjc-app/board-sync/pkg/apperrors"
	"github.com/gjc-app/board-sync/pkg/dataURI"
)

type Object struct {
	ContentType string
	Data        []byte
}

// Memory keeps objects in process. Public URLs use the Firebase download format
// against a fake bucket name so they look like production values.
type Memory struct {
	mu      sync.Mutex
	bucket  string
	objects map[string]Object
	failing error
}

var _ Store = (*Memory)(nil)

func NewMemory(bucket string) *Memory {
	return &Memory{bucket: bucket, objects: make(map[string]Object)}
}

// SetFailing makes uploads fail with err until reset with nil.
func (m *Memory) SetFailing(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.failing = err
}

func (m *Memory) Object(path string) (Object, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	obj, ok := m.objects[path]
	return obj, ok
}

func (m *Memory) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.objects)
}

func (m *Memory) UploadDataURI(ctx context.Context, path, uri string) (Handle, error) {
	payload, err := dataURI.Decode(uri)
	if err != nil {
		return Handle{}, apperrors.UploadFailed("uploadDataUri", err)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failing != nil {
		return Handle{}, apperrors.UploadFailed("uploadDataUri", m.failing)
	}
	if _, exists := m.objects[path]; exists {
		return Handle{}, apperrors.UploadFailed("uploadDataUri", xerrors.Errorf("object %s already exists", path))
	}
	m.objects[path] = Object{ContentType: payload.ContentType, Data: payload.Data}
	return Handle{Bucket: m.bucket, Path: path, Token: anonID.NewToken()}, nil
}

func (m *Memory) PublicURL(ctx context.Context, h Handle) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.objects[h.Path]; !ok {
		return "", apperrors.NotFound("getPublicUrl", xerrors.Errorf("object %s", h.Path))
	}
	return downloadURL(h), nil
}
