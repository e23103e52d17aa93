// Package mediastore stores uploaded media (post and comment images, avatars)
// in object storage and hands back public URLs. The service layer uploads
// BEFORE opening its database transaction: an upload failure aborts the whole
// operation with nothing written, while a later transaction failure at worst
// leaves an unreferenced object behind.
package mediastore

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/rs/xid"
)

// Store is the object-storage port. kind namespaces the key (for example
// "post-images" or "avatars"); ownerID scopes it to the uploading user.
// The returned string is the public URL persisted alongside the owning row.
type Store interface {
	Store(ctx context.Context, kind string, data []byte, contentType string, ownerID int64) (string, error)
}

// objectKey builds "{kind}/{ownerID}/{uniqueID}.{ext}". Keys never collide
// across users even for identical content, and a user's objects group under
// one prefix for cleanup.
func objectKey(kind string, ownerID int64, contentType string) string {
	return fmt.Sprintf("%s/%d/%s.%s", kind, ownerID, xid.New().String(), extFromContentType(contentType))
}

// extFromContentType maps a MIME type to a file extension by subtype:
// "image/png" gives "png". Anything unrecognizable falls back to "jpg".
func extFromContentType(contentType string) string {
	_, sub, ok := strings.Cut(contentType, "/")
	if !ok || sub == "" {
		return "jpg"
	}
	// "svg+xml" and friends: keep the part before the plus.
	if base, _, found := strings.Cut(sub, "+"); found {
		sub = base
	}
	return strings.ToLower(strings.TrimSpace(sub))
}

// Memory keeps objects in a map. It backs tests and local runs without an
// object-storage endpoint.
type Memory struct {
	mu      sync.Mutex
	objects map[string][]byte
}

func NewMemory() *Memory {
	return &Memory{objects: make(map[string][]byte)}
}

func (m *Memory) Store(_ context.Context, kind string, data []byte, contentType string, ownerID int64) (string, error) {
	key := objectKey(kind, ownerID, contentType)

	m.mu.Lock()
	defer m.mu.Unlock()
	buf := make([]byte, len(data))
	copy(buf, data)
	m.objects[key] = buf

	return "memory://" + key, nil
}

// Get returns a stored object's bytes, for test assertions.
func (m *Memory) Get(url string) ([]byte, bool) {
	key := strings.TrimPrefix(url, "memory://")
	m.mu.Lock()
	defer m.mu.Unlock()
	data, ok := m.objects[key]
	return data, ok
}

// Len reports how many objects have been stored.
func (m *Memory) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.objects)
}
