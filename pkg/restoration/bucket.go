// Package restoration keeps small pieces of UI state across a restart of
// the host, keyed by component identity.
package restoration

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"sync"

	"gopkg.in/yaml.v3"

	clockerrors "github.com/go-drift/clockface/pkg/errors"
)

// Bucket maps a restoration ID to the strings saved under it.
// It is safe for concurrent use.
type Bucket struct {
	mu     sync.RWMutex
	values map[string][]string
}

// NewBucket returns an empty bucket.
func NewBucket() *Bucket {
	return &Bucket{values: make(map[string][]string)}
}

// Get returns a copy of the values saved under id.
func (b *Bucket) Get(id string) ([]string, bool) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	v, ok := b.values[id]
	return slices.Clone(v), ok
}

// Put saves values under id, replacing what was there.
func (b *Bucket) Put(id string, values ...string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.values[id] = slices.Clone(values)
}

// Remove deletes id.
func (b *Bucket) Remove(id string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	delete(b.values, id)
}

// IDs returns the saved IDs in sorted order.
func (b *Bucket) IDs() []string {
	b.mu.RLock()
	defer b.mu.RUnlock()
	ids := make([]string, 0, len(b.values))
	for id := range b.values {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	return ids
}

// Load reads a bucket written by Save. A missing file yields an empty bucket.
func Load(path string) (*Bucket, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return NewBucket(), nil
		}
		return nil, clockerrors.Wrap("restoration.Load", clockerrors.KindIO, err)
	}

	values := make(map[string][]string)
	if err := yaml.Unmarshal(data, &values); err != nil {
		return nil, clockerrors.Wrap("restoration.Load", clockerrors.KindParsing,
			fmt.Errorf("parse %s: %w", path, err))
	}
	if values == nil {
		values = make(map[string][]string)
	}
	return &Bucket{values: values}, nil
}

// Save writes the bucket as YAML. The file is replaced atomically.
func (b *Bucket) Save(path string) error {
	b.mu.RLock()
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	err := enc.Encode(b.values)
	b.mu.RUnlock()
	if err == nil {
		err = enc.Close()
	}
	if err != nil {
		return clockerrors.Wrap("restoration.Save", clockerrors.KindIO, err)
	}

	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return clockerrors.Wrap("restoration.Save", clockerrors.KindIO, err)
		}
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, buf.Bytes(), 0o644); err != nil {
		return clockerrors.Wrap("restoration.Save", clockerrors.KindIO, err)
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return clockerrors.Wrap("restoration.Save", clockerrors.KindIO, err)
	}
	return nil
}
