package exports

import (
	"bytes"
	"context"
	"io"
	"sort"
	"strings"
	"sync"
	"time"
)

type memoryObject struct {
	body []byte
	info Object
}

// MemoryStore is a process-local Store used in tests and by the CLI.
type MemoryStore struct {
	mu      sync.RWMutex
	objects map[string]memoryObject
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{objects: make(map[string]memoryObject)}
}

func (s *MemoryStore) Driver() string { return DriverMemory }

func (s *MemoryStore) Put(ctx context.Context, key string, body []byte, contentType string) (Object, error) {
	k, err := cleanKey(key)
	if err != nil {
		return Object{}, err
	}
	info := Object{Key: k, Size: int64(len(body)), ContentType: contentType, ModifiedAt: time.Now().UTC()}
	s.mu.Lock()
	s.objects[k] = memoryObject{body: append([]byte(nil), body...), info: info}
	s.mu.Unlock()
	return info, nil
}

func (s *MemoryStore) Get(ctx context.Context, key string) (Object, io.ReadCloser, error) {
	k, err := cleanKey(key)
	if err != nil {
		return Object{}, nil, err
	}
	s.mu.RLock()
	obj, ok := s.objects[k]
	s.mu.RUnlock()
	if !ok {
		return Object{}, nil, ErrNotFound
	}
	return obj.info, io.NopCloser(bytes.NewReader(obj.body)), nil
}

func (s *MemoryStore) List(ctx context.Context, prefix string) ([]Object, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []Object
	for k, obj := range s.objects {
		if strings.HasPrefix(k, prefix) {
			out = append(out, obj.info)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Key < out[j].Key })
	return out, nil
}
