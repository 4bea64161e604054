package state

import (
	"fmt"
	"sync"
	"time"

	"casync/internal/ca"
)

// MemStore implements Store in memory. Values are kept JSON-encoded so
// callers never share slices with the store.
type MemStore struct {
	mu     sync.Mutex
	kv     map[string][]byte
	errs   []ErrorEntry
	nextID int64
}

// NewMemStore returns an empty in-memory store.
func NewMemStore() *MemStore {
	return &MemStore{kv: make(map[string][]byte)}
}

func (s *MemStore) get(key string, v any) error {
	s.mu.Lock()
	data, ok := s.kv[key]
	s.mu.Unlock()
	if !ok {
		return ErrNotFound
	}
	return decode(key, data, v)
}

func (s *MemStore) put(key string, v any) error {
	data, err := encode(key, v)
	if err != nil {
		return err
	}
	s.mu.Lock()
	s.kv[key] = data
	s.mu.Unlock()
	return nil
}

func (s *MemStore) deleteWhere(match func(string) bool) {
	for k := range s.kv {
		if match(k) {
			delete(s.kv, k)
		}
	}
}

func (s *MemStore) Selected() (string, error) {
	var id string
	if err := s.get(keySelected, &id); err != nil || id == "" {
		return SelectNone, nil
	}
	return id, nil
}

func (s *MemStore) SetSelected(id string) error {
	if id == "" {
		id = SelectNone
	}
	prev, _ := s.Selected()
	data, err := encode(keySelected, id)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if prev != id {
		s.deleteWhere(architectureScoped)
	}
	s.kv[keySelected] = data
	return nil
}

func (s *MemStore) Architectures() ([]ca.Architecture, error) {
	var list []ca.Architecture
	if err := s.get(keyArchitectures, &list); err != nil {
		return nil, err
	}
	return list, nil
}

func (s *MemStore) SetArchitectures(list []ca.Architecture) error {
	return s.put(keyArchitectures, list)
}

func (s *MemStore) Info() (*ca.ArchitectureInfo, error) {
	var info ca.ArchitectureInfo
	if err := s.get(keyInfo, &info); err != nil {
		return nil, err
	}
	return &info, nil
}

func (s *MemStore) SetInfo(info *ca.ArchitectureInfo) error {
	if info == nil {
		return fmt.Errorf("set info: nil")
	}
	return s.put(keyInfo, info)
}

func (s *MemStore) Artifacts() ([]ca.CatalogNode, error) {
	var nodes []ca.CatalogNode
	if err := s.get(keyArtifacts, &nodes); err != nil {
		return nil, err
	}
	return nodes, nil
}

func (s *MemStore) SetArtifacts(nodes []ca.CatalogNode) error {
	return s.put(keyArtifacts, nodes)
}

func (s *MemStore) Instances(t ca.ArtifactType) ([]ca.InstanceSummary, error) {
	var list []ca.InstanceSummary
	if err := s.get(instancesKey(t), &list); err != nil {
		return nil, err
	}
	return list, nil
}

func (s *MemStore) SetInstances(t ca.ArtifactType, list []ca.InstanceSummary) error {
	return s.put(instancesKey(t), list)
}

func (s *MemStore) AppendErrors(messages ...string) error {
	messages = cleanMessages(messages)
	s.mu.Lock()
	defer s.mu.Unlock()
	now := time.Now().UTC()
	for _, m := range messages {
		s.nextID++
		s.errs = append(s.errs, ErrorEntry{ID: s.nextID, Message: m, At: now})
	}
	return nil
}

func (s *MemStore) Errors() ([]ErrorEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.errs) == 0 {
		return nil, nil
	}
	return append([]ErrorEntry(nil), s.errs...), nil
}

func (s *MemStore) ClearErrors() error {
	s.mu.Lock()
	s.errs = nil
	s.mu.Unlock()
	return nil
}

func (s *MemStore) Fingerprint() (string, error) {
	var fp string
	if err := s.get(keyFingerprint, &fp); err != nil {
		return "", nil
	}
	return fp, nil
}

func (s *MemStore) SetFingerprint(fp string) error {
	return s.put(keyFingerprint, fp)
}

func (s *MemStore) Invalidate() error {
	s.mu.Lock()
	s.deleteWhere(func(k string) bool { return cached(k) || k == keySelected })
	s.mu.Unlock()
	return nil
}

// Close is a no-op.
func (s *MemStore) Close() error { return nil }
