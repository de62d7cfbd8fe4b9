package core

import (
	"context"
	"fmt"
	"strings"
	"sync"
)

type MemoryMetadataStore struct {
	mu          sync.Mutex
	descriptors map[string]Descriptor
}

func NewMemoryMetadataStore() *MemoryMetadataStore {
	return &MemoryMetadataStore{descriptors: map[string]Descriptor{}}
}

func (s *MemoryMetadataStore) CreateDescriptor(_ context.Context, descriptor Descriptor) error {
	if s == nil {
		return fmt.Errorf("core: metadata store is not configured")
	}
	key := strings.TrimSpace(descriptor.InstanceKey)
	if key == "" {
		return fmt.Errorf("core: instance key is required")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.descriptors[key]; exists {
		return fmt.Errorf("core: descriptor %s already exists", key)
	}
	stored := descriptor
	stored.InstanceKey = key
	stored.Creators = append([]string(nil), descriptor.Creators...)
	stored.MaxSupply = nil
	s.descriptors[key] = stored
	return nil
}

// FixMaxSupply closes issuance under instanceKey. It can be applied once.
func (s *MemoryMetadataStore) FixMaxSupply(_ context.Context, instanceKey string, maxSupply uint64) error {
	if s == nil {
		return fmt.Errorf("core: metadata store is not configured")
	}
	key := strings.TrimSpace(instanceKey)
	s.mu.Lock()
	defer s.mu.Unlock()
	descriptor, ok := s.descriptors[key]
	if !ok {
		return fmt.Errorf("core: descriptor %s not found", key)
	}
	if descriptor.MaxSupply != nil {
		return fmt.Errorf("core: max supply for %s already fixed", key)
	}
	supply := maxSupply
	descriptor.MaxSupply = &supply
	s.descriptors[key] = descriptor
	return nil
}

func (s *MemoryMetadataStore) ReadDescriptor(_ context.Context, instanceKey string) (Descriptor, error) {
	if s == nil {
		return Descriptor{}, fmt.Errorf("core: metadata store is not configured")
	}
	key := strings.TrimSpace(instanceKey)
	s.mu.Lock()
	defer s.mu.Unlock()
	descriptor, ok := s.descriptors[key]
	if !ok {
		return Descriptor{}, fmt.Errorf("core: descriptor %s not found", key)
	}
	out := descriptor
	out.Creators = append([]string(nil), descriptor.Creators...)
	if descriptor.MaxSupply != nil {
		supply := *descriptor.MaxSupply
		out.MaxSupply = &supply
	}
	return out, nil
}
