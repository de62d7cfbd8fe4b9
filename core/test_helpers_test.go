package core

import (
	"context"
	"fmt"
	"sync"
	"testing"
)

type stubLogger struct{}

func (stubLogger) Trace(string, ...any) {}
func (stubLogger) Debug(string, ...any) {}
func (stubLogger) Info(string, ...any)  {}
func (stubLogger) Warn(string, ...any)  {}
func (stubLogger) Error(string, ...any) {}
func (stubLogger) Fatal(string, ...any) {}
func (s stubLogger) WithContext(context.Context) Logger {
	return s
}

type stubLoggerProvider struct {
	logger Logger
}

func (s stubLoggerProvider) GetLogger(string) Logger {
	return s.logger
}

type mapRawLoader struct {
	values map[string]any
}

func (l mapRawLoader) LoadRaw(context.Context) (map[string]any, error) {
	if len(l.values) == 0 {
		return map[string]any{}, nil
	}
	out := make(map[string]any, len(l.values))
	for key, value := range l.values {
		out[key] = value
	}
	return out, nil
}

// scriptedMetadataStore wraps the memory store and fails selected steps.
type scriptedMetadataStore struct {
	*MemoryMetadataStore
	createErr error
	fixErr    error
	readErr   error
	padded    bool
}

func (s *scriptedMetadataStore) CreateDescriptor(ctx context.Context, descriptor Descriptor) error {
	if s.createErr != nil {
		return s.createErr
	}
	return s.MemoryMetadataStore.CreateDescriptor(ctx, descriptor)
}

func (s *scriptedMetadataStore) FixMaxSupply(ctx context.Context, instanceKey string, maxSupply uint64) error {
	if s.fixErr != nil {
		return s.fixErr
	}
	return s.MemoryMetadataStore.FixMaxSupply(ctx, instanceKey, maxSupply)
}

func (s *scriptedMetadataStore) ReadDescriptor(ctx context.Context, instanceKey string) (Descriptor, error) {
	if s.readErr != nil {
		return Descriptor{}, s.readErr
	}
	descriptor, err := s.MemoryMetadataStore.ReadDescriptor(ctx, instanceKey)
	if err != nil || !s.padded {
		return descriptor, err
	}
	descriptor.Name += "\x00\x00\x00"
	descriptor.URI += "\x00"
	return descriptor, nil
}

// sequentialLedger exposes the memory ledger without its atomic settlement so
// burn and transfer run as separate steps.
type sequentialLedger struct {
	inner       *MemoryAssetLedger
	mu          sync.Mutex
	mintErr     error
	burnErr     error
	transferErr error
	burns       []BurnInstruction
	transfers   []TransferInstruction
}

func newSequentialLedger() *sequentialLedger {
	return &sequentialLedger{inner: NewMemoryAssetLedger()}
}

func (l *sequentialLedger) Mint(ctx context.Context, instruction MintInstruction) error {
	if l.mintErr != nil {
		return l.mintErr
	}
	return l.inner.Mint(ctx, instruction)
}

func (l *sequentialLedger) Burn(ctx context.Context, instruction BurnInstruction) error {
	l.mu.Lock()
	l.burns = append(l.burns, instruction)
	l.mu.Unlock()
	if l.burnErr != nil {
		return l.burnErr
	}
	return l.inner.Burn(ctx, instruction)
}

func (l *sequentialLedger) Transfer(ctx context.Context, instruction TransferInstruction) error {
	l.mu.Lock()
	l.transfers = append(l.transfers, instruction)
	l.mu.Unlock()
	if l.transferErr != nil {
		return l.transferErr
	}
	return l.inner.Transfer(ctx, instruction)
}

func (l *sequentialLedger) Balance(ctx context.Context, asset string, holder string) (uint64, error) {
	return l.inner.Balance(ctx, asset, holder)
}

type failingAuditSink struct{}

func (failingAuditSink) Append(context.Context, AuditRecord) error {
	return fmt.Errorf("audit sink offline")
}

type sequenceKeys struct {
	mu   sync.Mutex
	next int
}

func (s *sequenceKeys) generate() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.next++
	return fmt.Sprintf("instance-%d", s.next)
}

func newTestService(t *testing.T, opts ...Option) *Service {
	t.Helper()
	keys := &sequenceKeys{}
	base := []Option{
		WithLogger(stubLogger{}),
		WithLoggerProvider(stubLoggerProvider{logger: stubLogger{}}),
		WithInstanceKeyGenerator(keys.generate),
	}
	svc, err := NewService(DefaultConfig(), append(base, opts...)...)
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	return svc
}

func requireKind(t *testing.T, err error, textCode string) {
	t.Helper()
	if err == nil {
		t.Fatalf("expected %s error, got nil", textCode)
	}
	if got := KindOf(err); got != textCode {
		t.Fatalf("expected %s, got %q (%v)", textCode, got, err)
	}
}
