package core

import (
	"context"
	"fmt"
	"strings"
	"sync"
)

const defaultAuditLogMaxEntries = 4096

// MemoryAuditLog retains the most recent audit records, dropping the oldest
// once maxEntries is reached.
type MemoryAuditLog struct {
	mu         sync.Mutex
	maxEntries int
	records    []AuditRecord
}

func NewMemoryAuditLog() *MemoryAuditLog {
	return NewMemoryAuditLogWithLimit(defaultAuditLogMaxEntries)
}

func NewMemoryAuditLogWithLimit(maxEntries int) *MemoryAuditLog {
	if maxEntries <= 0 {
		maxEntries = defaultAuditLogMaxEntries
	}
	return &MemoryAuditLog{maxEntries: maxEntries, records: []AuditRecord{}}
}

func (l *MemoryAuditLog) Append(_ context.Context, record AuditRecord) error {
	if l == nil {
		return fmt.Errorf("core: audit log is not configured")
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	if overflow := len(l.records) + 1 - l.maxEntries; overflow > 0 {
		l.records = append([]AuditRecord(nil), l.records[overflow:]...)
	}
	record.Fields = cloneFields(record.Fields)
	l.records = append(l.records, record)
	return nil
}

// ListAudit returns matching records newest first.
func (l *MemoryAuditLog) ListAudit(_ context.Context, query AuditQuery) (AuditPage, error) {
	if l == nil {
		return AuditPage{}, fmt.Errorf("core: audit log is not configured")
	}
	owner := normalizePrincipal(query.Owner)
	operation := normalizeOperation(query.Operation)

	l.mu.Lock()
	defer l.mu.Unlock()
	matched := make([]AuditRecord, 0, len(l.records))
	for index := len(l.records) - 1; index >= 0; index-- {
		record := l.records[index]
		if owner != "" && record.Owner != owner {
			continue
		}
		if operation != "" && !strings.EqualFold(record.Operation, operation) {
			continue
		}
		matched = append(matched, record)
	}

	page := AuditPage{Total: len(matched), Items: []AuditRecord{}}
	start := query.Offset
	if start < 0 {
		start = 0
	}
	if start >= len(matched) {
		return page, nil
	}
	end := len(matched)
	if query.Limit > 0 && start+query.Limit < end {
		end = start + query.Limit
	}
	for _, record := range matched[start:end] {
		record.Fields = cloneFields(record.Fields)
		page.Items = append(page.Items, record)
	}
	return page, nil
}
