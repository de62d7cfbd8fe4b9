package core

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	goerrors "github.com/goliatone/go-errors"
	"github.com/google/uuid"
)

type NopMetricsRecorder struct{}

func (NopMetricsRecorder) IncCounter(context.Context, string, int64, map[string]string) {}

func (NopMetricsRecorder) ObserveHistogram(context.Context, string, float64, map[string]string) {}

func (s *Service) observeOperation(
	ctx context.Context,
	startedAt time.Time,
	operation string,
	err error,
	fields map[string]any,
) {
	if s == nil {
		return
	}
	operation = normalizeOperation(operation)
	if operation == "" {
		operation = "unknown"
	}
	status := "success"
	if err != nil {
		status = "failure"
	}

	contextFields := cloneFields(fields)
	contextFields["event_type"] = operation
	contextFields["status"] = status
	contextFields["duration_ms"] = time.Since(startedAt).Milliseconds()
	if err != nil {
		contextFields["error"] = err.Error()
		var richErr *goerrors.Error
		if goerrors.As(err, &richErr) && richErr != nil {
			contextFields["error_text_code"] = richErr.TextCode
			contextFields["error_category"] = fmt.Sprint(richErr.Category)
			contextFields["error_severity"] = richErr.Severity.String()
			if len(richErr.Metadata) > 0 {
				contextFields["error_metadata"] = cloneFields(richErr.Metadata)
			}
		}
	}

	tags := map[string]string{
		"operation": operation,
		"status":    status,
	}
	if value := strings.TrimSpace(fmt.Sprint(contextFields["owner"])); value != "" && value != "<nil>" {
		tags["owner"] = value
	}
	if code, ok := contextFields["error_text_code"].(string); ok && code != "" {
		tags["error_code"] = code
	}

	s.recordCounter(ctx, "redeem."+operation+".total", 1, tags)
	s.recordHistogram(ctx, "redeem."+operation+".duration_ms", float64(time.Since(startedAt).Milliseconds()), tags)

	if err != nil {
		s.logError(ctx, operation+" failed", contextFields)
		return
	}
	s.logInfo(ctx, operation+" succeeded", contextFields)
}

// audit emits the audit record for a state-changing operation. Sink failures
// are logged and never returned to the caller.
func (s *Service) audit(ctx context.Context, operation string, actor string, owner string, err error, fields map[string]any) {
	if s == nil || !s.config.Audit.Enabled {
		return
	}
	record := AuditRecord{
		ID:         uuid.NewString(),
		Operation:  normalizeOperation(operation),
		Actor:      normalizePrincipal(actor),
		Owner:      normalizePrincipal(owner),
		Status:     AuditStatusSucceeded,
		Fields:     auditFields(fields),
		OccurredAt: time.Now().UTC(),
	}
	if err != nil {
		record.Status = AuditStatusFailed
		record.ErrorCode = KindOf(err)
	}

	logFields := cloneFields(fields)
	logFields["audit_id"] = record.ID
	logFields["operation"] = record.Operation
	logFields["actor"] = record.Actor
	logFields["owner"] = record.Owner
	logFields["status"] = string(record.Status)
	if record.ErrorCode != "" {
		logFields["error_code"] = record.ErrorCode
	}
	s.logInfo(ctx, "audit "+record.Operation, logFields)

	if s.auditSink == nil {
		return
	}
	if appendErr := s.auditSink.Append(ctx, record); appendErr != nil {
		s.logWithLevel(ctx, "warn", "audit sink append failed", map[string]any{
			"audit_id":  record.ID,
			"operation": record.Operation,
			"error":     appendErr.Error(),
		})
	}
}

func (s *Service) logInfo(ctx context.Context, message string, fields map[string]any) {
	s.logWithLevel(ctx, "info", message, fields)
}

func (s *Service) logError(ctx context.Context, message string, fields map[string]any) {
	s.logWithLevel(ctx, "error", message, fields)
}

func (s *Service) logWithLevel(ctx context.Context, level string, message string, fields map[string]any) {
	if s == nil || s.logger == nil {
		return
	}
	logger := s.logger
	if ctx != nil {
		logger = logger.WithContext(ctx)
	}
	if fieldsLogger, ok := logger.(FieldsLogger); ok {
		logger = fieldsLogger.WithFields(cloneFields(fields))
	}
	args := flattenFields(fields)
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "error":
		logger.Error(message, args...)
	case "warn":
		logger.Warn(message, args...)
	default:
		logger.Info(message, args...)
	}
}

func (s *Service) recordCounter(ctx context.Context, name string, value int64, tags map[string]string) {
	if s == nil || s.metricsRecorder == nil {
		return
	}
	s.metricsRecorder.IncCounter(ctx, strings.TrimSpace(name), value, cloneTags(tags))
}

func (s *Service) recordHistogram(ctx context.Context, name string, value float64, tags map[string]string) {
	if s == nil || s.metricsRecorder == nil {
		return
	}
	s.metricsRecorder.ObserveHistogram(ctx, strings.TrimSpace(name), value, cloneTags(tags))
}

// auditFields copies fields for an audit record. Unsigned values are written
// as decimal text so sinks that round trip through JSON keep them exact.
func auditFields(fields map[string]any) map[string]any {
	copied := cloneFields(fields)
	for key, value := range copied {
		switch typed := value.(type) {
		case uint64:
			copied[key] = strconv.FormatUint(typed, 10)
		case *uint64:
			if typed == nil {
				copied[key] = nil
				continue
			}
			copied[key] = strconv.FormatUint(*typed, 10)
		}
	}
	return copied
}

func cloneFields(fields map[string]any) map[string]any {
	if len(fields) == 0 {
		return map[string]any{}
	}
	copied := make(map[string]any, len(fields))
	for key, value := range fields {
		copied[key] = value
	}
	return copied
}

func cloneTags(tags map[string]string) map[string]string {
	if len(tags) == 0 {
		return map[string]string{}
	}
	copied := make(map[string]string, len(tags))
	for key, value := range tags {
		copied[key] = value
	}
	return copied
}

func flattenFields(fields map[string]any) []any {
	if len(fields) == 0 {
		return nil
	}
	keys := make([]string, 0, len(fields))
	for key := range fields {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	args := make([]any, 0, len(keys)*2)
	for _, key := range keys {
		args = append(args, key, fields[key])
	}
	return args
}

func normalizeOperation(operation string) string {
	operation = strings.TrimSpace(strings.ToLower(operation))
	operation = strings.ReplaceAll(operation, " ", "_")
	operation = strings.ReplaceAll(operation, "-", "_")
	return operation
}
