package gologger

import (
	"strings"

	job "github.com/goliatone/go-job"
	glog "github.com/goliatone/go-logger/glog"
	"github.com/goliatone/go-redeem/core"
)

const DefaultLoggerName = "redeem"

// Resolve picks the logger with precedence provider > logger > nop. A blank
// name falls back to DefaultLoggerName.
func Resolve(name string, provider glog.LoggerProvider, logger glog.Logger) (glog.LoggerProvider, glog.Logger) {
	return glog.Resolve(loggerName(name), provider, logger)
}

func ToJobProvider(provider glog.LoggerProvider) job.LoggerProvider {
	if provider == nil {
		return nil
	}
	return job.GoLoggerProvider(provider)
}

func ToJobLogger(logger glog.Logger) job.Logger {
	if logger == nil {
		return nil
	}
	return job.GoLogger(logger)
}

// ResolveForJob resolves the glog pair and returns the go-job bridges used by
// instruction workers.
func ResolveForJob(
	name string,
	provider glog.LoggerProvider,
	logger glog.Logger,
) (glog.LoggerProvider, glog.Logger, job.LoggerProvider, job.Logger) {
	resolvedProvider, resolvedLogger := Resolve(name, provider, logger)
	return resolvedProvider, resolvedLogger, ToJobProvider(resolvedProvider), ToJobLogger(resolvedLogger)
}

// NewJobHook returns an instruction worker hook logging through the resolved
// "<name>.jobs" logger.
func NewJobHook(name string, provider glog.LoggerProvider, logger glog.Logger) *core.LoggingJobHook {
	resolvedProvider, resolvedLogger := Resolve(name, provider, logger)
	if resolvedProvider != nil {
		if named := resolvedProvider.GetLogger(loggerName(name) + ".jobs"); named != nil {
			resolvedLogger = named
		}
	}
	return core.NewLoggingJobHook(resolvedLogger)
}

func loggerName(name string) string {
	name = strings.TrimSpace(name)
	if name == "" {
		return DefaultLoggerName
	}
	return name
}
