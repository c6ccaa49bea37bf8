package trace

import (
	"context"
	"os"

	"gopkg.in/DataDog/dd-trace-go.v1/ddtrace"
	"gopkg.in/DataDog/dd-trace-go.v1/ddtrace/tracer"

	"github.com/ikmich/package-deps-admin/internal/api"
	"github.com/ikmich/package-deps-admin/internal/util"
)

var started bool

// MaybeTrace starts the Datadog tracer if PDA_TRACE=1. Spans created
// while the tracer is stopped are no-ops.
func MaybeTrace(serviceVersion string) bool {
	if os.Getenv("PDA_TRACE") != "1" {
		return false
	}

	opts := []tracer.StartOption{
		tracer.WithService("pda"),
		tracer.WithServiceVersion(serviceVersion),
	}
	if host, err := os.Hostname(); err == nil {
		opts = append(opts, tracer.WithGlobalTag("host", host))
	}
	tracer.Start(opts...)
	started = true
	return true
}

// Stop flushes and stops the tracer if MaybeTrace started it.
func Stop() {
	if started {
		tracer.Stop()
		started = false
	}
}

// StartExecSpan opens a span around one package manager invocation.
func StartExecSpan(ctx context.Context, backend api.BackendName, operation string, cmd []string) (ddtrace.Span, context.Context) {
	return tracer.StartSpanFromContext(ctx, "pda.exec",
		tracer.ResourceName(operation),
		tracer.Tag("backend", string(backend)),
		tracer.Tag("command", util.QuoteCmd(cmd)),
	)
}

// FinishExecSpan records the outcome of the invocation and closes span.
func FinishExecSpan(span ddtrace.Span, exitCode int, err error) {
	span.SetTag("exit_code", exitCode)
	span.Finish(tracer.WithError(err))
}
