// Package tracing wraps element construction and registry sweeps in
// OpenTelemetry spans.
//
// The tracer comes from the global provider unless one is given:
//
//	tp := sdktrace.NewTracerProvider(sdktrace.WithBatcher(exporter))
//	otel.SetTracerProvider(tp)
//	rt := jsx.New(binder, jsx.WithTracer(tracing.Tracer()))
package tracing

import (
	"context"
	"fmt"

	"github.com/vango-dev/vbind/pkg/bind"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// DefaultTracerName is the instrumentation name used by Tracer.
const DefaultTracerName = "vbind"

// Attribute keys.
const (
	KeyTag       = attribute.Key("vbind.tag")
	KeyComponent = attribute.Key("vbind.component")
	KeyProps     = attribute.Key("vbind.props")
	KeyChildren  = attribute.Key("vbind.children")
	KeyReleased  = attribute.Key("vbind.released")
	KeyTracked   = attribute.Key("vbind.tracked")
)

// Tracer returns the named tracer of the global provider. The name
// defaults to DefaultTracerName.
func Tracer(name ...string) trace.Tracer {
	n := DefaultTracerName
	if len(name) > 0 && name[0] != "" {
		n = name[0]
	}
	return otel.Tracer(n)
}

// StartConstruct starts the span of one construction call. tag is the
// element name, or the component's type when component is true.
func StartConstruct(ctx context.Context, tracer trace.Tracer, tag string, component bool, props, children int) (context.Context, trace.Span) {
	attrs := []attribute.KeyValue{
		KeyProps.Int(props),
		KeyChildren.Int(children),
	}
	if component {
		attrs = append(attrs, KeyComponent.String(tag))
	} else {
		attrs = append(attrs, KeyTag.String(tag))
	}
	return tracer.Start(ctx, "vbind.construct "+tag,
		trace.WithSpanKind(trace.SpanKindInternal),
		trace.WithAttributes(attrs...),
	)
}

// End records err on span and ends it.
func End(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	} else {
		span.SetStatus(codes.Ok, "")
	}
	span.End()
}

// Sweep runs b.Sweep inside a span and returns the number of bindings
// released.
func Sweep(ctx context.Context, tracer trace.Tracer, b *bind.Binder) int {
	_, span := tracer.Start(ctx, "vbind.sweep", trace.WithSpanKind(trace.SpanKindInternal))
	released := b.Sweep()
	span.SetAttributes(
		KeyReleased.Int(released),
		KeyTracked.Int(b.Tracked()),
	)
	End(span, nil)
	return released
}

// TypeName returns the span name used for a component value.
func TypeName(v any) string {
	return fmt.Sprintf("%T", v)
}
