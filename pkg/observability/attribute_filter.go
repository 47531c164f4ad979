package observability

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"go.opentelemetry.io/otel/attribute"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
)

// exportedNamespaces are the attribute key prefixes spans may carry out of
// the process. The bare "error" key is allowed as well.
var exportedNamespaces = []string{
	"ensemblestat.", "ensemble.", "histogram.", "percentile.", "input.",
	"error.", "http.", "url.", "mcp.",
}

// exportable keeps scalar attributes in an exported namespace. Numeric
// slices are sample data and never leave the process, whatever their key.
func exportable(kv attribute.KeyValue) bool {
	switch kv.Value.Type() {
	case attribute.FLOAT64SLICE, attribute.INT64SLICE:
		return false
	}

	key := string(kv.Key)
	if key == "error" {
		return true
	}

	for _, ns := range exportedNamespaces {
		if strings.HasPrefix(key, ns) {
			return true
		}
	}

	return false
}

// attributeFilter is a SpanProcessor that hands its delegate a view of each
// ended span with non-exportable attributes removed.
type attributeFilter struct {
	sdktrace.SpanProcessor

	logger *slog.Logger
	warned sync.Map // attribute.Key → struct{}
}

// NewAttributeFilter wraps delegate so exporters only see exportable span
// attributes. When logger is non-nil each dropped key is logged once.
func NewAttributeFilter(delegate sdktrace.SpanProcessor, logger *slog.Logger) sdktrace.SpanProcessor {
	return &attributeFilter{SpanProcessor: delegate, logger: logger}
}

func (f *attributeFilter) OnEnd(s sdktrace.ReadOnlySpan) {
	set, dropped := attribute.NewSetWithFiltered(s.Attributes(), exportable)

	for _, kv := range dropped {
		f.warnOnce(kv.Key)
	}

	f.SpanProcessor.OnEnd(&filteredSpan{ReadOnlySpan: s, attrs: set.ToSlice()})
}

func (f *attributeFilter) Shutdown(ctx context.Context) error {
	err := f.SpanProcessor.Shutdown(ctx)
	if err != nil {
		return fmt.Errorf("attribute filter shutdown: %w", err)
	}

	return nil
}

func (f *attributeFilter) ForceFlush(ctx context.Context) error {
	err := f.SpanProcessor.ForceFlush(ctx)
	if err != nil {
		return fmt.Errorf("attribute filter flush: %w", err)
	}

	return nil
}

func (f *attributeFilter) warnOnce(key attribute.Key) {
	if f.logger == nil {
		return
	}

	if _, seen := f.warned.LoadOrStore(key, struct{}{}); !seen {
		f.logger.Warn("attribute blocked by filter", "key", string(key))
	}
}

type filteredSpan struct {
	sdktrace.ReadOnlySpan

	attrs []attribute.KeyValue
}

func (s *filteredSpan) Attributes() []attribute.KeyValue {
	return s.attrs
}
