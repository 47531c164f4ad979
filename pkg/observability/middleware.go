package observability

import (
	"net/http"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/propagation"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
	"go.opentelemetry.io/otel/trace"
)

// statusRecorder remembers the first status code a handler sets. Handlers
// that only call Write keep the implicit 200.
type statusRecorder struct {
	http.ResponseWriter

	code int
}

func (sr *statusRecorder) WriteHeader(code int) {
	if sr.code == 0 {
		sr.code = code
	}

	sr.ResponseWriter.WriteHeader(code)
}

func (sr *statusRecorder) status() int {
	if sr.code == 0 {
		return http.StatusOK
	}

	return sr.code
}

// HTTPMiddleware wraps the scrape endpoint of the MCP server: every request
// gets a server span named "METHOD /path" and, when red is non-nil, is counted
// under the same operation. 5xx responses mark both as failed.
func HTTPMiddleware(tracer trace.Tracer, red *REDMetrics, next http.Handler) http.Handler {
	return http.HandlerFunc(func(rw http.ResponseWriter, hr *http.Request) {
		op := hr.Method + " " + hr.URL.Path
		ctx := otel.GetTextMapPropagator().Extract(hr.Context(), propagation.HeaderCarrier(hr.Header))

		ctx, span := tracer.Start(ctx, op,
			trace.WithSpanKind(trace.SpanKindServer),
			trace.WithAttributes(semconv.HTTPRequestMethodKey.String(hr.Method), semconv.URLPath(hr.URL.Path)),
		)
		defer span.End()

		finish := func(string) {}
		if red != nil {
			finish = red.Begin(ctx, op)
		}

		rec := &statusRecorder{ResponseWriter: rw}
		next.ServeHTTP(rec, hr.WithContext(ctx))

		code := rec.status()
		span.SetAttributes(semconv.HTTPResponseStatusCode(code))

		failed := code >= http.StatusInternalServerError
		if failed {
			span.SetStatus(codes.Error, http.StatusText(code))
		}

		finish(StatusOf(failed))
	})
}
