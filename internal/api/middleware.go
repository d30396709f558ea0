package api

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/danielgtaylor/huma/v2"
	"github.com/google/uuid"

	"github.com/smazurov/stripd/internal/logging"
)

// RequestIDHeader carries the request id in both directions.
const RequestIDHeader = "X-Request-ID"

const maxRequestIDLen = 64

// RequestIDMiddleware makes sure every request has an id: a well-formed
// client supplied X-Request-ID is kept, otherwise a UUID is generated. The id
// is echoed in the response.
func RequestIDMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(RequestIDHeader)
		if id == "" || len(id) > maxRequestIDLen {
			id = uuid.NewString()
			r.Header.Set(RequestIDHeader, id)
		}
		w.Header().Set(RequestIDHeader, id)
		next.ServeHTTP(w, r)
	})
}

// HTTPLoggingMiddleware logs huma operations.
func HTTPLoggingMiddleware(ctx huma.Context, next func(huma.Context)) {
	start := time.Now()
	next(ctx)

	logRequest(ctx.Context(), requestInfo{
		method:     ctx.Method(),
		path:       ctx.URL().Path,
		query:      ctx.URL().RawQuery,
		remoteAddr: ctx.RemoteAddr(),
		userAgent:  ctx.Header("User-Agent"),
		requestID:  ctx.Header(RequestIDHeader),
		status:     ctx.Status(),
		duration:   time.Since(start),
	})
}

// LoggingHandler logs plain handlers the same way HTTPLoggingMiddleware
// logs huma operations.
func LoggingHandler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)

		logRequest(r.Context(), requestInfo{
			method:     r.Method,
			path:       r.URL.Path,
			query:      r.URL.RawQuery,
			remoteAddr: r.RemoteAddr,
			userAgent:  r.UserAgent(),
			requestID:  r.Header.Get(RequestIDHeader),
			status:     rec.status,
			duration:   time.Since(start),
		})
	})
}

type requestInfo struct {
	method     string
	path       string
	query      string
	remoteAddr string
	userAgent  string
	requestID  string
	status     int
	duration   time.Duration
}

// logRequest picks the level from the outcome: debug for preflight, error
// for 5xx, warn for 4xx, info otherwise.
func logRequest(ctx context.Context, info requestInfo) {
	logger := logging.GetLogger("http")

	attrs := []slog.Attr{
		slog.String("method", info.method),
		slog.String("path", info.path),
		slog.String("remote_addr", info.remoteAddr),
	}
	if info.query != "" {
		attrs = append(attrs, slog.String("query", info.query))
	}
	if info.userAgent != "" {
		attrs = append(attrs, slog.String("user_agent", info.userAgent))
	}
	if info.requestID != "" {
		attrs = append(attrs, slog.String("request_id", info.requestID))
	}
	attrs = append(attrs,
		slog.Int("status", info.status),
		slog.Duration("duration", info.duration),
	)

	level := slog.LevelInfo
	switch {
	case info.method == http.MethodOptions:
		level = slog.LevelDebug
	case info.status >= 500:
		level = slog.LevelError
	case info.status >= 400:
		level = slog.LevelWarn
	}
	logger.LogAttrs(ctx, level, "HTTP request completed", attrs...)
}

// statusRecorder captures the status code written by a plain handler.
type statusRecorder struct {
	http.ResponseWriter
	status      int
	wroteHeader bool
}

func (r *statusRecorder) WriteHeader(code int) {
	if !r.wroteHeader {
		r.status = code
		r.wroteHeader = true
	}
	r.ResponseWriter.WriteHeader(code)
}

func (r *statusRecorder) Write(b []byte) (int, error) {
	r.wroteHeader = true
	return r.ResponseWriter.Write(b)
}

// Unwrap lets http.ResponseController reach the connection.
func (r *statusRecorder) Unwrap() http.ResponseWriter {
	return r.ResponseWriter
}
