package logger

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"os"
	"runtime/debug"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.opentelemetry.io/otel/trace"

	"github.com/ghuser/crochestock/pkg/config"
	"github.com/ghuser/crochestock/pkg/httpx"
)

// Logger is the project-wide logging interface. The concrete slogLogger
// embeds *slog.Logger, so Log, LogAttrs and Enabled are available on it too.
type Logger interface {
	Info(msg string, args ...any)
	Error(msg string, args ...any)
	Warn(msg string, args ...any)
	Debug(msg string, args ...any)
	InfoContext(ctx context.Context, msg string, args ...any)
	ErrorContext(ctx context.Context, msg string, args ...any)
	WarnContext(ctx context.Context, msg string, args ...any)
	DebugContext(ctx context.Context, msg string, args ...any)
	// With returns a new Logger with the given key-value pairs bound as attributes.
	With(args ...any) Logger
	// ToSlog returns the underlying *slog.Logger for third-party libraries.
	ToSlog() *slog.Logger
}

// New returns a Logger writing JSON records to stdout.
func New(cfg *config.Config) Logger {
	return NewWithWriter(cfg, os.Stdout)
}

// NewWithWriter is New with an explicit destination. Service name, version and
// environment are bound to every record when configured.
func NewWithWriter(cfg *config.Config, w io.Writer) Logger {
	opts := &slog.HandlerOptions{Level: parseLevel(cfg.LogLevel)}
	sl := slog.New(&contextHandler{slog.NewJSONHandler(w, opts)})

	var bound []any
	if cfg.ServiceName != "" {
		bound = append(bound, "service", cfg.ServiceName)
	}
	if cfg.ServiceVersion != "" {
		bound = append(bound, "version", cfg.ServiceVersion)
	}
	if cfg.Environment != "" {
		bound = append(bound, "env", cfg.Environment)
	}
	if len(bound) > 0 {
		sl = sl.With(bound...)
	}
	return &slogLogger{Logger: sl}
}

// Discard returns a Logger that drops every record.
func Discard() Logger {
	return &slogLogger{Logger: slog.New(slog.NewJSONHandler(io.Discard, nil))}
}

type slogLogger struct {
	*slog.Logger
}

func (l *slogLogger) With(args ...any) Logger {
	return &slogLogger{Logger: l.Logger.With(args...)}
}

func (l *slogLogger) ToSlog() *slog.Logger {
	return l.Logger
}

// requestAttrs collects attributes discovered while a request is handled,
// such as the acting user. Middleware plants one per request so attributes
// added deep in the handler chain still reach the request log line.
type requestAttrs struct {
	mu    sync.Mutex
	attrs []slog.Attr
}

type attrsKey struct{}

// AddAttrs attaches key-value pairs to every record logged for the current
// request, including the request line written by Middleware. Outside a
// request handled by Middleware it returns ctx with a fresh attribute set.
func AddAttrs(ctx context.Context, args ...any) context.Context {
	bag, ok := ctx.Value(attrsKey{}).(*requestAttrs)
	if !ok {
		bag = &requestAttrs{}
		ctx = context.WithValue(ctx, attrsKey{}, bag)
	}
	rec := slog.NewRecord(time.Time{}, 0, "", 0)
	rec.Add(args...)

	bag.mu.Lock()
	rec.Attrs(func(a slog.Attr) bool {
		bag.attrs = append(bag.attrs, a)
		return true
	})
	bag.mu.Unlock()
	return ctx
}

func attrsFrom(ctx context.Context) []slog.Attr {
	bag, ok := ctx.Value(attrsKey{}).(*requestAttrs)
	if !ok {
		return nil
	}
	bag.mu.Lock()
	defer bag.mu.Unlock()
	return append([]slog.Attr(nil), bag.attrs...)
}

// contextHandler injects the OTel trace_id and span_id, the chi request_id
// and any AddAttrs attributes into every record.
type contextHandler struct {
	slog.Handler
}

func (h *contextHandler) Handle(ctx context.Context, r slog.Record) error {
	if span := trace.SpanFromContext(ctx); span.IsRecording() {
		sc := span.SpanContext()
		r.AddAttrs(
			slog.String("trace_id", sc.TraceID().String()),
			slog.String("span_id", sc.SpanID().String()),
		)
	}
	if requestID := middleware.GetReqID(ctx); requestID != "" {
		r.AddAttrs(slog.String("request_id", requestID))
	}
	r.AddAttrs(attrsFrom(ctx)...)
	return h.Handler.Handle(ctx, r)
}

func (h *contextHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &contextHandler{h.Handler.WithAttrs(attrs)}
}

func (h *contextHandler) WithGroup(name string) slog.Handler {
	return &contextHandler{h.Handler.WithGroup(name)}
}

// Middleware logs one record per request. 5xx responses are logged at error
// level, 4xx at warn. The matched chi route pattern is recorded instead of
// the raw path when available, and RPC calls carry their procedure names.
func Middleware(log Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ctx := context.WithValue(r.Context(), attrsKey{}, &requestAttrs{})
			ww := &responseWriter{ResponseWriter: w, status: http.StatusOK}
			next.ServeHTTP(ww, r.WithContext(ctx))

			args := []any{
				"method", r.Method,
				"path", r.URL.Path,
				"status", ww.status,
				"bytes", ww.written,
				"latency_ms", time.Since(start).Milliseconds(),
				"remote_addr", r.RemoteAddr,
			}
			if rctx := chi.RouteContext(ctx); rctx != nil {
				if pattern := rctx.RoutePattern(); pattern != "" {
					args = append(args, "route", pattern)
				}
				if procs := rctx.URLParam("procedures"); procs != "" {
					args = append(args, "procedures", procs)
				}
			}
			switch {
			case ww.status >= http.StatusInternalServerError:
				log.ErrorContext(ctx, "request", args...)
			case ww.status >= http.StatusBadRequest:
				log.WarnContext(ctx, "request", args...)
			default:
				log.InfoContext(ctx, "request", args...)
			}
		})
	}
}

// Recovery turns a panic into a JSON 500 and logs it with the stack.
func Recovery(log Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if err := recover(); err != nil {
					if err == http.ErrAbortHandler {
						panic(err)
					}
					log.ErrorContext(r.Context(), "panic recovered",
						"error", err,
						"stack", string(debug.Stack()),
					)
					httpx.JSONError(w, http.StatusInternalServerError, http.StatusText(http.StatusInternalServerError))
				}
			}()
			next.ServeHTTP(w, r)
		})
	}
}

type responseWriter struct {
	http.ResponseWriter
	status  int
	written int
}

func (rw *responseWriter) WriteHeader(status int) {
	rw.status = status
	rw.ResponseWriter.WriteHeader(status)
}

func (rw *responseWriter) Write(b []byte) (int, error) {
	n, err := rw.ResponseWriter.Write(b)
	rw.written += n
	return n, err
}

// parseLevel accepts slog level names in any case, with offsets such as
// "debug+2". Anything unparseable logs at info.
func parseLevel(s string) slog.Level {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(s)); err != nil {
		return slog.LevelInfo
	}
	return lvl
}
