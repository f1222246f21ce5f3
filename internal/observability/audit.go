package observability

import (
	"log/slog"
	"net/http"

	chimiddleware "github.com/go-chi/chi/v5/middleware"
)

// Audit emits a structured audit event for an inbound request. Attrs must
// never contain raw tokens or passwords; callers log subject ids and
// outcomes only.
func Audit(r *http.Request, event string, attrs ...any) {
	fields := make([]any, 0, 8+len(attrs))
	fields = append(fields,
		"event", event,
		"method", r.Method,
		"path", r.URL.Path,
		"request_id", chimiddleware.GetReqID(r.Context()),
	)
	fields = append(fields, attrs...)
	slog.InfoContext(r.Context(), "audit", fields...)
}
