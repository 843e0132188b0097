package middleware

import (
	"log/slog"
	"net/http"
)

// SecurityHeaders sets conservative browser hardening headers on every response.
func SecurityHeaders(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h := w.Header()
		h.Set("X-DNS-Prefetch-Control", "off")
		h.Set("X-Download-Options", "noopen")
		h.Set("X-Permitted-Cross-Domain-Policies", "none")
		h.Set("X-Content-Type-Options", "nosniff")
		next.ServeHTTP(w, r)
	})
}

// forwardedHeaders are proxy headers a client has no business setting.
var forwardedHeaders = []string{"X-Forwarded-Host", "X-Forwarded-Server", "X-Forwarded-Uri"}

// RejectForwardedHeaders blocks requests carrying spoofable proxy headers when
// enforce is true and only logs them otherwise.
func RejectForwardedHeaders(enforce bool) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			for _, name := range forwardedHeaders {
				if r.Header.Get(name) == "" {
					continue
				}
				slog.WarnContext(r.Context(), "suspicious forwarded header",
					"header", name, "path", r.URL.Path, "ip", realIP(r))
				if enforce {
					writeJSONError(w, http.StatusForbidden, "forbidden")
					return
				}
				break
			}
			next.ServeHTTP(w, r)
		})
	}
}
