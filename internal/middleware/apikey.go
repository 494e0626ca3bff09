package middleware

import (
	"crypto/subtle"
	"log/slog"
	"net/http"

	"astro-server/internal/shared/config"
)

// APIKey gates requests on a shared key header when one is configured.
// With no key configured the middleware passes everything through,
// which is the expected mode for local development.
type APIKey struct {
	key    string
	header string
}

func NewAPIKey() *APIKey {
	cfg := config.GlobalConfig.Auth
	logger := slog.With("component", "api_key", "operation", "setup")

	if cfg.APIKey == "" {
		logger.Info("API key not configured, requests are unauthenticated")
	} else {
		logger.Info("API key middleware configured", "header", cfg.APIKeyHeader)
	}

	return &APIKey{key: cfg.APIKey, header: cfg.APIKeyHeader}
}

func (a *APIKey) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if a.key == "" {
			next.ServeHTTP(w, r)
			return
		}

		presented := r.Header.Get(a.header)
		if subtle.ConstantTimeCompare([]byte(presented), []byte(a.key)) != 1 {
			slog.Warn("Rejected request with bad API key",
				"middleware", "api_key",
				"path", r.URL.Path,
			)
			http.Error(w, "Invalid or missing API key", http.StatusUnauthorized)
			return
		}

		next.ServeHTTP(w, r)
	})
}
