package middleware

import (
	"net/http"
	"time"

	"github.com/go-chi/httprate"

	pkghttp "github.com/smartfarm/auth-api/pkg/http"
)

// LoginRateLimit throttles credential checks per client IP. The window is
// long on purpose: it bounds online password guessing, not general traffic.
func LoginRateLimit(requests int, window time.Duration) func(next http.Handler) http.Handler {
	return httprate.Limit(
		requests,
		window,
		httprate.WithKeyByRealIP(),
		httprate.WithLimitHandler(func(w http.ResponseWriter, r *http.Request) {
			pkghttp.WriteTooManyRequests(w, "Too many login attempts, try again later")
		}),
	)
}
