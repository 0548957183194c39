package httpkit

import (
	"compress/flate"
	"net/http"
	"time"

	phttp "reviewnexus/internal/platform/net/http"
	"reviewnexus/internal/platform/net/middleware"
)

// CommonStack returns the baseline middleware slice for the API scope.
// Compose with scheduler auth or CORS tweaks in main as needed
func CommonStack() []func(http.Handler) http.Handler {
	return []func(http.Handler) http.Handler{
		// tracing / correlation
		middleware.RequestID(),
		middleware.RealIP(),
		middleware.RequestContext(),

		// safety
		middleware.RecoverJSON,

		// cache / freshness
		middleware.NoCache(),

		// observability
		middleware.AccessLog,

		// cross-origin, access hit beacons post from the page origin
		middleware.CORS(middleware.CORSOptions{AllowedOrigins: []string{"*"}}),
		middleware.Compress(flate.BestSpeed),
		middleware.Heartbeat("/health"),
		middleware.Timeout(30 * time.Second),
	}
}

// Auth wires an auth port to the platform JSON writer
func Auth(p middleware.AuthPort) func(http.Handler) http.Handler {
	return middleware.Auth(p, phttp.JSON)
}

// Protected groups routes behind the given auth port
func Protected(r Router, p middleware.AuthPort, fn func(Router)) {
	r.Group(func(gr Router) {
		gr.Use(Auth(p))
		fn(gr)
	})
}
