package middleware

import (
	"crypto/subtle"
	"net/http"
	"strings"

	perr "reviewnexus/internal/platform/errors"
	pnet "reviewnexus/internal/platform/net"
)

// AuthPort is a tiny seam guards implement to admit or reject a request
type AuthPort interface {
	// Parse inspects the request and returns an error when it must be rejected
	Parse(r *http.Request) error
}

// Auth rejects requests the port refuses. A nil port admits everything
func Auth(p AuthPort, write func(w http.ResponseWriter, status int, body any)) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if p == nil {
				next.ServeHTTP(w, r)
				return
			}
			if err := p.Parse(r); err != nil {
				status, body := pnet.Error(err, pnet.RequestID(r.Context()))
				write(w, status, body)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// SchedulerAuth admits requests carrying either a bearer token matching
// secret or a trusted scheduler header. When secret is empty, only the
// scheduler header admits
type SchedulerAuth struct {
	Secret string
	// Header is the name of the trusted scheduler header, for example
	// the one set by the platform cron runner. Its presence alone admits
	Header string
}

// Parse implements AuthPort
func (a SchedulerAuth) Parse(r *http.Request) error {
	if a.Header != "" && r.Header.Get(a.Header) != "" {
		return nil
	}
	if a.Secret != "" {
		got := strings.TrimPrefix(r.Header.Get("Authorization"), "Bearer ")
		if subtle.ConstantTimeCompare([]byte(got), []byte(a.Secret)) == 1 {
			return nil
		}
	}
	return perr.Unauthorizedf("scheduler credentials required")
}
