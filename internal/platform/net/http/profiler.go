package http

import (
	stdhttp "net/http"

	mw "github.com/go-chi/chi/v5/middleware"
)

// MountProfiler mounts pprof under prefix (for example "/debug") when enabled
func MountProfiler(r Router, prefix string, enabled bool) {
	if !enabled {
		return
	}
	h := stdhttp.StripPrefix(prefix, mw.Profiler())
	r.Get(prefix, func(w stdhttp.ResponseWriter, req *stdhttp.Request) { h.ServeHTTP(w, req) })
	r.Get(prefix+"/*", func(w stdhttp.ResponseWriter, req *stdhttp.Request) { h.ServeHTTP(w, req) })
}
