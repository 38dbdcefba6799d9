package middleware

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/council-xenith/internal/pkg/metrics"
	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
)

// Metrics records a request counter and a latency histogram per route.
// Routes are labelled with their chi pattern so path parameters do not
// explode label cardinality.
func Metrics(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := chimiddleware.NewWrapResponseWriter(w, r.ProtoMajor)
		defer func() {
			method := strings.ToUpper(r.Method)
			route := routePattern(r)
			status := ww.Status()
			if status == 0 {
				status = http.StatusOK
			}
			metrics.HTTPDuration.WithLabelValues(method, route).Observe(time.Since(start).Seconds())
			metrics.HTTPRequests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
		}()
		next.ServeHTTP(ww, r)
	})
}

func routePattern(r *http.Request) string {
	if rctx := chi.RouteContext(r.Context()); rctx != nil {
		if p := rctx.RoutePattern(); p != "" {
			return p
		}
	}
	return "unmatched"
}
