package middleware

import (
	"net/http"

	"github.com/uangku/uangku/internal/ctxkeys"
	"github.com/uangku/uangku/internal/service"
)

// TrackSiteView records one anonymized view per visitor per day. Only
// successful GET responses count; errors and redirects are not visits.
// Recording happens after the response is written and never affects it.
func TrackSiteView(siteViews *service.SiteViewService) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Method != http.MethodGet {
				next.ServeHTTP(w, r)
				return
			}

			rw := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}
			next.ServeHTTP(rw, r)

			if rw.statusCode >= 200 && rw.statusCode < 300 {
				siteViews.Record(ctxkeys.ClientIP(r.Context()))
			}
		})
	}
}
