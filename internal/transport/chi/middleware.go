package chi

import (
	"net/http"

	"github.com/mediacloud/news-search-api/internal/version"
)

const apiVersionHeader = "x-api-version"

// CORSMiddleware allows browser clients from any origin and exposes the
// pagination and version headers to them.
func CORSMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h := w.Header()
		h.Set("Access-Control-Allow-Origin", "*")
		h.Set("Access-Control-Allow-Methods", "GET, HEAD, POST, OPTIONS")
		h.Set("Access-Control-Allow-Headers", "*")
		h.Set("Access-Control-Expose-Headers", resumeTokenHeader+", "+apiVersionHeader)

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// VersionMiddleware stamps every response with the running API version.
func VersionMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set(apiVersionHeader, version.Version)
		next.ServeHTTP(w, r)
	})
}
