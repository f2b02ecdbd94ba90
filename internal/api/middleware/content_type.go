package middleware

import (
	"net/http"

	"github.com/MinhPhan8803/cumtd/internal/api/models"
)

// ContentTypeJSON defaults the response Content-Type to application/json.
// Handlers may override it, as problem responses do.
func ContentTypeJSON(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if w.Header().Get("Content-Type") == "" {
			w.Header().Set("Content-Type", "application/json")
		}
		next.ServeHTTP(w, r)
	})
}

// ReadOnly rejects every method other than GET, HEAD and OPTIONS with 405.
func ReadOnly(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet, http.MethodHead, http.MethodOptions:
			next.ServeHTTP(w, r)
		default:
			w.Header().Set("Allow", "GET, HEAD, OPTIONS")
			problem := models.NewMethodNotAllowed(GetRequestID(r.Context()), r.Method+" is not supported")
			problem.Instance = r.URL.Path
			problem.Write(w)
		}
	})
}
