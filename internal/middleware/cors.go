// Package middleware provides HTTP middleware components.
package middleware

import "net/http"

// CORS returns a middleware implementing the API's permissive
// cross-origin policy. The JSON endpoints are meant to be called from
// arbitrary front-ends, so every origin is allowed and preflight
// requests are answered directly with a 200 empty body.
func CORS() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Access-Control-Allow-Origin", "*")
			w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
			w.Header().Set("Access-Control-Allow-Methods", "GET, POST, DELETE, OPTIONS")

			if r.Method == http.MethodOptions {
				w.WriteHeader(http.StatusOK)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
