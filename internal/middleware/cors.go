package middleware

import "net/http"

// CORS sets the relay's permissive cross-origin headers on every response.
func CORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h := w.Header()
		h.Set("Access-Control-Allow-Origin", "*")
		h.Set("Access-Control-Allow-Headers", "Content-Type")
		h.Set("Access-Control-Allow-Methods", "POST, OPTIONS")
		next.ServeHTTP(w, r)
	})
}
