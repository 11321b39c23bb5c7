package middleware

import "net/http"

// Headers CORS fijos. Se aplican a TODAS las respuestas (incluye 405 y panics),
// no solo a requests con Origin, porque el front los espera siempre.
var corsHeaders = map[string]string{
	"Access-Control-Allow-Origin":  "*",
	"Access-Control-Allow-Methods": "GET, POST, OPTIONS",
	"Access-Control-Allow-Headers": "Content-Type",
	"Access-Control-Max-Age":       "86400",
}

func CORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h := w.Header()
		for k, v := range corsHeaders {
			h.Set(k, v)
		}
		next.ServeHTTP(w, r)
	})
}
