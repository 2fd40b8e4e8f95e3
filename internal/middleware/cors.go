package middleware

import (
	"net/http"

	"github.com/gorilla/handlers"
)

// CORS wraps the whole handler so preflight requests are answered before gin routing.
func CORS(origins []string) func(http.Handler) http.Handler {
	return handlers.CORS(
		handlers.AllowedOrigins(origins),
		handlers.AllowedMethods([]string{
			http.MethodGet, http.MethodPost, http.MethodPatch, http.MethodDelete, http.MethodOptions,
		}),
		handlers.AllowedHeaders([]string{"Content-Type", "Accept", "Origin", "X-Requested-With", RequestIDHeader}),
		handlers.ExposedHeaders([]string{RequestIDHeader, "Content-Disposition"}),
		handlers.AllowCredentials(),
		handlers.MaxAge(600),
	)
}
