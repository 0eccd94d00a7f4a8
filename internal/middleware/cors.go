package middleware

import (
	"net/http"

	"github.com/rs/cors"
)

// NewCORS allows browser clients from origins to call the Connect
// procedures. "*" allows any origin.
func NewCORS(origins []string) func(http.Handler) http.Handler {
	c := cors.New(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{
			"Content-Type",
			"Connect-Protocol-Version",
			"Connect-Timeout-Ms",
			RequestIDHeader,
		},
		ExposedHeaders: []string{
			"Connect-Protocol-Version",
			"Connect-Timeout-Ms",
			RequestIDHeader,
		},
		MaxAge: 300, // 5 minutes
	})

	return c.Handler
}
