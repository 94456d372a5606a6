package http

import (
	"net/http"
	"time"

	"realty-places/internal/api"
	"realty-places/internal/middleware"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

type Router struct {
	chi.Router
}

// NewRouter builds the root router. handlerTimeout bounds each request,
// the upstream call included; development controls panic detail.
func NewRouter(handlerTimeout time.Duration, development bool) *Router {
	r := chi.NewRouter()

	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.Logging)
	r.Use(middleware.Recovery(development))
	if handlerTimeout > 0 {
		r.Use(chimiddleware.Timeout(handlerTimeout))
	}

	// Preflights pass through so the proxy answers them itself.
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:     []string{"*"},
		AllowedMethods:     []string{"GET", "OPTIONS"},
		AllowedHeaders:     []string{"Content-Type"},
		OptionsPassthrough: true,
		MaxAge:             300,
	}))

	return &Router{r}
}

// RegisterPlacesRoutes registers the proxy and sample routes
func (r *Router) RegisterPlacesRoutes(placesHandler *PlacesHandler) {
	placesHandler.RegisterRoutes(r)
}

// RegisterHealthRoutes registers health check routes. Readiness reports
// "degraded" when the proxy has no upstream credential.
func (r *Router) RegisterHealthRoutes(hasCredential bool) {
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		api.WriteJSON(w, http.StatusOK, map[string]string{
			"status":    "ok",
			"timestamp": api.Timestamp(time.Now()),
		})
	})

	r.Get("/ready", func(w http.ResponseWriter, r *http.Request) {
		status := "ready"
		if !hasCredential {
			status = "degraded"
		}
		api.WriteJSON(w, http.StatusOK, map[string]string{
			"status":    status,
			"timestamp": api.Timestamp(time.Now()),
		})
	})
}
