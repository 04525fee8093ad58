/*
server.go - HTTP router and middleware configuration

PURPOSE:
  Configures the HTTP router (chi), middleware stack, and route definitions.
  This is the wiring layer that connects URLs to handlers.

ROUTER: chi
  Chi was chosen for:
  - Lightweight and fast
  - Context-based
  - Middleware support
  - RESTful route patterns

MIDDLEWARE STACK:
  1. Logger:     Request logging
  2. Recoverer:  Panic recovery (500 instead of crash)
  3. RequestID:  Unique ID per request for tracing
  4. CORS:       Cross-origin requests for frontend

ROUTE GROUPS:
  /api/garnishment/*    Calculation, results, fee preview
  /api/rules/*          Rule snapshot management
  /*                    Landing page

SECURITY NOTE:
  No authentication middleware currently. All endpoints are public.

SEE ALSO:
  - handlers.go: Handler implementations
  - cmd/server/main.go: Server startup
*/
package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

// NewRouter creates a new router with all routes configured.
func NewRouter(h *Handler) *chi.Mux {
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"http://localhost:5173", "http://localhost:8080"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
	}))

	// API routes
	r.Route("/api", func(r chi.Router) {
		// Garnishment routes
		r.Route("/garnishment", func(r chi.Router) {
			r.Post("/calculate", h.CalculateBatch)
			r.Get("/results/{ee_id}", h.GetEmployeeResults)
			r.Get("/batches/{id}", h.GetBatch)
			r.Get("/fees/preview", h.FeePreview)
		})

		// Rule snapshot routes
		r.Route("/rules", func(r chi.Router) {
			r.Get("/", h.GetRules)
			r.Get("/export", h.ExportRules)
			r.Post("/", h.UploadRules)
		})
	})

	// Landing page with endpoint index
	r.Get("/*", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		w.Write([]byte(`<!DOCTYPE html>
<html>
<head><title>Garnishment Engine</title></head>
<body style="font-family: system-ui; max-width: 800px; margin: 50px auto; padding: 20px;">
<h1>Garnishment Engine API</h1>
<p>Wage garnishment withholding calculation service.</p>
<h2>API Endpoints</h2>
<ul>
<li><code>POST /api/garnishment/calculate</code> - Run a batch calculation</li>
<li><code>GET /api/garnishment/results/{ee_id}</code> - Stored results for an employee</li>
<li><code>GET /api/garnishment/batches/{id}</code> - Batch metadata</li>
<li><code>GET /api/garnishment/fees/preview</code> - Fee rule lookup</li>
<li><a href="/api/rules">/api/rules</a> - Active rule snapshot</li>
</ul>
</body>
</html>`))
	})

	return r
}
