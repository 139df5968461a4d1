// Package rest wires the HTTP surface: routing, middleware and handlers.
package rest

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.uber.org/zap"

	"stratgraph/infrastructure/di"
	"stratgraph/interfaces/http/rest/handlers"
	"stratgraph/interfaces/http/rest/middleware"
	apperrors "stratgraph/pkg/errors"
)

// Router creates and configures the HTTP router
type Router struct {
	container *di.Container
	logger    *zap.Logger
}

// NewRouter creates a new router instance
func NewRouter(container *di.Container) *Router {
	return &Router{
		container: container,
		logger:    container.Logger,
	}
}

// Setup configures all routes and middleware
func (rt *Router) Setup() http.Handler {
	router := chi.NewRouter()
	c := rt.container

	// Global middleware
	router.Use(chimiddleware.RequestID)
	router.Use(chimiddleware.RealIP)
	router.Use(chimiddleware.Recoverer)
	router.Use(middleware.Logger(rt.logger))

	if c.Config.EnableCORS {
		router.Use(cors.Handler(cors.Options{
			AllowedOrigins:   []string{"*"},
			AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
			AllowedHeaders:   []string{"Accept", "Content-Type", "X-Request-ID"},
			ExposedHeaders:   []string{"X-Request-ID"},
			AllowCredentials: false,
			MaxAge:           300,
		}))
	}

	// Health check
	router.Get("/health", rt.healthCheck)
	router.Get("/ready", rt.readinessCheck)

	errorHandler := apperrors.NewErrorHandler(rt.logger, c.Config.IsDevelopment())

	queryHandler := handlers.NewQueryHandler(c.CommandBus, c.QueryBus, c.QueryRepo, errorHandler, rt.logger)
	graphHandler := handlers.NewGraphHandler(c.CommandBus, c.QueryBus, c.GraphRepo, errorHandler, rt.logger)
	nodeHandler := handlers.NewNodeHandler(c.QueryBus, c.NodeChat, c.Quiz, c.GraphRepo, c.QueryRepo, c.DocumentRepo, errorHandler, rt.logger)
	documentHandler := handlers.NewDocumentHandler(c.CommandBus, c.QueryBus, errorHandler, rt.logger)

	router.Route("/api", func(r chi.Router) {
		r.Route("/queries", func(r chi.Router) {
			r.Post("/", queryHandler.CreateQuery)
			r.Get("/", queryHandler.ListQueries)
			r.Get("/{queryID}", queryHandler.GetQuery)
			r.Get("/{queryID}/graph", graphHandler.GetGraphByQuery)
		})

		r.Route("/graphs/{graphID}", func(r chi.Router) {
			r.Get("/", graphHandler.GetGraph)
			r.Put("/", graphHandler.UpdateGraph)
			r.Get("/filtered", graphHandler.FilterGraph)

			r.Route("/nodes/{nodeID}", func(r chi.Router) {
				r.Get("/", nodeHandler.GetNode)
				r.Post("/chat", nodeHandler.Chat)
				r.Post("/quiz", nodeHandler.Quiz)
				r.Get("/questions", nodeHandler.SuggestedQuestions)
			})
		})

		r.Route("/documents", func(r chi.Router) {
			r.Post("/", documentHandler.IngestDocument)
			r.Get("/", documentHandler.ListDocuments)
		})
	})

	return router
}

// healthCheck handles health check requests
func (rt *Router) healthCheck(w http.ResponseWriter, req *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"status":"healthy"}`))
}

// readinessCheck handles readiness check requests
func (rt *Router) readinessCheck(w http.ResponseWriter, req *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"status":"ready"}`))
}
