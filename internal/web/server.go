// Package web serves the REST and WebSocket presentation surface over
// the Catalog, Clusterer, and pipeline Runner, in the same chi-based
// server shape as the teacher's own web server.
package web

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"time"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/jnovak/facecat/internal/catalog"
	"github.com/jnovak/facecat/internal/cluster"
	"github.com/jnovak/facecat/internal/pipeline"
	"github.com/jnovak/facecat/internal/web/handlers"
	"github.com/jnovak/facecat/internal/web/ws"
)

var logger = log.New(os.Stderr, "[web] ", log.LstdFlags)

// Server is the facecat HTTP/WebSocket server.
type Server struct {
	router     *chi.Mux
	httpServer *http.Server
	hub        *ws.Hub
	jobManager *handlers.JobManager
}

// NewServer wires the Catalog Store, Clusterer Engine, and pipeline
// Runner into routed HTTP handlers and a live progress hub.
func NewServer(store *catalog.Store, engine *cluster.Engine, runner *pipeline.Runner, host string, port int) *Server {
	r := chi.NewRouter()
	hub := ws.NewHub()
	jobManager := handlers.NewJobManager()

	s := &Server{router: r, hub: hub, jobManager: jobManager}

	r.Use(chiMiddleware.RequestID)
	r.Use(chiMiddleware.RealIP)
	r.Use(chiMiddleware.Logger)
	r.Use(chiMiddleware.Recoverer)
	r.Use(chiMiddleware.Timeout(5 * time.Minute))

	s.setupRoutes(store, engine, runner)

	s.httpServer = &http.Server{
		Addr:         fmt.Sprintf("%s:%d", host, port),
		Handler:      r,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 5 * time.Minute,
		IdleTimeout:  60 * time.Second,
	}
	return s
}

func (s *Server) setupRoutes(store *catalog.Store, engine *cluster.Engine, runner *pipeline.Runner) {
	photos := handlers.NewPhotosHandler(store)
	faces := handlers.NewFacesHandler(store)
	clusters := handlers.NewClustersHandler(store, engine)
	persons := handlers.NewPersonsHandler(store)
	jobs := handlers.NewJobsHandler(runner, s.jobManager, s.hub.Broadcast)

	s.router.Get("/api/v1/health", handlers.HealthCheck)
	s.router.Handle("/metrics", promhttp.Handler())
	s.router.Get("/ws/progress", s.hub.HandleWS)

	s.router.Route("/api/v1", func(r chi.Router) {
		r.Get("/photos/{id}", photos.Get)
		r.Get("/persons/{id}/photos", photos.ListForPerson)

		r.Get("/faces", faces.List)
		r.Get("/faces/{id}", faces.Get)
		r.Get("/photos/{id}/faces", faces.ListForPhoto)
		r.Get("/clusters/{id}/faces", faces.ListForCluster)

		r.Get("/clusters", clusters.List)
		r.Get("/clusters/stats", clusters.Stats)
		r.Get("/clusters/suggestions", clusters.Suggestions)
		r.Get("/clusters/{id}/representative", clusters.Representative)
		r.Post("/clusters/{id}/merge", clusters.Merge)
		r.Post("/clusters/{id}/split", clusters.Split)
		r.Post("/clusters/{id}/person", clusters.AssignPerson)
		r.Delete("/clusters/{id}/person", clusters.UnassignPerson)

		r.Get("/persons", persons.List)
		r.Post("/persons", persons.Create)
		r.Get("/persons/{id}", persons.Get)
		r.Put("/persons/{id}", persons.Update)
		r.Delete("/persons/{id}", persons.Delete)

		r.Post("/jobs", jobs.Start)
		r.Get("/jobs", jobs.List)
		r.Get("/jobs/{id}", jobs.Get)
		r.Post("/jobs/{id}/cancel", jobs.Cancel)
	})
}

// Start runs the hub's event loop and serves HTTP until Shutdown.
func (s *Server) Start() error {
	go s.hub.Run()
	logger.Printf("starting web server on %s", s.httpServer.Addr)
	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("starting server: %w", err)
	}
	return nil
}

// Shutdown gracefully stops the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	logger.Println("shutting down web server")
	if err := s.httpServer.Shutdown(ctx); err != nil {
		return fmt.Errorf("shutting down server: %w", err)
	}
	return nil
}

// Router returns the chi router, for tests.
func (s *Server) Router() *chi.Mux {
	return s.router
}
