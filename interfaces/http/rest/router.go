package rest

import (
	"net/http"

	"hard-backend/application/services"
	"hard-backend/interfaces/http/rest/handlers"
	"hard-backend/interfaces/http/rest/middleware"
	pkgerrors "hard-backend/pkg/errors"
	"hard-backend/pkg/observability"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.uber.org/zap"
)

// Services are the application services the routes dispatch to.
type Services struct {
	Workouts      *services.WorkoutService
	Exercises     *services.ExerciseService
	Sets          *services.SetService
	Tags          *services.TagService
	ExerciseJoins *services.ExerciseJoinService
	TagJoins      *services.TagJoinService
	Templates     *services.TemplateService
	Relations     *services.Relations
}

// Options configures the optional middleware.
type Options struct {
	Auth        middleware.AuthOptions
	CORSOrigins []string // CORS is disabled when empty
	Metrics     *observability.Metrics
	Prometheus  *observability.Collector // also serves /metrics when set
	Tracer      *observability.Tracer
}

// Router creates and configures the HTTP router
type Router struct {
	services Services
	options  Options
	errors   *pkgerrors.ErrorHandler
	logger   *zap.Logger
}

// NewRouter creates a new router instance
func NewRouter(svc Services, opts Options, errorHandler *pkgerrors.ErrorHandler, logger *zap.Logger) *Router {
	return &Router{
		services: svc,
		options:  opts,
		errors:   errorHandler,
		logger:   logger,
	}
}

// crudHandler is the route set every collection exposes.
type crudHandler interface {
	List(w http.ResponseWriter, r *http.Request)
	Get(w http.ResponseWriter, r *http.Request)
	Create(w http.ResponseWriter, r *http.Request)
	Update(w http.ResponseWriter, r *http.Request)
	Delete(w http.ResponseWriter, r *http.Request)
}

// Setup configures all routes and middleware
func (rt *Router) Setup() *chi.Mux {
	router := chi.NewRouter()

	// Global middleware
	router.Use(chimiddleware.RequestID)
	router.Use(chimiddleware.RealIP)
	router.Use(rt.options.Tracer.Middleware)
	router.Use(middleware.Logger(rt.logger))
	router.Use(rt.errors.Middleware)
	router.Use(rt.options.Metrics.Middleware)
	router.Use(rt.options.Prometheus.Middleware)

	if len(rt.options.CORSOrigins) > 0 {
		router.Use(cors.Handler(cors.Options{
			AllowedOrigins:   rt.options.CORSOrigins,
			AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
			AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"},
			ExposedHeaders:   []string{"X-Request-ID"},
			AllowCredentials: true,
			MaxAge:           300,
		}))
	}

	router.Get("/health", rt.healthCheck)
	if rt.options.Prometheus != nil {
		router.Handle("/metrics", rt.options.Prometheus.Handler())
	}

	router.Route("/api", func(r chi.Router) {
		r.Use(middleware.Authenticate(rt.options.Auth, rt.errors, rt.logger))

		r.Get("/user", handlers.NewUserHandler(rt.errors).Me)

		relations := rt.services.Relations
		mount(r, "/workouts", handlers.NewWorkoutHandler(rt.services.Workouts, relations, rt.errors, rt.logger))
		mount(r, "/exercises", handlers.NewExerciseHandler(rt.services.Exercises, relations, rt.errors, rt.logger))
		mount(r, "/sets", handlers.NewSetHandler(rt.services.Sets, relations, rt.errors, rt.logger))
		mount(r, "/tags", handlers.NewTagHandler(rt.services.Tags, relations, rt.errors, rt.logger))
		mount(r, "/tag-joins", handlers.NewTagJoinHandler(rt.services.TagJoins, relations, rt.errors, rt.logger))
		mount(r, "/templates", handlers.NewObjectHandler(rt.services.Templates, rt.errors, rt.logger))

		exerciseJoins := handlers.NewExerciseJoinHandler(rt.services.ExerciseJoins, relations, rt.errors, rt.logger)
		mount(r, "/exercise-joins", exerciseJoins, func(r chi.Router) {
			r.Delete("/", exerciseJoins.DeleteByPair)
		})
	})

	return router
}

func mount(r chi.Router, pattern string, h crudHandler, extra ...func(chi.Router)) {
	r.Route(pattern, func(r chi.Router) {
		r.Get("/", h.List)
		r.Post("/", h.Create)
		r.Get("/{id}", h.Get)
		r.Put("/{id}", h.Update)
		r.Delete("/{id}", h.Delete)
		for _, fn := range extra {
			fn(r)
		}
	})
}

// healthCheck handles health check requests
func (rt *Router) healthCheck(w http.ResponseWriter, req *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"status":"healthy"}`))
}
