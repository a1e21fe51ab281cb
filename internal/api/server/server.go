package server

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/xela07ax/taskhub/internal/api/handler"
	"github.com/xela07ax/taskhub/internal/domain"
	"github.com/xela07ax/taskhub/internal/infra"
	"github.com/xela07ax/taskhub/internal/infra/auth"
	"go.uber.org/zap"
)

// Handlers — обработчики бизнес-доменов
type Handlers struct {
	Auth     *handler.AuthHandler    // /api/v1/auth
	Users    *handler.UserHandler    // /api/v1/users
	Projects *handler.ProjectHandler // /api/v1/projects
	Tasks    *handler.TaskHandler    // /api/v1/tasks
}

type APIServer struct {
	router *chi.Mux
	logger *zap.Logger

	// Проверка bearer-токенов (RS256)
	validator auth.TokenValidator

	metrics  *infra.Metrics
	gatherer prometheus.Gatherer
	h        Handlers
}

// NewAPIServer собирает роутер. gatherer может быть nil, тогда /metrics не публикуется.
func NewAPIServer(
	logger *zap.Logger,
	validator auth.TokenValidator,
	metrics *infra.Metrics,
	gatherer prometheus.Gatherer,
	h Handlers,
) *APIServer {
	s := &APIServer{
		router:    chi.NewRouter(),
		logger:    logger.Named("api"),
		validator: validator,
		metrics:   metrics,
		gatherer:  gatherer,
		h:         h,
	}
	s.routes()
	return s
}

func (s *APIServer) routes() {
	r := s.router

	// --- Инфраструктурные middleware ---
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(Tracing)
	r.Use(Instrument(s.logger, s.metrics))
	r.Use(middleware.Recoverer)

	// --- Публичные роуты ---
	r.Group(func(r chi.Router) {
		r.Post("/api/v1/auth/login", s.h.Auth.Login)

		r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusOK)
		})
		if s.gatherer != nil {
			r.Handle("/metrics", promhttp.HandlerFor(s.gatherer, promhttp.HandlerOpts{}))
		}
	})

	// --- Защищенный периметр ---
	r.Group(func(r chi.Router) {
		r.Use(auth.NewMiddleware(s.validator, s.logger))

		r.Route("/api/v1/users", func(r chi.Router) {
			// собственная учетка
			r.Group(func(r chi.Router) {
				r.Use(auth.RequireRole(domain.RoleUser))
				r.Get("/self", s.h.Users.Self)
				r.Put("/self/password", s.h.Users.ChangePassword)
			})

			// администрирование
			r.Group(func(r chi.Router) {
				r.Use(auth.RequireRole(domain.RoleAdmin))
				r.Get("/", s.h.Users.List)
				r.Post("/", s.h.Users.Create)
				r.Route("/{id}", func(r chi.Router) {
					r.Get("/", s.h.Users.Get)
					r.Put("/", s.h.Users.Update)
					r.Delete("/", s.h.Users.Delete)
				})
			})
		})

		r.Route("/api/v1/projects", func(r chi.Router) {
			r.Use(auth.RequireRole(domain.RoleUser))
			r.Get("/", s.h.Projects.List)
			r.Post("/", s.h.Projects.Create)
			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", s.h.Projects.Get)
				r.Put("/", s.h.Projects.Update)
				r.Delete("/", s.h.Projects.Delete)
			})
		})

		r.Route("/api/v1/tasks", func(r chi.Router) {
			r.Use(auth.RequireRole(domain.RoleUser))
			r.Get("/", s.h.Tasks.List)
			r.Post("/", s.h.Tasks.Create)
			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", s.h.Tasks.Get)
				r.Put("/", s.h.Tasks.Update)
				r.Delete("/", s.h.Tasks.Delete)
				r.Put("/complete", s.h.Tasks.Complete)
			})
		})
	})
}

// ServeHTTP позволяет использовать APIServer как http.Handler
func (s *APIServer) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}
