package web

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"chinese-translation-service/internal/domain/ports/repository"
	"chinese-translation-service/internal/infra/queue"
)

type Server struct {
	mgr      *queue.Manager
	streamer *queue.Streamer
	repo     repository.JobRepository
	auth     *AuthManager
	log      *zerolog.Logger
}

func NewServer(
	mgr *queue.Manager,
	streamer *queue.Streamer,
	repo repository.JobRepository,
	auth *AuthManager,
	logger *zerolog.Logger,
) *Server {
	return &Server{
		mgr:      mgr,
		streamer: streamer,
		repo:     repo,
		auth:     auth,
		log:      logger,
	}
}

// Router builds the full route table. Job submission and reads are open;
// deletion requires an admin session obtained via /api/admin/login.
func (s *Server) Router() *chi.Mux {
	r := chi.NewRouter()

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api", func(r chi.Router) {
		r.Post("/admin/login", adminLoginHandler(s.auth))
		r.Post("/admin/logout", adminLogoutHandler(s.auth))

		r.Route("/jobs", func(r chi.Router) {
			r.Post("/", jobsCreateHandler(s.mgr, s.log))
			r.Get("/", jobsListHandler(s.repo, s.log))
			r.Get("/{jobID}", jobGetHandler(s.repo, s.log))
			r.Get("/{jobID}/status", jobStatusHandler(s.mgr, s.repo, s.log))
			r.Get("/{jobID}/stream", streamHandler(s.streamer, s.log))
			r.With(s.requireAdmin).Delete("/{jobID}", jobDeleteHandler(s.repo, s.mgr, s.log))
		})
	})

	return r
}

func (s *Server) requireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, err := s.auth.ParseFromRequest(r); err != nil {
			http.Error(w, "Unauthorized", http.StatusUnauthorized)
			return
		}
		next.ServeHTTP(w, r)
	})
}
