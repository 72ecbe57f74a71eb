// Package api exposes the chart and client services over JSON HTTP.
package api

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/flav-dev/flav/internal/accounts"
	"github.com/flav-dev/flav/internal/clients"
	"github.com/flav-dev/flav/internal/groups"
	"github.com/flav-dev/flav/internal/model"
)

// ActorHeader names the caller recorded in the audit log.
const ActorHeader = "X-User-Email"

const (
	defaultActor   = "admin"
	chartNamespace = "chart"
)

// Auditor records committed mutations.
type Auditor interface {
	Record(actor, namespace, action, targetID, details string) error
}

// ChartSaver persists the chart namespace after each change.
type ChartSaver interface {
	SaveChart(ctx context.Context, namespace string, snap model.ChartSnapshot) error
}

// Deps are the services behind the API. Charts and Audit are optional.
type Deps struct {
	Groups  *groups.Store
	Clients *clients.Service
	Pogo    *accounts.Service
	Charts  ChartSaver
	Audit   Auditor
	Logger  *slog.Logger
}

// Server holds the HTTP handlers.
type Server struct {
	groups  *groups.Store
	clients *clients.Service
	pogo    *accounts.Service
	charts  ChartSaver
	audit   Auditor
	logger  *slog.Logger
}

// New creates a Server.
func New(d Deps) *Server {
	logger := d.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Server{
		groups:  d.Groups,
		clients: d.Clients,
		pogo:    d.Pogo,
		charts:  d.Charts,
		audit:   d.Audit,
		logger:  logger,
	}
}

// Handler returns the router. allowedOrigins enables CORS for browser
// frontends; nil disables it.
func (s *Server) Handler(allowedOrigins []string) http.Handler {
	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.RequestLogger(&chimw.DefaultLogFormatter{
		Logger:  slog.NewLogLogger(s.logger.Handler(), slog.LevelInfo),
		NoColor: true,
	}))
	r.Use(chimw.Recoverer)
	if len(allowedOrigins) > 0 {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins: allowedOrigins,
			AllowedMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
			AllowedHeaders: []string{"Accept", "Content-Type", ActorHeader},
			ExposedHeaders: []string{"Content-Disposition"},
			MaxAge:         300,
		}))
	}

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Route("/v1", func(r chi.Router) {
		r.Route("/groups", func(r chi.Router) {
			r.Get("/", s.listGroups)
			r.Post("/", s.createGroup)
			r.Put("/{id}", s.updateGroup)
			r.Delete("/{id}", s.deleteGroup)
			r.Post("/{id}/accounts/{accountId}", s.linkAccount)
			r.Delete("/{id}/accounts/{accountId}", s.unlinkAccount)
		})
		r.Route("/accounts", func(r chi.Router) {
			r.Get("/", s.listAccounts)
			r.Post("/", s.createAccount)
			r.Put("/{id}", s.updateAccount)
			r.Delete("/{id}", s.deleteAccount)
		})
		r.Get("/pogo/accounts", s.listPogoAccounts)
		r.Route("/clients", s.clientRoutes)
	})
	return r
}

func (s *Server) record(r *http.Request, namespace, action, targetID, details string) {
	if s.audit == nil {
		return
	}
	actor := r.Header.Get(ActorHeader)
	if actor == "" {
		actor = defaultActor
	}
	if err := s.audit.Record(actor, namespace, action, targetID, details); err != nil {
		s.logger.Error("writing audit log", "action", action, "target", targetID, "error", err)
	}
}

// chartChanged persists the chart and audits the change. Persistence is
// best effort; failures are logged.
func (s *Server) chartChanged(r *http.Request, action, targetID, details string) {
	if s.charts != nil {
		if err := s.charts.SaveChart(r.Context(), chartNamespace, s.groups.Snapshot()); err != nil {
			s.logger.Error("saving chart snapshot", "action", action, "error", err)
		}
	}
	s.record(r, chartNamespace, action, targetID, details)
}
