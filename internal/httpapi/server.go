package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"

	"github.com/set-night/orderboard/internal/config"
	"github.com/set-night/orderboard/internal/domain"
	"github.com/set-night/orderboard/internal/service"
)

// Response is the envelope of every API reply.
type Response struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
	Data    any    `json:"data,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, resp Response) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(resp)
}

type Deps struct {
	Catalog  *service.CatalogService
	Ledger   *service.LedgerService
	Members  *service.MemberService
	Workflow *service.WorkflowService
	Resets   *service.ResetService
}

// Server exposes read-only views of the catalog, ledger and archives.
type Server struct {
	catalog  *service.CatalogService
	ledger   *service.LedgerService
	members  *service.MemberService
	workflow *service.WorkflowService
	resets   *service.ResetService
	now      func() time.Time
}

func New(d Deps) *Server {
	return &Server{
		catalog:  d.Catalog,
		ledger:   d.Ledger,
		members:  d.Members,
		workflow: d.Workflow,
		resets:   d.Resets,
		now:      time.Now,
	}
}

func (s *Server) Router() *mux.Router {
	r := mux.NewRouter()
	r.HandleFunc("/healthz", s.health).Methods(http.MethodGet)

	api := r.PathPrefix("/api").Subrouter()
	api.HandleFunc("/tasks", s.listTasks).Methods(http.MethodGet)
	api.HandleFunc("/leaderboard/{period}", s.leaderboard).Methods(http.MethodGet)
	api.HandleFunc("/members/{id}", s.member).Methods(http.MethodGet)
	api.HandleFunc("/submissions/{id}", s.submission).Methods(http.MethodGet)
	api.HandleFunc("/archives/{period}", s.archives).Methods(http.MethodGet)

	r.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusNotFound, Response{Message: "not found"})
	})
	return r
}

// ListenAndServe serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:         addr,
		Handler:      s.Router(),
		ReadTimeout:  config.HTTPReadTimeout,
		WriteTimeout: config.HTTPWriteTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("http api listening", "addr", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), config.HTTPShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, Response{
		Success: true,
		Data: map[string]any{
			"status":    "healthy",
			"timestamp": s.now().Unix(),
		},
	})
}

// fail maps domain errors to status codes; anything else is a 500.
func fail(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, domain.ErrValidation):
		writeJSON(w, http.StatusBadRequest, Response{Message: err.Error()})
	case errors.Is(err, domain.ErrTaskNotFound),
		errors.Is(err, domain.ErrSubmissionNotFound),
		errors.Is(err, domain.ErrMemberNotFound):
		writeJSON(w, http.StatusNotFound, Response{Message: err.Error()})
	default:
		slog.Error("http api", "error", err, "path", r.URL.Path)
		writeJSON(w, http.StatusInternalServerError, Response{Message: "internal error"})
	}
}

func limitParam(r *http.Request) (int, error) {
	raw := r.URL.Query().Get("limit")
	if raw == "" {
		return config.ArchiveHistoryLimit, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n <= 0 || n > config.MaxArchiveLimit {
		return 0, &domain.ValidationError{Field: "limit", Reason: "must be between 1 and " + strconv.Itoa(config.MaxArchiveLimit)}
	}
	return n, nil
}
