package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"bread-calculator/internal/auth"
	"bread-calculator/internal/calculator"
	"bread-calculator/internal/httputil"
	"bread-calculator/internal/logging"
	"bread-calculator/internal/metrics"
	"bread-calculator/internal/models"
	"bread-calculator/internal/storage"

	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"
)

const shutdownTimeout = 5 * time.Second

type Deps struct {
	Store  *storage.Store
	Tokens *auth.TokenManager
	Hasher *auth.PasswordHasher
	Logger *logrus.Logger
}

// NewRouter wires every route. Calculation routes sit behind the JWT middleware.
func NewRouter(d Deps) *mux.Router {
	log := d.Logger
	if log == nil {
		log = logging.Discard()
	}

	r := mux.NewRouter()
	r.Use(logging.Middleware(log))
	r.Use(metrics.Middleware)
	r.NotFoundHandler = http.HandlerFunc(notFound)
	r.MethodNotAllowedHandler = http.HandlerFunc(methodNotAllowed)

	r.Handle("/health", HealthHandler(d.Store)).Methods(http.MethodGet)
	r.Handle("/metrics", metrics.Handler()).Methods(http.MethodGet)

	r.Handle("/users/register", auth.RegisterHandler(d.Store, d.Hasher, d.Tokens)).Methods(http.MethodPost)
	r.Handle("/users/login", auth.LoginHandler(d.Store, d.Hasher, d.Tokens)).Methods(http.MethodPost)

	r.Handle("/add", calculator.OperationHandler(models.Add)).Methods(http.MethodPost)
	r.Handle("/subtract", calculator.OperationHandler(models.Sub)).Methods(http.MethodPost)
	r.Handle("/multiply", calculator.OperationHandler(models.Multiply)).Methods(http.MethodPost)
	r.Handle("/divide", calculator.OperationHandler(models.Divide)).Methods(http.MethodPost)

	calcs := r.PathPrefix("/calculations").Subrouter()
	calcs.Use(auth.JWTMiddleware(d.Tokens))
	calcs.Handle("", calculator.CreateHandler(d.Store)).Methods(http.MethodPost)
	calcs.Handle("", calculator.ListHandler(d.Store)).Methods(http.MethodGet)
	calcs.Handle("/{id:[0-9]+}", calculator.GetHandler(d.Store)).Methods(http.MethodGet)
	calcs.Handle("/{id:[0-9]+}", calculator.UpdateHandler(d.Store)).Methods(http.MethodPut)
	calcs.Handle("/{id:[0-9]+}", calculator.DeleteHandler(d.Store)).Methods(http.MethodDelete)

	return r
}

// HealthHandler reports ok when the database answers a ping.
func HealthHandler(store *storage.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		if err := store.Ping(ctx); err != nil {
			logging.FromContext(r.Context()).WithError(err).Warn("health check failed")
			httputil.WriteJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
			return
		}
		httputil.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	}
}

func notFound(w http.ResponseWriter, r *http.Request) {
	httputil.WriteJSON(w, http.StatusNotFound, map[string]string{"error": "Not Found"})
}

func methodNotAllowed(w http.ResponseWriter, r *http.Request) {
	httputil.WriteJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "Method Not Allowed"})
}

// Run serves handler on addr until ctx is cancelled, then drains in-flight
// requests for up to shutdownTimeout.
func Run(ctx context.Context, addr string, handler http.Handler, log *logrus.Logger) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.WithField("addr", addr).Info("server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err, ok := <-errCh:
		if ok {
			return err
		}
		return nil
	case <-ctx.Done():
	}

	log.Info("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	return <-errCh
}
