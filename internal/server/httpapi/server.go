// Package httpapi exposes the server over HTTP/JSON: authentication,
// the sync endpoint, and direct CRUD for both record kinds.
package httpapi

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/MMaus/listkeeper/internal/logging"
	"github.com/MMaus/listkeeper/internal/server/models"
	"github.com/MMaus/listkeeper/internal/server/repositories/history"
	"github.com/MMaus/listkeeper/internal/server/services"
)

// UserService is the authentication surface the API needs.
type UserService interface {
	Register(ctx context.Context, username, password string) (*models.User, error)
	Login(ctx context.Context, username, password string) (*services.TokenPair, error)
	RefreshToken(ctx context.Context, refreshToken string) (*services.TokenPair, error)
}

// SyncService reconciles uploaded offline changes.
type SyncService interface {
	Reconcile(ctx context.Context, ownerID string, checkpoint *time.Time, changes *services.LocalChanges) (*services.SyncResult, error)
}

// TaskService is the direct CRUD surface for tasks.
type TaskService interface {
	List(ctx context.Context, ownerID string) ([]*models.Task, error)
	Get(ctx context.Context, ownerID string, id int64) (*models.Task, error)
	Create(ctx context.Context, ownerID string, fields models.TaskFields) (*models.Task, error)
	Update(ctx context.Context, ownerID string, id int64, fields models.TaskFields) (*models.Task, error)
	Delete(ctx context.Context, ownerID string, id int64) error
}

// ShoppingService is the direct CRUD surface for the shopping list and
// its purchase history.
type ShoppingService interface {
	List(ctx context.Context, ownerID string) ([]*models.ShoppingItem, error)
	Get(ctx context.Context, ownerID string, id int64) (*models.ShoppingItem, error)
	Create(ctx context.Context, ownerID string, fields models.ShoppingItemFields) (*models.ShoppingItem, error)
	Update(ctx context.Context, ownerID string, id int64, fields models.ShoppingItemFields) (*models.ShoppingItem, error)
	Delete(ctx context.Context, ownerID string, id int64) error
	Checkout(ctx context.Context, ownerID string) ([]*models.ShoppingHistoryItem, error)
	AddFromHistory(ctx context.Context, ownerID string, historyID int64) (*models.ShoppingItem, error)
	History(ctx context.Context, ownerID string, filter history.ListFilter) ([]*models.ShoppingHistoryItem, error)
}

type Server struct {
	address   string
	logger    logging.Logger
	users     UserService
	sync      SyncService
	tasks     TaskService
	shopping  ShoppingService
	jwtSecret []byte
}

func NewServer(address string, l logging.Logger, us UserService, ss SyncService, ts TaskService, sh ShoppingService, secretKey string) *Server {
	return &Server{
		address:   address,
		logger:    l.With("module", "http_server"),
		users:     us,
		sync:      ss,
		tasks:     ts,
		shopping:  sh,
		jwtSecret: []byte(secretKey),
	}
}

// Handler builds the full route table with middleware applied.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /api/ping", s.handlePing)
	mux.HandleFunc("POST /api/register", s.handleRegister)
	mux.HandleFunc("POST /api/login", s.handleLogin)
	mux.HandleFunc("POST /api/refresh", s.handleRefresh)

	mux.Handle("POST /api/sync", s.requireAuth(s.handleSync))

	mux.Handle("GET /api/tasks", s.requireAuth(s.handleTaskList))
	mux.Handle("POST /api/tasks", s.requireAuth(s.handleTaskCreate))
	mux.Handle("GET /api/tasks/{id}", s.requireAuth(s.handleTaskGet))
	mux.Handle("PUT /api/tasks/{id}", s.requireAuth(s.handleTaskUpdate))
	mux.Handle("DELETE /api/tasks/{id}", s.requireAuth(s.handleTaskDelete))

	mux.Handle("GET /api/shopping", s.requireAuth(s.handleShoppingList))
	mux.Handle("POST /api/shopping", s.requireAuth(s.handleShoppingCreate))
	mux.Handle("GET /api/shopping/{id}", s.requireAuth(s.handleShoppingGet))
	mux.Handle("PUT /api/shopping/{id}", s.requireAuth(s.handleShoppingUpdate))
	mux.Handle("DELETE /api/shopping/{id}", s.requireAuth(s.handleShoppingDelete))

	mux.Handle("POST /api/shopping/checkout", s.requireAuth(s.handleCheckout))
	mux.Handle("GET /api/shopping/history", s.requireAuth(s.handleHistoryList))
	mux.Handle("POST /api/shopping/history/{id}/add", s.requireAuth(s.handleAddFromHistory))

	return s.withRequestID(mux)
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:    s.address,
		Handler: s.Handler(),
	}

	go func() {
		<-ctx.Done()
		s.logger.Info(ctx, "Stopping HTTP server...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			s.logger.Error(ctx, err.Error())
		}
	}()

	s.logger.Info(ctx, "Starting HTTP server", "address", s.address)

	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) handlePing(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "OK"})
}
