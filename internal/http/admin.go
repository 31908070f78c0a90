package http

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/goliatone/go-newsroom/internal/articles"
	"github.com/goliatone/go-newsroom/internal/comments"
	"github.com/goliatone/go-newsroom/internal/domain"
	"github.com/goliatone/go-newsroom/internal/logging"
	"github.com/goliatone/go-newsroom/internal/workflow"
	"github.com/goliatone/go-newsroom/pkg/interfaces"
	"github.com/google/uuid"
)

// WorkflowService is the engine surface exposed over HTTP.
type WorkflowService interface {
	RequestTransition(ctx context.Context, articleID uuid.UUID, action string, actor *domain.Actor) (*workflow.TransitionResult, error)
	SetLocked(ctx context.Context, articleID uuid.UUID, locked bool, actor *domain.Actor) (*domain.ArticleWorkflowState, error)
	GetState(ctx context.Context, articleID uuid.UUID) (*domain.ArticleWorkflowState, error)
	ListEvents(ctx context.Context, articleID uuid.UUID, limit int) ([]domain.WorkflowEvent, error)
	AvailableActions(ctx context.Context, articleID uuid.UUID, actor *domain.Actor, view string) ([]workflow.Rule, error)
}

// AdminAPI registers the article and workflow endpoints.
type AdminAPI struct {
	basePath string
	workflow WorkflowService
	articles articles.Service
	comments *comments.Service
	logger   interfaces.Logger
}

// AdminOption mutates the AdminAPI configuration.
type AdminOption func(*AdminAPI)

// NewAdminAPI constructs an AdminAPI instance.
func NewAdminAPI(opts ...AdminOption) *AdminAPI {
	api := &AdminAPI{
		basePath: "/admin/api",
		logger:   logging.NoOp(),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(api)
		}
	}
	return api
}

// WithBasePath overrides the base API path (defaults to "/admin/api").
func WithBasePath(path string) AdminOption {
	return func(api *AdminAPI) {
		if api == nil {
			return
		}
		if trimmed := strings.TrimSpace(path); trimmed != "" {
			api.basePath = trimmed
		}
	}
}

// WithWorkflowService wires the workflow engine.
func WithWorkflowService(service WorkflowService) AdminOption {
	return func(api *AdminAPI) {
		if api != nil {
			api.workflow = service
		}
	}
}

// WithArticleService wires the article service.
func WithArticleService(service articles.Service) AdminOption {
	return func(api *AdminAPI) {
		if api != nil {
			api.articles = service
		}
	}
}

// WithCommentService wires internal comments. Comment routes answer 503 without it.
func WithCommentService(service *comments.Service) AdminOption {
	return func(api *AdminAPI) {
		if api != nil {
			api.comments = service
		}
	}
}

// WithLogger sets the logger used for server-side failures.
func WithLogger(logger interfaces.Logger) AdminOption {
	return func(api *AdminAPI) {
		if api != nil && logger != nil {
			api.logger = logger
		}
	}
}

// Register attaches the admin endpoints to the provided mux.
func (api *AdminAPI) Register(mux *http.ServeMux) error {
	if mux == nil {
		return fmt.Errorf("http: mux is required")
	}
	if api == nil {
		return fmt.Errorf("http: admin api is nil")
	}

	base := joinPath(api.basePath, "")

	api.registerArticleRoutes(mux, base)
	api.registerWorkflowRoutes(mux, base)
	api.registerCommentRoutes(mux, base)

	return nil
}

func (api *AdminAPI) fail(w http.ResponseWriter, r *http.Request, err error) {
	status, payload := mapError(err)
	if status >= http.StatusInternalServerError {
		api.logger.WithContext(r.Context()).Error("http.request.failed",
			"method", r.Method, "path", r.URL.Path, "status", status, "error", err)
	}
	writeJSON(w, status, payload)
}
