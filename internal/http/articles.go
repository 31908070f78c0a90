package http

import (
	"errors"
	"io"
	"net/http"

	"github.com/goliatone/go-newsroom/internal/actors"
	"github.com/goliatone/go-newsroom/internal/articles"
	"github.com/goliatone/go-newsroom/internal/domain"
)

type articleCreatePayload struct {
	Title string `json:"title"`
	Slug  string `json:"slug,omitempty"`
}

type articleResponse struct {
	*articles.Article
	Workflow *domain.ArticleWorkflowState `json:"workflow"`
}

func (api *AdminAPI) registerArticleRoutes(mux *http.ServeMux, base string) {
	root := joinPath(base, "articles")
	mux.HandleFunc("GET "+root, api.handleArticleList)
	mux.HandleFunc("POST "+root, api.handleArticleCreate)
	mux.HandleFunc("GET "+root+"/{id}", api.handleArticleGet)
	mux.HandleFunc("DELETE "+root+"/{id}", api.handleArticleDelete)
}

func (api *AdminAPI) handleArticleList(w http.ResponseWriter, r *http.Request) {
	if api.articles == nil {
		writeJSON(w, http.StatusServiceUnavailable, errorResponse{Error: "service_unavailable"})
		return
	}
	list, err := api.articles.List(r.Context())
	if err != nil {
		api.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, list)
}

func (api *AdminAPI) handleArticleCreate(w http.ResponseWriter, r *http.Request) {
	if api.articles == nil {
		writeJSON(w, http.StatusServiceUnavailable, errorResponse{Error: "service_unavailable"})
		return
	}
	actor, ok := actors.FromContext(r.Context())
	if !ok {
		writeJSON(w, http.StatusUnauthorized, errorResponse{Error: "unauthorized", Message: "actor required"})
		return
	}
	var payload articleCreatePayload
	if err := decodeJSON(r, &payload); err != nil && !errors.Is(err, io.EOF) {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "bad_request", Message: err.Error()})
		return
	}
	record, err := api.articles.Create(r.Context(), articles.CreateArticleRequest{
		Title:     payload.Title,
		Slug:      payload.Slug,
		CreatedBy: *actor,
	})
	if err != nil {
		api.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, articleResponse{Article: record, Workflow: record.WorkflowState()})
}

func (api *AdminAPI) handleArticleGet(w http.ResponseWriter, r *http.Request) {
	if api.articles == nil {
		writeJSON(w, http.StatusServiceUnavailable, errorResponse{Error: "service_unavailable"})
		return
	}
	id, err := parseUUID(r.PathValue("id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "bad_request", Message: "invalid id"})
		return
	}
	record, err := api.articles.Get(r.Context(), id)
	if err != nil {
		api.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, articleResponse{Article: record, Workflow: record.WorkflowState()})
}

func (api *AdminAPI) handleArticleDelete(w http.ResponseWriter, r *http.Request) {
	if api.articles == nil {
		writeJSON(w, http.StatusServiceUnavailable, errorResponse{Error: "service_unavailable"})
		return
	}
	actor, ok := actors.FromContext(r.Context())
	if !ok {
		writeJSON(w, http.StatusUnauthorized, errorResponse{Error: "unauthorized", Message: "actor required"})
		return
	}
	if !actor.Role.Satisfies(domain.RoleAdmin) {
		writeJSON(w, http.StatusForbidden, errorResponse{Error: "forbidden", Message: "deleting articles requires role admin"})
		return
	}
	id, err := parseUUID(r.PathValue("id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "bad_request", Message: "invalid id"})
		return
	}
	if err := api.articles.Delete(r.Context(), id); err != nil {
		api.fail(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
