package http

import (
	"net/http"

	"github.com/goliatone/go-newsroom/internal/actors"
)

const idempotencyKeyHeader = "Idempotency-Key"

type commentPayload struct {
	Body string `json:"body"`
}

func (api *AdminAPI) registerCommentRoutes(mux *http.ServeMux, base string) {
	root := joinPath(base, "articles") + "/{id}/workflow/comments"
	mux.HandleFunc("GET "+root, api.handleCommentList)
	mux.HandleFunc("POST "+root, api.handleCommentCreate)
}

func (api *AdminAPI) handleCommentList(w http.ResponseWriter, r *http.Request) {
	if api.comments == nil {
		writeJSON(w, http.StatusServiceUnavailable, errorResponse{Error: "service_unavailable"})
		return
	}
	id, ok := api.workflowArticle(w, r)
	if !ok {
		return
	}
	if _, err := api.workflow.GetState(r.Context(), id); err != nil {
		api.fail(w, r, err)
		return
	}
	list, err := api.comments.List(r.Context(), id)
	if err != nil {
		api.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, list)
}

func (api *AdminAPI) handleCommentCreate(w http.ResponseWriter, r *http.Request) {
	if api.comments == nil {
		writeJSON(w, http.StatusServiceUnavailable, errorResponse{Error: "service_unavailable"})
		return
	}
	id, ok := api.workflowArticle(w, r)
	if !ok {
		return
	}
	actor, ok := actors.FromContext(r.Context())
	if !ok {
		writeJSON(w, http.StatusUnauthorized, errorResponse{Error: "unauthorized", Message: "actor required"})
		return
	}
	var payload commentPayload
	if err := decodeJSON(r, &payload); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "bad_request", Message: err.Error()})
		return
	}
	if _, err := api.workflow.GetState(r.Context(), id); err != nil {
		api.fail(w, r, err)
		return
	}
	comment, created, err := api.comments.AddWithKey(r.Context(), id, *actor, payload.Body, r.Header.Get(idempotencyKeyHeader))
	if err != nil {
		api.fail(w, r, err)
		return
	}
	status := http.StatusCreated
	if !created {
		status = http.StatusOK
	}
	writeJSON(w, status, comment)
}
