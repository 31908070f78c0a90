package http

import (
	"errors"
	"io"
	"net/http"

	"github.com/goliatone/go-newsroom/internal/actors"
	"github.com/goliatone/go-newsroom/internal/domain"
	"github.com/goliatone/go-newsroom/internal/workflow"
	"github.com/google/uuid"
)

type stagePayload struct {
	Action string `json:"action"`
}

type lockPayload struct {
	Locked *bool `json:"locked"`
}

type actionResponse struct {
	Action      string         `json:"action"`
	From        []domain.Stage `json:"from"`
	To          domain.Stage   `json:"to"`
	MinRole     domain.Role    `json:"min_role"`
	Description string         `json:"description,omitempty"`
}

func (api *AdminAPI) registerWorkflowRoutes(mux *http.ServeMux, base string) {
	root := joinPath(base, "articles") + "/{id}/workflow"
	mux.HandleFunc("GET "+root, api.handleWorkflowState)
	mux.HandleFunc("PATCH "+root+"/stage", api.handleWorkflowTransition)
	mux.HandleFunc("POST "+root+"/lock", api.handleWorkflowLock)
	mux.HandleFunc("GET "+root+"/events", api.handleWorkflowEvents)
	mux.HandleFunc("GET "+root+"/actions", api.handleWorkflowActions)
}

func (api *AdminAPI) workflowArticle(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	if api.workflow == nil {
		writeJSON(w, http.StatusServiceUnavailable, errorResponse{Error: "service_unavailable"})
		return uuid.Nil, false
	}
	id, err := parseUUID(r.PathValue("id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "bad_request", Message: "invalid id"})
		return uuid.Nil, false
	}
	return id, true
}

func (api *AdminAPI) handleWorkflowState(w http.ResponseWriter, r *http.Request) {
	id, ok := api.workflowArticle(w, r)
	if !ok {
		return
	}
	state, err := api.workflow.GetState(r.Context(), id)
	if err != nil {
		api.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, state)
}

func (api *AdminAPI) handleWorkflowTransition(w http.ResponseWriter, r *http.Request) {
	id, ok := api.workflowArticle(w, r)
	if !ok {
		return
	}
	var payload stagePayload
	if err := decodeJSON(r, &payload); err != nil && !errors.Is(err, io.EOF) {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "bad_request", Message: err.Error()})
		return
	}
	actor, _ := actors.FromContext(r.Context())

	result, err := api.workflow.RequestTransition(r.Context(), id, payload.Action, actor)
	if err != nil {
		status, body := mapError(err)
		body.Result = result
		if status >= http.StatusInternalServerError {
			api.fail(w, r, err)
			return
		}
		writeJSON(w, status, body)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (api *AdminAPI) handleWorkflowLock(w http.ResponseWriter, r *http.Request) {
	id, ok := api.workflowArticle(w, r)
	if !ok {
		return
	}
	var payload lockPayload
	if err := decodeJSON(r, &payload); err != nil || payload.Locked == nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "bad_request", Message: "locked flag required"})
		return
	}
	actor, _ := actors.FromContext(r.Context())

	state, err := api.workflow.SetLocked(r.Context(), id, *payload.Locked, actor)
	if err != nil {
		api.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, state)
}

func (api *AdminAPI) handleWorkflowEvents(w http.ResponseWriter, r *http.Request) {
	id, ok := api.workflowArticle(w, r)
	if !ok {
		return
	}
	limit, err := parseIntQuery(r.URL.Query().Get("limit"), 0)
	if err != nil || limit < 0 {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "bad_request", Message: "invalid limit"})
		return
	}
	if _, err := api.workflow.GetState(r.Context(), id); err != nil {
		api.fail(w, r, err)
		return
	}
	events, err := api.workflow.ListEvents(r.Context(), id, limit)
	if err != nil {
		api.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, events)
}

func (api *AdminAPI) handleWorkflowActions(w http.ResponseWriter, r *http.Request) {
	id, ok := api.workflowArticle(w, r)
	if !ok {
		return
	}
	view := r.URL.Query().Get("view")
	if view != "" && view != workflow.ViewFull && view != workflow.ViewSimple {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "bad_request", Message: "unknown view"})
		return
	}
	actor, _ := actors.FromContext(r.Context())

	rules, err := api.workflow.AvailableActions(r.Context(), id, actor, view)
	if err != nil {
		api.fail(w, r, err)
		return
	}
	out := make([]actionResponse, 0, len(rules))
	for _, rule := range rules {
		out = append(out, actionResponse{
			Action:      rule.Action,
			From:        rule.From,
			To:          rule.To,
			MinRole:     rule.MinRole,
			Description: rule.Description,
		})
	}
	writeJSON(w, http.StatusOK, out)
}
