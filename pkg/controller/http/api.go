package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/updraft/pkg/domain/interfaces"
	"github.com/m-mizutani/updraft/pkg/domain/model"
)

// ComponentHandler serves the component API
type ComponentHandler struct {
	coordinator interfaces.UpdateCoordinator
}

// NewComponentHandler creates a new ComponentHandler
func NewComponentHandler(coordinator interfaces.UpdateCoordinator) *ComponentHandler {
	return &ComponentHandler{coordinator: coordinator}
}

type componentResponse struct {
	model.Component
	State *model.ComponentState `json:"state,omitempty"`
}

type checkResponse struct {
	Slug     string                `json:"slug"`
	Outcome  model.CheckOutcome    `json:"outcome"`
	Decision *model.UpdateDecision `json:"decision,omitempty"`
	Error    string                `json:"error,omitempty"`
}

// List returns tracked components with their last settled state
func (h *ComponentHandler) List(w http.ResponseWriter, r *http.Request) {
	components := h.coordinator.Components()

	resp := make([]componentResponse, 0, len(components))
	for _, comp := range components {
		item := componentResponse{Component: comp}
		if state, ok := h.coordinator.State(comp.Slug); ok {
			item.State = &state
		}
		resp = append(resp, item)
	}

	writeJSON(r.Context(), w, http.StatusOK, resp)
}

// CheckUpdate runs an update check. An indeterminate outcome is reported in the
// body, not as a server error.
func (h *ComponentHandler) CheckUpdate(w http.ResponseWriter, r *http.Request) {
	comp, ok := h.lookup(w, r)
	if !ok {
		return
	}

	result := h.coordinator.CheckForUpdate(r.Context(), comp)
	resp := checkResponse{
		Slug:     result.Slug,
		Outcome:  result.Outcome,
		Decision: result.Decision,
	}
	if result.Err != nil {
		resp.Error = result.Err.Error()
	}

	writeJSON(r.Context(), w, http.StatusOK, resp)
}

// Details returns the info view built from cached release metadata
func (h *ComponentHandler) Details(w http.ResponseWriter, r *http.Request) {
	comp, ok := h.lookup(w, r)
	if !ok {
		return
	}

	details, ok := h.coordinator.GetDetails(r.Context(), comp)
	if !ok {
		writeError(r.Context(), w, goerr.New("no release information available yet"), http.StatusNotFound)
		return
	}

	writeJSON(r.Context(), w, http.StatusOK, details)
}

func (h *ComponentHandler) lookup(w http.ResponseWriter, r *http.Request) (model.Component, bool) {
	slug := chi.URLParam(r, "slug")
	comp, ok := h.coordinator.Component(slug)
	if !ok {
		writeError(r.Context(), w, goerr.New("component not found", goerr.V("slug", slug)), http.StatusNotFound)
		return model.Component{}, false
	}
	return comp, true
}
