package http

import (
	"net/http"

	"github.com/m-mizutani/updraft/pkg/domain/interfaces"
	"github.com/m-mizutani/updraft/pkg/domain/model"
	"github.com/m-mizutani/updraft/pkg/domain/types"
)

// handleHealth reports liveness along with how many components have been
// checked and how many have an update pending
func handleHealth(coordinator interfaces.UpdateCoordinator) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		status := &model.HealthStatus{
			Status:  "healthy",
			Service: "updraft",
			Version: types.Version,
		}

		for _, comp := range coordinator.Components() {
			status.Components++
			state, ok := coordinator.State(comp.Slug)
			if !ok {
				continue
			}
			status.Checked++
			if state.Status == model.StatusUpdateAvailable {
				status.Updates++
			}
		}

		writeJSON(r.Context(), w, http.StatusOK, status)
	}
}
