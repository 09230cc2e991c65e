// Sync process HTTP handlers.
//
// This file exposes REST endpoints for the background catalog sync:
//   - POST /sync/run           (trigger, 202 + process id)
//   - GET  /sync/status/{id}   (status snapshot)
//   - POST /sync/cancel/{id}   (request cancellation)
//
// Exclusivity is advisory and enforced only here: the trigger refuses to start
// while another run is in flight, but the process registry itself allows
// concurrent runs.
package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/uzplatform/go-store-backend/internal/services"
)

// TriggerSyncResponse is returned on a successful sync trigger.
type TriggerSyncResponse struct {
	ProcessID string `json:"process_id"`
	Status    string `json:"status"`
}

// TriggerSync godoc
// @ID          triggerSync
// @Summary     Start a background catalog sync
// @Description Launches a full catalog synchronization in the background and returns the process id.
// @Tags        Sync
// @Produce     json
// @Success     202  {object} handlers.TriggerSyncResponse
// @Failure     409  {object} handlers.ErrorResponse "A sync is already running"
// @Router      /sync/run [post]
func (h *Handlers) TriggerSync(c *gin.Context) {
	if h.syncSvc.IsAnyProcessRunning() {
		fail(c, http.StatusConflict, ErrCodeConflict, services.ErrSyncAlreadyRunning.Error())
		return
	}
	id := h.syncSvc.Start()
	ok(c, http.StatusAccepted, TriggerSyncResponse{
		ProcessID: id,
		Status:    services.ProcessRunning,
	})
}

// SyncStatus godoc
// @ID          syncStatus
// @Summary     Get the status of a sync process
// @Tags        Sync
// @Produce     json
// @Param       id  path  string  true  "Process id (UUID)"
// @Success     200  {object} services.ProcessStatus
// @Failure     404  {object} handlers.ErrorResponse "Unknown process id"
// @Router      /sync/status/{id} [get]
func (h *Handlers) SyncStatus(c *gin.Context) {
	st, err := h.syncSvc.GetStatus(c.Param("id"))
	if err != nil {
		if errors.Is(err, services.ErrProcessNotFound) {
			fail(c, http.StatusNotFound, ErrCodeNotFound, "sync process not found")
			return
		}
		fail(c, http.StatusInternalServerError, ErrCodeInternal, err.Error())
		return
	}
	ok(c, http.StatusOK, st)
}

// CancelSync godoc
// @ID          cancelSync
// @Summary     Cancel a running sync process
// @Description Requests cancellation. The process reports Cancelled once it observes the request.
// @Tags        Sync
// @Param       id  path  string  true  "Process id (UUID)"
// @Success     202  {object} map[string]string
// @Failure     404  {object} handlers.ErrorResponse "Unknown or already finished process"
// @Router      /sync/cancel/{id} [post]
func (h *Handlers) CancelSync(c *gin.Context) {
	id := c.Param("id")
	if !h.syncSvc.Cancel(id) {
		fail(c, http.StatusNotFound, ErrCodeNotFound, "no running sync process with that id")
		return
	}
	ok(c, http.StatusAccepted, gin.H{"process_id": id, "status": "cancelling"})
}
