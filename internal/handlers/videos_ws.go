package handlers

import (
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"
	"github.com/snappy-loop/videogen/internal/auth"
	"github.com/snappy-loop/videogen/internal/models"
)

const (
	// eventsPollInterval is how often job state is re-read for the stream.
	eventsPollInterval = 2 * time.Second
	// eventsMaxAge bounds how long a single stream may stay open.
	eventsMaxAge = 60 * time.Minute
)

var eventsUpgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// videoEvent is the JSON shape pushed to the client on each status change.
type videoEvent struct {
	Type   string                      `json:"type"` // "status" or "error"
	Status *models.VideoStatusResponse `json:"status,omitempty"`
	Error  string                      `json:"error,omitempty"`
}

// VideoEvents handles GET /v1/videos/{id}/events — WebSocket stream of job
// status transitions. Sends the current status immediately, then a message on
// every change, closing once the job reaches a terminal state.
func (h *Handler) VideoEvents(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	jobID, err := uuid.Parse(vars["id"])
	if err != nil {
		writeJSONError(w, http.StatusBadRequest, "invalid video id")
		return
	}

	userID, err := auth.GetUserID(r.Context())
	if err != nil {
		writeJSONError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	// Ownership check before upgrading.
	status, err := h.videoService.GetVideo(r.Context(), jobID, userID)
	if err != nil {
		writeJSONError(w, http.StatusNotFound, "video not found")
		return
	}

	conn, err := eventsUpgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Warn().Err(err).Msg("video events upgrade failed")
		return
	}
	defer conn.Close()

	deadline := time.Now().Add(eventsMaxAge)
	lastStatus := ""

	ticker := time.NewTicker(eventsPollInterval)
	defer ticker.Stop()

	for {
		if status.Status != lastStatus {
			if err := conn.WriteJSON(videoEvent{Type: "status", Status: status}); err != nil {
				log.Debug().Err(err).Str("job_id", jobID.String()).Msg("video events write failed")
				return
			}
			lastStatus = status.Status
		}

		if status.Status == "succeeded" || status.Status == "failed" {
			return
		}
		if time.Now().After(deadline) {
			_ = conn.WriteJSON(videoEvent{Type: "error", Error: "stream expired"})
			return
		}

		select {
		case <-r.Context().Done():
			return
		case <-ticker.C:
		}

		status, err = h.videoService.GetVideo(r.Context(), jobID, userID)
		if err != nil {
			_ = conn.WriteJSON(videoEvent{Type: "error", Error: "video not found"})
			return
		}
	}
}
