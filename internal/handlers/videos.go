package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/rs/zerolog/log"
	"github.com/snappy-loop/videogen/internal/auth"
	"github.com/snappy-loop/videogen/internal/models"
)

// VideoService is the service surface the handlers depend on
type VideoService interface {
	CreateVideo(ctx context.Context, req *models.CreateVideoRequest, userID, apiKeyID uuid.UUID) (*models.CreateVideoResponse, error)
	GetVideo(ctx context.Context, jobID, userID uuid.UUID) (*models.VideoStatusResponse, error)
	ListVideos(ctx context.Context, userID uuid.UUID, limit int, cursor *time.Time) ([]*models.VideoJob, error)
	GetAsset(ctx context.Context, assetID, userID uuid.UUID) (*models.AssetInfo, error)
}

// Handler contains all HTTP handlers
type Handler struct {
	videoService VideoService
}

// NewHandler creates a new handler
func NewHandler(videoService VideoService) *Handler {
	return &Handler{videoService: videoService}
}

// CreateVideo handles POST /v1/videos
func (h *Handler) CreateVideo(w http.ResponseWriter, r *http.Request) {
	userID, err := auth.GetUserID(r.Context())
	if err != nil {
		writeJSONError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	apiKeyID, err := auth.GetAPIKeyID(r.Context())
	if err != nil {
		writeJSONError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	var req models.CreateVideoRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSONError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	resp, err := h.videoService.CreateVideo(r.Context(), &req, userID, apiKeyID)
	if err != nil {
		log.Error().Err(err).Msg("Failed to create video job")
		writeJSONError(w, http.StatusBadRequest, err.Error())
		return
	}

	writeJSON(w, http.StatusAccepted, resp)
}

// GetVideo handles GET /v1/videos/{id}
func (h *Handler) GetVideo(w http.ResponseWriter, r *http.Request) {
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

	resp, err := h.videoService.GetVideo(r.Context(), jobID, userID)
	if err != nil {
		log.Error().Err(err).Str("job_id", jobID.String()).Msg("Failed to get video job")
		writeJSONError(w, http.StatusNotFound, "video not found")
		return
	}

	writeJSON(w, http.StatusOK, resp)
}

// ListVideos handles GET /v1/videos
func (h *Handler) ListVideos(w http.ResponseWriter, r *http.Request) {
	userID, err := auth.GetUserID(r.Context())
	if err != nil {
		writeJSONError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	limit := 20
	if limitStr := r.URL.Query().Get("limit"); limitStr != "" {
		if parsedLimit, err := strconv.Atoi(limitStr); err == nil {
			limit = parsedLimit
		}
	}

	var cursor *time.Time
	if cursorStr := r.URL.Query().Get("cursor"); cursorStr != "" {
		if parsedCursor, err := time.Parse(time.RFC3339, cursorStr); err == nil {
			cursor = &parsedCursor
		}
	}

	jobs, err := h.videoService.ListVideos(r.Context(), userID, limit, cursor)
	if err != nil {
		log.Error().Err(err).Msg("Failed to list video jobs")
		writeJSONError(w, http.StatusInternalServerError, "failed to list videos")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"videos": jobs})
}

// GetAsset handles GET /v1/assets/{id}
func (h *Handler) GetAsset(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	assetID, err := uuid.Parse(vars["id"])
	if err != nil {
		writeJSONError(w, http.StatusBadRequest, "invalid asset id")
		return
	}

	userID, err := auth.GetUserID(r.Context())
	if err != nil {
		writeJSONError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	info, err := h.videoService.GetAsset(r.Context(), assetID, userID)
	if err != nil {
		log.Error().Err(err).Str("asset_id", assetID.String()).Msg("Failed to get asset")
		writeJSONError(w, http.StatusNotFound, "asset not found")
		return
	}

	writeJSON(w, http.StatusOK, info)
}

// Health handles GET /healthz
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Error().Err(err).Msg("Failed to encode response")
	}
}

func writeJSONError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
