package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/snappy-loop/videogen/internal/auth"
	"github.com/snappy-loop/videogen/internal/models"
)

// fakeVideoService is a minimal VideoService for tests.
type fakeVideoService struct {
	createVideo func(context.Context, *models.CreateVideoRequest, uuid.UUID, uuid.UUID) (*models.CreateVideoResponse, error)
	getVideo    func(context.Context, uuid.UUID, uuid.UUID) (*models.VideoStatusResponse, error)
	getAsset    func(context.Context, uuid.UUID, uuid.UUID) (*models.AssetInfo, error)
}

func (f *fakeVideoService) CreateVideo(ctx context.Context, req *models.CreateVideoRequest, userID, apiKeyID uuid.UUID) (*models.CreateVideoResponse, error) {
	if f.createVideo != nil {
		return f.createVideo(ctx, req, userID, apiKeyID)
	}
	return &models.CreateVideoResponse{JobID: uuid.New(), Status: "queued", CreatedAt: time.Now()}, nil
}

func (f *fakeVideoService) GetVideo(ctx context.Context, jobID, userID uuid.UUID) (*models.VideoStatusResponse, error) {
	if f.getVideo != nil {
		return f.getVideo(ctx, jobID, userID)
	}
	return nil, fmt.Errorf("video job not found")
}

func (f *fakeVideoService) ListVideos(ctx context.Context, userID uuid.UUID, limit int, cursor *time.Time) ([]*models.VideoJob, error) {
	return nil, nil
}

func (f *fakeVideoService) GetAsset(ctx context.Context, assetID, userID uuid.UUID) (*models.AssetInfo, error) {
	if f.getAsset != nil {
		return f.getAsset(ctx, assetID, userID)
	}
	return nil, fmt.Errorf("asset not found")
}

func authedRequest(method, target string, body *bytes.Buffer) *http.Request {
	if body == nil {
		body = &bytes.Buffer{}
	}
	req := httptest.NewRequest(method, target, body)
	req.Header.Set("Content-Type", "application/json")
	ctx := context.WithValue(req.Context(), auth.UserIDKey, uuid.New())
	ctx = context.WithValue(ctx, auth.APIKeyIDKey, uuid.New())
	return req.WithContext(ctx)
}

// TestCreateVideo_Unauthorized asserts 401 when request context has no user/key.
func TestCreateVideo_Unauthorized(t *testing.T) {
	h := NewHandler(&fakeVideoService{})

	body := bytes.NewBufferString(`{"prompt":"a cat"}`)
	req := httptest.NewRequest(http.MethodPost, "/v1/videos", body)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()

	h.CreateVideo(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Errorf("expected 401, got %d: %s", rec.Code, rec.Body.String())
	}
}

// TestCreateVideo_InvalidBody asserts 400 for invalid JSON.
func TestCreateVideo_InvalidBody(t *testing.T) {
	h := NewHandler(&fakeVideoService{})

	req := authedRequest(http.MethodPost, "/v1/videos", bytes.NewBufferString(`{invalid json`))
	rec := httptest.NewRecorder()

	h.CreateVideo(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d: %s", rec.Code, rec.Body.String())
	}
}

func TestCreateVideo_Success(t *testing.T) {
	jobID := uuid.New()
	h := NewHandler(&fakeVideoService{
		createVideo: func(_ context.Context, req *models.CreateVideoRequest, _, _ uuid.UUID) (*models.CreateVideoResponse, error) {
			if req.Prompt != "a cat surfing" {
				t.Errorf("prompt = %q", req.Prompt)
			}
			return &models.CreateVideoResponse{JobID: jobID, Status: "queued", CreatedAt: time.Now()}, nil
		},
	})

	req := authedRequest(http.MethodPost, "/v1/videos", bytes.NewBufferString(`{"prompt":"a cat surfing","aspect_ratio":"16:9"}`))
	rec := httptest.NewRecorder()

	h.CreateVideo(rec, req)

	if rec.Code != http.StatusAccepted {
		t.Fatalf("expected 202, got %d: %s", rec.Code, rec.Body.String())
	}

	var resp models.CreateVideoResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.JobID != jobID {
		t.Errorf("job_id = %s, want %s", resp.JobID, jobID)
	}
	if resp.Status != "queued" {
		t.Errorf("status = %q, want queued", resp.Status)
	}
}

func TestCreateVideo_ValidationErrorBubbles(t *testing.T) {
	h := NewHandler(&fakeVideoService{
		createVideo: func(context.Context, *models.CreateVideoRequest, uuid.UUID, uuid.UUID) (*models.CreateVideoResponse, error) {
			return nil, fmt.Errorf("validation error: prompt is required")
		},
	})

	req := authedRequest(http.MethodPost, "/v1/videos", bytes.NewBufferString(`{}`))
	rec := httptest.NewRecorder()

	h.CreateVideo(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d: %s", rec.Code, rec.Body.String())
	}
}

func TestGetVideo_InvalidID(t *testing.T) {
	h := NewHandler(&fakeVideoService{})

	req := authedRequest(http.MethodGet, "/v1/videos/not-a-uuid", nil)
	req = mux.SetURLVars(req, map[string]string{"id": "not-a-uuid"})
	rec := httptest.NewRecorder()

	h.GetVideo(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d: %s", rec.Code, rec.Body.String())
	}
}

func TestGetVideo_NotFound(t *testing.T) {
	h := NewHandler(&fakeVideoService{})

	jobID := uuid.New()
	req := authedRequest(http.MethodGet, "/v1/videos/"+jobID.String(), nil)
	req = mux.SetURLVars(req, map[string]string{"id": jobID.String()})
	rec := httptest.NewRecorder()

	h.GetVideo(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Errorf("expected 404, got %d: %s", rec.Code, rec.Body.String())
	}
}

func TestGetVideo_Success(t *testing.T) {
	jobID := uuid.New()
	h := NewHandler(&fakeVideoService{
		getVideo: func(_ context.Context, gotJobID, _ uuid.UUID) (*models.VideoStatusResponse, error) {
			if gotJobID != jobID {
				t.Errorf("job id = %s, want %s", gotJobID, jobID)
			}
			return &models.VideoStatusResponse{JobID: jobID, Status: "succeeded"}, nil
		},
	})

	req := authedRequest(http.MethodGet, "/v1/videos/"+jobID.String(), nil)
	req = mux.SetURLVars(req, map[string]string{"id": jobID.String()})
	rec := httptest.NewRecorder()

	h.GetVideo(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var resp models.VideoStatusResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.Status != "succeeded" {
		t.Errorf("status = %q", resp.Status)
	}
}

func TestGetAsset_Success(t *testing.T) {
	assetID := uuid.New()
	h := NewHandler(&fakeVideoService{
		getAsset: func(_ context.Context, gotAssetID, _ uuid.UUID) (*models.AssetInfo, error) {
			if gotAssetID != assetID {
				t.Errorf("asset id = %s, want %s", gotAssetID, assetID)
			}
			return &models.AssetInfo{AssetID: assetID, MimeType: "video/mp4", SizeBytes: 42, URL: "https://example.com/clip.mp4"}, nil
		},
	})

	req := authedRequest(http.MethodGet, "/v1/assets/"+assetID.String(), nil)
	req = mux.SetURLVars(req, map[string]string{"id": assetID.String()})
	rec := httptest.NewRecorder()

	h.GetAsset(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var info models.AssetInfo
	if err := json.NewDecoder(rec.Body).Decode(&info); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if info.MimeType != "video/mp4" || info.SizeBytes != 42 {
		t.Errorf("unexpected asset info: %+v", info)
	}
}
