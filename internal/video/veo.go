package video

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"google.golang.org/genai"
)

// VeoProvider generates videos with Google Veo: text-to-video and
// image-to-video (first frame). The vendor client is constructed once in the
// constructor, so concurrent Generate calls share an immutable provider.
type VeoProvider struct {
	backend    Backend
	httpClient *http.Client

	model     string // standard model
	fastModel string

	outputDir    string
	pollInterval time.Duration
	maxWait      time.Duration // 0 means poll until the operation finishes
}

// NewVeoProvider creates a provider backed by the Gemini API.
// apiEndpoint optionally overrides the Gemini base URL.
// Returns ErrMissingAPIKey before any network call when no key is configured.
func NewVeoProvider(apiKey, apiEndpoint, model, fastModel, outputDir string, pollInterval, maxWait time.Duration) (*VeoProvider, error) {
	if apiKey == "" {
		return nil, ErrMissingAPIKey
	}

	cfg := &genai.ClientConfig{APIKey: apiKey}
	if apiEndpoint != "" {
		cfg.HTTPOptions = genai.HTTPOptions{BaseURL: apiEndpoint}
	}
	client, err := genai.NewClient(context.Background(), cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize genai client: %w", err)
	}

	log.Info().
		Str("model", model).
		Str("fast_model", fastModel).
		Str("output_dir", outputDir).
		Str("api_endpoint", apiEndpoint).
		Dur("poll_interval", pollInterval).
		Msg("Veo provider initialized")

	return NewVeoProviderWithBackend(&genaiBackend{client: client}, model, fastModel, outputDir, pollInterval, maxWait), nil
}

// NewVeoProviderWithBackend creates a provider with an injected backend.
func NewVeoProviderWithBackend(backend Backend, model, fastModel, outputDir string, pollInterval, maxWait time.Duration) *VeoProvider {
	if pollInterval <= 0 {
		pollInterval = 5 * time.Second
	}
	return &VeoProvider{
		backend:      backend,
		httpClient:   &http.Client{Timeout: 60 * time.Second},
		model:        model,
		fastModel:    fastModel,
		outputDir:    outputDir,
		pollInterval: pollInterval,
		maxWait:      maxWait,
	}
}

// Name returns the provider name
func (p *VeoProvider) Name() string {
	return ProviderName
}

// Generate submits a generation request, waits for the operation to complete
// and writes the produced video to disk. Errors anywhere in the
// submit/poll/save sequence are converted into a failure result; this method
// never returns an error to the caller.
func (p *VeoProvider) Generate(ctx context.Context, req *GenerationRequest) *GenerationResult {
	if err := ValidateRequest(req); err != nil {
		log.Error().Err(err).
			Str("provider", ProviderName).
			Msg("Veo generation rejected")
		return failure(err)
	}

	model := p.model
	if req.UseFastModel {
		model = p.fastModel
	}

	log.Info().
		Str("provider", ProviderName).
		Str("aspect_ratio", req.AspectRatio).
		Str("model", model).
		Msg("Generating video")

	result, err := p.generateAndSave(ctx, req, model)
	if err != nil {
		log.Error().Err(err).
			Str("provider", ProviderName).
			Str("model", model).
			Msg("Veo generation failed")
		return failure(err)
	}
	return result
}

func (p *VeoProvider) generateAndSave(ctx context.Context, req *GenerationRequest, model string) (*GenerationResult, error) {
	// Conditioning frame must be fetched before the generation request goes out.
	var image *genai.Image
	if req.FirstFrameURL != "" {
		imageBytes, mimeType, err := p.fetchImage(ctx, req.FirstFrameURL)
		if err != nil {
			return nil, fmt.Errorf("fetch first frame: %w", err)
		}
		image = &genai.Image{ImageBytes: imageBytes, MIMEType: mimeType}
	}

	config := &genai.GenerateVideosConfig{
		AspectRatio:    req.AspectRatio,
		NumberOfVideos: 1,
	}
	// PersonGeneration is accepted on the request but not forwarded: the API
	// rejects it for image-to-video submissions.

	operation, err := p.backend.GenerateVideos(ctx, model, req.Prompt, image, config)
	if err != nil {
		return nil, fmt.Errorf("submit generation: %w", err)
	}

	operation, err = p.waitForOperation(ctx, operation)
	if err != nil {
		return nil, err
	}

	if operation.Response == nil || len(operation.Response.GeneratedVideos) == 0 {
		return nil, ErrNoVideoGenerated
	}
	generated := operation.Response.GeneratedVideos[0].Video
	if generated == nil || len(generated.VideoBytes) == 0 {
		return nil, ErrNoVideoGenerated
	}
	videoBytes := generated.VideoBytes

	filePath := req.OutputPath
	if filePath == "" {
		timestamp := time.Now().UTC().Format("20060102_150405")
		filePath = filepath.Join(p.outputDir, fmt.Sprintf("veo_%s.mp4", timestamp))
	}

	if err := os.MkdirAll(filepath.Dir(filePath), 0o755); err != nil {
		return nil, fmt.Errorf("create output dir: %w", err)
	}
	if err := os.WriteFile(filePath, videoBytes, 0o644); err != nil {
		return nil, fmt.Errorf("write video file: %w", err)
	}

	log.Info().
		Str("provider", ProviderName).
		Str("file_path", filePath).
		Int("size_bytes", len(videoBytes)).
		Msg("Video saved")

	return &GenerationResult{
		Success:     true,
		Provider:    ProviderName,
		ContentType: "video",
		FilePath:    filePath,
		Data:        videoBytes,
		Metadata: map[string]string{
			"aspect_ratio": req.AspectRatio,
			"model":        model,
			"prompt":       req.Prompt,
		},
	}, nil
}

// waitForOperation polls the operation at a fixed interval until it reports
// done. maxWait bounds the total wait when set; context cancellation aborts
// the loop.
func (p *VeoProvider) waitForOperation(ctx context.Context, operation *genai.GenerateVideosOperation) (*genai.GenerateVideosOperation, error) {
	var deadline time.Time
	if p.maxWait > 0 {
		deadline = time.Now().Add(p.maxWait)
	}

	for !operation.Done {
		if !deadline.IsZero() && time.Now().After(deadline) {
			return nil, fmt.Errorf("generation timed out after %s", p.maxWait)
		}

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(p.pollInterval):
		}

		refreshed, err := p.backend.GetVideosOperation(ctx, operation)
		if err != nil {
			return nil, fmt.Errorf("refresh operation: %w", err)
		}
		operation = refreshed
	}

	return operation, nil
}

// fetchImage downloads the conditioning frame. Non-2xx responses fail the call.
func (p *VeoProvider) fetchImage(ctx context.Context, url string) ([]byte, string, error) {
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, "", err
	}

	resp, err := p.httpClient.Do(httpReq)
	if err != nil {
		return nil, "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, "", fmt.Errorf("unexpected status %s", resp.Status)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, "", err
	}

	mimeType := resp.Header.Get("Content-Type")
	if idx := strings.Index(mimeType, ";"); idx >= 0 {
		mimeType = strings.TrimSpace(mimeType[:idx])
	}
	if mimeType == "" {
		mimeType = "image/png"
	}

	return data, mimeType, nil
}
