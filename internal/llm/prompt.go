package llm

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog/log"
	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/googleai"
)

// Enhancer rewrites user prompts into richer video generation prompts using
// Gemini. Enhancement is best-effort: any failure falls back to the original
// prompt so a broken LLM call never fails a job.
type Enhancer struct {
	model     llms.Model
	modelName string
}

// NewEnhancer creates a prompt enhancer. Returns a no-op enhancer when the
// model cannot be initialized (e.g. missing API key).
func NewEnhancer(apiKey, modelName string) *Enhancer {
	opts := []googleai.Option{googleai.WithAPIKey(apiKey), googleai.WithDefaultModel(modelName)}
	model, err := googleai.New(context.Background(), opts...)
	if err != nil {
		log.Error().Err(err).Str("model", modelName).Msg("Failed to initialize prompt enhancer, enhancement disabled")
		return &Enhancer{modelName: modelName}
	}

	log.Info().Str("model", modelName).Msg("Prompt enhancer initialized")
	return &Enhancer{model: model, modelName: modelName}
}

// Enhance rewrites the prompt with cinematic direction for the given style.
// Returns the original prompt when enhancement is unavailable or fails.
func (e *Enhancer) Enhance(ctx context.Context, prompt, style string) string {
	if e == nil || e.model == nil {
		return prompt
	}

	messages := []llms.MessageContent{
		{Role: llms.ChatMessageTypeSystem, Parts: []llms.ContentPart{llms.TextContent{Text: enhancerSystemPrompt(style)}}},
		{Role: llms.ChatMessageTypeHuman, Parts: []llms.ContentPart{llms.TextContent{Text: prompt}}},
	}
	opts := []llms.CallOption{
		llms.WithTemperature(0.7),
		llms.WithMaxTokens(512),
	}

	resp, err := e.model.GenerateContent(ctx, messages, opts...)
	if err != nil {
		log.Warn().Err(err).Str("model", e.modelName).Msg("Prompt enhancement failed, using original prompt")
		return prompt
	}
	if len(resp.Choices) == 0 {
		log.Warn().Str("model", e.modelName).Msg("Prompt enhancement returned no choices, using original prompt")
		return prompt
	}

	enhanced := strings.TrimSpace(resp.Choices[0].Content)
	if enhanced == "" {
		return prompt
	}

	log.Info().
		Int("original_len", len(prompt)).
		Int("enhanced_len", len(enhanced)).
		Msg("Prompt enhanced")
	return enhanced
}

// enhancerSystemPrompt builds the rewrite instruction for a style token.
func enhancerSystemPrompt(style string) string {
	return fmt.Sprintf(`Rewrite the user's idea into a single detailed prompt for a video generation model.

Style: %s

Describe the subject, motion, camera work and lighting in concrete visual terms.
Keep it under 100 words.
Return ONLY the rewritten prompt, no explanations or formatting.`, styleGuidance(style))
}

// styleGuidance maps a style token to direction for the rewrite.
func styleGuidance(style string) string {
	switch style {
	case "cinematic":
		return "Cinematic film look with deliberate camera movement and dramatic lighting."
	case "documentary":
		return "Naturalistic documentary footage, handheld feel, available light."
	case "animation":
		return "Stylized 3D animation with vivid colors and exaggerated motion."
	case "commercial":
		return "Polished product-commercial look, clean composition, studio lighting."
	default:
		return "Clear, visually rich footage."
	}
}
