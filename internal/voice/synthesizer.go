package voice

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"bookreel/internal/config"
	"bookreel/internal/metrics"
	"bookreel/internal/types"
)

const (
	minTextChars = 3
	maxTextChars = 5000

	// minAudioBytes catches 200 responses whose payload is empty or
	// truncated beyond use.
	minAudioBytes = 1024
)

var (
	// ErrTextLength is returned before any network call is made.
	ErrTextLength = errors.New("script text length out of range")
	// ErrRateLimited maps the provider's 429.
	ErrRateLimited = errors.New("voice service rate limited")
	// ErrContentPolicy maps a provider content rejection.
	ErrContentPolicy = errors.New("voice service rejected the text content")
	// ErrEmptyAudio flags a nominally successful call with unusable audio.
	ErrEmptyAudio = errors.New("voice service returned undersized audio")
)

// Settings are the expressive synthesis parameters. Zero value means the
// defaults below; style and speaker boost are dropped for voices that do
// not support them.
type Settings struct {
	Stability       float64
	SimilarityBoost float64
	Style           float64
	SpeakerBoost    bool
}

func defaultSettings() Settings {
	return Settings{Stability: 0.5, SimilarityBoost: 0.75, Style: 0.35, SpeakerBoost: true}
}

// Synthesizer turns narration text into audio through the provider's
// text-to-speech endpoint.
type Synthesizer struct {
	apiKey   string
	baseURL  string
	model    string
	client   *http.Client
	registry *Registry
	logger   *zap.Logger
}

// New builds a Synthesizer and its voice registry from config.
func New(cfg *config.Config, logger *zap.Logger) *Synthesizer {
	client := &http.Client{Timeout: cfg.RequestTimeout}
	return &Synthesizer{
		apiKey:   cfg.ElevenLabsAPIKey,
		baseURL:  cfg.ElevenLabsBaseURL,
		model:    cfg.ElevenLabsModel,
		client:   client,
		registry: NewRegistry(cfg.ElevenLabsAPIKey, cfg.ElevenLabsBaseURL, client, logger),
		logger:   logger.With(zap.String("component", "voice")),
	}
}

// Registry exposes the synthesizer's voice registry.
func (s *Synthesizer) Registry() *Registry {
	return s.registry
}

type ttsRequest struct {
	Text          string        `json:"text"`
	ModelID       string        `json:"model_id"`
	VoiceSettings voiceSettings `json:"voice_settings"`
}

// Pointer fields are omitted entirely for voices that do not support them,
// rather than sent and rejected.
type voiceSettings struct {
	Stability       float64  `json:"stability"`
	SimilarityBoost float64  `json:"similarity_boost"`
	Style           *float64 `json:"style,omitempty"`
	UseSpeakerBoost *bool    `json:"use_speaker_boost,omitempty"`
}

// Synthesize validates the text, resolves the voice (explicit id wins over
// the tone preset) and produces narration audio.
func (s *Synthesizer) Synthesize(ctx context.Context, text string, tone types.Tone, voiceID string, settings Settings) (*types.VoiceResult, error) {
	trimmed := strings.TrimSpace(text)
	if len(trimmed) < minTextChars || len(trimmed) > maxTextChars {
		return nil, fmt.Errorf("%w: got %d chars, want %d-%d", ErrTextLength, len(trimmed), minTextChars, maxTextChars)
	}
	if s.apiKey == "" {
		return nil, ErrMissingKey
	}

	var (
		voice Voice
		err   error
	)
	if voiceID != "" {
		voice, err = s.registry.Resolve(ctx, voiceID)
	} else {
		voice, err = s.registry.VoiceForTone(ctx, tone)
	}
	if err != nil {
		return nil, err
	}

	if settings == (Settings{}) {
		settings = defaultSettings()
	}

	audio, err := s.call(ctx, voice, trimmed, settings)
	if err != nil {
		return nil, err
	}
	if len(audio) < minAudioBytes {
		return nil, fmt.Errorf("%w: %d bytes", ErrEmptyAudio, len(audio))
	}

	wordCount := len(strings.Fields(trimmed))
	result := &types.VoiceResult{
		Audio:        audio,
		ContentType:  "audio/mpeg",
		EstimatedSec: types.EstimateSpokenSec(wordCount),
		VoiceID:      voice.ID,
		VoiceName:    voice.Name,
		Model:        s.model,
	}

	s.logger.Info("voiceover synthesized",
		zap.String("voice", voice.Name),
		zap.Int("bytes", len(audio)),
		zap.Float64("estimated_sec", result.EstimatedSec))
	return result, nil
}

func (s *Synthesizer) call(ctx context.Context, voice Voice, text string, settings Settings) ([]byte, error) {
	payload := ttsRequest{
		Text:    text,
		ModelID: s.model,
		VoiceSettings: voiceSettings{
			Stability:       settings.Stability,
			SimilarityBoost: settings.SimilarityBoost,
		},
	}
	if voice.SupportsStyle {
		payload.VoiceSettings.Style = &settings.Style
	}
	if voice.SupportsSpeakerBoost {
		payload.VoiceSettings.UseSpeakerBoost = &settings.SpeakerBoost
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}

	url := fmt.Sprintf("%s/v1/text-to-speech/%s", s.baseURL, voice.ID)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("xi-api-key", s.apiKey)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "audio/mpeg")

	start := time.Now()
	resp, err := s.client.Do(req)
	metrics.ObserveCall("elevenlabs", "text_to_speech", start)
	if err != nil {
		return nil, fmt.Errorf("text-to-speech request: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	switch resp.StatusCode {
	case http.StatusOK:
		return data, nil
	case http.StatusTooManyRequests:
		return nil, ErrRateLimited
	case http.StatusUnauthorized:
		var apiErr apiErrorResponse
		_ = json.Unmarshal(data, &apiErr)
		return nil, fmt.Errorf("%w: %s", ErrAuth, apiErr.Detail.Message)
	default:
		var apiErr apiErrorResponse
		_ = json.Unmarshal(data, &apiErr)
		if isPolicyStatus(apiErr.Detail.Status) {
			return nil, fmt.Errorf("%w: %s", ErrContentPolicy, apiErr.Detail.Message)
		}
		return nil, fmt.Errorf("text-to-speech: status %d: %s", resp.StatusCode, apiErr.Detail.Message)
	}
}

func isPolicyStatus(status string) bool {
	return status == "content_against_policy" || status == "text_rejected"
}
