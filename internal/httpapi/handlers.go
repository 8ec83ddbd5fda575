package httpapi

import (
	"encoding/base64"
	"errors"
	"fmt"
	"net/http"
	"path"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"bookreel/internal/config"
	"bookreel/internal/export"
	"bookreel/internal/pipeline"
	"bookreel/internal/script"
	"bookreel/internal/types"
	"bookreel/internal/voice"
)

// Handler exposes the generation pipeline over HTTP.
type Handler struct {
	cfg      *config.Config
	scripts  *script.Synthesizer
	voices   *voice.Synthesizer
	videos   *pipeline.Orchestrator
	packages *export.Packager
	logger   *zap.Logger
}

func NewHandler(cfg *config.Config, scripts *script.Synthesizer, voices *voice.Synthesizer, videos *pipeline.Orchestrator, packages *export.Packager, logger *zap.Logger) *Handler {
	return &Handler{
		cfg:      cfg,
		scripts:  scripts,
		voices:   voices,
		videos:   videos,
		packages: packages,
		logger:   logger.With(zap.String("component", "http")),
	}
}

type briefRequest struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Tone        string `json:"tone"`
	Duration    int    `json:"duration"`
}

func (r briefRequest) brief() types.GenerationRequest {
	return types.GenerationRequest{
		Title:       r.Title,
		Description: r.Description,
		Tone:        types.Tone(r.Tone),
		Duration:    r.Duration,
	}
}

type scriptRequest struct {
	briefRequest
	Punchy bool `json:"punchy"`
}

type scriptResponse struct {
	Script   string   `json:"script"`
	Keywords []string `json:"keywords"`
	Format   string   `json:"format"`
	Source   string   `json:"source"`
}

type voiceoverRequest struct {
	Script string `json:"script"`
	Tone   string `json:"tone"`
}

type voiceoverResponse struct {
	Audio       string  `json:"audio"`
	ContentType string  `json:"contentType"`
	Duration    float64 `json:"duration"`
	VoiceID     string  `json:"voiceId"`
	VoiceName   string  `json:"voiceName"`
	ModelUsed   string  `json:"modelUsed"`
}

type videoResponse struct {
	VideoURL     string  `json:"videoUrl"`
	ThumbnailURL string  `json:"thumbnailUrl,omitempty"`
	Duration     float64 `json:"duration"`
	FileSize     int64   `json:"fileSize"`
}

type exportRequest struct {
	briefRequest
	Script     string `json:"script"`
	VoiceAudio string `json:"voiceAudio"`
}

type errorResponse struct {
	Error      string `json:"error"`
	Step       string `json:"step,omitempty"`
	Code       string `json:"code,omitempty"`
	Details    string `json:"details,omitempty"`
	Suggestion string `json:"suggestion,omitempty"`
}

func (h *Handler) generateScript(c *gin.Context) {
	var req scriptRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.fail(c, pipeline.Classify(pipeline.StepValidate, fmt.Errorf("%w: %v", types.ErrInvalidInput, err)))
		return
	}
	brief := req.brief()
	if err := brief.Validate(); err != nil {
		h.fail(c, pipeline.Classify(pipeline.StepValidate, err))
		return
	}

	result := h.scripts.Synthesize(c.Request.Context(), brief, req.Punchy)
	c.JSON(http.StatusOK, scriptResponse{
		Script:   result.Text,
		Keywords: result.Keywords,
		Format:   result.Format,
		Source:   result.Source,
	})
}

func (h *Handler) generateVoiceover(c *gin.Context) {
	var req voiceoverRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.fail(c, pipeline.Classify(pipeline.StepValidate, fmt.Errorf("%w: %v", types.ErrInvalidInput, err)))
		return
	}
	if !types.Tone(req.Tone).Valid() {
		h.fail(c, pipeline.Classify(pipeline.StepValidate,
			fmt.Errorf("%w: tone %q", types.ErrInvalidInput, req.Tone)))
		return
	}

	result, err := h.voices.Synthesize(c.Request.Context(), req.Script, types.Tone(req.Tone), "", voice.Settings{})
	if err != nil {
		h.fail(c, pipeline.Classify(pipeline.StepVoiceover, err))
		return
	}

	c.JSON(http.StatusOK, voiceoverResponse{
		Audio:       base64.StdEncoding.EncodeToString(result.Audio),
		ContentType: result.ContentType,
		Duration:    result.EstimatedSec,
		VoiceID:     result.VoiceID,
		VoiceName:   result.VoiceName,
		ModelUsed:   result.Model,
	})
}

func (h *Handler) generateVideo(c *gin.Context) {
	var req briefRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.fail(c, pipeline.Classify(pipeline.StepValidate, fmt.Errorf("%w: %v", types.ErrInvalidInput, err)))
		return
	}

	result, err := h.videos.GenerateVideo(c.Request.Context(), req.brief())
	if err != nil {
		var failure *pipeline.Failure
		if errors.As(err, &failure) {
			h.fail(c, failure)
			return
		}
		h.fail(c, pipeline.Classify(pipeline.StepValidate, err))
		return
	}

	resp := videoResponse{
		VideoURL: "/videos/" + path.Join(result.JobID, path.Base(result.Artifact.Path)),
		Duration: result.Artifact.DurationSec,
		FileSize: result.Artifact.SizeBytes,
	}
	if result.Artifact.ThumbnailPath != "" {
		resp.ThumbnailURL = "/videos/" + path.Join(result.JobID, path.Base(result.Artifact.ThumbnailPath))
	}
	c.JSON(http.StatusOK, resp)
}

func (h *Handler) exportPackage(c *gin.Context) {
	var req exportRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.fail(c, pipeline.Classify(pipeline.StepValidate, fmt.Errorf("%w: %v", types.ErrInvalidInput, err)))
		return
	}

	audio, err := base64.StdEncoding.DecodeString(req.VoiceAudio)
	if err != nil {
		h.fail(c, pipeline.Classify(pipeline.StepValidate,
			fmt.Errorf("%w: voiceAudio is not valid base64", types.ErrInvalidInput)))
		return
	}

	pkg, err := h.packages.Build(c.Request.Context(), req.brief(), req.Script, audio)
	if err != nil {
		h.fail(c, pipeline.Classify(pipeline.StepExport, err))
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", pkg.Filename))
	c.Data(http.StatusOK, pkg.ContentType, pkg.Data)
}

func (h *Handler) fail(c *gin.Context, failure *pipeline.Failure) {
	c.JSON(statusFor(failure.Code), errorResponse{
		Error:      failure.Message,
		Step:       failure.Step,
		Code:       failure.Code,
		Details:    failure.Details,
		Suggestion: failure.Suggestion,
	})
}

// statusFor maps failure codes onto HTTP statuses. Credential and
// environment problems are server-side, so they stay 5xx.
func statusFor(code string) int {
	switch code {
	case pipeline.CodeMissingField, pipeline.CodeInvalidInput:
		return http.StatusBadRequest
	case pipeline.CodeRateLimited:
		return http.StatusTooManyRequests
	default:
		return http.StatusInternalServerError
	}
}
