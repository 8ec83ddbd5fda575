package types

import (
	"errors"
	"fmt"
	"strings"
)

// Tone is the narrative style driving script wording, voice choice and
// storyboard library selection.
type Tone string

const (
	ToneMotivational Tone = "Motivational"
	ToneEmotional    Tone = "Emotional"
	ToneEducational  Tone = "Educational"
	ToneAggressive   Tone = "Aggressive"
	ToneCalm         Tone = "Calm"
)

// AllTones lists every supported tone preset.
var AllTones = []Tone{ToneMotivational, ToneEmotional, ToneEducational, ToneAggressive, ToneCalm}

// ValidDurations are the accepted target video lengths in seconds.
var ValidDurations = []int{30, 45, 60}

// WordsPerMinute is the assumed narration pace. Word targets and duration
// estimates are both derived from it.
const WordsPerMinute = 150.0

// Validation sentinels, matched by the orchestrator's error classifier.
var (
	ErrMissingField = errors.New("missing required field")
	ErrInvalidInput = errors.New("invalid input")
)

// GenerationRequest is the brief that drives one pipeline run.
// Immutable once accepted.
type GenerationRequest struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Tone        Tone   `json:"tone"`
	Duration    int    `json:"duration"`
}

// Validate checks all brief fields against the fixed enums.
func (r GenerationRequest) Validate() error {
	if strings.TrimSpace(r.Title) == "" {
		return fmt.Errorf("%w: title", ErrMissingField)
	}
	if strings.TrimSpace(r.Description) == "" {
		return fmt.Errorf("%w: description", ErrMissingField)
	}
	if !r.Tone.Valid() {
		return fmt.Errorf("%w: tone %q (want one of %v)", ErrInvalidInput, r.Tone, AllTones)
	}
	if !ValidDuration(r.Duration) {
		return fmt.Errorf("%w: duration %d (want one of %v)", ErrInvalidInput, r.Duration, ValidDurations)
	}
	return nil
}

// Valid reports whether t is one of the five supported tones.
func (t Tone) Valid() bool {
	for _, known := range AllTones {
		if t == known {
			return true
		}
	}
	return false
}

// ValidDuration reports whether d is an accepted target duration.
func ValidDuration(d int) bool {
	for _, known := range ValidDurations {
		if d == known {
			return true
		}
	}
	return false
}

// Script formats and sources, surfaced in the generate-script response.
const (
	FormatStandard = "standard"
	FormatPunchy   = "punchy"

	SourceAI       = "ai"
	SourceTemplate = "template"
)

// ScriptResult is the narration produced for one brief.
type ScriptResult struct {
	Text     string   `json:"text"`
	Keywords []string `json:"keywords"`
	Lines    []string `json:"lines,omitempty"`
	Format   string   `json:"format"`
	Source   string   `json:"source"`
}

// VoiceResult is synthesized narration audio. EstimatedSec is derived from
// word count, not measured; the renderer probes the real duration.
type VoiceResult struct {
	Audio        []byte  `json:"-"`
	ContentType  string  `json:"content_type"`
	EstimatedSec float64 `json:"estimated_sec"`
	VoiceID      string  `json:"voice_id"`
	VoiceName    string  `json:"voice_name"`
	Model        string  `json:"model"`
}

// AssetKind distinguishes downloaded stock media.
type AssetKind string

const (
	KindVideo AssetKind = "video"
	KindImage AssetKind = "image"
)

// MediaAsset is one locally cached stock clip or photo, owned by the job
// that downloaded it and deleted at job end.
type MediaAsset struct {
	Path        string    `json:"path"`
	Kind        AssetKind `json:"kind"`
	Provider    string    `json:"provider"`
	Width       int       `json:"width"`
	Height      int       `json:"height"`
	DurationSec float64   `json:"duration_sec,omitempty"`
	Attribution string    `json:"attribution"`
}

// SubtitleSegment is one caption entry. Segments partition [0, total] with
// no gaps or overlaps; Lines holds at most two display lines.
type SubtitleSegment struct {
	StartSec float64  `json:"start_sec"`
	EndSec   float64  `json:"end_sec"`
	Lines    []string `json:"lines"`
}

// Scene framing markers used by the storyboard report.
const (
	FramingHook = "hook"
	FramingCTA  = "cta"
)

// StoryboardScene is one entry in the human-readable scene plan.
type StoryboardScene struct {
	Index    int      `json:"index"`
	StartSec float64  `json:"start_sec"`
	EndSec   float64  `json:"end_sec"`
	Visual   string   `json:"visual"`
	Keywords []string `json:"keywords"`
	Notes    string   `json:"notes"`
	Framing  string   `json:"framing,omitempty"`
}

// VideoArtifact is the final rendered output.
type VideoArtifact struct {
	Path          string  `json:"path"`
	ThumbnailPath string  `json:"thumbnail_path,omitempty"`
	DurationSec   float64 `json:"duration_sec"`
	SizeBytes     int64   `json:"size_bytes"`
	Width         int     `json:"width"`
	Height        int     `json:"height"`
}

// EstimateSpokenSec converts a word count to expected narration seconds at
// the assumed pace.
func EstimateSpokenSec(wordCount int) float64 {
	return float64(wordCount) / (WordsPerMinute / 60.0)
}

// TargetWordCount is how many words the narration should carry for a clip
// of the given length.
func TargetWordCount(durationSec int) int {
	return int(float64(durationSec) * WordsPerMinute / 60.0)
}
