package pipeline

import (
	"errors"
	"fmt"
	"os"

	"bookreel/internal/render"
	"bookreel/internal/stock"
	"bookreel/internal/subtitles"
	"bookreel/internal/types"
	"bookreel/internal/voice"
)

// Failure codes, one per distinct cause.
const (
	CodeMissingField     = "MISSING_FIELD"
	CodeInvalidInput     = "INVALID_INPUT"
	CodeMissingAPIKey    = "MISSING_API_KEY"
	CodeRateLimited      = "RATE_LIMITED"
	CodeContentPolicy    = "CONTENT_POLICY"
	CodeNoAssets         = "NO_ASSETS_FOUND"
	CodeBinaryMissing    = "FFMPEG_NOT_FOUND"
	CodeEncodingFailed   = "ENCODING_FAILED"
	CodePermissionDenied = "PERMISSION_DENIED"
	CodeInternal         = "INTERNAL"
)

// Failure is the classified, user-facing shape of a pipeline error. The
// message is always a fixed phrase per code; raw error text only ever
// appears in Details.
type Failure struct {
	Step       string `json:"step"`
	Code       string `json:"code"`
	Message    string `json:"message"`
	Suggestion string `json:"suggestion,omitempty"`
	Details    string `json:"details,omitempty"`
}

func (f *Failure) Error() string {
	return fmt.Sprintf("%s failed [%s]: %s", f.Step, f.Code, f.Message)
}

// Classify maps an error onto the fixed code table together with its
// remediation hint.
func Classify(step string, err error) *Failure {
	f := &Failure{Step: step, Code: CodeInternal, Details: err.Error()}

	switch {
	case errors.Is(err, types.ErrMissingField):
		f.Code = CodeMissingField
		f.Message = "A required field is missing."
		f.Suggestion = "Fill in every required field and resubmit."

	case errors.Is(err, types.ErrInvalidInput),
		errors.Is(err, voice.ErrTextLength),
		errors.Is(err, subtitles.ErrEmptyScript),
		errors.Is(err, subtitles.ErrBadDuration):
		f.Code = CodeInvalidInput
		f.Message = "A field has an unsupported value."
		f.Suggestion = "Use one of the supported tones and durations and a non-empty script."

	case errors.Is(err, voice.ErrMissingKey), errors.Is(err, voice.ErrAuth):
		f.Code = CodeMissingAPIKey
		f.Message = "The voice service credential is missing or invalid."
		f.Suggestion = "Set ELEVENLABS_API_KEY to a valid key."

	case errors.Is(err, voice.ErrRateLimited):
		f.Code = CodeRateLimited
		f.Message = "The voice service is rate limiting requests."
		f.Suggestion = "Wait a minute and try again."

	case errors.Is(err, voice.ErrContentPolicy):
		f.Code = CodeContentPolicy
		f.Message = "The narration text was rejected by the voice service."
		f.Suggestion = "Rephrase the script and try again."

	case errors.Is(err, stock.ErrNoAssets), errors.Is(err, render.ErrNoClips):
		f.Code = CodeNoAssets
		f.Message = "No stock media matched the request."
		f.Suggestion = "Broaden the title or description wording."

	case errors.Is(err, render.ErrBinaryMissing):
		f.Code = CodeBinaryMissing
		f.Message = "The media toolchain is not installed."
		f.Suggestion = "Install ffmpeg and ffprobe and put them on PATH."

	case errors.Is(err, render.ErrEncoderFailed):
		f.Code = CodeEncodingFailed
		f.Message = "Video encoding failed."
		f.Suggestion = "Check that the installed ffmpeg supports libx264 and aac."

	case errors.Is(err, render.ErrPermissionDenied), errors.Is(err, os.ErrPermission):
		f.Code = CodePermissionDenied
		f.Message = "The service cannot write its working files."
		f.Suggestion = "Fix permissions on the output and temp directories."

	default:
		f.Message = "Video generation failed unexpectedly."
		f.Suggestion = "Try again; if it keeps failing check the server logs."
	}

	return f
}
