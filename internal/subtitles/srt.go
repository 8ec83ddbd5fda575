package subtitles

import (
	"fmt"
	"math"
	"os"
	"strconv"
	"strings"

	"bookreel/internal/types"
)

// FormatTimestamp renders seconds as an SRT timestamp (HH:MM:SS,mmm).
func FormatTimestamp(sec float64) string {
	if sec < 0 {
		sec = 0
	}
	totalMs := int(math.Round(sec * 1000))
	h := totalMs / 3600000
	m := (totalMs % 3600000) / 60000
	s := (totalMs % 60000) / 1000
	ms := totalMs % 1000
	return fmt.Sprintf("%02d:%02d:%02d,%03d", h, m, s, ms)
}

// RenderSRT produces the SubRip document for the segment list: 1-based
// indices, timestamp ranges and blank-line separated cues.
func RenderSRT(segments []types.SubtitleSegment) string {
	var sb strings.Builder
	for i, seg := range segments {
		sb.WriteString(strconv.Itoa(i + 1))
		sb.WriteString("\n")
		sb.WriteString(FormatTimestamp(seg.StartSec))
		sb.WriteString(" --> ")
		sb.WriteString(FormatTimestamp(seg.EndSec))
		sb.WriteString("\n")
		sb.WriteString(strings.Join(seg.Lines, "\n"))
		sb.WriteString("\n\n")
	}
	return sb.String()
}

// WriteSRT saves the rendered track to path.
func WriteSRT(segments []types.SubtitleSegment, path string) error {
	if len(segments) == 0 {
		return ErrEmptyScript
	}
	if err := os.WriteFile(path, []byte(RenderSRT(segments)), 0644); err != nil {
		return fmt.Errorf("failed to write subtitle file: %w", err)
	}
	return nil
}
