package subtitles

import (
	"errors"
	"fmt"
	"strings"

	"bookreel/internal/types"
)

const (
	// maxLineChars is the widest caption line that stays readable on a
	// phone screen.
	maxLineChars = 42
	// minSegmentSec keeps every caption on screen long enough to read.
	minSegmentSec = 1.0
)

var (
	ErrEmptyScript = errors.New("script is empty")
	ErrBadDuration = errors.New("total duration must be positive")
)

var conjunctions = map[string]bool{
	"and": true, "but": true, "or": true, "so": true,
	"yet": true, "for": true, "nor": true,
}

// Align distributes the script evenly across the narration duration.
// Segments are contiguous, non-overlapping, start at zero and end exactly
// at totalSec.
func Align(script string, totalSec float64) ([]types.SubtitleSegment, error) {
	if totalSec <= 0 {
		return nil, fmt.Errorf("%w: got %.2f", ErrBadDuration, totalSec)
	}
	units := splitUnits(script)
	if len(units) == 0 {
		return nil, ErrEmptyScript
	}

	share := totalSec / float64(len(units))
	if share < minSegmentSec {
		share = minSegmentSec
	}

	segments := make([]types.SubtitleSegment, 0, len(units))
	for i, unit := range units {
		start := float64(i) * share
		end := start + share
		if start > totalSec {
			start = totalSec
		}
		if end > totalSec || i == len(units)-1 {
			end = totalSec
		}
		segments = append(segments, types.SubtitleSegment{
			StartSec: start,
			EndSec:   end,
			Lines:    wrapLines(unit),
		})
	}
	return segments, nil
}

// splitUnits returns the atomic caption units: the existing lines when the
// script is already newline-broken (punchy format), sentences otherwise.
func splitUnits(script string) []string {
	var lines []string
	for _, line := range strings.Split(script, "\n") {
		if line = strings.TrimSpace(line); line != "" {
			lines = append(lines, line)
		}
	}
	switch len(lines) {
	case 0:
		return nil
	case 1:
		return splitSentences(lines[0])
	default:
		return lines
	}
}

// splitSentences breaks text on terminal punctuation, keeping the
// punctuation with its sentence.
func splitSentences(text string) []string {
	var sentences []string
	var current strings.Builder
	for _, r := range text {
		current.WriteRune(r)
		if r == '.' || r == '!' || r == '?' {
			if s := strings.TrimSpace(current.String()); s != "" {
				sentences = append(sentences, s)
			}
			current.Reset()
		}
	}
	if s := strings.TrimSpace(current.String()); s != "" {
		sentences = append(sentences, s)
	}
	return sentences
}

// wrapLines fits one unit into at most two display lines. Long units split
// near the midpoint word, preferring to start the second line at a
// coordinating conjunction within two words of it.
func wrapLines(unit string) []string {
	if len(unit) <= maxLineChars {
		return []string{unit}
	}
	words := strings.Fields(unit)
	if len(words) < 2 {
		return []string{unit}
	}

	split := len(words) / 2
	for _, offset := range []int{0, 1, -1, 2, -2} {
		idx := split + offset
		if idx <= 0 || idx >= len(words) {
			continue
		}
		if conjunctions[strings.ToLower(strings.Trim(words[idx], ",.!?;:"))] {
			split = idx
			break
		}
	}

	return []string{
		strings.Join(words[:split], " "),
		strings.Join(words[split:], " "),
	}
}
