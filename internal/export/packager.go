package export

import (
	"archive/zip"
	"bytes"
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"bookreel/internal/storyboard"
	"bookreel/internal/subtitles"
	"bookreel/internal/types"
)

// Archive entry names. The package always contains exactly these four.
const (
	entryAudio        = "voiceover.mp3"
	entryCaptions     = "captions.srt"
	entryStoryboard   = "storyboard.txt"
	entryInstructions = "instructions.txt"
)

// Package is the finished archive plus its download metadata.
type Package struct {
	Data        []byte
	Filename    string
	ContentType string
}

// Packager bundles everything an editor needs to finish the video by hand.
type Packager struct {
	storyboards *storyboard.Generator
	logger      *zap.Logger
}

func New(storyboards *storyboard.Generator, logger *zap.Logger) *Packager {
	return &Packager{
		storyboards: storyboards,
		logger:      logger.With(zap.String("component", "export")),
	}
}

// Build validates every input, derives captions and the storyboard, then
// packs exactly four entries into a zip. Validation runs before any
// archive bytes exist, so a failure never produces a partial file.
func (p *Packager) Build(ctx context.Context, brief types.GenerationRequest, script string, audio []byte) (*Package, error) {
	if err := brief.Validate(); err != nil {
		return nil, err
	}
	if strings.TrimSpace(script) == "" {
		return nil, fmt.Errorf("%w: script", types.ErrMissingField)
	}
	if len(audio) == 0 {
		return nil, fmt.Errorf("%w: audio", types.ErrMissingField)
	}

	// No rendered file to probe here, so caption timing runs on the
	// word-count estimate of the narration length.
	narrationSec := types.EstimateSpokenSec(len(strings.Fields(script)))
	segments, err := subtitles.Align(script, narrationSec)
	if err != nil {
		return nil, fmt.Errorf("derive captions: %w", err)
	}

	board := p.storyboards.Generate(ctx, brief, script, storyboard.SceneCount(brief.Duration))

	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	entries := []struct {
		name string
		data []byte
	}{
		{entryAudio, audio},
		{entryCaptions, []byte(subtitles.RenderSRT(segments))},
		{entryStoryboard, []byte(board.Report)},
		{entryInstructions, []byte(instructions(brief, narrationSec))},
	}
	for _, entry := range entries {
		w, err := zw.Create(entry.name)
		if err != nil {
			return nil, fmt.Errorf("create archive entry %s: %w", entry.name, err)
		}
		if _, err := w.Write(entry.data); err != nil {
			return nil, fmt.Errorf("write archive entry %s: %w", entry.name, err)
		}
	}
	if err := zw.Close(); err != nil {
		return nil, fmt.Errorf("finalize archive: %w", err)
	}

	p.logger.Info("package built",
		zap.String("title", brief.Title),
		zap.Int("bytes", buf.Len()),
		zap.Int("captions", len(segments)))

	return &Package{
		Data:        buf.Bytes(),
		Filename:    archiveName(brief.Title),
		ContentType: "application/zip",
	}, nil
}

func instructions(brief types.GenerationRequest, narrationSec float64) string {
	var sb strings.Builder
	sb.WriteString("HOW TO USE THIS PACKAGE\n")
	sb.WriteString("=======================\n")
	sb.WriteString(fmt.Sprintf("Title: %s\n", brief.Title))
	sb.WriteString(fmt.Sprintf("Tone: %s | Target length: %ds\n", brief.Tone, brief.Duration))
	sb.WriteString(fmt.Sprintf("Estimated narration: %.1fs\n\n", narrationSec))

	sb.WriteString("FILES\n")
	sb.WriteString("-----\n")
	sb.WriteString(entryAudio + "    - narration audio, drop on your timeline first\n")
	sb.WriteString(entryCaptions + "     - timed captions, import or burn in\n")
	sb.WriteString(entryStoryboard + "   - scene-by-scene shot plan with search keywords\n")
	sb.WriteString(entryInstructions + " - this file\n\n")

	sb.WriteString("ASSEMBLY STEPS\n")
	sb.WriteString("--------------\n")
	sb.WriteString("1. Create a 1080x1920 (9:16) sequence.\n")
	sb.WriteString("2. Place " + entryAudio + " at the start of the timeline.\n")
	sb.WriteString("3. Source each scene from " + entryStoryboard + " and cut on the narration beats.\n")
	sb.WriteString("4. Import " + entryCaptions + " and keep captions inside the bottom safe zone.\n")
	sb.WriteString("5. Export with audio loud enough for phone speakers.\n")
	return sb.String()
}

// archiveName slugifies the title into the download filename.
func archiveName(title string) string {
	slug := strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			return r
		case r >= 'A' && r <= 'Z':
			return r + ('a' - 'A')
		default:
			return '-'
		}
	}, strings.TrimSpace(title))
	for strings.Contains(slug, "--") {
		slug = strings.ReplaceAll(slug, "--", "-")
	}
	slug = strings.Trim(slug, "-")
	if slug == "" {
		slug = "video"
	}
	return slug + "-package.zip"
}
