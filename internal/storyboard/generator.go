package storyboard

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	openai "github.com/sashabaranov/go-openai"
	"go.uber.org/zap"

	"bookreel/internal/config"
	"bookreel/internal/metrics"
	"bookreel/internal/types"
)

const (
	// minSceneChars guards against truncated or degenerate completions.
	minSceneChars = 200

	minScenes = 3
	maxScenes = 12
	// sceneSeconds is the nominal on-screen time per scene.
	sceneSeconds = 5
)

var errEmptyCompletion = errors.New("completion returned no choices")

const sceneSystemPrompt = `You are a video producer planning stock-footage b-roll for short vertical book promos.
Describe scenes in generic, searchable terms. Never reference brand names, celebrities, book covers or specific characters.
For every scene output exactly:
SCENE <n> (<start>s - <end>s)
VISUAL: <one sentence, generic stock description>
KEYWORDS: <3 comma-separated search terms>`

// ChatCompleter is the slice of the OpenAI client the generator needs.
type ChatCompleter interface {
	CreateChatCompletion(ctx context.Context, req openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error)
}

// Storyboard is the generated scene plan plus its rendered report.
type Storyboard struct {
	Report string
	Scenes []types.StoryboardScene
	Source string
}

// Generator builds the human-readable shot plan for a script.
type Generator struct {
	client ChatCompleter
	model  string
	logger *zap.Logger
}

// New builds a Generator from configuration. Without an API key the
// generator runs on the curated library alone.
func New(cfg *config.Config, logger *zap.Logger) *Generator {
	g := &Generator{
		model:  cfg.OpenAIModel,
		logger: logger.With(zap.String("component", "storyboard")),
	}
	if cfg.OpenAIAPIKey != "" {
		g.client = openai.NewClient(cfg.OpenAIAPIKey)
	}
	return g
}

// NewWithClient wires an explicit completion client, used by tests.
func NewWithClient(client ChatCompleter, model string, logger *zap.Logger) *Generator {
	return &Generator{client: client, model: model, logger: logger.With(zap.String("component", "storyboard"))}
}

// SceneCount derives how many scenes a clip of the given length gets.
func SceneCount(durationSec int) int {
	n := durationSec / sceneSeconds
	if n < minScenes {
		n = minScenes
	}
	if n > maxScenes {
		n = maxScenes
	}
	return n
}

// Generate produces the storyboard report. The completion service is tried
// first; a failed or suspiciously short response falls back to the curated
// tone library, so generation never fails outright.
func (g *Generator) Generate(ctx context.Context, brief types.GenerationRequest, script string, sceneCount int) *Storyboard {
	if sceneCount <= 0 {
		sceneCount = SceneCount(brief.Duration)
	}

	if g.client != nil {
		text, err := g.complete(ctx, brief, script, sceneCount)
		switch {
		case err != nil:
			g.logger.Warn("storyboard completion failed, using curated scenes", zap.Error(err))
		case len(text) < minSceneChars:
			g.logger.Warn("storyboard completion too short, using curated scenes",
				zap.Int("chars", len(text)))
		default:
			g.logger.Info("storyboard generated",
				zap.Int("scenes", sceneCount),
				zap.String("source", types.SourceAI))
			return &Storyboard{
				Report: renderReport(brief, text, sceneCount),
				Source: types.SourceAI,
			}
		}
	}

	scenes := fallbackScenes(brief, script, sceneCount)
	g.logger.Info("storyboard generated",
		zap.Int("scenes", len(scenes)),
		zap.String("source", types.SourceTemplate))
	return &Storyboard{
		Report: renderReport(brief, renderScenes(scenes), len(scenes)),
		Scenes: scenes,
		Source: types.SourceTemplate,
	}
}

func (g *Generator) complete(ctx context.Context, brief types.GenerationRequest, script string, sceneCount int) (string, error) {
	start := time.Now()
	resp, err := g.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: g.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: sceneSystemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: scenePrompt(brief, script, sceneCount)},
		},
		Temperature: 0.7,
		MaxTokens:   900,
	})
	metrics.ObserveCall("openai", "generate_storyboard", start)
	if err != nil {
		return "", fmt.Errorf("storyboard completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", errEmptyCompletion
	}
	return strings.TrimSpace(stripFences(resp.Choices[0].Message.Content)), nil
}

func scenePrompt(brief types.GenerationRequest, script string, sceneCount int) string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Plan %d scenes for a %d second vertical video promoting the book %q.\n",
		sceneCount, brief.Duration, brief.Title))
	sb.WriteString(fmt.Sprintf("Tone: %s.\n", brief.Tone))
	if brief.Description != "" {
		sb.WriteString(fmt.Sprintf("About the book: %s\n", brief.Description))
	}
	sb.WriteString(fmt.Sprintf("Each scene runs about %d seconds. The first scene must work as an attention hook, the last as a call to action.\n\n",
		brief.Duration/sceneCount))
	sb.WriteString("NARRATION:\n")
	sb.WriteString(script)
	return sb.String()
}

// fallbackScenes pairs script chunks with curated visuals round-robin.
// Scene times partition the whole clip evenly.
func fallbackScenes(brief types.GenerationRequest, script string, sceneCount int) []types.StoryboardScene {
	chunks := chunkScript(script, sceneCount)
	if len(chunks) == 0 {
		chunks = []string{brief.Title}
	}
	pool := entriesForTone(brief.Tone)
	per := float64(brief.Duration) / float64(len(chunks))

	scenes := make([]types.StoryboardScene, 0, len(chunks))
	for i, chunk := range chunks {
		entry := pool[i%len(pool)]
		scene := types.StoryboardScene{
			Index:    i + 1,
			StartSec: float64(i) * per,
			EndSec:   float64(i+1) * per,
			Visual:   entry.Visual,
			Keywords: entry.Keywords,
			Notes:    chunk,
		}
		switch i {
		case 0:
			scene.Framing = types.FramingHook
		case len(chunks) - 1:
			scene.Framing = types.FramingCTA
		}
		scenes = append(scenes, scene)
	}
	return scenes
}

// chunkScript groups the script's units into at most sceneCount chunks of
// near-equal size, preserving order.
func chunkScript(script string, sceneCount int) []string {
	units := scriptUnits(script)
	if len(units) == 0 {
		return nil
	}
	n := sceneCount
	if len(units) < n {
		n = len(units)
	}

	chunks := make([]string, 0, n)
	base := len(units) / n
	extra := len(units) % n
	idx := 0
	for i := 0; i < n; i++ {
		take := base
		if i < extra {
			take++
		}
		chunks = append(chunks, strings.Join(units[idx:idx+take], " "))
		idx += take
	}
	return chunks
}

// scriptUnits mirrors the caption unit split: newline lines when the script
// is already broken up, sentences otherwise.
func scriptUnits(script string) []string {
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

// stripFences removes markdown code fences if the model wraps its output.
func stripFences(s string) string {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "```text")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(s, "```")
	return strings.TrimSpace(s)
}
