package script

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

// punchyWordFactor shrinks the word target in punchy mode to leave room for
// spoken pauses between lines.
const punchyWordFactor = 0.85

const maxWordsPerPunchyLine = 10

const defaultTemperature = 0.8

var (
	errNoClient        = errors.New("no completion client configured")
	errEmptyCompletion = errors.New("completion returned no usable text")
)

// ChatCompleter is the slice of the OpenAI client the synthesizer needs.
type ChatCompleter interface {
	CreateChatCompletion(ctx context.Context, req openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error)
}

// Synthesizer produces narration scripts. The completion call may fail for
// any reason; the caller always gets a usable script because generation
// degrades to the tone templates.
type Synthesizer struct {
	client      ChatCompleter
	model       string
	temperature float32
	logger      *zap.Logger
}

// New builds a Synthesizer. Without an API key the template path is used
// for every request.
func New(cfg *config.Config, logger *zap.Logger) *Synthesizer {
	s := &Synthesizer{
		model:       cfg.OpenAIModel,
		temperature: float32(cfg.OpenAITemperature),
		logger:      logger.With(zap.String("component", "script")),
	}
	if cfg.OpenAIAPIKey != "" {
		s.client = openai.NewClient(cfg.OpenAIAPIKey)
	}
	return s
}

// NewWithClient is used by tests and by callers that manage their own client.
func NewWithClient(client ChatCompleter, model string, logger *zap.Logger) *Synthesizer {
	return &Synthesizer{
		client:      client,
		model:       model,
		temperature: defaultTemperature,
		logger:      logger.With(zap.String("component", "script")),
	}
}

// Synthesize turns a brief into narration text plus derived keywords.
// It never returns an error: any completion failure falls back to the
// deterministic tone template, and the result records which path ran.
func (s *Synthesizer) Synthesize(ctx context.Context, brief types.GenerationRequest, punchy bool) types.ScriptResult {
	target := types.TargetWordCount(brief.Duration)
	if punchy {
		target = int(float64(target) * punchyWordFactor)
	}

	text, err := s.generate(ctx, brief, target, punchy)
	source := types.SourceAI
	if err != nil {
		s.logger.Warn("falling back to template script",
			zap.String("tone", string(brief.Tone)),
			zap.Error(err))
		text = templateScript(brief, target)
		source = types.SourceTemplate
	}

	format := types.FormatStandard
	var lines []string
	if punchy {
		text = EnforcePunchy(text)
		format = types.FormatPunchy
		lines = nonEmptyLines(text)
	}

	return types.ScriptResult{
		Text:     text,
		Keywords: ExtractKeywords(brief.Title, text),
		Lines:    lines,
		Format:   format,
		Source:   source,
	}
}

func (s *Synthesizer) generate(ctx context.Context, brief types.GenerationRequest, targetWords int, punchy bool) (string, error) {
	if s.client == nil {
		return "", errNoClient
	}

	start := time.Now()
	resp, err := s.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: s.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: systemPrompt(brief.Tone, punchy)},
			{Role: openai.ChatMessageRoleUser, Content: userPrompt(brief, targetWords, punchy)},
		},
		Temperature: s.temperature,
		MaxTokens:   700,
	})
	metrics.ObserveCall("openai", "generate_script", start)
	if err != nil {
		return "", fmt.Errorf("chat completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", errEmptyCompletion
	}

	text := strings.TrimSpace(stripFences(resp.Choices[0].Message.Content))
	if text == "" {
		return "", errEmptyCompletion
	}
	return text, nil
}

func systemPrompt(tone types.Tone, punchy bool) string {
	var sb strings.Builder
	sb.WriteString("You write voiceover scripts for short vertical book-promotion videos. ")
	sb.WriteString(toneInstructions[tone])
	sb.WriteString("\n\nStructure every script as: a hook that stops the scroll, ")
	sb.WriteString("a short body that sells the feeling of the book, and a closing call to action ")
	sb.WriteString("inviting the viewer to read it. Plain spoken prose only: no hashtags, ")
	sb.WriteString("no emoji, no stage directions, no markdown.")
	if punchy {
		sb.WriteString(" Write one thought per line, each line on its own row, ")
		sb.WriteString(fmt.Sprintf("never more than %d words per line.", maxWordsPerPunchyLine))
	}
	return sb.String()
}

func userPrompt(brief types.GenerationRequest, targetWords int, punchy bool) string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Book title: %s\n", brief.Title))
	sb.WriteString(fmt.Sprintf("Description: %s\n", brief.Description))
	sb.WriteString(fmt.Sprintf("Tone: %s\n", brief.Tone))
	sb.WriteString(fmt.Sprintf("The narration will run about %d seconds, so aim for roughly %d words.\n", brief.Duration, targetWords))
	if punchy {
		sb.WriteString("Use the short punchy line format.\n")
	}
	sb.WriteString("Respond with the script text only.")
	return sb.String()
}

// EnforcePunchy reflows text so no line exceeds the punchy word limit.
// Sentences become lines; any line still too long is chopped into
// consecutive chunks of at most ten words.
func EnforcePunchy(text string) string {
	var out []string
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		for _, sentence := range splitSentences(line) {
			words := strings.Fields(sentence)
			for len(words) > maxWordsPerPunchyLine {
				out = append(out, strings.Join(words[:maxWordsPerPunchyLine], " "))
				words = words[maxWordsPerPunchyLine:]
			}
			if len(words) > 0 {
				out = append(out, strings.Join(words, " "))
			}
		}
	}
	return strings.Join(out, "\n")
}

// splitSentences breaks text on terminal punctuation, keeping the
// punctuation attached to its sentence.
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

func nonEmptyLines(text string) []string {
	var lines []string
	for _, line := range strings.Split(text, "\n") {
		if line = strings.TrimSpace(line); line != "" {
			lines = append(lines, line)
		}
	}
	return lines
}

// stripFences removes markdown code fences if the model wraps its output.
func stripFences(s string) string {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "```text")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(s, "```")
	return strings.TrimSpace(s)
}
