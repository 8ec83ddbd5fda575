package script

import (
	"context"
	"errors"
	"strings"
	"testing"

	openai "github.com/sashabaranov/go-openai"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"bookreel/internal/types"
)

type stubCompleter struct {
	resp    openai.ChatCompletionResponse
	err     error
	calls   int
	lastReq openai.ChatCompletionRequest
}

func (s *stubCompleter) CreateChatCompletion(_ context.Context, req openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error) {
	s.calls++
	s.lastReq = req
	return s.resp, s.err
}

func completionWith(content string) openai.ChatCompletionResponse {
	return openai.ChatCompletionResponse{
		Choices: []openai.ChatCompletionChoice{
			{Message: openai.ChatCompletionMessage{Content: content}},
		},
	}
}

func testBrief() types.GenerationRequest {
	return types.GenerationRequest{
		Title:       "Atomic Habits",
		Description: "Tiny habits, remarkable results",
		Tone:        types.ToneMotivational,
		Duration:    30,
	}
}

func TestSynthesizeUsesCompletion(t *testing.T) {
	stub := &stubCompleter{resp: completionWith("Stop scrolling. This book rewires how you build habits. Read it tonight.")}
	s := NewWithClient(stub, "gpt-4o-mini", zap.NewNop())

	result := s.Synthesize(context.Background(), testBrief(), false)

	assert.Equal(t, 1, stub.calls)
	assert.Equal(t, types.SourceAI, result.Source)
	assert.Equal(t, types.FormatStandard, result.Format)
	assert.Contains(t, result.Text, "habits")
	assert.NotEmpty(t, result.Keywords)
}

func TestSynthesizeFallsBack(t *testing.T) {
	cases := []struct {
		name string
		stub *stubCompleter
	}{
		{"api error", &stubCompleter{err: errors.New("429 rate limited")}},
		{"no choices", &stubCompleter{resp: openai.ChatCompletionResponse{}}},
		{"blank content", &stubCompleter{resp: completionWith("   ")}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			s := NewWithClient(tc.stub, "gpt-4o-mini", zap.NewNop())
			result := s.Synthesize(context.Background(), testBrief(), false)

			assert.Equal(t, types.SourceTemplate, result.Source)
			assert.NotEmpty(t, result.Text)
			assert.NotEmpty(t, result.Keywords)
		})
	}
}

func TestSynthesizeWithoutClientUsesTemplate(t *testing.T) {
	s := NewWithClient(nil, "gpt-4o-mini", zap.NewNop())

	result := s.Synthesize(context.Background(), testBrief(), false)

	assert.Equal(t, types.SourceTemplate, result.Source)
	assert.Contains(t, result.Text, "Atomic Habits")
}

func TestTemplateScriptIsDeterministic(t *testing.T) {
	s := NewWithClient(nil, "gpt-4o-mini", zap.NewNop())

	first := s.Synthesize(context.Background(), testBrief(), false)
	second := s.Synthesize(context.Background(), testBrief(), false)

	assert.Equal(t, first.Text, second.Text)
	assert.Equal(t, first.Keywords, second.Keywords)
}

func TestPunchyModeEnforcesLineLimit(t *testing.T) {
	longRamble := strings.Repeat("this sentence keeps going and going without any punctuation at all ", 6) +
		". Short one. " +
		"Another extremely long sentence that certainly has far more than ten words in it and then some more."

	cases := []struct {
		name string
		stub *stubCompleter
	}{
		{"ai output", &stubCompleter{resp: completionWith(longRamble)}},
		{"template output", &stubCompleter{err: errors.New("boom")}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			s := NewWithClient(tc.stub, "gpt-4o-mini", zap.NewNop())
			result := s.Synthesize(context.Background(), testBrief(), true)

			require.Equal(t, types.FormatPunchy, result.Format)
			require.NotEmpty(t, result.Lines)
			for _, line := range result.Lines {
				words := strings.Fields(line)
				assert.LessOrEqual(t, len(words), maxWordsPerPunchyLine, "line %q", line)
			}
			assert.Equal(t, result.Lines, nonEmptyLines(result.Text))
		})
	}
}

func TestPunchyModeShrinksWordTarget(t *testing.T) {
	stub := &stubCompleter{resp: completionWith("Read this book today.")}
	s := NewWithClient(stub, "gpt-4o-mini", zap.NewNop())

	s.Synthesize(context.Background(), testBrief(), false)
	standardPrompt := stub.lastReq.Messages[1].Content
	assert.Contains(t, standardPrompt, "roughly 75 words")

	s.Synthesize(context.Background(), testBrief(), true)
	punchyPrompt := stub.lastReq.Messages[1].Content
	assert.Contains(t, punchyPrompt, "roughly 63 words")
}

func TestStripFences(t *testing.T) {
	fenced := "```text\nHello reader.\n```"
	assert.Equal(t, "Hello reader.", stripFences(fenced))
	assert.Equal(t, "plain", stripFences("plain"))
}

func TestEnforcePunchyChopsConsecutiveChunks(t *testing.T) {
	text := "one two three four five six seven eight nine ten eleven twelve"
	out := EnforcePunchy(text)

	lines := strings.Split(out, "\n")
	require.Len(t, lines, 2)
	assert.Equal(t, "one two three four five six seven eight nine ten", lines[0])
	assert.Equal(t, "eleven twelve", lines[1])
}
