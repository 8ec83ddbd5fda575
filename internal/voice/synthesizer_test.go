package voice

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"bookreel/internal/config"
	"bookreel/internal/types"
)

type ttsTestServer struct {
	server   *httptest.Server
	hits     int
	lastBody map[string]any
	audio    []byte
	ttsCode  int
	ttsReply []byte
}

func newTTSServer(t *testing.T) *ttsTestServer {
	t.Helper()
	ts := &ttsTestServer{
		audio:   bytes.Repeat([]byte{0x2A}, 2048),
		ttsCode: http.StatusOK,
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/v1/voices", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(voicesBody))
	})
	mux.HandleFunc("/v1/text-to-speech/", func(w http.ResponseWriter, r *http.Request) {
		ts.hits++
		raw, _ := io.ReadAll(r.Body)
		ts.lastBody = map[string]any{}
		_ = json.Unmarshal(raw, &ts.lastBody)
		if ts.ttsCode != http.StatusOK {
			w.WriteHeader(ts.ttsCode)
			w.Write(ts.ttsReply)
			return
		}
		w.Write(ts.audio)
	})

	ts.server = httptest.NewServer(mux)
	t.Cleanup(ts.server.Close)
	return ts
}

func newTestSynthesizer(ts *ttsTestServer) *Synthesizer {
	cfg := &config.Config{
		ElevenLabsAPIKey:  "test-key",
		ElevenLabsBaseURL: ts.server.URL,
		ElevenLabsModel:   "eleven_multilingual_v2",
		RequestTimeout:    5 * time.Second,
	}
	return New(cfg, zap.NewNop())
}

func TestSynthesizeRejectsBadLengthWithoutCalling(t *testing.T) {
	ts := newTTSServer(t)
	s := newTestSynthesizer(ts)

	cases := []struct {
		name string
		text string
	}{
		{"too short", "ab"},
		{"too long", strings.Repeat("a", 6000)},
		{"whitespace only", "   "},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := s.Synthesize(context.Background(), tc.text, types.ToneCalm, "", Settings{})
			assert.ErrorIs(t, err, ErrTextLength)
		})
	}
	assert.Zero(t, ts.hits, "validation failures must not reach the network")
}

func TestSynthesizeHappyPath(t *testing.T) {
	ts := newTTSServer(t)
	s := newTestSynthesizer(ts)

	text := "Five simple words here exactly."
	result, err := s.Synthesize(context.Background(), text, types.ToneMotivational, "", Settings{})
	require.NoError(t, err)

	assert.Equal(t, ts.audio, result.Audio)
	assert.Equal(t, "audio/mpeg", result.ContentType)
	assert.Equal(t, "pNInz6obpgDQGcFmaJgB", result.VoiceID)
	assert.Equal(t, "Adam", result.VoiceName)
	assert.Equal(t, "eleven_multilingual_v2", result.Model)
	assert.InDelta(t, 2.0, result.EstimatedSec, 0.001) // 5 words at 150 wpm

	settings, ok := ts.lastBody["voice_settings"].(map[string]any)
	require.True(t, ok)
	assert.Contains(t, settings, "style")
	assert.Contains(t, settings, "use_speaker_boost")
}

func TestSynthesizeOmitsUnsupportedSettings(t *testing.T) {
	ts := newTTSServer(t)
	s := newTestSynthesizer(ts)

	t.Run("cloned voice drops style", func(t *testing.T) {
		_, err := s.Synthesize(context.Background(), "Read this one tonight.", types.ToneCalm, "cl0ned", Settings{})
		require.NoError(t, err)

		settings := ts.lastBody["voice_settings"].(map[string]any)
		assert.NotContains(t, settings, "style")
		assert.Contains(t, settings, "use_speaker_boost")
	})

	t.Run("generated voice drops both", func(t *testing.T) {
		_, err := s.Synthesize(context.Background(), "Read this one tonight.", types.ToneCalm, "gen1", Settings{})
		require.NoError(t, err)

		settings := ts.lastBody["voice_settings"].(map[string]any)
		assert.NotContains(t, settings, "style")
		assert.NotContains(t, settings, "use_speaker_boost")
	})
}

func TestSynthesizeRejectsUndersizedAudio(t *testing.T) {
	ts := newTTSServer(t)
	ts.audio = []byte("mp3?")
	s := newTestSynthesizer(ts)

	_, err := s.Synthesize(context.Background(), "A perfectly fine script.", types.ToneCalm, "", Settings{})
	assert.ErrorIs(t, err, ErrEmptyAudio)
}

func TestSynthesizeRateLimited(t *testing.T) {
	ts := newTTSServer(t)
	ts.ttsCode = http.StatusTooManyRequests
	s := newTestSynthesizer(ts)

	_, err := s.Synthesize(context.Background(), "A perfectly fine script.", types.ToneCalm, "", Settings{})
	assert.ErrorIs(t, err, ErrRateLimited)
}

func TestSynthesizeAuthFailure(t *testing.T) {
	ts := newTTSServer(t)
	ts.ttsCode = http.StatusUnauthorized
	ts.ttsReply = []byte(`{"detail":{"status":"invalid_api_key","message":"nope"}}`)
	s := newTestSynthesizer(ts)

	_, err := s.Synthesize(context.Background(), "A perfectly fine script.", types.ToneCalm, "", Settings{})
	assert.ErrorIs(t, err, ErrAuth)
}

func TestSynthesizeContentPolicyRejection(t *testing.T) {
	ts := newTTSServer(t)
	ts.ttsCode = http.StatusBadRequest
	ts.ttsReply = []byte(`{"detail":{"status":"text_rejected","message":"flagged"}}`)
	s := newTestSynthesizer(ts)

	_, err := s.Synthesize(context.Background(), "A perfectly fine script.", types.ToneCalm, "", Settings{})
	assert.ErrorIs(t, err, ErrContentPolicy)
}

func TestSynthesizeMissingKey(t *testing.T) {
	cfg := &config.Config{ElevenLabsBaseURL: "http://unused", RequestTimeout: time.Second}
	s := New(cfg, zap.NewNop())

	_, err := s.Synthesize(context.Background(), "A perfectly fine script.", types.ToneCalm, "", Settings{})
	assert.ErrorIs(t, err, ErrMissingKey)
}
