package voice

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"bookreel/internal/types"
)

const voicesBody = `{"voices":[
  {"voice_id":"pNInz6obpgDQGcFmaJgB","name":"Adam","category":"premade"},
  {"voice_id":"EXAVITQu4vr4xnSDxMaL","name":"Bella","category":"premade"},
  {"voice_id":"cl0ned","name":"Echo","category":"cloned"},
  {"voice_id":"gen1","name":"Synth","category":"generated"}
]}`

func newTestRegistry(t *testing.T, handler http.HandlerFunc) (*Registry, *httptest.Server) {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	reg := NewRegistry("test-key", server.URL, server.Client(), zap.NewNop())
	return reg, server
}

func TestVoicesCachesWithinTTL(t *testing.T) {
	hits := 0
	reg, _ := newTestRegistry(t, func(w http.ResponseWriter, r *http.Request) {
		hits++
		w.Write([]byte(voicesBody))
	})

	now := time.Now()
	reg.cache.now = func() time.Time { return now }

	_, err := reg.Voices(context.Background())
	require.NoError(t, err)
	_, err = reg.Voices(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, hits, "second call within TTL must hit the cache")

	now = now.Add(registryTTL + time.Second)
	_, err = reg.Voices(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, hits, "expired cache must refetch")
}

func TestVoicesPremadeFallbackOnMissingPermissions(t *testing.T) {
	hits := 0
	reg, _ := newTestRegistry(t, func(w http.ResponseWriter, r *http.Request) {
		hits++
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"detail":{"status":"missing_permissions","message":"key cannot list voices"}}`))
	})

	voices, err := reg.Voices(context.Background())
	require.NoError(t, err)
	assert.Len(t, voices, len(premadeVoices))
	assert.Equal(t, "Adam", voices[0].Name)

	// The fallback set is cached like a normal listing.
	_, err = reg.Voices(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, hits)
}

func TestVoicesFatalOnBadKey(t *testing.T) {
	reg, _ := newTestRegistry(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"detail":{"status":"invalid_api_key","message":"bad key"}}`))
	})

	_, err := reg.Voices(context.Background())
	assert.ErrorIs(t, err, ErrAuth)
}

func TestVoicesMissingKey(t *testing.T) {
	reg := NewRegistry("", "http://unused", http.DefaultClient, zap.NewNop())
	_, err := reg.Voices(context.Background())
	assert.ErrorIs(t, err, ErrMissingKey)
}

func TestResolveUnknownVoice(t *testing.T) {
	reg, _ := newTestRegistry(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(voicesBody))
	})

	_, err := reg.Resolve(context.Background(), "no-such-voice")
	assert.ErrorIs(t, err, types.ErrInvalidInput)
}

func TestVoiceForToneUsesPresetMap(t *testing.T) {
	reg, _ := newTestRegistry(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(voicesBody))
	})

	v, err := reg.VoiceForTone(context.Background(), types.ToneMotivational)
	require.NoError(t, err)
	assert.Equal(t, "Adam", v.Name)
	assert.True(t, v.SupportsStyle)
}

func TestCapabilityMappingByCategory(t *testing.T) {
	reg, _ := newTestRegistry(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(voicesBody))
	})

	cloned, err := reg.Resolve(context.Background(), "cl0ned")
	require.NoError(t, err)
	assert.False(t, cloned.SupportsStyle)
	assert.True(t, cloned.SupportsSpeakerBoost)

	generated, err := reg.Resolve(context.Background(), "gen1")
	require.NoError(t, err)
	assert.False(t, generated.SupportsStyle)
	assert.False(t, generated.SupportsSpeakerBoost)
}
