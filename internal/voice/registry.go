package voice

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"

	"go.uber.org/zap"

	"bookreel/internal/metrics"
	"bookreel/internal/types"
)

// registryTTL bounds how long a fetched voice list is trusted.
const registryTTL = 5 * time.Minute

var (
	// ErrMissingKey means no API key was configured at all.
	ErrMissingKey = errors.New("voice api key not configured")
	// ErrAuth is a hard authentication failure (bad key). Unlike a
	// permissions problem it has no fallback.
	ErrAuth = errors.New("voice service rejected the api key")
	// errVoicesForbidden is the key-lacks-voices-permission case that the
	// premade set covers.
	errVoicesForbidden = errors.New("voice listing not permitted for this key")
)

// Voice is one entry in the provider's voice registry. The capability flags
// gate which expressive settings may be sent for it.
type Voice struct {
	ID                   string
	Name                 string
	Category             string
	SupportsStyle        bool
	SupportsSpeakerBoost bool
}

// toneVoices maps each tone preset to a premade voice id.
var toneVoices = map[types.Tone]string{
	types.ToneMotivational: "pNInz6obpgDQGcFmaJgB", // Adam
	types.ToneEmotional:    "21m00Tcm4TlvDq8ikWAM", // Rachel
	types.ToneEducational:  "onwK4e9ZLuTAKqWW03F9", // Daniel
	types.ToneAggressive:   "VR6AewLTigWG4xSOukaG", // Arnold
	types.ToneCalm:         "EXAVITQu4vr4xnSDxMaL", // Bella
}

// premadeVoices is the known-good fallback set used when the key cannot
// list voices. One profile per tone.
var premadeVoices = []Voice{
	{ID: "pNInz6obpgDQGcFmaJgB", Name: "Adam", Category: "premade", SupportsStyle: true, SupportsSpeakerBoost: true},
	{ID: "21m00Tcm4TlvDq8ikWAM", Name: "Rachel", Category: "premade", SupportsStyle: true, SupportsSpeakerBoost: true},
	{ID: "onwK4e9ZLuTAKqWW03F9", Name: "Daniel", Category: "premade", SupportsStyle: true, SupportsSpeakerBoost: true},
	{ID: "VR6AewLTigWG4xSOukaG", Name: "Arnold", Category: "premade", SupportsStyle: true, SupportsSpeakerBoost: true},
	{ID: "EXAVITQu4vr4xnSDxMaL", Name: "Bella", Category: "premade", SupportsStyle: true, SupportsSpeakerBoost: true},
}

// registryCache holds one fetched voice list with its fetch time. The clock
// is injectable so tests control expiry.
type registryCache struct {
	mu        sync.RWMutex
	voices    []Voice
	fetchedAt time.Time
	ttl       time.Duration
	now       func() time.Time
}

func newRegistryCache(ttl time.Duration) *registryCache {
	return &registryCache{ttl: ttl, now: time.Now}
}

func (c *registryCache) get() ([]Voice, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.voices == nil || c.now().Sub(c.fetchedAt) > c.ttl {
		return nil, false
	}
	return c.voices, true
}

func (c *registryCache) put(voices []Voice) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.voices = voices
	c.fetchedAt = c.now()
}

// Registry fetches and caches the remote voice list and resolves voice ids
// against it.
type Registry struct {
	apiKey  string
	baseURL string
	client  *http.Client
	cache   *registryCache
	logger  *zap.Logger
}

// NewRegistry builds a Registry with a fresh TTL cache.
func NewRegistry(apiKey, baseURL string, client *http.Client, logger *zap.Logger) *Registry {
	return &Registry{
		apiKey:  apiKey,
		baseURL: baseURL,
		client:  client,
		cache:   newRegistryCache(registryTTL),
		logger:  logger.With(zap.String("component", "voice-registry")),
	}
}

// Voices returns the cached voice list, refreshing it when stale. A key
// that cannot list voices degrades to the premade set; a bad key is fatal.
func (r *Registry) Voices(ctx context.Context) ([]Voice, error) {
	if cached, ok := r.cache.get(); ok {
		return cached, nil
	}

	voices, err := r.fetch(ctx)
	if errors.Is(err, errVoicesForbidden) {
		r.logger.Warn("voice listing not permitted, using premade voices", zap.Error(err))
		voices = premadeVoices
		err = nil
	}
	if err != nil {
		return nil, err
	}

	r.cache.put(voices)
	return voices, nil
}

// Resolve finds one voice by id in the registry.
func (r *Registry) Resolve(ctx context.Context, voiceID string) (Voice, error) {
	voices, err := r.Voices(ctx)
	if err != nil {
		return Voice{}, err
	}
	for _, v := range voices {
		if v.ID == voiceID {
			return v, nil
		}
	}
	return Voice{}, fmt.Errorf("%w: unknown voice id %q", types.ErrInvalidInput, voiceID)
}

// VoiceForTone resolves the tone's preset voice.
func (r *Registry) VoiceForTone(ctx context.Context, tone types.Tone) (Voice, error) {
	id, ok := toneVoices[tone]
	if !ok {
		return Voice{}, fmt.Errorf("%w: no voice mapped for tone %q", types.ErrInvalidInput, tone)
	}
	return r.Resolve(ctx, id)
}

type voicesResponse struct {
	Voices []struct {
		VoiceID  string `json:"voice_id"`
		Name     string `json:"name"`
		Category string `json:"category"`
	} `json:"voices"`
}

type apiErrorResponse struct {
	Detail struct {
		Status  string `json:"status"`
		Message string `json:"message"`
	} `json:"detail"`
}

func (r *Registry) fetch(ctx context.Context) ([]Voice, error) {
	if r.apiKey == "" {
		return nil, ErrMissingKey
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, r.baseURL+"/v1/voices", nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("xi-api-key", r.apiKey)

	start := time.Now()
	resp, err := r.client.Do(req)
	metrics.ObserveCall("elevenlabs", "list_voices", start)
	if err != nil {
		return nil, fmt.Errorf("list voices: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	if resp.StatusCode != http.StatusOK {
		var apiErr apiErrorResponse
		_ = json.Unmarshal(body, &apiErr)
		if apiErr.Detail.Status == "missing_permissions" {
			return nil, fmt.Errorf("%w: %s", errVoicesForbidden, apiErr.Detail.Message)
		}
		if resp.StatusCode == http.StatusUnauthorized {
			return nil, fmt.Errorf("%w: %s", ErrAuth, apiErr.Detail.Message)
		}
		return nil, fmt.Errorf("list voices: status %d", resp.StatusCode)
	}

	var parsed voicesResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, fmt.Errorf("parse voice list: %w", err)
	}

	voices := make([]Voice, 0, len(parsed.Voices))
	for _, v := range parsed.Voices {
		voices = append(voices, Voice{
			ID:                   v.VoiceID,
			Name:                 v.Name,
			Category:             v.Category,
			SupportsStyle:        supportsStyle(v.Category),
			SupportsSpeakerBoost: supportsSpeakerBoost(v.Category),
		})
	}
	return voices, nil
}

// Expressive settings are only accepted for voices the provider tuned for
// them; cloned and generated voices reject style, generated voices also
// reject speaker boost.
func supportsStyle(category string) bool {
	return category == "premade" || category == "professional"
}

func supportsSpeakerBoost(category string) bool {
	return category != "generated"
}
