package config

import (
	"fmt"
	"os"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
	"gopkg.in/yaml.v3"
)

// Config holds everything read from the environment. Provider base URLs are
// overridable so tests can point clients at local servers.
type Config struct {
	HTTPPort  string `env:"PORT" env-default:"8080"`
	LogLevel  string `env:"LOG_LEVEL" env-default:"info"`
	LogFormat string `env:"LOG_FORMAT" env-default:"console"`

	OpenAIAPIKey      string  `env:"OPENAI_API_KEY"`
	OpenAIModel       string  `env:"OPENAI_MODEL" env-default:"gpt-4o-mini"`
	OpenAITemperature float64 `env:"OPENAI_TEMPERATURE" env-default:"0.8"`

	ElevenLabsAPIKey  string `env:"ELEVENLABS_API_KEY"`
	ElevenLabsBaseURL string `env:"ELEVENLABS_BASE_URL" env-default:"https://api.elevenlabs.io"`
	ElevenLabsModel   string `env:"ELEVENLABS_MODEL" env-default:"eleven_multilingual_v2"`

	PexelsAPIKey  string `env:"PEXELS_API_KEY"`
	PexelsBaseURL string `env:"PEXELS_BASE_URL" env-default:"https://api.pexels.com"`

	PixabayAPIKey  string `env:"PIXABAY_API_KEY"`
	PixabayBaseURL string `env:"PIXABAY_BASE_URL" env-default:"https://pixabay.com/api"`

	OutputDir string `env:"OUTPUT_DIR" env-default:"output"`
	TempDir   string `env:"TEMP_DIR" env-default:""`

	RequestTimeout time.Duration `env:"REQUEST_TIMEOUT" env-default:"60s"`
	RenderTimeout  time.Duration `env:"RENDER_TIMEOUT" env-default:"5m"`

	Render RenderConfig `env:"-"`
}

// RenderConfig is the encode profile, loaded from config.yaml when present.
type RenderConfig struct {
	Width        int      `yaml:"width"`
	Height       int      `yaml:"height"`
	FPS          int      `yaml:"fps"`
	Preset       string   `yaml:"preset"`
	CRF          int      `yaml:"crf"`
	AudioBitrate string   `yaml:"audio_bitrate"`
	FontName     string   `yaml:"font_name"`
	FontSize     int      `yaml:"font_size"`
	Outline      int      `yaml:"outline"`
	MarginV      int      `yaml:"margin_v"`
	QualityOrder []string `yaml:"quality_order"`
}

// DefaultRender is the built-in vertical-video encode profile.
func DefaultRender() RenderConfig {
	return RenderConfig{
		Width:        1080,
		Height:       1920,
		FPS:          30,
		Preset:       "fast",
		CRF:          23,
		AudioBitrate: "192k",
		FontName:     "Arial",
		FontSize:     16,
		Outline:      2,
		MarginV:      80,
		QualityOrder: []string{"hd", "sd", "uhd"},
	}
}

// Load reads env vars and, when yamlPath exists, merges the render profile
// over the defaults.
func Load(yamlPath string) (*Config, error) {
	var cfg Config
	if err := cleanenv.ReadEnv(&cfg); err != nil {
		return nil, fmt.Errorf("read env: %w", err)
	}

	cfg.Render = DefaultRender()
	if yamlPath != "" {
		data, err := os.ReadFile(yamlPath)
		if err == nil {
			if err := yaml.Unmarshal(data, &cfg.Render); err != nil {
				return nil, fmt.Errorf("parse %s: %w", yamlPath, err)
			}
		} else if !os.IsNotExist(err) {
			return nil, fmt.Errorf("read %s: %w", yamlPath, err)
		}
	}

	if cfg.TempDir == "" {
		cfg.TempDir = os.TempDir()
	}
	return &cfg, nil
}
