package stock

import (
	"context"
	"fmt"
	"path/filepath"
	"strconv"
	"time"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"

	"bookreel/internal/metrics"
	"bookreel/internal/types"
)

// Pexels is the primary, video-focused provider.
type Pexels struct {
	apiKey  string
	baseURL string
	client  *resty.Client
	logger  *zap.Logger
}

// NewPexels builds the Pexels provider.
func NewPexels(apiKey, baseURL string, timeout time.Duration, logger *zap.Logger) *Pexels {
	return &Pexels{
		apiKey:  apiKey,
		baseURL: baseURL,
		client:  resty.New().SetTimeout(timeout),
		logger:  logger.With(zap.String("provider", "pexels")),
	}
}

func (p *Pexels) Name() string { return "pexels" }

type pexelsSearchResponse struct {
	Videos []pexelsVideo `json:"videos"`
}

type pexelsVideo struct {
	ID       int     `json:"id"`
	Width    int     `json:"width"`
	Height   int     `json:"height"`
	Duration float64 `json:"duration"`
	User     struct {
		Name string `json:"name"`
	} `json:"user"`
	VideoFiles []pexelsVideoFile `json:"video_files"`
}

type pexelsVideoFile struct {
	Quality  string `json:"quality"`
	Width    int    `json:"width"`
	Height   int    `json:"height"`
	FileType string `json:"file_type"`
	Link     string `json:"link"`
}

// Search queries for twice the requested count so per-item download
// failures do not starve the result, then downloads until count is met.
func (p *Pexels) Search(ctx context.Context, query string, count int, opts Options, destDir string) ([]types.MediaAsset, error) {
	if p.apiKey == "" {
		return nil, fmt.Errorf("pexels api key not configured")
	}

	orientation := opts.Orientation
	if orientation == "" {
		orientation = "portrait"
	}

	var res pexelsSearchResponse
	start := time.Now()
	resp, err := p.client.R().
		SetContext(ctx).
		SetHeader("Authorization", p.apiKey).
		SetQueryParams(map[string]string{
			"query":       query,
			"per_page":    strconv.Itoa(count * 2),
			"orientation": orientation,
		}).
		SetResult(&res).
		Get(p.baseURL + "/videos/search")
	metrics.ObserveCall("pexels", "search_videos", start)
	if err != nil {
		return nil, fmt.Errorf("pexels search: %w", err)
	}
	if resp.StatusCode() != 200 {
		return nil, fmt.Errorf("pexels search: status %d: %s", resp.StatusCode(), resp.String())
	}

	var assets []types.MediaAsset
	for _, video := range res.Videos {
		if len(assets) >= count {
			break
		}
		file, ok := bestFile(video.VideoFiles, opts.Quality)
		if !ok {
			continue
		}

		path := filepath.Join(destDir, fmt.Sprintf("pexels_%d.mp4", video.ID))
		if err := p.download(ctx, file.Link, path); err != nil {
			p.logger.Warn("clip download failed, skipping",
				zap.Int("video_id", video.ID),
				zap.Error(err))
			continue
		}

		assets = append(assets, types.MediaAsset{
			Path:        path,
			Kind:        types.KindVideo,
			Provider:    "pexels",
			Width:       file.Width,
			Height:      file.Height,
			DurationSec: video.Duration,
			Attribution: fmt.Sprintf("Video by %s on Pexels", video.User.Name),
		})
	}
	return assets, nil
}

func (p *Pexels) download(ctx context.Context, url, path string) error {
	resp, err := p.client.R().
		SetContext(ctx).
		SetOutput(path).
		Get(url)
	if err != nil {
		return err
	}
	if resp.StatusCode() != 200 {
		return fmt.Errorf("download: status %d", resp.StatusCode())
	}
	return nil
}

// bestFile picks the candidate's file by quality-tier preference, falling
// back to the first file when no preferred tier is present.
func bestFile(files []pexelsVideoFile, quality []string) (pexelsVideoFile, bool) {
	if len(files) == 0 {
		return pexelsVideoFile{}, false
	}
	if len(quality) == 0 {
		quality = []string{"hd", "sd", "uhd"}
	}
	for _, tier := range quality {
		for _, f := range files {
			if f.Quality == tier {
				return f, true
			}
		}
	}
	return files[0], true
}
