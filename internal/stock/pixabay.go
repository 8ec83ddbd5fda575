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

// Pixabay is the secondary, image-focused provider that covers shortfall
// from the video source.
type Pixabay struct {
	apiKey  string
	baseURL string
	client  *resty.Client
	logger  *zap.Logger
}

// NewPixabay builds the Pixabay provider.
func NewPixabay(apiKey, baseURL string, timeout time.Duration, logger *zap.Logger) *Pixabay {
	return &Pixabay{
		apiKey:  apiKey,
		baseURL: baseURL,
		client:  resty.New().SetTimeout(timeout),
		logger:  logger.With(zap.String("provider", "pixabay")),
	}
}

func (p *Pixabay) Name() string { return "pixabay" }

type pixabaySearchResponse struct {
	Hits []pixabayHit `json:"hits"`
}

type pixabayHit struct {
	ID            int    `json:"id"`
	LargeImageURL string `json:"largeImageURL"`
	WebformatURL  string `json:"webformatURL"`
	ImageWidth    int    `json:"imageWidth"`
	ImageHeight   int    `json:"imageHeight"`
	User          string `json:"user"`
}

// Search queries vertical photos and downloads until count is met; items
// that fail to download are skipped.
func (p *Pixabay) Search(ctx context.Context, query string, count int, opts Options, destDir string) ([]types.MediaAsset, error) {
	if p.apiKey == "" {
		return nil, fmt.Errorf("pixabay api key not configured")
	}

	orientation := "vertical"
	if opts.Orientation == "landscape" {
		orientation = "horizontal"
	}

	// The API floors per_page at 3.
	perPage := count * 2
	if perPage < 3 {
		perPage = 3
	}

	var res pixabaySearchResponse
	start := time.Now()
	resp, err := p.client.R().
		SetContext(ctx).
		SetQueryParams(map[string]string{
			"key":         p.apiKey,
			"q":           query,
			"image_type":  "photo",
			"orientation": orientation,
			"safesearch":  "true",
			"per_page":    strconv.Itoa(perPage),
		}).
		SetResult(&res).
		Get(p.baseURL + "/")
	metrics.ObserveCall("pixabay", "search_images", start)
	if err != nil {
		return nil, fmt.Errorf("pixabay search: %w", err)
	}
	if resp.StatusCode() != 200 {
		return nil, fmt.Errorf("pixabay search: status %d: %s", resp.StatusCode(), resp.String())
	}

	var assets []types.MediaAsset
	for _, hit := range res.Hits {
		if len(assets) >= count {
			break
		}
		url := hit.LargeImageURL
		if url == "" {
			url = hit.WebformatURL
		}
		if url == "" {
			continue
		}

		path := filepath.Join(destDir, fmt.Sprintf("pixabay_%d.jpg", hit.ID))
		if err := p.download(ctx, url, path); err != nil {
			p.logger.Warn("image download failed, skipping",
				zap.Int("image_id", hit.ID),
				zap.Error(err))
			continue
		}

		assets = append(assets, types.MediaAsset{
			Path:        path,
			Kind:        types.KindImage,
			Provider:    "pixabay",
			Width:       hit.ImageWidth,
			Height:      hit.ImageHeight,
			Attribution: fmt.Sprintf("Image by %s on Pixabay", hit.User),
		})
	}
	return assets, nil
}

func (p *Pixabay) download(ctx context.Context, url, path string) error {
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
