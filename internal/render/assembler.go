package render

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"bookreel/internal/config"
	"bookreel/internal/metrics"
	"bookreel/internal/subtitles"
	"bookreel/internal/types"
)

// ErrNoClips rejects an assembly run with nothing to cut together.
var ErrNoClips = errors.New("no clips to assemble")

const (
	finalName     = "final_video.mp4"
	thumbnailName = "thumbnail.jpg"
)

// Assembler renders the final vertical video from narration audio, stock
// clips and the caption track.
type Assembler struct {
	cfg    *config.Config
	logger *zap.Logger
}

func New(cfg *config.Config, logger *zap.Logger) *Assembler {
	return &Assembler{cfg: cfg, logger: logger.With(zap.String("component", "render"))}
}

// Assemble cuts the final video. The narration file is probed for its true
// length, every clip is normalized to an even slice of it, the clips are
// concatenated, captions burned in and the narration muxed on top. On
// success all intermediates are removed; workDir keeps only the final
// video and its thumbnail.
func (a *Assembler) Assemble(ctx context.Context, voicePath string, clips []types.MediaAsset, script string, workDir string) (*types.VideoArtifact, error) {
	if len(clips) == 0 {
		return nil, ErrNoClips
	}
	started := time.Now()

	total, err := ProbeDuration(ctx, voicePath, a.logger)
	if err != nil {
		return nil, err
	}
	per := total / float64(len(clips))
	a.logger.Info("assembling video",
		zap.Float64("narration_sec", total),
		zap.Int("clips", len(clips)),
		zap.Float64("per_clip_sec", per))

	normalized := make([]string, 0, len(clips))
	for i, clip := range clips {
		out, err := a.normalizeClip(ctx, clip, per, i, workDir)
		if err != nil {
			return nil, fmt.Errorf("normalize clip %d: %w", i+1, err)
		}
		normalized = append(normalized, out)
	}

	listPath := filepath.Join(workDir, "concat_list.txt")
	if err := writeConcatList(listPath, normalized); err != nil {
		return nil, err
	}

	silentPath := filepath.Join(workDir, "video_silent.mp4")
	if err := a.concat(ctx, listPath, silentPath); err != nil {
		return nil, fmt.Errorf("concatenate clips: %w", err)
	}

	segments, err := subtitles.Align(script, total)
	if err != nil {
		return nil, fmt.Errorf("align captions: %w", err)
	}
	srtPath := filepath.Join(workDir, "captions.srt")
	if err := subtitles.WriteSRT(segments, srtPath); err != nil {
		return nil, err
	}

	captionedPath := filepath.Join(workDir, "video_captioned.mp4")
	if err := a.burnSubtitles(ctx, silentPath, srtPath, captionedPath); err != nil {
		return nil, fmt.Errorf("burn captions: %w", err)
	}

	finalPath := filepath.Join(workDir, finalName)
	if err := a.mux(ctx, captionedPath, voicePath, finalPath); err != nil {
		return nil, fmt.Errorf("mux narration: %w", err)
	}

	thumbPath := filepath.Join(workDir, thumbnailName)
	if err := a.thumbnail(ctx, finalPath, thumbPath); err != nil {
		a.logger.Warn("thumbnail extraction failed", zap.Error(err))
		thumbPath = ""
	}

	intermediates := append([]string{listPath, silentPath, srtPath, captionedPath}, normalized...)
	for _, path := range intermediates {
		if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
			a.logger.Warn("could not remove intermediate",
				zap.String("path", path), zap.Error(err))
		}
	}

	info, err := os.Stat(finalPath)
	if err != nil {
		return nil, fmt.Errorf("stat final video: %w", err)
	}

	metrics.ObserveCall("ffmpeg", "assemble", started)
	a.logger.Info("video assembled",
		zap.String("path", finalPath),
		zap.Int64("bytes", info.Size()),
		zap.Duration("took", time.Since(started)))

	return &types.VideoArtifact{
		Path:          finalPath,
		ThumbnailPath: thumbPath,
		DurationSec:   total,
		SizeBytes:     info.Size(),
		Width:         a.cfg.Render.Width,
		Height:        a.cfg.Render.Height,
	}, nil
}

// normalizeClip re-encodes one asset to the target geometry and exactly
// per seconds of runtime. Short videos are looped, long ones trimmed,
// stills loop for their whole slice.
func (a *Assembler) normalizeClip(ctx context.Context, clip types.MediaAsset, per float64, idx int, workDir string) (string, error) {
	out := filepath.Join(workDir, fmt.Sprintf("clip_%03d.mp4", idx))
	cmd := FFmpeg(a.logger).Timeout(a.cfg.RenderTimeout)

	if clip.Kind == types.KindImage {
		cmd.Arg("-loop", "1", "-i", clip.Path)
	} else {
		clipDur := clip.DurationSec
		if clipDur <= 0 {
			if probed, err := ProbeDuration(ctx, clip.Path, a.logger); err == nil {
				clipDur = probed
			} else {
				clipDur = per
			}
		}
		if clipDur < per {
			loops := int(per/clipDur) + 1
			cmd.Arg("-stream_loop", strconv.Itoa(loops))
		}
		cmd.Arg("-i", clip.Path)
	}

	cmd.Arg(
		"-t", fmt.Sprintf("%.3f", per),
		"-vf", a.scaleFilter(),
		"-c:v", "libx264",
		"-preset", a.cfg.Render.Preset,
		"-crf", strconv.Itoa(a.cfg.Render.CRF),
		"-pix_fmt", "yuv420p",
		"-an",
		out,
	)
	return out, cmd.Run(ctx)
}

// scaleFilter fits any input inside the target frame, pads to exact
// dimensions and pins the frame rate so concat can stream-copy.
func (a *Assembler) scaleFilter() string {
	w, h := a.cfg.Render.Width, a.cfg.Render.Height
	return fmt.Sprintf(
		"scale=%d:%d:force_original_aspect_ratio=decrease,pad=%d:%d:(ow-iw)/2:(oh-ih)/2,setsar=1,fps=%d",
		w, h, w, h, a.cfg.Render.FPS)
}

func (a *Assembler) concat(ctx context.Context, listPath, outPath string) error {
	return FFmpeg(a.logger).
		Timeout(a.cfg.RenderTimeout).
		Arg("-f", "concat",
			"-safe", "0",
			"-i", listPath,
			"-c", "copy",
			outPath).
		Run(ctx)
}

func writeConcatList(path string, clips []string) error {
	var sb strings.Builder
	for _, clip := range clips {
		sb.WriteString(fmt.Sprintf("file '%s'\n", clip))
	}
	if err := os.WriteFile(path, []byte(sb.String()), 0644); err != nil {
		return fmt.Errorf("write concat list: %w", err)
	}
	return nil
}

func (a *Assembler) burnSubtitles(ctx context.Context, videoPath, srtPath, outPath string) error {
	r := a.cfg.Render
	filter := fmt.Sprintf(
		"subtitles=%s:force_style='FontName=%s,FontSize=%d,Bold=1,PrimaryColour=&H00FFFFFF,OutlineColour=&H00000000,Outline=%d,Shadow=1,Alignment=2,MarginV=%d'",
		escapeFilterPath(srtPath), r.FontName, r.FontSize, r.Outline, r.MarginV)

	return FFmpeg(a.logger).
		Timeout(a.cfg.RenderTimeout).
		Arg("-i", videoPath,
			"-vf", filter,
			"-c:v", "libx264",
			"-preset", r.Preset,
			"-crf", strconv.Itoa(r.CRF),
			"-an",
			outPath).
		Run(ctx)
}

func (a *Assembler) mux(ctx context.Context, videoPath, audioPath, outPath string) error {
	return FFmpeg(a.logger).
		Timeout(a.cfg.RenderTimeout).
		Arg("-i", videoPath,
			"-i", audioPath,
			"-c:v", "copy",
			"-c:a", "aac",
			"-b:a", a.cfg.Render.AudioBitrate,
			"-shortest",
			"-movflags", "+faststart",
			outPath).
		Run(ctx)
}

// thumbnail grabs a representative frame one second in.
func (a *Assembler) thumbnail(ctx context.Context, videoPath, outPath string) error {
	return FFmpeg(a.logger).
		Timeout(a.cfg.RenderTimeout).
		Arg("-ss", "1",
			"-i", videoPath,
			"-frames:v", "1",
			"-q:v", "2",
			outPath).
		Run(ctx)
}

// escapeFilterPath makes a path safe inside an ffmpeg filter expression.
func escapeFilterPath(path string) string {
	path = strings.ReplaceAll(path, "\\", "/")
	path = strings.ReplaceAll(path, ":", "\\:")
	return path
}
