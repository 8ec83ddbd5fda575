package pipeline

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"bookreel/internal/config"
	"bookreel/internal/metrics"
	"bookreel/internal/stock"
	"bookreel/internal/storyboard"
	"bookreel/internal/types"
	"bookreel/internal/voice"
)

// Stage interfaces, satisfied by the concrete synthesizers so the
// orchestrator can be exercised with stubs.
type ScriptStage interface {
	Synthesize(ctx context.Context, brief types.GenerationRequest, punchy bool) types.ScriptResult
}

type VoiceStage interface {
	Synthesize(ctx context.Context, text string, tone types.Tone, voiceID string, settings voice.Settings) (*types.VoiceResult, error)
}

type AssetStage interface {
	Acquire(ctx context.Context, title, description string, opts stock.Options, destDir string) ([]types.MediaAsset, error)
}

type RenderStage interface {
	Assemble(ctx context.Context, voicePath string, clips []types.MediaAsset, script string, workDir string) (*types.VideoArtifact, error)
}

// Orchestrator sequences the full render path and owns failure
// classification for it.
type Orchestrator struct {
	cfg       *config.Config
	scripts   ScriptStage
	voices    VoiceStage
	assets    AssetStage
	assembler RenderStage
	logger    *zap.Logger
}

func New(cfg *config.Config, scripts ScriptStage, voices VoiceStage, assets AssetStage, assembler RenderStage, logger *zap.Logger) *Orchestrator {
	return &Orchestrator{
		cfg:       cfg,
		scripts:   scripts,
		voices:    voices,
		assets:    assets,
		assembler: assembler,
		logger:    logger.With(zap.String("component", "pipeline")),
	}
}

// Result is the successful output of a full render run.
type Result struct {
	JobID    string
	Script   types.ScriptResult
	Voice    *types.VoiceResult
	Artifact *types.VideoArtifact
}

// GenerateVideo runs validate, script, voiceover plus assets, then render.
// A non-nil error is always a *Failure. The job workspace is swept on
// every exit path; the finished artifact is moved out first.
func (o *Orchestrator) GenerateVideo(ctx context.Context, brief types.GenerationRequest) (*Result, error) {
	job, err := NewJob(o.cfg.TempDir, o.logger)
	if err != nil {
		return nil, Classify(StepValidate, err)
	}
	defer job.Cleanup()

	result, failure := o.run(ctx, job, brief)
	if failure != nil {
		metrics.PipelineFailures.WithLabelValues(failure.Step, failure.Code).Inc()
		o.logger.Error("pipeline failed",
			zap.String("job_id", job.ID),
			zap.String("step", failure.Step),
			zap.String("code", failure.Code),
			zap.String("details", failure.Details))
		return nil, failure
	}

	metrics.VideosRendered.Inc()
	return result, nil
}

func (o *Orchestrator) run(ctx context.Context, job *Job, brief types.GenerationRequest) (*Result, *Failure) {
	job.SetStep(StepValidate)
	if err := brief.Validate(); err != nil {
		return nil, Classify(StepValidate, err)
	}

	job.SetStep(StepScript)
	scriptOut := o.scripts.Synthesize(ctx, brief, true)

	// Voiceover and asset acquisition have no data dependency on each
	// other, so they share an errgroup. Whichever fails first cancels the
	// other; attribution below ignores the induced cancellation.
	var (
		voiceOut  Outcome[*types.VoiceResult]
		assetsOut Outcome[[]types.MediaAsset]
	)
	job.SetStep(StepVoiceover)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		res, err := o.voices.Synthesize(gctx, scriptOut.Text, brief.Tone, "", voice.Settings{})
		if err != nil {
			voiceOut = failed[*types.VoiceResult](err)
			return err
		}
		voiceOut = succeeded(res, res.VoiceName)
		return nil
	})
	g.Go(func() error {
		opts := stock.Options{
			Count:   storyboard.SceneCount(brief.Duration),
			Quality: o.cfg.Render.QualityOrder,
		}
		found, err := o.assets.Acquire(gctx, brief.Title, brief.Description, opts, job.Dir)
		if err != nil {
			assetsOut = failed[[]types.MediaAsset](err)
			return err
		}
		assetsOut = succeeded(found, "stock")
		return nil
	})
	_ = g.Wait()

	if failure := attribute(voiceOut, assetsOut); failure != nil {
		return nil, failure
	}

	voicePath := job.TempPath("voiceover.mp3")
	if err := os.WriteFile(voicePath, voiceOut.Value.Audio, 0644); err != nil {
		return nil, Classify(StepVoiceover, err)
	}

	job.SetStep(StepRender)
	artifact, err := o.assembler.Assemble(ctx, voicePath, assetsOut.Value, scriptOut.Text, job.Dir)
	if err != nil {
		return nil, Classify(StepRender, err)
	}

	if err := o.publish(job, artifact); err != nil {
		return nil, Classify(StepRender, err)
	}

	o.logger.Info("pipeline finished",
		zap.String("job_id", job.ID),
		zap.String("video", artifact.Path),
		zap.Float64("duration_sec", artifact.DurationSec))

	return &Result{
		JobID:    job.ID,
		Script:   scriptOut,
		Voice:    voiceOut.Value,
		Artifact: artifact,
	}, nil
}

// attribute picks which concurrent stage caused the abort. A real failure
// beats the cancellation it induced in the sibling.
func attribute(voiceOut Outcome[*types.VoiceResult], assetsOut Outcome[[]types.MediaAsset]) *Failure {
	if !voiceOut.OK() && !errors.Is(voiceOut.Err, context.Canceled) {
		return Classify(StepVoiceover, voiceOut.Err)
	}
	if !assetsOut.OK() && !errors.Is(assetsOut.Err, context.Canceled) {
		return Classify(StepAssets, assetsOut.Err)
	}
	if !voiceOut.OK() {
		return Classify(StepVoiceover, voiceOut.Err)
	}
	if !assetsOut.OK() {
		return Classify(StepAssets, assetsOut.Err)
	}
	return nil
}

// publish moves the artifact and its thumbnail out of the job workspace
// into the served output directory before the cleanup sweep runs.
func (o *Orchestrator) publish(job *Job, artifact *types.VideoArtifact) error {
	destDir := filepath.Join(o.cfg.OutputDir, job.ID)
	if err := os.MkdirAll(destDir, 0755); err != nil {
		return err
	}

	dest := filepath.Join(destDir, filepath.Base(artifact.Path))
	if err := moveFile(artifact.Path, dest); err != nil {
		return err
	}
	artifact.Path = dest

	if artifact.ThumbnailPath != "" {
		thumbDest := filepath.Join(destDir, filepath.Base(artifact.ThumbnailPath))
		if err := moveFile(artifact.ThumbnailPath, thumbDest); err != nil {
			o.logger.Warn("could not publish thumbnail", zap.Error(err))
			artifact.ThumbnailPath = ""
		} else {
			artifact.ThumbnailPath = thumbDest
		}
	}
	return nil
}

// moveFile renames src to dst, copying when the rename crosses
// filesystems.
func moveFile(src, dst string) error {
	if err := os.Rename(src, dst); err == nil {
		return nil
	}

	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return err
	}
	if err := out.Close(); err != nil {
		return err
	}
	return os.Remove(src)
}
