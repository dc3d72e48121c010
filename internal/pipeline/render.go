// Package pipeline runs one complete render: asset synthesis, the simulation
// loop, frame streaming into a sink, and the final soundtrack mux.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"io"
	"math/rand"
	"os"
	"path/filepath"
	"time"

	"github.com/charmbracelet/log"

	"github.com/vovakirdan/autododge/internal/audio"
	"github.com/vovakirdan/autododge/internal/config"
	"github.com/vovakirdan/autododge/internal/render"
	"github.com/vovakirdan/autododge/internal/sim"
	"github.com/vovakirdan/autododge/internal/sink"
)

// Soundtrack selects how audio reaches the output.
type Soundtrack string

const (
	// SoundtrackMixed encodes video only, then muxes the frame-accurate crossfaded mix.
	SoundtrackMixed Soundtrack = "mixed"
	// SoundtrackLayer lets the encoder mux the high-intensity layer in a single pass.
	SoundtrackLayer Soundtrack = "layer"
)

// ParseSoundtrack validates a soundtrack mode name.
func ParseSoundtrack(s string) (Soundtrack, error) {
	switch Soundtrack(s) {
	case "", SoundtrackMixed:
		return SoundtrackMixed, nil
	case SoundtrackLayer:
		return SoundtrackLayer, nil
	default:
		return "", fmt.Errorf("pipeline: unknown soundtrack mode %q", s)
	}
}

// Options configures a render.
type Options struct {
	Sink       string // Registered sink name; default "ffmpeg"
	Soundtrack Soundtrack
	Binary     string // Encoder binary override
	Preset     string
	TempDir    string // Parent of the per-run asset directory; default os.TempDir()

	Tuning   *sim.Tuning // nil uses sim.DefaultTuning()
	Logger   *log.Logger
	Progress func(frame, total int)
}

// Result summarises a finished render.
type Result struct {
	OutputPath string `json:"output_path"`
	Frames     int    `json:"frames"`
	Score      int    `json:"score"`
	Level      int    `json:"level"`
	Collided   bool   `json:"collided"`
	Truncated  bool   `json:"truncated"` // Sink failed mid-run; partial output kept

	Elapsed time.Duration `json:"elapsed"`
}

// Render produces a video for cfg at outputPath.
func Render(ctx context.Context, cfg config.Config, outputPath string, opts Options) (Result, error) {
	start := time.Now()
	logger := opts.Logger
	if logger == nil {
		logger = log.New(io.Discard)
	}
	if opts.Sink == "" {
		opts.Sink = "ffmpeg"
	}
	mode, err := ParseSoundtrack(string(opts.Soundtrack))
	if err != nil {
		return Result{}, err
	}
	tuning := sim.DefaultTuning()
	if opts.Tuning != nil {
		tuning = *opts.Tuning
	}

	if err := cfg.Validate(0); err != nil {
		return Result{}, err
	}
	if err := ctx.Err(); err != nil {
		return Result{}, err
	}

	logger.Info("render starting",
		"seed", cfg.Seed, "duration", cfg.Duration, "ai_skill", cfg.AISkill,
		"theme", cfg.Theme.Name, "size", fmt.Sprintf("%dx%d", cfg.Width, cfg.Height),
		"fps", cfg.FPS, "sink", opts.Sink, "soundtrack", mode)

	tmp, err := os.MkdirTemp(opts.TempDir, "autododge-*")
	if err != nil {
		return Result{}, fmt.Errorf("pipeline: temp dir: %w", err)
	}
	defer func() {
		if err := os.RemoveAll(tmp); err != nil {
			logger.Warn("failed to remove temp assets", "dir", tmp, "err", err)
		}
	}()

	assets, err := writeAssets(cfg, tmp)
	if err != nil {
		return Result{}, err
	}

	sinkOpts := sink.Options{
		Width:      cfg.Width,
		Height:     cfg.Height,
		FPS:        cfg.FPS,
		OutputPath: filepath.Join(tmp, "video.mp4"),
		Binary:     opts.Binary,
		Preset:     opts.Preset,
		Logger:     logger,
	}
	if mode == SoundtrackLayer {
		sinkOpts.OutputPath = outputPath
		sinkOpts.AudioPath = assets.highPath
	}

	out, err := sink.Open(ctx, opts.Sink, sinkOpts)
	if err != nil {
		return Result{}, fmt.Errorf("pipeline: open sink: %w", err)
	}

	canvas, err := render.NewCanvas(cfg.Width, cfg.Height)
	if err != nil {
		out.Close(context.Background())
		return Result{}, err
	}

	game := sim.New(cfg, tuning)
	mixer := audio.NewMixer(assets.low, assets.high, cfg.FPS)
	game.SetAudioBus(&mixerBus{
		mixer: mixer,
		cues: map[sim.Cue]*audio.Waveform{
			sim.CueDeath:   assets.death,
			sim.CueLevelUp: assets.levelUp,
		},
	})

	res := Result{}
	total := cfg.MaxFrames()
	var frame []byte

	for game.Step() {
		if err := ctx.Err(); err != nil {
			out.Close(context.Background())
			return res, fmt.Errorf("pipeline: render cancelled at frame %d: %w", res.Frames, err)
		}

		game.Render(canvas)
		frame = canvas.RGB24(frame)
		if err := out.WriteFrame(frame); err != nil {
			if !errors.Is(err, sink.ErrSinkClosed) {
				out.Close(context.Background())
				return res, fmt.Errorf("pipeline: write frame %d: %w", res.Frames, err)
			}
			res.Truncated = true
			logger.Warn("sink failed; stopping with partial output", "frame", res.Frames, "err", err)
			break
		}
		mixer.Advance()
		res.Frames++

		if opts.Progress != nil {
			opts.Progress(res.Frames, total)
		}
		if !out.Healthy() {
			res.Truncated = true
			logger.Warn("sink unhealthy; stopping with partial output", "frame", res.Frames)
			break
		}
	}

	videoPath, closeErr := out.Close(ctx)
	if closeErr != nil {
		if !res.Truncated {
			return res, fmt.Errorf("pipeline: close sink: %w", closeErr)
		}
		logger.Debug("sink close after failure", "err", closeErr)
	}

	snap := game.Snapshot()
	res.Score = snap.Score
	res.Level = snap.Level
	res.Collided = game.Outcome() == sim.OutcomeCollision

	if res.Truncated && res.Frames == 0 {
		if closeErr == nil {
			closeErr = sink.ErrSinkClosed
		}
		return res, fmt.Errorf("pipeline: encoder failed before the first frame: %w", closeErr)
	}

	switch {
	case !hasOutput(videoPath):
		logger.Debug("sink produced no video; skipping mux", "sink", opts.Sink)
	case mode == SoundtrackLayer:
		res.OutputPath = videoPath
	default:
		soundtrack := filepath.Join(tmp, "soundtrack.wav")
		if err := mixer.WriteWAV(soundtrack); err != nil {
			return res, err
		}
		if err := sink.Mux(ctx, opts.Binary, videoPath, soundtrack, outputPath); err != nil {
			return res, fmt.Errorf("pipeline: %w", err)
		}
		res.OutputPath = outputPath
	}

	res.Elapsed = time.Since(start)
	logger.Info("render finished",
		"frames", res.Frames, "score", res.Score, "level", res.Level,
		"collided", res.Collided, "truncated", res.Truncated,
		"output", res.OutputPath, "elapsed", res.Elapsed.Round(time.Millisecond))

	return res, nil
}

// assets are the synthesized audio inputs of one run.
type assets struct {
	low, high      *audio.Waveform
	death, levelUp *audio.Waveform
	highPath       string
}

// writeAssets synthesizes the soundtrack layers and cues and writes them as WAV files.
func writeAssets(cfg config.Config, dir string) (assets, error) {
	rng := rand.New(rand.NewSource(cfg.Seed))
	low, high := audio.SynthesizeMusic(cfg.Duration+cfg.TailDuration, rng)

	a := assets{
		low:      low,
		high:     high,
		death:    audio.DeathTone(),
		levelUp:  audio.LevelUpTone(),
		highPath: filepath.Join(dir, "bgm_high.wav"),
	}

	files := []struct {
		name string
		w    *audio.Waveform
	}{
		{"bgm_low.wav", a.low},
		{"bgm_high.wav", a.high},
		{"death.wav", a.death},
		{"level.wav", a.levelUp},
	}
	for _, f := range files {
		if err := audio.WriteWAV(filepath.Join(dir, f.name), f.w); err != nil {
			return assets{}, err
		}
	}
	return a, nil
}

// mixerBus adapts the soundtrack mixer to the simulation's audio bus.
type mixerBus struct {
	mixer *audio.Mixer
	cues  map[sim.Cue]*audio.Waveform
}

func (b *mixerBus) SetMix(ratio float64) {
	b.mixer.SetMix(ratio)
}

func (b *mixerBus) Cue(c sim.Cue) {
	if w, ok := b.cues[c]; ok {
		b.mixer.Play(w)
	}
}

// hasOutput reports whether path is a non-empty regular file.
func hasOutput(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.Mode().IsRegular() && info.Size() > 0
}
