// Package server exposes video generation over HTTP and SSH.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math/rand"
	"os"
	"path/filepath"
	"sync"

	"github.com/charmbracelet/log"

	"github.com/vovakirdan/autododge/internal/config"
	"github.com/vovakirdan/autododge/internal/pipeline"
	"github.com/vovakirdan/autododge/internal/storage"
	"github.com/vovakirdan/autododge/internal/upload"
)

var (
	// ErrNoOutput is returned when a render finished without producing a file.
	ErrNoOutput = errors.New("server: render produced no output file")

	// ErrUploadDisabled is returned when publishing is requested without an uploader.
	ErrUploadDisabled = errors.New("server: upload is not configured")

	// ErrLedgerDisabled is returned when run history is requested without a store.
	ErrLedgerDisabled = errors.New("server: run ledger is not configured")
)

// Uploader publishes a rendered file and returns the platform video id.
type Uploader interface {
	Upload(ctx context.Context, path string, meta upload.Metadata) (string, error)
}

// Options configures a Service.
type Options struct {
	Settings config.Settings
	Render   pipeline.Options // Progress and Logger are set per job
	TempDir  string           // Where finished videos wait to be sent; default os.TempDir()
	Store    *storage.Store   // Optional run ledger
	Uploader Uploader         // Optional publisher
	Logger   *log.Logger
	Rand     *rand.Rand // Generator source; nil is time-seeded
}

// Service generates videos on demand. It is safe for concurrent use:
// each job owns its config, pipeline state and output file.
type Service struct {
	opts   Options
	logger *log.Logger

	mu  sync.Mutex // guards gen
	gen *config.Generator
}

// NewService creates a Service for one settings profile.
func NewService(opts Options) *Service {
	logger := opts.Logger
	if logger == nil {
		logger = log.New(io.Discard)
	}
	return &Service{
		opts:   opts,
		logger: logger,
		gen:    config.NewGenerator(opts.Settings, opts.Rand),
	}
}

// decodeOverrides reads an optional JSON body. An empty body is not an error.
func decodeOverrides(r io.Reader) (config.Overrides, error) {
	var o config.Overrides
	dec := json.NewDecoder(r)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&o); err != nil && !errors.Is(err, io.EOF) {
		return config.Overrides{}, fmt.Errorf("%w: %v", config.ErrInvalidConfig, err)
	}
	return o, nil
}

// NewConfig draws a fresh config and applies the overrides.
func (s *Service) NewConfig(o config.Overrides) (config.Config, error) {
	s.mu.Lock()
	cfg := s.gen.Generate()
	s.mu.Unlock()

	return s.opts.Settings.Apply(cfg, o)
}

// Job is one finished render waiting to be delivered.
type Job struct {
	Config config.Config
	Result pipeline.Result
	RunID  int64 // Ledger id; 0 without a store
	Path   string

	dir string
}

// Generate renders a new video into the service temp dir.
// The caller owns the returned file and must call Cleanup.
func (s *Service) Generate(ctx context.Context, o config.Overrides, progress func(frame, total int)) (*Job, error) {
	cfg, err := s.NewConfig(o)
	if err != nil {
		return nil, err
	}

	dir, err := os.MkdirTemp(s.opts.TempDir, "job_*")
	if err != nil {
		return nil, fmt.Errorf("server: cannot create job dir: %w", err)
	}
	path := filepath.Join(dir, "video.mp4")

	job := &Job{Config: cfg, Path: path, dir: dir}

	opts := s.opts.Render
	opts.Logger = s.logger
	opts.Progress = progress

	res, err := pipeline.Render(ctx, cfg, path, opts)
	job.Result = res
	if err != nil {
		job.Cleanup(s.logger)
		return nil, err
	}
	if res.OutputPath == "" {
		job.Cleanup(s.logger)
		return nil, ErrNoOutput
	}

	if s.opts.Store != nil {
		id, err := s.opts.Store.SaveRun(storage.Run{
			Seed:       cfg.Seed,
			Profile:    cfg.Profile,
			Duration:   cfg.Duration,
			AISkill:    cfg.AISkill,
			Theme:      cfg.Theme.Name,
			Frames:     res.Frames,
			Score:      res.Score,
			Level:      res.Level,
			Collided:   res.Collided,
			OutputPath: res.OutputPath,
		})
		if err != nil {
			s.logger.Warn("could not record run", "error", err)
		}
		job.RunID = id
	}

	return job, nil
}

// Publish uploads a finished job and records the video id.
func (s *Service) Publish(ctx context.Context, job *Job) (string, error) {
	if s.opts.Uploader == nil {
		return "", ErrUploadDisabled
	}

	videoID, err := s.opts.Uploader.Upload(ctx, job.Path, Metadata(job.Config, job.Result))
	if err != nil {
		return "", err
	}

	if s.opts.Store != nil && job.RunID != 0 {
		if err := s.opts.Store.SetVideoID(job.RunID, videoID); err != nil {
			s.logger.Warn("could not record video id", "run", job.RunID, "error", err)
		}
	}
	return videoID, nil
}

// RecentRuns returns the newest ledger entries and the aggregate stats.
func (s *Service) RecentRuns(limit int) ([]storage.Run, *storage.Stats, error) {
	if s.opts.Store == nil {
		return nil, nil, ErrLedgerDisabled
	}
	runs, err := s.opts.Store.RecentRuns(limit)
	if err != nil {
		return nil, nil, err
	}
	stats, err := s.opts.Store.Stats()
	if err != nil {
		return nil, nil, err
	}
	return runs, stats, nil
}

// Metadata builds the upload title and description for a run.
func Metadata(cfg config.Config, res pipeline.Result) upload.Metadata {
	outcome := "survived"
	if res.Collided {
		outcome = "wasted"
	}
	return upload.Metadata{
		Title: fmt.Sprintf("AI dodger hits level %d, score %d #shorts", res.Level, res.Score),
		Description: fmt.Sprintf("Auto-played run (%s).\nSeed %d, theme %s, AI skill %.2f, %ds.",
			outcome, cfg.Seed, cfg.Theme.Name, cfg.AISkill, cfg.Duration),
	}
}

// Cleanup removes the job's file. Failures are logged only.
func (j *Job) Cleanup(logger *log.Logger) {
	target := j.dir
	if target == "" {
		target = j.Path
	}
	if err := os.RemoveAll(target); err != nil {
		logger.Warn("could not remove video", "path", target, "error", err)
		return
	}
	logger.Debug("removed video", "path", target)
}

// Filename is the attachment name offered to clients.
func (j *Job) Filename() string {
	return fmt.Sprintf("autododge_%d.mp4", j.Config.Seed)
}
