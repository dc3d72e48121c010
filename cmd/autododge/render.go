package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/vovakirdan/autododge/internal/config"
	"github.com/vovakirdan/autododge/internal/pipeline"
	"github.com/vovakirdan/autododge/internal/platform/tui"
	"github.com/vovakirdan/autododge/internal/server"
	"github.com/vovakirdan/autododge/internal/storage"
)

var (
	flagRenderSeed       int64
	flagRenderDuration   int
	flagRenderSkill      float64
	flagRenderTheme      string
	flagRenderSink       string
	flagRenderSoundtrack string
	flagRenderFFmpeg     string
	flagRenderPreset     string
	flagRenderNoProgress bool
	flagRenderNoLedger   bool
	flagRenderUpload     bool
	flagRenderPrivacy    string
)

var renderCmd = &cobra.Command{
	Use:   "render [output]",
	Short: "Render one video",
	Long: `Generate a run config and render it to an MP4 file.

Unset flags keep the generated value, so --seed alone reproduces the
gameplay of an earlier run under the same profile. The output defaults
to video_<seed>.mp4 in the current directory.

Soundtrack modes:
  mixed   encode video, then mux the frame-accurate crossfaded soundtrack (default)
  layer   let the encoder mux the high-intensity music layer in one pass

Examples:
  autododge render
  autododge render clip.mp4 --theme matrix
  autododge render --profile v1 --seed 12345 --duration 15 --skill 1.0 golden.mp4
  autododge render --sink null               # simulate and count frames only
  autododge render --upload --privacy unlisted`,
	Args: cobra.MaximumNArgs(1),
	Run:  runRender,
}

func init() {
	renderCmd.Flags().Int64Var(&flagRenderSeed, "seed", 0, "Gameplay seed (default: generated)")
	renderCmd.Flags().IntVar(&flagRenderDuration, "duration", 0, "Gameplay seconds (default: generated)")
	renderCmd.Flags().Float64Var(&flagRenderSkill, "skill", 0, "AI skill (default: generated)")
	renderCmd.Flags().StringVar(&flagRenderTheme, "theme", "", "Theme name (default: generated)")
	renderCmd.Flags().StringVar(&flagRenderSink, "sink", "ffmpeg", "Frame sink (ffmpeg, null)")
	renderCmd.Flags().StringVar(&flagRenderSoundtrack, "soundtrack", "mixed", "Soundtrack mode (mixed, layer)")
	renderCmd.Flags().StringVar(&flagRenderFFmpeg, "ffmpeg", "", "Encoder binary (default $AUTODODGE_FFMPEG or ffmpeg on PATH)")
	renderCmd.Flags().StringVar(&flagRenderPreset, "preset", "", "x264 preset (default ultrafast)")
	renderCmd.Flags().BoolVar(&flagRenderNoProgress, "no-progress", false, "Disable the progress view")
	renderCmd.Flags().BoolVar(&flagRenderNoLedger, "no-ledger", false, "Do not record the run in the ledger")
	renderCmd.Flags().BoolVar(&flagRenderUpload, "upload", false, "Publish the video after rendering")
	renderCmd.Flags().StringVar(&flagRenderPrivacy, "privacy", "public", "Privacy status when uploading")
}

// renderOverrides maps the flags that were set onto config overrides.
func renderOverrides(cmd *cobra.Command) config.Overrides {
	var o config.Overrides
	if cmd.Flags().Changed("seed") {
		o.Seed = &flagRenderSeed
	}
	if cmd.Flags().Changed("duration") {
		o.Duration = &flagRenderDuration
	}
	if cmd.Flags().Changed("skill") {
		o.AISkill = &flagRenderSkill
	}
	o.Theme = flagRenderTheme
	return o
}

func runRender(cmd *cobra.Command, args []string) {
	soundtrack, err := pipeline.ParseSoundtrack(flagRenderSoundtrack)
	if err != nil {
		fail("%v", err)
	}

	cfg, err := settings.Apply(config.NewGenerator(settings, nil).Generate(), renderOverrides(cmd))
	if err != nil {
		fail("%v", err)
	}

	output := fmt.Sprintf("video_%d.mp4", cfg.Seed)
	if len(args) > 0 {
		output = args[0]
	}
	if output, err = filepath.Abs(output); err != nil {
		fail("%v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	opts := pipeline.Options{
		Sink:       flagRenderSink,
		Soundtrack: soundtrack,
		Binary:     flagRenderFFmpeg,
		Preset:     flagRenderPreset,
		Logger:     logger,
	}

	render := func(ctx context.Context, progress func(frame, total int)) (pipeline.Result, error) {
		o := opts
		o.Progress = progress
		return pipeline.Render(ctx, cfg, output, o)
	}

	var res pipeline.Result
	if !flagRenderNoProgress && term.IsTerminal(int(os.Stderr.Fd())) {
		// Keep log lines from tearing the progress view
		if logger.GetLevel() < log.WarnLevel {
			logger.SetLevel(log.WarnLevel)
		}
		title := fmt.Sprintf("Rendering seed %d (%ds, %s, skill %.2f)", cfg.Seed, cfg.Duration, cfg.Theme.Name, cfg.AISkill)
		res, err = tui.RunWithProgress(ctx, title, render)
	} else {
		res, err = render(ctx, nil)
	}
	if err != nil {
		fail("Render failed: %v", err)
	}

	printResult(cfg, res)

	if res.OutputPath == "" {
		return
	}

	var runID int64
	var store *storage.Store
	if !flagRenderNoLedger {
		store, err = storage.Open(flagDBPath)
		if err != nil {
			logger.Warn("could not open run ledger", "error", err)
		} else {
			defer store.Close()
			runID, err = store.SaveRun(storage.Run{
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
				logger.Warn("could not record run", "error", err)
			}
		}
	}

	if flagRenderUpload {
		meta := server.Metadata(cfg, res)
		meta.Privacy = flagRenderPrivacy
		videoID, err := publish(ctx, res.OutputPath, meta)
		if err != nil {
			fail("Upload failed: %v", err)
		}
		if store != nil && runID != 0 {
			if err := store.SetVideoID(runID, videoID); err != nil {
				logger.Warn("could not record video id", "error", err)
			}
		}
		fmt.Printf("Video ID: %s\n", videoID)
	}
}

func printResult(cfg config.Config, res pipeline.Result) {
	theme := tui.DefaultTheme()

	outcome := theme.Success.Render("survived")
	if res.Collided {
		outcome = theme.Error.Render("wasted")
	}
	if res.Truncated {
		outcome += " " + theme.Warning.Render("(truncated)")
	}

	fmt.Printf("%s %s\n", theme.Label.Render("seed    "), theme.Value.Render(fmt.Sprint(cfg.Seed)))
	fmt.Printf("%s %s\n", theme.Label.Render("outcome "), outcome)
	fmt.Printf("%s %s\n", theme.Label.Render("score   "), theme.Value.Render(fmt.Sprint(res.Score)))
	fmt.Printf("%s %s\n", theme.Label.Render("level   "), theme.Value.Render(fmt.Sprint(res.Level)))
	fmt.Printf("%s %s\n", theme.Label.Render("frames  "), theme.Value.Render(fmt.Sprint(res.Frames)))
	fmt.Printf("%s %s\n", theme.Label.Render("elapsed "), theme.Value.Render(res.Elapsed.Round(time.Millisecond).String()))
	if res.OutputPath != "" {
		fmt.Printf("%s %s\n", theme.Label.Render("output  "), theme.Value.Render(res.OutputPath))
	}
}

// fail prints an error and exits.
func fail(format string, args ...any) {
	fmt.Fprintf(os.Stderr, "Error: "+format+"\n", args...)
	os.Exit(1)
}
