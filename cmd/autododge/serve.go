package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/vovakirdan/autododge/internal/pipeline"
	"github.com/vovakirdan/autododge/internal/server"
	"github.com/vovakirdan/autododge/internal/storage"
)

var (
	flagHTTPAddr        string
	flagSSHAddr         string
	flagHostKey         string
	flagIdleTimeout     int
	flagServeUpload     bool
	flagServeFFmpeg     string
	flagServeSoundtrack string
	flagServeTempDir    string
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve video generation over HTTP and SSH",
	Long: `Start the generation service.

HTTP endpoints:
  POST /generate_video   render a fresh video and return it as video/mp4
                         optional JSON body: {"seed", "duration", "ai_skill", "theme"}
                         ?upload=true also publishes it (X-Video-Id header)
  GET  /health           {"status":"ok"}
  GET  /runs             recent ledger entries

With --ssh the same service is reachable as:
  ssh host -p 23234 generate > clip.mp4

The HTTP address defaults to :$PORT, or :8080 when PORT is unset.

Examples:
  autododge serve
  autododge serve --http :9000 --ssh :23234
  autododge serve --upload`,
	Args: cobra.NoArgs,
	Run:  runServe,
}

func init() {
	serveCmd.Flags().StringVar(&flagHTTPAddr, "http", "", "HTTP address (default :$PORT or :8080)")
	serveCmd.Flags().StringVar(&flagSSHAddr, "ssh", "", "SSH address (disabled if empty)")
	serveCmd.Flags().StringVar(&flagHostKey, "host-key", "", "Path to SSH host key file (auto-generated if not specified)")
	serveCmd.Flags().IntVar(&flagIdleTimeout, "idle-timeout", 30, "SSH idle timeout in minutes")
	serveCmd.Flags().BoolVar(&flagServeUpload, "upload", false, "Enable ?upload=true (requires YT_* credentials)")
	serveCmd.Flags().StringVar(&flagServeFFmpeg, "ffmpeg", "", "Encoder binary (default $AUTODODGE_FFMPEG or ffmpeg on PATH)")
	serveCmd.Flags().StringVar(&flagServeSoundtrack, "soundtrack", "mixed", "Soundtrack mode (mixed, layer)")
	serveCmd.Flags().StringVar(&flagServeTempDir, "tmp", "", "Directory for videos awaiting delivery (default system temp)")
}

func httpAddr() string {
	if flagHTTPAddr != "" {
		return flagHTTPAddr
	}
	if port := os.Getenv("PORT"); port != "" {
		return ":" + port
	}
	return ":8080"
}

func runServe(_ *cobra.Command, _ []string) {
	soundtrack, err := pipeline.ParseSoundtrack(flagServeSoundtrack)
	if err != nil {
		fail("%v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	opts := server.Options{
		Settings: settings,
		Render: pipeline.Options{
			Sink:       "ffmpeg",
			Soundtrack: soundtrack,
			Binary:     flagServeFFmpeg,
		},
		TempDir: flagServeTempDir,
		Logger:  logger,
	}

	store, err := storage.Open(flagDBPath)
	if err != nil {
		logger.Warn("could not open run ledger", "error", err)
		// Continue without storage
	} else {
		defer store.Close()
		opts.Store = store
	}

	if flagServeUpload {
		uploader, err := newUploader(ctx)
		if err != nil {
			fail("Upload requested but unavailable: %v", err)
		}
		opts.Uploader = uploader
	}

	svc := server.NewService(opts)
	errs := make(chan error, 2)
	running := 1

	httpSrv := server.NewHTTPServer(httpAddr(), svc, logger)
	go func() { errs <- httpSrv.ListenAndServe(ctx) }()

	if flagSSHAddr != "" {
		sshSrv, err := server.NewSSHServer(server.SSHServerConfig{
			Address:     flagSSHAddr,
			HostKeyPath: flagHostKey,
			IdleTimeout: time.Duration(flagIdleTimeout) * time.Minute,
		}, svc, logger)
		if err != nil {
			fail("Error creating SSH server: %v", err)
		}
		running++
		go func() { errs <- sshSrv.ListenAndServe(ctx) }()
	}

	fmt.Fprintf(os.Stderr, "Serving profile %s. Press Ctrl+C to stop\n", settings.Version)

	// A failing listener stops the other one too
	var firstErr error
	for range running {
		if err := <-errs; err != nil && firstErr == nil {
			firstErr = err
			stop()
		}
	}
	if firstErr != nil {
		fail("Server error: %v", firstErr)
	}
}
