package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/vovakirdan/autododge/internal/storage"
	"github.com/vovakirdan/autododge/internal/upload"
)

var (
	flagUploadTitle       string
	flagUploadDescription string
	flagUploadTags        []string
	flagUploadPrivacy     string
	flagUploadRunID       int64
)

var uploadCmd = &cobra.Command{
	Use:   "upload <file>",
	Short: "Publish a rendered video",
	Long: `Upload a video file through the YouTube Data API.

Credentials are read from YT_CLIENT_ID, YT_CLIENT_SECRET and
YT_REFRESH_TOKEN, loaded from the --env file when present.

With --run-id the returned video id is stored on that ledger entry.

Examples:
  autododge upload clip.mp4 --title "AI dodger, level 7"
  autododge upload clip.mp4 --privacy unlisted --tags gameplay,ai
  autododge upload video_4242.mp4 --run-id 12`,
	Args: cobra.ExactArgs(1),
	Run:  runUpload,
}

func init() {
	uploadCmd.Flags().StringVar(&flagUploadTitle, "title", "", "Video title (default: file name)")
	uploadCmd.Flags().StringVar(&flagUploadDescription, "description", "", "Video description")
	uploadCmd.Flags().StringSliceVar(&flagUploadTags, "tags", nil, "Comma-separated tags (default: gameplay,shorts,gaming)")
	uploadCmd.Flags().StringVar(&flagUploadPrivacy, "privacy", "public", "Privacy status (private, unlisted, public)")
	uploadCmd.Flags().Int64Var(&flagUploadRunID, "run-id", 0, "Ledger run to attach the video id to")
}

func runUpload(_ *cobra.Command, args []string) {
	path := args[0]

	title := flagUploadTitle
	if title == "" {
		title = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	videoID, err := publish(ctx, path, upload.Metadata{
		Title:       title,
		Description: flagUploadDescription,
		Tags:        flagUploadTags,
		Privacy:     flagUploadPrivacy,
	})
	if err != nil {
		fail("Upload failed: %v", err)
	}

	if flagUploadRunID != 0 {
		store, err := storage.Open(flagDBPath)
		if err != nil {
			fail("Error opening run ledger: %v", err)
		}
		defer store.Close()
		if err := store.SetVideoID(flagUploadRunID, videoID); err != nil {
			logger.Warn("could not record video id", "run", flagUploadRunID, "error", err)
		}
	}

	fmt.Printf("Video ID: %s\n", videoID)
}

// publish uploads path with credentials from the environment.
func publish(ctx context.Context, path string, meta upload.Metadata) (string, error) {
	uploader, err := newUploader(ctx)
	if err != nil {
		return "", err
	}
	return uploader.Upload(ctx, path, meta)
}

func newUploader(ctx context.Context) (*upload.Uploader, error) {
	// The dotenv file was already loaded by the root command
	creds, err := upload.CredentialsFromEnv("")
	if err != nil {
		return nil, err
	}
	return upload.New(ctx, creds, logger)
}
