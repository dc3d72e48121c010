// Package upload publishes rendered videos through the YouTube Data API.
package upload

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"os"
	"time"

	"github.com/charmbracelet/log"
	"github.com/joho/godotenv"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
	"google.golang.org/api/youtube/v3"
)

// Environment variables holding the OAuth credentials.
const (
	EnvClientID     = "YT_CLIENT_ID"
	EnvClientSecret = "YT_CLIENT_SECRET"
	EnvRefreshToken = "YT_REFRESH_TOKEN"
)

const (
	// ChunkSize is the resumable upload chunk size.
	ChunkSize = 4 * 1024 * 1024

	// CategoryGaming is the platform category id for gaming videos.
	CategoryGaming = "20"

	DefaultAttempts = 3
	DefaultDelay    = 2 * time.Second
)

var (
	// ErrMissingCredentials is returned when any OAuth variable is unset.
	ErrMissingCredentials = errors.New("upload: " + EnvRefreshToken + ", " + EnvClientID + " and " + EnvClientSecret + " must be set")

	// ErrNoVideoID is returned when the API accepted the upload but returned no id.
	ErrNoVideoID = errors.New("upload: no video id in response")
)

// DefaultTags are applied when Metadata.Tags is empty.
var DefaultTags = []string{"gameplay", "shorts", "gaming"}

// Credentials are the OAuth client and refresh token for the channel.
type Credentials struct {
	ClientID     string
	ClientSecret string
	RefreshToken string
}

// CredentialsFromEnv reads credentials from the environment, loading envFile
// first when it exists. Variables already set in the environment win.
func CredentialsFromEnv(envFile string) (Credentials, error) {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil && !errors.Is(err, os.ErrNotExist) {
			return Credentials{}, fmt.Errorf("upload: cannot load %s: %w", envFile, err)
		}
	}

	creds := Credentials{
		ClientID:     os.Getenv(EnvClientID),
		ClientSecret: os.Getenv(EnvClientSecret),
		RefreshToken: os.Getenv(EnvRefreshToken),
	}
	if creds.ClientID == "" || creds.ClientSecret == "" || creds.RefreshToken == "" {
		return Credentials{}, ErrMissingCredentials
	}
	return creds, nil
}

// Metadata describes the published video.
type Metadata struct {
	Title       string
	Description string
	Tags        []string
	Privacy     string // private, unlisted or public
}

func (m Metadata) withDefaults() Metadata {
	if len(m.Tags) == 0 {
		m.Tags = DefaultTags
	}
	if m.Privacy == "" {
		m.Privacy = "public"
	}
	return m
}

func (m Metadata) video() *youtube.Video {
	return &youtube.Video{
		Snippet: &youtube.VideoSnippet{
			Title:       m.Title,
			Description: m.Description,
			Tags:        m.Tags,
			CategoryId:  CategoryGaming,
		},
		Status: &youtube.VideoStatus{
			PrivacyStatus:           m.Privacy,
			SelfDeclaredMadeForKids: false,
			ForceSendFields:         []string{"SelfDeclaredMadeForKids"},
		},
	}
}

// inserter performs one insert call. The service-backed implementation is
// replaced by fakes in tests.
type inserter interface {
	Insert(ctx context.Context, video *youtube.Video, media io.Reader, progress func(current, total int64)) (*youtube.Video, error)
}

type serviceInserter struct {
	svc *youtube.Service
}

func (s serviceInserter) Insert(ctx context.Context, video *youtube.Video, media io.Reader, progress func(current, total int64)) (*youtube.Video, error) {
	call := s.svc.Videos.Insert([]string{"snippet", "status"}, video).
		Media(media, googleapi.ChunkSize(ChunkSize), googleapi.ContentType("video/mp4")).
		ProgressUpdater(progress).
		Context(ctx)
	return call.Do()
}

// Uploader publishes files with a fixed retry policy.
type Uploader struct {
	insert   inserter
	logger   *log.Logger
	attempts int
	delay    time.Duration
}

// New builds an Uploader authenticated with the refresh token.
func New(ctx context.Context, creds Credentials, logger *log.Logger) (*Uploader, error) {
	conf := &oauth2.Config{
		ClientID:     creds.ClientID,
		ClientSecret: creds.ClientSecret,
		Endpoint:     google.Endpoint,
		Scopes:       []string{youtube.YoutubeUploadScope},
	}
	ts := conf.TokenSource(ctx, &oauth2.Token{RefreshToken: creds.RefreshToken})

	svc, err := youtube.NewService(ctx, option.WithTokenSource(ts))
	if err != nil {
		return nil, fmt.Errorf("upload: cannot create client: %w", err)
	}
	return newUploader(serviceInserter{svc: svc}, logger), nil
}

func newUploader(ins inserter, logger *log.Logger) *Uploader {
	if logger == nil {
		logger = log.New(io.Discard)
	}
	return &Uploader{
		insert:   ins,
		logger:   logger,
		attempts: DefaultAttempts,
		delay:    DefaultDelay,
	}
}

// Upload sends the file at path and returns the new video id.
func (u *Uploader) Upload(ctx context.Context, path string, meta Metadata) (string, error) {
	meta = meta.withDefaults()

	if _, err := os.Stat(path); err != nil {
		return "", fmt.Errorf("upload: %w", err)
	}

	u.logger.Info("starting upload", "title", meta.Title, "file", path)

	var lastErr error
	for attempt := 1; attempt <= u.attempts; attempt++ {
		resp, err := u.try(ctx, path, meta)
		if err == nil {
			if resp == nil || resp.Id == "" {
				return "", ErrNoVideoID
			}
			u.logger.Info("upload complete", "video_id", resp.Id)
			return resp.Id, nil
		}

		lastErr = err
		if !isTransient(err) {
			u.logger.Error("upload rejected", "attempt", attempt, "err", err)
			return "", fmt.Errorf("upload: %w", err)
		}
		if attempt == u.attempts {
			break
		}
		u.logger.Warn("upload failed, retrying", "attempt", attempt, "max", u.attempts, "err", err)

		select {
		case <-ctx.Done():
			return "", ctx.Err()
		case <-time.After(u.delay):
		}
	}

	u.logger.Error("upload failed", "attempts", u.attempts, "err", lastErr)
	return "", fmt.Errorf("upload: failed after %d attempts: %w", u.attempts, lastErr)
}

// isTransient reports whether a failed insert is worth restarting:
// server-side API errors, rate limiting and broken connections.
func isTransient(err error) bool {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	var apiErr *googleapi.Error
	if errors.As(err, &apiErr) {
		return apiErr.Code == http.StatusTooManyRequests || apiErr.Code >= http.StatusInternalServerError
	}
	var netErr net.Error
	if errors.As(err, &netErr) {
		return true
	}
	return errors.Is(err, io.ErrUnexpectedEOF)
}

func (u *Uploader) try(ctx context.Context, path string, meta Metadata) (*youtube.Video, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	lastPct := -1
	progress := func(current, total int64) {
		if total <= 0 {
			return
		}
		pct := int(current * 100 / total)
		if pct/25 != lastPct/25 {
			u.logger.Debug("upload progress", "percent", pct)
			lastPct = pct
		}
	}
	return u.insert.Insert(ctx, meta.video(), f, progress)
}
