// Package sink defines where rendered frames go. The ffmpeg sink pipes raw
// RGB24 frames into an external encoder process; the null sink only counts them.
package sink

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"

	"github.com/charmbracelet/log"
)

// EnvBinary overrides the encoder binary when Options.Binary is empty.
const EnvBinary = "AUTODODGE_FFMPEG"

var (
	// ErrEncoderUnavailable is returned when the encoder binary cannot be found or started.
	ErrEncoderUnavailable = errors.New("sink: encoder unavailable")
	// ErrSinkClosed is returned by WriteFrame once the sink has failed or been closed.
	ErrSinkClosed = errors.New("sink: closed")
	// ErrUnknownSink is returned by Open for unregistered sink names.
	ErrUnknownSink = errors.New("sink: unknown sink")
)

// FrameSink consumes packed RGB24 frames.
type FrameSink interface {
	// WriteFrame writes one frame of exactly Width*Height*3 bytes.
	// After a failed write the sink is unhealthy and every later write
	// returns ErrSinkClosed.
	WriteFrame(frame []byte) error

	// Healthy reports whether frames are still being accepted.
	Healthy() bool

	// Close flushes the sink and returns the output path. Partial output
	// from an unhealthy sink is kept.
	Close(ctx context.Context) (string, error)
}

// Options configures a sink.
type Options struct {
	Width  int
	Height int
	FPS    int

	AudioPath  string // Muxed into the output when set
	OutputPath string

	Binary       string // Encoder binary; falls back to $AUTODODGE_FFMPEG, then "ffmpeg"
	Preset       string // x264 preset
	AudioBitrate string

	Logger *log.Logger
}

// FrameSize returns the expected byte length of one frame.
func (o Options) FrameSize() int {
	return o.Width * o.Height * 3
}

func (o Options) withDefaults() Options {
	if o.Preset == "" {
		o.Preset = "ultrafast"
	}
	if o.AudioBitrate == "" {
		o.AudioBitrate = "192k"
	}
	if o.Logger == nil {
		o.Logger = log.New(io.Discard)
	}
	return o
}

func (o Options) validate() error {
	if o.Width <= 0 || o.Height <= 0 || o.FPS <= 0 {
		return fmt.Errorf("sink: invalid geometry %dx%d@%d", o.Width, o.Height, o.FPS)
	}
	if o.OutputPath == "" {
		return fmt.Errorf("sink: output path is required")
	}
	return nil
}

// ResolveBinary finds the encoder executable. An empty name falls back to
// $AUTODODGE_FFMPEG and then to "ffmpeg" on PATH.
func ResolveBinary(name string) (string, error) {
	if name == "" {
		name = os.Getenv(EnvBinary)
	}
	if name == "" {
		name = "ffmpeg"
	}
	path, err := exec.LookPath(name)
	if err != nil {
		return "", fmt.Errorf("%w: %s: %v", ErrEncoderUnavailable, name, err)
	}
	return path, nil
}

// checkFrame rejects frames of the wrong size.
func checkFrame(frame []byte, size int) error {
	if len(frame) != size {
		return fmt.Errorf("sink: frame is %d bytes, expected %d", len(frame), size)
	}
	return nil
}
