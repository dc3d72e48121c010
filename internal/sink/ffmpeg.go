package sink

import (
	"context"
	"fmt"
	"io"
	"os/exec"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/charmbracelet/log"
)

// stderrTail is how much encoder stderr is kept for error messages.
const stderrTail = 4096

// EncoderArgs builds the encoder command line: raw RGB24 frames on stdin,
// H.264/yuv420p video, and AAC audio when opts.AudioPath is set.
func EncoderArgs(opts Options) []string {
	opts = opts.withDefaults()
	args := []string{
		"-y",
		"-f", "rawvideo",
		"-pix_fmt", "rgb24",
		"-s", fmt.Sprintf("%dx%d", opts.Width, opts.Height),
		"-r", strconv.Itoa(opts.FPS),
		"-i", "-",
	}
	if opts.AudioPath != "" {
		args = append(args, "-i", opts.AudioPath)
	}
	args = append(args,
		"-c:v", "libx264",
		"-pix_fmt", "yuv420p",
		"-preset", opts.Preset,
	)
	if opts.AudioPath != "" {
		args = append(args, "-c:a", "aac", "-b:a", opts.AudioBitrate, "-shortest")
	}
	return append(args, opts.OutputPath)
}

// ffmpegSink streams frames into an encoder subprocess.
type ffmpegSink struct {
	opts   Options
	logger *log.Logger

	cmd    *exec.Cmd
	stdin  io.WriteCloser
	stderr *tailBuffer
	done   chan error

	healthy   atomic.Bool
	frames    int
	closeOnce sync.Once
	closeErr  error
}

func openFFmpeg(ctx context.Context, opts Options) (FrameSink, error) {
	bin, err := ResolveBinary(opts.Binary)
	if err != nil {
		opts.Logger.Error("encoder not found", "binary", opts.Binary, "err", err)
		return nil, err
	}

	args := EncoderArgs(opts)
	cmd := exec.CommandContext(ctx, bin, args...)
	stdin, err := cmd.StdinPipe()
	if err != nil {
		return nil, fmt.Errorf("%w: stdin pipe: %v", ErrEncoderUnavailable, err)
	}
	stderr := &tailBuffer{max: stderrTail}
	cmd.Stderr = stderr

	if err := cmd.Start(); err != nil {
		stdin.Close()
		opts.Logger.Error("encoder failed to start", "binary", bin, "err", err)
		return nil, fmt.Errorf("%w: start %s: %v", ErrEncoderUnavailable, bin, err)
	}
	opts.Logger.Debug("encoder started", "binary", bin, "pid", cmd.Process.Pid, "args", strings.Join(args, " "))

	s := &ffmpegSink{
		opts:   opts,
		logger: opts.Logger,
		cmd:    cmd,
		stdin:  stdin,
		stderr: stderr,
		done:   make(chan error, 1),
	}
	s.healthy.Store(true)

	// Monitor process
	go func() {
		s.done <- cmd.Wait()
		close(s.done)
	}()

	return s, nil
}

func (s *ffmpegSink) WriteFrame(frame []byte) error {
	if !s.healthy.Load() {
		return ErrSinkClosed
	}
	if err := checkFrame(frame, s.opts.FrameSize()); err != nil {
		return err
	}
	if _, err := s.stdin.Write(frame); err != nil {
		s.healthy.Store(false)
		s.logger.Warn("encoder pipe broken", "frames", s.frames, "err", err)
		return fmt.Errorf("%w: frame %d: %v", ErrSinkClosed, s.frames, err)
	}
	s.frames++
	return nil
}

func (s *ffmpegSink) Healthy() bool {
	return s.healthy.Load()
}

// Close ends the input stream and waits for the encoder to finish. If ctx
// expires first the encoder is killed.
func (s *ffmpegSink) Close(ctx context.Context) (string, error) {
	s.closeOnce.Do(func() {
		s.healthy.Store(false)
		s.stdin.Close()

		var err error
		select {
		case err = <-s.done:
		case <-ctx.Done():
			if s.cmd.Process != nil {
				s.cmd.Process.Kill()
			}
			<-s.done
			err = ctx.Err()
		}

		if err != nil {
			s.closeErr = fmt.Errorf("sink: encoder exited after %d frames: %w: %s", s.frames, err, s.stderr.String())
			return
		}
		s.logger.Debug("encoder finished", "frames", s.frames, "output", s.opts.OutputPath)
	})
	return s.opts.OutputPath, s.closeErr
}

// Mux combines an encoded video with a WAV soundtrack without re-encoding the video.
func Mux(ctx context.Context, binary, videoPath, audioPath, outputPath string) error {
	bin, err := ResolveBinary(binary)
	if err != nil {
		return err
	}
	args := []string{
		"-y",
		"-i", videoPath,
		"-i", audioPath,
		"-c:v", "copy",
		"-c:a", "aac", "-b:a", "192k",
		"-shortest",
		outputPath,
	}
	stderr := &tailBuffer{max: stderrTail}
	cmd := exec.CommandContext(ctx, bin, args...)
	cmd.Stderr = stderr

	if err := cmd.Run(); err != nil {
		return fmt.Errorf("sink: mux %s: %w: %s", outputPath, err, stderr.String())
	}
	return nil
}

// tailBuffer keeps the last max bytes written to it.
type tailBuffer struct {
	mu  sync.Mutex
	buf []byte
	max int
}

func (b *tailBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.buf = append(b.buf, p...)
	if len(b.buf) > b.max {
		b.buf = b.buf[len(b.buf)-b.max:]
	}
	return len(p), nil
}

func (b *tailBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return strings.TrimSpace(string(b.buf))
}
