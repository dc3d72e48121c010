package sink

import (
	"context"
	"sync"
)

// NullSink accepts frames without encoding them. It is used for dry runs
// and tests.
type NullSink struct {
	mu     sync.Mutex
	opts   Options
	frames int
	bytes  int64
	closed bool
}

func openNull(_ context.Context, opts Options) (FrameSink, error) {
	return NewNull(opts), nil
}

// NewNull creates a null sink for frames of the given geometry.
func NewNull(opts Options) *NullSink {
	return &NullSink{opts: opts}
}

func (n *NullSink) WriteFrame(frame []byte) error {
	n.mu.Lock()
	defer n.mu.Unlock()

	if n.closed {
		return ErrSinkClosed
	}
	if err := checkFrame(frame, n.opts.FrameSize()); err != nil {
		return err
	}
	n.frames++
	n.bytes += int64(len(frame))
	return nil
}

func (n *NullSink) Healthy() bool {
	n.mu.Lock()
	defer n.mu.Unlock()
	return !n.closed
}

// Close returns the configured output path. Nothing is written there.
func (n *NullSink) Close(context.Context) (string, error) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.closed = true
	return n.opts.OutputPath, nil
}

// Frames returns how many frames were accepted.
func (n *NullSink) Frames() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.frames
}

// Bytes returns how many bytes were accepted.
func (n *NullSink) Bytes() int64 {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.bytes
}
