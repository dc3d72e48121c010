package sink

import (
	"context"
	"fmt"
	"sort"
	"sync"
)

// Factory opens a sink with the given options.
type Factory func(ctx context.Context, opts Options) (FrameSink, error)

var (
	factories = make(map[string]Factory)
	mu        sync.RWMutex
)

func init() {
	Register("ffmpeg", openFFmpeg)
	Register("null", openNull)
}

// Register adds a sink factory under name.
// Panics if a sink with the same name is already registered.
func Register(name string, f Factory) {
	mu.Lock()
	defer mu.Unlock()

	if _, exists := factories[name]; exists {
		panic(fmt.Sprintf("sink: %q already registered", name))
	}
	factories[name] = f
}

// List returns the registered sink names, sorted.
func List() []string {
	mu.RLock()
	defer mu.RUnlock()

	result := make([]string, 0, len(factories))
	for name := range factories {
		result = append(result, name)
	}
	sort.Strings(result)
	return result
}

// Open creates a sink by name.
func Open(ctx context.Context, name string, opts Options) (FrameSink, error) {
	mu.RLock()
	f, ok := factories[name]
	mu.RUnlock()

	if !ok {
		return nil, fmt.Errorf("%w %q", ErrUnknownSink, name)
	}
	opts = opts.withDefaults()
	if err := opts.validate(); err != nil {
		return nil, err
	}
	return f(ctx, opts)
}

// Exists checks if a sink with the given name is registered.
func Exists(name string) bool {
	mu.RLock()
	defer mu.RUnlock()

	_, ok := factories[name]
	return ok
}
