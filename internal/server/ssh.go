package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/charmbracelet/log"
	"github.com/charmbracelet/ssh"
	"github.com/charmbracelet/wish"

	"github.com/vovakirdan/autododge/internal/config"
)

// SSHServerConfig holds configuration for the SSH server.
type SSHServerConfig struct {
	// Address is the host:port to listen on (e.g., ":23234").
	Address string

	// HostKeyPath is the path to the host key file.
	// If empty, a key will be auto-generated at ~/.autododge/host_key.
	HostKeyPath string

	// IdleTimeout is how long to wait before closing idle connections.
	IdleTimeout time.Duration
}

// DefaultSSHServerConfig returns a config with sensible defaults.
func DefaultSSHServerConfig() SSHServerConfig {
	return SSHServerConfig{
		Address:     ":23234",
		IdleTimeout: 30 * time.Minute,
	}
}

// SSHServer serves `ssh host generate > clip.mp4` through Wish.
type SSHServer struct {
	config SSHServerConfig
	server *ssh.Server
	svc    *Service
	logger *log.Logger
}

// NewSSHServer creates a new SSH server with the given configuration.
func NewSSHServer(cfg SSHServerConfig, svc *Service, logger *log.Logger) (*SSHServer, error) {
	if logger == nil {
		logger = svc.logger
	}
	srv := &SSHServer{
		config: cfg,
		svc:    svc,
		logger: logger,
	}

	// Resolve host key path
	hostKeyPath := cfg.HostKeyPath
	if hostKeyPath == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("cannot get home directory: %w", err)
		}
		hostKeyPath = filepath.Join(home, ".autododge", "host_key")
	}

	// Ensure host key directory exists
	if err := os.MkdirAll(filepath.Dir(hostKeyPath), 0o700); err != nil {
		return nil, fmt.Errorf("cannot create host key directory: %w", err)
	}

	server, err := wish.NewServer(
		wish.WithAddress(cfg.Address),
		wish.WithHostKeyPath(hostKeyPath),
		wish.WithIdleTimeout(cfg.IdleTimeout),
		wish.WithMiddleware(
			srv.commandMiddleware,
			srv.loggingMiddleware,
		),
	)
	if err != nil {
		return nil, fmt.Errorf("cannot create SSH server: %w", err)
	}

	srv.server = server
	return srv, nil
}

// commandMiddleware runs the requested command and exits the session with its status.
func (s *SSHServer) commandMiddleware(next ssh.Handler) ssh.Handler {
	return func(sess ssh.Session) {
		code := s.svc.RunCommand(sess.Context(), sess.Command(), sess, sess.Stderr())
		//nolint:errcheck // Session may already be closed
		sess.Exit(code)
		next(sess)
	}
}

// loggingMiddleware logs SSH session events.
func (s *SSHServer) loggingMiddleware(next ssh.Handler) ssh.Handler {
	return func(sess ssh.Session) {
		s.logger.Info("session started",
			"user", sess.User(),
			"remote", sess.RemoteAddr().String(),
			"command", sess.Command(),
		)
		next(sess)
		s.logger.Info("session ended",
			"user", sess.User(),
			"remote", sess.RemoteAddr().String(),
		)
	}
}

// ListenAndServe serves until ctx is cancelled, then shuts down gracefully.
func (s *SSHServer) ListenAndServe(ctx context.Context) error {
	s.logger.Info("starting SSH server", "address", s.config.Address)

	errCh := make(chan error, 1)
	go func() {
		if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, ssh.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	s.logger.Info("shutting down SSH server...")
	return s.Shutdown()
}

// Shutdown gracefully stops the server.
func (s *SSHServer) Shutdown() error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return s.server.Shutdown(ctx)
}

// Addr returns the server's listen address string.
func (s *SSHServer) Addr() string {
	return s.config.Address
}

const sshUsage = `usage: ssh <host> <command>

commands:
  generate   render a fresh video and write it to stdout
  health     print service status
  runs       print recent runs as JSON
`

// RunCommand executes one remote command and returns its exit status.
// Video bytes go to stdout; progress and errors go to stderr.
func (s *Service) RunCommand(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	if len(args) == 0 {
		fmt.Fprint(stderr, sshUsage)
		return 1
	}

	switch args[0] {
	case "health":
		json.NewEncoder(stdout).Encode(map[string]string{"status": "ok"})
		return 0

	case "runs":
		runs, stats, err := s.RecentRuns(20)
		if err != nil {
			fmt.Fprintf(stderr, "error: %v\n", err)
			return 1
		}
		enc := json.NewEncoder(stdout)
		enc.SetIndent("", "  ")
		enc.Encode(map[string]any{"runs": runs, "stats": stats})
		return 0

	case "generate":
		return s.streamVideo(ctx, stdout, stderr)

	default:
		fmt.Fprintf(stderr, "unknown command %q\n\n%s", args[0], sshUsage)
		return 1
	}
}

func (s *Service) streamVideo(ctx context.Context, stdout, stderr io.Writer) int {
	lastPct := -1
	progress := func(frame, total int) {
		if total <= 0 {
			return
		}
		if pct := frame * 100 / total; pct/10 != lastPct/10 {
			fmt.Fprintf(stderr, "\rrendering %3d%%", pct)
			lastPct = pct
		}
	}

	job, err := s.Generate(ctx, config.Overrides{}, progress)
	if err != nil {
		fmt.Fprintf(stderr, "\ngeneration failed: %v\n", err)
		return 1
	}
	defer job.Cleanup(s.logger)

	fmt.Fprintf(stderr, "\nseed %d, score %d, level %d\n", job.Config.Seed, job.Result.Score, job.Result.Level)

	f, err := os.Open(job.Path)
	if err != nil {
		fmt.Fprintf(stderr, "error: %v\n", err)
		return 1
	}
	defer f.Close()

	if _, err := io.Copy(stdout, f); err != nil {
		s.logger.Warn("stream interrupted", "error", err)
		return 1
	}
	return 0
}
