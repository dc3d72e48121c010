package server

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"testing"
)

func TestRunCommand(t *testing.T) {
	fx := newFixture(t)

	tests := []struct {
		name       string
		args       []string
		wantCode   int
		wantStdout string
		wantStderr string
	}{
		{"no command", nil, 1, "", "usage:"},
		{"unknown", []string{"dance"}, 1, "", `unknown command "dance"`},
		{"health", []string{"health"}, 0, `{"status":"ok"}`, ""},
		{"generate", []string{"generate"}, 0, "encoded\n", "rendering 100%"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var stdout, stderr bytes.Buffer
			code := fx.svc.RunCommand(context.Background(), tt.args, &stdout, &stderr)

			if code != tt.wantCode {
				t.Errorf("exit code = %d, want %d (stderr %q)", code, tt.wantCode, stderr.String())
			}
			if !strings.Contains(stdout.String(), tt.wantStdout) {
				t.Errorf("stdout = %q, want %q", stdout.String(), tt.wantStdout)
			}
			if !strings.Contains(stderr.String(), tt.wantStderr) {
				t.Errorf("stderr = %q, want %q", stderr.String(), tt.wantStderr)
			}
		})
	}
}

func TestRunCommandRuns(t *testing.T) {
	fx := newFixture(t)

	var sink bytes.Buffer
	if code := fx.svc.RunCommand(context.Background(), []string{"generate"}, &sink, &sink); code != 0 {
		t.Fatalf("generate exit code %d: %s", code, sink.String())
	}

	var stdout, stderr bytes.Buffer
	if code := fx.svc.RunCommand(context.Background(), []string{"runs"}, &stdout, &stderr); code != 0 {
		t.Fatalf("runs exit code %d: %s", code, stderr.String())
	}

	var body struct {
		Runs []struct {
			Seed int64 `json:"seed"`
		} `json:"runs"`
	}
	if err := json.Unmarshal(stdout.Bytes(), &body); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	if len(body.Runs) != 1 {
		t.Errorf("Expected 1 run, got %d", len(body.Runs))
	}
}

func TestRunCommandFailure(t *testing.T) {
	fx := newFixture(t)
	fx.svc.opts.Render.Binary = "/nonexistent/ffmpeg"

	var stdout, stderr bytes.Buffer
	code := fx.svc.RunCommand(context.Background(), []string{"generate"}, &stdout, &stderr)
	if code != 1 {
		t.Errorf("Expected exit 1, got %d", code)
	}
	if stdout.Len() != 0 {
		t.Errorf("Expected no video bytes, got %d", stdout.Len())
	}
	if !strings.Contains(stderr.String(), "generation failed") {
		t.Errorf("Unexpected stderr %q", stderr.String())
	}
}
