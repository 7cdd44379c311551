package commands

import (
	"bytes"
	"log/slog"
	"strings"
	"testing"

	"github.com/diogo/estatechat/internal/api"
	"github.com/diogo/estatechat/internal/attachment"
	"github.com/diogo/estatechat/internal/config"
	"github.com/diogo/estatechat/internal/conversation"
	"github.com/diogo/estatechat/internal/models"
	"github.com/diogo/estatechat/internal/tui"
)

type fakeTUI struct {
	calls      int
	controller *conversation.Controller
	files      *attachment.Manager
	opts       []tui.ModelOption
	err        error
}

func (f *fakeTUI) RunChat(controller *conversation.Controller, files *attachment.Manager, opts ...tui.ModelOption) error {
	f.calls++
	f.controller = controller
	f.files = files
	f.opts = opts
	return f.err
}

type testEnv struct {
	deps      *Dependencies
	client    *api.MockClient
	tui       *fakeTUI
	stdout    *bytes.Buffer
	stderr    *bytes.Buffer
	clipboard []string
}

func newTestEnv(t *testing.T, client *api.MockClient) *testEnv {
	t.Helper()
	t.Setenv("HOME", t.TempDir())

	env := &testEnv{
		client: client,
		tui:    &fakeTUI{},
		stdout: &bytes.Buffer{},
		stderr: &bytes.Buffer{},
	}
	env.deps = &Dependencies{
		NewClient: func(config.Config, *slog.Logger) (api.ClientInterface, error) {
			return client, nil
		},
		TUI: env.tui,
		CopyToClipboard: func(text string) error {
			env.clipboard = append(env.clipboard, text)
			return nil
		},
		Stdin:  strings.NewReader(""),
		Stdout: env.stdout,
		Stderr: env.stderr,
	}
	return env
}

func testConfig(t *testing.T) config.Config {
	t.Helper()
	cfg := config.DefaultConfig()
	cfg.APIBaseURL = "http://localhost:8000"
	cfg.DownloadDir = t.TempDir()
	cfg.Markdown.Style = "notty"
	return cfg
}

func parsed(t *testing.T, body string) *models.AnalyticsResponse {
	t.Helper()
	resp, err := models.ParseAnalyticsResponse([]byte(body))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	return resp
}
