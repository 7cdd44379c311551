// Package export saves analyses as PDF reports rendered by the backend.
package export

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/diogo/estatechat/internal/logging"
	"github.com/diogo/estatechat/internal/models"
	"github.com/diogo/estatechat/internal/normalize"
)

// timestampLayout is ISO-8601 to the second with colons replaced by hyphens
const timestampLayout = "2006-01-02T15-04-05"

// Renderer renders an export payload into a PDF stream
type Renderer interface {
	RenderPDF(ctx context.Context, payload models.ExportPayload) (io.ReadCloser, error)
}

// Exporter turns bot messages into PDF files inside a directory
type Exporter struct {
	renderer Renderer
	dir      string
	now      func() time.Time
	logger   *slog.Logger
}

// Option configures an Exporter
type Option func(*Exporter)

// WithClock replaces time.Now, for tests
func WithClock(now func() time.Time) Option {
	return func(e *Exporter) {
		e.now = now
	}
}

// WithLogger sets the exporter logger
func WithLogger(logger *slog.Logger) Option {
	return func(e *Exporter) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// NewExporter creates an exporter writing into dir
func NewExporter(renderer Renderer, dir string, opts ...Option) *Exporter {
	e := &Exporter{
		renderer: renderer,
		dir:      dir,
		now:      time.Now,
		logger:   logging.Discard(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// FileName returns the report file name for t
func FileName(t time.Time) string {
	return models.ReportFilePrefix + t.UTC().Format(timestampLayout) + models.ReportFileExt
}

// Export renders msg and saves the PDF, returning its absolute path.
// The message itself is never modified.
func (e *Exporter) Export(ctx context.Context, msg models.Message) (string, error) {
	payload, err := normalize.ExportPayload(msg)
	if err != nil {
		return "", err
	}

	if err := os.MkdirAll(e.dir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create directory: %w", err)
	}

	body, err := e.renderer.RenderPDF(ctx, payload)
	if err != nil {
		return "", err
	}
	defer func() { _ = body.Close() }()

	tmp, err := os.CreateTemp(e.dir, ".report-*.pdf.part")
	if err != nil {
		return "", fmt.Errorf("failed to create file: %w", err)
	}
	tmpName := tmp.Name()
	saved := false
	defer func() {
		if !saved {
			_ = tmp.Close()
			_ = os.Remove(tmpName)
		}
	}()

	written, err := io.Copy(tmp, body)
	if err != nil {
		return "", fmt.Errorf("failed to save report: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return "", fmt.Errorf("failed to save report: %w", err)
	}

	target := filepath.Join(e.dir, FileName(e.now()))
	if err := os.Rename(tmpName, target); err != nil {
		return "", fmt.Errorf("failed to save report: %w", err)
	}
	saved = true

	absPath, err := filepath.Abs(target)
	if err != nil {
		absPath = target
	}
	e.logger.Info("report saved", "path", absPath, "bytes", written, "message", msg.ID)
	return absPath, nil
}
