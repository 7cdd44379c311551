package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/tidwall/pretty"
	"golang.org/x/term"

	"github.com/diogo/estatechat/internal/attachment"
	"github.com/diogo/estatechat/internal/config"
	"github.com/diogo/estatechat/internal/conversation"
	apierrors "github.com/diogo/estatechat/internal/errors"
	"github.com/diogo/estatechat/internal/export"
	"github.com/diogo/estatechat/internal/logging"
	"github.com/diogo/estatechat/internal/models"
	"github.com/diogo/estatechat/internal/normalize"
	"github.com/diogo/estatechat/internal/render"
	"github.com/diogo/estatechat/internal/transcript"
)

// Gradient colors for animation
var gradientColors = []lipgloss.Color{
	lipgloss.Color("#ff6b6b"),
	lipgloss.Color("#feca57"),
	lipgloss.Color("#48dbfb"),
	lipgloss.Color("#ff9ff3"),
	lipgloss.Color("#54a0ff"),
	lipgloss.Color("#5f27cd"),
	lipgloss.Color("#00d2d3"),
	lipgloss.Color("#1dd1a1"),
}

var (
	colorText     = render.DarkPalette.Text
	colorTextDim  = render.DarkPalette.TextDim
	colorTextMute = render.DarkPalette.TextMute
	colorSuccess  = render.DarkPalette.Secondary
	colorError    = render.DarkPalette.Error
)

// spinner handles the animated loading indicator
type spinner struct {
	out     io.Writer
	message string
	stop    chan struct{}
	done    chan struct{}
	mu      sync.Mutex
	frame   int
	stopped bool // Flag to prevent double-close
}

// newSpinner creates a spinner drawing on out. It returns nil when out is
// not a terminal; a nil spinner ignores every call.
func newSpinner(out io.Writer, message string) *spinner {
	if !isTerminal(out) {
		return nil
	}
	return &spinner{
		out:     out,
		message: message,
		stop:    make(chan struct{}),
		done:    make(chan struct{}),
	}
}

// start begins the animation
func (s *spinner) start() {
	if s == nil {
		return
	}
	go func() {
		defer close(s.done)

		ticker := time.NewTicker(80 * time.Millisecond)
		defer ticker.Stop()

		// Hide cursor
		fmt.Fprint(s.out, "\033[?25l")

		for {
			select {
			case <-s.stop:
				// Clear line and show cursor
				fmt.Fprint(s.out, "\r\033[K\033[?25h")
				return
			case <-ticker.C:
				s.mu.Lock()
				s.render()
				s.frame++
				s.mu.Unlock()
			}
		}
	}()
}

// render draws the current animation frame
func (s *spinner) render() {
	chars := []string{"⣾", "⣽", "⣻", "⢿", "⡿", "⣟", "⣯", "⣷"}
	barChars := []string{"█", "█", "█", "█", "█", "█", "▓", "▒", "░"}

	spinIdx := s.frame % len(chars)
	spinColor := gradientColors[s.frame%len(gradientColors)]
	spinnerChar := lipgloss.NewStyle().Foreground(spinColor).Bold(true).Render(chars[spinIdx])

	barWidth := 16
	var bar strings.Builder
	for i := 0; i < barWidth; i++ {
		colorIdx := (i + s.frame) % len(gradientColors)
		charIdx := (i + s.frame/2) % len(barChars)
		bar.WriteString(lipgloss.NewStyle().Foreground(gradientColors[colorIdx]).Render(barChars[charIdx]))
	}

	var dots strings.Builder
	numDots := (s.frame / 3) % 4
	for i := 0; i < 3; i++ {
		if i < numDots {
			dotColor := gradientColors[(s.frame+i)%len(gradientColors)]
			dots.WriteString(lipgloss.NewStyle().Foreground(dotColor).Render("●"))
		} else {
			dots.WriteString(lipgloss.NewStyle().Foreground(colorTextMute).Render("○"))
		}
	}

	msg := lipgloss.NewStyle().Foreground(colorText).Render(s.message)
	fmt.Fprintf(s.out, "\r\033[K%s %s %s %s", spinnerChar, bar.String(), msg, dots.String())
}

// stopOnce safely closes the stop channel only once
func (s *spinner) stopOnce() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.stopped {
		close(s.stop)
		s.stopped = true
	}
}

// stopWithSuccess stops the spinner and shows success message
func (s *spinner) stopWithSuccess(message string) {
	if s == nil {
		return
	}
	s.stopOnce()
	<-s.done

	checkmark := lipgloss.NewStyle().Foreground(colorSuccess).Bold(true).Render("✓")
	msg := lipgloss.NewStyle().Foreground(colorSuccess).Render(message)
	fmt.Fprintf(s.out, "%s %s\n", checkmark, msg)
}

// stopWithError stops the spinner and shows error
func (s *spinner) stopWithError() {
	if s == nil {
		return
	}
	s.stopOnce()
	<-s.done
}

// queryOptions are the flags of a one-shot query
type queryOptions struct {
	File   string // attachment path
	Output string // answer file; the format follows the extension
	PDF    bool
	Raw    bool
	JSON   bool
}

// runQuery asks a single question and prints the answer
func runQuery(ctx context.Context, d *Dependencies, cfg config.Config, question string, opts queryOptions) error {
	question = strings.TrimSpace(question)
	if question == "" {
		return fmt.Errorf("question cannot be empty")
	}

	logger := logging.New(d.Stderr, cfg.Verbose)
	decorated := !opts.Raw && !opts.JSON

	var att *attachment.Attachment
	if opts.File != "" {
		a, err := attachment.FromPath(opts.File)
		if err == nil {
			err = attachment.Validate(a)
		}
		if err != nil {
			fmt.Fprintln(d.Stderr, formatErrorMessage(err, "Cannot attach file"))
			return fmt.Errorf("cannot attach file: %w", err)
		}
		att = a
		logger.Debug("attachment", "name", a.Name, "size", a.Size, "mime", a.MIMEType)
	}

	client, err := d.NewClient(cfg, logger)
	if err != nil {
		return fmt.Errorf("failed to create client: %w", err)
	}
	defer client.Close()

	logger.Debug("query", "api", client.BaseURL(), "timeout", cfg.Timeout())

	controller := conversation.NewController(
		conversation.NewStore(),
		client,
		conversation.WithTimeout(cfg.Timeout()),
		conversation.WithLogger(logger),
	)

	var spin *spinner
	if decorated {
		spin = newSpinner(d.Stderr, models.PlaceholderText)
		spin.start()
	}

	startTime := time.Now()
	msg, err := controller.HandleSend(ctx, question, att)
	if err != nil {
		spin.stopWithError()
		return err
	}
	logger.Debug("query finished", "elapsed", time.Since(startTime).Round(time.Millisecond), "kind", msg.Kind.String())

	if msg.IsError() {
		spin.stopWithError()
		fmt.Fprintln(d.Stderr, lipgloss.NewStyle().Foreground(colorError).Render(msg.Text))
		return fmt.Errorf("analysis failed: %s", strings.TrimPrefix(msg.Text, models.ErrorPrefix))
	}
	spin.stopWithSuccess("Done")

	if opts.Output != "" {
		if err := writeAnswer(opts.Output, controller.Store().Snapshot()); err != nil {
			return err
		}
		if decorated {
			fmt.Fprintln(d.Stderr, successLine("Answer saved to "+opts.Output))
		}
	} else if err := printAnswer(d, cfg, msg, opts); err != nil {
		return err
	}

	if decorated && cfg.CopyToClipboard {
		if err := d.CopyToClipboard(msg.Text); err != nil {
			fmt.Fprintln(d.Stderr, lipgloss.NewStyle().Foreground(colorError).Render(
				fmt.Sprintf("⚠ Failed to copy to clipboard: %v", err)))
		} else {
			fmt.Fprintln(d.Stderr, successLine("Copied to clipboard"))
		}
	}

	if opts.PDF {
		dir, err := config.GetDownloadDir(cfg)
		if err != nil {
			return err
		}

		spin = nil
		if decorated {
			spin = newSpinner(d.Stderr, "Generating report")
			spin.start()
		}
		exporter := export.NewExporter(client, dir, export.WithLogger(logger))
		path, err := exporter.Export(ctx, msg)
		if err != nil {
			spin.stopWithError()
			fmt.Fprintln(d.Stderr, formatErrorMessage(err, "Report failed"))
			return fmt.Errorf("report failed: %w", err)
		}
		spin.stopWithSuccess("Report saved")
		fmt.Fprintln(d.Stderr, successLine("Report saved to "+path))
	}

	return nil
}

// printAnswer writes msg to stdout in the format selected by opts
func printAnswer(d *Dependencies, cfg config.Config, msg models.Message, opts queryOptions) error {
	switch {
	case opts.JSON:
		payload, err := normalize.ExportPayload(msg)
		if err != nil {
			return err
		}
		data, err := json.Marshal(payload)
		if err != nil {
			return fmt.Errorf("failed to encode analysis: %w", err)
		}
		data = pretty.Pretty(data)
		if isTerminal(d.Stdout) {
			data = pretty.Color(data, nil)
		}
		_, err = d.Stdout.Write(data)
		return err

	case opts.Raw:
		_, err := fmt.Fprintln(d.Stdout, msg.Text)
		return err
	}

	bubbleWidth := min(max(getTerminalWidth(d.Stdout)-4, 40), 120)
	contentWidth := bubbleWidth - 4

	renderOpts := render.OptionsFromConfig(cfg.Markdown, contentWidth)
	palette := render.PaletteFor(renderOpts)

	parts := []string{render.MarkdownOrPlain(msg.Text, renderOpts)}
	if analysis := render.Analysis(msg, contentWidth, 0, palette); analysis != "" {
		parts = append(parts, analysis)
	}
	if msg.Exportable() && !opts.PDF {
		parts = append(parts, lipgloss.NewStyle().Foreground(palette.Warning).Italic(true).
			Render("⬇ "+render.ExportHint+": rerun with --pdf"))
	}

	label := lipgloss.NewStyle().Foreground(palette.Primary).Bold(true).Render("✦ Analyst")
	bubble := lipgloss.NewStyle().
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(palette.Primary).
		Foreground(palette.Text).
		Padding(0, 1).
		MarginTop(1).
		MarginBottom(1).
		Width(bubbleWidth).
		Render(strings.Join(parts, "\n\n"))

	_, err := fmt.Fprintln(d.Stdout, label+"\n"+bubble)
	return err
}

// writeAnswer saves the conversation to path, in the format matching its
// extension (Markdown unless .json, .yaml or .yml)
func writeAnswer(path string, messages []models.Message) error {
	format, err := transcript.ParseFormat(strings.TrimPrefix(filepath.Ext(path), "."))
	if err != nil {
		format = transcript.FormatMarkdown
	}

	data, err := transcript.Encode(format, messages, transcript.DefaultOptions())
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write output file: %w", err)
	}
	return nil
}

func successLine(text string) string {
	return lipgloss.NewStyle().Foreground(colorSuccess).Render("✓ " + text)
}

// isTerminal reports whether w is a terminal
func isTerminal(w any) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

// getTerminalWidth returns the width of w or a default value
func getTerminalWidth(w io.Writer) int {
	f, ok := w.(*os.File)
	if !ok {
		return 80
	}
	width, _, err := term.GetSize(int(f.Fd()))
	if err != nil || width <= 0 {
		return 80
	}
	return width
}

// formatErrorMessage formats an error with additional context from structured errors
func formatErrorMessage(err error, context string) string {
	if err == nil {
		return ""
	}

	errorStyle := lipgloss.NewStyle().Foreground(colorError)
	dimStyle := lipgloss.NewStyle().Foreground(colorTextDim)

	var sb strings.Builder
	sb.WriteString(errorStyle.Render(fmt.Sprintf("✗ %s: %s", context, apierrors.UserMessage(err))))

	if status := apierrors.GetHTTPStatus(err); status > 0 {
		sb.WriteString(dimStyle.Render(fmt.Sprintf("\n  HTTP Status: %d", status)))
	}

	if endpoint := apierrors.GetEndpoint(err); endpoint != "" {
		sb.WriteString(dimStyle.Render(fmt.Sprintf("\n  Endpoint: %s", endpoint)))
	}

	switch {
	case apierrors.IsNetworkError(err):
		sb.WriteString(dimStyle.Render("\n  Hint: Check the service URL (--api-url or " + config.EnvAPIURL + ")"))
	case apierrors.IsTimeoutError(err):
		sb.WriteString(dimStyle.Render("\n  Hint: Raise the timeout with 'estatechat config set request_timeout <seconds>'"))
	case apierrors.IsUnsupportedType(err):
		sb.WriteString(dimStyle.Render("\n  Hint: Use an .xlsx, .xls or .csv file"))
	case apierrors.IsExportError(err):
		sb.WriteString(dimStyle.Render("\n  Hint: The report service failed; the answer itself is unaffected"))
	}

	return sb.String()
}
