// Package transcript saves the current conversation to disk.
package transcript

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/diogo/estatechat/internal/models"
	"github.com/diogo/estatechat/internal/render"
)

// Format is the on-disk format of a transcript
type Format string

const (
	FormatMarkdown Format = "md"
	FormatJSON     Format = "json"
	FormatYAML     Format = "yaml"
)

// FilePrefix starts the name of every saved transcript
const FilePrefix = "estatechat_transcript_"

// ParseFormat accepts the names users type after /save. Empty means Markdown.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "md", "markdown":
		return FormatMarkdown, nil
	case "json":
		return FormatJSON, nil
	case "yaml", "yml":
		return FormatYAML, nil
	default:
		return "", fmt.Errorf("unknown transcript format %q (use md, json or yaml)", s)
	}
}

// Options configures how a transcript is written
type Options struct {
	Title           string
	ExportedAt      time.Time
	IncludeAnalysis bool // chart and table data of bot messages
}

// DefaultOptions returns the options used by /save
func DefaultOptions() Options {
	return Options{
		Title:           "Real estate analytics session",
		ExportedAt:      time.Now(),
		IncludeAnalysis: true,
	}
}

type document struct {
	Title      string    `json:"title"`
	ExportedAt time.Time `json:"exported_at"`
	Messages   []entry   `json:"messages"`
}

type entry struct {
	ID        string           `json:"id"`
	Role      string           `json:"role"`
	Text      string           `json:"text"`
	Timestamp time.Time        `json:"timestamp"`
	File      *models.FileInfo `json:"file,omitempty"`
	Analysis  *analysis        `json:"analysis,omitempty"`
}

type analysis struct {
	Chart             *models.Chart  `json:"chart,omitempty"`
	Table             *models.Table  `json:"table,omitempty"`
	Metric            *string        `json:"detected_metric,omitempty"`
	ChartTitle        *string        `json:"chart_title,omitempty"`
	MatchedLocations  map[string]any `json:"matched_locations,omitempty"`
	IsGeneralAnalysis *bool          `json:"is_general_analysis,omitempty"`
	Intent            map[string]any `json:"intent,omitempty"`
	FileUsed          *string        `json:"file_used,omitempty"`
}

// resolved drops the placeholder of an in-flight turn
func resolved(messages []models.Message) []models.Message {
	out := make([]models.Message, 0, len(messages))
	for _, m := range messages {
		if !m.IsPending() {
			out = append(out, m)
		}
	}
	return out
}

func roleHeading(k models.Kind) string {
	switch k {
	case models.KindUser:
		return "User"
	case models.KindError:
		return "Error"
	default:
		return "Assistant"
	}
}

// Markdown writes messages as a Markdown document
func Markdown(messages []models.Message, opts Options) string {
	messages = resolved(messages)

	var sb strings.Builder
	sb.WriteString("# ")
	sb.WriteString(opts.Title)
	sb.WriteString("\n\n")
	fmt.Fprintf(&sb, "**Exported:** %s\n", opts.ExportedAt.Format("2006-01-02 15:04:05"))
	fmt.Fprintf(&sb, "**Messages:** %d\n\n---\n\n", len(messages))

	for i, msg := range messages {
		sb.WriteString("## ")
		sb.WriteString(roleHeading(msg.Kind))
		if !msg.CreatedAt.IsZero() {
			fmt.Fprintf(&sb, " (%s)", msg.CreatedAt.Format("15:04:05"))
		}
		sb.WriteString("\n\n")

		sb.WriteString(msg.Text)
		sb.WriteString("\n")

		if msg.File != nil {
			fmt.Fprintf(&sb, "\n%s\n", render.FileLabel(msg.File))
		}
		if opts.IncludeAnalysis && msg.Analysis != nil {
			sb.WriteString(markdownAnalysis(msg.Analysis))
		}

		if i < len(messages)-1 {
			sb.WriteString("\n---\n\n")
		}
	}

	return sb.String()
}

func markdownAnalysis(a *models.Analysis) string {
	var sb strings.Builder

	if c := a.Chart; c != nil {
		fmt.Fprintf(&sb, "\n**Chart:** %s\n\n", render.ChartTitle(a))
		if c.Kind == models.ChartMulti {
			for _, s := range c.Series {
				fmt.Fprintf(&sb, "- %s: %s\n", strings.ToUpper(s.Name), joinNumbers(s.Data))
			}
		} else {
			fmt.Fprintf(&sb, "- %s: %s\n", render.MetricLabel(a.Metric), joinNumbers(c.Values))
		}
		if len(c.Labels) > 0 {
			fmt.Fprintf(&sb, "- Labels: %s\n", strings.Join(c.Labels, ", "))
		}
	}

	if t := a.Table; t.Len() > 0 {
		sb.WriteString("\n")
		sb.WriteString(markdownTable(t))
	}

	if a.FileUsed != nil && *a.FileUsed != "" {
		fmt.Fprintf(&sb, "\n**Data source:** %s\n", *a.FileUsed)
	}
	return sb.String()
}

func joinNumbers(values []float64) string {
	parts := make([]string, len(values))
	for i, v := range values {
		parts[i] = render.FormatNumber(v)
	}
	return strings.Join(parts, ", ")
}

func markdownTable(t *models.Table) string {
	var sb strings.Builder

	headers := make([]string, len(t.Columns))
	for i, c := range t.Columns {
		headers[i] = escapeCell(render.HeaderLabel(c))
	}
	sb.WriteString("| " + strings.Join(headers, " | ") + " |\n")
	sb.WriteString("|" + strings.Repeat(" --- |", len(headers)) + "\n")

	for _, row := range t.Rows {
		cells := make([]string, len(t.Columns))
		for i, col := range t.Columns {
			v, _ := row.Get(col)
			cells[i] = escapeCell(render.FormatCell(v))
		}
		sb.WriteString("| " + strings.Join(cells, " | ") + " |\n")
	}
	return sb.String()
}

func escapeCell(s string) string {
	s = strings.ReplaceAll(s, "|", `\|`)
	return strings.ReplaceAll(s, "\n", " ")
}

func buildDocument(messages []models.Message, opts Options) document {
	messages = resolved(messages)
	doc := document{
		Title:      opts.Title,
		ExportedAt: opts.ExportedAt,
		Messages:   make([]entry, len(messages)),
	}

	for i, msg := range messages {
		e := entry{
			ID:        msg.ID,
			Role:      msg.Kind.String(),
			Text:      msg.Text,
			Timestamp: msg.CreatedAt,
			File:      msg.File,
		}
		if a := msg.Analysis; opts.IncludeAnalysis && a != nil {
			e.Analysis = &analysis{
				Chart:             a.Chart,
				Table:             a.Table,
				Metric:            a.Metric,
				ChartTitle:        a.ChartTitle,
				MatchedLocations:  a.MatchedLocations,
				IsGeneralAnalysis: a.IsGeneralAnalysis,
				Intent:            a.Intent,
				FileUsed:          a.FileUsed,
			}
		}
		doc.Messages[i] = e
	}
	return doc
}

// JSON writes messages as an indented JSON document. Table rows keep the key
// order the service sent.
func JSON(messages []models.Message, opts Options) ([]byte, error) {
	return json.MarshalIndent(buildDocument(messages, opts), "", "  ")
}

// YAML writes the same document as JSON, in YAML block style
func YAML(messages []models.Message, opts Options) ([]byte, error) {
	data, err := json.Marshal(buildDocument(messages, opts))
	if err != nil {
		return nil, err
	}

	// Decoding the JSON into a node tree keeps mapping order.
	var root yaml.Node
	if err := yaml.Unmarshal(data, &root); err != nil {
		return nil, fmt.Errorf("failed to convert transcript: %w", err)
	}
	blockStyle(&root)

	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(&root); err != nil {
		return nil, fmt.Errorf("failed to encode transcript: %w", err)
	}
	if err := enc.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func blockStyle(n *yaml.Node) {
	n.Style = 0
	for _, c := range n.Content {
		blockStyle(c)
	}
}

// Encode writes messages in format
func Encode(format Format, messages []models.Message, opts Options) ([]byte, error) {
	switch format {
	case FormatMarkdown:
		return []byte(Markdown(messages, opts)), nil
	case FormatJSON:
		return JSON(messages, opts)
	case FormatYAML:
		return YAML(messages, opts)
	default:
		return nil, fmt.Errorf("unknown transcript format %q", format)
	}
}

// FileName returns the name a transcript exported at t is saved under
func FileName(format Format, t time.Time) string {
	return FilePrefix + t.UTC().Format("2006-01-02T15-04-05") + "." + string(format)
}

// Save writes messages to dir and returns the absolute path of the file
func Save(dir string, format Format, messages []models.Message, opts Options) (string, error) {
	data, err := Encode(format, messages, opts)
	if err != nil {
		return "", err
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create transcript directory: %w", err)
	}

	path := filepath.Join(dir, FileName(format, opts.ExportedAt))
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("failed to write transcript: %w", err)
	}

	abs, err := filepath.Abs(path)
	if err != nil {
		return path, nil
	}
	return abs, nil
}
