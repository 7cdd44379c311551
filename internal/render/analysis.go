package render

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/diogo/estatechat/internal/models"
)

// DefaultMaxTableRows caps the rows drawn inline for one analysis
const DefaultMaxTableRows = 25

// ExportHint is shown under messages that offer a PDF report
const ExportHint = "Download Report (PDF)"

// Analysis draws the chart, the table and the data source of a bot message,
// separated by blank lines. It returns "" when there is nothing to draw.
func Analysis(msg models.Message, width, maxRows int, p Palette) string {
	if !msg.IsBot() || msg.Analysis == nil {
		return ""
	}
	a := msg.Analysis

	var sections []string
	if chart := Chart(a, width, p); chart != "" {
		sections = append(sections, chart)
	}
	if tbl := Table(a.Table, width, maxRows, p); tbl != "" {
		sections = append(sections, tbl)
	}
	if a.FileUsed != nil && *a.FileUsed != "" {
		sections = append(sections, lipgloss.NewStyle().Foreground(p.TextDim).Render("📁 Data source: "+*a.FileUsed))
	}
	return strings.Join(sections, "\n\n")
}

// FileLabel describes the attachment of a user message
func FileLabel(f *models.FileInfo) string {
	if f == nil {
		return ""
	}
	return "📎 " + f.Name + " (" + f.SizeLabel + ")"
}
