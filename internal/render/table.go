package render

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/diogo/estatechat/internal/models"
)

const nullCell = "-"

var headerCaser = cases.Title(language.English, cases.NoLower)

// HeaderLabel turns a column key into a header: underscores become spaces
// and every word is capitalized
func HeaderLabel(column string) string {
	return headerCaser.String(strings.ReplaceAll(column, "_", " "))
}

// FormatCell renders a table value. Missing and null values are shown as "-".
func FormatCell(v any) string {
	switch val := v.(type) {
	case nil:
		return nullCell
	case float64:
		return FormatNumber(val)
	case int:
		return FormatNumber(float64(val))
	case string:
		return val
	case bool:
		return strconv.FormatBool(val)
	default:
		data, err := json.Marshal(val)
		if err != nil {
			return fmt.Sprint(val)
		}
		return string(data)
	}
}

// Table draws t with at most maxRows rows (all rows when maxRows <= 0).
// An empty table renders nothing.
func Table(t *models.Table, width, maxRows int, p Palette) string {
	if t.Len() == 0 {
		return ""
	}

	headers := make([]string, len(t.Columns))
	for i, c := range t.Columns {
		headers[i] = HeaderLabel(c)
	}

	rows := t.Rows
	hidden := 0
	if maxRows > 0 && len(rows) > maxRows {
		hidden = len(rows) - maxRows
		rows = rows[:maxRows]
	}

	cells := make([][]string, 0, len(rows))
	for _, row := range rows {
		line := make([]string, len(t.Columns))
		for i, col := range t.Columns {
			v, _ := row.Get(col)
			line[i] = FormatCell(v)
		}
		cells = append(cells, line)
	}

	headerStyle := lipgloss.NewStyle().Bold(true).Foreground(p.Primary).Padding(0, 1)
	cellStyle := lipgloss.NewStyle().Foreground(p.Text).Padding(0, 1)
	oddStyle := cellStyle.Foreground(p.TextDim)

	tbl := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(p.Border)).
		Headers(headers...).
		Rows(cells...).
		StyleFunc(func(row, col int) lipgloss.Style {
			switch {
			case row == table.HeaderRow:
				return headerStyle
			case row%2 == 1:
				return oddStyle
			default:
				return cellStyle
			}
		})
	rendered := tbl.String()
	if width > 0 && lipgloss.Width(rendered) > width {
		rendered = tbl.Width(width).String()
	}

	title := lipgloss.NewStyle().Bold(true).Foreground(p.Accent).Render("📊 Data Table")
	out := title + "\n" + rendered
	if hidden > 0 {
		out += "\n" + lipgloss.NewStyle().Foreground(p.TextDim).Render(fmt.Sprintf("… %d more rows", hidden))
	}
	return out
}
