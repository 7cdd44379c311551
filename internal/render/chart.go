package render

import (
	"fmt"
	"math"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"

	"github.com/diogo/estatechat/internal/models"
)

const (
	defaultSeriesLabel = "Value"
	defaultTrendLabel  = "Trend"
	minBarWidth        = 10
)

var (
	sparkTicks = []rune("▁▂▃▄▅▆▇█")
	barEighths = []rune("▏▎▍▌▋▊▉")
)

// MetricLabel turns a metric key into a series label: the first underscore
// becomes a space and the result is upper-cased. Without a metric it is "Value".
func MetricLabel(metric *string) string {
	if metric == nil || *metric == "" {
		return defaultSeriesLabel
	}
	return strings.ToUpper(strings.Replace(*metric, "_", " ", 1))
}

// ChartTitle returns the heading of the chart of a
func ChartTitle(a *models.Analysis) string {
	if a == nil {
		return defaultTrendLabel + " Over Time"
	}
	if a.ChartTitle != nil && *a.ChartTitle != "" {
		return *a.ChartTitle
	}
	if a.Metric != nil && *a.Metric != "" {
		return MetricLabel(a.Metric) + " Over Time"
	}
	return defaultTrendLabel + " Over Time"
}

// Chart draws the chart of a within width columns. Single series charts are
// drawn as horizontal bars, multi-series charts as one sparkline per series.
func Chart(a *models.Analysis, width int, p Palette) string {
	if a == nil || a.Chart == nil {
		return ""
	}
	c := a.Chart

	titleStyle := lipgloss.NewStyle().Bold(true).Foreground(p.Primary)
	dimStyle := lipgloss.NewStyle().Foreground(p.TextDim)

	var sb strings.Builder
	sb.WriteString(titleStyle.Render(ChartTitle(a)))
	sb.WriteString("\n")

	if len(c.Labels) == 0 {
		sb.WriteString(dimStyle.Render("No chart data available"))
		return sb.String()
	}

	if c.Kind == models.ChartMulti {
		sb.WriteString(multiSeries(c, width, p))
	} else {
		legend := lipgloss.NewStyle().Foreground(p.SeriesColor(0)).Render("● " + MetricLabel(a.Metric))
		sb.WriteString(legend)
		sb.WriteString("\n")
		sb.WriteString(bars(c.Labels, c.Values, width, p))
	}
	return strings.TrimRight(sb.String(), "\n")
}

func bars(labels []string, values []float64, width int, p Palette) string {
	labelWidth := 0
	for _, l := range labels {
		labelWidth = max(labelWidth, lipgloss.Width(l))
	}

	formatted := make([]string, len(labels))
	valueWidth := 0
	peak := 0.0
	for i := range labels {
		if i < len(values) {
			formatted[i] = FormatNumber(values[i])
			peak = math.Max(peak, math.Abs(values[i]))
		} else {
			formatted[i] = "-"
		}
		valueWidth = max(valueWidth, len(formatted[i]))
	}

	barWidth := max(width-labelWidth-valueWidth-4, minBarWidth)
	labelStyle := lipgloss.NewStyle().Width(labelWidth).Foreground(p.TextDim)
	barStyle := lipgloss.NewStyle().Foreground(p.SeriesColor(0))

	var sb strings.Builder
	for i, label := range labels {
		bar := ""
		if i < len(values) && peak > 0 {
			bar = barString(math.Abs(values[i]) / peak * float64(barWidth))
		}
		fmt.Fprintf(&sb, "%s │%s %s\n", labelStyle.Render(label), barStyle.Render(bar), formatted[i])
	}
	return sb.String()
}

// barString renders cells columns of bar, with eighth-cell precision
func barString(cells float64) string {
	full := int(cells)
	rest := int((cells - float64(full)) * 8)
	s := strings.Repeat("█", full)
	if rest > 0 {
		s += string(barEighths[rest-1])
	}
	return s
}

func multiSeries(c *models.Chart, width int, p Palette) string {
	nameWidth := 0
	for _, s := range c.Series {
		nameWidth = max(nameWidth, lipgloss.Width(strings.ToUpper(s.Name)))
	}

	var sb strings.Builder
	for i, s := range c.Series {
		style := lipgloss.NewStyle().Foreground(p.SeriesColor(i))
		name := lipgloss.NewStyle().Width(nameWidth).Render(strings.ToUpper(s.Name))
		line := Sparkline(s.Data)
		if maxSpark := width - nameWidth - 3; maxSpark > 0 && len([]rune(line)) > maxSpark {
			line = string([]rune(line)[len([]rune(line))-maxSpark:])
		}
		fmt.Fprintf(&sb, "%s %s %s\n", style.Render("●"), name, style.Render(line))

		if lo, hi, ok := bounds(s.Data); ok {
			stats := fmt.Sprintf("min %s  max %s  last %s", FormatNumber(lo), FormatNumber(hi), FormatNumber(s.Data[len(s.Data)-1]))
			fmt.Fprintf(&sb, "  %s %s\n", strings.Repeat(" ", nameWidth), lipgloss.NewStyle().Foreground(p.TextDim).Render(stats))
		}
	}

	first, last := c.Labels[0], c.Labels[len(c.Labels)-1]
	fmt.Fprintf(&sb, "%s\n", lipgloss.NewStyle().Foreground(p.TextDim).Render(first+" → "+last))
	return sb.String()
}

// Sparkline draws values as a row of block characters scaled between their
// minimum and maximum
func Sparkline(values []float64) string {
	lo, hi, ok := bounds(values)
	if !ok {
		return ""
	}

	out := make([]rune, len(values))
	for i, v := range values {
		idx := len(sparkTicks) / 2
		if hi > lo {
			idx = int((v - lo) / (hi - lo) * float64(len(sparkTicks)-1))
		}
		out[i] = sparkTicks[idx]
	}
	return string(out)
}

func bounds(values []float64) (float64, float64, bool) {
	if len(values) == 0 {
		return 0, 0, false
	}
	lo, hi := values[0], values[0]
	for _, v := range values[1:] {
		lo = math.Min(lo, v)
		hi = math.Max(hi, v)
	}
	return lo, hi, true
}

// FormatNumber formats v with thousands separators and at most three decimals
func FormatNumber(v float64) string {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return fmt.Sprint(v)
	}
	return humanize.Commaf(math.Round(v*1000) / 1000)
}
