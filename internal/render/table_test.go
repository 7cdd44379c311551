package render

import (
	"strings"
	"testing"

	"github.com/diogo/estatechat/internal/models"
)

func TestHeaderLabel(t *testing.T) {
	tests := map[string]string{
		"year":           "Year",
		"avg_price":      "Avg Price",
		"price_per_sqft": "Price Per Sqft",
		"totalUnits":     "TotalUnits",
	}
	for in, want := range tests {
		if got := HeaderLabel(in); got != want {
			t.Errorf("HeaderLabel(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestFormatCell(t *testing.T) {
	tests := []struct {
		name string
		v    any
		want string
	}{
		{"null", nil, "-"},
		{"float", 5400.5, "5,400.5"},
		{"whole float", 2020.0, "2,020"},
		{"int", 1500, "1,500"},
		{"string", "Wakad", "Wakad"},
		{"bool", true, "true"},
		{"object", map[string]any{"a": 1.0}, `{"a":1}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := FormatCell(tt.v); got != tt.want {
				t.Errorf("FormatCell() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestTable(t *testing.T) {
	resp, err := models.ParseAnalyticsResponse([]byte(`{"summary":"s","table":[
		{"year":2020,"area":"Wakad","avg_price":5400.5},
		{"year":2021,"area":"Aundh","avg_price":null}
	]}`))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}

	out := Table(resp.Table, 0, 0, DarkPalette)
	for _, want := range []string{"Data Table", "Year", "Area", "Avg Price", "2,020", "Wakad", "5,400.5", "Aundh"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
	if strings.Index(out, "Year") > strings.Index(out, "Area") || strings.Index(out, "Area") > strings.Index(out, "Avg Price") {
		t.Error("columns should follow the key order of the first row")
	}

	lines := strings.Split(out, "\n")
	aundh := ""
	for _, l := range lines {
		if strings.Contains(l, "Aundh") {
			aundh = l
		}
	}
	if !strings.Contains(aundh, " - ") {
		t.Errorf("null cell should render as -: %q", aundh)
	}
}

func TestTable_MissingKeyInLaterRow(t *testing.T) {
	table := models.NewTable([]models.Row{
		{models.NewCell("a", 1.0), models.NewCell("b", "x")},
		{models.NewCell("a", 2.0)},
	})
	out := Table(table, 0, 0, DarkPalette)
	if strings.Count(out, " - ") != 1 {
		t.Errorf("missing key should render as a single -:\n%s", out)
	}
}

func TestTable_EmptyAndTruncated(t *testing.T) {
	if Table(nil, 80, 0, DarkPalette) != "" {
		t.Error("nil table should render nothing")
	}
	if Table(models.NewTable(nil), 80, 0, DarkPalette) != "" {
		t.Error("empty table should render nothing")
	}

	out := Table(benchTable(30), 0, 10, DarkPalette)
	if !strings.Contains(out, "… 20 more rows") {
		t.Errorf("truncation note missing:\n%s", out)
	}
	if strings.Contains(out, "Area 10") {
		t.Error("rows past the limit should be hidden")
	}
}

func TestAnalysis(t *testing.T) {
	used := "listings.csv"
	msg := models.NewBotMessage("s", &models.Analysis{
		Chart:    models.NewSingleChart([]string{"2020"}, []float64{1}),
		Table:    benchTable(2),
		FileUsed: &used,
	})

	out := Analysis(msg, 80, 0, DarkPalette)
	for _, want := range []string{"Trend Over Time", "Data Table", "Data source: listings.csv"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q", want)
		}
	}

	if Analysis(models.NewBotMessage("s", &models.Analysis{}), 80, 0, DarkPalette) != "" {
		t.Error("empty analysis should render nothing")
	}
	if Analysis(models.NewErrorMessage("x"), 80, 0, DarkPalette) != "" {
		t.Error("error messages have no analysis")
	}
}

func TestFileLabel(t *testing.T) {
	if FileLabel(nil) != "" {
		t.Error("nil file should render nothing")
	}
	if got := FileLabel(&models.FileInfo{Name: "listings.csv", SizeLabel: "2.0 KB"}); got != "📎 listings.csv (2.0 KB)" {
		t.Errorf("FileLabel() = %q", got)
	}
}
