package transcript

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/diogo/estatechat/internal/models"
)

var exportedAt = time.Date(2026, 3, 4, 10, 30, 0, 0, time.UTC)

func sampleMessages(t *testing.T) []models.Message {
	t.Helper()

	resp, err := models.ParseAnalyticsResponse([]byte(`{
		"summary": "Prices rose in Wakad.",
		"chart": {"labels": ["2020", "2021"], "values": [5000, 5400.5]},
		"table": [{"zeta": 1, "alpha": "Wakad | West"}, {"zeta": 2, "alpha": null}],
		"detected_metric": "average_price",
		"file_used": "listings.csv"
	}`))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	metric, used := *resp.DetectedMetric, *resp.FileUsed

	user := models.NewUserMessage("How did Wakad do?", &models.FileInfo{Name: "listings.csv", SizeLabel: "2.0 KB"})
	user.ID = "u1"
	bot := models.NewBotMessage(resp.Summary, &models.Analysis{
		Chart:    resp.Chart,
		Table:    resp.Table,
		Metric:   &metric,
		FileUsed: &used,
	})
	bot.ID = "b1"
	failed := models.NewErrorMessage("❌ No response from server. Is the service running?")
	failed.ID = "e1"
	pending := models.NewPendingMessage()

	return []models.Message{models.GreetingMessage(), user, bot, failed, pending}
}

func testOptions() Options {
	opts := DefaultOptions()
	opts.ExportedAt = exportedAt
	return opts
}

func TestParseFormat(t *testing.T) {
	tests := []struct {
		in      string
		want    Format
		wantErr bool
	}{
		{"", FormatMarkdown, false},
		{"md", FormatMarkdown, false},
		{"Markdown", FormatMarkdown, false},
		{"json", FormatJSON, false},
		{" yml ", FormatYAML, false},
		{"yaml", FormatYAML, false},
		{"pdf", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseFormat(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseFormat(%q) error = %v", tt.in, err)
			}
			if got != tt.want {
				t.Errorf("ParseFormat(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestMarkdown(t *testing.T) {
	md := Markdown(sampleMessages(t), testOptions())

	for _, want := range []string{
		"# Real estate analytics session",
		"**Exported:** 2026-03-04 10:30:00",
		"**Messages:** 4",
		"## User",
		"## Assistant",
		"## Error",
		"📎 listings.csv (2.0 KB)",
		"**Chart:** AVERAGE PRICE Over Time",
		"- AVERAGE PRICE: 5,000, 5,400.5",
		"- Labels: 2020, 2021",
		"| Zeta | Alpha |",
		`| 1 | Wakad \| West |`,
		"| 2 | - |",
		"**Data source:** listings.csv",
	} {
		if !strings.Contains(md, want) {
			t.Errorf("markdown missing %q:\n%s", want, md)
		}
	}
	if strings.Contains(md, models.PlaceholderText) {
		t.Error("pending placeholder should not be exported")
	}
}

func TestMarkdown_WithoutAnalysis(t *testing.T) {
	opts := testOptions()
	opts.IncludeAnalysis = false

	md := Markdown(sampleMessages(t), opts)
	if strings.Contains(md, "**Chart:**") || strings.Contains(md, "| Zeta") {
		t.Error("analysis should be omitted")
	}
	if !strings.Contains(md, "Prices rose in Wakad.") {
		t.Error("summary should still be exported")
	}
}

func TestJSON(t *testing.T) {
	data, err := JSON(sampleMessages(t), testOptions())
	if err != nil {
		t.Fatalf("JSON() error = %v", err)
	}

	var doc struct {
		Title    string `json:"title"`
		Messages []struct {
			ID       string          `json:"id"`
			Role     string          `json:"role"`
			Text     string          `json:"text"`
			File     *json.RawMessage `json:"file"`
			Analysis *struct {
				Metric string `json:"detected_metric"`
			} `json:"analysis"`
		} `json:"messages"`
	}
	if err := json.Unmarshal(data, &doc); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}

	if len(doc.Messages) != 4 {
		t.Fatalf("messages = %d, want 4", len(doc.Messages))
	}
	roles := []string{"bot", "user", "bot", "error"}
	for i, want := range roles {
		if doc.Messages[i].Role != want {
			t.Errorf("message %d role = %q, want %q", i, doc.Messages[i].Role, want)
		}
	}
	if doc.Messages[1].File == nil {
		t.Error("user message should carry its file")
	}
	if doc.Messages[2].Analysis == nil || doc.Messages[2].Analysis.Metric != "average_price" {
		t.Error("bot message should carry its analysis")
	}
	if doc.Messages[0].Analysis != nil {
		t.Error("greeting has no analysis")
	}

	s := string(data)
	if strings.Index(s, `"zeta"`) > strings.Index(s, `"alpha"`) {
		t.Error("table rows should keep the service key order")
	}
}

func TestYAML(t *testing.T) {
	data, err := YAML(sampleMessages(t), testOptions())
	if err != nil {
		t.Fatalf("YAML() error = %v", err)
	}
	s := string(data)

	if strings.Contains(s, "{") {
		t.Errorf("YAML should use block style:\n%s", s)
	}
	if strings.Index(s, "zeta:") > strings.Index(s, "alpha:") {
		t.Error("table rows should keep the service key order")
	}
	if !strings.Contains(s, "'2020'") && !strings.Contains(s, `"2020"`) {
		t.Error("numeric-looking labels should stay strings")
	}

	var doc struct {
		Title    string `yaml:"title"`
		Messages []struct {
			Role string `yaml:"role"`
			Text string `yaml:"text"`
		} `yaml:"messages"`
	}
	if err := yaml.Unmarshal(data, &doc); err != nil {
		t.Fatalf("invalid YAML: %v", err)
	}
	if doc.Title != "Real estate analytics session" {
		t.Errorf("title = %q", doc.Title)
	}
	if len(doc.Messages) != 4 || doc.Messages[2].Text != "Prices rose in Wakad." {
		t.Errorf("messages = %+v", doc.Messages)
	}
}

func TestEncode_UnknownFormat(t *testing.T) {
	if _, err := Encode("pdf", nil, testOptions()); err == nil {
		t.Error("expected error for unknown format")
	}
}

func TestSave(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "transcripts")

	for _, format := range []Format{FormatMarkdown, FormatJSON, FormatYAML} {
		t.Run(string(format), func(t *testing.T) {
			path, err := Save(dir, format, sampleMessages(t), testOptions())
			if err != nil {
				t.Fatalf("Save() error = %v", err)
			}
			if !filepath.IsAbs(path) {
				t.Errorf("path %q is not absolute", path)
			}
			if filepath.Base(path) != "estatechat_transcript_2026-03-04T10-30-00."+string(format) {
				t.Errorf("file name = %s", filepath.Base(path))
			}
			data, err := os.ReadFile(path)
			if err != nil {
				t.Fatalf("read: %v", err)
			}
			if !strings.Contains(string(data), "Prices rose in Wakad.") {
				t.Error("saved file should contain the summary")
			}
		})
	}
}
