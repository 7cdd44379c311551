package commands

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/diogo/estatechat/internal/api"
	apierrors "github.com/diogo/estatechat/internal/errors"
	"github.com/diogo/estatechat/internal/models"
)

const tableAnswer = `{
	"summary": "Prices in Wakad rose 8%.",
	"table": [{"year": 2020, "avg_price": 5000}, {"year": 2021, "avg_price": 5400}],
	"detected_metric": "avg_price"
}`

func TestRunQuery_Raw(t *testing.T) {
	env := newTestEnv(t, &api.MockClient{AnalyzeVal: parsed(t, tableAnswer)})

	err := runQuery(context.Background(), env.deps, testConfig(t), "  How is Wakad?  ", queryOptions{Raw: true})
	if err != nil {
		t.Fatalf("runQuery() error = %v", err)
	}
	if got := env.stdout.String(); got != "Prices in Wakad rose 8%.\n" {
		t.Errorf("stdout = %q", got)
	}
	if env.client.LastRequest.Query != "How is Wakad?" {
		t.Errorf("query = %q", env.client.LastRequest.Query)
	}
	if env.client.LastRequest.Multipart() {
		t.Error("question without a file should be sent as JSON")
	}
	if !env.client.CloseCalled {
		t.Error("client should be closed")
	}
}

func TestRunQuery_JSON(t *testing.T) {
	env := newTestEnv(t, &api.MockClient{AnalyzeVal: parsed(t, tableAnswer)})

	if err := runQuery(context.Background(), env.deps, testConfig(t), "q", queryOptions{JSON: true}); err != nil {
		t.Fatalf("runQuery() error = %v", err)
	}

	var payload map[string]any
	if err := json.Unmarshal(env.stdout.Bytes(), &payload); err != nil {
		t.Fatalf("stdout is not JSON: %v\n%s", err, env.stdout.String())
	}
	if payload["summary"] != "Prices in Wakad rose 8%." {
		t.Errorf("summary = %v", payload["summary"])
	}
	if payload["chart_title"] != models.DefaultChartTitle {
		t.Errorf("chart_title = %v", payload["chart_title"])
	}
	if rows, ok := payload["table"].([]any); !ok || len(rows) != 2 {
		t.Errorf("table = %v", payload["table"])
	}
}

func TestRunQuery_Decorated(t *testing.T) {
	env := newTestEnv(t, &api.MockClient{AnalyzeVal: parsed(t, tableAnswer)})

	if err := runQuery(context.Background(), env.deps, testConfig(t), "q", queryOptions{}); err != nil {
		t.Fatalf("runQuery() error = %v", err)
	}

	out := env.stdout.String()
	for _, want := range []string{"✦ Analyst", "Prices in Wakad", "Data Table", "Avg Price", "5,400", "--pdf"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
	if len(env.clipboard) != 0 {
		t.Error("clipboard is off by default")
	}
}

func TestRunQuery_Clipboard(t *testing.T) {
	env := newTestEnv(t, &api.MockClient{AnalyzeVal: parsed(t, tableAnswer)})
	cfg := testConfig(t)
	cfg.CopyToClipboard = true

	if err := runQuery(context.Background(), env.deps, cfg, "q", queryOptions{}); err != nil {
		t.Fatalf("runQuery() error = %v", err)
	}
	if len(env.clipboard) != 1 || env.clipboard[0] != "Prices in Wakad rose 8%." {
		t.Errorf("clipboard = %v", env.clipboard)
	}

	env.deps.CopyToClipboard = func(string) error { return errors.New("no display") }
	if err := runQuery(context.Background(), env.deps, cfg, "q", queryOptions{}); err != nil {
		t.Fatalf("clipboard failure should not fail the query: %v", err)
	}
	if !strings.Contains(env.stderr.String(), "Failed to copy to clipboard") {
		t.Error("clipboard failure should be reported")
	}
}

func TestRunQuery_ServiceFailure(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{"no response", apierrors.NewNetworkError("analyze", "x", errors.New("refused")), apierrors.NoResponseMessage},
		{"structured", apierrors.NewStructuredServiceError(400, "x", "Missing column", "price", []string{"a"}, true), "Missing column: price"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newTestEnv(t, &api.MockClient{AnalyzeErr: tt.err})

			err := runQuery(context.Background(), env.deps, testConfig(t), "q", queryOptions{})
			if err == nil || !strings.Contains(err.Error(), tt.want) {
				t.Fatalf("error = %v, want %q", err, tt.want)
			}
			if !strings.Contains(env.stderr.String(), models.ErrorPrefix+tt.want) {
				t.Errorf("stderr = %q", env.stderr.String())
			}
			if env.stdout.Len() != 0 {
				t.Error("nothing should be printed to stdout")
			}
		})
	}
}

func TestRunQuery_EmptyQuestion(t *testing.T) {
	env := newTestEnv(t, &api.MockClient{})
	if err := runQuery(context.Background(), env.deps, testConfig(t), "   ", queryOptions{}); err == nil {
		t.Fatal("expected error for an empty question")
	}
	if env.client.Calls() != 0 {
		t.Error("service should not be called")
	}
}

func TestRunQuery_Attachment(t *testing.T) {
	dir := t.TempDir()
	csvPath := filepath.Join(dir, "listings.csv")
	if err := os.WriteFile(csvPath, []byte("year,price\n2020,100\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	txtPath := filepath.Join(dir, "notes.txt")
	if err := os.WriteFile(txtPath, []byte("hello"), 0o644); err != nil {
		t.Fatal(err)
	}

	t.Run("accepted", func(t *testing.T) {
		env := newTestEnv(t, &api.MockClient{AnalyzeVal: parsed(t, tableAnswer)})
		if err := runQuery(context.Background(), env.deps, testConfig(t), "q", queryOptions{File: csvPath, Raw: true}); err != nil {
			t.Fatalf("runQuery() error = %v", err)
		}
		req := env.client.LastRequest
		if !req.Multipart() || req.Attachment.Name != "listings.csv" {
			t.Errorf("request = %s", req)
		}
	})

	t.Run("rejected", func(t *testing.T) {
		env := newTestEnv(t, &api.MockClient{})
		err := runQuery(context.Background(), env.deps, testConfig(t), "q", queryOptions{File: txtPath})
		if !apierrors.IsUnsupportedType(err) {
			t.Fatalf("error = %v, want unsupported type", err)
		}
		if env.client.Calls() != 0 {
			t.Error("service should not be called")
		}
		if !strings.Contains(env.stderr.String(), "Cannot attach file") {
			t.Errorf("stderr = %q", env.stderr.String())
		}
	})

	t.Run("missing", func(t *testing.T) {
		env := newTestEnv(t, &api.MockClient{})
		if err := runQuery(context.Background(), env.deps, testConfig(t), "q", queryOptions{File: filepath.Join(dir, "nope.csv")}); err == nil {
			t.Fatal("expected error for a missing file")
		}
	})
}

func TestRunQuery_Output(t *testing.T) {
	tests := []struct {
		file string
		want string
	}{
		{"answer.md", "## Assistant"},
		{"answer.json", `"role": "bot"`},
		{"answer.yaml", "role: bot"},
		{"answer.txt", "## Assistant"},
	}
	for _, tt := range tests {
		t.Run(tt.file, func(t *testing.T) {
			env := newTestEnv(t, &api.MockClient{AnalyzeVal: parsed(t, tableAnswer)})
			path := filepath.Join(t.TempDir(), tt.file)

			if err := runQuery(context.Background(), env.deps, testConfig(t), "q", queryOptions{Output: path}); err != nil {
				t.Fatalf("runQuery() error = %v", err)
			}
			data, err := os.ReadFile(path)
			if err != nil {
				t.Fatalf("read: %v", err)
			}
			if !strings.Contains(string(data), tt.want) {
				t.Errorf("%s missing %q:\n%s", tt.file, tt.want, data)
			}
			if env.stdout.Len() != 0 {
				t.Error("answer should go to the file only")
			}
		})
	}
}

func TestRunQuery_PDF(t *testing.T) {
	t.Run("saved", func(t *testing.T) {
		env := newTestEnv(t, &api.MockClient{AnalyzeVal: parsed(t, tableAnswer), PDFVal: []byte("%PDF-1.4")})
		cfg := testConfig(t)

		if err := runQuery(context.Background(), env.deps, cfg, "q", queryOptions{PDF: true}); err != nil {
			t.Fatalf("runQuery() error = %v", err)
		}
		matches, _ := filepath.Glob(filepath.Join(cfg.DownloadDir, models.ReportFilePrefix+"*.pdf"))
		if len(matches) != 1 {
			t.Fatalf("reports = %v", matches)
		}
		if !strings.Contains(env.stderr.String(), "Report saved to "+matches[0]) {
			t.Errorf("stderr = %q", env.stderr.String())
		}
		if env.client.LastPayload == nil || env.client.LastPayload.Summary != "Prices in Wakad rose 8%." {
			t.Errorf("payload = %+v", env.client.LastPayload)
		}
		if strings.Contains(env.stdout.String(), "--pdf") {
			t.Error("the --pdf hint should not be shown when exporting")
		}
	})

	t.Run("service error", func(t *testing.T) {
		env := newTestEnv(t, &api.MockClient{
			AnalyzeVal: parsed(t, tableAnswer),
			PDFErr:     apierrors.NewExportError(500, "template error"),
		})
		cfg := testConfig(t)

		err := runQuery(context.Background(), env.deps, cfg, "q", queryOptions{PDF: true})
		if !apierrors.IsExportError(err) {
			t.Fatalf("error = %v, want export error", err)
		}
		entries, _ := os.ReadDir(cfg.DownloadDir)
		if len(entries) != 0 {
			t.Errorf("no file should be left behind, found %d", len(entries))
		}
	})
}

func TestRunQuery_ClientError(t *testing.T) {
	env := newTestEnv(t, &api.MockClient{})
	env.deps.NewClient = newAPIClient

	cfg := testConfig(t)
	cfg.APIBaseURL = "ftp://example.com"
	if err := runQuery(context.Background(), env.deps, cfg, "q", queryOptions{}); err == nil {
		t.Fatal("expected error for an invalid base URL")
	}
}
