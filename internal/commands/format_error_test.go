package commands

import (
	"errors"
	"strings"
	"testing"
	"time"

	apierrors "github.com/diogo/estatechat/internal/errors"
)

func TestFormatErrorMessage_Nil(t *testing.T) {
	if got := formatErrorMessage(nil, "ctx"); got != "" {
		t.Fatalf("expected empty for nil error, got %s", got)
	}
}

func TestFormatErrorMessage(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want []string
	}{
		{
			name: "service error",
			err:  apierrors.NewStructuredServiceError(422, "http://x/api/analyze/", "Missing column", "price", nil, false),
			want: []string{"✗ Query: Missing column: price", "HTTP Status: 422", "Endpoint: http://x/api/analyze/"},
		},
		{
			name: "network error",
			err:  apierrors.NewNetworkError("analyze", "http://x/api/analyze/", errors.New("refused")),
			want: []string{apierrors.NoResponseMessage, "Hint", "--api-url"},
		},
		{
			name: "timeout",
			err:  apierrors.NewTimeoutError(30 * time.Second),
			want: []string{"timed out after 30s", "Hint"},
		},
		{
			name: "unsupported type",
			err:  apierrors.NewUnsupportedTypeError("notes.txt", "text/plain"),
			want: []string{".xlsx, .xls or .csv"},
		},
		{
			name: "export",
			err:  apierrors.NewExportError(500, "template error"),
			want: []string{"HTTP Status: 500"},
		},
		{
			name: "plain",
			err:  errors.New("disk full"),
			want: []string{"✗ Query: disk full"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := formatErrorMessage(tt.err, "Query")
			for _, want := range tt.want {
				if !strings.Contains(out, want) {
					t.Errorf("output missing %q:\n%s", want, out)
				}
			}
		})
	}
}
