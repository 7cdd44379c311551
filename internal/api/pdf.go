package api

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"strings"

	fhttp "github.com/bogdanfinn/fhttp"

	apierrors "github.com/diogo/estatechat/internal/errors"
	"github.com/diogo/estatechat/internal/models"
)

// maxErrorDetail caps how much of a failed PDF response is kept as detail
const maxErrorDetail = 4096

// RenderPDF asks the PDF service to render payload. On success the caller
// owns the returned body and must close it.
func (c *Client) RenderPDF(ctx context.Context, payload models.ExportPayload) (io.ReadCloser, error) {
	if c.IsClosed() {
		return nil, apierrors.NewUnexpectedError("client is closed", nil)
	}

	endpoint := c.endpoint(models.PathExportPDF)

	body, err := json.Marshal(payload)
	if err != nil {
		return nil, apierrors.NewUnexpectedError("failed to encode export payload: "+err.Error(), err)
	}

	req, err := fhttp.NewRequestWithContext(ctx, fhttp.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, apierrors.NewUnexpectedError("failed to create request: "+err.Error(), err)
	}
	c.setHeaders(req)
	req.Header.Set("Content-Type", ContentTypeJSON)
	req.Header.Set("Accept", "application/pdf")

	c.logger.Debug("export request", "endpoint", endpoint, "payload_bytes", len(body))

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, transportError(ctx, "export", endpoint, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		defer func() { _ = resp.Body.Close() }()
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorDetail))
		c.logger.Debug("export failed", "status", resp.StatusCode, "detail", string(detail))
		return nil, apierrors.NewExportError(resp.StatusCode, strings.TrimSpace(string(detail)))
	}

	return resp.Body, nil
}
