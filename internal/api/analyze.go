package api

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	fhttp "github.com/bogdanfinn/fhttp"
	"github.com/tidwall/gjson"
	"github.com/tidwall/pretty"

	apierrors "github.com/diogo/estatechat/internal/errors"
	"github.com/diogo/estatechat/internal/models"
)

// Fields of the analytics error body
const (
	errorFieldMessage      = "error"
	errorFieldDetails      = "details"
	errorFieldFoundColumns = "found_columns"
)

// Analyze sends req to the analytics service and validates the response.
// Failures are *errors.NetworkError, *errors.ServiceError, *errors.TimeoutError
// or *errors.UnexpectedError.
func (c *Client) Analyze(ctx context.Context, req *Request) (*models.AnalyticsResponse, error) {
	if c.IsClosed() {
		return nil, apierrors.NewUnexpectedError("client is closed", nil)
	}

	endpoint := c.endpoint(models.PathAnalyze)

	body, contentType, err := encode(req)
	if err != nil {
		return nil, apierrors.NewUnexpectedError(err.Error(), err)
	}

	httpReq, err := fhttp.NewRequestWithContext(ctx, fhttp.MethodPost, endpoint, body)
	if err != nil {
		return nil, apierrors.NewUnexpectedError("failed to create request: "+err.Error(), err)
	}
	c.setHeaders(httpReq)
	httpReq.Header.Set("Content-Type", contentType)

	c.logger.Debug("analyze request",
		"endpoint", endpoint,
		"multipart", req.Multipart(),
		"query_len", len(req.Query))

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, transportError(ctx, "analyze", endpoint, err)
	}
	defer func() { _ = resp.Body.Close() }()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, transportError(ctx, "analyze", endpoint, err)
	}

	if c.logger.Enabled(ctx, slog.LevelDebug) {
		c.logger.Debug("analyze response",
			"status", resp.StatusCode,
			"body", string(pretty.Pretty(data)))
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, parseServiceError(resp.StatusCode, endpoint, data)
	}

	parsed, err := models.ParseAnalyticsResponse(data)
	if err != nil {
		return nil, apierrors.NewUnexpectedError(err.Error(), err)
	}
	return parsed, nil
}

// transportError maps a failed exchange to the error taxonomy
func transportError(ctx context.Context, operation, endpoint string, err error) error {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return apierrors.NewTimeoutError(0)
	}
	return apierrors.NewNetworkError(operation, endpoint, err)
}

// parseServiceError classifies a non-2xx analytics body. Only an object with
// a non-empty string "error" is structured; anything else is kept verbatim.
func parseServiceError(status int, endpoint string, data []byte) *apierrors.ServiceError {
	if gjson.ValidBytes(data) {
		root := gjson.ParseBytes(data)
		msg := root.Get(errorFieldMessage)
		if root.IsObject() && msg.Type == gjson.String && msg.String() != "" {
			details := ""
			if d := root.Get(errorFieldDetails); d.Type == gjson.String {
				details = d.String()
			}

			var columns []string
			cols := root.Get(errorFieldFoundColumns)
			hasColumns := cols.IsArray()
			cols.ForEach(func(_, v gjson.Result) bool {
				columns = append(columns, v.String())
				return true
			})

			return apierrors.NewStructuredServiceError(status, endpoint, msg.String(), details, columns, hasColumns)
		}
		return apierrors.NewUnstructuredServiceError(status, endpoint, strings.TrimSpace(string(pretty.Ugly(data))))
	}

	return apierrors.NewUnstructuredServiceError(status, endpoint, strings.TrimSpace(string(data)))
}

// String describes the request for logs
func (r *Request) String() string {
	if r.Multipart() {
		return fmt.Sprintf("multipart(query=%q, file=%s)", r.Query, r.Attachment.Name)
	}
	return fmt.Sprintf("json(query=%q)", r.Query)
}
