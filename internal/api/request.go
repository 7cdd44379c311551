package api

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/textproto"
	"strings"

	"github.com/diogo/estatechat/internal/attachment"
)

// Form field names of the analyze endpoint
const (
	FieldQuery = "query"
	FieldFile  = "file"
)

// ContentTypeJSON is declared on JSON request bodies
const ContentTypeJSON = "application/json"

// Request describes one outbound analyze call. It references the attachment
// without opening it; the content is read by the transport at send time.
type Request struct {
	Query      string
	Attachment *attachment.Attachment
}

// BuildRequest describes the analyze call for text and an optional attachment.
func BuildRequest(text string, att *attachment.Attachment) *Request {
	return &Request{Query: text, Attachment: att}
}

// Multipart reports whether the request is sent as multipart/form-data
func (r *Request) Multipart() bool {
	return r.Attachment != nil
}

// ContentType returns the declared content type. It is empty for multipart
// requests, whose boundary is only known once the body is written.
func (r *Request) ContentType() string {
	if r.Multipart() {
		return ""
	}
	return ContentTypeJSON
}

// JSONBody returns the body of a request without attachment
func (r *Request) JSONBody() ([]byte, error) {
	return json.Marshal(map[string]string{FieldQuery: r.Query})
}

// encode writes the request body and returns it with its content type
func encode(r *Request) (io.Reader, string, error) {
	if !r.Multipart() {
		body, err := r.JSONBody()
		if err != nil {
			return nil, "", fmt.Errorf("failed to encode query: %w", err)
		}
		return bytes.NewReader(body), ContentTypeJSON, nil
	}

	src, err := r.Attachment.Open()
	if err != nil {
		return nil, "", fmt.Errorf("failed to open %s: %w", r.Attachment.Name, err)
	}
	defer func() { _ = src.Close() }()

	var body bytes.Buffer
	writer := multipart.NewWriter(&body)

	if err := writer.WriteField(FieldQuery, r.Query); err != nil {
		return nil, "", fmt.Errorf("failed to write query field: %w", err)
	}

	mimeType := r.Attachment.MIMEType
	if mimeType == "" {
		mimeType = "application/octet-stream"
	}
	header := make(textproto.MIMEHeader)
	header.Set("Content-Disposition", fmt.Sprintf(`form-data; name="%s"; filename="%s"`,
		FieldFile, quoteEscaper.Replace(r.Attachment.Name)))
	header.Set("Content-Type", mimeType)

	part, err := writer.CreatePart(header)
	if err != nil {
		return nil, "", fmt.Errorf("failed to create form file: %w", err)
	}
	if _, err := io.Copy(part, src); err != nil {
		return nil, "", fmt.Errorf("failed to write file data: %w", err)
	}
	if err := writer.Close(); err != nil {
		return nil, "", fmt.Errorf("failed to finish multipart body: %w", err)
	}

	return &body, writer.FormDataContentType(), nil
}

var quoteEscaper = strings.NewReplacer("\\", "\\\\", `"`, "\\\"")
