// Package attachment manages the single spreadsheet attached to the next query.
package attachment

import (
	"fmt"
	"io"
	"mime"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"sync"

	apierrors "github.com/diogo/estatechat/internal/errors"
	"github.com/diogo/estatechat/internal/models"
)

var extensionPattern = regexp.MustCompile(`(?i)\.(xlsx|xls|csv)$`)

// Attachment is a spreadsheet selected by the user. The content is opened
// lazily by the transport, once per send.
type Attachment struct {
	Path     string
	Name     string
	Size     int64
	MIMEType string

	open func() (io.ReadCloser, error)
}

// New creates an attachment backed by an arbitrary opener
func New(name string, size int64, mimeType string, open func() (io.ReadCloser, error)) *Attachment {
	return &Attachment{
		Name:     name,
		Size:     size,
		MIMEType: mimeType,
		open:     open,
	}
}

// FromPath creates an attachment for a file on disk
func FromPath(path string) (*Attachment, error) {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve path: %w", err)
	}

	info, err := os.Stat(absPath)
	if err != nil {
		return nil, fmt.Errorf("failed to stat file: %w", err)
	}
	if info.IsDir() {
		return nil, fmt.Errorf("%s is a directory", path)
	}

	a := New(info.Name(), info.Size(), mime.TypeByExtension(filepath.Ext(absPath)), func() (io.ReadCloser, error) {
		return os.Open(absPath)
	})
	a.Path = absPath
	return a, nil
}

// Open returns a reader over the attachment content
func (a *Attachment) Open() (io.ReadCloser, error) {
	if a.open == nil {
		return nil, fmt.Errorf("attachment %s has no content", a.Name)
	}
	return a.open()
}

// Info returns the display information carried by the user message
func (a *Attachment) Info() *models.FileInfo {
	return &models.FileInfo{Name: a.Name, SizeLabel: SizeLabel(a.Size)}
}

// SizeLabel formats a byte count as kilobytes with one decimal
func SizeLabel(size int64) string {
	return fmt.Sprintf("%.1f KB", float64(size)/1024)
}

// Validate checks that a is a supported spreadsheet, by MIME type or by name
func Validate(a *Attachment) error {
	if a == nil {
		return fmt.Errorf("no file selected")
	}
	if supportedMIME(a.MIMEType) || extensionPattern.MatchString(a.Name) {
		return nil
	}
	return apierrors.NewUnsupportedTypeError(a.Name, a.MIMEType)
}

func supportedMIME(mimeType string) bool {
	if mimeType == "" {
		return false
	}
	mediaType, _, err := mime.ParseMediaType(mimeType)
	if err != nil {
		mediaType = strings.ToLower(strings.TrimSpace(mimeType))
	}
	for _, supported := range models.SupportedFileTypes() {
		if mediaType == supported {
			return true
		}
	}
	return false
}

// Manager holds at most one pending attachment
type Manager struct {
	mu      sync.RWMutex
	current *Attachment
}

// NewManager creates an empty attachment manager
func NewManager() *Manager {
	return &Manager{}
}

// Select replaces the current attachment with a. An unsupported file leaves
// the current attachment untouched.
func (m *Manager) Select(a *Attachment) error {
	if err := Validate(a); err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.current = a
	return nil
}

// Remove clears the current attachment
func (m *Manager) Remove() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.current = nil
}

// Current returns the pending attachment, or nil
func (m *Manager) Current() *Attachment {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.current
}
