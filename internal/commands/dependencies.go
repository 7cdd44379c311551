package commands

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/atotto/clipboard"

	"github.com/diogo/estatechat/internal/api"
	"github.com/diogo/estatechat/internal/attachment"
	"github.com/diogo/estatechat/internal/config"
	"github.com/diogo/estatechat/internal/conversation"
	"github.com/diogo/estatechat/internal/tui"
)

// TUIInterface defines the methods required from the TUI package.
type TUIInterface interface {
	RunChat(controller *conversation.Controller, files *attachment.Manager, opts ...tui.ModelOption) error
}

// Dependencies holds the external dependencies for the commands.
// This allows for dependency injection and easier testing.
type Dependencies struct {
	// NewClient builds the backend client from the effective config.
	NewClient func(cfg config.Config, logger *slog.Logger) (api.ClientInterface, error)

	// TUI is the terminal user interface.
	TUI TUIInterface

	// CopyToClipboard writes text to the system clipboard.
	CopyToClipboard func(text string) error

	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer
}

// DefaultTUI is the production implementation of TUIInterface.
type DefaultTUI struct{}

func (d *DefaultTUI) RunChat(controller *conversation.Controller, files *attachment.Manager, opts ...tui.ModelOption) error {
	return tui.RunChat(controller, files, opts...)
}

// NewDependencies creates a new Dependencies struct with default implementations.
func NewDependencies() *Dependencies {
	return &Dependencies{
		NewClient:       newAPIClient,
		TUI:             &DefaultTUI{},
		CopyToClipboard: writeClipboard,
		Stdin:           os.Stdin,
		Stdout:          os.Stdout,
		Stderr:          os.Stderr,
	}
}

func newAPIClient(cfg config.Config, logger *slog.Logger) (api.ClientInterface, error) {
	client, err := api.NewClient(cfg.APIBaseURL, api.WithLogger(logger))
	if err != nil {
		return nil, err
	}
	return client, nil
}

func writeClipboard(text string) error {
	if clipboard.Unsupported {
		return fmt.Errorf("clipboard is not available on this system")
	}
	return clipboard.WriteAll(text)
}
