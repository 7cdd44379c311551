package commands

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/diogo/estatechat/internal/attachment"
	"github.com/diogo/estatechat/internal/config"
	"github.com/diogo/estatechat/internal/conversation"
	"github.com/diogo/estatechat/internal/export"
	"github.com/diogo/estatechat/internal/logging"
	"github.com/diogo/estatechat/internal/models"
	"github.com/diogo/estatechat/internal/render"
	"github.com/diogo/estatechat/internal/tui"
)

var chatFileFlag string

var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Start an interactive chat session",
	Long: `Start an interactive chat session with the analytics service.

Attach a spreadsheet with /attach <path> (or --file) and ask questions about
it; every question is sent with the attached file until /detach. Use
/export to save an analysis as a PDF report and /save to keep a transcript.
Type 'exit', 'quit', or press Ctrl+C to end the session.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		return runChat(deps, cfg, chatFileFlag)
	},
}

func init() {
	chatCmd.Flags().StringVarP(&chatFileFlag, "file", "f", "", "Spreadsheet to attach at start (.xlsx, .xls or .csv)")
}

func runChat(d *Dependencies, cfg config.Config, file string) error {
	// the alt screen owns the terminal, so logs go to a file
	logger, closer, err := chatLogger(cfg)
	if err != nil {
		return err
	}
	defer func() { _ = closer.Close() }()

	files := attachment.NewManager()
	if file != "" {
		a, err := attachment.FromPath(file)
		if err == nil {
			err = files.Select(a)
		}
		if err != nil {
			fmt.Fprintln(d.Stderr, formatErrorMessage(err, "Cannot attach file"))
			return fmt.Errorf("cannot attach file: %w", err)
		}
	}

	client, err := d.NewClient(cfg, logger)
	if err != nil {
		return fmt.Errorf("failed to create client: %w", err)
	}
	defer client.Close()

	dir, err := config.GetDownloadDir(cfg)
	if err != nil {
		return err
	}

	controller := conversation.NewController(
		conversation.NewStore(models.GreetingMessage()),
		client,
		conversation.WithTimeout(cfg.Timeout()),
		conversation.WithLogger(logger),
	)

	renderOpts := render.OptionsFromConfig(cfg.Markdown, 0)
	tui.ApplyPalette(render.PaletteFor(renderOpts))

	logger.Info("chat started", "api", client.BaseURL(), "download_dir", dir)
	return d.TUI.RunChat(controller, files,
		tui.WithExporter(export.NewExporter(client, dir, export.WithLogger(logger))),
		tui.WithTranscriptDir(dir),
		tui.WithSubtitle(client.BaseURL()),
		tui.WithRenderOptions(renderOpts),
	)
}

func chatLogger(cfg config.Config) (*slog.Logger, io.Closer, error) {
	dir, err := config.EnsureConfigDir()
	if err != nil {
		return nil, nil, err
	}
	return logging.OpenFile(dir, cfg.Verbose)
}
