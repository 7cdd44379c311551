package tui

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/diogo/estatechat/internal/attachment"
	"github.com/diogo/estatechat/internal/conversation"
	"github.com/diogo/estatechat/internal/models"
	"github.com/diogo/estatechat/internal/render"
	"github.com/diogo/estatechat/internal/transcript"
)

// Animation tick message
type animationTickMsg time.Time

// Message types for the TUI
type (
	turnResolvedMsg struct {
		msg models.Message
	}
	exportDoneMsg struct {
		path string
		err  error
	}
)

// Exporter saves a bot message as a PDF report and returns its path
type Exporter interface {
	Export(ctx context.Context, msg models.Message) (string, error)
}

// ErrNoReport is shown when /export finds nothing to export
var ErrNoReport = errors.New("no analysis with a chart or table to export")

const helpText = `Commands:
  /attach <path>        attach an .xlsx, .xls or .csv file to the next questions
  /detach               remove the attached file
  /export [n]           save message #n (default: the latest analysis) as a PDF report
  /save [md|json|yaml]  save this conversation as a transcript
  /help                 show this help
  exit                  quit`

// Model represents the TUI state
type Model struct {
	controller    *conversation.Controller
	files         *attachment.Manager
	exporter      Exporter
	transcriptDir string
	subtitle      string
	renderOpts    render.Options

	// UI components
	viewport viewport.Model
	textarea textarea.Model
	spinner  spinner.Model

	// State
	loading        bool
	exporting      bool
	cancelTurn     context.CancelFunc
	ready          bool
	notice         string
	err            error
	animationFrame int

	// Dimensions
	width  int
	height int
}

// ModelOption configures the chat model
type ModelOption func(*Model)

// WithExporter enables /export
func WithExporter(e Exporter) ModelOption {
	return func(m *Model) {
		m.exporter = e
	}
}

// WithTranscriptDir sets where /save writes transcripts
func WithTranscriptDir(dir string) ModelOption {
	return func(m *Model) {
		m.transcriptDir = dir
	}
}

// WithSubtitle sets the text shown next to the title, usually the backend URL
func WithSubtitle(s string) ModelOption {
	return func(m *Model) {
		m.subtitle = s
	}
}

// WithRenderOptions sets the markdown options of bot messages
func WithRenderOptions(opts render.Options) ModelOption {
	return func(m *Model) {
		m.renderOpts = opts
	}
}

// NewChatModel creates a chat model driving controller. files holds the
// attachment sent with each question.
func NewChatModel(controller *conversation.Controller, files *attachment.Manager, opts ...ModelOption) Model {
	ta := textarea.New()
	ta.Placeholder = "Ask about prices, demand or trends..."
	ta.CharLimit = 4000
	ta.ShowLineNumbers = false
	ta.SetHeight(2)
	ta.Focus()

	ta.FocusedStyle.CursorLine = lipgloss.NewStyle()
	ta.FocusedStyle.Base = lipgloss.NewStyle().Foreground(colorText)
	ta.FocusedStyle.Placeholder = lipgloss.NewStyle().Foreground(colorTextDim)
	ta.BlurredStyle = ta.FocusedStyle

	s := spinner.New()
	s.Spinner = spinner.Points
	s.Style = loadingStyle

	if files == nil {
		files = attachment.NewManager()
	}

	m := Model{
		controller: controller,
		files:      files,
		renderOpts: render.DefaultOptions(),
		textarea:   ta,
		spinner:    s,
	}
	for _, opt := range opts {
		opt(&m)
	}
	return m
}

// Init initializes the model
func (m Model) Init() tea.Cmd {
	return tea.Batch(
		textarea.Blink,
		m.spinner.Tick,
	)
}

func animationTick() tea.Cmd {
	return tea.Tick(time.Millisecond*80, func(t time.Time) tea.Msg {
		return animationTickMsg(t)
	})
}

// Update handles messages and updates the model
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

		headerHeight := 4
		inputHeight := 7 // input panel plus the attachment line
		statusHeight := 1
		padding := 2

		vpHeight := max(m.height-headerHeight-inputHeight-statusHeight-padding, 5)
		contentWidth := m.width - 4

		if !m.ready {
			m.viewport = viewport.New(contentWidth, vpHeight)
			m.ready = true
		} else {
			m.viewport.Width = contentWidth
			m.viewport.Height = vpHeight
		}
		m.textarea.SetWidth(contentWidth - 4)
		m.updateViewport()
		m.viewport.GotoBottom()

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c":
			m.cancel()
			return m, tea.Quit

		case "esc":
			if m.loading {
				// the turn resolves with a cancellation message
				m.cancel()
				return m, nil
			}
			return m, tea.Quit

		case "enter":
			input := strings.TrimSpace(m.textarea.Value())
			if m.loading || input == "" {
				return m, nil
			}
			if input == "exit" || input == "quit" || input == "/exit" || input == "/quit" {
				return m, tea.Quit
			}

			m.textarea.Reset()
			m.notice = ""
			m.err = nil

			if strings.HasPrefix(input, "/") {
				cmd = m.runCommand(input)
				m.updateViewport()
				return m, cmd
			}
			cmd = m.send(input)
			return m, cmd
		}

	case turnResolvedMsg:
		m.loading = false
		m.cancel()
		m.updateViewport()
		m.viewport.GotoBottom()

	case exportDoneMsg:
		m.exporting = false
		if msg.err != nil {
			m.err = msg.err
		} else {
			m.notice = "📄 Report saved to " + msg.path
		}

	case spinner.TickMsg:
		m.spinner, cmd = m.spinner.Update(msg)
		cmds = append(cmds, cmd)
		if m.loading {
			m.updateViewport()
		}

	case animationTickMsg:
		if m.loading {
			m.animationFrame++
			cmds = append(cmds, animationTick())
		}
	}

	// Only pass KeyMsg to textarea to prevent escape sequence leaks
	if !m.loading {
		if _, ok := msg.(tea.KeyMsg); ok {
			m.textarea, cmd = m.textarea.Update(msg)
			cmds = append(cmds, cmd)
		}
	}

	m.viewport, cmd = m.viewport.Update(msg)
	cmds = append(cmds, cmd)

	return m, tea.Batch(cmds...)
}

// send submits a question with the current attachment
func (m *Model) send(input string) tea.Cmd {
	turn, err := m.controller.Submit(input, m.files.Current())
	if err != nil {
		m.err = err
		return nil
	}

	ctx, cancel := context.WithCancel(context.Background())
	m.cancelTurn = cancel
	m.loading = true
	m.animationFrame = 0
	m.updateViewport()
	m.viewport.GotoBottom()

	return tea.Batch(
		resolveTurn(ctx, turn),
		m.spinner.Tick,
		animationTick(),
	)
}

func resolveTurn(ctx context.Context, turn *conversation.Turn) tea.Cmd {
	return func() tea.Msg {
		return turnResolvedMsg{msg: turn.Resolve(ctx)}
	}
}

func (m *Model) cancel() {
	if m.cancelTurn != nil {
		m.cancelTurn()
		m.cancelTurn = nil
	}
}

// runCommand executes a slash command and returns the follow-up command
func (m *Model) runCommand(input string) tea.Cmd {
	name, arg, _ := strings.Cut(input, " ")
	arg = strings.TrimSpace(arg)

	switch strings.ToLower(name) {
	case "/help":
		m.notice = helpText

	case "/attach":
		if arg == "" {
			m.err = errors.New("usage: /attach <path>")
			return nil
		}
		a, err := attachment.FromPath(arg)
		if err != nil {
			m.err = err
			return nil
		}
		if err := m.files.Select(a); err != nil {
			m.err = err
			return nil
		}
		m.notice = "Attached " + render.FileLabel(a.Info())

	case "/detach":
		if m.files.Current() == nil {
			m.notice = "No file attached"
			return nil
		}
		m.files.Remove()
		m.notice = "Attachment removed"

	case "/export":
		return m.exportMessage(arg)

	case "/save":
		format, err := transcript.ParseFormat(arg)
		if err != nil {
			m.err = err
			return nil
		}
		path, err := transcript.Save(m.transcriptDir, format, m.controller.Store().Snapshot(), transcript.DefaultOptions())
		if err != nil {
			m.err = err
			return nil
		}
		m.notice = "💾 Transcript saved to " + path

	default:
		m.err = fmt.Errorf("unknown command %s (try /help)", name)
	}
	return nil
}

// exportMessage starts the export of message #arg, or of the latest
// exportable analysis when arg is empty
func (m *Model) exportMessage(arg string) tea.Cmd {
	if m.exporter == nil {
		m.err = errors.New("PDF export is not configured")
		return nil
	}
	if m.exporting {
		m.err = errors.New("an export is already in progress")
		return nil
	}

	msg, err := m.exportTarget(arg)
	if err != nil {
		m.err = err
		return nil
	}

	m.exporting = true
	m.notice = "Generating report..."
	exporter := m.exporter
	return func() tea.Msg {
		path, err := exporter.Export(context.Background(), msg)
		return exportDoneMsg{path: path, err: err}
	}
}

func (m Model) exportTarget(arg string) (models.Message, error) {
	store := m.controller.Store()

	if arg == "" {
		snapshot := store.Snapshot()
		for i := len(snapshot) - 1; i >= 0; i-- {
			if snapshot[i].Exportable() {
				return snapshot[i], nil
			}
		}
		return models.Message{}, ErrNoReport
	}

	n, err := strconv.Atoi(strings.TrimPrefix(arg, "#"))
	if err != nil {
		return models.Message{}, fmt.Errorf("invalid message number %q", arg)
	}
	msg, ok := store.Get(n - 1)
	if !ok {
		return models.Message{}, fmt.Errorf("no message #%d", n)
	}
	if !msg.IsBot() {
		return models.Message{}, fmt.Errorf("message #%d is not an analysis", n)
	}
	return msg, nil
}

// View renders the TUI
func (m Model) View() string {
	if !m.ready {
		return loadingStyle.Render("  Initializing...")
	}

	var sections []string
	contentWidth := m.width - 4

	// Header
	headerParts := []string{titleStyle.Render("🏠 Real Estate Analytics")}
	if m.subtitle != "" {
		headerParts = append(headerParts,
			hintStyle.Render("  •  "),
			subtitleStyle.Render(m.subtitle),
		)
	}
	headerContent := lipgloss.JoinHorizontal(lipgloss.Center, headerParts...)
	sections = append(sections, headerStyle.Width(contentWidth).Render(headerContent))

	// Messages
	var messagesContent string
	if m.controller.Store().Len() == 0 {
		messagesContent = m.renderWelcome()
	} else {
		messagesContent = m.viewport.View()
	}
	sections = append(sections, messagesAreaStyle.
		Width(contentWidth).
		Height(m.viewport.Height).
		Render(messagesContent))

	// Input
	var inputContent string
	if m.loading {
		inputContent = m.renderLoadingAnimation()
	} else {
		inputContent = lipgloss.JoinVertical(
			lipgloss.Left,
			m.renderAttachment(),
			inputLabelStyle.Render("You"),
			m.textarea.View(),
		)
	}
	sections = append(sections, inputPanelStyle.Width(contentWidth).Render(inputContent))

	sections = append(sections, m.renderStatusBar(contentWidth))

	if m.err != nil {
		sections = append(sections, FormatError(m.err))
	} else if m.notice != "" {
		sections = append(sections, noticeStyle.Render(m.notice))
	}

	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

func (m Model) renderWelcome() string {
	width := m.viewport.Width - 4
	height := m.viewport.Height

	content := lipgloss.JoinVertical(
		lipgloss.Center,
		"",
		welcomeIconStyle.Width(width).Render("🏠"),
		welcomeTitleStyle.Width(width).Render(models.GreetingText),
		welcomeStyle.Width(width).Render("Attach a spreadsheet with /attach or just ask a question"),
		"",
	)

	topPadding := max((height-lipgloss.Height(content))/2, 0)
	return strings.Repeat("\n", topPadding) + content
}

func (m Model) renderAttachment() string {
	a := m.files.Current()
	if a == nil {
		return hintStyle.Render("No file attached  (/attach <path>)")
	}
	return fileStyle.Render(render.FileLabel(a.Info())) + hintStyle.Render("  (/detach to remove)")
}

// renderLoadingAnimation renders the colorful indicator shown while a turn
// is unresolved
func (m Model) renderLoadingAnimation() string {
	chars := []string{"⣾", "⣽", "⣻", "⢿", "⡿", "⣟", "⣯", "⣷"}
	barChars := []string{"█", "█", "█", "█", "█", "█", "█", "█", "▓", "▒", "░"}

	frame := m.animationFrame

	spinIdx := frame % len(chars)
	spinColor := gradientColors[frame%len(gradientColors)]
	spin := lipgloss.NewStyle().Foreground(spinColor).Bold(true).Render(chars[spinIdx])

	barWidth := 20
	var bar strings.Builder
	for i := 0; i < barWidth; i++ {
		colorIdx := (i + frame) % len(gradientColors)
		charIdx := (i + frame/2) % len(barChars)
		bar.WriteString(lipgloss.NewStyle().Foreground(gradientColors[colorIdx]).Render(barChars[charIdx]))
	}

	text := lipgloss.NewStyle().Foreground(colorText).Render(" " + models.PlaceholderText + " ")
	hint := hintStyle.Render("(Esc to cancel)")

	return fmt.Sprintf("%s %s %s %s", spin, bar.String(), text, hint)
}

func (m Model) renderStatusBar(width int) string {
	shortcuts := []struct {
		key  string
		desc string
	}{
		{"Enter", "Send"},
		{"Esc", "Cancel/Quit"},
		{"↑↓", "Scroll"},
		{"/help", "Commands"},
	}

	var items []string
	for _, s := range shortcuts {
		items = append(items, lipgloss.JoinHorizontal(
			lipgloss.Center,
			statusKeyStyle.Render(s.key),
			statusDescStyle.Render(" "+s.desc),
		))
	}

	bar := strings.Join(items, "  │  ")
	return statusBarStyle.Width(width).Align(lipgloss.Center).Render(bar)
}

// updateViewport redraws the conversation from the store
func (m *Model) updateViewport() {
	var content strings.Builder
	bubbleWidth := m.viewport.Width - 6
	innerWidth := max(bubbleWidth-4, 20)
	palette := CurrentPalette()

	for i, msg := range m.controller.Store().Snapshot() {
		if i > 0 {
			content.WriteString("\n")
		}
		number := hintStyle.Render(fmt.Sprintf("  #%d", i+1))

		switch msg.Kind {
		case models.KindUser:
			body := msg.Text
			if msg.File != nil {
				body += "\n" + fileStyle.Render(render.FileLabel(msg.File))
			}
			content.WriteString(userLabelStyle.Render("● You") + number + "\n")
			content.WriteString(userBubbleStyle.Width(bubbleWidth).Render(body))

		case models.KindPending:
			content.WriteString(botLabelStyle.Render("✦ Analyst") + "\n")
			content.WriteString(botBubbleStyle.Width(bubbleWidth).Render(
				m.spinner.View() + " " + pendingStyle.Render(msg.Text)))

		case models.KindError:
			content.WriteString(errorLabelStyle.Render("✦ Analyst") + number + "\n")
			content.WriteString(errorBubbleStyle.Width(bubbleWidth).Render(msg.Text))

		default:
			parts := []string{render.MarkdownOrPlain(msg.Text, m.renderOpts.WithWidth(innerWidth))}
			if analysis := render.Analysis(msg, innerWidth, render.DefaultMaxTableRows, palette); analysis != "" {
				parts = append(parts, analysis)
			}
			if msg.Exportable() {
				parts = append(parts, exportHintStyle.Render(fmt.Sprintf("⬇ %s: /export %d", render.ExportHint, i+1)))
			}
			content.WriteString(botLabelStyle.Render("✦ Analyst") + number + "\n")
			content.WriteString(botBubbleStyle.Width(bubbleWidth).Render(strings.Join(parts, "\n\n")))
		}
		content.WriteString("\n")
	}

	m.viewport.SetContent(content.String())
}

// RunChat starts the chat TUI
func RunChat(controller *conversation.Controller, files *attachment.Manager, opts ...ModelOption) error {
	m := NewChatModel(controller, files, opts...)

	p := tea.NewProgram(
		m,
		tea.WithAltScreen(),
	)

	_, err := p.Run()
	return err
}
