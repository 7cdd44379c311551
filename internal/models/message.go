package models

import "time"

// Kind tags the variant of a conversation message
type Kind int

const (
	KindUser Kind = iota
	KindPending
	KindBot
	KindError
)

func (k Kind) String() string {
	switch k {
	case KindUser:
		return "user"
	case KindPending:
		return "pending"
	case KindBot:
		return "bot"
	case KindError:
		return "error"
	default:
		return "unknown"
	}
}

// FileInfo describes the attachment that accompanied a user message
type FileInfo struct {
	Name      string `json:"name" yaml:"name"`
	SizeLabel string `json:"size_label" yaml:"size_label"`
}

// Analysis holds the optional annotations of a bot message.
// Nil fields were absent from the service response.
type Analysis struct {
	Chart             *Chart
	Table             *Table
	Metric            *string
	ChartTitle        *string
	MatchedLocations  map[string]any
	IsGeneralAnalysis *bool
	Intent            map[string]any
	FileUsed          *string
}

// Exportable reports whether the analysis carries a chart or a table
func (a *Analysis) Exportable() bool {
	return a != nil && (a.Chart != nil || a.Table != nil)
}

// Message represents a single entry of the conversation log
type Message struct {
	ID        string
	Kind      Kind
	Text      string
	CreatedAt time.Time

	// File is set on user messages sent with an attachment
	File *FileInfo
	// Analysis is set on bot messages produced from a service response
	Analysis *Analysis
}

// NewUserMessage creates a user message, optionally carrying attachment info
func NewUserMessage(text string, file *FileInfo) Message {
	return Message{
		Kind:      KindUser,
		Text:      text,
		CreatedAt: time.Now(),
		File:      file,
	}
}

// NewPendingMessage creates the placeholder shown while a request is outstanding
func NewPendingMessage() Message {
	return Message{
		Kind:      KindPending,
		Text:      PlaceholderText,
		CreatedAt: time.Now(),
	}
}

// NewBotMessage creates a resolved bot message
func NewBotMessage(text string, analysis *Analysis) Message {
	return Message{
		Kind:      KindBot,
		Text:      text,
		CreatedAt: time.Now(),
		Analysis:  analysis,
	}
}

// NewErrorMessage creates an error message. The text is shown as is.
func NewErrorMessage(text string) Message {
	return Message{
		Kind:      KindError,
		Text:      text,
		CreatedAt: time.Now(),
	}
}

// GreetingMessage returns the bot message that opens every conversation
func GreetingMessage() Message {
	return NewBotMessage(GreetingText, nil)
}

func (m Message) IsUser() bool    { return m.Kind == KindUser }
func (m Message) IsPending() bool { return m.Kind == KindPending }
func (m Message) IsBot() bool     { return m.Kind == KindBot }
func (m Message) IsError() bool   { return m.Kind == KindError }

// Exportable reports whether the UI should offer a PDF export for m
func (m Message) Exportable() bool {
	return m.IsBot() && m.Analysis.Exportable()
}
