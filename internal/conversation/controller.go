package conversation

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/diogo/estatechat/internal/api"
	"github.com/diogo/estatechat/internal/attachment"
	apierrors "github.com/diogo/estatechat/internal/errors"
	"github.com/diogo/estatechat/internal/logging"
	"github.com/diogo/estatechat/internal/models"
	"github.com/diogo/estatechat/internal/normalize"
)

// DefaultTimeout bounds one turn
const DefaultTimeout = 120 * time.Second

var (
	// ErrEmptyQuery is returned by Submit for blank text
	ErrEmptyQuery = errors.New("query is empty")
	// ErrBusy is returned by Submit while a turn is unresolved
	ErrBusy = errors.New("a request is already in progress")
)

// Analyzer sends one analyze request
type Analyzer interface {
	Analyze(ctx context.Context, req *api.Request) (*models.AnalyticsResponse, error)
}

// Controller runs turns against a Store, one at a time
type Controller struct {
	store   *Store
	client  Analyzer
	timeout time.Duration
	logger  *slog.Logger

	mu   sync.Mutex
	busy bool
}

// Option configures a Controller
type Option func(*Controller)

// WithTimeout bounds each turn. Zero disables the bound.
func WithTimeout(d time.Duration) Option {
	return func(c *Controller) {
		c.timeout = d
	}
}

// WithLogger sets the controller logger
func WithLogger(logger *slog.Logger) Option {
	return func(c *Controller) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// NewController creates a controller appending to store
func NewController(store *Store, client Analyzer, opts ...Option) *Controller {
	c := &Controller{
		store:   store,
		client:  client,
		timeout: DefaultTimeout,
		logger:  logging.Discard(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Store returns the message log
func (c *Controller) Store() *Store {
	return c.store
}

// Busy reports whether a turn is unresolved
func (c *Controller) Busy() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.busy
}

// Timeout returns the per-turn bound
func (c *Controller) Timeout() time.Duration {
	return c.timeout
}

// Turn is a submitted query waiting for its answer
type Turn struct {
	Request *api.Request
	User    models.Message

	c         *Controller
	pendingID string
	once      sync.Once
	result    models.Message
}

// Submit appends the user message and the placeholder, and returns the turn
// to resolve. Nothing is appended when an error is returned.
func (c *Controller) Submit(text string, att *attachment.Attachment) (*Turn, error) {
	if strings.TrimSpace(text) == "" {
		return nil, ErrEmptyQuery
	}

	c.mu.Lock()
	if c.busy {
		c.mu.Unlock()
		return nil, ErrBusy
	}
	c.busy = true
	c.mu.Unlock()

	var info *models.FileInfo
	if att != nil {
		info = att.Info()
	}
	user := models.NewUserMessage(text, info)
	user.ID = uuid.NewString()
	pending := models.NewPendingMessage()
	pending.ID = uuid.NewString()

	if err := c.store.Append(user); err != nil {
		c.release()
		return nil, err
	}
	if err := c.store.Append(pending); err != nil {
		c.release()
		return nil, err
	}

	turn := &Turn{
		Request:   api.BuildRequest(text, att),
		User:      user,
		c:         c,
		pendingID: pending.ID,
	}
	c.logger.Debug("turn submitted", "id", user.ID, "request", turn.Request.String())
	return turn, nil
}

// Resolve performs the analyze call and replaces the placeholder with the
// answer or an error message. Later calls return the first result.
func (t *Turn) Resolve(ctx context.Context) models.Message {
	t.once.Do(func() {
		t.result = t.c.resolve(ctx, t)
	})
	return t.result
}

// HandleSend submits text and resolves the turn
func (c *Controller) HandleSend(ctx context.Context, text string, att *attachment.Attachment) (models.Message, error) {
	turn, err := c.Submit(text, att)
	if err != nil {
		return models.Message{}, err
	}
	return turn.Resolve(ctx), nil
}

func (c *Controller) resolve(ctx context.Context, t *Turn) models.Message {
	defer c.release()

	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	start := time.Now()
	resp, err := c.client.Analyze(ctx, t.Request)
	if err == nil && resp == nil {
		err = apierrors.NewUnexpectedError("empty response from server", nil)
	}

	var msg models.Message
	if err != nil {
		switch {
		case errors.Is(ctx.Err(), context.DeadlineExceeded):
			err = apierrors.NewTimeoutError(c.timeout)
		case errors.Is(ctx.Err(), context.Canceled):
			err = apierrors.NewUnexpectedError("Request cancelled", err)
		}
		msg = models.NewErrorMessage(models.ErrorPrefix + apierrors.UserMessage(err))
		c.logger.Warn("turn failed",
			"id", t.User.ID,
			"elapsed", time.Since(start),
			"status", apierrors.GetHTTPStatus(err),
			"error", err)
	} else {
		msg = normalize.Normalize(resp)
		c.logger.Debug("turn resolved",
			"id", t.User.ID,
			"elapsed", time.Since(start),
			"chart", msg.Analysis.Chart != nil,
			"table_rows", msg.Analysis.Table.Len())
	}

	msg.ID = t.pendingID
	if err := c.store.ReplaceLast(msg); err != nil {
		c.logger.Error("failed to resolve placeholder", "id", t.pendingID, "error", err)
	}
	return msg
}

func (c *Controller) release() {
	c.mu.Lock()
	c.busy = false
	c.mu.Unlock()
}
