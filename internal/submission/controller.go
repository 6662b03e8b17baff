package submission

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/spacesedan/tonecheck/internal/models"
	"github.com/spacesedan/tonecheck/internal/tone"
)

const (
	VALIDATION_ERROR_MESSAGE = "Please enter some text to analyze its tone."
	SERVICE_ERROR_MESSAGE    = "There was an error analyzing the tone. Please try again later."
)

// Analyzer is the external sentiment-analysis collaborator.
type Analyzer interface {
	AnalyzeSentiment(ctx context.Context, text string) (models.SentimentAnalysis, error)
}

// Observer is notified after a submission is classified and its result is visible.
type Observer interface {
	ToneClassified(ctx context.Context, event models.ToneEvent) error
}

// Controller owns the SubmissionState of one session. Every transition happens
// under mu, so Snapshot never returns a state that mixes two submissions.
type Controller struct {
	id        string
	analyzer  Analyzer
	observers []Observer

	mu    sync.Mutex
	state models.SubmissionState
	// seq identifies the latest submission; outcomes tagged with an older
	// value are dropped.
	seq uint64
}

func NewController(id string, analyzer Analyzer, observers ...Observer) *Controller {
	return &Controller{
		id:        id,
		analyzer:  analyzer,
		observers: observers,
	}
}

func (c *Controller) ID() string {
	return c.id
}

func (c *Controller) OnTextChanged(text string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.state.InputText = text
}

// Submit starts a new submission and returns a channel that is closed once it
// has settled. Blank input settles synchronously without calling the analyzer.
// Cancelling ctx does not cancel the analyzer call.
func (c *Controller) Submit(ctx context.Context) <-chan struct{} {
	done := make(chan struct{})

	c.mu.Lock()
	c.seq++
	seq := c.seq
	c.state.ErrorMessage = ""
	c.state.IsLoading = true
	c.state.Category = models.CategoryNone
	c.state.ResultVisible = false
	text := c.state.InputText

	if strings.TrimSpace(text) == "" {
		c.state.ErrorMessage = VALIDATION_ERROR_MESSAGE
		c.state.IsLoading = false
		c.mu.Unlock()

		slog.Debug("[SubmissionController] Rejected blank input",
			slog.String("session", c.id))
		close(done)
		return done
	}
	c.mu.Unlock()

	go c.analyze(context.WithoutCancel(ctx), seq, text, done)
	return done
}

func (c *Controller) analyze(ctx context.Context, seq uint64, text string, done chan struct{}) {
	defer close(done)

	start := time.Now()
	result, err := c.callAnalyzer(ctx, text)

	c.mu.Lock()
	if seq != c.seq {
		c.mu.Unlock()
		slog.Debug("[SubmissionController] Discarding stale result",
			slog.String("session", c.id),
			slog.Uint64("seq", seq))
		return
	}

	c.state.IsLoading = false
	if err != nil {
		c.state.ErrorMessage = SERVICE_ERROR_MESSAGE
		c.state.Category = models.CategoryNone
		c.state.ResultVisible = false
		c.mu.Unlock()

		slog.Error("[SubmissionController] Sentiment analysis failed",
			slog.String("session", c.id),
			slog.Duration("elapsed", time.Since(start)),
			slog.String("error", err.Error()))
		return
	}

	category := tone.Classify(result.Score)
	c.state.Category = category
	c.state.ResultVisible = true
	c.mu.Unlock()

	slog.Info("[SubmissionController] Tone classified",
		slog.String("session", c.id),
		slog.String("tone", category.String()),
		slog.Float64("score", result.Score),
		slog.Duration("elapsed", time.Since(start)))

	c.notify(ctx, models.ToneEvent{
		SessionID:    c.id,
		Category:     category,
		Score:        result.Score,
		Magnitude:    result.Magnitude,
		Language:     result.Language,
		ClassifiedAt: time.Now().UTC(),
	})
}

// callAnalyzer turns a panicking analyzer into a failed submission so the
// loading flag is always cleared.
func (c *Controller) callAnalyzer(ctx context.Context, text string) (result models.SentimentAnalysis, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("analyzer panicked: %v", r)
		}
	}()
	return c.analyzer.AnalyzeSentiment(ctx, text)
}

func (c *Controller) notify(ctx context.Context, event models.ToneEvent) {
	for _, o := range c.observers {
		if err := o.ToneClassified(ctx, event); err != nil {
			slog.Warn("[SubmissionController] Observer failed",
				slog.String("session", c.id),
				slog.String("error", err.Error()))
		}
	}
}

// Reset returns the state to its defaults. Any submission still in flight is
// invalidated so it cannot repopulate the result.
func (c *Controller) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.seq++
	c.state = models.SubmissionState{}
}

func (c *Controller) Snapshot() models.SubmissionState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}
