package web

import (
	"context"
	"testing"
	"time"

	"github.com/spacesedan/tonecheck/internal/models"
	"github.com/spacesedan/tonecheck/internal/submission"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type staticAnalyzer struct{ score float64 }

func (s staticAnalyzer) AnalyzeSentiment(context.Context, string) (models.SentimentAnalysis, error) {
	return models.SentimentAnalysis{Score: s.score}, nil
}

func newTestStore(ttl time.Duration) *sessionStore {
	return newSessionStore(ttl, func(id string) *submission.Controller {
		return submission.NewController(id, staticAnalyzer{})
	})
}

func TestSessionStoreCreateGet(t *testing.T) {
	store := newTestStore(time.Hour)
	token, ctl := store.create()
	require.NotEmpty(t, token)
	assert.NotEqual(t, token, ctl.ID())

	got, ok := store.get(token)
	require.True(t, ok)
	assert.Same(t, ctl, got)
	assert.Equal(t, 1, store.count())
}

func TestSessionStoreUnknownToken(t *testing.T) {
	store := newTestStore(time.Hour)
	_, ok := store.get("missing")
	assert.False(t, ok)
	_, ok = store.get("")
	assert.False(t, ok)
}

func TestSessionStoreExpiration(t *testing.T) {
	store := newTestStore(20 * time.Millisecond)
	token, _ := store.create()
	time.Sleep(40 * time.Millisecond)
	_, ok := store.get(token)
	assert.False(t, ok)
}

func TestSessionStoreSessionsAreIsolated(t *testing.T) {
	store := newTestStore(time.Hour)
	_, first := store.create()
	_, second := store.create()

	first.OnTextChanged("hello")
	assert.Empty(t, second.Snapshot().InputText)
}
