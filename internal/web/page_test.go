package web

import (
	"testing"

	"github.com/spacesedan/tonecheck/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestThemeFor(t *testing.T) {
	assert.Equal(t, "bg-default", themeFor(models.CategoryNone).Page)
	assert.Equal(t, "bg-positive", themeFor(models.CategoryPositive).Page)
	assert.Equal(t, "bg-negative", themeFor(models.CategoryNegative).Page)
	assert.Equal(t, "form-neutral", themeFor(models.CategoryNeutral).Form)
}

func TestCarouselPanelsFollowActiveIndex(t *testing.T) {
	for _, c := range []models.Category{models.CategoryNone, models.CategoryPositive, models.CategoryNegative, models.CategoryNeutral} {
		assert.Equal(t, themeFor(c).Page, carouselPanels[c.ActiveIndex()].Class)
	}
}

func TestRenderPageLoading(t *testing.T) {
	page, err := renderPage(models.SubmissionState{InputText: "hi", IsLoading: true})
	require.NoError(t, err)

	html := string(page)
	assert.Contains(t, html, "Processing...")
	assert.Contains(t, html, "disabled")
	assert.Contains(t, html, `http-equiv="refresh"`)
	assert.NotContains(t, html, `role="alert"`)
}

func TestRenderPageEscapesInput(t *testing.T) {
	page, err := renderPage(models.SubmissionState{InputText: "<script>alert(1)</script>"})
	require.NoError(t, err)

	html := string(page)
	assert.NotContains(t, html, "<script>alert(1)</script>")
	assert.Contains(t, html, "&lt;script&gt;")
	assert.Contains(t, html, "<strong>positive</strong>")
}

func TestRenderPageNeutralResult(t *testing.T) {
	page, err := renderPage(models.SubmissionState{
		InputText:     "ok",
		Category:      models.CategoryNeutral,
		ResultVisible: true,
	})
	require.NoError(t, err)

	html := string(page)
	assert.Contains(t, html, `data-tone="Neutral"`)
	assert.Contains(t, html, `data-active-index="3"`)
	assert.Contains(t, html, "translateX(-300%)")
}

func TestCarouselCaptionsRenderMarkdown(t *testing.T) {
	assert.Empty(t, carouselPanels[0].Caption)
	assert.Contains(t, string(carouselPanels[models.CategoryPositive.ActiveIndex()].Caption), "<strong>Positive.</strong>")

	page, err := renderPage(models.SubmissionState{})
	require.NoError(t, err)
	assert.Contains(t, string(page), `aria-label="Negative Tone"`)
	assert.Contains(t, string(page), "<strong>Neutral.</strong>")
}
