package web

import (
	"bytes"
	"fmt"
	"html/template"

	"github.com/russross/blackfriday/v2"
	"github.com/spacesedan/tonecheck/internal/models"
)

const INTRO_MARKDOWN = `A tone analyzer that can assess the sentiment of your text and categorize it as
**positive**, **neutral**, or **negative**.`

var introHTML = renderMarkdown(INTRO_MARKDOWN)

func renderMarkdown(md string) template.HTML {
	return template.HTML(blackfriday.Run([]byte(md)))
}

// theme holds the CSS classes the page uses for a tone.
type theme struct {
	Page    string
	Form    string
	Heading string
}

func themeFor(category models.Category) theme {
	switch category {
	case models.CategoryPositive:
		return theme{Page: "bg-positive", Form: "bg-positive", Heading: "heading-light"}
	case models.CategoryNegative:
		return theme{Page: "bg-negative", Form: "bg-negative", Heading: "heading-light"}
	case models.CategoryNeutral:
		return theme{Page: "bg-neutral", Form: "form-neutral", Heading: "heading-neutral"}
	default:
		return theme{Page: "bg-default", Form: "form-default", Heading: "heading-default"}
	}
}

type panel struct {
	Class   string
	Label   string
	Caption template.HTML
}

// carouselPanels is indexed by Category.ActiveIndex.
var carouselPanels = []panel{
	{Class: "bg-default"},
	newPanel("bg-positive", "Positive Tone", "**Positive.** Your text reads upbeat and warm."),
	newPanel("bg-negative", "Negative Tone", "**Negative.** Your text comes across as critical or upset."),
	newPanel("bg-neutral", "Neutral Tone", "**Neutral.** Your text is matter-of-fact or mixed."),
}

func newPanel(class, label, caption string) panel {
	return panel{Class: class, Label: label, Caption: renderMarkdown(caption)}
}

type pageView struct {
	State  models.SubmissionState
	Theme  theme
	Intro  template.HTML
	Offset template.CSS
	Panels []panel
}

func newPageView(state models.SubmissionState) pageView {
	return pageView{
		State:  state,
		Theme:  themeFor(state.Category),
		Intro:  introHTML,
		Offset: template.CSS(fmt.Sprintf("transform: translateX(-%d%%)", state.ActiveIndex()*100)),
		Panels: carouselPanels,
	}
}

func renderPage(state models.SubmissionState) ([]byte, error) {
	var buf bytes.Buffer
	if err := pageTemplate.Execute(&buf, newPageView(state)); err != nil {
		return nil, fmt.Errorf("failed to render page: %w", err)
	}
	return buf.Bytes(), nil
}

var pageTemplate = template.Must(template.New("page").Parse(`<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width, initial-scale=1">
{{- if .State.IsLoading}}
<meta http-equiv="refresh" content="1">
{{- end}}
<title>Emotional Tone Detector</title>
<style>
body { margin: 0; min-height: 100vh; font-family: sans-serif; transition: background 1s ease-in-out; }
main { max-width: 800px; margin: 0 auto; padding-top: 5rem; }
.bg-default { background: #2b2738; }
.bg-positive { background: linear-gradient(to bottom right, #4ade80, #86efac); }
.bg-negative { background: linear-gradient(to bottom right, #f87171, #fca5a5); }
.bg-neutral { background: linear-gradient(to bottom right, #d8c8b4, #bfa687); }
.form-default { background: #3b364c; }
.form-neutral { background: #cdc3b6; }
.heading-default { color: #fff; }
.heading-neutral { color: #99733b; }
.heading-light { color: #1f2937; }
form.analyze { border-radius: 1.5rem; padding: 2.5rem; }
textarea { width: 100%; height: 10rem; border: none; border-radius: .75rem; padding: 1rem; box-sizing: border-box; }
button { width: 100%; padding: .75rem; border: none; border-radius: 9999px; font-weight: bold; }
.error { margin-top: 1.5rem; padding: 1rem; color: #ef4444; text-align: center; }
.carousel { width: 92%; margin: 2.5rem auto; height: 200px; overflow: hidden; }
.track { display: flex; height: 100%; transition: transform 1s ease-in-out; }
.card { flex: 0 0 100%; display: flex; align-items: center; justify-content: center; border-radius: .5rem; font-size: 1.25rem; }
</style>
</head>
<body class="{{.Theme.Page}}">
<main>
<header class="{{.Theme.Heading}}">
<h1>Emotional Tone Detector</h1>
{{.Intro}}
</header>
<form class="analyze {{.Theme.Form}}" method="post" action="/analyze">
<textarea name="text" class="{{.Theme.Form}} {{.Theme.Heading}}" placeholder="Type your text here...">{{.State.InputText}}</textarea>
<button type="submit"{{if .State.IsLoading}} disabled{{end}}>{{if .State.IsLoading}}Processing...{{else}}Analyze Tone{{end}}</button>
</form>
{{- if .State.HasError}}
<div class="error" role="alert">{{.State.ErrorMessage}}</div>
{{- end}}
<form method="post" action="/reset">
<button type="submit" class="reset">Reset</button>
</form>
</main>
<section class="carousel" data-active-index="{{.State.ActiveIndex}}"{{if .State.ResultVisible}} data-tone="{{.State.Category}}"{{end}}>
<div class="track" style="{{.Offset}}">
{{- range .Panels}}
<div class="card {{.Class}}"{{if .Label}} aria-label="{{.Label}}"{{end}}>{{.Caption}}</div>
{{- end}}
</div>
</section>
</body>
</html>
`))
