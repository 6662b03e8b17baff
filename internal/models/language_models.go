package models

const DOCUMENT_TYPE_PLAIN_TEXT = "PLAIN_TEXT"

type AnalyzeSentimentRequest struct {
	Document Document `json:"document"`
}

type Document struct {
	Type    string `json:"type"`
	Content string `json:"content"`
}

// SentimentAnalysis is what the controller consumes from the Natural Language API.
// Fields missing from the response are left at zero.
type SentimentAnalysis struct {
	Score     float64
	Magnitude float64
	Language  string
}
