package models

import (
	"encoding/json"
	"fmt"
	"time"
)

type Category int

const (
	CategoryNone Category = iota
	CategoryPositive
	CategoryNegative
	CategoryNeutral
)

func (c Category) String() string {
	switch c {
	case CategoryPositive:
		return "Positive"
	case CategoryNegative:
		return "Negative"
	case CategoryNeutral:
		return "Neutral"
	default:
		return "default"
	}
}

// ActiveIndex is the carousel panel shown for the category.
func (c Category) ActiveIndex() int {
	switch c {
	case CategoryPositive:
		return 1
	case CategoryNegative:
		return 2
	case CategoryNeutral:
		return 3
	default:
		return 0
	}
}

func (c Category) MarshalText() ([]byte, error) {
	return []byte(c.String()), nil
}

func (c *Category) UnmarshalText(text []byte) error {
	switch string(text) {
	case "Positive":
		*c = CategoryPositive
	case "Negative":
		*c = CategoryNegative
	case "Neutral":
		*c = CategoryNeutral
	case "default", "":
		*c = CategoryNone
	default:
		return fmt.Errorf("unknown tone category %q", text)
	}
	return nil
}

type SubmissionState struct {
	InputText     string
	ErrorMessage  string
	IsLoading     bool
	Category      Category
	ResultVisible bool
}

func (s SubmissionState) ActiveIndex() int {
	return s.Category.ActiveIndex()
}

func (s SubmissionState) HasError() bool {
	return s.ErrorMessage != ""
}

func (s SubmissionState) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		InputText     string   `json:"input_text"`
		ErrorMessage  *string  `json:"error_message"`
		IsLoading     bool     `json:"is_loading"`
		Category      Category `json:"category"`
		ResultVisible bool     `json:"result_visible"`
		ActiveIndex   int      `json:"active_index"`
	}{
		InputText:     s.InputText,
		ErrorMessage:  optional(s.ErrorMessage),
		IsLoading:     s.IsLoading,
		Category:      s.Category,
		ResultVisible: s.ResultVisible,
		ActiveIndex:   s.ActiveIndex(),
	})
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

// ToneEvent describes one successful classification. It never carries the analyzed text.
type ToneEvent struct {
	SessionID    string    `json:"session_id"`
	Category     Category  `json:"category"`
	Score        float64   `json:"score"`
	Magnitude    float64   `json:"magnitude"`
	Language     string    `json:"language,omitempty"`
	ClassifiedAt time.Time `json:"classified_at"`
}

type ToneTally struct {
	Day      string `json:"day" dynamodbav:"day"`
	Category string `json:"category" dynamodbav:"category"`
	Count    int64  `json:"count" dynamodbav:"count"`
}
