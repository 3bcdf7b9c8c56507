package models

import (
	"strings"
	"time"
)

// Sentiment is the polarity label assigned to a review.
type Sentiment string

const (
	SentimentPositive Sentiment = "positive"
	SentimentNegative Sentiment = "negative"
	SentimentNeutral  Sentiment = "neutral"
)

// Sentiments is the closed taxonomy, in the order charts and summaries list it.
var Sentiments = []Sentiment{SentimentPositive, SentimentNegative, SentimentNeutral}

func (s Sentiment) String() string {
	return string(s)
}

// Valid reports whether s is one of the taxonomy labels.
func (s Sentiment) Valid() bool {
	switch s {
	case SentimentPositive, SentimentNegative, SentimentNeutral:
		return true
	default:
		return false
	}
}

// ParseSentiment normalizes a label returned by a backend. Anything outside
// the taxonomy is rejected rather than mapped to a default.
func ParseSentiment(raw string) (Sentiment, bool) {
	s := Sentiment(strings.ToLower(strings.TrimSpace(raw)))
	if !s.Valid() {
		return "", false
	}
	return s, true
}

// ReviewRecord is one piece of customer feedback after it went through the
// feedback pipeline. An empty Sentiment or Reply means the field is absent.
type ReviewRecord struct {
	ID        string    `json:"id" dynamodbav:"id"`
	Timestamp time.Time `json:"timestamp" dynamodbav:"timestamp,unixtime"`
	Text      string    `json:"text" dynamodbav:"text"`
	Sentiment Sentiment `json:"sentiment,omitempty" dynamodbav:"sentiment,omitempty"`
	Reply     string    `json:"reply,omitempty" dynamodbav:"reply,omitempty"`
}

func (r ReviewRecord) HasSentiment() bool {
	return r.Sentiment.Valid()
}

func (r ReviewRecord) HasReply() bool {
	return r.Reply != ""
}
