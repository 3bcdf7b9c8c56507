package models

// OpenAIClassification is the JSON object the classification prompt asks for.
type OpenAIClassification struct {
	Sentiment string `json:"sentiment"`
}

// OpenAIReply is the JSON object the reply prompt asks for.
type OpenAIReply struct {
	Reply string `json:"reply"`
}
