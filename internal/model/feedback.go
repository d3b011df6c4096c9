package model

import "time"

// Feedback categories the classifier may assign.
const (
	CategoryWorkOpportunity = "Work Opportunity"
	CategoryPraise          = "Praise"
	CategoryQuestion        = "Question"
	CategoryBugReport       = "Bug Report"
	CategoryOther           = "Other"
	// CategoryUncategorized marks feedback the classifier could not reach.
	CategoryUncategorized = "Uncategorized"
)

const (
	SentimentPositive = "Positive"
	SentimentNeutral  = "Neutral"
	SentimentNegative = "Negative"
)

// Classification is the AI-assigned label pair for one feedback message.
type Classification struct {
	Category  string `json:"category"`
	Sentiment string `json:"sentiment"`
}

// Feedback is one message left by a visitor in the owner's inbox.
// It is only ever mutated to attach a drafted reply.
type Feedback struct {
	ID              string    `json:"id"`
	Name            string    `json:"name"`
	Email           string    `json:"email"`
	Message         string    `json:"message"`
	Category        string    `json:"category"`
	Sentiment       string    `json:"sentiment"`
	CreatedAt       time.Time `json:"createdAt"`
	IsRead          bool      `json:"isRead"`
	AIResponseDraft *string   `json:"aiResponseDraft,omitempty"`
}

// ChatMessage is one turn of the chat history sent by the client.
// Role is "user" or "model".
type ChatMessage struct {
	Role string `json:"role"`
	Text string `json:"text"`
}
