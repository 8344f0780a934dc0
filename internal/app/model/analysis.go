package model

// AnalysisAction selects which shapes the model is asked for.
type AnalysisAction string

const (
	ActionAnalyze       AnalysisAction = "analyze"
	ActionGenerateReply AnalysisAction = "generate_reply"
	ActionBoth          AnalysisAction = "both"
)

func (a AnalysisAction) Valid() bool {
	switch a {
	case ActionAnalyze, ActionGenerateReply, ActionBoth:
		return true
	}
	return false
}

func (a AnalysisAction) WantsAnalysis() bool {
	return a == ActionAnalyze || a == ActionBoth
}

func (a AnalysisAction) WantsReplies() bool {
	return a == ActionGenerateReply || a == ActionBoth
}

// BusinessContext is the read-only business information used in prompts.
type BusinessContext struct {
	Name         string   `json:"name"`
	Category     string   `json:"category"`
	DefaultTone  string   `json:"defaultTone"`
	Facts        []string `json:"facts,omitempty"`
	RefundPolicy string   `json:"refundPolicy,omitempty"`
	OpeningHours string   `json:"openingHours,omitempty"`
}

// AnalyzeReviewRequest is the body of the analyze-review function.
type AnalyzeReviewRequest struct {
	ReviewID        string           `json:"reviewId"`
	ReviewText      string           `json:"reviewText"`
	ReviewerName    string           `json:"reviewerName"`
	Rating          int              `json:"rating"`
	BusinessContext *BusinessContext `json:"businessContext"`
	Action          AnalysisAction   `json:"action"`
	Tone            ToneType         `json:"tone"`
}

// ReviewAnalysis is the canonical analysis derived from one model answer.
type ReviewAnalysis struct {
	Sentiment           Sentiment    `json:"sentiment"`
	Urgency             UrgencyLevel `json:"urgency"`
	Priority            UrgencyLevel `json:"priority"`
	Category            string       `json:"category"`
	Themes              []string     `json:"themes"`
	Summary             string       `json:"summary"`
	MissingInfoRequired bool         `json:"missingInfoRequired"`
	MissingInfoFields   []string     `json:"missingInfoFields"`
}

// DraftReply is one generated reply in the persisted tone vocabulary.
type DraftReply struct {
	Tone ToneType `json:"tone"`
	Text string   `json:"text"`
}

// NormalizedAnswer is the single internal shape every model encoding is converted into.
type NormalizedAnswer struct {
	Analysis ReviewAnalysis
	Replies  []DraftReply
}

type ReplySummary struct {
	ReplyText string   `json:"replyText"`
	Tone      ToneType `json:"tone"`
}

// AnalyzeReviewResponse is the success body of the analyze-review function.
type AnalyzeReviewResponse struct {
	Success  bool            `json:"success"`
	Analysis *ReviewAnalysis `json:"analysis,omitempty"`
	Replies  []DraftReply    `json:"replies"`
	Reply    *ReplySummary   `json:"reply,omitempty"`
}
