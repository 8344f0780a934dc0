package model

import "strings"

// ToneType is the reply tone stored on businesses, replies and templates.
type ToneType string

const (
	ToneFriendly   ToneType = "friendly"
	ToneFormal     ToneType = "formal"
	ToneApologetic ToneType = "apologetic"
)

// AllTones lists the persisted tones in the order drafts are requested.
var AllTones = []ToneType{ToneFormal, ToneFriendly, ToneApologetic}

func (t ToneType) Valid() bool {
	switch t {
	case ToneFriendly, ToneFormal, ToneApologetic:
		return true
	}
	return false
}

// ParseTone returns the tone for s, case-insensitively.
func ParseTone(s string) (ToneType, bool) {
	t := ToneType(strings.ToLower(strings.TrimSpace(s)))
	return t, t.Valid()
}

type Sentiment string

const (
	SentimentPositive Sentiment = "positive"
	SentimentNeutral  Sentiment = "neutral"
	SentimentNegative Sentiment = "negative"
)

func (s Sentiment) Valid() bool {
	switch s {
	case SentimentPositive, SentimentNeutral, SentimentNegative:
		return true
	}
	return false
}

type UrgencyLevel string

const (
	UrgencyLow    UrgencyLevel = "low"
	UrgencyMedium UrgencyLevel = "medium"
	UrgencyHigh   UrgencyLevel = "high"
)

func (u UrgencyLevel) Valid() bool {
	switch u {
	case UrgencyLow, UrgencyMedium, UrgencyHigh:
		return true
	}
	return false
}

type ReviewSource string

const (
	ReviewSourceGoogle   ReviewSource = "google"
	ReviewSourceYelp     ReviewSource = "yelp"
	ReviewSourceFacebook ReviewSource = "facebook"
	ReviewSourceManual   ReviewSource = "manual"
)

func (s ReviewSource) Valid() bool {
	switch s {
	case ReviewSourceGoogle, ReviewSourceYelp, ReviewSourceFacebook, ReviewSourceManual:
		return true
	}
	return false
}

// ReviewStatus moves pending -> replied or pending -> escalated, never back.
type ReviewStatus string

const (
	ReviewStatusPending   ReviewStatus = "pending"
	ReviewStatusReplied   ReviewStatus = "replied"
	ReviewStatusEscalated ReviewStatus = "escalated"
)

func (s ReviewStatus) Valid() bool {
	switch s {
	case ReviewStatusPending, ReviewStatusReplied, ReviewStatusEscalated:
		return true
	}
	return false
}

type ReplyCreator string

const (
	ReplyCreatorSystemAI ReplyCreator = "system_ai"
	ReplyCreatorUser     ReplyCreator = "user"
)

type PlanType string

const (
	PlanTrial   PlanType = "trial"
	PlanStarter PlanType = "starter"
	PlanPro     PlanType = "pro"
	PlanAgency  PlanType = "agency"
)

type SubscriptionStatus string

const (
	SubscriptionTrialing   SubscriptionStatus = "trialing"
	SubscriptionActive     SubscriptionStatus = "active"
	SubscriptionPastDue    SubscriptionStatus = "past_due"
	SubscriptionCanceled   SubscriptionStatus = "canceled"
	SubscriptionIncomplete SubscriptionStatus = "incomplete"
)
