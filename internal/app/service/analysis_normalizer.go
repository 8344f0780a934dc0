package service

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/ikkim/replydesk-backend/internal/app/model"
	"github.com/ikkim/replydesk-backend/pkg/llm"
	"github.com/ikkim/replydesk-backend/pkg/logger"
)

// ErrParse is returned when the model's answer cannot be decoded.
var ErrParse = errors.New("failed to parse model response")

// toneRemap maps model and persisted tone names to the persisted vocabulary.
var toneRemap = map[string]model.ToneType{
	"professional": model.ToneFormal,
	"friendly":     model.ToneFriendly,
	"empathetic":   model.ToneApologetic,
	"formal":       model.ToneFormal,
	"apologetic":   model.ToneApologetic,
}

// RemapTone converts a tone returned by the model. Unknown tones become friendly.
func RemapTone(tone string) model.ToneType {
	if t, ok := toneRemap[strings.ToLower(strings.TrimSpace(tone))]; ok {
		return t
	}
	return model.ToneFriendly
}

type rawAnalysis struct {
	Sentiment           looseString  `json:"sentiment"`
	Urgency             looseString  `json:"urgency"`
	Priority            looseString  `json:"priority"`
	Category            looseString  `json:"category"`
	Themes              looseStrings `json:"themes"`
	Summary             looseString  `json:"summary"`
	MissingInfoRequired looseBool    `json:"missingInfoRequired"`
	MissingInfoFields   looseStrings `json:"missingInfoFields"`
}

type rawReply struct {
	Tone looseString `json:"tone"`
	Text looseString `json:"text"`
}

// rawAnswer accepts both the nested layout {analysis:{...}, replies:[...]} and
// the flat layout {sentiment, themes, priority, replies}.
type rawAnswer struct {
	Analysis json.RawMessage `json:"analysis"`
	rawAnalysis
	Replies looseReplies `json:"replies"`
}

// The loose types decode a field when it has the expected JSON type and leave
// the zero value otherwise, so a single odd field falls back to its default
// instead of failing the answer.

type looseString string

func (s *looseString) UnmarshalJSON(data []byte) error {
	var v string
	if json.Unmarshal(data, &v) == nil {
		*s = looseString(v)
	} else {
		*s = ""
	}
	return nil
}

type looseStrings []string

func (s *looseStrings) UnmarshalJSON(data []byte) error {
	*s = nil
	var items []json.RawMessage
	if json.Unmarshal(data, &items) != nil {
		return nil
	}
	for _, item := range items {
		var v string
		if json.Unmarshal(item, &v) == nil {
			*s = append(*s, v)
		}
	}
	return nil
}

type looseBool bool

func (b *looseBool) UnmarshalJSON(data []byte) error {
	var v bool
	if json.Unmarshal(data, &v) == nil {
		*b = looseBool(v)
		return nil
	}
	var text string
	if json.Unmarshal(data, &text) == nil {
		switch strings.ToLower(strings.TrimSpace(text)) {
		case "true", "yes", "1":
			*b = true
			return nil
		}
	}
	*b = false
	return nil
}

// UnmarshalJSON turns anything that is not an object into an empty reply.
func (r *rawReply) UnmarshalJSON(data []byte) error {
	type plain rawReply
	var v plain
	if json.Unmarshal(data, &v) != nil {
		*r = rawReply{}
		return nil
	}
	*r = rawReply(v)
	return nil
}

type looseReplies []rawReply

func (rs *looseReplies) UnmarshalJSON(data []byte) error {
	var items []rawReply
	if json.Unmarshal(data, &items) != nil {
		*rs = nil
		return nil
	}
	*rs = items
	return nil
}

// NormalizeCompletion converts either completion encoding into the canonical answer.
func NormalizeCompletion(c *llm.Completion) (*model.NormalizedAnswer, error) {
	if c == nil {
		return nil, fmt.Errorf("%w: empty completion", ErrParse)
	}

	switch c.Kind {
	case llm.KindText:
		return normalizeText(c.Text)
	case llm.KindToolCalls:
		return normalizeToolCalls(c.ToolCalls)
	default:
		return nil, fmt.Errorf("%w: unknown completion kind %q", ErrParse, c.Kind)
	}
}

// StripCodeFence removes a leading ``` or ```json fence and a trailing ``` fence.
func StripCodeFence(text string) string {
	cleaned := strings.TrimSpace(text)
	if len(cleaned) >= 7 && strings.EqualFold(cleaned[:7], "```json") {
		cleaned = cleaned[7:]
	} else if strings.HasPrefix(cleaned, "```") {
		cleaned = cleaned[3:]
	}
	cleaned = strings.TrimSuffix(strings.TrimSpace(cleaned), "```")
	return strings.TrimSpace(cleaned)
}

func normalizeText(text string) (*model.NormalizedAnswer, error) {
	cleaned := StripCodeFence(text)

	var answer rawAnswer
	if err := json.Unmarshal([]byte(cleaned), &answer); err != nil {
		logger.Warn("Model answer is not valid JSON", map[string]interface{}{
			"length": len(text),
			"error":  err.Error(),
		})
		return nil, fmt.Errorf("%w: %v", ErrParse, err)
	}

	analysis := &answer.rawAnalysis
	if len(answer.Analysis) > 0 && !bytes.Equal(bytes.TrimSpace(answer.Analysis), []byte("null")) {
		analysis = &rawAnalysis{}
		if json.Unmarshal(answer.Analysis, analysis) != nil {
			// not an object; every analysis field takes its default
			analysis = &rawAnalysis{}
		}
	}
	return canonicalize(analysis, answer.Replies), nil
}

func normalizeToolCalls(calls []llm.ToolCall) (*model.NormalizedAnswer, error) {
	analysis := &rawAnalysis{}
	var replies []rawReply

	for _, call := range calls {
		args, err := toolArguments(call.Arguments)
		if err != nil {
			return nil, fmt.Errorf("%w: %s arguments: %v", ErrParse, call.Name, err)
		}

		switch call.Name {
		case llm.ToolRecordAnalysis:
			if err := json.Unmarshal(args, analysis); err != nil {
				return nil, fmt.Errorf("%w: %s arguments: %v", ErrParse, call.Name, err)
			}
		case llm.ToolDraftReplies:
			var payload struct {
				Replies looseReplies `json:"replies"`
			}
			if err := json.Unmarshal(args, &payload); err != nil {
				return nil, fmt.Errorf("%w: %s arguments: %v", ErrParse, call.Name, err)
			}
			replies = append(replies, payload.Replies...)
		default:
			logger.Warn("Ignoring unknown tool call", map[string]interface{}{
				"tool": call.Name,
			})
		}
	}

	return canonicalize(analysis, replies), nil
}

// toolArguments unwraps arguments that some servers deliver as a JSON string.
func toolArguments(raw json.RawMessage) (json.RawMessage, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 {
		return json.RawMessage("{}"), nil
	}
	if trimmed[0] == '"' {
		var inner string
		if err := json.Unmarshal(trimmed, &inner); err != nil {
			return nil, err
		}
		return json.RawMessage(StripCodeFence(inner)), nil
	}
	return trimmed, nil
}

// canonicalize applies the fixed defaults. Defaults never depend on the review itself.
func canonicalize(a *rawAnalysis, replies []rawReply) *model.NormalizedAnswer {
	sentiment := model.Sentiment(strings.ToLower(strings.TrimSpace(string(a.Sentiment))))
	if !sentiment.Valid() {
		sentiment = model.SentimentNeutral
	}

	urgencyText := string(a.Urgency)
	if strings.TrimSpace(urgencyText) == "" {
		urgencyText = string(a.Priority)
	}
	urgency := model.UrgencyLevel(strings.ToLower(strings.TrimSpace(urgencyText)))
	if !urgency.Valid() {
		urgency = model.UrgencyMedium
	}

	themes := nonEmpty(a.Themes)
	category := strings.TrimSpace(string(a.Category))
	if category == "" {
		category = strings.Join(themes, ", ")
	}

	drafts := make([]model.DraftReply, 0, len(replies))
	for _, r := range replies {
		drafts = append(drafts, model.DraftReply{
			Tone: RemapTone(string(r.Tone)),
			Text: string(r.Text),
		})
	}

	missing := nonEmpty(a.MissingInfoFields)

	return &model.NormalizedAnswer{
		Analysis: model.ReviewAnalysis{
			Sentiment:           sentiment,
			Urgency:             urgency,
			Priority:            urgency,
			Category:            category,
			Themes:              themes,
			Summary:             strings.TrimSpace(string(a.Summary)),
			MissingInfoRequired: bool(a.MissingInfoRequired) || len(missing) > 0,
			MissingInfoFields:   missing,
		},
		Replies: drafts,
	}
}

func nonEmpty(values []string) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}
