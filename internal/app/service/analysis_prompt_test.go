package service

import (
	"strings"
	"testing"

	"github.com/ikkim/replydesk-backend/internal/app/model"
	"github.com/ikkim/replydesk-backend/pkg/llm"
	"github.com/stretchr/testify/assert"
)

func TestBuildPrompt_WithBusinessContext(t *testing.T) {
	prompt := BuildPrompt(PromptInput{
		ReviewText:   "Terrible wait, 2 hours",
		ReviewerName: "Sam",
		Rating:       1,
		Business: &model.BusinessContext{
			Name:        "Ace Dental",
			Category:    "dentist",
			DefaultTone: "friendly",
			Facts:       []string{"Open since 1998", " "},
		},
		Action: model.ActionBoth,
	}, false)

	assert.Contains(t, prompt, "Business context:")
	assert.Contains(t, prompt, "- Business name: Ace Dental")
	assert.Contains(t, prompt, "  - Open since 1998")
	assert.Contains(t, prompt, "- Reviewer: Sam")
	assert.Contains(t, prompt, "- Rating: 1/5 stars")
	assert.Contains(t, prompt, `"Terrible wait, 2 hours"`)
	assert.Contains(t, prompt, "professional, friendly, empathetic")
	assert.Contains(t, prompt, "Respond ONLY with valid JSON")
	assert.NotContains(t, prompt, "Refund policy")
}

func TestBuildPrompt_OmitsAbsentFields(t *testing.T) {
	inputs := []PromptInput{
		{ReviewText: "ok", Rating: 3},
		{ReviewText: "ok", Rating: 3, Business: &model.BusinessContext{}},
		{ReviewText: "ok", Rating: 3, Business: &model.BusinessContext{Facts: []string{""}}},
	}

	for _, in := range inputs {
		prompt := BuildPrompt(in, false)
		assert.NotContains(t, prompt, "Business context")
		assert.NotContains(t, prompt, "Reviewer:")
		assert.NotContains(t, prompt, "undefined")
		assert.NotContains(t, prompt, "<nil>")
		assert.NotContains(t, prompt, "N/A")
	}
}

func TestBuildPrompt_Deterministic(t *testing.T) {
	in := PromptInput{
		ReviewText: "Lovely staff",
		Rating:     5,
		Business:   &model.BusinessContext{Name: "Ace Dental", Facts: []string{"a", "b"}},
	}
	assert.Equal(t, BuildPrompt(in, false), BuildPrompt(in, false))
	assert.Equal(t, BuildPrompt(in, true), BuildPrompt(in, true))
}

func TestBuildPrompt_SingleTone(t *testing.T) {
	prompt := BuildPrompt(PromptInput{
		ReviewText: "Lovely staff",
		Rating:     5,
		Action:     model.ActionGenerateReply,
		Tone:       model.ToneApologetic,
	}, false)

	assert.Contains(t, prompt, "Draft one reply in a empathetic tone.")
	assert.NotContains(t, prompt, `"analysis"`)
	assert.NotContains(t, prompt, "Professional tone")
}

func TestBuildPrompt_AnalyzeOnly(t *testing.T) {
	prompt := BuildPrompt(PromptInput{ReviewText: "meh", Rating: 3, Action: model.ActionAnalyze}, false)

	assert.Contains(t, prompt, `"analysis"`)
	assert.NotContains(t, prompt, `"replies"`)
}

func TestBuildPrompt_Structured(t *testing.T) {
	prompt := BuildPrompt(PromptInput{ReviewText: "meh", Rating: 3}, true)

	assert.Contains(t, prompt, llm.ToolRecordAnalysis)
	assert.Contains(t, prompt, llm.ToolDraftReplies)
	assert.NotContains(t, prompt, "Respond ONLY with valid JSON")
}

func TestCapabilities(t *testing.T) {
	assert.Equal(t, []llm.Capability{llm.CapabilityAnalysis}, Capabilities(model.ActionAnalyze))
	assert.Equal(t, []llm.Capability{llm.CapabilityReplies}, Capabilities(model.ActionGenerateReply))
	assert.Equal(t, []llm.Capability{llm.CapabilityAnalysis, llm.CapabilityReplies}, Capabilities(model.ActionBoth))
}

func TestRequestedModelTones_CoversEveryTone(t *testing.T) {
	tones := requestedModelTones("")
	assert.Len(t, tones, len(model.AllTones))
	for _, tone := range tones {
		assert.NotEmpty(t, toneGuidelines[tone], tone)
		assert.True(t, strings.TrimSpace(tone) != "")
	}
}
