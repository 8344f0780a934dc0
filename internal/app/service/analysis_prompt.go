package service

import (
	"fmt"
	"strings"

	"github.com/ikkim/replydesk-backend/internal/app/model"
	"github.com/ikkim/replydesk-backend/pkg/llm"
)

// PromptInput is everything the prompt is built from.
type PromptInput struct {
	ReviewText   string
	ReviewerName string
	Rating       int
	Business     *model.BusinessContext
	Action       model.AnalysisAction
	Tone         model.ToneType // empty asks for one reply per tone
}

// modelTone is the vocabulary the model is asked to answer in.
var modelTone = map[model.ToneType]string{
	model.ToneFormal:     "professional",
	model.ToneFriendly:   "friendly",
	model.ToneApologetic: "empathetic",
}

var toneGuidelines = map[string]string{
	"professional": "Professional tone: formal, business-appropriate",
	"friendly":     "Friendly tone: warm, personable, uses the business name",
	"empathetic":   "Empathetic tone: understanding, acknowledges feelings, shows care",
}

// requestedModelTones returns the model tones to draft, in a fixed order.
func requestedModelTones(tone model.ToneType) []string {
	if tone != "" {
		return []string{modelTone[tone]}
	}
	tones := make([]string, 0, len(model.AllTones))
	for _, t := range model.AllTones {
		tones = append(tones, modelTone[t])
	}
	return tones
}

// Capabilities returns the answer shapes the action asks for.
func Capabilities(action model.AnalysisAction) []llm.Capability {
	var caps []llm.Capability
	if action.WantsAnalysis() {
		caps = append(caps, llm.CapabilityAnalysis)
	}
	if action.WantsReplies() {
		caps = append(caps, llm.CapabilityReplies)
	}
	return caps
}

// BuildPrompt renders the instruction for one review. It is deterministic and
// omits every absent field instead of printing a placeholder. When structured
// is true the model is told to answer through function calls instead of JSON text.
func BuildPrompt(in PromptInput, structured bool) string {
	action := in.Action
	if action == "" {
		action = model.ActionBoth
	}
	tones := requestedModelTones(in.Tone)

	var b strings.Builder
	b.WriteString("You are an assistant that analyzes customer reviews for businesses and drafts public responses.\n")

	writeBusinessContext(&b, in.Business)

	b.WriteString("\nReview:\n")
	if name := strings.TrimSpace(in.ReviewerName); name != "" {
		fmt.Fprintf(&b, "- Reviewer: %s\n", name)
	}
	fmt.Fprintf(&b, "- Rating: %d/5 stars\n", in.Rating)
	fmt.Fprintf(&b, "- Text: %q\n", in.ReviewText)

	b.WriteString("\nTasks:\n")
	step := 1
	if action.WantsAnalysis() {
		fmt.Fprintf(&b, "%d. Analyze the review: overall sentiment, how urgently it needs a response, a short category, "+
			"2-5 key themes, a one-sentence summary, and whether answering well needs business information that is not provided "+
			"(list what is missing).\n", step)
		step++
	}
	if action.WantsReplies() {
		if len(tones) == 1 {
			fmt.Fprintf(&b, "%d. Draft one reply in a %s tone.\n", step, tones[0])
		} else {
			fmt.Fprintf(&b, "%d. Draft one reply for each of these tones: %s.\n", step, strings.Join(tones, ", "))
		}
	}

	if structured {
		writeToolInstructions(&b, action)
	} else {
		writeJSONSchema(&b, action, tones)
	}

	b.WriteString("\nGuidelines:\n")
	if action.WantsAnalysis() {
		b.WriteString("- Sentiment should reflect the overall feeling of the review\n")
		b.WriteString("- Urgency: \"high\" for negative reviews or urgent issues, \"medium\" for neutral or mixed, \"low\" for positive reviews\n")
	}
	if action.WantsReplies() {
		b.WriteString("- Each reply should be 2-4 sentences, address the reviewer by name if provided, and be appropriate for posting publicly\n")
		b.WriteString("- Only state business facts that appear in the business context\n")
		for _, t := range tones {
			fmt.Fprintf(&b, "- %s\n", toneGuidelines[t])
		}
	}

	return b.String()
}

func writeBusinessContext(b *strings.Builder, ctx *model.BusinessContext) {
	if ctx == nil {
		return
	}

	var lines []string
	add := func(label, value string) {
		if v := strings.TrimSpace(value); v != "" {
			lines = append(lines, fmt.Sprintf("- %s: %s", label, v))
		}
	}
	add("Business name", ctx.Name)
	add("Category", ctx.Category)
	add("Default tone", ctx.DefaultTone)

	var facts []string
	for _, f := range ctx.Facts {
		if f = strings.TrimSpace(f); f != "" {
			facts = append(facts, "  - "+f)
		}
	}
	if len(facts) > 0 {
		lines = append(lines, "- Facts:")
		lines = append(lines, facts...)
	}
	add("Refund policy", ctx.RefundPolicy)
	add("Opening hours", ctx.OpeningHours)

	if len(lines) == 0 {
		return
	}
	b.WriteString("\nBusiness context:\n")
	b.WriteString(strings.Join(lines, "\n"))
	b.WriteString("\n")
}

func writeToolInstructions(b *strings.Builder, action model.AnalysisAction) {
	b.WriteString("\nAnswer only by calling the provided functions:\n")
	if action.WantsAnalysis() {
		fmt.Fprintf(b, "- %s with the analysis\n", llm.ToolRecordAnalysis)
	}
	if action.WantsReplies() {
		fmt.Fprintf(b, "- %s with the reply drafts\n", llm.ToolDraftReplies)
	}
}

func writeJSONSchema(b *strings.Builder, action model.AnalysisAction, tones []string) {
	b.WriteString("\nRespond ONLY with valid JSON, no markdown or extra text, using this structure:\n\n{\n")

	var sections []string
	if action.WantsAnalysis() {
		sections = append(sections, `  "analysis": {
    "sentiment": "positive" OR "neutral" OR "negative",
    "urgency": "high" OR "medium" OR "low",
    "category": "short category of the review",
    "themes": ["key", "themes"],
    "summary": "one sentence summary",
    "missingInfoRequired": true OR false,
    "missingInfoFields": ["business information needed to answer well"]
  }`)
	}
	if action.WantsReplies() {
		replies := make([]string, 0, len(tones))
		for _, t := range tones {
			replies = append(replies, fmt.Sprintf(`    {
      "tone": %q,
      "text": "A %s response to the review"
    }`, t, t))
		}
		sections = append(sections, "  \"replies\": [\n"+strings.Join(replies, ",\n")+"\n  ]")
	}

	b.WriteString(strings.Join(sections, ",\n"))
	b.WriteString("\n}\n")
}
