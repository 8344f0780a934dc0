package llm

// Function parameter schemas shared by structured providers.

var analysisToolSchema = map[string]interface{}{
	"type": "object",
	"properties": map[string]interface{}{
		"sentiment": map[string]interface{}{
			"type": "string",
			"enum": []string{"positive", "neutral", "negative"},
		},
		"urgency": map[string]interface{}{
			"type": "string",
			"enum": []string{"low", "medium", "high"},
		},
		"category": map[string]interface{}{"type": "string"},
		"themes": map[string]interface{}{
			"type":  "array",
			"items": map[string]interface{}{"type": "string"},
		},
		"summary":             map[string]interface{}{"type": "string"},
		"missingInfoRequired": map[string]interface{}{"type": "boolean"},
		"missingInfoFields": map[string]interface{}{
			"type":  "array",
			"items": map[string]interface{}{"type": "string"},
		},
	},
	"required": []string{"sentiment", "urgency", "category", "summary"},
}

var repliesToolSchema = map[string]interface{}{
	"type": "object",
	"properties": map[string]interface{}{
		"replies": map[string]interface{}{
			"type": "array",
			"items": map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"tone": map[string]interface{}{
						"type": "string",
						"enum": []string{"professional", "friendly", "empathetic"},
					},
					"text": map[string]interface{}{"type": "string"},
				},
				"required": []string{"tone", "text"},
			},
		},
	},
	"required": []string{"replies"},
}

func toolDescription(name string) string {
	if name == ToolRecordAnalysis {
		return "Record the sentiment, urgency, category and summary of a customer review."
	}
	return "Record reply drafts for a customer review, one per requested tone."
}

func toolSchema(name string) map[string]interface{} {
	if name == ToolRecordAnalysis {
		return analysisToolSchema
	}
	return repliesToolSchema
}
