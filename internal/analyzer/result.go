package analyzer

import (
	"encoding/json"
	"strings"
)

// ModerationResult is the moderation verdict extracted from model output.
type ModerationResult struct {
	RecommendedAction string  `json:"recommended_action"`
	CrisisLevel       string  `json:"crisis_level"`
	Confidence        float64 `json:"confidence"`
	Reasoning         string  `json:"reasoning"`
	Toxic             bool    `json:"toxic"`
	Spam              bool    `json:"spam"`
}

// EnhancementResult is the discovery metadata extracted from model output.
type EnhancementResult struct {
	Mood       string   `json:"mood"`
	Tags       []string `json:"tags"`
	Keywords   []string `json:"keywords"`
	ViralScore float64  `json:"viral_score"`
}

// Result is a tagged union over the two analysis modes. Exactly one of the
// accessors returns ok when the model output parsed cleanly.
type Result struct {
	raw         string
	moderation  *ModerationResult
	enhancement *EnhancementResult
}

// Raw returns the unprocessed model output text.
func (r *Result) Raw() string { return r.raw }

func (r *Result) Moderation() (*ModerationResult, bool) {
	return r.moderation, r.moderation != nil
}

func (r *Result) Enhancement() (*EnhancementResult, bool) {
	return r.enhancement, r.enhancement != nil
}

func parseResult(mode Mode, resp *messagesResponse) *Result {
	var text strings.Builder
	for _, block := range resp.Content {
		if block.Type == "text" {
			text.WriteString(block.Text)
		}
	}
	return ParseText(mode, text.String())
}

// ParseText interprets raw model output for the given mode. Output that is
// not the expected JSON shape yields an untagged Result.
func ParseText(mode Mode, text string) *Result {
	result := &Result{raw: text}
	payload, ok := extractJSON(result.raw)
	if !ok {
		return result
	}

	switch mode {
	case ModeModeration:
		var m ModerationResult
		if json.Unmarshal(payload, &m) == nil {
			result.moderation = &m
		}
	case ModeEnhancement:
		var e EnhancementResult
		if json.Unmarshal(payload, &e) == nil {
			result.enhancement = &e
		}
	}
	return result
}

// extractJSON pulls the first top-level JSON object out of free-form model
// output. Models tend to wrap the object in prose or code fences.
func extractJSON(text string) ([]byte, bool) {
	start := strings.IndexByte(text, '{')
	end := strings.LastIndexByte(text, '}')
	if start < 0 || end <= start {
		return nil, false
	}
	return []byte(text[start : end+1]), true
}
