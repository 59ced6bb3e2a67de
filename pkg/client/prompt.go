package client

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"

	"github.com/menta2k/camera-analyzer/pkg/types"
)

const promptTemplate = `You are a people and object detector.

The image is %d pixels wide and %d pixels high.

Return JSON only:
{
  "people": [{"rectangle": {"x": 0, "y": 0, "w": 0, "h": 0}, "confidence": 0.0}],
  "objects": [{"rectangle": {"x": 0, "y": 0, "w": 0, "h": 0}, "object": "label", "confidence": 0.0}]
}

HARD RULES
- Coordinates are integer PIXELS of the image above, x/y is the top-left corner.
- One entry in "people" per visible person.
- "objects" lists other visible objects; write every label in language %q.
- Use empty arrays when nothing is found.
- JSON only. No markdown, no code fences, no comments, no trailing commas.`

var (
	reBlock    = regexp.MustCompile(`(?s)/\*.*?\*/`)
	reLine     = regexp.MustCompile(`(?m)^\s*//.*$`)
	reInline   = regexp.MustCompile(`(?m)//.*$`)
	reTrailing = regexp.MustCompile(`,(\s*[}\]])`)
)

// DetectionPrompt builds the prompt sent to LLM vision backends
func DetectionPrompt(width, height int, language string) string {
	if language == "" {
		language = "en"
	}
	return fmt.Sprintf(promptTemplate, width, height, language)
}

// ParseModelResult parses the JSON answer of a vision model into an AnalysisResult
func ParseModelResult(raw string) (*types.AnalysisResult, error) {
	cleaned := sanitizeModelJSON(raw)
	if !strings.HasPrefix(cleaned, "{") {
		return nil, fmt.Errorf("no json object in model response: %.80q", raw)
	}

	var result types.AnalysisResult
	if err := json.Unmarshal([]byte(cleaned), &result); err != nil {
		return nil, fmt.Errorf("failed to parse model response: %w", err)
	}
	return &result, nil
}

// sanitizeModelJSON removes code fences, comments, and trailing commas from JSON response
func sanitizeModelJSON(raw string) string {
	raw = strings.TrimSpace(raw)

	// Strip triple-backtick fences if present
	if strings.HasPrefix(raw, "```") {
		if i := strings.Index(raw, "\n"); i >= 0 {
			raw = raw[i+1:]
		}
		if j := strings.LastIndex(raw, "```"); j >= 0 {
			raw = raw[:j]
		}
	}
	raw = strings.TrimSpace(raw)
	raw = strings.Trim(raw, "`")

	raw = reBlock.ReplaceAllString(raw, "")
	raw = reLine.ReplaceAllString(raw, "")
	raw = reInline.ReplaceAllString(raw, "")
	raw = reTrailing.ReplaceAllString(raw, "$1")

	// Keep only the outermost {...}
	if start := strings.Index(raw, "{"); start >= 0 {
		if end := strings.LastIndex(raw, "}"); end > start {
			raw = raw[start : end+1]
		}
	}
	return strings.TrimSpace(raw)
}
