package assistant

import (
	"encoding/json"
	"regexp"
	"strings"
)

var teamPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)(?:team member|member|person|user|stakeholder)[:\s]+([A-Z][a-z]+(?:\s+[A-Z][a-z]+)*)`),
	regexp.MustCompile(`([A-Z][a-z]+\s+[A-Z][a-z]+)\s+(?:is|as|role|works as)`),
	regexp.MustCompile(`(?i)email[:\s]+([a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,})`),
}

var namePatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)(?:project|case)[:\s]+["']?([^"'` + "\n" + `]+)["']?`),
	regexp.MustCompile(`(?i)name[:\s]+["']?([^"'` + "\n" + `]+)["']?`),
}

var keywordPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)keywords?[:\s]+([^.` + "\n" + `]+)`),
	regexp.MustCompile(`(?i)(?:terms?|phrases?)[:\s]+([^.` + "\n" + `]+)`),
}

// jsonObjectPattern matches the first JSON object (one nesting level) in
// free text; deeper structures still parse because the match is handed
// to the JSON decoder as a whole.
var jsonObjectPattern = regexp.MustCompile(`\{[^{}]*(?:\{[^{}]*\}[^{}]*)*\}`)

var completionSignals = []string{"complete", "finished", "done", "ready", "all set", "configured"}

// reply is the structured form the model is asked to answer in.
type reply struct {
	Response      string         `json:"response"`
	ExtractedData map[string]any `json:"extracted_data"`
	NextStep      string         `json:"next_step"`
	QuickActions  []string       `json:"quick_actions"`
	Progress      *int           `json:"progress"`
	IsComplete    *bool          `json:"is_complete"`
}

// parseReply extracts the structured reply from the model's text, falling
// back to natural-language extraction when no valid JSON is present.
func parseReply(text, currentStep string, configData map[string]any) reply {
	if m := jsonObjectPattern.FindString(text); m != "" {
		var r reply
		if err := json.Unmarshal([]byte(m), &r); err == nil && strings.TrimSpace(r.Response) != "" {
			return r
		}
	}
	return parseNaturalLanguage(text, currentStep, configData)
}

// parseNaturalLanguage mines a conversational answer for configuration
// data when the model ignored the JSON format instruction.
func parseNaturalLanguage(text, currentStep string, configData map[string]any) reply {
	extracted := map[string]any{}
	nextStep := currentStep
	lower := strings.ToLower(text)

	if members := extractMatches(teamPatterns, text); len(members) > 0 && !hasList(configData, "team_members") {
		rows := make([]map[string]any, 0, len(members))
		for _, name := range members {
			rows = append(rows, map[string]any{"name": name})
		}
		extracted["team_members"] = rows
	}

	if name := firstMatch(namePatterns, text); name != "" {
		if strings.Contains(lower, "project") {
			extracted["project_name"] = name
		} else {
			extracted["case_name"] = name
		}
	}

	if fragments := extractMatches(keywordPatterns, text); len(fragments) > 0 && !hasList(configData, "keywords") {
		var keywords []string
		for _, fragment := range fragments {
			for _, part := range strings.Split(fragment, ",") {
				if kw := strings.Trim(part, " ,.;"); kw != "" {
					keywords = append(keywords, kw)
				}
			}
		}
		if len(keywords) > 0 {
			extracted["keywords"] = keywords
		}
	}

	for _, signal := range completionSignals {
		if strings.Contains(lower, signal) && hasMinimumConfig(configData) {
			nextStep = StepComplete
			break
		}
	}

	switch {
	case strings.Contains(lower, "team") || strings.Contains(lower, "member"):
		if !hasList(configData, "team_members") {
			nextStep = StepTeamBuilding
		}
	case strings.Contains(lower, "project") || strings.Contains(lower, "case"):
		if stringValue(configData, "project_name") == "" && stringValue(configData, "case_name") == "" {
			nextStep = StepProjectSetup
		}
	case strings.Contains(lower, "keyword") || strings.Contains(lower, "term"):
		nextStep = StepKeywords
	}

	return reply{
		Response:      text,
		ExtractedData: extracted,
		NextStep:      nextStep,
		QuickActions:  defaultQuickActions(nextStep),
	}
}

func extractMatches(patterns []*regexp.Regexp, text string) []string {
	var out []string
	for _, p := range patterns {
		for _, m := range p.FindAllStringSubmatch(text, -1) {
			for _, group := range m[1:] {
				if g := strings.TrimSpace(group); g != "" {
					out = append(out, g)
				}
			}
		}
	}
	return out
}

func firstMatch(patterns []*regexp.Regexp, text string) string {
	for _, p := range patterns {
		if m := p.FindStringSubmatch(text); len(m) > 1 {
			return strings.TrimSpace(m[1])
		}
	}
	return ""
}

func hasList(m map[string]any, key string) bool {
	v, ok := m[key].([]any)
	return ok && len(v) > 0
}

func stringValue(m map[string]any, key string) string {
	if v, ok := m[key].(string); ok {
		return strings.TrimSpace(v)
	}
	return ""
}
