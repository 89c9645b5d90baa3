package assistant

import (
	"encoding/json"
	"fmt"
	"strings"

	"casewizard/internal/types"
)

var stepInstructions = map[string]string{
	StepIntroduction: "Greet the user and ask whether they are setting up a project or a case. Keep it short.",
	StepTeamBuilding: "Collect team members. Ask for names, and emails or roles when offered. Move on once at least one member is captured or the user declines.",
	StepProjectSetup: "Collect the project or case name. Offer to suggest one based on what the user has said.",
	StepIDValidation: "Collect or generate a project code or case number. Codes are uppercased with hyphens instead of spaces.",
	StepKeywords:     "Collect search keywords and phrases relevant to the matter. Suggest candidates from earlier context.",
	StepReview:       "Summarise everything collected so far and ask the user to confirm before creating the record.",
	StepComplete:     "Confirm the record was created and tell the user where to find it.",
}

// buildPrompt assembles the instruction block, conversation history and
// collected data into a single completion prompt.
func buildPrompt(req types.ConfigRequest) string {
	var b strings.Builder

	b.WriteString("You are a configuration assistant for a legal evidence platform. ")
	b.WriteString("You help users set up projects and cases through conversation.\n\n")

	step := req.CurrentStep
	if step == "" {
		step = StepIntroduction
	}
	b.WriteString("Current step: " + step + "\n")
	if instr, ok := stepInstructions[step]; ok {
		b.WriteString("Step goal: " + instr + "\n")
	}

	if len(req.ConfigurationData) > 0 {
		data, _ := json.Marshal(req.ConfigurationData)
		b.WriteString("Configuration collected so far: " + string(data) + "\n")
	}

	b.WriteString("\nRespond with a single JSON object, no prose outside it:\n")
	b.WriteString(`{"response": "<your reply to the user>", "extracted_data": {<new fields learned this turn>}, "next_step": "<one of introduction, team_building, project_setup, id_validation, keywords, review, complete>", "quick_actions": ["<up to 3 short suggestions>"], "progress": <0-100>, "is_complete": <true only when the user confirmed creation at review>}`)
	b.WriteString("\n\nConversation so far:\n")

	history := req.ConversationHistory
	if len(history) > 12 {
		history = history[len(history)-12:]
	}
	for _, msg := range history {
		fmt.Fprintf(&b, "%s: %s\n", msg.Role, msg.Content)
	}
	fmt.Fprintf(&b, "user: %s\nassistant:", req.Message)

	return b.String()
}
