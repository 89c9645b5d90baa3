package assistant

// Conversational step ids. The flow is linear but the model may skip
// ahead when the user supplies everything in one message.
const (
	StepIntroduction = "introduction"
	StepTeamBuilding = "team_building"
	StepProjectSetup = "project_setup"
	StepIDValidation = "id_validation"
	StepKeywords     = "keywords"
	StepReview       = "review"
	StepComplete     = "complete"
)

var stepWeights = map[string]int{
	StepIntroduction: 0,
	StepTeamBuilding: 25,
	StepProjectSetup: 50,
	StepIDValidation: 60,
	StepKeywords:     75,
	StepReview:       90,
	StepComplete:     100,
}

// progressFor blends the step weight with bonuses for data already
// collected, capped at 100.
func progressFor(step string, configData map[string]any) int {
	p := stepWeights[step]
	if hasList(configData, "team_members") {
		p += 5
	}
	if stringValue(configData, "project_name") != "" || stringValue(configData, "case_name") != "" {
		p += 5
	}
	if stringValue(configData, "project_code") != "" || stringValue(configData, "case_number") != "" {
		p += 10
	}
	if hasList(configData, "keywords") {
		p += 5
	}
	if p > 100 {
		p = 100
	}
	return p
}

var quickActions = map[string][]string{
	StepIntroduction: {"Set up a project", "Set up a case", "What do you need from me?"},
	StepTeamBuilding: {"Add team members", "Skip team setup", "Who should be on the team?"},
	StepProjectSetup: {"Name the project", "Name the case", "Suggest a name"},
	StepIDValidation: {"Generate a code", "Use my own code", "What format is expected?"},
	StepKeywords:     {"Add keywords", "Suggest keywords", "Skip keywords"},
	StepReview:       {"Looks good, create it", "Change something", "Start over"},
	StepComplete:     {"Open the workspace", "Start another"},
}

func defaultQuickActions(step string) []string {
	if actions, ok := quickActions[step]; ok {
		return actions
	}
	return quickActions[StepIntroduction]
}

// hasMinimumConfig reports whether the collected data is enough to
// create a record: a team, a name, and an identifier of either kind.
func hasMinimumConfig(configData map[string]any) bool {
	if !hasList(configData, "team_members") {
		return false
	}
	if stringValue(configData, "project_name") == "" && stringValue(configData, "case_name") == "" {
		return false
	}
	return stringValue(configData, "project_code") != "" || stringValue(configData, "case_number") != ""
}
