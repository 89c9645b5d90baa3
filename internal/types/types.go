// Package types holds the wire contract shared by the gateway and the
// wizard client: creation payloads, the intelligent-config exchange, and
// the auth refresh shapes.
package types

import "strings"

// Stakeholder is one row of a project's stakeholder table.
type Stakeholder struct {
	Role         string `json:"role"`
	Name         string `json:"name"`
	Email        string `json:"email,omitempty"`
	Organization string `json:"organization,omitempty"`
}

// Keyword is a search term plus comma-separated free-text variations.
type Keyword struct {
	Name       string `json:"name"`
	Variations string `json:"variations,omitempty"`
	Definition string `json:"definition,omitempty"`
}

type LegalTeamMember struct {
	Role string `json:"role"`
	Name string `json:"name"`
}

type HeadOfClaim struct {
	Head    string `json:"head"`
	Status  string `json:"status"`
	Actions string `json:"actions,omitempty"`
}

type Deadline struct {
	Task        string `json:"task"`
	Description string `json:"description,omitempty"`
	// Date is an ISO date (2006-01-02) or empty when not set.
	Date string `json:"date,omitempty"`
}

// ProjectCreate is the body of POST /api/projects.
// List fields are always present, empty when no rows were added.
type ProjectCreate struct {
	ProjectName    string        `json:"project_name"`
	ProjectCode    string        `json:"project_code"`
	StartDate      *string       `json:"start_date"`
	CompletionDate *string       `json:"completion_date"`
	ContractType   *string       `json:"contract_type"`
	Stakeholders   []Stakeholder `json:"stakeholders"`
	Keywords       []Keyword     `json:"keywords"`
}

// CaseCreate is the body of POST /api/cases.
type CaseCreate struct {
	CaseName        string            `json:"case_name"`
	CaseID          *string           `json:"case_id"`
	ResolutionRoute string            `json:"resolution_route"`
	Claimant        *string           `json:"claimant"`
	Defendant       *string           `json:"defendant"`
	CaseStatus      string            `json:"case_status"`
	Client          *string           `json:"client"`
	LegalTeam       []LegalTeamMember `json:"legal_team"`
	HeadsOfClaim    []HeadOfClaim     `json:"heads_of_claim"`
	Keywords        []Keyword         `json:"keywords"`
	Deadlines       []Deadline        `json:"deadlines"`
}

// RecordRef identifies a created project or case.
type RecordRef struct {
	ID   string `json:"id"`
	Type string `json:"type"`
	Name string `json:"name,omitempty"`
	Code string `json:"code,omitempty"`
}

// ChatMessage is one turn of the assistant conversation history.
type ChatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// ConfigRequest is the body of POST /api/ai/intelligent-config.
type ConfigRequest struct {
	Message             string         `json:"message"`
	ConversationHistory []ChatMessage  `json:"conversation_history"`
	CurrentStep         string         `json:"current_step"`
	ConfigurationData   map[string]any `json:"configuration_data"`
}

// ConfigResponse is the assistant's reply to a configuration turn.
type ConfigResponse struct {
	Response              string         `json:"response"`
	NextStep              string         `json:"next_step,omitempty"`
	ConfigurationData     map[string]any `json:"configuration_data,omitempty"`
	QuickActions          []string       `json:"quick_actions,omitempty"`
	Progress              int            `json:"progress"`
	ConfigurationComplete bool           `json:"configuration_complete"`
	FinalConfiguration    map[string]any `json:"final_configuration,omitempty"`
}

// StatusResponse reports assistant availability per provider.
type StatusResponse struct {
	Gemini       bool `json:"gemini"`
	Groq         bool `json:"groq"`
	AnyAvailable bool `json:"any_available"`
}

type RefreshRequest struct {
	Token string `json:"token"`
}

type RefreshResponse struct {
	AccessToken string `json:"access_token"`
}

// ErrorBody is the JSON shape of every gateway error response.
type ErrorBody struct {
	Detail string `json:"detail"`
}

// NormalizeProject trims whitespace and materializes empty lists so the
// serialized body never carries null where a list is expected.
func NormalizeProject(p ProjectCreate) ProjectCreate {
	p.ProjectName = strings.TrimSpace(p.ProjectName)
	p.ProjectCode = strings.TrimSpace(p.ProjectCode)
	if p.Stakeholders == nil {
		p.Stakeholders = []Stakeholder{}
	}
	if p.Keywords == nil {
		p.Keywords = []Keyword{}
	}
	return p
}

// NormalizeCase mirrors NormalizeProject for case bodies.
func NormalizeCase(c CaseCreate) CaseCreate {
	c.CaseName = strings.TrimSpace(c.CaseName)
	c.ResolutionRoute = strings.TrimSpace(c.ResolutionRoute)
	c.CaseStatus = strings.TrimSpace(c.CaseStatus)
	if c.LegalTeam == nil {
		c.LegalTeam = []LegalTeamMember{}
	}
	if c.HeadsOfClaim == nil {
		c.HeadsOfClaim = []HeadOfClaim{}
	}
	if c.Keywords == nil {
		c.Keywords = []Keyword{}
	}
	if c.Deadlines == nil {
		c.Deadlines = []Deadline{}
	}
	return c
}
