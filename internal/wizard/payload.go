package wizard

import (
	"encoding/json"
	"fmt"

	"casewizard/internal/types"
)

// StepPayload is the saved answer set of one step. Each step id owns one
// concrete payload type; the engine never stores loose field maps.
type StepPayload interface {
	Kind() string
}

// Payload kinds double as the step ids they belong to.
const (
	KindProjectIdentification = "project_identification"
	KindParties               = "parties"
	KindContract              = "contract"
	KindCaseIdentification    = "case_identification"
	KindLegalTeam             = "legal_team"
	KindClaims                = "claims"
	KindDeadlines             = "deadlines"
	KindReview                = "review"
)

// ProjectIdentificationPayload holds the project's name, code and dates.
// Dates are ISO (2006-01-02) or empty.
type ProjectIdentificationPayload struct {
	ProjectName    string `json:"project_name"`
	ProjectCode    string `json:"project_code"`
	StartDate      string `json:"start_date,omitempty"`
	CompletionDate string `json:"completion_date,omitempty"`
}

func (ProjectIdentificationPayload) Kind() string { return KindProjectIdentification }

// PartiesPayload holds the stakeholder and keyword tables of a project.
type PartiesPayload struct {
	Stakeholders []types.Stakeholder `json:"stakeholders"`
	Keywords     []types.Keyword     `json:"keywords"`
}

func (PartiesPayload) Kind() string { return KindParties }

// ContractPayload holds the contract type selection. CustomType carries the
// free-text override when Type is the custom marker.
type ContractPayload struct {
	Type       string `json:"type,omitempty"`
	CustomType string `json:"custom_type,omitempty"`
}

func (ContractPayload) Kind() string { return KindContract }

type CaseIdentificationPayload struct {
	CaseName              string `json:"case_name"`
	CaseID                string `json:"case_id,omitempty"`
	ResolutionRoute       string `json:"resolution_route,omitempty"`
	CustomResolutionRoute string `json:"custom_resolution_route,omitempty"`
	Claimant              string `json:"claimant,omitempty"`
	Defendant             string `json:"defendant,omitempty"`
	CaseStatus            string `json:"case_status,omitempty"`
	CustomCaseStatus      string `json:"custom_case_status,omitempty"`
	Client                string `json:"client,omitempty"`
}

func (CaseIdentificationPayload) Kind() string { return KindCaseIdentification }

type LegalTeamPayload struct {
	Members []types.LegalTeamMember `json:"members"`
}

func (LegalTeamPayload) Kind() string { return KindLegalTeam }

// ClaimsPayload holds the heads-of-claim table plus the case keyword table.
type ClaimsPayload struct {
	Heads    []types.HeadOfClaim `json:"heads"`
	Keywords []types.Keyword     `json:"keywords"`
}

func (ClaimsPayload) Kind() string { return KindClaims }

type DeadlinesPayload struct {
	Deadlines []types.Deadline `json:"deadlines"`
}

func (DeadlinesPayload) Kind() string { return KindDeadlines }

// ReviewPayload carries no fields; the review step only confirms.
type ReviewPayload struct{}

func (ReviewPayload) Kind() string { return KindReview }

// PayloadMap is the per-step answer store. It serializes each payload in a
// {"kind": ..., "data": ...} envelope so drafts round-trip to the concrete
// types on load.
type PayloadMap map[string]StepPayload

type payloadEnvelope struct {
	Kind string          `json:"kind"`
	Data json.RawMessage `json:"data"`
}

func (m PayloadMap) MarshalJSON() ([]byte, error) {
	out := make(map[string]payloadEnvelope, len(m))
	for id, p := range m {
		if p == nil {
			continue
		}
		data, err := json.Marshal(p)
		if err != nil {
			return nil, err
		}
		out[id] = payloadEnvelope{Kind: p.Kind(), Data: data}
	}
	return json.Marshal(out)
}

func (m *PayloadMap) UnmarshalJSON(b []byte) error {
	var raw map[string]payloadEnvelope
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	out := make(PayloadMap, len(raw))
	for id, env := range raw {
		p, err := decodePayload(env)
		if err != nil {
			return fmt.Errorf("step %s: %w", id, err)
		}
		out[id] = p
	}
	*m = out
	return nil
}

func decodePayload(env payloadEnvelope) (StepPayload, error) {
	switch env.Kind {
	case KindProjectIdentification:
		var p ProjectIdentificationPayload
		err := json.Unmarshal(env.Data, &p)
		return p, err
	case KindParties:
		var p PartiesPayload
		err := json.Unmarshal(env.Data, &p)
		return p, err
	case KindContract:
		var p ContractPayload
		err := json.Unmarshal(env.Data, &p)
		return p, err
	case KindCaseIdentification:
		var p CaseIdentificationPayload
		err := json.Unmarshal(env.Data, &p)
		return p, err
	case KindLegalTeam:
		var p LegalTeamPayload
		err := json.Unmarshal(env.Data, &p)
		return p, err
	case KindClaims:
		var p ClaimsPayload
		err := json.Unmarshal(env.Data, &p)
		return p, err
	case KindDeadlines:
		var p DeadlinesPayload
		err := json.Unmarshal(env.Data, &p)
		return p, err
	case KindReview:
		var p ReviewPayload
		err := json.Unmarshal(env.Data, &p)
		return p, err
	default:
		return nil, fmt.Errorf("unknown payload kind %q", env.Kind)
	}
}
