package wizard

import "strings"

// ProfileType selects which step registry drives the wizard.
type ProfileType string

const (
	ProfileProject     ProfileType = "project"
	ProfileCase        ProfileType = "case"
	ProfileIntelligent ProfileType = "intelligent"
	ProfileUsers       ProfileType = "users"
)

// ParseProfileType normalizes an entry-screen selection.
func ParseProfileType(s string) (ProfileType, bool) {
	switch ProfileType(strings.ToLower(strings.TrimSpace(s))) {
	case ProfileProject:
		return ProfileProject, true
	case ProfileCase:
		return ProfileCase, true
	case ProfileIntelligent:
		return ProfileIntelligent, true
	case ProfileUsers:
		return ProfileUsers, true
	default:
		return "", false
	}
}

// State is the whole mutable record behind the form wizard. CurrentStep 0
// is the entry screen; 1..TotalSteps index into the active registry.
//
// Data may still hold payloads saved under the other profile type (the
// user can back out and switch); submission reads only the step ids of
// the active registry.
type State struct {
	CurrentStep int         `json:"current_step"`
	ProfileType ProfileType `json:"profile_type"`
	Data        PayloadMap  `json:"data"`
	TotalSteps  int         `json:"total_steps"`
}

// NewState returns a state parked on the entry screen.
func NewState() State {
	return State{Data: PayloadMap{}}
}

// Clone returns a deep-enough copy: the map is copied, payloads are value
// types.
func (s State) Clone() State {
	out := s
	out.Data = make(PayloadMap, len(s.Data))
	for k, v := range s.Data {
		out.Data[k] = v
	}
	return out
}

// AtEntry reports whether the wizard sits on the type-selection screen.
func (s State) AtEntry() bool { return s.CurrentStep == 0 }

// AtLastStep reports whether the primary action should read "Submit".
func (s State) AtLastStep() bool {
	return s.TotalSteps > 0 && s.CurrentStep == s.TotalSteps
}

// Typed payload accessors. Each returns false when the step has not been
// saved yet (or was saved under a different profile type).

func (s State) ProjectIdentification() (ProjectIdentificationPayload, bool) {
	p, ok := s.Data[KindProjectIdentification].(ProjectIdentificationPayload)
	return p, ok
}

func (s State) Parties() (PartiesPayload, bool) {
	p, ok := s.Data[KindParties].(PartiesPayload)
	return p, ok
}

func (s State) Contract() (ContractPayload, bool) {
	p, ok := s.Data[KindContract].(ContractPayload)
	return p, ok
}

func (s State) CaseIdentification() (CaseIdentificationPayload, bool) {
	p, ok := s.Data[KindCaseIdentification].(CaseIdentificationPayload)
	return p, ok
}

func (s State) LegalTeam() (LegalTeamPayload, bool) {
	p, ok := s.Data[KindLegalTeam].(LegalTeamPayload)
	return p, ok
}

func (s State) Claims() (ClaimsPayload, bool) {
	p, ok := s.Data[KindClaims].(ClaimsPayload)
	return p, ok
}

func (s State) Deadlines() (DeadlinesPayload, bool) {
	p, ok := s.Data[KindDeadlines].(DeadlinesPayload)
	return p, ok
}
