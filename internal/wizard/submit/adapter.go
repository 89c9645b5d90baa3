// Package submit normalizes accumulated wizard state into the gateway's
// creation requests and interprets the result. It reads only the step
// payloads of the active profile type; answers left over from the other
// registry are ignored.
package submit

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"casewizard/internal/types"
	"casewizard/internal/utils"
	"casewizard/internal/wizard"
	"casewizard/internal/wizard/apiclient"
	"casewizard/internal/wizard/draft"
)

// Creator is the slice of the API client the adapter needs.
type Creator interface {
	CreateProject(ctx context.Context, body types.ProjectCreate) (types.RecordRef, error)
	CreateCase(ctx context.Context, body types.CaseCreate) (types.RecordRef, error)
}

// ContextStore persists the created record and clears the draft.
type ContextStore interface {
	SetActiveContext(ref types.RecordRef) error
	ClearDraft() error
}

// ExpiredFunc is invoked when submission fails with an auth error; the
// session guardian owns the rest of that path.
type ExpiredFunc func(ctx context.Context)

// ErrSessionExpired reports that submission hit the auth-expiry path; the
// draft is preserved and the guardian has been notified.
var ErrSessionExpired = errors.New("session expired during submission")

// Adapter maps wizard state to creation requests and drives the
// post-success bookkeeping (clear draft, store active context).
type Adapter struct {
	client    Creator
	store     ContextStore
	onExpired ExpiredFunc
}

func New(client Creator, store ContextStore, onExpired ExpiredFunc) *Adapter {
	return &Adapter{client: client, store: store, onExpired: onExpired}
}

// Result is what the caller needs to navigate into the new workspace.
type Result struct {
	Record       types.RecordRef
	WorkspaceURL string
}

// Submit builds the active-type request, posts it, and on success clears
// the draft and records the active context. On failure all wizard state
// is left intact for retry.
func (a *Adapter) Submit(ctx context.Context, st wizard.State) (Result, error) {
	var (
		ref types.RecordRef
		err error
	)
	switch st.ProfileType {
	case wizard.ProfileProject:
		ref, err = a.client.CreateProject(ctx, BuildProjectRequest(st))
	case wizard.ProfileCase:
		ref, err = a.client.CreateCase(ctx, BuildCaseRequest(st))
	default:
		return Result{}, fmt.Errorf("submit: no creation request for profile type %q", st.ProfileType)
	}
	if err != nil {
		if errors.Is(err, apiclient.ErrUnauthorized) {
			if a.onExpired != nil {
				a.onExpired(ctx)
			}
			return Result{}, ErrSessionExpired
		}
		return Result{}, err
	}

	// Store-before-navigate: the created record must be findable even if
	// the caller never completes the redirect.
	if a.store != nil {
		if err := a.store.SetActiveContext(ref); err != nil {
			return Result{}, fmt.Errorf("submit: record created (%s) but active context not stored: %w", ref.ID, err)
		}
		if err := a.store.ClearDraft(); err != nil {
			return Result{}, fmt.Errorf("submit: record created (%s) but draft not cleared: %w", ref.ID, err)
		}
	}
	return Result{Record: ref, WorkspaceURL: WorkspaceURL(ref)}, nil
}

// WorkspaceURL builds the post-creation navigation target.
func WorkspaceURL(ref types.RecordRef) string {
	if ref.Type == "case" {
		return "/workspace?caseId=" + ref.ID
	}
	return "/workspace?projectId=" + ref.ID
}

// BuildProjectRequest maps the project registry's payloads into the
// creation body. Empty name and code are defaulted to generated
// placeholders; list fields are always present.
func BuildProjectRequest(st wizard.State) types.ProjectCreate {
	ident, _ := st.ProjectIdentification()
	parties, _ := st.Parties()
	contract, _ := st.Contract()

	name := strings.TrimSpace(ident.ProjectName)
	if name == "" {
		name = utils.PlaceholderName("Untitled Project", ident.ProjectCode)
	}
	code := strings.TrimSpace(ident.ProjectCode)
	if code == "" {
		code = utils.PlaceholderCode("PROJ", name)
	}

	return types.NormalizeProject(types.ProjectCreate{
		ProjectName:    name,
		ProjectCode:    code,
		StartDate:      optionalString(ident.StartDate),
		CompletionDate: optionalString(ident.CompletionDate),
		ContractType:   resolveCustom(contract.Type, contract.CustomType),
		Stakeholders:   parties.Stakeholders,
		Keywords:       parties.Keywords,
	})
}

// BuildCaseRequest mirrors BuildProjectRequest for the case registry.
func BuildCaseRequest(st wizard.State) types.CaseCreate {
	ident, _ := st.CaseIdentification()
	team, _ := st.LegalTeam()
	claims, _ := st.Claims()
	deadlines, _ := st.Deadlines()

	name := strings.TrimSpace(ident.CaseName)
	if name == "" {
		name = utils.PlaceholderName("Untitled Case", ident.CaseID)
	}

	route := resolveCustomValue(ident.ResolutionRoute, ident.CustomResolutionRoute)
	if route == "" {
		route = "TBC"
	}
	status := resolveCustomValue(ident.CaseStatus, ident.CustomCaseStatus)
	if status == "" {
		status = "discovery"
	}

	return types.NormalizeCase(types.CaseCreate{
		CaseName:        name,
		CaseID:          optionalString(ident.CaseID),
		ResolutionRoute: route,
		Claimant:        optionalString(ident.Claimant),
		Defendant:       optionalString(ident.Defendant),
		CaseStatus:      status,
		Client:          optionalString(ident.Client),
		LegalTeam:       team.Members,
		HeadsOfClaim:    claims.Heads,
		Keywords:        claims.Keywords,
		Deadlines:       deadlines.Deadlines,
	})
}

// resolveCustom collapses a select value + custom override into the
// submitted pointer: nil when unset, the override when the custom marker
// was chosen, never the literal marker itself.
func resolveCustom(value, custom string) *string {
	return optionalString(resolveCustomValue(value, custom))
}

func resolveCustomValue(value, custom string) string {
	value = strings.TrimSpace(value)
	custom = strings.TrimSpace(custom)
	if strings.EqualFold(value, wizard.CustomOption) {
		return custom
	}
	return value
}

func optionalString(s string) *string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return &s
}

// Ensure the concrete stores satisfy the adapter's narrow interfaces.
var _ ContextStore = (*draft.Store)(nil)
var _ Creator = (*apiclient.Client)(nil)
