// Package conversation drives the assistant-guided configuration flow: a
// turn-by-turn exchange with the intelligent-config endpoint that fills
// the same kind of record the form wizard does, without sharing its state
// object.
package conversation

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"

	"casewizard/internal/types"
)

// ErrTurnInFlight enforces the single-turn-at-a-time input lock: a new
// turn cannot start until the previous response was applied, so a stale
// response can never overwrite a newer one.
var ErrTurnInFlight = errors.New("a conversation turn is already in flight")

// Backend is the slice of the API client the engine needs.
type Backend interface {
	ConfigTurn(ctx context.Context, req types.ConfigRequest) (types.ConfigResponse, error)
	Status(ctx context.Context) (types.StatusResponse, error)
}

// ContextStore records the created record before the caller navigates.
type ContextStore interface {
	SetActiveContext(ref types.RecordRef) error
}

// State is the conversational engine's record; parallel to, and not
// interchangeable with, the form wizard's state.
type State struct {
	History         []types.ChatMessage `json:"history"`
	ConfigData      map[string]any      `json:"config_data"`
	CurrentStepID   string              `json:"current_step_id"`
	ProgressPercent int                 `json:"progress_percent"`
}

// Availability is the outcome of the pre-flight probe. When the assistant
// is unreachable the user keeps three ways forward instead of a dead end.
type Availability struct {
	Available bool
	// Affordances offered when Available is false.
	CanProvideKey  bool
	CanTryAnyway   bool
	CanFallBack    bool
	ProviderStatus types.StatusResponse
}

// TurnResult is what one exchanged turn produced.
type TurnResult struct {
	Reply        string
	QuickActions []string
	Progress     int
	Complete     bool
	Record       *types.RecordRef
}

const (
	initialStepID = "introduction"
	probeCacheTTL = 30 * time.Second
)

// Engine owns one conversation. Not safe for concurrent SendTurn calls by
// design: the in-flight lock rejects them instead of queueing.
type Engine struct {
	client      Backend
	store       ContextStore
	providerKey func() string

	mu       sync.Mutex
	inFlight bool
	st       State

	probeCache *expirable.LRU[string, types.StatusResponse]
}

// New creates an engine. providerKey reports a locally stored model
// provider credential (empty when none); with one present the remote
// probe is skipped.
func New(client Backend, store ContextStore, providerKey func() string) *Engine {
	return &Engine{
		client:      client,
		store:       store,
		providerKey: providerKey,
		st: State{
			ConfigData:    map[string]any{},
			CurrentStepID: initialStepID,
		},
		probeCache: expirable.NewLRU[string, types.StatusResponse](1, nil, probeCacheTTL),
	}
}

// State returns a copy of the conversation state.
func (e *Engine) State() State {
	e.mu.Lock()
	defer e.mu.Unlock()
	out := e.st
	out.History = append([]types.ChatMessage(nil), e.st.History...)
	out.ConfigData = make(map[string]any, len(e.st.ConfigData))
	for k, v := range e.st.ConfigData {
		out.ConfigData[k] = v
	}
	return out
}

// Start probes assistant availability. A cached probe result is reused
// for a short TTL so repeated entries into the flow do not hammer the
// status endpoint.
func (e *Engine) Start(ctx context.Context) (Availability, error) {
	if e.providerKey != nil && strings.TrimSpace(e.providerKey()) != "" {
		return Availability{Available: true}, nil
	}
	status, ok := e.probeCache.Get("status")
	if !ok {
		var err error
		status, err = e.client.Status(ctx)
		if err != nil {
			// The probe failing is not a dead end: the user can still
			// supply a key, try anyway, or use the form wizard.
			return Availability{CanProvideKey: true, CanTryAnyway: true, CanFallBack: true}, nil
		}
		e.probeCache.Add("status", status)
	}
	if status.AnyAvailable {
		return Availability{Available: true, ProviderStatus: status}, nil
	}
	return Availability{
		CanProvideKey:  true,
		CanTryAnyway:   true,
		CanFallBack:    true,
		ProviderStatus: status,
	}, nil
}

// SendTurn exchanges one turn. On failure the message stays in the
// history and the accumulated configuration is untouched; the caller can
// simply retry.
func (e *Engine) SendTurn(ctx context.Context, message string) (TurnResult, error) {
	message = strings.TrimSpace(message)
	if message == "" {
		return TurnResult{}, fmt.Errorf("message is required")
	}

	e.mu.Lock()
	if e.inFlight {
		e.mu.Unlock()
		return TurnResult{}, ErrTurnInFlight
	}
	e.inFlight = true
	e.st.History = append(e.st.History, types.ChatMessage{Role: "user", Content: message})
	req := types.ConfigRequest{
		Message:             message,
		ConversationHistory: append([]types.ChatMessage(nil), e.st.History...),
		CurrentStep:         e.st.CurrentStepID,
		ConfigurationData:   copyMap(e.st.ConfigData),
	}
	e.mu.Unlock()

	resp, err := e.client.ConfigTurn(ctx, req)

	e.mu.Lock()
	defer e.mu.Unlock()
	e.inFlight = false
	if err != nil {
		return TurnResult{}, err
	}

	// Shallow merge: assistant-supplied keys overwrite, everything else
	// is preserved.
	for k, v := range resp.ConfigurationData {
		e.st.ConfigData[k] = v
	}
	if strings.TrimSpace(resp.NextStep) != "" {
		e.st.CurrentStepID = resp.NextStep
	}
	if resp.Progress > 0 || resp.ConfigurationComplete {
		e.st.ProgressPercent = clampPercent(resp.Progress)
	}
	e.st.History = append(e.st.History, types.ChatMessage{Role: "assistant", Content: resp.Response})

	result := TurnResult{
		Reply:        resp.Response,
		QuickActions: resp.QuickActions,
		Progress:     e.st.ProgressPercent,
		Complete:     resp.ConfigurationComplete,
	}
	if resp.ConfigurationComplete {
		if ref, ok := recordRefFromFinal(resp.FinalConfiguration); ok {
			// Store before reporting completion so the created record is
			// never orphaned from the client's context.
			if e.store != nil {
				if err := e.store.SetActiveContext(ref); err != nil {
					return TurnResult{}, fmt.Errorf("record created (%s) but active context not stored: %w", ref.ID, err)
				}
			}
			result.Record = &ref
		}
	}
	return result, nil
}

// QuickAction re-submits a canned shortcut as a regular turn.
func (e *Engine) QuickAction(ctx context.Context, action string) (TurnResult, error) {
	return e.SendTurn(ctx, action)
}

// Reset discards the whole conversation; the only way to rewind history.
func (e *Engine) Reset() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.st = State{ConfigData: map[string]any{}, CurrentStepID: initialStepID}
	e.inFlight = false
}

func recordRefFromFinal(final map[string]any) (types.RecordRef, bool) {
	if final == nil {
		return types.RecordRef{}, false
	}
	if id := stringField(final, "project_id"); id != "" {
		return types.RecordRef{ID: id, Type: "project", Code: stringField(final, "project_code")}, true
	}
	if id := stringField(final, "case_id"); id != "" {
		return types.RecordRef{ID: id, Type: "case", Code: stringField(final, "case_number")}, true
	}
	return types.RecordRef{}, false
}

func stringField(m map[string]any, key string) string {
	if v, ok := m[key].(string); ok {
		return strings.TrimSpace(v)
	}
	return ""
}

func copyMap(m map[string]any) map[string]any {
	out := make(map[string]any, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

func clampPercent(p int) int {
	if p < 0 {
		return 0
	}
	if p > 100 {
		return 100
	}
	return p
}
