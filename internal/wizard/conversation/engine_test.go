package conversation

import (
	"context"
	"errors"
	"sync"
	"testing"

	"casewizard/internal/types"
)

type fakeBackend struct {
	mu          sync.Mutex
	statusCalls int
	status      types.StatusResponse
	statusErr   error

	lastReq types.ConfigRequest
	resp    types.ConfigResponse
	respErr error
	block   chan struct{}
	started chan struct{}
}

func (f *fakeBackend) Status(context.Context) (types.StatusResponse, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.statusCalls++
	return f.status, f.statusErr
}

func (f *fakeBackend) ConfigTurn(_ context.Context, req types.ConfigRequest) (types.ConfigResponse, error) {
	if f.started != nil {
		f.started <- struct{}{}
	}
	if f.block != nil {
		<-f.block
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.lastReq = req
	return f.resp, f.respErr
}

type fakeCtxStore struct {
	ref *types.RecordRef
	err error
}

func (f *fakeCtxStore) SetActiveContext(ref types.RecordRef) error {
	if f.err != nil {
		return f.err
	}
	f.ref = &ref
	return nil
}

func TestEngine_StartAvailable(t *testing.T) {
	be := &fakeBackend{status: types.StatusResponse{Gemini: true, AnyAvailable: true}}
	e := New(be, nil, nil)

	avail, err := e.Start(context.Background())
	if err != nil {
		t.Fatalf("start: %v", err)
	}
	if !avail.Available {
		t.Fatalf("expected available, got %+v", avail)
	}
}

func TestEngine_StartProbeCached(t *testing.T) {
	be := &fakeBackend{status: types.StatusResponse{AnyAvailable: true}}
	e := New(be, nil, nil)

	for i := 0; i < 3; i++ {
		if _, err := e.Start(context.Background()); err != nil {
			t.Fatalf("start %d: %v", i, err)
		}
	}
	be.mu.Lock()
	calls := be.statusCalls
	be.mu.Unlock()
	if calls != 1 {
		t.Fatalf("probe must be cached, got %d status calls", calls)
	}
}

func TestEngine_StartLocalKeySkipsProbe(t *testing.T) {
	be := &fakeBackend{}
	e := New(be, nil, func() string { return "sk-local" })

	avail, err := e.Start(context.Background())
	if err != nil {
		t.Fatalf("start: %v", err)
	}
	if !avail.Available {
		t.Fatalf("local key must mean available")
	}
	if be.statusCalls != 0 {
		t.Fatalf("probe must be skipped with a local key")
	}
}

func TestEngine_StartProbeFailureOffersAllAffordances(t *testing.T) {
	be := &fakeBackend{statusErr: errors.New("gateway down")}
	e := New(be, nil, nil)

	avail, err := e.Start(context.Background())
	if err != nil {
		t.Fatalf("a failed probe is not an error: %v", err)
	}
	if avail.Available {
		t.Fatalf("failed probe must not report available")
	}
	if !avail.CanProvideKey || !avail.CanTryAnyway || !avail.CanFallBack {
		t.Fatalf("all three affordances must be offered: %+v", avail)
	}
}

func TestEngine_SendTurnMergesWithoutDropping(t *testing.T) {
	be := &fakeBackend{resp: types.ConfigResponse{
		Response:          "Noted.",
		NextStep:          "project_setup",
		ConfigurationData: map[string]any{"b": 2.0},
		Progress:          30,
	}}
	e := New(be, nil, nil)

	// Seed an existing key through a first turn.
	be.resp.ConfigurationData = map[string]any{"a": 1.0}
	if _, err := e.SendTurn(context.Background(), "set a"); err != nil {
		t.Fatalf("turn 1: %v", err)
	}
	be.resp.ConfigurationData = map[string]any{"b": 2.0}
	if _, err := e.SendTurn(context.Background(), "set b"); err != nil {
		t.Fatalf("turn 2: %v", err)
	}

	st := e.State()
	if st.ConfigData["a"] != 1.0 || st.ConfigData["b"] != 2.0 {
		t.Fatalf("merge dropped keys: %v", st.ConfigData)
	}

	// A same-key update overwrites.
	be.resp.ConfigurationData = map[string]any{"a": 3.0}
	if _, err := e.SendTurn(context.Background(), "update a"); err != nil {
		t.Fatalf("turn 3: %v", err)
	}
	st = e.State()
	if st.ConfigData["a"] != 3.0 || st.ConfigData["b"] != 2.0 {
		t.Fatalf("overwrite semantics wrong: %v", st.ConfigData)
	}
}

func TestEngine_SendTurnFailureKeepsMessageAndData(t *testing.T) {
	be := &fakeBackend{resp: types.ConfigResponse{Response: "ok", ConfigurationData: map[string]any{"a": 1.0}}}
	e := New(be, nil, nil)
	if _, err := e.SendTurn(context.Background(), "first"); err != nil {
		t.Fatalf("turn 1: %v", err)
	}

	be.respErr = errors.New("provider timeout")
	if _, err := e.SendTurn(context.Background(), "second"); err == nil {
		t.Fatalf("expected turn error")
	}

	st := e.State()
	if st.ConfigData["a"] != 1.0 {
		t.Fatalf("failure must not touch accumulated data: %v", st.ConfigData)
	}
	// The failed user message stays in history for retry context.
	last := st.History[len(st.History)-1]
	if last.Role != "user" || last.Content != "second" {
		t.Fatalf("failed message must remain in history, got %+v", last)
	}
}

func TestEngine_SendTurnRejectsConcurrentTurns(t *testing.T) {
	be := &fakeBackend{
		block:   make(chan struct{}),
		started: make(chan struct{}, 1),
		resp:    types.ConfigResponse{Response: "ok"},
	}
	e := New(be, nil, nil)

	errCh := make(chan error, 1)
	go func() {
		_, err := e.SendTurn(context.Background(), "slow")
		errCh <- err
	}()
	<-be.started

	if _, err := e.SendTurn(context.Background(), "fast"); !errors.Is(err, ErrTurnInFlight) {
		t.Fatalf("expected ErrTurnInFlight while a turn is running, got %v", err)
	}
	close(be.block)
	if err := <-errCh; err != nil {
		t.Fatalf("slow turn: %v", err)
	}
}

func TestEngine_CompletionStoresContextBeforeReturning(t *testing.T) {
	store := &fakeCtxStore{}
	be := &fakeBackend{resp: types.ConfigResponse{
		Response:              "All set!",
		Progress:              100,
		ConfigurationComplete: true,
		FinalConfiguration: map[string]any{
			"project_id":   "project-9",
			"project_code": "RST-01",
		},
	}}
	e := New(be, store, nil)

	res, err := e.SendTurn(context.Background(), "create it")
	if err != nil {
		t.Fatalf("turn: %v", err)
	}
	if !res.Complete || res.Record == nil || res.Record.ID != "project-9" {
		t.Fatalf("completion not reported: %+v", res)
	}
	if store.ref == nil || store.ref.ID != "project-9" || store.ref.Type != "project" {
		t.Fatalf("active context not stored: %+v", store.ref)
	}
}

func TestEngine_CompletionStoreFailureSurfaces(t *testing.T) {
	store := &fakeCtxStore{err: errors.New("read-only fs")}
	be := &fakeBackend{resp: types.ConfigResponse{
		ConfigurationComplete: true,
		FinalConfiguration:    map[string]any{"case_id": "case-2"},
	}}
	e := New(be, store, nil)

	if _, err := e.SendTurn(context.Background(), "create it"); err == nil {
		t.Fatalf("a record created but not stored locally must surface as an error")
	}
}
