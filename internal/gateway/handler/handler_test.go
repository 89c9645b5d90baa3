package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"casewizard/internal/assistant"
	"casewizard/internal/auth"
	"casewizard/internal/gateway/archive"
	"casewizard/internal/gateway/recordstore"
	"casewizard/internal/llmclient"
	"casewizard/internal/types"
)

type stubProvider struct {
	reply string
	err   error
}

func (s *stubProvider) Name() string { return "Gemini:test" }
func (s *stubProvider) Close() error { return nil }
func (s *stubProvider) Complete(context.Context, string) (string, error) {
	return s.reply, s.err
}

type fixture struct {
	mux     *http.ServeMux
	signer  *auth.Signer
	records *recordstore.Store
	archive *archive.MemoryStore
	token   string
}

func newFixture(t *testing.T, providers ...llmclient.Client) *fixture {
	t.Helper()
	records := recordstore.New(filepath.Join(t.TempDir(), "records.json"))
	arc := archive.NewMemoryStore()
	signer := auth.NewSigner("test-secret")
	asst := assistant.NewService(llmclient.NewChain(providers...), records, assistant.NewHub())

	mux := http.NewServeMux()
	New(records, arc, asst, signer).Register(mux)
	return &fixture{
		mux:     mux,
		signer:  signer,
		records: records,
		archive: arc,
		token:   signer.Access("jane"),
	}
}

func (f *fixture) post(t *testing.T, path string, body any, authed bool) *httptest.ResponseRecorder {
	t.Helper()
	b, err := json.Marshal(body)
	if err != nil {
		t.Fatalf("marshal body: %v", err)
	}
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(b))
	req.Header.Set("Content-Type", "application/json")
	if authed {
		req.Header.Set("Authorization", "Bearer "+f.token)
	}
	w := httptest.NewRecorder()
	f.mux.ServeHTTP(w, req)
	return w
}

func decodeDetail(t *testing.T, w *httptest.ResponseRecorder) string {
	t.Helper()
	var body types.ErrorBody
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode error body: %v (%s)", err, w.Body.String())
	}
	return body.Detail
}

func TestHandler_CreateProject(t *testing.T) {
	f := newFixture(t)

	w := f.post(t, "/api/projects", types.ProjectCreate{
		ProjectName: "Riverside Tower",
		ProjectCode: "riverside tower",
	}, true)

	if w.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", w.Code, w.Body.String())
	}
	var ref types.RecordRef
	if err := json.Unmarshal(w.Body.Bytes(), &ref); err != nil {
		t.Fatalf("decode ref: %v", err)
	}
	if ref.Type != "project" || ref.Name != "Riverside Tower" {
		t.Fatalf("unexpected ref: %+v", ref)
	}
	if ref.Code != "RIVERSIDE-TOWER" {
		t.Fatalf("code must be normalized, got %q", ref.Code)
	}

	rec, ok := f.records.Get(context.Background(), ref.ID)
	if !ok {
		t.Fatalf("record not persisted")
	}
	var stored types.ProjectCreate
	if err := json.Unmarshal(rec.Payload, &stored); err != nil {
		t.Fatalf("decode payload: %v", err)
	}
	if stored.Stakeholders == nil || stored.Keywords == nil {
		t.Fatalf("list fields must be materialized in the stored payload: %+v", stored)
	}

	if _, err := f.archive.Get(context.Background(), ref.ID); err != nil {
		t.Fatalf("archive snapshot missing: %v", err)
	}
}

func TestHandler_CreateProjectRequiresAuth(t *testing.T) {
	f := newFixture(t)
	w := f.post(t, "/api/projects", types.ProjectCreate{ProjectName: "X"}, false)
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", w.Code)
	}
}

func TestHandler_CreateProjectDuplicateCode(t *testing.T) {
	f := newFixture(t)

	if w := f.post(t, "/api/projects", types.ProjectCreate{ProjectName: "A", ProjectCode: "RST-01"}, true); w.Code != http.StatusCreated {
		t.Fatalf("first create: %d", w.Code)
	}
	w := f.post(t, "/api/projects", types.ProjectCreate{ProjectName: "B", ProjectCode: "rst-01"}, true)
	if w.Code != http.StatusConflict {
		t.Fatalf("expected 409, got %d", w.Code)
	}
	if got := decodeDetail(t, w); got != "a project with this code already exists" {
		t.Fatalf("unexpected detail %q", got)
	}
}

func TestHandler_CreateProjectValidation(t *testing.T) {
	f := newFixture(t)

	w := f.post(t, "/api/projects", types.ProjectCreate{ProjectName: "   "}, true)
	if w.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422 for blank name, got %d", w.Code)
	}

	req := httptest.NewRequest(http.MethodPost, "/api/projects", bytes.NewReader([]byte("{not json")))
	req.Header.Set("Authorization", "Bearer "+f.token)
	rec := httptest.NewRecorder()
	f.mux.ServeHTTP(rec, req)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for malformed body, got %d", rec.Code)
	}
}

func TestHandler_CreateCaseDefaults(t *testing.T) {
	f := newFixture(t)

	w := f.post(t, "/api/cases", types.CaseCreate{
		CaseName:        "Smith v Jones",
		ResolutionRoute: "Arbitration",
		CaseStatus:      "active",
	}, true)
	if w.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", w.Code, w.Body.String())
	}
	var ref types.RecordRef
	if err := json.Unmarshal(w.Body.Bytes(), &ref); err != nil {
		t.Fatalf("decode ref: %v", err)
	}
	if ref.Type != "case" || ref.Code != "" {
		t.Fatalf("unexpected ref: %+v", ref)
	}
}

func TestHandler_ListProjects(t *testing.T) {
	f := newFixture(t)
	f.post(t, "/api/projects", types.ProjectCreate{ProjectName: "Riverside Tower", ProjectCode: "R-1"}, true)
	f.post(t, "/api/projects", types.ProjectCreate{ProjectName: "Harbour Works", ProjectCode: "H-1"}, true)

	req := httptest.NewRequest(http.MethodGet, "/api/projects?q=harbour", nil)
	req.Header.Set("Authorization", "Bearer "+f.token)
	w := httptest.NewRecorder()
	f.mux.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	var refs []types.RecordRef
	if err := json.Unmarshal(w.Body.Bytes(), &refs); err != nil {
		t.Fatalf("decode list: %v", err)
	}
	if len(refs) != 1 || refs[0].Name != "Harbour Works" {
		t.Fatalf("filter failed: %+v", refs)
	}
}

func TestHandler_StatusIsPublic(t *testing.T) {
	f := newFixture(t, &stubProvider{reply: "ok"})

	req := httptest.NewRequest(http.MethodGet, "/api/ai/status", nil)
	w := httptest.NewRecorder()
	f.mux.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200 without auth, got %d", w.Code)
	}
	var st types.StatusResponse
	if err := json.Unmarshal(w.Body.Bytes(), &st); err != nil {
		t.Fatalf("decode status: %v", err)
	}
	if !st.Gemini || !st.AnyAvailable {
		t.Fatalf("unexpected status: %+v", st)
	}
}

func TestHandler_ConfigureWithoutProviders(t *testing.T) {
	f := newFixture(t)

	w := f.post(t, "/api/ai/intelligent-config", types.ConfigRequest{Message: "hi"}, true)
	if w.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503, got %d", w.Code)
	}
	if got := decodeDetail(t, w); got == "" {
		t.Fatalf("error body must carry a detail")
	}
}

func TestHandler_ConfigureTurn(t *testing.T) {
	reply := `{"response": "Who is on the team?", "next_step": "team_building", "progress": 25}`
	f := newFixture(t, &stubProvider{reply: reply})

	w := f.post(t, "/api/ai/intelligent-config", types.ConfigRequest{Message: "set up a project"}, true)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	var resp types.ConfigResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.NextStep != "team_building" || resp.Progress != 25 {
		t.Fatalf("unexpected response: %+v", resp)
	}
}

func TestHandler_LoginAndRefresh(t *testing.T) {
	f := newFixture(t)

	w := f.post(t, "/api/auth/login", map[string]string{"username": "jane"}, false)
	if w.Code != http.StatusOK {
		t.Fatalf("login: %d", w.Code)
	}
	var tokens struct {
		AccessToken  string `json:"access_token"`
		RefreshToken string `json:"refresh_token"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &tokens); err != nil {
		t.Fatalf("decode tokens: %v", err)
	}
	if tokens.AccessToken == "" || tokens.RefreshToken == "" {
		t.Fatalf("missing tokens: %+v", tokens)
	}

	w = f.post(t, "/api/auth/refresh", types.RefreshRequest{Token: tokens.RefreshToken}, false)
	if w.Code != http.StatusOK {
		t.Fatalf("refresh: %d %s", w.Code, w.Body.String())
	}
	var refreshed types.RefreshResponse
	if err := json.Unmarshal(w.Body.Bytes(), &refreshed); err != nil {
		t.Fatalf("decode refresh: %v", err)
	}
	if _, err := f.signer.Verify(refreshed.AccessToken); err != nil {
		t.Fatalf("refreshed token invalid: %v", err)
	}

	// An access token is not accepted as a refresh token.
	w = f.post(t, "/api/auth/refresh", types.RefreshRequest{Token: tokens.AccessToken}, false)
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 for access-token refresh, got %d", w.Code)
	}
}
