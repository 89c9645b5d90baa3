package wizard

import (
	"encoding/json"
	"errors"
	"testing"
)

type memorySaver struct {
	saves  int
	failed bool
	last   []byte
}

func (m *memorySaver) SaveDraft(v any) error {
	if m.failed {
		return errors.New("disk full")
	}
	b, err := json.Marshal(v)
	if err != nil {
		return err
	}
	m.saves++
	m.last = b
	return nil
}

func TestEngine_EntryLoadsProjectRegistry(t *testing.T) {
	e := New(nil)

	form := e.Render()
	if form.StepID != "entry" {
		t.Fatalf("expected entry form, got %q", form.StepID)
	}

	_, err := e.Advance(Input{Fields: map[string]string{"profile_type": "project"}})
	if err != nil {
		t.Fatalf("enter project: %v", err)
	}
	st := e.State()
	if st.CurrentStep != 1 || st.TotalSteps != 4 {
		t.Fatalf("unexpected position after entry: step=%d total=%d", st.CurrentStep, st.TotalSteps)
	}
	if e.Render().StepID != KindProjectIdentification {
		t.Fatalf("expected first project step, got %q", e.Render().StepID)
	}
}

func TestEngine_EntryIntelligentReportsConversationalMode(t *testing.T) {
	e := New(nil)
	_, err := e.Advance(Input{Fields: map[string]string{"profile_type": "intelligent"}})
	if !errors.Is(err, ErrConversationalMode) {
		t.Fatalf("expected ErrConversationalMode, got %v", err)
	}
	if !e.State().AtEntry() {
		t.Fatalf("conversational selection must not leave the entry screen")
	}
}

func TestEngine_EntryUsersUnsupported(t *testing.T) {
	e := New(nil)
	_, err := e.Advance(Input{Fields: map[string]string{"profile_type": "users"}})
	if !errors.Is(err, ErrUnsupportedProfile) {
		t.Fatalf("expected ErrUnsupportedProfile, got %v", err)
	}
}

func TestEngine_SaveThenRenderRoundTrip(t *testing.T) {
	e := New(nil)
	if _, err := e.Advance(Input{Fields: map[string]string{"profile_type": "project"}}); err != nil {
		t.Fatalf("enter: %v", err)
	}

	in := Input{Fields: map[string]string{
		"project_name": "Riverside Tower",
		"project_code": "RST-01",
		"start_date":   "2026-01-15",
	}}
	if _, err := e.Advance(in); err != nil {
		t.Fatalf("advance: %v", err)
	}

	// Going back must re-render exactly what was saved.
	e.Retreat(Input{})
	form := e.Render()
	got := map[string]string{}
	for _, f := range form.Fields {
		got[f.ID] = f.Value
	}
	if got["project_name"] != "Riverside Tower" || got["project_code"] != "RST-01" || got["start_date"] != "2026-01-15" {
		t.Fatalf("round trip lost data: %v", got)
	}
}

func TestEngine_AdvanceWarningsDoNotBlock(t *testing.T) {
	e := New(nil)
	if _, err := e.Advance(Input{Fields: map[string]string{"profile_type": "project"}}); err != nil {
		t.Fatalf("enter: %v", err)
	}

	warns, err := e.Advance(Input{Fields: map[string]string{"start_date": "not-a-date"}})
	if err != nil {
		t.Fatalf("warnings must not block advance: %v", err)
	}
	if len(warns) == 0 {
		t.Fatalf("expected warnings for empty name and bad date")
	}
	if e.State().CurrentStep != 2 {
		t.Fatalf("expected to be on step 2, got %d", e.State().CurrentStep)
	}
}

func TestEngine_AdvanceCapsAtLastStep(t *testing.T) {
	e := New(nil)
	if _, err := e.Advance(Input{Fields: map[string]string{"profile_type": "project"}}); err != nil {
		t.Fatalf("enter: %v", err)
	}
	for i := 0; i < 10; i++ {
		if _, err := e.Advance(Input{}); err != nil {
			t.Fatalf("advance %d: %v", i, err)
		}
	}
	st := e.State()
	if st.CurrentStep != st.TotalSteps {
		t.Fatalf("step must cap at total: step=%d total=%d", st.CurrentStep, st.TotalSteps)
	}
	if !st.AtLastStep() {
		t.Fatalf("expected AtLastStep")
	}
}

func TestEngine_RetreatToEntryKeepsData(t *testing.T) {
	e := New(nil)
	if _, err := e.Advance(Input{Fields: map[string]string{"profile_type": "case"}}); err != nil {
		t.Fatalf("enter: %v", err)
	}
	if _, err := e.Advance(Input{Fields: map[string]string{"case_name": "Smith v Jones"}}); err != nil {
		t.Fatalf("advance: %v", err)
	}

	e.Retreat(Input{})
	e.Retreat(Input{})
	st := e.State()
	if !st.AtEntry() {
		t.Fatalf("expected entry screen, step=%d", st.CurrentStep)
	}
	if _, ok := st.CaseIdentification(); !ok {
		t.Fatalf("retreating to entry must keep accumulated data")
	}

	// Re-entering the same type picks the saved name back up.
	if _, err := e.Advance(Input{Fields: map[string]string{"profile_type": "case"}}); err != nil {
		t.Fatalf("re-enter: %v", err)
	}
	form := e.Render()
	for _, f := range form.Fields {
		if f.ID == "case_name" && f.Value != "Smith v Jones" {
			t.Fatalf("case name lost on re-entry: %q", f.Value)
		}
	}
}

func TestEngine_RetreatWithNoInputKeepsSavedStep(t *testing.T) {
	e := New(nil)
	if _, err := e.Advance(Input{Fields: map[string]string{"profile_type": "case"}}); err != nil {
		t.Fatalf("enter: %v", err)
	}
	if _, err := e.Advance(Input{Fields: map[string]string{"case_name": "Smith v Jones"}}); err != nil {
		t.Fatalf("advance: %v", err)
	}

	// Step 2, then straight back without answering anything.
	e.Retreat(Input{})
	st := e.State()
	if st.CurrentStep != 1 {
		t.Fatalf("expected step 1, got %d", st.CurrentStep)
	}
	ident, ok := st.CaseIdentification()
	if !ok || ident.CaseName != "Smith v Jones" {
		t.Fatalf("saved case_name destroyed by empty retreat: %+v", ident)
	}

	// A retreat that does carry values still re-saves the step.
	if _, err := e.Advance(Input{Fields: map[string]string{"case_name": "Smith v Jones"}}); err != nil {
		t.Fatalf("re-advance: %v", err)
	}
	e.Retreat(Input{Tables: map[string][]Row{
		"legal_team": {{"role": "Solicitor", "name": "A. Counsel"}},
	}})
	if team, ok := e.State().LegalTeam(); !ok || len(team.Members) != 1 {
		t.Fatalf("retreat with values must save them: %+v", team)
	}
}

func TestEngine_AutosaveFailureSurfacesAsWarning(t *testing.T) {
	saver := &memorySaver{failed: true}
	e := New(saver)
	if _, err := e.Advance(Input{Fields: map[string]string{"profile_type": "project"}}); err != nil {
		t.Fatalf("enter: %v", err)
	}

	warns, err := e.Advance(Input{Fields: map[string]string{"project_name": "X", "project_code": "X-1"}})
	if err != nil {
		t.Fatalf("a failed autosave must not block the transition: %v", err)
	}
	found := false
	for _, w := range warns {
		if w == "Draft autosave failed: disk full" {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected autosave warning, got %v", warns)
	}
	if e.State().CurrentStep != 2 {
		t.Fatalf("transition must stand after failed autosave")
	}
}

func TestEngine_ResumeClampsStaleStep(t *testing.T) {
	st := State{ProfileType: ProfileProject, CurrentStep: 99, TotalSteps: 99, Data: PayloadMap{}}
	e, err := Resume(st, nil)
	if err != nil {
		t.Fatalf("resume: %v", err)
	}
	got := e.State()
	if got.TotalSteps != 4 || got.CurrentStep != 4 {
		t.Fatalf("stale draft not clamped: step=%d total=%d", got.CurrentStep, got.TotalSteps)
	}
	// Render must not panic after clamping.
	if e.Render().StepID != KindReview {
		t.Fatalf("expected review step after clamp, got %q", e.Render().StepID)
	}
}

func TestEngine_ResumeMidCaseKeepsEarlierAnswers(t *testing.T) {
	saver := &memorySaver{}
	e := New(saver)
	if _, err := e.Advance(Input{Fields: map[string]string{"profile_type": "case"}}); err != nil {
		t.Fatalf("enter: %v", err)
	}
	if _, err := e.Advance(Input{Fields: map[string]string{"case_name": "Harbour Arbitration"}}); err != nil {
		t.Fatalf("advance: %v", err)
	}

	var persisted State
	if err := json.Unmarshal(saver.last, &persisted); err != nil {
		t.Fatalf("unmarshal persisted state: %v", err)
	}
	resumed, err := Resume(persisted, saver)
	if err != nil {
		t.Fatalf("resume: %v", err)
	}
	if resumed.State().CurrentStep != 2 {
		t.Fatalf("expected resume at step 2, got %d", resumed.State().CurrentStep)
	}
	p, ok := resumed.State().CaseIdentification()
	if !ok || p.CaseName != "Harbour Arbitration" {
		t.Fatalf("case name lost across resume: %+v ok=%v", p, ok)
	}
}

func TestEngine_DataKeysStayWithinActiveRegistry(t *testing.T) {
	e := New(nil)
	if _, err := e.Advance(Input{Fields: map[string]string{"profile_type": "project"}}); err != nil {
		t.Fatalf("enter: %v", err)
	}
	if _, err := e.Advance(Input{Fields: map[string]string{"project_name": "A"}}); err != nil {
		t.Fatalf("advance: %v", err)
	}

	ids := map[string]bool{}
	for _, id := range StepIDs(ProfileProject) {
		ids[id] = true
	}
	for key := range e.State().Data {
		if !ids[key] {
			t.Fatalf("data key %q outside active registry", key)
		}
	}
}
