// Package wizard implements the resumable multi-step form engine: an
// ordered step registry per profile type (project or case), a single
// owned state record, and advance/retreat transitions with draft
// autosave. The conversational path lives in the conversation package;
// choosing it on the entry screen is reported via ErrConversationalMode.
package wizard

import (
	"errors"
	"fmt"
)

// ErrConversationalMode is returned by Advance when the entry-screen
// selection asks for the assistant-driven flow; the caller switches to
// the conversation engine.
var ErrConversationalMode = errors.New("conversational mode selected")

// ErrUnsupportedProfile is returned for profile types that have no form
// registry (user management is configured outside the wizard).
var ErrUnsupportedProfile = errors.New("profile type has no form registry")

// DraftSaver persists the wizard state after each transition. The engine
// treats save failures as advisory: the transition stands, the failure is
// reported as a warning so no entered data is ever dropped on a disk
// hiccup.
type DraftSaver interface {
	SaveDraft(v any) error
}

// Engine drives one wizard session. It owns its State; callers observe it
// through State() copies.
type Engine struct {
	st    State
	steps []Step
	saver DraftSaver
}

// New returns an engine parked on the entry screen.
func New(saver DraftSaver) *Engine {
	return &Engine{st: NewState(), saver: saver}
}

// Resume rebuilds an engine from a persisted state. TotalSteps is
// re-derived from the active registry so a stale draft cannot index out
// of range.
func Resume(st State, saver DraftSaver) (*Engine, error) {
	e := &Engine{st: st, saver: saver}
	if st.Data == nil {
		e.st.Data = PayloadMap{}
	}
	if !st.AtEntry() {
		steps := Registry(st.ProfileType)
		if steps == nil {
			return nil, fmt.Errorf("resume: %w: %s", ErrUnsupportedProfile, st.ProfileType)
		}
		e.steps = steps
		e.st.TotalSteps = len(steps)
		if e.st.CurrentStep > e.st.TotalSteps {
			e.st.CurrentStep = e.st.TotalSteps
		}
		if e.st.CurrentStep < 1 {
			e.st.CurrentStep = 1
		}
	}
	return e, nil
}

// State returns a copy of the current wizard state.
func (e *Engine) State() State { return e.st.Clone() }

// Render returns the form for the current screen, seeded from saved
// payloads so every field written by a previous save is pre-filled.
func (e *Engine) Render() Form {
	if e.st.AtEntry() {
		return entryForm()
	}
	return e.currentStep().Render(e.st)
}

// Validate runs the active step's advisory validation without mutating
// any state. On the entry screen it checks only that a type was chosen.
func (e *Engine) Validate(in Input) []string {
	if e.st.AtEntry() {
		if in.Field("profile_type") == "" {
			return []string{"No profile type selected."}
		}
		return nil
	}
	return e.currentStep().Validate(in)
}

// Advance moves forward one screen.
//
// On the entry screen it reads the profile-type selection and loads the
// matching registry (or reports the conversational path). On a step it
// validates (advisory), saves the input into Data, and increments
// CurrentStep capped at TotalSteps. The returned warnings never indicate
// a blocked transition; a non-nil error does.
func (e *Engine) Advance(in Input) ([]string, error) {
	if e.st.AtEntry() {
		return nil, e.enter(in)
	}

	step := e.currentStep()
	warns := step.Validate(in)
	payload, err := step.Save(in)
	if err != nil {
		return warns, fmt.Errorf("save %s: %w", step.ID, err)
	}
	e.st.Data[step.ID] = payload
	if e.st.CurrentStep < e.st.TotalSteps {
		e.st.CurrentStep++
	}
	warns = append(warns, e.autosave()...)
	return warns, nil
}

// Retreat saves the current step without validating and moves back one
// screen. An input with no values leaves the previously saved payload
// untouched, so backing out of an unanswered screen cannot wipe what an
// earlier visit recorded. Reaching the entry screen keeps the
// accumulated Data so a type re-selection does not lose answers.
func (e *Engine) Retreat(in Input) []string {
	if e.st.AtEntry() {
		return nil
	}
	step := e.currentStep()
	if !in.Empty() {
		if payload, err := step.Save(in); err == nil {
			e.st.Data[step.ID] = payload
		}
	}
	e.st.CurrentStep--
	if e.st.CurrentStep == 0 {
		e.st.TotalSteps = 0
		e.steps = nil
	}
	return e.autosave()
}

// SaveDraft persists the current state explicitly ("Save Draft" action).
func (e *Engine) SaveDraft() error {
	if e.saver == nil {
		return nil
	}
	return e.saver.SaveDraft(e.st)
}

func (e *Engine) enter(in Input) error {
	t, ok := ParseProfileType(in.Field("profile_type"))
	if !ok {
		return fmt.Errorf("unknown profile type %q", in.Field("profile_type"))
	}
	switch t {
	case ProfileIntelligent:
		return ErrConversationalMode
	case ProfileUsers:
		return fmt.Errorf("%w: %s", ErrUnsupportedProfile, t)
	}
	steps := Registry(t)
	e.steps = steps
	e.st.ProfileType = t
	e.st.TotalSteps = len(steps)
	e.st.CurrentStep = 1
	return nil
}

func (e *Engine) currentStep() Step {
	if e.steps == nil {
		e.steps = Registry(e.st.ProfileType)
	}
	idx := e.st.CurrentStep - 1
	if idx < 0 || idx >= len(e.steps) {
		// CurrentStep is kept in range by every transition; an
		// out-of-range index means the state was mutated externally.
		panic(fmt.Sprintf("wizard: step index %d out of range", idx))
	}
	return e.steps[idx]
}

func (e *Engine) autosave() []string {
	if e.saver == nil {
		return nil
	}
	if err := e.saver.SaveDraft(e.st); err != nil {
		return []string{fmt.Sprintf("Draft autosave failed: %v", err)}
	}
	return nil
}

func entryForm() Form {
	return Form{
		StepID: "entry",
		Title:  "What would you like to set up?",
		Fields: []Field{
			{
				ID:      "profile_type",
				Label:   "Profile Type",
				Kind:    FieldSelect,
				Options: []string{string(ProfileProject), string(ProfileCase), string(ProfileIntelligent)},
			},
		},
	}
}
