package wizard

import "strings"

// Step is one entry of a registry: how to render the step from saved
// state, how to warn about its input, and how to commit the input.
//
// Validate is advisory. It returns human-readable warnings and never
// blocks Save; the caller decides whether to confront the user with them.
type Step struct {
	ID       string
	Title    string
	Render   func(s State) Form
	Validate func(in Input) []string
	Save     func(in Input) (StepPayload, error)
}

// Registry returns the ordered step list for a profile type, or nil when
// the type has no form registry (intelligent and users flows are driven
// elsewhere).
func Registry(t ProfileType) []Step {
	switch t {
	case ProfileProject:
		return projectSteps()
	case ProfileCase:
		return caseSteps()
	default:
		return nil
	}
}

// StepIDs lists the step identifiers of a registry in order.
func StepIDs(t ProfileType) []string {
	steps := Registry(t)
	ids := make([]string, 0, len(steps))
	for _, st := range steps {
		ids = append(ids, st.ID)
	}
	return ids
}

// resolveSelect maps a select field plus its custom companion into the
// stored pair (selection, custom override). A custom choice without a
// matching fixed option is kept as-is in the override.
func resolveSelect(in Input, fieldID string) (value, custom string) {
	value = in.Field(fieldID)
	custom = in.Field(fieldID + "_custom")
	if !strings.EqualFold(value, CustomOption) {
		custom = ""
	}
	return value, custom
}

// tableRows filters out rows whose every cell is blank; partially filled
// rows are kept (the zero-row case is always valid).
func tableRows(in Input, fieldID string) []Row {
	var out []Row
	for _, row := range in.Table(fieldID) {
		empty := true
		for _, v := range row {
			if strings.TrimSpace(v) != "" {
				empty = false
				break
			}
		}
		if !empty {
			out = append(out, row)
		}
	}
	return out
}
