package wizard

import (
	"fmt"
	"time"

	"casewizard/internal/types"
)

var stakeholderRoles = []string{
	"Main Contractor",
	"Subcontractor",
	"Client",
	"Council",
	"Architect",
	"Engineer",
	"Project Manager",
	CustomOption,
}

var contractTypes = []string{
	"FIDIC",
	"JCT",
	"NEC",
	"Bespoke",
	CustomOption,
}

func projectSteps() []Step {
	return []Step{
		{
			ID:    KindProjectIdentification,
			Title: "Project Identification",
			Render: func(s State) Form {
				p, _ := s.ProjectIdentification()
				return Form{
					StepID: KindProjectIdentification,
					Title:  "Project Identification",
					Fields: []Field{
						{ID: "project_name", Label: "Project Name", Kind: FieldText, Value: p.ProjectName},
						{ID: "project_code", Label: "Project Code", Kind: FieldText, Value: p.ProjectCode},
						{ID: "start_date", Label: "Start Date", Kind: FieldDate, Value: p.StartDate},
						{ID: "completion_date", Label: "Completion Date", Kind: FieldDate, Value: p.CompletionDate},
					},
				}
			},
			Validate: func(in Input) []string {
				var warns []string
				if in.Field("project_name") == "" {
					warns = append(warns, "Project name is empty; a placeholder will be generated on submission.")
				}
				if in.Field("project_code") == "" {
					warns = append(warns, "Project code is empty; a placeholder will be generated on submission.")
				}
				warns = append(warns, dateWarnings(in, "start_date", "completion_date")...)
				return warns
			},
			Save: func(in Input) (StepPayload, error) {
				return ProjectIdentificationPayload{
					ProjectName:    in.Field("project_name"),
					ProjectCode:    in.Field("project_code"),
					StartDate:      in.Field("start_date"),
					CompletionDate: in.Field("completion_date"),
				}, nil
			},
		},
		{
			ID:    KindParties,
			Title: "Stakeholders & Keywords",
			Render: func(s State) Form {
				p, _ := s.Parties()
				return Form{
					StepID: KindParties,
					Title:  "Stakeholders & Keywords",
					Fields: []Field{
						{
							ID:    "stakeholders",
							Label: "Stakeholders",
							Kind:  FieldTable,
							Columns: []Column{
								{ID: "role", Label: "Role", Options: stakeholderRoles},
								{ID: "name", Label: "Name"},
							},
							Rows: stakeholderRows(p.Stakeholders),
						},
						keywordTableField(p.Keywords),
					},
				}
			},
			Validate: func(in Input) []string { return nil },
			Save: func(in Input) (StepPayload, error) {
				return PartiesPayload{
					Stakeholders: parseStakeholders(tableRows(in, "stakeholders")),
					Keywords:     parseKeywords(tableRows(in, "keywords")),
				}, nil
			},
		},
		{
			ID:    KindContract,
			Title: "Contract Type",
			Render: func(s State) Form {
				p, _ := s.Contract()
				return Form{
					StepID: KindContract,
					Title:  "Contract Type",
					Fields: []Field{
						{
							ID:          "contract_type",
							Label:       "Contract Type",
							Kind:        FieldSelect,
							Value:       p.Type,
							Options:     contractTypes,
							AllowCustom: true,
							CustomValue: p.CustomType,
						},
					},
				}
			},
			Validate: func(in Input) []string {
				value, custom := resolveSelect(in, "contract_type")
				if value == CustomOption && custom == "" {
					return []string{"Custom contract type selected without a value; it will be submitted as unset."}
				}
				return nil
			},
			Save: func(in Input) (StepPayload, error) {
				value, custom := resolveSelect(in, "contract_type")
				return ContractPayload{Type: value, CustomType: custom}, nil
			},
		},
		reviewStep(),
	}
}

// reviewStep is shared by both registries: it renders nothing editable and
// saves an empty payload.
func reviewStep() Step {
	return Step{
		ID:    KindReview,
		Title: "Review & Submit",
		Render: func(s State) Form {
			return Form{StepID: KindReview, Title: "Review & Submit"}
		},
		Validate: func(in Input) []string { return nil },
		Save: func(in Input) (StepPayload, error) {
			return ReviewPayload{}, nil
		},
	}
}

func keywordTableField(seed []types.Keyword) Field {
	return Field{
		ID:    "keywords",
		Label: "Keywords",
		Kind:  FieldTable,
		Columns: []Column{
			{ID: "name", Label: "Keyword"},
			{ID: "variations", Label: "Variations (comma-separated)"},
		},
		Rows: keywordRows(seed),
	}
}

func dateWarnings(in Input, fields ...string) []string {
	var warns []string
	for _, f := range fields {
		v := in.Field(f)
		if v == "" {
			continue
		}
		if _, err := time.Parse("2006-01-02", v); err != nil {
			warns = append(warns, fmt.Sprintf("%s is not a valid ISO date (YYYY-MM-DD): %q", f, v))
		}
	}
	return warns
}

func stakeholderRows(list []types.Stakeholder) []Row {
	var rows []Row
	for _, s := range list {
		rows = append(rows, Row{"role": s.Role, "name": s.Name})
	}
	return rows
}

func parseStakeholders(rows []Row) []types.Stakeholder {
	var out []types.Stakeholder
	for _, r := range rows {
		out = append(out, types.Stakeholder{Role: r.get("role"), Name: r.get("name")})
	}
	return out
}

func keywordRows(list []types.Keyword) []Row {
	var rows []Row
	for _, k := range list {
		rows = append(rows, Row{"name": k.Name, "variations": k.Variations})
	}
	return rows
}

func parseKeywords(rows []Row) []types.Keyword {
	var out []types.Keyword
	for _, r := range rows {
		out = append(out, types.Keyword{Name: r.get("name"), Variations: r.get("variations")})
	}
	return out
}
