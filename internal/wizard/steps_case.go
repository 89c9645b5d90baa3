package wizard

import (
	"casewizard/internal/types"
)

var legalTeamRoles = []string{
	"Solicitor",
	"Barrister",
	"Expert Witness",
	"Paralegal",
	"Claims Consultant",
	CustomOption,
}

var resolutionRoutes = []string{
	"TBC",
	"Litigation",
	"Arbitration",
	"Adjudication",
	"Mediation",
	CustomOption,
}

var caseStatuses = []string{
	"discovery",
	"pre-action",
	"active",
	"settled",
	CustomOption,
}

var claimStatuses = []string{
	"Discovery",
	"Active",
	"Quantified",
	"Settled",
}

func caseSteps() []Step {
	return []Step{
		{
			ID:    KindCaseIdentification,
			Title: "Case Identification",
			Render: func(s State) Form {
				p, _ := s.CaseIdentification()
				return Form{
					StepID: KindCaseIdentification,
					Title:  "Case Identification",
					Fields: []Field{
						{ID: "case_name", Label: "Case Name", Kind: FieldText, Value: p.CaseName},
						{ID: "case_id", Label: "Case Number", Kind: FieldText, Value: p.CaseID},
						{
							ID:          "resolution_route",
							Label:       "Resolution Route",
							Kind:        FieldSelect,
							Value:       p.ResolutionRoute,
							Options:     resolutionRoutes,
							AllowCustom: true,
							CustomValue: p.CustomResolutionRoute,
						},
						{ID: "claimant", Label: "Claimant", Kind: FieldText, Value: p.Claimant},
						{ID: "defendant", Label: "Defendant", Kind: FieldText, Value: p.Defendant},
						{
							ID:          "case_status",
							Label:       "Case Status",
							Kind:        FieldSelect,
							Value:       p.CaseStatus,
							Options:     caseStatuses,
							AllowCustom: true,
							CustomValue: p.CustomCaseStatus,
						},
						{ID: "client", Label: "Client", Kind: FieldText, Value: p.Client},
					},
				}
			},
			Validate: func(in Input) []string {
				var warns []string
				if in.Field("case_name") == "" {
					warns = append(warns, "Case name is empty; a placeholder will be generated on submission.")
				}
				return warns
			},
			Save: func(in Input) (StepPayload, error) {
				route, routeCustom := resolveSelect(in, "resolution_route")
				status, statusCustom := resolveSelect(in, "case_status")
				return CaseIdentificationPayload{
					CaseName:              in.Field("case_name"),
					CaseID:                in.Field("case_id"),
					ResolutionRoute:       route,
					CustomResolutionRoute: routeCustom,
					Claimant:              in.Field("claimant"),
					Defendant:             in.Field("defendant"),
					CaseStatus:            status,
					CustomCaseStatus:      statusCustom,
					Client:                in.Field("client"),
				}, nil
			},
		},
		{
			ID:    KindLegalTeam,
			Title: "Legal Team",
			Render: func(s State) Form {
				p, _ := s.LegalTeam()
				return Form{
					StepID: KindLegalTeam,
					Title:  "Legal Team",
					Fields: []Field{
						{
							ID:    "legal_team",
							Label: "Legal Team Members",
							Kind:  FieldTable,
							Columns: []Column{
								{ID: "role", Label: "Role", Options: legalTeamRoles},
								{ID: "name", Label: "Name"},
							},
							Rows: legalTeamRows(p.Members),
						},
					},
				}
			},
			Validate: func(in Input) []string { return nil },
			Save: func(in Input) (StepPayload, error) {
				return LegalTeamPayload{Members: parseLegalTeam(tableRows(in, "legal_team"))}, nil
			},
		},
		{
			ID:    KindClaims,
			Title: "Heads of Claim & Keywords",
			Render: func(s State) Form {
				p, _ := s.Claims()
				return Form{
					StepID: KindClaims,
					Title:  "Heads of Claim & Keywords",
					Fields: []Field{
						{
							ID:    "heads_of_claim",
							Label: "Heads of Claim",
							Kind:  FieldTable,
							Columns: []Column{
								{ID: "head", Label: "Head of Claim"},
								{ID: "status", Label: "Status", Options: claimStatuses},
								{ID: "actions", Label: "Actions"},
							},
							Rows: headOfClaimRows(p.Heads),
						},
						keywordTableField(p.Keywords),
					},
				}
			},
			Validate: func(in Input) []string { return nil },
			Save: func(in Input) (StepPayload, error) {
				return ClaimsPayload{
					Heads:    parseHeadsOfClaim(tableRows(in, "heads_of_claim")),
					Keywords: parseKeywords(tableRows(in, "keywords")),
				}, nil
			},
		},
		{
			ID:    KindDeadlines,
			Title: "Deadlines",
			Render: func(s State) Form {
				p, _ := s.Deadlines()
				return Form{
					StepID: KindDeadlines,
					Title:  "Deadlines",
					Fields: []Field{
						{
							ID:    "deadlines",
							Label: "Deadlines",
							Kind:  FieldTable,
							Columns: []Column{
								{ID: "task", Label: "Task"},
								{ID: "description", Label: "Description"},
								{ID: "date", Label: "Date"},
							},
							Rows: deadlineRows(p.Deadlines),
						},
					},
				}
			},
			Validate: func(in Input) []string {
				var warns []string
				for _, row := range tableRows(in, "deadlines") {
					v := row.get("date")
					if v == "" {
						continue
					}
					one := Input{Fields: map[string]string{"date": v}}
					warns = append(warns, dateWarnings(one, "date")...)
				}
				return warns
			},
			Save: func(in Input) (StepPayload, error) {
				return DeadlinesPayload{Deadlines: parseDeadlines(tableRows(in, "deadlines"))}, nil
			},
		},
		reviewStep(),
	}
}

func legalTeamRows(list []types.LegalTeamMember) []Row {
	var rows []Row
	for _, m := range list {
		rows = append(rows, Row{"role": m.Role, "name": m.Name})
	}
	return rows
}

func parseLegalTeam(rows []Row) []types.LegalTeamMember {
	var out []types.LegalTeamMember
	for _, r := range rows {
		out = append(out, types.LegalTeamMember{Role: r.get("role"), Name: r.get("name")})
	}
	return out
}

func headOfClaimRows(list []types.HeadOfClaim) []Row {
	var rows []Row
	for _, h := range list {
		rows = append(rows, Row{"head": h.Head, "status": h.Status, "actions": h.Actions})
	}
	return rows
}

func parseHeadsOfClaim(rows []Row) []types.HeadOfClaim {
	var out []types.HeadOfClaim
	for _, r := range rows {
		status := r.get("status")
		if status == "" {
			status = "Discovery"
		}
		out = append(out, types.HeadOfClaim{Head: r.get("head"), Status: status, Actions: r.get("actions")})
	}
	return out
}

func deadlineRows(list []types.Deadline) []Row {
	var rows []Row
	for _, d := range list {
		rows = append(rows, Row{"task": d.Task, "description": d.Description, "date": d.Date})
	}
	return rows
}

func parseDeadlines(rows []Row) []types.Deadline {
	var out []types.Deadline
	for _, r := range rows {
		out = append(out, types.Deadline{Task: r.get("task"), Description: r.get("description"), Date: r.get("date")})
	}
	return out
}
