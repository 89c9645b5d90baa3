// Package assistant implements the conversational configuration flow.
// A provider chain produces the replies; this package owns the step
// protocol around them: extraction, progress, and record creation.
package assistant

import (
	"context"
	"encoding/json"
	"log"
	"strings"

	"casewizard/internal/gateway/recordstore"
	"casewizard/internal/llmclient"
	"casewizard/internal/types"
	"casewizard/internal/utils"
)

type Service struct {
	chain   *llmclient.Chain
	records *recordstore.Store
	hub     *Hub
}

func NewService(chain *llmclient.Chain, records *recordstore.Store, hub *Hub) *Service {
	if hub == nil {
		hub = NewHub()
	}
	return &Service{chain: chain, records: records, hub: hub}
}

func (s *Service) Hub() *Hub { return s.hub }

// Available reports which providers are wired, mirroring the chain's
// priority order.
func (s *Service) Available() types.StatusResponse {
	var st types.StatusResponse
	if s.chain == nil {
		return st
	}
	for _, name := range s.chain.Providers() {
		switch {
		case strings.HasPrefix(strings.ToLower(name), "gemini"):
			st.Gemini = true
		case strings.HasPrefix(strings.ToLower(name), "groq"):
			st.Groq = true
		}
	}
	st.AnyAvailable = st.Gemini || st.Groq
	return st
}

// HandleTurn runs one conversational turn: prompt the chain, parse the
// structured reply, merge newly extracted data, and create the record
// when the flow completes.
func (s *Service) HandleTurn(ctx context.Context, req types.ConfigRequest) (types.ConfigResponse, error) {
	if s.chain.Empty() {
		return types.ConfigResponse{}, llmclient.ErrNoProviders
	}

	step := req.CurrentStep
	if step == "" {
		step = StepIntroduction
	}

	raw, err := s.chain.Complete(ctx, buildPrompt(req))
	if err != nil {
		return types.ConfigResponse{}, err
	}
	r := parseReply(raw, step, req.ConfigurationData)

	configData := mergeConfig(req.ConfigurationData, r.ExtractedData)
	if code := stringValue(configData, "project_code"); code != "" {
		configData["project_code"] = utils.FormatRecordCode(code)
	}
	if num := stringValue(configData, "case_number"); num != "" {
		configData["case_number"] = utils.FormatRecordCode(num)
	}

	nextStep := r.NextStep
	if _, known := stepWeights[nextStep]; !known {
		nextStep = step
	}

	complete := (r.IsComplete != nil && *r.IsComplete) || nextStep == StepComplete
	if complete && !hasMinimumConfig(configData) {
		// The model jumped ahead; hold at review until the minimum is in.
		complete = false
		if nextStep == StepComplete {
			nextStep = StepReview
		}
	}

	resp := types.ConfigResponse{
		Response:          r.Response,
		NextStep:          nextStep,
		ConfigurationData: configData,
		QuickActions:      r.QuickActions,
	}
	if len(resp.QuickActions) == 0 {
		resp.QuickActions = defaultQuickActions(nextStep)
	}
	if r.Progress != nil && *r.Progress >= 0 && *r.Progress <= 100 {
		resp.Progress = *r.Progress
	} else {
		resp.Progress = progressFor(nextStep, configData)
	}

	if complete {
		final, err := s.createConfiguration(ctx, configData)
		if err != nil {
			log.Printf("assistant: record creation failed: %v", err)
			resp.NextStep = StepReview
			resp.Response = "I could not create the record: " + err.Error() + " Let's review the details."
			resp.QuickActions = defaultQuickActions(StepReview)
		} else {
			resp.NextStep = StepComplete
			resp.Progress = 100
			resp.ConfigurationComplete = true
			resp.FinalConfiguration = final
		}
	}

	ev := Event{Step: resp.NextStep, Progress: resp.Progress, Reply: resp.Response, Complete: resp.ConfigurationComplete}
	if resp.FinalConfiguration != nil {
		if id := stringValue(resp.FinalConfiguration, "project_id"); id != "" {
			ev.RecordID = id
		} else {
			ev.RecordID = stringValue(resp.FinalConfiguration, "case_id")
		}
	}
	s.hub.Publish(ev)

	return resp, nil
}

// createConfiguration persists the collected data as a project or case
// record and returns the final_configuration block for the client.
func (s *Service) createConfiguration(ctx context.Context, configData map[string]any) (map[string]any, error) {
	recordType := "project"
	name := stringValue(configData, "project_name")
	code := stringValue(configData, "project_code")
	if name == "" || (code == "" && stringValue(configData, "case_number") != "") {
		if caseName := stringValue(configData, "case_name"); caseName != "" {
			recordType = "case"
			name = caseName
			code = stringValue(configData, "case_number")
		}
	}
	if code == "" {
		code = utils.PlaceholderCode(strings.ToUpper(recordType[:4]), name)
	}
	code = utils.FormatRecordCode(code)

	payload, err := json.Marshal(configData)
	if err != nil {
		return nil, err
	}
	rec := recordstore.Record{
		ID:      utils.NewRecordID(recordType),
		Type:    recordType,
		Name:    name,
		Code:    code,
		Payload: payload,
	}
	if err := s.records.Put(ctx, rec); err != nil {
		return nil, err
	}

	final := map[string]any{"team_members": configData["team_members"]}
	if final["team_members"] == nil {
		final["team_members"] = []any{}
	}
	if recordType == "project" {
		final["project_id"] = rec.ID
		final["project_code"] = rec.Code
	} else {
		final["case_id"] = rec.ID
		final["case_number"] = rec.Code
	}
	return final, nil
}

// mergeConfig layers extracted fields over the existing data without
// dropping anything already collected.
func mergeConfig(base, extra map[string]any) map[string]any {
	out := make(map[string]any, len(base)+len(extra))
	for k, v := range base {
		out[k] = v
	}
	for k, v := range extra {
		out[k] = v
	}
	return out
}
