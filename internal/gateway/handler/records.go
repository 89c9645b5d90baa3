package handler

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strings"

	"casewizard/internal/gateway/recordstore"
	"casewizard/internal/types"
	"casewizard/internal/utils"
)

func (h *Handler) handleProjects(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodPost:
		h.createProject(w, r)
	case http.MethodGet:
		h.listRecords(w, r, "project")
	default:
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
	}
}

func (h *Handler) handleCases(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodPost:
		h.createCase(w, r)
	case http.MethodGet:
		h.listRecords(w, r, "case")
	default:
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
	}
}

func (h *Handler) createProject(w http.ResponseWriter, r *http.Request) {
	var body types.ProjectCreate
	if !decodeBody(w, r, &body) {
		return
	}
	body = types.NormalizeProject(body)
	if body.ProjectName == "" {
		writeError(w, http.StatusUnprocessableEntity, "project_name is required")
		return
	}
	code := utils.FormatRecordCode(body.ProjectCode)
	if code != "" {
		if ok, reason := utils.ValidateRecordCode(code); !ok {
			writeError(w, http.StatusUnprocessableEntity, reason)
			return
		}
	}
	body.ProjectCode = code

	payload, _ := json.Marshal(body)
	rec := recordstore.Record{
		ID:      utils.NewRecordID("project"),
		Type:    "project",
		Name:    body.ProjectName,
		Code:    code,
		Payload: payload,
	}
	h.storeRecord(w, r, rec, "a project with this code already exists")
}

func (h *Handler) createCase(w http.ResponseWriter, r *http.Request) {
	var body types.CaseCreate
	if !decodeBody(w, r, &body) {
		return
	}
	body = types.NormalizeCase(body)
	if body.CaseName == "" {
		writeError(w, http.StatusUnprocessableEntity, "case_name is required")
		return
	}
	var code string
	if body.CaseID != nil {
		code = utils.FormatRecordCode(*body.CaseID)
		if code != "" {
			if ok, reason := utils.ValidateRecordCode(code); !ok {
				writeError(w, http.StatusUnprocessableEntity, reason)
				return
			}
			body.CaseID = &code
		}
	}

	payload, _ := json.Marshal(body)
	rec := recordstore.Record{
		ID:      utils.NewRecordID("case"),
		Type:    "case",
		Name:    body.CaseName,
		Code:    code,
		Payload: payload,
	}
	h.storeRecord(w, r, rec, "a case with this number already exists")
}

func (h *Handler) storeRecord(w http.ResponseWriter, r *http.Request, rec recordstore.Record, dupDetail string) {
	if err := h.records.Put(r.Context(), rec); err != nil {
		if errors.Is(err, recordstore.ErrDuplicateCode) {
			writeError(w, http.StatusConflict, dupDetail)
			return
		}
		log.Printf("record store put failed: %v", err)
		writeError(w, http.StatusInternalServerError, "failed to store record")
		return
	}

	// Best effort: a failed snapshot never fails the creation.
	if err := h.archive.Put(r.Context(), rec.ID, rec.Payload); err != nil {
		log.Printf("archive snapshot failed for %s: %v", rec.ID, err)
	}

	writeJSON(w, http.StatusCreated, types.RecordRef{
		ID:   rec.ID,
		Type: rec.Type,
		Name: rec.Name,
		Code: rec.Code,
	})
}

func (h *Handler) listRecords(w http.ResponseWriter, r *http.Request, recordType string) {
	refs := []types.RecordRef{}
	for _, rec := range h.records.List(r.Context(), recordType) {
		refs = append(refs, types.RecordRef{ID: rec.ID, Type: rec.Type, Name: rec.Name, Code: rec.Code})
	}
	if q := strings.TrimSpace(r.URL.Query().Get("q")); q != "" {
		filtered := refs[:0]
		for _, ref := range refs {
			if strings.Contains(strings.ToLower(ref.Name), strings.ToLower(q)) {
				filtered = append(filtered, ref)
			}
		}
		refs = filtered
	}
	writeJSON(w, http.StatusOK, refs)
}
