package recordstore

import (
	"encoding/json"
	"strings"
	"time"
)

// Record is one created project or case. Payload keeps the full creation
// body verbatim so the workspace can re-read everything the wizard sent.
type Record struct {
	ID        string          `json:"id"`
	Type      string          `json:"type"`
	Name      string          `json:"name"`
	Code      string          `json:"code"`
	Payload   json.RawMessage `json:"payload,omitempty"`
	CreatedAt time.Time       `json:"created_at"`
}

func normalizeRecord(r Record) Record {
	r.ID = strings.TrimSpace(r.ID)
	r.Type = strings.TrimSpace(strings.ToLower(r.Type))
	r.Name = strings.TrimSpace(r.Name)
	r.Code = strings.TrimSpace(r.Code)
	if r.Name == "" {
		r.Name = "Untitled"
	}
	if r.CreatedAt.IsZero() {
		r.CreatedAt = time.Now().UTC()
	}
	return r
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRecord(row rowScanner) (Record, bool) {
	var r Record
	var payload []byte
	err := row.Scan(&r.ID, &r.Type, &r.Name, &r.Code, &payload, &r.CreatedAt)
	if err != nil {
		return Record{}, false
	}
	r.Payload = json.RawMessage(payload)
	return normalizeRecord(r), true
}
