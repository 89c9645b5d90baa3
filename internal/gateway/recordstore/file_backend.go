package recordstore

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

func (s *Store) ensureLoadedFile() {
	s.loadOnce.Do(func() {
		b, err := os.ReadFile(s.path)
		if err != nil {
			return
		}
		var rows []Record
		if err := json.Unmarshal(b, &rows); err != nil {
			return
		}
		s.mu.Lock()
		defer s.mu.Unlock()
		for _, row := range rows {
			row = normalizeRecord(row)
			if row.ID == "" {
				continue
			}
			s.byID[row.ID] = row
		}
	})
}

func (s *Store) saveFile() {
	s.mu.RLock()
	rows := make([]Record, 0, len(s.byID))
	for _, r := range s.byID {
		rows = append(rows, r)
	}
	s.mu.RUnlock()
	sort.Slice(rows, func(i, j int) bool { return rows[i].ID < rows[j].ID })

	b, err := json.MarshalIndent(rows, "", "  ")
	if err != nil {
		return
	}
	_ = os.MkdirAll(filepath.Dir(s.path), 0o755)
	// Write-temp-rename so a crash mid-write cannot tear the file.
	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, b, 0o644); err != nil {
		return
	}
	if err := os.Rename(tmp, s.path); err != nil {
		_ = os.Remove(tmp)
	}
}

func (s *Store) putFile(r Record) error {
	s.ensureLoadedFile()
	s.mu.Lock()
	for _, existing := range s.byID {
		if existing.Type == r.Type && existing.Code != "" && strings.EqualFold(existing.Code, r.Code) && existing.ID != r.ID {
			s.mu.Unlock()
			return ErrDuplicateCode
		}
	}
	s.byID[r.ID] = r
	s.mu.Unlock()
	s.saveFile()
	return nil
}

func (s *Store) getFile(id string) (Record, bool) {
	s.ensureLoadedFile()
	s.mu.RLock()
	r, ok := s.byID[id]
	s.mu.RUnlock()
	return r, ok
}

func (s *Store) codeExistsFile(recordType, code string) bool {
	s.ensureLoadedFile()
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, r := range s.byID {
		if r.Type == recordType && strings.EqualFold(r.Code, code) {
			return true
		}
	}
	return false
}

func (s *Store) listFile(recordType string) []Record {
	s.ensureLoadedFile()
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Record, 0, len(s.byID))
	for _, r := range s.byID {
		if recordType != "" && r.Type != recordType {
			continue
		}
		out = append(out, r)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out
}
