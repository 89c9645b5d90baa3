package recordstore

import (
	"context"
	"strings"
)

func (s *Store) ensureSchema(ctx context.Context) error {
	s.schemaOnce.Do(func() {
		_, s.schemaErr = s.db.ExecContext(ctx, `
			CREATE TABLE IF NOT EXISTS records (
				id          TEXT PRIMARY KEY,
				record_type TEXT NOT NULL,
				name        TEXT NOT NULL,
				code        TEXT NOT NULL,
				payload     JSONB NOT NULL DEFAULT '{}'::jsonb,
				created_at  TIMESTAMPTZ NOT NULL DEFAULT now()
			)`)
		if s.schemaErr != nil {
			return
		}
		_, s.schemaErr = s.db.ExecContext(ctx, `
			CREATE UNIQUE INDEX IF NOT EXISTS records_type_code
			ON records (record_type, lower(code))
			WHERE code <> ''`)
	})
	return s.schemaErr
}

func (s *Store) putDB(ctx context.Context, r Record) error {
	if err := s.ensureSchema(ctx); err != nil {
		return err
	}
	exists, err := s.codeExistsDB(ctx, r.Type, r.Code)
	if err != nil {
		return err
	}
	if exists {
		return ErrDuplicateCode
	}
	payload := []byte(r.Payload)
	if len(payload) == 0 {
		payload = []byte("{}")
	}
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO records (id, record_type, name, code, payload, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (id) DO UPDATE SET
			record_type = EXCLUDED.record_type,
			name = EXCLUDED.name,
			code = EXCLUDED.code,
			payload = EXCLUDED.payload`,
		r.ID, r.Type, r.Name, r.Code, payload, r.CreatedAt)
	return err
}

func (s *Store) getDB(ctx context.Context, id string) (Record, bool) {
	if err := s.ensureSchema(ctx); err != nil {
		return Record{}, false
	}
	row := s.db.QueryRowContext(ctx, `
		SELECT id, record_type, name, code, payload, created_at
		FROM records WHERE id = $1`, id)
	return scanRecord(row)
}

func (s *Store) codeExistsDB(ctx context.Context, recordType, code string) (bool, error) {
	if err := s.ensureSchema(ctx); err != nil {
		return false, err
	}
	code = strings.TrimSpace(code)
	if code == "" {
		return false, nil
	}
	var n int
	err := s.db.QueryRowContext(ctx, `
		SELECT COUNT(1) FROM records
		WHERE record_type = $1 AND lower(code) = lower($2)`,
		recordType, code).Scan(&n)
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func (s *Store) listDB(ctx context.Context, recordType string) []Record {
	if err := s.ensureSchema(ctx); err != nil {
		return nil
	}
	query := `
		SELECT id, record_type, name, code, payload, created_at
		FROM records`
	args := []any{}
	if recordType != "" {
		query += ` WHERE record_type = $1`
		args = append(args, recordType)
	}
	query += ` ORDER BY created_at`
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil
	}
	defer rows.Close()
	var out []Record
	for rows.Next() {
		if r, ok := scanRecord(rows); ok {
			out = append(out, r)
		}
	}
	return out
}
