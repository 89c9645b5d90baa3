// Package draft is the durable client-side store behind the wizard: one
// resumable draft blob, the "active context" slot written after a record
// is created, and the credential pair the session guardian refreshes.
//
// Last write wins; there is no versioning. Each slot is a single JSON file
// written atomically (temp file + rename) so a crash mid-save never leaves
// a torn draft.
package draft

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"casewizard/internal/types"
)

const (
	draftFile      = "wizard_draft.json"
	contextFile    = "active_context.json"
	credentialFile = "credentials.json"
)

// Credential is the stored bearer pair. The wizard never interprets the
// token contents, it only hands them back to the refresh endpoint.
type Credential struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token,omitempty"`
	ProviderKey  string `json:"provider_key,omitempty"`
}

// Store reads and writes the wizard's persisted client state under one
// directory. Single-writer discipline is assumed by the callers (one
// user-initiated action in flight at a time); the mutex only guards
// against the autosave timer racing an explicit save.
type Store struct {
	dir string
	mu  sync.Mutex
}

func NewStore(dir string) (*Store, error) {
	dir = strings.TrimSpace(dir)
	if dir == "" {
		return nil, errors.New("draft: dir is required")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("draft: create dir: %w", err)
	}
	return &Store{dir: dir}, nil
}

// SaveDraft serializes v under the canonical draft key. Saving the same
// value twice produces byte-identical files.
func (s *Store) SaveDraft(v any) error {
	return s.writeJSON(draftFile, v)
}

// LoadDraft reads the draft into out. The second return is false when no
// draft exists.
func (s *Store) LoadDraft(out any) (bool, error) {
	return s.readJSON(draftFile, out)
}

// ClearDraft removes the draft; clearing an absent draft is not an error.
func (s *Store) ClearDraft() error {
	return s.remove(draftFile)
}

// HasDraft reports whether a resumable draft exists.
func (s *Store) HasDraft() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, err := os.Stat(filepath.Join(s.dir, draftFile))
	return err == nil
}

// SetActiveContext records the created record so the surrounding
// application finds it after redirect.
func (s *Store) SetActiveContext(ref types.RecordRef) error {
	return s.writeJSON(contextFile, ref)
}

func (s *Store) ActiveContext() (types.RecordRef, bool, error) {
	var ref types.RecordRef
	ok, err := s.readJSON(contextFile, &ref)
	return ref, ok, err
}

func (s *Store) SetCredential(c Credential) error {
	return s.writeJSON(credentialFile, c)
}

func (s *Store) Credential() (Credential, bool, error) {
	var c Credential
	ok, err := s.readJSON(credentialFile, &c)
	return c, ok, err
}

func (s *Store) ClearCredential() error {
	return s.remove(credentialFile)
}

func (s *Store) writeJSON(name string, v any) error {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("draft: marshal %s: %w", name, err)
	}
	b = append(b, '\n')

	s.mu.Lock()
	defer s.mu.Unlock()
	p := filepath.Join(s.dir, name)
	tmp := p + ".tmp"
	if err := os.WriteFile(tmp, b, 0o644); err != nil {
		return fmt.Errorf("draft: write %s: %w", name, err)
	}
	if err := os.Rename(tmp, p); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("draft: rename %s: %w", name, err)
	}
	return nil
}

func (s *Store) readJSON(name string, out any) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	b, err := os.ReadFile(filepath.Join(s.dir, name))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return false, nil
		}
		return false, fmt.Errorf("draft: read %s: %w", name, err)
	}
	if err := json.Unmarshal(b, out); err != nil {
		return false, fmt.Errorf("draft: decode %s: %w", name, err)
	}
	return true, nil
}

func (s *Store) remove(name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	err := os.Remove(filepath.Join(s.dir, name))
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	return nil
}
