// Package recordstore persists created project and case records. The
// default backend is a JSON file under tmp/; setting RECORD_STORE_PG_DSN
// switches to Postgres. A small LRU keeps hot records out of the
// database on read paths.
package recordstore

import (
	"context"
	"database/sql"
	"errors"
	"os"
	"strings"
	"sync"

	lru "github.com/hashicorp/golang-lru/v2"
	_ "github.com/jackc/pgx/v5/stdlib"
)

// ErrDuplicateCode reports a uniqueness violation on (type, code).
var ErrDuplicateCode = errors.New("record code already exists")

type Store struct {
	path string
	db   *sql.DB

	loadOnce sync.Once
	mu       sync.RWMutex
	byID     map[string]Record

	schemaOnce sync.Once
	schemaErr  error

	cache *lru.Cache[string, Record]
}

func New(path string) *Store {
	cache, _ := lru.New[string, Record](1024)
	return &Store{
		path:  path,
		byID:  make(map[string]Record),
		cache: cache,
	}
}

func NewPostgres(dsn string) (*Store, error) {
	db, err := sql.Open("pgx", strings.TrimSpace(dsn))
	if err != nil {
		return nil, err
	}
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, err
	}
	cache, _ := lru.New[string, Record](1024)
	return &Store{db: db, cache: cache}, nil
}

// NewFromEnv prefers Postgres when RECORD_STORE_PG_DSN is set, falling
// back to the file backend when the connection cannot be established.
func NewFromEnv(path string) *Store {
	dsn := strings.TrimSpace(os.Getenv("RECORD_STORE_PG_DSN"))
	if dsn == "" {
		return New(path)
	}
	s, err := NewPostgres(dsn)
	if err != nil {
		return New(path)
	}
	return s
}

func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Put stores a new record. It fails with ErrDuplicateCode when another
// record of the same type already holds the code.
func (s *Store) Put(ctx context.Context, r Record) error {
	if s == nil {
		return errors.New("store is nil")
	}
	r = normalizeRecord(r)
	if r.ID == "" {
		return errors.New("record id is required")
	}
	var err error
	if s.db != nil {
		err = s.putDB(ctx, r)
	} else {
		err = s.putFile(r)
	}
	if err != nil {
		return err
	}
	s.cache.Add(r.ID, r)
	return nil
}

func (s *Store) Get(ctx context.Context, id string) (Record, bool) {
	if s == nil {
		return Record{}, false
	}
	id = strings.TrimSpace(id)
	if id == "" {
		return Record{}, false
	}
	if r, ok := s.cache.Get(id); ok {
		return r, true
	}
	var (
		r  Record
		ok bool
	)
	if s.db != nil {
		r, ok = s.getDB(ctx, id)
	} else {
		r, ok = s.getFile(id)
	}
	if ok {
		s.cache.Add(id, r)
	}
	return r, ok
}

// CodeExists reports whether a record of recordType already uses code.
func (s *Store) CodeExists(ctx context.Context, recordType, code string) (bool, error) {
	if s == nil {
		return false, errors.New("store is nil")
	}
	recordType = strings.TrimSpace(strings.ToLower(recordType))
	code = strings.TrimSpace(code)
	if code == "" {
		return false, nil
	}
	if s.db != nil {
		return s.codeExistsDB(ctx, recordType, code)
	}
	return s.codeExistsFile(recordType, code), nil
}

// List returns every record of recordType (all records when empty).
func (s *Store) List(ctx context.Context, recordType string) []Record {
	if s == nil {
		return nil
	}
	recordType = strings.TrimSpace(strings.ToLower(recordType))
	if s.db != nil {
		return s.listDB(ctx, recordType)
	}
	return s.listFile(recordType)
}
