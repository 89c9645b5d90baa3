// Package archive snapshots every accepted creation payload so a record
// can be audited against exactly what the wizard submitted. Backed by
// S3-compatible object storage; an in-memory store stands in when the
// archive is disabled.
package archive

import (
	"bytes"
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// Store persists one JSON snapshot per created record.
type Store interface {
	Put(ctx context.Context, recordID string, snapshot []byte) error
	Get(ctx context.Context, recordID string) ([]byte, error)
	List(ctx context.Context) ([]string, error)
}

type S3Config struct {
	Endpoint  string
	Region    string
	AccessKey string
	SecretKey string
	Bucket    string
	UseSSL    bool
}

type S3Store struct {
	client     *minio.Client
	bucketName string
	region     string
	initOnce   sync.Once
	initErr    error
}

func NewS3Store(cfg S3Config) (*S3Store, error) {
	endpoint := strings.TrimSpace(cfg.Endpoint)
	if endpoint == "" {
		return nil, fmt.Errorf("s3 endpoint is required")
	}
	access := strings.TrimSpace(cfg.AccessKey)
	secret := strings.TrimSpace(cfg.SecretKey)
	if access == "" || secret == "" {
		return nil, fmt.Errorf("s3 access key and secret key are required")
	}
	bucket := strings.TrimSpace(cfg.Bucket)
	if bucket == "" {
		return nil, fmt.Errorf("s3 bucket is required")
	}
	region := strings.TrimSpace(cfg.Region)
	if region == "" {
		region = "us-east-1"
	}

	client, err := minio.New(endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(access, secret, ""),
		Secure: cfg.UseSSL,
		Region: region,
	})
	if err != nil {
		return nil, fmt.Errorf("init s3 client: %w", err)
	}
	return &S3Store{client: client, bucketName: bucket, region: region}, nil
}

func (s *S3Store) ensureBucket(ctx context.Context) error {
	s.initOnce.Do(func() {
		exists, err := s.client.BucketExists(ctx, s.bucketName)
		if err != nil {
			s.initErr = fmt.Errorf("check bucket: %w", err)
			return
		}
		if exists {
			return
		}
		if err := s.client.MakeBucket(ctx, s.bucketName, minio.MakeBucketOptions{Region: s.region}); err != nil {
			s.initErr = fmt.Errorf("make bucket: %w", err)
		}
	})
	return s.initErr
}

func objectKey(recordID string) string {
	return "submissions/" + strings.TrimSpace(recordID) + ".json"
}

func (s *S3Store) Put(ctx context.Context, recordID string, snapshot []byte) error {
	if strings.TrimSpace(recordID) == "" {
		return fmt.Errorf("record id is required")
	}
	if err := s.ensureBucket(ctx); err != nil {
		return err
	}
	_, err := s.client.PutObject(ctx, s.bucketName, objectKey(recordID),
		bytes.NewReader(snapshot), int64(len(snapshot)),
		minio.PutObjectOptions{ContentType: "application/json"})
	return err
}

func (s *S3Store) Get(ctx context.Context, recordID string) ([]byte, error) {
	if err := s.ensureBucket(ctx); err != nil {
		return nil, err
	}
	obj, err := s.client.GetObject(ctx, s.bucketName, objectKey(recordID), minio.GetObjectOptions{})
	if err != nil {
		return nil, err
	}
	defer obj.Close()
	var buf bytes.Buffer
	if _, err := buf.ReadFrom(obj); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (s *S3Store) List(ctx context.Context) ([]string, error) {
	if err := s.ensureBucket(ctx); err != nil {
		return nil, err
	}
	var ids []string
	for obj := range s.client.ListObjects(ctx, s.bucketName, minio.ListObjectsOptions{Prefix: "submissions/", Recursive: true}) {
		if obj.Err != nil {
			return nil, obj.Err
		}
		id := strings.TrimSuffix(strings.TrimPrefix(obj.Key, "submissions/"), ".json")
		if id != "" {
			ids = append(ids, id)
		}
	}
	sort.Strings(ids)
	return ids, nil
}

// MemoryStore keeps snapshots in process memory. Used when the archive
// is disabled and in tests.
type MemoryStore struct {
	mu   sync.RWMutex
	byID map[string][]byte
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{byID: make(map[string][]byte)}
}

func (m *MemoryStore) Put(_ context.Context, recordID string, snapshot []byte) error {
	recordID = strings.TrimSpace(recordID)
	if recordID == "" {
		return fmt.Errorf("record id is required")
	}
	m.mu.Lock()
	m.byID[recordID] = append([]byte(nil), snapshot...)
	m.mu.Unlock()
	return nil
}

func (m *MemoryStore) Get(_ context.Context, recordID string) ([]byte, error) {
	m.mu.RLock()
	b, ok := m.byID[strings.TrimSpace(recordID)]
	m.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("snapshot %s not found", recordID)
	}
	return append([]byte(nil), b...), nil
}

func (m *MemoryStore) List(_ context.Context) ([]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	ids := make([]string, 0, len(m.byID))
	for id := range m.byID {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids, nil
}

var _ Store = (*S3Store)(nil)
var _ Store = (*MemoryStore)(nil)
