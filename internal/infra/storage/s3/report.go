// Package s3 stores reports as JSON documents in an S3-compatible bucket.
package s3

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"path"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"go.uber.org/zap"

	"github.com/mark47B/opspilot/internal/domain/entity"
	"github.com/mark47B/opspilot/internal/domain/repository"
	"github.com/mark47B/opspilot/internal/domain/usecase"
	"github.com/mark47B/opspilot/internal/infra/storage"
)

const rootPrefix = "reports/"

type Config struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	Region    string
	UseSSL    bool
	BaseURL   string
}

// ReportStorage keeps one object per report version under reports/{repo}/{team}/.
// Version allocation is serialized in-process only; a second writer process
// against the same bucket could race.
type ReportStorage struct {
	client  *minio.Client
	bucket  string
	region  string
	baseURL string
	logger  *zap.Logger
	now     func() time.Time

	bucketOnce sync.Once
	bucketErr  error
	mu         sync.Mutex
}

func NewReportStorage(cfg Config, logger *zap.Logger) (repository.ReportRepository, error) {
	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
		Region: cfg.Region,
	})
	if err != nil {
		return nil, fmt.Errorf("create s3 client: %w", err)
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ReportStorage{
		client:  client,
		bucket:  cfg.Bucket,
		region:  cfg.Region,
		baseURL: cfg.BaseURL,
		logger:  logger,
		now:     time.Now,
	}, nil
}

func (s *ReportStorage) ensureBucket(ctx context.Context) error {
	s.bucketOnce.Do(func() {
		exists, err := s.client.BucketExists(ctx, s.bucket)
		if err != nil {
			s.bucketErr = fmt.Errorf("check bucket: %w", err)
			return
		}
		if exists {
			return
		}
		if err := s.client.MakeBucket(ctx, s.bucket, minio.MakeBucketOptions{Region: s.region}); err != nil {
			s.bucketErr = fmt.Errorf("create bucket: %w", err)
		}
	})
	return s.bucketErr
}

func (s *ReportStorage) Create(ctx context.Context, report entity.WorkflowReport) (entity.WorkflowReport, error) {
	if err := s.ensureBucket(ctx); err != nil {
		return entity.WorkflowReport{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	latest, err := s.latestVersion(ctx, keyPrefix(report.Repo, report.Team))
	if err != nil {
		return entity.WorkflowReport{}, err
	}

	r := report
	r.Version = latest + 1
	r.CreatedAt = s.now().UTC()
	key := objectKey(r.Repo, r.Team, r.Version)
	r.ID = EncodeID(key)

	body, err := json.Marshal(storage.NewDocument(r))
	if err != nil {
		return entity.WorkflowReport{}, fmt.Errorf("marshal report: %w", err)
	}
	_, err = s.client.PutObject(ctx, s.bucket, key, bytes.NewReader(body), int64(len(body)),
		minio.PutObjectOptions{ContentType: "application/json"})
	if err != nil {
		return entity.WorkflowReport{}, fmt.Errorf("put report: %w", err)
	}

	r.URL = storage.ReportURL(s.baseURL, r.ID)
	return r, nil
}

func (s *ReportStorage) Get(ctx context.Context, id string) (entity.WorkflowReport, error) {
	key, err := DecodeID(id)
	if err != nil {
		return entity.WorkflowReport{}, usecase.ErrReportNotFound
	}
	doc, err := s.read(ctx, key)
	if err != nil {
		if minio.ToErrorResponse(err).Code == "NoSuchKey" {
			return entity.WorkflowReport{}, usecase.ErrReportNotFound
		}
		return entity.WorkflowReport{}, err
	}
	return doc.Report(s.baseURL), nil
}

func (s *ReportStorage) List(ctx context.Context, filter entity.ReportFilter) ([]entity.WorkflowReport, error) {
	docs, err := s.readAll(ctx, listPrefix(filter.Repo, filter.Team), func(key string) bool {
		repo, team, _, ok := parseKey(key)
		return ok && (filter.Repo == "" || repo == filter.Repo) && (filter.Team == "" || team == filter.Team)
	})
	if err != nil {
		return nil, err
	}

	sort.Slice(docs, func(i, j int) bool {
		if !docs[i].CreatedAt.Equal(docs[j].CreatedAt) {
			return docs[i].CreatedAt.After(docs[j].CreatedAt)
		}
		return docs[i].Version > docs[j].Version
	})
	if filter.Limit > 0 && len(docs) > filter.Limit {
		docs = docs[:filter.Limit]
	}

	out := make([]entity.WorkflowReport, 0, len(docs))
	for _, d := range docs {
		out = append(out, d.Report(s.baseURL))
	}
	return out, nil
}

func (s *ReportStorage) ScoreRows(ctx context.Context, since time.Time) ([]entity.ScoreRow, error) {
	docs, err := s.readAll(ctx, rootPrefix, func(string) bool { return true })
	if err != nil {
		return nil, err
	}
	var out []entity.ScoreRow
	for _, d := range docs {
		if d.CreatedAt.Before(since) {
			continue
		}
		out = append(out, entity.ScoreRow{Repo: d.Repo, Team: d.Team, Score: d.Score, CreatedAt: d.CreatedAt})
	}
	return out, nil
}

func (s *ReportStorage) latestVersion(ctx context.Context, prefix string) (int, error) {
	latest := 0
	for obj := range s.client.ListObjects(ctx, s.bucket, minio.ListObjectsOptions{Prefix: prefix, Recursive: true}) {
		if obj.Err != nil {
			return 0, fmt.Errorf("list reports: %w", obj.Err)
		}
		if _, _, v, ok := parseKey(obj.Key); ok && v > latest {
			latest = v
		}
	}
	return latest, nil
}

func (s *ReportStorage) readAll(ctx context.Context, prefix string, keep func(string) bool) ([]storage.Document, error) {
	if err := s.ensureBucket(ctx); err != nil {
		return nil, err
	}
	var docs []storage.Document
	for obj := range s.client.ListObjects(ctx, s.bucket, minio.ListObjectsOptions{Prefix: prefix, Recursive: true}) {
		if obj.Err != nil {
			return nil, fmt.Errorf("list reports: %w", obj.Err)
		}
		if !keep(obj.Key) {
			continue
		}
		doc, err := s.read(ctx, obj.Key)
		if err != nil {
			s.logger.Warn("skipping unreadable report", zap.String("key", obj.Key), zap.Error(err))
			continue
		}
		docs = append(docs, doc)
	}
	return docs, nil
}

func (s *ReportStorage) read(ctx context.Context, key string) (storage.Document, error) {
	obj, err := s.client.GetObject(ctx, s.bucket, key, minio.GetObjectOptions{})
	if err != nil {
		return storage.Document{}, err
	}
	defer func() { _ = obj.Close() }()

	data, err := io.ReadAll(obj)
	if err != nil {
		return storage.Document{}, err
	}
	var doc storage.Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return storage.Document{}, fmt.Errorf("decode report %s: %w", key, err)
	}
	return doc, nil
}

func keyPrefix(repo, team string) string {
	return rootPrefix + repo + "/" + team + "/"
}

func listPrefix(repo, team string) string {
	switch {
	case repo != "" && team != "":
		return keyPrefix(repo, team)
	case repo != "":
		return rootPrefix + repo + "/"
	}
	return rootPrefix
}

func objectKey(repo, team string, version int) string {
	return fmt.Sprintf("%sv%06d.json", keyPrefix(repo, team), version)
}

// parseKey splits reports/{repo}/{team}/vNNNNNN.json. repo may itself contain slashes.
func parseKey(key string) (repo, team string, version int, ok bool) {
	rest, found := strings.CutPrefix(key, rootPrefix)
	if !found {
		return "", "", 0, false
	}
	dir, file := path.Split(rest)
	num, found := strings.CutPrefix(strings.TrimSuffix(file, ".json"), "v")
	if !found || !strings.HasSuffix(file, ".json") {
		return "", "", 0, false
	}
	version, err := strconv.Atoi(num)
	if err != nil {
		return "", "", 0, false
	}
	dir = strings.TrimSuffix(dir, "/")
	i := strings.LastIndex(dir, "/")
	if i <= 0 || i == len(dir)-1 {
		return "", "", 0, false
	}
	return dir[:i], dir[i+1:], version, true
}

func EncodeID(key string) string {
	return base64.RawURLEncoding.EncodeToString([]byte(key))
}

func DecodeID(id string) (string, error) {
	b, err := base64.RawURLEncoding.DecodeString(id)
	if err != nil {
		return "", err
	}
	key := string(b)
	if _, _, _, ok := parseKey(key); !ok {
		return "", fmt.Errorf("not a report key: %q", key)
	}
	return key, nil
}
