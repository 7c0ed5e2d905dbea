package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/mark47B/opspilot/internal/domain/entity"
	"github.com/mark47B/opspilot/internal/domain/repository"
	"github.com/mark47B/opspilot/internal/domain/usecase"
	"github.com/mark47B/opspilot/internal/infra/storage"
)

type ReportStorage struct {
	db      *sql.DB
	baseURL string
	logger  *zap.Logger
	now     func() time.Time
}

func NewReportStorage(db *sql.DB, baseURL string, logger *zap.Logger) repository.ReportRepository {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ReportStorage{db: db, baseURL: baseURL, logger: logger, now: time.Now}
}

func (s *ReportStorage) Create(ctx context.Context, report entity.WorkflowReport) (entity.WorkflowReport, error) {
	bottlenecks, metrics, err := storage.EncodeColumns(report)
	if err != nil {
		return entity.WorkflowReport{}, err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return entity.WorkflowReport{}, fmt.Errorf("begin tx: %w", err)
	}
	defer func() {
		if err := tx.Rollback(); err != nil && !errors.Is(err, sql.ErrTxDone) {
			s.logger.Warn("tx.Rollback() failed", zap.Error(err))
		}
	}()

	r := report
	err = tx.QueryRowContext(ctx, `
		SELECT COALESCE(MAX(version), 0) + 1 FROM workflow_reports WHERE repo = ? AND team = ?
	`, r.Repo, r.Team).Scan(&r.Version)
	if err != nil {
		return entity.WorkflowReport{}, fmt.Errorf("next report version: %w", err)
	}
	r.ID = uuid.NewString()
	r.CreatedAt = s.now().UTC()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO workflow_reports
			(id, repo, team, window_days, score, bottlenecks, sop, summary, metrics, partial, version, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, r.ID, r.Repo, r.Team, r.WindowDays, r.Score, string(bottlenecks), r.SOP, r.Summary, string(metrics),
		r.Partial, r.Version, r.CreatedAt.UnixNano())
	if err != nil {
		return entity.WorkflowReport{}, fmt.Errorf("insert report: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return entity.WorkflowReport{}, fmt.Errorf("commit tx: %w", err)
	}

	r.URL = storage.ReportURL(s.baseURL, r.ID)
	return r, nil
}

const reportColumns = `id, repo, team, window_days, score, bottlenecks, sop, summary, metrics, partial, version, created_at`

func (s *ReportStorage) Get(ctx context.Context, id string) (entity.WorkflowReport, error) {
	r, err := s.scan(s.db.QueryRowContext(ctx, `SELECT `+reportColumns+` FROM workflow_reports WHERE id = ?`, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return entity.WorkflowReport{}, usecase.ErrReportNotFound
		}
		return entity.WorkflowReport{}, fmt.Errorf("get report: %w", err)
	}
	return r, nil
}

func (s *ReportStorage) List(ctx context.Context, filter entity.ReportFilter) ([]entity.WorkflowReport, error) {
	var (
		where []string
		args  []any
	)
	if filter.Repo != "" {
		where = append(where, "repo = ?")
		args = append(args, filter.Repo)
	}
	if filter.Team != "" {
		where = append(where, "team = ?")
		args = append(args, filter.Team)
	}
	query := `SELECT ` + reportColumns + ` FROM workflow_reports`
	if len(where) > 0 {
		query += ` WHERE ` + strings.Join(where, " AND ")
	}
	query += ` ORDER BY created_at DESC, version DESC LIMIT ?`
	args = append(args, filter.Limit)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list reports: %w", err)
	}
	defer s.closeRows(rows)

	reports := []entity.WorkflowReport{}
	for rows.Next() {
		r, err := s.scan(rows)
		if err != nil {
			return nil, fmt.Errorf("scan report: %w", err)
		}
		reports = append(reports, r)
	}
	return reports, rows.Err()
}

func (s *ReportStorage) ScoreRows(ctx context.Context, since time.Time) ([]entity.ScoreRow, error) {
	query := `SELECT repo, team, score, created_at FROM workflow_reports`
	var args []any
	if !since.IsZero() {
		query += ` WHERE created_at >= ?`
		args = append(args, since.UnixNano())
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query score rows: %w", err)
	}
	defer s.closeRows(rows)

	var out []entity.ScoreRow
	for rows.Next() {
		var (
			r  entity.ScoreRow
			ts int64
		)
		if err := rows.Scan(&r.Repo, &r.Team, &r.Score, &ts); err != nil {
			return nil, fmt.Errorf("scan score row: %w", err)
		}
		r.CreatedAt = time.Unix(0, ts).UTC()
		out = append(out, r)
	}
	return out, rows.Err()
}

type scanner interface {
	Scan(dest ...any) error
}

func (s *ReportStorage) scan(row scanner) (entity.WorkflowReport, error) {
	var (
		r                    entity.WorkflowReport
		bottlenecks, metrics string
		ts                   int64
	)
	err := row.Scan(&r.ID, &r.Repo, &r.Team, &r.WindowDays, &r.Score, &bottlenecks,
		&r.SOP, &r.Summary, &metrics, &r.Partial, &r.Version, &ts)
	if err != nil {
		return entity.WorkflowReport{}, err
	}
	if err := storage.DecodeColumns(&r, []byte(bottlenecks), []byte(metrics)); err != nil {
		return entity.WorkflowReport{}, err
	}
	r.CreatedAt = time.Unix(0, ts).UTC()
	r.URL = storage.ReportURL(s.baseURL, r.ID)
	return r, nil
}

func (s *ReportStorage) closeRows(rows *sql.Rows) {
	if err := rows.Close(); err != nil {
		s.logger.Error("closing rows", zap.Error(err))
	}
}
