package pg

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
	db        *sql.DB
	txManager repository.TxManager
	baseURL   string
	logger    *zap.Logger
	now       func() time.Time
}

func NewReportStorage(db *sql.DB, txManager repository.TxManager, baseURL string, logger *zap.Logger) repository.ReportRepository {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ReportStorage{
		db:        db,
		txManager: txManager,
		baseURL:   baseURL,
		logger:    logger,
		now:       time.Now,
	}
}

func (s *ReportStorage) getQuerier(ctx context.Context) Querier {
	return getQuerier(ctx, s.db)
}

// Create appends the next version for (repo, team). The advisory lock serializes
// concurrent writers of the same key for the duration of the transaction.
func (s *ReportStorage) Create(ctx context.Context, report entity.WorkflowReport) (entity.WorkflowReport, error) {
	bottlenecks, metrics, err := storage.EncodeColumns(report)
	if err != nil {
		return entity.WorkflowReport{}, err
	}

	r, err := repository.InTx(ctx, s.txManager, func(txCtx context.Context) (entity.WorkflowReport, error) {
		q := s.getQuerier(txCtx)

		if _, err := q.ExecContext(txCtx, `SELECT pg_advisory_xact_lock(hashtext($1))`,
			report.Repo+"|"+report.Team); err != nil {
			return entity.WorkflowReport{}, fmt.Errorf("lock report key: %w", err)
		}

		var version int
		err := q.QueryRowContext(txCtx, `
			SELECT COALESCE(MAX(version), 0) + 1
			FROM workflow_reports
			WHERE repo = $1 AND team = $2
		`, report.Repo, report.Team).Scan(&version)
		if err != nil {
			return entity.WorkflowReport{}, fmt.Errorf("next report version: %w", err)
		}

		r := report
		r.ID = uuid.NewString()
		r.Version = version
		r.CreatedAt = s.now().UTC()

		_, err = q.ExecContext(txCtx, `
			INSERT INTO workflow_reports
				(id, repo, team, window_days, score, bottlenecks, sop, summary, metrics, partial, version, created_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		`, r.ID, r.Repo, r.Team, r.WindowDays, r.Score, string(bottlenecks), r.SOP, r.Summary, string(metrics), r.Partial, r.Version, r.CreatedAt)
		if err != nil {
			return entity.WorkflowReport{}, fmt.Errorf("insert report: %w", err)
		}
		return r, nil
	})
	if err != nil {
		return entity.WorkflowReport{}, err
	}

	r.URL = storage.ReportURL(s.baseURL, r.ID)
	return r, nil
}

const reportColumns = `id, repo, team, window_days, score, bottlenecks, sop, summary, metrics, partial, version, created_at`

func (s *ReportStorage) Get(ctx context.Context, id string) (entity.WorkflowReport, error) {
	if _, err := uuid.Parse(id); err != nil {
		return entity.WorkflowReport{}, usecase.ErrReportNotFound
	}

	q := s.getQuerier(ctx)
	r, err := s.scan(q.QueryRowContext(ctx, `SELECT `+reportColumns+` FROM workflow_reports WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return entity.WorkflowReport{}, usecase.ErrReportNotFound
		}
		return entity.WorkflowReport{}, fmt.Errorf("get report: %w", err)
	}
	return r, nil
}

func (s *ReportStorage) List(ctx context.Context, filter entity.ReportFilter) ([]entity.WorkflowReport, error) {
	q := s.getQuerier(ctx)

	var (
		where []string
		args  []any
	)
	if filter.Repo != "" {
		args = append(args, filter.Repo)
		where = append(where, fmt.Sprintf("repo = $%d", len(args)))
	}
	if filter.Team != "" {
		args = append(args, filter.Team)
		where = append(where, fmt.Sprintf("team = $%d", len(args)))
	}
	query := `SELECT ` + reportColumns + ` FROM workflow_reports`
	if len(where) > 0 {
		query += ` WHERE ` + strings.Join(where, " AND ")
	}
	args = append(args, filter.Limit)
	query += fmt.Sprintf(` ORDER BY created_at DESC, version DESC LIMIT $%d`, len(args))

	rows, err := q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list reports: %w", err)
	}
	defer CloseRows(rows, s.logger)

	reports := []entity.WorkflowReport{}
	for rows.Next() {
		r, err := s.scan(rows)
		if err != nil {
			return nil, fmt.Errorf("scan report: %w", err)
		}
		reports = append(reports, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate reports: %w", err)
	}
	return reports, nil
}

func (s *ReportStorage) ScoreRows(ctx context.Context, since time.Time) ([]entity.ScoreRow, error) {
	q := s.getQuerier(ctx)

	rows, err := q.QueryContext(ctx, `
		SELECT repo, team, score, created_at
		FROM workflow_reports
		WHERE created_at >= $1
	`, since.UTC())
	if err != nil {
		return nil, fmt.Errorf("query score rows: %w", err)
	}
	defer CloseRows(rows, s.logger)

	var out []entity.ScoreRow
	for rows.Next() {
		var r entity.ScoreRow
		if err := rows.Scan(&r.Repo, &r.Team, &r.Score, &r.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan score row: %w", err)
		}
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
		bottlenecks, metrics []byte
	)
	err := row.Scan(&r.ID, &r.Repo, &r.Team, &r.WindowDays, &r.Score, &bottlenecks,
		&r.SOP, &r.Summary, &metrics, &r.Partial, &r.Version, &r.CreatedAt)
	if err != nil {
		return entity.WorkflowReport{}, err
	}
	if err := storage.DecodeColumns(&r, bottlenecks, metrics); err != nil {
		return entity.WorkflowReport{}, err
	}
	r.CreatedAt = r.CreatedAt.UTC()
	r.URL = storage.ReportURL(s.baseURL, r.ID)
	return r, nil
}
