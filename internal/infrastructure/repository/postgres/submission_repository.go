package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/secdocs/guidance-extractor/internal/core/domain"
)

type SubmissionRepository struct {
	db *sql.DB
}

func NewSubmissionRepository(db *sql.DB) *SubmissionRepository {
	return &SubmissionRepository{db: db}
}

func OpenDB(dsn string) (*sql.DB, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("sql open: %w", err)
	}
	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(10)
	db.SetConnMaxLifetime(30 * time.Minute)

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("db ping: %w", err)
	}
	return db, nil
}

func (r *SubmissionRepository) EnsureSchema(ctx context.Context) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin schema tx: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	// Serialize bootstrap DDL across worker startups.
	if _, err := tx.ExecContext(ctx, `SELECT pg_advisory_xact_lock($1)`, int64(2026083001)); err != nil {
		return fmt.Errorf("acquire schema lock: %w", err)
	}

	const query = `
CREATE TABLE IF NOT EXISTS submissions (
	id TEXT PRIMARY KEY,
	filename TEXT NOT NULL,
	status TEXT NOT NULL,
	error_message TEXT,
	extraction JSONB NOT NULL DEFAULT '{}'::jsonb,
	created_at TIMESTAMPTZ NOT NULL,
	updated_at TIMESTAMPTZ NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_submissions_filename ON submissions(filename);
CREATE INDEX IF NOT EXISTS idx_submissions_status ON submissions(status);
`
	if _, err := tx.ExecContext(ctx, query); err != nil {
		return fmt.Errorf("execute schema ddl: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit schema tx: %w", err)
	}
	return nil
}

func (r *SubmissionRepository) Create(ctx context.Context, sub *domain.Submission) error {
	_, err := r.db.ExecContext(ctx, `
INSERT INTO submissions (id, filename, status, error_message, created_at, updated_at)
VALUES ($1,$2,$3,$4,$5,$6)
`,
		sub.ID, sub.Filename, string(sub.Status), sub.Error, sub.CreatedAt, sub.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert submission: %w", err)
	}
	return nil
}

func (r *SubmissionRepository) GetByID(ctx context.Context, id string) (*domain.Submission, error) {
	row := r.db.QueryRowContext(ctx, `
SELECT id, filename, status, error_message, created_at, updated_at
FROM submissions
WHERE id = $1
`, id)

	var sub domain.Submission
	var status string
	err := row.Scan(&sub.ID, &sub.Filename, &status, &sub.Error, &sub.CreatedAt, &sub.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.WrapError(domain.ErrSubmissionNotFound, "get submission", fmt.Errorf("id=%s", id))
		}
		return nil, fmt.Errorf("scan submission: %w", err)
	}
	sub.Status = domain.SubmissionStatus(status)
	return &sub, nil
}

func (r *SubmissionRepository) UpdateStatus(ctx context.Context, id string, status domain.SubmissionStatus, errMessage string) error {
	_, err := r.db.ExecContext(ctx, `
UPDATE submissions
SET status = $2, error_message = $3, updated_at = $4
WHERE id = $1
`, id, string(status), errMessage, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("update submission status: %w", err)
	}
	return nil
}

// MergeExtraction folds the extraction result into the stored JSON blob with
// a jsonb concatenation, so unrelated keys written by the dashboard survive.
// Falls back to the newest record matching the filename when no submission id
// was supplied.
func (r *SubmissionRepository) MergeExtraction(ctx context.Context, submissionID, filename string, result domain.ExtractionResult) error {
	payload, err := json.Marshal(result)
	if err != nil {
		return fmt.Errorf("marshal extraction result: %w", err)
	}
	now := time.Now().UTC()

	if submissionID != "" {
		res, err := r.db.ExecContext(ctx, `
UPDATE submissions
SET extraction = extraction || $2::jsonb, updated_at = $3
WHERE id = $1
`, submissionID, payload, now)
		if err != nil {
			return fmt.Errorf("merge extraction by id: %w", err)
		}
		if n, err := res.RowsAffected(); err == nil && n > 0 {
			return nil
		}
	}

	res, err := r.db.ExecContext(ctx, `
UPDATE submissions
SET extraction = extraction || $2::jsonb, updated_at = $3
WHERE id = (
	SELECT id FROM submissions WHERE filename = $1 ORDER BY created_at DESC LIMIT 1
)
`, filename, payload, now)
	if err != nil {
		return fmt.Errorf("merge extraction by filename: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return domain.WrapError(domain.ErrSubmissionNotFound, "merge extraction", fmt.Errorf("filename=%s", filename))
	}
	return nil
}
