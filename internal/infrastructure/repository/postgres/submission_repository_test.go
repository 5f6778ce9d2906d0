package postgres

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"

	"github.com/secdocs/guidance-extractor/internal/core/domain"
)

func newRepoWithMock(t *testing.T) (*SubmissionRepository, sqlmock.Sqlmock, func()) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New() error = %v", err)
	}
	return &SubmissionRepository{db: db}, mock, func() { _ = db.Close() }
}

func sampleResult() domain.ExtractionResult {
	return domain.ExtractionResult{
		Filename:   "guide.pdf",
		ChunkCount: 4,
		BatchCount: 1,
	}
}

func TestCreateInsertsSubmission(t *testing.T) {
	repo, mock, done := newRepoWithMock(t)
	defer done()

	now := time.Now().UTC()
	sub := &domain.Submission{
		ID:        "sub-1",
		Filename:  "guide.pdf",
		Status:    domain.StatusUploaded,
		CreatedAt: now,
		UpdatedAt: now,
	}
	mock.ExpectExec("INSERT INTO submissions").
		WithArgs("sub-1", "guide.pdf", string(domain.StatusUploaded), "", now, now).
		WillReturnResult(sqlmock.NewResult(0, 1))

	if err := repo.Create(context.Background(), sub); err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestGetByIDReturnsDomainNotFound(t *testing.T) {
	repo, mock, done := newRepoWithMock(t)
	defer done()

	mock.ExpectQuery("SELECT id, filename, status").
		WithArgs("missing").
		WillReturnError(sql.ErrNoRows)

	_, err := repo.GetByID(context.Background(), "missing")
	if err == nil {
		t.Fatalf("expected error")
	}
	if !domain.IsKind(err, domain.ErrSubmissionNotFound) {
		t.Fatalf("expected ErrSubmissionNotFound, got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestMergeExtractionByID(t *testing.T) {
	repo, mock, done := newRepoWithMock(t)
	defer done()

	mock.ExpectExec("UPDATE submissions").
		WithArgs("sub-1", sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))

	if err := repo.MergeExtraction(context.Background(), "sub-1", "guide.pdf", sampleResult()); err != nil {
		t.Fatalf("MergeExtraction() error = %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestMergeExtractionFallsBackToFilename(t *testing.T) {
	repo, mock, done := newRepoWithMock(t)
	defer done()

	// The id update matches no row, so the newest record for the filename
	// receives the merge instead.
	mock.ExpectExec("UPDATE submissions").
		WithArgs("sub-stale", sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec("UPDATE submissions").
		WithArgs("guide.pdf", sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))

	if err := repo.MergeExtraction(context.Background(), "sub-stale", "guide.pdf", sampleResult()); err != nil {
		t.Fatalf("MergeExtraction() error = %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestMergeExtractionWithoutIDUsesFilenameOnly(t *testing.T) {
	repo, mock, done := newRepoWithMock(t)
	defer done()

	mock.ExpectExec("UPDATE submissions").
		WithArgs("guide.pdf", sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))

	if err := repo.MergeExtraction(context.Background(), "", "guide.pdf", sampleResult()); err != nil {
		t.Fatalf("MergeExtraction() error = %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestMergeExtractionNotFound(t *testing.T) {
	repo, mock, done := newRepoWithMock(t)
	defer done()

	mock.ExpectExec("UPDATE submissions").
		WithArgs("guide.pdf", sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 0))

	if err := repo.MergeExtraction(context.Background(), "", "guide.pdf", sampleResult()); !domain.IsKind(err, domain.ErrSubmissionNotFound) {
		t.Fatalf("expected ErrSubmissionNotFound, got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}
