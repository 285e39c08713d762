package history

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
)

func newMock(t *testing.T) (*PGRepo, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	return &PGRepo{DB: db}, mock
}

func TestPGRepoCreateAnalysis(t *testing.T) {
	repo, mock := newMock(t)
	now := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)
	a := Analysis{
		ID:              "a-1",
		UserID:          "guest:42",
		ResumeFilename:  "cv.pdf",
		MatchingSkills:  "Java, SQL",
		MissingSkills:   "Spring",
		MatchPercentage: 66.7,
		JobsAnalyzed:    35,
		AnalyzedAt:      now,
	}

	mock.ExpectExec("INSERT INTO analysis_history").
		WithArgs("a-1", "guest:42", nil, "cv.pdf", nil, "Java, SQL", "Spring", 66.7, 35, now, false).
		WillReturnResult(sqlmock.NewResult(1, 1))

	if err := repo.CreateAnalysis(context.Background(), a); err != nil {
		t.Fatalf("CreateAnalysis: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("ExpectationsWereMet: %v", err)
	}
}

func TestPGRepoMarkLearningPathGeneratedNotFound(t *testing.T) {
	repo, mock := newMock(t)
	mock.ExpectExec("UPDATE analysis_history SET learning_path_generated").
		WithArgs("missing").
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.MarkLearningPathGenerated(context.Background(), "missing")
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestPGRepoSaveLearningPath(t *testing.T) {
	repo, mock := newMock(t)
	now := time.Now().UTC()
	weeks := []Week{
		{WeekNumber: 1, SkillFocus: "React, Docker", Resources: "React - The Complete Guide (Udemy)", Milestones: "Complete React basics; Complete Docker basics; ", CreatedAt: now},
		{WeekNumber: 2, SkillFocus: "AWS", Resources: "AWS Fundamentals (Coursera)", Milestones: "Complete AWS basics; ", CreatedAt: now},
	}

	mock.ExpectBegin()
	mock.ExpectExec("DELETE FROM learning_paths").WithArgs("a-1").WillReturnResult(sqlmock.NewResult(0, 0))
	for _, w := range weeks {
		mock.ExpectExec("INSERT INTO learning_paths").
			WithArgs("a-1", w.WeekNumber, w.SkillFocus, w.Resources, w.Milestones, now).
			WillReturnResult(sqlmock.NewResult(1, 1))
	}
	mock.ExpectCommit()

	if err := repo.SaveLearningPath(context.Background(), "a-1", weeks); err != nil {
		t.Fatalf("SaveLearningPath: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("ExpectationsWereMet: %v", err)
	}
}

func TestPGRepoSaveLearningPathRollsBack(t *testing.T) {
	repo, mock := newMock(t)

	mock.ExpectBegin()
	mock.ExpectExec("DELETE FROM learning_paths").WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec("INSERT INTO learning_paths").WillReturnError(errors.New("fk violation"))
	mock.ExpectRollback()

	err := repo.SaveLearningPath(context.Background(), "a-1", []Week{{WeekNumber: 1}})
	if err == nil {
		t.Fatalf("expected error")
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("ExpectationsWereMet: %v", err)
	}
}

func TestPGRepoGetAnalysisNotFound(t *testing.T) {
	repo, mock := newMock(t)
	mock.ExpectQuery("SELECT (.+) FROM analysis_history WHERE id").
		WithArgs("nope").
		WillReturnError(sql.ErrNoRows)

	_, err := repo.GetAnalysis(context.Background(), "nope")
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestPGRepoListAnalyses(t *testing.T) {
	repo, mock := newMock(t)
	now := time.Now().UTC()
	cols := []string{"id", "user_id", "user_name", "resume_filename", "search_query", "extracted_skills", "missing_skills", "match_percentage", "jobs_analyzed", "analysis_date", "learning_path_generated"}

	mock.ExpectQuery("SELECT (.+) FROM analysis_history WHERE (.+) ORDER BY analysis_date DESC").
		WithArgs("guest:1", int64(10), 0).
		WillReturnRows(sqlmock.NewRows(cols).
			AddRow("a-2", "guest:1", nil, "b.pdf", "go developer", "Go", "None", 80.0, 35, now, true).
			AddRow("a-1", "guest:1", "Ana", "a.pdf", nil, nil, nil, 0.0, 0, now.Add(-time.Hour), false))

	got, err := repo.ListAnalyses(context.Background(), ListFilter{UserID: "guest:1", Limit: 10})
	if err != nil {
		t.Fatalf("ListAnalyses: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(got))
	}
	if got[0].ID != "a-2" || !got[0].LearningPathGenerated || got[0].Query != "go developer" {
		t.Fatalf("unexpected first row %+v", got[0])
	}
	if got[1].UserName != "Ana" || got[1].MatchingSkills != "" {
		t.Fatalf("unexpected second row %+v", got[1])
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("ExpectationsWereMet: %v", err)
	}
}
