package catalog

import (
	"context"
	"database/sql"
	"errors"
	"testing"

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

func TestPGRepoLookupOrdersByDifficulty(t *testing.T) {
	repo, mock := newMock(t)

	rows := sqlmock.NewRows([]string{"id", "skill_name", "resource_title", "resource_type", "resource_url", "platform", "duration_weeks", "difficulty_level", "description"}).
		AddRow(2, "Docker", "Docker Tutorial for Beginners", "Video", "https://www.youtube.com/watch?v=fqMOX6JJhGo", "YouTube", 1, "Beginner", "Free Docker crash course").
		AddRow(1, "Docker", "Docker Mastery", "Course", "https://www.udemy.com/course/docker-mastery/", "Udemy", nil, nil, nil)

	mock.ExpectQuery(`SELECT (.+) FROM learning_resources WHERE lower\(skill_name\) = lower\(\$1\) ORDER BY CASE`).
		WithArgs("docker").
		WillReturnRows(rows)

	got, err := repo.Lookup(context.Background(), "docker")
	if err != nil {
		t.Fatalf("Lookup: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 resources, got %d", len(got))
	}
	if got[0].Platform != "YouTube" || got[0].DurationWeeks != 1 {
		t.Fatalf("unexpected first resource %+v", got[0])
	}
	if got[1].Difficulty != "" || got[1].DurationWeeks != 0 {
		t.Fatalf("expected null columns to stay empty, got %+v", got[1])
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("ExpectationsWereMet: %v", err)
	}
}

func TestPGRepoInsertIsTransactional(t *testing.T) {
	repo, mock := newMock(t)
	resources := []Resource{
		{Skill: "Go", Title: "Learn Go Programming", Type: "Course", URL: "https://www.udemy.com/course/learn-how-to-code/", Platform: "Udemy", DurationWeeks: 8, Difficulty: Beginner},
		{Skill: "Rust", Title: "The Rust Programming Language", Type: "Book", URL: "https://doc.rust-lang.org/book/", Platform: "Rust Official"},
	}

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO learning_resources").
		WithArgs("Go", "Learn Go Programming", "Course", resources[0].URL, "Udemy",
			sql.NullInt64{Int64: 8, Valid: true}, sql.NullString{String: Beginner, Valid: true}, sql.NullString{}).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec("INSERT INTO learning_resources").
		WithArgs("Rust", "The Rust Programming Language", "Book", resources[1].URL, "Rust Official",
			sql.NullInt64{}, sql.NullString{}, sql.NullString{}).
		WillReturnResult(sqlmock.NewResult(2, 1))
	mock.ExpectCommit()

	if err := repo.Insert(context.Background(), resources); err != nil {
		t.Fatalf("Insert: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("ExpectationsWereMet: %v", err)
	}
}

func TestPGRepoInsertRollsBackOnError(t *testing.T) {
	repo, mock := newMock(t)

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO learning_resources").WillReturnError(errors.New("duplicate"))
	mock.ExpectRollback()

	err := repo.Insert(context.Background(), []Resource{{Skill: "Go", Title: "x", URL: "u"}})
	if err == nil {
		t.Fatalf("expected error")
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("ExpectationsWereMet: %v", err)
	}
}

func TestPGRepoCount(t *testing.T) {
	repo, mock := newMock(t)
	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM learning_resources`).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(40))

	n, err := repo.Count(context.Background())
	if err != nil {
		t.Fatalf("Count: %v", err)
	}
	if n != 40 {
		t.Fatalf("expected 40, got %d", n)
	}
}
