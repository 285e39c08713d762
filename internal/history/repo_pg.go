package history

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

// PGRepo implements Repo using Postgres.
type PGRepo struct {
	DB *sql.DB
}

// CreateAnalysis inserts a new analysis row.
func (r *PGRepo) CreateAnalysis(ctx context.Context, a Analysis) error {
	const query = `
INSERT INTO analysis_history (
    id,
    user_id,
    user_name,
    resume_filename,
    search_query,
    extracted_skills,
    missing_skills,
    match_percentage,
    jobs_analyzed,
    analysis_date,
    learning_path_generated
) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`

	_, err := r.DB.ExecContext(ctx, query,
		a.ID,
		nullString(a.UserID),
		nullString(a.UserName),
		a.ResumeFilename,
		nullString(a.Query),
		a.MatchingSkills,
		a.MissingSkills,
		a.MatchPercentage,
		a.JobsAnalyzed,
		a.AnalyzedAt,
		a.LearningPathGenerated,
	)
	return err
}

func (r *PGRepo) MarkLearningPathGenerated(ctx context.Context, analysisID string) error {
	const query = `UPDATE analysis_history SET learning_path_generated = TRUE WHERE id = $1`
	res, err := r.DB.ExecContext(ctx, query, analysisID)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// SaveLearningPath replaces the weeks of an analysis in one transaction.
func (r *PGRepo) SaveLearningPath(ctx context.Context, analysisID string, weeks []Week) error {
	const deleteQuery = `DELETE FROM learning_paths WHERE analysis_id = $1`
	const insertQuery = `
INSERT INTO learning_paths (
    analysis_id,
    week_number,
    skill_focus,
    resources,
    milestones,
    created_at
) VALUES ($1, $2, $3, $4, $5, $6)`

	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, deleteQuery, analysisID); err != nil {
		return fmt.Errorf("clear weeks: %w", err)
	}
	for _, w := range weeks {
		if _, err := tx.ExecContext(ctx, insertQuery,
			analysisID,
			w.WeekNumber,
			w.SkillFocus,
			w.Resources,
			w.Milestones,
			w.CreatedAt,
		); err != nil {
			return fmt.Errorf("insert week %d: %w", w.WeekNumber, err)
		}
	}
	return tx.Commit()
}

const analysisColumns = `id, user_id, user_name, resume_filename, search_query, extracted_skills, missing_skills, match_percentage, jobs_analyzed, analysis_date, learning_path_generated`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanAnalysis(row rowScanner) (Analysis, error) {
	var (
		a        Analysis
		userID   sql.NullString
		userName sql.NullString
		query    sql.NullString
		matching sql.NullString
		missing  sql.NullString
	)
	if err := row.Scan(
		&a.ID,
		&userID,
		&userName,
		&a.ResumeFilename,
		&query,
		&matching,
		&missing,
		&a.MatchPercentage,
		&a.JobsAnalyzed,
		&a.AnalyzedAt,
		&a.LearningPathGenerated,
	); err != nil {
		return Analysis{}, err
	}
	a.UserID = userID.String
	a.UserName = userName.String
	a.Query = query.String
	a.MatchingSkills = matching.String
	a.MissingSkills = missing.String
	return a, nil
}

func (r *PGRepo) GetAnalysis(ctx context.Context, analysisID string) (Analysis, error) {
	query := `SELECT ` + analysisColumns + ` FROM analysis_history WHERE id = $1`
	a, err := scanAnalysis(r.DB.QueryRowContext(ctx, query, analysisID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Analysis{}, ErrNotFound
		}
		return Analysis{}, err
	}
	return a, nil
}

func (r *PGRepo) ListAnalyses(ctx context.Context, filter ListFilter) ([]Analysis, error) {
	query := `SELECT ` + analysisColumns + `
FROM analysis_history
WHERE ($1 = '' OR user_id = $1)
ORDER BY analysis_date DESC, id DESC
LIMIT $2 OFFSET $3`

	limit := sql.NullInt64{}
	if filter.Limit > 0 {
		limit = sql.NullInt64{Int64: int64(filter.Limit), Valid: true}
	}
	rows, err := r.DB.QueryContext(ctx, query, filter.UserID, limit, max(filter.Offset, 0))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []Analysis{}
	for rows.Next() {
		a, err := scanAnalysis(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

func (r *PGRepo) ListLearningPath(ctx context.Context, analysisID string) ([]Week, error) {
	const query = `
SELECT analysis_id, week_number, skill_focus, resources, milestones, created_at
FROM learning_paths
WHERE analysis_id = $1
ORDER BY week_number`

	rows, err := r.DB.QueryContext(ctx, query, analysisID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []Week{}
	for rows.Next() {
		var (
			w          Week
			focus      sql.NullString
			resources  sql.NullString
			milestones sql.NullString
		)
		if err := rows.Scan(&w.AnalysisID, &w.WeekNumber, &focus, &resources, &milestones, &w.CreatedAt); err != nil {
			return nil, err
		}
		w.SkillFocus = focus.String
		w.Resources = resources.String
		w.Milestones = milestones.String
		out = append(out, w)
	}
	return out, rows.Err()
}

func nullString(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}
