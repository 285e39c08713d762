package catalog

import (
	"context"
	"database/sql"
	"fmt"
)

// PGRepo implements Repo using Postgres.
type PGRepo struct {
	DB *sql.DB
}

const selectColumns = `id, skill_name, resource_title, resource_type, resource_url, platform, duration_weeks, difficulty_level, description`

const difficultyOrder = `CASE lower(difficulty_level)
    WHEN 'beginner' THEN 1
    WHEN 'intermediate' THEN 2
    WHEN 'advanced' THEN 3
    ELSE 4
END`

// Lookup returns resources for a skill, easiest first.
func (r *PGRepo) Lookup(ctx context.Context, skill string) ([]Resource, error) {
	query := `
SELECT ` + selectColumns + `
FROM learning_resources
WHERE lower(skill_name) = lower($1)
ORDER BY ` + difficultyOrder + `, id`
	return r.query(ctx, query, skill)
}

// List returns every resource grouped by skill.
func (r *PGRepo) List(ctx context.Context) ([]Resource, error) {
	query := `
SELECT ` + selectColumns + `
FROM learning_resources
ORDER BY lower(skill_name), ` + difficultyOrder + `, id`
	return r.query(ctx, query)
}

func (r *PGRepo) Count(ctx context.Context) (int, error) {
	const query = `SELECT COUNT(*) FROM learning_resources`
	var n int
	if err := r.DB.QueryRowContext(ctx, query).Scan(&n); err != nil {
		return 0, err
	}
	return n, nil
}

// Insert adds resources in a single transaction.
func (r *PGRepo) Insert(ctx context.Context, resources []Resource) error {
	const query = `
INSERT INTO learning_resources (
    skill_name,
    resource_title,
    resource_type,
    resource_url,
    platform,
    duration_weeks,
    difficulty_level,
    description
) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`

	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	for _, res := range resources {
		if _, err := tx.ExecContext(ctx, query,
			res.Skill,
			res.Title,
			res.Type,
			res.URL,
			res.Platform,
			nullInt(res.DurationWeeks),
			nullString(res.Difficulty),
			nullString(res.Description),
		); err != nil {
			return fmt.Errorf("insert %q: %w", res.Title, err)
		}
	}
	return tx.Commit()
}

func (r *PGRepo) query(ctx context.Context, query string, args ...any) ([]Resource, error) {
	rows, err := r.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Resource
	for rows.Next() {
		var (
			res         Resource
			weeks       sql.NullInt64
			difficulty  sql.NullString
			description sql.NullString
		)
		if err := rows.Scan(
			&res.ID,
			&res.Skill,
			&res.Title,
			&res.Type,
			&res.URL,
			&res.Platform,
			&weeks,
			&difficulty,
			&description,
		); err != nil {
			return nil, err
		}
		if weeks.Valid {
			res.DurationWeeks = int(weeks.Int64)
		}
		if difficulty.Valid {
			res.Difficulty = difficulty.String
		}
		if description.Valid {
			res.Description = description.String
		}
		out = append(out, res)
	}
	return out, rows.Err()
}

func nullString(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}

func nullInt(n int) sql.NullInt64 {
	if n <= 0 {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: int64(n), Valid: true}
}
