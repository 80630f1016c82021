package database

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/acadlabs/bibliometer/internal/analysis"
)

// CreateThesisWithMetrics persists a thesis and its metrics record as one
// transaction. Either both rows land or neither does.
func (r *Repository) CreateThesisWithMetrics(t *Thesis, m *Metrics) error {
	indicators, err := json.Marshal(t.Indicators)
	if err != nil {
		return fmt.Errorf("failed to encode indicators: %w", err)
	}
	recs, err := json.Marshal(m.Recommendations)
	if err != nil {
		return fmt.Errorf("failed to encode recommendations: %w", err)
	}
	comparison, err := json.Marshal(m.Comparison)
	if err != nil {
		return fmt.Errorf("failed to encode comparison: %w", err)
	}

	tx, err := r.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.Exec(`
		INSERT INTO theses (id, user_id, title, author, year, predicted_score, category, indicators, file_path, file_name, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, t.ID, t.UserID, t.Title, t.Author, t.Year, t.PredictedScore, t.Category, string(indicators), t.FilePath, t.FileName, t.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert thesis: %w", err)
	}

	_, err = tx.Exec(`
		INSERT INTO metrics (id, thesis_id, citation, methodology, innovation, techniques, results, total,
			category, confidence, model_version, ml_score, comparison, recommendations, analyzed_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, m.ID, m.ThesisID, m.Scores.Citation, m.Scores.Methodology, m.Scores.Innovation,
		m.Scores.Techniques, m.Scores.Results, m.Scores.Total,
		m.Prediction.Category, m.Prediction.Confidence, m.Prediction.ModelVersion, m.Prediction.MLScore,
		string(comparison), string(recs), m.AnalyzedAt)
	if err != nil {
		return fmt.Errorf("failed to insert metrics: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit analysis: %w", err)
	}
	return nil
}

const thesisColumns = "id, user_id, title, author, year, predicted_score, category, indicators, file_path, file_name, created_at"

func scanThesis(row interface{ Scan(...any) error }) (*Thesis, error) {
	var t Thesis
	var indicators string
	err := row.Scan(&t.ID, &t.UserID, &t.Title, &t.Author, &t.Year, &t.PredictedScore,
		&t.Category, &indicators, &t.FilePath, &t.FileName, &t.CreatedAt)
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal([]byte(indicators), &t.Indicators); err != nil {
		return nil, fmt.Errorf("failed to decode indicators: %w", err)
	}
	return &t, nil
}

// GetThesis fetches a thesis by ID.
func (r *Repository) GetThesis(id string) (*Thesis, error) {
	t, err := scanThesis(r.db.QueryRow(`SELECT `+thesisColumns+` FROM theses WHERE id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query thesis: %w", err)
	}
	return t, nil
}

// ListThesesByUser returns a user's theses, newest first.
func (r *Repository) ListThesesByUser(userID string) ([]Thesis, error) {
	rows, err := r.db.Query(`SELECT `+thesisColumns+` FROM theses WHERE user_id = ? ORDER BY created_at DESC`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list theses: %w", err)
	}
	defer rows.Close()

	var theses []Thesis
	for rows.Next() {
		t, err := scanThesis(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan thesis: %w", err)
		}
		theses = append(theses, *t)
	}
	return theses, rows.Err()
}

// GetMetricsByThesis fetches the metrics record for a thesis.
func (r *Repository) GetMetricsByThesis(thesisID string) (*Metrics, error) {
	var m Metrics
	var comparison, recs string
	err := r.db.QueryRow(`
		SELECT id, thesis_id, citation, methodology, innovation, techniques, results, total,
			category, confidence, model_version, ml_score, comparison, recommendations, analyzed_at
		FROM metrics WHERE thesis_id = ?
	`, thesisID).Scan(&m.ID, &m.ThesisID, &m.Scores.Citation, &m.Scores.Methodology,
		&m.Scores.Innovation, &m.Scores.Techniques, &m.Scores.Results, &m.Scores.Total,
		&m.Prediction.Category, &m.Prediction.Confidence, &m.Prediction.ModelVersion,
		&m.Prediction.MLScore, &comparison, &recs, &m.AnalyzedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query metrics: %w", err)
	}

	if err := json.Unmarshal([]byte(comparison), &m.Comparison); err != nil {
		return nil, fmt.Errorf("failed to decode comparison: %w", err)
	}
	if err := json.Unmarshal([]byte(recs), &m.Recommendations); err != nil {
		return nil, fmt.Errorf("failed to decode recommendations: %w", err)
	}
	return &m, nil
}

// DeleteThesis removes a thesis; its metrics row cascades away. Ownership is
// the caller's responsibility.
func (r *Repository) DeleteThesis(id string) error {
	res, err := r.db.Exec(`DELETE FROM theses WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete thesis: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

// startOfMonth is midnight on the first day of the current calendar month.
func startOfMonth(now time.Time) time.Time {
	return time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
}

func emptyCategoryCounts() map[string]int {
	return map[string]int{
		analysis.CategoryExcellent: 0,
		analysis.CategoryGood:      0,
		analysis.CategoryRegular:   0,
		analysis.CategoryDeficient: 0,
	}
}

// UserStats computes the per-owner dashboard figures.
func (r *Repository) UserStats(userID string) (*UserStats, error) {
	stats := &UserStats{ByCategory: emptyCategoryCounts()}

	err := r.db.QueryRow(`
		SELECT COUNT(*), COALESCE(AVG(predicted_score), 0)
		FROM theses WHERE user_id = ?
	`, userID).Scan(&stats.Total, &stats.Average)
	if err != nil {
		return nil, fmt.Errorf("failed to query user totals: %w", err)
	}

	err = r.db.QueryRow(`
		SELECT COUNT(*) FROM theses WHERE user_id = ? AND created_at >= ?
	`, userID, startOfMonth(time.Now())).Scan(&stats.ThisMonth)
	if err != nil {
		return nil, fmt.Errorf("failed to query month count: %w", err)
	}

	rows, err := r.db.Query(`
		SELECT category, COUNT(*) FROM theses WHERE user_id = ? GROUP BY category
	`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query category counts: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var category string
		var n int
		if err := rows.Scan(&category, &n); err != nil {
			return nil, fmt.Errorf("failed to scan category count: %w", err)
		}
		stats.ByCategory[category] = n
	}
	return stats, rows.Err()
}

// AdminStats computes the global dashboard figures.
func (r *Repository) AdminStats() (*AdminStats, error) {
	stats := &AdminStats{ThesesByCategory: emptyCategoryCounts()}

	err := r.db.QueryRow(`SELECT COUNT(*) FROM users`).Scan(&stats.TotalUsers)
	if err != nil {
		return nil, fmt.Errorf("failed to count users: %w", err)
	}

	err = r.db.QueryRow(`
		SELECT COUNT(*), COALESCE(AVG(predicted_score), 0) FROM theses
	`).Scan(&stats.TotalTheses, &stats.AverageScore)
	if err != nil {
		return nil, fmt.Errorf("failed to query thesis totals: %w", err)
	}

	err = r.db.QueryRow(`
		SELECT COUNT(*) FROM theses WHERE created_at >= ?
	`, startOfMonth(time.Now())).Scan(&stats.ThesesThisMonth)
	if err != nil {
		return nil, fmt.Errorf("failed to query month count: %w", err)
	}

	stats.UsersByRole, err = r.CountUsersByRole()
	if err != nil {
		return nil, err
	}

	rows, err := r.db.Query(`SELECT category, COUNT(*) FROM theses GROUP BY category`)
	if err != nil {
		return nil, fmt.Errorf("failed to query category counts: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var category string
		var n int
		if err := rows.Scan(&category, &n); err != nil {
			return nil, fmt.Errorf("failed to scan category count: %w", err)
		}
		stats.ThesesByCategory[category] = n
	}
	return stats, rows.Err()
}

// RecentActivity returns the last n analyses as human-readable entries.
// Theses whose owner was deleted never appear here: the cascade removes them.
func (r *Repository) RecentActivity(n int) ([]Activity, error) {
	rows, err := r.db.Query(`
		SELECT u.name, t.title, t.created_at
		FROM theses t JOIN users u ON u.id = t.user_id
		ORDER BY t.created_at DESC LIMIT ?
	`, n)
	if err != nil {
		return nil, fmt.Errorf("failed to query recent activity: %w", err)
	}
	defer rows.Close()

	var activities []Activity
	for rows.Next() {
		var name, title string
		var createdAt time.Time
		if err := rows.Scan(&name, &title, &createdAt); err != nil {
			return nil, fmt.Errorf("failed to scan activity: %w", err)
		}
		activities = append(activities, Activity{
			Description: fmt.Sprintf("User %s analyzed the thesis %q.", name, title),
			CreatedAt:   createdAt,
		})
	}
	return activities, rows.Err()
}
