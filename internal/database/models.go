package database

import (
	"time"

	"github.com/google/uuid"

	"github.com/acadlabs/bibliometer/internal/analysis"
)

// User roles.
const (
	RoleUser       = "user"
	RoleAdmin      = "admin"
	RoleTeacher    = "teacher"
	RoleResearcher = "researcher"
)

// ValidRole reports whether role is one of the known user roles.
func ValidRole(role string) bool {
	switch role {
	case RoleUser, RoleAdmin, RoleTeacher, RoleResearcher:
		return true
	}
	return false
}

// User represents a registered account.
type User struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	Role         string    `json:"role"`
	University   string    `json:"university"`
	IsActive     bool      `json:"is_active"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// NewUser creates a user with a generated ID and the default role.
func NewUser(name, email, passwordHash string) *User {
	now := time.Now()
	return &User{
		ID:           uuid.New().String(),
		Name:         name,
		Email:        email,
		PasswordHash: passwordHash,
		Role:         RoleUser,
		IsActive:     true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}

// Thesis is one analyzed document, owned by the uploading user.
type Thesis struct {
	ID             string             `json:"id"`
	UserID         string             `json:"user_id"`
	Title          string             `json:"title"`
	Author         string             `json:"author"`
	Year           int                `json:"year"`
	PredictedScore float64            `json:"predicted_score"`
	Category       string             `json:"category"`
	Indicators     map[string]float64 `json:"indicators"`
	FilePath       string             `json:"-"`
	FileName       string             `json:"file_name"`
	CreatedAt      time.Time          `json:"created_at"`
}

// BlockScores holds the five per-block scores plus the total.
type BlockScores struct {
	Citation    float64 `json:"citation"`
	Methodology float64 `json:"methodology"`
	Innovation  float64 `json:"innovation"`
	Techniques  float64 `json:"techniques"`
	Results     float64 `json:"results"`
	Total       float64 `json:"total"`
}

// PredictionMeta describes how the overall score was derived.
type PredictionMeta struct {
	Category     string  `json:"category"`
	Confidence   float64 `json:"confidence"`
	ModelVersion string  `json:"model_version"`
	MLScore      float64 `json:"ml_score"`
}

// Comparison is a placeholder for externally populated comparative figures.
type Comparison struct {
	UniversityAverage float64 `json:"university_average"`
	NationalAverage   float64 `json:"national_average"`
	UniversityRank    int     `json:"university_rank"`
}

// Metrics is the one-to-one analysis detail record for a thesis.
type Metrics struct {
	ID              string                    `json:"id"`
	ThesisID        string                    `json:"thesis_id"`
	Scores          BlockScores               `json:"scores"`
	Prediction      PredictionMeta            `json:"prediction"`
	Comparison      Comparison                `json:"comparison"`
	Recommendations []analysis.Recommendation `json:"recommendations"`
	AnalyzedAt      time.Time                 `json:"analyzed_at"`
}

// NewMetrics creates a metrics record with a generated ID for the thesis.
func NewMetrics(thesisID string) *Metrics {
	return &Metrics{
		ID:         uuid.New().String(),
		ThesisID:   thesisID,
		AnalyzedAt: time.Now(),
	}
}

// UserStats are per-owner dashboard figures.
type UserStats struct {
	Total      int            `json:"total"`
	Average    float64        `json:"average"`
	ByCategory map[string]int `json:"by_category"`
	ThisMonth  int            `json:"this_month"`
}

// AdminStats are the global dashboard figures for the admin panel.
type AdminStats struct {
	TotalUsers       int            `json:"total_users"`
	TotalTheses      int            `json:"total_theses"`
	ThesesThisMonth  int            `json:"theses_this_month"`
	AverageScore     float64        `json:"average_score"`
	UsersByRole      map[string]int `json:"users_by_role"`
	ThesesByCategory map[string]int `json:"theses_by_category"`
}

// Activity is one entry in the admin recent-activity feed.
type Activity struct {
	Description string    `json:"description"`
	CreatedAt   time.Time `json:"created_at"`
}
