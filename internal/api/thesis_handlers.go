package api

import (
	"fmt"
	"log/slog"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/acadlabs/bibliometer/internal/analysis"
	"github.com/acadlabs/bibliometer/internal/auth"
	"github.com/acadlabs/bibliometer/internal/database"
	"github.com/acadlabs/bibliometer/internal/errors"
	"github.com/acadlabs/bibliometer/internal/extract"
)

const modelVersion = "1.2"

// thesisComposite is the analyze/get response payload: the thesis plus its
// metrics record.
type thesisComposite struct {
	*database.Thesis
	Metrics *database.Metrics `json:"metrics"`
}

// AnalyzeThesis godoc
// @Summary Upload and analyze a thesis PDF
// @Accept multipart/form-data
// @Produce json
// @Param file formData file true "thesis PDF, max 50MB"
// @Param title formData string false "declared title"
// @Param author formData string false "declared author"
// @Param year formData int false "declared publication year"
// @Success 201 {object} thesisComposite
// @Security BearerAuth
// @Router /api/theses/analyze [post]
func (h *Handler) AnalyzeThesis(c *gin.Context) {
	principal, _ := auth.FromContext(c)

	file, err := c.FormFile("file")
	if err != nil {
		errors.Abort(c, errors.NewValidationError("No PDF file was uploaded.", err))
		return
	}
	if file.Size > h.cfg.MaxUploadBytes {
		errors.Abort(c, errors.NewValidationError("The file exceeds the 50MB size limit.", nil))
		return
	}
	if !strings.EqualFold(filepath.Ext(file.Filename), ".pdf") {
		errors.Abort(c, errors.NewValidationError("Invalid file format. Only PDFs are accepted.", nil))
		return
	}

	path, err := h.saveUpload(c, file)
	if err != nil {
		errors.Abort(c, errors.NewInternalError("failed to store upload", err))
		return
	}

	text, err := extract.Text(path)
	if err != nil || len(text) < extract.MinTextLength {
		os.Remove(path)
		errors.Abort(c, errors.NewValidationError("Empty or unreadable PDF.", err))
		return
	}

	meta, err := h.resolveMetadata(c, text)
	if err != nil {
		os.Remove(path)
		errors.Abort(c, err)
		return
	}

	result := h.analyzer.Analyze(text, meta)

	// advisory only; any failure degrades to the local score
	var mlScore float64
	if h.predictor.Enabled() {
		score, ok := h.predictor.Predict(c.Request.Context(), result.Indicators)
		h.metrics.RecordMLCall(ok)
		if ok {
			mlScore = score
		}
	}

	thesis := &database.Thesis{
		ID:             uuid.New().String(),
		UserID:         principal.UserID,
		Title:          meta.Title,
		Author:         meta.Author,
		Year:           meta.Year,
		PredictedScore: float64(result.Total),
		Category:       result.Category,
		Indicators:     result.Indicators,
		FilePath:       path,
		FileName:       filepath.Base(path),
		CreatedAt:      time.Now(),
	}

	metrics := database.NewMetrics(thesis.ID)
	metrics.Scores = database.BlockScores{
		Citation:    result.Breakdown.Citation,
		Methodology: result.Breakdown.Methodology,
		Innovation:  result.Breakdown.Innovation,
		Techniques:  result.Breakdown.Techniques,
		Results:     result.Breakdown.Results,
		Total:       float64(result.Total),
	}
	metrics.Prediction = database.PredictionMeta{
		Category:     result.Category,
		Confidence:   0.9,
		ModelVersion: modelVersion,
		MLScore:      mlScore,
	}
	metrics.Recommendations = result.Recommendations

	if err := h.repo.CreateThesisWithMetrics(thesis, metrics); err != nil {
		os.Remove(path)
		errors.Abort(c, errors.NewInternalError("failed to persist analysis", err))
		return
	}

	h.metrics.IncrementAnalysis()
	h.invalidateStats(principal.UserID)

	slog.Info("Thesis analyzed",
		"thesis_id", thesis.ID,
		"user_id", principal.UserID,
		"total", result.Total,
		"category", result.Category,
	)

	respondMessage(c, http.StatusCreated, "Thesis analyzed successfully.",
		thesisComposite{Thesis: thesis, Metrics: metrics})
}

// resolveMetadata takes title/author/year from the form fields, falling back
// to heuristics over the extracted text for anything missing.
func (h *Handler) resolveMetadata(c *gin.Context, text string) (analysis.ThesisMeta, error) {
	title := strings.TrimSpace(c.PostForm("title"))
	author := strings.TrimSpace(c.PostForm("author"))
	yearStr := strings.TrimSpace(c.PostForm("year"))

	if title == "" || author == "" || yearStr == "" {
		guess := extract.GuessMetadata(text, time.Now().Year())
		if title == "" {
			title = guess.Title
		}
		if author == "" {
			author = guess.Author
		}
		if yearStr == "" {
			yearStr = strconv.Itoa(guess.Year)
		}
	}

	year, err := strconv.Atoi(yearStr)
	if title == "" || author == "" || err != nil || year == 0 {
		return analysis.ThesisMeta{}, errors.NewValidationError(
			"Essential metadata (title, author or year) is missing and could not be inferred from the PDF.", err)
	}

	return analysis.ThesisMeta{Title: title, Author: author, Year: year}, nil
}

// saveUpload stores the PDF under the upload dir as <unix-ts>-<name>.
func (h *Handler) saveUpload(c *gin.Context, file *multipart.FileHeader) (string, error) {
	if err := os.MkdirAll(h.cfg.UploadDir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create upload directory: %w", err)
	}

	name := strings.ReplaceAll(filepath.Base(file.Filename), " ", "_")
	path := filepath.Join(h.cfg.UploadDir, fmt.Sprintf("%d-%s", time.Now().UnixMilli(), name))

	if err := c.SaveUploadedFile(file, path); err != nil {
		return "", fmt.Errorf("failed to save upload: %w", err)
	}
	return path, nil
}

func (h *Handler) invalidateStats(userID string) {
	h.cache.InvalidatePrefix("/api/theses/stats:" + userID)
	h.cache.InvalidatePrefix("/api/admin/stats:")
}

// ListTheses godoc
// @Summary List the caller's theses, newest first
// @Produce json
// @Success 200 {array} database.Thesis
// @Security BearerAuth
// @Router /api/theses [get]
func (h *Handler) ListTheses(c *gin.Context) {
	principal, _ := auth.FromContext(c)

	theses, err := h.repo.ListThesesByUser(principal.UserID)
	if err != nil {
		errors.Abort(c, errors.NewInternalError("failed to list theses", err))
		return
	}
	respondOK(c, theses)
}

// GetThesis godoc
// @Summary Get one thesis with its metrics
// @Produce json
// @Param id path string true "thesis ID"
// @Success 200 {object} thesisComposite
// @Security BearerAuth
// @Router /api/theses/{id} [get]
func (h *Handler) GetThesis(c *gin.Context) {
	thesis, ok := h.ownedThesis(c)
	if !ok {
		return
	}

	metrics, err := h.repo.GetMetricsByThesis(thesis.ID)
	if err != nil && err != database.ErrNotFound {
		errors.Abort(c, errors.NewInternalError("failed to load metrics", err))
		return
	}
	respondOK(c, thesisComposite{Thesis: thesis, Metrics: metrics})
}

// UserStats godoc
// @Summary Dashboard statistics for the caller
// @Produce json
// @Success 200 {object} database.UserStats
// @Security BearerAuth
// @Router /api/theses/stats [get]
func (h *Handler) UserStats(c *gin.Context) {
	principal, _ := auth.FromContext(c)

	stats, err := h.repo.UserStats(principal.UserID)
	if err != nil {
		errors.Abort(c, errors.NewInternalError("failed to compute statistics", err))
		return
	}
	respondOK(c, stats)
}

// DeleteThesis godoc
// @Summary Delete a thesis and its metrics
// @Produce json
// @Param id path string true "thesis ID"
// @Success 200 {object} map[string]any
// @Security BearerAuth
// @Router /api/theses/{id} [delete]
func (h *Handler) DeleteThesis(c *gin.Context) {
	principal, _ := auth.FromContext(c)

	thesis, ok := h.ownedThesis(c)
	if !ok {
		return
	}

	if err := h.repo.DeleteThesis(thesis.ID); err != nil {
		errors.Abort(c, errors.NewInternalError("failed to delete thesis", err))
		return
	}
	if thesis.FilePath != "" {
		if err := os.Remove(thesis.FilePath); err != nil && !os.IsNotExist(err) {
			slog.Warn("Failed to remove thesis file", "path", thesis.FilePath, "error", err)
		}
	}

	h.invalidateStats(principal.UserID)
	respondMessage(c, http.StatusOK, "Thesis deleted successfully.", nil)
}

// DownloadThesis godoc
// @Summary Download the original PDF of a thesis
// @Produce octet-stream
// @Param id path string true "thesis ID"
// @Success 200 {file} binary
// @Security BearerAuth
// @Router /api/theses/{id}/download [get]
func (h *Handler) DownloadThesis(c *gin.Context) {
	thesis, ok := h.ownedThesis(c)
	if !ok {
		return
	}
	if thesis.FilePath == "" {
		errors.Abort(c, errors.NewNotFoundError("File not found."))
		return
	}
	c.FileAttachment(thesis.FilePath, thesis.FileName)
}

// ownedThesis loads the :id thesis and enforces ownership. Another user's
// thesis reports not-found so its existence never leaks.
func (h *Handler) ownedThesis(c *gin.Context) (*database.Thesis, bool) {
	principal, _ := auth.FromContext(c)

	thesis, err := h.repo.GetThesis(c.Param("id"))
	if err == database.ErrNotFound {
		errors.Abort(c, errors.NewNotFoundError("Thesis not found."))
		return nil, false
	}
	if err != nil {
		errors.Abort(c, errors.NewInternalError("failed to load thesis", err))
		return nil, false
	}
	if thesis.UserID != principal.UserID {
		errors.Abort(c, errors.NewNotFoundError("Thesis not found."))
		return nil, false
	}
	return thesis, true
}
