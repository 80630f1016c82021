package api

import (
	"bytes"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/acadlabs/bibliometer/internal/analysis"
	"github.com/acadlabs/bibliometer/internal/auth"
	"github.com/acadlabs/bibliometer/internal/cache"
	"github.com/acadlabs/bibliometer/internal/config"
	"github.com/acadlabs/bibliometer/internal/database"
	"github.com/acadlabs/bibliometer/internal/monitoring"
	"github.com/acadlabs/bibliometer/internal/predictor"
	"github.com/acadlabs/bibliometer/internal/ratelimit"
)

type testServer struct {
	router *gin.Engine
	repo   *database.Repository
	tokens *auth.TokenService
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)

	cfg := &config.Config{
		Port:             "0",
		DataDir:          t.TempDir(),
		UploadDir:        t.TempDir(),
		JWTSecret:        "test-secret",
		JWTTTL:           time.Hour,
		ModelColumns:     analysis.DefaultModelColumns,
		AnalyzePerMinute: 1000,
		MaxUploadBytes:   50 * 1024 * 1024,
	}

	db, err := database.NewDB(cfg.DataDir)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	repo := database.NewRepository(db)
	tokens := auth.NewTokenService(cfg.JWTSecret, cfg.JWTTTL)
	metrics := monitoring.NewMetrics()
	limiter := ratelimit.NewLimiter(&ratelimit.RedisClient{}, ratelimit.Config{
		AnalyzePerMinute: cfg.AnalyzePerMinute,
	})

	h := NewHandler(cfg, repo, analysis.NewAnalyzer(cfg.ModelColumns),
		predictor.NewClient("", cfg.ModelColumns), tokens, metrics,
		cache.NewCache(time.Minute), limiter)

	return &testServer{router: h.Router(), repo: repo, tokens: tokens}
}

func (s *testServer) do(t *testing.T, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}

	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}

// register creates an account through the API and returns its token and user.
func (s *testServer) register(t *testing.T, email string) (string, *database.User) {
	t.Helper()

	w := s.do(t, http.MethodPost, "/api/auth/register", "", gin.H{
		"name":     "Test User",
		"email":    email,
		"password": "secret123",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var resp struct {
		Data struct {
			Token string         `json:"token"`
			User  *database.User `json:"user"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.NotEmpty(t, resp.Data.Token)
	return resp.Data.Token, resp.Data.User
}

func (s *testServer) makeAdmin(t *testing.T, userID string) string {
	t.Helper()
	role := database.RoleAdmin
	_, err := s.repo.UpdateUser(userID, database.UserUpdate{Role: &role})
	require.NoError(t, err)

	token, err := s.tokens.Sign(userID, role)
	require.NoError(t, err)
	return token
}

func (s *testServer) seedThesis(t *testing.T, userID, id string) {
	t.Helper()
	th := &database.Thesis{
		ID:             id,
		UserID:         userID,
		Title:          "Seeded Thesis",
		Author:         "Author",
		Year:           2023,
		PredictedScore: 60,
		Category:       analysis.CategoryGood,
		Indicators:     map[string]float64{"Surveys": 5},
		CreatedAt:      time.Now(),
	}
	m := database.NewMetrics(id)
	m.Scores = database.BlockScores{Total: 60}
	m.Prediction = database.PredictionMeta{Category: analysis.CategoryGood, ModelVersion: "1.2"}
	require.NoError(t, s.repo.CreateThesisWithMetrics(th, m))
}

func TestHealth(t *testing.T) {
	s := newTestServer(t)

	w := s.do(t, http.MethodGet, "/health", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"status":"ok"`)
}

func TestRegister(t *testing.T) {
	s := newTestServer(t)

	t.Run("success", func(t *testing.T) {
		token, user := s.register(t, "New@Example.edu")
		assert.NotEmpty(t, token)
		assert.Equal(t, "new@example.edu", user.Email)
		assert.Equal(t, database.RoleUser, user.Role)
	})

	t.Run("duplicate email", func(t *testing.T) {
		w := s.do(t, http.MethodPost, "/api/auth/register", "", gin.H{
			"name":     "Other",
			"email":    "new@example.edu",
			"password": "secret123",
		})
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Contains(t, w.Body.String(), "already registered")
	})

	t.Run("validation failures", func(t *testing.T) {
		tests := []struct {
			name string
			body gin.H
		}{
			{name: "missing name", body: gin.H{"email": "a@b.edu", "password": "secret123"}},
			{name: "bad email", body: gin.H{"name": "X", "email": "not-an-email", "password": "secret123"}},
			{name: "short password", body: gin.H{"name": "X", "email": "a@b.edu", "password": "123"}},
		}
		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				w := s.do(t, http.MethodPost, "/api/auth/register", "", tt.body)
				assert.Equal(t, http.StatusBadRequest, w.Code)
			})
		}
	})
}

func TestLogin(t *testing.T) {
	s := newTestServer(t)
	_, user := s.register(t, "login@example.edu")

	t.Run("success", func(t *testing.T) {
		w := s.do(t, http.MethodPost, "/api/auth/login", "", gin.H{
			"email":    "login@example.edu",
			"password": "secret123",
		})
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), `"token"`)
	})

	t.Run("wrong password", func(t *testing.T) {
		w := s.do(t, http.MethodPost, "/api/auth/login", "", gin.H{
			"email":    "login@example.edu",
			"password": "wrong-password",
		})
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("unknown email", func(t *testing.T) {
		w := s.do(t, http.MethodPost, "/api/auth/login", "", gin.H{
			"email":    "ghost@example.edu",
			"password": "secret123",
		})
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("deactivated account", func(t *testing.T) {
		inactive := false
		_, err := s.repo.UpdateUser(user.ID, database.UserUpdate{IsActive: &inactive})
		require.NoError(t, err)

		w := s.do(t, http.MethodPost, "/api/auth/login", "", gin.H{
			"email":    "login@example.edu",
			"password": "secret123",
		})
		assert.Equal(t, http.StatusForbidden, w.Code)
	})
}

func TestAuthentication(t *testing.T) {
	s := newTestServer(t)

	t.Run("missing token", func(t *testing.T) {
		w := s.do(t, http.MethodGet, "/api/theses", "", nil)
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("garbage token", func(t *testing.T) {
		w := s.do(t, http.MethodGet, "/api/theses", "not.a.token", nil)
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("token of deleted user", func(t *testing.T) {
		token, user := s.register(t, "gone@example.edu")
		require.NoError(t, s.repo.DeleteUser(user.ID))

		w := s.do(t, http.MethodGet, "/api/theses", token, nil)
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})
}

func TestAdminGate(t *testing.T) {
	s := newTestServer(t)
	userToken, _ := s.register(t, "user@example.edu")
	_, adminUser := s.register(t, "admin@example.edu")
	adminToken := s.makeAdmin(t, adminUser.ID)

	t.Run("normal user is forbidden", func(t *testing.T) {
		w := s.do(t, http.MethodGet, "/api/admin/stats", userToken, nil)
		assert.Equal(t, http.StatusForbidden, w.Code)
	})

	t.Run("admin may read stats", func(t *testing.T) {
		w := s.do(t, http.MethodGet, "/api/admin/stats", adminToken, nil)
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), "total_users")
	})

	t.Run("admin may list users", func(t *testing.T) {
		w := s.do(t, http.MethodGet, "/api/admin/users", adminToken, nil)
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), "user@example.edu")
		assert.NotContains(t, w.Body.String(), "password_hash")
	})

	t.Run("admin activity feed", func(t *testing.T) {
		w := s.do(t, http.MethodGet, "/api/admin/activity", adminToken, nil)
		assert.Equal(t, http.StatusOK, w.Code)
	})
}

func TestAdminUserManagement(t *testing.T) {
	s := newTestServer(t)
	_, target := s.register(t, "target@example.edu")
	_, adminUser := s.register(t, "admin@example.edu")
	adminToken := s.makeAdmin(t, adminUser.ID)

	t.Run("role update", func(t *testing.T) {
		w := s.do(t, http.MethodPatch, "/api/admin/users/"+target.ID, adminToken, gin.H{
			"role": database.RoleTeacher,
		})
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())

		updated, err := s.repo.GetUserByID(target.ID)
		require.NoError(t, err)
		assert.Equal(t, database.RoleTeacher, updated.Role)
	})

	t.Run("unknown role rejected", func(t *testing.T) {
		w := s.do(t, http.MethodPatch, "/api/admin/users/"+target.ID, adminToken, gin.H{
			"role": "emperor",
		})
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("update of missing user", func(t *testing.T) {
		w := s.do(t, http.MethodPatch, "/api/admin/users/missing", adminToken, gin.H{
			"name": "New Name",
		})
		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("delete user with theses", func(t *testing.T) {
		s.seedThesis(t, target.ID, "target-thesis")

		w := s.do(t, http.MethodDelete, "/api/admin/users/"+target.ID, adminToken, nil)
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())

		_, err := s.repo.GetUserByID(target.ID)
		assert.ErrorIs(t, err, database.ErrNotFound)
		_, err = s.repo.GetThesis("target-thesis")
		assert.ErrorIs(t, err, database.ErrNotFound)
	})
}

func TestThesisEndpoints(t *testing.T) {
	s := newTestServer(t)
	ownerToken, owner := s.register(t, "owner@example.edu")
	otherToken, _ := s.register(t, "other@example.edu")
	s.seedThesis(t, owner.ID, "thesis-1")

	t.Run("owner lists own theses", func(t *testing.T) {
		w := s.do(t, http.MethodGet, "/api/theses", ownerToken, nil)
		require.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), "Seeded Thesis")
	})

	t.Run("other user sees an empty list", func(t *testing.T) {
		w := s.do(t, http.MethodGet, "/api/theses", otherToken, nil)
		require.Equal(t, http.StatusOK, w.Code)
		assert.NotContains(t, w.Body.String(), "Seeded Thesis")
	})

	t.Run("owner reads thesis with metrics", func(t *testing.T) {
		w := s.do(t, http.MethodGet, "/api/theses/thesis-1", ownerToken, nil)
		require.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), `"metrics"`)
		assert.Contains(t, w.Body.String(), `"model_version":"1.2"`)
	})

	t.Run("foreign thesis reads as not found", func(t *testing.T) {
		w := s.do(t, http.MethodGet, "/api/theses/thesis-1", otherToken, nil)
		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("foreign thesis cannot be deleted", func(t *testing.T) {
		w := s.do(t, http.MethodDelete, "/api/theses/thesis-1", otherToken, nil)
		assert.Equal(t, http.StatusNotFound, w.Code)

		_, err := s.repo.GetThesis("thesis-1")
		assert.NoError(t, err)
	})

	t.Run("user stats", func(t *testing.T) {
		w := s.do(t, http.MethodGet, "/api/theses/stats", ownerToken, nil)
		require.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), `"total":1`)
	})

	t.Run("owner deletes thesis", func(t *testing.T) {
		w := s.do(t, http.MethodDelete, "/api/theses/thesis-1", ownerToken, nil)
		require.Equal(t, http.StatusOK, w.Code)

		_, err := s.repo.GetThesis("thesis-1")
		assert.ErrorIs(t, err, database.ErrNotFound)
	})
}

func TestAnalyzeValidation(t *testing.T) {
	s := newTestServer(t)
	token, _ := s.register(t, "uploader@example.edu")

	multipartRequest := func(t *testing.T, filename string, content []byte) *httptest.ResponseRecorder {
		t.Helper()
		var buf bytes.Buffer
		mw := multipart.NewWriter(&buf)
		if filename != "" {
			fw, err := mw.CreateFormFile("file", filename)
			require.NoError(t, err)
			_, err = fw.Write(content)
			require.NoError(t, err)
		}
		require.NoError(t, mw.Close())

		req := httptest.NewRequest(http.MethodPost, "/api/theses/analyze", &buf)
		req.Header.Set("Content-Type", mw.FormDataContentType())
		req.Header.Set("Authorization", "Bearer "+token)

		w := httptest.NewRecorder()
		s.router.ServeHTTP(w, req)
		return w
	}

	t.Run("missing file", func(t *testing.T) {
		w := multipartRequest(t, "", nil)
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Contains(t, w.Body.String(), "No PDF file")
	})

	t.Run("wrong extension", func(t *testing.T) {
		w := multipartRequest(t, "notes.txt", []byte("plain text"))
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Contains(t, w.Body.String(), "Only PDFs")
	})

	t.Run("unreadable pdf", func(t *testing.T) {
		w := multipartRequest(t, "broken.pdf", []byte("not really a pdf"))
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Contains(t, w.Body.String(), "unreadable")
	})
}
