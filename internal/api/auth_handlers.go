package api

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/acadlabs/bibliometer/internal/auth"
	"github.com/acadlabs/bibliometer/internal/database"
	"github.com/acadlabs/bibliometer/internal/errors"
)

type registerRequest struct {
	Name       string `json:"name" binding:"required"`
	Email      string `json:"email" binding:"required,email"`
	Password   string `json:"password" binding:"required,min=6"`
	University string `json:"university"`
}

type loginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type authResponse struct {
	Token string         `json:"token"`
	User  *database.User `json:"user"`
}

// Register godoc
// @Summary Register a new user account
// @Accept json
// @Produce json
// @Param request body registerRequest true "registration data"
// @Success 201 {object} authResponse
// @Router /api/auth/register [post]
func (h *Handler) Register(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		errors.Abort(c, errors.NewValidationError("Name, email and password are required.", err))
		return
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		errors.Abort(c, errors.NewInternalError("failed to hash password", err))
		return
	}

	user := database.NewUser(req.Name, strings.ToLower(req.Email), hash)
	user.University = req.University

	if err := h.repo.CreateUser(user); err != nil {
		if err == database.ErrDuplicateEmail {
			errors.Abort(c, errors.NewValidationError("This email is already registered.", err))
			return
		}
		errors.Abort(c, errors.NewInternalError("failed to create user", err))
		return
	}

	h.sendToken(c, http.StatusCreated, user)
}

// Login godoc
// @Summary Log in with email and password
// @Accept json
// @Produce json
// @Param request body loginRequest true "credentials"
// @Success 200 {object} authResponse
// @Router /api/auth/login [post]
func (h *Handler) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		errors.Abort(c, errors.NewValidationError("Please provide email and password.", err))
		return
	}

	user, err := h.repo.GetUserByEmail(strings.ToLower(req.Email))
	if err != nil || !auth.CheckPassword(user.PasswordHash, req.Password) {
		errors.Abort(c, errors.NewUnauthorizedError("Incorrect email or password."))
		return
	}
	if !user.IsActive {
		errors.Abort(c, errors.NewForbiddenError("This account has been deactivated."))
		return
	}

	h.sendToken(c, http.StatusOK, user)
}

func (h *Handler) sendToken(c *gin.Context, status int, user *database.User) {
	token, err := h.tokens.Sign(user.ID, user.Role)
	if err != nil {
		errors.Abort(c, errors.NewInternalError("failed to sign token", err))
		return
	}
	c.JSON(status, gin.H{
		"success": true,
		"data":    authResponse{Token: token, User: user},
	})
}
