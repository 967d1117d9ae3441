package auth

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"todosome/internal/domain/models"
	"todosome/internal/http/middleware"
	"todosome/internal/http/response"
	authsvc "todosome/internal/services/auth"
)

// Auth is implemented by services/auth
type Auth interface {
	RegisterNewUser(ctx context.Context, email string, password string) (models.User, error)
	VerifyEmail(ctx context.Context, token string) (models.User, error)
	Login(ctx context.Context, email string, password string) (authsvc.LoginResult, error)
	Profile(ctx context.Context, userID string) (models.Profile, error)
}

// Handler serves signup, verification, login and profile
type Handler struct {
	auth Auth
}

func NewHandler(auth Auth) *Handler {
	return &Handler{auth: auth}
}

// Register mounts routes under /auth, profile is guarded
func (h *Handler) Register(rg *gin.RouterGroup, guard gin.HandlerFunc) {
	g := rg.Group("/auth")
	g.POST("/signup", h.Signup)
	g.POST("/verify/:token", h.Verify)
	g.POST("/login", h.Login)
	g.GET("/profile", guard, h.Profile)
}

type credentialsRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=6"`
}

type loginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// UnmarshalJSON trims email before binding validates it
func (r *credentialsRequest) UnmarshalJSON(data []byte) error {
	type raw credentialsRequest
	if err := json.Unmarshal(data, (*raw)(r)); err != nil {
		return err
	}
	r.Email = strings.TrimSpace(r.Email)
	return nil
}

func (r *loginRequest) UnmarshalJSON(data []byte) error {
	type raw loginRequest
	if err := json.Unmarshal(data, (*raw)(r)); err != nil {
		return err
	}
	r.Email = strings.TrimSpace(r.Email)
	return nil
}

type signupResponse struct {
	Message string `json:"message"`
	Email   string `json:"email"`
}

type loginResponse struct {
	ID    string `json:"id"`
	Email string `json:"email"`
	Token string `json:"token"`
}

// Signup creates unverified user and sends verification mail
func (h *Handler) Signup(c *gin.Context) {
	var req credentialsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Validation(c, err)
		return
	}

	user, err := h.auth.RegisterNewUser(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		response.FromError(c, err)
		return
	}
	c.JSON(http.StatusCreated, signupResponse{
		Message: "Registration successful! Please check your email to verify your account.",
		Email:   user.Email,
	})
}

// Verify redeems verification token from path
func (h *Handler) Verify(c *gin.Context) {
	if _, err := h.auth.VerifyEmail(c.Request.Context(), c.Param("token")); err != nil {
		response.FromError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Email verified successfully"})
}

// Login returns session token for verified user
func (h *Handler) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Validation(c, err)
		return
	}

	res, err := h.auth.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		response.FromError(c, err)
		return
	}
	c.JSON(http.StatusOK, loginResponse{
		ID:    res.User.ID,
		Email: res.User.Email,
		Token: res.Token,
	})
}

// Profile returns public data of authenticated user
func (h *Handler) Profile(c *gin.Context) {
	userID, ok := middleware.UserID(c)
	if !ok {
		response.Error(c, http.StatusUnauthorized, response.KindUnauthorized, "Not authorized")
		return
	}
	profile, err := h.auth.Profile(c.Request.Context(), userID)
	if err != nil {
		response.FromError(c, err)
		return
	}
	c.JSON(http.StatusOK, profile)
}
