package handler

import (
	"fmt"
	"mime/multipart"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/Prasad22V/coursebundler-server/internal/domain"
	"github.com/Prasad22V/coursebundler-server/internal/dto"
	"github.com/Prasad22V/coursebundler-server/internal/middleware"
	"github.com/Prasad22V/coursebundler-server/internal/service"
	"github.com/Prasad22V/coursebundler-server/pkg/response"
)

// AuthHandler handles registration, login and session HTTP requests
type AuthHandler struct {
	auth      service.AuthService
	users     service.UserService
	cookieTTL time.Duration
}

// NewAuthHandler creates an AuthHandler
func NewAuthHandler(auth service.AuthService, users service.UserService, cookieTTL time.Duration) *AuthHandler {
	return &AuthHandler{auth: auth, users: users, cookieTTL: cookieTTL}
}

// The session cookie is read cross-site by the frontend, so SameSite=None
// and Secure are required together.
func setSessionCookie(c *gin.Context, token string, ttl time.Duration) {
	c.SetSameSite(http.SameSiteNoneMode)
	c.SetCookie(middleware.TokenCookie, token, int(ttl.Seconds()), "/", "", true, true)
}

func clearSessionCookie(c *gin.Context) {
	c.SetSameSite(http.SameSiteNoneMode)
	c.SetCookie(middleware.TokenCookie, "", -1, "/", "", true, true)
}

func openUpload(c *gin.Context, field string) (multipart.File, error) {
	fileHeader, err := c.FormFile(field)
	if err != nil {
		return nil, domain.E(domain.KindValidation, "File is required")
	}
	file, err := fileHeader.Open()
	if err != nil {
		return nil, domain.Wrap(domain.KindInternal, "Failed to read uploaded file", err)
	}
	return file, nil
}

// Register handles POST /api/v1/register
func (h *AuthHandler) Register(c *gin.Context) {
	var req dto.RegisterRequest
	if err := c.ShouldBind(&req); err != nil {
		response.FromError(c, domain.E(domain.KindValidation, "Please enter all fields"))
		return
	}

	avatar, err := openUpload(c, "file")
	if err != nil {
		response.FromError(c, err)
		return
	}
	defer avatar.Close()

	user, token, err := h.auth.Register(c.Request.Context(), req.Name, req.Email, req.Password, avatar)
	if err != nil {
		response.FromError(c, err)
		return
	}

	setSessionCookie(c, token, h.cookieTTL)
	response.Created(c, gin.H{"message": "Registered Successfully", "user": user})
}

// Login handles POST /api/v1/login
func (h *AuthHandler) Login(c *gin.Context) {
	var req dto.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.FromError(c, domain.E(domain.KindValidation, "Please enter all fields"))
		return
	}

	user, token, err := h.auth.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		response.FromError(c, err)
		return
	}

	setSessionCookie(c, token, h.cookieTTL)
	response.Data(c, gin.H{"message": fmt.Sprintf("Welcome back, %s", user.Name), "user": user})
}

// Logout handles GET /api/v1/logout
func (h *AuthHandler) Logout(c *gin.Context) {
	clearSessionCookie(c)
	response.OK(c, "Logged Out Successfully")
}

// Me handles GET /api/v1/me
func (h *AuthHandler) Me(c *gin.Context) {
	user, _ := middleware.GetUser(c)
	response.Data(c, gin.H{"user": user})
}

// DeleteMe handles DELETE /api/v1/me
func (h *AuthHandler) DeleteMe(c *gin.Context) {
	user, _ := middleware.GetUser(c)
	if err := h.users.DeleteMe(c.Request.Context(), user.ID); err != nil {
		response.FromError(c, err)
		return
	}
	clearSessionCookie(c)
	response.OK(c, "User Deleted Successfully")
}
