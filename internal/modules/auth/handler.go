package auth

import (
	"errors"

	"github.com/gin-gonic/gin"

	"filemanager/internal/domain"
	"filemanager/internal/middleware"
	"filemanager/internal/pkg/response"
)

// Handler exposes registration, login and the current-user profile.
type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RegisterPublicRoutes(api *gin.RouterGroup) {
	g := api.Group("/auth")
	{
		g.POST("/register", h.Register)
		g.POST("/login", h.Login)
	}
}

func (h *Handler) RegisterProtectedRoutes(api *gin.RouterGroup) {
	g := api.Group("/auth")
	{
		g.GET("/me", h.Me)
	}
}

// Register creates a new account with the default storage quota.
// @Summary		Register an account
// @Tags		auth
// @Param	request	body	RegisterRequest	true	"username, password, optional nickname and email"
// @Success		200	{object}	map[string]interface{}	"envelope with the created user; code 50001 when the username is taken"
// @Router		/auth/register [POST]
func (h *Handler) Register(c *gin.Context) {
	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, "invalid request body")
		return
	}

	user, err := h.service.Register(c.Request.Context(), req)
	if err != nil {
		if errors.Is(err, ErrUsernameTaken) {
			response.ErrorCode(c, response.CodeBadCredentials, "username already registered")
			return
		}
		response.Error(c, "registration failed")
		return
	}

	response.Success(c, toUserResponse(user))
}

// Login verifies the credentials and issues a bearer token.
// @Summary		Log in
// @Tags		auth
// @Param	request	body	LoginRequest	true	"username and password"
// @Success		200	{object}	map[string]interface{}	"envelope with the user and token; code 50001 on bad credentials, 50003 when disabled"
// @Router		/auth/login [POST]
func (h *Handler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, "invalid request body")
		return
	}

	user, token, err := h.service.Login(c.Request.Context(), req)
	if err != nil {
		switch {
		case errors.Is(err, ErrInvalidCredentials):
			response.ErrorCode(c, response.CodeBadCredentials, "invalid username or password")
		case errors.Is(err, ErrUserDisabled):
			response.ErrorCode(c, response.CodeUserDisabled, "account is disabled")
		default:
			response.Error(c, "login failed")
		}
		return
	}

	response.Success(c, LoginResponse{User: toUserResponse(user), Token: token})
}

// Me returns the authenticated user's profile and quota usage.
// @Summary		Current user
// @Tags		auth
// @Security	BearerAuth
// @Success		200	{object}	map[string]interface{}	"envelope with the profile"
// @Router		/auth/me [GET]
func (h *Handler) Me(c *gin.Context) {
	user, err := h.service.GetCurrentUser(c.Request.Context(), middleware.UserID(c))
	if err != nil {
		response.ErrorCode(c, response.CodeUserNotFound, "user not found")
		return
	}
	response.Success(c, toUserResponse(user))
}

func toUserResponse(u *domain.User) UserResponse {
	return UserResponse{
		ID:           u.ID,
		Username:     u.Username,
		Nickname:     u.Nickname,
		Email:        u.Email,
		StorageLimit: u.StorageLimit,
		StorageUsed:  u.StorageUsed,
	}
}
