package http

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/mrlokans/backend-template/internal/audit"
	"github.com/mrlokans/backend-template/internal/auth"
	"github.com/mrlokans/backend-template/internal/entities"
	"github.com/mrlokans/backend-template/internal/httperr"
)

// UserController handles the account endpoints. Failures are attached to
// the gin context and formatted by the centralized error middleware.
type UserController struct {
	service *auth.Service
	audit   *audit.Service
	limiter *auth.RateLimiter
}

func NewUserController(service *auth.Service, auditService *audit.Service, limiter *auth.RateLimiter) *UserController {
	return &UserController{
		service: service,
		audit:   auditService,
		limiter: limiter,
	}
}

// RegisterRoutes registers the account routes. Password update requires a
// bearer token; delete additionally only allows self-deletion.
func (uc *UserController) RegisterRoutes(router *gin.Engine, tokens *auth.TokenService) {
	users := router.Group("/users")
	users.GET("", uc.List)
	users.GET("/:id", uc.GetByID)
	users.POST("/register", uc.Register)
	users.POST("/login", uc.Login)
	users.POST("/logout", uc.Logout)

	protected := users.Group("")
	protected.Use(auth.RequireAuth(tokens))
	protected.PUT("/update-password", uc.UpdatePassword)
	protected.DELETE("/:id", uc.Delete)
}

type registerRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type updatePasswordRequest struct {
	OldPassword string `json:"oldPassword"`
	NewPassword string `json:"newPassword"`
}

// List returns all users without their password hashes.
func (uc *UserController) List(c *gin.Context) {
	users, err := uc.service.List()
	if err != nil {
		_ = c.Error(err)
		return
	}

	public := make([]entities.PublicUser, 0, len(users))
	for i := range users {
		public = append(public, users[i].Public())
	}
	c.JSON(http.StatusOK, public)
}

// GetByID returns a single user.
func (uc *UserController) GetByID(c *gin.Context) {
	user, err := uc.service.Get(c.Param("id"))
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, user.Public())
}

// Register creates a new user account.
func (uc *UserController) Register(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		_ = c.Error(httperr.BadRequest("").WithCause(err))
		return
	}

	user, err := uc.service.Register(req.Username, req.Password)
	uc.audit.LogAuth(userIDOrEmpty(user), req.Username, entities.AuthActionRegister,
		c.ClientIP(), c.Request.UserAgent(), err)
	if err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message": "User registered",
		"user":    user.Public(),
	})
}

// Login verifies credentials and returns a bearer token. Attempts are
// rate limited per IP+username.
func (uc *UserController) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		_ = c.Error(httperr.BadRequest("").WithCause(err))
		return
	}

	ip := c.ClientIP()
	if allowed, retryAfter := uc.limiter.Allow(ip, req.Username); !allowed {
		c.Header("Retry-After", fmt.Sprintf("%d", int(retryAfter/time.Second)))
		_ = c.Error(httperr.Unauthorized("Too many login attempts, try again later"))
		return
	}

	token, user, err := uc.service.Login(req.Username, req.Password)
	uc.audit.LogAuth(userIDOrEmpty(user), req.Username, entities.AuthActionLogin,
		ip, c.Request.UserAgent(), err)
	if err != nil {
		if httperr.IsKind(err, httperr.KindUnauthorized) {
			uc.limiter.RecordFailure(ip, req.Username)
		}
		_ = c.Error(err)
		return
	}
	uc.limiter.RecordSuccess(ip, req.Username)

	c.JSON(http.StatusOK, gin.H{
		"message": "Login successful",
		"token":   token,
		"userId":  user.ID,
	})
}

// Logout is informational only: tokens are stateless, so invalidation is
// the client's responsibility.
func (uc *UserController) Logout(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"message": "Logout successful"})
}

// UpdatePassword changes the authenticated user's password.
func (uc *UserController) UpdatePassword(c *gin.Context) {
	claims, ok := auth.CurrentClaims(c)
	if !ok {
		_ = c.Error(httperr.Authentication(""))
		return
	}

	var req updatePasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		_ = c.Error(httperr.BadRequest("").WithCause(err))
		return
	}

	user, err := uc.service.UpdatePassword(claims.UserID(), req.OldPassword, req.NewPassword)
	uc.audit.LogAuth(claims.UserID(), claims.Username, entities.AuthActionPasswordChange,
		c.ClientIP(), c.Request.UserAgent(), err)
	if err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message":  "Password updated successfully",
		"id":       user.ID,
		"username": user.Username,
	})
}

// Delete removes a user account. Only the account owner may delete it.
func (uc *UserController) Delete(c *gin.Context) {
	claims, ok := auth.CurrentClaims(c)
	if !ok {
		_ = c.Error(httperr.Authentication(""))
		return
	}

	id := c.Param("id")
	err := uc.service.Delete(claims.UserID(), id)
	uc.audit.LogAuth(claims.UserID(), claims.Username, entities.AuthActionDelete,
		c.ClientIP(), c.Request.UserAgent(), err)
	if err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": fmt.Sprintf("User with id %s deleted", id),
	})
}

func userIDOrEmpty(user *entities.User) string {
	if user == nil {
		return ""
	}
	return user.ID
}
