package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"parlor/backend/internal/core"
	"parlor/backend/internal/models"
)

// region --- DTOs ---

// RegisterInput defines the structure for user registration.
type RegisterInput struct {
	Username string `json:"username" binding:"required" example:"alice"`
	Password string `json:"password" binding:"required" example:"password123"`
	Avatar   string `json:"avatar" example:"butterfly"`
	Color    string `json:"color" example:"#ff66cc"`
	Language string `json:"language" example:"en"`
	Theme    string `json:"theme" example:"dark"`
}

// LoginInput defines the structure for user login.
type LoginInput struct {
	Username string `json:"username" binding:"required" example:"alice"`
	Password string `json:"password" binding:"required" example:"password123"`
}

// ProfileInput defines a profile update; empty fields stay unchanged.
type ProfileInput struct {
	Token    string `json:"token" binding:"required"`
	Avatar   string `json:"avatar"`
	Color    string `json:"color"`
	Language string `json:"language"`
	Theme    string `json:"theme"`
}

// TokenInput carries requests that only need a session token.
type TokenInput struct {
	Token string `json:"token" binding:"required"`
}

// RegisterResponse is returned on successful registration.
type RegisterResponse struct {
	OK   bool        `json:"ok"`
	Role models.Role `json:"role"`
}

// LoginResponse is returned on successful login.
type LoginResponse struct {
	OK      bool           `json:"ok"`
	Token   string         `json:"token"`
	Profile models.Profile `json:"profile"`
}

// ProfileResponse is returned on successful profile update.
type ProfileResponse struct {
	OK      bool           `json:"ok"`
	Profile models.Profile `json:"profile"`
}

// ErrorResponse is the uniform failure shape. The HTTP status is always
// 200; clients switch on the ok flag.
type ErrorResponse struct {
	OK    bool   `json:"ok"`
	Error string `json:"error"`
}

// endregion

// Handler exposes the request/response surface over the core.
type Handler struct {
	core *core.Core
}

func New(c *core.Core) *Handler {
	return &Handler{core: c}
}

func fail(c *gin.Context, err error) {
	c.JSON(http.StatusOK, ErrorResponse{OK: false, Error: err.Error()})
}

// Register godoc
// @Summary      Register a new account
// @Description  Creates an account. The first-ever account becomes owner.
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        input body RegisterInput true "Registration Info"
// @Success      200  {object}  RegisterResponse
// @Router       /register [post]
func (h *Handler) Register(c *gin.Context) {
	var input RegisterInput
	if err := c.ShouldBindJSON(&input); err != nil {
		fail(c, err)
		return
	}

	role, err := h.core.Register(core.RegisterInput{
		Username: input.Username,
		Password: input.Password,
		Avatar:   input.Avatar,
		Color:    input.Color,
		Language: input.Language,
		Theme:    input.Theme,
	})
	if err != nil {
		fail(c, err)
		return
	}

	c.JSON(http.StatusOK, RegisterResponse{OK: true, Role: role})
}

// Login godoc
// @Summary      Log in
// @Description  Authenticates an account and returns a session token plus
// @Description  the stored profile. Banned accounts are rejected.
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        input body LoginInput true "Login Info"
// @Success      200  {object}  LoginResponse
// @Router       /login [post]
func (h *Handler) Login(c *gin.Context) {
	var input LoginInput
	if err := c.ShouldBindJSON(&input); err != nil {
		fail(c, err)
		return
	}

	token, profile, err := h.core.Login(input.Username, input.Password)
	if err != nil {
		fail(c, err)
		return
	}

	c.JSON(http.StatusOK, LoginResponse{OK: true, Token: token, Profile: profile})
}

// Profile godoc
// @Summary      Update the profile
// @Description  Updates any subset of avatar, color, language, and theme.
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        input body ProfileInput true "Profile fields"
// @Success      200  {object}  ProfileResponse
// @Router       /profile [post]
func (h *Handler) Profile(c *gin.Context) {
	var input ProfileInput
	if err := c.ShouldBindJSON(&input); err != nil {
		fail(c, err)
		return
	}

	profile, err := h.core.UpdateProfile(input.Token, core.ProfileInput{
		Avatar:   input.Avatar,
		Color:    input.Color,
		Language: input.Language,
		Theme:    input.Theme,
	})
	if err != nil {
		fail(c, err)
		return
	}

	c.JSON(http.StatusOK, ProfileResponse{OK: true, Profile: profile})
}

// FixOwner godoc
// @Summary      Restore ownership to the master account
// @Description  Reassigns the owner role to the configured master account,
// @Description  demoting any usurper to coOwner.
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        input body TokenInput true "Session token"
// @Success      200  {object}  map[string]bool "{"ok": true}"
// @Router       /fixOwner [post]
func (h *Handler) FixOwner(c *gin.Context) {
	var input TokenInput
	if err := c.ShouldBindJSON(&input); err != nil {
		fail(c, err)
		return
	}

	res := h.core.FixOwner(input.Token)
	if !res.OK {
		c.JSON(http.StatusOK, ErrorResponse{OK: false, Error: res.Msg})
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true})
}
