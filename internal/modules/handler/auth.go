package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/obraplan/obraplan/internal/modules/serializer"
	"github.com/obraplan/obraplan/internal/modules/service"
	"github.com/obraplan/obraplan/internal/pkg/tokens"
)

type AuthHandler struct {
	svc service.AuthService
}

func NewAuthHandler(s service.AuthService) *AuthHandler {
	return &AuthHandler{svc: s}
}

type RegisterReq struct {
	Email    string `json:"email" binding:"required,email" example:"mason@example.com"`
	Name     string `json:"name" binding:"required" example:"Mason"`
	Password string `json:"password" binding:"required,min=6"`
}

type SessionResp struct {
	User  interface{}  `json:"user"`
	Token *tokens.Pair `json:"token"`
}

// Register godoc
//
//	@Summary		Register
//	@Description	Create an account with email and password, returning a token pair
//	@Tags			auth
//	@Accept			json
//	@Produce		json
//	@Param			body	body	RegisterReq	true	"Registration payload"
//	@Success		201	{object}	serializer.Response{data=SessionResp}
//	@Router			/auth/register [post]
func (h *AuthHandler) Register(c *gin.Context) {
	req := RegisterReq{}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, serializer.ParamErr("", err))
		return
	}

	user, pair, err := h.svc.Register(c.Request.Context(), req.Email, req.Name, req.Password)
	if err != nil {
		c.JSON(serializer.FromErr(err))
		return
	}

	c.JSON(http.StatusCreated, serializer.Response{Data: SessionResp{User: user, Token: pair}})
}

type LoginReq struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// Login godoc
//
//	@Summary		Login
//	@Description	Authenticate with email and password, returning a token pair
//	@Tags			auth
//	@Accept			json
//	@Produce		json
//	@Param			body	body	LoginReq	true	"Credentials"
//	@Success		200	{object}	serializer.Response{data=SessionResp}
//	@Router			/auth/login [post]
func (h *AuthHandler) Login(c *gin.Context) {
	req := LoginReq{}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, serializer.ParamErr("", err))
		return
	}

	user, pair, err := h.svc.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		c.JSON(serializer.FromErr(err))
		return
	}

	c.JSON(http.StatusOK, serializer.Response{Data: SessionResp{User: user, Token: pair}})
}

type RefreshReq struct {
	RefreshToken string `json:"refresh_token" binding:"required"`
}

// Refresh godoc
//
//	@Summary		Refresh access token
//	@Description	Exchange a valid refresh token for a fresh access token
//	@Tags			auth
//	@Accept			json
//	@Produce		json
//	@Param			body	body	RefreshReq	true	"Refresh token"
//	@Success		200	{object}	serializer.Response{data=map[string]string}
//	@Router			/auth/refresh [post]
func (h *AuthHandler) Refresh(c *gin.Context) {
	req := RefreshReq{}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, serializer.ParamErr("", err))
		return
	}

	access, err := h.svc.Refresh(c.Request.Context(), req.RefreshToken)
	if err != nil {
		c.JSON(serializer.FromErr(err))
		return
	}

	c.JSON(http.StatusOK, serializer.Response{Data: gin.H{"access_token": access}})
}

// Logout godoc
//
//	@Summary		Logout
//	@Description	Revoke the refresh token session
//	@Tags			auth
//	@Accept			json
//	@Produce		json
//	@Param			body	body	RefreshReq	true	"Refresh token"
//	@Success		200	{object}	serializer.Response{}
//	@Router			/auth/logout [post]
func (h *AuthHandler) Logout(c *gin.Context) {
	req := RefreshReq{}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, serializer.ParamErr("", err))
		return
	}

	if err := h.svc.Logout(c.Request.Context(), req.RefreshToken); err != nil {
		c.JSON(serializer.FromErr(err))
		return
	}

	c.JSON(http.StatusOK, serializer.Response{Msg: "ok"})
}

// GoogleLogin godoc
//
//	@Summary		Google login
//	@Description	Redirect to Google's consent screen
//	@Tags			auth
//	@Param			redirect	query	string	false	"Frontend path to return to after login"
//	@Success		307
//	@Router			/auth/google [get]
func (h *AuthHandler) GoogleLogin(c *gin.Context) {
	if !h.svc.GoogleEnabled() {
		c.JSON(http.StatusNotFound, serializer.Err(http.StatusNotFound, "google login is not configured", nil))
		return
	}

	url, err := h.svc.GoogleAuthURL(c.Query("redirect"))
	if err != nil {
		c.JSON(serializer.FromErr(err))
		return
	}

	c.Redirect(http.StatusTemporaryRedirect, url)
}

// GoogleCallback godoc
//
//	@Summary		Google callback
//	@Description	Complete the OAuth code exchange and issue a token pair
//	@Tags			auth
//	@Param			code	query	string	true	"Authorization code"
//	@Param			state	query	string	true	"Signed state"
//	@Success		200	{object}	serializer.Response{data=tokens.Pair}
//	@Router			/auth/google/callback [get]
func (h *AuthHandler) GoogleCallback(c *gin.Context) {
	code := c.Query("code")
	state := c.Query("state")
	if code == "" || state == "" {
		c.JSON(http.StatusBadRequest, serializer.ParamErr("missing code or state", nil))
		return
	}

	pair, redirect, err := h.svc.GoogleCallback(c.Request.Context(), code, state)
	if err != nil {
		c.JSON(serializer.FromErr(err))
		return
	}

	if redirect != "" {
		c.Redirect(http.StatusTemporaryRedirect, redirect+"#access_token="+pair.AccessToken+"&refresh_token="+pair.RefreshToken)
		return
	}

	c.JSON(http.StatusOK, serializer.Response{Data: pair})
}

type ForgotPasswordReq struct {
	Email string `json:"email" binding:"required,email"`
}

// ForgotPassword godoc
//
//	@Summary		Request password reset
//	@Description	Send a password reset link to the given email if the account exists
//	@Tags			auth
//	@Accept			json
//	@Produce		json
//	@Param			body	body	ForgotPasswordReq	true	"Account email"
//	@Success		200	{object}	serializer.Response{}
//	@Router			/auth/forgot-password [post]
func (h *AuthHandler) ForgotPassword(c *gin.Context) {
	req := ForgotPasswordReq{}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, serializer.ParamErr("", err))
		return
	}

	if err := h.svc.RequestPasswordReset(c.Request.Context(), req.Email); err != nil {
		c.JSON(serializer.FromErr(err))
		return
	}

	c.JSON(http.StatusOK, serializer.Response{Msg: "if the email exists, a reset link was sent"})
}

type ResetPasswordReq struct {
	Token    string `json:"token" binding:"required"`
	Password string `json:"password" binding:"required,min=6"`
}

// ResetPassword godoc
//
//	@Summary		Reset password
//	@Description	Set a new password using a reset token
//	@Tags			auth
//	@Accept			json
//	@Produce		json
//	@Param			body	body	ResetPasswordReq	true	"Reset token and new password"
//	@Success		200	{object}	serializer.Response{}
//	@Router			/auth/reset-password [post]
func (h *AuthHandler) ResetPassword(c *gin.Context) {
	req := ResetPasswordReq{}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, serializer.ParamErr("", err))
		return
	}

	if err := h.svc.ConfirmPasswordReset(c.Request.Context(), req.Token, req.Password); err != nil {
		c.JSON(serializer.FromErr(err))
		return
	}

	c.JSON(http.StatusOK, serializer.Response{Msg: "password updated"})
}
