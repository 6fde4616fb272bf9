package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/obraplan/obraplan/internal/middleware"
	"github.com/obraplan/obraplan/internal/modules/serializer"
	"github.com/obraplan/obraplan/internal/modules/service"
)

type UserHandler struct {
	svc service.UserService
}

func NewUserHandler(s service.UserService) *UserHandler {
	return &UserHandler{svc: s}
}

// Me godoc
//
//	@Summary		Current user
//	@Description	Return the authenticated user's profile
//	@Tags			user
//	@Produce		json
//	@Security		BearerAuth
//	@Success		200	{object}	serializer.Response{data=model.User}
//	@Router			/users/me [get]
func (h *UserHandler) Me(c *gin.Context) {
	p, ok := middleware.Principal(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, serializer.AuthErr(""))
		return
	}

	user, err := h.svc.GetByID(c.Request.Context(), p.UserID)
	if err != nil {
		c.JSON(serializer.FromErr(err))
		return
	}

	c.JSON(http.StatusOK, serializer.Response{Data: user})
}

// UploadAvatar godoc
//
//	@Summary		Upload avatar
//	@Description	Store a new avatar image for the authenticated user
//	@Tags			user
//	@Accept			multipart/form-data
//	@Produce		json
//	@Param			file	formData	file	true	"Avatar image"
//	@Security		BearerAuth
//	@Success		200	{object}	serializer.Response{data=model.User}
//	@Router			/users/me/avatar [post]
func (h *UserHandler) UploadAvatar(c *gin.Context) {
	p, ok := middleware.Principal(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, serializer.AuthErr(""))
		return
	}

	fh, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, serializer.ParamErr("missing file", err))
		return
	}

	user, err := h.svc.UploadAvatar(c.Request.Context(), p.UserID, fh)
	if err != nil {
		c.JSON(serializer.FromErr(err))
		return
	}

	c.JSON(http.StatusOK, serializer.Response{Data: user})
}

// AvatarURL godoc
//
//	@Summary		Avatar URL
//	@Description	Return a short-lived URL for the authenticated user's avatar
//	@Tags			user
//	@Produce		json
//	@Security		BearerAuth
//	@Success		200	{object}	serializer.Response{data=map[string]string}
//	@Router			/users/me/avatar [get]
func (h *UserHandler) AvatarURL(c *gin.Context) {
	p, ok := middleware.Principal(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, serializer.AuthErr(""))
		return
	}

	url, err := h.svc.AvatarURL(c.Request.Context(), p.UserID)
	if err != nil {
		c.JSON(serializer.FromErr(err))
		return
	}

	c.JSON(http.StatusOK, serializer.Response{Data: gin.H{"url": url}})
}
